package services

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yeremiapane/wastezero-realtime/database"
	"github.com/yeremiapane/wastezero-realtime/models"
)

type delivery struct {
	userID string
	event  string
	data   interface{}
}

// recordingDeliverer stands in for the hub; users in online accept frames.
type recordingDeliverer struct {
	mu         sync.Mutex
	online     map[string]bool
	deliveries []delivery
}

func newRecordingDeliverer(online ...string) *recordingDeliverer {
	d := &recordingDeliverer{online: make(map[string]bool)}
	for _, id := range online {
		d.online[id] = true
	}
	return d
}

func (d *recordingDeliverer) SendToUser(userID, event string, data interface{}) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.online[userID] {
		return 0
	}
	d.deliveries = append(d.deliveries, delivery{userID: userID, event: event, data: data})
	return 1
}

func (d *recordingDeliverer) setOnline(userID string, online bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.online[userID] = online
}

func (d *recordingDeliverer) sent(event string) []delivery {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []delivery
	for _, dl := range d.deliveries {
		if dl.event == event {
			out = append(out, dl)
		}
	}
	return out
}

func setupTestStore(t *testing.T) *database.GormStore {
	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	store := database.NewGormStore(db)
	require.NoError(t, store.AutoMigrate())
	t.Cleanup(func() { _ = store.Close(context.Background()) })
	return store
}

func seedUser(t *testing.T, store database.Store, name, role string) *models.User {
	user := &models.User{Name: name, Email: name + "@example.com", Password: "x", Role: role}
	require.NoError(t, store.CreateUser(context.Background(), user))
	return user
}
