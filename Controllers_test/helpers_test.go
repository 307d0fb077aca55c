package Controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yeremiapane/wastezero-realtime/config"
	"github.com/yeremiapane/wastezero-realtime/database"
	"github.com/yeremiapane/wastezero-realtime/models"
	"github.com/yeremiapane/wastezero-realtime/realtime"
	"github.com/yeremiapane/wastezero-realtime/router"
	"github.com/yeremiapane/wastezero-realtime/utils"
)

const testPassword = "password123"

type testEnv struct {
	store  *database.GormStore
	hub    *realtime.Hub
	router *gin.Engine
}

func testConfig() *config.Config {
	return &config.Config{
		JWTTTL:            time.Hour,
		CORSOrigins:       []string{"http://localhost:5173"},
		WSSendBuffer:      64,
		RateLimit:         1000,
		RateWindow:        time.Second,
		AuthRatePerMinute: 1000,
	}
}

// setupTestEnv wires the full router over an in-memory SQLite store.
func setupTestEnv(t *testing.T) *testEnv {
	gin.SetMode(gin.TestMode)
	utils.InitLogger("error")
	utils.InitJWT("controllers-test-secret", time.Hour)

	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	store := database.NewGormStore(db)
	require.NoError(t, store.AutoMigrate())
	t.Cleanup(func() { _ = store.Close(context.Background()) })

	hub := realtime.NewHub()
	return &testEnv{store: store, hub: hub, router: router.SetupRouter(store, hub, testConfig())}
}

func (e *testEnv) seedUser(t *testing.T, name, role string) (*models.User, string) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{
		Name:     name,
		Email:    strings.ToLower(name) + "@example.com",
		Password: string(hashed),
		Role:     role,
	}
	require.NoError(t, e.store.CreateUser(context.Background(), user))

	token, err := utils.GenerateToken(user.ID, user.Role)
	require.NoError(t, err)
	return user, token
}

type apiResponse struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, apiResponse) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var resp apiResponse
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}
