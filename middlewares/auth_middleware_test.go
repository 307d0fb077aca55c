package middlewares

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yeremiapane/wastezero-realtime/database"
	"github.com/yeremiapane/wastezero-realtime/models"
	"github.com/yeremiapane/wastezero-realtime/utils"
)

func setupAuthRouter(t *testing.T) (*gin.Engine, *database.GormStore) {
	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	store := database.NewGormStore(db)
	require.NoError(t, store.AutoMigrate())
	t.Cleanup(func() { _ = store.Close(context.Background()) })

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", AuthMiddleware(store), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextUserID))
	})
	r.GET("/admin", AuthMiddleware(store), RequireRoles(models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r, store
}

func get(r *gin.Engine, path string, mutate func(*http.Request)) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if mutate != nil {
		mutate(req)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddlewareTokenSources(t *testing.T) {
	r, store := setupAuthRouter(t)
	user := &models.User{Name: "vol", Email: "vol@example.com", Password: "x", Role: models.RoleVolunteer}
	require.NoError(t, store.CreateUser(context.Background(), user))
	token, err := utils.GenerateToken(user.ID, user.Role)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/me?token=garbage", nil).Code)

	w := get(r, "/me", func(req *http.Request) { req.Header.Set("Authorization", "Bearer "+token) })
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, user.ID, w.Body.String())

	w = get(r, "/me", func(req *http.Request) { req.AddCookie(&http.Cookie{Name: TokenCookie, Value: token}) })
	assert.Equal(t, http.StatusOK, w.Code)

	w = get(r, "/me?token="+token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, http.StatusForbidden, get(r, "/admin?token="+token, nil).Code)

	utils.BlacklistToken(token, time.Now().Add(time.Hour))
	assert.Equal(t, http.StatusUnauthorized, get(r, "/me?token="+token, nil).Code)
}

func TestAuthMiddlewareRejectsBlockedAndUnknownUsers(t *testing.T) {
	r, store := setupAuthRouter(t)
	ctx := context.Background()
	user := &models.User{Name: "vol", Email: "vol@example.com", Password: "x", Role: models.RoleVolunteer}
	require.NoError(t, store.CreateUser(ctx, user))
	token, err := utils.GenerateToken(user.ID, user.Role)
	require.NoError(t, err)

	_, err = store.SetUserBlocked(ctx, user.ID, true, "abuse", "admin")
	require.NoError(t, err)
	w := get(r, "/me?token="+token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), `"blockReason":"abuse"`)

	ghost, err := utils.GenerateToken("ghost", models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/me?token="+ghost, nil).Code)
}
