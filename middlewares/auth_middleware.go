package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/wastezero-realtime/database"
	"github.com/yeremiapane/wastezero-realtime/models"
	"github.com/yeremiapane/wastezero-realtime/utils"
)

const (
	ContextUserID = "user_id"
	ContextRole   = "role"
	ContextUser   = "user"
	ContextToken  = "token"

	TokenCookie = "token"
)

// TokenFromRequest looks for a JWT in the Authorization header, then the token
// cookie, then the token query parameter (used by websocket clients).
func TokenFromRequest(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := c.Cookie(TokenCookie); err == nil && cookie != "" {
		return cookie
	}
	return c.Query("token")
}

// AuthMiddleware authenticates the request and loads the user. Blocked users
// are refused with 403 and the block details.
func AuthMiddleware(store database.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := TokenFromRequest(c)
		if token == "" {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("not authorized, no token"))
			c.Abort()
			return
		}

		claims, err := utils.ParseToken(token)
		if err != nil {
			utils.RespondError(c, http.StatusUnauthorized, err)
			c.Abort()
			return
		}

		user, err := store.GetUser(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				utils.RespondError(c, http.StatusUnauthorized, errors.New("user not found"))
			} else {
				utils.ErrorLogger.Printf("Error loading user %s: %v", claims.UserID, err)
				utils.RespondError(c, http.StatusInternalServerError, errors.New("internal server error"))
			}
			c.Abort()
			return
		}

		if user.IsBlocked {
			reason := user.BlockReason
			if reason == "" {
				reason = "Your account has been suspended. Contact admin for more information."
			}
			utils.RespondErrorData(c, http.StatusForbidden, errors.New("account blocked"), gin.H{
				"isBlocked":   true,
				"blockReason": reason,
				"blockedAt":   user.BlockedAt,
			})
			c.Abort()
			return
		}

		c.Set(ContextUserID, user.ID)
		c.Set(ContextRole, user.Role)
		c.Set(ContextUser, user)
		c.Set(ContextToken, token)
		c.Next()
	}
}

// CurrentUser returns the user stored by AuthMiddleware.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(ContextUser); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}
