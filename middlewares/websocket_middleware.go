package middlewares

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/wastezero-realtime/utils"
)

// RequireWebSocketUpgrade rejects plain HTTP requests to websocket endpoints
// before authentication touches the store.
func RequireWebSocketUpgrade() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !websocket.IsWebSocketUpgrade(c.Request) {
			utils.RespondError(c, http.StatusBadRequest, errors.New("websocket upgrade required"))
			c.Abort()
			return
		}
		c.Next()
	}
}
