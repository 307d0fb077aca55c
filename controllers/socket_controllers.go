package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"
	"github.com/yeremiapane/wastezero-realtime/middlewares"
	"github.com/yeremiapane/wastezero-realtime/realtime"
	"github.com/yeremiapane/wastezero-realtime/services"
	"github.com/yeremiapane/wastezero-realtime/utils"
)

type socketError struct {
	Event   string `json:"event"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type SocketController struct {
	Hub        *realtime.Hub
	Chat       *services.ChatService
	SendBuffer int

	upgrader websocket.Upgrader
}

func NewSocketController(hub *realtime.Hub, chat *services.ChatService, sendBuffer int, origins []string) *SocketController {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}

	return &SocketController{
		Hub:        hub,
		Chat:       chat,
		SendBuffer: sendBuffer,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed[origin]
			},
		},
	}
}

// Connect upgrades an authenticated request and serves the connection until it closes.
func (sc *SocketController) Connect(c *gin.Context) {
	ws, err := sc.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.Printf("Websocket upgrade failed: %v", err)
		return
	}

	client := realtime.NewClient(ws, currentUserID(c), c.GetString(middlewares.ContextRole), sc.SendBuffer)
	client.Run(c.Request.Context(), sc.Hub, sc.dispatch)
}

// dispatch handles inbound client events. The sender is always the
// authenticated user; any senderId in the payload is ignored.
func (sc *SocketController) dispatch(ctx context.Context, client *realtime.Client, event string, data gjson.Result) {
	switch event {
	case realtime.EventTyping:
		sc.Chat.RelayTyping(ctx, client.UserID(), client.Role(), data.Get("receiverId").String(), data.Get("isTyping").Bool())

	case realtime.EventSendMessage:
		msg, err := sc.Chat.SendMessage(ctx, client.UserID(), data.Get("receiverId").String(), data.Get("message").String())
		if err != nil {
			message := err.Error()
			if services.Code(err) == "internal" {
				utils.ErrorLogger.Printf("sendMessage from %s: %v", client.UserID(), err)
				message = errInternal.Error()
			}
			client.SendEvent(realtime.EventError, socketError{Event: event, Code: services.Code(err), Message: message})
			return
		}
		client.SendEvent(realtime.EventMessageSent, msg)

	default:
		client.SendEvent(realtime.EventError, socketError{Event: event, Code: "validation", Message: "unknown event"})
	}
}
