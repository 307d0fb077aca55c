package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/wastezero-realtime/services"
	"github.com/yeremiapane/wastezero-realtime/utils"
)

type MessageController struct {
	Chat *services.ChatService
}

func NewMessageController(chat *services.ChatService) *MessageController {
	return &MessageController{Chat: chat}
}

// GetMessages returns the caller's conversation with :otherUserId.
func (mc *MessageController) GetMessages(c *gin.Context) {
	msgs, err := mc.Chat.Conversation(c.Request.Context(), currentUserID(c), c.Param("otherUserId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Conversation", msgs)
}

func (mc *MessageController) SendMessage(c *gin.Context) {
	var body struct {
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	msg, err := mc.Chat.SendMessage(c.Request.Context(), currentUserID(c), c.Param("receiverId"), body.Message)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Message sent", msg)
}
