package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/wastezero-realtime/database"
	"github.com/yeremiapane/wastezero-realtime/models"
	"github.com/yeremiapane/wastezero-realtime/services"
	"github.com/yeremiapane/wastezero-realtime/utils"
)

type NotificationController struct {
	Notifications *services.NotificationService
}

func NewNotificationController(svc *services.NotificationService) *NotificationController {
	return &NotificationController{Notifications: svc}
}

// GetNotifications -> ?page=1&limit=20&filter=all|read|unread
func (nc *NotificationController) GetNotifications(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(services.DefaultPageSize)))

	result, err := nc.Notifications.List(c.Request.Context(), currentUserID(c), page, limit, database.ReadFilter(c.Query("filter")))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Notifications", result)
}

func (nc *NotificationController) GetUnreadCount(c *gin.Context) {
	count, err := nc.Notifications.UnreadCount(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Unread count", gin.H{"unreadCount": count})
}

// CreateNotification is how domain-event producers (NGOs, admins) notify a user.
func (nc *NotificationController) CreateNotification(c *gin.Context) {
	var body struct {
		RecipientID          string                  `json:"recipientId" binding:"required"`
		Type                 models.NotificationType `json:"type" binding:"required"`
		Title                string                  `json:"title"`
		Message              string                  `json:"message"`
		RelatedEventID       *string                 `json:"relatedEvent"`
		RelatedApplicationID *string                 `json:"relatedApplication"`
		ActionURL            string                  `json:"actionUrl"`
		Metadata             map[string]interface{}  `json:"metadata"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	notif, err := nc.Notifications.Notify(c.Request.Context(), services.NotifyRequest{
		RecipientID:          body.RecipientID,
		SenderID:             currentUserID(c),
		Type:                 body.Type,
		Title:                body.Title,
		Message:              body.Message,
		RelatedEventID:       body.RelatedEventID,
		RelatedApplicationID: body.RelatedApplicationID,
		ActionURL:            body.ActionURL,
		Metadata:             body.Metadata,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Notification created", notif)
}

func (nc *NotificationController) MarkAsRead(c *gin.Context) {
	notif, err := nc.Notifications.MarkRead(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Notification marked as read", notif)
}

func (nc *NotificationController) MarkAllAsRead(c *gin.Context) {
	n, err := nc.Notifications.MarkAllRead(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All notifications marked as read", gin.H{"updated": n})
}

func (nc *NotificationController) DeleteNotification(c *gin.Context) {
	id := c.Param("id")
	if err := nc.Notifications.Delete(c.Request.Context(), currentUserID(c), id); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Notification deleted", gin.H{"id": id})
}
