package services

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/wastezero-realtime/database"
	"github.com/yeremiapane/wastezero-realtime/models"
	"github.com/yeremiapane/wastezero-realtime/realtime"
	"github.com/yeremiapane/wastezero-realtime/utils"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type NotifyRequest struct {
	RecipientID          string
	SenderID             string
	Type                 models.NotificationType
	Title                string
	Message              string
	RelatedEventID       *string
	RelatedApplicationID *string
	ActionURL            string
	Metadata             map[string]interface{}
}

// Nudge is the live hint that a notification arrived. Clients re-fetch the list.
type Nudge struct {
	NotificationID string                  `json:"notificationId"`
	Type           models.NotificationType `json:"type"`
	Title          string                  `json:"title"`
}

type NotificationPage struct {
	Notifications []models.Notification `json:"notifications"`
	Total         int64                 `json:"total"`
	UnreadCount   int64                 `json:"unreadCount"`
	Page          int                   `json:"page"`
	Limit         int                   `json:"limit"`
	TotalPages    int                   `json:"totalPages"`
}

type NotificationService struct {
	store   database.Store
	deliver Deliverer
}

func NewNotificationService(store database.Store, deliver Deliverer) *NotificationService {
	return &NotificationService{store: store, deliver: deliver}
}

// Notify persists a notification and nudges the recipient if connected.
// Calling it twice for the same event creates two notifications.
func (s *NotificationService) Notify(ctx context.Context, req NotifyRequest) (*models.Notification, error) {
	if !req.Type.Valid() {
		return nil, validationf("unknown notification type %q", req.Type)
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Message) == "" {
		return nil, validationf("notification title and message are required")
	}

	if _, err := resolveUser(ctx, s.store, req.RecipientID, "recipient"); err != nil {
		return nil, err
	}
	if _, err := resolveUser(ctx, s.store, req.SenderID, "sender"); err != nil {
		return nil, err
	}

	notif := &models.Notification{
		RecipientID:          req.RecipientID,
		SenderID:             req.SenderID,
		Type:                 req.Type,
		Title:                req.Title,
		Message:              req.Message,
		RelatedEventID:       req.RelatedEventID,
		RelatedApplicationID: req.RelatedApplicationID,
		ActionURL:            req.ActionURL,
		Metadata:             req.Metadata,
		IsRead:               false,
	}
	if err := s.store.CreateNotification(ctx, notif); err != nil {
		return nil, err
	}

	delivered := s.deliver.SendToUser(notif.RecipientID, realtime.EventNewNotification, Nudge{
		NotificationID: notif.ID,
		Type:           notif.Type,
		Title:          notif.Title,
	})
	utils.InfoLogger.WithFields(logrus.Fields{
		"notification_id": notif.ID,
		"recipient_id":    notif.RecipientID,
		"type":            notif.Type,
		"delivered":       delivered,
	}).Info("Notification created")

	return notif, nil
}

// List returns a page of recipientID's notifications, newest first. Page and
// limit are clamped to sane values.
func (s *NotificationService) List(ctx context.Context, recipientID string, page, limit int, filter database.ReadFilter) (*NotificationPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	switch filter {
	case database.FilterRead, database.FilterUnread:
	case "", database.FilterAll:
		filter = database.FilterAll
	default:
		return nil, validationf("unknown filter %q", filter)
	}

	notifs, total, err := s.store.ListNotifications(ctx, database.NotificationQuery{
		RecipientID: recipientID,
		Filter:      filter,
		Page:        page,
		Limit:       limit,
	})
	if err != nil {
		return nil, err
	}
	unread, err := s.store.CountUnreadNotifications(ctx, recipientID)
	if err != nil {
		return nil, err
	}
	if notifs == nil {
		notifs = []models.Notification{}
	}

	return &NotificationPage{
		Notifications: notifs,
		Total:         total,
		UnreadCount:   unread,
		Page:          page,
		Limit:         limit,
		TotalPages:    int((total + int64(limit) - 1) / int64(limit)),
	}, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, recipientID string) (int64, error) {
	return s.store.CountUnreadNotifications(ctx, recipientID)
}

// MarkRead moves a notification to read. Marking an already read one succeeds.
func (s *NotificationService) MarkRead(ctx context.Context, recipientID, id string) (*models.Notification, error) {
	notif, err := s.store.MarkNotificationRead(ctx, recipientID, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, notFoundf("notification not found")
	}
	return notif, err
}

func (s *NotificationService) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	return s.store.MarkAllNotificationsRead(ctx, recipientID)
}

func (s *NotificationService) Delete(ctx context.Context, recipientID, id string) error {
	err := s.store.DeleteNotification(ctx, recipientID, id)
	if errors.Is(err, database.ErrNotFound) {
		return notFoundf("notification not found")
	}
	return err
}
