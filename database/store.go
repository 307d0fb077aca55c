// Package database holds the durable store for users, messages and notifications.
// Store is implemented on gorm (sqlite, mysql) and on MongoDB.
package database

import (
	"context"
	"errors"

	"github.com/yeremiapane/wastezero-realtime/models"
)

// ErrNotFound is returned when a record does not exist or is not visible to the caller.
var ErrNotFound = errors.New("record not found")

// ReadFilter narrows a notification listing by read state.
type ReadFilter string

const (
	FilterAll    ReadFilter = "all"
	FilterRead   ReadFilter = "read"
	FilterUnread ReadFilter = "unread"
)

type NotificationQuery struct {
	RecipientID string
	Filter      ReadFilter
	Page        int // 1-based
	Limit       int
}

func (q NotificationQuery) offset() int {
	if q.Page < 1 {
		return 0
	}
	return (q.Page - 1) * q.Limit
}

type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// ListUsers returns every user except excludeID, ordered by name.
	ListUsers(ctx context.Context, excludeID string) ([]models.User, error)
	// SetUserBlocked flips the block state; blockedBy and reason are cleared on unblock.
	SetUserBlocked(ctx context.Context, id string, blocked bool, reason, blockedBy string) (*models.User, error)

	CreateMessage(ctx context.Context, msg *models.Message) error
	// ListConversation returns messages exchanged between a and b, oldest first.
	ListConversation(ctx context.Context, a, b string) ([]models.Message, error)
	// MarkConversationRead marks messages from senderID to recipientID as read.
	MarkConversationRead(ctx context.Context, recipientID, senderID string) (int64, error)

	CreateNotification(ctx context.Context, n *models.Notification) error
	// ListNotifications returns one page, newest first, with the total matching count.
	ListNotifications(ctx context.Context, q NotificationQuery) ([]models.Notification, int64, error)
	CountUnreadNotifications(ctx context.Context, recipientID string) (int64, error)
	// MarkNotificationRead is idempotent. A notification owned by someone else is ErrNotFound.
	MarkNotificationRead(ctx context.Context, recipientID, id string) (*models.Notification, error)
	MarkAllNotificationsRead(ctx context.Context, recipientID string) (int64, error)
	DeleteNotification(ctx context.Context, recipientID, id string) error

	Close(ctx context.Context) error
}
