package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationApplicationReceived NotificationType = "application_received"
	NotificationApplicationApproved NotificationType = "application_approved"
	NotificationApplicationRejected NotificationType = "application_rejected"
	NotificationEventReminder       NotificationType = "event_reminder"
	NotificationGeneral             NotificationType = "general"
	NotificationNewEvent            NotificationType = "new_event"
)

var notificationTypes = map[NotificationType]struct{}{
	NotificationApplicationReceived: {},
	NotificationApplicationApproved: {},
	NotificationApplicationRejected: {},
	NotificationEventReminder:       {},
	NotificationGeneral:             {},
	NotificationNewEvent:            {},
}

func (t NotificationType) Valid() bool {
	_, ok := notificationTypes[t]
	return ok
}

type Notification struct {
	ID                   string                 `gorm:"primaryKey;type:varchar(36)" json:"_id" bson:"_id"`
	RecipientID          string                 `gorm:"type:varchar(36);not null;index:idx_notification_recipient" json:"recipient" bson:"recipient"`
	SenderID             string                 `gorm:"type:varchar(36);not null" json:"sender" bson:"sender"`
	Type                 NotificationType       `gorm:"type:varchar(40);not null" json:"type" bson:"type"`
	Title                string                 `gorm:"type:varchar(255);not null" json:"title" bson:"title"`
	Message              string                 `gorm:"type:text;not null" json:"message" bson:"message"`
	RelatedEventID       *string                `gorm:"type:varchar(64)" json:"relatedEvent,omitempty" bson:"relatedEvent,omitempty"`
	RelatedApplicationID *string                `gorm:"type:varchar(64)" json:"relatedApplication,omitempty" bson:"relatedApplication,omitempty"`
	IsRead               bool                   `gorm:"not null;default:false;index:idx_notification_recipient" json:"isRead" bson:"isRead"`
	ActionURL            string                 `gorm:"type:varchar(255)" json:"actionUrl,omitempty" bson:"actionUrl,omitempty"`
	Metadata             map[string]interface{} `gorm:"type:text;serializer:json" json:"metadata,omitempty" bson:"metadata,omitempty"`
	CreatedAt            time.Time              `gorm:"not null;index" json:"createdAt" bson:"createdAt"`
	UpdatedAt            time.Time              `json:"updatedAt" bson:"updatedAt"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}
