package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message is a direct message between two users. Only IsRead ever changes after creation.
type Message struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)" json:"_id" bson:"_id"`
	SenderID   string    `gorm:"type:varchar(36);not null;index:idx_message_pair" json:"senderId" bson:"senderId"`
	ReceiverID string    `gorm:"type:varchar(36);not null;index:idx_message_pair" json:"receiverId" bson:"receiverId"`
	Body       string    `gorm:"column:message;type:text;not null" json:"message" bson:"message"`
	IsRead     bool      `gorm:"not null;default:false" json:"isRead" bson:"isRead"`
	CreatedAt  time.Time `gorm:"not null;index" json:"createdAt" bson:"createdAt"`
}

// NewMessageID returns a time-ordered id. Within one millisecond ids still
// increase, so history sorts by (createdAt, id) in send order.
func NewMessageID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID != "" {
		return nil
	}
	id, err := NewMessageID()
	if err != nil {
		return err
	}
	m.ID = id
	return nil
}
