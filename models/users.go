package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleVolunteer = "volunteer"
	RoleNGO       = "ngo"
	RoleAdmin     = "admin"
)

// Roles lists every role a user may hold.
var Roles = []string{RoleVolunteer, RoleNGO, RoleAdmin}

type User struct {
	ID          string     `gorm:"primaryKey;type:varchar(36)" json:"_id" bson:"_id"`
	Name        string     `gorm:"type:varchar(255);not null" json:"name" bson:"name"`
	Email       string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email" bson:"email"`
	Password    string     `gorm:"type:varchar(255);not null" json:"-" bson:"password"`
	Role        string     `gorm:"type:varchar(20);not null;default:volunteer" json:"role" bson:"role"`
	Location    string     `gorm:"type:varchar(255)" json:"location" bson:"location"`
	Bio         string     `gorm:"type:varchar(400)" json:"bio" bson:"bio"`
	IsBlocked   bool       `gorm:"not null;default:false" json:"isBlocked" bson:"isBlocked"`
	BlockReason string     `gorm:"type:varchar(255)" json:"blockReason,omitempty" bson:"blockReason,omitempty"`
	BlockedAt   *time.Time `json:"blockedAt,omitempty" bson:"blockedAt,omitempty"`
	BlockedBy   *string    `gorm:"type:varchar(36)" json:"blockedBy,omitempty" bson:"blockedBy,omitempty"`
	CreatedAt   time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt" bson:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
