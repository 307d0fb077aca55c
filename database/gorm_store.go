package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yeremiapane/wastezero-realtime/models"
	"gorm.io/gorm"
)

type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

var _ Store = (*GormStore)(nil)

// AutoMigrate creates or updates the tables backing the store.
func (s *GormStore) AutoMigrate() error {
	return s.DB.AutoMigrate(
		&models.User{},
		&models.Message{},
		&models.Notification{},
	)
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", what, err)
}

func (s *GormStore) CreateUser(ctx context.Context, user *models.User) error {
	if err := s.DB.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *GormStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "get user")
	}
	return &user, nil
}

func (s *GormStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, notFound(err, "get user by email")
	}
	return &user, nil
}

func (s *GormStore) ListUsers(ctx context.Context, excludeID string) ([]models.User, error) {
	var users []models.User
	if err := s.DB.WithContext(ctx).
		Where("id <> ?", excludeID).
		Order("name ASC").
		Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *GormStore) SetUserBlocked(ctx context.Context, id string, blocked bool, reason, blockedBy string) (*models.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"is_blocked":   blocked,
		"block_reason": "",
		"blocked_at":   nil,
		"blocked_by":   nil,
	}
	if blocked {
		now := time.Now()
		updates["block_reason"] = reason
		updates["blocked_at"] = &now
		updates["blocked_by"] = &blockedBy
	}

	if err := s.DB.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("set user blocked: %w", err)
	}
	return s.GetUser(ctx, id)
}

func (s *GormStore) CreateMessage(ctx context.Context, msg *models.Message) error {
	if err := s.DB.WithContext(ctx).Create(msg).Error; err != nil {
		return fmt.Errorf("create message: %w", err)
	}
	return nil
}

func (s *GormStore) ListConversation(ctx context.Context, a, b string) ([]models.Message, error) {
	var msgs []models.Message
	if err := s.DB.WithContext(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)", a, b, b, a).
		Order("created_at ASC").
		Order("id ASC").
		Find(&msgs).Error; err != nil {
		return nil, fmt.Errorf("list conversation: %w", err)
	}
	return msgs, nil
}

func (s *GormStore) MarkConversationRead(ctx context.Context, recipientID, senderID string) (int64, error) {
	res := s.DB.WithContext(ctx).
		Model(&models.Message{}).
		Where("sender_id = ? AND receiver_id = ? AND is_read = ?", senderID, recipientID, false).
		Update("is_read", true)
	if res.Error != nil {
		return 0, fmt.Errorf("mark conversation read: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (s *GormStore) CreateNotification(ctx context.Context, n *models.Notification) error {
	if err := s.DB.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

func (s *GormStore) ListNotifications(ctx context.Context, q NotificationQuery) ([]models.Notification, int64, error) {
	query := s.DB.WithContext(ctx).Model(&models.Notification{}).Where("recipient_id = ?", q.RecipientID)
	switch q.Filter {
	case FilterRead:
		query = query.Where("is_read = ?", true)
	case FilterUnread:
		query = query.Where("is_read = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count notifications: %w", err)
	}

	var notifs []models.Notification
	if err := query.
		Order("created_at DESC").
		Offset(q.offset()).
		Limit(q.Limit).
		Find(&notifs).Error; err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}
	return notifs, total, nil
}

func (s *GormStore) CountUnreadNotifications(ctx context.Context, recipientID string) (int64, error) {
	var count int64
	if err := s.DB.WithContext(ctx).
		Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

func (s *GormStore) MarkNotificationRead(ctx context.Context, recipientID, id string) (*models.Notification, error) {
	var notif models.Notification
	if err := s.DB.WithContext(ctx).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		First(&notif).Error; err != nil {
		return nil, notFound(err, "mark notification read")
	}
	if notif.IsRead {
		return &notif, nil
	}

	if err := s.DB.WithContext(ctx).Model(&notif).Update("is_read", true).Error; err != nil {
		return nil, fmt.Errorf("mark notification read: %w", err)
	}
	notif.IsRead = true
	return &notif, nil
}

func (s *GormStore) MarkAllNotificationsRead(ctx context.Context, recipientID string) (int64, error) {
	res := s.DB.WithContext(ctx).
		Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Update("is_read", true)
	if res.Error != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (s *GormStore) DeleteNotification(ctx context.Context, recipientID, id string) error {
	res := s.DB.WithContext(ctx).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Delete(&models.Notification{})
	if res.Error != nil {
		return fmt.Errorf("delete notification: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete notification: %w", ErrNotFound)
	}
	return nil
}

func (s *GormStore) Close(ctx context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
