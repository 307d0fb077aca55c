package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/wastezero-realtime/database"
	"github.com/yeremiapane/wastezero-realtime/models"
	"github.com/yeremiapane/wastezero-realtime/realtime"
	"github.com/yeremiapane/wastezero-realtime/utils"
)

// Deliverer pushes an event to a user's live connections and returns how many
// accepted it. *realtime.Hub implements it.
type Deliverer interface {
	SendToUser(userID, event string, data interface{}) int
}

type TypingPayload struct {
	SenderID string `json:"senderId"`
	IsTyping bool   `json:"isTyping"`
}

// ChatService routes direct messages: persist first, then forward live.
type ChatService struct {
	store   database.Store
	deliver Deliverer
	now     func() time.Time
}

func NewChatService(store database.Store, deliver Deliverer) *ChatService {
	return &ChatService{store: store, deliver: deliver, now: time.Now}
}

func resolveUser(ctx context.Context, store database.Store, id, what string) (*models.User, error) {
	user, err := store.GetUser(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, notFoundf("%s not found", what)
	}
	return user, err
}

// SendMessage persists body from senderID to recipientID and forwards it to
// the recipient's connections. The message is returned whether or not the
// recipient is online.
func (s *ChatService) SendMessage(ctx context.Context, senderID, recipientID, body string) (*models.Message, error) {
	if strings.TrimSpace(body) == "" {
		return nil, validationf("message cannot be empty")
	}
	if senderID == recipientID {
		return nil, validationf("cannot send a message to yourself")
	}

	sender, err := resolveUser(ctx, s.store, senderID, "sender")
	if err != nil {
		return nil, err
	}
	// a socket opened before the block outlives the auth check
	if sender.IsBlocked {
		return nil, forbiddenf("account blocked")
	}
	recipient, err := resolveUser(ctx, s.store, recipientID, "recipient")
	if err != nil {
		return nil, err
	}

	if !IsPairAllowed(sender.Role, recipient.Role) {
		return nil, forbiddenf("%s users cannot message %s users", sender.Role, recipient.Role)
	}

	msg := &models.Message{
		SenderID:   sender.ID,
		ReceiverID: recipient.ID,
		Body:       body,
		IsRead:     false,
		CreatedAt:  s.now(),
	}
	if err := s.store.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}

	delivered := s.deliver.SendToUser(recipient.ID, realtime.EventNewMessage, msg)
	utils.InfoLogger.WithFields(logrus.Fields{
		"message_id":  msg.ID,
		"sender_id":   sender.ID,
		"receiver_id": recipient.ID,
		"delivered":   delivered,
	}).Debug("Message sent")

	return msg, nil
}

// Conversation returns the messages between userID and otherID in send order
// and marks the ones userID received as read.
func (s *ChatService) Conversation(ctx context.Context, userID, otherID string) ([]models.Message, error) {
	if _, err := resolveUser(ctx, s.store, otherID, "user"); err != nil {
		return nil, err
	}

	msgs, err := s.store.ListConversation(ctx, userID, otherID)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.MarkConversationRead(ctx, userID, otherID); err != nil {
		return nil, err
	}
	for i := range msgs {
		if msgs[i].ReceiverID == userID {
			msgs[i].IsRead = true
		}
	}
	return msgs, nil
}

// RelayTyping forwards a typing flag when senderRole may message the
// recipient. Nothing is stored and an offline recipient simply misses it.
func (s *ChatService) RelayTyping(ctx context.Context, senderID, senderRole, recipientID string, isTyping bool) {
	if recipientID == "" || recipientID == senderID {
		return
	}

	recipient, err := s.store.GetUser(ctx, recipientID)
	if err != nil {
		if !errors.Is(err, database.ErrNotFound) {
			utils.ErrorLogger.Printf("typing relay to %s: %v", recipientID, err)
		}
		return
	}
	if !IsPairAllowed(senderRole, recipient.Role) {
		return
	}

	s.deliver.SendToUser(recipientID, realtime.EventUserTyping, TypingPayload{
		SenderID: senderID,
		IsTyping: isTyping,
	})
}
