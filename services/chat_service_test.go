package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/wastezero-realtime/database"
	"github.com/yeremiapane/wastezero-realtime/models"
	"github.com/yeremiapane/wastezero-realtime/realtime"
)

type failingMessageStore struct {
	*database.GormStore
}

var errDiskFull = errors.New("disk full")

func (f failingMessageStore) CreateMessage(ctx context.Context, msg *models.Message) error {
	return errDiskFull
}

func TestSendMessagePersistsAndDelivers(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	ngo := seedUser(t, store, "ngo", models.RoleNGO)
	vol := seedUser(t, store, "vol", models.RoleVolunteer)
	deliver := newRecordingDeliverer(vol.ID)
	chat := NewChatService(store, deliver)

	msg, err := chat.SendMessage(ctx, ngo.ID, vol.ID, "Hello")
	require.NoError(t, err)
	assert.NotEmpty(t, msg.ID)
	assert.False(t, msg.IsRead)

	stored, err := store.ListConversation(ctx, ngo.ID, vol.ID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, msg.ID, stored[0].ID)
	assert.Equal(t, ngo.ID, stored[0].SenderID)
	assert.Equal(t, vol.ID, stored[0].ReceiverID)
	assert.Equal(t, "Hello", stored[0].Body)
	assert.False(t, stored[0].IsRead)

	sent := deliver.sent(realtime.EventNewMessage)
	require.Len(t, sent, 1)
	assert.Equal(t, vol.ID, sent[0].userID)
	assert.Equal(t, msg, sent[0].data)
}

func TestSendMessageToOfflineRecipientStillPersists(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	ngo := seedUser(t, store, "ngo", models.RoleNGO)
	vol := seedUser(t, store, "vol", models.RoleVolunteer)
	deliver := newRecordingDeliverer()
	chat := NewChatService(store, deliver)

	msg, err := chat.SendMessage(ctx, ngo.ID, vol.ID, "Still there?")
	require.NoError(t, err)
	assert.NotNil(t, msg)
	assert.Empty(t, deliver.sent(realtime.EventNewMessage))

	stored, err := store.ListConversation(ctx, ngo.ID, vol.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestSendMessageValidation(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	ngo := seedUser(t, store, "ngo", models.RoleNGO)
	vol := seedUser(t, store, "vol", models.RoleVolunteer)
	chat := NewChatService(store, newRecordingDeliverer())

	_, err := chat.SendMessage(ctx, ngo.ID, vol.ID, "   ")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = chat.SendMessage(ctx, ngo.ID, ngo.ID, "me")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = chat.SendMessage(ctx, ngo.ID, "ghost", "hi")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = chat.SendMessage(ctx, "ghost", vol.ID, "hi")
	assert.ErrorIs(t, err, ErrNotFound)

	stored, err := store.ListConversation(ctx, ngo.ID, vol.ID)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestSendMessageForbiddenPairs(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	vol1 := seedUser(t, store, "vol1", models.RoleVolunteer)
	vol2 := seedUser(t, store, "vol2", models.RoleVolunteer)
	ngo1 := seedUser(t, store, "ngo1", models.RoleNGO)
	ngo2 := seedUser(t, store, "ngo2", models.RoleNGO)
	deliver := newRecordingDeliverer(vol2.ID, ngo2.ID)
	chat := NewChatService(store, deliver)

	for _, pair := range [][2]*models.User{{vol1, vol2}, {ngo1, ngo2}} {
		_, err := chat.SendMessage(ctx, pair[0].ID, pair[1].ID, "hi")
		assert.ErrorIs(t, err, ErrForbidden)
		assert.Equal(t, "forbidden", Code(err))

		stored, err := store.ListConversation(ctx, pair[0].ID, pair[1].ID)
		require.NoError(t, err)
		assert.Empty(t, stored)
	}
	assert.Empty(t, deliver.sent(realtime.EventNewMessage))
}

func TestAdminMessagesAnyone(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	admin := seedUser(t, store, "admin", models.RoleAdmin)
	admin2 := seedUser(t, store, "admin2", models.RoleAdmin)
	vol := seedUser(t, store, "vol", models.RoleVolunteer)
	chat := NewChatService(store, newRecordingDeliverer())

	_, err := chat.SendMessage(ctx, admin.ID, vol.ID, "hello")
	assert.NoError(t, err)
	_, err = chat.SendMessage(ctx, vol.ID, admin.ID, "hello back")
	assert.NoError(t, err)
	_, err = chat.SendMessage(ctx, admin.ID, admin2.ID, "hi")
	assert.NoError(t, err)
}

func TestSendMessageStoreFailurePropagates(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	ngo := seedUser(t, store, "ngo", models.RoleNGO)
	vol := seedUser(t, store, "vol", models.RoleVolunteer)
	deliver := newRecordingDeliverer(vol.ID)
	chat := NewChatService(failingMessageStore{store}, deliver)

	_, err := chat.SendMessage(ctx, ngo.ID, vol.ID, "hi")
	assert.Same(t, errDiskFull, err)
	assert.Equal(t, "internal", Code(err))
	assert.Empty(t, deliver.sent(realtime.EventNewMessage))
}

func TestConversationOrderAndReadState(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	ngo := seedUser(t, store, "ngo", models.RoleNGO)
	vol := seedUser(t, store, "vol", models.RoleVolunteer)
	chat := NewChatService(store, newRecordingDeliverer())

	_, err := chat.SendMessage(ctx, ngo.ID, vol.ID, "Hello")
	require.NoError(t, err)
	_, err = chat.SendMessage(ctx, vol.ID, ngo.ID, "Hi!")
	require.NoError(t, err)
	_, err = chat.SendMessage(ctx, ngo.ID, vol.ID, "Still there?")
	require.NoError(t, err)

	msgs, err := chat.Conversation(ctx, vol.ID, ngo.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, []string{"Hello", "Hi!", "Still there?"}, []string{msgs[0].Body, msgs[1].Body, msgs[2].Body})
	assert.True(t, msgs[0].IsRead)
	assert.False(t, msgs[1].IsRead, "messages vol sent stay unread until ngo opens the thread")
	assert.True(t, msgs[2].IsRead)

	_, err = chat.Conversation(ctx, vol.ID, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRelayTyping(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	ngo := seedUser(t, store, "ngo", models.RoleNGO)
	vol := seedUser(t, store, "vol", models.RoleVolunteer)
	offline := seedUser(t, store, "offline", models.RoleVolunteer)
	deliver := newRecordingDeliverer(vol.ID, ngo.ID)
	chat := NewChatService(store, deliver)

	chat.RelayTyping(ctx, ngo.ID, models.RoleNGO, vol.ID, true)
	chat.RelayTyping(ctx, ngo.ID, models.RoleNGO, offline.ID, true)
	chat.RelayTyping(ctx, ngo.ID, models.RoleNGO, ngo.ID, true)
	chat.RelayTyping(ctx, ngo.ID, models.RoleNGO, "ghost", true)

	sent := deliver.sent(realtime.EventUserTyping)
	require.Len(t, sent, 1)
	assert.Equal(t, vol.ID, sent[0].userID)
	assert.Equal(t, TypingPayload{SenderID: ngo.ID, IsTyping: true}, sent[0].data)
}

func TestRelayTypingFollowsRolePolicy(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	vol := seedUser(t, store, "vol", models.RoleVolunteer)
	otherVol := seedUser(t, store, "othervol", models.RoleVolunteer)
	deliver := newRecordingDeliverer(otherVol.ID)
	chat := NewChatService(store, deliver)

	chat.RelayTyping(ctx, vol.ID, models.RoleVolunteer, otherVol.ID, true)

	assert.Empty(t, deliver.sent(realtime.EventUserTyping))
}

func TestSendMessageRejectsBlockedSender(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	admin := seedUser(t, store, "admin", models.RoleAdmin)
	ngo := seedUser(t, store, "ngo", models.RoleNGO)
	vol := seedUser(t, store, "vol", models.RoleVolunteer)
	deliver := newRecordingDeliverer(vol.ID)
	chat := NewChatService(store, deliver)

	_, err := store.SetUserBlocked(ctx, ngo.ID, true, "spam", admin.ID)
	require.NoError(t, err)

	_, err = chat.SendMessage(ctx, ngo.ID, vol.ID, "buy now")
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Empty(t, deliver.sent(realtime.EventNewMessage))

	msgs, err := store.ListConversation(ctx, ngo.ID, vol.ID)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestConversationKeepsSendOrderWithinOneTick(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	ngo := seedUser(t, store, "ngo", models.RoleNGO)
	vol := seedUser(t, store, "vol", models.RoleVolunteer)
	chat := NewChatService(store, newRecordingDeliverer())
	frozen := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	chat.now = func() time.Time { return frozen }

	want := []string{"one", "two", "three", "four", "five", "six", "seven", "eight"}
	for i, body := range want {
		from, to := ngo.ID, vol.ID
		if i%2 == 1 {
			from, to = vol.ID, ngo.ID
		}
		_, err := chat.SendMessage(ctx, from, to, body)
		require.NoError(t, err)
	}

	msgs, err := chat.Conversation(ctx, ngo.ID, vol.ID)
	require.NoError(t, err)
	got := make([]string, 0, len(msgs))
	for _, m := range msgs {
		got = append(got, m.Body)
	}
	assert.Equal(t, want, got)
}
