package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/yeremiapane/wastezero-realtime/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection         = "users"
	messagesCollection      = "messages"
	notificationsCollection = "notifications"
)

// MongoStore keeps records in MongoDB using uuid string ids, so records are
// interchangeable with the gorm backend.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ Store = (*MongoStore)(nil)

func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &MongoStore{client: client, db: client.Database(database)}, nil
}

// EnsureIndexes mirrors the indexes the gorm models declare.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		messagesCollection: {
			{Keys: bson.D{{Key: "senderId", Value: 1}, {Key: "receiverId", Value: 1}, {Key: "createdAt", Value: 1}}},
		},
		notificationsCollection: {
			{Keys: bson.D{{Key: "recipient", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "recipient", Value: 1}, {Key: "isRead", Value: 1}}},
		},
	}
	for coll, idx := range indexes {
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll, err)
		}
	}
	return nil
}

func mongoNotFound(err error, what string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", what, err)
}

func (s *MongoStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now
	if user.Role == "" {
		user.Role = models.RoleVolunteer
	}

	if _, err := s.db.Collection(usersCollection).InsertOne(ctx, user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *MongoStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.db.Collection(usersCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		return nil, mongoNotFound(err, "get user")
	}
	return &user, nil
}

func (s *MongoStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.Collection(usersCollection).FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		return nil, mongoNotFound(err, "get user by email")
	}
	return &user, nil
}

func (s *MongoStore) ListUsers(ctx context.Context, excludeID string) ([]models.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := s.db.Collection(usersCollection).Find(ctx, bson.M{"_id": bson.M{"$ne": excludeID}}, opts)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

func (s *MongoStore) SetUserBlocked(ctx context.Context, id string, blocked bool, reason, blockedBy string) (*models.User, error) {
	now := time.Now()
	set := bson.M{"isBlocked": blocked, "updatedAt": now}
	update := bson.M{"$set": set}
	if blocked {
		set["blockReason"] = reason
		set["blockedAt"] = now
		set["blockedBy"] = blockedBy
	} else {
		update["$unset"] = bson.M{"blockReason": "", "blockedAt": "", "blockedBy": ""}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user models.User
	if err := s.db.Collection(usersCollection).FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&user); err != nil {
		return nil, mongoNotFound(err, "set user blocked")
	}
	return &user, nil
}

func (s *MongoStore) CreateMessage(ctx context.Context, msg *models.Message) error {
	if msg.ID == "" {
		id, err := models.NewMessageID()
		if err != nil {
			return fmt.Errorf("create message: %w", err)
		}
		msg.ID = id
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	if _, err := s.db.Collection(messagesCollection).InsertOne(ctx, msg); err != nil {
		return fmt.Errorf("create message: %w", err)
	}
	return nil
}

func (s *MongoStore) ListConversation(ctx context.Context, a, b string) ([]models.Message, error) {
	filter := bson.M{"$or": []bson.M{
		{"senderId": a, "receiverId": b},
		{"senderId": b, "receiverId": a},
	}}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := s.db.Collection(messagesCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list conversation: %w", err)
	}
	defer cursor.Close(ctx)

	var msgs []models.Message
	if err := cursor.All(ctx, &msgs); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	return msgs, nil
}

func (s *MongoStore) MarkConversationRead(ctx context.Context, recipientID, senderID string) (int64, error) {
	res, err := s.db.Collection(messagesCollection).UpdateMany(ctx,
		bson.M{"senderId": senderID, "receiverId": recipientID, "isRead": false},
		bson.M{"$set": bson.M{"isRead": true}},
	)
	if err != nil {
		return 0, fmt.Errorf("mark conversation read: %w", err)
	}
	return res.ModifiedCount, nil
}

func (s *MongoStore) CreateNotification(ctx context.Context, n *models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	now := time.Now()
	n.CreatedAt, n.UpdatedAt = now, now

	if _, err := s.db.Collection(notificationsCollection).InsertOne(ctx, n); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

func notificationFilter(q NotificationQuery) bson.M {
	filter := bson.M{"recipient": q.RecipientID}
	switch q.Filter {
	case FilterRead:
		filter["isRead"] = true
	case FilterUnread:
		filter["isRead"] = false
	}
	return filter
}

func (s *MongoStore) ListNotifications(ctx context.Context, q NotificationQuery) ([]models.Notification, int64, error) {
	coll := s.db.Collection(notificationsCollection)
	filter := notificationFilter(q)

	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count notifications: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(q.offset())).
		SetLimit(int64(q.Limit))
	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}
	defer cursor.Close(ctx)

	var notifs []models.Notification
	if err := cursor.All(ctx, &notifs); err != nil {
		return nil, 0, fmt.Errorf("decode notifications: %w", err)
	}
	return notifs, total, nil
}

func (s *MongoStore) CountUnreadNotifications(ctx context.Context, recipientID string) (int64, error) {
	count, err := s.db.Collection(notificationsCollection).CountDocuments(ctx, bson.M{"recipient": recipientID, "isRead": false})
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

func (s *MongoStore) MarkNotificationRead(ctx context.Context, recipientID, id string) (*models.Notification, error) {
	filter := bson.M{"_id": id, "recipient": recipientID}
	update := bson.M{"$set": bson.M{"isRead": true, "updatedAt": time.Now()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var notif models.Notification
	if err := s.db.Collection(notificationsCollection).FindOneAndUpdate(ctx, filter, update, opts).Decode(&notif); err != nil {
		return nil, mongoNotFound(err, "mark notification read")
	}
	return &notif, nil
}

func (s *MongoStore) MarkAllNotificationsRead(ctx context.Context, recipientID string) (int64, error) {
	res, err := s.db.Collection(notificationsCollection).UpdateMany(ctx,
		bson.M{"recipient": recipientID, "isRead": false},
		bson.M{"$set": bson.M{"isRead": true, "updatedAt": time.Now()}},
	)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	return res.ModifiedCount, nil
}

func (s *MongoStore) DeleteNotification(ctx context.Context, recipientID, id string) error {
	res, err := s.db.Collection(notificationsCollection).DeleteOne(ctx, bson.M{"_id": id, "recipient": recipientID})
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("delete notification: %w", ErrNotFound)
	}
	return nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
