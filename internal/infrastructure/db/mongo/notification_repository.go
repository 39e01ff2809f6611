package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/b2world/ems-backend/internal/core/domain"
)

const collectionNotifications = "notifications"

type NotificationRepository struct {
	col *mongo.Collection
}

func NewNotificationRepository(db *mongo.Database) *NotificationRepository {
	return &NotificationRepository{col: db.Collection(collectionNotifications)}
}

type mongoNotification struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	RecipientID string             `bson:"recipient_id"`
	SenderID    string             `bson:"sender_id,omitempty"`
	Title       string             `bson:"title"`
	Message     string             `bson:"message"`
	Type        string             `bson:"type"`
	RelatedTo   string             `bson:"related_to"`
	RelatedID   string             `bson:"related_id,omitempty"`
	Read        bool               `bson:"is_read"`
	CreatedAt   time.Time          `bson:"created_at"`
}

func (m mongoNotification) toDomain() domain.Notification {
	return domain.Notification{
		ID:          m.ID.Hex(),
		RecipientID: m.RecipientID,
		SenderID:    m.SenderID,
		Title:       m.Title,
		Message:     m.Message,
		Type:        m.Type,
		RelatedTo:   m.RelatedTo,
		RelatedID:   m.RelatedID,
		Read:        m.Read,
		CreatedAt:   m.CreatedAt.UTC(),
	}
}

func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoNotification{
		RecipientID: n.RecipientID,
		SenderID:    n.SenderID,
		Title:       n.Title,
		Message:     n.Message,
		Type:        n.Type,
		RelatedTo:   n.RelatedTo,
		RelatedID:   n.RelatedID,
		Read:        n.Read,
		CreatedAt:   n.CreatedAt,
	}
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert notification: %w", err)
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	out := doc.toDomain()
	return &out, nil
}

// ListByRecipient returns the recipient's notifications, newest first.
func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipientID string, unreadOnly bool) ([]domain.Notification, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"recipient_id": recipientID}
	if unreadOnly {
		filter["is_read"] = false
	}

	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	var docs []mongoNotification
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode notifications: %w", err)
	}

	out := make([]domain.Notification, len(docs))
	for i, d := range docs {
		out[i] = d.toDomain()
	}
	return out, nil
}

// MarkRead flags the given notifications as read. Ids that belong to other
// recipients are ignored.
func (r *NotificationRepository) MarkRead(ctx context.Context, recipientID string, ids []string) (int64, error) {
	oids := parseIDs(ids)
	if len(oids) == 0 {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": oids}, "recipient_id": recipientID},
		bson.M{"$set": bson.M{"is_read": true}},
	)
	if err != nil {
		return 0, fmt.Errorf("mark notifications read: %w", err)
	}
	return res.ModifiedCount, nil
}

func (r *NotificationRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "recipient_id", Value: 1}, {Key: "is_read", Value: 1}, {Key: "created_at", Value: -1}},
	})
	return err
}
