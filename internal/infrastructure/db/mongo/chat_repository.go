package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/b2world/ems-backend/internal/core/domain"
)

const collectionChats = "chat_sessions"

type ChatRepository struct {
	col *mongo.Collection
}

func NewChatRepository(db *mongo.Database) *ChatRepository {
	return &ChatRepository{col: db.Collection(collectionChats)}
}

type mongoChatMessage struct {
	Sender    string    `bson:"sender"`
	Message   string    `bson:"message"`
	Timestamp time.Time `bson:"timestamp"`
}

type mongoChatSession struct {
	UserID       string             `bson:"user_id"`
	Conversation []mongoChatMessage `bson:"conversation"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

func (m mongoChatSession) toDomain() *domain.ChatSession {
	msgs := make([]domain.ChatMessage, len(m.Conversation))
	for i, c := range m.Conversation {
		msgs[i] = domain.ChatMessage{Sender: c.Sender, Message: c.Message, Timestamp: c.Timestamp.UTC()}
	}
	return &domain.ChatSession{UserID: m.UserID, Conversation: msgs, UpdatedAt: m.UpdatedAt.UTC()}
}

func (r *ChatRepository) Append(ctx context.Context, userID string, msgs ...domain.ChatMessage) error {
	if len(msgs) == 0 {
		return nil
	}

	docs := make([]mongoChatMessage, len(msgs))
	for i, m := range msgs {
		docs[i] = mongoChatMessage{Sender: m.Sender, Message: m.Message, Timestamp: m.Timestamp}
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{
		"$push": bson.M{"conversation": bson.M{"$each": docs}},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}
	_, err := r.col.UpdateOne(ctx, bson.M{"user_id": userID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("append chat: %w", err)
	}
	return nil
}

func (r *ChatRepository) FindByUser(ctx context.Context, userID string) (*domain.ChatSession, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoChatSession
	if err := r.col.FindOne(ctx, bson.M{"user_id": userID}).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, domain.NotFound("chat session not found")
		}
		return nil, fmt.Errorf("find chat: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ChatRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
