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

const collectionTrainings = "trainings"

type TrainingRepository struct {
	col *mongo.Collection
}

func NewTrainingRepository(db *mongo.Database) *TrainingRepository {
	return &TrainingRepository{col: db.Collection(collectionTrainings)}
}

type mongoCompletion struct {
	UserID      string    `bson:"user_id"`
	CompletedAt time.Time `bson:"completed_at"`
}

type mongoTraining struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Title          string             `bson:"title"`
	Description    string             `bson:"description,omitempty"`
	TrainerID      string             `bson:"trainer_id"`
	TargetAudience []string           `bson:"target_audience"`
	StartDate      time.Time          `bson:"start_date"`
	EndDate        time.Time          `bson:"end_date"`
	CompletedBy    []mongoCompletion  `bson:"completed_by"`
	CreatedAt      time.Time          `bson:"created_at"`
}

func (m mongoTraining) toDomain() *domain.Training {
	completed := make([]domain.TrainingCompletion, len(m.CompletedBy))
	for i, c := range m.CompletedBy {
		completed[i] = domain.TrainingCompletion{UserID: c.UserID, CompletedAt: c.CompletedAt.UTC()}
	}
	return &domain.Training{
		ID:             m.ID.Hex(),
		Title:          m.Title,
		Description:    m.Description,
		TrainerID:      m.TrainerID,
		TargetAudience: m.TargetAudience,
		StartDate:      m.StartDate.UTC(),
		EndDate:        m.EndDate.UTC(),
		CompletedBy:    completed,
		CreatedAt:      m.CreatedAt.UTC(),
	}
}

func (r *TrainingRepository) Create(ctx context.Context, t *domain.Training) (*domain.Training, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoTraining{
		Title:          t.Title,
		Description:    t.Description,
		TrainerID:      t.TrainerID,
		TargetAudience: t.TargetAudience,
		StartDate:      t.StartDate,
		EndDate:        t.EndDate,
		CompletedBy:    []mongoCompletion{},
		CreatedAt:      t.CreatedAt,
	}
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert training: %w", err)
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

// ListForRole returns the courses whose audience includes role, soonest first.
func (r *TrainingRepository) ListForRole(ctx context.Context, role string) ([]domain.Training, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "start_date", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"target_audience": role}, opts)
	if err != nil {
		return nil, fmt.Errorf("list trainings: %w", err)
	}
	var docs []mongoTraining
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode trainings: %w", err)
	}

	out := make([]domain.Training, len(docs))
	for i, d := range docs {
		out[i] = *d.toDomain()
	}
	return out, nil
}

func (r *TrainingRepository) Complete(ctx context.Context, id, userID string, at time.Time) (*domain.Training, error) {
	oid, err := parseID(id, domain.ErrTrainingNotFound)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": oid, "completed_by.user_id": bson.M{"$ne": userID}}
	update := bson.M{"$push": bson.M{"completed_by": mongoCompletion{UserID: userID, CompletedAt: at}}}

	var doc mongoTraining
	err = r.col.FindOneAndUpdate(ctx, filter, update, afterUpdate()).Decode(&doc)
	if err == nil {
		return doc.toDomain(), nil
	}
	if !isNoDocuments(err) {
		return nil, fmt.Errorf("complete training: %w", err)
	}
	if n, _ := r.col.CountDocuments(ctx, bson.M{"_id": oid}); n == 0 {
		return nil, domain.ErrTrainingNotFound
	}
	return nil, domain.ErrTrainingCompleted
}

func (r *TrainingRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "target_audience", Value: 1}},
	})
	return err
}
