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

const collectionLeaves = "leaves"

type LeaveRepository struct {
	col *mongo.Collection
}

func NewLeaveRepository(db *mongo.Database) *LeaveRepository {
	return &LeaveRepository{col: db.Collection(collectionLeaves)}
}

type mongoLeave struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	UserID         string             `bson:"user_id"`
	ManagerID      string             `bson:"manager_id,omitempty"`
	Type           string             `bson:"leave_type"`
	From           time.Time          `bson:"from_date"`
	To             time.Time          `bson:"to_date"`
	Reason         string             `bson:"reason"`
	Status         string             `bson:"status"`
	ManagerComment string             `bson:"manager_comment,omitempty"`
	DecidedBy      string             `bson:"decided_by,omitempty"`
	CreatedAt      time.Time          `bson:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at"`
}

func (m mongoLeave) toDomain() *domain.Leave {
	return &domain.Leave{
		ID:             m.ID.Hex(),
		UserID:         m.UserID,
		ManagerID:      m.ManagerID,
		Type:           m.Type,
		From:           m.From.UTC(),
		To:             m.To.UTC(),
		Reason:         m.Reason,
		Status:         domain.LeaveStatus(m.Status),
		ManagerComment: m.ManagerComment,
		DecidedBy:      m.DecidedBy,
		CreatedAt:      m.CreatedAt.UTC(),
		UpdatedAt:      m.UpdatedAt.UTC(),
	}
}

func (r *LeaveRepository) Create(ctx context.Context, l *domain.Leave) (*domain.Leave, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoLeave{
		UserID:    l.UserID,
		ManagerID: l.ManagerID,
		Type:      l.Type,
		From:      l.From,
		To:        l.To,
		Reason:    l.Reason,
		Status:    string(l.Status),
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert leave: %w", err)
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

func (r *LeaveRepository) FindByID(ctx context.Context, id string) (*domain.Leave, error) {
	oid, err := parseID(id, domain.ErrLeaveNotFound)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoLeave
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, domain.ErrLeaveNotFound
		}
		return nil, fmt.Errorf("find leave: %w", err)
	}
	return doc.toDomain(), nil
}

// ListByUsers returns the requests of the given users, newest first.
func (r *LeaveRepository) ListByUsers(ctx context.Context, userIDs []string) ([]domain.Leave, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"user_id": bson.M{"$in": userIDs}}, opts)
	if err != nil {
		return nil, fmt.Errorf("list leaves: %w", err)
	}
	var docs []mongoLeave
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode leaves: %w", err)
	}

	out := make([]domain.Leave, len(docs))
	for i, d := range docs {
		out[i] = *d.toDomain()
	}
	return out, nil
}

// Decide records the decision only while the request is still pending.
func (r *LeaveRepository) Decide(ctx context.Context, id string, status domain.LeaveStatus, comment, decidedBy string) (*domain.Leave, error) {
	oid, err := parseID(id, domain.ErrLeaveNotFound)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": oid, "status": string(domain.LeavePending)}
	update := bson.M{"$set": bson.M{
		"status":          string(status),
		"manager_comment": comment,
		"decided_by":      decidedBy,
		"updated_at":      time.Now().UTC(),
	}}

	var doc mongoLeave
	err = r.col.FindOneAndUpdate(ctx, filter, update, afterUpdate()).Decode(&doc)
	if err == nil {
		return doc.toDomain(), nil
	}
	if !isNoDocuments(err) {
		return nil, fmt.Errorf("decide leave: %w", err)
	}

	n, err := r.col.CountDocuments(ctx, bson.M{"_id": oid})
	if err != nil {
		return nil, fmt.Errorf("decide leave: %w", err)
	}
	if n == 0 {
		return nil, domain.ErrLeaveNotFound
	}
	return nil, domain.ErrLeaveDecided
}

// CountByStatus groups the requests starting in [from, to) by status.
func (r *LeaveRepository) CountByStatus(ctx context.Context, from, to time.Time) (map[domain.LeaveStatus]int, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"from_date": bson.M{"$gte": from, "$lt": to}}}},
		{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
	}
	return countByStatus(ctx, r.col, pipeline, func(s string) domain.LeaveStatus { return domain.LeaveStatus(s) })
}

func (r *LeaveRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "from_date", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

type statusCount struct {
	Status string `bson:"_id"`
	Count  int    `bson:"count"`
}

func countByStatus[S ~string](ctx context.Context, col *mongo.Collection, pipeline mongo.Pipeline, conv func(string) S) (map[S]int, error) {
	cur, err := col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate %s: %w", col.Name(), err)
	}
	var rows []statusCount
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode %s counts: %w", col.Name(), err)
	}
	out := make(map[S]int, len(rows))
	for _, row := range rows {
		out[conv(row.Status)] = row.Count
	}
	return out, nil
}
