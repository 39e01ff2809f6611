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

const collectionAttendance = "attendance"

type AttendanceRepository struct {
	col *mongo.Collection
}

func NewAttendanceRepository(db *mongo.Database) *AttendanceRepository {
	return &AttendanceRepository{col: db.Collection(collectionAttendance)}
}

type mongoAttendance struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	UserID   string             `bson:"user_id"`
	Day      string             `bson:"day"`
	ClockIn  *time.Time         `bson:"clock_in,omitempty"`
	ClockOut *time.Time         `bson:"clock_out,omitempty"`
}

func (m mongoAttendance) toDomain() domain.AttendanceRecord {
	rec := domain.AttendanceRecord{ID: m.ID.Hex(), UserID: m.UserID, Day: m.Day}
	if m.ClockIn != nil {
		t := m.ClockIn.UTC()
		rec.ClockIn = &t
	}
	if m.ClockOut != nil {
		t := m.ClockOut.UTC()
		rec.ClockOut = &t
	}
	return rec
}

// ClockIn inserts the day's record. The (user_id, day) unique index turns a
// second clock-in into a duplicate key error.
func (r *AttendanceRepository) ClockIn(ctx context.Context, userID, day string, at time.Time) (*domain.AttendanceRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoAttendance{UserID: userID, Day: day, ClockIn: &at}
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrAlreadyClockedIn
		}
		return nil, fmt.Errorf("insert attendance: %w", err)
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	rec := doc.toDomain()
	return &rec, nil
}

// ClockOut sets clock_out only on an open record of the day.
func (r *AttendanceRepository) ClockOut(ctx context.Context, userID, day string, at time.Time) (*domain.AttendanceRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"user_id":   userID,
		"day":       day,
		"clock_in":  bson.M{"$ne": nil},
		"clock_out": nil,
	}
	var doc mongoAttendance
	err := r.col.FindOneAndUpdate(ctx, filter, bson.M{"$set": bson.M{"clock_out": at}}, afterUpdate()).Decode(&doc)
	if err != nil {
		if isNoDocuments(err) {
			return nil, domain.ErrNoActiveClockIn
		}
		return nil, fmt.Errorf("clock out: %w", err)
	}
	rec := doc.toDomain()
	return &rec, nil
}

func (r *AttendanceRepository) ListRange(ctx context.Context, userID, fromDay, toDay string) ([]domain.AttendanceRecord, error) {
	return r.list(ctx, bson.M{"user_id": userID, "day": bson.M{"$gte": fromDay, "$lt": toDay}})
}

func (r *AttendanceRepository) ListAllRange(ctx context.Context, fromDay, toDay string) ([]domain.AttendanceRecord, error) {
	return r.list(ctx, bson.M{"day": bson.M{"$gte": fromDay, "$lt": toDay}})
}

func (r *AttendanceRepository) list(ctx context.Context, filter bson.M) ([]domain.AttendanceRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "day", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	var docs []mongoAttendance
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode attendance: %w", err)
	}

	out := make([]domain.AttendanceRecord, len(docs))
	for i, d := range docs {
		out[i] = d.toDomain()
	}
	return out, nil
}

// CountPresent counts days in range with both clock-in and clock-out.
func (r *AttendanceRepository) CountPresent(ctx context.Context, userID, fromDay, toDay string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{
		"user_id":   userID,
		"day":       bson.M{"$gte": fromDay, "$lt": toDay},
		"clock_in":  bson.M{"$ne": nil},
		"clock_out": bson.M{"$ne": nil},
	})
	if err != nil {
		return 0, fmt.Errorf("count attendance: %w", err)
	}
	return int(n), nil
}

func (r *AttendanceRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "day", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "day", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
