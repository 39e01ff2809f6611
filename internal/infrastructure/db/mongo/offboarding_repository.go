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
	"github.com/b2world/ems-backend/internal/core/ports"
)

const collectionOffboarding = "offboarding"

type OffboardingRepository struct {
	col *mongo.Collection
}

func NewOffboardingRepository(db *mongo.Database) *OffboardingRepository {
	return &OffboardingRepository{col: db.Collection(collectionOffboarding)}
}

type mongoClearance struct {
	HR      bool `bson:"hr"`
	IT      bool `bson:"it"`
	Finance bool `bson:"finance"`
	Manager bool `bson:"manager"`
}

type mongoOffboarding struct {
	ID                     primitive.ObjectID `bson:"_id,omitempty"`
	UserID                 string             `bson:"user_id"`
	ResignationDate        time.Time          `bson:"resignation_date"`
	LastWorkingDate        time.Time          `bson:"last_working_date"`
	Reason                 string             `bson:"reason,omitempty"`
	Status                 string             `bson:"status"`
	Clearance              mongoClearance     `bson:"clearance"`
	ExperienceLetterIssued bool               `bson:"experience_letter_issued"`
	RelievingLetterIssued  bool               `bson:"relieving_letter_issued"`
	CreatedAt              time.Time          `bson:"created_at"`
	UpdatedAt              time.Time          `bson:"updated_at"`
}

func (m mongoOffboarding) toDomain() *domain.Offboarding {
	return &domain.Offboarding{
		ID:              m.ID.Hex(),
		UserID:          m.UserID,
		ResignationDate: m.ResignationDate.UTC(),
		LastWorkingDate: m.LastWorkingDate.UTC(),
		Reason:          m.Reason,
		Status:          domain.OffboardingStatus(m.Status),
		Clearance: domain.Clearance{
			HR:      m.Clearance.HR,
			IT:      m.Clearance.IT,
			Finance: m.Clearance.Finance,
			Manager: m.Clearance.Manager,
		},
		ExperienceLetterIssued: m.ExperienceLetterIssued,
		RelievingLetterIssued:  m.RelievingLetterIssued,
		CreatedAt:              m.CreatedAt.UTC(),
		UpdatedAt:              m.UpdatedAt.UTC(),
	}
}

func clearanceDoc(c domain.Clearance) mongoClearance {
	return mongoClearance{HR: c.HR, IT: c.IT, Finance: c.Finance, Manager: c.Manager}
}

func (r *OffboardingRepository) Create(ctx context.Context, o *domain.Offboarding) (*domain.Offboarding, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoOffboarding{
		UserID:          o.UserID,
		ResignationDate: o.ResignationDate,
		LastWorkingDate: o.LastWorkingDate,
		Reason:          o.Reason,
		Status:          string(o.Status),
		Clearance:       clearanceDoc(o.Clearance),
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrAlreadyResigned
		}
		return nil, fmt.Errorf("insert offboarding: %w", err)
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

func (r *OffboardingRepository) FindByUser(ctx context.Context, userID string) (*domain.Offboarding, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoOffboarding
	if err := r.col.FindOne(ctx, bson.M{"user_id": userID}).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, domain.ErrOffboardingNotFound
		}
		return nil, fmt.Errorf("find offboarding: %w", err)
	}
	return doc.toDomain(), nil
}

// UpdateClearance sets only the given flags and derives the status from the
// stored clearance in the same update, so concurrent sign-offs by different
// departments all persist.
func (r *OffboardingRepository) UpdateClearance(ctx context.Context, userID string, upd ports.ClearanceUpdate) (*domain.Offboarding, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"user_id": userID, "status": bson.M{"$ne": string(domain.OffboardingCancelled)}}

	var doc mongoOffboarding
	err := r.col.FindOneAndUpdate(ctx, filter, clearancePipeline(upd, time.Now().UTC()), afterUpdate()).Decode(&doc)
	if err == nil {
		return doc.toDomain(), nil
	}
	if !isNoDocuments(err) {
		return nil, fmt.Errorf("update clearance: %w", err)
	}

	n, err := r.col.CountDocuments(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("update clearance: %w", err)
	}
	if n == 0 {
		return nil, domain.ErrOffboardingNotFound
	}
	return nil, domain.ErrOffboardingCancelled
}

// clearancePipeline builds a two-stage update: the first stage sets the
// provided clearance.* fields, the second recomputes status from all four.
func clearancePipeline(upd ports.ClearanceUpdate, now time.Time) mongo.Pipeline {
	set := bson.D{}
	for _, f := range []struct {
		field string
		value *bool
	}{
		{"clearance.hr", upd.HR},
		{"clearance.it", upd.IT},
		{"clearance.finance", upd.Finance},
		{"clearance.manager", upd.Manager},
	} {
		if f.value != nil {
			set = append(set, bson.E{Key: f.field, Value: bson.M{"$literal": *f.value}})
		}
	}
	set = append(set, bson.E{Key: "updated_at", Value: now})

	flags := bson.A{"$clearance.hr", "$clearance.it", "$clearance.finance", "$clearance.manager"}
	status := bson.M{"$switch": bson.M{
		"branches": bson.A{
			bson.M{"case": bson.M{"$and": flags}, "then": string(domain.OffboardingCompleted)},
			bson.M{"case": bson.M{"$or": flags}, "then": string(domain.OffboardingInProgress)},
		},
		"default": string(domain.OffboardingPending),
	}}

	return mongo.Pipeline{
		{{Key: "$set", Value: set}},
		{{Key: "$set", Value: bson.D{{Key: "status", Value: status}}}},
	}
}

func (r *OffboardingRepository) MarkLetterIssued(ctx context.Context, userID string, kind ports.LetterKind) error {
	field := "experience_letter_issued"
	if kind == ports.RelievingLetter {
		field = "relieving_letter_issued"
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"user_id": userID}, bson.M{"$set": bson.M{
		field:        true,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return fmt.Errorf("mark letter issued: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrOffboardingNotFound
	}
	return nil
}

func (r *OffboardingRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
