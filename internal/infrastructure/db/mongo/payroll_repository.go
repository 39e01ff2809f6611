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

const collectionPayrolls = "payrolls"

type PayrollRepository struct {
	col *mongo.Collection
}

func NewPayrollRepository(db *mongo.Database) *PayrollRepository {
	return &PayrollRepository{col: db.Collection(collectionPayrolls)}
}

type mongoPayroll struct {
	ID               primitive.ObjectID   `bson:"_id,omitempty"`
	UserID           string               `bson:"user_id"`
	Month            int                  `bson:"month"`
	Year             int                  `bson:"year"`
	BaseSalary       primitive.Decimal128 `bson:"base_salary"`
	WorkingDays      int                  `bson:"working_days"`
	DaysPresent      int                  `bson:"days_present"`
	DailyRate        primitive.Decimal128 `bson:"daily_rate"`
	GrossSalary      primitive.Decimal128 `bson:"gross_salary"`
	Tax              primitive.Decimal128 `bson:"tax"`
	ProvidentFund    primitive.Decimal128 `bson:"provident_fund"`
	NetSalary        primitive.Decimal128 `bson:"net_salary"`
	PayslipGenerated bool                 `bson:"payslip_generated"`
	GeneratedAt      time.Time            `bson:"generated_at"`
}

func toMongoPayroll(p *domain.PayrollRecord) mongoPayroll {
	return mongoPayroll{
		UserID:           p.UserID,
		Month:            p.Month,
		Year:             p.Year,
		BaseSalary:       toDecimal128(p.BaseSalary),
		WorkingDays:      p.WorkingDays,
		DaysPresent:      p.DaysPresent,
		DailyRate:        toDecimal128(p.DailyRate),
		GrossSalary:      toDecimal128(p.GrossSalary),
		Tax:              toDecimal128(p.Tax),
		ProvidentFund:    toDecimal128(p.ProvidentFund),
		NetSalary:        toDecimal128(p.NetSalary),
		PayslipGenerated: p.PayslipGenerated,
		GeneratedAt:      p.GeneratedAt,
	}
}

func (m mongoPayroll) toDomain() *domain.PayrollRecord {
	return &domain.PayrollRecord{
		ID:               m.ID.Hex(),
		UserID:           m.UserID,
		Month:            m.Month,
		Year:             m.Year,
		BaseSalary:       fromDecimal128(m.BaseSalary),
		WorkingDays:      m.WorkingDays,
		DaysPresent:      m.DaysPresent,
		DailyRate:        fromDecimal128(m.DailyRate),
		GrossSalary:      fromDecimal128(m.GrossSalary),
		Tax:              fromDecimal128(m.Tax),
		ProvidentFund:    fromDecimal128(m.ProvidentFund),
		NetSalary:        fromDecimal128(m.NetSalary),
		PayslipGenerated: m.PayslipGenerated,
		GeneratedAt:      m.GeneratedAt.UTC(),
	}
}

func (r *PayrollRepository) Exists(ctx context.Context, userID string, month, year int) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, periodFilter(userID, month, year), options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("check payroll: %w", err)
	}
	return n > 0, nil
}

// Create inserts the record. The (user_id, month, year) unique index makes a
// concurrent duplicate fail with domain.ErrPayrollExists.
func (r *PayrollRepository) Create(ctx context.Context, rec *domain.PayrollRecord) (*domain.PayrollRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toMongoPayroll(rec)
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrPayrollExists
		}
		return nil, fmt.Errorf("insert payroll: %w", err)
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

func (r *PayrollRepository) FindByID(ctx context.Context, id string) (*domain.PayrollRecord, error) {
	oid, err := parseID(id, domain.ErrPayrollNotFound)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *PayrollRepository) FindByPeriod(ctx context.Context, userID string, month, year int) (*domain.PayrollRecord, error) {
	return r.findOne(ctx, periodFilter(userID, month, year))
}

func (r *PayrollRepository) findOne(ctx context.Context, filter bson.M) (*domain.PayrollRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoPayroll
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, domain.ErrPayrollNotFound
		}
		return nil, fmt.Errorf("find payroll: %w", err)
	}
	return doc.toDomain(), nil
}

// ListByUser returns the user's records, newest period first.
func (r *PayrollRepository) ListByUser(ctx context.Context, userID string) ([]domain.PayrollRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "year", Value: -1}, {Key: "month", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list payroll: %w", err)
	}
	var docs []mongoPayroll
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode payroll: %w", err)
	}

	out := make([]domain.PayrollRecord, len(docs))
	for i, d := range docs {
		out[i] = *d.toDomain()
	}
	return out, nil
}

func (r *PayrollRepository) MarkPayslipGenerated(ctx context.Context, id string) error {
	oid, err := parseID(id, domain.ErrPayrollNotFound)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"payslip_generated": true}})
	if err != nil {
		return fmt.Errorf("mark payslip: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrPayrollNotFound
	}
	return nil
}

func periodFilter(userID string, month, year int) bson.M {
	return bson.M{"user_id": userID, "month": month, "year": year}
}

func (r *PayrollRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "month", Value: 1}, {Key: "year", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "year", Value: -1}, {Key: "month", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
