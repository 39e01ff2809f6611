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

const collectionTasks = "tasks"

type TaskRepository struct {
	col *mongo.Collection
}

func NewTaskRepository(db *mongo.Database) *TaskRepository {
	return &TaskRepository{col: db.Collection(collectionTasks)}
}

type mongoTask struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	EmployeeID    string             `bson:"employee_id"`
	AssignedBy    string             `bson:"assigned_by"`
	Title         string             `bson:"title"`
	Description   string             `bson:"description,omitempty"`
	Deadline      *time.Time         `bson:"deadline,omitempty"`
	Status        string             `bson:"status"`
	Progress      string             `bson:"progress,omitempty"`
	Remarks       string             `bson:"remarks,omitempty"`
	ReviewRemarks string             `bson:"review_remarks,omitempty"`
	SubmittedAt   *time.Time         `bson:"submitted_at,omitempty"`
	CreatedAt     time.Time          `bson:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at"`
}

func (m mongoTask) toDomain() *domain.Task {
	return &domain.Task{
		ID:            m.ID.Hex(),
		EmployeeID:    m.EmployeeID,
		AssignedBy:    m.AssignedBy,
		Title:         m.Title,
		Description:   m.Description,
		Deadline:      m.Deadline,
		Status:        domain.TaskStatus(m.Status),
		Progress:      m.Progress,
		Remarks:       m.Remarks,
		ReviewRemarks: m.ReviewRemarks,
		SubmittedAt:   m.SubmittedAt,
		CreatedAt:     m.CreatedAt.UTC(),
		UpdatedAt:     m.UpdatedAt.UTC(),
	}
}

func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoTask{
		EmployeeID:  t.EmployeeID,
		AssignedBy:  t.AssignedBy,
		Title:       t.Title,
		Description: t.Description,
		Deadline:    t.Deadline,
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	oid, err := parseID(id, domain.ErrTaskNotFound)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoTask
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *TaskRepository) ListByEmployee(ctx context.Context, employeeID string) ([]domain.Task, error) {
	return r.list(ctx, bson.M{"employee_id": employeeID})
}

func (r *TaskRepository) ListByAssigner(ctx context.Context, managerID string) ([]domain.Task, error) {
	return r.list(ctx, bson.M{"assigned_by": managerID})
}

func (r *TaskRepository) list(ctx context.Context, filter bson.M) ([]domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	var docs []mongoTask
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}

	out := make([]domain.Task, len(docs))
	for i, d := range docs {
		out[i] = *d.toDomain()
	}
	return out, nil
}

func (r *TaskRepository) SubmitReport(ctx context.Context, id, progress, remarks string, at time.Time) (*domain.Task, error) {
	return r.update(ctx, id, bson.M{"status": bson.M{"$ne": string(domain.TaskReviewed)}}, bson.M{
		"status":       string(domain.TaskSubmitted),
		"progress":     progress,
		"remarks":      remarks,
		"submitted_at": at,
		"updated_at":   at,
	})
}

func (r *TaskRepository) Review(ctx context.Context, id, remarks string) (*domain.Task, error) {
	return r.update(ctx, id, bson.M{"status": string(domain.TaskSubmitted)}, bson.M{
		"status":         string(domain.TaskReviewed),
		"review_remarks": remarks,
		"updated_at":     time.Now().UTC(),
	})
}

// update applies set when the task also matches cond; a task that exists but
// fails cond is reported as a conflict.
func (r *TaskRepository) update(ctx context.Context, id string, cond, set bson.M) (*domain.Task, error) {
	oid, err := parseID(id, domain.ErrTaskNotFound)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": oid}
	for k, v := range cond {
		filter[k] = v
	}

	var doc mongoTask
	err = r.col.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, afterUpdate()).Decode(&doc)
	if err == nil {
		return doc.toDomain(), nil
	}
	if !isNoDocuments(err) {
		return nil, fmt.Errorf("update task: %w", err)
	}
	if n, _ := r.col.CountDocuments(ctx, bson.M{"_id": oid}); n == 0 {
		return nil, domain.ErrTaskNotFound
	}
	return nil, domain.Conflict("task status changed concurrently")
}

func (r *TaskRepository) CountByStatus(ctx context.Context) (map[domain.TaskStatus]int, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
	}
	return countByStatus(ctx, r.col, pipeline, func(s string) domain.TaskStatus { return domain.TaskStatus(s) })
}

func (r *TaskRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "employee_id", Value: 1}}},
		{Keys: bson.D{{Key: "assigned_by", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
