package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"prepwise/internal/models"
)

var ErrInterviewNotFound = errors.New("interview not found")

// InterviewRepo wraps the interviews collection. Records are append-only.
type InterviewRepo struct{ col *mongo.Collection }

type interviewDocument struct {
	ID                     primitive.ObjectID `bson:"_id,omitempty"`
	models.InterviewRecord `bson:",inline"`
}

func NewInterviewRepo(col *mongo.Collection) *InterviewRepo {
	return &InterviewRepo{col: col}
}

// EnsureIndexes adds the (userId, createdAt) index used for listing.
func (r *InterviewRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	return err
}

// Create inserts a single document and returns its hex id.
func (r *InterviewRepo) Create(ctx context.Context, record *models.InterviewRecord) (string, error) {
	if len(record.Questions) == 0 {
		return "", errors.New("interview has no questions")
	}
	doc := interviewDocument{ID: primitive.NewObjectID(), InterviewRecord: *record}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return "", err
	}
	record.ID = doc.ID.Hex()
	return record.ID, nil
}

func (r *InterviewRepo) GetByID(ctx context.Context, id string) (*models.InterviewRecord, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInterviewNotFound
	}

	var doc interviewDocument
	err = r.col.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrInterviewNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.record(), nil
}

// ListByUser returns the user's interviews, newest first.
func (r *InterviewRepo) ListByUser(ctx context.Context, userID string, limit int64) ([]models.InterviewRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cur, err := r.col.Find(ctx, bson.D{{Key: "userId", Value: userID}}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []interviewDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode interviews: %w", err)
	}

	out := make([]models.InterviewRecord, 0, len(docs))
	for i := range docs {
		out = append(out, *docs[i].record())
	}
	return out, nil
}

func (d *interviewDocument) record() *models.InterviewRecord {
	rec := d.InterviewRecord
	rec.ID = d.ID.Hex()
	if rec.Techstack == nil {
		rec.Techstack = []string{}
	}
	return &rec
}
