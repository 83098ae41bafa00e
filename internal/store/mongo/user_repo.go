package mongo

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"prepwise/internal/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
	ErrEmailTaken   = errors.New("email already in use")
)

// UserRepo is the user directory, one document per identity provider uid.
type UserRepo struct{ col *mongo.Collection }

func NewUserRepo(col *mongo.Collection) *UserRepo {
	return &UserRepo{col: col}
}

// EnsureIndexes adds the unique email index.
func (r *UserRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.col.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create inserts the user; duplicate ids and emails map to ErrUserExists and ErrEmailTaken.
func (r *UserRepo) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		return errors.New("user id required")
	}
	_, err := r.col.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		if strings.Contains(err.Error(), "email") {
			return ErrEmailTaken
		}
		return ErrUserExists
	}
	return err
}
