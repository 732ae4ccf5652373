package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/staybook/hotel-booking-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrUserNotFound is returned when no account matches the lookup
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailTaken is returned when the email unique index rejects an insert
	ErrEmailTaken = errors.New("email must be unique")
)

// UserRepository handles account documents in the users collection
type UserRepository struct {
	schema *models.Schema
	col    *mongo.Collection
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *mongo.Database) *UserRepository {
	schema := models.UserSchema()
	return &UserRepository{
		schema: schema,
		col:    db.Collection(schema.Collection),
	}
}

// Create validates the account against the User schema and inserts it.
// On success user.ID and any defaulted fields are filled in.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	doc, err := r.schema.Prepare(user)
	if err != nil {
		return err
	}

	result, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		user.ID = id
	}
	if role, ok := doc["role"].(string); ok {
		user.Role = role
	}
	if verified, ok := doc["isVeified"].(bool); ok {
		user.IsVerified = verified
	}

	return nil
}

// GetByID retrieves an account by its hex object id
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": objID})
}

// GetByEmail retrieves an account by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// GetByUsername retrieves an account by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	err := r.col.FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// MarkVerified sets the verified flag on an account
func (r *UserRepository) MarkVerified(ctx context.Context, id primitive.ObjectID) error {
	return r.set(ctx, id, bson.M{"isVeified": true})
}

// SetCode replaces the stored verification code and clears its failed attempts
func (r *UserRepository) SetCode(ctx context.Context, id primitive.ObjectID, code string) error {
	return r.set(ctx, id, bson.M{"Code": code, "codeAttempts": 0})
}

// IncrementCodeAttempts records one wrong verification code
func (r *UserRepository) IncrementCodeAttempts(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.col.UpdateByID(ctx, id, bson.M{"$inc": bson.M{"codeAttempts": 1}})
	if err != nil {
		return fmt.Errorf("failed to increment code attempts: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

// UpdateRole replaces the account role
func (r *UserRepository) UpdateRole(ctx context.Context, id primitive.ObjectID, role string) error {
	return r.set(ctx, id, bson.M{"role": role})
}

func (r *UserRepository) set(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	result, err := r.col.UpdateByID(ctx, id, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}
