package repositories

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shashiranjanraj/deviceexpress/app/models"
	"github.com/shashiranjanraj/deviceexpress/pkg/database"
	"github.com/shashiranjanraj/deviceexpress/pkg/metrics"
)

// UserRepository handles store operations for users and reviews.
type UserRepository struct {
	store *database.Store
}

func NewUserRepository(store *database.Store) *UserRepository {
	return &UserRepository{store: store}
}

// FindByEmail looks up a user by their email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	defer metrics.ObserveStoreOp("users", "findOne", time.Now())

	var user models.User
	err := r.store.Users.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return user, database.ErrNotFound
	}
	if err != nil {
		return user, fmt.Errorf("repositories: find user %s: %w", email, err)
	}
	return user, nil
}

// RoleByEmail returns the stored role for email. It satisfies the role gate's
// RoleSource so every gated request sees the current role, never a cached one.
func (r *UserRepository) RoleByEmail(ctx context.Context, email string) (string, error) {
	user, err := r.FindByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	return user.Role, nil
}

// Create inserts a new user. A duplicate email maps to ErrDuplicate so the
// registration flow can fall back to login.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	defer metrics.ObserveStoreOp("users", "insertOne", time.Now())

	user.CreatedAt = time.Now().UTC()
	res, err := r.store.Users.InsertOne(ctx, user)
	if err != nil {
		if database.IsDup(err) {
			return database.ErrDuplicate
		}
		return fmt.Errorf("repositories: create user: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		user.ID = oid
	}
	return nil
}

// ListByRole returns all users holding the given role literal.
func (r *UserRepository) ListByRole(ctx context.Context, role string) ([]models.User, error) {
	defer metrics.ObserveStoreOp("users", "find", time.Now())

	cur, err := r.store.Users.Find(ctx, bson.M{"role": role})
	if err != nil {
		return nil, fmt.Errorf("repositories: list users by role %s: %w", role, err)
	}
	users := []models.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("repositories: decode users: %w", err)
	}
	return users, nil
}

// DeleteByID removes a user. A non-existent id is ErrNotFound, never a no-op.
func (r *UserRepository) DeleteByID(ctx context.Context, id string) error {
	defer metrics.ObserveStoreOp("users", "deleteOne", time.Now())

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return database.ErrNotFound
	}
	res, err := r.store.Users.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("repositories: delete user %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return database.ErrNotFound
	}
	return nil
}

// SetVerified flips the verified flag on an existing user. Update-if-exists:
// a filter that matches nothing is ErrNotFound, no document is created.
func (r *UserRepository) SetVerified(ctx context.Context, email string, verified bool) error {
	defer metrics.ObserveStoreOp("users", "updateOne", time.Now())

	res, err := r.store.Users.UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{"$set": bson.M{"verified": verified}},
	)
	if err != nil {
		return fmt.Errorf("repositories: verify user %s: %w", email, err)
	}
	if res.MatchedCount == 0 {
		return database.ErrNotFound
	}
	return nil
}

// ListReviews returns all site reviews, newest first.
func (r *UserRepository) ListReviews(ctx context.Context) ([]models.Review, error) {
	defer metrics.ObserveStoreOp("reviews", "find", time.Now())

	cur, err := r.store.Reviews.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("repositories: list reviews: %w", err)
	}
	reviews := []models.Review{}
	if err := cur.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("repositories: decode reviews: %w", err)
	}
	return reviews, nil
}

// AddReview stores a new review.
func (r *UserRepository) AddReview(ctx context.Context, review *models.Review) error {
	defer metrics.ObserveStoreOp("reviews", "insertOne", time.Now())

	review.CreatedAt = time.Now().UTC()
	if _, err := r.store.Reviews.InsertOne(ctx, review); err != nil {
		return fmt.Errorf("repositories: add review: %w", err)
	}
	return nil
}
