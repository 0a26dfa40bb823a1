package repositories

import (
	"context"

	"stockman/internal/models"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	// Create stores a new user, assigning its internal ID and userID.
	Create(ctx context.Context, user *models.User) error
	GetAll(ctx context.Context) ([]models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByUserID(ctx context.Context, userID int64) (*models.User, error)
	// Update persists the mutable fields of an existing user.
	Update(ctx context.Context, user *models.User) error
	DeleteByUsername(ctx context.Context, username string) (*models.User, error)
	DeleteByUserID(ctx context.Context, userID int64) (*models.User, error)
	Count(ctx context.Context) (int64, error)
}
