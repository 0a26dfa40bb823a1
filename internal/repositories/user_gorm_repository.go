package repositories

import (
	"context"
	"errors"
	"fmt"

	"stockman/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	usersCollection = "users"
	userIDField     = "userID"
)

// updatableUserFields are the only columns an update writes.
var updatableUserFields = []string{
	"Fullname", "Username", "DateOfBirth", "Gender", "Email", "Password", "ImageURL", "Role",
}

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create inserts the user and draws its userID from the users sequence in the
// same transaction.
func (r *GORMUserRepository) Create(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seq, err := NextSequence(ctx, tx, usersCollection, userIDField)
		if err != nil {
			return err
		}
		user.ID = uuid.New().String()
		user.UserID = seq
		return tx.Create(user).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("failed to create user: %w", ErrDuplicate)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetAll retrieves all users ordered by userID.
func (r *GORMUserRepository) GetAll(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Order("user_id").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to get all users: %w", err)
	}
	return users, nil
}

// GetByUsername retrieves the first user with the given username. Usernames are
// not unique; the lowest userID wins.
func (r *GORMUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.first(r.db.WithContext(ctx), "username", username)
}

// GetByUserID retrieves a user by its public numeric ID.
func (r *GORMUserRepository) GetByUserID(ctx context.Context, userID int64) (*models.User, error) {
	return r.first(r.db.WithContext(ctx), "user_id", userID)
}

// Update writes the allow-listed fields of user. userID, the internal ID and
// created_date are never written.
func (r *GORMUserRepository) Update(ctx context.Context, user *models.User) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", user.ID).
		Select(updatableUserFields).
		Updates(user)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("failed to update user %d: %w", user.UserID, ErrDuplicate)
		}
		return fmt.Errorf("failed to update user %d: %w", user.UserID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %d not found for update: %w", user.UserID, ErrNotFound)
	}
	return nil
}

// DeleteByUsername removes the first user with the given username and returns it.
func (r *GORMUserRepository) DeleteByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.deleteFirst(ctx, "username", username)
}

// DeleteByUserID removes the user with the given userID and returns it.
func (r *GORMUserRepository) DeleteByUserID(ctx context.Context, userID int64) (*models.User, error) {
	return r.deleteFirst(ctx, "user_id", userID)
}

// Count returns the number of stored users.
func (r *GORMUserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

// first returns the lowest-userID user whose column equals value.
func (r *GORMUserRepository) first(db *gorm.DB, column string, value any) (*models.User, error) {
	var user models.User
	if err := db.Where(column+" = ?", value).Order("user_id").First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user with %s %v: %w", column, value, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by %s %v: %w", column, value, err)
	}
	return &user, nil
}

func (r *GORMUserRepository) deleteFirst(ctx context.Context, column string, value any) (*models.User, error) {
	var deleted *models.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := r.first(tx, column, value)
		if err != nil {
			return err
		}
		if err := tx.Delete(&models.User{}, "id = ?", user.ID).Error; err != nil {
			return fmt.Errorf("failed to delete user %d: %w", user.UserID, err)
		}
		deleted = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}
