package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"stockman/internal/apperror"
	"stockman/internal/models"
	"stockman/internal/repositories"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

// UserService handles business logic related to users.
type UserService struct {
	repo     repositories.UserRepository
	events   EventPublisher
	validate *validator.Validate
	log      *slog.Logger
}

// NewUserService creates a new UserService. events may be nil.
func NewUserService(repo repositories.UserRepository, events EventPublisher, log *slog.Logger) *UserService {
	return &UserService{
		repo:     repo,
		events:   events,
		validate: NewValidator(),
		log:      log,
	}
}

// ParseUserID converts a path segment to a userID.
func ParseUserID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.NewValidation("Validation failed", map[string]string{
			"id": fmt.Sprintf("'%s' is not a valid userID", raw),
		})
	}
	return id, nil
}

// Create validates and stores a new user.
func (s *UserService) Create(ctx context.Context, req models.CreateUserRequest) (*models.UserView, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}
	dob, err := parseDate("dateOfBirth", req.DateOfBirth)
	if err != nil {
		return nil, err
	}
	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Fullname:    req.Fullname,
		Username:    req.Username,
		DateOfBirth: dob,
		Gender:      req.Gender,
		Email:       req.Email,
		Password:    hash,
		ImageURL:    req.ImageURL,
		Role:        req.Role,
	}
	if user.ImageURL == "" {
		user.ImageURL = models.DefaultImageURL
	}
	if user.Role == "" {
		user.Role = models.DefaultRole
	}
	if err := s.validate.Struct(user); err != nil {
		return nil, validationError(err)
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, storeError(err, "Could not create user")
	}

	s.log.Info("user created", "userID", user.UserID, "username", user.Username)
	publish(s.events, s.log, EventUserCreated, map[string]any{"userID": user.UserID, "username": user.Username})

	view := user.View()
	return &view, nil
}

// List returns every user.
func (s *UserService) List(ctx context.Context) ([]models.UserView, error) {
	users, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, storeError(err, "Could not retrieve users")
	}
	return models.Views(users), nil
}

// GetByUsername returns the first user with the given username.
func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.UserView, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, storeError(err, "Could not retrieve user")
	}
	view := user.View()
	return &view, nil
}

// GetByUserID returns the user with the given userID.
func (s *UserService) GetByUserID(ctx context.Context, userID int64) (*models.UserView, error) {
	user, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, storeError(err, "Could not retrieve user")
	}
	view := user.View()
	return &view, nil
}

// UpdateByUserID applies the allow-listed fields present in req to the user and
// re-validates the whole record before saving.
func (s *UserService) UpdateByUserID(ctx context.Context, userID int64, req models.UpdateUserRequest) (*models.UserView, error) {
	user, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, storeError(err, "Could not retrieve user")
	}

	if req.Fullname != nil {
		user.Fullname = *req.Fullname
	}
	if req.Username != nil {
		user.Username = *req.Username
	}
	if req.DateOfBirth != nil {
		dob, err := parseDate("dateOfBirth", *req.DateOfBirth)
		if err != nil {
			return nil, err
		}
		user.DateOfBirth = dob
	}
	if req.Gender != nil {
		user.Gender = *req.Gender
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.ImageURL != nil {
		user.ImageURL = *req.ImageURL
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.Password != nil {
		if *req.Password == "" {
			return nil, apperror.NewValidation("Validation failed", map[string]string{
				"password": "Field 'password' failed on the 'required' tag",
			})
		}
		hash, err := hashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hash
	}

	if err := s.validate.Struct(user); err != nil {
		return nil, validationError(err)
	}
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, storeError(err, "Could not update user")
	}

	s.log.Info("user updated", "userID", user.UserID)
	publish(s.events, s.log, EventUserUpdated, map[string]any{"userID": user.UserID, "username": user.Username})

	view := user.View()
	return &view, nil
}

// DeleteByUsername removes the first user with the given username.
func (s *UserService) DeleteByUsername(ctx context.Context, username string) (*models.UserView, error) {
	user, err := s.repo.DeleteByUsername(ctx, username)
	return s.deleted(user, err)
}

// DeleteByUserID removes the user with the given userID.
func (s *UserService) DeleteByUserID(ctx context.Context, userID int64) (*models.UserView, error) {
	user, err := s.repo.DeleteByUserID(ctx, userID)
	return s.deleted(user, err)
}

func (s *UserService) deleted(user *models.User, err error) (*models.UserView, error) {
	if err != nil {
		return nil, storeError(err, "Could not delete user")
	}
	s.log.Info("user deleted", "userID", user.UserID, "username", user.Username)
	publish(s.events, s.log, EventUserDeleted, map[string]any{"userID": user.UserID, "username": user.Username})

	view := user.View()
	return &view, nil
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", apperror.NewValidation("Validation failed", map[string]string{
				"password": "Field 'password' must be at most 72 bytes",
			})
		}
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// storeError maps repository failures onto app errors.
func storeError(err error, message string) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return apperror.Wrap(apperror.NotFound, "User not found", err)
	case errors.Is(err, repositories.ErrDuplicate):
		return apperror.Wrap(apperror.Uniqueness, "User already exists", err)
	default:
		return apperror.Wrap(apperror.StoreUnavailable, message, err)
	}
}
