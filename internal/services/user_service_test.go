package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"stockman/internal/apperror"
	"stockman/internal/logger"
	"stockman/internal/models"
	"stockman/internal/repositories"
	"stockman/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func validCreateRequest() models.CreateUserRequest {
	return models.CreateUserRequest{
		Fullname:    "Alice A",
		Username:    "alice",
		DateOfBirth: "2000-01-01",
		Gender:      "F",
		Email:       "a@x.com",
		Password:    "p1",
	}
}

func storedUser() *models.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte("p1"), bcrypt.MinCost)
	return &models.User{
		ID:          "0b9a3c4e-8a55-4a39-9a2e-1f0f2b0c6d11",
		UserID:      1,
		Fullname:    "Alice A",
		Username:    "alice",
		DateOfBirth: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
		Gender:      "F",
		Email:       "a@x.com",
		Password:    string(hash),
		ImageURL:    models.DefaultImageURL,
		Role:        models.DefaultRole,
		CreatedDate: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestUserService_Create(t *testing.T) {
	mockRepo := new(MockUserRepository)
	publisher := new(MockPublisher)
	service := services.NewUserService(mockRepo, publisher, logger.Discard())
	ctx := context.Background()

	var saved *models.User
	mockRepo.On("Create", ctx, mock.AnythingOfType("*models.User")).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).(*models.User)
			saved.ID = "generated"
			saved.UserID = 1
		}).
		Return(nil).Once()
	publisher.On("PublishEvent", services.EventUserCreated, mock.Anything).Return(nil).Once()

	view, err := service.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	assert.Equal(t, int64(1), view.UserID)
	assert.Equal(t, "generated", view.ID)
	assert.Equal(t, models.DefaultImageURL, view.ImageURL)
	assert.Equal(t, models.DefaultRole, view.Role)
	assert.Equal(t, time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), view.DateOfBirth)

	require.NotNil(t, saved)
	assert.NotEqual(t, "p1", saved.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(saved.Password), []byte("p1")))

	body := publisher.Calls[0].Arguments.Get(1).([]byte)
	var event map[string]any
	require.NoError(t, json.Unmarshal(body, &event))
	assert.Equal(t, services.EventUserCreated, event["event"])
	assert.Equal(t, float64(1), event["userID"])

	mockRepo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestUserService_CreateValidation(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := services.NewUserService(mockRepo, nil, logger.Discard())
	ctx := context.Background()

	missing := validCreateRequest()
	missing.Email = ""
	missing.Gender = ""
	_, err := service.Create(ctx, missing)
	require.Error(t, err)
	var appErr *apperror.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperror.Validation, appErr.Kind)
	assert.Contains(t, appErr.Fields, "email")
	assert.Contains(t, appErr.Fields, "gender")

	badDate := validCreateRequest()
	badDate.DateOfBirth = "yesterday"
	_, err = service.Create(ctx, badDate)
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperror.Validation, appErr.Kind)
	assert.Contains(t, appErr.Fields, "dateOfBirth")

	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUserService_CreateDuplicate(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := services.NewUserService(mockRepo, nil, logger.Discard())
	ctx := context.Background()

	mockRepo.On("Create", ctx, mock.AnythingOfType("*models.User")).
		Return(fmt.Errorf("failed to create user: %w", repositories.ErrDuplicate)).Once()

	_, err := service.Create(ctx, validCreateRequest())
	assert.True(t, apperror.Is(err, apperror.Uniqueness))
}

func TestUserService_ListAndGet(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := services.NewUserService(mockRepo, nil, logger.Discard())
	ctx := context.Background()

	user := storedUser()
	mockRepo.On("GetAll", ctx).Return([]models.User{*user}, nil).Once()
	mockRepo.On("GetByUsername", ctx, "alice").Return(user, nil).Once()
	mockRepo.On("GetByUserID", ctx, int64(1)).Return(user, nil).Once()
	mockRepo.On("GetByUserID", ctx, int64(2)).Return(nil, fmt.Errorf("x: %w", repositories.ErrNotFound)).Once()

	list, err := service.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	got, err := service.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	got, err = service.GetByUserID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	_, err = service.GetByUserID(ctx, 2)
	assert.True(t, apperror.Is(err, apperror.NotFound))

	raw, err := json.Marshal(list)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "password")

	mockRepo.AssertExpectations(t)
}

func TestUserService_ListStoreFailure(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := services.NewUserService(mockRepo, nil, logger.Discard())
	ctx := context.Background()

	mockRepo.On("GetAll", ctx).Return(nil, errors.New("connection reset")).Once()
	_, err := service.List(ctx)
	assert.True(t, apperror.Is(err, apperror.StoreUnavailable))
}

func TestUserService_UpdateAppliesAllowListOnly(t *testing.T) {
	mockRepo := new(MockUserRepository)
	publisher := new(MockPublisher)
	service := services.NewUserService(mockRepo, publisher, logger.Discard())
	ctx := context.Background()

	user := storedUser()
	originalID, originalCreated := user.ID, user.CreatedDate
	oldHash := user.Password

	var req models.UpdateUserRequest
	payload := `{"fullname":"Alice B","password":"p2","userID":99,"_id":"evil","created_date":"1990-01-01T00:00:00Z"}`
	require.NoError(t, json.Unmarshal([]byte(payload), &req))

	mockRepo.On("GetByUserID", ctx, int64(1)).Return(user, nil).Once()
	mockRepo.On("Update", ctx, mock.MatchedBy(func(u *models.User) bool {
		return u.ID == originalID && u.UserID == 1 && u.CreatedDate.Equal(originalCreated) && u.Fullname == "Alice B"
	})).Return(nil).Once()
	publisher.On("PublishEvent", services.EventUserUpdated, mock.Anything).Return(nil).Once()

	view, err := service.UpdateByUserID(ctx, 1, req)
	require.NoError(t, err)
	assert.Equal(t, "Alice B", view.Fullname)
	assert.Equal(t, int64(1), view.UserID)
	assert.Equal(t, originalID, view.ID)
	assert.NotEqual(t, oldHash, user.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("p2")))

	mockRepo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestUserService_UpdateRejectsInvalidMerge(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := services.NewUserService(mockRepo, nil, logger.Discard())
	ctx := context.Background()

	empty := ""
	mockRepo.On("GetByUserID", ctx, int64(1)).Return(storedUser(), nil).Once()
	_, err := service.UpdateByUserID(ctx, 1, models.UpdateUserRequest{Username: &empty})
	var appErr *apperror.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperror.Validation, appErr.Kind)
	assert.Contains(t, appErr.Fields, "username")

	badDate := "31/12/2000"
	mockRepo.On("GetByUserID", ctx, int64(1)).Return(storedUser(), nil).Once()
	_, err = service.UpdateByUserID(ctx, 1, models.UpdateUserRequest{DateOfBirth: &badDate})
	assert.True(t, apperror.Is(err, apperror.Validation))

	mockRepo.On("GetByUserID", ctx, int64(5)).Return(nil, fmt.Errorf("x: %w", repositories.ErrNotFound)).Once()
	_, err = service.UpdateByUserID(ctx, 5, models.UpdateUserRequest{})
	assert.True(t, apperror.Is(err, apperror.NotFound))

	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUserService_Delete(t *testing.T) {
	mockRepo := new(MockUserRepository)
	publisher := new(MockPublisher)
	service := services.NewUserService(mockRepo, publisher, logger.Discard())
	ctx := context.Background()

	user := storedUser()
	mockRepo.On("DeleteByUserID", ctx, int64(1)).Return(user, nil).Once()
	mockRepo.On("DeleteByUsername", ctx, "ghost").Return(nil, fmt.Errorf("x: %w", repositories.ErrNotFound)).Once()
	publisher.On("PublishEvent", services.EventUserDeleted, mock.Anything).Return(errors.New("broker down")).Once()

	view, err := service.DeleteByUserID(ctx, 1)
	require.NoError(t, err, "publish failures must not fail the delete")
	assert.Equal(t, "alice", view.Username)

	_, err = service.DeleteByUsername(ctx, "ghost")
	assert.True(t, apperror.Is(err, apperror.NotFound))

	mockRepo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestParseUserID(t *testing.T) {
	id, err := services.ParseUserID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, raw := range []string{"abc", "0", "-3", "1.5", ""} {
		_, err := services.ParseUserID(raw)
		assert.True(t, apperror.Is(err, apperror.Validation), raw)
	}
}
