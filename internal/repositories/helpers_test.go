package repositories_test

import (
	"fmt"
	"testing"
	"time"

	"stockman/internal/database"
	"stockman/internal/logger"
	"stockman/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newTestDB opens a private in-memory SQLite database with the schema applied.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.Open("sqlite", dsn, logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func newUser(username string) *models.User {
	return &models.User{
		Fullname:    "Test " + username,
		Username:    username,
		DateOfBirth: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
		Gender:      "F",
		Email:       username + "@example.com",
		Password:    "hash",
		ImageURL:    models.DefaultImageURL,
		Role:        models.DefaultRole,
	}
}
