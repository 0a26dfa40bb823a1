package repositories

import (
	"context"
	"fmt"

	"stockman/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SequenceKey names the counter for an auto-incremented field.
func SequenceKey(collection, field string) string {
	return collection + "." + field
}

// NextSequence atomically increments the counter for collection.field and
// returns the new value. It must run inside the transaction that inserts the
// record using the value: the UPDATE holds the counter row lock until commit,
// so concurrent callers never see the same number.
func NextSequence(ctx context.Context, tx *gorm.DB, collection, field string) (int64, error) {
	key := SequenceKey(collection, field)
	db := tx.WithContext(ctx)

	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.Counter{ID: key}).Error; err != nil {
		return 0, fmt.Errorf("failed to initialise sequence %s: %w", key, err)
	}

	res := db.Model(&models.Counter{}).Where("id = ?", key).UpdateColumn("seq", gorm.Expr("seq + ?", 1))
	if res.Error != nil {
		return 0, fmt.Errorf("failed to increment sequence %s: %w", key, res.Error)
	}

	var counter models.Counter
	if err := db.First(&counter, "id = ?", key).Error; err != nil {
		return 0, fmt.Errorf("failed to read sequence %s: %w", key, err)
	}
	return counter.Seq, nil
}
