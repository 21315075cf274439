package persistence

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// updateVersioned writes every column of model when the stored row still has
// expectedVersion. model must carry its primary key and the bumped version.
func updateVersioned(ctx context.Context, db *gorm.DB, model any, expectedVersion int, entity string) error {
	result := conn(ctx, db).
		Model(model).
		Where("version = ?", expectedVersion).
		Select("*").
		Omit("id", "created_at", clause.Associations).
		Updates(model)
	return checkLocked(result, entity)
}

// stamp returns the current UTC time used for updated_at
func stamp() time.Time {
	return time.Now().UTC()
}
