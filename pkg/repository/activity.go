package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/dmaldonado/nestdesk/pkg/crm"
)

// Activities are append-only. There is no update or delete: the history
// of touches on a contact is the product.
type ActivityRepository struct {
	database *gorm.DB
}

func NewActivityRepository(database *gorm.DB) *ActivityRepository {
	return &ActivityRepository{database: database}
}

func (repo *ActivityRepository) Create(ctx context.Context, activity *crm.Activity) error {
	return repo.database.WithContext(ctx).Create(activity).Error
}

// ListForContact returns a contact's activities, newest first.
func (repo *ActivityRepository) ListForContact(ctx context.Context, contactID string) ([]crm.Activity, error) {
	activities := make([]crm.Activity, 0)
	if err := repo.database.WithContext(ctx).
		Where("contact_id = ?", contactID).
		Order("date DESC").
		Find(&activities).Error; err != nil {
		return nil, err
	}
	return activities, nil
}

// CountSince counts a user's activities recorded at or after the cutoff,
// for the nightly stats job.
func (repo *ActivityRepository) CountSince(ctx context.Context, userID string, cutoff time.Time) (int64, error) {
	var count int64
	if err := repo.database.WithContext(ctx).
		Model(&crm.Activity{}).
		Where("user_id = ? AND date >= ?", userID, cutoff).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
