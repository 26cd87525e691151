package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/dmaldonado/nestdesk/pkg/crm"
	"github.com/dmaldonado/nestdesk/pkg/domain"
)

type ReminderRepository struct {
	database *gorm.DB
}

func NewReminderRepository(database *gorm.DB) *ReminderRepository {
	return &ReminderRepository{database: database}
}

// ListVisible returns reminders owned by any of the given users, soonest
// due first.
func (repo *ReminderRepository) ListVisible(ctx context.Context, userIDs []string) ([]crm.Reminder, error) {
	reminders := make([]crm.Reminder, 0)
	if err := repo.database.WithContext(ctx).
		Where("user_id IN ?", userIDs).
		Order("due_date ASC").
		Find(&reminders).Error; err != nil {
		return nil, err
	}
	return reminders, nil
}

func (repo *ReminderRepository) Create(ctx context.Context, reminder *crm.Reminder) error {
	return repo.database.WithContext(ctx).Create(reminder).Error
}

func (repo *ReminderRepository) Update(ctx context.Context, reminder *crm.Reminder) error {
	result := repo.database.WithContext(ctx).
		Model(&crm.Reminder{}).
		Where("id = ? AND user_id = ?", reminder.ID, reminder.UserID).
		Select("*").
		Omit("id", "user_id", "created_at").
		Updates(reminder)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("reminder")
	}
	return nil
}

func (repo *ReminderRepository) Delete(ctx context.Context, id, userID string) error {
	result := repo.database.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&crm.Reminder{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("reminder")
	}
	return nil
}

// DeleteForContact removes every reminder that references the contact.
// Runs alongside contact deletion since the link is a weak reference the
// database does not cascade.
func (repo *ReminderRepository) DeleteForContact(ctx context.Context, contactID, userID string) error {
	return repo.database.WithContext(ctx).
		Where("contact_id = ? AND user_id = ?", contactID, userID).
		Delete(&crm.Reminder{}).Error
}

// ListDueBetween returns a user's pending reminders due inside the window,
// for the morning digest.
func (repo *ReminderRepository) ListDueBetween(ctx context.Context, userID string, from, to time.Time) ([]crm.Reminder, error) {
	reminders := make([]crm.Reminder, 0)
	if err := repo.database.WithContext(ctx).
		Where("user_id = ? AND completed = ? AND due_date >= ? AND due_date < ?", userID, false, from, to).
		Order("due_date ASC").
		Find(&reminders).Error; err != nil {
		return nil, err
	}
	return reminders, nil
}

// HasAutoGenerated reports whether an auto reminder with the given title
// already exists for the contact inside the window. Keeps the annual jobs
// from stacking duplicates when they rerun.
func (repo *ReminderRepository) HasAutoGenerated(ctx context.Context, userID, contactID, title string, from, to time.Time) (bool, error) {
	var count int64
	if err := repo.database.WithContext(ctx).
		Model(&crm.Reminder{}).
		Where("user_id = ? AND contact_id = ? AND title = ? AND auto_generated = ? AND due_date >= ? AND due_date < ?",
			userID, contactID, title, true, from, to).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
