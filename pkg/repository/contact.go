// Package repository implements the relational persistence layer over
// GORM. Every query carries an explicit owner predicate so one agent can
// never read another agent's rows, team visibility being the one widening
// callers opt into by passing multiple user IDs.
package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/dmaldonado/nestdesk/pkg/crm"
	"github.com/dmaldonado/nestdesk/pkg/domain"
)

type ContactRepository struct {
	database *gorm.DB
}

func NewContactRepository(database *gorm.DB) *ContactRepository {
	return &ContactRepository{database: database}
}

// ListVisible returns the contacts owned by any of the given users,
// newest outreach first, with activities and showings attached.
func (repo *ContactRepository) ListVisible(ctx context.Context, userIDs []string) ([]crm.Contact, error) {
	contacts := make([]crm.Contact, 0)
	if err := repo.database.WithContext(ctx).
		Where("user_id IN ?", userIDs).
		Order("last_contact DESC").
		Preload("Activities", func(db *gorm.DB) *gorm.DB {
			return db.Order("date DESC")
		}).
		Preload("Showings", func(db *gorm.DB) *gorm.DB {
			return db.Order("showing_date DESC")
		}).
		Find(&contacts).Error; err != nil {
		return nil, err
	}
	return contacts, nil
}

// Get fetches one contact visible to the given users.
func (repo *ContactRepository) Get(ctx context.Context, id string, userIDs []string) (*crm.Contact, error) {
	var contact crm.Contact
	err := repo.database.WithContext(ctx).
		Where("id = ? AND user_id IN ?", id, userIDs).
		Preload("Activities").
		Preload("Showings").
		First(&contact).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NewNotFoundError("contact")
	}
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

func (repo *ContactRepository) Create(ctx context.Context, contact *crm.Contact) error {
	return repo.database.WithContext(ctx).Create(contact).Error
}

// Update rewrites the full row. Zero values are written too, so callers
// must pass the complete contact, not a patch.
func (repo *ContactRepository) Update(ctx context.Context, contact *crm.Contact) error {
	result := repo.database.WithContext(ctx).
		Model(&crm.Contact{}).
		Where("id = ? AND user_id = ?", contact.ID, contact.UserID).
		Select("*").
		Omit("id", "user_id", "created_at").
		Updates(contact)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("contact")
	}
	return nil
}

// Delete removes a contact. Activities and showings go with it through
// the foreign key cascade; linked reminders are the caller's problem.
func (repo *ContactRepository) Delete(ctx context.Context, id, userID string) error {
	result := repo.database.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&crm.Contact{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("contact")
	}
	return nil
}

// Transfer reassigns a contact to another agent, the handoff path for
// teams. Activities, showings and reminders move with it.
func (repo *ContactRepository) Transfer(ctx context.Context, id, fromUserID, toUserID string) error {
	return repo.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&crm.Contact{}).
			Where("id = ? AND user_id = ?", id, fromUserID).
			Update("user_id", toUserID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.NewNotFoundError("contact")
		}
		if err := tx.Model(&crm.Activity{}).
			Where("contact_id = ?", id).
			Update("user_id", toUserID).Error; err != nil {
			return err
		}
		if err := tx.Model(&crm.Showing{}).
			Where("contact_id = ?", id).
			Update("user_id", toUserID).Error; err != nil {
			return err
		}
		return tx.Model(&crm.Reminder{}).
			Where("contact_id = ? AND user_id = ?", id, fromUserID).
			Update("user_id", toUserID).Error
	})
}

// CountByUser reports how many contacts a user owns, used for tier limits.
func (repo *ContactRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	if err := repo.database.WithContext(ctx).
		Model(&crm.Contact{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ListWithAnnualDate returns a user's contacts whose birthday or home
// anniversary falls on the given month and day, for the morning reminder
// job.
func (repo *ContactRepository) ListWithAnnualDate(ctx context.Context, userID string, month, day int) ([]crm.Contact, error) {
	monthDay := fmt.Sprintf("%02d-%02d", month, day)
	contacts := make([]crm.Contact, 0)
	if err := repo.database.WithContext(ctx).
		Where("user_id = ?", userID).
		Where(repo.database.
			Where(monthDayExpr(repo.database, "birthday"), monthDay).
			Or(monthDayExpr(repo.database, "home_anniversary"), monthDay)).
		Find(&contacts).Error; err != nil {
		return nil, err
	}
	return contacts, nil
}

func monthDayExpr(database *gorm.DB, column string) string {
	if database.Dialector.Name() == "sqlite" {
		return "strftime('%m-%d', " + column + ") = ?"
	}
	return "to_char(" + column + ", 'MM-DD') = ?"
}
