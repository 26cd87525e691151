package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/dmaldonado/nestdesk/pkg/crm"
	"github.com/dmaldonado/nestdesk/pkg/domain"
)

type ShowingRepository struct {
	database *gorm.DB
}

func NewShowingRepository(database *gorm.DB) *ShowingRepository {
	return &ShowingRepository{database: database}
}

func (repo *ShowingRepository) Create(ctx context.Context, showing *crm.Showing) error {
	return repo.database.WithContext(ctx).Create(showing).Error
}

// ListForContact returns a contact's showings, newest first.
func (repo *ShowingRepository) ListForContact(ctx context.Context, contactID string) ([]crm.Showing, error) {
	showings := make([]crm.Showing, 0)
	if err := repo.database.WithContext(ctx).
		Where("contact_id = ?", contactID).
		Order("showing_date DESC").
		Find(&showings).Error; err != nil {
		return nil, err
	}
	return showings, nil
}

func (repo *ShowingRepository) Delete(ctx context.Context, id, userID string) error {
	result := repo.database.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&crm.Showing{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("showing")
	}
	return nil
}
