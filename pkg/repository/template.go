package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/dmaldonado/nestdesk/pkg/crm"
	"github.com/dmaldonado/nestdesk/pkg/domain"
)

type TemplateRepository struct {
	database *gorm.DB
}

func NewTemplateRepository(database *gorm.DB) *TemplateRepository {
	return &TemplateRepository{database: database}
}

// ListVisible returns the user's own templates plus any template shared
// with their team. teamID may be nil for solo agents.
func (repo *TemplateRepository) ListVisible(ctx context.Context, userID string, teamID *string) ([]crm.Template, error) {
	query := repo.database.WithContext(ctx).Where("user_id = ?", userID)
	if teamID != nil {
		query = repo.database.WithContext(ctx).
			Where("user_id = ?", userID).
			Or("is_team_shared = ? AND team_id = ?", true, *teamID)
	}

	templates := make([]crm.Template, 0)
	if err := query.Order("created_at ASC").Find(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}

func (repo *TemplateRepository) Create(ctx context.Context, template *crm.Template) error {
	return repo.database.WithContext(ctx).Create(template).Error
}

func (repo *TemplateRepository) Update(ctx context.Context, template *crm.Template) error {
	result := repo.database.WithContext(ctx).
		Model(&crm.Template{}).
		Where("id = ? AND user_id = ?", template.ID, template.UserID).
		Select("*").
		Omit("id", "user_id", "created_at").
		Updates(template)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("template")
	}
	return nil
}

func (repo *TemplateRepository) Delete(ctx context.Context, id, userID string) error {
	result := repo.database.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&crm.Template{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("template")
	}
	return nil
}
