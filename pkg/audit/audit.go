// Package audit records who changed what. Writes are best effort: a
// failed audit insert never fails the operation it describes.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmaldonado/nestdesk/pkg/logger"
)

// Entry is one recorded action.
type Entry struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	UserID     string    `gorm:"size:36;not null;index" json:"userId"`
	Action     string    `gorm:"size:32;not null" json:"action"`
	Resource   string    `gorm:"size:32;not null" json:"resource"`
	ResourceID string    `gorm:"size:64" json:"resourceId"`
	Details    string    `gorm:"type:text" json:"details,omitempty"`
	CreatedAt  time.Time `gorm:"index" json:"createdAt"`
}

func (Entry) TableName() string { return "audit_log" }

type Service struct {
	database *gorm.DB
	log      logger.Logger
}

func NewService(database *gorm.DB, log logger.Logger) *Service {
	return &Service{database: database, log: log}
}

// Record appends an entry. Errors are logged and swallowed.
func (s *Service) Record(ctx context.Context, userID, action, resource, resourceID, details string) {
	if s == nil || s.database == nil {
		return
	}
	entry := Entry{
		ID:         uuid.NewString(),
		UserID:     userID,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		Details:    details,
		CreatedAt:  time.Now(),
	}
	if err := s.database.WithContext(ctx).Create(&entry).Error; err != nil {
		s.log.Error("audit write failed", "error", err, "action", action, "resource", resource)
	}
}

// List returns a user's most recent entries, capped at limit.
func (s *Service) List(ctx context.Context, userID string, limit int) ([]Entry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	entries := make([]Entry, 0)
	if err := s.database.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
