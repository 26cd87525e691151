// Package team models brokerage teams: a named group of agents who can
// opt into a shared pipeline, share templates, and hand leads to each
// other.
package team

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmaldonado/nestdesk/pkg/domain"
)

// Team is the group record. SharedPipeline controls whether members see
// each other's contacts.
type Team struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	Name           string    `gorm:"not null" json:"name"`
	OwnerID        string    `gorm:"size:36;not null;index" json:"ownerId"`
	SharedPipeline bool      `gorm:"not null;default:true" json:"sharedPipeline"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Member roles
const (
	RoleOwner = "owner"
	RoleAgent = "agent"
)

// Member links a user to a team.
type Member struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	TeamID    string    `gorm:"size:36;not null;index" json:"teamId"`
	UserID    string    `gorm:"size:36;not null;uniqueIndex" json:"userId"`
	Role      string    `gorm:"size:16;not null;default:agent" json:"role"`
	CreatedAt time.Time `json:"joinedAt"`
}

func (Member) TableName() string { return "team_members" }

type Service struct {
	database *gorm.DB
}

func NewService(database *gorm.DB) *Service {
	return &Service{database: database}
}

// Create starts a team owned by the user, who becomes its first member.
func (s *Service) Create(ctx context.Context, ownerID, name string) (*Team, error) {
	if _, err := s.MembershipFor(ctx, ownerID); err == nil {
		return nil, domain.NewConflictError("already on a team")
	}

	t := &Team{
		ID:             uuid.NewString(),
		Name:           name,
		OwnerID:        ownerID,
		SharedPipeline: true,
		CreatedAt:      time.Now(),
	}
	err := s.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(t).Error; err != nil {
			return err
		}
		return tx.Create(&Member{
			ID:        uuid.NewString(),
			TeamID:    t.ID,
			UserID:    ownerID,
			Role:      RoleOwner,
			CreatedAt: time.Now(),
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// AddMember joins a user to the team. Only the owner may add members.
func (s *Service) AddMember(ctx context.Context, teamID, callerID, userID string) (*Member, error) {
	var t Team
	if err := s.database.WithContext(ctx).Where("id = ?", teamID).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("team")
		}
		return nil, err
	}
	if t.OwnerID != callerID {
		return nil, domain.NewForbiddenError("only the team owner can add members")
	}
	if _, err := s.MembershipFor(ctx, userID); err == nil {
		return nil, domain.NewConflictError("user already on a team")
	}

	m := &Member{
		ID:        uuid.NewString(),
		TeamID:    teamID,
		UserID:    userID,
		Role:      RoleAgent,
		CreatedAt: time.Now(),
	}
	if err := s.database.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

// RemoveMember drops a user from the team. The owner cannot be removed.
func (s *Service) RemoveMember(ctx context.Context, teamID, callerID, userID string) error {
	var t Team
	if err := s.database.WithContext(ctx).Where("id = ?", teamID).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NewNotFoundError("team")
		}
		return err
	}
	if t.OwnerID != callerID && callerID != userID {
		return domain.NewForbiddenError("only the team owner can remove other members")
	}
	if userID == t.OwnerID {
		return domain.NewBadRequestError("team owner cannot leave their own team")
	}

	result := s.database.WithContext(ctx).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		Delete(&Member{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("member")
	}
	return nil
}

// MembershipFor returns the team a user belongs to.
func (s *Service) MembershipFor(ctx context.Context, userID string) (*Team, error) {
	var m Member
	err := s.database.WithContext(ctx).Where("user_id = ?", userID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NewNotFoundError("team membership")
	}
	if err != nil {
		return nil, err
	}

	var t Team
	if err := s.database.WithContext(ctx).Where("id = ?", m.TeamID).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// Members lists the team roster.
func (s *Service) Members(ctx context.Context, teamID string) ([]Member, error) {
	members := make([]Member, 0)
	if err := s.database.WithContext(ctx).
		Where("team_id = ?", teamID).
		Order("created_at ASC").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// SetSharedPipeline toggles pipeline sharing. Owner only.
func (s *Service) SetSharedPipeline(ctx context.Context, teamID, callerID string, shared bool) error {
	result := s.database.WithContext(ctx).
		Model(&Team{}).
		Where("id = ? AND owner_id = ?", teamID, callerID).
		Update("shared_pipeline", shared)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NewForbiddenError("only the team owner can change pipeline sharing")
	}
	return nil
}

// VisibleUserIDs returns the user IDs whose CRM data the user may read:
// their own, plus teammates' when the team shares its pipeline. The
// second return is the team ID when the user is on a team.
func (s *Service) VisibleUserIDs(ctx context.Context, userID string) ([]string, *string, error) {
	t, err := s.MembershipFor(ctx, userID)
	if err != nil {
		if domain.IsNotFound(err) {
			return []string{userID}, nil, nil
		}
		return nil, nil, err
	}

	if !t.SharedPipeline {
		return []string{userID}, &t.ID, nil
	}

	members, err := s.Members(ctx, t.ID)
	if err != nil {
		return nil, nil, err
	}
	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.UserID)
	}
	return ids, &t.ID, nil
}
