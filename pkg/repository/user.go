package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/dmaldonado/nestdesk/pkg/crm"
	"github.com/dmaldonado/nestdesk/pkg/domain"
)

type UserRepository struct {
	database *gorm.DB
}

func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{database: database}
}

func (repo *UserRepository) Create(ctx context.Context, user *crm.User) error {
	err := repo.database.WithContext(ctx).Create(user).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.NewConflictError("email already registered")
	}
	return err
}

func (repo *UserRepository) FindByID(ctx context.Context, id string) (*crm.User, error) {
	var user crm.User
	err := repo.database.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NewNotFoundError("user")
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (repo *UserRepository) FindByEmail(ctx context.Context, email string) (*crm.User, error) {
	var user crm.User
	err := repo.database.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NewNotFoundError("user")
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (repo *UserRepository) FindByStripeCustomer(ctx context.Context, customerID string) (*crm.User, error) {
	var user crm.User
	err := repo.database.WithContext(ctx).Where("stripe_customer_id = ?", customerID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NewNotFoundError("user")
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateTier sets the subscription tier, and the Stripe customer ID when
// one is supplied.
func (repo *UserRepository) UpdateTier(ctx context.Context, userID, tier, stripeCustomerID string) error {
	updates := map[string]interface{}{"subscription_tier": tier}
	if stripeCustomerID != "" {
		updates["stripe_customer_id"] = stripeCustomerID
	}
	result := repo.database.WithContext(ctx).
		Model(&crm.User{}).
		Where("id = ?", userID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("user")
	}
	return nil
}

// ListAll streams every user, for the scheduled jobs that fan out per
// account.
func (repo *UserRepository) ListAll(ctx context.Context) ([]crm.User, error) {
	users := make([]crm.User, 0)
	if err := repo.database.WithContext(ctx).Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
