package crm

import (
	"strings"
	"time"
)

// Subscription tiers
const (
	TierFree = "free"
	TierSolo = "solo"
	TierTeam = "team"
)

// User is an authenticated agent account.
type User struct {
	ID               string    `gorm:"primaryKey;size:36" json:"id"`
	Email            string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash     string    `gorm:"not null" json:"-"`
	Name             string    `gorm:"not null" json:"name"`
	SubscriptionTier string    `gorm:"size:16;not null;default:free" json:"subscriptionTier"`
	StripeCustomerID string    `gorm:"size:64" json:"-"`
	Role             string    `gorm:"size:16;not null;default:agent" json:"role"`
	CreatedAt        time.Time `json:"createdAt"`
}

// AgentFirstName returns the first word of the user's display name, the
// value substituted for {agentName} in templates. Falls back to "Agent".
func (u *User) AgentFirstName() string {
	if u == nil {
		return "Agent"
	}
	fields := strings.Fields(u.Name)
	if len(fields) == 0 {
		return "Agent"
	}
	return fields[0]
}
