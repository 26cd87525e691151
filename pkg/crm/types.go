package crm

import (
	"strings"
	"time"
)

// Temperature classifies a lead's sales readiness.
type Temperature string

const (
	TemperatureHot  Temperature = "hot"
	TemperatureWarm Temperature = "warm"
	TemperatureCold Temperature = "cold"
)

// Rank returns the sort rank for a temperature (hot first).
func (t Temperature) Rank() int {
	switch t {
	case TemperatureHot:
		return 0
	case TemperatureWarm:
		return 1
	default:
		return 2
	}
}

// Valid reports whether t is a known temperature.
func (t Temperature) Valid() bool {
	return t == TemperatureHot || t == TemperatureWarm || t == TemperatureCold
}

// DealStage is a lead's position in the sales pipeline.
type DealStage string

const (
	StageProspect      DealStage = "prospect"
	StageShowing       DealStage = "showing"
	StageOffer         DealStage = "offer"
	StageUnderContract DealStage = "under_contract"
	StageClosing       DealStage = "closing"
	StageClosed        DealStage = "closed"
	StageLost          DealStage = "lost"
)

// StageInfo describes a pipeline stage for display.
type StageInfo struct {
	ID    DealStage `json:"id"`
	Label string    `json:"label"`
	Color string    `json:"color"`
}

// DealStages is the ordered pipeline. closed is terminal-won, lost is
// terminal-lost and reachable from any stage. No transition rules are
// enforced beyond membership in this list.
var DealStages = []StageInfo{
	{ID: StageProspect, Label: "Prospect", Color: "#64748b"},
	{ID: StageShowing, Label: "Showing", Color: "#3b82f6"},
	{ID: StageOffer, Label: "Offer", Color: "#f59e0b"},
	{ID: StageUnderContract, Label: "Under Contract", Color: "#8b5cf6"},
	{ID: StageClosing, Label: "Closing", Color: "#06b6d4"},
	{ID: StageClosed, Label: "Closed Won", Color: "#10b981"},
	{ID: StageLost, Label: "Lost", Color: "#ef4444"},
}

// ValidStage reports whether s is a known deal stage.
func ValidStage(s DealStage) bool {
	for _, info := range DealStages {
		if info.ID == s {
			return true
		}
	}
	return false
}

// SourceInfo describes a lead source for display.
type SourceInfo struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Color string `json:"color"`
}

// LeadSources is the fixed catalog of lead sources.
var LeadSources = []SourceInfo{
	{Value: "referral", Label: "Referral", Color: "#10b981"},
	{Value: "zillow", Label: "Zillow", Color: "#3b82f6"},
	{Value: "realtor", Label: "Realtor.com", Color: "#ef4444"},
	{Value: "open_house", Label: "Open House", Color: "#f59e0b"},
	{Value: "social_media", Label: "Social Media", Color: "#8b5cf6"},
	{Value: "website", Label: "Website", Color: "#06b6d4"},
	{Value: "cold_call", Label: "Cold Call", Color: "#64748b"},
	{Value: "sign_call", Label: "Sign Call", Color: "#ec4899"},
	{Value: "past_client", Label: "Past Client", Color: "#14b8a6"},
	{Value: "other", Label: "Other", Color: "#94a3b8"},
}

// ActivityType enumerates logged interaction kinds.
type ActivityType string

const (
	ActivityCall    ActivityType = "call"
	ActivityEmail   ActivityType = "email"
	ActivityMeeting ActivityType = "meeting"
	ActivityShowing ActivityType = "showing"
	ActivityNote    ActivityType = "note"
)

// Reaction enumerates a client's reaction to a showing.
type Reaction string

const (
	ReactionLoved Reaction = "loved"
	ReactionMaybe Reaction = "maybe"
	ReactionPass  Reaction = "pass"
)

// Priority enumerates reminder priorities.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// TemplateCategory enumerates message template categories.
type TemplateCategory string

const (
	CategoryFollowUp     TemplateCategory = "follow_up"
	CategoryListing      TemplateCategory = "listing"
	CategoryRelationship TemplateCategory = "relationship"
	CategoryNurture      TemplateCategory = "nurture"
)

// Contact is a lead/client record. JSON tags carry the application's
// camelCase convention; column names follow gorm's snake_case mapping,
// which is exactly the translation the remote adapter owes the schema.
type Contact struct {
	ID     string `gorm:"primaryKey;size:36" json:"id"`
	UserID string `gorm:"size:36;not null;index" json:"-"`

	FirstName string `gorm:"not null" json:"firstName"`
	LastName  string `gorm:"not null" json:"lastName"`
	Email     string `gorm:"index" json:"email"`
	Phone     string `json:"phone"`
	Company   string `json:"company"`

	Temperature      Temperature `gorm:"size:8;not null;default:warm" json:"temperature"`
	PropertyInterest string      `json:"propertyInterest"`
	Budget           string      `json:"budget"`
	LeadSource       string      `gorm:"size:32" json:"leadSource"`
	Notes            string      `json:"notes"`

	DealStage         *DealStage `gorm:"size:20" json:"dealStage"`
	DealValue         *float64   `json:"dealValue"`
	ExpectedCloseDate *time.Time `json:"expectedCloseDate"`

	Birthday        *time.Time `gorm:"type:date" json:"birthday"`
	HomeAnniversary *time.Time `gorm:"type:date" json:"homeAnniversary"`
	CommissionNotes string     `json:"commissionNotes"`

	LastContact time.Time `gorm:"not null;index" json:"lastContact"`
	CreatedAt   time.Time `gorm:"not null" json:"createdAt"`

	Activities []Activity `gorm:"foreignKey:ContactID;constraint:OnDelete:CASCADE" json:"activities"`
	Showings   []Showing  `gorm:"foreignKey:ContactID;constraint:OnDelete:CASCADE" json:"showings"`

	// IsTeamDeal marks contacts owned by a teammate, shown read-only via
	// the shared-pipeline opt-in. Derived at load time, never stored.
	IsTeamDeal bool `gorm:"-" json:"isTeamDeal,omitempty"`
}

// FullName returns the contact's display name.
func (c Contact) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// Activity is an immutable interaction log entry owned by one contact.
type Activity struct {
	ID        string       `gorm:"primaryKey;size:36" json:"id"`
	ContactID string       `gorm:"size:36;not null;index" json:"-"`
	UserID    string       `gorm:"size:36;not null" json:"-"`
	Type      ActivityType `gorm:"size:12;not null" json:"type"`
	Note      string       `json:"note"`
	Date      time.Time    `gorm:"not null" json:"date"`
}

// Showing is a property-viewing record owned by one contact.
type Showing struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	ContactID string    `gorm:"size:36;not null;index" json:"-"`
	UserID    string    `gorm:"size:36;not null" json:"-"`
	Address   string    `gorm:"not null" json:"address"`
	Reaction  Reaction  `gorm:"size:8" json:"reaction"`
	Notes     string    `json:"notes"`
	Date      time.Time `gorm:"column:showing_date;not null" json:"date"`
}

// Reminder is a follow-up task, optionally linked to a contact. The link
// is weak: a nil ContactID, or one pointing at a deleted contact, means
// "no contact", never an error.
type Reminder struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	UserID        string    `gorm:"size:36;not null;index" json:"-"`
	ContactID     *string   `gorm:"size:36;index" json:"contactId"`
	Title         string    `gorm:"not null" json:"title"`
	Description   string    `json:"description"`
	DueDate       time.Time `gorm:"not null;index" json:"dueDate"`
	Priority      Priority  `gorm:"size:8;not null;default:medium" json:"priority"`
	Completed     bool      `gorm:"not null;default:false" json:"completed"`
	AutoGenerated bool      `gorm:"not null;default:false" json:"autoGenerated"`
	CreatedAt     time.Time `json:"-"`
}

// Template is a reusable message body with placeholder tokens.
type Template struct {
	ID           string           `gorm:"primaryKey;size:64" json:"id"`
	UserID       string           `gorm:"size:36;index" json:"-"`
	Name         string           `gorm:"not null" json:"name"`
	Category     TemplateCategory `gorm:"size:16;not null" json:"category"`
	Content      string           `gorm:"type:text;not null" json:"content"`
	IsDefault    bool             `gorm:"-" json:"isDefault,omitempty"`
	IsTeamShared bool             `gorm:"not null;default:false" json:"isTeamShared"`
	TeamID       *string          `gorm:"size:36;index" json:"teamId,omitempty"`
	CreatedAt    time.Time        `json:"-"`
}

// ShowingActivityNote builds the note for the activity synthesized when a
// showing is logged: "Showed <address>" or "Showed <address> - <notes>".
func ShowingActivityNote(address, notes string) string {
	if notes != "" {
		return "Showed " + address + " - " + notes
	}
	return "Showed " + address
}
