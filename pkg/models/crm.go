package models

import "time"

// ContactRequest creates or replaces a contact's editable fields.
type ContactRequest struct {
	FirstName         string     `json:"firstName" validate:"required,min=1"`
	LastName          string     `json:"lastName"`
	Email             string     `json:"email" validate:"omitempty,email"`
	Phone             string     `json:"phone"`
	Company           string     `json:"company"`
	Temperature       string     `json:"temperature" validate:"omitempty,oneof=hot warm cold"`
	PropertyInterest  string     `json:"propertyInterest"`
	Budget            string     `json:"budget"`
	LeadSource        string     `json:"leadSource"`
	Notes             string     `json:"notes"`
	DealStage         *string    `json:"dealStage"`
	DealValue         *float64   `json:"dealValue" validate:"omitempty,gte=0"`
	ExpectedCloseDate *time.Time `json:"expectedCloseDate"`
	Birthday          *time.Time `json:"birthday"`
	HomeAnniversary   *time.Time `json:"homeAnniversary"`
	CommissionNotes   string     `json:"commissionNotes"`
	LastContact       *time.Time `json:"lastContact"`
}

// ActivityRequest records a touch on a contact.
type ActivityRequest struct {
	Type string     `json:"type" validate:"required,oneof=call email meeting showing note"`
	Note string     `json:"note"`
	Date *time.Time `json:"date"`
}

// ShowingRequest records a property showing.
type ShowingRequest struct {
	Address  string     `json:"address" validate:"required,min=1"`
	Reaction string     `json:"reaction" validate:"omitempty,oneof=loved maybe pass"`
	Notes    string     `json:"notes"`
	Date     *time.Time `json:"date"`
}

// StageRequest moves a contact to a deal stage; null clears the stage.
type StageRequest struct {
	DealStage *string `json:"dealStage" validate:"omitempty,oneof=prospect showing offer under_contract closing closed lost"`
}

// ReminderRequest creates a reminder.
type ReminderRequest struct {
	ContactID   *string    `json:"contactId"`
	Title       string     `json:"title" validate:"required,min=1"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"dueDate" validate:"required"`
	Priority    string     `json:"priority" validate:"omitempty,oneof=high medium low"`
}

// ReminderUpdateRequest edits a reminder.
type ReminderUpdateRequest struct {
	ContactID   *string    `json:"contactId"`
	Title       string     `json:"title" validate:"required,min=1"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"dueDate"`
	Priority    string     `json:"priority" validate:"omitempty,oneof=high medium low"`
	Completed   bool       `json:"completed"`
}

// TemplateRequest creates or edits a message template.
type TemplateRequest struct {
	Name         string `json:"name" validate:"required,min=1"`
	Category     string `json:"category" validate:"required,oneof=follow_up listing relationship nurture"`
	Content      string `json:"content" validate:"required,min=1"`
	IsTeamShared bool   `json:"isTeamShared"`
}

// FillTemplateRequest previews a template against a contact.
type FillTemplateRequest struct {
	ContactID string `json:"contactId"`
}

// SendTemplateRequest emails a filled template to a contact.
type SendTemplateRequest struct {
	ContactID string `json:"contactId" validate:"required"`
	Subject   string `json:"subject" validate:"required,min=1"`
}

// SearchRequest sets the contact search query.
type SearchRequest struct {
	Query string `json:"query"`
}

// FilterRequest sets the temperature filter.
type FilterRequest struct {
	Temperature string `json:"temperature" validate:"required,oneof=all hot warm cold"`
}
