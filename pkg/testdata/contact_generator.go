// Package testdata generates realistic CRM contacts for demos and seeds.
package testdata

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmaldonado/nestdesk/pkg/crm"
)

// ContactGeneratorConfig configures contact generation parameters
type ContactGeneratorConfig struct {
	UserID          string
	Count           int
	HotChance       float64 // 0.0-1.0 (probability of a hot lead)
	ColdChance      float64
	DealChance      float64 // probability of an active deal
	OccasionChance  float64 // probability of birthday/anniversary on file
	ActivityPerLead int     // max activities per contact
}

// Neighborhood names used for property interests
var neighborhoods = []string{
	"Riverside", "Oak Hill", "Maple Grove", "Downtown", "Lakeview",
	"Willow Park", "Sunset Ridge", "Harbor District", "Elm Heights", "Brookside",
}

var propertyTypes = []string{
	"3BR house", "2BR condo", "townhouse", "starter home", "4BR colonial",
	"loft", "duplex", "ranch house", "waterfront property",
}

var budgetBands = []string{
	"$250k-$350k", "$350k-$450k", "$450k-$600k", "$600k-$800k", "$800k+",
}

var activityNotes = map[crm.ActivityType][]string{
	crm.ActivityCall:    {"Left voicemail", "Discussed timeline", "Talked financing options", "Confirmed pre-approval"},
	crm.ActivityEmail:   {"Sent new listings", "Followed up on open house", "Shared market report"},
	crm.ActivityMeeting: {"Buyer consultation", "Listing presentation", "Coffee catch-up"},
	crm.ActivityNote:    {"Prefers quiet streets", "Relocating for work", "Wants to close before school year"},
}

// GeneratePropertyInterest creates a realistic property interest line
func GeneratePropertyInterest() string {
	return fmt.Sprintf("%s in %s",
		propertyTypes[rand.Intn(len(propertyTypes))],
		neighborhoods[rand.Intn(len(neighborhoods))])
}

// GenerateContact creates a single contact with realistic data
func GenerateContact(config ContactGeneratorConfig) crm.Contact {
	firstName := gofakeit.FirstName()
	lastName := gofakeit.LastName()

	temperature := crm.TemperatureWarm
	roll := rand.Float64()
	if roll < config.HotChance {
		temperature = crm.TemperatureHot
	} else if roll < config.HotChance+config.ColdChance {
		temperature = crm.TemperatureCold
	}

	created := gofakeit.DateRange(time.Now().AddDate(0, -18, 0), time.Now().AddDate(0, -1, 0))
	lastContact := gofakeit.DateRange(created, time.Now())

	contact := crm.Contact{
		ID:               uuid.NewString(),
		UserID:           config.UserID,
		FirstName:        firstName,
		LastName:         lastName,
		Email:            strings.ToLower(fmt.Sprintf("%s.%s@%s", firstName, lastName, gofakeit.DomainName())),
		Phone:            gofakeit.Phone(),
		Temperature:      temperature,
		PropertyInterest: GeneratePropertyInterest(),
		Budget:           budgetBands[rand.Intn(len(budgetBands))],
		LeadSource:       crm.LeadSources[rand.Intn(len(crm.LeadSources))].Value,
		LastContact:      lastContact,
		CreatedAt:        created,
	}

	if rand.Float64() < config.DealChance {
		stage := crm.DealStages[rand.Intn(len(crm.DealStages))].ID
		value := float64(200000 + rand.Intn(700)*1000)
		closeDate := time.Now().AddDate(0, 0, rand.Intn(90))
		contact.DealStage = &stage
		contact.DealValue = &value
		contact.ExpectedCloseDate = &closeDate
	}

	if rand.Float64() < config.OccasionChance {
		birthday := gofakeit.DateRange(
			time.Date(1950, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2000, 12, 31, 0, 0, 0, 0, time.UTC))
		contact.Birthday = &birthday
	}
	if rand.Float64() < config.OccasionChance {
		anniversary := gofakeit.DateRange(time.Now().AddDate(-10, 0, 0), time.Now().AddDate(-1, 0, 0))
		contact.HomeAnniversary = &anniversary
	}

	for i := 0; i < rand.Intn(config.ActivityPerLead+1); i++ {
		kinds := []crm.ActivityType{crm.ActivityCall, crm.ActivityEmail, crm.ActivityMeeting, crm.ActivityNote}
		kind := kinds[rand.Intn(len(kinds))]
		notes := activityNotes[kind]
		contact.Activities = append(contact.Activities, crm.Activity{
			ID:        uuid.NewString(),
			ContactID: contact.ID,
			UserID:    config.UserID,
			Type:      kind,
			Note:      notes[rand.Intn(len(notes))],
			Date:      gofakeit.DateRange(created, lastContact),
		})
	}

	return contact
}

// GenerateContacts creates multiple contacts with the given config
func GenerateContacts(config ContactGeneratorConfig) []crm.Contact {
	contacts := make([]crm.Contact, config.Count)
	for i := 0; i < config.Count; i++ {
		contacts[i] = GenerateContact(config)
	}
	return contacts
}

// GenerateContactsForUser generates contacts for a user with default settings
func GenerateContactsForUser(userID string, count int) []crm.Contact {
	config := ContactGeneratorConfig{
		UserID:          userID,
		Count:           count,
		HotChance:       0.25,
		ColdChance:      0.2,
		DealChance:      0.45,
		OccasionChance:  0.4,
		ActivityPerLead: 4,
	}
	return GenerateContacts(config)
}

// BulkInsertContacts inserts contacts in batches for performance
func BulkInsertContacts(ctx context.Context, database *gorm.DB, contacts []crm.Contact, batchSize int) error {
	if err := database.WithContext(ctx).CreateInBatches(contacts, batchSize).Error; err != nil {
		return fmt.Errorf("failed to insert contacts: %w", err)
	}
	return nil
}
