package crm

import (
	"time"

	"github.com/google/uuid"
)

// SampleData is the fixed demo dataset loaded on first run when neither
// the remote backend nor the local store has anything: two contacts and
// one reminder, so the UI is never empty.
func SampleData(userID string, now time.Time) ([]Contact, []Reminder) {
	stageShowing := StageShowing
	stageOffer := StageOffer
	mitchellValue := 950000.0
	chenValue := 1650000.0
	mitchellClose := now.Add(45 * 24 * time.Hour)
	chenClose := now.Add(30 * 24 * time.Hour)
	mitchellBirthday := time.Date(1985, time.June, 15, 0, 0, 0, 0, time.UTC)
	chenBirthday := time.Date(1990, time.March, 22, 0, 0, 0, 0, time.UTC)

	mitchell := Contact{
		ID:                uuid.NewString(),
		UserID:            userID,
		FirstName:         "Sarah",
		LastName:          "Mitchell",
		Email:             "sarah.mitchell@email.com",
		Phone:             "(555) 234-5678",
		Company:           "Mitchell Family Trust",
		Temperature:       TemperatureHot,
		PropertyInterest:  "Buying",
		Budget:            "$850,000 - $1,200,000",
		LeadSource:        "referral",
		Birthday:          &mitchellBirthday,
		Notes:             "Looking for 4BR in Maple Grove area. Pre-approved with First National.",
		DealStage:         &stageShowing,
		DealValue:         &mitchellValue,
		ExpectedCloseDate: &mitchellClose,
		LastContact:       now.Add(-24 * time.Hour),
		CreatedAt:         now.Add(-14 * 24 * time.Hour),
		Showings:          []Showing{},
	}
	mitchell.Activities = []Activity{
		{
			ID:        uuid.NewString(),
			ContactID: mitchell.ID,
			UserID:    userID,
			Type:      ActivityCall,
			Note:      "Discussed requirements",
			Date:      now.Add(-24 * time.Hour),
		},
	}

	chen := Contact{
		ID:                uuid.NewString(),
		UserID:            userID,
		FirstName:         "James",
		LastName:          "Chen",
		Email:             "jchen@techstartup.io",
		Phone:             "(555) 876-5432",
		Company:           "TechStartup Inc",
		Temperature:       TemperatureHot,
		PropertyInterest:  "Buying",
		Budget:            "$1,500,000+",
		LeadSource:        "zillow",
		Birthday:          &chenBirthday,
		Notes:             "Looking for luxury condo downtown. Cash buyer.",
		DealStage:         &stageOffer,
		DealValue:         &chenValue,
		ExpectedCloseDate: &chenClose,
		LastContact:       now.Add(-2 * time.Hour),
		CreatedAt:         now.Add(-7 * 24 * time.Hour),
		Activities:        []Activity{},
		Showings:          []Showing{},
	}

	reminders := []Reminder{
		{
			ID:          uuid.NewString(),
			UserID:      userID,
			ContactID:   &mitchell.ID,
			Title:       "Follow up on showing",
			Description: "Call Sarah to discuss properties",
			DueDate:     now.Add(4 * time.Hour),
			Priority:    PriorityHigh,
		},
	}

	return []Contact{mitchell, chen}, reminders
}
