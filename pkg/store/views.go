package store

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/dmaldonado/nestdesk/pkg/crm"
)

// FilteredContacts applies the state's temperature filter and search query,
// then sorts by temperature rank (hot first) and, within a rank, by most
// recent contact.
func FilteredContacts(s State) []crm.Contact {
	out := make([]crm.Contact, 0, len(s.Contacts))
	// a cases.Caser is stateful, so each read gets its own
	fold := cases.Fold()
	query := fold.String(strings.TrimSpace(s.SearchQuery))
	for _, c := range s.Contacts {
		if s.TemperatureFilter != "" && s.TemperatureFilter != "all" && string(c.Temperature) != s.TemperatureFilter {
			continue
		}
		if query != "" && !matchesQuery(fold, c, query) {
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := out[i].Temperature.Rank(), out[j].Temperature.Rank()
		if ri != rj {
			return ri < rj
		}
		return out[i].LastContact.After(out[j].LastContact)
	})
	return out
}

func matchesQuery(fold cases.Caser, c crm.Contact, folded string) bool {
	for _, field := range []string{c.FirstName, c.LastName, c.Email, c.Phone, c.Company} {
		if strings.Contains(fold.String(field), folded) {
			return true
		}
	}
	return false
}

// TemperatureBuckets groups all contacts (ignoring search and filter) by
// temperature.
func TemperatureBuckets(s State) map[crm.Temperature][]crm.Contact {
	out := map[crm.Temperature][]crm.Contact{
		crm.TemperatureHot:  {},
		crm.TemperatureWarm: {},
		crm.TemperatureCold: {},
	}
	for _, c := range s.Contacts {
		out[c.Temperature] = append(out[c.Temperature], c)
	}
	return out
}

// ReminderBuckets partitions pending reminders by calendar-day distance
// from now: overdue (past days), today, tomorrow, thisWeek (2 to 6 days
// out), later (a week or more). A reminder due earlier on the current day
// counts as today, not overdue. Completed reminders are excluded. Each
// bucket is sorted by due time ascending.
type ReminderBuckets struct {
	Overdue  []crm.Reminder `json:"overdue"`
	Today    []crm.Reminder `json:"today"`
	Tomorrow []crm.Reminder `json:"tomorrow"`
	ThisWeek []crm.Reminder `json:"thisWeek"`
	Later    []crm.Reminder `json:"later"`
}

// BucketReminders builds ReminderBuckets relative to now.
func BucketReminders(s State, now time.Time) ReminderBuckets {
	b := ReminderBuckets{
		Overdue:  []crm.Reminder{},
		Today:    []crm.Reminder{},
		Tomorrow: []crm.Reminder{},
		ThisWeek: []crm.Reminder{},
		Later:    []crm.Reminder{},
	}
	for _, r := range s.Reminders {
		if r.Completed {
			continue
		}
		switch d := dayDiff(now, r.DueDate); {
		case d < 0:
			b.Overdue = append(b.Overdue, r)
		case d == 0:
			b.Today = append(b.Today, r)
		case d == 1:
			b.Tomorrow = append(b.Tomorrow, r)
		case d < 7:
			b.ThisWeek = append(b.ThisWeek, r)
		default:
			b.Later = append(b.Later, r)
		}
	}
	for _, bucket := range []*[]crm.Reminder{&b.Overdue, &b.Today, &b.Tomorrow, &b.ThisWeek, &b.Later} {
		sort.SliceStable(*bucket, func(i, j int) bool {
			return (*bucket)[i].DueDate.Before((*bucket)[j].DueDate)
		})
	}
	return b
}

// dayDiff counts whole calendar days from now's date to t's date, in
// now's location. Same calendar day is 0 regardless of clock time.
func dayDiff(now, t time.Time) int {
	y1, m1, d1 := now.Date()
	y2, m2, d2 := t.In(now.Location()).Date()
	start := time.Date(y1, m1, d1, 0, 0, 0, 0, now.Location())
	end := time.Date(y2, m2, d2, 0, 0, 0, 0, now.Location())
	return int(end.Sub(start).Hours() / 24)
}

// DealsByStage groups contacts by deal stage. Contacts without a stage do
// not appear in any group.
func DealsByStage(s State) map[crm.DealStage][]crm.Contact {
	out := make(map[crm.DealStage][]crm.Contact)
	for _, st := range crm.DealStages {
		out[st.ID] = []crm.Contact{}
	}
	for _, c := range s.Contacts {
		if c.DealStage == nil {
			continue
		}
		out[*c.DealStage] = append(out[*c.DealStage], c)
	}
	return out
}

// PipelineValue sums deal values over contacts in an active stage, i.e.
// staged contacts excluding closed and lost.
func PipelineValue(s State) float64 {
	var total float64
	for _, c := range s.Contacts {
		if c.DealStage == nil || c.DealValue == nil {
			continue
		}
		if *c.DealStage == crm.StageClosed || *c.DealStage == crm.StageLost {
			continue
		}
		total += *c.DealValue
	}
	return total
}

// ClosedValue sums deal values over closed contacts.
func ClosedValue(s State) float64 {
	var total float64
	for _, c := range s.Contacts {
		if c.DealStage == nil || *c.DealStage != crm.StageClosed || c.DealValue == nil {
			continue
		}
		total += *c.DealValue
	}
	return total
}

// SourceCount is one row of the lead-source breakdown.
type SourceCount struct {
	Source   string `json:"source"`
	Label    string `json:"label"`
	Color    string `json:"color"`
	Count    int    `json:"count"`
	HotCount int    `json:"hotCount"`
}

// LeadsBySource counts contacts per lead source in catalog order. Sources
// with no contacts are omitted.
func LeadsBySource(s State) []SourceCount {
	counts := make(map[string]*SourceCount)
	for _, src := range crm.LeadSources {
		counts[src.Value] = &SourceCount{Source: src.Value, Label: src.Label, Color: src.Color}
	}
	for _, c := range s.Contacts {
		row, ok := counts[c.LeadSource]
		if !ok {
			continue
		}
		row.Count++
		if c.Temperature == crm.TemperatureHot {
			row.HotCount++
		}
	}
	out := make([]SourceCount, 0, len(crm.LeadSources))
	for _, src := range crm.LeadSources {
		if row := counts[src.Value]; row.Count > 0 {
			out = append(out, *row)
		}
	}
	return out
}

// RemindersForContact returns the reminders that reference a contact,
// pending first, each group ordered by due time ascending.
func RemindersForContact(s State, contactID string) []crm.Reminder {
	out := []crm.Reminder{}
	for _, r := range s.Reminders {
		if r.ContactID != nil && *r.ContactID == contactID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Completed != out[j].Completed {
			return !out[i].Completed
		}
		return out[i].DueDate.Before(out[j].DueDate)
	})
	return out
}
