// Package store holds the canonical in-memory CRM collections for one
// workspace and applies named transitions to them. It is the only writer
// of workspace state; callers perform I/O and feed the results in through
// Dispatch. Transitions are pure: everything they need, including clock
// readings, arrives in the payload.
package store

import (
	"fmt"
	"sync"

	"github.com/dmaldonado/nestdesk/pkg/crm"
)

// State is one immutable snapshot of a workspace. Reducers always build
// fresh slices, so a snapshot handed to a reader never changes under it.
type State struct {
	Contacts          []crm.Contact
	Reminders         []crm.Reminder
	Templates         []crm.Template
	SearchQuery       string
	TemperatureFilter string // "all" or an exact crm.Temperature value
	Loaded            bool
}

// Transition is a named state transition. The set is closed: the reducer
// panics on a type it does not know — a mistyped transition is an
// implementation bug, not a runtime condition.
type Transition interface {
	transition()
}

// LoadCompleted replaces all three collections at the end of a load.
type LoadCompleted struct {
	Contacts  []crm.Contact
	Reminders []crm.Reminder
	Templates []crm.Template
}

// ContactAdded prepends a contact.
type ContactAdded struct{ Contact crm.Contact }

// ContactUpdated replaces the contact with the same ID.
type ContactUpdated struct{ Contact crm.Contact }

// ContactDeleted removes a contact and cascades to reminders that
// reference it.
type ContactDeleted struct{ ID string }

// ReminderAdded prepends a reminder.
type ReminderAdded struct{ Reminder crm.Reminder }

// ReminderUpdated replaces the reminder with the same ID.
type ReminderUpdated struct{ Reminder crm.Reminder }

// ReminderDeleted removes a reminder.
type ReminderDeleted struct{ ID string }

// TemplateAdded appends a template.
type TemplateAdded struct{ Template crm.Template }

// TemplateUpdated replaces the template with the same ID.
type TemplateUpdated struct{ Template crm.Template }

// TemplateDeleted removes a template.
type TemplateDeleted struct{ ID string }

// SearchSet sets the contact search query.
type SearchSet struct{ Query string }

// TemperatureFilterSet sets the temperature filter ("all" or exact value).
type TemperatureFilterSet struct{ Filter string }

func (LoadCompleted) transition()        {}
func (ContactAdded) transition()         {}
func (ContactUpdated) transition()       {}
func (ContactDeleted) transition()       {}
func (ReminderAdded) transition()        {}
func (ReminderUpdated) transition()      {}
func (ReminderDeleted) transition()      {}
func (TemplateAdded) transition()        {}
func (TemplateUpdated) transition()      {}
func (TemplateDeleted) transition()      {}
func (SearchSet) transition()            {}
func (TemperatureFilterSet) transition() {}

// Store is the single authoritative holder of workspace state.
type Store struct {
	mu    sync.RWMutex
	state State
}

// New creates an empty store: no collections, nothing loaded, filter "all".
func New() *Store {
	return &Store{
		state: State{
			Contacts:          []crm.Contact{},
			Reminders:         []crm.Reminder{},
			Templates:         []crm.Template{},
			TemperatureFilter: "all",
		},
	}
}

// Dispatch applies a transition, replacing the whole state slice before
// the next read can observe it.
func (s *Store) Dispatch(t Transition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = reduce(s.state, t)
}

// Snapshot returns the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// ContactByID finds a contact in the current state.
func (s *Store) ContactByID(id string) (crm.Contact, bool) {
	snap := s.Snapshot()
	for _, c := range snap.Contacts {
		if c.ID == id {
			return c, true
		}
	}
	return crm.Contact{}, false
}

// ReminderByID finds a reminder in the current state.
func (s *Store) ReminderByID(id string) (crm.Reminder, bool) {
	snap := s.Snapshot()
	for _, r := range snap.Reminders {
		if r.ID == id {
			return r, true
		}
	}
	return crm.Reminder{}, false
}

// TemplateByID finds a template in the current state.
func (s *Store) TemplateByID(id string) (crm.Template, bool) {
	snap := s.Snapshot()
	for _, t := range snap.Templates {
		if t.ID == id {
			return t, true
		}
	}
	return crm.Template{}, false
}

func reduce(s State, t Transition) State {
	switch t := t.(type) {
	case LoadCompleted:
		s.Contacts = append([]crm.Contact{}, t.Contacts...)
		s.Reminders = append([]crm.Reminder{}, t.Reminders...)
		if len(t.Templates) > 0 {
			s.Templates = append([]crm.Template{}, t.Templates...)
		} else {
			s.Templates = append([]crm.Template{}, crm.DefaultTemplates...)
		}
		s.Loaded = true
		return s

	case ContactAdded:
		s.Contacts = prepend(s.Contacts, t.Contact)
		return s

	case ContactUpdated:
		s.Contacts = replaceByID(s.Contacts, t.Contact, func(c crm.Contact) string { return c.ID }, t.Contact.ID)
		return s

	case ContactDeleted:
		s.Contacts = deleteByID(s.Contacts, func(c crm.Contact) string { return c.ID }, t.ID)
		kept := make([]crm.Reminder, 0, len(s.Reminders))
		for _, r := range s.Reminders {
			if r.ContactID != nil && *r.ContactID == t.ID {
				continue
			}
			kept = append(kept, r)
		}
		s.Reminders = kept
		return s

	case ReminderAdded:
		s.Reminders = prepend(s.Reminders, t.Reminder)
		return s

	case ReminderUpdated:
		s.Reminders = replaceByID(s.Reminders, t.Reminder, func(r crm.Reminder) string { return r.ID }, t.Reminder.ID)
		return s

	case ReminderDeleted:
		s.Reminders = deleteByID(s.Reminders, func(r crm.Reminder) string { return r.ID }, t.ID)
		return s

	case TemplateAdded:
		s.Templates = append(append([]crm.Template{}, s.Templates...), t.Template)
		return s

	case TemplateUpdated:
		s.Templates = replaceByID(s.Templates, t.Template, func(tp crm.Template) string { return tp.ID }, t.Template.ID)
		return s

	case TemplateDeleted:
		s.Templates = deleteByID(s.Templates, func(tp crm.Template) string { return tp.ID }, t.ID)
		return s

	case SearchSet:
		s.SearchQuery = t.Query
		return s

	case TemperatureFilterSet:
		s.TemperatureFilter = t.Filter
		return s

	default:
		panic(fmt.Sprintf("store: unknown transition %T", t))
	}
}

func prepend[T any](list []T, item T) []T {
	out := make([]T, 0, len(list)+1)
	out = append(out, item)
	return append(out, list...)
}

func replaceByID[T any](list []T, item T, id func(T) string, target string) []T {
	out := make([]T, len(list))
	for i, existing := range list {
		if id(existing) == target {
			out[i] = item
		} else {
			out[i] = existing
		}
	}
	return out
}

func deleteByID[T any](list []T, id func(T) string, target string) []T {
	out := make([]T, 0, len(list))
	for _, existing := range list {
		if id(existing) == target {
			continue
		}
		out = append(out, existing)
	}
	return out
}
