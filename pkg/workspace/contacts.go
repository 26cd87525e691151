package workspace

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dmaldonado/nestdesk/pkg/crm"
	"github.com/dmaldonado/nestdesk/pkg/domain"
	"github.com/dmaldonado/nestdesk/pkg/phone"
	"github.com/dmaldonado/nestdesk/pkg/store"
)

// AddContact validates and prepends a new contact.
func (w *Workspace) AddContact(ctx context.Context, contact crm.Contact) (crm.Contact, error) {
	now := time.Now()

	contact.ID = uuid.NewString()
	contact.UserID = w.user.ID
	contact.IsTeamDeal = false
	contact.Phone = phone.Normalize(contact.Phone)
	if contact.Temperature == "" {
		contact.Temperature = crm.TemperatureWarm
	}
	if !contact.Temperature.Valid() {
		return crm.Contact{}, domain.NewValidationError("invalid temperature")
	}
	if contact.DealStage != nil && !crm.ValidStage(*contact.DealStage) {
		return crm.Contact{}, domain.NewValidationError("invalid deal stage")
	}
	if contact.LastContact.IsZero() {
		contact.LastContact = now
	}
	contact.CreatedAt = now
	if contact.LastContact.Before(contact.CreatedAt) {
		contact.LastContact = contact.CreatedAt
	}
	contact.Activities = []crm.Activity{}
	contact.Showings = []crm.Showing{}

	w.remoteWrite("contact.create", func() error {
		return w.remote.Contacts.Create(ctx, &contact)
	})
	w.state.Dispatch(store.ContactAdded{Contact: contact})
	w.saveLocal(saveContacts)
	return contact, nil
}

// UpdateContact replaces a contact's editable fields. Ownership, creation
// time, and history are preserved from the stored contact, and lastContact
// never moves backward.
func (w *Workspace) UpdateContact(ctx context.Context, contact crm.Contact) (crm.Contact, error) {
	existing, ok := w.state.ContactByID(contact.ID)
	if !ok {
		return crm.Contact{}, domain.NewNotFoundError("contact")
	}
	if contact.Temperature == "" {
		contact.Temperature = existing.Temperature
	}
	if !contact.Temperature.Valid() {
		return crm.Contact{}, domain.NewValidationError("invalid temperature")
	}
	if contact.DealStage != nil && !crm.ValidStage(*contact.DealStage) {
		return crm.Contact{}, domain.NewValidationError("invalid deal stage")
	}

	contact.UserID = existing.UserID
	contact.IsTeamDeal = existing.IsTeamDeal
	contact.CreatedAt = existing.CreatedAt
	contact.Activities = existing.Activities
	contact.Showings = existing.Showings
	contact.Phone = phone.Normalize(contact.Phone)
	if contact.LastContact.Before(existing.LastContact) {
		contact.LastContact = existing.LastContact
	}

	w.remoteWrite("contact.update", func() error {
		return w.remote.Contacts.Update(ctx, &contact)
	})
	w.state.Dispatch(store.ContactUpdated{Contact: contact})
	w.saveLocal(saveContacts)
	return contact, nil
}

// SetDealStage moves a contact to a stage, or clears it with nil. Any
// stage can follow any other.
func (w *Workspace) SetDealStage(ctx context.Context, contactID string, stage *crm.DealStage) (crm.Contact, error) {
	existing, ok := w.state.ContactByID(contactID)
	if !ok {
		return crm.Contact{}, domain.NewNotFoundError("contact")
	}
	existing.DealStage = stage
	return w.UpdateContact(ctx, existing)
}

// DeleteContact removes a contact and every reminder referencing it.
func (w *Workspace) DeleteContact(ctx context.Context, contactID string) error {
	if _, ok := w.state.ContactByID(contactID); !ok {
		return domain.NewNotFoundError("contact")
	}

	w.remoteWrite("contact.delete", func() error {
		// The row cascade covers activities and showings; reminders hold
		// a weak reference and need their own delete.
		if err := w.remote.Reminders.DeleteForContact(ctx, contactID, w.user.ID); err != nil {
			return err
		}
		return w.remote.Contacts.Delete(ctx, contactID, w.user.ID)
	})
	w.state.Dispatch(store.ContactDeleted{ID: contactID})
	w.saveLocal(saveContacts | saveReminders)
	return nil
}

// AddActivity appends a touch to a contact's history and advances its
// lastContact when the activity is more recent.
func (w *Workspace) AddActivity(ctx context.Context, contactID string, activityType crm.ActivityType, note string, date time.Time) (crm.Contact, error) {
	contact, ok := w.state.ContactByID(contactID)
	if !ok {
		return crm.Contact{}, domain.NewNotFoundError("contact")
	}
	switch activityType {
	case crm.ActivityCall, crm.ActivityEmail, crm.ActivityMeeting, crm.ActivityShowing, crm.ActivityNote:
	default:
		return crm.Contact{}, domain.NewValidationError("invalid activity type")
	}
	if date.IsZero() {
		date = time.Now()
	}

	activity := crm.Activity{
		ID:        uuid.NewString(),
		ContactID: contactID,
		UserID:    w.user.ID,
		Type:      activityType,
		Note:      note,
		Date:      date,
	}
	contact.Activities = append([]crm.Activity{activity}, contact.Activities...)
	if date.After(contact.LastContact) {
		contact.LastContact = date
	}

	w.remoteWrite("activity.create", func() error {
		if err := w.remote.Activities.Create(ctx, &activity); err != nil {
			return err
		}
		return w.remote.Contacts.Update(ctx, &contact)
	})
	w.state.Dispatch(store.ContactUpdated{Contact: contact})
	w.saveLocal(saveContacts)
	return contact, nil
}

// AddShowing records a property showing and synthesizes the matching
// activity entry on the contact.
func (w *Workspace) AddShowing(ctx context.Context, contactID, address string, reaction crm.Reaction, notes string, date time.Time) (crm.Contact, error) {
	contact, ok := w.state.ContactByID(contactID)
	if !ok {
		return crm.Contact{}, domain.NewNotFoundError("contact")
	}
	if address == "" {
		return crm.Contact{}, domain.NewValidationError("address is required")
	}
	if date.IsZero() {
		date = time.Now()
	}

	showing := crm.Showing{
		ID:        uuid.NewString(),
		ContactID: contactID,
		UserID:    w.user.ID,
		Address:   address,
		Reaction:  reaction,
		Notes:     notes,
		Date:      date,
	}
	activity := crm.Activity{
		ID:        uuid.NewString(),
		ContactID: contactID,
		UserID:    w.user.ID,
		Type:      crm.ActivityShowing,
		Note:      crm.ShowingActivityNote(address, notes),
		Date:      date,
	}

	contact.Showings = append([]crm.Showing{showing}, contact.Showings...)
	contact.Activities = append([]crm.Activity{activity}, contact.Activities...)
	if date.After(contact.LastContact) {
		contact.LastContact = date
	}

	w.remoteWrite("showing.create", func() error {
		if err := w.remote.Showings.Create(ctx, &showing); err != nil {
			return err
		}
		if err := w.remote.Activities.Create(ctx, &activity); err != nil {
			return err
		}
		return w.remote.Contacts.Update(ctx, &contact)
	})
	w.state.Dispatch(store.ContactUpdated{Contact: contact})
	w.saveLocal(saveContacts)
	return contact, nil
}

// DeleteShowing removes a showing from a contact. The activity it
// synthesized stays; the showing happened.
func (w *Workspace) DeleteShowing(ctx context.Context, contactID, showingID string) (crm.Contact, error) {
	contact, ok := w.state.ContactByID(contactID)
	if !ok {
		return crm.Contact{}, domain.NewNotFoundError("contact")
	}

	kept := make([]crm.Showing, 0, len(contact.Showings))
	found := false
	for _, s := range contact.Showings {
		if s.ID == showingID {
			found = true
			continue
		}
		kept = append(kept, s)
	}
	if !found {
		return crm.Contact{}, domain.NewNotFoundError("showing")
	}
	contact.Showings = kept

	w.remoteWrite("showing.delete", func() error {
		return w.remote.Showings.Delete(ctx, showingID, w.user.ID)
	})
	w.state.Dispatch(store.ContactUpdated{Contact: contact})
	w.saveLocal(saveContacts)
	return contact, nil
}

// Handoff transfers a contact to a teammate. Remote-only: handoff is a
// team feature and teams require the database.
func (w *Workspace) Handoff(ctx context.Context, contactID, toUserID string) error {
	if w.remote == nil || w.teams == nil {
		return domain.NewBadRequestError("handoff requires a configured database")
	}
	contact, ok := w.state.ContactByID(contactID)
	if !ok {
		return domain.NewNotFoundError("contact")
	}
	if contact.UserID != w.user.ID {
		return domain.NewForbiddenError("only the owning agent can hand off a contact")
	}

	teamID := w.TeamID()
	if teamID == nil {
		return domain.NewBadRequestError("not on a team")
	}
	members, err := w.teams.Members(ctx, *teamID)
	if err != nil {
		return err
	}
	onTeam := false
	for _, m := range members {
		if m.UserID == toUserID {
			onTeam = true
			break
		}
	}
	if !onTeam {
		return domain.NewBadRequestError("recipient is not on your team")
	}

	if err := w.remote.Contacts.Transfer(ctx, contactID, w.user.ID, toUserID); err != nil {
		return err
	}
	// The contact leaves this workspace; the recipient picks it up on
	// their next load.
	w.state.Dispatch(store.ContactDeleted{ID: contactID})
	w.saveLocal(saveContacts | saveReminders)
	return nil
}

// SetSearch sets the contact search query.
func (w *Workspace) SetSearch(query string) {
	w.state.Dispatch(store.SearchSet{Query: query})
}

// SetTemperatureFilter sets the list filter to "all" or one temperature.
func (w *Workspace) SetTemperatureFilter(filter string) error {
	if filter != "all" && !crm.Temperature(filter).Valid() {
		return domain.NewValidationError("invalid temperature filter")
	}
	w.state.Dispatch(store.TemperatureFilterSet{Filter: filter})
	return nil
}
