package workspace

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dmaldonado/nestdesk/pkg/crm"
	"github.com/dmaldonado/nestdesk/pkg/domain"
	"github.com/dmaldonado/nestdesk/pkg/store"
)

// AddReminder validates and prepends a new reminder. A contact link is
// optional but must point at a visible contact when present.
func (w *Workspace) AddReminder(ctx context.Context, reminder crm.Reminder) (crm.Reminder, error) {
	if reminder.Title == "" {
		return crm.Reminder{}, domain.NewValidationError("title is required")
	}
	if reminder.DueDate.IsZero() {
		return crm.Reminder{}, domain.NewValidationError("due date is required")
	}
	if reminder.Priority == "" {
		reminder.Priority = crm.PriorityMedium
	}
	if !validPriority(reminder.Priority) {
		return crm.Reminder{}, domain.NewValidationError("invalid priority")
	}
	if reminder.ContactID != nil {
		if _, ok := w.state.ContactByID(*reminder.ContactID); !ok {
			return crm.Reminder{}, domain.NewValidationError("linked contact not found")
		}
	}

	reminder.ID = uuid.NewString()
	reminder.UserID = w.user.ID
	reminder.Completed = false
	reminder.CreatedAt = time.Now()

	w.remoteWrite("reminder.create", func() error {
		return w.remote.Reminders.Create(ctx, &reminder)
	})
	w.state.Dispatch(store.ReminderAdded{Reminder: reminder})
	w.saveLocal(saveReminders)
	return reminder, nil
}

// UpdateReminder edits a reminder. Completion is one way: use
// CompleteReminder to finish one, and a finished reminder stays finished.
func (w *Workspace) UpdateReminder(ctx context.Context, reminder crm.Reminder) (crm.Reminder, error) {
	existing, ok := w.state.ReminderByID(reminder.ID)
	if !ok {
		return crm.Reminder{}, domain.NewNotFoundError("reminder")
	}
	if existing.Completed && !reminder.Completed {
		return crm.Reminder{}, domain.NewValidationError("completed reminders cannot be reopened")
	}
	if reminder.Title == "" {
		return crm.Reminder{}, domain.NewValidationError("title is required")
	}
	if reminder.Priority == "" {
		reminder.Priority = existing.Priority
	}
	if !validPriority(reminder.Priority) {
		return crm.Reminder{}, domain.NewValidationError("invalid priority")
	}
	if reminder.DueDate.IsZero() {
		reminder.DueDate = existing.DueDate
	}

	reminder.UserID = existing.UserID
	reminder.AutoGenerated = existing.AutoGenerated
	reminder.CreatedAt = existing.CreatedAt

	w.remoteWrite("reminder.update", func() error {
		return w.remote.Reminders.Update(ctx, &reminder)
	})
	w.state.Dispatch(store.ReminderUpdated{Reminder: reminder})
	w.saveLocal(saveReminders)
	return reminder, nil
}

// CompleteReminder marks a reminder done. Completing a finished reminder
// is a no-op.
func (w *Workspace) CompleteReminder(ctx context.Context, reminderID string) (crm.Reminder, error) {
	existing, ok := w.state.ReminderByID(reminderID)
	if !ok {
		return crm.Reminder{}, domain.NewNotFoundError("reminder")
	}
	if existing.Completed {
		return existing, nil
	}
	existing.Completed = true

	w.remoteWrite("reminder.complete", func() error {
		return w.remote.Reminders.Update(ctx, &existing)
	})
	w.state.Dispatch(store.ReminderUpdated{Reminder: existing})
	w.saveLocal(saveReminders)
	return existing, nil
}

// DeleteReminder removes a reminder.
func (w *Workspace) DeleteReminder(ctx context.Context, reminderID string) error {
	if _, ok := w.state.ReminderByID(reminderID); !ok {
		return domain.NewNotFoundError("reminder")
	}

	w.remoteWrite("reminder.delete", func() error {
		return w.remote.Reminders.Delete(ctx, reminderID, w.user.ID)
	})
	w.state.Dispatch(store.ReminderDeleted{ID: reminderID})
	w.saveLocal(saveReminders)
	return nil
}

func validPriority(p crm.Priority) bool {
	return p == crm.PriorityHigh || p == crm.PriorityMedium || p == crm.PriorityLow
}
