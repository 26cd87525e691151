package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/dmaldonado/nestdesk/pkg/crm"
	"github.com/dmaldonado/nestdesk/pkg/email"
	"github.com/dmaldonado/nestdesk/pkg/repository"
)

// Runner executes the scheduled job bodies against the database. Split out
// from the scheduler so jobs can be triggered manually and tested.
type Runner struct {
	repos  *repository.Repositories
	email  *email.Service
	logger *log.Logger
}

// NewRunner creates a new job runner
func NewRunner(repos *repository.Repositories, emailService *email.Service, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{repos: repos, email: emailService, logger: logger}
}

// GenerateOccasionReminders creates a reminder for every contact whose
// birthday or home anniversary falls on today's date. Already-generated
// reminders are detected by title within the day, so the job is safe to
// re-run.
func (r *Runner) GenerateOccasionReminders(ctx context.Context, now time.Time) (int, error) {
	users, err := r.repos.Users.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("list users: %w", err)
	}

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.Add(24 * time.Hour)
	due := dayStart.Add(9 * time.Hour)

	created := 0
	for _, user := range users {
		contacts, err := r.repos.Contacts.ListWithAnnualDate(ctx, user.ID, int(now.Month()), now.Day())
		if err != nil {
			r.logger.Printf("❌ Failed to list occasion contacts for %s: %v", user.Email, err)
			continue
		}
		for _, contact := range contacts {
			for _, title := range occasionTitles(contact, now) {
				n, err := r.createOccasionReminder(ctx, user.ID, contact.ID, title, due, dayStart, dayEnd)
				if err != nil {
					r.logger.Printf("❌ Failed to create occasion reminder for %s: %v", contact.FullName(), err)
					continue
				}
				created += n
			}
		}
	}
	return created, nil
}

func occasionTitles(contact crm.Contact, now time.Time) []string {
	var titles []string
	if onDay(contact.Birthday, now) {
		titles = append(titles, fmt.Sprintf("Wish %s a happy birthday", contact.FullName()))
	}
	if onDay(contact.HomeAnniversary, now) {
		years := now.Year() - contact.HomeAnniversary.Year()
		titles = append(titles, fmt.Sprintf("%s's home anniversary (%d years)", contact.FullName(), years))
	}
	return titles
}

func onDay(date *time.Time, now time.Time) bool {
	return date != nil && date.Month() == now.Month() && date.Day() == now.Day()
}

func (r *Runner) createOccasionReminder(ctx context.Context, userID, contactID, title string, due, from, to time.Time) (int, error) {
	exists, err := r.repos.Reminders.HasAutoGenerated(ctx, userID, contactID, title, from, to)
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, nil
	}
	reminder := &crm.Reminder{
		ID:            uuid.NewString(),
		UserID:        userID,
		ContactID:     &contactID,
		Title:         title,
		DueDate:       due,
		Priority:      crm.PriorityMedium,
		AutoGenerated: true,
	}
	if err := r.repos.Reminders.Create(ctx, reminder); err != nil {
		return 0, err
	}
	return 1, nil
}

// SendReminderDigests emails every user a summary of the reminders due
// today. Users with nothing due get no email.
func (r *Runner) SendReminderDigests(ctx context.Context, now time.Time) (int, error) {
	users, err := r.repos.Users.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("list users: %w", err)
	}

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	sent := 0
	for _, user := range users {
		reminders, err := r.repos.Reminders.ListDueBetween(ctx, user.ID, dayStart, dayEnd)
		if err != nil {
			r.logger.Printf("❌ Failed to list due reminders for %s: %v", user.Email, err)
			continue
		}
		if len(reminders) == 0 {
			continue
		}

		lines := make([]string, 0, len(reminders))
		for _, reminder := range reminders {
			lines = append(lines, fmt.Sprintf("%s (due %s)", reminder.Title, reminder.DueDate.Format("3:04 PM")))
		}
		if err := r.email.SendDigest(user.Email, user.Name, lines); err != nil {
			r.logger.Printf("❌ Failed to send digest to %s: %v", user.Email, err)
			continue
		}
		sent++
	}
	return sent, nil
}

// LogActivityStats writes a nightly per-user activity summary to the log.
func (r *Runner) LogActivityStats(ctx context.Context, now time.Time) error {
	users, err := r.repos.Users.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	cutoff := now.Add(-24 * time.Hour)
	r.logger.Printf("📊 Activity in the last 24h:")
	for _, user := range users {
		contacts, err := r.repos.Contacts.CountByUser(ctx, user.ID)
		if err != nil {
			continue
		}
		activities, err := r.repos.Activities.CountSince(ctx, user.ID, cutoff)
		if err != nil {
			continue
		}
		r.logger.Printf("  %s: %d contacts, %d new activities", user.Email, contacts, activities)
	}
	return nil
}
