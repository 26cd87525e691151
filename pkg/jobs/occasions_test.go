package jobs

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/dmaldonado/nestdesk/pkg/crm"
	"github.com/dmaldonado/nestdesk/pkg/email"
	"github.com/dmaldonado/nestdesk/pkg/repository"
)

func testRepos(t *testing.T) *repository.Repositories {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "jobs.db")), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&crm.User{}, &crm.Contact{}, &crm.Activity{}, &crm.Showing{}, &crm.Reminder{}))
	return repository.NewRepositories(db)
}

func TestGenerateOccasionReminders(t *testing.T) {
	ctx := context.Background()
	repos := testRepos(t)
	runner := NewRunner(repos, email.NewService("", "crm@nestdesk.io", "NestDesk"), nil)

	now := time.Date(2026, 6, 15, 7, 0, 0, 0, time.UTC)
	birthday := time.Date(1988, 6, 15, 0, 0, 0, 0, time.UTC)
	anniversary := time.Date(2021, 6, 15, 0, 0, 0, 0, time.UTC)

	user := &crm.User{ID: "u1", Email: "dana@nestdesk.io", PasswordHash: "x", Name: "Dana Reyes"}
	require.NoError(t, repos.Users.Create(ctx, user))
	require.NoError(t, repos.Contacts.Create(ctx, &crm.Contact{
		ID: "c1", UserID: "u1", FirstName: "Noor", LastName: "Haddad",
		Temperature: crm.TemperatureHot, Birthday: &birthday, HomeAnniversary: &anniversary,
		LastContact: now, CreatedAt: now,
	}))
	require.NoError(t, repos.Contacts.Create(ctx, &crm.Contact{
		ID: "c2", UserID: "u1", FirstName: "Sam", LastName: "Okafor",
		Temperature: crm.TemperatureWarm, LastContact: now, CreatedAt: now,
	}))

	created, err := runner.GenerateOccasionReminders(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	reminders, err := repos.Reminders.ListVisible(ctx, []string{"u1"})
	require.NoError(t, err)
	require.Len(t, reminders, 2)
	titles := []string{reminders[0].Title, reminders[1].Title}
	assert.Contains(t, titles, "Wish Noor Haddad a happy birthday")
	assert.Contains(t, titles, "Noor Haddad's home anniversary (5 years)")
	for _, reminder := range reminders {
		assert.True(t, reminder.AutoGenerated)
		require.NotNil(t, reminder.ContactID)
		assert.Equal(t, "c1", *reminder.ContactID)
	}

	t.Run("rerun creates no duplicates", func(t *testing.T) {
		created, err := runner.GenerateOccasionReminders(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, 0, created)
	})
}

func TestSendReminderDigests(t *testing.T) {
	ctx := context.Background()
	repos := testRepos(t)
	runner := NewRunner(repos, email.NewService("", "crm@nestdesk.io", "NestDesk"), nil)

	now := time.Date(2026, 6, 15, 8, 0, 0, 0, time.UTC)

	require.NoError(t, repos.Users.Create(ctx, &crm.User{ID: "u1", Email: "dana@nestdesk.io", PasswordHash: "x", Name: "Dana Reyes"}))
	require.NoError(t, repos.Users.Create(ctx, &crm.User{ID: "u2", Email: "lee@nestdesk.io", PasswordHash: "x", Name: "Lee Park"}))

	require.NoError(t, repos.Reminders.Create(ctx, &crm.Reminder{
		ID: "r1", UserID: "u1", Title: "Call Noor about the offer",
		DueDate: now.Add(2 * time.Hour), Priority: crm.PriorityHigh,
	}))
	require.NoError(t, repos.Reminders.Create(ctx, &crm.Reminder{
		ID: "r2", UserID: "u1", Title: "Completed already", Completed: true,
		DueDate: now.Add(3 * time.Hour), Priority: crm.PriorityLow,
	}))
	require.NoError(t, repos.Reminders.Create(ctx, &crm.Reminder{
		ID: "r3", UserID: "u2", Title: "Due next week",
		DueDate: now.Add(7 * 24 * time.Hour), Priority: crm.PriorityMedium,
	}))

	sent, err := runner.SendReminderDigests(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
}
