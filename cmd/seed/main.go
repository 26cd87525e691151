package main

import (
	"context"
	"flag"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmaldonado/nestdesk/config"
	"github.com/dmaldonado/nestdesk/pkg/auth"
	"github.com/dmaldonado/nestdesk/pkg/crm"
	"github.com/dmaldonado/nestdesk/pkg/database"
	"github.com/dmaldonado/nestdesk/pkg/repository"
	"github.com/dmaldonado/nestdesk/pkg/testdata"
)

// Seeds the database with a demo agent account and generated contacts.
// Usage: go run ./cmd/seed -count 200 -email demo@nestdesk.dev
func main() {
	count := flag.Int("count", 100, "number of contacts to generate")
	email := flag.String("email", "demo@nestdesk.dev", "email of the account to seed under")
	password := flag.String("password", "demo1234", "password for the account when it has to be created")
	name := flag.String("name", "Demo Agent", "display name for the account")
	flag.Parse()

	cfg := config.Load()

	var db *gorm.DB
	var err error
	if cfg.RemoteConfigured() {
		db, err = database.Open(cfg.DatabaseURL)
	} else {
		db, err = database.OpenLocal(cfg.LocalStorePath)
	}
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}

	ctx := context.Background()
	users := repository.NewUserRepository(db)

	user, err := users.FindByEmail(ctx, *email)
	if err != nil {
		hash, err := auth.HashPassword(*password)
		if err != nil {
			log.Fatalf("❌ Failed to hash password: %v", err)
		}
		user = &crm.User{
			ID:               uuid.NewString(),
			Email:            *email,
			PasswordHash:     hash,
			Name:             *name,
			SubscriptionTier: crm.TierFree,
			Role:             "agent",
		}
		if err := users.Create(ctx, user); err != nil {
			log.Fatalf("❌ Failed to create user: %v", err)
		}
		log.Printf("✅ Created account %s (password: %s)", *email, *password)
	} else {
		log.Printf("ℹ️  Using existing account %s", *email)
	}

	log.Printf("🌱 Seeding %d contacts for %s...", *count, user.Email)

	contacts := testdata.GenerateContactsForUser(user.ID, *count)
	if err := testdata.BulkInsertContacts(ctx, db, contacts, 100); err != nil {
		log.Fatalf("❌ Failed to insert contacts: %v", err)
	}

	var total int64
	if err := db.Model(&crm.Contact{}).Where("user_id = ?", user.ID).Count(&total).Error; err != nil {
		log.Fatalf("❌ Failed to count contacts: %v", err)
	}

	log.Printf("🎉 Seeding complete! %s now has %d contacts", user.Email, total)
}
