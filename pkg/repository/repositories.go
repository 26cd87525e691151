package repository

import "gorm.io/gorm"

// Repositories bundles the per-entity repositories over one connection.
type Repositories struct {
	Users      *UserRepository
	Contacts   *ContactRepository
	Activities *ActivityRepository
	Showings   *ShowingRepository
	Reminders  *ReminderRepository
	Templates  *TemplateRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		Users:      NewUserRepository(database),
		Contacts:   NewContactRepository(database),
		Activities: NewActivityRepository(database),
		Showings:   NewShowingRepository(database),
		Reminders:  NewReminderRepository(database),
		Templates:  NewTemplateRepository(database),
	}
}
