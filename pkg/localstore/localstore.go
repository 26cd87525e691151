// Package localstore is the on-disk fallback cache used when no remote
// database is configured or the remote is unreachable. It keeps one JSON
// snapshot per user per collection in a small SQLite file, so a workspace
// can load and keep working offline with whatever it saved last.
package localstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/dmaldonado/nestdesk/pkg/crm"
)

const (
	keyContacts  = "crm_contacts_v2"
	keyReminders = "crm_reminders_v2"
	keyTemplates = "crm_templates"
)

type entry struct {
	Key   string `gorm:"primaryKey;size:128"`
	Value []byte `gorm:"type:blob;not null"`
}

func (entry) TableName() string { return "snapshots" }

// Store reads and writes per-user collection snapshots.
type Store struct {
	database *gorm.DB
}

// Open creates the cache file (and its directory) if needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("%s?_busy_timeout=5000", path)
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	if err := database.AutoMigrate(&entry{}); err != nil {
		return nil, fmt.Errorf("migrate cache: %w", err)
	}
	return &Store{database: database}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	sqlDB, err := s.database.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Snapshot is everything the cache holds for one user.
type Snapshot struct {
	Contacts  []crm.Contact
	Reminders []crm.Reminder
	Templates []crm.Template
}

// Load returns the user's snapshot. Missing collections come back as nil
// slices; a corrupt value is treated the same as a missing one.
func (s *Store) Load(userID string) (Snapshot, error) {
	var snap Snapshot
	if err := s.load(userID, keyContacts, &snap.Contacts); err != nil {
		return Snapshot{}, err
	}
	if err := s.load(userID, keyReminders, &snap.Reminders); err != nil {
		return Snapshot{}, err
	}
	if err := s.load(userID, keyTemplates, &snap.Templates); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// SaveContacts persists the user's contact list.
func (s *Store) SaveContacts(userID string, contacts []crm.Contact) error {
	return s.save(userID, keyContacts, contacts)
}

// SaveReminders persists the user's reminder list.
func (s *Store) SaveReminders(userID string, reminders []crm.Reminder) error {
	return s.save(userID, keyReminders, reminders)
}

// SaveTemplates persists the user's template list.
func (s *Store) SaveTemplates(userID string, templates []crm.Template) error {
	return s.save(userID, keyTemplates, templates)
}

func (s *Store) load(userID, name string, out interface{}) error {
	var row entry
	err := s.database.Where("key = ?", cacheKey(userID, name)).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(row.Value, out); err != nil {
		// A half-written snapshot should not take the workspace down.
		return nil
	}
	return nil
}

func (s *Store) save(userID, name string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	row := entry{Key: cacheKey(userID, name), Value: raw}
	return s.database.Save(&row).Error
}

func cacheKey(userID, name string) string {
	return userID + ":" + name
}
