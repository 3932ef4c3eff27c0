// Package testutil opens throwaway databases for package tests.
package testutil

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/farellandr/eventbuddy/config"
	"github.com/farellandr/eventbuddy/internal/models"
)

// NewDB returns a migrated in-memory SQLite database. A single connection
// means concurrent transactions queue up behind each other, which is how
// SQLite serialises writers anyway.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_pragma=foreign_keys(1)"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Discard,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := config.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func CreateUser(t testing.TB, db *gorm.DB, role models.Role) *models.User {
	t.Helper()

	id := uuid.New()
	user := &models.User{
		ID:       id,
		FullName: "Test User",
		Email:    id.String() + "@example.com",
		Password: "not-a-hash",
		Role:     role,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

type EventOption func(*models.Event)

func WithCapacity(capacity, booked int) EventOption {
	return func(e *models.Event) {
		e.Capacity = capacity
		e.BookedSeats = booked
	}
}

func WithDate(date time.Time) EventOption {
	return func(e *models.Event) { e.EventDate = date }
}

func Inactive() EventOption {
	return func(e *models.Event) { e.IsActive = false }
}

// CreateEvent stores an active event a month from now with 100 seats unless
// options say otherwise.
func CreateEvent(t testing.TB, db *gorm.DB, opts ...EventOption) *models.Event {
	t.Helper()

	event := &models.Event{
		Title:       "Go Meetup",
		Description: "Monthly meetup",
		EventDate:   models.DateOnly(time.Now().AddDate(0, 1, 0)),
		StartTime:   "18:00",
		EndTime:     "21:00",
		Duration:    "3h",
		Location:    "Jakarta",
		Capacity:    100,
		Tags:        []string{"go"},
		IsActive:    true,
	}
	for _, opt := range opts {
		opt(event)
	}
	if err := db.Create(event).Error; err != nil {
		t.Fatalf("create event: %v", err)
	}
	return event
}

func ReloadEvent(t testing.TB, db *gorm.DB, id uuid.UUID) *models.Event {
	t.Helper()

	var event models.Event
	if err := db.Unscoped().First(&event, "id = ?", id).Error; err != nil {
		t.Fatalf("reload event: %v", err)
	}
	return &event
}
