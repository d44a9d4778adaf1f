// Package journal keeps a local record of the mutating actions issued from
// this machine. It is informational only; the API stays the source of truth.
package journal

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Entry is one recorded action.
type Entry struct {
	ID          string    `json:"id" yaml:"id" gorm:"primaryKey;type:varchar(26)"`
	Action      string    `json:"action" yaml:"action" gorm:"not null;index"`
	Target      string    `json:"target" yaml:"target"`
	Environment string    `json:"environment" yaml:"environment"`
	Success     bool      `json:"success" yaml:"success" gorm:"not null"`
	RequestedAt time.Time `json:"requested_at" yaml:"requested_at" gorm:"not null;index"`
}

// BeforeCreate generates a ULID for the ID field if it's empty
func (e *Entry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = ulid.Make().String()
	}
	return nil
}

// Journal stores entries in SQLite.
type Journal struct {
	db  *gorm.DB
	now func() time.Time
}

// DefaultPath returns ~/.config/wheelx/history.db.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "wheelx", "history.db"), nil
}

// Open opens or creates the journal database at path.
func Open(path string) (*Journal, error) {
	const busyTimeout = 5000 // 5 seconds

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)", path, busyTimeout)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.New(
			log.New(os.Stderr, "\r\n", log.LstdFlags),
			logger.Config{
				LogLevel:                  logger.Error,
				IgnoreRecordNotFoundError: true,
				SlowThreshold:             200 * time.Millisecond,
			},
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	// one writer; the CLI never needs more
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&Entry{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate journal: %w", err)
	}

	return &Journal{db: db, now: time.Now}, nil
}

// Record appends an entry.
func (j *Journal) Record(ctx context.Context, action, target, environment string, success bool) (*Entry, error) {
	e := &Entry{
		Action:      action,
		Target:      target,
		Environment: environment,
		Success:     success,
		RequestedAt: j.now().UTC(),
	}
	if err := j.db.WithContext(ctx).Create(e).Error; err != nil {
		return nil, fmt.Errorf("failed to record %s: %w", action, err)
	}
	return e, nil
}

// Recent returns up to limit entries, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit < 1 {
		limit = 20
	}

	var entries []Entry
	err := j.db.WithContext(ctx).
		Order("requested_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list journal: %w", err)
	}
	return entries, nil
}

// Close releases the database.
func (j *Journal) Close() error {
	sqlDB, err := j.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
