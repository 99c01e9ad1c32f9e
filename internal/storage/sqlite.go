package storage

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// record is a named payload row. The task collection lives in a single row
// keyed by RecordKey.
type record struct {
	Key     string `gorm:"primaryKey"`
	Payload []byte
}

// RecordBackend stores the record in a SQLite database.
type RecordBackend struct {
	db  *gorm.DB
	key string
}

// OpenRecordBackend opens a SQLite database, runs migrations and returns a
// backend bound to RecordKey.
func OpenRecordBackend(dsn string) (*RecordBackend, error) {
	if dsn == "" {
		dsn = "tomorrow_reminder.db"
	}

	if err := ensureDirForSQLite(dsn); err != nil {
		return nil, err
	}

	dbLogger := logger.New(
		log.New(os.Stdout, "", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: dbLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.AutoMigrate(&record{}); err != nil {
		return nil, fmt.Errorf("migrate db: %w", err)
	}

	return &RecordBackend{db: db, key: RecordKey}, nil
}

func (b *RecordBackend) Load() ([]byte, error) {
	var rec record
	err := b.db.First(&rec, "key = ?", b.key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load record %q: %w", b.key, err)
	}
	return rec.Payload, nil
}

func (b *RecordBackend) Save(payload []byte) error {
	rec := record{Key: b.key, Payload: payload}
	err := b.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("save record %q: %w", b.key, err)
	}
	return nil
}

// Close releases the underlying database handle.
func (b *RecordBackend) Close() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ensureDirForSQLite creates the parent dir for a SQLite file if needed.
func ensureDirForSQLite(dsn string) error {
	// Ignore DSNs with explicit mode=memory or network.
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		return nil
	}
	// Strip file: prefix if present.
	clean := strings.TrimPrefix(dsn, "file:")
	clean = strings.Split(clean, "?")[0]
	dir := filepath.Dir(clean)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create db dir %q: %w", dir, err)
	}
	return nil
}
