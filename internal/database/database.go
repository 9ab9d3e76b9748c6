package database

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Database is a write-only journal of liquidation attempts
type Database struct {
	db *gorm.DB
}

// Attempt statuses
const (
	StatusBroadcast = "broadcast"
	StatusFailed    = "failed"
)

// Models

// LiquidationAttempt is one submitted (or rejected) liquidation tx
type LiquidationAttempt struct {
	ID           uint   `gorm:"primaryKey;autoIncrement"`
	Market       string `gorm:"index"`
	Addresses    string // comma-separated owners
	Candidates   int
	Status       string `gorm:"index"` // "broadcast", "failed"
	TxHash       string
	ErrorMessage string
	CreatedAt    time.Time
}

// New opens the journal at dbPath. A postgres:// or postgresql:// URL uses
// the postgres driver; anything else is a sqlite file whose directory is
// created first. The schema is migrated on open.
func New(dbPath string) (*Database, error) {
	var db *gorm.DB
	var err error

	// Check if this is a PostgreSQL connection string
	if strings.HasPrefix(dbPath, "postgres://") || strings.HasPrefix(dbPath, "postgresql://") {
		db, err = gorm.Open(postgres.Open(dbPath), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if err != nil {
			return nil, err
		}
		log.Info().Msg("Journal connected (PostgreSQL)")
	} else {
		// SQLite fallback
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
		db, err = gorm.Open(sqlite.Open(dbPath), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if err != nil {
			return nil, err
		}
		log.Info().Str("path", dbPath).Msg("Journal initialized (SQLite)")
	}

	if err := db.AutoMigrate(&LiquidationAttempt{}); err != nil {
		return nil, err
	}

	return &Database{db: db}, nil
}

// RecordAttempt stores one liquidation attempt
func (d *Database) RecordAttempt(attempt *LiquidationAttempt) error {
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = time.Now()
	}
	return d.db.Create(attempt).Error
}

// RecentAttempts returns the last limit attempts, newest first
func (d *Database) RecentAttempts(limit int) ([]LiquidationAttempt, error) {
	var attempts []LiquidationAttempt
	err := d.db.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&attempts).Error
	return attempts, err
}

// Close releases the underlying connection pool
func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
