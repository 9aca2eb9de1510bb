package database

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var ErrNotFound = errors.New("record not found")

type Database struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewDatabase opens the sqlite store behind dsn. The marketplace runs on an in-memory
// database, so the pool is pinned to a single long-lived connection to keep it alive.
func NewDatabase(dsn string, logger *logrus.Logger) (*Database, error) {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxLifetime(0)

	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, err
	}

	return &Database{db: db, logger: logger}, nil
}

// NewTestDB returns an isolated, empty in-memory database
func NewTestDB() (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:test_%s?mode=memory&cache=shared", uuid.NewString())
	d, err := NewDatabase(dsn, logrus.New())
	if err != nil {
		return nil, err
	}
	return d.db, nil
}

// Wrap builds a Database around an already opened gorm handle
func Wrap(db *gorm.DB, logger *logrus.Logger) *Database {
	if logger == nil {
		logger = logrus.New()
	}
	return &Database{db: db, logger: logger}
}

func (d *Database) GetDB() *gorm.DB {
	return d.db
}

func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
