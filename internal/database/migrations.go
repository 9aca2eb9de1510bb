package database

import (
	"lagospaces/server/internal/models"

	"gorm.io/gorm"
)

// MigrateSchema creates or updates every table the marketplace uses
func MigrateSchema(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Property{},
		&models.SavedProperty{},
		&models.PropertyLike{},
		&models.Chat{},
		&models.Message{},
		&models.Notification{},
		&models.Booking{},
	)
}

func (d *Database) RunMigrations() error {
	if err := MigrateSchema(d.db); err != nil {
		return err
	}

	// Composite index for the radius search prefilter
	return d.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_properties_coordinates
		ON properties(latitude, longitude);
	`).Error
}
