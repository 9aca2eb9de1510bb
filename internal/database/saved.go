package database

import (
	"errors"
	"fmt"
	"time"

	"lagospaces/server/internal/models"

	"gorm.io/gorm/clause"
)

// GetSavedProperties returns the user's saved list, most recently saved first
func (d *Database) GetSavedProperties(userID string) ([]models.SavedListing, error) {
	var saved []models.SavedProperty
	if err := d.db.Where("user_id = ?", userID).Order("saved_at DESC").Find(&saved).Error; err != nil {
		return nil, fmt.Errorf("failed to load saved properties: %w", err)
	}
	if len(saved) == 0 {
		return []models.SavedListing{}, nil
	}

	ids := make([]string, len(saved))
	for i, s := range saved {
		ids[i] = s.PropertyID
	}
	var properties []models.Property
	if err := d.db.Where("id IN ?", ids).Find(&properties).Error; err != nil {
		return nil, err
	}
	if err := d.attachOwners(properties, false); err != nil {
		return nil, err
	}
	byID := make(map[string]models.Property, len(properties))
	for _, p := range properties {
		byID[p.ID] = p
	}

	listings := make([]models.SavedListing, 0, len(saved))
	for _, s := range saved {
		if p, ok := byID[s.PropertyID]; ok {
			listings = append(listings, models.SavedListing{Property: p, SavedAt: s.SavedAt})
		}
	}
	return listings, nil
}

// SaveProperty adds a property to the saved list. Saving twice keeps the original timestamp.
func (d *Database) SaveProperty(userID, propertyID string) error {
	var property models.Property
	if err := d.db.Select("id").First(&property, "id = ?", propertyID).Error; err != nil {
		return notFound(err)
	}
	return d.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.SavedProperty{
		UserID:     userID,
		PropertyID: propertyID,
		SavedAt:    time.Now().UTC(),
	}).Error
}

// RemoveSavedProperty deletes exactly one saved entry
func (d *Database) RemoveSavedProperty(userID, propertyID string) error {
	res := d.db.Where("user_id = ? AND property_id = ?", userID, propertyID).Delete(&models.SavedProperty{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ToggleSaved flips the saved state from the feed and returns the new state
func (d *Database) ToggleSaved(userID, propertyID string) (bool, error) {
	err := d.RemoveSavedProperty(userID, propertyID)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return false, err
	}
	if err := d.SaveProperty(userID, propertyID); err != nil {
		return false, err
	}
	return true, nil
}
