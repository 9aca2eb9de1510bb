package database

import (
	"context"
	"fmt"

	"lagospaces/server/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// GetAllProperties returns every listing with its owner card attached, newest first
func (d *Database) GetAllProperties() ([]models.Property, error) {
	var properties []models.Property
	if err := d.db.Order("created_at DESC").Find(&properties).Error; err != nil {
		return nil, fmt.Errorf("failed to load properties: %w", err)
	}
	if err := d.attachOwners(properties, false); err != nil {
		return nil, err
	}
	return properties, nil
}

func (d *Database) GetFeaturedProperties() ([]models.Property, error) {
	var properties []models.Property
	if err := d.db.Where("is_featured = ?", true).Order("created_at DESC").Find(&properties).Error; err != nil {
		return nil, fmt.Errorf("failed to load featured properties: %w", err)
	}
	if err := d.attachOwners(properties, false); err != nil {
		return nil, err
	}
	return properties, nil
}

// GetProperty loads a single listing. Owner contact details are included only when withContact is set
// and the owner's privacy settings allow it.
func (d *Database) GetProperty(id string, withContact bool) (*models.Property, error) {
	var property models.Property
	if err := d.db.First(&property, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	list := []models.Property{property}
	if err := d.attachOwners(list, withContact); err != nil {
		return nil, err
	}
	return &list[0], nil
}

func (d *Database) GetPropertiesByOwner(ownerID string) ([]models.Property, error) {
	var properties []models.Property
	if err := d.db.Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&properties).Error; err != nil {
		return nil, fmt.Errorf("failed to load owner properties: %w", err)
	}
	return properties, nil
}

// CreateProperty inserts a new listing inside tx
func CreateProperty(tx *gorm.DB, property *models.Property) error {
	if err := tx.Create(property).Error; err != nil {
		return fmt.Errorf("failed to create property: %w", err)
	}
	return nil
}

// GetFeed returns every listing annotated with the viewer's like and save state
func (d *Database) GetFeed(userID string) ([]models.FeedItem, error) {
	properties, err := d.GetAllProperties()
	if err != nil {
		return nil, err
	}

	liked := map[string]bool{}
	saved := map[string]bool{}
	if userID != "" {
		var likes []models.PropertyLike
		if err := d.db.Where("user_id = ?", userID).Find(&likes).Error; err != nil {
			return nil, err
		}
		for _, l := range likes {
			liked[l.PropertyID] = true
		}
		var saves []models.SavedProperty
		if err := d.db.Where("user_id = ?", userID).Find(&saves).Error; err != nil {
			return nil, err
		}
		for _, s := range saves {
			saved[s.PropertyID] = true
		}
	}

	feed := make([]models.FeedItem, len(properties))
	for i, p := range properties {
		feed[i] = models.FeedItem{Property: p, IsLiked: liked[p.ID], IsSaved: saved[p.ID]}
	}
	return feed, nil
}

// ToggleLike flips the viewer's like on a property and returns the new state and like count
func (d *Database) ToggleLike(userID, propertyID string) (bool, int, error) {
	var liked bool
	var likes int

	err := d.db.Transaction(func(tx *gorm.DB) error {
		var property models.Property
		if err := tx.First(&property, "id = ?", propertyID).Error; err != nil {
			return notFound(err)
		}

		res := tx.Where("user_id = ? AND property_id = ?", userID, propertyID).Delete(&models.PropertyLike{})
		if res.Error != nil {
			return res.Error
		}
		delta := -1
		if res.RowsAffected == 0 {
			if err := tx.Create(&models.PropertyLike{UserID: userID, PropertyID: propertyID}).Error; err != nil {
				return err
			}
			delta = 1
			liked = true
		}

		likes = property.Likes + delta
		if likes < 0 {
			likes = 0
		}
		return tx.Model(&property).Update("likes", likes).Error
	})
	if err != nil {
		return false, 0, err
	}
	return liked, likes, nil
}

// UpdateCoordinates stores resolved coordinates for a listing
func (d *Database) UpdateCoordinates(propertyID string, lat, lon float64) error {
	res := d.db.Model(&models.Property{}).Where("id = ?", propertyID).
		Updates(map[string]interface{}{"latitude": lat, "longitude": lon})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (d *Database) GetPropertiesWithoutCoordinates() ([]models.Property, error) {
	var properties []models.Property
	err := d.db.Where("latitude IS NULL OR longitude IS NULL").Find(&properties).Error
	return properties, err
}

// CoordinateResolver turns a listing location into latitude and longitude
type CoordinateResolver interface {
	Resolve(ctx context.Context, location string) (float64, float64, error)
}

// UpdateMissingCoordinates geocodes every listing stored without coordinates. Listings
// that cannot be resolved are skipped and left for the next run.
func (d *Database) UpdateMissingCoordinates(ctx context.Context, resolver CoordinateResolver) (int, error) {
	properties, err := d.GetPropertiesWithoutCoordinates()
	if err != nil {
		return 0, fmt.Errorf("failed to load properties: %w", err)
	}
	if len(properties) == 0 {
		d.logger.Info("No properties need geocoding")
		return 0, nil
	}

	var updated, failed int
	for _, p := range properties {
		if err := ctx.Err(); err != nil {
			return updated, err
		}
		lat, lon, err := resolver.Resolve(ctx, p.Location)
		if err != nil {
			failed++
			d.logger.WithError(err).WithField("property_id", p.ID).Warn("Failed to geocode property")
			continue
		}
		if err := d.UpdateCoordinates(p.ID, lat, lon); err != nil {
			return updated, err
		}
		updated++
	}

	d.logger.WithFields(logrus.Fields{
		"updated": updated,
		"failed":  failed,
	}).Info("Finished geocoding properties")
	return updated, nil
}

func (d *Database) attachOwners(properties []models.Property, withContact bool) error {
	if len(properties) == 0 {
		return nil
	}
	ids := make([]string, 0, len(properties))
	for _, p := range properties {
		ids = append(ids, p.OwnerID)
	}

	var users []models.User
	if err := d.db.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return fmt.Errorf("failed to load owners: %w", err)
	}
	byID := make(map[string]*models.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}

	for i := range properties {
		if u, ok := byID[properties[i].OwnerID]; ok {
			properties[i].Owner = u.AsOwner(withContact)
		}
	}
	return nil
}
