package database

import (
	"errors"
	"fmt"
	"strings"

	"lagospaces/server/internal/models"

	"gorm.io/gorm"
)

var ErrEmailTaken = errors.New("email already registered")

func (d *Database) GetUser(id string) (*models.User, error) {
	var user models.User
	if err := d.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (d *Database) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := d.db.First(&user, "LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (d *Database) CreateUser(user *models.User) error {
	if _, err := d.GetUserByEmail(user.Email); err == nil {
		return ErrEmailTaken
	}
	if err := d.db.Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetProfile returns the public profile of a user together with their listings
func (d *Database) GetProfile(id string) (*models.Profile, error) {
	user, err := d.GetUser(id)
	if err != nil {
		return nil, err
	}
	properties, err := d.GetPropertiesByOwner(id)
	if err != nil {
		return nil, err
	}
	return &models.Profile{
		User:       user.AsOwner(true),
		Bio:        user.Bio,
		JoinedAt:   user.JoinedAt,
		Properties: properties,
	}, nil
}

// UpdateUserSettings saves the editable profile fields and preference toggles
func (d *Database) UpdateUserSettings(user *models.User) error {
	var taken int64
	if err := d.db.Model(&models.User{}).Where("email = ? AND id <> ?", user.Email, user.ID).Count(&taken).Error; err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if taken > 0 {
		return ErrEmailTaken
	}

	res := d.db.Model(&models.User{}).Where("id = ?", user.ID).Select(
		"name", "email", "phone", "avatar", "bio",
		"notify_email", "notify_sms", "notify_app",
		"privacy_show_phone", "privacy_show_email", "privacy_allow_messaging",
	).Updates(user)
	if res.Error != nil {
		return fmt.Errorf("failed to update settings: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkUserVerified sets the verified badge inside tx
func MarkUserVerified(tx *gorm.DB, userID string) error {
	res := tx.Model(&models.User{}).Where("id = ?", userID).Update("is_verified", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetUserTx loads a user inside tx
func GetUserTx(tx *gorm.DB, id string) (*models.User, error) {
	var user models.User
	if err := tx.First(&user, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}
