package database

import (
	"fmt"

	"lagospaces/server/internal/models"

	"gorm.io/gorm"
)

// GetNotifications lists a user's notifications newest first, optionally only unread ones
func (d *Database) GetNotifications(userID string, unreadOnly bool) ([]models.Notification, error) {
	q := d.db.Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	var notifications []models.Notification
	if err := q.Order("timestamp DESC").Find(&notifications).Error; err != nil {
		return nil, fmt.Errorf("failed to load notifications: %w", err)
	}
	return notifications, nil
}

func (d *Database) CountUnreadNotifications(userID string) (int64, error) {
	var n int64
	err := d.db.Model(&models.Notification{}).Where("user_id = ? AND is_read = ?", userID, false).Count(&n).Error
	return n, err
}

func (d *Database) MarkNotificationRead(userID, id string) error {
	res := d.db.Model(&models.Notification{}).Where("id = ? AND user_id = ?", id, userID).Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (d *Database) MarkAllNotificationsRead(userID string) error {
	return d.db.Model(&models.Notification{}).Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
}

// InsertNotifications stores notifications inside tx
func InsertNotifications(tx *gorm.DB, notifications []models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	if err := tx.Create(&notifications).Error; err != nil {
		return fmt.Errorf("failed to insert notifications: %w", err)
	}
	return nil
}
