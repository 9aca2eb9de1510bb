package database

import (
	"errors"
	"fmt"
	"time"

	"lagospaces/server/internal/models"

	"gorm.io/gorm"
)

var ErrBookingSettled = errors.New("booking already settled")

// CreateBooking stores a paid visit booking inside tx
func CreateBooking(tx *gorm.DB, booking *models.Booking) error {
	if err := tx.Create(booking).Error; err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

func (d *Database) GetBooking(id string) (*models.Booking, error) {
	var booking models.Booking
	if err := d.db.First(&booking, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &booking, nil
}

func (d *Database) GetBookingsForUser(userID string) ([]models.Booking, error) {
	bookings := []models.Booking{}
	err := d.db.Where("tenant_id = ? OR owner_id = ?", userID, userID).Order("created_at DESC").Find(&bookings).Error
	return bookings, err
}

// ConfirmVisit is called by the owner once the tenant visited; the fee is refunded.
// Only pending bookings owned by ownerID can be confirmed.
func (d *Database) ConfirmVisit(ownerID, bookingID string) (*models.Booking, error) {
	var booking models.Booking
	err := d.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&booking, "id = ? AND owner_id = ?", bookingID, ownerID).Error; err != nil {
			return notFound(err)
		}
		if booking.Status != models.BookingPendingVisit {
			return ErrBookingSettled
		}
		booking.Status = models.BookingRefunded
		if err := tx.Save(&booking).Error; err != nil {
			return err
		}
		return InsertNotifications(tx, []models.Notification{{
			ID:         "n-" + booking.ID + "-refund",
			UserID:     booking.TenantID,
			Type:       models.NotificationPayment,
			Title:      "Payment Refund",
			Message:    fmt.Sprintf("Your refund of %s for property visit has been processed successfully.", models.FormatPrice(booking.Fee, "₦")),
			Timestamp:  time.Now().UTC(),
			ActionLink: "/transactions",
			ActionText: "View Details",
		}})
	})
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// ExpireOverdueBookings forfeits pending bookings created before cutoff and returns how many changed
func (d *Database) ExpireOverdueBookings(cutoff time.Time) (int64, error) {
	res := d.db.Model(&models.Booking{}).
		Where("status = ? AND created_at < ?", models.BookingPendingVisit, cutoff).
		Updates(map[string]interface{}{"status": models.BookingForfeited, "updated_at": time.Now().UTC()})
	return res.RowsAffected, res.Error
}
