package models

import "time"

type BookingStatus string

const (
	// Fee held until the visit happens or the refund window closes
	BookingPendingVisit BookingStatus = "pending_visit"
	BookingRefunded     BookingStatus = "refunded"
	// Tenant never visited: fee split between the platform and the owner
	BookingForfeited BookingStatus = "forfeited"
)

type PaymentMethod string

const (
	PaymentCard PaymentMethod = "card"
	PaymentBank PaymentMethod = "bank"
	PaymentUSSD PaymentMethod = "ussd"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCard, PaymentBank, PaymentUSSD:
		return true
	}
	return false
}

type Booking struct {
	ID            string        `json:"id" gorm:"primaryKey"`
	PropertyID    string        `json:"property_id" gorm:"index"`
	PropertyTitle string        `json:"property_title"`
	TenantID      string        `json:"tenant_id" gorm:"index"`
	OwnerID       string        `json:"owner_id" gorm:"index"`
	VisitDate     string        `json:"visit_date"` // YYYY-MM-DD
	VisitTime     string        `json:"visit_time"`
	Note          string        `json:"note,omitempty"`
	Fee           int           `json:"fee"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	Status        BookingStatus `json:"status" gorm:"index"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}
