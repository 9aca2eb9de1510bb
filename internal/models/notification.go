package models

import "time"

type NotificationType string

const (
	NotificationVisitRequest   NotificationType = "visit_request"
	NotificationVisitConfirmed NotificationType = "visit_confirmed"
	NotificationVisitReminder  NotificationType = "visit_reminder"
	NotificationPayment        NotificationType = "payment"
	NotificationMessage        NotificationType = "message"
	NotificationSystem         NotificationType = "system"
)

type Notification struct {
	ID          string           `json:"id" gorm:"primaryKey"`
	UserID      string           `json:"-" gorm:"index"`
	Type        NotificationType `json:"type"`
	Title       string           `json:"title"`
	Message     string           `json:"message"`
	Timestamp   time.Time        `json:"timestamp"`
	IsRead      bool             `json:"is_read"`
	ActionLink  string           `json:"action_link,omitempty"`
	ActionText  string           `json:"action_text,omitempty"`
	SenderImage string           `json:"sender_image,omitempty"`
	SenderName  string           `json:"sender_name,omitempty"`
	// Filled at read time
	RelativeTime string `json:"relative_time,omitempty" gorm:"-"`
}
