package models

import "time"

type User struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name"`
	Email        string    `json:"email" gorm:"uniqueIndex"`
	Phone        string    `json:"phone,omitempty"`
	Avatar       string    `json:"avatar,omitempty"`
	Bio          string    `json:"bio,omitempty"`
	IsVerified   bool      `json:"is_verified"`
	IsOnline     bool      `json:"is_online"`
	LastSeen     string    `json:"last_seen,omitempty"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"-"`
	JoinedAt     time.Time `json:"joined_at"`

	NotificationPreferences NotificationPreferences `json:"notification_preferences" gorm:"embedded;embeddedPrefix:notify_"`
	PrivacySettings         PrivacySettings         `json:"privacy_settings" gorm:"embedded;embeddedPrefix:privacy_"`
}

type NotificationPreferences struct {
	Email bool `json:"email"`
	SMS   bool `json:"sms"`
	App   bool `json:"app"`
}

type PrivacySettings struct {
	ShowPhone      bool `json:"show_phone"`
	ShowEmail      bool `json:"show_email"`
	AllowMessaging bool `json:"allow_messaging"`
}

// AsOwner returns the public owner card, hiding contact details the user chose not to share
func (u *User) AsOwner(withContact bool) *Owner {
	o := &Owner{
		ID:         u.ID,
		Name:       u.Name,
		Avatar:     u.Avatar,
		IsVerified: u.IsVerified,
	}
	if withContact {
		if u.PrivacySettings.ShowPhone {
			o.Phone = u.Phone
		}
		if u.PrivacySettings.ShowEmail {
			o.Email = u.Email
		}
	}
	return o
}

// Profile is the public profile page payload
type Profile struct {
	User       *Owner     `json:"user"`
	Bio        string     `json:"bio,omitempty"`
	JoinedAt   time.Time  `json:"joined_at"`
	Properties []Property `json:"properties"`
}
