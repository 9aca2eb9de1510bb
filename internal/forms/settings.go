package forms

import (
	"strings"

	"lagospaces/server/internal/models"
)

// SettingsForm is the account settings page
type SettingsForm struct {
	Name   string `json:"name" validate:"min=2,max=80"`
	Email  string `json:"email" validate:"required,email"`
	Phone  string `json:"phone" validate:"omitempty,e164"`
	Bio    string `json:"bio" validate:"max=500"`
	Avatar string `json:"avatar" validate:"omitempty,url"`

	NotificationPreferences models.NotificationPreferences `json:"notification_preferences"`
	PrivacySettings         models.PrivacySettings         `json:"privacy_settings"`
}

var settingsMessages = messages{
	"name":   "Name must be at least 2 characters",
	"email":  "Please enter a valid email address",
	"phone":  "Please enter a phone number in international format, e.g. +2348012345678",
	"bio":    "Bio must be at most 500 characters",
	"avatar": "Avatar must be a valid URL",
}

func (f *SettingsForm) Validate() error {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	f.Phone = strings.ReplaceAll(strings.TrimSpace(f.Phone), " ", "")
	return merge(check(f, settingsMessages))
}

// Apply copies the form onto the user
func (f *SettingsForm) Apply(u *models.User) {
	u.Name = f.Name
	u.Email = strings.ToLower(f.Email)
	u.Phone = f.Phone
	u.Bio = f.Bio
	if f.Avatar != "" {
		u.Avatar = f.Avatar
	}
	u.NotificationPreferences = f.NotificationPreferences
	u.PrivacySettings = f.PrivacySettings
}

// SettingsFormFor pre-fills the form from the stored user
func SettingsFormFor(u *models.User) SettingsForm {
	return SettingsForm{
		Name:                    u.Name,
		Email:                   u.Email,
		Phone:                   u.Phone,
		Bio:                     u.Bio,
		Avatar:                  u.Avatar,
		NotificationPreferences: u.NotificationPreferences,
		PrivacySettings:         u.PrivacySettings,
	}
}
