package models

import (
	"strconv"
	"time"
)

type Property struct {
	ID           string     `json:"id" gorm:"primaryKey"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Note         string     `json:"note,omitempty"`
	Location     string     `json:"location" gorm:"index"`
	Price        int        `json:"price"`
	Currency     string     `json:"currency"`
	ImageURLs    []string   `json:"image_urls" gorm:"serializer:json"`
	VideoURL     string     `json:"video_url,omitempty"`
	Bedrooms     int        `json:"bedrooms"`
	Bathrooms    int        `json:"bathrooms"`
	Size         string     `json:"size"`
	PropertyType string     `json:"property_type"`
	Features     []string   `json:"features,omitempty" gorm:"serializer:json"`
	Amenities    []string   `json:"amenities,omitempty" gorm:"serializer:json"`
	IsVerified   bool       `json:"is_verified"`
	IsFeatured   bool       `json:"is_featured"`
	Likes        int        `json:"likes"`
	Comments     int        `json:"comments"`
	AvailableOn  *time.Time `json:"available_from,omitempty"`
	LeaseTerm    string     `json:"lease_term,omitempty"`
	Latitude     *float64   `json:"latitude"`
	Longitude    *float64   `json:"longitude"`
	OwnerID      string     `json:"owner_id" gorm:"index"`
	Owner        *Owner     `json:"owner,omitempty" gorm:"-"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Owner is the public view of the user who listed a property
type Owner struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Avatar     string `json:"avatar,omitempty"`
	IsVerified bool   `json:"is_verified"`
	Phone      string `json:"phone,omitempty"`
	Email      string `json:"email,omitempty"`
}

// ImageURL returns the cover image, if any
func (p *Property) ImageURL() string {
	if len(p.ImageURLs) == 0 {
		return ""
	}
	return p.ImageURLs[0]
}

type SavedProperty struct {
	UserID     string    `json:"user_id" gorm:"primaryKey"`
	PropertyID string    `json:"property_id" gorm:"primaryKey"`
	SavedAt    time.Time `json:"saved_at"`
}

// SavedListing is a saved property joined with the time it was saved
type SavedListing struct {
	Property
	SavedAt time.Time `json:"saved_at"`
}

type PropertyLike struct {
	UserID     string `gorm:"primaryKey"`
	PropertyID string `gorm:"primaryKey"`
}

// FeedItem is a property as shown in the scrolling feed
type FeedItem struct {
	Property
	IsLiked bool `json:"is_liked"`
	IsSaved bool `json:"is_saved"`
}

// FormatPrice renders an amount with thousands separators, e.g. ₦450,000
func FormatPrice(amount int, currency string) string {
	sign := ""
	if amount < 0 {
		sign, amount = "-", -amount
	}
	s := strconv.Itoa(amount)
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	return sign + currency + s
}
