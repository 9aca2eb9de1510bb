package database

import (
	"fmt"
	"strings"
	"time"

	"lagospaces/server/config"
	"lagospaces/server/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	DemoUserID   = "demo"
	DemoEmail    = "demo@example.com"
	DemoPassword = "password123"
)

var lagos = time.FixedZone("WAT", 60*60)

func at(layout, value string) time.Time {
	t, err := time.ParseInLocation(layout, value, lagos)
	if err != nil {
		panic(fmt.Sprintf("bad fixture time %q: %v", value, err))
	}
	return t
}

func minute(v string) time.Time { return at("2006-01-02 15:04", v) }

// Neighbourhoods with listings that are not offered as search chips
var extraCentres = map[string][]float64{
	"Banana Island": {6.4573, 3.4455},
}

func coords(location string) (*float64, *float64) {
	centre, ok := extraCentres[location]
	if loc := config.LocationByName(location); loc != nil {
		centre, ok = loc.Center, true
	}
	if !ok {
		return nil, nil
	}
	lat, lon := centre[0], centre[1]
	return &lat, &lon
}

// Seed loads the marketplace fixtures. It is a no-op when users already exist.
func Seed(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash demo password: %w", err)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		users := fixtureUsers(string(hash))
		if err := tx.Create(&users).Error; err != nil {
			return fmt.Errorf("failed to seed users: %w", err)
		}
		properties := fixtureProperties()
		if err := tx.Create(&properties).Error; err != nil {
			return fmt.Errorf("failed to seed properties: %w", err)
		}
		saved := []models.SavedProperty{
			{UserID: DemoUserID, PropertyID: "1", SavedAt: at("2006-01-02T15:04:05", "2023-09-15T10:30:00")},
			{UserID: DemoUserID, PropertyID: "3", SavedAt: at("2006-01-02T15:04:05", "2023-09-10T15:45:00")},
			{UserID: DemoUserID, PropertyID: "5", SavedAt: at("2006-01-02T15:04:05", "2023-09-05T09:20:00")},
		}
		if err := tx.Create(&saved).Error; err != nil {
			return fmt.Errorf("failed to seed saved properties: %w", err)
		}
		likes := []models.PropertyLike{{UserID: DemoUserID, PropertyID: "2"}}
		if err := tx.Create(&likes).Error; err != nil {
			return fmt.Errorf("failed to seed likes: %w", err)
		}
		chats, messages := fixtureChats()
		if err := tx.Create(&chats).Error; err != nil {
			return fmt.Errorf("failed to seed chats: %w", err)
		}
		if err := tx.Create(&messages).Error; err != nil {
			return fmt.Errorf("failed to seed messages: %w", err)
		}
		notifications := fixtureNotifications()
		if err := tx.Create(&notifications).Error; err != nil {
			return fmt.Errorf("failed to seed notifications: %w", err)
		}
		return nil
	})
}

func fixtureUsers(demoHash string) []models.User {
	joined := at("2006-01-02", "2023-01-15")
	return []models.User{
		{
			ID: DemoUserID, Name: "John Doe", Email: DemoEmail, Phone: "+2348098765432",
			Avatar:     "https://randomuser.me/api/portraits/men/32.jpg",
			IsVerified: true, IsOnline: true, PasswordHash: demoHash, IsActive: true, JoinedAt: joined,
			NotificationPreferences: models.NotificationPreferences{Email: true, App: true},
			PrivacySettings:         models.PrivacySettings{AllowMessaging: true},
		},
		{
			ID: "user1", Name: "Sarah Johnson", Email: "sarah@example.com", Phone: "+2348012345678",
			Avatar:     "https://randomuser.me/api/portraits/women/44.jpg",
			Bio:        "Property owner with multiple apartments in Lagos. I ensure all my properties are well-maintained and provide the best service to my tenants.",
			IsVerified: true, IsOnline: true, JoinedAt: joined,
			NotificationPreferences: models.NotificationPreferences{Email: true, App: true},
			PrivacySettings:         models.PrivacySettings{ShowPhone: true, ShowEmail: true, AllowMessaging: true},
		},
		{
			ID: "user2", Name: "David Okafor", Email: "david@example.com", LastSeen: "Yesterday", JoinedAt: joined,
			PrivacySettings: models.PrivacySettings{AllowMessaging: true},
		},
		{
			ID: "user3", Name: "Jennifer Balogun", Email: "jennifer@example.com",
			Avatar:     "https://randomuser.me/api/portraits/women/68.jpg",
			IsVerified: true, IsOnline: true, JoinedAt: joined,
			PrivacySettings: models.PrivacySettings{AllowMessaging: true},
		},
		{
			ID: "user4", Name: "Michael Adeyemi", Email: "michael@example.com", LastSeen: "2 days ago",
			IsVerified: true, JoinedAt: joined,
			PrivacySettings: models.PrivacySettings{AllowMessaging: true},
		},
		{
			ID: "user5", Name: "Tolu Akande", Email: "tolu@example.com", LastSeen: "1 week ago",
			Avatar:   "https://randomuser.me/api/portraits/men/22.jpg",
			JoinedAt: joined,
			PrivacySettings: models.PrivacySettings{AllowMessaging: true},
		},
		{
			ID: "user6", Name: "Alex Okonkwo", Email: "alex@example.com",
			Avatar:     "https://randomuser.me/api/portraits/men/36.jpg",
			IsVerified: true, JoinedAt: joined,
			PrivacySettings: models.PrivacySettings{AllowMessaging: true},
		},
	}
}

func fixtureProperties() []models.Property {
	available := at("2006-01-02", "2023-10-01")
	created := at("2006-01-02", "2023-09-01")

	props := []models.Property{
		{
			ID: "1", Title: "Modern Apartment with Ocean View", Location: "Victoria Island, Lagos",
			Description: "Stunning ocean view apartment with modern amenities, perfect for young professionals.",
			Note:        "Stunning ocean view apartment with modern amenities, perfect for young professionals.",
			Price:       450000,
			ImageURLs: []string{
				"https://images.unsplash.com/photo-1522708323590-d24dbb6b0267?auto=format&fit=crop&w=1000&q=80",
				"https://images.unsplash.com/photo-1493809842364-78817add7ffb?auto=format&fit=crop&w=1000&q=80",
				"https://images.unsplash.com/photo-1600607687644-a6ed68e3f2ce?auto=format&fit=crop&w=1000&q=80",
			},
			VideoURL: "https://example.com/video1.mp4",
			Bedrooms: 2, Bathrooms: 2, Size: "120 sqm", PropertyType: "Apartment",
			Features:  []string{"2 Bedrooms", "2 Bathrooms", "Fully Furnished", "24/7 Security", "Swimming Pool", "Gym"},
			Amenities: []string{"Water", "Electricity", "Internet", "Parking Space", "CCTV"},
			IsVerified: true, IsFeatured: true, Likes: 245, Comments: 32,
			AvailableOn: &available, LeaseTerm: "1 year", OwnerID: "user1",
		},
		{
			ID: "2", Title: "Cozy 2-Bedroom Flat", Location: "Lekki Phase 1, Lagos",
			Note:  "Comfortable flat in a secure compound with 24/7 power and water supply.",
			Price: 320000,
			ImageURLs: []string{
				"https://images.unsplash.com/photo-1493809842364-78817add7ffb?auto=format&fit=crop&w=1000&q=80",
				"https://images.unsplash.com/photo-1502005097973-6a7082348e28",
			},
			Bedrooms: 2, Bathrooms: 1, Size: "85 sqm", PropertyType: "Apartment",
			IsVerified: true, Likes: 129, Comments: 18, OwnerID: "user2",
		},
		{
			ID: "3", Title: "Luxury Penthouse with Pool", Location: "Ikoyi, Lagos",
			Note:  "Exquisite penthouse with private pool and breathtaking city views.",
			Price: 950000,
			ImageURLs: []string{
				"https://images.unsplash.com/photo-1600607687644-a6ed68e3f2ce?auto=format&fit=crop&w=1000&q=80",
				"https://images.unsplash.com/photo-1600585152220-90363fe7e115",
				"https://images.unsplash.com/photo-1600566753086-00f18fb6b3ea",
			},
			VideoURL: "https://example.com/video3.mp4",
			Bedrooms: 4, Bathrooms: 3, Size: "250 sqm", PropertyType: "Penthouse",
			IsVerified: true, IsFeatured: true, Likes: 524, Comments: 64, OwnerID: "user3",
		},
		{
			ID: "4", Title: "Spacious 3-Bedroom Apartment", Location: "Ikeja GRA, Lagos",
			Note:  "Family-friendly apartment in a quiet neighborhood with excellent amenities.",
			Price: 550000,
			ImageURLs: []string{
				"https://images.unsplash.com/photo-1617104678098-de229db51b21?auto=format&fit=crop&w=1000&q=80",
				"https://images.unsplash.com/photo-1586105251261-72a756497a11",
			},
			Bedrooms: 3, Bathrooms: 2, Size: "140 sqm", PropertyType: "Apartment",
			IsVerified: true, Likes: 92, Comments: 7, OwnerID: "user4",
		},
		{
			ID: "5", Title: "Stylish Studio Apartment", Location: "Yaba, Lagos",
			Note:  "Perfect for students or young professionals, located close to tech hubs.",
			Price: 250000,
			ImageURLs: []string{
				"https://images.unsplash.com/photo-1626178793926-22b28830aa30?auto=format&fit=crop&w=1000&q=80",
				"https://images.unsplash.com/photo-1586023492125-27b2c045efd7",
			},
			VideoURL: "https://example.com/video5.mp4",
			Bedrooms: 1, Bathrooms: 1, Size: "60 sqm", PropertyType: "Studio",
			Likes: 78, Comments: 12, OwnerID: "user5",
		},
		{
			ID: "6", Title: "Waterfront 4-Bedroom Villa", Location: "Banana Island, Lagos",
			Note:  "Exclusive waterfront villa with private garden and boat dock.",
			Price: 1200000,
			ImageURLs: []string{
				"https://images.unsplash.com/photo-1613977257363-707ba9348227",
				"https://images.unsplash.com/photo-1600210492486-724fe5c67fb0",
				"https://images.unsplash.com/photo-1560185127-6ed189bf02f4",
			},
			Bedrooms: 4, Bathrooms: 4, Size: "400 sqm", PropertyType: "House",
			IsVerified: true, IsFeatured: true, OwnerID: "user6",
		},
	}

	for i := range props {
		props[i].Currency = config.Currency
		props[i].CreatedAt = created.Add(time.Duration(i) * time.Hour)
		props[i].Latitude, props[i].Longitude = coords(strings.TrimSuffix(props[i].Location, ", Lagos"))
	}
	return props
}

func fixtureChats() ([]models.Chat, []models.Message) {
	chats := []models.Chat{
		{ID: "chat1", UserID: DemoUserID, ParticipantID: "user1"},
		{ID: "chat2", UserID: DemoUserID, ParticipantID: "user2"},
		{ID: "chat3", UserID: DemoUserID, ParticipantID: "user3"},
		{ID: "chat4", UserID: DemoUserID, ParticipantID: "user4"},
		{ID: "chat5", UserID: DemoUserID, ParticipantID: "user5"},
	}

	msg := func(chat, id, ts, content string, own, read bool) models.Message {
		return models.Message{
			ID: chat + "-" + id, ChatID: chat, Content: content,
			Timestamp: minute(ts), IsOwnMessage: own, IsRead: read,
		}
	}

	messages := []models.Message{
		msg("chat1", "msg1", "2023-05-15 14:25", "Hello, I saw your listing for the apartment on Victoria Island.", false, true),
		msg("chat1", "msg2", "2023-05-15 14:30", "Is the apartment still available?", false, true),
		msg("chat1", "msg3", "2023-05-15 14:32", "Yes, it is still available. Are you interested in viewing it?", true, true),
		msg("chat2", "msg1", "2023-05-15 11:40", "Hi, I'm interested in your 2-bedroom flat in Lekki Phase 1.", false, false),
		msg("chat2", "msg2", "2023-05-15 11:45", "I would like to schedule a viewing for the flat in Lekki", false, false),
		msg("chat3", "msg1", "2023-05-14 18:15", "I love the penthouse you posted. How much is it again?", false, true),
		msg("chat3", "msg2", "2023-05-14 18:20", "It's going for ₦950,000 per month. Utilities included.", true, true),
		msg("chat3", "msg3", "2023-05-14 18:22", "The property looks amazing. When can I move in?", true, true),
		msg("chat3", "msg4", "2023-05-14 18:30", "Great! We can arrange for you to move in as early as next week if you're ready.", false, true),
		msg("chat4", "msg1", "2023-05-12 15:10", "Thank you for showing me the apartment. I'll get back to you soon.", false, true),
		msg("chat5", "msg1", "2023-05-10 09:40", "Hi, I'm interested in the studio apartment in Yaba.", false, true),
		msg("chat5", "msg2", "2023-05-10 09:45", "Is there parking available?", false, true),
		msg("chat5", "msg3", "2023-05-10 09:50", "Yes, there's a dedicated parking spot for each unit.", true, true),
	}
	messages[8].Attachments = []models.Attachment{{
		ID: "att1", Type: "image", Name: "Penthouse-view.jpg",
		URL: "https://images.unsplash.com/photo-1600607687644-a6ed68e3f2ce",
	}}

	for i := range chats {
		chats[i].CreatedAt = minute("2023-05-01 09:00")
	}
	return chats, messages
}

func fixtureNotifications() []models.Notification {
	ts := func(v string) time.Time { return at(time.RFC3339, v) }
	return []models.Notification{
		{
			ID: "1", UserID: DemoUserID, Type: models.NotificationVisitRequest, Title: "Visit Request",
			Message:   `John Doe wants to visit your property "Modern Apartment with Ocean View" on Friday, May 10, 2024 at 2:00 PM.`,
			Timestamp: ts("2024-05-08T10:30:00Z"), ActionLink: "/visits/1", ActionText: "Respond",
			SenderImage: "https://randomuser.me/api/portraits/men/32.jpg", SenderName: "John Doe",
		},
		{
			ID: "2", UserID: DemoUserID, Type: models.NotificationPayment, Title: "Payment Refund",
			Message:   "Your refund of ₦5,000 for property visit has been processed successfully.",
			Timestamp: ts("2024-05-07T15:45:00Z"), ActionLink: "/transactions", ActionText: "View Details",
		},
		{
			ID: "3", UserID: DemoUserID, Type: models.NotificationMessage, Title: "New Message",
			Message:   "You have a new message from Sarah Johnson regarding her property listing.",
			Timestamp: ts("2024-05-06T09:20:00Z"), IsRead: true,
			ActionLink: "/messages/sarah-johnson", ActionText: "Read Message",
			SenderImage: "https://randomuser.me/api/portraits/women/44.jpg", SenderName: "Sarah Johnson",
		},
		{
			ID: "4", UserID: DemoUserID, Type: models.NotificationVisitConfirmed, Title: "Visit Confirmed",
			Message:   `Your visit to "Luxury Penthouse with Pool" has been confirmed for Sunday, May 12, 2024 at 10:00 AM.`,
			Timestamp: ts("2024-05-05T18:15:00Z"), IsRead: true,
			ActionLink: "/visits/confirmed", ActionText: "View Details",
		},
		{
			ID: "5", UserID: DemoUserID, Type: models.NotificationSystem, Title: "Verification Complete",
			Message:   "Your identity has been successfully verified. You can now access all features of LAGOSPACES.",
			Timestamp: ts("2024-05-04T12:00:00Z"), IsRead: true,
		},
		{
			ID: "6", UserID: DemoUserID, Type: models.NotificationVisitReminder, Title: "Visit Reminder",
			Message:   `Reminder: You have a scheduled visit for "Cozy 2-Bedroom Flat" tomorrow at 4:00 PM.`,
			Timestamp: ts("2024-05-03T08:30:00Z"), IsRead: true,
			ActionLink: "/visits/scheduled", ActionText: "View Details",
		},
	}
}
