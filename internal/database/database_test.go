package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"lagospaces/server/internal/models"
)

func setupTestDB(t *testing.T) *Database {
	t.Helper()
	gdb, err := NewTestDB()
	require.NoError(t, err)
	require.NoError(t, MigrateSchema(gdb))
	require.NoError(t, Seed(gdb))

	db := Wrap(gdb, nil)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSeed_IsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, Seed(db.GetDB()))

	properties, err := db.GetAllProperties()
	require.NoError(t, err)
	assert.Len(t, properties, 6)

	demo, err := db.GetUserByEmail("DEMO@example.com")
	require.NoError(t, err)
	assert.Equal(t, DemoUserID, demo.ID)
	assert.True(t, demo.IsActive)
	assert.NotEqual(t, DemoPassword, demo.PasswordHash)
}

func TestGetProperty(t *testing.T) {
	db := setupTestDB(t)

	p, err := db.GetProperty("3", false)
	require.NoError(t, err)
	assert.Equal(t, "Luxury Penthouse with Pool", p.Title)
	assert.Equal(t, "₦", p.Currency)
	require.NotNil(t, p.Owner)
	assert.Equal(t, "user3", p.Owner.ID)
	require.NotNil(t, p.Latitude)

	_, err = db.GetProperty("missing", false)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetFeaturedProperties(t *testing.T) {
	db := setupTestDB(t)

	featured, err := db.GetFeaturedProperties()
	require.NoError(t, err)

	ids := make([]string, len(featured))
	for i, p := range featured {
		ids[i] = p.ID
		assert.True(t, p.IsFeatured)
	}
	assert.ElementsMatch(t, []string{"1", "3", "6"}, ids)
}

func TestSavedProperties(t *testing.T) {
	db := setupTestDB(t)

	saved, err := db.GetSavedProperties(DemoUserID)
	require.NoError(t, err)
	require.Len(t, saved, 3)
	assert.Equal(t, "1", saved[0].ID)
	assert.Equal(t, "5", saved[2].ID)

	t.Run("remove exactly one", func(t *testing.T) {
		require.NoError(t, db.RemoveSavedProperty(DemoUserID, "3"))

		saved, err := db.GetSavedProperties(DemoUserID)
		require.NoError(t, err)
		require.Len(t, saved, 2)
		assert.Equal(t, "1", saved[0].ID)
		assert.Equal(t, "5", saved[1].ID)
	})

	t.Run("remove missing leaves list unchanged", func(t *testing.T) {
		assert.ErrorIs(t, db.RemoveSavedProperty(DemoUserID, "3"), ErrNotFound)

		saved, err := db.GetSavedProperties(DemoUserID)
		require.NoError(t, err)
		assert.Len(t, saved, 2)
	})

	t.Run("save is idempotent", func(t *testing.T) {
		require.NoError(t, db.SaveProperty(DemoUserID, "2"))
		require.NoError(t, db.SaveProperty(DemoUserID, "2"))

		saved, err := db.GetSavedProperties(DemoUserID)
		require.NoError(t, err)
		assert.Len(t, saved, 3)
		assert.Equal(t, "2", saved[0].ID)
	})

	t.Run("save unknown property", func(t *testing.T) {
		assert.ErrorIs(t, db.SaveProperty(DemoUserID, "missing"), ErrNotFound)
	})

	t.Run("toggle", func(t *testing.T) {
		on, err := db.ToggleSaved(DemoUserID, "4")
		require.NoError(t, err)
		assert.True(t, on)

		on, err = db.ToggleSaved(DemoUserID, "4")
		require.NoError(t, err)
		assert.False(t, on)
	})
}

func TestToggleLike(t *testing.T) {
	db := setupTestDB(t)

	liked, likes, err := db.ToggleLike(DemoUserID, "2")
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Equal(t, 128, likes)

	liked, likes, err = db.ToggleLike(DemoUserID, "2")
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, 129, likes)

	_, _, err = db.ToggleLike(DemoUserID, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetFeed(t *testing.T) {
	db := setupTestDB(t)

	feed, err := db.GetFeed(DemoUserID)
	require.NoError(t, err)
	require.Len(t, feed, 6)

	state := map[string]models.FeedItem{}
	for _, item := range feed {
		state[item.ID] = item
	}
	assert.True(t, state["2"].IsLiked)
	assert.True(t, state["1"].IsSaved)
	assert.False(t, state["4"].IsSaved)

	anonymous, err := db.GetFeed("")
	require.NoError(t, err)
	for _, item := range anonymous {
		assert.False(t, item.IsLiked)
		assert.False(t, item.IsSaved)
	}
}

func TestChats(t *testing.T) {
	db := setupTestDB(t)

	chats, err := db.GetChats(DemoUserID)
	require.NoError(t, err)
	require.Len(t, chats, 5)
	assert.Equal(t, "chat1", chats[0].ID)
	require.NotNil(t, chats[0].Participant)
	assert.Equal(t, "user1", chats[0].Participant.ID)

	var chat2 models.Chat
	for _, c := range chats {
		if c.ID == "chat2" {
			chat2 = c
		}
	}
	assert.Equal(t, 2, chat2.UnreadCount)

	messages, err := db.GetMessages(DemoUserID, "chat2")
	require.NoError(t, err)
	assert.Len(t, messages, 2)

	chats, err = db.GetChats(DemoUserID)
	require.NoError(t, err)
	for _, c := range chats {
		assert.Zero(t, c.UnreadCount, c.ID)
	}

	_, err = db.GetMessages("user1", "chat2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAppendMessage(t *testing.T) {
	db := setupTestDB(t)

	msg := &models.Message{ID: "m-new", ChatID: "chat4", Content: "Is it still available?", Timestamp: time.Now().UTC()}
	require.NoError(t, db.AppendMessage(DemoUserID, msg))
	assert.True(t, msg.IsOwnMessage)

	chats, err := db.GetChats(DemoUserID)
	require.NoError(t, err)
	assert.Equal(t, "chat4", chats[0].ID)
	assert.Equal(t, "Is it still available?", chats[0].LastMessage.Content)

	err = db.AppendMessage(DemoUserID, &models.Message{ID: "m-x", ChatID: "missing"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNotifications(t *testing.T) {
	db := setupTestDB(t)

	all, err := db.GetNotifications(DemoUserID, false)
	require.NoError(t, err)
	assert.Len(t, all, 6)
	assert.Equal(t, "1", all[0].ID)

	unread, err := db.GetNotifications(DemoUserID, true)
	require.NoError(t, err)
	assert.Len(t, unread, 2)

	require.NoError(t, db.MarkNotificationRead(DemoUserID, "1"))
	n, err := db.CountUnreadNotifications(DemoUserID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	assert.ErrorIs(t, db.MarkNotificationRead("user1", "2"), ErrNotFound)

	require.NoError(t, db.MarkAllNotificationsRead(DemoUserID))
	n, err = db.CountUnreadNotifications(DemoUserID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestUsers(t *testing.T) {
	db := setupTestDB(t)

	err := db.CreateUser(&models.User{ID: "dup", Email: DemoEmail})
	assert.ErrorIs(t, err, ErrEmailTaken)

	user, err := db.GetUser(DemoUserID)
	require.NoError(t, err)
	user.Name = "Johnny Doe"
	user.Bio = "Looking for a flat near Yaba"
	user.PrivacySettings.ShowPhone = true
	require.NoError(t, db.UpdateUserSettings(user))

	updated, err := db.GetUser(DemoUserID)
	require.NoError(t, err)
	assert.Equal(t, "Johnny Doe", updated.Name)
	assert.Equal(t, "Looking for a flat near Yaba", updated.Bio)
	assert.True(t, updated.PrivacySettings.ShowPhone)

	updated.Email = "sarah@example.com"
	assert.ErrorIs(t, db.UpdateUserSettings(updated), ErrEmailTaken)

	profile, err := db.GetProfile("user3")
	require.NoError(t, err)
	require.Len(t, profile.Properties, 1)
	assert.Equal(t, "3", profile.Properties[0].ID)

	require.NoError(t, db.GetDB().Transaction(func(tx *gorm.DB) error {
		return MarkUserVerified(tx, "user5")
	}))
	user5, err := db.GetUser("user5")
	require.NoError(t, err)
	assert.True(t, user5.IsVerified)
}

func TestBookings(t *testing.T) {
	db := setupTestDB(t)
	now := time.Now().UTC()

	bookings := []models.Booking{
		{ID: "b1", PropertyID: "1", TenantID: DemoUserID, OwnerID: "user1", Fee: 5000, PaymentMethod: models.PaymentCard, Status: models.BookingPendingVisit, CreatedAt: now},
		{ID: "b2", PropertyID: "2", TenantID: DemoUserID, OwnerID: "user2", Fee: 5000, PaymentMethod: models.PaymentUSSD, Status: models.BookingPendingVisit, CreatedAt: now.Add(-8 * 24 * time.Hour)},
	}
	require.NoError(t, db.GetDB().Transaction(func(tx *gorm.DB) error {
		for i := range bookings {
			if err := CreateBooking(tx, &bookings[i]); err != nil {
				return err
			}
		}
		return nil
	}))

	t.Run("user without bookings gets an empty list", func(t *testing.T) {
		none, err := db.GetBookingsForUser("user3")
		require.NoError(t, err)
		assert.NotNil(t, none)
		assert.Empty(t, none)
	})

	t.Run("only the owner confirms", func(t *testing.T) {
		_, err := db.ConfirmVisit("user2", "b1")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("confirm refunds", func(t *testing.T) {
		b, err := db.ConfirmVisit("user1", "b1")
		require.NoError(t, err)
		assert.Equal(t, models.BookingRefunded, b.Status)

		notifications, err := db.GetNotifications(DemoUserID, true)
		require.NoError(t, err)
		assert.Equal(t, "Your refund of ₦5,000 for property visit has been processed successfully.", notifications[0].Message)

		_, err = db.ConfirmVisit("user1", "b1")
		assert.ErrorIs(t, err, ErrBookingSettled)
	})

	t.Run("expire overdue", func(t *testing.T) {
		n, err := db.ExpireOverdueBookings(now.Add(-7 * 24 * time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		b, err := db.GetBooking("b2")
		require.NoError(t, err)
		assert.Equal(t, models.BookingForfeited, b.Status)

		mine, err := db.GetBookingsForUser(DemoUserID)
		require.NoError(t, err)
		assert.Len(t, mine, 2)
	})
}

func TestUpdateCoordinates(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, db.GetDB().Transaction(func(tx *gorm.DB) error {
		return CreateProperty(tx, &models.Property{ID: "p-new", Title: "New flat", Location: "Epe, Lagos", OwnerID: DemoUserID})
	}))

	missing, err := db.GetPropertiesWithoutCoordinates()
	require.NoError(t, err)
	require.Len(t, missing, 1)
	assert.Equal(t, "p-new", missing[0].ID)

	require.NoError(t, db.UpdateCoordinates("p-new", 6.58, 3.98))
	missing, err = db.GetPropertiesWithoutCoordinates()
	require.NoError(t, err)
	assert.Empty(t, missing)

	assert.ErrorIs(t, db.UpdateCoordinates("nope", 1, 1), ErrNotFound)
}

type stubResolver map[string][]float64

func (r stubResolver) Resolve(_ context.Context, location string) (float64, float64, error) {
	c, ok := r[location]
	if !ok {
		return 0, 0, errors.New("unknown location")
	}
	return c[0], c[1], nil
}

func TestUpdateMissingCoordinates(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, db.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := CreateProperty(tx, &models.Property{ID: "p-epe", Title: "Farmhouse", Location: "Epe, Lagos", OwnerID: DemoUserID}); err != nil {
			return err
		}
		return CreateProperty(tx, &models.Property{ID: "p-moon", Title: "Nowhere", Location: "The Moon", OwnerID: DemoUserID})
	}))

	updated, err := db.UpdateMissingCoordinates(context.Background(), stubResolver{"Epe, Lagos": {6.58, 3.98}})
	require.NoError(t, err)
	assert.Equal(t, 1, updated)

	p, err := db.GetProperty("p-epe", false)
	require.NoError(t, err)
	require.NotNil(t, p.Latitude)
	assert.InDelta(t, 6.58, *p.Latitude, 1e-9)

	missing, err := db.GetPropertiesWithoutCoordinates()
	require.NoError(t, err)
	require.Len(t, missing, 1)
	assert.Equal(t, "p-moon", missing[0].ID)
}
