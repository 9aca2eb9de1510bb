package api

import (
	"errors"
	"net/http"

	"lagospaces/server/internal/auth"
	"lagospaces/server/internal/database"
	"lagospaces/server/internal/forms"
	"lagospaces/server/internal/models"
	"lagospaces/server/internal/notify"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (h *Handler) GetChats(c *gin.Context) {
	chats, err := h.db.GetChats(auth.UserID(c))
	if err != nil {
		h.writeError(c, err, "get conversations")
		return
	}
	c.JSON(http.StatusOK, chats)
}

// GetMessages returns a conversation and marks its incoming messages as read
func (h *Handler) GetMessages(c *gin.Context) {
	messages, err := h.db.GetMessages(auth.UserID(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err, "get messages")
		return
	}
	c.JSON(http.StatusOK, messages)
}

func (h *Handler) SendMessage(c *gin.Context) {
	var form forms.MessageForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := form.Validate(); err != nil {
		h.writeError(c, err, "send message")
		return
	}

	for i := range form.Attachments {
		if form.Attachments[i].ID == "" {
			form.Attachments[i].ID = uuid.NewString()
		}
	}
	message := &models.Message{
		ID:          uuid.NewString(),
		ChatID:      c.Param("id"),
		Content:     form.Content,
		Timestamp:   h.now(),
		IsRead:      true,
		Attachments: form.Attachments,
	}
	if err := h.db.AppendMessage(auth.UserID(c), message); err != nil {
		h.writeError(c, err, "send message")
		return
	}
	c.JSON(http.StatusCreated, message)
}

func (h *Handler) GetNotifications(c *gin.Context) {
	userID := auth.UserID(c)
	notifications, err := h.db.GetNotifications(userID, c.Query("filter") == "unread")
	if err != nil {
		h.writeError(c, err, "get notifications")
		return
	}
	unread, err := h.db.CountUnreadNotifications(userID)
	if err != nil {
		h.writeError(c, err, "get notifications")
		return
	}

	now := h.now()
	for i := range notifications {
		notifications[i].RelativeTime = notify.RelativeTime(now, notifications[i].Timestamp)
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications, "unread_count": unread})
}

func (h *Handler) MarkNotificationRead(c *gin.Context) {
	if err := h.db.MarkNotificationRead(auth.UserID(c), c.Param("id")); err != nil {
		h.writeError(c, err, "mark notification as read")
		return
	}
	c.JSON(http.StatusOK, gin.H{"is_read": true})
}

func (h *Handler) MarkAllNotificationsRead(c *gin.Context) {
	if err := h.db.MarkAllNotificationsRead(auth.UserID(c)); err != nil {
		h.writeError(c, err, "mark notifications as read")
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread_count": 0})
}

func (h *Handler) GetProfile(c *gin.Context) {
	profile, err := h.db.GetProfile(c.Param("id"))
	if err != nil {
		h.writeError(c, err, "get profile")
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *Handler) GetSettings(c *gin.Context) {
	user, err := h.db.GetUser(auth.UserID(c))
	if err != nil {
		h.writeError(c, err, "get settings")
		return
	}
	c.JSON(http.StatusOK, forms.SettingsFormFor(user))
}

func (h *Handler) UpdateSettings(c *gin.Context) {
	var form forms.SettingsForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := form.Validate(); err != nil {
		h.writeError(c, err, "update settings")
		return
	}

	user, err := h.db.GetUser(auth.UserID(c))
	if err != nil {
		h.writeError(c, err, "update settings")
		return
	}
	form.Apply(user)

	if err := h.db.UpdateUserSettings(user); err != nil {
		if errors.Is(err, database.ErrEmailTaken) {
			err = forms.ValidationErrors{"email": "An account with this email already exists"}
		}
		h.writeError(c, err, "update settings")
		return
	}
	c.JSON(http.StatusOK, forms.SettingsFormFor(user))
}
