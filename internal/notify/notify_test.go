package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lagospaces/server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelativeTime(t *testing.T) {
	now := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"seconds", now.Add(-30 * time.Second), "Just now"},
		{"one minute", now.Add(-time.Minute), "1 minute ago"},
		{"minutes", now.Add(-15 * time.Minute), "15 minutes ago"},
		{"hours", now.Add(-2 * time.Hour), "2 hours ago"},
		{"one day", now.Add(-30 * time.Hour), "1 day ago"},
		{"days", now.Add(-6 * 24 * time.Hour), "6 days ago"},
		{"older", time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), "Mar 1, 2024"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RelativeTime(now, tt.at))
		})
	}
}

func TestFormatNotification(t *testing.T) {
	msg := FormatNotification(models.Notification{
		Type:       models.NotificationVisitRequest,
		Title:      "Visit Request",
		Message:    `Tunde wants to visit "A & B Flat"`,
		SenderName: "Tunde",
		ActionText: "View Details",
		ActionLink: "/visits/1",
	})

	assert.Contains(t, msg, "<b>Visit Request</b>")
	assert.Contains(t, msg, "A &amp; B Flat")
	assert.Contains(t, msg, "From: Tunde")
	assert.Contains(t, msg, "View Details: /visits/1")
}

func TestForward_Disabled(t *testing.T) {
	s := NewService(Config{}, nil)
	assert.False(t, s.Enabled())
	assert.NoError(t, s.Forward(context.Background(), models.Notification{Title: "x"}))
}

func TestForward_SendsToBotAPI(t *testing.T) {
	var got map[string]interface{}
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	s := NewService(Config{BotToken: "token123", ChatID: "42", APIURL: server.URL}, nil)
	require.True(t, s.Enabled())

	err := s.Forward(context.Background(), models.Notification{
		ID:      "n1",
		Type:    models.NotificationSystem,
		Title:   "Verification Complete",
		Message: "Your identity has been successfully verified.",
	})
	require.NoError(t, err)

	assert.Equal(t, "/bottoken123/sendMessage", path)
	assert.Equal(t, "42", got["chat_id"])
	assert.Equal(t, "HTML", got["parse_mode"])
	assert.Contains(t, got["text"], "Verification Complete")
}

func TestSendMessage_ErrorStatus(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{http.StatusUnauthorized, "invalid bot token"},
		{http.StatusBadRequest, "invalid chat ID"},
		{http.StatusForbidden, "blocked"},
		{http.StatusNotFound, "bot not found"},
		{http.StatusInternalServerError, "status 500"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			s := NewService(Config{BotToken: "t", ChatID: "1", APIURL: server.URL}, nil)
			err := s.SendMessage(context.Background(), "hello")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
