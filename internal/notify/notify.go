package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"lagospaces/server/internal/models"

	"github.com/sirupsen/logrus"
)

const defaultAPIURL = "https://api.telegram.org"

type Config struct {
	BotToken string
	ChatID   string
	APIURL   string
}

// Service forwards in-app notifications to a Telegram chat
type Service struct {
	logger *logrus.Logger
	client *http.Client
	config Config
}

func NewService(config Config, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
		logger.SetLevel(logrus.InfoLevel)
	}
	if config.APIURL == "" {
		config.APIURL = defaultAPIURL
	}

	return &Service{
		logger: logger,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		config: config,
	}
}

// Enabled reports whether both a bot token and a chat id are configured
func (s *Service) Enabled() bool {
	return s.config.BotToken != "" && s.config.ChatID != ""
}

// SendMessage sends a message to the configured Telegram chat
func (s *Service) SendMessage(ctx context.Context, message string) error {
	if !s.Enabled() {
		return nil
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", strings.TrimRight(s.config.APIURL, "/"), s.config.BotToken)
	payload := map[string]interface{}{
		"chat_id":    s.config.ChatID,
		"text":       message,
		"parse_mode": "HTML",
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal message payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to build Telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send message to Telegram API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return errors.New("invalid bot token - please check your token from @BotFather")
		case http.StatusBadRequest:
			return fmt.Errorf("invalid chat ID or message format: %s", string(body))
		case http.StatusForbidden:
			return errors.New("bot was blocked by the user or chat")
		case http.StatusNotFound:
			return errors.New("bot not found - please check your token from @BotFather")
		default:
			return fmt.Errorf("Telegram API error (status %d): %s", resp.StatusCode, string(body))
		}
	}

	return nil
}

// Forward sends a notification to the configured chat. It is a no-op when forwarding is disabled.
func (s *Service) Forward(ctx context.Context, n models.Notification) error {
	if !s.Enabled() {
		return nil
	}
	if err := s.SendMessage(ctx, FormatNotification(n)); err != nil {
		return err
	}
	s.logger.WithFields(logrus.Fields{
		"notification_id": n.ID,
		"type":            n.Type,
	}).Debug("Forwarded notification")
	return nil
}

// FormatNotification renders a notification as Telegram HTML
func FormatNotification(n models.Notification) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s <b>%s</b>\n\n", icon(n.Type), html.EscapeString(n.Title))
	b.WriteString(html.EscapeString(n.Message))
	if n.SenderName != "" {
		fmt.Fprintf(&b, "\n\nFrom: %s", html.EscapeString(n.SenderName))
	}
	if n.ActionText != "" && n.ActionLink != "" {
		fmt.Fprintf(&b, "\n%s: %s", html.EscapeString(n.ActionText), html.EscapeString(n.ActionLink))
	}
	return b.String()
}

func icon(t models.NotificationType) string {
	switch t {
	case models.NotificationVisitRequest, models.NotificationVisitReminder:
		return "📅"
	case models.NotificationVisitConfirmed:
		return "✅"
	case models.NotificationPayment:
		return "💳"
	case models.NotificationMessage:
		return "💬"
	default:
		return "🔔"
	}
}

// RelativeTime formats t relative to now the way the notification list shows it
func RelativeTime(now, t time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "Just now"
	case d < time.Hour:
		return plural(int(d/time.Minute), "minute") + " ago"
	case d < 24*time.Hour:
		return plural(int(d/time.Hour), "hour") + " ago"
	case d < 7*24*time.Hour:
		return plural(int(d/(24*time.Hour)), "day") + " ago"
	default:
		return t.Format("Jan 2, 2006")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
