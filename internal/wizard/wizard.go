package wizard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"lagospaces/server/internal/models"
)

var (
	ErrSessionNotFound   = errors.New("wizard session not found")
	ErrSessionClosed     = errors.New("wizard session was closed")
	ErrBusy              = errors.New("wizard session is processing another request")
	ErrInvalidTransition = errors.New("invalid wizard transition")
	ErrStepIncomplete    = errors.New("wizard step is incomplete")
	ErrUnsupportedFile   = errors.New("unsupported file type")
	ErrFileTooLarge      = errors.New("file is too large")
	ErrFileNotFound      = errors.New("file not uploaded")
)

// IncompleteError names the input still missing on the current step
type IncompleteError struct {
	Field   string
	Message string
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("%s: %s", ErrStepIncomplete, e.Message)
}

func (e *IncompleteError) Is(target error) bool {
	return target == ErrStepIncomplete
}

func incomplete(field, message string) error {
	return &IncompleteError{Field: field, Message: message}
}

// Publisher receives the event a wizard emits when it completes
type Publisher interface {
	Push(events []models.Event) error
}

// wait sleeps for d unless the request or the session ends first. Closing the session
// wins over an elapsed timer so a closed session never advances.
func wait(ctx, session context.Context, d time.Duration) error {
	if d > 0 {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-session.Done():
			return ErrSessionClosed
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
	if session.Err() != nil {
		return ErrSessionClosed
	}
	return ctx.Err()
}

func defaultLogger(logger *logrus.Logger) *logrus.Logger {
	if logger != nil {
		return logger
	}
	logger = logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	return logger
}

// Manager groups the wizards so idle sessions can be swept together
type Manager struct {
	Booking      *BookingWizard
	Verification *VerificationWizard
	Listing      *ListingWizard
}

// Sweep drops sessions idle for longer than their TTL and returns how many were removed
func (m *Manager) Sweep(now time.Time) int {
	n := 0
	if m.Booking != nil {
		n += m.Booking.Sweep(now)
	}
	if m.Verification != nil {
		n += m.Verification.Sweep(now)
	}
	if m.Listing != nil {
		n += m.Listing.Sweep(now)
	}
	return n
}
