package wizard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"lagospaces/server/internal/forms"
	"lagospaces/server/internal/models"
)

const ninLength = 11

type VerificationConfig struct {
	SubmitDelay   time.Duration
	SessionTTL    time.Duration
	MaxUploadSize int64
}

type verificationState struct {
	step  models.VerificationStep
	files map[models.DocumentKind]*models.FileHandle
	nin   string
}

// VerificationView is the identity verification modal
type VerificationView struct {
	ID         string                                    `json:"id"`
	Step       models.VerificationStep                   `json:"step"`
	Title      string                                    `json:"title"`
	Progress   string                                    `json:"progress"`
	Processing bool                                      `json:"processing"`
	Files      map[models.DocumentKind]models.FileHandle `json:"files"`
	NIN        string                                    `json:"nin,omitempty"`
	CanGoNext  bool                                      `json:"can_go_next"`
	CanSubmit  bool                                      `json:"can_submit"`
}

// stepDocument is the upload each step collects, if any
var stepDocument = map[models.VerificationStep]models.DocumentKind{
	models.VerificationStepID:        models.DocumentID,
	models.VerificationStepFace:      models.DocumentFace,
	models.VerificationStepOwnership: models.DocumentOwnership,
}

type VerificationWizard struct {
	sessions *store[verificationState]
	events   Publisher
	cfg      VerificationConfig
	logger   *logrus.Logger
}

func NewVerificationWizard(events Publisher, cfg VerificationConfig, logger *logrus.Logger) *VerificationWizard {
	return &VerificationWizard{
		sessions: newStore[verificationState](cfg.SessionTTL),
		events:   events,
		cfg:      cfg,
		logger:   defaultLogger(logger),
	}
}

// missing reports what the current step still needs before moving on
func (st *verificationState) missing() error {
	switch st.step {
	case models.VerificationStepID:
		if st.files[models.DocumentID] == nil {
			return incomplete("id", "Please upload a photo of your government-issued ID")
		}
	case models.VerificationStepFace:
		if st.files[models.DocumentFace] == nil {
			return incomplete("face", "Please take a clear photo of your face")
		}
	case models.VerificationStepNIN:
		if len(st.nin) != ninLength {
			return incomplete("nin", "Enter your 11-digit NIN")
		}
	case models.VerificationStepOwnership:
		if st.files[models.DocumentOwnership] == nil {
			return incomplete("ownership", "Please upload a document that proves your ownership of the property")
		}
	}
	return nil
}

func (w *VerificationWizard) view(id string, st *verificationState, busy bool) *VerificationView {
	files := make(map[models.DocumentKind]models.FileHandle, len(st.files))
	for k, f := range st.files {
		files[k] = *f
	}
	ready := st.missing() == nil
	return &VerificationView{
		ID:         id,
		Step:       st.step,
		Title:      st.step.Title(),
		Progress:   st.step.Progress(),
		Processing: busy,
		Files:      files,
		NIN:        maskNIN(st.nin),
		CanGoNext:  ready && st.step < models.VerificationStepOwnership,
		CanSubmit:  ready && st.step == models.VerificationStepOwnership,
	}
}

func maskNIN(nin string) string {
	if len(nin) <= 2 {
		return nin
	}
	return strings.Repeat("*", len(nin)-2) + nin[len(nin)-2:]
}

// Open starts verification at the ID step
func (w *VerificationWizard) Open(userID string) *VerificationView {
	var v *VerificationView
	st := verificationState{
		step:  models.VerificationStepID,
		files: make(map[models.DocumentKind]*models.FileHandle),
	}
	w.sessions.open(userID, st, func(id string, s *verificationState) {
		v = w.view(id, s, false)
	})
	w.logger.WithFields(logrus.Fields{"session_id": v.ID, "user_id": userID}).Info("Opened verification session")
	return v
}

func (w *VerificationWizard) Get(userID, id string) (*VerificationView, error) {
	var v *VerificationView
	err := w.sessions.read(userID, id, func(st *verificationState, busy bool) {
		v = w.view(id, st, busy)
	})
	return v, err
}

// Attach stores the upload for the current step, replacing any earlier file
func (w *VerificationWizard) Attach(userID, id string, kind models.DocumentKind, name string, data []byte) (*VerificationView, error) {
	file, err := newFileHandle(kind, name, data, w.cfg.MaxUploadSize)
	if err != nil {
		return nil, err
	}

	var v *VerificationView
	err = w.sessions.update(userID, id, func(st *verificationState) error {
		if stepDocument[st.step] != kind {
			return fmt.Errorf("%w: %s cannot be uploaded on the %s step", ErrInvalidTransition, kind, st.step)
		}
		files := make(map[models.DocumentKind]*models.FileHandle, len(st.files)+1)
		for k, f := range st.files {
			files[k] = f
		}
		files[kind] = file
		st.files = files
		v = w.view(id, st, false)
		return nil
	})
	return v, err
}

// File returns an uploaded document including its bytes, for previews
func (w *VerificationWizard) File(userID, id string, kind models.DocumentKind) (*models.FileHandle, error) {
	var file *models.FileHandle
	err := w.sessions.read(userID, id, func(st *verificationState, _ bool) {
		if f := st.files[kind]; f != nil {
			c := *f
			file = &c
		}
	})
	if err != nil {
		return nil, err
	}
	if file == nil {
		return nil, ErrFileNotFound
	}
	return file, nil
}

// SetNIN records the identification number typed on the NIN step. Spaces are ignored;
// the number may be partial until the user moves on.
func (w *VerificationWizard) SetNIN(userID, id, nin string) (*VerificationView, error) {
	nin = strings.ReplaceAll(strings.TrimSpace(nin), " ", "")
	for _, r := range nin {
		if r < '0' || r > '9' {
			return nil, forms.ValidationErrors{"nin": "NIN must contain digits only"}
		}
	}
	if len(nin) > ninLength {
		return nil, forms.ValidationErrors{"nin": "NIN must be 11 digits"}
	}

	var v *VerificationView
	err := w.sessions.update(userID, id, func(st *verificationState) error {
		if st.step != models.VerificationStepNIN {
			return fmt.Errorf("%w: NIN is entered on the nin step", ErrInvalidTransition)
		}
		st.nin = nin
		v = w.view(id, st, false)
		return nil
	})
	return v, err
}

// Next moves forward once the current step's input is present
func (w *VerificationWizard) Next(userID, id string) (*VerificationView, error) {
	var v *VerificationView
	err := w.sessions.update(userID, id, func(st *verificationState) error {
		if st.step >= models.VerificationStepOwnership {
			return fmt.Errorf("%w: ownership is the last step, submit instead", ErrInvalidTransition)
		}
		if err := st.missing(); err != nil {
			return err
		}
		st.step++
		v = w.view(id, st, false)
		return nil
	})
	return v, err
}

// Back always succeeds and keeps every input. On the first step it does nothing.
func (w *VerificationWizard) Back(userID, id string) (*VerificationView, error) {
	var v *VerificationView
	err := w.sessions.update(userID, id, func(st *verificationState) error {
		if st.step > models.VerificationStepID {
			st.step--
		}
		v = w.view(id, st, false)
		return nil
	})
	return v, err
}

// Submit sends the collected documents for review and closes the session
func (w *VerificationWizard) Submit(ctx context.Context, userID, id string) error {
	sctx, err := w.sessions.begin(userID, id, func(st *verificationState) error {
		if st.step != models.VerificationStepOwnership {
			return fmt.Errorf("%w: verification can only be submitted from the ownership step", ErrInvalidTransition)
		}
		return st.missing()
	})
	if err != nil {
		return err
	}

	if err := wait(ctx, sctx, w.cfg.SubmitDelay); err != nil {
		w.sessions.release(id, sctx)
		return err
	}

	err = w.sessions.finish(id, sctx, true, func(st *verificationState) error {
		event := models.Event{
			ID:         uuid.NewString(),
			Type:       models.EventVerificationCompleted,
			UserID:     userID,
			OccurredAt: time.Now().UTC(),
		}
		if len(st.nin) >= 2 {
			event.NINLastTwo = st.nin[len(st.nin)-2:]
		}
		if err := w.events.Push([]models.Event{event}); err != nil {
			return fmt.Errorf("failed to publish verification: %w", err)
		}
		st.step = models.VerificationStepSubmitted
		return nil
	})
	if err != nil {
		return err
	}

	w.logger.WithFields(logrus.Fields{"session_id": id, "user_id": userID}).Info("Verification submitted")
	return nil
}

func (w *VerificationWizard) Close(userID, id string) error {
	return w.sessions.close(userID, id)
}

func (w *VerificationWizard) Sweep(now time.Time) int {
	return w.sessions.sweep(now)
}
