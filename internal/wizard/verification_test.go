package wizard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lagospaces/server/internal/forms"
	"lagospaces/server/internal/models"
)

func verificationWizard(pub Publisher, delay time.Duration) *VerificationWizard {
	return NewVerificationWizard(pub, VerificationConfig{
		SubmitDelay:   delay,
		SessionTTL:    time.Minute,
		MaxUploadSize: 1 << 20,
	}, nil)
}

func TestVerification_HappyPath(t *testing.T) {
	pub := &recordingPublisher{}
	w := verificationWizard(pub, time.Millisecond)

	v := w.Open("demo")
	assert.Equal(t, models.VerificationStepID, v.Step)
	assert.Equal(t, "Step 1 of 4", v.Progress)
	assert.Equal(t, "ID Verification", v.Title)
	assert.False(t, v.CanGoNext)

	v, err := w.Attach("demo", v.ID, models.DocumentID, "national-id.png", pngData)
	require.NoError(t, err)
	assert.True(t, v.CanGoNext)
	assert.Equal(t, "national-id.png", v.Files[models.DocumentID].Name)

	v, err = w.Next("demo", v.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VerificationStepFace, v.Step)

	v, err = w.Attach("demo", v.ID, models.DocumentFace, "selfie.jpg", jpegData)
	require.NoError(t, err)
	v, err = w.Next("demo", v.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VerificationStepNIN, v.Step)

	v, err = w.SetNIN("demo", v.ID, "123 4567 8901")
	require.NoError(t, err)
	assert.Equal(t, "*********01", v.NIN)
	v, err = w.Next("demo", v.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VerificationStepOwnership, v.Step)
	assert.Equal(t, "Step 4 of 4", v.Progress)

	v, err = w.Attach("demo", v.ID, models.DocumentOwnership, "deed.pdf", pdfData)
	require.NoError(t, err)
	assert.True(t, v.CanSubmit)

	require.NoError(t, w.Submit(context.Background(), "demo", v.ID))

	events := pub.Events()
	require.Len(t, events, 1)
	assert.Equal(t, models.EventVerificationCompleted, events[0].Type)
	assert.Equal(t, "01", events[0].NINLastTwo)

	_, err = w.Get("demo", v.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestVerification_ForwardIsGated(t *testing.T) {
	w := verificationWizard(&recordingPublisher{}, 0)
	v := w.Open("demo")

	_, err := w.Next("demo", v.ID)
	var ie *IncompleteError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, "id", ie.Field)

	_, err = w.Attach("demo", v.ID, models.DocumentFace, "selfie.jpg", jpegData)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = w.SetNIN("demo", v.ID, "12345678901")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	v, err = w.Get("demo", v.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VerificationStepID, v.Step)
}

func TestVerification_NINMustBeElevenDigits(t *testing.T) {
	w := verificationWizard(&recordingPublisher{}, 0)
	v := w.Open("demo")
	for _, step := range []struct {
		kind models.DocumentKind
		data []byte
	}{{models.DocumentID, pngData}, {models.DocumentFace, jpegData}} {
		_, err := w.Attach("demo", v.ID, step.kind, "", step.data)
		require.NoError(t, err)
		_, err = w.Next("demo", v.ID)
		require.NoError(t, err)
	}

	_, err := w.SetNIN("demo", v.ID, "1234567890")
	require.NoError(t, err)
	_, err = w.Next("demo", v.ID)
	assert.ErrorIs(t, err, ErrStepIncomplete)

	var verrs forms.ValidationErrors
	_, err = w.SetNIN("demo", v.ID, "123456789012")
	require.ErrorAs(t, err, &verrs)
	_, err = w.SetNIN("demo", v.ID, "12345abcde1")
	require.ErrorAs(t, err, &verrs)

	_, err = w.SetNIN("demo", v.ID, "12345678901")
	require.NoError(t, err)
	v, err = w.Next("demo", v.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VerificationStepOwnership, v.Step)
}

func TestVerification_BackKeepsInputs(t *testing.T) {
	w := verificationWizard(&recordingPublisher{}, 0)
	v := w.Open("demo")

	v, err := w.Back("demo", v.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VerificationStepID, v.Step)

	_, err = w.Attach("demo", v.ID, models.DocumentID, "id.png", pngData)
	require.NoError(t, err)
	_, err = w.Next("demo", v.ID)
	require.NoError(t, err)

	v, err = w.Back("demo", v.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VerificationStepID, v.Step)
	assert.Contains(t, v.Files, models.DocumentID)
	assert.True(t, v.CanGoNext)

	file, err := w.File("demo", v.ID, models.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, pngData, file.Data)

	_, err = w.File("demo", v.ID, models.DocumentFace)
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestVerification_SubmitRequiresOwnershipDocument(t *testing.T) {
	pub := &recordingPublisher{}
	w := verificationWizard(pub, 0)
	v := w.Open("demo")

	err := w.Submit(context.Background(), "demo", v.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Empty(t, pub.Events())
}

func TestVerification_CloseDuringSubmit(t *testing.T) {
	pub := &recordingPublisher{}
	w := verificationWizard(pub, time.Hour)
	v := w.Open("demo")

	uploads := []struct {
		kind models.DocumentKind
		data []byte
	}{{models.DocumentID, pngData}, {models.DocumentFace, jpegData}}
	for _, u := range uploads {
		_, err := w.Attach("demo", v.ID, u.kind, "", u.data)
		require.NoError(t, err)
		_, err = w.Next("demo", v.ID)
		require.NoError(t, err)
	}
	_, err := w.SetNIN("demo", v.ID, "12345678901")
	require.NoError(t, err)
	_, err = w.Next("demo", v.ID)
	require.NoError(t, err)
	_, err = w.Attach("demo", v.ID, models.DocumentOwnership, "deed.pdf", pdfData)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- w.Submit(context.Background(), "demo", v.ID) }()

	waitBusy(t, func() bool {
		got, err := w.Get("demo", v.ID)
		return err == nil && got.Processing
	})

	_, err = w.Back("demo", v.ID)
	assert.ErrorIs(t, err, ErrBusy)

	require.NoError(t, w.Close("demo", v.ID))
	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrSessionClosed)
	case <-time.After(time.Second):
		t.Fatal("submit did not return after the session closed")
	}
	assert.Empty(t, pub.Events())

	reopened := w.Open("demo")
	assert.Equal(t, models.VerificationStepID, reopened.Step)
	assert.Empty(t, reopened.Files)
}
