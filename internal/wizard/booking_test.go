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

func TestBooking_HappyPath(t *testing.T) {
	pub := &recordingPublisher{}
	w := bookingWizard(t, pub, time.Millisecond)
	ctx := context.Background()

	v, err := w.Open("demo", visitRequest())
	require.NoError(t, err)
	assert.Equal(t, models.BookingStepPaymentForm, v.Step)
	assert.Equal(t, "₦5,000", v.FeeLabel)
	assert.Equal(t, "Sarah Johnson", v.OwnerName)
	require.Len(t, v.Terms, 4)
	assert.Contains(t, v.Terms[0], "within 7 days")

	v, err = w.SubmitPayment(ctx, "demo", v.ID, cardPayment())
	require.NoError(t, err)
	assert.Equal(t, models.BookingStepAgreementShown, v.Step)
	assert.Equal(t, "**** **** **** 1111", v.PaymentReference)

	booking, err := w.ConfirmAgreement(ctx, "demo", v.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingPendingVisit, booking.Status)
	assert.Equal(t, "user1", booking.OwnerID)
	assert.Equal(t, models.PaymentCard, booking.PaymentMethod)

	events := pub.Events()
	require.Len(t, events, 1)
	assert.Equal(t, models.EventBookingCompleted, events[0].Type)
	assert.Equal(t, booking.ID, events[0].Booking.ID)

	_, err = w.Get("demo", v.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestBooking_OpenValidation(t *testing.T) {
	w := bookingWizard(t, &recordingPublisher{}, 0)

	req := visitRequest()
	req.PropertyID = "missing"
	_, err := w.Open("demo", req)
	var verrs forms.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "Property not found", verrs["property_id"])

	_, err = w.Open("user1", visitRequest())
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs["property_id"], "your own property")
}

func TestBooking_USSDReference(t *testing.T) {
	w := bookingWizard(t, &recordingPublisher{}, 0)

	v, err := w.Open("demo", visitRequest())
	require.NoError(t, err)

	v, err = w.SubmitPayment(context.Background(), "demo", v.ID, forms.PaymentDetails{Method: models.PaymentUSSD, Bank: "gtb"})
	require.NoError(t, err)
	assert.Equal(t, "*737*000*5000#", v.PaymentReference)
}

func TestBooking_InvalidPaymentKeepsForm(t *testing.T) {
	w := bookingWizard(t, &recordingPublisher{}, 0)

	v, err := w.Open("demo", visitRequest())
	require.NoError(t, err)

	_, err = w.SubmitPayment(context.Background(), "demo", v.ID, forms.PaymentDetails{Method: models.PaymentCard, CardNumber: "4111"})
	var verrs forms.ValidationErrors
	require.ErrorAs(t, err, &verrs)

	v, err = w.Get("demo", v.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStepPaymentForm, v.Step)
}

func TestBooking_OutOfOrder(t *testing.T) {
	w := bookingWizard(t, &recordingPublisher{}, 0)
	ctx := context.Background()

	v, err := w.Open("demo", visitRequest())
	require.NoError(t, err)

	_, err = w.ConfirmAgreement(ctx, "demo", v.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = w.SubmitPayment(ctx, "demo", v.ID, cardPayment())
	require.NoError(t, err)

	_, err = w.SubmitPayment(ctx, "demo", v.ID, cardPayment())
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestBooking_CloseDuringPayment(t *testing.T) {
	pub := &recordingPublisher{}
	w := bookingWizard(t, pub, time.Hour)

	v, err := w.Open("demo", visitRequest())
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := w.SubmitPayment(context.Background(), "demo", v.ID, cardPayment())
		done <- err
	}()

	waitBusy(t, func() bool {
		got, err := w.Get("demo", v.ID)
		return err == nil && got.Processing
	})

	_, err = w.SubmitPayment(context.Background(), "demo", v.ID, cardPayment())
	assert.ErrorIs(t, err, ErrBusy)

	require.NoError(t, w.Close("demo", v.ID))

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrSessionClosed)
	case <-time.After(time.Second):
		t.Fatal("payment did not return after the session closed")
	}

	_, err = w.Get("demo", v.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Empty(t, pub.Events())

	reopened, err := w.Open("demo", visitRequest())
	require.NoError(t, err)
	assert.Equal(t, models.BookingStepPaymentForm, reopened.Step)
	assert.NotEqual(t, v.ID, reopened.ID)
}

func TestBooking_RequestCancelledKeepsSession(t *testing.T) {
	w := bookingWizard(t, &recordingPublisher{}, time.Hour)

	v, err := w.Open("demo", visitRequest())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = w.SubmitPayment(ctx, "demo", v.ID, cardPayment())
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	v, err = w.Get("demo", v.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStepPaymentForm, v.Step)
	assert.False(t, v.Processing)
}

func TestBooking_PublishFailureKeepsAgreement(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("queue is full")}
	w := bookingWizard(t, pub, 0)
	ctx := context.Background()

	v, err := w.Open("demo", visitRequest())
	require.NoError(t, err)
	_, err = w.SubmitPayment(ctx, "demo", v.ID, cardPayment())
	require.NoError(t, err)

	_, err = w.ConfirmAgreement(ctx, "demo", v.ID)
	require.Error(t, err)

	v, err = w.Get("demo", v.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStepAgreementShown, v.Step)
	assert.False(t, v.Processing)
}
