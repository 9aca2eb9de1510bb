package wizard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"lagospaces/server/config"
	"lagospaces/server/internal/database"
	"lagospaces/server/internal/forms"
	"lagospaces/server/internal/models"
)

// PropertyLookup resolves the property a visit is booked for
type PropertyLookup interface {
	GetProperty(id string, withContact bool) (*models.Property, error)
}

type BookingConfig struct {
	Fee            int
	RefundWindow   time.Duration
	PaymentDelay   time.Duration
	AgreementDelay time.Duration
	SessionTTL     time.Duration
}

type bookingState struct {
	step      models.BookingStep
	property  models.Property
	ownerName string
	request   forms.BookingRequest
	method    models.PaymentMethod
	reference string
	createdAt time.Time
}

// BookingView is the booking modal as the client renders it
type BookingView struct {
	ID               string               `json:"id"`
	Step             models.BookingStep   `json:"step"`
	Processing       bool                 `json:"processing"`
	PropertyID       string               `json:"property_id"`
	PropertyTitle    string               `json:"property_title"`
	PropertyImage    string               `json:"property_image,omitempty"`
	OwnerName        string               `json:"owner_name"`
	VisitDate        string               `json:"visit_date"`
	VisitTime        string               `json:"visit_time"`
	Note             string               `json:"note,omitempty"`
	Fee              int                  `json:"fee"`
	FeeLabel         string               `json:"fee_label"`
	PaymentMethod    models.PaymentMethod `json:"payment_method,omitempty"`
	PaymentReference string               `json:"payment_reference,omitempty"`
	Terms            []string             `json:"terms"`
	CreatedAt        time.Time            `json:"created_at"`
}

type BookingWizard struct {
	sessions   *store[bookingState]
	properties PropertyLookup
	events     Publisher
	cfg        BookingConfig
	logger     *logrus.Logger
}

func NewBookingWizard(properties PropertyLookup, events Publisher, cfg BookingConfig, logger *logrus.Logger) *BookingWizard {
	return &BookingWizard{
		sessions:   newStore[bookingState](cfg.SessionTTL),
		properties: properties,
		events:     events,
		cfg:        cfg,
		logger:     defaultLogger(logger),
	}
}

func (w *BookingWizard) terms() []string {
	days := int(w.cfg.RefundWindow.Hours() / 24)
	return []string{
		fmt.Sprintf("This fee is fully refundable if you visit the property within %d days.", days),
		"If the owner fails to accommodate your visit, you will receive a full refund.",
		fmt.Sprintf("If you fail to visit the property within %d days, the fee will be split between LAGOSPACES and the property owner.", days),
		"Upon visiting the property, please ask the owner to confirm your visit through the platform.",
	}
}

func (w *BookingWizard) view(id string, st *bookingState, busy bool) *BookingView {
	return &BookingView{
		ID:               id,
		Step:             st.step,
		Processing:       busy,
		PropertyID:       st.property.ID,
		PropertyTitle:    st.property.Title,
		PropertyImage:    st.property.ImageURL(),
		OwnerName:        st.ownerName,
		VisitDate:        st.request.VisitDate,
		VisitTime:        st.request.VisitTime,
		Note:             st.request.Note,
		Fee:              w.cfg.Fee,
		FeeLabel:         models.FormatPrice(w.cfg.Fee, config.Currency),
		PaymentMethod:    st.method,
		PaymentReference: st.reference,
		Terms:            w.terms(),
		CreatedAt:        st.createdAt,
	}
}

// Open starts a booking at the payment form
func (w *BookingWizard) Open(tenantID string, req forms.BookingRequest) (*BookingView, error) {
	if err := req.Validate(time.Now()); err != nil {
		return nil, err
	}

	property, err := w.properties.GetProperty(req.PropertyID, false)
	if errors.Is(err, database.ErrNotFound) {
		return nil, forms.ValidationErrors{"property_id": "Property not found"}
	}
	if err != nil {
		return nil, err
	}
	if property.OwnerID == tenantID {
		return nil, forms.ValidationErrors{"property_id": "You cannot book a visit to your own property"}
	}

	st := bookingState{
		step:      models.BookingStepPaymentForm,
		property:  *property,
		request:   req,
		createdAt: time.Now().UTC(),
	}
	if property.Owner != nil {
		st.ownerName = property.Owner.Name
	}

	var v *BookingView
	w.sessions.open(tenantID, st, func(id string, s *bookingState) {
		v = w.view(id, s, false)
	})

	w.logger.WithFields(logrus.Fields{
		"session_id":  v.ID,
		"property_id": property.ID,
		"tenant_id":   tenantID,
	}).Info("Opened booking session")
	return v, nil
}

func (w *BookingWizard) Get(tenantID, id string) (*BookingView, error) {
	var v *BookingView
	err := w.sessions.read(tenantID, id, func(st *bookingState, busy bool) {
		v = w.view(id, st, busy)
	})
	return v, err
}

// SubmitPayment validates the payment details, waits for the simulated processor and
// moves the session to the agreement
func (w *BookingWizard) SubmitPayment(ctx context.Context, tenantID, id string, details forms.PaymentDetails) (*BookingView, error) {
	if err := details.Validate(); err != nil {
		return nil, err
	}

	sctx, err := w.sessions.begin(tenantID, id, func(st *bookingState) error {
		if st.step != models.BookingStepPaymentForm {
			return fmt.Errorf("%w: payment already submitted", ErrInvalidTransition)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := wait(ctx, sctx, w.cfg.PaymentDelay); err != nil {
		w.sessions.release(id, sctx)
		return nil, err
	}

	var v *BookingView
	err = w.sessions.finish(id, sctx, false, func(st *bookingState) error {
		st.step = models.BookingStepAgreementShown
		st.method = details.Method
		st.reference = paymentReference(details, w.cfg.Fee)
		v = w.view(id, st, false)
		return nil
	})
	if err != nil {
		return nil, err
	}

	w.logger.WithFields(logrus.Fields{
		"session_id": id,
		"method":     details.Method,
	}).Info("Booking payment received")
	return v, nil
}

func paymentReference(details forms.PaymentDetails, fee int) string {
	switch details.Method {
	case models.PaymentCard:
		return details.MaskedCard()
	case models.PaymentUSSD:
		if bank := config.USSDBankByCode(details.Bank); bank != nil {
			return fmt.Sprintf("*%s*000*%d#", bank.Shortcode, fee)
		}
	case models.PaymentBank:
		return "Bank transfer"
	}
	return ""
}

// ConfirmAgreement accepts the terms, publishes the completed booking and closes the session
func (w *BookingWizard) ConfirmAgreement(ctx context.Context, tenantID, id string) (*models.Booking, error) {
	sctx, err := w.sessions.begin(tenantID, id, func(st *bookingState) error {
		if st.step != models.BookingStepAgreementShown {
			return fmt.Errorf("%w: payment has not been made", ErrInvalidTransition)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := wait(ctx, sctx, w.cfg.AgreementDelay); err != nil {
		w.sessions.release(id, sctx)
		return nil, err
	}

	var booking *models.Booking
	err = w.sessions.finish(id, sctx, true, func(st *bookingState) error {
		now := time.Now().UTC()
		b := &models.Booking{
			ID:            uuid.NewString(),
			PropertyID:    st.property.ID,
			PropertyTitle: st.property.Title,
			TenantID:      tenantID,
			OwnerID:       st.property.OwnerID,
			VisitDate:     st.request.VisitDate,
			VisitTime:     st.request.VisitTime,
			Note:          st.request.Note,
			Fee:           w.cfg.Fee,
			PaymentMethod: st.method,
			Status:        models.BookingPendingVisit,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		event := models.Event{
			ID:         uuid.NewString(),
			Type:       models.EventBookingCompleted,
			UserID:     tenantID,
			OccurredAt: now,
			Booking:    b,
		}
		if err := w.events.Push([]models.Event{event}); err != nil {
			return fmt.Errorf("failed to publish booking: %w", err)
		}
		st.step = models.BookingStepCompleted
		booking = b
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrSessionClosed) {
			w.sessions.release(id, sctx)
		}
		return nil, err
	}

	w.logger.WithFields(logrus.Fields{
		"session_id": id,
		"booking_id": booking.ID,
	}).Info("Booking completed")
	return booking, nil
}

// Close discards the session whatever its step
func (w *BookingWizard) Close(tenantID, id string) error {
	return w.sessions.close(tenantID, id)
}

func (w *BookingWizard) Sweep(now time.Time) int {
	return w.sessions.sweep(now)
}
