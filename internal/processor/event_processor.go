package processor

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"lagospaces/server/internal/database"
	"lagospaces/server/internal/models"
	"lagospaces/server/internal/queue"
)

// Transactor is the part of *gorm.DB the processor needs
type Transactor interface {
	Transaction(fc func(tx *gorm.DB) error, opts ...*sql.TxOptions) error
}

type Geocoder interface {
	Resolve(ctx context.Context, location string) (float64, float64, error)
}

type Forwarder interface {
	Forward(ctx context.Context, n models.Notification) error
}

type Invalidator interface {
	Invalidate(ctx context.Context) error
}

type Config struct {
	ProcessorCount int
	MaxRetries     int
	// Delay between retries in seconds
	RetryDelay int
}

// EventProcessor applies wizard completion events to the store
type EventProcessor struct {
	db          Transactor
	logger      *logrus.Logger
	config      Config
	queue       *queue.EventQueue
	geocoder    Geocoder
	forwarder   Forwarder
	invalidator Invalidator
	now         func() time.Time
	// ctx is cancelled by Stop to abandon retry waits. work outlives it so
	// batches drained during shutdown still geocode, invalidate and forward.
	ctx    context.Context
	cancel context.CancelFunc
	work   context.Context
}

// NewEventProcessor creates a new event processor. geocoder, forwarder and invalidator may be nil.
func NewEventProcessor(db Transactor, q *queue.EventQueue, config Config, geocoder Geocoder, forwarder Forwarder, invalidator Invalidator, logger *logrus.Logger) *EventProcessor {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
		logger.SetLevel(logrus.InfoLevel)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &EventProcessor{
		db:          db,
		queue:       q,
		config:      config,
		geocoder:    geocoder,
		forwarder:   forwarder,
		invalidator: invalidator,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
		ctx:         ctx,
		cancel:      cancel,
		work:        context.WithoutCancel(ctx),
	}
}

// Start subscribes to the queue and starts its workers
func (p *EventProcessor) Start() {
	p.queue.Subscribe(p.processBatch)
	p.queue.Start(p.config.ProcessorCount)
}

// Stop aborts pending retries, closes the queue and waits until every queued batch was handled
func (p *EventProcessor) Stop() {
	p.cancel()
	_ = p.queue.Close()
	<-p.queue.Drained()
}

// processBatch applies a batch of events in one transaction with retry logic
func (p *EventProcessor) processBatch(batch []models.Event) error {
	p.resolveCoordinates(batch)

	var notifications []models.Notification
	var err error
	for attempt := 0; attempt <= p.config.MaxRetries; attempt++ {
		if attempt > 0 {
			p.logger.Infof("Retrying event batch, attempt %d of %d", attempt, p.config.MaxRetries)
			select {
			case <-p.ctx.Done():
				return fmt.Errorf("event batch abandoned: %w", p.ctx.Err())
			case <-time.After(time.Duration(p.config.RetryDelay) * time.Second):
			}
		}

		notifications = nil
		err = p.db.Transaction(func(tx *gorm.DB) error {
			for i := range batch {
				created, err := p.apply(tx, &batch[i])
				if err != nil {
					return fmt.Errorf("event %s (%s): %w", batch[i].ID, batch[i].Type, err)
				}
				notifications = append(notifications, created...)
			}
			return database.InsertNotifications(tx, notifications)
		})

		if err == nil {
			p.logger.WithField("batch_size", len(batch)).Info("Successfully processed event batch")
			p.afterCommit(batch, notifications)
			return nil
		}

		p.logger.WithError(err).Error("Event batch processing failed")
	}

	return fmt.Errorf("failed to process batch after %d attempts: %w", p.config.MaxRetries, err)
}

// apply writes one event and returns the notifications it produces
func (p *EventProcessor) apply(tx *gorm.DB, event *models.Event) ([]models.Notification, error) {
	switch event.Type {
	case models.EventBookingCompleted:
		return p.applyBooking(tx, event)
	case models.EventVerificationCompleted:
		return p.applyVerification(tx, event)
	case models.EventPropertyPosted:
		return p.applyProperty(tx, event)
	default:
		p.logger.WithField("type", event.Type).Warn("Ignoring unknown event type")
		return nil, nil
	}
}

func (p *EventProcessor) applyBooking(tx *gorm.DB, event *models.Event) ([]models.Notification, error) {
	if event.Booking == nil {
		return nil, fmt.Errorf("missing booking payload")
	}
	booking := *event.Booking
	if err := database.CreateBooking(tx, &booking); err != nil {
		return nil, err
	}
	tenant, err := database.GetUserTx(tx, booking.TenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tenant: %w", err)
	}

	now := p.now()
	when := fmt.Sprintf("%s at %s", visitDay(booking.VisitDate), visitClock(booking.VisitTime))
	return []models.Notification{
		{
			ID:          uuid.NewString(),
			UserID:      booking.OwnerID,
			Type:        models.NotificationVisitRequest,
			Title:       "Visit Request",
			Message:     fmt.Sprintf("%s wants to visit your property %q on %s.", tenant.Name, booking.PropertyTitle, when),
			Timestamp:   now,
			ActionLink:  "/visits/" + booking.ID,
			ActionText:  "View Details",
			SenderImage: tenant.Avatar,
			SenderName:  tenant.Name,
		},
		{
			ID:         uuid.NewString(),
			UserID:     booking.TenantID,
			Type:       models.NotificationPayment,
			Title:      "Payment Successful",
			Message:    fmt.Sprintf("Your booking fee of %s for %q has been received. Your visit is scheduled for %s.", models.FormatPrice(booking.Fee, "₦"), booking.PropertyTitle, when),
			Timestamp:  now,
			ActionLink: "/transactions",
			ActionText: "View Receipt",
		},
	}, nil
}

func (p *EventProcessor) applyVerification(tx *gorm.DB, event *models.Event) ([]models.Notification, error) {
	if err := database.MarkUserVerified(tx, event.UserID); err != nil {
		return nil, fmt.Errorf("failed to verify user: %w", err)
	}
	return []models.Notification{{
		ID:         uuid.NewString(),
		UserID:     event.UserID,
		Type:       models.NotificationSystem,
		Title:      "Verification Complete",
		Message:    "Your identity has been successfully verified. You can now access all features of LAGOSPACES.",
		Timestamp:  p.now(),
		ActionLink: "/profile",
		ActionText: "View Profile",
	}}, nil
}

func (p *EventProcessor) applyProperty(tx *gorm.DB, event *models.Event) ([]models.Notification, error) {
	if event.Property == nil {
		return nil, fmt.Errorf("missing property payload")
	}
	property := *event.Property
	if err := database.CreateProperty(tx, &property); err != nil {
		return nil, err
	}
	return []models.Notification{{
		ID:         uuid.NewString(),
		UserID:     property.OwnerID,
		Type:       models.NotificationSystem,
		Title:      "Listing Submitted",
		Message:    fmt.Sprintf("Your property %q has been posted. It will show as verified once our team reviews your documents.", property.Title),
		Timestamp:  p.now(),
		ActionLink: "/property/" + property.ID,
		ActionText: "View Listing",
	}}, nil
}

// resolveCoordinates geocodes posted properties before the transaction opens.
// Failures are logged and the property is stored without coordinates.
func (p *EventProcessor) resolveCoordinates(batch []models.Event) {
	if p.geocoder == nil {
		return
	}
	for i := range batch {
		prop := batch[i].Property
		if batch[i].Type != models.EventPropertyPosted || prop == nil || prop.Latitude != nil {
			continue
		}
		lat, lng, err := p.geocoder.Resolve(p.work, prop.Location)
		if err != nil {
			p.logger.WithError(err).WithField("location", prop.Location).Warn("Could not geocode posted property")
			continue
		}
		// Copy so the publisher's value is left untouched
		resolved := *prop
		resolved.Latitude, resolved.Longitude = &lat, &lng
		batch[i].Property = &resolved
	}
}

// afterCommit runs side effects that must not roll back the batch
func (p *EventProcessor) afterCommit(batch []models.Event, notifications []models.Notification) {
	if p.invalidator != nil {
		for _, event := range batch {
			if event.Type == models.EventPropertyPosted {
				if err := p.invalidator.Invalidate(p.work); err != nil {
					p.logger.WithError(err).Warn("Failed to invalidate search cache")
				}
				break
			}
		}
	}

	if p.forwarder == nil {
		return
	}
	for _, n := range notifications {
		if err := p.forwarder.Forward(p.work, n); err != nil {
			p.logger.WithError(err).WithField("notification_id", n.ID).Warn("Failed to forward notification")
		}
	}
}

// visitClock renders a 24h "15:04" slot as "3:04 PM", leaving other values as given
func visitClock(v string) string {
	t, err := time.Parse("15:04", v)
	if err != nil {
		return v
	}
	return t.Format("3:04 PM")
}

// visitDay renders "2006-01-02" as "Monday, January 2, 2006", leaving other values as given
func visitDay(v string) string {
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return v
	}
	return t.Format("Monday, January 2, 2006")
}
