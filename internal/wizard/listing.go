package wizard

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"lagospaces/server/config"
	"lagospaces/server/internal/forms"
	"lagospaces/server/internal/models"
)

const (
	ListingStepBasics  = 1
	ListingStepDetails = 2
	ListingStepUpload  = 3

	maxListingImages = 10
)

type ListingConfig struct {
	SubmitDelay   time.Duration
	SessionTTL    time.Duration
	MaxUploadSize int64
}

type listingState struct {
	step      int
	basics    *forms.ListingBasics
	details   *forms.ListingDetails
	images    []*models.FileHandle
	ownership *models.FileHandle
}

// ListingView is the post-property form
type ListingView struct {
	ID         string                `json:"id"`
	Step       int                   `json:"step"`
	Progress   string                `json:"progress"`
	Processing bool                  `json:"processing"`
	Basics     *forms.ListingBasics  `json:"basics,omitempty"`
	Details    *forms.ListingDetails `json:"details,omitempty"`
	Images     []models.FileHandle   `json:"images"`
	Ownership  *models.FileHandle    `json:"ownership,omitempty"`
	CanGoNext  bool                  `json:"can_go_next"`
	CanSubmit  bool                  `json:"can_submit"`
}

type ListingWizard struct {
	sessions *store[listingState]
	events   Publisher
	cfg      ListingConfig
	logger   *logrus.Logger
}

func NewListingWizard(events Publisher, cfg ListingConfig, logger *logrus.Logger) *ListingWizard {
	return &ListingWizard{
		sessions: newStore[listingState](cfg.SessionTTL),
		events:   events,
		cfg:      cfg,
		logger:   defaultLogger(logger),
	}
}

func (st *listingState) missing() error {
	switch st.step {
	case ListingStepBasics:
		if st.basics == nil {
			return incomplete("basics", "Please fill in the basic information")
		}
	case ListingStepDetails:
		if st.details == nil {
			return incomplete("details", "Please fill in the property details")
		}
	case ListingStepUpload:
		if st.ownership == nil {
			return incomplete("ownership", "Please upload proof of ownership")
		}
	}
	return nil
}

func (w *ListingWizard) view(id string, st *listingState, busy bool) *ListingView {
	images := make([]models.FileHandle, len(st.images))
	for i, f := range st.images {
		images[i] = *f
	}
	v := &ListingView{
		ID:         id,
		Step:       st.step,
		Progress:   fmt.Sprintf("Step %d of 3", st.step),
		Processing: busy,
		Images:     images,
		Basics:     st.basics,
		Details:    st.details,
	}
	if st.ownership != nil {
		o := *st.ownership
		v.Ownership = &o
	}
	ready := st.missing() == nil
	v.CanGoNext = ready && st.step < ListingStepUpload
	v.CanSubmit = ready && st.step == ListingStepUpload
	return v
}

func (w *ListingWizard) Open(ownerID string) *ListingView {
	var v *ListingView
	w.sessions.open(ownerID, listingState{step: ListingStepBasics}, func(id string, s *listingState) {
		v = w.view(id, s, false)
	})
	w.logger.WithFields(logrus.Fields{"session_id": v.ID, "owner_id": ownerID}).Info("Opened listing session")
	return v
}

func (w *ListingWizard) Get(ownerID, id string) (*ListingView, error) {
	var v *ListingView
	err := w.sessions.read(ownerID, id, func(st *listingState, busy bool) {
		v = w.view(id, st, busy)
	})
	return v, err
}

// SaveBasics stores step 1. It can be edited again after going back.
func (w *ListingWizard) SaveBasics(ownerID, id string, basics forms.ListingBasics) (*ListingView, error) {
	if err := basics.Validate(); err != nil {
		return nil, err
	}
	return w.edit(ownerID, id, ListingStepBasics, func(st *listingState) {
		st.basics = &basics
	})
}

// SaveDetails stores step 2
func (w *ListingWizard) SaveDetails(ownerID, id string, details forms.ListingDetails) (*ListingView, error) {
	if err := details.Validate(); err != nil {
		return nil, err
	}
	return w.edit(ownerID, id, ListingStepDetails, func(st *listingState) {
		st.details = &details
	})
}

func (w *ListingWizard) edit(ownerID, id string, step int, apply func(st *listingState)) (*ListingView, error) {
	var v *ListingView
	err := w.sessions.update(ownerID, id, func(st *listingState) error {
		if step > st.step {
			return fmt.Errorf("%w: step %d has not been reached", ErrInvalidTransition, step)
		}
		apply(st)
		v = w.view(id, st, false)
		return nil
	})
	return v, err
}

// AddImage appends a listing photo on the upload step
func (w *ListingWizard) AddImage(ownerID, id, name string, data []byte) (*ListingView, error) {
	file, err := newFileHandle(models.DocumentImage, name, data, w.cfg.MaxUploadSize)
	if err != nil {
		return nil, err
	}
	var v *ListingView
	err = w.sessions.update(ownerID, id, func(st *listingState) error {
		if st.step != ListingStepUpload {
			return fmt.Errorf("%w: images are uploaded on step 3", ErrInvalidTransition)
		}
		if len(st.images) >= maxListingImages {
			return forms.ValidationErrors{"images": fmt.Sprintf("You can upload at most %d images", maxListingImages)}
		}
		images := make([]*models.FileHandle, len(st.images), len(st.images)+1)
		copy(images, st.images)
		st.images = append(images, file)
		v = w.view(id, st, false)
		return nil
	})
	return v, err
}

// RemoveImage drops the photo at index
func (w *ListingWizard) RemoveImage(ownerID, id string, index int) (*ListingView, error) {
	var v *ListingView
	err := w.sessions.update(ownerID, id, func(st *listingState) error {
		if index < 0 || index >= len(st.images) {
			return ErrFileNotFound
		}
		images := make([]*models.FileHandle, 0, len(st.images)-1)
		images = append(images, st.images[:index]...)
		st.images = append(images, st.images[index+1:]...)
		v = w.view(id, st, false)
		return nil
	})
	return v, err
}

// Image returns an uploaded listing photo including its bytes
func (w *ListingWizard) Image(ownerID, id string, index int) (*models.FileHandle, error) {
	var file *models.FileHandle
	err := w.sessions.read(ownerID, id, func(st *listingState, _ bool) {
		if index >= 0 && index < len(st.images) {
			c := *st.images[index]
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

// SetOwnership stores the proof of ownership document
func (w *ListingWizard) SetOwnership(ownerID, id, name string, data []byte) (*ListingView, error) {
	file, err := newFileHandle(models.DocumentOwnership, name, data, w.cfg.MaxUploadSize)
	if err != nil {
		return nil, err
	}
	var v *ListingView
	err = w.sessions.update(ownerID, id, func(st *listingState) error {
		if st.step != ListingStepUpload {
			return fmt.Errorf("%w: proof of ownership is uploaded on step 3", ErrInvalidTransition)
		}
		st.ownership = file
		v = w.view(id, st, false)
		return nil
	})
	return v, err
}

func (w *ListingWizard) Next(ownerID, id string) (*ListingView, error) {
	var v *ListingView
	err := w.sessions.update(ownerID, id, func(st *listingState) error {
		if st.step >= ListingStepUpload {
			return fmt.Errorf("%w: step 3 is the last step, submit instead", ErrInvalidTransition)
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

func (w *ListingWizard) Back(ownerID, id string) (*ListingView, error) {
	var v *ListingView
	err := w.sessions.update(ownerID, id, func(st *listingState) error {
		if st.step > ListingStepBasics {
			st.step--
		}
		v = w.view(id, st, false)
		return nil
	})
	return v, err
}

// Submit publishes the new listing, unverified until its documents are reviewed, and
// closes the session
func (w *ListingWizard) Submit(ctx context.Context, ownerID, id string) (*models.Property, error) {
	sctx, err := w.sessions.begin(ownerID, id, func(st *listingState) error {
		if st.step != ListingStepUpload {
			return fmt.Errorf("%w: the listing can only be submitted from step 3", ErrInvalidTransition)
		}
		return st.missing()
	})
	if err != nil {
		return nil, err
	}

	if err := wait(ctx, sctx, w.cfg.SubmitDelay); err != nil {
		w.sessions.release(id, sctx)
		return nil, err
	}

	var property *models.Property
	var images int
	err = w.sessions.finish(id, sctx, true, func(st *listingState) error {
		now := time.Now().UTC()
		p := &models.Property{
			ID:           uuid.NewString(),
			Title:        st.basics.Title,
			Description:  st.basics.Description,
			Note:         st.basics.Description,
			Location:     st.basics.Location,
			PropertyType: st.basics.PropertyType,
			Price:        st.details.Price,
			Currency:     config.Currency,
			Bedrooms:     st.details.Bedrooms,
			Bathrooms:    st.details.Bathrooms,
			Size:         st.details.Size,
			Amenities:    st.details.Amenities,
			ImageURLs:    []string{},
			OwnerID:      ownerID,
			CreatedAt:    now,
		}
		event := models.Event{
			ID:         uuid.NewString(),
			Type:       models.EventPropertyPosted,
			UserID:     ownerID,
			OccurredAt: now,
			Property:   p,
		}
		if err := w.events.Push([]models.Event{event}); err != nil {
			return fmt.Errorf("failed to publish listing: %w", err)
		}
		property = p
		images = len(st.images)
		return nil
	})
	if err != nil {
		return nil, err
	}

	w.logger.WithFields(logrus.Fields{
		"session_id":  id,
		"property_id": property.ID,
		"images":      images,
	}).Info("Listing submitted")
	return property, nil
}

func (w *ListingWizard) Close(ownerID, id string) error {
	return w.sessions.close(ownerID, id)
}

func (w *ListingWizard) Sweep(now time.Time) int {
	return w.sessions.sweep(now)
}
