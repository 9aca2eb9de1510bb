package api

import (
	"io"
	"mime"
	"net/http"
	"strconv"

	"lagospaces/server/internal/auth"
	"lagospaces/server/internal/forms"
	"lagospaces/server/internal/models"
	"lagospaces/server/internal/wizard"

	"github.com/gin-gonic/gin"
)

// readUpload reads the multipart "file" field
func (h *Handler) readUpload(c *gin.Context) (string, []byte, error) {
	header, err := c.FormFile("file")
	if err != nil {
		return "", nil, forms.ValidationErrors{"file": "Please choose a file to upload"}
	}
	if h.maxUploadSize > 0 && header.Size > h.maxUploadSize {
		return "", nil, wizard.ErrFileTooLarge
	}

	f, err := header.Open()
	if err != nil {
		return "", nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", nil, err
	}
	return header.Filename, data, nil
}

func serveFile(c *gin.Context, file *models.FileHandle) {
	c.Header("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": file.Name}))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

// Bookings

func (h *Handler) GetBookings(c *gin.Context) {
	bookings, err := h.db.GetBookingsForUser(auth.UserID(c))
	if err != nil {
		h.writeError(c, err, "get bookings")
		return
	}
	c.JSON(http.StatusOK, bookings)
}

func (h *Handler) OpenBooking(c *gin.Context) {
	var req forms.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	view, err := h.wizards.Booking.Open(auth.UserID(c), req)
	if err != nil {
		h.writeError(c, err, "start booking")
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *Handler) GetBookingSession(c *gin.Context) {
	view, err := h.wizards.Booking.Get(auth.UserID(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err, "get booking")
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) SubmitPayment(c *gin.Context) {
	var details forms.PaymentDetails
	if err := c.ShouldBindJSON(&details); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	view, err := h.wizards.Booking.SubmitPayment(c.Request.Context(), auth.UserID(c), c.Param("id"), details)
	if err != nil {
		h.writeError(c, err, "process payment")
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) ConfirmAgreement(c *gin.Context) {
	booking, err := h.wizards.Booking.ConfirmAgreement(c.Request.Context(), auth.UserID(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err, "confirm booking")
		return
	}
	c.JSON(http.StatusCreated, booking)
}

func (h *Handler) CloseBooking(c *gin.Context) {
	if err := h.wizards.Booking.Close(auth.UserID(c), c.Param("id")); err != nil {
		h.writeError(c, err, "close booking")
		return
	}
	c.Status(http.StatusNoContent)
}

// ConfirmVisit is called by the owner after the tenant visited; the booking fee is refunded
func (h *Handler) ConfirmVisit(c *gin.Context) {
	booking, err := h.db.ConfirmVisit(auth.UserID(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err, "confirm visit")
		return
	}
	c.JSON(http.StatusOK, booking)
}

// Verification

func (h *Handler) OpenVerification(c *gin.Context) {
	c.JSON(http.StatusCreated, h.wizards.Verification.Open(auth.UserID(c)))
}

func (h *Handler) GetVerification(c *gin.Context) {
	view, err := h.wizards.Verification.Get(auth.UserID(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err, "get verification")
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) CloseVerification(c *gin.Context) {
	if err := h.wizards.Verification.Close(auth.UserID(c), c.Param("id")); err != nil {
		h.writeError(c, err, "close verification")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) AttachDocument(c *gin.Context) {
	name, data, err := h.readUpload(c)
	if err != nil {
		h.writeError(c, err, "upload document")
		return
	}

	kind := models.DocumentKind(c.Param("kind"))
	view, err := h.wizards.Verification.Attach(auth.UserID(c), c.Param("id"), kind, name, data)
	if err != nil {
		h.writeError(c, err, "upload document")
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) GetDocument(c *gin.Context) {
	kind := models.DocumentKind(c.Param("kind"))
	file, err := h.wizards.Verification.File(auth.UserID(c), c.Param("id"), kind)
	if err != nil {
		h.writeError(c, err, "get document")
		return
	}
	serveFile(c, file)
}

func (h *Handler) SetNIN(c *gin.Context) {
	var body struct {
		NIN string `json:"nin"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	view, err := h.wizards.Verification.SetNIN(auth.UserID(c), c.Param("id"), body.NIN)
	if err != nil {
		h.writeError(c, err, "save NIN")
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) NextVerificationStep(c *gin.Context) {
	view, err := h.wizards.Verification.Next(auth.UserID(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err, "continue verification")
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) PreviousVerificationStep(c *gin.Context) {
	view, err := h.wizards.Verification.Back(auth.UserID(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err, "go back")
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) SubmitVerification(c *gin.Context) {
	if err := h.wizards.Verification.Submit(c.Request.Context(), auth.UserID(c), c.Param("id")); err != nil {
		h.writeError(c, err, "submit verification")
		return
	}
	c.JSON(http.StatusAccepted, gin.H{
		"message": "Your documents have been submitted. You will be notified once your verification is complete.",
	})
}

// Listings

func (h *Handler) OpenListing(c *gin.Context) {
	c.JSON(http.StatusCreated, h.wizards.Listing.Open(auth.UserID(c)))
}

func (h *Handler) GetListing(c *gin.Context) {
	view, err := h.wizards.Listing.Get(auth.UserID(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err, "get listing")
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) CloseListing(c *gin.Context) {
	if err := h.wizards.Listing.Close(auth.UserID(c), c.Param("id")); err != nil {
		h.writeError(c, err, "close listing")
		return
	}
	c.Status(http.StatusNoContent)
}

// SaveListingStep stores the form of step 1 (basic info) or step 2 (details)
func (h *Handler) SaveListingStep(c *gin.Context) {
	userID, id := auth.UserID(c), c.Param("id")

	var (
		view *wizard.ListingView
		err  error
	)
	switch c.Param("step") {
	case strconv.Itoa(wizard.ListingStepBasics):
		var basics forms.ListingBasics
		if err := c.ShouldBindJSON(&basics); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		view, err = h.wizards.Listing.SaveBasics(userID, id, basics)
	case strconv.Itoa(wizard.ListingStepDetails):
		var details forms.ListingDetails
		if err := c.ShouldBindJSON(&details); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		view, err = h.wizards.Listing.SaveDetails(userID, id, details)
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown step"})
		return
	}

	if err != nil {
		h.writeError(c, err, "save listing")
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) AddListingImage(c *gin.Context) {
	name, data, err := h.readUpload(c)
	if err != nil {
		h.writeError(c, err, "upload image")
		return
	}

	view, err := h.wizards.Listing.AddImage(auth.UserID(c), c.Param("id"), name, data)
	if err != nil {
		h.writeError(c, err, "upload image")
		return
	}
	c.JSON(http.StatusOK, view)
}

func imageIndex(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Image not found"})
		return 0, false
	}
	return index, true
}

func (h *Handler) GetListingImage(c *gin.Context) {
	index, ok := imageIndex(c)
	if !ok {
		return
	}
	file, err := h.wizards.Listing.Image(auth.UserID(c), c.Param("id"), index)
	if err != nil {
		h.writeError(c, err, "get image")
		return
	}
	serveFile(c, file)
}

func (h *Handler) RemoveListingImage(c *gin.Context) {
	index, ok := imageIndex(c)
	if !ok {
		return
	}
	view, err := h.wizards.Listing.RemoveImage(auth.UserID(c), c.Param("id"), index)
	if err != nil {
		h.writeError(c, err, "remove image")
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) SetListingOwnership(c *gin.Context) {
	name, data, err := h.readUpload(c)
	if err != nil {
		h.writeError(c, err, "upload document")
		return
	}

	view, err := h.wizards.Listing.SetOwnership(auth.UserID(c), c.Param("id"), name, data)
	if err != nil {
		h.writeError(c, err, "upload document")
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) NextListingStep(c *gin.Context) {
	view, err := h.wizards.Listing.Next(auth.UserID(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err, "continue listing")
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) PreviousListingStep(c *gin.Context) {
	view, err := h.wizards.Listing.Back(auth.UserID(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err, "go back")
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) SubmitListing(c *gin.Context) {
	property, err := h.wizards.Listing.Submit(c.Request.Context(), auth.UserID(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err, "post property")
		return
	}
	c.JSON(http.StatusCreated, property)
}
