package api

import (
	"net/http"
	"os"
	"time"

	"lagospaces/server/config"
	"lagospaces/server/internal/auth"
	"lagospaces/server/internal/database"
	"lagospaces/server/internal/forms"
	"lagospaces/server/internal/geometry"
	"lagospaces/server/internal/models"
	"lagospaces/server/internal/search"
	"lagospaces/server/internal/wizard"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	db            *database.Database
	auth          *auth.Service
	search        *search.Service
	wizards       *wizard.Manager
	bookingFee    int
	maxUploadSize int64
	now           func() time.Time
	logger        *logrus.Logger
}

// Dependencies are the services the HTTP layer exposes
type Dependencies struct {
	DB            *database.Database
	Auth          *auth.Service
	Search        *search.Service
	Wizards       *wizard.Manager
	BookingFee    int
	MaxUploadSize int64
}

func NewHandler(deps Dependencies, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	return &Handler{
		db:            deps.DB,
		auth:          deps.Auth,
		search:        deps.Search,
		wizards:       deps.Wizards,
		bookingFee:    deps.BookingFee,
		maxUploadSize: deps.MaxUploadSize,
		now:           func() time.Time { return time.Now().UTC() },
		logger:        logger,
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) Login(c *gin.Context) {
	var form forms.LoginForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	session, err := h.auth.Login(c.Request.Context(), form)
	if err != nil {
		h.writeError(c, err, "log in")
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *Handler) Signup(c *gin.Context) {
	var form forms.SignupForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	user, err := h.auth.Signup(c.Request.Context(), form)
	if err != nil {
		h.writeError(c, err, "create account")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"user":    user,
		"message": "Account created. Your account will be activated once it has been reviewed.",
	})
}

func (h *Handler) Logout(c *gin.Context) {
	h.auth.Logout(auth.ClaimsFrom(c))
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (h *Handler) Me(c *gin.Context) {
	user, err := h.auth.CurrentUser(auth.ClaimsFrom(c))
	if err != nil {
		h.writeError(c, err, "load account")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "is_authenticated": true})
}

func (h *Handler) GetCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"currency":       config.Currency,
		"locations":      config.SupportedLocations,
		"price_ranges":   config.PriceRanges,
		"property_types": config.PropertyTypes,
		"amenities":      config.Amenities,
		"ussd_banks":     config.USSDBanks,
		"booking_fee":    h.bookingFee,
	})
}

func (h *Handler) GetProperties(c *gin.Context) {
	var (
		properties []models.Property
		err        error
	)
	if c.Query("featured") == "true" {
		properties, err = h.db.GetFeaturedProperties()
	} else {
		properties, err = h.db.GetAllProperties()
	}
	if err != nil {
		h.writeError(c, err, "get properties")
		return
	}
	c.JSON(http.StatusOK, properties)
}

// GetProperty returns one listing. Owner contact details are only shown to signed-in users.
func (h *Handler) GetProperty(c *gin.Context) {
	property, err := h.db.GetProperty(c.Param("id"), auth.IsAuthenticated(c))
	if err != nil {
		h.writeError(c, err, "get property")
		return
	}
	c.JSON(http.StatusOK, property)
}

func (h *Handler) GetFeed(c *gin.Context) {
	items, err := h.db.GetFeed(auth.UserID(c))
	if err != nil {
		h.writeError(c, err, "get feed")
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) ToggleLike(c *gin.Context) {
	liked, likes, err := h.db.ToggleLike(auth.UserID(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err, "update like")
		return
	}
	c.JSON(http.StatusOK, gin.H{"is_liked": liked, "likes": likes})
}

func (h *Handler) ToggleSave(c *gin.Context) {
	saved, err := h.db.ToggleSaved(auth.UserID(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err, "update saved list")
		return
	}
	c.JSON(http.StatusOK, gin.H{"is_saved": saved})
}

func (h *Handler) Search(c *gin.Context) {
	criteria, err := search.CriteriaFromQuery(c.Request.URL.Query())
	if err != nil {
		h.writeError(c, err, "search")
		return
	}

	result, err := h.search.Search(c.Request.Context(), criteria)
	if err != nil {
		h.writeError(c, err, "search")
		return
	}
	c.JSON(http.StatusOK, result)
}

// SearchMap returns the same results as Search as a GeoJSON feature collection
func (h *Handler) SearchMap(c *gin.Context) {
	criteria, err := search.CriteriaFromQuery(c.Request.URL.Query())
	if err != nil {
		h.writeError(c, err, "search")
		return
	}

	result, err := h.search.Search(c.Request.Context(), criteria)
	if err != nil {
		h.writeError(c, err, "search")
		return
	}

	fc := geometry.FeatureCollection(result.Properties)
	data, err := fc.MarshalJSON()
	if err != nil {
		h.writeError(c, err, "render map")
		return
	}
	c.Data(http.StatusOK, "application/geo+json", data)
}

func (h *Handler) GetSaved(c *gin.Context) {
	saved, err := h.db.GetSavedProperties(auth.UserID(c))
	if err != nil {
		h.writeError(c, err, "get saved properties")
		return
	}
	c.JSON(http.StatusOK, gin.H{"properties": saved, "total": len(saved)})
}

func (h *Handler) SaveProperty(c *gin.Context) {
	if err := h.db.SaveProperty(auth.UserID(c), c.Param("id")); err != nil {
		h.writeError(c, err, "save property")
		return
	}
	c.JSON(http.StatusOK, gin.H{"is_saved": true})
}

func (h *Handler) RemoveSaved(c *gin.Context) {
	if err := h.db.RemoveSavedProperty(auth.UserID(c), c.Param("id")); err != nil {
		h.writeError(c, err, "remove saved property")
		return
	}
	c.JSON(http.StatusOK, gin.H{"is_saved": false})
}
