package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nomadic-camps/booking-service/internal/application"
	"github.com/nomadic-camps/booking-service/internal/response"
)

// BookingHandler handles the public booking endpoints: submission,
// price preview, payment confirmation and date availability.
type BookingHandler struct {
	bookings *application.BookingService
	settings *application.SettingsService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(bookings *application.BookingService, settings *application.SettingsService) *BookingHandler {
	return &BookingHandler{bookings: bookings, settings: settings}
}

// RegisterRoutes registers the public routes on the given router group.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup) {
	bookings := r.Group("/api/v1/bookings")
	{
		bookings.POST("", h.CreateBooking)
		bookings.POST("/quote", h.Quote)
		bookings.GET("/confirm", h.ConfirmPayment)
	}

	r.GET("/api/v1/date-constraints", h.DateConstraints)
	r.GET("/api/v1/settings", h.GetSettings)
}

// CreateBooking handles POST /api/v1/bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req application.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.bookings.CreateBooking(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// Quote handles POST /api/v1/bookings/quote. Incomplete forms are fine;
// the client calls this on every change for the live price preview.
func (h *BookingHandler) Quote(c *gin.Context) {
	var req application.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	breakdown, err := h.bookings.Quote(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, breakdown)
}

// ConfirmPayment handles GET /api/v1/bookings/confirm?session_id=...,
// the customer's return leg from checkout.
func (h *BookingHandler) ConfirmPayment(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		response.BadRequest(c, "session_id is required")
		return
	}

	result, err := h.bookings.ConfirmPayment(c.Request.Context(), sessionID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// DateConstraints handles GET /api/v1/date-constraints?date=2006-01-02.
func (h *BookingHandler) DateConstraints(c *gin.Context) {
	raw := c.Query("date")
	if raw == "" {
		response.BadRequest(c, "date is required")
		return
	}

	date, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		response.BadRequest(c, "date must be in YYYY-MM-DD format")
		return
	}

	result, err := h.bookings.DateConstraints(c.Request.Context(), date)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetSettings handles GET /api/v1/settings. The booking form reads the
// current prices from here before rendering.
func (h *BookingHandler) GetSettings(c *gin.Context) {
	result, err := h.settings.Get(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// parsePagination extracts page and limit query parameters with defaults.
func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	return page, limit
}
