package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nomadic-camps/booking-service/internal/application"
	"github.com/nomadic-camps/booking-service/internal/auth"
	"github.com/nomadic-camps/booking-service/internal/domain/booking"
	"github.com/nomadic-camps/booking-service/internal/domain/settings"
	"github.com/nomadic-camps/booking-service/internal/response"
)

// AdminHandler handles the authenticated admin endpoints: the booking
// list, settings management and the dashboard aggregates.
type AdminHandler struct {
	bookings *application.BookingService
	settings *application.SettingsService
	stats    *application.StatsService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(
	bookings *application.BookingService,
	settings *application.SettingsService,
	stats *application.StatsService,
) *AdminHandler {
	return &AdminHandler{bookings: bookings, settings: settings, stats: stats}
}

// RegisterRoutes registers the admin routes on the given router group.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	admin := r.Group("/api/v1/admin")
	admin.Use(auth.Middleware(jwtManager), auth.RequireRole(auth.RoleAdmin))
	{
		admin.GET("/bookings", h.ListBookings)
		admin.GET("/bookings/:id", h.GetBooking)
		admin.GET("/settings", h.GetSettings)
		admin.PUT("/settings", h.ReplaceSettings)
		admin.GET("/stats", h.Stats)
		admin.GET("/charts", h.Charts)
	}
}

// ListBookings handles GET /api/v1/admin/bookings with search, location
// and payment-status filters.
func (h *AdminHandler) ListBookings(c *gin.Context) {
	page, limit := parsePagination(c)

	filter := booking.ListFilter{
		Search:   c.Query("search"),
		Location: booking.Location(c.Query("location")),
		Page:     page,
		Limit:    limit,
	}

	switch c.Query("isPaid") {
	case "true":
		paid := true
		filter.IsPaid = &paid
	case "false":
		paid := false
		filter.IsPaid = &paid
	}

	result, err := h.bookings.ListBookings(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// GetBooking handles GET /api/v1/admin/bookings/:id.
func (h *AdminHandler) GetBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	result, err := h.bookings.GetBooking(c.Request.Context(), bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetSettings handles GET /api/v1/admin/settings.
func (h *AdminHandler) GetSettings(c *gin.Context) {
	result, err := h.settings.Get(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ReplaceSettings handles PUT /api/v1/admin/settings. The body is the
// full settings document; partial updates are not supported.
func (h *AdminHandler) ReplaceSettings(c *gin.Context) {
	var doc settings.Settings
	if err := c.ShouldBindJSON(&doc); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.settings.Replace(c.Request.Context(), doc)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Stats handles GET /api/v1/admin/stats.
func (h *AdminHandler) Stats(c *gin.Context) {
	result, err := h.stats.Dashboard(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Charts handles GET /api/v1/admin/charts.
func (h *AdminHandler) Charts(c *gin.Context) {
	result, err := h.stats.Charts(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
