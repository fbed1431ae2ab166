package booking

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"warnetbook/internal/api"
	"warnetbook/internal/auth"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Create godoc
// @Summary      Book a workstation
// @Description  Creates a pending booking priced at the member or regular rate of the venue.
// @Tags         bookings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreateBookingRequest  true  "Booking"
// @Success      201      {object}  Booking
// @Failure      400      {object}  api.ValidationErrorResponse
// @Failure      404      {object}  api.ErrorResponse
// @Failure      409      {object}  api.ErrorResponse
// @Router       /bookings [post]
func (h *Handler) Create(c *gin.Context) {
	caller, ok := api.Caller(c)
	if !ok {
		return
	}

	var req CreateBookingRequest
	if !api.BindJSON(c, &req) {
		return
	}

	b, err := h.service.Create(c.Request.Context(), caller, req)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, b)
}

// ListMine godoc
// @Summary      List my bookings
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        limit   query  int  false  "Page size"  default(20)
// @Param        offset  query  int  false  "Offset"     default(0)
// @Success      200  {array}  Booking
// @Router       /bookings [get]
func (h *Handler) ListMine(c *gin.Context) {
	caller, ok := api.Caller(c)
	if !ok {
		return
	}

	limit, offset := api.Pagination(c)
	bookings, err := h.service.ListMine(c.Request.Context(), caller, limit, offset)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, bookings)
}

// ListByVenue godoc
// @Summary      List a venue's bookings
// @Tags         operator
// @Security     BearerAuth
// @Produce      json
// @Param        venueID  path   int     true   "Venue ID"
// @Param        status   query  string  false  "pending, active, completed or cancelled"
// @Success      200  {array}   Booking
// @Failure      403  {object}  api.ErrorResponse
// @Router       /operator/venues/{venueID}/bookings [get]
func (h *Handler) ListByVenue(c *gin.Context) {
	caller, ok := api.Caller(c)
	if !ok {
		return
	}
	venueID, err := api.ParamID(c, "venueID")
	if err != nil {
		api.RespondError(c, err)
		return
	}

	status := Status(c.Query("status"))
	switch status {
	case "", StatusPending, StatusActive, StatusCompleted, StatusCancelled:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}

	limit, offset := api.Pagination(c)
	bookings, err := h.service.ListByVenue(c.Request.Context(), caller, venueID, status, limit, offset)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, bookings)
}

// Stats godoc
// @Summary      Daily booking statistics for a venue
// @Tags         operator
// @Security     BearerAuth
// @Produce      json
// @Param        venueID  path   int     true   "Venue ID"
// @Param        from     query  string  false  "First day, YYYY-MM-DD (default 30 days before to)"
// @Param        to       query  string  false  "Last day inclusive, YYYY-MM-DD (default today)"
// @Success      200  {array}   DailyStats
// @Failure      400  {object}  api.ErrorResponse
// @Failure      403  {object}  api.ErrorResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /operator/venues/{venueID}/stats [get]
func (h *Handler) Stats(c *gin.Context) {
	caller, ok := api.Caller(c)
	if !ok {
		return
	}
	venueID, err := api.ParamID(c, "venueID")
	if err != nil {
		api.RespondError(c, err)
		return
	}

	last := time.Now().UTC().Truncate(24 * time.Hour)
	if v := c.Query("to"); v != "" {
		if last, err = time.Parse("2006-01-02", v); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "to must be YYYY-MM-DD"})
			return
		}
	}
	first := last.AddDate(0, 0, -30)
	if v := c.Query("from"); v != "" {
		if first, err = time.Parse("2006-01-02", v); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "from must be YYYY-MM-DD"})
			return
		}
	}

	stats, err := h.service.Stats(c.Request.Context(), caller, venueID, first, last.AddDate(0, 0, 1))
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// Get godoc
// @Summary      Get a booking
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        bookingID  path  int  true  "Booking ID"
// @Success      200  {object}  Booking
// @Failure      403  {object}  api.ErrorResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /bookings/{bookingID} [get]
func (h *Handler) Get(c *gin.Context) {
	h.act(c, http.StatusOK, h.service.Get)
}

// ConfirmPayment godoc
// @Summary      Pay for a booking
// @Description  method=wallet debits DompetBowar; method=transfer is operator-only and records an already verified transfer.
// @Tags         bookings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        bookingID  path  int                    true   "Booking ID"
// @Param        request    body  ConfirmPaymentRequest  false  "Payment method"
// @Success      200  {object}  Booking
// @Failure      409  {object}  api.ErrorResponse
// @Failure      422  {object}  api.ErrorResponse
// @Router       /bookings/{bookingID}/confirm-payment [post]
func (h *Handler) ConfirmPayment(c *gin.Context) {
	caller, ok := api.Caller(c)
	if !ok {
		return
	}
	bookingID, err := api.ParamID(c, "bookingID")
	if err != nil {
		api.RespondError(c, err)
		return
	}

	var req ConfirmPaymentRequest
	if c.Request.ContentLength > 0 && !api.BindJSON(c, &req) {
		return
	}

	b, err := h.service.ConfirmPayment(c.Request.Context(), caller, bookingID, req)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, b)
}

// Cancel godoc
// @Summary      Cancel a booking
// @Description  Allowed for the owner while the booking is pending and inside its cancellation window. Wallet payments are refunded.
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        bookingID  path  int  true  "Booking ID"
// @Success      200  {object}  Booking
// @Failure      403  {object}  api.ErrorResponse
// @Failure      409  {object}  api.ErrorResponse
// @Router       /bookings/{bookingID}/cancel [post]
func (h *Handler) Cancel(c *gin.Context) {
	h.act(c, http.StatusOK, h.service.Cancel)
}

// StartSession godoc
// @Summary      Start the session of a paid booking
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        bookingID  path  int  true  "Booking ID"
// @Success      200  {object}  Booking
// @Failure      409  {object}  api.ErrorResponse
// @Router       /bookings/{bookingID}/start [post]
func (h *Handler) StartSession(c *gin.Context) {
	h.act(c, http.StatusOK, h.service.StartSession)
}

// Complete godoc
// @Summary      End an active session
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        bookingID  path  int  true  "Booking ID"
// @Success      200  {object}  Booking
// @Failure      409  {object}  api.ErrorResponse
// @Router       /bookings/{bookingID}/complete [post]
func (h *Handler) Complete(c *gin.Context) {
	h.act(c, http.StatusOK, h.service.Complete)
}

// Remaining godoc
// @Summary      Remaining session minutes
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        bookingID  path  int  true  "Booking ID"
// @Success      200  {object}  RemainingResponse
// @Router       /bookings/{bookingID}/remaining [get]
func (h *Handler) Remaining(c *gin.Context) {
	caller, ok := api.Caller(c)
	if !ok {
		return
	}
	bookingID, err := api.ParamID(c, "bookingID")
	if err != nil {
		api.RespondError(c, err)
		return
	}

	remaining, err := h.service.Remaining(c.Request.Context(), caller, bookingID)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, RemainingResponse{BookingID: bookingID, RemainingMinutes: remaining})
}

type bookingAction func(ctx context.Context, caller auth.Identity, bookingID int) (*Booking, error)

func (h *Handler) act(c *gin.Context, status int, fn bookingAction) {
	caller, ok := api.Caller(c)
	if !ok {
		return
	}
	bookingID, err := api.ParamID(c, "bookingID")
	if err != nil {
		api.RespondError(c, err)
		return
	}

	b, err := fn(c.Request.Context(), caller, bookingID)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(status, b)
}
