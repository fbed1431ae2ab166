package venue

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"warnetbook/internal/api"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// @Summary      Create a venue
// @Description  Operator-only: register a warnet with its hourly rates
// @Tags         operator,venues
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body venue.CreateVenueRequest true "Venue payload"
// @Success      201 {object} venue.Venue
// @Failure      400 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Router       /operator/venues [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreateVenueRequest
	if !api.BindJSON(c, &req) {
		return
	}

	v, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, v)
}

// @Summary      List venues
// @Tags         venues
// @Produce      json
// @Success      200 {array} venue.Venue
// @Router       /venues [get]
func (h *Handler) List(c *gin.Context) {
	venues, err := h.service.List(c.Request.Context())
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, venues)
}

// @Summary      Get a venue
// @Tags         venues
// @Produce      json
// @Param        venueID path int true "Venue ID"
// @Success      200 {object} venue.Venue
// @Failure      404 {object} api.ErrorResponse
// @Router       /venues/{venueID} [get]
func (h *Handler) Get(c *gin.Context) {
	id, err := api.ParamID(c, "venueID")
	if err != nil {
		api.RespondError(c, err)
		return
	}

	v, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, v)
}
