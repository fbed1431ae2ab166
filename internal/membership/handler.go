package membership

import (
	"net/http"

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

// @Summary      Join a venue as a member
// @Description  Creates a membership at the venue and upgrades a patron account to member.
// @Tags         memberships
// @Produce      json
// @Security     BearerAuth
// @Param        venueID path int true "Venue ID"
// @Success      201 {object} membership.Membership
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /venues/{venueID}/membership [post]
func (h *Handler) Join(c *gin.Context) {
	caller, ok := auth.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	venueID, err := api.ParamID(c, "venueID")
	if err != nil {
		api.RespondError(c, err)
		return
	}

	m, err := h.service.Join(c.Request.Context(), caller, venueID)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, m)
}

// @Summary      List my memberships
// @Tags         memberships
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} membership.Membership
// @Router       /memberships [get]
func (h *Handler) ListMine(c *gin.Context) {
	caller, ok := auth.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	memberships, err := h.service.ListMine(c.Request.Context(), caller)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, memberships)
}

// @Summary      List a venue's members
// @Description  Operator roster with each member's wallet balance and time wallet at the venue.
// @Tags         operator
// @Produce      json
// @Security     BearerAuth
// @Param        venueID path  int true  "Venue ID"
// @Param        limit   query int false "Page size" default(20)
// @Param        offset  query int false "Offset" default(0)
// @Success      200 {array} membership.VenueMember
// @Failure      403 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /operator/venues/{venueID}/members [get]
func (h *Handler) ListByVenue(c *gin.Context) {
	caller, ok := auth.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	venueID, err := api.ParamID(c, "venueID")
	if err != nil {
		api.RespondError(c, err)
		return
	}

	limit, offset := api.Pagination(c)
	members, err := h.service.ListByVenue(c.Request.Context(), caller, venueID, limit, offset)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, members)
}
