package timewallet

import (
	"context"
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

// ListMine godoc
// @Summary      List my time wallets
// @Tags         time-wallets
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}  Wallet
// @Router       /time-wallets [get]
func (h *Handler) ListMine(c *gin.Context) {
	caller, ok := api.Caller(c)
	if !ok {
		return
	}

	wallets, err := h.service.ListMine(c.Request.Context(), caller)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, wallets)
}

// GetForVenue godoc
// @Summary      Get my time wallet at a venue
// @Tags         time-wallets
// @Security     BearerAuth
// @Produce      json
// @Param        venueID  path  int  true  "Venue ID"
// @Success      200  {object}  Wallet
// @Failure      404  {object}  api.ErrorResponse
// @Router       /time-wallets/venue/{venueID} [get]
func (h *Handler) GetForVenue(c *gin.Context) {
	caller, ok := api.Caller(c)
	if !ok {
		return
	}
	venueID, err := api.ParamID(c, "venueID")
	if err != nil {
		api.RespondError(c, err)
		return
	}

	w, err := h.service.Get(c.Request.Context(), caller, caller.UserID, venueID)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, w)
}

// Activate godoc
// @Summary      Start drawing down a time wallet
// @Tags         time-wallets
// @Security     BearerAuth
// @Produce      json
// @Param        walletID  path  int  true  "Wallet ID"
// @Success      200  {object}  Wallet
// @Failure      409  {object}  api.ErrorResponse
// @Router       /time-wallets/{walletID}/activate [post]
func (h *Handler) Activate(c *gin.Context) {
	h.transition(c, h.service.Activate)
}

// Deactivate godoc
// @Summary      Stop drawing down a time wallet
// @Tags         time-wallets
// @Security     BearerAuth
// @Produce      json
// @Param        walletID  path  int  true  "Wallet ID"
// @Success      200  {object}  Wallet
// @Router       /time-wallets/{walletID}/deactivate [post]
func (h *Handler) Deactivate(c *gin.Context) {
	h.transition(c, h.service.Deactivate)
}

func (h *Handler) transition(c *gin.Context, op func(ctx context.Context, caller auth.Identity, walletID int) (*Wallet, error)) {
	caller, ok := api.Caller(c)
	if !ok {
		return
	}
	walletID, err := api.ParamID(c, "walletID")
	if err != nil {
		api.RespondError(c, err)
		return
	}

	w, err := op(c.Request.Context(), caller, walletID)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, w)
}

// SyncRemaining godoc
// @Summary      Report the client-side countdown
// @Description  Advisory: the stored balance is lowered to the reported value but never raised.
// @Tags         time-wallets
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        walletID  path  int          true  "Wallet ID"
// @Param        request   body  SyncRequest  true  "Remaining minutes"
// @Success      200  {object}  Wallet
// @Router       /time-wallets/{walletID}/remaining [patch]
func (h *Handler) SyncRemaining(c *gin.Context) {
	caller, ok := api.Caller(c)
	if !ok {
		return
	}
	walletID, err := api.ParamID(c, "walletID")
	if err != nil {
		api.RespondError(c, err)
		return
	}

	var req SyncRequest
	if !api.BindJSON(c, &req) {
		return
	}

	w, err := h.service.SyncRemaining(c.Request.Context(), caller, walletID, *req.RemainingMinutes)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, w)
}

// Credit godoc
// @Summary      Credit minutes to a user's time wallet
// @Tags         operator
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body  CreditRequest  true  "Credit"
// @Success      200  {object}  Wallet
// @Failure      403  {object}  api.ErrorResponse
// @Router       /operator/time-wallets/credit [post]
func (h *Handler) Credit(c *gin.Context) {
	caller, ok := api.Caller(c)
	if !ok {
		return
	}

	var req CreditRequest
	if !api.BindJSON(c, &req) {
		return
	}

	w, err := h.service.OperatorCredit(c.Request.Context(), caller, req)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, w)
}
