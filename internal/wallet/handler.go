package wallet

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

// GetBalance godoc
// @Summary      Get my DompetBowar balance
// @Tags         wallet
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  Balance
// @Failure      401  {object}  api.ErrorResponse
// @Router       /wallet [get]
func (h *Handler) GetBalance(c *gin.Context) {
	caller, ok := api.Caller(c)
	if !ok {
		return
	}

	b, err := h.service.GetBalance(c.Request.Context(), caller, caller.UserID)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, b)
}

// ListTransactions godoc
// @Summary      List my ledger entries
// @Tags         wallet
// @Security     BearerAuth
// @Produce      json
// @Param        kind        query  string  false  "topup, payment or refund"
// @Param        status      query  string  false  "pending, completed or failed"
// @Param        booking_id  query  int     false  "Booking ID"
// @Param        limit       query  int     false  "Page size"  default(20)
// @Param        offset      query  int     false  "Offset"     default(0)
// @Success      200  {array}   Transaction
// @Failure      400  {object}  api.ErrorResponse
// @Router       /wallet/transactions [get]
func (h *Handler) ListTransactions(c *gin.Context) {
	caller, ok := api.Caller(c)
	if !ok {
		return
	}
	h.listTransactions(c, caller.UserID)
}

// ListUserTransactions godoc
// @Summary      List a user's ledger entries
// @Tags         operator
// @Security     BearerAuth
// @Produce      json
// @Param        userID  path  int  true  "User ID"
// @Success      200  {array}   Transaction
// @Failure      403  {object}  api.ErrorResponse
// @Router       /operator/users/{userID}/transactions [get]
func (h *Handler) ListUserTransactions(c *gin.Context) {
	ownerID, err := api.ParamID(c, "userID")
	if err != nil {
		api.RespondError(c, err)
		return
	}
	h.listTransactions(c, ownerID)
}

func (h *Handler) listTransactions(c *gin.Context, ownerID int) {
	caller, ok := api.Caller(c)
	if !ok {
		return
	}

	var filter TransactionFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid filter"})
		return
	}
	filter.Limit, filter.Offset = api.Pagination(c)

	txs, err := h.service.ListTransactions(c.Request.Context(), caller, ownerID, filter)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, txs)
}

// GetUserBalance godoc
// @Summary      Get a user's balance
// @Tags         operator
// @Security     BearerAuth
// @Produce      json
// @Param        userID  path  int  true  "User ID"
// @Success      200  {object}  Balance
// @Failure      403  {object}  api.ErrorResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /operator/users/{userID}/wallet [get]
func (h *Handler) GetUserBalance(c *gin.Context) {
	caller, ok := api.Caller(c)
	if !ok {
		return
	}
	ownerID, err := api.ParamID(c, "userID")
	if err != nil {
		api.RespondError(c, err)
		return
	}

	b, err := h.service.GetBalance(c.Request.Context(), caller, ownerID)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, b)
}

// RequestTopup godoc
// @Summary      Request a top-up
// @Description  Records a pending top-up with proof of transfer. The balance changes only after an operator approves it.
// @Tags         wallet
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      TopupRequest  true  "Top-up request"
// @Success      201      {object}  Transaction
// @Failure      400      {object}  api.ValidationErrorResponse
// @Router       /wallet/topups [post]
func (h *Handler) RequestTopup(c *gin.Context) {
	caller, ok := api.Caller(c)
	if !ok {
		return
	}

	var req TopupRequest
	if !api.BindJSON(c, &req) {
		return
	}

	t, err := h.service.RequestTopup(c.Request.Context(), caller, req)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, t)
}

// ListPending godoc
// @Summary      List pending top-ups
// @Tags         operator
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}   Transaction
// @Failure      403  {object}  api.ErrorResponse
// @Router       /operator/topups/pending [get]
func (h *Handler) ListPending(c *gin.Context) {
	caller, ok := api.Caller(c)
	if !ok {
		return
	}

	limit, offset := api.Pagination(c)
	txs, err := h.service.ListPending(c.Request.Context(), caller, limit, offset)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, txs)
}

// Approve godoc
// @Summary      Approve a pending top-up
// @Tags         operator
// @Security     BearerAuth
// @Produce      json
// @Param        txID  path  int  true  "Transaction ID"
// @Success      200  {object}  Transaction
// @Failure      404  {object}  api.ErrorResponse
// @Failure      409  {object}  api.ErrorResponse
// @Router       /operator/topups/{txID}/approve [post]
func (h *Handler) Approve(c *gin.Context) {
	caller, ok := api.Caller(c)
	if !ok {
		return
	}
	txID, err := api.ParamID(c, "txID")
	if err != nil {
		api.RespondError(c, err)
		return
	}

	t, err := h.service.Approve(c.Request.Context(), caller, txID)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, t)
}

// Reject godoc
// @Summary      Reject a pending top-up
// @Tags         operator
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        txID     path  int            true  "Transaction ID"
// @Param        request  body  RejectRequest  true  "Rejection note"
// @Success      200  {object}  Transaction
// @Failure      400  {object}  api.ValidationErrorResponse
// @Failure      409  {object}  api.ErrorResponse
// @Router       /operator/topups/{txID}/reject [post]
func (h *Handler) Reject(c *gin.Context) {
	caller, ok := api.Caller(c)
	if !ok {
		return
	}
	txID, err := api.ParamID(c, "txID")
	if err != nil {
		api.RespondError(c, err)
		return
	}

	var req RejectRequest
	if !api.BindJSON(c, &req) {
		return
	}

	t, err := h.service.Reject(c.Request.Context(), caller, txID, req.Note)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, t)
}

// IssueRefund godoc
// @Summary      Credit a refund
// @Tags         operator
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body  RefundRequest  true  "Refund"
// @Success      201  {object}  Transaction
// @Failure      403  {object}  api.ErrorResponse
// @Router       /operator/refunds [post]
func (h *Handler) IssueRefund(c *gin.Context) {
	caller, ok := api.Caller(c)
	if !ok {
		return
	}

	var req RefundRequest
	if !api.BindJSON(c, &req) {
		return
	}

	t, err := h.service.IssueRefund(c.Request.Context(), caller, req)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, t)
}

// Reconcile godoc
// @Summary      Compare a user's balance with the ledger
// @Tags         operator
// @Security     BearerAuth
// @Produce      json
// @Param        userID  path  int  true  "User ID"
// @Success      200  {object}  Reconciliation
// @Failure      404  {object}  api.ErrorResponse
// @Router       /operator/users/{userID}/reconcile [get]
func (h *Handler) Reconcile(c *gin.Context) {
	ownerID, err := api.ParamID(c, "userID")
	if err != nil {
		api.RespondError(c, err)
		return
	}

	rec, err := h.service.Reconcile(c.Request.Context(), ownerID)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, rec)
}
