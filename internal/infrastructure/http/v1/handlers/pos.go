package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"salonpos/internal/core/types"
	"salonpos/internal/domain/pos"
	"salonpos/internal/infrastructure/http/v1/dto"
)

// POSHandler handles ticket quote, commit and withdrawal endpoints.
// The cart itself lives on the terminal; every call carries the full ticket.
type POSHandler struct {
	*BaseHandler
	engine *pos.Engine
}

// NewPOSHandler creates a new POS handler.
func NewPOSHandler(base *BaseHandler, engine *pos.Engine) *POSHandler {
	return &POSHandler{
		BaseHandler: base,
		engine:      engine,
	}
}

// Quote handles POST /pos/quote
// Computes subtotal, total due and change without writing anything.
func (h *POSHandler) Quote(c *gin.Context) {
	var req dto.TicketRequest
	if !h.BindJSON(c, &req) {
		return
	}

	cart, err := req.ToCart()
	if err != nil {
		h.Error(c, err)
		return
	}

	totals := pos.ComputeTotals(cart, req.Tip, req.CashReceived, types.PaymentMethod(req.PaymentMethod))
	h.OK(c, dto.FromTotals(totals))
}

// Commit handles POST /pos/commit
// Atomically writes the income movement, the sale record and the outbox
// event for the ticket.
func (h *POSHandler) Commit(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.TicketRequest
	if !h.BindJSON(c, &req) {
		return
	}

	cart, err := req.ToCart()
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.engine.Commit(ctx, cart, req.Tip, req.CashReceived, types.PaymentMethod(req.PaymentMethod))
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromCommitResult(result))
}

// Withdraw handles POST /pos/withdrawals
// Records a drawer withdrawal against the open session.
func (h *POSHandler) Withdraw(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.WithdrawalRequest
	if !h.BindJSON(c, &req) {
		return
	}

	movement, err := h.engine.RecordWithdrawal(ctx, req.Amount, types.PaymentCash, req.Notes)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromMovement(movement))
}
