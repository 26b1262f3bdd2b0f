package handlers

import (
	"github.com/gin-gonic/gin"

	"salonpos/internal/core/apperror"
	"salonpos/internal/core/id"
	"salonpos/internal/domain/ledger"
	"salonpos/internal/infrastructure/http/v1/dto"
)

// MovementHandler serves the append-only movement ledger.
type MovementHandler struct {
	*BaseHandler
	service *ledger.Service
}

// NewMovementHandler creates a new movement handler.
func NewMovementHandler(base *BaseHandler, service *ledger.Service) *MovementHandler {
	return &MovementHandler{
		BaseHandler: base,
		service:     service,
	}
}

// List handles GET /movements
// The ledger is read-only over HTTP except through the POS commit and
// withdrawal endpoints; there is no update or delete route.
func (h *MovementHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.MovementListRequest
	if !h.BindQuery(c, &req) {
		return
	}

	var sessionID *id.ID
	if req.SessionID != nil {
		parsed, err := id.Parse(*req.SessionID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid session id").WithDetail("sessionId", *req.SessionID))
			return
		}
		sessionID = &parsed
	}

	items, err := h.service.List(ctx, sessionID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{Items: dto.FromMovementViews(items), Count: len(items)})
}
