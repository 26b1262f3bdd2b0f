package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"salonpos/internal/core/apperror"
	"salonpos/internal/core/id"
	"salonpos/internal/domain/session"
	"salonpos/internal/infrastructure/http/v1/dto"
)

// SessionHandler handles cash session endpoints.
type SessionHandler struct {
	*BaseHandler
	service *session.Service
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(base *BaseHandler, service *session.Service) *SessionHandler {
	return &SessionHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Open handles POST /sessions/open
// Opens today's session, or refreshes it when a row for today already exists.
func (h *SessionHandler) Open(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.OpenSessionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	sess, err := h.service.OpenForToday(ctx, req.OpeningFloat, req.Notes)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromSession(sess))
}

// Current handles GET /sessions/current
func (h *SessionHandler) Current(c *gin.Context) {
	ctx := c.Request.Context()

	sess, err := h.service.GetOpen(ctx)
	if err != nil {
		h.Error(c, err)
		return
	}
	if sess == nil {
		h.Error(c, apperror.NewNoOpenSession())
		return
	}

	h.OK(c, dto.FromSession(sess))
}

// List handles GET /sessions
func (h *SessionHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.SessionListRequest
	if !h.BindQuery(c, &req) {
		return
	}

	items, err := h.service.List(ctx, session.ListFilter{
		DateFrom: req.DateFrom,
		DateTo:   req.DateTo,
		Limit:    req.Limit,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{Items: dto.FromSessions(items), Count: len(items)})
}

// Get handles GET /sessions/:id
func (h *SessionHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	sessionID, ok := h.parseID(c)
	if !ok {
		return
	}

	sess, err := h.service.GetByID(ctx, sessionID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromSession(sess))
}

// Close handles POST /sessions/:id/close
func (h *SessionHandler) Close(c *gin.Context) {
	ctx := c.Request.Context()

	sessionID, ok := h.parseID(c)
	if !ok {
		return
	}

	var req dto.CloseSessionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	sess, err := h.service.Close(ctx, sessionID, req.CountedTotal, req.Notes)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromSession(sess))
}

// Reopen handles POST /sessions/:id/reopen
// Management override: the target becomes the single open session.
func (h *SessionHandler) Reopen(c *gin.Context) {
	ctx := c.Request.Context()

	sessionID, ok := h.parseID(c)
	if !ok {
		return
	}

	sess, err := h.service.Reopen(ctx, sessionID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromSession(sess))
}

func (h *SessionHandler) parseID(c *gin.Context) (id.ID, bool) {
	sessionID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid session id").WithDetail("id", c.Param("id")))
		return id.Nil(), false
	}
	return sessionID, true
}
