package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"salonpos/internal/core/apperror"
	"salonpos/internal/core/id"
	"salonpos/internal/domain/catalog"
	"salonpos/internal/domain/sales"
	"salonpos/internal/infrastructure/http/v1/dto"
)

// CatalogHandler serves the read-only collaborator views: sellable items,
// the appointment board and recorded sales.
type CatalogHandler struct {
	*BaseHandler
	items        catalog.ItemReader
	appointments catalog.AppointmentReader
	sales        *sales.Service
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(base *BaseHandler, items catalog.ItemReader, appointments catalog.AppointmentReader, saleSvc *sales.Service) *CatalogHandler {
	return &CatalogHandler{
		BaseHandler:  base,
		items:        items,
		appointments: appointments,
		sales:        saleSvc,
	}
}

// ListItems handles GET /catalog/services
func (h *CatalogHandler) ListItems(c *gin.Context) {
	ctx := c.Request.Context()

	items, err := h.items.ListActive(ctx)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{Items: dto.FromItems(items), Count: len(items)})
}

// ListAppointments handles GET /appointments
// Defaults to today's board when no range is given.
func (h *CatalogHandler) ListAppointments(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.AppointmentListRequest
	if !h.BindQuery(c, &req) {
		return
	}

	now := time.Now().UTC()
	from := now.Truncate(24 * time.Hour)
	to := from.Add(24*time.Hour - time.Nanosecond)
	if req.From != nil {
		from = *req.From
	}
	if req.To != nil {
		to = req.To.Add(24*time.Hour - time.Nanosecond)
	}

	var status *catalog.AppointmentStatus
	if req.Status != nil {
		s := catalog.AppointmentStatus(*req.Status)
		status = &s
	}

	items, err := h.appointments.ListRange(ctx, from, to, status)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{Items: dto.FromAppointments(items), Count: len(items)})
}

// GetAppointment handles GET /appointments/:id
func (h *CatalogHandler) GetAppointment(c *gin.Context) {
	ctx := c.Request.Context()

	apptID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid appointment id").WithDetail("id", c.Param("id")))
		return
	}

	appt, err := h.appointments.GetByID(ctx, apptID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromAppointment(*appt))
}

// ListSales handles GET /sales
func (h *CatalogHandler) ListSales(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.SaleListRequest
	if !h.BindQuery(c, &req) {
		return
	}

	filter := sales.ListFilter{Limit: req.Limit}
	if req.CustomerID != nil {
		parsed, err := id.Parse(*req.CustomerID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid customer id").WithDetail("customerId", *req.CustomerID))
			return
		}
		filter.CustomerID = &parsed
	}
	if req.AppointmentID != nil {
		parsed, err := id.Parse(*req.AppointmentID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid appointment id").WithDetail("appointmentId", *req.AppointmentID))
			return
		}
		filter.AppointmentID = &parsed
	}

	items, err := h.sales.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{Items: dto.FromSales(items), Count: len(items)})
}
