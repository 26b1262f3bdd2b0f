package dto

import (
	"time"

	"salonpos/internal/domain/catalog"
	"salonpos/internal/domain/sales"
)

// --- Request DTOs ---

// AppointmentListRequest filters the appointment board.
type AppointmentListRequest struct {
	From   *time.Time `form:"from" time_format:"2006-01-02"`
	To     *time.Time `form:"to" time_format:"2006-01-02"`
	Status *string    `form:"status" binding:"omitempty,oneof=pending completed cancelled"`
}

// SaleListRequest filters sale listings.
type SaleListRequest struct {
	CustomerID    *string `form:"customerId" binding:"omitempty,uuid"`
	AppointmentID *string `form:"appointmentId" binding:"omitempty,uuid"`
	Limit         int     `form:"limit" binding:"omitempty,min=1,max=500"`
}

// --- Response DTOs ---

// ItemResponse is one sellable catalog entry.
type ItemResponse struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	UnitPrice string `json:"unitPrice"`
	Active    bool   `json:"active"`
}

// FromItem maps a catalog item.
func FromItem(i catalog.Item) ItemResponse {
	return ItemResponse{
		ID:        i.ID.String(),
		Label:     i.Label,
		UnitPrice: i.UnitPrice.String(),
		Active:    i.Active,
	}
}

// FromItems maps a list of catalog items.
func FromItems(items []catalog.Item) []ItemResponse {
	out := make([]ItemResponse, 0, len(items))
	for _, i := range items {
		out = append(out, FromItem(i))
	}
	return out
}

// AppointmentResponse is one scheduled appointment.
type AppointmentResponse struct {
	ID           string    `json:"id"`
	CustomerID   string    `json:"customerId"`
	CustomerName string    `json:"customerName"`
	ServiceID    string    `json:"serviceId"`
	ServiceLabel string    `json:"serviceLabel"`
	Price        string    `json:"price"`
	StaffID      *string   `json:"staffId,omitempty"`
	StartsAt     time.Time `json:"startsAt"`
	Status       string    `json:"status"`
}

// FromAppointment maps an appointment.
func FromAppointment(a catalog.Appointment) AppointmentResponse {
	resp := AppointmentResponse{
		ID:           a.ID.String(),
		CustomerID:   a.CustomerID.String(),
		CustomerName: a.CustomerName,
		ServiceID:    a.ServiceID.String(),
		ServiceLabel: a.ServiceLabel,
		Price:        a.Price.String(),
		StartsAt:     a.StartsAt,
		Status:       string(a.Status),
	}
	if a.StaffID != nil {
		s := a.StaffID.String()
		resp.StaffID = &s
	}
	return resp
}

// FromAppointments maps a list of appointments.
func FromAppointments(items []catalog.Appointment) []AppointmentResponse {
	out := make([]AppointmentResponse, 0, len(items))
	for _, a := range items {
		out = append(out, FromAppointment(a))
	}
	return out
}

// SaleResponse is one recorded sale.
type SaleResponse struct {
	ID            string    `json:"id"`
	AppointmentID *string   `json:"appointmentId,omitempty"`
	CustomerID    string    `json:"customerId"`
	Amount        string    `json:"amount"`
	PaymentMethod string    `json:"paymentMethod"`
	OccurredAt    time.Time `json:"occurredAt"`
	StaffID       *string   `json:"staffId,omitempty"`
}

// FromSale maps a sale record.
func FromSale(s sales.SaleRecord) SaleResponse {
	resp := SaleResponse{
		ID:            s.ID.String(),
		CustomerID:    s.CustomerID.String(),
		Amount:        s.Amount.String(),
		PaymentMethod: string(s.PaymentMethod),
		OccurredAt:    s.OccurredAt,
	}
	if s.AppointmentID != nil {
		v := s.AppointmentID.String()
		resp.AppointmentID = &v
	}
	if s.StaffID != nil {
		v := s.StaffID.String()
		resp.StaffID = &v
	}
	return resp
}

// FromSales maps a list of sale records.
func FromSales(items []sales.SaleRecord) []SaleResponse {
	out := make([]SaleResponse, 0, len(items))
	for _, s := range items {
		out = append(out, FromSale(s))
	}
	return out
}
