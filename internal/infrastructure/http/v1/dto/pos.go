package dto

import (
	"salonpos/internal/core/apperror"
	"salonpos/internal/core/id"
	"salonpos/internal/core/types"
	"salonpos/internal/domain/pos"
)

// --- Request DTOs ---

// CartLineRequest is one ticket line sent by the terminal.
type CartLineRequest struct {
	Kind      string      `json:"kind" binding:"required"`
	RefID     *string     `json:"refId,omitempty"`
	Label     string      `json:"label" binding:"required"`
	UnitPrice types.Money `json:"unitPrice"`
	Quantity  int         `json:"quantity" binding:"required"`
}

// TicketRequest is the full ticket the terminal holds. Sent to both quote
// and commit; the server never stores it.
type TicketRequest struct {
	Lines              []CartLineRequest `json:"lines" binding:"required,min=1,dive"`
	BoundAppointmentID *string           `json:"boundAppointmentId,omitempty"`
	PaymentMethod      string            `json:"paymentMethod" binding:"required"`
	Tip                types.Money       `json:"tip"`
	CashReceived       types.Money       `json:"cashReceived"`
}

// ToCart rebuilds the transient cart from the request.
func (r *TicketRequest) ToCart() (*pos.Cart, error) {
	cart := pos.NewCart()
	for _, l := range r.Lines {
		line := pos.CartLine{
			LineID:    id.New(),
			Kind:      pos.LineKind(l.Kind),
			Label:     l.Label,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
		}
		if l.RefID != nil {
			refID, err := id.Parse(*l.RefID)
			if err != nil {
				return nil, apperror.NewValidation("invalid line refId").
					WithDetail("refId", *l.RefID)
			}
			line.RefID = &refID
		}
		cart.Lines = append(cart.Lines, line)
	}
	if r.BoundAppointmentID != nil {
		apptID, err := id.Parse(*r.BoundAppointmentID)
		if err != nil {
			return nil, apperror.NewValidation("invalid boundAppointmentId").
				WithDetail("boundAppointmentId", *r.BoundAppointmentID)
		}
		cart.BoundAppointmentID = &apptID
	}
	return cart, nil
}

// --- Response DTOs ---

// TotalsResponse is the money view of a ticket.
type TotalsResponse struct {
	Subtotal string `json:"subtotal"`
	TotalDue string `json:"totalDue"`
	Change   string `json:"change"`
}

// FromTotals maps engine totals.
func FromTotals(t pos.Totals) TotalsResponse {
	return TotalsResponse{
		Subtotal: t.Subtotal.String(),
		TotalDue: t.TotalDue.String(),
		Change:   t.Change.String(),
	}
}

// CommitResponse reports a committed ticket.
type CommitResponse struct {
	MovementID string         `json:"movementId"`
	SaleID     string         `json:"saleId"`
	SessionID  string         `json:"sessionId"`
	CustomerID string         `json:"customerId"`
	Totals     TotalsResponse `json:"totals"`
}

// FromCommitResult maps an engine commit result.
func FromCommitResult(r *pos.CommitResult) CommitResponse {
	return CommitResponse{
		MovementID: r.MovementID.String(),
		SaleID:     r.SaleID.String(),
		SessionID:  r.SessionID.String(),
		CustomerID: r.CustomerID.String(),
		Totals:     FromTotals(r.Totals),
	}
}
