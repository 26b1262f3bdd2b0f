// Package pos provides the transient ticket cart and the engine that commits
// it into the movement ledger and sale records.
package pos

import (
	"fmt"
	"strings"

	"salonpos/internal/core/id"
	"salonpos/internal/core/types"
	"salonpos/internal/domain/catalog"
)

// LineKind distinguishes where a cart line came from.
type LineKind string

const (
	LineCatalogService LineKind = "catalog_service"
	LineFreeform       LineKind = "freeform_item"
	LineAppointment    LineKind = "appointment_service"
)

// CartLine is one position on the in-progress ticket.
type CartLine struct {
	LineID    id.ID       `json:"lineId"`
	Kind      LineKind    `json:"kind"`
	RefID     *id.ID      `json:"refId,omitempty"` // catalog item or appointment service
	Label     string      `json:"label"`
	UnitPrice types.Money `json:"unitPrice"`
	Quantity  int         `json:"quantity"`
}

// Total returns unitPrice × quantity for the line.
func (l CartLine) Total() types.Money {
	return l.UnitPrice.Mul(types.NewMoney(float64(l.Quantity)))
}

// Cart is the in-progress ticket. Plain in-memory state owned by one POS
// terminal session; it is never persisted or locked. Committing it is the
// only boundary into durable storage.
type Cart struct {
	Lines []CartLine `json:"lines"`

	// BoundAppointmentID is set when the cart was seeded from an appointment.
	BoundAppointmentID *id.ID `json:"boundAppointmentId,omitempty"`
}

// NewCart creates an empty cart.
func NewCart() *Cart {
	return &Cart{}
}

// AddCatalogLine adds a sellable item. If a line for the same item already
// exists its quantity is incremented; otherwise a new line is appended.
// A bound appointment is kept: mixed carts are allowed.
func (c *Cart) AddCatalogLine(item catalog.Item) {
	for i := range c.Lines {
		line := &c.Lines[i]
		if line.Kind == LineCatalogService && line.RefID != nil && *line.RefID == item.ID {
			line.Quantity++
			return
		}
	}
	itemID := item.ID
	c.Lines = append(c.Lines, CartLine{
		LineID:    id.New(),
		Kind:      LineCatalogService,
		RefID:     &itemID,
		Label:     item.Label,
		UnitPrice: item.UnitPrice,
		Quantity:  1,
	})
}

// AddFreeformLine appends an ad-hoc line. No-op when the label is empty or
// the price is not positive.
func (c *Cart) AddFreeformLine(label string, unitPrice types.Money) {
	if strings.TrimSpace(label) == "" || !unitPrice.IsPositive() {
		return
	}
	c.Lines = append(c.Lines, CartLine{
		LineID:    id.New(),
		Kind:      LineFreeform,
		Label:     label,
		UnitPrice: unitPrice,
		Quantity:  1,
	})
}

// SetQuantity overwrites a line's quantity, including zero or negative
// values. Edits never clamp; CanCommit is the single guard that keeps an
// invalid cart out of storage.
func (c *Cart) SetQuantity(lineID id.ID, quantity int) {
	for i := range c.Lines {
		if c.Lines[i].LineID == lineID {
			c.Lines[i].Quantity = quantity
			return
		}
	}
}

// RemoveLine deletes a line. Unknown ids are ignored.
func (c *Cart) RemoveLine(lineID id.ID) {
	for i := range c.Lines {
		if c.Lines[i].LineID == lineID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return
		}
	}
}

// BindAppointment replaces the entire cart with a single line derived from
// the appointment's service and price. Picking a different appointment always
// resets the cart, never merges.
func (c *Cart) BindAppointment(appt catalog.Appointment) {
	serviceID := appt.ServiceID
	apptID := appt.ID
	c.Lines = []CartLine{{
		LineID:    id.New(),
		Kind:      LineAppointment,
		RefID:     &serviceID,
		Label:     appt.ServiceLabel,
		UnitPrice: appt.Price,
		Quantity:  1,
	}}
	c.BoundAppointmentID = &apptID
}

// UnbindAppointment clears the appointment link without touching the lines.
func (c *Cart) UnbindAppointment() {
	c.BoundAppointmentID = nil
}

// Clear empties the cart and drops the appointment link.
func (c *Cart) Clear() {
	c.Lines = nil
	c.BoundAppointmentID = nil
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// LinesValid reports whether every line could be committed (quantity ≥ 1).
func (c *Cart) LinesValid() bool {
	for _, l := range c.Lines {
		if l.Quantity < 1 {
			return false
		}
	}
	return true
}

// Subtotal is Σ(unitPrice × quantity) over all lines.
func (c *Cart) Subtotal() types.Money {
	total := types.Zero()
	for _, l := range c.Lines {
		total = total.Add(l.Total())
	}
	return total
}

// Description renders the ticket lines for the movement notes field.
func (c *Cart) Description() string {
	parts := make([]string, 0, len(c.Lines))
	for _, l := range c.Lines {
		if l.Quantity == 1 {
			parts = append(parts, l.Label)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s x%d", l.Label, l.Quantity))
	}
	return strings.Join(parts, ", ")
}
