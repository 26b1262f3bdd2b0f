// Package catalog defines the read-only collaborator ports the POS core
// consumes: sellable services, appointments and customer identity. The core
// never writes through these ports; catalog CRUD lives outside this service.
package catalog

import (
	"context"
	"time"

	"salonpos/internal/core/id"
	"salonpos/internal/core/types"
)

// Item is a sellable catalog entry (a salon service or retail product).
type Item struct {
	ID        id.ID       `db:"id" json:"id"`
	Label     string      `db:"label" json:"label"`
	UnitPrice types.Money `db:"unit_price" json:"unitPrice"`
	Active    bool        `db:"active" json:"active"`
}

// AppointmentStatus mirrors the scheduling service's lifecycle.
type AppointmentStatus string

const (
	AppointmentPending   AppointmentStatus = "pending"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentCancelled AppointmentStatus = "cancelled"
)

// Appointment is a scheduled service used to seed a POS cart.
type Appointment struct {
	ID           id.ID             `db:"id" json:"id"`
	CustomerID   id.ID             `db:"customer_id" json:"customerId"`
	CustomerName string            `db:"customer_name" json:"customerName"`
	ServiceID    id.ID             `db:"service_id" json:"serviceId"`
	ServiceLabel string            `db:"service_label" json:"serviceLabel"`
	Price        types.Money       `db:"price" json:"price"`
	StaffID      *id.ID            `db:"staff_id" json:"staffId,omitempty"`
	StartsAt     time.Time         `db:"starts_at" json:"startsAt"`
	Status       AppointmentStatus `db:"status" json:"status"`
}

// Customer is the identity a sale is recorded against.
type Customer struct {
	ID   id.ID  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// ItemReader lists sellable items.
type ItemReader interface {
	// ListActive returns sellable items ordered by label.
	ListActive(ctx context.Context) ([]Item, error)

	// GetByID returns one item; NotFound if missing.
	GetByID(ctx context.Context, itemID id.ID) (*Item, error)
}

// AppointmentReader resolves appointments for the POS view.
type AppointmentReader interface {
	// ListRange returns appointments within [from, to], optionally filtered by status.
	ListRange(ctx context.Context, from, to time.Time, status *AppointmentStatus) ([]Appointment, error)

	// GetByID returns one appointment; NotFound if missing.
	GetByID(ctx context.Context, apptID id.ID) (*Appointment, error)
}

// IdentityResolver resolves customers for sale records.
type IdentityResolver interface {
	// CustomerForAppointment returns the customer an appointment belongs to.
	CustomerForAppointment(ctx context.Context, apptID id.ID) (*Customer, error)

	// EnsureWalkIn returns the designated counter-sale customer, creating it
	// on first use. Implementations must be safe under concurrent calls.
	EnsureWalkIn(ctx context.Context) (*Customer, error)
}
