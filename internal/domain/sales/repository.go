package sales

import (
	"context"

	"salonpos/internal/core/id"
)

// ListFilter narrows sale listings.
type ListFilter struct {
	CustomerID    *id.ID
	AppointmentID *id.ID
	Limit         int
}

// Repository is the durable sale store. Rows are insert-only.
type Repository interface {
	// Insert appends one sale record.
	Insert(ctx context.Context, r *SaleRecord) error

	// List returns sales newest first.
	List(ctx context.Context, filter ListFilter) ([]SaleRecord, error)
}
