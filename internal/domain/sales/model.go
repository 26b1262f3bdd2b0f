// Package sales provides the revenue/appointment projection of completed sales.
//
// A SaleRecord and the income Movement written by a POS commit are two
// projections of the same business event: one for cash-flow accounting, one
// for revenue and appointment history. Both are written in the same
// transaction by the ticket engine.
package sales

import (
	"context"
	"time"

	"salonpos/internal/core/apperror"
	"salonpos/internal/core/id"
	"salonpos/internal/core/types"
)

// SaleRecord is one completed sale. Created once, never mutated.
type SaleRecord struct {
	ID id.ID `db:"id" json:"id"`

	AppointmentID *id.ID `db:"appointment_id" json:"appointmentId,omitempty"`
	CustomerID    id.ID  `db:"customer_id" json:"customerId"`

	Amount        types.Money         `db:"amount" json:"amount"`
	PaymentMethod types.PaymentMethod `db:"payment_method" json:"paymentMethod"`

	OccurredAt time.Time `db:"occurred_at" json:"occurredAt"`
	StaffID    *id.ID    `db:"staff_id" json:"staffId,omitempty"`
}

// Validate checks the required fields.
func (r *SaleRecord) Validate(ctx context.Context) error {
	if id.IsNil(r.CustomerID) {
		return apperror.NewValidation("customer is required").
			WithDetail("field", "customerId")
	}
	if r.Amount.IsNegative() {
		return apperror.NewValidation("amount must not be negative").
			WithDetail("field", "amount")
	}
	if !r.PaymentMethod.Valid() {
		return apperror.NewValidation("payment method is required").
			WithDetail("field", "paymentMethod")
	}
	return nil
}
