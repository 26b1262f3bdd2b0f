// Package session provides the daily cash-drawer session and its manager.
//
// A CashSession is the record of one physical drawer being in use for one
// business date. At most one session is open at any instant, system-wide.
package session

import (
	"context"
	"time"

	"salonpos/internal/core/apperror"
	"salonpos/internal/core/id"
	"salonpos/internal/core/policy"
	"salonpos/internal/core/types"
)

// State is the session lifecycle state.
type State string

const (
	StateOpen   State = "open"
	StateClosed State = "closed"
)

// CashSession represents one drawer-day.
type CashSession struct {
	ID id.ID `db:"id" json:"id"`

	// BusinessDate is unique: reopening a day updates the existing row.
	BusinessDate time.Time `db:"business_date" json:"businessDate"`

	OpeningFloat types.Money `db:"opening_float" json:"openingFloat"`

	// ClosingTotal is the operator-counted drawer total, set on close.
	ClosingTotal *types.Money `db:"closing_total" json:"closingTotal,omitempty"`

	// Reconciliation outcome, computed on close when ClosingTotal is present.
	ExpectedTotal  *types.Money            `db:"expected_total" json:"expectedTotal,omitempty"`
	Deviation      *types.Money            `db:"deviation" json:"deviation,omitempty"`
	DeviationClass *policy.DeviationClass  `db:"deviation_class" json:"deviationClass,omitempty"`

	State    State     `db:"state" json:"state"`
	Notes    string    `db:"notes" json:"notes,omitempty"`
	OpenedBy string    `db:"opened_by" json:"openedBy,omitempty"`
	OpenedAt time.Time `db:"opened_at" json:"openedAt"`
	ClosedAt *time.Time `db:"closed_at" json:"closedAt,omitempty"`
}

// NewCashSession creates an open session for a business date.
func NewCashSession(businessDate time.Time, openingFloat types.Money, notes, openedBy string) *CashSession {
	return &CashSession{
		ID:           id.New(),
		BusinessDate: DateOnly(businessDate),
		OpeningFloat: openingFloat,
		State:        StateOpen,
		Notes:        notes,
		OpenedBy:     openedBy,
		OpenedAt:     time.Now().UTC(),
	}
}

// IsOpen reports whether the session accepts new movements from the POS.
func (s *CashSession) IsOpen() bool {
	return s.State == StateOpen
}

// Validate checks session invariants.
func (s *CashSession) Validate(ctx context.Context) error {
	if s.BusinessDate.IsZero() {
		return apperror.NewValidation("business date is required").
			WithDetail("field", "businessDate")
	}
	if s.OpeningFloat.IsNegative() {
		return apperror.NewValidation("opening float must not be negative").
			WithDetail("field", "openingFloat")
	}
	if s.State != StateOpen && s.State != StateClosed {
		return apperror.NewValidation("unknown session state").
			WithDetail("field", "state").
			WithDetail("value", string(s.State))
	}
	return nil
}

// DateOnly truncates a timestamp to its calendar date (midnight UTC).
// Business dates compare and store as dates, never instants.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
