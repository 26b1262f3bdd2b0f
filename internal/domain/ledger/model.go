// Package ledger provides the append-only movement ledger.
//
// A Movement is one money-moving event (sale income or withdrawal) against a
// cash session. Movements are immutable: there is no update or delete surface
// anywhere in this package; corrections are made by recording an offsetting
// entry, preserving the audit trail.
package ledger

import (
	"time"

	"salonpos/internal/core/id"
	"salonpos/internal/core/types"
)

// Kind is the direction of a movement.
type Kind string

const (
	KindIncome     Kind = "income"
	KindWithdrawal Kind = "withdrawal"
)

// Valid reports whether k is a known movement kind.
func (k Kind) Valid() bool {
	return k == KindIncome || k == KindWithdrawal
}

// Movement is one ledger entry. Immutable once created.
type Movement struct {
	ID        id.ID `db:"id" json:"id"`
	SessionID id.ID `db:"session_id" json:"sessionId"`

	Kind          Kind                `db:"kind" json:"kind"`
	PaymentMethod types.PaymentMethod `db:"payment_method" json:"paymentMethod"`

	Amount types.Money `db:"amount" json:"amount"`
	Tip    types.Money `db:"tip" json:"tip"`

	// CashReceived is only meaningful for cash payments.
	CashReceived types.Money `db:"cash_received" json:"cashReceived"`

	// Change is captured at write time, never recomputed later.
	Change types.Money `db:"change" json:"change"`

	AppointmentID *id.ID `db:"appointment_id" json:"appointmentId,omitempty"`

	Notes      string    `db:"notes" json:"notes,omitempty"`
	RecordedAt time.Time `db:"recorded_at" json:"recordedAt"`
	RecordedBy *string   `db:"recorded_by" json:"recordedBy,omitempty"`
}

// View is a movement joined with display fields for listings.
type View struct {
	Movement

	SessionDate  time.Time `db:"business_date" json:"sessionDate"`
	CustomerName *string   `db:"customer_name" json:"customerName,omitempty"`
}
