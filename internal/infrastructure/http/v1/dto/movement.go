package dto

import (
	"time"

	"salonpos/internal/core/types"
	"salonpos/internal/domain/ledger"
)

// --- Request DTOs ---

// WithdrawalRequest takes money out of the drawer.
type WithdrawalRequest struct {
	Amount types.Money `json:"amount" binding:"required"`
	Notes  string      `json:"notes,omitempty"`
}

// MovementListRequest filters movement listings.
type MovementListRequest struct {
	SessionID *string `form:"sessionId" binding:"omitempty,uuid"`
}

// --- Response DTOs ---

// MovementResponse is the public view of one ledger movement.
type MovementResponse struct {
	ID            string    `json:"id"`
	SessionID     string    `json:"sessionId"`
	SessionDate   string    `json:"sessionDate,omitempty"`
	Kind          string    `json:"kind"`
	PaymentMethod string    `json:"paymentMethod"`
	Amount        string    `json:"amount"`
	Tip           string    `json:"tip"`
	CashReceived  string    `json:"cashReceived"`
	Change        string    `json:"change"`
	AppointmentID *string   `json:"appointmentId,omitempty"`
	CustomerName  *string   `json:"customerName,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	RecordedAt    time.Time `json:"recordedAt"`
	RecordedBy    *string   `json:"recordedBy,omitempty"`
}

// FromMovementView maps a joined ledger view.
func FromMovementView(v ledger.View) MovementResponse {
	resp := MovementResponse{
		ID:            v.ID.String(),
		SessionID:     v.SessionID.String(),
		Kind:          string(v.Kind),
		PaymentMethod: string(v.PaymentMethod),
		Amount:        v.Amount.String(),
		Tip:           v.Tip.String(),
		CashReceived:  v.CashReceived.String(),
		Change:        v.Change.String(),
		CustomerName:  v.CustomerName,
		Notes:         v.Notes,
		RecordedAt:    v.RecordedAt,
		RecordedBy:    v.RecordedBy,
	}
	if !v.SessionDate.IsZero() {
		resp.SessionDate = v.SessionDate.Format(time.DateOnly)
	}
	if v.AppointmentID != nil {
		s := v.AppointmentID.String()
		resp.AppointmentID = &s
	}
	return resp
}

// FromMovementViews maps a list of joined ledger views.
func FromMovementViews(items []ledger.View) []MovementResponse {
	out := make([]MovementResponse, 0, len(items))
	for _, v := range items {
		out = append(out, FromMovementView(v))
	}
	return out
}

// FromMovement maps a bare movement (no join fields).
func FromMovement(m *ledger.Movement) MovementResponse {
	return FromMovementView(ledger.View{Movement: *m})
}
