package dto

import (
	"time"

	"salonpos/internal/core/types"
	"salonpos/internal/domain/session"
)

// --- Request DTOs ---

// OpenSessionRequest opens (or refreshes) today's session.
type OpenSessionRequest struct {
	OpeningFloat types.Money `json:"openingFloat"`
	Notes        string      `json:"notes,omitempty"`
}

// CloseSessionRequest closes a session. CountedTotal nil keeps any previously
// stored closing total.
type CloseSessionRequest struct {
	CountedTotal *types.Money `json:"countedTotal,omitempty"`
	Notes        *string      `json:"notes,omitempty"`
}

// SessionListRequest filters session listings.
type SessionListRequest struct {
	DateFrom *time.Time `form:"dateFrom" time_format:"2006-01-02"`
	DateTo   *time.Time `form:"dateTo" time_format:"2006-01-02"`
	Limit    int        `form:"limit" binding:"omitempty,min=1,max=500"`
}

// --- Response DTOs ---

// SessionResponse is the public view of one cash session.
type SessionResponse struct {
	ID             string     `json:"id"`
	BusinessDate   string     `json:"businessDate"`
	OpeningFloat   string     `json:"openingFloat"`
	ClosingTotal   *string    `json:"closingTotal,omitempty"`
	ExpectedTotal  *string    `json:"expectedTotal,omitempty"`
	Deviation      *string    `json:"deviation,omitempty"`
	DeviationClass *string    `json:"deviationClass,omitempty"`
	State          string     `json:"state"`
	Notes          string     `json:"notes,omitempty"`
	OpenedBy       string     `json:"openedBy,omitempty"`
	OpenedAt       time.Time  `json:"openedAt"`
	ClosedAt       *time.Time `json:"closedAt,omitempty"`
}

// FromSession maps a domain session.
func FromSession(s *session.CashSession) SessionResponse {
	resp := SessionResponse{
		ID:           s.ID.String(),
		BusinessDate: s.BusinessDate.Format(time.DateOnly),
		OpeningFloat: s.OpeningFloat.String(),
		State:        string(s.State),
		Notes:        s.Notes,
		OpenedBy:     s.OpenedBy,
		OpenedAt:     s.OpenedAt,
		ClosedAt:     s.ClosedAt,
	}
	if s.ClosingTotal != nil {
		v := s.ClosingTotal.String()
		resp.ClosingTotal = &v
	}
	if s.ExpectedTotal != nil {
		v := s.ExpectedTotal.String()
		resp.ExpectedTotal = &v
	}
	if s.Deviation != nil {
		v := s.Deviation.String()
		resp.Deviation = &v
	}
	if s.DeviationClass != nil {
		v := string(*s.DeviationClass)
		resp.DeviationClass = &v
	}
	return resp
}

// FromSessions maps a list of domain sessions.
func FromSessions(items []session.CashSession) []SessionResponse {
	out := make([]SessionResponse, 0, len(items))
	for i := range items {
		out = append(out, FromSession(&items[i]))
	}
	return out
}
