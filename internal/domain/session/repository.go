package session

import (
	"context"
	"time"

	"salonpos/internal/core/id"
	"salonpos/internal/core/policy"
	"salonpos/internal/core/types"
)

// ListFilter narrows session listings.
type ListFilter struct {
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    int
}

// CloseParams carries the fields written when a session is closed.
// Nil pointers keep the previously stored values.
type CloseParams struct {
	ClosingTotal   *types.Money
	ExpectedTotal  *types.Money
	Deviation      *types.Money
	DeviationClass *policy.DeviationClass
	Notes          *string
}

// Repository is the durable session store, keyed by business date.
type Repository interface {
	// Upsert inserts a session or, when a row for the same business date
	// exists, overwrites its mutable fields. Returns the resulting row.
	Upsert(ctx context.Context, s *CashSession) (*CashSession, error)

	// GetByID returns one session; NotFound if missing.
	GetByID(ctx context.Context, sessionID id.ID) (*CashSession, error)

	// GetOpen returns the session with state=open, or nil when none exists.
	GetOpen(ctx context.Context) (*CashSession, error)

	// List returns sessions ordered by business date descending.
	List(ctx context.Context, filter ListFilter) ([]CashSession, error)

	// Close sets state=closed and applies params. NotFound if missing.
	Close(ctx context.Context, sessionID id.ID, params CloseParams) error

	// Reopen sets the target session open. The caller is responsible for
	// running CloseAllOpen first within the same transaction.
	// NotFound if the target does not exist.
	Reopen(ctx context.Context, sessionID id.ID) error

	// CloseAllOpen closes every currently open session except the given one.
	// Runs unconditionally; closing zero rows is not an error.
	CloseAllOpen(ctx context.Context, except id.ID) error
}
