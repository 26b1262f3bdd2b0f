package ledger

import (
	"context"

	"salonpos/internal/core/id"
	"salonpos/internal/domain/session"
)

// Repository is the durable, append-only movement store.
// There is deliberately no Update or Delete method.
type Repository interface {
	// Insert appends one movement.
	Insert(ctx context.Context, m *Movement) error

	// List returns movements newest first, optionally filtered to one
	// session, joined with session date and customer name.
	List(ctx context.Context, sessionID *id.ID) ([]View, error)

	// DrawerCashTotals aggregates cash movements for one session.
	DrawerCashTotals(ctx context.Context, sessionID id.ID) (session.DrawerTotals, error)
}
