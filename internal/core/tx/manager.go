// Package tx provides transaction management abstractions.
// Domain services depend on these interfaces, not on a specific database
// implementation; the concrete manager lives in infrastructure/storage/postgres.
package tx

import (
	"context"
)

// Manager defines the contract for transaction management.
// Implementations handle BEGIN, COMMIT, ROLLBACK, and nested transaction support.
type Manager interface {
	// RunInTransaction executes fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn succeeds, the transaction is committed.
	//
	// Nested calls reuse the existing transaction from context.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// SerializableManager extends Manager with serializable isolation for the
// session-state transitions that must execute as one indivisible unit.
type SerializableManager interface {
	Manager

	// Serializable executes fn in a serializable transaction.
	Serializable(ctx context.Context, fn func(ctx context.Context) error) error
}
