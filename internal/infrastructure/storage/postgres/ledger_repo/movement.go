// Package ledger_repo provides PostgreSQL implementations of the movement
// ledger and the sale record store. Both tables are insert-only.
package ledger_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"salonpos/internal/core/id"
	"salonpos/internal/core/types"
	"salonpos/internal/domain/ledger"
	"salonpos/internal/domain/session"
	"salonpos/internal/infrastructure/storage/postgres"
)

const movementTable = "cash_movements"

// Compile-time interface check.
var _ ledger.Repository = (*MovementRepo)(nil)

var movementCols = postgres.ExtractDBColumns[ledger.Movement]()

// MovementRepo implements ledger.Repository on top of PostgreSQL.
// It exposes no UPDATE or DELETE path.
type MovementRepo struct {
	tx *postgres.TxManager
}

// NewMovementRepo creates a new movement repository.
func NewMovementRepo(tx *postgres.TxManager) *MovementRepo {
	return &MovementRepo{tx: tx}
}

func (r *MovementRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Insert appends one movement.
func (r *MovementRepo) Insert(ctx context.Context, m *ledger.Movement) error {
	data := postgres.StructToMap(m)

	filtered := make(map[string]any, len(movementCols))
	for _, col := range movementCols {
		if val, ok := data[col]; ok {
			filtered[col] = val
		}
	}

	q := r.builder().
		Insert(movementTable).
		SetMap(filtered)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.tx.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", movementTable, err)
	}

	return nil
}

// List returns movements newest first, joined with the session business date
// and, when the movement points to an appointment, the customer name.
func (r *MovementRepo) List(ctx context.Context, sessionID *id.ID) ([]ledger.View, error) {
	cols := make([]string, 0, len(movementCols)+2)
	for _, col := range movementCols {
		cols = append(cols, "m."+col)
	}
	cols = append(cols, "s.business_date", "c.name AS customer_name")

	q := r.builder().
		Select(cols...).
		From(movementTable + " m").
		Join("cash_sessions s ON s.id = m.session_id").
		LeftJoin("appointments a ON a.id = m.appointment_id").
		LeftJoin("customers c ON c.id = a.customer_id").
		OrderBy("m.recorded_at DESC")

	if sessionID != nil {
		q = q.Where(squirrel.Eq{"m.session_id": *sessionID})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []ledger.View
	querier := r.tx.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}

	return items, nil
}

// DrawerCashTotals aggregates cash-only movements for one session.
// Card and transfer income never enters the physical drawer.
func (r *MovementRepo) DrawerCashTotals(ctx context.Context, sessionID id.ID) (session.DrawerTotals, error) {
	sql := `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE kind = $2), 0) AS cash_income,
			COALESCE(SUM(tip)    FILTER (WHERE kind = $2), 0) AS cash_tips,
			COALESCE(SUM(amount) FILTER (WHERE kind = $3), 0) AS cash_withdrawals
		FROM cash_movements
		WHERE session_id = $1 AND payment_method = $4
	`

	var totals session.DrawerTotals
	querier := r.tx.GetQuerier(ctx)
	err := pgxscan.Get(ctx, querier, &totals, sql,
		sessionID, ledger.KindIncome, ledger.KindWithdrawal, types.PaymentCash)
	if err != nil {
		return session.DrawerTotals{}, fmt.Errorf("drawer totals: %w", err)
	}

	return totals, nil
}
