// Package session_repo provides the PostgreSQL implementation of the cash
// session repository.
package session_repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"salonpos/internal/core/apperror"
	"salonpos/internal/core/id"
	"salonpos/internal/domain/session"
	"salonpos/internal/infrastructure/storage/postgres"
)

const tableName = "cash_sessions"

// Compile-time interface check.
var _ session.Repository = (*Repo)(nil)

var selectCols = postgres.ExtractDBColumns[session.CashSession]()

// Repo implements session.Repository on top of PostgreSQL.
// The open-session invariant is backed by a partial unique index:
//
//	CREATE UNIQUE INDEX cash_sessions_one_open ON cash_sessions ((state)) WHERE state = 'open'
type Repo struct {
	tx *postgres.TxManager
}

// NewRepo creates a new session repository.
func NewRepo(tx *postgres.TxManager) *Repo {
	return &Repo{tx: tx}
}

func (r *Repo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *Repo) baseSelect() squirrel.SelectBuilder {
	return r.builder().Select(selectCols...).From(tableName)
}

// Upsert inserts the session, or refreshes the existing row for the same
// business date. Reopening a day keeps the original row and its movements.
func (r *Repo) Upsert(ctx context.Context, s *session.CashSession) (*session.CashSession, error) {
	data := postgres.StructToMap(s)

	filtered := make(map[string]any, len(selectCols))
	for _, col := range selectCols {
		if val, ok := data[col]; ok {
			filtered[col] = val
		}
	}

	q := r.builder().
		Insert(tableName).
		SetMap(filtered).
		Suffix(`ON CONFLICT (business_date) DO UPDATE SET
			opening_float = EXCLUDED.opening_float,
			state = EXCLUDED.state,
			notes = EXCLUDED.notes,
			opened_by = EXCLUDED.opened_by,
			opened_at = EXCLUDED.opened_at,
			closed_at = NULL,
			closing_total = NULL,
			expected_total = NULL,
			deviation = NULL,
			deviation_class = NULL
		RETURNING id`)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build upsert: %w", err)
	}

	querier := r.tx.GetQuerier(ctx)
	var storedID id.ID
	if err := querier.QueryRow(ctx, sql, args...).Scan(&storedID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, apperror.NewConflict("an open session already exists").WithCause(err)
		}
		return nil, fmt.Errorf("upsert %s: %w", tableName, err)
	}

	// An existing row for the date keeps its ID; re-read to report it back.
	return r.GetByID(ctx, storedID)
}

// GetByID retrieves a session by ID.
func (r *Repo) GetByID(ctx context.Context, sessionID id.ID) (*session.CashSession, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"id": sessionID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var s session.CashSession
	querier := r.tx.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &s, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(tableName, sessionID.String())
		}
		return nil, fmt.Errorf("get by id: %w", err)
	}

	return &s, nil
}

// GetOpen returns the currently open session, or nil when the drawer is closed.
func (r *Repo) GetOpen(ctx context.Context) (*session.CashSession, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"state": session.StateOpen}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var s session.CashSession
	querier := r.tx.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &s, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get open session: %w", err)
	}

	return &s, nil
}

// List retrieves sessions newest business date first.
func (r *Repo) List(ctx context.Context, filter session.ListFilter) ([]session.CashSession, error) {
	q := r.baseSelect().OrderBy("business_date DESC")

	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"business_date": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"business_date": *filter.DateTo})
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []session.CashSession
	querier := r.tx.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	return items, nil
}

// Close marks the session closed. Nil params keep the stored values, so a
// close can be re-run to refine the counted total without losing data.
func (r *Repo) Close(ctx context.Context, sessionID id.ID, params session.CloseParams) error {
	q := r.builder().
		Update(tableName).
		Set("state", session.StateClosed).
		Set("closed_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": sessionID})

	if params.ClosingTotal != nil {
		q = q.Set("closing_total", *params.ClosingTotal)
	}
	if params.ExpectedTotal != nil {
		q = q.Set("expected_total", *params.ExpectedTotal)
	}
	if params.Deviation != nil {
		q = q.Set("deviation", *params.Deviation)
	}
	if params.DeviationClass != nil {
		q = q.Set("deviation_class", *params.DeviationClass)
	}
	if params.Notes != nil {
		q = q.Set("notes", *params.Notes)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build close: %w", err)
	}

	result, err := r.tx.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("close session: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(tableName, sessionID.String())
	}

	return nil
}

// Reopen flips the target session back to open and clears its closing figures.
// Callers must run CloseAllOpen first inside the same transaction.
func (r *Repo) Reopen(ctx context.Context, sessionID id.ID) error {
	q := r.builder().
		Update(tableName).
		Set("state", session.StateOpen).
		Set("closed_at", nil).
		Set("closing_total", nil).
		Set("expected_total", nil).
		Set("deviation", nil).
		Set("deviation_class", nil).
		Where(squirrel.Eq{"id": sessionID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build reopen: %w", err)
	}

	result, err := r.tx.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperror.NewConflict("another session is still open").WithCause(err)
		}
		return fmt.Errorf("reopen session: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(tableName, sessionID.String())
	}

	return nil
}

// CloseAllOpen closes every open session except the given one.
func (r *Repo) CloseAllOpen(ctx context.Context, exceptID id.ID) error {
	q := r.builder().
		Update(tableName).
		Set("state", session.StateClosed).
		Set("closed_at", time.Now().UTC()).
		Where(squirrel.Eq{"state": session.StateOpen}).
		Where(squirrel.NotEq{"id": exceptID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build close all: %w", err)
	}

	if _, err := r.tx.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("close open sessions: %w", err)
	}

	return nil
}
