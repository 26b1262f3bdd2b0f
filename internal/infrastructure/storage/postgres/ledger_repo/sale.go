package ledger_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"salonpos/internal/domain/sales"
	"salonpos/internal/infrastructure/storage/postgres"
)

const saleTable = "sale_records"

// Compile-time interface check.
var _ sales.Repository = (*SaleRepo)(nil)

var saleCols = postgres.ExtractDBColumns[sales.SaleRecord]()

// SaleRepo implements sales.Repository on top of PostgreSQL.
type SaleRepo struct {
	tx *postgres.TxManager
}

// NewSaleRepo creates a new sale repository.
func NewSaleRepo(tx *postgres.TxManager) *SaleRepo {
	return &SaleRepo{tx: tx}
}

func (r *SaleRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Insert appends one sale record.
func (r *SaleRepo) Insert(ctx context.Context, rec *sales.SaleRecord) error {
	data := postgres.StructToMap(rec)

	filtered := make(map[string]any, len(saleCols))
	for _, col := range saleCols {
		if val, ok := data[col]; ok {
			filtered[col] = val
		}
	}

	q := r.builder().
		Insert(saleTable).
		SetMap(filtered)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.tx.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", saleTable, err)
	}

	return nil
}

// List returns sales newest first.
func (r *SaleRepo) List(ctx context.Context, filter sales.ListFilter) ([]sales.SaleRecord, error) {
	q := r.builder().
		Select(saleCols...).
		From(saleTable).
		OrderBy("occurred_at DESC")

	if filter.CustomerID != nil {
		q = q.Where(squirrel.Eq{"customer_id": *filter.CustomerID})
	}
	if filter.AppointmentID != nil {
		q = q.Where(squirrel.Eq{"appointment_id": *filter.AppointmentID})
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []sales.SaleRecord
	querier := r.tx.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}

	return items, nil
}
