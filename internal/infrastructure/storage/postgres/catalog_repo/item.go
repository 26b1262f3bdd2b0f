// Package catalog_repo provides PostgreSQL read adapters for the catalog
// collaborator ports: service items, appointments, customers and operators.
package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"salonpos/internal/core/apperror"
	"salonpos/internal/core/id"
	"salonpos/internal/domain/catalog"
	"salonpos/internal/infrastructure/storage/postgres"
)

const itemTable = "service_items"

// Compile-time interface check.
var _ catalog.ItemReader = (*ItemRepo)(nil)

var itemCols = postgres.ExtractDBColumns[catalog.Item]()

// ItemRepo implements catalog.ItemReader.
type ItemRepo struct {
	tx *postgres.TxManager
}

// NewItemRepo creates a new item repository.
func NewItemRepo(tx *postgres.TxManager) *ItemRepo {
	return &ItemRepo{tx: tx}
}

func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// ListActive returns sellable items ordered by label.
func (r *ItemRepo) ListActive(ctx context.Context) ([]catalog.Item, error) {
	q := builder().
		Select(itemCols...).
		From(itemTable).
		Where(squirrel.Eq{"active": true}).
		OrderBy("label ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []catalog.Item
	querier := r.tx.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	return items, nil
}

// GetByID returns one item.
func (r *ItemRepo) GetByID(ctx context.Context, itemID id.ID) (*catalog.Item, error) {
	q := builder().
		Select(itemCols...).
		From(itemTable).
		Where(squirrel.Eq{"id": itemID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var item catalog.Item
	querier := r.tx.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &item, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(itemTable, itemID.String())
		}
		return nil, fmt.Errorf("get item: %w", err)
	}

	return &item, nil
}
