package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"salonpos/internal/core/apperror"
	"salonpos/internal/domain/auth"
	"salonpos/internal/infrastructure/storage/postgres"
)

const operatorTable = "operators"

// Compile-time interface check.
var _ auth.OperatorRepository = (*OperatorRepo)(nil)

var operatorCols = postgres.ExtractDBColumns[auth.Operator]()

// OperatorRepo implements auth.OperatorRepository.
type OperatorRepo struct {
	tx *postgres.TxManager
}

// NewOperatorRepo creates a new operator repository.
func NewOperatorRepo(tx *postgres.TxManager) *OperatorRepo {
	return &OperatorRepo{tx: tx}
}

// GetByEmail returns one operator by email.
func (r *OperatorRepo) GetByEmail(ctx context.Context, email string) (*auth.Operator, error) {
	q := builder().
		Select(operatorCols...).
		From(operatorTable).
		Where(squirrel.Eq{"email": email}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var op auth.Operator
	querier := r.tx.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &op, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(operatorTable, email)
		}
		return nil, fmt.Errorf("get operator: %w", err)
	}

	return &op, nil
}
