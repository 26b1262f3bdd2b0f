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

const customerTable = "customers"

// walkInName marks the shared counter-sale identity.
const walkInName = "Walk-in"

// Compile-time interface check.
var _ catalog.IdentityResolver = (*CustomerRepo)(nil)

// CustomerRepo implements catalog.IdentityResolver.
type CustomerRepo struct {
	tx *postgres.TxManager
}

// NewCustomerRepo creates a new customer repository.
func NewCustomerRepo(tx *postgres.TxManager) *CustomerRepo {
	return &CustomerRepo{tx: tx}
}

// CustomerForAppointment returns the customer an appointment belongs to.
func (r *CustomerRepo) CustomerForAppointment(ctx context.Context, apptID id.ID) (*catalog.Customer, error) {
	q := builder().
		Select("c.id", "c.name").
		From(customerTable+" c").
		Join("appointments a ON a.customer_id = c.id").
		Where(squirrel.Eq{"a.id": apptID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var c catalog.Customer
	querier := r.tx.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &c, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("appointment customer", apptID.String())
		}
		return nil, fmt.Errorf("customer for appointment: %w", err)
	}

	return &c, nil
}

// EnsureWalkIn returns the counter-sale customer, creating it on first use.
// The partial unique index on is_walk_in makes concurrent creation safe.
func (r *CustomerRepo) EnsureWalkIn(ctx context.Context) (*catalog.Customer, error) {
	sql := `
		INSERT INTO customers (id, name, is_walk_in)
		VALUES ($1, $2, TRUE)
		ON CONFLICT (is_walk_in) WHERE is_walk_in
		DO UPDATE SET name = customers.name
		RETURNING id, name
	`

	var c catalog.Customer
	querier := r.tx.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &c, sql, id.New(), walkInName); err != nil {
		return nil, fmt.Errorf("ensure walk-in customer: %w", err)
	}

	return &c, nil
}
