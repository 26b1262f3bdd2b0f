package catalog_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"salonpos/internal/core/apperror"
	"salonpos/internal/core/id"
	"salonpos/internal/domain/catalog"
	"salonpos/internal/infrastructure/storage/postgres"
)

const appointmentTable = "appointments"

// Compile-time interface check.
var _ catalog.AppointmentReader = (*AppointmentRepo)(nil)

// appointmentCols joins the display fields the POS view needs.
var appointmentCols = []string{
	"a.id",
	"a.customer_id",
	"c.name AS customer_name",
	"a.service_id",
	"i.label AS service_label",
	"a.price",
	"a.staff_id",
	"a.starts_at",
	"a.status",
}

// AppointmentRepo implements catalog.AppointmentReader.
type AppointmentRepo struct {
	tx *postgres.TxManager
}

// NewAppointmentRepo creates a new appointment repository.
func NewAppointmentRepo(tx *postgres.TxManager) *AppointmentRepo {
	return &AppointmentRepo{tx: tx}
}

func (r *AppointmentRepo) baseSelect() squirrel.SelectBuilder {
	return builder().
		Select(appointmentCols...).
		From(appointmentTable + " a").
		Join("customers c ON c.id = a.customer_id").
		Join("service_items i ON i.id = a.service_id")
}

// ListRange returns appointments within [from, to], optionally filtered by status.
func (r *AppointmentRepo) ListRange(ctx context.Context, from, to time.Time, status *catalog.AppointmentStatus) ([]catalog.Appointment, error) {
	q := r.baseSelect().
		Where(squirrel.GtOrEq{"a.starts_at": from}).
		Where(squirrel.LtOrEq{"a.starts_at": to}).
		OrderBy("a.starts_at ASC")

	if status != nil {
		q = q.Where(squirrel.Eq{"a.status": *status})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []catalog.Appointment
	querier := r.tx.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}

	return items, nil
}

// GetByID returns one appointment.
func (r *AppointmentRepo) GetByID(ctx context.Context, apptID id.ID) (*catalog.Appointment, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"a.id": apptID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var appt catalog.Appointment
	querier := r.tx.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &appt, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(appointmentTable, apptID.String())
		}
		return nil, fmt.Errorf("get appointment: %w", err)
	}

	return &appt, nil
}
