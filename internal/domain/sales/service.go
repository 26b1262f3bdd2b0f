package sales

import (
	"context"
	"time"

	"salonpos/internal/core/apperror"
	"salonpos/internal/core/id"
	"salonpos/internal/core/types"
	"salonpos/pkg/logger"
)

// RecordInput carries the fields of a new sale record.
type RecordInput struct {
	AppointmentID *id.ID
	CustomerID    id.ID
	Amount        types.Money
	PaymentMethod types.PaymentMethod
	OccurredAt    time.Time
	StaffID       *id.ID
}

// Service appends sale records.
type Service struct {
	repo Repository
}

// NewService creates the sales service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Record validates and appends one sale record. Invoked by the ticket
// engine's commit, or directly by administrative back-fill tooling.
func (s *Service) Record(ctx context.Context, in RecordInput) (*SaleRecord, error) {
	occurredAt := in.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	rec := &SaleRecord{
		ID:            id.New(),
		AppointmentID: in.AppointmentID,
		CustomerID:    in.CustomerID,
		Amount:        in.Amount,
		PaymentMethod: in.PaymentMethod,
		OccurredAt:    occurredAt,
		StaffID:       in.StaffID,
	}
	if err := rec.Validate(ctx); err != nil {
		return nil, err
	}

	if err := s.repo.Insert(ctx, rec); err != nil {
		return nil, apperror.NewStorage(err).
			WithDetail("customer_id", in.CustomerID.String())
	}

	logger.Info(ctx, "sale recorded",
		"sale_id", rec.ID,
		"customer_id", rec.CustomerID,
		"amount", rec.Amount.String())

	return rec, nil
}

// List returns sales newest first.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]SaleRecord, error) {
	return s.repo.List(ctx, filter)
}
