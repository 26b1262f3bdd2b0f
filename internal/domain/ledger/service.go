package ledger

import (
	"context"
	"time"

	"salonpos/internal/core/apperror"
	appctx "salonpos/internal/core/context"
	"salonpos/internal/core/id"
	"salonpos/internal/core/types"
	"salonpos/internal/domain/session"
	"salonpos/pkg/logger"
)

// RecordInput carries the fields of a new movement.
type RecordInput struct {
	SessionID     id.ID
	Kind          Kind
	PaymentMethod types.PaymentMethod
	Amount        types.Money
	Tip           types.Money
	CashReceived  types.Money
	AppointmentID *id.ID
	Notes         string
}

// Service appends movements and serves ledger queries.
type Service struct {
	repo Repository
}

// NewService creates the ledger service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Record validates and appends one movement. Change is computed here and
// stored with the row.
//
// The session is not required to be open: an administrator may backfill
// movements against a closed day. The session must exist (foreign key).
func (s *Service) Record(ctx context.Context, in RecordInput) (*Movement, error) {
	if err := validate(in); err != nil {
		return nil, err
	}

	recordedBy := optionalUser(ctx)
	m := &Movement{
		ID:            id.New(),
		SessionID:     in.SessionID,
		Kind:          in.Kind,
		PaymentMethod: in.PaymentMethod,
		Amount:        in.Amount,
		Tip:           in.Tip,
		CashReceived:  in.CashReceived,
		Change:        types.ChangeDue(in.PaymentMethod, in.Amount, in.Tip, in.CashReceived),
		AppointmentID: in.AppointmentID,
		Notes:         in.Notes,
		RecordedAt:    time.Now().UTC(),
		RecordedBy:    recordedBy,
	}

	if err := s.repo.Insert(ctx, m); err != nil {
		return nil, apperror.NewStorage(err).
			WithDetail("session_id", in.SessionID.String())
	}

	logger.Info(ctx, "movement recorded",
		"movement_id", m.ID,
		"session_id", m.SessionID,
		"kind", m.Kind,
		"amount", m.Amount.String())

	return m, nil
}

// List returns movements newest first, optionally filtered to one session.
func (s *Service) List(ctx context.Context, sessionID *id.ID) ([]View, error) {
	return s.repo.List(ctx, sessionID)
}

// DrawerCashTotals implements session.TotalsReader.
func (s *Service) DrawerCashTotals(ctx context.Context, sessionID id.ID) (session.DrawerTotals, error) {
	return s.repo.DrawerCashTotals(ctx, sessionID)
}

func validate(in RecordInput) error {
	if id.IsNil(in.SessionID) {
		return apperror.NewValidation("session is required").
			WithDetail("field", "sessionId")
	}
	if !in.Kind.Valid() {
		return apperror.NewValidation("movement kind is required").
			WithDetail("field", "kind")
	}
	if !in.PaymentMethod.Valid() {
		return apperror.NewValidation("payment method is required").
			WithDetail("field", "paymentMethod")
	}
	if in.Amount.IsNegative() {
		return apperror.NewValidation("amount must not be negative").
			WithDetail("field", "amount")
	}
	if in.Tip.IsNegative() {
		return apperror.NewValidation("tip must not be negative").
			WithDetail("field", "tip")
	}
	if in.CashReceived.IsNegative() {
		return apperror.NewValidation("cash received must not be negative").
			WithDetail("field", "cashReceived")
	}
	return nil
}

func optionalUser(ctx context.Context) *string {
	if uid := appctx.GetUserID(ctx); uid != "" {
		return &uid
	}
	return nil
}
