package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"salonpos/internal/core/apperror"
	appctx "salonpos/internal/core/context"
	"salonpos/internal/core/id"
	"salonpos/internal/core/types"
	"salonpos/internal/domain/session"
)

type fakeRepo struct {
	insertErr error
	movements []*Movement
	totals    session.DrawerTotals
}

func (f *fakeRepo) Insert(ctx context.Context, m *Movement) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.movements = append(f.movements, m)
	return nil
}

func (f *fakeRepo) List(ctx context.Context, sessionID *id.ID) ([]View, error) {
	out := make([]View, 0, len(f.movements))
	for _, m := range f.movements {
		if sessionID != nil && m.SessionID != *sessionID {
			continue
		}
		out = append(out, View{Movement: *m})
	}
	return out, nil
}

func (f *fakeRepo) DrawerCashTotals(ctx context.Context, sessionID id.ID) (session.DrawerTotals, error) {
	return f.totals, nil
}

func validInput() RecordInput {
	return RecordInput{
		SessionID:     id.New(),
		Kind:          KindIncome,
		PaymentMethod: types.PaymentCash,
		Amount:        types.MustMoney("25.00"),
		Tip:           types.MustMoney("5.00"),
		CashReceived:  types.MustMoney("40.00"),
		Notes:         "Haircut",
	}
}

func TestService_Record(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)

	m, err := svc.Record(context.Background(), validInput())
	require.NoError(t, err)

	require.False(t, id.IsNil(m.ID))
	require.Equal(t, KindIncome, m.Kind)
	require.True(t, m.Change.Equal(types.MustMoney("10.00")))
	require.False(t, m.RecordedAt.IsZero())
	require.Nil(t, m.RecordedBy)
	require.Len(t, repo.movements, 1)
}

func TestService_Record_CapturesOperator(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)

	ctx := appctx.WithUser(context.Background(), &appctx.UserContext{UserID: "op-7"})
	m, err := svc.Record(ctx, validInput())
	require.NoError(t, err)
	require.NotNil(t, m.RecordedBy)
	require.Equal(t, "op-7", *m.RecordedBy)
}

func TestService_Record_NoChangeForCard(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)

	in := validInput()
	in.PaymentMethod = types.PaymentCard
	m, err := svc.Record(context.Background(), in)
	require.NoError(t, err)
	require.True(t, m.Change.IsZero())
}

func TestService_Record_Validation(t *testing.T) {
	svc := NewService(&fakeRepo{})
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*RecordInput)
	}{
		{"missing session", func(in *RecordInput) { in.SessionID = id.Nil() }},
		{"unknown kind", func(in *RecordInput) { in.Kind = Kind("transfer") }},
		{"unknown payment method", func(in *RecordInput) { in.PaymentMethod = "check" }},
		{"negative amount", func(in *RecordInput) { in.Amount = types.MustMoney("-1.00") }},
		{"negative tip", func(in *RecordInput) { in.Tip = types.MustMoney("-1.00") }},
		{"negative cash received", func(in *RecordInput) { in.CashReceived = types.MustMoney("-1.00") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			_, err := svc.Record(ctx, in)
			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			require.Equal(t, apperror.CodeValidation, appErr.Code)
		})
	}
}

func TestService_Record_StorageFailure(t *testing.T) {
	repo := &fakeRepo{insertErr: errors.New("connection reset")}
	svc := NewService(repo)

	_, err := svc.Record(context.Background(), validInput())
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, apperror.CodeStorage, appErr.Code)
}

func TestService_List_FiltersBySession(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)
	ctx := context.Background()

	first := validInput()
	second := validInput()
	_, err := svc.Record(ctx, first)
	require.NoError(t, err)
	_, err = svc.Record(ctx, second)
	require.NoError(t, err)

	all, err := svc.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)

	only, err := svc.List(ctx, &first.SessionID)
	require.NoError(t, err)
	require.Len(t, only, 1)
	require.Equal(t, first.SessionID, only[0].SessionID)
}
