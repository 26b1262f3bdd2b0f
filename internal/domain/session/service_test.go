package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"salonpos/internal/core/apperror"
	appctx "salonpos/internal/core/context"
	"salonpos/internal/core/id"
	"salonpos/internal/core/policy"
	"salonpos/internal/core/types"
)

// fakeRepo is an in-memory Repository keyed by business date, mirroring the
// store's upsert semantics and the single-open guarantee.
type fakeRepo struct {
	byID map[id.ID]*CashSession
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byID: map[id.ID]*CashSession{}}
}

func (r *fakeRepo) Upsert(ctx context.Context, s *CashSession) (*CashSession, error) {
	for _, existing := range r.byID {
		if existing.BusinessDate.Equal(s.BusinessDate) {
			existing.OpeningFloat = s.OpeningFloat
			existing.Notes = s.Notes
			existing.State = StateOpen
			existing.ClosingTotal = nil
			existing.ExpectedTotal = nil
			existing.Deviation = nil
			existing.DeviationClass = nil
			existing.ClosedAt = nil
			cp := *existing
			return &cp, nil
		}
	}
	cp := *s
	r.byID[s.ID] = &cp
	out := cp
	return &out, nil
}

func (r *fakeRepo) GetByID(ctx context.Context, sessionID id.ID) (*CashSession, error) {
	s, ok := r.byID[sessionID]
	if !ok {
		return nil, apperror.NewNotFound("cash session", sessionID)
	}
	cp := *s
	return &cp, nil
}

func (r *fakeRepo) GetOpen(ctx context.Context) (*CashSession, error) {
	for _, s := range r.byID {
		if s.State == StateOpen {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeRepo) List(ctx context.Context, filter ListFilter) ([]CashSession, error) {
	out := make([]CashSession, 0, len(r.byID))
	for _, s := range r.byID {
		out = append(out, *s)
	}
	return out, nil
}

func (r *fakeRepo) Close(ctx context.Context, sessionID id.ID, params CloseParams) error {
	s, ok := r.byID[sessionID]
	if !ok {
		return apperror.NewNotFound("cash session", sessionID)
	}
	s.State = StateClosed
	now := time.Now().UTC()
	s.ClosedAt = &now
	if params.ClosingTotal != nil {
		s.ClosingTotal = params.ClosingTotal
	}
	if params.ExpectedTotal != nil {
		s.ExpectedTotal = params.ExpectedTotal
	}
	if params.Deviation != nil {
		s.Deviation = params.Deviation
	}
	if params.DeviationClass != nil {
		s.DeviationClass = params.DeviationClass
	}
	if params.Notes != nil {
		s.Notes = *params.Notes
	}
	return nil
}

func (r *fakeRepo) Reopen(ctx context.Context, sessionID id.ID) error {
	s, ok := r.byID[sessionID]
	if !ok {
		return apperror.NewNotFound("cash session", sessionID)
	}
	s.State = StateOpen
	s.ClosingTotal = nil
	s.ExpectedTotal = nil
	s.Deviation = nil
	s.DeviationClass = nil
	s.ClosedAt = nil
	return nil
}

func (r *fakeRepo) CloseAllOpen(ctx context.Context, except id.ID) error {
	for _, s := range r.byID {
		if s.ID != except && s.State == StateOpen {
			s.State = StateClosed
			now := time.Now().UTC()
			s.ClosedAt = &now
		}
	}
	return nil
}

type fakeTotals struct {
	totals DrawerTotals
	err    error
}

func (f *fakeTotals) DrawerCashTotals(ctx context.Context, sessionID id.ID) (DrawerTotals, error) {
	return f.totals, f.err
}

// fakeTxm runs fn inline; we only care that reopen goes through Serializable.
type fakeTxm struct {
	serializableCalls int
}

func (f *fakeTxm) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (f *fakeTxm) Serializable(ctx context.Context, fn func(ctx context.Context) error) error {
	f.serializableCalls++
	return fn(ctx)
}

type auditCall struct {
	entityType string
	entityID   id.ID
	action     string
	changes    map[string]any
}

type fakeAudit struct {
	calls []auditCall
}

func (f *fakeAudit) LogChange(ctx context.Context, entityType string, entityID id.ID, action string, changes map[string]any) error {
	f.calls = append(f.calls, auditCall{entityType, entityID, action, changes})
	return nil
}

type serviceFixture struct {
	svc    *Service
	repo   *fakeRepo
	totals *fakeTotals
	txm    *fakeTxm
	audit  *fakeAudit
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	classifier, err := policy.NewDeviationClassifier(policy.DefaultWarningExpr, policy.DefaultCriticalExpr)
	require.NoError(t, err)

	f := &serviceFixture{
		repo:   newFakeRepo(),
		totals: &fakeTotals{},
		txm:    &fakeTxm{},
		audit:  &fakeAudit{},
	}
	f.svc = NewService(Config{
		Repo:       f.repo,
		TxManager:  f.txm,
		Totals:     f.totals,
		Classifier: classifier,
		Audit:      f.audit,
	})
	return f
}

func TestService_OpenForToday(t *testing.T) {
	fx := newServiceFixture(t)
	ctx := appctx.WithUser(context.Background(), &appctx.UserContext{UserID: "op-1"})

	sess, err := fx.svc.OpenForToday(ctx, types.MustMoney("100.00"), "morning shift")
	require.NoError(t, err)
	require.Equal(t, StateOpen, sess.State)
	require.Equal(t, DateOnly(time.Now().UTC()), sess.BusinessDate)
	require.Equal(t, "op-1", sess.OpenedBy)

	require.Len(t, fx.audit.calls, 1)
	require.Equal(t, "open", fx.audit.calls[0].action)
	require.Equal(t, "CashSession", fx.audit.calls[0].entityType)
}

func TestService_OpenForToday_UpsertsSameDay(t *testing.T) {
	fx := newServiceFixture(t)
	ctx := context.Background()

	first, err := fx.svc.OpenForToday(ctx, types.MustMoney("100.00"), "")
	require.NoError(t, err)

	// Re-opening the same day updates the row instead of duplicating it.
	second, err := fx.svc.OpenForToday(ctx, types.MustMoney("120.00"), "recount")
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.True(t, second.OpeningFloat.Equal(types.MustMoney("120.00")))
	require.Len(t, fx.repo.byID, 1)
}

func TestService_OpenForToday_RejectsNegativeFloat(t *testing.T) {
	fx := newServiceFixture(t)

	_, err := fx.svc.OpenForToday(context.Background(), types.MustMoney("-1.00"), "")
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestService_OpenForToday_ConflictsWithStaleOpenSession(t *testing.T) {
	fx := newServiceFixture(t)
	ctx := context.Background()

	// Yesterday's session was never closed.
	yesterday := NewCashSession(time.Now().UTC().AddDate(0, 0, -1), types.MustMoney("80.00"), "", "")
	_, err := fx.repo.Upsert(ctx, yesterday)
	require.NoError(t, err)

	_, err = fx.svc.OpenForToday(ctx, types.MustMoney("100.00"), "")
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, apperror.CodeConflict, appErr.Code)
	require.Equal(t, yesterday.ID.String(), appErr.Details["openSessionId"])
}

func TestService_Close_ComputesExpectedAndDeviation(t *testing.T) {
	fx := newServiceFixture(t)
	ctx := context.Background()

	sess, err := fx.svc.OpenForToday(ctx, types.MustMoney("100.00"), "")
	require.NoError(t, err)

	// opening 100 + income 200 + tips 15 - withdrawals 50 = expected 265.
	fx.totals.totals = DrawerTotals{
		CashIncome:      types.MustMoney("200.00"),
		CashTips:        types.MustMoney("15.00"),
		CashWithdrawals: types.MustMoney("50.00"),
	}

	counted := types.MustMoney("263.00")
	closed, err := fx.svc.Close(ctx, sess.ID, &counted, nil)
	require.NoError(t, err)

	require.Equal(t, StateClosed, closed.State)
	require.NotNil(t, closed.ExpectedTotal)
	require.True(t, closed.ExpectedTotal.Equal(types.MustMoney("265.00")))
	require.NotNil(t, closed.Deviation)
	require.True(t, closed.Deviation.Equal(types.MustMoney("-2.00")))
	require.NotNil(t, closed.DeviationClass)
	require.Equal(t, policy.DeviationNormal, *closed.DeviationClass)
	require.NotNil(t, closed.ClosedAt)

	require.Len(t, fx.audit.calls, 2)
	require.Equal(t, "close", fx.audit.calls[1].action)
}

func TestService_Close_WithoutCountedTotal(t *testing.T) {
	fx := newServiceFixture(t)
	ctx := context.Background()

	sess, err := fx.svc.OpenForToday(ctx, types.MustMoney("100.00"), "")
	require.NoError(t, err)

	closed, err := fx.svc.Close(ctx, sess.ID, nil, nil)
	require.NoError(t, err)

	// Expected is always recomputed; deviation needs a counted total.
	require.Equal(t, StateClosed, closed.State)
	require.NotNil(t, closed.ExpectedTotal)
	require.Nil(t, closed.ClosingTotal)
	require.Nil(t, closed.Deviation)
	require.Nil(t, closed.DeviationClass)
}

func TestService_Close_CriticalDeviation(t *testing.T) {
	fx := newServiceFixture(t)
	ctx := context.Background()

	sess, err := fx.svc.OpenForToday(ctx, types.MustMoney("100.00"), "")
	require.NoError(t, err)

	fx.totals.totals = DrawerTotals{CashIncome: types.MustMoney("150.00")}

	counted := types.MustMoney("180.00")
	closed, err := fx.svc.Close(ctx, sess.ID, &counted, nil)
	require.NoError(t, err)
	require.NotNil(t, closed.DeviationClass)
	require.Equal(t, policy.DeviationCritical, *closed.DeviationClass)
}

func TestService_Close_NotFound(t *testing.T) {
	fx := newServiceFixture(t)

	_, err := fx.svc.Close(context.Background(), id.New(), nil, nil)
	require.True(t, apperror.IsNotFound(err))
}

func TestService_Reopen_ClosesOthersAtomically(t *testing.T) {
	fx := newServiceFixture(t)
	ctx := context.Background()

	old := NewCashSession(time.Now().UTC().AddDate(0, 0, -3), types.MustMoney("50.00"), "", "")
	old.State = StateClosed
	_, err := fx.repo.Upsert(ctx, old)
	require.NoError(t, err)
	require.NoError(t, fx.repo.Close(ctx, old.ID, CloseParams{}))

	current, err := fx.svc.OpenForToday(ctx, types.MustMoney("100.00"), "")
	require.NoError(t, err)

	reopened, err := fx.svc.Reopen(ctx, old.ID)
	require.NoError(t, err)
	require.Equal(t, StateOpen, reopened.State)
	require.Equal(t, 1, fx.txm.serializableCalls)

	// The previously open session got closed inside the same transaction.
	today, err := fx.svc.GetByID(ctx, current.ID)
	require.NoError(t, err)
	require.Equal(t, StateClosed, today.State)

	open, err := fx.svc.GetOpen(ctx)
	require.NoError(t, err)
	require.Equal(t, old.ID, open.ID)
}

func TestService_Reopen_NotFound(t *testing.T) {
	fx := newServiceFixture(t)

	_, err := fx.svc.Reopen(context.Background(), id.New())
	require.True(t, apperror.IsNotFound(err))
}

func TestDateOnly(t *testing.T) {
	ts := time.Date(2026, 3, 14, 18, 42, 7, 0, time.UTC)
	require.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), DateOnly(ts))
}
