package pos

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"salonpos/internal/core/apperror"
	"salonpos/internal/core/id"
	"salonpos/internal/core/types"
	"salonpos/internal/domain/catalog"
	"salonpos/internal/domain/ledger"
	"salonpos/internal/domain/sales"
	"salonpos/internal/domain/session"
)

// --- fakes ---

type fakeSessions struct {
	open *session.CashSession
	err  error
}

func (f *fakeSessions) GetOpen(ctx context.Context) (*session.CashSession, error) {
	return f.open, f.err
}

type fakeLedger struct {
	err      error
	recorded []ledger.RecordInput
}

func (f *fakeLedger) Record(ctx context.Context, in ledger.RecordInput) (*ledger.Movement, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.recorded = append(f.recorded, in)
	return &ledger.Movement{
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
	}, nil
}

type fakeSales struct {
	err      error
	recorded []sales.RecordInput
}

func (f *fakeSales) Record(ctx context.Context, in sales.RecordInput) (*sales.SaleRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.recorded = append(f.recorded, in)
	return &sales.SaleRecord{
		ID:            id.New(),
		AppointmentID: in.AppointmentID,
		CustomerID:    in.CustomerID,
		Amount:        in.Amount,
		PaymentMethod: in.PaymentMethod,
		OccurredAt:    in.OccurredAt,
	}, nil
}

type fakeIdentity struct {
	walkIn       *catalog.Customer
	appointments map[id.ID]*catalog.Customer
}

func (f *fakeIdentity) CustomerForAppointment(ctx context.Context, apptID id.ID) (*catalog.Customer, error) {
	if c, ok := f.appointments[apptID]; ok {
		return c, nil
	}
	return nil, apperror.NewNotFound("appointment", apptID)
}

func (f *fakeIdentity) EnsureWalkIn(ctx context.Context) (*catalog.Customer, error) {
	if f.walkIn == nil {
		f.walkIn = &catalog.Customer{ID: id.New(), Name: "Walk-in"}
	}
	return f.walkIn, nil
}

type publishedEvent struct {
	aggregateType string
	eventType     string
	aggregateID   id.ID
	payload       any
}

type fakePublisher struct {
	events []publishedEvent
}

func (f *fakePublisher) Publish(ctx context.Context, aggregateType, eventType string, aggregateID id.ID, payload any) error {
	f.events = append(f.events, publishedEvent{aggregateType, eventType, aggregateID, payload})
	return nil
}

// fakeTxManager tracks whether the last transaction committed or rolled back.
type fakeTxManager struct {
	committed  int
	rolledBack int
}

func (f *fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := fn(ctx); err != nil {
		f.rolledBack++
		return err
	}
	f.committed++
	return nil
}

type engineFixture struct {
	engine   *Engine
	sessions *fakeSessions
	ledger   *fakeLedger
	sales    *fakeSales
	identity *fakeIdentity
	events   *fakePublisher
	txm      *fakeTxManager
}

func newEngineFixture(open *session.CashSession) *engineFixture {
	f := &engineFixture{
		sessions: &fakeSessions{open: open},
		ledger:   &fakeLedger{},
		sales:    &fakeSales{},
		identity: &fakeIdentity{appointments: map[id.ID]*catalog.Customer{}},
		events:   &fakePublisher{},
		txm:      &fakeTxManager{},
	}
	f.engine = NewEngine(f.sessions, f.ledger, f.sales, f.identity, f.events, f.txm)
	return f
}

func openSession() *session.CashSession {
	return session.NewCashSession(time.Now().UTC(), types.MustMoney("100.00"), "", "")
}

// --- tests ---

func TestEngine_Commit_CashWithChange(t *testing.T) {
	fx := newEngineFixture(openSession())

	cart := NewCart()
	cart.AddCatalogLine(haircut())

	res, err := fx.engine.Commit(context.Background(),
		cart, types.MustMoney("5.00"), types.MustMoney("40.00"), types.PaymentCash)
	require.NoError(t, err)

	require.True(t, res.Totals.Subtotal.Equal(types.MustMoney("25.00")))
	require.True(t, res.Totals.Change.Equal(types.MustMoney("10.00")))
	require.Equal(t, fx.sessions.open.ID, res.SessionID)

	// One movement, one sale, one event, one committed transaction.
	require.Len(t, fx.ledger.recorded, 1)
	require.Equal(t, ledger.KindIncome, fx.ledger.recorded[0].Kind)
	require.Equal(t, "Haircut", fx.ledger.recorded[0].Notes)
	require.Len(t, fx.sales.recorded, 1)
	require.Len(t, fx.events.events, 1)
	require.Equal(t, "TicketCommitted", fx.events.events[0].eventType)
	require.Equal(t, 1, fx.txm.committed)

	// Counter sale resolves to the walk-in identity.
	require.Equal(t, fx.identity.walkIn.ID, res.CustomerID)
	require.Equal(t, fx.identity.walkIn.ID, fx.sales.recorded[0].CustomerID)

	// A clean commit empties the cart.
	require.True(t, cart.IsEmpty())
}

func TestEngine_Commit_AppointmentBoundCard(t *testing.T) {
	fx := newEngineFixture(openSession())

	appt := catalog.Appointment{
		ID:           id.New(),
		CustomerID:   id.New(),
		ServiceID:    id.New(),
		ServiceLabel: "Hair coloring",
		Price:        types.MustMoney("60.00"),
	}
	customer := &catalog.Customer{ID: appt.CustomerID, Name: "Anna Petrova"}
	fx.identity.appointments[appt.ID] = customer

	cart := NewCart()
	cart.BindAppointment(appt)

	res, err := fx.engine.Commit(context.Background(),
		cart, types.Zero(), types.Zero(), types.PaymentCard)
	require.NoError(t, err)

	require.Equal(t, customer.ID, res.CustomerID)
	require.True(t, res.Totals.Change.IsZero())

	require.NotNil(t, fx.ledger.recorded[0].AppointmentID)
	require.Equal(t, appt.ID, *fx.ledger.recorded[0].AppointmentID)
	require.NotNil(t, fx.sales.recorded[0].AppointmentID)
	require.Equal(t, appt.ID, *fx.sales.recorded[0].AppointmentID)

	event, ok := fx.events.events[0].payload.(TicketCommittedEvent)
	require.True(t, ok)
	require.Equal(t, types.PaymentCard, event.PaymentMethod)
	require.Equal(t, customer.ID, event.CustomerID)
}

func TestEngine_Commit_NoOpenSession(t *testing.T) {
	fx := newEngineFixture(nil)

	cart := NewCart()
	cart.AddCatalogLine(haircut())

	_, err := fx.engine.Commit(context.Background(),
		cart, types.Zero(), types.MustMoney("25.00"), types.PaymentCash)
	require.True(t, apperror.IsNoOpenSession(err))

	// Nothing written, cart untouched.
	require.Empty(t, fx.ledger.recorded)
	require.Empty(t, fx.sales.recorded)
	require.Len(t, cart.Lines, 1)
}

func TestEngine_Commit_Rejections(t *testing.T) {
	fx := newEngineFixture(openSession())
	ctx := context.Background()

	empty := NewCart()
	_, err := fx.engine.Commit(ctx, empty, types.Zero(), types.Zero(), types.PaymentCash)
	requireCode(t, err, apperror.CodeValidation)

	invalid := NewCart()
	invalid.AddCatalogLine(haircut())
	invalid.SetQuantity(invalid.Lines[0].LineID, 0)
	_, err = fx.engine.Commit(ctx, invalid, types.Zero(), types.Zero(), types.PaymentCash)
	requireCode(t, err, apperror.CodeValidation)

	cart := NewCart()
	cart.AddCatalogLine(haircut())

	_, err = fx.engine.Commit(ctx, cart, types.Zero(), types.Zero(), types.PaymentMethod("check"))
	requireCode(t, err, apperror.CodeValidation)

	_, err = fx.engine.Commit(ctx, cart, types.MustMoney("-1.00"), types.Zero(), types.PaymentCard)
	requireCode(t, err, apperror.CodeValidation)

	_, err = fx.engine.Commit(ctx, cart, types.Zero(), types.MustMoney("-1.00"), types.PaymentCash)
	requireCode(t, err, apperror.CodeValidation)

	require.Empty(t, fx.ledger.recorded)
	require.Empty(t, fx.sales.recorded)
}

func TestEngine_Commit_SaleFailureIsPartialCommit(t *testing.T) {
	fx := newEngineFixture(openSession())
	fx.sales.err = errors.New("sale_records insert failed")

	cart := NewCart()
	cart.AddCatalogLine(haircut())

	_, err := fx.engine.Commit(context.Background(),
		cart, types.Zero(), types.MustMoney("25.00"), types.PaymentCash)
	require.True(t, apperror.IsPartialCommit(err))

	// The movement write happened inside the transaction, then rolled back.
	require.Len(t, fx.ledger.recorded, 1)
	require.Equal(t, 1, fx.txm.rolledBack)
	require.Equal(t, 0, fx.txm.committed)
	require.Empty(t, fx.events.events)

	// The cart survives so the operator can retry or abandon deliberately.
	require.Len(t, cart.Lines, 1)
}

func TestEngine_Commit_MovementFailureAbortsCleanly(t *testing.T) {
	fx := newEngineFixture(openSession())
	fx.ledger.err = errors.New("cash_movements insert failed")

	cart := NewCart()
	cart.AddCatalogLine(haircut())

	_, err := fx.engine.Commit(context.Background(),
		cart, types.Zero(), types.MustMoney("25.00"), types.PaymentCash)
	require.Error(t, err)
	require.False(t, apperror.IsPartialCommit(err))

	require.Empty(t, fx.sales.recorded)
	require.Equal(t, 1, fx.txm.rolledBack)
	require.Len(t, cart.Lines, 1)
}

func TestEngine_CanCommit(t *testing.T) {
	fx := newEngineFixture(openSession())
	ctx := context.Background()

	cart := NewCart()
	ok, err := fx.engine.CanCommit(ctx, cart)
	require.NoError(t, err)
	require.False(t, ok)

	cart.AddCatalogLine(haircut())
	ok, err = fx.engine.CanCommit(ctx, cart)
	require.NoError(t, err)
	require.True(t, ok)

	cart.SetQuantity(cart.Lines[0].LineID, 0)
	ok, err = fx.engine.CanCommit(ctx, cart)
	require.NoError(t, err)
	require.False(t, ok)

	cart.SetQuantity(cart.Lines[0].LineID, 1)
	fx.sessions.open = nil
	ok, err = fx.engine.CanCommit(ctx, cart)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestEngine_RecordWithdrawal(t *testing.T) {
	fx := newEngineFixture(openSession())

	m, err := fx.engine.RecordWithdrawal(context.Background(),
		types.MustMoney("50.00"), types.PaymentCash, "supplier payout")
	require.NoError(t, err)
	require.Equal(t, ledger.KindWithdrawal, m.Kind)
	require.True(t, m.Amount.Equal(types.MustMoney("50.00")))
	require.Equal(t, "supplier payout", m.Notes)

	fx.sessions.open = nil
	_, err = fx.engine.RecordWithdrawal(context.Background(),
		types.MustMoney("10.00"), types.PaymentCash, "")
	require.True(t, apperror.IsNoOpenSession(err))
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	require.Equal(t, code, appErr.Code)
}
