package pos

import (
	"context"
	"time"

	"salonpos/internal/core/apperror"
	"salonpos/internal/core/id"
	"salonpos/internal/core/tx"
	"salonpos/internal/core/types"
	"salonpos/internal/domain/catalog"
	"salonpos/internal/domain/ledger"
	"salonpos/internal/domain/sales"
	"salonpos/internal/domain/session"
	"salonpos/pkg/logger"
)

// SessionProvider exposes the current open session.
type SessionProvider interface {
	GetOpen(ctx context.Context) (*session.CashSession, error)
}

// MovementRecorder appends income/withdrawal movements.
type MovementRecorder interface {
	Record(ctx context.Context, in ledger.RecordInput) (*ledger.Movement, error)
}

// SaleWriter appends sale records.
type SaleWriter interface {
	Record(ctx context.Context, in sales.RecordInput) (*sales.SaleRecord, error)
}

// EventPublisher writes domain events to the transactional outbox.
type EventPublisher interface {
	Publish(ctx context.Context, aggregateType, eventType string, aggregateID id.ID, payload any) error
}

// Totals is the computed money view of a ticket.
type Totals struct {
	Subtotal types.Money `json:"subtotal"`
	TotalDue types.Money `json:"totalDue"`
	Change   types.Money `json:"change"`
}

// ComputeTotals returns subtotal, total due and change for a cart.
// Uses the same change formula the ledger stores.
func ComputeTotals(cart *Cart, tip, cashReceived types.Money, method types.PaymentMethod) Totals {
	subtotal := cart.Subtotal()
	return Totals{
		Subtotal: subtotal,
		TotalDue: subtotal.Add(tip),
		Change:   types.ChangeDue(method, subtotal, tip, cashReceived),
	}
}

// CommitResult reports a successful ticket commit.
type CommitResult struct {
	MovementID id.ID  `json:"movementId"`
	SaleID     id.ID  `json:"saleId"`
	SessionID  id.ID  `json:"sessionId"`
	CustomerID id.ID  `json:"customerId"`
	Totals     Totals `json:"totals"`
}

// TicketCommittedEvent is published to the outbox with every commit.
type TicketCommittedEvent struct {
	MovementID    id.ID               `json:"movementId"`
	SaleID        id.ID               `json:"saleId"`
	SessionID     id.ID               `json:"sessionId"`
	CustomerID    id.ID               `json:"customerId"`
	AppointmentID *id.ID              `json:"appointmentId,omitempty"`
	Amount        types.Money         `json:"amount"`
	Tip           types.Money         `json:"tip"`
	Change        types.Money         `json:"change"`
	PaymentMethod types.PaymentMethod `json:"paymentMethod"`
	CommittedAt   time.Time           `json:"committedAt"`
}

// Engine turns carts into durable Movement + SaleRecord pairs.
//
// The commit writes both projections and one outbox event inside a single
// transaction: either everything lands or nothing does. A failure of the
// second projection is still surfaced distinctly (PARTIAL_COMMIT) with full
// context logged, so the terminal can tell "failed mid-commit" from a clean
// rejection — but storage never holds half a ticket.
type Engine struct {
	sessions SessionProvider
	ledger   MovementRecorder
	sales    SaleWriter
	identity catalog.IdentityResolver
	events   EventPublisher
	txm      tx.Manager
}

// NewEngine wires the ticket engine.
func NewEngine(
	sessions SessionProvider,
	movements MovementRecorder,
	saleWriter SaleWriter,
	identity catalog.IdentityResolver,
	events EventPublisher,
	txm tx.Manager,
) *Engine {
	return &Engine{
		sessions: sessions,
		ledger:   movements,
		sales:    saleWriter,
		identity: identity,
		events:   events,
		txm:      txm,
	}
}

// CanCommit reports whether a cart could be committed right now: non-empty,
// every line with quantity ≥ 1, and an open session.
func (e *Engine) CanCommit(ctx context.Context, cart *Cart) (bool, error) {
	if cart.IsEmpty() || !cart.LinesValid() {
		return false, nil
	}
	open, err := e.sessions.GetOpen(ctx)
	if err != nil {
		return false, err
	}
	return open != nil, nil
}

// Commit writes one income Movement and one SaleRecord for the cart, plus a
// TicketCommitted outbox event, atomically. On success the cart is cleared
// and the change to hand back is returned. On any failure the cart is left
// untouched so the operator sees something went wrong.
func (e *Engine) Commit(ctx context.Context, cart *Cart, tip, cashReceived types.Money, method types.PaymentMethod) (*CommitResult, error) {
	if err := e.checkCommitGuard(ctx, cart, tip, cashReceived, method); err != nil {
		return nil, err
	}

	open, err := e.sessions.GetOpen(ctx)
	if err != nil {
		return nil, err
	}
	if open == nil {
		return nil, apperror.NewNoOpenSession()
	}

	totals := ComputeTotals(cart, tip, cashReceived, method)

	var (
		movement *ledger.Movement
		sale     *sales.SaleRecord
		customer *catalog.Customer
	)

	err = e.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		customer, err = e.resolveCustomer(ctx, cart)
		if err != nil {
			return err
		}

		movement, err = e.ledger.Record(ctx, ledger.RecordInput{
			SessionID:     open.ID,
			Kind:          ledger.KindIncome,
			PaymentMethod: method,
			Amount:        totals.Subtotal,
			Tip:           tip,
			CashReceived:  cashReceived,
			AppointmentID: cart.BoundAppointmentID,
			Notes:         cart.Description(),
		})
		if err != nil {
			// First write failed: the whole commit aborts cleanly.
			return err
		}

		sale, err = e.sales.Record(ctx, sales.RecordInput{
			AppointmentID: cart.BoundAppointmentID,
			CustomerID:    customer.ID,
			Amount:        totals.Subtotal,
			PaymentMethod: method,
			OccurredAt:    time.Now().UTC(),
		})
		if err != nil {
			// The movement insert already succeeded inside this transaction.
			// Rolling back keeps storage consistent, but the caller must be
			// able to distinguish this from a pre-write rejection.
			logger.Error(ctx, "sale projection failed after movement write",
				"session_id", open.ID,
				"movement_id", movement.ID,
				"cart", cart.Description(),
				"amount", totals.Subtotal.String(),
				"error", err)
			return apperror.NewPartialCommit(err).
				WithDetail("session_id", open.ID.String()).
				WithDetail("succeeded", "movement")
		}

		event := TicketCommittedEvent{
			MovementID:    movement.ID,
			SaleID:        sale.ID,
			SessionID:     open.ID,
			CustomerID:    customer.ID,
			AppointmentID: cart.BoundAppointmentID,
			Amount:        totals.Subtotal,
			Tip:           tip,
			Change:        totals.Change,
			PaymentMethod: method,
			CommittedAt:   time.Now().UTC(),
		}
		return e.events.Publish(ctx, "Ticket", "TicketCommitted", movement.ID, event)
	})
	if err != nil {
		if apperror.IsAppError(err) {
			return nil, err
		}
		return nil, apperror.NewStorage(err)
	}

	cart.Clear()

	logger.Info(ctx, "ticket committed",
		"session_id", open.ID,
		"movement_id", movement.ID,
		"sale_id", sale.ID,
		"change", totals.Change.String())

	return &CommitResult{
		MovementID: movement.ID,
		SaleID:     sale.ID,
		SessionID:  open.ID,
		CustomerID: customer.ID,
		Totals:     totals,
	}, nil
}

// RecordWithdrawal takes money out of the drawer, bypassing the cart.
// Requires an open session.
func (e *Engine) RecordWithdrawal(ctx context.Context, amount types.Money, method types.PaymentMethod, notes string) (*ledger.Movement, error) {
	open, err := e.sessions.GetOpen(ctx)
	if err != nil {
		return nil, err
	}
	if open == nil {
		return nil, apperror.NewNoOpenSession()
	}

	return e.ledger.Record(ctx, ledger.RecordInput{
		SessionID:     open.ID,
		Kind:          ledger.KindWithdrawal,
		PaymentMethod: method,
		Amount:        amount,
		Notes:         notes,
	})
}

func (e *Engine) checkCommitGuard(ctx context.Context, cart *Cart, tip, cashReceived types.Money, method types.PaymentMethod) error {
	if cart.IsEmpty() {
		return apperror.NewValidation("cart is empty")
	}
	if !cart.LinesValid() {
		return apperror.NewValidation("every line needs a quantity of at least 1")
	}
	if !method.Valid() {
		return apperror.NewValidation("payment method is required").
			WithDetail("field", "paymentMethod")
	}
	if tip.IsNegative() {
		return apperror.NewValidation("tip must not be negative").
			WithDetail("field", "tip")
	}
	if cashReceived.IsNegative() {
		return apperror.NewValidation("cash received must not be negative").
			WithDetail("field", "cashReceived")
	}
	return nil
}

func (e *Engine) resolveCustomer(ctx context.Context, cart *Cart) (*catalog.Customer, error) {
	if cart.BoundAppointmentID != nil {
		return e.identity.CustomerForAppointment(ctx, *cart.BoundAppointmentID)
	}
	// Counter sale: the walk-in identity is created lazily on first use.
	return e.identity.EnsureWalkIn(ctx)
}
