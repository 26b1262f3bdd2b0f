package session

import (
	"context"
	"sync"
	"time"

	"salonpos/internal/core/apperror"
	appctx "salonpos/internal/core/context"
	"salonpos/internal/core/id"
	"salonpos/internal/core/policy"
	"salonpos/internal/core/tx"
	"salonpos/internal/core/types"
	"salonpos/pkg/logger"
)

// DrawerTotals aggregates the cash-only movements of one session.
type DrawerTotals struct {
	CashIncome      types.Money
	CashTips        types.Money
	CashWithdrawals types.Money
}

// TotalsReader is implemented by the movement ledger.
type TotalsReader interface {
	DrawerCashTotals(ctx context.Context, sessionID id.ID) (DrawerTotals, error)
}

// AuditLogger records session state transitions. Best effort: a failed audit
// write never fails the business operation.
type AuditLogger interface {
	LogChange(ctx context.Context, entityType string, entityID id.ID, action string, changes map[string]any) error
}

// Service is the cash session manager. It owns the "current open session"
// concept and guarantees the at-most-one-open invariant.
//
// All state-changing calls are serialized through a single mutex, and reopen
// additionally runs under a serializable transaction, so two sessions can
// never be simultaneously open even across processes (the store also carries
// a partial unique index on state='open').
type Service struct {
	mu         sync.Mutex
	repo       Repository
	txm        tx.SerializableManager
	totals     TotalsReader
	classifier *policy.DeviationClassifier
	audit      AuditLogger
	loc        *time.Location
}

// Config wires the session service.
type Config struct {
	Repo       Repository
	TxManager  tx.SerializableManager
	Totals     TotalsReader
	Classifier *policy.DeviationClassifier
	Audit      AuditLogger
	Location   *time.Location
}

// NewService creates the session manager.
func NewService(cfg Config) *Service {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		repo:       cfg.Repo,
		txm:        cfg.TxManager,
		totals:     cfg.Totals,
		classifier: cfg.Classifier,
		audit:      cfg.Audit,
		loc:        loc,
	}
}

// GetOpen returns the currently open session, or nil when the drawer is shut.
func (s *Service) GetOpen(ctx context.Context) (*CashSession, error) {
	return s.repo.GetOpen(ctx)
}

// List returns sessions ordered by business date descending.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]CashSession, error) {
	return s.repo.List(ctx, filter)
}

// GetByID returns one session.
func (s *Service) GetByID(ctx context.Context, sessionID id.ID) (*CashSession, error) {
	return s.repo.GetByID(ctx, sessionID)
}

// OpenForToday opens (or re-opens) the drawer for today's business date.
// Upsert semantics: an existing row for today is updated, never duplicated.
//
// A stale open session from another date is never closed silently; the call
// fails with a conflict naming it, and the operator closes it or uses Reopen.
func (s *Service) OpenForToday(ctx context.Context, openingFloat types.Money, notes string) (*CashSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := DateOnly(time.Now().In(s.loc))

	open, err := s.repo.GetOpen(ctx)
	if err != nil {
		return nil, err
	}
	if open != nil && !open.BusinessDate.Equal(today) {
		return nil, apperror.NewConflict("another session is still open; close it before opening a new day").
			WithDetail("openSessionId", open.ID.String()).
			WithDetail("openBusinessDate", open.BusinessDate.Format(time.DateOnly))
	}

	sess := NewCashSession(today, openingFloat, notes, appctx.GetUserID(ctx))
	if err := sess.Validate(ctx); err != nil {
		return nil, err
	}

	stored, err := s.repo.Upsert(ctx, sess)
	if err != nil {
		return nil, apperror.NewStorage(err)
	}

	s.logAudit(ctx, stored.ID, "open", map[string]any{
		"businessDate": stored.BusinessDate.Format(time.DateOnly),
		"openingFloat": stored.OpeningFloat.String(),
	})

	logger.Info(ctx, "cash session opened",
		"session_id", stored.ID,
		"business_date", stored.BusinessDate.Format(time.DateOnly))

	return stored, nil
}

// Close closes a session, freezing POS writes against it.
//
// countedTotal is the operator-declared drawer content; when nil, a previously
// stored closing total is kept. The expected total is always recomputed from
// the ledger, and a deviation classification is stored when a counted total is
// available.
func (s *Service) Close(ctx context.Context, sessionID id.ID, countedTotal *types.Money, notes *string) (*CashSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.repo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	totals, err := s.totals.DrawerCashTotals(ctx, sessionID)
	if err != nil {
		return nil, apperror.NewStorage(err)
	}
	expected := sess.OpeningFloat.
		Add(totals.CashIncome).
		Add(totals.CashTips).
		Sub(totals.CashWithdrawals)

	params := CloseParams{
		ClosingTotal:  countedTotal,
		ExpectedTotal: &expected,
		Notes:         notes,
	}

	counted := countedTotal
	if counted == nil {
		counted = sess.ClosingTotal
	}
	if counted != nil && s.classifier != nil {
		deviation := counted.Sub(expected)
		class, err := s.classifier.Classify(expected, *counted)
		if err != nil {
			return nil, apperror.NewInternal(err).WithDetail("stage", "deviation_classification")
		}
		params.Deviation = &deviation
		params.DeviationClass = &class
	}

	if err := s.repo.Close(ctx, sessionID, params); err != nil {
		if apperror.IsNotFound(err) {
			return nil, err
		}
		return nil, apperror.NewStorage(err)
	}

	changes := map[string]any{"expectedTotal": expected.String()}
	if counted != nil {
		changes["closingTotal"] = counted.String()
	}
	if params.DeviationClass != nil {
		changes["deviationClass"] = string(*params.DeviationClass)
	}
	s.logAudit(ctx, sessionID, "close", changes)

	logger.Info(ctx, "cash session closed",
		"session_id", sessionID,
		"expected_total", expected.String())

	return s.repo.GetByID(ctx, sessionID)
}

// Reopen makes the target session the single open one: every other open
// session is closed first, then the target is opened, as one indivisible
// transaction. This is the only path that changes which session is "the"
// open one across dates. Management override for correcting a closed day.
func (s *Service) Reopen(ctx context.Context, sessionID id.ID) (*CashSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.txm.Serializable(ctx, func(ctx context.Context) error {
		// Close-others must run even when no other session is open.
		if err := s.repo.CloseAllOpen(ctx, sessionID); err != nil {
			return err
		}
		return s.repo.Reopen(ctx, sessionID)
	})
	if err != nil {
		if apperror.IsAppError(err) {
			return nil, err
		}
		return nil, apperror.NewStorage(err)
	}

	s.logAudit(ctx, sessionID, "reopen", nil)

	logger.Info(ctx, "cash session reopened", "session_id", sessionID)

	return s.repo.GetByID(ctx, sessionID)
}

func (s *Service) logAudit(ctx context.Context, sessionID id.ID, action string, changes map[string]any) {
	if s.audit == nil {
		return
	}
	if err := s.audit.LogChange(ctx, "CashSession", sessionID, action, changes); err != nil {
		logger.Warn(ctx, "audit write failed", "action", action, "error", err)
	}
}
