// Package service implements the raffle lifecycle engine: registry bootstrap,
// creation, entry, winner selection, closure, conclusion and claim.
//
// Every mutating operation loads its records inside Store.RunInTx, validates
// against the aggregate's Can* checks, performs ledger transfers, and commits
// only if everything succeeded.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"raffle/internal/ledger"
	"raffle/internal/raffle/metrics"
	"raffle/internal/raffle/models"
	"raffle/internal/raffle/store"
	id "raffle/pkg/domain"
	dErrors "raffle/pkg/domain-errors"
	audit "raffle/pkg/platform/audit"
	"raffle/pkg/platform/sentinel"
	"raffle/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks DrawSource,EventPublisher,AuditPublisher

// Store is the persistence the engine needs.
type Store interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error
	GetRegistry(ctx context.Context) (*models.Registry, error)
	GetRaffle(ctx context.Context, raffleID id.RaffleID) (*models.Raffle, error)
	ListRaffles(ctx context.Context, filter models.ListFilter) ([]*models.Raffle, error)
}

// DrawSource supplies the number a winner index is derived from.
type DrawSource interface {
	Draw(ctx context.Context) (uint64, error)
}

// EventPublisher delivers WinnerSelected notifications.
type EventPublisher interface {
	PublishWinnerSelected(ctx context.Context, event models.WinnerSelected) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

const (
	opBootstrap = "bootstrap"
	opCreate    = "create_raffle"
	opEnter     = "enter_raffle"
	opPick      = "pick_winner"
	opClose     = "close_raffle"
	opConclude  = "conclude_raffle"
	opClaim     = "claim_nft"
)

// Service is the raffle lifecycle engine.
type Service struct {
	store   Store
	ledger  ledger.Ledger
	clock   ledger.Clock
	draw    DrawSource
	events  EventPublisher
	auditor AuditPublisher
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditor = publisher
	}
}

func WithEventPublisher(publisher EventPublisher) Option {
	return func(s *Service) {
		s.events = publisher
	}
}

// WithDrawSource replaces the default slot-based draw.
func WithDrawSource(draw DrawSource) Option {
	return func(s *Service) {
		s.draw = draw
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

// New constructs a Service. The ledger's clock also drives expiry checks and,
// unless WithDrawSource is given, the winner draw.
func New(st Store, l ledger.Ledger, clock ledger.Clock, opts ...Option) *Service {
	s := &Service{
		store:  st,
		ledger: l,
		clock:  clock,
		logger: slog.Default(),
		tracer: otel.Tracer("raffle/internal/raffle/service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.draw == nil {
		s.draw = SlotDraw{Clock: clock}
	}
	return s
}

// SlotDraw uses the ledger slot as the draw. The slot is observable and can be
// anticipated by whoever picks the winner.
type SlotDraw struct {
	Clock ledger.Clock
}

func (d SlotDraw) Draw(ctx context.Context) (uint64, error) {
	return d.Clock.Slot(ctx)
}

// -----------------------------------------------------------------------------
// Shared helpers
// -----------------------------------------------------------------------------

func (s *Service) begin(ctx context.Context, op string, raffleID id.RaffleID) (context.Context, trace.Span, time.Time) {
	ctx, span := s.tracer.Start(ctx, "raffle."+op)
	span.SetAttributes(attribute.String("raffle.operation", op))
	if raffleID != 0 {
		span.SetAttributes(attribute.Int64("raffle.id", int64(raffleID)))
	}
	return ctx, span, time.Now()
}

// finish records the outcome of op on the span, metrics, log and audit trail.
func (s *Service) finish(ctx context.Context, span trace.Span, op string, start time.Time, raffleID id.RaffleID, caller id.Identity, err error) {
	defer span.End()

	outcome := "ok"
	if err != nil {
		outcome = outcomeOf(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
	}
	if s.metrics != nil {
		s.metrics.ObserveOperation(op, outcome, start)
	}
	if err == nil {
		return
	}

	attrs := []any{
		"operation", op,
		"raffle_id", raffleID,
		"caller", caller,
		"request_id", requestcontext.RequestID(ctx),
		"reason", outcome,
		"error", err,
	}
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		s.logger.ErrorContext(ctx, "raffle operation failed", attrs...)
	} else {
		s.logger.WarnContext(ctx, "raffle operation rejected", attrs...)
	}

	switch {
	case models.IsReason(err, models.ReasonOperationLocked):
		s.emitAudit(ctx, audit.EventReentryBlocked, raffleID, caller, audit.DecisionRejected, outcome, op)
	case models.IsReason(err, models.ReasonUnauthorized):
		s.emitAudit(ctx, audit.EventOperationRejected, raffleID, caller, audit.DecisionRejected, outcome, op)
	}
}

func outcomeOf(err error) string {
	if reason := dErrors.ReasonOf(err); reason != "" {
		return reason
	}
	return string(dErrors.CodeOf(err))
}

func (s *Service) emitAudit(ctx context.Context, action audit.AuditEvent, raffleID id.RaffleID, actor id.Identity, decision, reason, detail string) {
	if s.auditor == nil {
		return
	}
	err := s.auditor.Emit(ctx, audit.Event{
		Category:  action.Category(),
		Timestamp: requestcontext.Now(ctx),
		Actor:     actor,
		RaffleID:  raffleID,
		Action:    string(action),
		Decision:  decision,
		Reason:    reason,
		RequestID: requestcontext.RequestID(ctx),
		Detail:    detail,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", action,
			"raffle_id", raffleID,
			"error", err,
		)
	}
}

func requireCaller(caller id.Identity) error {
	if caller.IsZero() {
		return dErrors.New(dErrors.CodeUnauthorized, "caller identity is required")
	}
	return nil
}

// loadRaffle translates store failures into domain errors.
func loadRaffle(ctx context.Context, tx store.Tx, raffleID id.RaffleID) (*models.Raffle, error) {
	r, err := tx.LoadRaffle(ctx, raffleID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, models.ReasonRaffleNotFound.Err()
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load raffle")
	}
	return r, nil
}

func saveRaffle(ctx context.Context, tx store.Tx, r *models.Raffle) error {
	if err := tx.SaveRaffle(ctx, r); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrConflict):
			return dErrors.Wrap(err, dErrors.CodeConflict, "raffle conflicts with an existing record")
		case errors.Is(err, sentinel.ErrUnavailable):
			return dErrors.Wrap(err, dErrors.CodeTimeout, "store busy, retry the operation")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save raffle")
	}
	return nil
}

// mutateRaffle runs fn against a locked raffle and saves it if fn succeeds.
func (s *Service) mutateRaffle(ctx context.Context, raffleID id.RaffleID, fn func(ctx context.Context, r *models.Raffle) error) (*models.Raffle, error) {
	var out *models.Raffle
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		r, err := loadRaffle(ctx, tx, raffleID)
		if err != nil {
			return err
		}
		if err := fn(ctx, r); err != nil {
			return err
		}
		if err := saveRaffle(ctx, tx, r); err != nil {
			return err
		}
		out = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
