package audit

import (
	"context"
	"time"

	id "raffle/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose so stores and
// sinks can apply different retention and routing.
type EventCategory string

const (
	// CategoryCompliance covers events that move value or finalize a raffle.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers rejected or suspicious attempts.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine lifecycle activity.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from the lifecycle engine to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	// Actor is the verified caller that triggered the action.
	Actor    id.Identity
	RaffleID id.RaffleID
	Action   string
	// Decision is "accepted" or "rejected".
	Decision  string
	Reason    string
	RequestID string
	// Detail carries a short free-form note, e.g. the selected winner.
	Detail string
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByRaffle(ctx context.Context, raffleID id.RaffleID) ([]Event, error)
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}

type AuditEvent string

const (
	EventRegistryBootstrapped AuditEvent = "registry_bootstrapped"
	EventRaffleCreated        AuditEvent = "raffle_created"
	EventRaffleEntered        AuditEvent = "raffle_entered"
	EventWinnerSelected       AuditEvent = "winner_selected"
	EventRaffleClosed         AuditEvent = "raffle_closed"
	EventRaffleConcluded      AuditEvent = "raffle_concluded"
	EventPrizeClaimed         AuditEvent = "prize_claimed"

	EventOperationRejected AuditEvent = "operation_rejected"
	EventReentryBlocked    AuditEvent = "reentry_blocked"
)

const (
	DecisionAccepted = "accepted"
	DecisionRejected = "rejected"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventRegistryBootstrapped: CategoryCompliance,
	EventRaffleEntered:        CategoryCompliance,
	EventPrizeClaimed:         CategoryCompliance,

	EventOperationRejected: CategorySecurity,
	EventReentryBlocked:    CategorySecurity,

	EventRaffleCreated:   CategoryOperations,
	EventWinnerSelected:  CategoryOperations,
	EventRaffleClosed:    CategoryOperations,
	EventRaffleConcluded: CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}
