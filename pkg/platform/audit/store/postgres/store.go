package postgres

import (
	"context"
	"database/sql"
	"fmt"

	id "raffle/pkg/domain"
	audit "raffle/pkg/platform/audit"
	txcontext "raffle/pkg/platform/tx"

	"github.com/google/uuid"
)

// Store implements audit.Store on the audit_events table. Appends join the
// caller's transaction when one is carried in context.
type Store struct {
	db *sql.DB
}

// New creates a new PostgreSQL audit store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const selectColumns = `
	SELECT category, timestamp, actor, raffle_id, action,
		   decision, reason, request_id, detail
	FROM audit_events`

// Append inserts an audit event. The category is always derived from the action.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	category := audit.AuditEvent(event.Action).Category()

	var actor sql.NullString
	if !event.Actor.IsZero() {
		actor = sql.NullString{String: event.Actor.String(), Valid: true}
	}
	var raffleID sql.NullInt64
	if event.RaffleID != 0 {
		raffleID = sql.NullInt64{Int64: int64(event.RaffleID), Valid: true}
	}

	query := `
		INSERT INTO audit_events (
			id, category, timestamp, actor, raffle_id, action,
			decision, reason, request_id, detail
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := txcontext.QuerierFrom(ctx, s.db).ExecContext(ctx, query,
		uuid.New(),
		string(category),
		event.Timestamp,
		actor,
		raffleID,
		event.Action,
		event.Decision,
		event.Reason,
		event.RequestID,
		event.Detail,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListByRaffle returns events for one raffle, oldest first.
func (s *Store) ListByRaffle(ctx context.Context, raffleID id.RaffleID) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+`
		WHERE raffle_id = $1
		ORDER BY timestamp ASC`, int64(raffleID))
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// ListRecent returns the N most recent events.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+`
		ORDER BY timestamp DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]audit.Event, error) {
	var events []audit.Event

	for rows.Next() {
		var (
			category string
			actor    sql.NullString
			raffleID sql.NullInt64
			event    audit.Event
		)
		err := rows.Scan(
			&category,
			&event.Timestamp,
			&actor,
			&raffleID,
			&event.Action,
			&event.Decision,
			&event.Reason,
			&event.RequestID,
			&event.Detail,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}

		event.Category = audit.EventCategory(category)
		if actor.Valid {
			parsed, err := id.ParseIdentity(actor.String)
			if err != nil {
				return nil, fmt.Errorf("parse audit actor: %w", err)
			}
			event.Actor = parsed
		}
		if raffleID.Valid {
			event.RaffleID = id.RaffleID(raffleID.Int64)
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
