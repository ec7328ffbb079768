package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	id "github.com/qxxq-lcvn/treasure-hunt/pkg/domain"
	audit "github.com/qxxq-lcvn/treasure-hunt/pkg/platform/audit"
	txcontext "github.com/qxxq-lcvn/treasure-hunt/pkg/platform/tx"
)

// Store persists audit events in PostgreSQL. Inserts join a SQL transaction
// carried in context so an aborted operation takes its events down with it.
type Store struct {
	db *sql.DB
}

// New creates a PostgreSQL-backed audit store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// Append inserts an audit event. The table is append-only; no update or
// delete statements exist in this store.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	query := `
		INSERT INTO audit_events (
			id, category, timestamp, actor, subject, action,
			decision, reason, commitment, amount, position, request_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.New(),
		string(event.Category),
		event.Timestamp,
		event.Actor.String(),
		event.Subject,
		event.Action,
		event.Decision,
		event.Reason,
		event.Commitment,
		event.Amount,
		event.Position,
		event.RequestID,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListByActor returns events emitted for a specific actor in emission order.
func (s *Store) ListByActor(ctx context.Context, actor id.Address) ([]audit.Event, error) {
	query := selectColumns + ` WHERE actor = $1 ORDER BY timestamp, id`
	rows, err := s.db.QueryContext(ctx, query, actor.String())
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// ListAll returns all audit events in emission order.
func (s *Store) ListAll(ctx context.Context) ([]audit.Event, error) {
	query := selectColumns + ` ORDER BY timestamp, id`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

const selectColumns = `
	SELECT category, timestamp, actor, subject, action,
	       decision, reason, commitment, amount, position, request_id
	FROM audit_events`

func scanEvents(rows *sql.Rows) ([]audit.Event, error) {
	var events []audit.Event
	for rows.Next() {
		var (
			category string
			actor    string
			event    audit.Event
		)
		err := rows.Scan(
			&category,
			&event.Timestamp,
			&actor,
			&event.Subject,
			&event.Action,
			&event.Decision,
			&event.Reason,
			&event.Commitment,
			&event.Amount,
			&event.Position,
			&event.RequestID,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Category = audit.EventCategory(category)
		event.Actor = id.Address(actor)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
