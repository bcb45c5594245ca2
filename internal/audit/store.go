// Package audit persists the action trail of the panel in Postgres: every
// mutation an operator performs against the remote API is recorded locally
// and browsable from the settings screens.
package audit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Entry is one row of the audit_log table.
type Entry struct {
	ID         uuid.UUID
	Actor      string
	Action     string
	Resource   string
	TargetID   string
	Detail     string
	OccurredAt time.Time
}

// Filters narrow List to one action or resource, with a free-text search
// over actor and detail.
type Filters struct {
	Action   string
	Resource string
	Search   string
}

// Store reads and writes audit entries.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore constructs a Store over a pgx pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Insert persists one entry.
func (s *Store) Insert(ctx context.Context, entry Entry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.OccurredAt.IsZero() {
		entry.OccurredAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO audit_log (id, actor, action, resource, target_id, detail, occurred_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		entry.ID, entry.Actor, entry.Action, entry.Resource, entry.TargetID, entry.Detail, entry.OccurredAt)
	if err != nil {
		return fmt.Errorf("audit: insert: %w", err)
	}
	return nil
}

// List returns one page of entries, newest first, with the filtered total.
func (s *Store) List(ctx context.Context, filters Filters, offset, limit int) ([]Entry, int, error) {
	where, args := buildWhere(filters)

	var total int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM audit_log"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("audit: count: %w", err)
	}

	query := fmt.Sprintf(
		"SELECT id, actor, action, resource, target_id, detail, occurred_at FROM audit_log%s ORDER BY occurred_at DESC LIMIT $%d OFFSET $%d",
		where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("audit: list: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0, limit)
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Actor, &e.Action, &e.Resource, &e.TargetID, &e.Detail, &e.OccurredAt); err != nil {
			return nil, 0, fmt.Errorf("audit: scan: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("audit: rows: %w", err)
	}
	return entries, total, nil
}

// Get fetches one entry by id.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (Entry, error) {
	var e Entry
	err := s.pool.QueryRow(ctx,
		`SELECT id, actor, action, resource, target_id, detail, occurred_at FROM audit_log WHERE id = $1`,
		id).Scan(&e.ID, &e.Actor, &e.Action, &e.Resource, &e.TargetID, &e.Detail, &e.OccurredAt)
	if err != nil {
		return Entry{}, fmt.Errorf("audit: get: %w", err)
	}
	return e, nil
}

// Prune deletes entries older than the retention window and reports how
// many rows went away.
func (s *Store) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-retention)
	tag, err := s.pool.Exec(ctx, `DELETE FROM audit_log WHERE occurred_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("audit: prune: %w", err)
	}
	return tag.RowsAffected(), nil
}

func buildWhere(filters Filters) (string, []any) {
	clauses := make([]string, 0, 3)
	args := make([]any, 0, 3)
	if filters.Action != "" {
		args = append(args, filters.Action)
		clauses = append(clauses, fmt.Sprintf("action = $%d", len(args)))
	}
	if filters.Resource != "" {
		args = append(args, filters.Resource)
		clauses = append(clauses, fmt.Sprintf("resource = $%d", len(args)))
	}
	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		clauses = append(clauses, fmt.Sprintf("(actor ILIKE $%d OR detail ILIKE $%d)", len(args), len(args)))
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}
