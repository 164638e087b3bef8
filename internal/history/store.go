package history

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"prism/internal/domain"
)

// Entry statuses.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Entry is one executed metric query.
type Entry struct {
	ID           string    `json:"id"`
	ExploreName  string    `json:"exploreName"`
	Dimensions   []string  `json:"dimensions"`
	Metrics      []string  `json:"metrics"`
	GeneratedSQL string    `json:"generatedSql,omitempty"`
	Status       string    `json:"status"`
	ErrorMessage string    `json:"errorMessage,omitempty"`
	RowCount     int       `json:"rowCount"`
	DurationMs   int64     `json:"durationMs"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Store persists query history entries.
type Store struct {
	db *sql.DB
}

// NewStore creates a Store over an open history database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Record inserts one entry, assigning an ID and timestamp if unset.
func (s *Store) Record(ctx context.Context, e *Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO query_history
			(id, explore_name, dimensions, metrics, generated_sql, status, error_message, row_count, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.ExploreName,
		strings.Join(e.Dimensions, ","), strings.Join(e.Metrics, ","),
		e.GeneratedSQL, e.Status, e.ErrorMessage, e.RowCount, e.DurationMs, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("record query history: %w", err)
	}
	return nil
}

// List returns the most recent entries, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, explore_name, dimensions, metrics, generated_sql, status, error_message, row_count, duration_ms, created_at
		FROM query_history
		ORDER BY created_at DESC, id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list query history: %w", err)
	}
	defer rows.Close()

	out := []Entry{}
	for rows.Next() {
		var e Entry
		var dims, mets string
		if err := rows.Scan(&e.ID, &e.ExploreName, &dims, &mets, &e.GeneratedSQL,
			&e.Status, &e.ErrorMessage, &e.RowCount, &e.DurationMs, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan query history: %w", err)
		}
		e.Dimensions = splitNonEmpty(dims)
		e.Metrics = splitNonEmpty(mets)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Get returns one entry by ID.
func (s *Store) Get(ctx context.Context, id string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, explore_name, dimensions, metrics, generated_sql, status, error_message, row_count, duration_ms, created_at
		FROM query_history WHERE id = ?`, id)

	var e Entry
	var dims, mets string
	err := row.Scan(&e.ID, &e.ExploreName, &dims, &mets, &e.GeneratedSQL,
		&e.Status, &e.ErrorMessage, &e.RowCount, &e.DurationMs, &e.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound("query history entry %q not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get query history: %w", err)
	}
	e.Dimensions = splitNonEmpty(dims)
	e.Metrics = splitNonEmpty(mets)
	return &e, nil
}

// PruneBefore deletes entries created before the cutoff and returns how many
// were removed.
func (s *Store) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM query_history WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune query history: %w", err)
	}
	return res.RowsAffected()
}

func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// FieldIDsToStrings converts field identifiers for storage.
func FieldIDsToStrings(ids []domain.FieldID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
