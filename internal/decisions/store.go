// Package decisions reads editorial decision records and persisted special
// events. Both are owned by the content subsystem; this service never writes
// them.
package decisions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"civitas/api_governance/pkg/models"
)

// ErrNotFound is returned when the referenced decision or special event does
// not exist
var ErrNotFound = errors.New("not found")

// Store reads decisions and special events from Postgres
type Store struct {
	db *sql.DB
}

// NewStore creates a decision store
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const decisionColumns = `id, title, description, category_ids, type, decider, sentiment, legacy_domains, created_at`

// ListRecent returns all decisions, newest first. The matcher filters the
// full candidate set so rule matches beyond any page boundary are not lost.
func (s *Store) ListRecent(ctx context.Context) ([]models.Decision, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+decisionColumns+` FROM decisions
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list decisions: %w", err)
	}
	defer rows.Close()

	var result []models.Decision
	for rows.Next() {
		d, err := scanDecision(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, d)
	}

	return result, rows.Err()
}

// Get returns one decision by id
func (s *Store) Get(ctx context.Context, id string) (models.Decision, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+decisionColumns+` FROM decisions WHERE id = $1
	`, id)

	var d models.Decision
	err := row.Scan(
		&d.ID, &d.Title, &d.Description, pq.Array(&d.CategoryIDs), &d.Type,
		&d.Decider, &d.Sentiment, pq.Array(&d.LegacyDomains), &d.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return models.Decision{}, fmt.Errorf("decision %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return models.Decision{}, fmt.Errorf("failed to load decision: %w", err)
	}

	return d, nil
}

// GetSpecialEvent returns a persisted special event, including its cohort
// rule
func (s *Store) GetSpecialEvent(ctx context.Context, id string) (models.SpecialEvent, error) {
	var ev models.SpecialEvent
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, rule, created_at FROM special_events WHERE id = $1
	`, id).Scan(&ev.ID, &ev.Name, &ev.Rule, &ev.CreatedAt)
	if err == sql.ErrNoRows {
		return models.SpecialEvent{}, fmt.Errorf("special event %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return models.SpecialEvent{}, fmt.Errorf("failed to load special event: %w", err)
	}

	return ev, nil
}

// ListSpecialEvents returns all persisted special events, newest first
func (s *Store) ListSpecialEvents(ctx context.Context) ([]models.SpecialEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, rule, created_at FROM special_events
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list special events: %w", err)
	}
	defer rows.Close()

	var result []models.SpecialEvent
	for rows.Next() {
		var ev models.SpecialEvent
		if err := rows.Scan(&ev.ID, &ev.Name, &ev.Rule, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan special event: %w", err)
		}
		result = append(result, ev)
	}

	return result, rows.Err()
}

func scanDecision(rows *sql.Rows) (models.Decision, error) {
	var d models.Decision
	err := rows.Scan(
		&d.ID, &d.Title, &d.Description, pq.Array(&d.CategoryIDs), &d.Type,
		&d.Decider, &d.Sentiment, pq.Array(&d.LegacyDomains), &d.CreatedAt,
	)
	if err != nil {
		return models.Decision{}, fmt.Errorf("failed to scan decision: %w", err)
	}
	return d, nil
}
