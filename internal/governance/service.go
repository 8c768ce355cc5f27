package governance

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"civitas/api_governance/pkg/logging"
	"civitas/api_governance/pkg/models"
	"civitas/api_governance/pkg/pagination"
)

// Service implements the configuration-evolution lifecycle over a Postgres
// backing store. Mutations run their read-then-write sequence inside one
// transaction so two concurrent approvals in the same category cannot both
// end up active.
type Service struct {
	db     *sql.DB
	logger logging.Logger
}

// NewService creates a governance service
func NewService(db *sql.DB, logger logging.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// ProposeInput carries the fields of a new evolution proposal
type ProposeInput struct {
	Category    models.EvolutionCategory
	Description string
	Changes     models.EvolutionChanges
	ProposalID  *string
}

// ListFilter narrows ListAll results
type ListFilter struct {
	Status   models.EvolutionStatus
	Category models.EvolutionCategory
	Limit    int
}

const evolutionColumns = `id, category, description, changes, status, proposed_by,
		proposal_id, approved_by, approved_at, applied_by, applied_at, created_at, updated_at`

// Propose creates a pending evolution for the given category. The proposer
// must be an authenticated, known platform user.
func (s *Service) Propose(ctx context.Context, identity string, in ProposeInput) (string, error) {
	if identity == "" {
		return "", ErrUnauthenticated
	}

	if _, err := s.lookupUser(ctx, identity); err != nil {
		return "", err
	}

	if !in.Category.Valid() {
		return "", ErrInvalidCategory
	}
	if !in.Changes.MatchesCategory(in.Category) {
		return "", fmt.Errorf("%w: changes payload does not match category %s", ErrInvalidCategory, in.Category)
	}

	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO governance_evolutions
			(id, category, description, changes, status, proposed_by, proposal_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
	`, id, in.Category, in.Description, in.Changes, models.StatusPending, identity, in.ProposalID, now)
	if err != nil {
		return "", fmt.Errorf("failed to insert evolution: %w", err)
	}

	s.logger.WithFields(logging.Fields{
		"evolution_id": id,
		"category":     in.Category,
		"proposed_by":  identity,
	}).Info("Evolution proposed")

	return id, nil
}

// ApproveAndApply promotes a pending evolution to active. Every other active
// evolution of the same category is marked superseded in the same
// transaction.
func (s *Service) ApproveAndApply(ctx context.Context, identity, evolutionID string) error {
	approver, err := s.requireEditor(ctx, identity)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	category, err := lockPendingEvolution(ctx, tx, evolutionID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()

	// Demote previously active evolutions of the category first so the
	// one-active-per-category invariant holds at commit.
	_, err = tx.ExecContext(ctx, `
		UPDATE governance_evolutions
		SET status = $1, updated_at = $2
		WHERE category = $3 AND status = $4 AND id <> $5
	`, models.StatusSuperseded, now, category, models.StatusActive, evolutionID)
	if err != nil {
		return fmt.Errorf("failed to supersede active evolutions: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE governance_evolutions
		SET status = $1, approved_by = $2, approved_at = $3,
		    applied_by = $2, applied_at = $3, updated_at = $3
		WHERE id = $4
	`, models.StatusActive, approver.ID, now, evolutionID)
	if err != nil {
		return fmt.Errorf("failed to activate evolution: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit approval: %w", err)
	}

	s.logger.WithFields(logging.Fields{
		"evolution_id": evolutionID,
		"category":     category,
		"approved_by":  approver.ID,
	}).Info("Evolution approved and applied")

	return nil
}

// Reject marks a pending evolution as rejected. No supersession side effects.
func (s *Service) Reject(ctx context.Context, identity, evolutionID string) error {
	approver, err := s.requireEditor(ctx, identity)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := lockPendingEvolution(ctx, tx, evolutionID); err != nil {
		return err
	}

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx, `
		UPDATE governance_evolutions
		SET status = $1, approved_by = $2, approved_at = $3, updated_at = $3
		WHERE id = $4
	`, models.StatusRejected, approver.ID, now, evolutionID)
	if err != nil {
		return fmt.Errorf("failed to reject evolution: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rejection: %w", err)
	}

	s.logger.WithFields(logging.Fields{
		"evolution_id": evolutionID,
		"rejected_by":  approver.ID,
	}).Info("Evolution rejected")

	return nil
}

// lockPendingEvolution row-locks the target evolution and verifies it is
// still pending. Returns the evolution's category.
func lockPendingEvolution(ctx context.Context, tx *sql.Tx, evolutionID string) (models.EvolutionCategory, error) {
	var category models.EvolutionCategory
	var status models.EvolutionStatus

	err := tx.QueryRowContext(ctx, `
		SELECT category, status FROM governance_evolutions
		WHERE id = $1
		FOR UPDATE
	`, evolutionID).Scan(&category, &status)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to load evolution: %w", err)
	}

	if status != models.StatusPending {
		return "", fmt.Errorf("%w: status is %s", ErrAlreadyProcessed, status)
	}

	return category, nil
}

// ListActive returns the active evolutions, optionally narrowed to one
// category, newest-applied first.
func (s *Service) ListActive(ctx context.Context, category models.EvolutionCategory) ([]models.Evolution, error) {
	query := `SELECT ` + evolutionColumns + `
		FROM governance_evolutions
		WHERE status = $1`
	args := []interface{}{models.StatusActive}

	if category != "" {
		query += ` AND category = $2`
		args = append(args, category)
	}
	query += ` ORDER BY applied_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list active evolutions: %w", err)
	}
	defer rows.Close()

	return scanEvolutions(rows)
}

// ListAll returns evolutions with denormalized actor display names, newest
// created first.
func (s *Service) ListAll(ctx context.Context, filter ListFilter) ([]models.EnrichedEvolution, error) {
	query := `SELECT e.id, e.category, e.description, e.changes, e.status, e.proposed_by,
			e.proposal_id, e.approved_by, e.approved_at, e.applied_by, e.applied_at,
			e.created_at, e.updated_at,
			COALESCE(p.display_name, ''), COALESCE(a.display_name, '')
		FROM governance_evolutions e
		LEFT JOIN users p ON p.id = e.proposed_by
		LEFT JOIN users a ON a.id = e.approved_by
		WHERE 1=1`
	args := []interface{}{}

	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND e.status = $%d", len(args))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		query += fmt.Sprintf(" AND e.category = $%d", len(args))
	}

	args = append(args, pagination.ClampLimit(filter.Limit))
	query += fmt.Sprintf(" ORDER BY e.created_at DESC, e.id DESC LIMIT $%d", len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list evolutions: %w", err)
	}
	defer rows.Close()

	var result []models.EnrichedEvolution
	for rows.Next() {
		var e models.EnrichedEvolution
		err := rows.Scan(
			&e.ID, &e.Category, &e.Description, &e.Changes, &e.Status, &e.ProposedBy,
			&e.ProposalID, &e.ApprovedBy, &e.ApprovedAt, &e.AppliedBy, &e.AppliedAt,
			&e.CreatedAt, &e.UpdatedAt,
			&e.ProposedByName, &e.ApprovedByName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan evolution: %w", err)
		}
		// The applier and approver are the same actor in this lifecycle.
		e.AppliedByName = e.ApprovedByName
		result = append(result, e)
	}

	return result, rows.Err()
}

// ResolveVoteParameters merges the active vote_parameters evolution (if any)
// over the compiled-in defaults.
func (s *Service) ResolveVoteParameters(ctx context.Context) (models.VoteParameters, error) {
	changes, err := s.activeOverride(ctx, models.CategoryVoteParameters)
	if err != nil {
		return models.VoteParameters{}, err
	}
	return mergeVoteParameters(DefaultVoteParameters(), changes.VoteParameters), nil
}

// ResolveCredibilityRules merges the active credibility_rules evolution (if
// any) over the compiled-in defaults.
func (s *Service) ResolveCredibilityRules(ctx context.Context) (models.CredibilityRules, error) {
	changes, err := s.activeOverride(ctx, models.CategoryCredibilityRules)
	if err != nil {
		return models.CredibilityRules{}, err
	}
	return mergeCredibilityRules(DefaultCredibilityRules(), changes.CredibilityRules), nil
}

// ResolveRolePermissions merges the active role_permissions evolution (if
// any) over the compiled-in defaults, role by role.
func (s *Service) ResolveRolePermissions(ctx context.Context) (models.RolePermissions, error) {
	changes, err := s.activeOverride(ctx, models.CategoryRolePermissions)
	if err != nil {
		return models.RolePermissions{}, err
	}
	return mergeRolePermissions(DefaultRolePermissions(), changes.RolePermissions), nil
}

// activeOverride returns the override payload of the most recently applied
// active evolution for the category. The supersession transaction keeps the
// active set a singleton, but the resolver does not assume the store
// enforces it: when several rows come back it self-heals by taking the
// greatest (applied_at, id) and logs a warning.
func (s *Service) activeOverride(ctx context.Context, category models.EvolutionCategory) (models.EvolutionChanges, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, changes FROM governance_evolutions
		WHERE category = $1 AND status = $2
		ORDER BY applied_at DESC, id DESC
	`, category, models.StatusActive)
	if err != nil {
		return models.EvolutionChanges{}, fmt.Errorf("failed to query active evolution: %w", err)
	}
	defer rows.Close()

	var changes models.EvolutionChanges
	count := 0
	for rows.Next() {
		count++
		if count == 1 {
			var id string
			if err := rows.Scan(&id, &changes); err != nil {
				return models.EvolutionChanges{}, fmt.Errorf("failed to scan active evolution: %w", err)
			}
			continue
		}
		var id string
		var discard models.EvolutionChanges
		if err := rows.Scan(&id, &discard); err != nil {
			return models.EvolutionChanges{}, fmt.Errorf("failed to scan active evolution: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		return models.EvolutionChanges{}, err
	}

	if count > 1 {
		s.logger.WithFields(logging.Fields{
			"category": category,
			"count":    count,
		}).Warn("Multiple active evolutions found; using most recently applied")
	}

	return changes, nil
}

// requireEditor resolves the identity to a platform user and checks the
// elevated role.
func (s *Service) requireEditor(ctx context.Context, identity string) (models.User, error) {
	if identity == "" {
		return models.User{}, ErrUnauthenticated
	}

	user, err := s.lookupUser(ctx, identity)
	if err != nil {
		return models.User{}, err
	}

	if !user.IsEditor() {
		return models.User{}, ErrForbidden
	}

	return user, nil
}

func (s *Service) lookupUser(ctx context.Context, id string) (models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, display_name, role, is_active FROM users WHERE id = $1
	`, id).Scan(&u.ID, &u.Email, &u.DisplayName, &u.Role, &u.IsActive)
	if err == sql.ErrNoRows {
		return models.User{}, ErrUserNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("failed to look up user: %w", err)
	}
	return u, nil
}

func scanEvolutions(rows *sql.Rows) ([]models.Evolution, error) {
	var result []models.Evolution
	for rows.Next() {
		var e models.Evolution
		err := rows.Scan(
			&e.ID, &e.Category, &e.Description, &e.Changes, &e.Status, &e.ProposedBy,
			&e.ProposalID, &e.ApprovedBy, &e.ApprovedAt, &e.AppliedBy, &e.AppliedAt,
			&e.CreatedAt, &e.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan evolution: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}
