package governance

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sirupsen/logrus"

	"civitas/api_governance/pkg/models"
	"civitas/api_governance/pkg/testutil"
)

var fixtures = testutil.NewDatabaseFixtures()

func newTestService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { mockDB.Close() })

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	return NewService(mockDB, logger), mock
}

func expectUserLookup(mock sqlmock.Sqlmock, u models.User) {
	mock.ExpectQuery("SELECT id, email, display_name, role, is_active FROM users").
		WithArgs(u.ID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "display_name", "role", "is_active"}).
			AddRow(u.ID, u.Email, u.DisplayName, u.Role, u.IsActive))
}

func TestProposeRequiresIdentity(t *testing.T) {
	svc, mock := newTestService(t)

	_, err := svc.Propose(context.Background(), "", ProposeInput{Category: models.CategoryVoteParameters})
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestProposeRejectsUnknownUser(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery("SELECT id, email, display_name, role, is_active FROM users").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "display_name", "role", "is_active"}))

	_, err := svc.Propose(context.Background(), "ghost", ProposeInput{Category: models.CategoryVoteParameters})
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestProposeRejectsInvalidCategory(t *testing.T) {
	svc, mock := newTestService(t)

	citizen := fixtures.CitizenUser()
	expectUserLookup(mock, citizen)

	_, err := svc.Propose(context.Background(), citizen.ID, ProposeInput{Category: "budget"})
	if !errors.Is(err, ErrInvalidCategory) {
		t.Fatalf("expected ErrInvalidCategory, got %v", err)
	}
}

func TestProposeRejectsMismatchedChanges(t *testing.T) {
	svc, mock := newTestService(t)

	citizen := fixtures.CitizenUser()
	expectUserLookup(mock, citizen)

	quorum := 20
	_, err := svc.Propose(context.Background(), citizen.ID, ProposeInput{
		Category: models.CategoryCredibilityRules,
		Changes: models.EvolutionChanges{
			VoteParameters: &models.VoteParametersOverride{DefaultQuorum: &quorum},
		},
	})
	if !errors.Is(err, ErrInvalidCategory) {
		t.Fatalf("expected ErrInvalidCategory, got %v", err)
	}
}

func TestProposeInsertsPendingEvolution(t *testing.T) {
	svc, mock := newTestService(t)

	citizen := fixtures.CitizenUser()
	expectUserLookup(mock, citizen)

	quorum := 20
	mock.ExpectExec("INSERT INTO governance_evolutions").
		WithArgs(sqlmock.AnyArg(), models.CategoryVoteParameters, "Raise the default quorum",
			sqlmock.AnyArg(), models.StatusPending, citizen.ID, nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	id, err := svc.Propose(context.Background(), citizen.ID, ProposeInput{
		Category:    models.CategoryVoteParameters,
		Description: "Raise the default quorum",
		Changes: models.EvolutionChanges{
			VoteParameters: &models.VoteParametersOverride{DefaultQuorum: &quorum},
		},
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if id == "" {
		t.Fatal("expected a generated evolution id")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestApproveRejectsNonEditor(t *testing.T) {
	svc, mock := newTestService(t)

	expectUserLookup(mock, models.User{
		ID:       "expert-1",
		Email:    "expert@example.org",
		Role:     models.RoleExpert,
		IsActive: true,
	})

	err := svc.ApproveAndApply(context.Background(), "expert-1", "evo-1")
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestApproveUnknownEvolution(t *testing.T) {
	svc, mock := newTestService(t)

	expectUserLookup(mock, fixtures.EditorUser())
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT category, status FROM governance_evolutions").
		WithArgs("evo-missing").
		WillReturnRows(sqlmock.NewRows([]string{"category", "status"}))
	mock.ExpectRollback()

	err := svc.ApproveAndApply(context.Background(), "editor-1", "evo-missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestApproveAlreadyProcessedEvolution(t *testing.T) {
	svc, mock := newTestService(t)

	expectUserLookup(mock, fixtures.EditorUser())
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT category, status FROM governance_evolutions").
		WithArgs("evo-1").
		WillReturnRows(sqlmock.NewRows([]string{"category", "status"}).
			AddRow(models.CategoryVoteParameters, models.StatusRejected))
	mock.ExpectRollback()

	err := svc.ApproveAndApply(context.Background(), "editor-1", "evo-1")
	if !errors.Is(err, ErrAlreadyProcessed) {
		t.Fatalf("expected ErrAlreadyProcessed, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestApproveSupersedesPriorActive(t *testing.T) {
	svc, mock := newTestService(t)

	expectUserLookup(mock, fixtures.EditorUser())
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT category, status FROM governance_evolutions").
		WithArgs("evo-2").
		WillReturnRows(sqlmock.NewRows([]string{"category", "status"}).
			AddRow(models.CategoryVoteParameters, models.StatusPending))
	mock.ExpectExec("UPDATE governance_evolutions").
		WithArgs(models.StatusSuperseded, sqlmock.AnyArg(), models.CategoryVoteParameters, models.StatusActive, "evo-2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE governance_evolutions").
		WithArgs(models.StatusActive, "editor-1", sqlmock.AnyArg(), "evo-2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := svc.ApproveAndApply(context.Background(), "editor-1", "evo-2"); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRejectMarksEvolutionRejected(t *testing.T) {
	svc, mock := newTestService(t)

	expectUserLookup(mock, fixtures.EditorUser())
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT category, status FROM governance_evolutions").
		WithArgs("evo-3").
		WillReturnRows(sqlmock.NewRows([]string{"category", "status"}).
			AddRow(models.CategoryCredibilityRules, models.StatusPending))
	mock.ExpectExec("UPDATE governance_evolutions").
		WithArgs(models.StatusRejected, "editor-1", sqlmock.AnyArg(), "evo-3").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := svc.Reject(context.Background(), "editor-1", "evo-3"); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRejectRequiresEditorRole(t *testing.T) {
	svc, mock := newTestService(t)

	citizen := fixtures.CitizenUser()
	expectUserLookup(mock, citizen)

	err := svc.Reject(context.Background(), citizen.ID, "evo-3")
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	// No transaction was opened, so the pending row stays untouched.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRejectAlreadyProcessedEvolution(t *testing.T) {
	svc, mock := newTestService(t)

	expectUserLookup(mock, fixtures.EditorUser())
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT category, status FROM governance_evolutions").
		WithArgs("evo-4").
		WillReturnRows(sqlmock.NewRows([]string{"category", "status"}).
			AddRow(models.CategoryVoteParameters, models.StatusSuperseded))
	mock.ExpectRollback()

	err := svc.Reject(context.Background(), "editor-1", "evo-4")
	if !errors.Is(err, ErrAlreadyProcessed) {
		t.Fatalf("expected ErrAlreadyProcessed, got %v", err)
	}

	// The row lock query is the only statement before rollback.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestResolveVoteParametersWithoutOverride(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery("SELECT id, changes FROM governance_evolutions").
		WithArgs(models.CategoryVoteParameters, models.StatusActive).
		WillReturnRows(sqlmock.NewRows([]string{"id", "changes"}))

	params, err := svc.ResolveVoteParameters(context.Background())
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	if params != DefaultVoteParameters() {
		t.Fatalf("expected defaults, got %+v", params)
	}
}

func TestResolveVoteParametersAppliesOverride(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery("SELECT id, changes FROM governance_evolutions").
		WithArgs(models.CategoryVoteParameters, models.StatusActive).
		WillReturnRows(sqlmock.NewRows([]string{"id", "changes"}).
			AddRow("evo-1", []byte(`{"vote_parameters":{"default_quorum":20}}`)))

	params, err := svc.ResolveVoteParameters(context.Background())
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	if params.DefaultQuorum != 20 {
		t.Errorf("expected overridden default quorum 20, got %d", params.DefaultQuorum)
	}

	defaults := DefaultVoteParameters()
	if params.MinQuorum != defaults.MinQuorum {
		t.Errorf("expected untouched min quorum %d, got %d", defaults.MinQuorum, params.MinQuorum)
	}
	if params.EditorialRules != defaults.EditorialRules {
		t.Errorf("expected untouched editorial rules block, got %+v", params.EditorialRules)
	}
}

func TestResolveSelfHealsMultipleActives(t *testing.T) {
	svc, mock := newTestService(t)

	// Ordered most-recently-applied first; the resolver must take the first
	// row and ignore the stragglers.
	mock.ExpectQuery("SELECT id, changes FROM governance_evolutions").
		WithArgs(models.CategoryCredibilityRules, models.StatusActive).
		WillReturnRows(sqlmock.NewRows([]string{"id", "changes"}).
			AddRow("evo-newer", []byte(`{"credibility_rules":{"expert_threshold":90}}`)).
			AddRow("evo-older", []byte(`{"credibility_rules":{"expert_threshold":60}}`)))

	rules, err := svc.ResolveCredibilityRules(context.Background())
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	if rules.ExpertThreshold != 90 {
		t.Errorf("expected most recently applied override to win, got threshold %d", rules.ExpertThreshold)
	}
}

func TestResolveRolePermissionsMergesPerRole(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery("SELECT id, changes FROM governance_evolutions").
		WithArgs(models.CategoryRolePermissions, models.StatusActive).
		WillReturnRows(sqlmock.NewRows([]string{"id", "changes"}).
			AddRow("evo-1", []byte(`{"role_permissions":{"expert":{"vote_weight":2.5}}}`)))

	perms, err := svc.ResolveRolePermissions(context.Background())
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	if perms.Expert.VoteWeight != 2.5 {
		t.Errorf("expected expert vote weight 2.5, got %f", perms.Expert.VoteWeight)
	}
	if !perms.Expert.CanPublish {
		t.Error("expected untouched expert capabilities to keep defaults")
	}

	defaults := DefaultRolePermissions()
	if perms.Citoyen != defaults.Citoyen {
		t.Errorf("expected untouched citoyen capabilities, got %+v", perms.Citoyen)
	}
}

func TestListAllScansEnrichedRows(t *testing.T) {
	svc, mock := newTestService(t)

	pending := fixtures.PendingEvolution(models.CategoryCredibilityRules)
	cols := []string{"id", "category", "description", "changes", "status", "proposed_by",
		"proposal_id", "approved_by", "approved_at", "applied_by", "applied_at",
		"created_at", "updated_at", "proposed_by_name", "approved_by_name"}

	mock.ExpectQuery("SELECT (.+) FROM governance_evolutions e").
		WithArgs(models.StatusPending, 10).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(pending.ID, pending.Category, pending.Description, []byte(`{}`), pending.Status,
				pending.ProposedBy, nil, nil, nil, nil, nil,
				pending.CreatedAt, pending.UpdatedAt, "Test Citizen", ""))

	evolutions, err := svc.ListAll(context.Background(), ListFilter{
		Status: models.StatusPending,
		Limit:  10,
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	if len(evolutions) != 1 {
		t.Fatalf("expected 1 evolution, got %d", len(evolutions))
	}
	got := evolutions[0]
	if got.ID != pending.ID || got.Category != pending.Category || got.Status != models.StatusPending {
		t.Errorf("unexpected evolution fields: %+v", got.Evolution)
	}
	if got.ProposedByName != "Test Citizen" {
		t.Errorf("expected proposer display name, got %q", got.ProposedByName)
	}
	if got.ApprovedBy != nil || got.AppliedAt != nil {
		t.Error("expected approval fields to stay nil for a pending evolution")
	}
}

func TestListActiveFiltersByCategory(t *testing.T) {
	svc, mock := newTestService(t)

	cols := []string{"id", "category", "description", "changes", "status", "proposed_by",
		"proposal_id", "approved_by", "approved_at", "applied_by", "applied_at", "created_at", "updated_at"}

	mock.ExpectQuery("SELECT (.+) FROM governance_evolutions").
		WithArgs(models.StatusActive, models.CategoryVoteParameters).
		WillReturnRows(sqlmock.NewRows(cols))

	evolutions, err := svc.ListActive(context.Background(), models.CategoryVoteParameters)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(evolutions) != 0 {
		t.Fatalf("expected no evolutions, got %d", len(evolutions))
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
