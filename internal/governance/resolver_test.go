package governance

import (
	"testing"

	"civitas/api_governance/pkg/models"
)

func intp(v int) *int          { return &v }
func boolp(v bool) *bool       { return &v }
func floatp(v float64) *float64 { return &v }

func TestMergeVoteParametersNilOverrideKeepsDefaults(t *testing.T) {
	defaults := DefaultVoteParameters()

	if got := mergeVoteParameters(defaults, nil); got != defaults {
		t.Fatalf("nil override should be identity, got %+v", got)
	}
	if got := mergeVoteParameters(defaults, &models.VoteParametersOverride{}); got != defaults {
		t.Fatalf("empty override should be identity, got %+v", got)
	}
}

func TestMergeVoteParametersOverridesOnlySetFields(t *testing.T) {
	defaults := DefaultVoteParameters()

	got := mergeVoteParameters(defaults, &models.VoteParametersOverride{
		DefaultQuorum: intp(20),
		EthicalCharter: &models.ProposalTypeParametersOverride{
			Majority: intp(75),
		},
	})

	if got.DefaultQuorum != 20 {
		t.Errorf("expected default quorum 20, got %d", got.DefaultQuorum)
	}
	if got.MaxQuorum != defaults.MaxQuorum {
		t.Errorf("expected untouched max quorum %d, got %d", defaults.MaxQuorum, got.MaxQuorum)
	}
	if got.EthicalCharter.Majority != 75 {
		t.Errorf("expected ethical charter majority 75, got %d", got.EthicalCharter.Majority)
	}
	if got.EthicalCharter.Quorum != defaults.EthicalCharter.Quorum {
		t.Errorf("expected untouched ethical charter quorum %d, got %d", defaults.EthicalCharter.Quorum, got.EthicalCharter.Quorum)
	}
	if got.EditorialRules != defaults.EditorialRules {
		t.Errorf("expected untouched editorial rules block, got %+v", got.EditorialRules)
	}
}

func TestMergeCredibilityRules(t *testing.T) {
	defaults := DefaultCredibilityRules()

	got := mergeCredibilityRules(defaults, &models.CredibilityRulesOverride{
		SourcesWeight:   intp(30),
		ExpertThreshold: intp(80),
	})

	if got.SourcesWeight != 30 {
		t.Errorf("expected sources weight 30, got %d", got.SourcesWeight)
	}
	if got.ExpertThreshold != 80 {
		t.Errorf("expected expert threshold 80, got %d", got.ExpertThreshold)
	}
	if got.PublicationWeight != defaults.PublicationWeight {
		t.Errorf("expected untouched publication weight %d, got %d", defaults.PublicationWeight, got.PublicationWeight)
	}
}

func TestMergeRolePermissionsPerRole(t *testing.T) {
	defaults := DefaultRolePermissions()

	got := mergeRolePermissions(defaults, &models.RolePermissionsOverride{
		Citoyen: &models.RoleCapabilitiesOverride{
			CanPublish: boolp(false),
			VoteWeight: floatp(0.5),
		},
	})

	if got.Citoyen.CanPublish {
		t.Error("expected citoyen publishing to be disabled")
	}
	if got.Citoyen.VoteWeight != 0.5 {
		t.Errorf("expected citoyen vote weight 0.5, got %f", got.Citoyen.VoteWeight)
	}
	if !got.Citoyen.CanVote {
		t.Error("expected untouched citoyen voting capability")
	}
	if got.Expert != defaults.Expert || got.Editeur != defaults.Editeur {
		t.Error("expected other roles untouched")
	}
}

func TestMergeIsIdempotentForEmptyOverride(t *testing.T) {
	perms := DefaultRolePermissions()

	once := mergeRolePermissions(perms, &models.RolePermissionsOverride{})
	twice := mergeRolePermissions(once, &models.RolePermissionsOverride{})

	if once != twice {
		t.Fatalf("empty override merge should be idempotent: %+v vs %+v", once, twice)
	}
}
