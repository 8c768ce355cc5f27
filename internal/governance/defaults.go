package governance

import (
	"civitas/api_governance/pkg/models"
)

// Compile-time baseline configuration. Every value here can be overridden by
// an approved evolution; absent override fields fall back to these.

// DefaultVoteParameters returns the baseline vote configuration
func DefaultVoteParameters() models.VoteParameters {
	return models.VoteParameters{
		DefaultQuorum:        10,
		MinQuorum:            5,
		MaxQuorum:            50,
		DefaultMajority:      50,
		MinMajority:          50,
		MaxMajority:          80,
		DefaultDurationHours: 72,
		MinDurationHours:     24,
		MaxDurationHours:     168,

		EditorialRules: models.ProposalTypeParameters{
			Quorum:        15,
			Majority:      60,
			DurationHours: 96,
		},
		EthicalCharter: models.ProposalTypeParameters{
			Quorum:        25,
			Majority:      66,
			DurationHours: 168,
		},
		ExpertNomination: models.ProposalTypeParameters{
			Quorum:        10,
			Majority:      50,
			DurationHours: 72,
		},
		CategoryAddition: models.ProposalTypeParameters{
			Quorum:        10,
			Majority:      50,
			DurationHours: 48,
		},
		ProductEvolution: models.ProposalTypeParameters{
			Quorum:        20,
			Majority:      55,
			DurationHours: 120,
		},
	}
}

// DefaultCredibilityRules returns the baseline credibility configuration.
// Weights are independent percentages and are deliberately not validated to
// sum to 100.
func DefaultCredibilityRules() models.CredibilityRules {
	return models.CredibilityRules{
		PublicationWeight: 25,
		SourcesWeight:     20,
		VotesWeight:       15,
		CorrectionsWeight: 15,
		ExpertiseWeight:   15,
		BehaviorWeight:    10,

		ExpertThreshold:  75,
		TrustedThreshold: 50,
	}
}

// DefaultRolePermissions returns the baseline role capabilities
func DefaultRolePermissions() models.RolePermissions {
	return models.RolePermissions{
		Citoyen: models.RoleCapabilities{
			CanPublish:           false,
			CanVote:              true,
			CanPropose:           true,
			CanModerate:          false,
			CanApproveEvolutions: false,
			VoteWeight:           1.0,
		},
		Expert: models.RoleCapabilities{
			CanPublish:           true,
			CanVote:              true,
			CanPropose:           true,
			CanModerate:          false,
			CanApproveEvolutions: false,
			VoteWeight:           2.0,
		},
		Editeur: models.RoleCapabilities{
			CanPublish:           true,
			CanVote:              true,
			CanPropose:           true,
			CanModerate:          true,
			CanApproveEvolutions: true,
			VoteWeight:           3.0,
		},
	}
}
