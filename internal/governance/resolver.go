package governance

import (
	"civitas/api_governance/pkg/models"
)

// Merge functions layering a partial override over the compiled-in defaults.
// A nil override field keeps the default value, so merging an empty override
// returns the defaults unchanged.

func mergeVoteParameters(base models.VoteParameters, o *models.VoteParametersOverride) models.VoteParameters {
	if o == nil {
		return base
	}

	applyInt(&base.DefaultQuorum, o.DefaultQuorum)
	applyInt(&base.MinQuorum, o.MinQuorum)
	applyInt(&base.MaxQuorum, o.MaxQuorum)
	applyInt(&base.DefaultMajority, o.DefaultMajority)
	applyInt(&base.MinMajority, o.MinMajority)
	applyInt(&base.MaxMajority, o.MaxMajority)
	applyInt(&base.DefaultDurationHours, o.DefaultDurationHours)
	applyInt(&base.MinDurationHours, o.MinDurationHours)
	applyInt(&base.MaxDurationHours, o.MaxDurationHours)

	base.EditorialRules = mergeProposalTypeParameters(base.EditorialRules, o.EditorialRules)
	base.EthicalCharter = mergeProposalTypeParameters(base.EthicalCharter, o.EthicalCharter)
	base.ExpertNomination = mergeProposalTypeParameters(base.ExpertNomination, o.ExpertNomination)
	base.CategoryAddition = mergeProposalTypeParameters(base.CategoryAddition, o.CategoryAddition)
	base.ProductEvolution = mergeProposalTypeParameters(base.ProductEvolution, o.ProductEvolution)

	return base
}

func mergeProposalTypeParameters(base models.ProposalTypeParameters, o *models.ProposalTypeParametersOverride) models.ProposalTypeParameters {
	if o == nil {
		return base
	}

	applyInt(&base.Quorum, o.Quorum)
	applyInt(&base.Majority, o.Majority)
	applyInt(&base.DurationHours, o.DurationHours)

	return base
}

func mergeCredibilityRules(base models.CredibilityRules, o *models.CredibilityRulesOverride) models.CredibilityRules {
	if o == nil {
		return base
	}

	applyInt(&base.PublicationWeight, o.PublicationWeight)
	applyInt(&base.SourcesWeight, o.SourcesWeight)
	applyInt(&base.VotesWeight, o.VotesWeight)
	applyInt(&base.CorrectionsWeight, o.CorrectionsWeight)
	applyInt(&base.ExpertiseWeight, o.ExpertiseWeight)
	applyInt(&base.BehaviorWeight, o.BehaviorWeight)
	applyInt(&base.ExpertThreshold, o.ExpertThreshold)
	applyInt(&base.TrustedThreshold, o.TrustedThreshold)

	return base
}

// mergeRolePermissions merges per role so a new role only needs one more
// call site here, not a new spread expression per capability.
func mergeRolePermissions(base models.RolePermissions, o *models.RolePermissionsOverride) models.RolePermissions {
	if o == nil {
		return base
	}

	base.Citoyen = mergeRoleCapabilities(base.Citoyen, o.Citoyen)
	base.Expert = mergeRoleCapabilities(base.Expert, o.Expert)
	base.Editeur = mergeRoleCapabilities(base.Editeur, o.Editeur)

	return base
}

func mergeRoleCapabilities(base models.RoleCapabilities, o *models.RoleCapabilitiesOverride) models.RoleCapabilities {
	if o == nil {
		return base
	}

	applyBool(&base.CanPublish, o.CanPublish)
	applyBool(&base.CanVote, o.CanVote)
	applyBool(&base.CanPropose, o.CanPropose)
	applyBool(&base.CanModerate, o.CanModerate)
	applyBool(&base.CanApproveEvolutions, o.CanApproveEvolutions)
	applyFloat(&base.VoteWeight, o.VoteWeight)

	return base
}

func applyInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func applyBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func applyFloat(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}
