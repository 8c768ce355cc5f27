// Package tribune defines the request/response types of the governance API.
package tribune

import (
	"civitas/api_governance/pkg/api/common"
	"civitas/api_governance/pkg/models"
)

// ErrorResponse is the shared error envelope
type ErrorResponse = common.ErrorResponse

// SuccessResponse is the shared success envelope
type SuccessResponse = common.SuccessResponse

// ProposeEvolutionRequest represents a request to propose a configuration
// evolution
type ProposeEvolutionRequest struct {
	Category    models.EvolutionCategory `json:"category" binding:"required"`
	Description string                   `json:"description" binding:"required"`
	Changes     models.EvolutionChanges  `json:"changes"`
	ProposalID  *string                  `json:"proposal_id,omitempty"`
}

// ProposeEvolutionResponse returns the id of the created evolution
type ProposeEvolutionResponse struct {
	ID string `json:"id"`
}

// ListEvolutionsResponse represents a list of evolutions with actor names
type ListEvolutionsResponse struct {
	Evolutions []models.EnrichedEvolution `json:"evolutions"`
}

// ActiveEvolutionsResponse represents the currently active evolutions
type ActiveEvolutionsResponse struct {
	Evolutions []models.Evolution `json:"evolutions"`
}

// VoteParametersResponse is the effective vote configuration
type VoteParametersResponse struct {
	Parameters models.VoteParameters `json:"parameters"`
}

// CredibilityRulesResponse is the effective credibility configuration
type CredibilityRulesResponse struct {
	Rules models.CredibilityRules `json:"rules"`
}

// RolePermissionsResponse is the effective role permission configuration
type RolePermissionsResponse struct {
	Permissions models.RolePermissions `json:"permissions"`
}

// PreviewDecisionsRequest represents a dry-run cohort match request
type PreviewDecisionsRequest struct {
	Rule  models.CohortRule `json:"rule"`
	Limit int               `json:"limit,omitempty"`
}

// DecisionsResponse represents a list of matched decisions
type DecisionsResponse struct {
	Decisions []models.Decision `json:"decisions"`
}

// SpecialEventsResponse represents the persisted special events
type SpecialEventsResponse struct {
	SpecialEvents []models.SpecialEvent `json:"special_events"`
}

// MatchResponse reports whether a single decision matches a special event
type MatchResponse struct {
	Matches bool `json:"matches"`
}
