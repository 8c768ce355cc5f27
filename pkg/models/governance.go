package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// EvolutionCategory identifies the configuration domain an evolution targets
type EvolutionCategory string

const (
	CategoryVoteParameters   EvolutionCategory = "vote_parameters"
	CategoryCredibilityRules EvolutionCategory = "credibility_rules"
	CategoryRolePermissions  EvolutionCategory = "role_permissions"
	CategoryContentRules     EvolutionCategory = "content_rules"
	CategoryOther            EvolutionCategory = "other"
)

// Valid reports whether the category is a known configuration domain
func (c EvolutionCategory) Valid() bool {
	switch c {
	case CategoryVoteParameters, CategoryCredibilityRules, CategoryRolePermissions,
		CategoryContentRules, CategoryOther:
		return true
	}
	return false
}

// EvolutionStatus is the lifecycle state of an evolution
type EvolutionStatus string

const (
	StatusPending    EvolutionStatus = "pending"
	StatusActive     EvolutionStatus = "active"
	StatusRejected   EvolutionStatus = "rejected"
	StatusSuperseded EvolutionStatus = "superseded"
)

// Valid reports whether the status is a known lifecycle state
func (s EvolutionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusActive, StatusRejected, StatusSuperseded:
		return true
	}
	return false
}

// ProposalTypeParameters holds vote settings for a single proposal type
type ProposalTypeParameters struct {
	Quorum        int `json:"quorum"`
	Majority      int `json:"majority"`
	DurationHours int `json:"duration_hours"`
}

// VoteParameters holds platform-wide vote settings plus per-proposal-type blocks
type VoteParameters struct {
	DefaultQuorum        int `json:"default_quorum"`
	MinQuorum            int `json:"min_quorum"`
	MaxQuorum            int `json:"max_quorum"`
	DefaultMajority      int `json:"default_majority"`
	MinMajority          int `json:"min_majority"`
	MaxMajority          int `json:"max_majority"`
	DefaultDurationHours int `json:"default_duration_hours"`
	MinDurationHours     int `json:"min_duration_hours"`
	MaxDurationHours     int `json:"max_duration_hours"`

	EditorialRules   ProposalTypeParameters `json:"editorial_rules"`
	EthicalCharter   ProposalTypeParameters `json:"ethical_charter"`
	ExpertNomination ProposalTypeParameters `json:"expert_nomination"`
	CategoryAddition ProposalTypeParameters `json:"category_addition"`
	ProductEvolution ProposalTypeParameters `json:"product_evolution"`
}

// CredibilityRules holds the weighted contribution factors for user
// credibility scoring. Weights are independent percentages; they are not
// required to sum to 100.
type CredibilityRules struct {
	PublicationWeight int `json:"publication_weight"`
	SourcesWeight     int `json:"sources_weight"`
	VotesWeight       int `json:"votes_weight"`
	CorrectionsWeight int `json:"corrections_weight"`
	ExpertiseWeight   int `json:"expertise_weight"`
	BehaviorWeight    int `json:"behavior_weight"`

	ExpertThreshold  int `json:"expert_threshold"`
	TrustedThreshold int `json:"trusted_threshold"`
}

// RoleCapabilities holds the capability flags and vote weight for one role
type RoleCapabilities struct {
	CanPublish           bool    `json:"can_publish"`
	CanVote              bool    `json:"can_vote"`
	CanPropose           bool    `json:"can_propose"`
	CanModerate          bool    `json:"can_moderate"`
	CanApproveEvolutions bool    `json:"can_approve_evolutions"`
	VoteWeight           float64 `json:"vote_weight"`
}

// RolePermissions holds the capabilities of the three platform roles
type RolePermissions struct {
	Citoyen RoleCapabilities `json:"citoyen"`
	Expert  RoleCapabilities `json:"expert"`
	Editeur RoleCapabilities `json:"editeur"`
}

// VoteParametersOverride is a partial override of VoteParameters. Nil fields
// keep the default value.
type VoteParametersOverride struct {
	DefaultQuorum        *int `json:"default_quorum,omitempty"`
	MinQuorum            *int `json:"min_quorum,omitempty"`
	MaxQuorum            *int `json:"max_quorum,omitempty"`
	DefaultMajority      *int `json:"default_majority,omitempty"`
	MinMajority          *int `json:"min_majority,omitempty"`
	MaxMajority          *int `json:"max_majority,omitempty"`
	DefaultDurationHours *int `json:"default_duration_hours,omitempty"`
	MinDurationHours     *int `json:"min_duration_hours,omitempty"`
	MaxDurationHours     *int `json:"max_duration_hours,omitempty"`

	EditorialRules   *ProposalTypeParametersOverride `json:"editorial_rules,omitempty"`
	EthicalCharter   *ProposalTypeParametersOverride `json:"ethical_charter,omitempty"`
	ExpertNomination *ProposalTypeParametersOverride `json:"expert_nomination,omitempty"`
	CategoryAddition *ProposalTypeParametersOverride `json:"category_addition,omitempty"`
	ProductEvolution *ProposalTypeParametersOverride `json:"product_evolution,omitempty"`
}

// ProposalTypeParametersOverride is a partial override of one proposal type block
type ProposalTypeParametersOverride struct {
	Quorum        *int `json:"quorum,omitempty"`
	Majority      *int `json:"majority,omitempty"`
	DurationHours *int `json:"duration_hours,omitempty"`
}

// CredibilityRulesOverride is a partial override of CredibilityRules
type CredibilityRulesOverride struct {
	PublicationWeight *int `json:"publication_weight,omitempty"`
	SourcesWeight     *int `json:"sources_weight,omitempty"`
	VotesWeight       *int `json:"votes_weight,omitempty"`
	CorrectionsWeight *int `json:"corrections_weight,omitempty"`
	ExpertiseWeight   *int `json:"expertise_weight,omitempty"`
	BehaviorWeight    *int `json:"behavior_weight,omitempty"`

	ExpertThreshold  *int `json:"expert_threshold,omitempty"`
	TrustedThreshold *int `json:"trusted_threshold,omitempty"`
}

// RoleCapabilitiesOverride is a partial override of one role's capabilities
type RoleCapabilitiesOverride struct {
	CanPublish           *bool    `json:"can_publish,omitempty"`
	CanVote              *bool    `json:"can_vote,omitempty"`
	CanPropose           *bool    `json:"can_propose,omitempty"`
	CanModerate          *bool    `json:"can_moderate,omitempty"`
	CanApproveEvolutions *bool    `json:"can_approve_evolutions,omitempty"`
	VoteWeight           *float64 `json:"vote_weight,omitempty"`
}

// RolePermissionsOverride is a partial override of RolePermissions, merged
// per role.
type RolePermissionsOverride struct {
	Citoyen *RoleCapabilitiesOverride `json:"citoyen,omitempty"`
	Expert  *RoleCapabilitiesOverride `json:"expert,omitempty"`
	Editeur *RoleCapabilitiesOverride `json:"editeur,omitempty"`
}

// EvolutionChanges is the override payload of an evolution. At most one
// variant is populated, matching the evolution's category.
type EvolutionChanges struct {
	VoteParameters   *VoteParametersOverride   `json:"vote_parameters,omitempty"`
	CredibilityRules *CredibilityRulesOverride `json:"credibility_rules,omitempty"`
	RolePermissions  *RolePermissionsOverride  `json:"role_permissions,omitempty"`
}

// Variant returns the category whose override payload is populated, or
// CategoryOther when the payload is empty.
func (ec EvolutionChanges) Variant() EvolutionCategory {
	switch {
	case ec.VoteParameters != nil:
		return CategoryVoteParameters
	case ec.CredibilityRules != nil:
		return CategoryCredibilityRules
	case ec.RolePermissions != nil:
		return CategoryRolePermissions
	}
	return CategoryOther
}

// MatchesCategory reports whether the payload shape is valid for the given
// category. Categories without a typed payload accept only empty changes.
func (ec EvolutionChanges) MatchesCategory(category EvolutionCategory) bool {
	populated := 0
	if ec.VoteParameters != nil {
		populated++
	}
	if ec.CredibilityRules != nil {
		populated++
	}
	if ec.RolePermissions != nil {
		populated++
	}
	if populated > 1 {
		return false
	}

	switch category {
	case CategoryVoteParameters:
		return populated == 0 || ec.VoteParameters != nil
	case CategoryCredibilityRules:
		return populated == 0 || ec.CredibilityRules != nil
	case CategoryRolePermissions:
		return populated == 0 || ec.RolePermissions != nil
	case CategoryContentRules, CategoryOther:
		return populated == 0
	}
	return false
}

// Value implements the driver.Valuer interface for JSONB storage
func (ec EvolutionChanges) Value() (driver.Value, error) {
	return json.Marshal(ec)
}

// Scan implements the sql.Scanner interface for JSONB storage
func (ec *EvolutionChanges) Scan(value interface{}) error {
	if value == nil {
		*ec = EvolutionChanges{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("unsupported type for EvolutionChanges: %T", value)
	}

	return json.Unmarshal(bytes, ec)
}

// Evolution represents a proposed, possibly-approved change to a category's
// configuration parameters
type Evolution struct {
	ID          string            `json:"id"`
	Category    EvolutionCategory `json:"category"`
	Description string            `json:"description"`
	Changes     EvolutionChanges  `json:"changes"`
	Status      EvolutionStatus   `json:"status"`
	ProposedBy  string            `json:"proposed_by"`
	ProposalID  *string           `json:"proposal_id,omitempty"`
	ApprovedBy  *string           `json:"approved_by,omitempty"`
	ApprovedAt  *time.Time        `json:"approved_at,omitempty"`
	AppliedBy   *string           `json:"applied_by,omitempty"`
	AppliedAt   *time.Time        `json:"applied_at,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// EnrichedEvolution is an evolution with denormalized actor display names
type EnrichedEvolution struct {
	Evolution
	ProposedByName string `json:"proposed_by_name,omitempty"`
	ApprovedByName string `json:"approved_by_name,omitempty"`
	AppliedByName  string `json:"applied_by_name,omitempty"`
}
