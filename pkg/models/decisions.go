package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Decision represents an editorial decision record. It is owned by the
// content subsystem; this service only reads it.
type Decision struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	CategoryIDs   []string  `json:"category_ids"`
	Type          string    `json:"type"`
	Decider       string    `json:"decider"`
	Sentiment     string    `json:"sentiment"`
	LegacyDomains []string  `json:"legacy_domains"`
	CreatedAt     time.Time `json:"created_at"`
}

// RuleOperator combines the populated clauses of a cohort rule
type RuleOperator string

const (
	OperatorAnd RuleOperator = "AND"
	OperatorOr  RuleOperator = "OR"
)

// CohortRule is a bag of optional predicate clauses plus a combination
// operator. A rule with no populated clauses matches nothing.
type CohortRule struct {
	CategoryIDs         []string   `json:"category_ids,omitempty"`
	TitleContains       *string    `json:"title_contains,omitempty"`
	TitleKeywords       []string   `json:"title_keywords,omitempty"`
	DescriptionContains *string    `json:"description_contains,omitempty"`
	DescriptionKeywords []string   `json:"description_keywords,omitempty"`
	Types               []string   `json:"types,omitempty"`
	DeciderContains     *string    `json:"decider_contains,omitempty"`
	Sentiments          []string   `json:"sentiments,omitempty"`
	LegacyDomains       []string   `json:"legacy_domains,omitempty"`
	CreatedAfter        *time.Time `json:"created_after,omitempty"`
	CreatedBefore       *time.Time `json:"created_before,omitempty"`

	Operator RuleOperator `json:"operator,omitempty"`
}

// EffectiveOperator returns OperatorAnd unless OR is set explicitly
func (r CohortRule) EffectiveOperator() RuleOperator {
	if r.Operator == OperatorOr {
		return OperatorOr
	}
	return OperatorAnd
}

// Value implements the driver.Valuer interface for JSONB storage
func (r CohortRule) Value() (driver.Value, error) {
	return json.Marshal(r)
}

// Scan implements the sql.Scanner interface for JSONB storage
func (r *CohortRule) Scan(value interface{}) error {
	if value == nil {
		*r = CohortRule{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("unsupported type for CohortRule: %T", value)
	}

	return json.Unmarshal(bytes, r)
}

// SpecialEvent groups decisions matched by a persisted cohort rule
type SpecialEvent struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Rule      CohortRule `json:"rule"`
	CreatedAt time.Time  `json:"created_at"`
}
