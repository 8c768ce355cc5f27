package rules

import (
	"context"

	"civitas/api_governance/pkg/models"
	"civitas/api_governance/pkg/pagination"
)

// DecisionSource provides candidate decisions ordered newest-first
type DecisionSource interface {
	ListRecent(ctx context.Context) ([]models.Decision, error)
	Get(ctx context.Context, id string) (models.Decision, error)
}

// Matcher filters decisions through a cohort rule
type Matcher struct {
	source DecisionSource
}

// NewMatcher creates a matcher over the given decision source
func NewMatcher(source DecisionSource) *Matcher {
	return &Matcher{source: source}
}

// Match returns the newest decisions the rule matches, up to limit. A
// non-positive limit falls back to the default page size.
func (m *Matcher) Match(ctx context.Context, rule models.CohortRule, limit int) ([]models.Decision, error) {
	if limit <= 0 {
		limit = pagination.DefaultLimit
	}

	decisions, err := m.source.ListRecent(ctx)
	if err != nil {
		return nil, err
	}

	matched := []models.Decision{}
	for _, d := range decisions {
		if !Evaluate(rule, d) {
			continue
		}
		matched = append(matched, d)
		if len(matched) >= limit {
			break
		}
	}

	return matched, nil
}

// Matches classifies a single decision against the rule
func (m *Matcher) Matches(ctx context.Context, rule models.CohortRule, decisionID string) (bool, error) {
	decision, err := m.source.Get(ctx, decisionID)
	if err != nil {
		return false, err
	}
	return Evaluate(rule, decision), nil
}
