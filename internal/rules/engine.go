// Package rules evaluates cohort rules against decision records.
package rules

import (
	"strings"

	"civitas/api_governance/pkg/models"
)

// predicate is one populated clause bound to its match logic
type predicate func(models.Decision) bool

// Evaluate applies the rule's populated clauses to the decision. Unset
// clauses are excluded entirely rather than treated as vacuously true, so a
// rule with no clauses matches nothing.
func Evaluate(rule models.CohortRule, decision models.Decision) bool {
	predicates := collectPredicates(rule)
	if len(predicates) == 0 {
		return false
	}

	if rule.EffectiveOperator() == models.OperatorOr {
		for _, p := range predicates {
			if p(decision) {
				return true
			}
		}
		return false
	}

	for _, p := range predicates {
		if !p(decision) {
			return false
		}
	}
	return true
}

func collectPredicates(rule models.CohortRule) []predicate {
	var predicates []predicate

	if len(rule.CategoryIDs) > 0 {
		ids := rule.CategoryIDs
		predicates = append(predicates, func(d models.Decision) bool {
			return intersects(d.CategoryIDs, ids)
		})
	}
	if rule.TitleContains != nil && *rule.TitleContains != "" {
		needle := *rule.TitleContains
		predicates = append(predicates, func(d models.Decision) bool {
			return containsFold(d.Title, needle)
		})
	}
	if len(rule.TitleKeywords) > 0 {
		keywords := rule.TitleKeywords
		predicates = append(predicates, func(d models.Decision) bool {
			return anyKeywordFold(d.Title, keywords)
		})
	}
	if rule.DescriptionContains != nil && *rule.DescriptionContains != "" {
		needle := *rule.DescriptionContains
		predicates = append(predicates, func(d models.Decision) bool {
			return containsFold(d.Description, needle)
		})
	}
	if len(rule.DescriptionKeywords) > 0 {
		keywords := rule.DescriptionKeywords
		predicates = append(predicates, func(d models.Decision) bool {
			return anyKeywordFold(d.Description, keywords)
		})
	}
	if len(rule.Types) > 0 {
		types := rule.Types
		predicates = append(predicates, func(d models.Decision) bool {
			return contains(types, d.Type)
		})
	}
	if rule.DeciderContains != nil && *rule.DeciderContains != "" {
		needle := *rule.DeciderContains
		predicates = append(predicates, func(d models.Decision) bool {
			return containsFold(d.Decider, needle)
		})
	}
	if len(rule.Sentiments) > 0 {
		sentiments := rule.Sentiments
		predicates = append(predicates, func(d models.Decision) bool {
			return contains(sentiments, d.Sentiment)
		})
	}
	if len(rule.LegacyDomains) > 0 {
		domains := rule.LegacyDomains
		predicates = append(predicates, func(d models.Decision) bool {
			return intersects(d.LegacyDomains, domains)
		})
	}
	if rule.CreatedAfter != nil {
		after := *rule.CreatedAfter
		predicates = append(predicates, func(d models.Decision) bool {
			return !d.CreatedAt.Before(after)
		})
	}
	if rule.CreatedBefore != nil {
		before := *rule.CreatedBefore
		predicates = append(predicates, func(d models.Decision) bool {
			return !d.CreatedAt.After(before)
		})
	}

	return predicates
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func anyKeywordFold(haystack string, keywords []string) bool {
	lowered := strings.ToLower(haystack)
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

func contains(set []string, value string) bool {
	for _, v := range set {
		if v == value {
			return true
		}
	}
	return false
}

func intersects(a, b []string) bool {
	for _, v := range a {
		if contains(b, v) {
			return true
		}
	}
	return false
}
