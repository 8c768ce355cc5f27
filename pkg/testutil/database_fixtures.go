package testutil

import (
	"time"

	"civitas/api_governance/pkg/models"
)

// DatabaseFixtures provides test data fixtures for database testing
type DatabaseFixtures struct{}

// NewDatabaseFixtures creates a new database fixtures helper
func NewDatabaseFixtures() *DatabaseFixtures {
	return &DatabaseFixtures{}
}

// Decisions returns a small decision collection ordered newest first
func (f *DatabaseFixtures) Decisions() []models.Decision {
	base := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	return []models.Decision{
		{
			ID:            "dec-3",
			Title:         "Budget amendment vote",
			Description:   "Contested amendment to the transport budget.",
			CategoryIDs:   []string{"cat-finance"},
			Type:          "vote",
			Decider:       "Assemblée",
			Sentiment:     "negative",
			LegacyDomains: []string{"finance", "transport"},
			CreatedAt:     base.Add(2 * time.Hour),
		},
		{
			ID:            "dec-2",
			Title:         "Park renovation approved",
			Description:   "Central park renovation begins this autumn.",
			CategoryIDs:   []string{"cat-urbanism"},
			Type:          "approval",
			Decider:       "Conseil Municipal",
			Sentiment:     "positive",
			LegacyDomains: []string{"urbanism"},
			CreatedAt:     base.Add(time.Hour),
		},
		{
			ID:            "dec-1",
			Title:         "Budget 2026 announcement",
			Description:   "The finance committee presents the annual budget.",
			CategoryIDs:   []string{"cat-finance", "cat-politics"},
			Type:          "announcement",
			Decider:       "Conseil Municipal",
			Sentiment:     "positive",
			LegacyDomains: []string{"finance"},
			CreatedAt:     base,
		},
	}
}

// PendingEvolution returns a pending evolution fixture for the category
func (f *DatabaseFixtures) PendingEvolution(category models.EvolutionCategory) models.Evolution {
	created := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)
	return models.Evolution{
		ID:          "evo-pending-1",
		Category:    category,
		Description: "Test evolution",
		Status:      models.StatusPending,
		ProposedBy:  "user-1",
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}

// EditorUser returns a user fixture holding the elevated role
func (f *DatabaseFixtures) EditorUser() models.User {
	return models.User{
		ID:          "editor-1",
		Email:       "editor@example.org",
		DisplayName: "Test Editor",
		Role:        models.RoleEditeur,
		IsActive:    true,
	}
}

// CitizenUser returns a user fixture holding the base role
func (f *DatabaseFixtures) CitizenUser() models.User {
	return models.User{
		ID:          "citizen-1",
		Email:       "citizen@example.org",
		DisplayName: "Test Citizen",
		Role:        models.RoleCitoyen,
		IsActive:    true,
	}
}
