package handlers

import (
	"database/sql"

	"github.com/prometheus/client_golang/prometheus"

	"civitas/api_governance/internal/decisions"
	"civitas/api_governance/internal/governance"
	"civitas/api_governance/internal/rules"
	"civitas/api_governance/pkg/logging"
)

var (
	logger     logging.Logger
	service    *governance.Service
	store      *decisions.Store
	matcher    *rules.Matcher
	operations *prometheus.CounterVec
)

// Init initializes the handlers with their collaborators
func Init(database *sql.DB, log logging.Logger) {
	logger = log
	service = governance.NewService(database, log)
	store = decisions.NewStore(database)
	matcher = rules.NewMatcher(store)
}

// WireMetrics attaches the operation counter created by the entrypoint.
// Handlers work without it, so tests can skip metric setup.
func WireMetrics(ops *prometheus.CounterVec) {
	operations = ops
}

func countOperation(operation, status string) {
	if operations != nil {
		operations.WithLabelValues(operation, status).Inc()
	}
}
