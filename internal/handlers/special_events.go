package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"civitas/api_governance/internal/decisions"
	"civitas/api_governance/pkg/api/tribune"
	"civitas/api_governance/pkg/models"
	"civitas/api_governance/pkg/pagination"
)

// PreviewMatchingDecisions dry-runs a cohort rule against the decision
// collection without persisting anything
func PreviewMatchingDecisions(c *gin.Context) {
	var req tribune.PreviewDecisionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WithError(err).Warn("Invalid preview request")
		c.JSON(http.StatusBadRequest, tribune.ErrorResponse{Error: err.Error()})
		return
	}

	matched, err := matcher.Match(c.Request.Context(), req.Rule, req.Limit)
	if err != nil {
		logger.WithError(err).Error("Failed to preview matching decisions")
		c.JSON(http.StatusInternalServerError, tribune.ErrorResponse{Error: "Failed to preview matching decisions"})
		return
	}

	c.JSON(http.StatusOK, tribune.DecisionsResponse{Decisions: matched})
}

// GetSpecialEventDecisions matches a persisted special event's rule against
// the decision collection
func GetSpecialEventDecisions(c *gin.Context) {
	event, err := store.GetSpecialEvent(c.Request.Context(), c.Param("id"))
	if errors.Is(err, decisions.ErrNotFound) {
		c.JSON(http.StatusNotFound, tribune.ErrorResponse{Error: "Special event not found"})
		return
	}
	if err != nil {
		logger.WithError(err).Error("Failed to load special event")
		c.JSON(http.StatusInternalServerError, tribune.ErrorResponse{Error: "Failed to load special event"})
		return
	}

	params, err := pagination.ParseQuery(c.Query("limit"), "")
	if err != nil {
		c.JSON(http.StatusBadRequest, tribune.ErrorResponse{Error: err.Error()})
		return
	}

	matched, err := matcher.Match(c.Request.Context(), event.Rule, params.Limit)
	if err != nil {
		logger.WithError(err).Error("Failed to match special event decisions")
		c.JSON(http.StatusInternalServerError, tribune.ErrorResponse{Error: "Failed to match special event decisions"})
		return
	}

	c.JSON(http.StatusOK, tribune.DecisionsResponse{Decisions: matched})
}

// GetSpecialEvents lists the persisted special events
func GetSpecialEvents(c *gin.Context) {
	events, err := store.ListSpecialEvents(c.Request.Context())
	if err != nil {
		logger.WithError(err).Error("Failed to list special events")
		c.JSON(http.StatusInternalServerError, tribune.ErrorResponse{Error: "Failed to list special events"})
		return
	}
	if events == nil {
		events = []models.SpecialEvent{}
	}

	c.JSON(http.StatusOK, tribune.SpecialEventsResponse{SpecialEvents: events})
}

// MatchesSpecialEvent classifies a single decision against a special event's
// rule
func MatchesSpecialEvent(c *gin.Context) {
	event, err := store.GetSpecialEvent(c.Request.Context(), c.Param("id"))
	if errors.Is(err, decisions.ErrNotFound) {
		c.JSON(http.StatusNotFound, tribune.ErrorResponse{Error: "Special event not found"})
		return
	}
	if err != nil {
		logger.WithError(err).Error("Failed to load special event")
		c.JSON(http.StatusInternalServerError, tribune.ErrorResponse{Error: "Failed to load special event"})
		return
	}

	matches, err := matcher.Matches(c.Request.Context(), event.Rule, c.Param("decisionId"))
	if errors.Is(err, decisions.ErrNotFound) {
		c.JSON(http.StatusNotFound, tribune.ErrorResponse{Error: "Decision not found"})
		return
	}
	if err != nil {
		logger.WithError(err).Error("Failed to classify decision")
		c.JSON(http.StatusInternalServerError, tribune.ErrorResponse{Error: "Failed to classify decision"})
		return
	}

	c.JSON(http.StatusOK, tribune.MatchResponse{Matches: matches})
}
