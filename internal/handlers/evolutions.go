package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"civitas/api_governance/internal/governance"
	"civitas/api_governance/pkg/api/tribune"
	"civitas/api_governance/pkg/ctxkeys"
	"civitas/api_governance/pkg/models"
	"civitas/api_governance/pkg/pagination"
)

// identityFrom returns the authenticated user id set by the JWT middleware
func identityFrom(c *gin.Context) string {
	return c.GetString(string(ctxkeys.KeyUserID))
}

// writeLifecycleError maps the governance error taxonomy onto HTTP statuses
func writeLifecycleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, governance.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, tribune.ErrorResponse{Error: "Authentication required"})
	case errors.Is(err, governance.ErrUserNotFound):
		c.JSON(http.StatusUnauthorized, tribune.ErrorResponse{Error: "Unknown platform user"})
	case errors.Is(err, governance.ErrForbidden):
		c.JSON(http.StatusForbidden, tribune.ErrorResponse{Error: "Must be an editor to process evolutions"})
	case errors.Is(err, governance.ErrNotFound):
		c.JSON(http.StatusNotFound, tribune.ErrorResponse{Error: "Evolution not found"})
	case errors.Is(err, governance.ErrAlreadyProcessed):
		c.JSON(http.StatusConflict, tribune.ErrorResponse{Error: "Evolution has already been processed"})
	case errors.Is(err, governance.ErrInvalidCategory):
		c.JSON(http.StatusBadRequest, tribune.ErrorResponse{Error: err.Error()})
	default:
		logger.WithError(err).Error("Evolution operation failed")
		c.JSON(http.StatusInternalServerError, tribune.ErrorResponse{Error: "Internal server error"})
	}
}

// ProposeEvolution creates a pending configuration evolution
func ProposeEvolution(c *gin.Context) {
	var req tribune.ProposeEvolutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WithError(err).Warn("Invalid propose evolution request")
		c.JSON(http.StatusBadRequest, tribune.ErrorResponse{Error: err.Error()})
		return
	}

	id, err := service.Propose(c.Request.Context(), identityFrom(c), governance.ProposeInput{
		Category:    req.Category,
		Description: req.Description,
		Changes:     req.Changes,
		ProposalID:  req.ProposalID,
	})
	if err != nil {
		countOperation("propose", "error")
		writeLifecycleError(c, err)
		return
	}

	countOperation("propose", "success")
	c.JSON(http.StatusCreated, tribune.ProposeEvolutionResponse{ID: id})
}

// ApproveEvolution promotes a pending evolution to active, superseding any
// prior active evolution of the category
func ApproveEvolution(c *gin.Context) {
	err := service.ApproveAndApply(c.Request.Context(), identityFrom(c), c.Param("id"))
	if err != nil {
		countOperation("approve", "error")
		writeLifecycleError(c, err)
		return
	}

	countOperation("approve", "success")
	c.JSON(http.StatusOK, tribune.SuccessResponse{Success: true})
}

// RejectEvolution marks a pending evolution as rejected
func RejectEvolution(c *gin.Context) {
	err := service.Reject(c.Request.Context(), identityFrom(c), c.Param("id"))
	if err != nil {
		countOperation("reject", "error")
		writeLifecycleError(c, err)
		return
	}

	countOperation("reject", "success")
	c.JSON(http.StatusOK, tribune.SuccessResponse{Success: true})
}

// GetActiveEvolutions returns the active evolutions, optionally narrowed to
// one category via ?category=
func GetActiveEvolutions(c *gin.Context) {
	category := models.EvolutionCategory(c.Query("category"))
	if category != "" && !category.Valid() {
		c.JSON(http.StatusBadRequest, tribune.ErrorResponse{Error: "Unknown category"})
		return
	}

	evolutions, err := service.ListActive(c.Request.Context(), category)
	if err != nil {
		logger.WithError(err).Error("Failed to list active evolutions")
		c.JSON(http.StatusInternalServerError, tribune.ErrorResponse{Error: "Failed to list active evolutions"})
		return
	}
	if evolutions == nil {
		evolutions = []models.Evolution{}
	}

	c.JSON(http.StatusOK, tribune.ActiveEvolutionsResponse{Evolutions: evolutions})
}

// GetAllEvolutions returns evolutions filtered by ?status= and ?category=,
// newest first, with actor display names
func GetAllEvolutions(c *gin.Context) {
	status := models.EvolutionStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		c.JSON(http.StatusBadRequest, tribune.ErrorResponse{Error: "Unknown status"})
		return
	}
	category := models.EvolutionCategory(c.Query("category"))
	if category != "" && !category.Valid() {
		c.JSON(http.StatusBadRequest, tribune.ErrorResponse{Error: "Unknown category"})
		return
	}

	params, err := pagination.ParseQuery(c.Query("limit"), "")
	if err != nil {
		c.JSON(http.StatusBadRequest, tribune.ErrorResponse{Error: err.Error()})
		return
	}

	evolutions, err := service.ListAll(c.Request.Context(), governance.ListFilter{
		Status:   status,
		Category: category,
		Limit:    params.Limit,
	})
	if err != nil {
		logger.WithError(err).Error("Failed to list evolutions")
		c.JSON(http.StatusInternalServerError, tribune.ErrorResponse{Error: "Failed to list evolutions"})
		return
	}
	if evolutions == nil {
		evolutions = []models.EnrichedEvolution{}
	}

	c.JSON(http.StatusOK, tribune.ListEvolutionsResponse{Evolutions: evolutions})
}
