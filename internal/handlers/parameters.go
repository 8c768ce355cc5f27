package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"civitas/api_governance/pkg/api/tribune"
)

// GetVoteParameters returns the effective vote configuration: the active
// vote_parameters override merged over the compiled-in defaults
func GetVoteParameters(c *gin.Context) {
	params, err := service.ResolveVoteParameters(c.Request.Context())
	if err != nil {
		logger.WithError(err).Error("Failed to resolve vote parameters")
		c.JSON(http.StatusInternalServerError, tribune.ErrorResponse{Error: "Failed to resolve vote parameters"})
		return
	}

	c.JSON(http.StatusOK, tribune.VoteParametersResponse{Parameters: params})
}

// GetCredibilityRules returns the effective credibility scoring configuration
func GetCredibilityRules(c *gin.Context) {
	rules, err := service.ResolveCredibilityRules(c.Request.Context())
	if err != nil {
		logger.WithError(err).Error("Failed to resolve credibility rules")
		c.JSON(http.StatusInternalServerError, tribune.ErrorResponse{Error: "Failed to resolve credibility rules"})
		return
	}

	c.JSON(http.StatusOK, tribune.CredibilityRulesResponse{Rules: rules})
}

// GetRolePermissions returns the effective role capability configuration
func GetRolePermissions(c *gin.Context) {
	perms, err := service.ResolveRolePermissions(c.Request.Context())
	if err != nil {
		logger.WithError(err).Error("Failed to resolve role permissions")
		c.JSON(http.StatusInternalServerError, tribune.ErrorResponse{Error: "Failed to resolve role permissions"})
		return
	}

	c.JSON(http.StatusOK, tribune.RolePermissionsResponse{Permissions: perms})
}
