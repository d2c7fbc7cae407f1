package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/depth-studio/depth-studio-api/internal/models"
	"github.com/depth-studio/depth-studio-api/internal/service"
	appErrors "github.com/depth-studio/depth-studio-api/pkg/errors"
	"github.com/depth-studio/depth-studio-api/pkg/response"
)

// PermissionHandler wires HTTP endpoints to the permission resolver.
type PermissionHandler struct {
	service *service.PermissionService
}

// NewPermissionHandler creates a new handler.
func NewPermissionHandler(svc *service.PermissionService) *PermissionHandler {
	return &PermissionHandler{service: svc}
}

// Resolve godoc
// @Summary Resolve capabilities
// @Description Resolve the caller's capabilities for a resource, optionally scoped to an instance
// @Tags Permissions
// @Produce json
// @Param resource query string true "Resource type: tasks, campaigns, brands or users"
// @Param resource_id query string false "Resource instance ID"
// @Param user_id query string false "Resolve for another user (super admin only)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /permissions/resolve [get]
func (h *PermissionHandler) Resolve(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	resource := c.Query("resource")
	if resource == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "resource is required"))
		return
	}

	userID := claims.UserID
	if target := c.Query("user_id"); target != "" && target != claims.UserID {
		if claims.Role != models.RoleSuperAdmin {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "cannot resolve permissions for another user"))
			return
		}
		userID = target
	}

	caps, err := h.service.Resolve(c.Request.Context(), userID, resource, c.Query("resource_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, caps, nil)
}
