package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/depth-studio/depth-studio-api/internal/dto"
	"github.com/depth-studio/depth-studio-api/internal/models"
	appErrors "github.com/depth-studio/depth-studio-api/pkg/errors"
	"github.com/depth-studio/depth-studio-api/pkg/response"
)

type dashboardService interface {
	Admin(ctx context.Context) (*dto.AdminDashboardResponse, bool, error)
	Photographer(ctx context.Context, photographerID string) (*dto.PhotographerDashboardResponse, bool, error)
}

// DashboardHandler wires HTTP endpoints to dashboard composition.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler creates a new handler.
func NewDashboardHandler(svc dashboardService) *DashboardHandler {
	return &DashboardHandler{service: svc}
}

// Admin godoc
// @Summary Admin dashboard
// @Description Aggregated platform overview for admins and coordinators
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/admin [get]
func (h *DashboardHandler) Admin(c *gin.Context) {
	summary, cached, err := h.service.Admin(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil, map[string]interface{}{"cached": cached})
}

// Photographer godoc
// @Summary Photographer dashboard
// @Description Home payload for the authenticated photographer
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/photographer [get]
func (h *DashboardHandler) Photographer(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	photographerID := claims.UserID
	if target := c.Query("photographer_id"); target != "" && target != claims.UserID {
		if claims.Role != models.RoleSuperAdmin && claims.Role != models.RoleMarketingCoordinator {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "cannot view another photographer's dashboard"))
			return
		}
		photographerID = target
	}

	summary, cached, err := h.service.Photographer(c.Request.Context(), photographerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil, map[string]interface{}{"cached": cached})
}
