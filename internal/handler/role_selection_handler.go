package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/depth-studio/depth-studio-api/internal/models"
	"github.com/depth-studio/depth-studio-api/internal/service"
	appErrors "github.com/depth-studio/depth-studio-api/pkg/errors"
	"github.com/depth-studio/depth-studio-api/pkg/response"
)

type roleSelectionService interface {
	Submit(ctx context.Context, req service.SubmitRoleSelectionRequest) (*service.SubmitResult, error)
	Approve(ctx context.Context, applicationID, approvedBy, adminNotes string) (*models.RoleSelection, error)
	Reject(ctx context.Context, applicationID, rejectedBy, reason, adminNotes string) (*models.RoleSelection, error)
	ListPending(ctx context.Context, filter models.RoleSelectionFilter) ([]models.RoleSelection, error)
	History(ctx context.Context, userID string) ([]models.RoleSelection, error)
	Stats(ctx context.Context) (*models.RoleSelectionStats, error)
	SearchBrands(ctx context.Context, filter models.BrandFilter) ([]models.Brand, *models.Pagination, error)
}

// RoleSelectionHandler wires HTTP endpoints to the role-selection workflow.
type RoleSelectionHandler struct {
	service roleSelectionService
}

// NewRoleSelectionHandler creates a new handler.
func NewRoleSelectionHandler(svc roleSelectionService) *RoleSelectionHandler {
	return &RoleSelectionHandler{service: svc}
}

// Submit godoc
// @Summary Submit role application
// @Description Apply for a platform role; requirement violations return success=false
// @Tags RoleSelection
// @Accept json
// @Produce json
// @Param payload body service.SubmitRoleSelectionRequest true "Application payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /role-selections [post]
func (h *RoleSelectionHandler) Submit(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.SubmitRoleSelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid application payload"))
		return
	}
	if req.UserID == "" {
		req.UserID = claims.UserID
	}
	if req.UserID != claims.UserID && claims.Role != models.RoleSuperAdmin {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "cannot apply on behalf of another user"))
		return
	}

	result, err := h.service.Submit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// ListPending godoc
// @Summary List pending applications
// @Description List applications awaiting review
// @Tags RoleSelection
// @Produce json
// @Param role query string false "Filter by applied role"
// @Param sort_by query string false "Sort column"
// @Param sort_order query string false "asc or desc"
// @Param limit query int false "Max rows"
// @Success 200 {object} response.Envelope
// @Router /role-selections/pending [get]
func (h *RoleSelectionHandler) ListPending(c *gin.Context) {
	filter := models.RoleSelectionFilter{
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
		Limit:     queryInt(c, "limit", 0),
	}
	if raw := c.Query("role"); raw != "" {
		role := models.UserRole(raw)
		filter.Role = &role
	}

	selections, err := h.service.ListPending(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, selections, nil)
}

// History godoc
// @Summary Application history
// @Description List a user's past role applications
// @Tags RoleSelection
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} response.Envelope
// @Router /users/{id}/role-selections [get]
func (h *RoleSelectionHandler) History(c *gin.Context) {
	selections, err := h.service.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, selections, nil)
}

// Stats godoc
// @Summary Application statistics
// @Description Aggregate application volumes and approval metrics
// @Tags RoleSelection
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /role-selections/stats [get]
func (h *RoleSelectionHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// Approve godoc
// @Summary Approve application
// @Description Approve a pending application and activate the applied role
// @Tags RoleSelection
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body map[string]string false "Admin notes"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /role-selections/{id}/approve [patch]
func (h *RoleSelectionHandler) Approve(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var payload struct {
		AdminNotes string `json:"admin_notes"`
	}
	_ = c.ShouldBindJSON(&payload)

	selection, err := h.service.Approve(c.Request.Context(), c.Param("id"), claims.UserID, payload.AdminNotes)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"success":        true,
		"message":        "application approved",
		"role_selection": selection,
	}, nil)
}

// Reject godoc
// @Summary Reject application
// @Description Reject a pending application with a reason
// @Tags RoleSelection
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body map[string]string true "Rejection reason"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /role-selections/{id}/reject [patch]
func (h *RoleSelectionHandler) Reject(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var payload struct {
		Reason     string `json:"reason" binding:"required"`
		AdminNotes string `json:"admin_notes"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "rejection reason required"))
		return
	}

	selection, err := h.service.Reject(c.Request.Context(), c.Param("id"), claims.UserID, payload.Reason, payload.AdminNotes)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"success":        true,
		"message":        "application rejected",
		"role_selection": selection,
	}, nil)
}

// SearchBrands godoc
// @Summary Search brands for applicants
// @Description Search brands while filling a brand coordinator application
// @Tags RoleSelection
// @Produce json
// @Param search query string false "Free text search"
// @Param brand_type query string false "Filter by type"
// @Param industry query string false "Filter by industry"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /role-selections/brands [get]
func (h *RoleSelectionHandler) SearchBrands(c *gin.Context) {
	filter := models.BrandFilter{
		Search:    c.Query("search"),
		BrandType: c.Query("brand_type"),
		Industry:  c.Query("industry"),
		Page:      queryInt(c, "page", 1),
		PageSize:  queryInt(c, "page_size", 20),
	}
	if raw := c.Query("status"); raw != "" {
		status := models.BrandStatus(raw)
		filter.Status = &status
	}
	if raw := c.Query("has_coordinator"); raw != "" {
		has := raw == "true"
		filter.HasCoordinator = &has
	}

	brands, pagination, err := h.service.SearchBrands(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, brands, pagination)
}
