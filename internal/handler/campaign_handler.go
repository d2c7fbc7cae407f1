package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/depth-studio/depth-studio-api/internal/models"
	"github.com/depth-studio/depth-studio-api/internal/service"
	appErrors "github.com/depth-studio/depth-studio-api/pkg/errors"
	"github.com/depth-studio/depth-studio-api/pkg/response"
)

// CampaignHandler wires HTTP endpoints to campaign services.
type CampaignHandler struct {
	campaigns *service.CampaignService
	progress  *service.ProgressService
	exports   *service.ExportService
}

// NewCampaignHandler creates a new handler.
func NewCampaignHandler(campaigns *service.CampaignService, progress *service.ProgressService, exports *service.ExportService) *CampaignHandler {
	return &CampaignHandler{campaigns: campaigns, progress: progress, exports: exports}
}

// List godoc
// @Summary List campaigns
// @Tags Campaigns
// @Produce json
// @Param brand_id query string false "Filter by brand"
// @Param status query string false "Filter by status"
// @Param search query string false "Free text search"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /campaigns [get]
func (h *CampaignHandler) List(c *gin.Context) {
	filter := models.CampaignFilter{
		BrandID:   c.Query("brand_id"),
		Search:    c.Query("search"),
		Page:      queryInt(c, "page", 1),
		PageSize:  queryInt(c, "page_size", 20),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	if raw := c.Query("status"); raw != "" {
		status := models.CampaignStatus(raw)
		filter.Status = &status
	}

	campaigns, pagination, err := h.campaigns.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, campaigns, pagination)
}

// Get godoc
// @Summary Get campaign
// @Tags Campaigns
// @Produce json
// @Param id path string true "Campaign ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /campaigns/{id} [get]
func (h *CampaignHandler) Get(c *gin.Context) {
	campaign, err := h.campaigns.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, campaign, nil)
}

// Create godoc
// @Summary Create campaign
// @Tags Campaigns
// @Accept json
// @Produce json
// @Param payload body service.CreateCampaignRequest true "Campaign payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /campaigns [post]
func (h *CampaignHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid campaign payload"))
		return
	}
	req.CreatedBy = claims.UserID

	campaign, err := h.campaigns.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, campaign)
}

// Update godoc
// @Summary Update campaign
// @Tags Campaigns
// @Accept json
// @Produce json
// @Param id path string true "Campaign ID"
// @Param payload body service.UpdateCampaignRequest true "Campaign payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /campaigns/{id} [put]
func (h *CampaignHandler) Update(c *gin.Context) {
	var req service.UpdateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid campaign payload"))
		return
	}

	campaign, err := h.campaigns.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, campaign, nil)
}

// UpdateStatus godoc
// @Summary Update campaign status
// @Description Move a campaign through its lifecycle
// @Tags Campaigns
// @Accept json
// @Produce json
// @Param id path string true "Campaign ID"
// @Param payload body map[string]string true "New status"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /campaigns/{id}/status [patch]
func (h *CampaignHandler) UpdateStatus(c *gin.Context) {
	var payload struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "status required"))
		return
	}

	campaign, err := h.campaigns.UpdateStatus(c.Request.Context(), c.Param("id"), models.CampaignStatus(payload.Status))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, campaign, nil)
}

// Delete godoc
// @Summary Delete campaign
// @Tags Campaigns
// @Produce json
// @Param id path string true "Campaign ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /campaigns/{id} [delete]
func (h *CampaignHandler) Delete(c *gin.Context) {
	if err := h.campaigns.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// RecomputeProgress godoc
// @Summary Recompute campaign progress
// @Description Rebuild the derived progress rollup from child tasks
// @Tags Campaigns
// @Produce json
// @Param id path string true "Campaign ID"
// @Success 200 {object} response.Envelope
// @Router /campaigns/{id}/progress/recompute [post]
func (h *CampaignHandler) RecomputeProgress(c *gin.Context) {
	rollup, err := h.progress.Recompute(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if rollup == nil {
		response.JSON(c, http.StatusOK, gin.H{"message": "campaign has no tasks, rollup unchanged"}, nil)
		return
	}
	response.JSON(c, http.StatusOK, rollup, nil)
}

// Export godoc
// @Summary Export campaign report
// @Description Download the campaign task breakdown as CSV or PDF
// @Tags Campaigns
// @Produce octet-stream
// @Param id path string true "Campaign ID"
// @Param format query string false "csv or pdf"
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Router /campaigns/{id}/export [get]
func (h *CampaignHandler) Export(c *gin.Context) {
	format := service.ReportFormat(c.DefaultQuery("format", "csv"))
	result, err := h.exports.CampaignReport(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	c.Data(http.StatusOK, result.ContentType, result.Payload)
}
