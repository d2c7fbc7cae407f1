package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/depth-studio/depth-studio-api/internal/models"
	"github.com/depth-studio/depth-studio-api/internal/service"
	appErrors "github.com/depth-studio/depth-studio-api/pkg/errors"
	"github.com/depth-studio/depth-studio-api/pkg/response"
)

// BrandHandler wires HTTP endpoints to the brand service.
type BrandHandler struct {
	service *service.BrandService
}

// NewBrandHandler creates a new handler.
func NewBrandHandler(svc *service.BrandService) *BrandHandler {
	return &BrandHandler{service: svc}
}

// Search godoc
// @Summary Search brands
// @Description Search brands with filters and pagination
// @Tags Brands
// @Produce json
// @Param search query string false "Free text search"
// @Param brand_type query string false "Filter by type"
// @Param industry query string false "Filter by industry"
// @Param status query string false "Filter by status"
// @Param has_coordinator query bool false "Filter by coordinator presence"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /brands [get]
func (h *BrandHandler) Search(c *gin.Context) {
	filter := models.BrandFilter{
		Search:    c.Query("search"),
		BrandType: c.Query("brand_type"),
		Industry:  c.Query("industry"),
		Page:      queryInt(c, "page", 1),
		PageSize:  queryInt(c, "page_size", 20),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	if raw := c.Query("status"); raw != "" {
		status := models.BrandStatus(raw)
		filter.Status = &status
	}
	if raw := c.Query("has_coordinator"); raw != "" {
		has := raw == "true"
		filter.HasCoordinator = &has
	}

	brands, pagination, err := h.service.Search(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, brands, pagination)
}

// Get godoc
// @Summary Get brand
// @Tags Brands
// @Produce json
// @Param id path string true "Brand ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /brands/{id} [get]
func (h *BrandHandler) Get(c *gin.Context) {
	brand, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, brand, nil)
}

// Create godoc
// @Summary Create brand
// @Tags Brands
// @Accept json
// @Produce json
// @Param payload body service.CreateBrandRequest true "Brand payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /brands [post]
func (h *BrandHandler) Create(c *gin.Context) {
	var req service.CreateBrandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid brand payload"))
		return
	}

	brand, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, brand)
}

// Update godoc
// @Summary Update brand
// @Tags Brands
// @Accept json
// @Produce json
// @Param id path string true "Brand ID"
// @Param payload body service.UpdateBrandRequest true "Brand payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /brands/{id} [put]
func (h *BrandHandler) Update(c *gin.Context) {
	var req service.UpdateBrandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid brand payload"))
		return
	}

	brand, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, brand, nil)
}

// AssignCoordinator godoc
// @Summary Assign brand coordinator
// @Description Link an active brand coordinator to the brand
// @Tags Brands
// @Accept json
// @Produce json
// @Param id path string true "Brand ID"
// @Param payload body map[string]string true "User ID"
// @Success 204 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /brands/{id}/coordinator [post]
func (h *BrandHandler) AssignCoordinator(c *gin.Context) {
	var payload struct {
		UserID string `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "user_id required"))
		return
	}

	if err := h.service.AssignCoordinator(c.Request.Context(), c.Param("id"), payload.UserID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
