package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/depth-studio/depth-studio-api/internal/models"
	"github.com/depth-studio/depth-studio-api/internal/service"
	appErrors "github.com/depth-studio/depth-studio-api/pkg/errors"
	"github.com/depth-studio/depth-studio-api/pkg/response"
)

type taskService interface {
	List(ctx context.Context, filter models.TaskFilter) ([]models.CampaignTask, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.CampaignTask, error)
	Create(ctx context.Context, req service.CreateTaskRequest) (*models.CampaignTask, error)
	Update(ctx context.Context, id string, req service.UpdateTaskRequest) (*models.CampaignTask, error)
	UpdateStatus(ctx context.Context, id string, req service.UpdateTaskStatusRequest) (*models.CampaignTask, error)
	Delete(ctx context.Context, id string) error
}

type taskAssignmentService interface {
	AssignManual(ctx context.Context, taskID, photographerID, assignedBy string) (*models.CampaignTask, error)
	AssignAuto(ctx context.Context, taskID, assignedBy string) (*models.CampaignTask, error)
	Unassign(ctx context.Context, taskID, unassignedBy, reason string) (*models.CampaignTask, error)
}

// TaskHandler wires HTTP endpoints to task CRUD and assignment services.
type TaskHandler struct {
	tasks       taskService
	assignments taskAssignmentService
}

// NewTaskHandler creates a new handler.
func NewTaskHandler(tasks taskService, assignments taskAssignmentService) *TaskHandler {
	return &TaskHandler{tasks: tasks, assignments: assignments}
}

// List godoc
// @Summary List tasks
// @Description List tasks with filtering and pagination
// @Tags Tasks
// @Produce json
// @Param campaign_id query string false "Filter by campaign"
// @Param assigned_photographer query string false "Filter by photographer"
// @Param status query string false "Filter by status"
// @Param search query string false "Free text search"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	filter := models.TaskFilter{
		CampaignID:           c.Query("campaign_id"),
		AssignedPhotographer: c.Query("assigned_photographer"),
		Search:               c.Query("search"),
		Page:                 queryInt(c, "page", 1),
		PageSize:             queryInt(c, "page_size", 20),
		SortBy:               c.Query("sort_by"),
		SortOrder:            c.Query("sort_order"),
	}
	if raw := c.Query("status"); raw != "" {
		status := models.TaskStatus(raw)
		filter.Status = &status
	}

	tasks, pagination, err := h.tasks.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tasks, pagination)
}

// Get godoc
// @Summary Get task
// @Description Fetch a single task with its status history
// @Tags Tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /tasks/{id} [get]
func (h *TaskHandler) Get(c *gin.Context) {
	task, err := h.tasks.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, task, nil)
}

// Create godoc
// @Summary Create task
// @Description Create a task inside a campaign
// @Tags Tasks
// @Accept json
// @Produce json
// @Param payload body service.CreateTaskRequest true "Task payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid task payload"))
		return
	}
	req.CreatedBy = claims.UserID

	task, err := h.tasks.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, task)
}

// Update godoc
// @Summary Update task
// @Description Update descriptive task fields
// @Tags Tasks
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param payload body service.UpdateTaskRequest true "Task payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /tasks/{id} [put]
func (h *TaskHandler) Update(c *gin.Context) {
	var req service.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid task payload"))
		return
	}

	task, err := h.tasks.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, task, nil)
}

// UpdateStatus godoc
// @Summary Update task status
// @Description Move a task through the production state machine
// @Tags Tasks
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param payload body service.UpdateTaskStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /tasks/{id}/status [patch]
func (h *TaskHandler) UpdateStatus(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.UpdateTaskStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid status payload"))
		return
	}
	req.UpdatedBy = claims.UserID

	task, err := h.tasks.UpdateStatus(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, task, nil)
}

// Delete godoc
// @Summary Delete task
// @Description Remove a task and refresh its campaign rollup
// @Tags Tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	if err := h.tasks.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Assign godoc
// @Summary Assign photographer
// @Description Manually assign a photographer to a task
// @Tags Tasks
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param payload body map[string]string true "Photographer ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /tasks/{id}/assign [post]
func (h *TaskHandler) Assign(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var payload struct {
		PhotographerID string `json:"photographer_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "photographer_id required"))
		return
	}

	task, err := h.assignments.AssignManual(c.Request.Context(), c.Param("id"), payload.PhotographerID, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"success":     true,
		"assigned_to": task.AssignedPhotographer,
		"task":        task,
	}, nil)
}

// AutoAssign godoc
// @Summary Auto-assign photographer
// @Description Assign the least-loaded active photographer to a task
// @Tags Tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /tasks/{id}/auto-assign [post]
func (h *TaskHandler) AutoAssign(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	task, err := h.assignments.AssignAuto(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"success":     true,
		"assigned_to": task.AssignedPhotographer,
		"task":        task,
	}, nil)
}

// Unassign godoc
// @Summary Unassign photographer
// @Description Remove the assigned photographer and reset the task to pending
// @Tags Tasks
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param payload body map[string]string false "Unassign reason"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /tasks/{id}/unassign [post]
func (h *TaskHandler) Unassign(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var payload struct {
		Reason string `json:"reason"`
	}
	// Body is optional.
	_ = c.ShouldBindJSON(&payload)

	task, err := h.assignments.Unassign(c.Request.Context(), c.Param("id"), claims.UserID, payload.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	reason := payload.Reason
	if len(task.StatusHistory) > 0 {
		reason = task.StatusHistory[len(task.StatusHistory)-1].Notes
	}
	response.JSON(c, http.StatusOK, gin.H{
		"success": true,
		"reason":  reason,
		"task":    task,
	}, nil)
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
