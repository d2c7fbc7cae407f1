package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/depth-studio/depth-studio-api/internal/models"
	appErrors "github.com/depth-studio/depth-studio-api/pkg/errors"
)

type taskRepo interface {
	List(ctx context.Context, filter models.TaskFilter) ([]models.CampaignTask, int, error)
	FindByID(ctx context.Context, id string) (*models.CampaignTask, error)
	Create(ctx context.Context, task *models.CampaignTask) error
	Update(ctx context.Context, task *models.CampaignTask) error
	UpdateStatus(ctx context.Context, task *models.CampaignTask, expectedStatus models.TaskStatus) error
	UpdateAssignment(ctx context.Context, task *models.CampaignTask, expectedStatus models.TaskStatus) error
	Delete(ctx context.Context, id string) error
}

type taskCampaignRepo interface {
	FindByID(ctx context.Context, id string) (*models.Campaign, error)
}

type progressRecomputer interface {
	Recompute(ctx context.Context, campaignID string) (*models.ProgressRollup, error)
}

// CreateTaskRequest creates a new task inside a campaign.
type CreateTaskRequest struct {
	CampaignID  string     `json:"campaign_id" validate:"required"`
	Title       string     `json:"title" validate:"required,min=2,max=200"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	CreatedBy   string     `json:"-"`
}

// UpdateTaskRequest updates descriptive task fields. Assignment and status
// move through their own operations.
type UpdateTaskRequest struct {
	Title       *string    `json:"title" validate:"omitempty,min=2,max=200"`
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"due_date"`
}

// UpdateTaskStatusRequest moves a task through the production state machine.
type UpdateTaskStatusRequest struct {
	Status    string   `json:"status" validate:"required"`
	Notes     string   `json:"notes"`
	UpdatedBy string   `json:"-"`
	Progress  *float64 `json:"progress_percentage" validate:"omitempty,min=0,max=100"`
}

// TaskService manages campaign task CRUD and status transitions. Any change
// that affects task counts or completion refreshes the campaign rollup.
type TaskService struct {
	tasks     taskRepo
	campaigns taskCampaignRepo
	progress  progressRecomputer
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTaskService constructs a TaskService.
func NewTaskService(tasks taskRepo, campaigns taskCampaignRepo, progress progressRecomputer, validate *validator.Validate, logger *zap.Logger) *TaskService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskService{tasks: tasks, campaigns: campaigns, progress: progress, validator: validate, logger: logger}
}

// List returns tasks matching the filter with pagination metadata.
func (s *TaskService) List(ctx context.Context, filter models.TaskFilter) ([]models.CampaignTask, *models.Pagination, error) {
	tasks, total, err := s.tasks.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list tasks")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return tasks, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a single task.
func (s *TaskService) Get(ctx context.Context, id string) (*models.CampaignTask, error) {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "task not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load task")
	}
	return task, nil
}

// Create adds a task to a campaign and refreshes the campaign rollup.
func (s *TaskService) Create(ctx context.Context, req CreateTaskRequest) (*models.CampaignTask, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid task payload")
	}

	if _, err := s.campaigns.FindByID(ctx, req.CampaignID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "campaign not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load campaign")
	}

	now := time.Now().UTC()
	task := &models.CampaignTask{
		CampaignID:    req.CampaignID,
		Title:         req.Title,
		CurrentStatus: models.TaskStatusPending,
		StatusHistory: models.StatusHistory{{
			Status:    models.TaskStatusPending,
			UpdatedBy: req.CreatedBy,
			UpdatedAt: now,
			Notes:     "Task created",
		}},
		DueDate:   req.DueDate,
		CreatedBy: req.CreatedBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Description != "" {
		task.Description = &req.Description
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create task")
	}

	s.recompute(ctx, task.CampaignID)
	return task, nil
}

// Update applies descriptive changes to a task.
func (s *TaskService) Update(ctx context.Context, id string, req UpdateTaskRequest) (*models.CampaignTask, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid task payload")
	}

	task, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = req.Description
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}
	task.UpdatedAt = time.Now().UTC()

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update task")
	}
	return task, nil
}

// UpdateStatus transitions a task through the production state machine and
// appends the change to the audit history. A transition performed against a
// stale snapshot conflicts instead of clobbering.
func (s *TaskService) UpdateStatus(ctx context.Context, id string, req UpdateTaskStatusRequest) (*models.CampaignTask, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}

	task, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	next := models.TaskStatus(req.Status)
	if !task.CurrentStatus.CanTransitionTo(next) {
		return nil, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("cannot transition task from %s to %s", task.CurrentStatus, next))
	}
	if next.RequiresAssignee() && task.AssignedPhotographer == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "task must be assigned before entering this status")
	}

	previous := task.CurrentStatus
	now := time.Now().UTC()
	task.CurrentStatus = next
	task.UpdatedAt = now
	if req.Progress != nil {
		task.ProgressPercentage = *req.Progress
	}
	if next == models.TaskStatusCompleted {
		task.ProgressPercentage = 100
	}
	task.StatusHistory = append(task.StatusHistory, models.StatusHistoryEntry{
		Status:    next,
		UpdatedBy: req.UpdatedBy,
		UpdatedAt: now,
		Notes:     req.Notes,
	})

	// Cancellation releases the photographer: a cancelled task never keeps
	// an assignee. The assignment write carries the status change so the
	// stale-snapshot guard still applies.
	var writeErr error
	if next == models.TaskStatusCancelled && task.AssignedPhotographer != nil {
		task.AssignedPhotographer = nil
		task.AssignedBy = nil
		task.AssignedAt = nil
		task.AssignmentMethod = nil
		writeErr = s.tasks.UpdateAssignment(ctx, task, previous)
	} else {
		writeErr = s.tasks.UpdateStatus(ctx, task, previous)
	}
	if writeErr != nil {
		if writeErr == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrConflict, "task was modified concurrently")
		}
		return nil, appErrors.Wrap(writeErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update task status")
	}

	s.recompute(ctx, task.CampaignID)
	return task, nil
}

// Delete removes a task and refreshes the campaign rollup.
func (s *TaskService) Delete(ctx context.Context, id string) error {
	task, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "task not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete task")
	}
	s.recompute(ctx, task.CampaignID)
	return nil
}

// recompute refreshes the campaign rollup. The rollup is a cache, so a
// failed refresh logs instead of failing the task mutation.
func (s *TaskService) recompute(ctx context.Context, campaignID string) {
	if s.progress == nil {
		return
	}
	if _, err := s.progress.Recompute(ctx, campaignID); err != nil {
		s.logger.Warn("failed to recompute campaign progress",
			zap.String("campaign_id", campaignID),
			zap.Error(err))
	}
}
