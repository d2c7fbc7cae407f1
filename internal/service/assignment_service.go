package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/depth-studio/depth-studio-api/internal/models"
	appErrors "github.com/depth-studio/depth-studio-api/pkg/errors"
)

type assignmentTaskRepo interface {
	FindByID(ctx context.Context, id string) (*models.CampaignTask, error)
	UpdateAssignment(ctx context.Context, task *models.CampaignTask, expectedStatus models.TaskStatus) error
	CountActiveByPhotographer(ctx context.Context, photographerID string) (int, error)
}

type assignmentUserRepo interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	ListActivePhotographers(ctx context.Context, limit int) ([]models.User, error)
}

type assignmentNotifier interface {
	TaskAssigned(ctx context.Context, photographerID string, task *models.CampaignTask)
	TaskUnassigned(ctx context.Context, photographerID string, task *models.CampaignTask, reason string)
}

type assignmentRecorder interface {
	RecordAssignment(method models.AssignmentMethod)
}

const defaultUnassignReason = "Unassigned by coordinator"

// AssignmentService drives the task assignment state machine: manual
// assignment, least-workload auto assignment and unassignment.
type AssignmentService struct {
	tasks         assignmentTaskRepo
	users         assignmentUserRepo
	notifier      assignmentNotifier
	metrics       assignmentRecorder
	maxCandidates int
	logger        *zap.Logger
}

// NewAssignmentService constructs an AssignmentService. notifier and metrics
// may be nil.
func NewAssignmentService(tasks assignmentTaskRepo, users assignmentUserRepo, notifier assignmentNotifier, metrics assignmentRecorder, maxCandidates int, logger *zap.Logger) *AssignmentService {
	if maxCandidates <= 0 {
		maxCandidates = 100
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{
		tasks:         tasks,
		users:         users,
		notifier:      notifier,
		metrics:       metrics,
		maxCandidates: maxCandidates,
		logger:        logger,
	}
}

// AssignManual assigns the task to a specific photographer.
func (s *AssignmentService) AssignManual(ctx context.Context, taskID, photographerID, assignedBy string) (*models.CampaignTask, error) {
	task, err := s.loadTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	return s.assign(ctx, task, photographerID, assignedBy, models.AssignmentMethodManual)
}

// AssignAuto selects the active photographer with the strictly smallest
// number of active tasks and assigns the task to them. Ties are broken by
// the first-seen candidate in creation order.
func (s *AssignmentService) AssignAuto(ctx context.Context, taskID, assignedBy string) (*models.CampaignTask, error) {
	task, err := s.loadTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.AssignedPhotographer != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "task already has an assigned photographer")
	}

	candidates, err := s.users.ListActivePhotographers(ctx, s.maxCandidates)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list photographers")
	}
	if len(candidates) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no available photographers")
	}

	var best *models.User
	bestLoad := 0
	for i := range candidates {
		load, err := s.tasks.CountActiveByPhotographer(ctx, candidates[i].ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count photographer workload")
		}
		if best == nil || load < bestLoad {
			best = &candidates[i]
			bestLoad = load
		}
	}

	s.logger.Sugar().Infow("auto-assign selected photographer", "task_id", taskID, "photographer_id", best.ID, "active_tasks", bestLoad)
	return s.assign(ctx, task, best.ID, assignedBy, models.AssignmentMethodAuto)
}

// Unassign removes the photographer from the task and returns it to the
// pending pool. Work already in progress or delivered cannot be unassigned.
func (s *AssignmentService) Unassign(ctx context.Context, taskID, unassignedBy, reason string) (*models.CampaignTask, error) {
	task, err := s.loadTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.AssignedPhotographer == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "task is not currently assigned")
	}
	if task.CurrentStatus == models.TaskStatusInProgress || task.CurrentStatus == models.TaskStatusCompleted {
		return nil, appErrors.Clone(appErrors.ErrValidation, "cannot unassign task in progress or completed")
	}

	if reason == "" {
		reason = defaultUnassignReason
	}

	previousPhotographer := *task.AssignedPhotographer
	expected := task.CurrentStatus

	task.AssignedPhotographer = nil
	task.AssignedBy = nil
	task.AssignedAt = nil
	task.AssignmentMethod = nil
	task.CurrentStatus = models.TaskStatusPending
	task.StatusHistory = append(task.StatusHistory, models.StatusHistoryEntry{
		Status:    models.TaskStatusPending,
		UpdatedBy: unassignedBy,
		UpdatedAt: time.Now().UTC(),
		Notes:     reason,
	})

	if err := s.tasks.UpdateAssignment(ctx, task, expected); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrConflict, "task was modified concurrently")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to unassign task")
	}

	if s.notifier != nil {
		s.notifier.TaskUnassigned(ctx, previousPhotographer, task, reason)
	}
	return task, nil
}

// assign writes the assignment to an already-loaded task. The conditional
// update on the task's loaded status guards against concurrent writers, so
// callers do not need a fresh read.
func (s *AssignmentService) assign(ctx context.Context, task *models.CampaignTask, photographerID, assignedBy string, method models.AssignmentMethod) (*models.CampaignTask, error) {
	if task.CurrentStatus != models.TaskStatusPending && task.CurrentStatus != models.TaskStatusAssigned {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("task in status %q cannot be assigned", task.CurrentStatus))
	}

	photographer, err := s.users.FindByID(ctx, photographerID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "photographer not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load photographer")
	}
	if photographer.Role != models.RolePhotographer || photographer.Status != models.UserStatusActive {
		return nil, appErrors.Clone(appErrors.ErrValidation, "photographer not available")
	}

	now := time.Now().UTC()
	expected := task.CurrentStatus

	task.AssignedPhotographer = &photographer.ID
	task.AssignedBy = &assignedBy
	task.AssignedAt = &now
	task.AssignmentMethod = &method
	task.CurrentStatus = models.TaskStatusAssigned
	task.StatusHistory = append(task.StatusHistory, models.StatusHistoryEntry{
		Status:    models.TaskStatusAssigned,
		UpdatedBy: assignedBy,
		UpdatedAt: now,
		Notes:     fmt.Sprintf("Assigned to %s (%s)", photographer.FullName, method),
	})

	if err := s.tasks.UpdateAssignment(ctx, task, expected); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrConflict, "task was modified concurrently")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign task")
	}

	if s.metrics != nil {
		s.metrics.RecordAssignment(method)
	}
	if s.notifier != nil {
		s.notifier.TaskAssigned(ctx, photographer.ID, task)
	}
	return task, nil
}

func (s *AssignmentService) loadTask(ctx context.Context, taskID string) (*models.CampaignTask, error) {
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "task not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load task")
	}
	return task, nil
}
