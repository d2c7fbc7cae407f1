package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/depth-studio/depth-studio-api/internal/models"
	appErrors "github.com/depth-studio/depth-studio-api/pkg/errors"
)

type taskRepoStub struct {
	tasks         map[string]*models.CampaignTask
	created       []*models.CampaignTask
	updateErr     error
	statusErr     error
	assignmentErr error
	assignWrites  int
}

func (s *taskRepoStub) List(ctx context.Context, filter models.TaskFilter) ([]models.CampaignTask, int, error) {
	return nil, 0, nil
}

func (s *taskRepoStub) FindByID(ctx context.Context, id string) (*models.CampaignTask, error) {
	if task, ok := s.tasks[id]; ok {
		cp := *task
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (s *taskRepoStub) Create(ctx context.Context, task *models.CampaignTask) error {
	s.created = append(s.created, task)
	return nil
}

func (s *taskRepoStub) Update(ctx context.Context, task *models.CampaignTask) error {
	return s.updateErr
}

func (s *taskRepoStub) UpdateStatus(ctx context.Context, task *models.CampaignTask, expectedStatus models.TaskStatus) error {
	if s.statusErr != nil {
		return s.statusErr
	}
	s.tasks[task.ID] = task
	return nil
}

func (s *taskRepoStub) UpdateAssignment(ctx context.Context, task *models.CampaignTask, expectedStatus models.TaskStatus) error {
	if s.assignmentErr != nil {
		return s.assignmentErr
	}
	s.assignWrites++
	s.tasks[task.ID] = task
	return nil
}

func (s *taskRepoStub) Delete(ctx context.Context, id string) error {
	delete(s.tasks, id)
	return nil
}

type taskCampaignRepoStub struct {
	campaigns map[string]*models.Campaign
}

func (s *taskCampaignRepoStub) FindByID(ctx context.Context, id string) (*models.Campaign, error) {
	if campaign, ok := s.campaigns[id]; ok {
		return campaign, nil
	}
	return nil, sql.ErrNoRows
}

type recomputerStub struct {
	calls []string
}

func (s *recomputerStub) Recompute(ctx context.Context, campaignID string) (*models.ProgressRollup, error) {
	s.calls = append(s.calls, campaignID)
	return &models.ProgressRollup{}, nil
}

func newTaskServiceForTest(tasks *taskRepoStub, recomputer *recomputerStub) *TaskService {
	campaigns := &taskCampaignRepoStub{campaigns: map[string]*models.Campaign{
		"campaign-1": {ID: "campaign-1", BrandID: "brand-1"},
	}}
	return NewTaskService(tasks, campaigns, recomputer, nil, zap.NewNop())
}

func TestTaskServiceCreate(t *testing.T) {
	tasks := &taskRepoStub{tasks: map[string]*models.CampaignTask{}}
	recomputer := &recomputerStub{}
	svc := newTaskServiceForTest(tasks, recomputer)

	task, err := svc.Create(context.Background(), CreateTaskRequest{
		CampaignID: "campaign-1",
		Title:      "Product hero shots",
		CreatedBy:  "admin-1",
	})
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusPending, task.CurrentStatus)
	require.Len(t, task.StatusHistory, 1)
	assert.Equal(t, models.TaskStatusPending, task.StatusHistory[0].Status)
	assert.Equal(t, []string{"campaign-1"}, recomputer.calls)
}

func TestTaskServiceCreateUnknownCampaign(t *testing.T) {
	tasks := &taskRepoStub{tasks: map[string]*models.CampaignTask{}}
	svc := newTaskServiceForTest(tasks, &recomputerStub{})

	_, err := svc.Create(context.Background(), CreateTaskRequest{
		CampaignID: "missing",
		Title:      "Product hero shots",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestTaskServiceUpdateStatus(t *testing.T) {
	photographerID := "photo-1"
	tasks := &taskRepoStub{tasks: map[string]*models.CampaignTask{
		"task-1": {
			ID:                   "task-1",
			CampaignID:           "campaign-1",
			CurrentStatus:        models.TaskStatusAssigned,
			AssignedPhotographer: &photographerID,
		},
	}}
	recomputer := &recomputerStub{}
	svc := newTaskServiceForTest(tasks, recomputer)

	task, err := svc.UpdateStatus(context.Background(), "task-1", UpdateTaskStatusRequest{
		Status:    string(models.TaskStatusInProgress),
		Notes:     "Shoot started",
		UpdatedBy: "photo-1",
	})
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusInProgress, task.CurrentStatus)
	require.NotEmpty(t, task.StatusHistory)
	last := task.StatusHistory[len(task.StatusHistory)-1]
	assert.Equal(t, models.TaskStatusInProgress, last.Status)
	assert.Equal(t, "Shoot started", last.Notes)
	assert.Equal(t, []string{"campaign-1"}, recomputer.calls)
}

func TestTaskServiceUpdateStatusIllegalTransition(t *testing.T) {
	tasks := &taskRepoStub{tasks: map[string]*models.CampaignTask{
		"task-1": {ID: "task-1", CampaignID: "campaign-1", CurrentStatus: models.TaskStatusPending},
	}}
	svc := newTaskServiceForTest(tasks, &recomputerStub{})

	_, err := svc.UpdateStatus(context.Background(), "task-1", UpdateTaskStatusRequest{
		Status: string(models.TaskStatusCompleted),
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestTaskServiceUpdateStatusRequiresAssignee(t *testing.T) {
	tasks := &taskRepoStub{tasks: map[string]*models.CampaignTask{
		"task-1": {ID: "task-1", CampaignID: "campaign-1", CurrentStatus: models.TaskStatusPending},
	}}
	svc := newTaskServiceForTest(tasks, &recomputerStub{})

	_, err := svc.UpdateStatus(context.Background(), "task-1", UpdateTaskStatusRequest{
		Status: string(models.TaskStatusAssigned),
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestTaskServiceUpdateStatusConflict(t *testing.T) {
	photographerID := "photo-1"
	tasks := &taskRepoStub{
		tasks: map[string]*models.CampaignTask{
			"task-1": {
				ID:                   "task-1",
				CampaignID:           "campaign-1",
				CurrentStatus:        models.TaskStatusAssigned,
				AssignedPhotographer: &photographerID,
			},
		},
		statusErr: sql.ErrNoRows,
	}
	svc := newTaskServiceForTest(tasks, &recomputerStub{})

	_, err := svc.UpdateStatus(context.Background(), "task-1", UpdateTaskStatusRequest{
		Status: string(models.TaskStatusInProgress),
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
}

func TestTaskServiceUpdateStatusCompletedForcesProgress(t *testing.T) {
	photographerID := "photo-1"
	tasks := &taskRepoStub{tasks: map[string]*models.CampaignTask{
		"task-1": {
			ID:                   "task-1",
			CampaignID:           "campaign-1",
			CurrentStatus:        models.TaskStatusReview,
			AssignedPhotographer: &photographerID,
			ProgressPercentage:   80,
		},
	}}
	svc := newTaskServiceForTest(tasks, &recomputerStub{})

	task, err := svc.UpdateStatus(context.Background(), "task-1", UpdateTaskStatusRequest{
		Status: string(models.TaskStatusCompleted),
	})
	require.NoError(t, err)
	assert.Equal(t, float64(100), task.ProgressPercentage)
}

func TestTaskServiceCancelReleasesPhotographer(t *testing.T) {
	photographerID := "photo-1"
	assignedBy := "admin-1"
	method := models.AssignmentMethodManual
	tasks := &taskRepoStub{tasks: map[string]*models.CampaignTask{
		"task-1": {
			ID:                   "task-1",
			CampaignID:           "campaign-1",
			CurrentStatus:        models.TaskStatusInProgress,
			AssignedPhotographer: &photographerID,
			AssignedBy:           &assignedBy,
			AssignmentMethod:     &method,
		},
	}}
	recomputer := &recomputerStub{}
	svc := newTaskServiceForTest(tasks, recomputer)

	task, err := svc.UpdateStatus(context.Background(), "task-1", UpdateTaskStatusRequest{
		Status:    string(models.TaskStatusCancelled),
		Notes:     "Campaign descoped",
		UpdatedBy: "admin-1",
	})
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusCancelled, task.CurrentStatus)
	assert.Nil(t, task.AssignedPhotographer)
	assert.Nil(t, task.AssignedBy)
	assert.Nil(t, task.AssignedAt)
	assert.Nil(t, task.AssignmentMethod)
	assert.Equal(t, 1, tasks.assignWrites)
	require.NotEmpty(t, task.StatusHistory)
	assert.Equal(t, models.TaskStatusCancelled, task.StatusHistory[len(task.StatusHistory)-1].Status)
	assert.Equal(t, []string{"campaign-1"}, recomputer.calls)
}

func TestTaskServiceCancelUnassignedSkipsAssignmentWrite(t *testing.T) {
	tasks := &taskRepoStub{tasks: map[string]*models.CampaignTask{
		"task-1": {ID: "task-1", CampaignID: "campaign-1", CurrentStatus: models.TaskStatusPending},
	}}
	svc := newTaskServiceForTest(tasks, &recomputerStub{})

	task, err := svc.UpdateStatus(context.Background(), "task-1", UpdateTaskStatusRequest{
		Status: string(models.TaskStatusCancelled),
	})
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusCancelled, task.CurrentStatus)
	assert.Zero(t, tasks.assignWrites)
}

func TestTaskServiceCancelConflict(t *testing.T) {
	photographerID := "photo-1"
	tasks := &taskRepoStub{
		tasks: map[string]*models.CampaignTask{
			"task-1": {
				ID:                   "task-1",
				CampaignID:           "campaign-1",
				CurrentStatus:        models.TaskStatusAssigned,
				AssignedPhotographer: &photographerID,
			},
		},
		assignmentErr: sql.ErrNoRows,
	}
	svc := newTaskServiceForTest(tasks, &recomputerStub{})

	_, err := svc.UpdateStatus(context.Background(), "task-1", UpdateTaskStatusRequest{
		Status: string(models.TaskStatusCancelled),
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
}

func TestTaskServiceDeleteRecomputes(t *testing.T) {
	tasks := &taskRepoStub{tasks: map[string]*models.CampaignTask{
		"task-1": {ID: "task-1", CampaignID: "campaign-1", CurrentStatus: models.TaskStatusPending},
	}}
	recomputer := &recomputerStub{}
	svc := newTaskServiceForTest(tasks, recomputer)

	require.NoError(t, svc.Delete(context.Background(), "task-1"))
	assert.Equal(t, []string{"campaign-1"}, recomputer.calls)
}
