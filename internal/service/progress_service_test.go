package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/depth-studio/depth-studio-api/internal/models"
)

type progressTaskRepoStub struct {
	tasks []models.CampaignTask
	err   error
}

func (s *progressTaskRepoStub) ListByCampaign(ctx context.Context, campaignID string) ([]models.CampaignTask, error) {
	return s.tasks, s.err
}

type progressCampaignRepoStub struct {
	rollups map[string]models.ProgressRollup
	err     error
}

func (s *progressCampaignRepoStub) UpdateProgress(ctx context.Context, id string, rollup models.ProgressRollup, updatedAt time.Time) error {
	if s.err != nil {
		return s.err
	}
	if s.rollups == nil {
		s.rollups = map[string]models.ProgressRollup{}
	}
	s.rollups[id] = rollup
	return nil
}

func taskWithStatus(status models.TaskStatus) models.CampaignTask {
	return models.CampaignTask{CampaignID: "campaign-1", CurrentStatus: status}
}

func TestProgressServiceRecompute(t *testing.T) {
	tasks := &progressTaskRepoStub{tasks: []models.CampaignTask{
		taskWithStatus(models.TaskStatusCompleted),
		taskWithStatus(models.TaskStatusCompleted),
		taskWithStatus(models.TaskStatusInProgress),
		taskWithStatus(models.TaskStatusPending),
		taskWithStatus(models.TaskStatusCancelled),
	}}
	campaigns := &progressCampaignRepoStub{}
	svc := NewProgressService(tasks, campaigns, zap.NewNop())

	rollup, err := svc.Recompute(context.Background(), "campaign-1")
	require.NoError(t, err)
	require.NotNil(t, rollup)
	assert.Equal(t, 2, rollup.TasksCompleted)
	assert.Equal(t, 1, rollup.TasksInProgress)
	assert.Equal(t, 1, rollup.TasksPending)
	assert.InDelta(t, 40.0, rollup.OverallProgress, 0.001)
	assert.Equal(t, *rollup, campaigns.rollups["campaign-1"])
}

func TestProgressServiceRecomputeNoTasks(t *testing.T) {
	campaigns := &progressCampaignRepoStub{}
	svc := NewProgressService(&progressTaskRepoStub{}, campaigns, zap.NewNop())

	rollup, err := svc.Recompute(context.Background(), "campaign-1")
	require.NoError(t, err)
	assert.Nil(t, rollup)
	assert.Empty(t, campaigns.rollups)
}

func TestProgressServiceRecomputeStoreFailure(t *testing.T) {
	tasks := &progressTaskRepoStub{tasks: []models.CampaignTask{taskWithStatus(models.TaskStatusCompleted)}}
	campaigns := &progressCampaignRepoStub{err: errors.New("connection reset")}
	svc := NewProgressService(tasks, campaigns, zap.NewNop())

	_, err := svc.Recompute(context.Background(), "campaign-1")
	require.Error(t, err)
}
