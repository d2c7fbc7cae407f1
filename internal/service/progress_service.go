package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/depth-studio/depth-studio-api/internal/models"
	appErrors "github.com/depth-studio/depth-studio-api/pkg/errors"
)

type progressTaskRepo interface {
	ListByCampaign(ctx context.Context, campaignID string) ([]models.CampaignTask, error)
}

type progressCampaignRepo interface {
	UpdateProgress(ctx context.Context, id string, rollup models.ProgressRollup, updatedAt time.Time) error
}

// ProgressService recomputes the denormalised campaign rollup from the
// campaign's child tasks. The rollup is a cache, never authoritative.
type ProgressService struct {
	tasks     progressTaskRepo
	campaigns progressCampaignRepo
	logger    *zap.Logger
}

// NewProgressService constructs a ProgressService.
func NewProgressService(tasks progressTaskRepo, campaigns progressCampaignRepo, logger *zap.Logger) *ProgressService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProgressService{tasks: tasks, campaigns: campaigns, logger: logger}
}

// Recompute counts the campaign's tasks by status and writes the rollup.
// A campaign with zero tasks is left untouched and nil is returned.
func (s *ProgressService) Recompute(ctx context.Context, campaignID string) (*models.ProgressRollup, error) {
	tasks, err := s.tasks.ListByCampaign(ctx, campaignID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list campaign tasks")
	}
	if len(tasks) == 0 {
		return nil, nil
	}

	rollup := models.ProgressRollup{}
	for _, task := range tasks {
		switch task.CurrentStatus {
		case models.TaskStatusCompleted:
			rollup.TasksCompleted++
		case models.TaskStatusInProgress:
			rollup.TasksInProgress++
		case models.TaskStatusPending:
			rollup.TasksPending++
		}
	}
	rollup.OverallProgress = float64(rollup.TasksCompleted) / float64(len(tasks)) * 100

	if err := s.campaigns.UpdateProgress(ctx, campaignID, rollup, time.Now().UTC()); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store campaign progress")
	}

	s.logger.Sugar().Debugw("campaign progress recomputed",
		"campaign_id", campaignID,
		"completed", rollup.TasksCompleted,
		"in_progress", rollup.TasksInProgress,
		"pending", rollup.TasksPending,
	)
	return &rollup, nil
}
