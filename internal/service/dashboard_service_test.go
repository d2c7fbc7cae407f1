package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/depth-studio/depth-studio-api/internal/models"
	appErrors "github.com/depth-studio/depth-studio-api/pkg/errors"
)

type dashboardRepoStub struct {
	campaignCounts []models.StatusCount
	avgProgress    float64
	topCampaigns   []models.Campaign
	taskCounts     []models.StatusCount
	unassigned     int
	overdue        int
	roleCounts     map[string]int
	workloads      []models.PhotographerWorkload
	photoCounts    []models.StatusCount
	dueSoon        []models.DueSoonTask
}

func (s *dashboardRepoStub) CampaignCounts(ctx context.Context) ([]models.StatusCount, error) {
	return s.campaignCounts, nil
}

func (s *dashboardRepoStub) AverageActiveProgress(ctx context.Context) (float64, error) {
	return s.avgProgress, nil
}

func (s *dashboardRepoStub) TopInFlightCampaigns(ctx context.Context, limit int) ([]models.Campaign, error) {
	return s.topCampaigns, nil
}

func (s *dashboardRepoStub) TaskCounts(ctx context.Context) ([]models.StatusCount, error) {
	return s.taskCounts, nil
}

func (s *dashboardRepoStub) UnassignedTaskCount(ctx context.Context) (int, error) {
	return s.unassigned, nil
}

func (s *dashboardRepoStub) OverdueTaskCount(ctx context.Context, now time.Time) (int, error) {
	return s.overdue, nil
}

func (s *dashboardRepoStub) ActiveUserCountByRole(ctx context.Context, roles []models.UserRole) (int, error) {
	total := 0
	for _, role := range roles {
		total += s.roleCounts[string(role)]
	}
	return total, nil
}

func (s *dashboardRepoStub) PhotographerWorkloads(ctx context.Context, limit int) ([]models.PhotographerWorkload, error) {
	return s.workloads, nil
}

func (s *dashboardRepoStub) PhotographerTaskCounts(ctx context.Context, photographerID string) ([]models.StatusCount, error) {
	return s.photoCounts, nil
}

func (s *dashboardRepoStub) PhotographerDueSoon(ctx context.Context, photographerID string, until time.Time, limit int) ([]models.DueSoonTask, error) {
	return s.dueSoon, nil
}

type statsProviderStub struct {
	stats *models.RoleSelectionStats
	err   error
}

func (s *statsProviderStub) Stats(ctx context.Context) (*models.RoleSelectionStats, error) {
	return s.stats, s.err
}

type memoryCacheRepo struct {
	entries map[string][]byte
}

func (s *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	payload, ok := s.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (s *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if s.entries == nil {
		s.entries = map[string][]byte{}
	}
	s.entries[key] = payload
	return nil
}

func (s *memoryCacheRepo) Delete(ctx context.Context, key string) error {
	delete(s.entries, key)
	return nil
}

func newDashboardRepoStub() *dashboardRepoStub {
	return &dashboardRepoStub{
		campaignCounts: []models.StatusCount{{Status: "active", Count: 3}, {Status: "draft", Count: 2}},
		avgProgress:    62.5,
		topCampaigns: []models.Campaign{
			{ID: "campaign-1", Name: "Spring Launch", OverallProgress: 80},
		},
		taskCounts: []models.StatusCount{{Status: "pending", Count: 4}, {Status: "completed", Count: 6}},
		unassigned: 4,
		overdue:    1,
		roleCounts: map[string]int{"photographer": 5, "marketing_coordinator": 1, "brand_coordinator": 2},
		workloads: []models.PhotographerWorkload{
			{PhotographerID: "photo-1", FullName: "Photographer One", ActiveTasks: 3},
		},
		photoCounts: []models.StatusCount{{Status: "assigned", Count: 2}, {Status: "in_progress", Count: 1}, {Status: "completed", Count: 7}},
		dueSoon: []models.DueSoonTask{
			{TaskID: "task-1", Title: "Hero shots", CampaignID: "campaign-1", DueDate: time.Date(2026, 9, 3, 0, 0, 0, 0, time.UTC)},
		},
	}
}

func TestDashboardServiceAdmin(t *testing.T) {
	repo := newDashboardRepoStub()
	stats := &statsProviderStub{stats: &models.RoleSelectionStats{
		Pending:      2,
		ByRole:       map[string]int{"photographer": 2},
		ApprovalRate: 0.75,
	}}
	svc := NewDashboardService(repo, stats, nil, zap.NewNop(), DashboardServiceConfig{})

	summary, cached, err := svc.Admin(context.Background())
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 5, summary.Campaigns.Total)
	assert.Equal(t, 3, summary.Campaigns.ByStatus["active"])
	assert.InDelta(t, 62.5, summary.Campaigns.AverageProgress, 0.001)
	require.Len(t, summary.Campaigns.TopInFlight, 1)
	assert.Equal(t, "Spring Launch", summary.Campaigns.TopInFlight[0].Name)
	assert.Equal(t, 10, summary.Tasks.Total)
	assert.Equal(t, 4, summary.Tasks.Unassigned)
	assert.Equal(t, 1, summary.Tasks.Overdue)
	assert.Equal(t, 5, summary.Team.ActivePhotographers)
	assert.Equal(t, 3, summary.Team.ActiveCoordinators)
	assert.Equal(t, 2, summary.Applications.Pending)
}

func TestDashboardServiceAdminStatsFailureDegrades(t *testing.T) {
	repo := newDashboardRepoStub()
	stats := &statsProviderStub{err: appErrors.ErrInternal}
	svc := NewDashboardService(repo, stats, nil, zap.NewNop(), DashboardServiceConfig{})

	summary, _, err := svc.Admin(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.Applications.Pending)
	assert.Equal(t, 5, summary.Campaigns.Total)
}

func TestDashboardServiceAdminServesFromCache(t *testing.T) {
	repo := newDashboardRepoStub()
	cache := NewCacheService(&memoryCacheRepo{}, nil, time.Minute, zap.NewNop(), true)
	svc := NewDashboardService(repo, &statsProviderStub{stats: &models.RoleSelectionStats{}}, cache, zap.NewNop(), DashboardServiceConfig{})

	_, cached, err := svc.Admin(context.Background())
	require.NoError(t, err)
	assert.False(t, cached)

	summary, cached, err := svc.Admin(context.Background())
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, 5, summary.Campaigns.Total)
}

func TestDashboardServicePhotographer(t *testing.T) {
	repo := newDashboardRepoStub()
	svc := NewDashboardService(repo, nil, nil, zap.NewNop(), DashboardServiceConfig{})

	summary, cached, err := svc.Photographer(context.Background(), "photo-1")
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, "photo-1", summary.PhotographerID)
	assert.Equal(t, 3, summary.ActiveTasks)
	require.Len(t, summary.DueSoon, 1)
	assert.Equal(t, "2026-09-03", summary.DueSoon[0].DueDate)
}

func TestDashboardServicePhotographerRequiresID(t *testing.T) {
	svc := NewDashboardService(newDashboardRepoStub(), nil, nil, zap.NewNop(), DashboardServiceConfig{})

	_, _, err := svc.Photographer(context.Background(), "")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}
