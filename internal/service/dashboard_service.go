package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/depth-studio/depth-studio-api/internal/dto"
	"github.com/depth-studio/depth-studio-api/internal/models"
	appErrors "github.com/depth-studio/depth-studio-api/pkg/errors"
)

type dashboardAggregates interface {
	CampaignCounts(ctx context.Context) ([]models.StatusCount, error)
	AverageActiveProgress(ctx context.Context) (float64, error)
	TopInFlightCampaigns(ctx context.Context, limit int) ([]models.Campaign, error)
	TaskCounts(ctx context.Context) ([]models.StatusCount, error)
	UnassignedTaskCount(ctx context.Context) (int, error)
	OverdueTaskCount(ctx context.Context, now time.Time) (int, error)
	ActiveUserCountByRole(ctx context.Context, roles []models.UserRole) (int, error)
	PhotographerWorkloads(ctx context.Context, limit int) ([]models.PhotographerWorkload, error)
	PhotographerTaskCounts(ctx context.Context, photographerID string) ([]models.StatusCount, error)
	PhotographerDueSoon(ctx context.Context, photographerID string, until time.Time, limit int) ([]models.DueSoonTask, error)
}

type applicationStatsProvider interface {
	Stats(ctx context.Context) (*models.RoleSelectionStats, error)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL          time.Duration
	TopCampaignsLimit int
	WorkloadLimit     int
	DueSoonWindow     time.Duration
	DueSoonLimit      int
}

// DashboardService composes admin and photographer dashboard payloads.
type DashboardService struct {
	repo   dashboardAggregates
	stats  applicationStatsProvider
	cache  *CacheService
	logger *zap.Logger
	now    func() time.Time
	cfg    DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(repo dashboardAggregates, stats applicationStatsProvider, cache *CacheService, logger *zap.Logger, cfg DashboardServiceConfig) *DashboardService {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.TopCampaignsLimit <= 0 {
		cfg.TopCampaignsLimit = 5
	}
	if cfg.WorkloadLimit <= 0 {
		cfg.WorkloadLimit = 10
	}
	if cfg.DueSoonWindow <= 0 {
		cfg.DueSoonWindow = 7 * 24 * time.Hour
	}
	if cfg.DueSoonLimit <= 0 {
		cfg.DueSoonLimit = 5
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		repo:   repo,
		stats:  stats,
		cache:  cache,
		logger: logger,
		now:    time.Now,
		cfg:    cfg,
	}
}

// Admin returns the admin dashboard summary and indicates cache utilisation.
func (s *DashboardService) Admin(ctx context.Context) (*dto.AdminDashboardResponse, bool, error) {
	const cacheKey = "dash:admin"
	if s.cache != nil {
		var cached dto.AdminDashboardResponse
		hit, err := s.cache.Get(ctx, cacheKey, &cached)
		if err != nil {
			return nil, false, err
		}
		if hit {
			return &cached, true, nil
		}
	}

	summary, err := s.composeAdminSummary(ctx)
	if err != nil {
		return nil, false, err
	}
	s.persistCache(ctx, cacheKey, summary)
	return summary, false, nil
}

// Photographer returns the photographer home payload.
func (s *DashboardService) Photographer(ctx context.Context, photographerID string) (*dto.PhotographerDashboardResponse, bool, error) {
	if photographerID == "" {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "photographerId is required")
	}
	cacheKey := fmt.Sprintf("dash:photographer:%s", photographerID)
	if s.cache != nil {
		var cached dto.PhotographerDashboardResponse
		hit, err := s.cache.Get(ctx, cacheKey, &cached)
		if err != nil {
			return nil, false, err
		}
		if hit {
			return &cached, true, nil
		}
	}

	summary, err := s.composePhotographerSummary(ctx, photographerID)
	if err != nil {
		return nil, false, err
	}
	s.persistCache(ctx, cacheKey, summary)
	return summary, false, nil
}

func (s *DashboardService) persistCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *DashboardService) composeAdminSummary(ctx context.Context) (*dto.AdminDashboardResponse, error) {
	campaignCounts, err := s.repo.CampaignCounts(ctx)
	if err != nil {
		return nil, err
	}
	avgProgress, err := s.repo.AverageActiveProgress(ctx)
	if err != nil {
		return nil, err
	}
	topCampaigns, err := s.repo.TopInFlightCampaigns(ctx, s.cfg.TopCampaignsLimit)
	if err != nil {
		return nil, err
	}
	taskCounts, err := s.repo.TaskCounts(ctx)
	if err != nil {
		return nil, err
	}
	unassigned, err := s.repo.UnassignedTaskCount(ctx)
	if err != nil {
		return nil, err
	}
	overdue, err := s.repo.OverdueTaskCount(ctx, s.now().UTC())
	if err != nil {
		return nil, err
	}
	photographers, err := s.repo.ActiveUserCountByRole(ctx, []models.UserRole{models.RolePhotographer})
	if err != nil {
		return nil, err
	}
	coordinators, err := s.repo.ActiveUserCountByRole(ctx, []models.UserRole{models.RoleMarketingCoordinator, models.RoleBrandCoordinator})
	if err != nil {
		return nil, err
	}
	workloads, err := s.repo.PhotographerWorkloads(ctx, s.cfg.WorkloadLimit)
	if err != nil {
		return nil, err
	}

	summary := &dto.AdminDashboardResponse{
		Campaigns: dto.CampaignSection{
			ByStatus:        countsToMap(campaignCounts),
			AverageProgress: avgProgress,
		},
		Tasks: dto.TaskSection{
			ByStatus:   countsToMap(taskCounts),
			Unassigned: unassigned,
			Overdue:    overdue,
		},
		Team: dto.TeamSection{
			ActivePhotographers: photographers,
			ActiveCoordinators:  coordinators,
		},
	}
	for _, count := range campaignCounts {
		summary.Campaigns.Total += count.Count
	}
	for _, count := range taskCounts {
		summary.Tasks.Total += count.Count
	}
	for _, campaign := range topCampaigns {
		summary.Campaigns.TopInFlight = append(summary.Campaigns.TopInFlight, dto.CampaignHighlight{
			CampaignID: campaign.ID,
			Name:       campaign.Name,
			Progress:   campaign.OverallProgress,
		})
	}
	for _, row := range workloads {
		summary.Team.Workload = append(summary.Team.Workload, dto.PhotographerWorkload{
			PhotographerID: row.PhotographerID,
			FullName:       row.FullName,
			ActiveTasks:    row.ActiveTasks,
		})
	}

	if s.stats != nil {
		stats, err := s.stats.Stats(ctx)
		if err != nil {
			s.logger.Warn("application stats fetch failed", zap.Error(err))
		} else {
			summary.Applications = dto.ApplicationSection{
				Pending:      stats.Pending,
				ByRole:       stats.ByRole,
				ApprovalRate: stats.ApprovalRate,
			}
		}
	}

	return summary, nil
}

func (s *DashboardService) composePhotographerSummary(ctx context.Context, photographerID string) (*dto.PhotographerDashboardResponse, error) {
	counts, err := s.repo.PhotographerTaskCounts(ctx, photographerID)
	if err != nil {
		return nil, err
	}
	until := s.now().UTC().Add(s.cfg.DueSoonWindow)
	dueSoon, err := s.repo.PhotographerDueSoon(ctx, photographerID, until, s.cfg.DueSoonLimit)
	if err != nil {
		return nil, err
	}

	summary := &dto.PhotographerDashboardResponse{
		PhotographerID: photographerID,
		ByStatus:       countsToMap(counts),
	}
	for _, count := range counts {
		if count.Status == string(models.TaskStatusAssigned) || count.Status == string(models.TaskStatusInProgress) {
			summary.ActiveTasks += count.Count
		}
	}
	for _, row := range dueSoon {
		summary.DueSoon = append(summary.DueSoon, dto.TaskDueSoon{
			TaskID:     row.TaskID,
			Title:      row.Title,
			CampaignID: row.CampaignID,
			DueDate:    row.DueDate.Format("2006-01-02"),
		})
	}
	return summary, nil
}

func countsToMap(counts []models.StatusCount) map[string]int {
	result := make(map[string]int, len(counts))
	for _, count := range counts {
		result[count.Status] = count.Count
	}
	return result
}
