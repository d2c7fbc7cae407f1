package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/depth-studio/depth-studio-api/internal/models"
)

// DashboardRepository serves the aggregate queries behind dashboard payloads.
type DashboardRepository struct {
	db *sqlx.DB
}

// NewDashboardRepository constructs a DashboardRepository.
func NewDashboardRepository(db *sqlx.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

// CampaignCounts returns campaign totals grouped by status.
func (r *DashboardRepository) CampaignCounts(ctx context.Context) ([]models.StatusCount, error) {
	const query = `SELECT status, COUNT(*) AS count FROM campaigns GROUP BY status`
	var counts []models.StatusCount
	if err := r.db.SelectContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("campaign counts: %w", err)
	}
	return counts, nil
}

// AverageActiveProgress returns the mean rollup progress of active campaigns.
func (r *DashboardRepository) AverageActiveProgress(ctx context.Context) (float64, error) {
	const query = `SELECT COALESCE(AVG(overall_progress), 0) FROM campaigns WHERE status = 'active'`
	var avg float64
	if err := r.db.GetContext(ctx, &avg, query); err != nil {
		return 0, fmt.Errorf("average campaign progress: %w", err)
	}
	return avg, nil
}

// TopInFlightCampaigns returns the most advanced active campaigns.
func (r *DashboardRepository) TopInFlightCampaigns(ctx context.Context, limit int) ([]models.Campaign, error) {
	if limit <= 0 || limit > 20 {
		limit = 5
	}
	query := fmt.Sprintf(`SELECT %s FROM campaigns WHERE status = 'active'
		ORDER BY overall_progress DESC, name ASC LIMIT %d`, campaignColumns, limit)
	var campaigns []models.Campaign
	if err := r.db.SelectContext(ctx, &campaigns, query); err != nil {
		return nil, fmt.Errorf("top in-flight campaigns: %w", err)
	}
	return campaigns, nil
}

// TaskCounts returns task totals grouped by status.
func (r *DashboardRepository) TaskCounts(ctx context.Context) ([]models.StatusCount, error) {
	const query = `SELECT current_status AS status, COUNT(*) AS count FROM campaign_tasks GROUP BY current_status`
	var counts []models.StatusCount
	if err := r.db.SelectContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("task counts: %w", err)
	}
	return counts, nil
}

// UnassignedTaskCount counts pending tasks with no photographer.
func (r *DashboardRepository) UnassignedTaskCount(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM campaign_tasks WHERE assigned_photographer IS NULL AND current_status = 'pending'`
	var count int
	if err := r.db.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("unassigned task count: %w", err)
	}
	return count, nil
}

// OverdueTaskCount counts open tasks past their due date.
func (r *DashboardRepository) OverdueTaskCount(ctx context.Context, now time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM campaign_tasks
		WHERE due_date IS NOT NULL AND due_date < $1
		AND current_status NOT IN ('completed', 'cancelled')`
	var count int
	if err := r.db.GetContext(ctx, &count, query, now); err != nil {
		return 0, fmt.Errorf("overdue task count: %w", err)
	}
	return count, nil
}

// ActiveUserCountByRole counts active users holding any of the given roles.
func (r *DashboardRepository) ActiveUserCountByRole(ctx context.Context, roles []models.UserRole) (int, error) {
	values := make([]string, 0, len(roles))
	for _, role := range roles {
		values = append(values, string(role))
	}
	const query = `SELECT COUNT(*) FROM users WHERE active = TRUE AND status = 'active' AND role = ANY($1)`
	var count int
	if err := r.db.GetContext(ctx, &count, query, pq.Array(values)); err != nil {
		return 0, fmt.Errorf("active user count: %w", err)
	}
	return count, nil
}

// PhotographerWorkloads returns active photographers ordered by open assignments.
func (r *DashboardRepository) PhotographerWorkloads(ctx context.Context, limit int) ([]models.PhotographerWorkload, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	query := fmt.Sprintf(`SELECT u.id AS photographer_id, u.full_name,
			COUNT(t.id) FILTER (WHERE t.current_status IN ('assigned', 'in_progress')) AS active_tasks
		FROM users u
		LEFT JOIN campaign_tasks t ON t.assigned_photographer = u.id
		WHERE u.role = 'photographer' AND u.active = TRUE AND u.status = 'active'
		GROUP BY u.id, u.full_name
		ORDER BY active_tasks DESC, u.full_name ASC
		LIMIT %d`, limit)
	var rows []models.PhotographerWorkload
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("photographer workloads: %w", err)
	}
	return rows, nil
}

// PhotographerTaskCounts returns one photographer's open tasks by status.
func (r *DashboardRepository) PhotographerTaskCounts(ctx context.Context, photographerID string) ([]models.StatusCount, error) {
	const query = `SELECT current_status AS status, COUNT(*) AS count FROM campaign_tasks
		WHERE assigned_photographer = $1 AND current_status NOT IN ('completed', 'cancelled')
		GROUP BY current_status`
	var counts []models.StatusCount
	if err := r.db.SelectContext(ctx, &counts, query, photographerID); err != nil {
		return nil, fmt.Errorf("photographer task counts: %w", err)
	}
	return counts, nil
}

// PhotographerDueSoon returns a photographer's open tasks due within the window.
func (r *DashboardRepository) PhotographerDueSoon(ctx context.Context, photographerID string, until time.Time, limit int) ([]models.DueSoonTask, error) {
	if limit <= 0 || limit > 20 {
		limit = 5
	}
	query := fmt.Sprintf(`SELECT id, title, campaign_id, due_date FROM campaign_tasks
		WHERE assigned_photographer = $1 AND due_date IS NOT NULL AND due_date <= $2
		AND current_status NOT IN ('completed', 'cancelled')
		ORDER BY due_date ASC LIMIT %d`, limit)
	var rows []models.DueSoonTask
	if err := r.db.SelectContext(ctx, &rows, query, photographerID, until); err != nil {
		return nil, fmt.Errorf("photographer due soon: %w", err)
	}
	return rows, nil
}
