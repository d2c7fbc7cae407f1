package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/depth-studio/depth-studio-api/internal/models"
)

const campaignColumns = "id, brand_id, name, description, status, overall_progress, tasks_completed, tasks_in_progress, tasks_pending, progress_updated_at, start_date, end_date, created_by, created_at, updated_at"

// CampaignRepository manages persistence for campaigns.
type CampaignRepository struct {
	db *sqlx.DB
}

// NewCampaignRepository constructs a CampaignRepository.
func NewCampaignRepository(db *sqlx.DB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

// List returns campaigns matching filters along with total count.
func (r *CampaignRepository) List(ctx context.Context, filter models.CampaignFilter) ([]models.Campaign, int, error) {
	base := "FROM campaigns WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.BrandID != "" {
		conditions = append(conditions, fmt.Sprintf("brand_id = $%d", len(args)+1))
		args = append(args, filter.BrandID)
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		conditions = append(conditions, fmt.Sprintf("LOWER(name) LIKE $%d", len(args)+1))
		args = append(args, search)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	allowedSorts := map[string]string{
		"name":       "name",
		"status":     "status",
		"created_at": "created_at",
		"updated_at": "updated_at",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "created_at"
	}

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", campaignColumns, base, column, order, size, offset)
	var campaigns []models.Campaign
	if err := r.db.SelectContext(ctx, &campaigns, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list campaigns: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count campaigns: %w", err)
	}

	return campaigns, total, nil
}

// FindByID fetches a campaign by ID.
func (r *CampaignRepository) FindByID(ctx context.Context, id string) (*models.Campaign, error) {
	query := fmt.Sprintf("SELECT %s FROM campaigns WHERE id = $1", campaignColumns)
	var campaign models.Campaign
	if err := r.db.GetContext(ctx, &campaign, query, id); err != nil {
		return nil, err
	}
	return &campaign, nil
}

// Create inserts a new campaign record.
func (r *CampaignRepository) Create(ctx context.Context, campaign *models.Campaign) error {
	if campaign.ID == "" {
		campaign.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if campaign.CreatedAt.IsZero() {
		campaign.CreatedAt = now
	}
	campaign.UpdatedAt = now

	const query = `INSERT INTO campaigns (id, brand_id, name, description, status, overall_progress, tasks_completed, tasks_in_progress, tasks_pending, progress_updated_at, start_date, end_date, created_by, created_at, updated_at)
		VALUES (:id, :brand_id, :name, :description, :status, :overall_progress, :tasks_completed, :tasks_in_progress, :tasks_pending, :progress_updated_at, :start_date, :end_date, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, campaign); err != nil {
		return fmt.Errorf("create campaign: %w", err)
	}
	return nil
}

// Update modifies name, description, dates and status of a campaign. The
// progress columns are owned by UpdateProgress.
func (r *CampaignRepository) Update(ctx context.Context, campaign *models.Campaign) error {
	campaign.UpdatedAt = time.Now().UTC()
	const query = `UPDATE campaigns SET name = :name, description = :description, status = :status, start_date = :start_date, end_date = :end_date, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, campaign); err != nil {
		return fmt.Errorf("update campaign: %w", err)
	}
	return nil
}

// UpdateProgress writes the recomputed rollup counters onto the campaign.
func (r *CampaignRepository) UpdateProgress(ctx context.Context, id string, rollup models.ProgressRollup, updatedAt time.Time) error {
	const query = `UPDATE campaigns SET overall_progress = $2, tasks_completed = $3, tasks_in_progress = $4, tasks_pending = $5, progress_updated_at = $6, updated_at = $6 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, rollup.OverallProgress, rollup.TasksCompleted, rollup.TasksInProgress, rollup.TasksPending, updatedAt); err != nil {
		return fmt.Errorf("update campaign progress: %w", err)
	}
	return nil
}

// Delete removes a campaign record.
func (r *CampaignRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM campaigns WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete campaign: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
