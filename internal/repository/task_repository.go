package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/depth-studio/depth-studio-api/internal/models"
)

const taskColumns = "id, campaign_id, title, description, assigned_photographer, assigned_by, assigned_at, assignment_method, current_status, progress_percentage, status_history, due_date, created_by, created_at, updated_at"

// TaskRepository manages persistence for campaign tasks.
type TaskRepository struct {
	db *sqlx.DB
}

// NewTaskRepository constructs a TaskRepository.
func NewTaskRepository(db *sqlx.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// List returns tasks matching filters along with total count.
func (r *TaskRepository) List(ctx context.Context, filter models.TaskFilter) ([]models.CampaignTask, int, error) {
	base := "FROM campaign_tasks WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.CampaignID != "" {
		conditions = append(conditions, fmt.Sprintf("campaign_id = $%d", len(args)+1))
		args = append(args, filter.CampaignID)
	}
	if filter.AssignedPhotographer != "" {
		conditions = append(conditions, fmt.Sprintf("assigned_photographer = $%d", len(args)+1))
		args = append(args, filter.AssignedPhotographer)
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("current_status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		conditions = append(conditions, fmt.Sprintf("LOWER(title) LIKE $%d", len(args)+1))
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
		"title":      "title",
		"status":     "current_status",
		"due_date":   "due_date",
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", taskColumns, base, column, order, size, offset)
	var tasks []models.CampaignTask
	if err := r.db.SelectContext(ctx, &tasks, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	return tasks, total, nil
}

// FindByID fetches a task by ID.
func (r *TaskRepository) FindByID(ctx context.Context, id string) (*models.CampaignTask, error) {
	query := fmt.Sprintf("SELECT %s FROM campaign_tasks WHERE id = $1", taskColumns)
	var task models.CampaignTask
	if err := r.db.GetContext(ctx, &task, query, id); err != nil {
		return nil, err
	}
	return &task, nil
}

// ListByCampaign returns every task belonging to a campaign.
func (r *TaskRepository) ListByCampaign(ctx context.Context, campaignID string) ([]models.CampaignTask, error) {
	query := fmt.Sprintf("SELECT %s FROM campaign_tasks WHERE campaign_id = $1 ORDER BY created_at ASC", taskColumns)
	var tasks []models.CampaignTask
	if err := r.db.SelectContext(ctx, &tasks, query, campaignID); err != nil {
		return nil, fmt.Errorf("list campaign tasks: %w", err)
	}
	return tasks, nil
}

// CountActiveByPhotographer counts the tasks currently occupying a
// photographer, i.e. those in an active assignment status.
func (r *TaskRepository) CountActiveByPhotographer(ctx context.Context, photographerID string) (int, error) {
	statuses := make([]string, len(models.ActiveAssignmentStatuses))
	for i, s := range models.ActiveAssignmentStatuses {
		statuses[i] = string(s)
	}
	const query = `SELECT COUNT(*) FROM campaign_tasks WHERE assigned_photographer = $1 AND current_status = ANY($2)`
	var count int
	if err := r.db.GetContext(ctx, &count, query, photographerID, pq.Array(statuses)); err != nil {
		return 0, fmt.Errorf("count active tasks: %w", err)
	}
	return count, nil
}

// Create inserts a new task record.
func (r *TaskRepository) Create(ctx context.Context, task *models.CampaignTask) error {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	task.UpdatedAt = now

	const query = `INSERT INTO campaign_tasks (id, campaign_id, title, description, assigned_photographer, assigned_by, assigned_at, assignment_method, current_status, progress_percentage, status_history, due_date, created_by, created_at, updated_at)
		VALUES (:id, :campaign_id, :title, :description, :assigned_photographer, :assigned_by, :assigned_at, :assignment_method, :current_status, :progress_percentage, :status_history, :due_date, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, task); err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// Update modifies the descriptive fields of a task.
func (r *TaskRepository) Update(ctx context.Context, task *models.CampaignTask) error {
	task.UpdatedAt = time.Now().UTC()
	const query = `UPDATE campaign_tasks SET title = :title, description = :description, progress_percentage = :progress_percentage, due_date = :due_date, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, task); err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

// UpdateAssignment writes the assignment fields, status and history of a
// task, guarded on the status observed when the task was read. Zero rows
// affected means another writer got there first; sql.ErrNoRows is returned
// so callers can surface a conflict.
func (r *TaskRepository) UpdateAssignment(ctx context.Context, task *models.CampaignTask, expectedStatus models.TaskStatus) error {
	task.UpdatedAt = time.Now().UTC()
	const query = `UPDATE campaign_tasks
		SET assigned_photographer = $2, assigned_by = $3, assigned_at = $4, assignment_method = $5, current_status = $6, status_history = $7, updated_at = $8
		WHERE id = $1 AND current_status = $9`
	result, err := r.db.ExecContext(ctx, query,
		task.ID,
		task.AssignedPhotographer,
		task.AssignedBy,
		task.AssignedAt,
		task.AssignmentMethod,
		task.CurrentStatus,
		task.StatusHistory,
		task.UpdatedAt,
		expectedStatus,
	)
	if err != nil {
		return fmt.Errorf("update task assignment: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateStatus moves a task to a new status and appends to its history,
// guarded on the previously observed status like UpdateAssignment.
func (r *TaskRepository) UpdateStatus(ctx context.Context, task *models.CampaignTask, expectedStatus models.TaskStatus) error {
	task.UpdatedAt = time.Now().UTC()
	const query = `UPDATE campaign_tasks
		SET current_status = $2, progress_percentage = $3, status_history = $4, updated_at = $5
		WHERE id = $1 AND current_status = $6`
	result, err := r.db.ExecContext(ctx, query,
		task.ID,
		task.CurrentStatus,
		task.ProgressPercentage,
		task.StatusHistory,
		task.UpdatedAt,
		expectedStatus,
	)
	if err != nil {
		return fmt.Errorf("update task status: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a task record.
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM campaign_tasks WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
