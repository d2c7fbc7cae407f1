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

const roleSelectionColumns = "id, user_id, selected_role, contract_type, specializations, selected_brand_id, marketing_experience, motivation, status, applied_at, reviewed_at, approved_by, rejection_reason, admin_notes, created_at, updated_at"

// RoleSelectionRepository manages persistence for role applications.
type RoleSelectionRepository struct {
	db *sqlx.DB
}

// NewRoleSelectionRepository constructs a RoleSelectionRepository.
func NewRoleSelectionRepository(db *sqlx.DB) *RoleSelectionRepository {
	return &RoleSelectionRepository{db: db}
}

// FindByID fetches an application by ID.
func (r *RoleSelectionRepository) FindByID(ctx context.Context, id string) (*models.RoleSelection, error) {
	query := fmt.Sprintf("SELECT %s FROM role_applications WHERE id = $1", roleSelectionColumns)
	var selection models.RoleSelection
	if err := r.db.GetContext(ctx, &selection, query, id); err != nil {
		return nil, err
	}
	return &selection, nil
}

// FindPendingByUser returns the user's in-flight application, if one exists.
func (r *RoleSelectionRepository) FindPendingByUser(ctx context.Context, userID string) (*models.RoleSelection, error) {
	query := fmt.Sprintf("SELECT %s FROM role_applications WHERE user_id = $1 AND status = $2 LIMIT 1", roleSelectionColumns)
	var selection models.RoleSelection
	if err := r.db.GetContext(ctx, &selection, query, userID, models.RoleSelectionStatusPending); err != nil {
		return nil, err
	}
	return &selection, nil
}

// ListByUser returns a user's full application history, newest first.
func (r *RoleSelectionRepository) ListByUser(ctx context.Context, userID string) ([]models.RoleSelection, error) {
	query := fmt.Sprintf("SELECT %s FROM role_applications WHERE user_id = $1 ORDER BY applied_at DESC", roleSelectionColumns)
	var selections []models.RoleSelection
	if err := r.db.SelectContext(ctx, &selections, query, userID); err != nil {
		return nil, fmt.Errorf("list role applications: %w", err)
	}
	return selections, nil
}

// ListPending returns pending applications with optional role filter,
// ordering and limit.
func (r *RoleSelectionRepository) ListPending(ctx context.Context, filter models.RoleSelectionFilter) ([]models.RoleSelection, error) {
	base := "FROM role_applications WHERE status = $1"
	args := []interface{}{models.RoleSelectionStatusPending}

	if filter.Role != nil {
		base += fmt.Sprintf(" AND selected_role = $%d", len(args)+1)
		args = append(args, *filter.Role)
	}

	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "applied_at"
	}
	allowedSorts := map[string]string{
		"applied_at": "applied_at",
		"role":       "selected_role",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "applied_at"
	}

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d", roleSelectionColumns, base, column, order, limit)
	var selections []models.RoleSelection
	if err := r.db.SelectContext(ctx, &selections, query, args...); err != nil {
		return nil, fmt.Errorf("list pending role applications: %w", err)
	}
	return selections, nil
}

// Create inserts a new application record.
func (r *RoleSelectionRepository) Create(ctx context.Context, selection *models.RoleSelection) error {
	if selection.ID == "" {
		selection.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if selection.CreatedAt.IsZero() {
		selection.CreatedAt = now
	}
	selection.UpdatedAt = now

	const query = `INSERT INTO role_applications (id, user_id, selected_role, contract_type, specializations, selected_brand_id, marketing_experience, motivation, status, applied_at, reviewed_at, approved_by, rejection_reason, admin_notes, created_at, updated_at)
		VALUES (:id, :user_id, :selected_role, :contract_type, :specializations, :selected_brand_id, :marketing_experience, :motivation, :status, :applied_at, :reviewed_at, :approved_by, :rejection_reason, :admin_notes, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, selection); err != nil {
		return fmt.Errorf("create role application: %w", err)
	}
	return nil
}

// MarkReviewed persists an approve/reject decision, guarded on the
// application still being pending. Zero rows affected means the application
// was already reviewed; sql.ErrNoRows is returned so callers can surface
// the idempotency violation.
func (r *RoleSelectionRepository) MarkReviewed(ctx context.Context, selection *models.RoleSelection) error {
	selection.UpdatedAt = time.Now().UTC()
	const query = `UPDATE role_applications
		SET status = $2, reviewed_at = $3, approved_by = $4, rejection_reason = $5, admin_notes = $6, updated_at = $7
		WHERE id = $1 AND status = $8`
	result, err := r.db.ExecContext(ctx, query,
		selection.ID,
		selection.Status,
		selection.ReviewedAt,
		selection.ApprovedBy,
		selection.RejectionReason,
		selection.AdminNotes,
		selection.UpdatedAt,
		models.RoleSelectionStatusPending,
	)
	if err != nil {
		return fmt.Errorf("mark role application reviewed: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Stats aggregates application volumes, approval latency and approval rate.
func (r *RoleSelectionRepository) Stats(ctx context.Context) (*models.RoleSelectionStats, error) {
	const totalsQuery = `SELECT
		COUNT(*) AS total,
		COUNT(*) FILTER (WHERE status = 'pending') AS pending,
		COUNT(*) FILTER (WHERE status = 'approved') AS approved,
		COUNT(*) FILTER (WHERE status = 'rejected') AS rejected,
		COALESCE(AVG(EXTRACT(EPOCH FROM (reviewed_at - applied_at)) / 3600) FILTER (WHERE status = 'approved'), 0) AS avg_approval_hours
		FROM role_applications`

	var totals struct {
		Total            int     `db:"total"`
		Pending          int     `db:"pending"`
		Approved         int     `db:"approved"`
		Rejected         int     `db:"rejected"`
		AvgApprovalHours float64 `db:"avg_approval_hours"`
	}
	if err := r.db.GetContext(ctx, &totals, totalsQuery); err != nil {
		return nil, fmt.Errorf("aggregate role application totals: %w", err)
	}

	const byRoleQuery = `SELECT selected_role, COUNT(*) AS count FROM role_applications GROUP BY selected_role`
	rows := []struct {
		SelectedRole string `db:"selected_role"`
		Count        int    `db:"count"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, byRoleQuery); err != nil {
		return nil, fmt.Errorf("aggregate role application roles: %w", err)
	}

	byRole := make(map[string]int, len(rows))
	for _, row := range rows {
		byRole[row.SelectedRole] = row.Count
	}

	stats := &models.RoleSelectionStats{
		Total:                totals.Total,
		Pending:              totals.Pending,
		Approved:             totals.Approved,
		Rejected:             totals.Rejected,
		ByRole:               byRole,
		AverageApprovalHours: totals.AvgApprovalHours,
	}
	if reviewed := totals.Approved + totals.Rejected; reviewed > 0 {
		stats.ApprovalRate = float64(totals.Approved) / float64(reviewed)
	}
	return stats, nil
}
