package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/depth-studio/depth-studio-api/internal/models"
)

// PermissionRepository manages the 1:1 user permission records.
type PermissionRepository struct {
	db *sqlx.DB
}

// NewPermissionRepository constructs a PermissionRepository.
func NewPermissionRepository(db *sqlx.DB) *PermissionRepository {
	return &PermissionRepository{db: db}
}

// GetByUserID fetches the permission record for a user.
func (r *PermissionRepository) GetByUserID(ctx context.Context, userID string) (*models.UserPermissions, error) {
	const query = `SELECT user_id, brand_permissions, crud_permissions, screen_permissions, created_at, updated_at FROM user_permissions WHERE user_id = $1`
	var perms models.UserPermissions
	if err := r.db.GetContext(ctx, &perms, query, userID); err != nil {
		return nil, err
	}
	return &perms, nil
}

// Create inserts a permission record for a newly created user.
func (r *PermissionRepository) Create(ctx context.Context, perms *models.UserPermissions) error {
	now := time.Now().UTC()
	if perms.CreatedAt.IsZero() {
		perms.CreatedAt = now
	}
	perms.UpdatedAt = now
	const query = `INSERT INTO user_permissions (user_id, brand_permissions, crud_permissions, screen_permissions, created_at, updated_at)
		VALUES (:user_id, :brand_permissions, :crud_permissions, :screen_permissions, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, perms); err != nil {
		return fmt.Errorf("create user permissions: %w", err)
	}
	return nil
}

// Update replaces the stored grants for a user.
func (r *PermissionRepository) Update(ctx context.Context, perms *models.UserPermissions) error {
	perms.UpdatedAt = time.Now().UTC()
	const query = `UPDATE user_permissions SET brand_permissions = :brand_permissions, crud_permissions = :crud_permissions, screen_permissions = :screen_permissions, updated_at = :updated_at WHERE user_id = :user_id`
	if _, err := r.db.NamedExecContext(ctx, query, perms); err != nil {
		return fmt.Errorf("update user permissions: %w", err)
	}
	return nil
}

// AddBrandPermission appends a brand grant to the user's record, replacing
// any existing grant for the same brand.
func (r *PermissionRepository) AddBrandPermission(ctx context.Context, userID string, grant models.BrandPermission) error {
	perms, err := r.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}
	updated := make(models.BrandPermissionList, 0, len(perms.BrandPermissions)+1)
	for _, p := range perms.BrandPermissions {
		if p.BrandID != grant.BrandID {
			updated = append(updated, p)
		}
	}
	updated = append(updated, grant)
	perms.BrandPermissions = updated
	return r.Update(ctx, perms)
}
