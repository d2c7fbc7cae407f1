package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/depth-studio/depth-studio-api/internal/models"
)

const brandColumns = "id, name_en, name_ar, description, brand_type, industry, status, assigned_coordinator, created_at, updated_at"

// BrandRepository manages persistence for brands.
type BrandRepository struct {
	db *sqlx.DB
}

// NewBrandRepository constructs a BrandRepository.
func NewBrandRepository(db *sqlx.DB) *BrandRepository {
	return &BrandRepository{db: db}
}

// Search returns brands matching free-text and structured filters.
func (r *BrandRepository) Search(ctx context.Context, filter models.BrandFilter) ([]models.Brand, int, error) {
	base := "FROM brands WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		conditions = append(conditions, fmt.Sprintf("(LOWER(name_en) LIKE $%d OR LOWER(COALESCE(name_ar, '')) LIKE $%d OR LOWER(COALESCE(description, '')) LIKE $%d)", len(args)+1, len(args)+1, len(args)+1))
		args = append(args, search)
	}
	if filter.BrandType != "" {
		conditions = append(conditions, fmt.Sprintf("brand_type = $%d", len(args)+1))
		args = append(args, filter.BrandType)
	}
	if filter.Industry != "" {
		conditions = append(conditions, fmt.Sprintf("industry = $%d", len(args)+1))
		args = append(args, filter.Industry)
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.HasCoordinator != nil {
		if *filter.HasCoordinator {
			conditions = append(conditions, "assigned_coordinator IS NOT NULL")
		} else {
			conditions = append(conditions, "assigned_coordinator IS NULL")
		}
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	allowedSorts := map[string]string{
		"name":       "name_en",
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", brandColumns, base, column, order, size, offset)
	var brands []models.Brand
	if err := r.db.SelectContext(ctx, &brands, query, args...); err != nil {
		return nil, 0, fmt.Errorf("search brands: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count brands: %w", err)
	}

	return brands, total, nil
}

// FindByID fetches a brand by ID.
func (r *BrandRepository) FindByID(ctx context.Context, id string) (*models.Brand, error) {
	query := fmt.Sprintf("SELECT %s FROM brands WHERE id = $1", brandColumns)
	var brand models.Brand
	if err := r.db.GetContext(ctx, &brand, query, id); err != nil {
		return nil, err
	}
	return &brand, nil
}

// Create inserts a new brand record.
func (r *BrandRepository) Create(ctx context.Context, brand *models.Brand) error {
	if brand.ID == "" {
		brand.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if brand.CreatedAt.IsZero() {
		brand.CreatedAt = now
	}
	brand.UpdatedAt = now

	const query = `INSERT INTO brands (id, name_en, name_ar, description, brand_type, industry, status, assigned_coordinator, created_at, updated_at)
		VALUES (:id, :name_en, :name_ar, :description, :brand_type, :industry, :status, :assigned_coordinator, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, brand); err != nil {
		return fmt.Errorf("create brand: %w", err)
	}
	return nil
}

// Update modifies an existing brand record.
func (r *BrandRepository) Update(ctx context.Context, brand *models.Brand) error {
	brand.UpdatedAt = time.Now().UTC()
	const query = `UPDATE brands SET name_en = :name_en, name_ar = :name_ar, description = :description, brand_type = :brand_type, industry = :industry, status = :status, assigned_coordinator = :assigned_coordinator, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, brand); err != nil {
		return fmt.Errorf("update brand: %w", err)
	}
	return nil
}

// AssignCoordinator sets the brand's primary coordinator. Last write wins;
// an existing coordinator is silently replaced.
func (r *BrandRepository) AssignCoordinator(ctx context.Context, brandID, userID string) error {
	const query = `UPDATE brands SET assigned_coordinator = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, brandID, userID, time.Now().UTC()); err != nil {
		return fmt.Errorf("assign brand coordinator: %w", err)
	}
	return nil
}
