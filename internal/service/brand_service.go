package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/depth-studio/depth-studio-api/internal/models"
	appErrors "github.com/depth-studio/depth-studio-api/pkg/errors"
)

type brandRepo interface {
	Search(ctx context.Context, filter models.BrandFilter) ([]models.Brand, int, error)
	FindByID(ctx context.Context, id string) (*models.Brand, error)
	Create(ctx context.Context, brand *models.Brand) error
	Update(ctx context.Context, brand *models.Brand) error
	AssignCoordinator(ctx context.Context, brandID, userID string) error
}

type brandUserReader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// CreateBrandRequest registers a new brand.
type CreateBrandRequest struct {
	NameEn      string `json:"name_en" validate:"required,min=2,max=200"`
	NameAr      string `json:"name_ar"`
	Description string `json:"description"`
	BrandType   string `json:"brand_type"`
	Industry    string `json:"industry"`
	Status      string `json:"status"`
}

// UpdateBrandRequest updates brand details.
type UpdateBrandRequest struct {
	NameEn      *string `json:"name_en" validate:"omitempty,min=2,max=200"`
	NameAr      *string `json:"name_ar"`
	Description *string `json:"description"`
	BrandType   *string `json:"brand_type"`
	Industry    *string `json:"industry"`
	Status      *string `json:"status"`
}

// BrandService manages brand records and coordinator linkage.
type BrandService struct {
	brands    brandRepo
	users     brandUserReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewBrandService constructs a BrandService.
func NewBrandService(brands brandRepo, users brandUserReader, validate *validator.Validate, logger *zap.Logger) *BrandService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BrandService{brands: brands, users: users, validator: validate, logger: logger}
}

// Search returns brands matching the filter with pagination metadata.
func (s *BrandService) Search(ctx context.Context, filter models.BrandFilter) ([]models.Brand, *models.Pagination, error) {
	brands, total, err := s.brands.Search(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to search brands")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return brands, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a single brand.
func (s *BrandService) Get(ctx context.Context, id string) (*models.Brand, error) {
	brand, err := s.brands.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "brand not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load brand")
	}
	return brand, nil
}

// Create registers a new brand. Status defaults to development.
func (s *BrandService) Create(ctx context.Context, req CreateBrandRequest) (*models.Brand, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid brand payload")
	}

	brand := &models.Brand{
		NameEn: req.NameEn,
		Status: models.BrandStatusDevelopment,
	}
	if req.Status != "" {
		brand.Status = models.BrandStatus(req.Status)
	}
	if req.NameAr != "" {
		brand.NameAr = &req.NameAr
	}
	if req.Description != "" {
		brand.Description = &req.Description
	}
	if req.BrandType != "" {
		brand.BrandType = &req.BrandType
	}
	if req.Industry != "" {
		brand.Industry = &req.Industry
	}

	if err := s.brands.Create(ctx, brand); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create brand")
	}
	return brand, nil
}

// Update applies changes to a brand.
func (s *BrandService) Update(ctx context.Context, id string, req UpdateBrandRequest) (*models.Brand, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid brand payload")
	}

	brand, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.NameEn != nil {
		brand.NameEn = *req.NameEn
	}
	if req.NameAr != nil {
		brand.NameAr = req.NameAr
	}
	if req.Description != nil {
		brand.Description = req.Description
	}
	if req.BrandType != nil {
		brand.BrandType = req.BrandType
	}
	if req.Industry != nil {
		brand.Industry = req.Industry
	}
	if req.Status != nil {
		brand.Status = models.BrandStatus(*req.Status)
	}

	if err := s.brands.Update(ctx, brand); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update brand")
	}
	return brand, nil
}

// AssignCoordinator links a brand coordinator to a brand. The previous
// coordinator, if any, is replaced.
func (s *BrandService) AssignCoordinator(ctx context.Context, brandID, userID string) error {
	if _, err := s.Get(ctx, brandID); err != nil {
		return err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	if user.Role != models.RoleBrandCoordinator || !user.Active {
		return appErrors.Clone(appErrors.ErrValidation, "user is not an active brand coordinator")
	}

	if err := s.brands.AssignCoordinator(ctx, brandID, userID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign coordinator")
	}
	return nil
}
