package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/depth-studio/depth-studio-api/internal/models"
	appErrors "github.com/depth-studio/depth-studio-api/pkg/errors"
)

type campaignRepo interface {
	List(ctx context.Context, filter models.CampaignFilter) ([]models.Campaign, int, error)
	FindByID(ctx context.Context, id string) (*models.Campaign, error)
	Create(ctx context.Context, campaign *models.Campaign) error
	Update(ctx context.Context, campaign *models.Campaign) error
	Delete(ctx context.Context, id string) error
}

type campaignBrandRepo interface {
	FindByID(ctx context.Context, id string) (*models.Brand, error)
}

// CreateCampaignRequest creates a campaign under a brand.
type CreateCampaignRequest struct {
	BrandID     string     `json:"brand_id" validate:"required"`
	Name        string     `json:"name" validate:"required,min=2,max=200"`
	Description string     `json:"description"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	CreatedBy   string     `json:"-"`
}

// UpdateCampaignRequest updates campaign details. Status moves through
// UpdateStatus; progress fields are derived and never accepted here.
type UpdateCampaignRequest struct {
	Name        *string    `json:"name" validate:"omitempty,min=2,max=200"`
	Description *string    `json:"description"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

// CampaignService manages campaign CRUD and lifecycle transitions.
type CampaignService struct {
	campaigns campaignRepo
	brands    campaignBrandRepo
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCampaignService constructs a CampaignService.
func NewCampaignService(campaigns campaignRepo, brands campaignBrandRepo, validate *validator.Validate, logger *zap.Logger) *CampaignService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CampaignService{campaigns: campaigns, brands: brands, validator: validate, logger: logger}
}

// List returns campaigns matching the filter with pagination metadata.
func (s *CampaignService) List(ctx context.Context, filter models.CampaignFilter) ([]models.Campaign, *models.Pagination, error) {
	campaigns, total, err := s.campaigns.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list campaigns")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return campaigns, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a single campaign.
func (s *CampaignService) Get(ctx context.Context, id string) (*models.Campaign, error) {
	campaign, err := s.campaigns.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "campaign not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load campaign")
	}
	return campaign, nil
}

// Create adds a new campaign in draft status.
func (s *CampaignService) Create(ctx context.Context, req CreateCampaignRequest) (*models.Campaign, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid campaign payload")
	}
	if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_date must not be before start_date")
	}

	if _, err := s.brands.FindByID(ctx, req.BrandID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "brand not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load brand")
	}

	now := time.Now().UTC()
	campaign := &models.Campaign{
		BrandID:   req.BrandID,
		Name:      req.Name,
		Status:    models.CampaignStatusDraft,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		CreatedBy: req.CreatedBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Description != "" {
		campaign.Description = &req.Description
	}

	if err := s.campaigns.Create(ctx, campaign); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create campaign")
	}
	return campaign, nil
}

// Update applies descriptive changes to a campaign.
func (s *CampaignService) Update(ctx context.Context, id string, req UpdateCampaignRequest) (*models.Campaign, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid campaign payload")
	}

	campaign, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		campaign.Name = *req.Name
	}
	if req.Description != nil {
		campaign.Description = req.Description
	}
	if req.StartDate != nil {
		campaign.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		campaign.EndDate = req.EndDate
	}
	if campaign.StartDate != nil && campaign.EndDate != nil && campaign.EndDate.Before(*campaign.StartDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_date must not be before start_date")
	}
	campaign.UpdatedAt = time.Now().UTC()

	if err := s.campaigns.Update(ctx, campaign); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update campaign")
	}
	return campaign, nil
}

// UpdateStatus moves a campaign through its lifecycle.
func (s *CampaignService) UpdateStatus(ctx context.Context, id string, status models.CampaignStatus) (*models.Campaign, error) {
	campaign, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !campaign.Status.CanTransitionTo(status) {
		return nil, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("cannot transition campaign from %s to %s", campaign.Status, status))
	}

	campaign.Status = status
	campaign.UpdatedAt = time.Now().UTC()
	if err := s.campaigns.Update(ctx, campaign); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update campaign status")
	}
	return campaign, nil
}

// Delete removes a campaign. Only draft and cancelled campaigns may be
// deleted; everything else carries production history.
func (s *CampaignService) Delete(ctx context.Context, id string) error {
	campaign, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if campaign.Status != models.CampaignStatusDraft && campaign.Status != models.CampaignStatusCancelled {
		return appErrors.Clone(appErrors.ErrValidation, "only draft or cancelled campaigns can be deleted")
	}
	if err := s.campaigns.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "campaign not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete campaign")
	}
	return nil
}
