package service

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/depth-studio/depth-studio-api/internal/models"
	appErrors "github.com/depth-studio/depth-studio-api/pkg/errors"
)

type roleSelectionRepo interface {
	FindByID(ctx context.Context, id string) (*models.RoleSelection, error)
	FindPendingByUser(ctx context.Context, userID string) (*models.RoleSelection, error)
	ListByUser(ctx context.Context, userID string) ([]models.RoleSelection, error)
	ListPending(ctx context.Context, filter models.RoleSelectionFilter) ([]models.RoleSelection, error)
	Create(ctx context.Context, selection *models.RoleSelection) error
	MarkReviewed(ctx context.Context, selection *models.RoleSelection) error
	Stats(ctx context.Context) (*models.RoleSelectionStats, error)
}

type roleSelectionUserRepo interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindFirstSuperAdmin(ctx context.Context) (*models.User, error)
	ActivateRole(ctx context.Context, id string, role models.UserRole, status models.UserStatus) error
	UpdateStatus(ctx context.Context, id string, status models.UserStatus) error
}

type roleSelectionBrandRepo interface {
	FindByID(ctx context.Context, id string) (*models.Brand, error)
	Search(ctx context.Context, filter models.BrandFilter) ([]models.Brand, int, error)
	AssignCoordinator(ctx context.Context, brandID, userID string) error
}

type brandGrantWriter interface {
	AddBrandPermission(ctx context.Context, userID string, grant models.BrandPermission) error
}

type roleSelectionNotifier interface {
	RoleSubmitted(ctx context.Context, adminID string, selection *models.RoleSelection)
	RoleApproved(ctx context.Context, userID string, role models.UserRole)
	RoleRejected(ctx context.Context, userID string, reason string)
}

// SubmitRoleSelectionRequest is the application payload.
type SubmitRoleSelectionRequest struct {
	UserID              string   `json:"user_id" validate:"required"`
	SelectedRole        string   `json:"selected_role" validate:"required"`
	ContractType        string   `json:"contract_type"`
	Specializations     []string `json:"specializations"`
	SelectedBrandID     string   `json:"selected_brand_id"`
	MarketingExperience string   `json:"marketing_experience"`
	Motivation          string   `json:"motivation"`
}

// SubmitResult is the soft contract of Submit: requirement failures the
// applicant must fix come back as Success=false with a message instead of
// an error.
type SubmitResult struct {
	Success       bool                  `json:"success"`
	Message       string                `json:"message"`
	RoleSelection *models.RoleSelection `json:"role_selection,omitempty"`
}

// RoleSelectionService manages the lifecycle of role applications:
// submission, admin review and the resulting user and brand mutations.
type RoleSelectionService struct {
	selections  roleSelectionRepo
	users       roleSelectionUserRepo
	brands      roleSelectionBrandRepo
	brandGrants brandGrantWriter
	notifier    roleSelectionNotifier
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewRoleSelectionService constructs a RoleSelectionService. brandGrants and
// notifier may be nil.
func NewRoleSelectionService(
	selections roleSelectionRepo,
	users roleSelectionUserRepo,
	brands roleSelectionBrandRepo,
	brandGrants brandGrantWriter,
	notifier roleSelectionNotifier,
	validate *validator.Validate,
	logger *zap.Logger,
) *RoleSelectionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoleSelectionService{
		selections:  selections,
		users:       users,
		brands:      brands,
		brandGrants: brandGrants,
		notifier:    notifier,
		validator:   validate,
		logger:      logger,
	}
}

// Submit files a new role application. Exactly one pending application may
// exist per user; a rejected user may re-apply.
func (s *RoleSelectionService) Submit(ctx context.Context, req SubmitRoleSelectionRequest) (*SubmitResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid role application payload")
	}

	role := models.UserRole(req.SelectedRole)
	if !role.IsSelectable() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "selected role is not available for application")
	}

	if _, err := s.users.FindByID(ctx, req.UserID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	if _, err := s.selections.FindPendingByUser(ctx, req.UserID); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "a pending role application already exists for this user")
	} else if err != sql.ErrNoRows {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check pending applications")
	}

	if ok, message := s.validateRequirements(ctx, role, req); !ok {
		return &SubmitResult{Success: false, Message: message}, nil
	}

	selection := &models.RoleSelection{
		UserID:       req.UserID,
		SelectedRole: role,
		Status:       models.RoleSelectionStatusPending,
		AppliedAt:    time.Now().UTC(),
	}
	if req.ContractType != "" {
		ct := models.ContractType(req.ContractType)
		selection.ContractType = &ct
	}
	if len(req.Specializations) > 0 {
		selection.Specializations = pq.StringArray(req.Specializations)
	}
	if req.SelectedBrandID != "" {
		selection.SelectedBrandID = &req.SelectedBrandID
	}
	if req.MarketingExperience != "" {
		selection.MarketingExperience = &req.MarketingExperience
	}
	if req.Motivation != "" {
		selection.Motivation = &req.Motivation
	}

	if err := s.selections.Create(ctx, selection); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create role application")
	}

	if err := s.users.UpdateStatus(ctx, req.UserID, models.UserStatusPendingApproval); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update user status")
	}

	s.notifyAdmin(ctx, selection)

	return &SubmitResult{Success: true, Message: "role application submitted", RoleSelection: selection}, nil
}

// validateRequirements applies the role-specific form rules. Violations are
// soft failures reported back to the applicant.
func (s *RoleSelectionService) validateRequirements(ctx context.Context, role models.UserRole, req SubmitRoleSelectionRequest) (bool, string) {
	switch role {
	case models.RolePhotographer:
		ct := models.ContractType(req.ContractType)
		if ct != models.ContractTypeFreelancer && ct != models.ContractTypeSalary {
			return false, "contract_type is required and must be freelancer or salary"
		}
		if len(req.Specializations) == 0 {
			return false, "at least one specialization is required"
		}
	case models.RoleBrandCoordinator:
		if req.SelectedBrandID == "" {
			return false, "selected_brand_id is required for brand coordinator applications"
		}
		if _, err := s.brands.FindByID(ctx, req.SelectedBrandID); err != nil {
			if err == sql.ErrNoRows {
				return false, "selected brand does not exist"
			}
			s.logger.Warn("brand lookup failed during application validation", zap.Error(err))
			return false, "selected brand could not be verified"
		}
	case models.RoleMarketingCoordinator:
		if strings.TrimSpace(req.MarketingExperience) == "" {
			return false, "marketing_experience is required for marketing coordinator applications"
		}
	}
	return true, ""
}

// Approve finalises a pending application and promotes the user. Only a
// pending application may be approved; a second review attempt conflicts.
func (s *RoleSelectionService) Approve(ctx context.Context, applicationID, approvedBy string, adminNotes string) (*models.RoleSelection, error) {
	selection, err := s.loadApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if selection.Status != models.RoleSelectionStatusPending {
		return nil, appErrors.Clone(appErrors.ErrConflict, "application already reviewed")
	}

	now := time.Now().UTC()
	selection.Status = models.RoleSelectionStatusApproved
	selection.ReviewedAt = &now
	selection.ApprovedBy = &approvedBy
	if adminNotes != "" {
		selection.AdminNotes = &adminNotes
	}

	if err := s.selections.MarkReviewed(ctx, selection); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrConflict, "application already reviewed")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store review decision")
	}

	if err := s.users.ActivateRole(ctx, selection.UserID, selection.SelectedRole, models.UserStatusActive); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to activate user role")
	}

	if selection.SelectedRole == models.RoleBrandCoordinator && selection.SelectedBrandID != nil {
		// Last write wins: an existing coordinator on the brand is replaced.
		if err := s.brands.AssignCoordinator(ctx, *selection.SelectedBrandID, selection.UserID); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to link brand coordinator")
		}
		if s.brandGrants != nil {
			grant := models.BrandPermission{
				BrandID:      *selection.SelectedBrandID,
				CanEditTasks: true,
				AccessLevel:  models.AccessLevelManager,
			}
			if err := s.brandGrants.AddBrandPermission(ctx, selection.UserID, grant); err != nil {
				s.logger.Warn("failed to add brand grant for approved coordinator",
					zap.String("user_id", selection.UserID),
					zap.String("brand_id", *selection.SelectedBrandID),
					zap.Error(err))
			}
		}
	}

	if s.notifier != nil {
		s.notifier.RoleApproved(ctx, selection.UserID, selection.SelectedRole)
	}
	return selection, nil
}

// Reject declines a pending application and returns the user to role setup
// so they may re-apply.
func (s *RoleSelectionService) Reject(ctx context.Context, applicationID, rejectedBy, reason, adminNotes string) (*models.RoleSelection, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "rejection reason is required")
	}

	selection, err := s.loadApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if selection.Status != models.RoleSelectionStatusPending {
		return nil, appErrors.Clone(appErrors.ErrConflict, "application already reviewed")
	}

	now := time.Now().UTC()
	selection.Status = models.RoleSelectionStatusRejected
	selection.ReviewedAt = &now
	selection.ApprovedBy = &rejectedBy
	selection.RejectionReason = &reason
	if adminNotes != "" {
		selection.AdminNotes = &adminNotes
	}

	if err := s.selections.MarkReviewed(ctx, selection); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrConflict, "application already reviewed")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store review decision")
	}

	if err := s.users.UpdateStatus(ctx, selection.UserID, models.UserStatusPendingRoleSetup); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update user status")
	}

	if s.notifier != nil {
		s.notifier.RoleRejected(ctx, selection.UserID, reason)
	}
	return selection, nil
}

// ListPending returns in-flight applications for the admin review queue.
func (s *RoleSelectionService) ListPending(ctx context.Context, filter models.RoleSelectionFilter) ([]models.RoleSelection, error) {
	selections, err := s.selections.ListPending(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pending applications")
	}
	return selections, nil
}

// History returns a user's full application history.
func (s *RoleSelectionService) History(ctx context.Context, userID string) ([]models.RoleSelection, error) {
	selections, err := s.selections.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application history")
	}
	return selections, nil
}

// Stats aggregates application volumes for the admin dashboard.
func (s *RoleSelectionService) Stats(ctx context.Context) (*models.RoleSelectionStats, error) {
	stats, err := s.selections.Stats(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate application stats")
	}
	return stats, nil
}

// SearchBrands exposes brand search to applicants picking a brand.
func (s *RoleSelectionService) SearchBrands(ctx context.Context, filter models.BrandFilter) ([]models.Brand, *models.Pagination, error) {
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

func (s *RoleSelectionService) loadApplication(ctx context.Context, id string) (*models.RoleSelection, error) {
	selection, err := s.selections.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}
	return selection, nil
}

// notifyAdmin is best-effort: a missing super admin only logs.
func (s *RoleSelectionService) notifyAdmin(ctx context.Context, selection *models.RoleSelection) {
	if s.notifier == nil {
		return
	}
	admin, err := s.users.FindFirstSuperAdmin(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			s.logger.Info("no super admin to notify about new role application", zap.String("application_id", selection.ID))
		} else {
			s.logger.Warn("failed to look up super admin for notification", zap.Error(err))
		}
		return
	}
	s.notifier.RoleSubmitted(ctx, admin.ID, selection)
}
