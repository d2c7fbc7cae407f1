package service

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/depth-studio/depth-studio-api/internal/models"
	appErrors "github.com/depth-studio/depth-studio-api/pkg/errors"
)

// Resource types consulted by the permission resolver.
const (
	ResourceTasks     = "tasks"
	ResourceCampaigns = "campaigns"
	ResourceBrands    = "brands"
	ResourceUsers     = "users"
)

type permissionUserReader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type permissionStore interface {
	GetByUserID(ctx context.Context, userID string) (*models.UserPermissions, error)
}

type permissionTaskReader interface {
	FindByID(ctx context.Context, id string) (*models.CampaignTask, error)
}

type permissionCampaignReader interface {
	FindByID(ctx context.Context, id string) (*models.Campaign, error)
}

// brandCoordinatorDefaults is the list-level capability set for brand
// coordinators. Instance-level brand checks narrow it down on access.
var brandCoordinatorDefaults = models.Capabilities{
	CanCreate: true,
	CanUpdate: true,
	CanDelete: false,
	CanView:   true,
	CanAssign: true,
}

// photographerCapabilities is fixed: photographers may view and update work
// already assigned to them. The assignee check itself is the caller's
// responsibility since the resolver does not see the requesting task.
var photographerCapabilities = models.Capabilities{
	CanUpdate: true,
	CanView:   true,
}

// PermissionService resolves the capability set for a user against a
// resource. It is a pure read: no caching, no side effects.
type PermissionService struct {
	users     permissionUserReader
	store     permissionStore
	tasks     permissionTaskReader
	campaigns permissionCampaignReader
	logger    *zap.Logger
}

// NewPermissionService constructs a PermissionService.
func NewPermissionService(
	users permissionUserReader,
	store permissionStore,
	tasks permissionTaskReader,
	campaigns permissionCampaignReader,
	logger *zap.Logger,
) *PermissionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PermissionService{users: users, store: store, tasks: tasks, campaigns: campaigns, logger: logger}
}

// Resolve computes the capability set for userID acting on resourceType.
// resourceID is optional; when present for task or campaign resources the
// brand-scoped rules of brand coordinators apply to that instance.
func (s *PermissionService) Resolve(ctx context.Context, userID, resourceType, resourceID string) (models.Capabilities, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.NoCapabilities(), appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return models.NoCapabilities(), appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	if user.Role == models.RoleSuperAdmin {
		return models.AllCapabilities(), nil
	}

	perms, err := s.store.GetByUserID(ctx, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.NoCapabilities(), appErrors.Clone(appErrors.ErrNotFound, "user permissions not found")
		}
		return models.NoCapabilities(), appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user permissions")
	}

	switch user.Role {
	case models.RoleMarketingCoordinator:
		return s.resolveMarketingCoordinator(perms, resourceType), nil
	case models.RoleBrandCoordinator:
		return s.resolveBrandCoordinator(ctx, perms, resourceType, resourceID)
	case models.RolePhotographer:
		return photographerCapabilities, nil
	default:
		return models.NoCapabilities(), nil
	}
}

// resolveMarketingCoordinator reads capabilities verbatim from the stored
// grants. Assignment on task-shaped resources is always allowed for the role.
func (s *PermissionService) resolveMarketingCoordinator(perms *models.UserPermissions, resourceType string) models.Capabilities {
	grant := perms.CRUDPermissions[resourceType]
	caps := models.Capabilities{
		CanCreate: grant.Create,
		CanUpdate: grant.Update,
		CanDelete: grant.Delete,
		CanView:   grant.Read,
	}
	if resourceType == ResourceTasks {
		caps.CanAssign = true
	}
	return caps
}

// resolveBrandCoordinator applies the brand-scoped rules. Without an
// instance id the role-level defaults apply; with one, the owning brand
// must appear in the coordinator's grants.
func (s *PermissionService) resolveBrandCoordinator(ctx context.Context, perms *models.UserPermissions, resourceType, resourceID string) (models.Capabilities, error) {
	if resourceID == "" {
		return brandCoordinatorDefaults, nil
	}

	brandID, err := s.resolveOwningBrand(ctx, resourceType, resourceID)
	if err != nil {
		return models.NoCapabilities(), err
	}
	if brandID == "" {
		return brandCoordinatorDefaults, nil
	}

	grant, ok := perms.BrandPermissions.ForBrand(brandID)
	if !ok {
		return models.NoCapabilities(), nil
	}

	caps := brandCoordinatorDefaults
	if resourceType == ResourceTasks && !grant.CanEditTasks {
		caps.CanUpdate = false
		caps.CanAssign = false
	}
	return caps, nil
}

// resolveOwningBrand walks task -> campaign -> brand for instance-scoped
// checks. Resource types without brand ownership return an empty id.
func (s *PermissionService) resolveOwningBrand(ctx context.Context, resourceType, resourceID string) (string, error) {
	campaignID := ""
	switch resourceType {
	case ResourceTasks:
		task, err := s.tasks.FindByID(ctx, resourceID)
		if err != nil {
			if err == sql.ErrNoRows {
				return "", appErrors.Clone(appErrors.ErrNotFound, "task not found")
			}
			return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load task")
		}
		campaignID = task.CampaignID
	case ResourceCampaigns:
		campaignID = resourceID
	default:
		return "", nil
	}

	campaign, err := s.campaigns.FindByID(ctx, campaignID)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", appErrors.Clone(appErrors.ErrNotFound, "campaign not found")
		}
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load campaign")
	}
	return campaign.BrandID, nil
}
