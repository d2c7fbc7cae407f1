package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/depth-studio/depth-studio-api/internal/models"
	appErrors "github.com/depth-studio/depth-studio-api/pkg/errors"
)

type roleSelectionRepoStub struct {
	selections map[string]*models.RoleSelection
	pending    map[string]*models.RoleSelection
	created    []*models.RoleSelection
	reviewErr  error
}

func (s *roleSelectionRepoStub) FindByID(ctx context.Context, id string) (*models.RoleSelection, error) {
	if selection, ok := s.selections[id]; ok {
		cp := *selection
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (s *roleSelectionRepoStub) FindPendingByUser(ctx context.Context, userID string) (*models.RoleSelection, error) {
	if selection, ok := s.pending[userID]; ok {
		return selection, nil
	}
	return nil, sql.ErrNoRows
}

func (s *roleSelectionRepoStub) ListByUser(ctx context.Context, userID string) ([]models.RoleSelection, error) {
	return nil, nil
}

func (s *roleSelectionRepoStub) ListPending(ctx context.Context, filter models.RoleSelectionFilter) ([]models.RoleSelection, error) {
	return nil, nil
}

func (s *roleSelectionRepoStub) Create(ctx context.Context, selection *models.RoleSelection) error {
	s.created = append(s.created, selection)
	return nil
}

func (s *roleSelectionRepoStub) MarkReviewed(ctx context.Context, selection *models.RoleSelection) error {
	if s.reviewErr != nil {
		return s.reviewErr
	}
	s.selections[selection.ID] = selection
	return nil
}

func (s *roleSelectionRepoStub) Stats(ctx context.Context) (*models.RoleSelectionStats, error) {
	return &models.RoleSelectionStats{}, nil
}

type roleSelectionUserRepoStub struct {
	users       map[string]*models.User
	admin       *models.User
	activations []string
	statuses    map[string]models.UserStatus
}

func (s *roleSelectionUserRepoStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	if user, ok := s.users[id]; ok {
		return user, nil
	}
	return nil, sql.ErrNoRows
}

func (s *roleSelectionUserRepoStub) FindFirstSuperAdmin(ctx context.Context) (*models.User, error) {
	if s.admin != nil {
		return s.admin, nil
	}
	return nil, sql.ErrNoRows
}

func (s *roleSelectionUserRepoStub) ActivateRole(ctx context.Context, id string, role models.UserRole, status models.UserStatus) error {
	s.activations = append(s.activations, id+":"+string(role)+":"+string(status))
	return nil
}

func (s *roleSelectionUserRepoStub) UpdateStatus(ctx context.Context, id string, status models.UserStatus) error {
	if s.statuses == nil {
		s.statuses = map[string]models.UserStatus{}
	}
	s.statuses[id] = status
	return nil
}

type roleSelectionBrandRepoStub struct {
	brands       map[string]*models.Brand
	coordinators []string
}

func (s *roleSelectionBrandRepoStub) FindByID(ctx context.Context, id string) (*models.Brand, error) {
	if brand, ok := s.brands[id]; ok {
		return brand, nil
	}
	return nil, sql.ErrNoRows
}

func (s *roleSelectionBrandRepoStub) Search(ctx context.Context, filter models.BrandFilter) ([]models.Brand, int, error) {
	return nil, 0, nil
}

func (s *roleSelectionBrandRepoStub) AssignCoordinator(ctx context.Context, brandID, userID string) error {
	s.coordinators = append(s.coordinators, brandID+":"+userID)
	return nil
}

type brandGrantWriterStub struct {
	grants []models.BrandPermission
}

func (s *brandGrantWriterStub) AddBrandPermission(ctx context.Context, userID string, grant models.BrandPermission) error {
	s.grants = append(s.grants, grant)
	return nil
}

type roleNotifierStub struct {
	submitted []string
	approved  []string
	rejected  []string
}

func (s *roleNotifierStub) RoleSubmitted(ctx context.Context, adminID string, selection *models.RoleSelection) {
	s.submitted = append(s.submitted, adminID)
}

func (s *roleNotifierStub) RoleApproved(ctx context.Context, userID string, role models.UserRole) {
	s.approved = append(s.approved, userID)
}

func (s *roleNotifierStub) RoleRejected(ctx context.Context, userID string, reason string) {
	s.rejected = append(s.rejected, reason)
}

func newRoleSelectionFixture() (*RoleSelectionService, *roleSelectionRepoStub, *roleSelectionUserRepoStub, *roleSelectionBrandRepoStub, *brandGrantWriterStub, *roleNotifierStub) {
	selections := &roleSelectionRepoStub{
		selections: map[string]*models.RoleSelection{},
		pending:    map[string]*models.RoleSelection{},
	}
	users := &roleSelectionUserRepoStub{
		users: map[string]*models.User{
			"user-1": {ID: "user-1", Role: models.RoleNewUser, Status: models.UserStatusPendingRoleSetup},
		},
		admin: &models.User{ID: "admin-1", Role: models.RoleSuperAdmin},
	}
	brands := &roleSelectionBrandRepoStub{brands: map[string]*models.Brand{
		"brand-1": {ID: "brand-1", NameEn: "Brand One"},
	}}
	grants := &brandGrantWriterStub{}
	notifier := &roleNotifierStub{}
	svc := NewRoleSelectionService(selections, users, brands, grants, notifier, nil, zap.NewNop())
	return svc, selections, users, brands, grants, notifier
}

func TestRoleSelectionServiceSubmitPhotographer(t *testing.T) {
	svc, selections, users, _, _, notifier := newRoleSelectionFixture()

	result, err := svc.Submit(context.Background(), SubmitRoleSelectionRequest{
		UserID:          "user-1",
		SelectedRole:    string(models.RolePhotographer),
		ContractType:    string(models.ContractTypeFreelancer),
		Specializations: []string{"product", "lifestyle"},
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	require.NotNil(t, result.RoleSelection)
	assert.Equal(t, models.RoleSelectionStatusPending, result.RoleSelection.Status)
	assert.Len(t, selections.created, 1)
	assert.Equal(t, models.UserStatusPendingApproval, users.statuses["user-1"])
	assert.Equal(t, []string{"admin-1"}, notifier.submitted)
}

func TestRoleSelectionServiceSubmitPhotographerMissingContract(t *testing.T) {
	svc, selections, _, _, _, _ := newRoleSelectionFixture()

	result, err := svc.Submit(context.Background(), SubmitRoleSelectionRequest{
		UserID:          "user-1",
		SelectedRole:    string(models.RolePhotographer),
		Specializations: []string{"product"},
	})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "contract_type")
	assert.Empty(t, selections.created)
}

func TestRoleSelectionServiceSubmitPhotographerNoSpecializations(t *testing.T) {
	svc, _, _, _, _, _ := newRoleSelectionFixture()

	result, err := svc.Submit(context.Background(), SubmitRoleSelectionRequest{
		UserID:       "user-1",
		SelectedRole: string(models.RolePhotographer),
		ContractType: string(models.ContractTypeSalary),
	})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "specialization")
}

func TestRoleSelectionServiceSubmitBrandCoordinatorUnknownBrand(t *testing.T) {
	svc, _, _, _, _, _ := newRoleSelectionFixture()

	result, err := svc.Submit(context.Background(), SubmitRoleSelectionRequest{
		UserID:          "user-1",
		SelectedRole:    string(models.RoleBrandCoordinator),
		SelectedBrandID: "missing",
	})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "brand")
}

func TestRoleSelectionServiceSubmitMarketingCoordinatorNoExperience(t *testing.T) {
	svc, _, _, _, _, _ := newRoleSelectionFixture()

	result, err := svc.Submit(context.Background(), SubmitRoleSelectionRequest{
		UserID:              "user-1",
		SelectedRole:        string(models.RoleMarketingCoordinator),
		MarketingExperience: "   ",
	})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "marketing_experience")
}

func TestRoleSelectionServiceSubmitPendingConflict(t *testing.T) {
	svc, selections, _, _, _, _ := newRoleSelectionFixture()
	selections.pending["user-1"] = &models.RoleSelection{ID: "sel-1", UserID: "user-1"}

	_, err := svc.Submit(context.Background(), SubmitRoleSelectionRequest{
		UserID:          "user-1",
		SelectedRole:    string(models.RolePhotographer),
		ContractType:    string(models.ContractTypeFreelancer),
		Specializations: []string{"product"},
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
}

func TestRoleSelectionServiceSubmitUnselectableRole(t *testing.T) {
	svc, _, _, _, _, _ := newRoleSelectionFixture()

	_, err := svc.Submit(context.Background(), SubmitRoleSelectionRequest{
		UserID:       "user-1",
		SelectedRole: string(models.RoleSuperAdmin),
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestRoleSelectionServiceApprove(t *testing.T) {
	svc, selections, users, _, _, notifier := newRoleSelectionFixture()
	selections.selections["sel-1"] = &models.RoleSelection{
		ID:           "sel-1",
		UserID:       "user-1",
		SelectedRole: models.RolePhotographer,
		Status:       models.RoleSelectionStatusPending,
	}

	selection, err := svc.Approve(context.Background(), "sel-1", "admin-1", "looks good")
	require.NoError(t, err)
	assert.Equal(t, models.RoleSelectionStatusApproved, selection.Status)
	require.NotNil(t, selection.ReviewedAt)
	assert.Equal(t, []string{"user-1:photographer:active"}, users.activations)
	assert.Equal(t, []string{"user-1"}, notifier.approved)
}

func TestRoleSelectionServiceApproveBrandCoordinatorGrantsBrand(t *testing.T) {
	svc, selections, _, brands, grants, _ := newRoleSelectionFixture()
	brandID := "brand-1"
	selections.selections["sel-1"] = &models.RoleSelection{
		ID:              "sel-1",
		UserID:          "user-1",
		SelectedRole:    models.RoleBrandCoordinator,
		SelectedBrandID: &brandID,
		Status:          models.RoleSelectionStatusPending,
	}

	_, err := svc.Approve(context.Background(), "sel-1", "admin-1", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"brand-1:user-1"}, brands.coordinators)
	require.Len(t, grants.grants, 1)
	assert.Equal(t, "brand-1", grants.grants[0].BrandID)
	assert.True(t, grants.grants[0].CanEditTasks)
	assert.Equal(t, models.AccessLevelManager, grants.grants[0].AccessLevel)
}

func TestRoleSelectionServiceApproveAlreadyReviewed(t *testing.T) {
	svc, selections, _, _, _, _ := newRoleSelectionFixture()
	selections.selections["sel-1"] = &models.RoleSelection{
		ID:           "sel-1",
		UserID:       "user-1",
		SelectedRole: models.RolePhotographer,
		Status:       models.RoleSelectionStatusApproved,
	}

	_, err := svc.Approve(context.Background(), "sel-1", "admin-1", "")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
}

func TestRoleSelectionServiceApproveConcurrentReview(t *testing.T) {
	svc, selections, _, _, _, _ := newRoleSelectionFixture()
	selections.selections["sel-1"] = &models.RoleSelection{
		ID:           "sel-1",
		UserID:       "user-1",
		SelectedRole: models.RolePhotographer,
		Status:       models.RoleSelectionStatusPending,
	}
	selections.reviewErr = sql.ErrNoRows

	_, err := svc.Approve(context.Background(), "sel-1", "admin-1", "")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
}

func TestRoleSelectionServiceReject(t *testing.T) {
	svc, selections, users, _, _, notifier := newRoleSelectionFixture()
	selections.selections["sel-1"] = &models.RoleSelection{
		ID:           "sel-1",
		UserID:       "user-1",
		SelectedRole: models.RolePhotographer,
		Status:       models.RoleSelectionStatusPending,
	}

	selection, err := svc.Reject(context.Background(), "sel-1", "admin-1", "portfolio too thin", "")
	require.NoError(t, err)
	assert.Equal(t, models.RoleSelectionStatusRejected, selection.Status)
	require.NotNil(t, selection.RejectionReason)
	assert.Equal(t, "portfolio too thin", *selection.RejectionReason)
	assert.Equal(t, models.UserStatusPendingRoleSetup, users.statuses["user-1"])
	assert.Equal(t, []string{"portfolio too thin"}, notifier.rejected)
}

func TestRoleSelectionServiceRejectRequiresReason(t *testing.T) {
	svc, _, _, _, _, _ := newRoleSelectionFixture()

	_, err := svc.Reject(context.Background(), "sel-1", "admin-1", "  ", "")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}
