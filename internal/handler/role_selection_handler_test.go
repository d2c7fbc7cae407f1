package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/depth-studio/depth-studio-api/internal/middleware"
	"github.com/depth-studio/depth-studio-api/internal/models"
	"github.com/depth-studio/depth-studio-api/internal/service"
	appErrors "github.com/depth-studio/depth-studio-api/pkg/errors"
)

type fakeRoleSelectionSrv struct {
	result      *service.SubmitResult
	submitErr   error
	lastSubmit  service.SubmitRoleSelectionRequest
	selection   *models.RoleSelection
	reviewErr   error
	lastActor   string
	lastReason  string
	lastNotes   string
	pending     []models.RoleSelection
	stats       *models.RoleSelectionStats
	lastPending models.RoleSelectionFilter
}

func (f *fakeRoleSelectionSrv) Submit(_ context.Context, req service.SubmitRoleSelectionRequest) (*service.SubmitResult, error) {
	f.lastSubmit = req
	return f.result, f.submitErr
}

func (f *fakeRoleSelectionSrv) Approve(_ context.Context, _, approvedBy, adminNotes string) (*models.RoleSelection, error) {
	f.lastActor = approvedBy
	f.lastNotes = adminNotes
	return f.selection, f.reviewErr
}

func (f *fakeRoleSelectionSrv) Reject(_ context.Context, _, rejectedBy, reason, adminNotes string) (*models.RoleSelection, error) {
	f.lastActor = rejectedBy
	f.lastReason = reason
	f.lastNotes = adminNotes
	return f.selection, f.reviewErr
}

func (f *fakeRoleSelectionSrv) ListPending(_ context.Context, filter models.RoleSelectionFilter) ([]models.RoleSelection, error) {
	f.lastPending = filter
	return f.pending, nil
}

func (f *fakeRoleSelectionSrv) History(context.Context, string) ([]models.RoleSelection, error) {
	return f.pending, nil
}

func (f *fakeRoleSelectionSrv) Stats(context.Context) (*models.RoleSelectionStats, error) {
	return f.stats, nil
}

func (f *fakeRoleSelectionSrv) SearchBrands(context.Context, models.BrandFilter) ([]models.Brand, *models.Pagination, error) {
	return nil, nil, nil
}

func roleSelectionContext(t *testing.T, claims *models.JWTClaims, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	c.Request = httptest.NewRequest(http.MethodPost, "/role-selections", bytes.NewReader(payload))
	c.Request.Header.Set("Content-Type", "application/json")
	if claims != nil {
		c.Set(middleware.ContextUserKey, claims)
	}
	return c, rec
}

func TestRoleSelectionHandlerSubmitDefaultsToCaller(t *testing.T) {
	srv := &fakeRoleSelectionSrv{result: &service.SubmitResult{Success: true}}
	handler := NewRoleSelectionHandler(srv)

	c, rec := roleSelectionContext(t, &models.JWTClaims{UserID: "user-1", Role: models.RoleNewUser}, gin.H{
		"user_id":         "",
		"selected_role":   "photographer",
		"contract_type":   "freelancer",
		"specializations": []string{"product"},
	})

	handler.Submit(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", srv.lastSubmit.UserID)
	assert.Equal(t, "photographer", srv.lastSubmit.SelectedRole)
}

func TestRoleSelectionHandlerSubmitForOtherUserForbidden(t *testing.T) {
	handler := NewRoleSelectionHandler(&fakeRoleSelectionSrv{})

	c, rec := roleSelectionContext(t, &models.JWTClaims{UserID: "user-1", Role: models.RoleNewUser}, gin.H{
		"user_id":       "user-2",
		"selected_role": "photographer",
	})

	handler.Submit(c)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRoleSelectionHandlerSubmitSoftFailure(t *testing.T) {
	srv := &fakeRoleSelectionSrv{result: &service.SubmitResult{
		Success: false,
		Message: "contract type is required for photographer applications",
	}}
	handler := NewRoleSelectionHandler(srv)

	c, rec := roleSelectionContext(t, &models.JWTClaims{UserID: "user-1", Role: models.RoleNewUser}, gin.H{
		"user_id":       "user-1",
		"selected_role": "photographer",
	})

	handler.Submit(c)

	// Requirement failures are a payload concern, not an HTTP error.
	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	assert.Equal(t, false, envelope.Data["success"])
}

func TestRoleSelectionHandlerSubmitPendingConflict(t *testing.T) {
	handler := NewRoleSelectionHandler(&fakeRoleSelectionSrv{
		submitErr: appErrors.Clone(appErrors.ErrConflict, "a pending application already exists"),
	})

	c, rec := roleSelectionContext(t, &models.JWTClaims{UserID: "user-1", Role: models.RoleNewUser}, gin.H{
		"user_id":       "user-1",
		"selected_role": "photographer",
	})

	handler.Submit(c)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRoleSelectionHandlerApproveUsesCallerAsReviewer(t *testing.T) {
	srv := &fakeRoleSelectionSrv{selection: &models.RoleSelection{
		ID:     "sel-1",
		Status: models.RoleSelectionStatusApproved,
	}}
	handler := NewRoleSelectionHandler(srv)

	c, rec := roleSelectionContext(t, &models.JWTClaims{UserID: "admin-1", Role: models.RoleSuperAdmin}, gin.H{
		"admin_notes": "portfolio looks strong",
	})
	c.Params = gin.Params{{Key: "id", Value: "sel-1"}}

	handler.Approve(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin-1", srv.lastActor)
	assert.Equal(t, "portfolio looks strong", srv.lastNotes)

	var envelope responseEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	assert.Equal(t, true, envelope.Data["success"])
}

func TestRoleSelectionHandlerRejectRequiresReason(t *testing.T) {
	handler := NewRoleSelectionHandler(&fakeRoleSelectionSrv{})

	c, rec := roleSelectionContext(t, &models.JWTClaims{UserID: "admin-1", Role: models.RoleSuperAdmin}, gin.H{
		"admin_notes": "missing portfolio",
	})
	c.Params = gin.Params{{Key: "id", Value: "sel-1"}}

	handler.Reject(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRoleSelectionHandlerListPendingParsesRoleFilter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeRoleSelectionSrv{}
	handler := NewRoleSelectionHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/role-selections/pending?role=photographer&sort_order=desc", nil)

	handler.ListPending(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, srv.lastPending.Role)
	assert.Equal(t, models.RolePhotographer, *srv.lastPending.Role)
	assert.Equal(t, "desc", srv.lastPending.SortOrder)
}
