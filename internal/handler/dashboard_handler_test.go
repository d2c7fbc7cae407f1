package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/depth-studio/depth-studio-api/internal/dto"
	"github.com/depth-studio/depth-studio-api/internal/middleware"
	"github.com/depth-studio/depth-studio-api/internal/models"
	appErrors "github.com/depth-studio/depth-studio-api/pkg/errors"
)

type fakeDashboardSrv struct {
	adminResp        *dto.AdminDashboardResponse
	adminErr         error
	adminHit         bool
	photographerResp *dto.PhotographerDashboardResponse
	photographerErr  error
	photographerHit  bool
	lastPhotographer string
}

func (f *fakeDashboardSrv) Admin(context.Context) (*dto.AdminDashboardResponse, bool, error) {
	return f.adminResp, f.adminHit, f.adminErr
}

func (f *fakeDashboardSrv) Photographer(_ context.Context, photographerID string) (*dto.PhotographerDashboardResponse, bool, error) {
	f.lastPhotographer = photographerID
	return f.photographerResp, f.photographerHit, f.photographerErr
}

func TestDashboardHandlerAdminSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewDashboardHandler(&fakeDashboardSrv{
		adminResp: &dto.AdminDashboardResponse{Campaigns: dto.CampaignSection{Total: 5}},
		adminHit:  true,
	})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard/admin", nil)

	handler.Admin(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	assert.Equal(t, true, envelope.Meta["cached"])
}

func TestDashboardHandlerAdminError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewDashboardHandler(&fakeDashboardSrv{adminErr: appErrors.ErrInternal})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard/admin", nil)

	handler.Admin(c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestDashboardHandlerPhotographerDefaultsToCaller(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service := &fakeDashboardSrv{
		photographerResp: &dto.PhotographerDashboardResponse{PhotographerID: "user-1"},
	}
	handler := NewDashboardHandler(service)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard/photographer", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: models.RolePhotographer})

	handler.Photographer(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", service.lastPhotographer)
}

func TestDashboardHandlerPhotographerCannotSpyOnPeers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewDashboardHandler(&fakeDashboardSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard/photographer?photographer_id=user-2", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: models.RolePhotographer})

	handler.Photographer(c)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDashboardHandlerPhotographerCoordinatorOverride(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service := &fakeDashboardSrv{
		photographerResp: &dto.PhotographerDashboardResponse{PhotographerID: "user-2"},
	}
	handler := NewDashboardHandler(service)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard/photographer?photographer_id=user-2", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "admin-1", Role: models.RoleSuperAdmin})

	handler.Photographer(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-2", service.lastPhotographer)
}

func TestDashboardHandlerPhotographerUnauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewDashboardHandler(&fakeDashboardSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard/photographer", nil)

	handler.Photographer(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

type responseEnvelope struct {
	Data       map[string]interface{} `json:"data"`
	Meta       map[string]interface{} `json:"meta"`
	Pagination map[string]interface{} `json:"pagination"`
}
