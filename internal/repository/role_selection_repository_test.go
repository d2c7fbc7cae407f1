package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/depth-studio/depth-studio-api/internal/models"
)

func newRoleSelectionRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func roleSelectionRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "selected_role", "contract_type", "specializations", "selected_brand_id",
		"marketing_experience", "motivation", "status", "applied_at", "reviewed_at", "approved_by",
		"rejection_reason", "admin_notes", "created_at", "updated_at",
	})
}

func TestRoleSelectionRepositoryFindPendingByUser(t *testing.T) {
	db, mock, cleanup := newRoleSelectionRepoMock(t)
	defer cleanup()
	repo := NewRoleSelectionRepository(db)

	rows := roleSelectionRows().
		AddRow("sel-1", "user-1", "photographer", "freelancer", "{product,lifestyle}", nil, nil, nil, "pending", time.Now(), nil, nil, nil, nil, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM role_applications WHERE user_id = $1 AND status = $2 LIMIT 1")).
		WithArgs("user-1", models.RoleSelectionStatusPending).
		WillReturnRows(rows)

	selection, err := repo.FindPendingByUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.RolePhotographer, selection.SelectedRole)
	assert.Equal(t, []string{"product", "lifestyle"}, []string(selection.Specializations))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleSelectionRepositoryFindPendingByUserNone(t *testing.T) {
	db, mock, cleanup := newRoleSelectionRepoMock(t)
	defer cleanup()
	repo := NewRoleSelectionRepository(db)

	mock.ExpectQuery("FROM role_applications").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindPendingByUser(context.Background(), "user-1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestRoleSelectionRepositoryListPending(t *testing.T) {
	db, mock, cleanup := newRoleSelectionRepoMock(t)
	defer cleanup()
	repo := NewRoleSelectionRepository(db)

	rows := roleSelectionRows().
		AddRow("sel-1", "user-1", "photographer", nil, nil, nil, nil, nil, "pending", time.Now(), nil, nil, nil, nil, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM role_applications WHERE status = $1 AND selected_role = $2 ORDER BY applied_at ASC LIMIT 50")).
		WithArgs(models.RoleSelectionStatusPending, models.RolePhotographer).
		WillReturnRows(rows)

	role := models.RolePhotographer
	selections, err := repo.ListPending(context.Background(), models.RoleSelectionFilter{Role: &role})
	require.NoError(t, err)
	assert.Len(t, selections, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleSelectionRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRoleSelectionRepoMock(t)
	defer cleanup()
	repo := NewRoleSelectionRepository(db)

	mock.ExpectExec("INSERT INTO role_applications").
		WillReturnResult(sqlmock.NewResult(1, 1))

	selection := &models.RoleSelection{
		UserID:       "user-1",
		SelectedRole: models.RolePhotographer,
		Status:       models.RoleSelectionStatusPending,
		AppliedAt:    time.Now().UTC(),
	}
	require.NoError(t, repo.Create(context.Background(), selection))
	assert.NotEmpty(t, selection.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleSelectionRepositoryMarkReviewedGuardsPending(t *testing.T) {
	db, mock, cleanup := newRoleSelectionRepoMock(t)
	defer cleanup()
	repo := NewRoleSelectionRepository(db)

	now := time.Now().UTC()
	approvedBy := "admin-1"
	selection := &models.RoleSelection{
		ID:           "sel-1",
		UserID:       "user-1",
		SelectedRole: models.RolePhotographer,
		Status:       models.RoleSelectionStatusApproved,
		ReviewedAt:   &now,
		ApprovedBy:   &approvedBy,
	}

	mock.ExpectExec("UPDATE role_applications").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.MarkReviewed(context.Background(), selection))

	// A second review attempt matches zero rows.
	mock.ExpectExec("UPDATE role_applications").
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.MarkReviewed(context.Background(), selection)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleSelectionRepositoryStats(t *testing.T) {
	db, mock, cleanup := newRoleSelectionRepoMock(t)
	defer cleanup()
	repo := NewRoleSelectionRepository(db)

	mock.ExpectQuery("SELECT").
		WillReturnRows(sqlmock.NewRows([]string{"total", "pending", "approved", "rejected", "avg_approval_hours"}).
			AddRow(10, 2, 6, 2, 12.5))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT selected_role, COUNT(*) AS count FROM role_applications GROUP BY selected_role")).
		WillReturnRows(sqlmock.NewRows([]string{"selected_role", "count"}).
			AddRow("photographer", 7).
			AddRow("brand_coordinator", 3))

	stats, err := repo.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, stats.Total)
	assert.Equal(t, 2, stats.Pending)
	assert.Equal(t, 7, stats.ByRole["photographer"])
	assert.InDelta(t, 0.75, stats.ApprovalRate, 0.001)
	assert.InDelta(t, 12.5, stats.AverageApprovalHours, 0.001)
	assert.NoError(t, mock.ExpectationsWereMet())
}
