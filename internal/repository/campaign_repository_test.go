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

func newCampaignRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func campaignRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "brand_id", "name", "description", "status", "overall_progress",
		"tasks_completed", "tasks_in_progress", "tasks_pending", "progress_updated_at",
		"start_date", "end_date", "created_by", "created_at", "updated_at",
	})
}

func TestCampaignRepositoryListByBrand(t *testing.T) {
	db, mock, cleanup := newCampaignRepoMock(t)
	defer cleanup()
	repo := NewCampaignRepository(db)

	rows := campaignRows().
		AddRow("campaign-1", "brand-1", "Spring Launch", nil, "active", 40.0, 2, 1, 2, nil, nil, nil, "admin-1", time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM campaigns WHERE 1=1 AND brand_id = $1 ORDER BY created_at DESC LIMIT 20 OFFSET 0")).
		WithArgs("brand-1").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM campaigns WHERE 1=1 AND brand_id = $1")).
		WithArgs("brand-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	campaigns, total, err := repo.List(context.Background(), models.CampaignFilter{BrandID: "brand-1"})
	require.NoError(t, err)
	require.Len(t, campaigns, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Spring Launch", campaigns[0].Name)
	assert.InDelta(t, 40.0, campaigns[0].OverallProgress, 0.001)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCampaignRepositoryFindByIDMissing(t *testing.T) {
	db, mock, cleanup := newCampaignRepoMock(t)
	defer cleanup()
	repo := NewCampaignRepository(db)

	mock.ExpectQuery("FROM campaigns WHERE id").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestCampaignRepositoryUpdateProgress(t *testing.T) {
	db, mock, cleanup := newCampaignRepoMock(t)
	defer cleanup()
	repo := NewCampaignRepository(db)

	now := time.Now().UTC()
	rollup := models.ProgressRollup{
		OverallProgress: 40,
		TasksCompleted:  2,
		TasksInProgress: 1,
		TasksPending:    2,
	}
	mock.ExpectExec(regexp.QuoteMeta("UPDATE campaigns SET overall_progress = $2, tasks_completed = $3, tasks_in_progress = $4, tasks_pending = $5, progress_updated_at = $6, updated_at = $6 WHERE id = $1")).
		WithArgs("campaign-1", rollup.OverallProgress, rollup.TasksCompleted, rollup.TasksInProgress, rollup.TasksPending, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateProgress(context.Background(), "campaign-1", rollup, now)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCampaignRepositoryDeleteMissing(t *testing.T) {
	db, mock, cleanup := newCampaignRepoMock(t)
	defer cleanup()
	repo := NewCampaignRepository(db)

	mock.ExpectExec("DELETE FROM campaigns").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
