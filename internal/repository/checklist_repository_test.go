package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suvadu/separation-api/internal/models"
)

func newChecklistRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestChecklistRepositoryCountMandatoryIncomplete(t *testing.T) {
	db, mock, cleanup := newChecklistRepoMock(t)
	defer cleanup()
	repo := NewChecklistRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM checklist_items WHERE case_id = $1 AND mandatory = TRUE AND completed = FALSE")).
		WithArgs("case-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	open, err := repo.CountMandatoryIncomplete(context.Background(), "case-1")
	require.NoError(t, err)
	assert.Equal(t, 2, open)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChecklistRepositoryCountByCase(t *testing.T) {
	db, mock, cleanup := newChecklistRepoMock(t)
	defer cleanup()
	repo := NewChecklistRepository(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) AS total, COUNT\(\*\) FILTER \(WHERE completed\) AS completed FROM checklist_items`).
		WithArgs("case-1").
		WillReturnRows(sqlmock.NewRows([]string{"total", "completed"}).AddRow(7, 3))

	total, completed, err := repo.CountByCase(context.Background(), "case-1")
	require.NoError(t, err)
	assert.Equal(t, 7, total)
	assert.Equal(t, 3, completed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChecklistRepositoryUpdate(t *testing.T) {
	db, mock, cleanup := newChecklistRepoMock(t)
	defer cleanup()
	repo := NewChecklistRepository(db)

	mock.ExpectExec("UPDATE checklist_items SET completed").
		WillReturnResult(sqlmock.NewResult(0, 1))

	now := time.Now().UTC()
	userID := "emp-1"
	item := &models.ChecklistItem{ID: "item-1", CaseID: "case-1", Completed: true, CompletedAt: &now, CompletedBy: &userID}
	require.NoError(t, repo.Update(context.Background(), item))
	assert.NoError(t, mock.ExpectationsWereMet())
}
