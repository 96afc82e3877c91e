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

func newSignoffRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestSignoffRepositoryCreateForcesPending(t *testing.T) {
	db, mock, cleanup := newSignoffRepoMock(t)
	defer cleanup()
	repo := NewSignoffRepository(db)

	mock.ExpectExec("INSERT INTO signoffs").
		WillReturnResult(sqlmock.NewResult(1, 1))

	so := &models.SignOff{CaseID: "case-1", DepartmentID: "dept-1", AssigneeID: "user-1", Status: models.SignOffApproved}
	require.NoError(t, repo.Create(context.Background(), so))
	assert.Equal(t, models.SignOffPending, so.Status)
	assert.NotEmpty(t, so.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSignoffRepositoryExistsForDepartment(t *testing.T) {
	db, mock, cleanup := newSignoffRepoMock(t)
	defer cleanup()
	repo := NewSignoffRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM signoffs WHERE case_id = $1 AND department_id = $2")).
		WithArgs("case-1", "dept-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	exists, err := repo.ExistsForDepartment(context.Background(), "case-1", "dept-1")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSignoffRepositoryDecideAndResolveCompletesCase(t *testing.T) {
	db, mock, cleanup := newSignoffRepoMock(t)
	defer cleanup()
	repo := NewSignoffRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT status FROM separation_cases WHERE id = $1 FOR UPDATE")).
		WithArgs("case-1").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("signoff_pending"))
	mock.ExpectExec("UPDATE signoffs SET status").
		WithArgs("signoff-1", models.SignOffApproved, nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT status FROM signoffs WHERE case_id = $1")).
		WithArgs("case-1").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("approved").AddRow("approved"))
	mock.ExpectExec("UPDATE separation_cases SET status").
		WithArgs("case-1", models.CaseCompleted, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	resolution, err := repo.DecideAndResolve(context.Background(), "signoff-1", "case-1", models.SignOffApproved, nil)
	require.NoError(t, err)
	assert.Equal(t, models.ResolutionAllApproved, resolution)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSignoffRepositoryDecideAndResolveRejectionLeavesCaseOpen(t *testing.T) {
	db, mock, cleanup := newSignoffRepoMock(t)
	defer cleanup()
	repo := NewSignoffRepository(db)

	comment := "assets still outstanding"

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT status FROM separation_cases WHERE id = $1 FOR UPDATE")).
		WithArgs("case-1").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("signoff_pending"))
	mock.ExpectExec("UPDATE signoffs SET status").
		WithArgs("signoff-1", models.SignOffRejected, &comment, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT status FROM signoffs WHERE case_id = $1")).
		WithArgs("case-1").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("approved").AddRow("rejected"))
	mock.ExpectCommit()

	resolution, err := repo.DecideAndResolve(context.Background(), "signoff-1", "case-1", models.SignOffRejected, &comment)
	require.NoError(t, err)
	assert.Equal(t, models.ResolutionHasRejection, resolution)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSignoffRepositoryDecideAndResolveAlreadyCompletedCase(t *testing.T) {
	db, mock, cleanup := newSignoffRepoMock(t)
	defer cleanup()
	repo := NewSignoffRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT status FROM separation_cases WHERE id = $1 FOR UPDATE")).
		WithArgs("case-1").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("completed"))
	mock.ExpectExec("UPDATE signoffs SET status").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT status FROM signoffs WHERE case_id = $1")).
		WithArgs("case-1").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("approved"))
	mock.ExpectCommit()

	resolution, err := repo.DecideAndResolve(context.Background(), "signoff-1", "case-1", models.SignOffApproved, nil)
	require.NoError(t, err)
	assert.Equal(t, models.ResolutionAllApproved, resolution)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSignoffRepositoryListPendingForUser(t *testing.T) {
	db, mock, cleanup := newSignoffRepoMock(t)
	defer cleanup()
	repo := NewSignoffRepository(db)

	rows := sqlmock.NewRows([]string{
		"id", "case_id", "department_id", "assignee_id", "status", "comment",
		"decided_at", "created_at", "updated_at", "department_name", "assignee_name",
	}).AddRow("signoff-1", "case-1", "dept-1", "user-1", "pending", nil, nil, time.Now(), time.Now(), "IT", "Lena Koshy")
	mock.ExpectQuery(`WHERE s\.assignee_id = \$1 AND s\.status = 'pending'`).
		WithArgs("user-1").
		WillReturnRows(rows)

	signoffs, err := repo.ListPendingForUser(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, signoffs, 1)
	assert.Equal(t, "IT", signoffs[0].DepartmentName)
	assert.NoError(t, mock.ExpectationsWereMet())
}
