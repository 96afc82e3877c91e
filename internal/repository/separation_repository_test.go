package repository

import (
	"context"
	"fmt"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suvadu/separation-api/internal/models"
)

func newSeparationRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func caseSummaryColumns() []string {
	return []string{
		"id", "case_number", "employee_id", "direct_manager_id", "separation_manager_id",
		"resignation_date", "last_working_day", "reason", "status", "notes",
		"checklist_submitted_at", "completed_at", "created_at", "updated_at",
		"employee_name", "employee_email", "direct_manager_name",
	}
}

func TestSeparationRepositoryHasActiveCase(t *testing.T) {
	db, mock, cleanup := newSeparationRepoMock(t)
	defer cleanup()
	repo := NewSeparationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM separation_cases WHERE employee_id = $1 AND status NOT IN ('completed', 'cancelled')")).
		WithArgs("emp-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	active, err := repo.HasActiveCase(context.Background(), "emp-1")
	require.NoError(t, err)
	assert.True(t, active)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeparationRepositoryCreateWithChecklist(t *testing.T) {
	db, mock, cleanup := newSeparationRepoMock(t)
	defer cleanup()
	repo := NewSeparationRepository(db)

	year := time.Now().UTC().Year()

	mock.ExpectBegin()
	mock.ExpectExec("SELECT pg_advisory_xact_lock").
		WithArgs(int64(year)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM separation_cases WHERE EXTRACT(YEAR FROM created_at) = $1")).
		WithArgs(year).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(41))
	mock.ExpectExec("INSERT INTO separation_cases").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO checklist_items").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO checklist_items").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	sc := &models.SeparationCase{
		EmployeeID:      "emp-1",
		ResignationDate: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		LastWorkingDay:  time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC),
	}
	templates := []models.ChecklistTemplate{
		{ID: "tpl-1", Title: "Return laptop", Mandatory: true},
		{ID: "tpl-2", Title: "Exit interview"},
	}

	require.NoError(t, repo.CreateWithChecklist(context.Background(), sc, templates))
	assert.Equal(t, fmt.Sprintf("SEP-%d-0042", year), sc.CaseNumber)
	assert.Equal(t, models.CaseChecklistPending, sc.Status)
	assert.NotEmpty(t, sc.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeparationRepositoryListScopesToAssignee(t *testing.T) {
	db, mock, cleanup := newSeparationRepoMock(t)
	defer cleanup()
	repo := NewSeparationRepository(db)

	rows := sqlmock.NewRows(caseSummaryColumns()).
		AddRow("case-1", "SEP-2026-0001", "emp-1", nil, nil,
			time.Now(), time.Now(), nil, "signoff_pending", nil,
			nil, nil, time.Now(), time.Now(),
			"Asha Rao", "asha@example.com", nil)
	mock.ExpectQuery(`SELECT sc\.id, .+ IN \(SELECT case_id FROM signoffs WHERE assignee_id = \$1\)`).
		WithArgs("reviewer-1").
		WillReturnRows(rows)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM separation_cases sc`).
		WithArgs("reviewer-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	cases, total, err := repo.List(context.Background(), models.CaseFilter{SignoffAssigneeID: "reviewer-1"})
	require.NoError(t, err)
	assert.Len(t, cases, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Asha Rao", cases[0].EmployeeName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeparationRepositoryUpdateStatus(t *testing.T) {
	db, mock, cleanup := newSeparationRepoMock(t)
	defer cleanup()
	repo := NewSeparationRepository(db)

	mock.ExpectExec("UPDATE separation_cases SET status").
		WithArgs("case-1", models.CaseCancelled, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateStatus(context.Background(), "case-1", models.CaseCancelled))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeparationRepositoryCountByStatus(t *testing.T) {
	db, mock, cleanup := newSeparationRepoMock(t)
	defer cleanup()
	repo := NewSeparationRepository(db)

	rows := sqlmock.NewRows([]string{"status", "count"}).
		AddRow("checklist_pending", 3).
		AddRow("completed", 7)
	mock.ExpectQuery(`SELECT status, COUNT\(\*\) AS count FROM separation_cases GROUP BY status`).
		WillReturnRows(rows)

	counts, err := repo.CountByStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, counts[models.CaseChecklistPending])
	assert.Equal(t, 7, counts[models.CaseCompleted])
	assert.NoError(t, mock.ExpectationsWereMet())
}
