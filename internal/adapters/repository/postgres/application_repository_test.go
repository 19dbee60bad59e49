package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/workfound/workfound-server/internal/core/application"
)

type stubApplicationRow struct {
	scanFn func(dest ...interface{}) error
}

func (s stubApplicationRow) Scan(dest ...interface{}) error {
	return s.scanFn(dest...)
}

func TestScanApplication_Success(t *testing.T) {
	t.Parallel()

	createdAt := time.Now().UTC()
	coverLetter := "Готов приступить немедленно"

	row := stubApplicationRow{scanFn: func(dest ...interface{}) error {
		if len(dest) != 8 {
			return errors.New("unexpected dest length")
		}
		*(dest[0].(*string)) = "app-1"
		*(dest[1].(*string)) = "job-1"
		*(dest[2].(*string)) = "seeker-1"
		*(dest[3].(*string)) = string(application.StatusNew)

		resumeDest := dest[4].(*sql.NullString)
		resumeDest.Valid = false

		urlDest := dest[5].(*sql.NullString)
		urlDest.Valid = false

		letterDest := dest[6].(*sql.NullString)
		letterDest.String = coverLetter
		letterDest.Valid = true

		*(dest[7].(*time.Time)) = createdAt
		return nil
	}}

	app, err := scanApplication(row)
	if err != nil {
		t.Fatalf("scanApplication returned error: %v", err)
	}

	if app.Status != application.StatusNew {
		t.Fatalf("expected status new, got %s", app.Status)
	}
	if app.ResumeID != nil {
		t.Fatalf("expected nil resume id, got %+v", app.ResumeID)
	}
	if app.CoverLetter == nil || *app.CoverLetter != coverLetter {
		t.Fatalf("expected cover letter, got %+v", app.CoverLetter)
	}
}

func TestScanApplication_NoRows(t *testing.T) {
	t.Parallel()

	row := stubApplicationRow{scanFn: func(dest ...interface{}) error {
		return pgx.ErrNoRows
	}}

	_, err := scanApplication(row)
	if !errors.Is(err, application.ErrApplicationNotFound) {
		t.Fatalf("expected ErrApplicationNotFound, got %v", err)
	}
}

func TestApplicationRepository_FindPostedJob(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewApplicationRepository(mock)

	query := regexp.QuoteMeta(`SELECT id, company_id, title,`)

	rows := pgxmock.NewRows([]string{"id", "company_id", "title", "published", "accepts_ats"}).
		AddRow("job-1", "company-1", "Кассир", true, true)

	mock.ExpectQuery(query).
		WithArgs("job-1").
		WillReturnRows(rows)

	found, err := repo.FindPostedJob(context.Background(), "job-1")
	if err != nil {
		t.Fatalf("FindPostedJob returned error: %v", err)
	}

	if !found.Published || !found.AcceptsATS {
		t.Fatalf("expected published ATS job, got %+v", found)
	}
	if found.CompanyID != "company-1" {
		t.Fatalf("expected company-1, got %s", found.CompanyID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestApplicationRepository_FindPostedJob_NotFound(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewApplicationRepository(mock)

	query := regexp.QuoteMeta(`SELECT id, company_id, title,`)

	mock.ExpectQuery(query).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err = repo.FindPostedJob(context.Background(), "missing")
	if !errors.Is(err, application.ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestApplicationRepository_UpdateStatus_NotFound(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewApplicationRepository(mock)

	query := regexp.QuoteMeta(`UPDATE applications SET status = $1 WHERE id = $2`)

	mock.ExpectExec(query).
		WithArgs(string(application.StatusViewed), "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = repo.UpdateStatus(context.Background(), "missing", application.StatusViewed)
	if !errors.Is(err, application.ErrApplicationNotFound) {
		t.Fatalf("expected ErrApplicationNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestApplicationRepository_CreateAnswers(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewApplicationRepository(mock)

	query := regexp.QuoteMeta(`INSERT INTO application_answers`)

	mock.ExpectExec(query).
		WithArgs("app-1", "question-1", "yes").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(query).
		WithArgs("app-1", "question-2", "no").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.CreateAnswers(context.Background(), "app-1", []*application.Answer{
		{QuestionID: "question-1", Text: "yes"},
		{QuestionID: "question-2", Text: "no"},
	})
	if err != nil {
		t.Fatalf("CreateAnswers returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
