package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/workfound/workfound-server/internal/core/application"
	pgdb "github.com/workfound/workfound-server/internal/platform/db/postgres"
)

const applicationColumns = `id, job_id, seeker_id, status, resume_id, resume_url, cover_letter, created_at`

// ApplicationRepository は PostgreSQL を利用した応募永続化の実装です。
// 求人と回答への参照も同じストアで読むため、提出トランザクション内で
// 一貫したスナップショットが得られます。
type ApplicationRepository struct {
	pool pgdb.Queryer
}

// NewApplicationRepository は ApplicationRepository を生成します。
func NewApplicationRepository(pool pgdb.Queryer) *ApplicationRepository {
	return &ApplicationRepository{pool: pool}
}

// Create は応募を新規作成します。
func (r *ApplicationRepository) Create(ctx context.Context, app *application.Application) (*application.Application, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO applications (job_id, seeker_id, status, resume_id, resume_url, cover_letter, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING `+applicationColumns+`
    `,
		app.JobID,
		app.SeekerID,
		string(app.Status),
		nullableString(app.ResumeID),
		nullableString(app.ResumeURL),
		nullableString(app.CoverLetter),
		app.CreatedAt,
	)

	created, err := scanApplication(row)
	if err != nil {
		return nil, translateApplicationPgError(err)
	}
	return created, nil
}

// CreateAnswers はスクリーニング質問への回答を登録します。
func (r *ApplicationRepository) CreateAnswers(ctx context.Context, applicationID string, answers []*application.Answer) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	for _, a := range answers {
		if _, err := exec.Exec(ctx, `
            INSERT INTO application_answers (application_id, question_id, answer)
            VALUES ($1, $2, $3)
        `, applicationID, a.QuestionID, a.Text); err != nil {
			return translateApplicationPgError(err)
		}
	}
	return nil
}

// FindByID は ID で応募を取得します。
func (r *ApplicationRepository) FindByID(ctx context.Context, id string) (*application.Application, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+applicationColumns+`
          FROM applications
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanApplication(row)
	if err != nil {
		return nil, translateApplicationPgError(err)
	}
	return found, nil
}

// UpdateStatus は応募の選考段階を更新します。
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id string, status application.Status) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `UPDATE applications SET status = $1 WHERE id = $2`, string(status), id)
	if err != nil {
		return translateApplicationPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return application.ErrApplicationNotFound
	}
	return nil
}

// ListByCompany は会社宛ての応募を新しい順に取得します。
func (r *ApplicationRepository) ListByCompany(ctx context.Context, companyID string) ([]*application.Application, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT a.id, a.job_id, a.seeker_id, a.status, a.resume_id, a.resume_url, a.cover_letter, a.created_at
          FROM applications a
          JOIN jobs j ON j.id = a.job_id
         WHERE j.company_id = $1
         ORDER BY a.created_at DESC, a.id DESC
    `, companyID)
	if err != nil {
		return nil, translateApplicationPgError(err)
	}
	defer rows.Close()

	return collectApplications(rows)
}

// ListBySeeker は求職者の応募を新しい順に取得します。
func (r *ApplicationRepository) ListBySeeker(ctx context.Context, seekerID string) ([]*application.Application, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT `+applicationColumns+`
          FROM applications
         WHERE seeker_id = $1
         ORDER BY created_at DESC, id DESC
    `, seekerID)
	if err != nil {
		return nil, translateApplicationPgError(err)
	}
	defer rows.Close()

	return collectApplications(rows)
}

// ListAnswers は応募の回答一覧を取得します。
func (r *ApplicationRepository) ListAnswers(ctx context.Context, applicationID string) ([]*application.Answer, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT question_id, answer
          FROM application_answers
         WHERE application_id = $1
         ORDER BY question_id ASC
    `, applicationID)
	if err != nil {
		return nil, translateApplicationPgError(err)
	}
	defer rows.Close()

	var answers []*application.Answer
	for rows.Next() {
		var a application.Answer
		if err := rows.Scan(&a.QuestionID, &a.Text); err != nil {
			return nil, translateApplicationPgError(err)
		}
		answers = append(answers, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, translateApplicationPgError(err)
	}

	return answers, nil
}

// FindPostedJob は応募先求人の要約を取得します。
func (r *ApplicationRepository) FindPostedJob(ctx context.Context, jobID string) (*application.PostedJob, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT id, company_id, title,
               status = 'published',
               application_method = 'internal_ats'
          FROM jobs
         WHERE id = $1
         LIMIT 1
    `, jobID)

	var j application.PostedJob
	if err := row.Scan(&j.ID, &j.CompanyID, &j.Title, &j.Published, &j.AcceptsATS); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, application.ErrJobNotFound
		}
		return nil, err
	}

	return &j, nil
}

// ListScreeningQuestions は自動却下判定に使う質問を登録順に取得します。
func (r *ApplicationRepository) ListScreeningQuestions(ctx context.Context, jobID string) ([]*application.ScreeningQuestion, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT id, question, expected_answer, is_disqualifying
          FROM job_questions
         WHERE job_id = $1
         ORDER BY id ASC
    `, jobID)
	if err != nil {
		return nil, translateApplicationPgError(err)
	}
	defer rows.Close()

	var questions []*application.ScreeningQuestion
	for rows.Next() {
		var (
			q              application.ScreeningQuestion
			expectedAnswer sql.NullString
		)
		if err := rows.Scan(&q.ID, &q.Text, &expectedAnswer, &q.Disqualifying); err != nil {
			return nil, translateApplicationPgError(err)
		}
		q.ExpectedAnswer = nullStringPtr(expectedAnswer)
		questions = append(questions, &q)
	}

	if err := rows.Err(); err != nil {
		return nil, translateApplicationPgError(err)
	}

	return questions, nil
}

// FindSeekerEmail は通知用に求職者のメールアドレスを取得します。
func (r *ApplicationRepository) FindSeekerEmail(ctx context.Context, seekerID string) (string, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `SELECT email FROM profiles WHERE id = $1 LIMIT 1`, seekerID)

	var email string
	if err := row.Scan(&email); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", application.ErrApplicationNotFound
		}
		return "", err
	}

	return email, nil
}

// CreateNote は応募への社内メモを追加します。
func (r *ApplicationRepository) CreateNote(ctx context.Context, note *application.Note) (*application.Note, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO application_notes (application_id, author_id, content, created_at)
        VALUES ($1, $2, $3, $4)
        RETURNING id, application_id, author_id, content, created_at
    `,
		note.ApplicationID,
		note.AuthorID,
		note.Content,
		note.CreatedAt,
	)

	created, err := scanNote(row)
	if err != nil {
		return nil, translateApplicationPgError(err)
	}
	return created, nil
}

// FindNote は ID で社内メモを取得します。
func (r *ApplicationRepository) FindNote(ctx context.Context, id string) (*application.Note, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT id, application_id, author_id, content, created_at
          FROM application_notes
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanNote(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, application.ErrNoteNotFound
		}
		return nil, translateApplicationPgError(err)
	}
	return found, nil
}

// ListNotes は応募の社内メモを古い順に取得します。
func (r *ApplicationRepository) ListNotes(ctx context.Context, applicationID string) ([]*application.Note, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT id, application_id, author_id, content, created_at
          FROM application_notes
         WHERE application_id = $1
         ORDER BY created_at ASC, id ASC
    `, applicationID)
	if err != nil {
		return nil, translateApplicationPgError(err)
	}
	defer rows.Close()

	var notes []*application.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, translateApplicationPgError(err)
		}
		notes = append(notes, n)
	}

	if err := rows.Err(); err != nil {
		return nil, translateApplicationPgError(err)
	}

	return notes, nil
}

// DeleteNote は社内メモを削除します。
func (r *ApplicationRepository) DeleteNote(ctx context.Context, id string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM application_notes WHERE id = $1`, id)
	if err != nil {
		return translateApplicationPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return application.ErrNoteNotFound
	}
	return nil
}

func collectApplications(rows pgx.Rows) ([]*application.Application, error) {
	var apps []*application.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, translateApplicationPgError(err)
		}
		apps = append(apps, app)
	}

	if err := rows.Err(); err != nil {
		return nil, translateApplicationPgError(err)
	}

	return apps, nil
}

func scanApplication(row pgx.Row) (*application.Application, error) {
	var (
		id          string
		jobID       string
		seekerID    string
		status      string
		resumeID    sql.NullString
		resumeURL   sql.NullString
		coverLetter sql.NullString
		createdAt   time.Time
	)

	if err := row.Scan(&id, &jobID, &seekerID, &status, &resumeID, &resumeURL, &coverLetter, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, application.ErrApplicationNotFound
		}
		return nil, err
	}

	return &application.Application{
		ID:          id,
		JobID:       jobID,
		SeekerID:    seekerID,
		Status:      application.Status(status),
		ResumeID:    nullStringPtr(resumeID),
		ResumeURL:   nullStringPtr(resumeURL),
		CoverLetter: nullStringPtr(coverLetter),
		CreatedAt:   createdAt,
	}, nil
}

func scanNote(row pgx.Row) (*application.Note, error) {
	var n application.Note
	if err := row.Scan(&n.ID, &n.ApplicationID, &n.AuthorID, &n.Content, &n.CreatedAt); err != nil {
		return nil, err
	}
	return &n, nil
}

func translateApplicationPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return application.ErrApplicationNotFound
	}
	return err
}
