package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/workfound/workfound-server/internal/core/job"
	pgdb "github.com/workfound/workfound-server/internal/platform/db/postgres"
)

const jobColumns = `id, company_id, employer_id, title, description, location,
               salary_min, salary_max, salary_period, application_method, contact_info,
               status, is_highlighted, promoted_until, views, created_at, updated_at`

// JobRepository は PostgreSQL を利用した求人永続化の実装です。
type JobRepository struct {
	pool pgdb.Queryer
}

// NewJobRepository は JobRepository を生成します。
func NewJobRepository(pool pgdb.Queryer) *JobRepository {
	return &JobRepository{pool: pool}
}

// Create は求人を新規作成します。
func (r *JobRepository) Create(ctx context.Context, j *job.Job) (*job.Job, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO jobs (company_id, employer_id, title, description, location,
                          salary_min, salary_max, salary_period, application_method, contact_info,
                          status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
        RETURNING `+jobColumns+`
    `,
		j.CompanyID,
		j.EmployerID,
		j.Title,
		j.Description,
		j.Location,
		nullableInt64(j.SalaryMin),
		nullableInt64(j.SalaryMax),
		nullableSalaryPeriod(j.SalaryPeriod),
		string(j.Method),
		nullableString(j.ContactInfo),
		string(j.Status),
		j.CreatedAt,
		j.UpdatedAt,
	)

	created, err := scanJob(row)
	if err != nil {
		return nil, translateJobPgError(err)
	}
	return created, nil
}

// Update は求人を更新します。
func (r *JobRepository) Update(ctx context.Context, j *job.Job) (*job.Job, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE jobs
           SET title = $1,
               description = $2,
               location = $3,
               salary_min = $4,
               salary_max = $5,
               salary_period = $6,
               application_method = $7,
               contact_info = $8,
               status = $9,
               updated_at = $10
         WHERE id = $11
        RETURNING `+jobColumns+`
    `,
		j.Title,
		j.Description,
		j.Location,
		nullableInt64(j.SalaryMin),
		nullableInt64(j.SalaryMax),
		nullableSalaryPeriod(j.SalaryPeriod),
		string(j.Method),
		nullableString(j.ContactInfo),
		string(j.Status),
		j.UpdatedAt,
		j.ID,
	)

	updated, err := scanJob(row)
	if err != nil {
		return nil, translateJobPgError(err)
	}
	return updated, nil
}

// FindByID は ID で求人を取得します。
func (r *JobRepository) FindByID(ctx context.Context, id string) (*job.Job, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+jobColumns+`
          FROM jobs
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanJob(row)
	if err != nil {
		return nil, translateJobPgError(err)
	}
	return found, nil
}

// ListPublished は公開中の求人を検索します。
// TOP 表示が有効な求人が先頭に並び、残りは新しい順です。
func (r *JobRepository) ListPublished(ctx context.Context, filter job.ListJobsFilter) ([]*job.Job, string, error) {
	if filter.Limit <= 0 {
		return nil, "", job.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", job.ErrInvalidPageToken
	}

	limitWithBuffer := filter.Limit + 1

	args := make([]any, 0, 4)
	args = append(args, filter.Now)
	conditions := []string{"status = 'published'"}

	if strings.TrimSpace(filter.TitleQuery) != "" {
		placeholder := "$" + strconv.Itoa(len(args)+1)
		conditions = append(conditions, "title ILIKE "+placeholder)
		args = append(args, "%"+filter.TitleQuery+"%")
	}

	limitPlaceholder := "$" + strconv.Itoa(len(args)+1)
	args = append(args, limitWithBuffer)
	offsetPlaceholder := "$" + strconv.Itoa(len(args)+1)
	args = append(args, filter.Offset)

	query := `
        SELECT ` + jobColumns + `
          FROM jobs
         WHERE ` + strings.Join(conditions, " AND ") + `
         ORDER BY (promoted_until IS NOT NULL AND promoted_until > $1) DESC,
                  created_at DESC, id DESC
         LIMIT ` + limitPlaceholder + `
        OFFSET ` + offsetPlaceholder + `
    `

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, "", translateJobPgError(err)
	}
	defer rows.Close()

	jobs := make([]*job.Job, 0, filter.Limit)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, "", translateJobPgError(err)
		}
		jobs = append(jobs, j)
	}

	if err := rows.Err(); err != nil {
		return nil, "", translateJobPgError(err)
	}

	var nextToken string
	if len(jobs) == limitWithBuffer {
		jobs = jobs[:filter.Limit]
		nextToken = strconv.Itoa(filter.Offset + filter.Limit)
	}

	return jobs, nextToken, nil
}

// ListByCompany は会社の求人一覧を新しい順に取得します。
func (r *JobRepository) ListByCompany(ctx context.Context, companyID string) ([]*job.Job, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT `+jobColumns+`
          FROM jobs
         WHERE company_id = $1
         ORDER BY created_at DESC, id DESC
    `, companyID)
	if err != nil {
		return nil, translateJobPgError(err)
	}
	defer rows.Close()

	var jobs []*job.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, translateJobPgError(err)
		}
		jobs = append(jobs, j)
	}

	if err := rows.Err(); err != nil {
		return nil, translateJobPgError(err)
	}

	return jobs, nil
}

// IncrementViews は求人の閲覧数を 1 加算します。
func (r *JobRepository) IncrementViews(ctx context.Context, id string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `UPDATE jobs SET views = views + 1 WHERE id = $1`, id)
	if err != nil {
		return translateJobPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return job.ErrJobNotFound
	}
	return nil
}

// CreateQuestions は求人のスクリーニング質問を登録します。
func (r *JobRepository) CreateQuestions(ctx context.Context, jobID string, questions []*job.Question) ([]*job.Question, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)

	saved := make([]*job.Question, 0, len(questions))
	for _, q := range questions {
		row := exec.QueryRow(ctx, `
            INSERT INTO job_questions (job_id, question, expected_answer, is_disqualifying)
            VALUES ($1, $2, $3, $4)
            RETURNING id, job_id, question, expected_answer, is_disqualifying
        `,
			jobID,
			q.Text,
			nullableString(q.ExpectedAnswer),
			q.Disqualifying,
		)

		created, err := scanQuestion(row)
		if err != nil {
			return nil, translateJobPgError(err)
		}
		saved = append(saved, created)
	}

	return saved, nil
}

// ListQuestions は求人のスクリーニング質問を登録順に取得します。
func (r *JobRepository) ListQuestions(ctx context.Context, jobID string) ([]*job.Question, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT id, job_id, question, expected_answer, is_disqualifying
          FROM job_questions
         WHERE job_id = $1
         ORDER BY id ASC
    `, jobID)
	if err != nil {
		return nil, translateJobPgError(err)
	}
	defer rows.Close()

	var questions []*job.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, translateJobPgError(err)
		}
		questions = append(questions, q)
	}

	if err := rows.Err(); err != nil {
		return nil, translateJobPgError(err)
	}

	return questions, nil
}

// SetPromotion はプロモーション効果を求人へ適用します。
func (r *JobRepository) SetPromotion(ctx context.Context, jobID string, highlight bool, promotedUntil *time.Time) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)

	var tag pgconn.CommandTag
	var err error
	if highlight {
		tag, err = exec.Exec(ctx, `UPDATE jobs SET is_highlighted = TRUE WHERE id = $1`, jobID)
	} else {
		tag, err = exec.Exec(ctx, `UPDATE jobs SET promoted_until = $1 WHERE id = $2`, promotedUntil, jobID)
	}
	if err != nil {
		return translateJobPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return job.ErrJobNotFound
	}
	return nil
}

func scanJob(row pgx.Row) (*job.Job, error) {
	var (
		id            string
		companyID     string
		employerID    string
		title         string
		description   string
		location      string
		salaryMin     sql.NullInt64
		salaryMax     sql.NullInt64
		salaryPeriod  sql.NullString
		method        string
		contactInfo   sql.NullString
		status        string
		isHighlighted bool
		promotedUntil sql.NullTime
		views         int64
		createdAt     time.Time
		updatedAt     time.Time
	)

	if err := row.Scan(
		&id,
		&companyID,
		&employerID,
		&title,
		&description,
		&location,
		&salaryMin,
		&salaryMax,
		&salaryPeriod,
		&method,
		&contactInfo,
		&status,
		&isHighlighted,
		&promotedUntil,
		&views,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, job.ErrJobNotFound
		}
		return nil, err
	}

	var periodPtr *job.SalaryPeriod
	if salaryPeriod.Valid {
		period := job.SalaryPeriod(salaryPeriod.String)
		periodPtr = &period
	}

	return &job.Job{
		ID:            id,
		CompanyID:     companyID,
		EmployerID:    employerID,
		Title:         title,
		Description:   description,
		Location:      location,
		SalaryMin:     nullInt64Ptr(salaryMin),
		SalaryMax:     nullInt64Ptr(salaryMax),
		SalaryPeriod:  periodPtr,
		Method:        job.ApplicationMethod(method),
		ContactInfo:   nullStringPtr(contactInfo),
		Status:        job.Status(status),
		IsHighlighted: isHighlighted,
		PromotedUntil: nullTimePtr(promotedUntil),
		Views:         views,
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}, nil
}

func scanQuestion(row pgx.Row) (*job.Question, error) {
	var (
		id             string
		jobID          string
		text           string
		expectedAnswer sql.NullString
		disqualifying  bool
	)

	if err := row.Scan(&id, &jobID, &text, &expectedAnswer, &disqualifying); err != nil {
		return nil, err
	}

	return &job.Question{
		ID:             id,
		JobID:          jobID,
		Text:           text,
		ExpectedAnswer: nullStringPtr(expectedAnswer),
		Disqualifying:  disqualifying,
	}, nil
}

func translateJobPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return job.ErrJobNotFound
	}
	return err
}

func nullableInt64(value *int64) any {
	if value == nil {
		return nil
	}
	return *value
}

func nullableSalaryPeriod(value *job.SalaryPeriod) any {
	if value == nil {
		return nil
	}
	return string(*value)
}

func nullInt64Ptr(value sql.NullInt64) *int64 {
	if !value.Valid {
		return nil
	}
	v := value.Int64
	return &v
}
