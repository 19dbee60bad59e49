package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/workfound/workfound-server/internal/core/resume"
	pgdb "github.com/workfound/workfound-server/internal/platform/db/postgres"
)

const resumeColumns = `id, user_id, title, about, skills, experience, is_public, created_at, updated_at`

// ResumeRepository は PostgreSQL を利用した履歴書永続化の実装です。
type ResumeRepository struct {
	pool pgdb.Queryer
}

// NewResumeRepository は ResumeRepository を生成します。
func NewResumeRepository(pool pgdb.Queryer) *ResumeRepository {
	return &ResumeRepository{pool: pool}
}

// Create は履歴書を新規作成します。
func (r *ResumeRepository) Create(ctx context.Context, res *resume.Resume) (*resume.Resume, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO resumes (user_id, title, about, skills, experience, is_public, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING `+resumeColumns+`
    `,
		res.UserID,
		res.Title,
		res.About,
		res.Skills,
		res.Experience,
		res.IsPublic,
		res.CreatedAt,
		res.UpdatedAt,
	)

	created, err := scanResume(row)
	if err != nil {
		return nil, translateResumePgError(err)
	}
	return created, nil
}

// Update は履歴書を更新します。
func (r *ResumeRepository) Update(ctx context.Context, res *resume.Resume) (*resume.Resume, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE resumes
           SET title = $1,
               about = $2,
               skills = $3,
               experience = $4,
               is_public = $5,
               updated_at = $6
         WHERE id = $7
        RETURNING `+resumeColumns+`
    `,
		res.Title,
		res.About,
		res.Skills,
		res.Experience,
		res.IsPublic,
		res.UpdatedAt,
		res.ID,
	)

	updated, err := scanResume(row)
	if err != nil {
		return nil, translateResumePgError(err)
	}
	return updated, nil
}

// FindByID は ID で履歴書を取得します。
func (r *ResumeRepository) FindByID(ctx context.Context, id string) (*resume.Resume, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+resumeColumns+`
          FROM resumes
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanResume(row)
	if err != nil {
		return nil, translateResumePgError(err)
	}
	return found, nil
}

// ListByUser は利用者の履歴書一覧を新しい順に取得します。
func (r *ResumeRepository) ListByUser(ctx context.Context, userID string) ([]*resume.Resume, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT `+resumeColumns+`
          FROM resumes
         WHERE user_id = $1
         ORDER BY updated_at DESC, id DESC
    `, userID)
	if err != nil {
		return nil, translateResumePgError(err)
	}
	defer rows.Close()

	return collectResumes(rows)
}

// SearchPublic は公開履歴書をタイトルとスキルで部分一致検索します。
func (r *ResumeRepository) SearchPublic(ctx context.Context, query string, limit int) ([]*resume.Resume, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT `+resumeColumns+`
          FROM resumes
         WHERE is_public = TRUE
           AND ($1 = '' OR title ILIKE '%' || $1 || '%' OR skills ILIKE '%' || $1 || '%')
         ORDER BY updated_at DESC, id DESC
         LIMIT $2
    `, query, limit)
	if err != nil {
		return nil, translateResumePgError(err)
	}
	defer rows.Close()

	return collectResumes(rows)
}

func collectResumes(rows pgx.Rows) ([]*resume.Resume, error) {
	var resumes []*resume.Resume
	for rows.Next() {
		res, err := scanResume(rows)
		if err != nil {
			return nil, translateResumePgError(err)
		}
		resumes = append(resumes, res)
	}

	if err := rows.Err(); err != nil {
		return nil, translateResumePgError(err)
	}

	return resumes, nil
}

func scanResume(row pgx.Row) (*resume.Resume, error) {
	var (
		res       resume.Resume
		createdAt time.Time
		updatedAt time.Time
	)

	if err := row.Scan(
		&res.ID,
		&res.UserID,
		&res.Title,
		&res.About,
		&res.Skills,
		&res.Experience,
		&res.IsPublic,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, resume.ErrResumeNotFound
		}
		return nil, err
	}

	res.CreatedAt = createdAt
	res.UpdatedAt = updatedAt
	return &res, nil
}

func translateResumePgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return resume.ErrResumeNotFound
	}
	return err
}
