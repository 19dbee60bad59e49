package postgres

import (
	"context"
	"time"

	"github.com/workfound/workfound-server/internal/core/saved"
	pgdb "github.com/workfound/workfound-server/internal/platform/db/postgres"
)

// SavedRepository は PostgreSQL を利用した保存済みアイテム永続化の実装です。
// 一覧は求人・履歴書の実体を結合して返すため、削除済みアイテムは現れません。
type SavedRepository struct {
	pool pgdb.Queryer
}

// NewSavedRepository は SavedRepository を生成します。
func NewSavedRepository(pool pgdb.Queryer) *SavedRepository {
	return &SavedRepository{pool: pool}
}

// Exists はアイテムが保存済みかどうかを返します。
func (r *SavedRepository) Exists(ctx context.Context, userID, itemID string, itemType saved.ItemType) (bool, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)

	var exists bool
	err := exec.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT 1
              FROM saved_items
             WHERE user_id = $1 AND item_id = $2 AND item_type = $3
        )
    `, userID, itemID, string(itemType)).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// Create はアイテムを保存します。既に保存済みの場合は何もしません。
func (r *SavedRepository) Create(ctx context.Context, userID, itemID string, itemType saved.ItemType, savedAt time.Time) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	_, err := exec.Exec(ctx, `
        INSERT INTO saved_items (user_id, item_id, item_type, created_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (user_id, item_id, item_type) DO NOTHING
    `, userID, itemID, string(itemType), savedAt)
	return err
}

// Delete は保存済みアイテムを取り除きます。
func (r *SavedRepository) Delete(ctx context.Context, userID, itemID string, itemType saved.ItemType) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	_, err := exec.Exec(ctx, `
        DELETE FROM saved_items
         WHERE user_id = $1 AND item_id = $2 AND item_type = $3
    `, userID, itemID, string(itemType))
	return err
}

// ListJobs は保存済み求人を保存順に取得します。
func (r *SavedRepository) ListJobs(ctx context.Context, userID string) ([]*saved.SavedJob, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT j.id, j.title, j.location, c.name, s.created_at
          FROM saved_items s
          JOIN jobs j ON j.id = s.item_id
          JOIN companies c ON c.id = j.company_id
         WHERE s.user_id = $1 AND s.item_type = 'job'
         ORDER BY s.created_at DESC, j.id
    `, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*saved.SavedJob
	for rows.Next() {
		var j saved.SavedJob
		if err := rows.Scan(&j.ID, &j.Title, &j.Location, &j.CompanyName, &j.SavedAt); err != nil {
			return nil, err
		}
		jobs = append(jobs, &j)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return jobs, nil
}

// ListResumes は保存済み履歴書を保存順に取得します。
func (r *SavedRepository) ListResumes(ctx context.Context, userID string) ([]*saved.SavedResume, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT re.id, re.title, re.is_public, s.created_at
          FROM saved_items s
          JOIN resumes re ON re.id = s.item_id
         WHERE s.user_id = $1 AND s.item_type = 'resume'
         ORDER BY s.created_at DESC, re.id
    `, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var resumes []*saved.SavedResume
	for rows.Next() {
		var re saved.SavedResume
		if err := rows.Scan(&re.ID, &re.Title, &re.IsPublic, &re.SavedAt); err != nil {
			return nil, err
		}
		resumes = append(resumes, &re)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return resumes, nil
}
