package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/workfound/workfound-server/internal/core/alert"
	pgdb "github.com/workfound/workfound-server/internal/platform/db/postgres"
)

// AlertRepository は PostgreSQL を利用した求人購読永続化の実装です。
type AlertRepository struct {
	pool pgdb.Queryer
}

// NewAlertRepository は AlertRepository を生成します。
func NewAlertRepository(pool pgdb.Queryer) *AlertRepository {
	return &AlertRepository{pool: pool}
}

// Create は購読を新規作成します。
func (r *AlertRepository) Create(ctx context.Context, a *alert.JobAlert) (*alert.JobAlert, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO job_alerts (user_id, keywords, location, created_at)
        VALUES ($1, $2, $3, $4)
        RETURNING id, user_id, keywords, location, created_at
    `, a.UserID, a.Keywords, a.Location, a.CreatedAt)

	created, err := scanAlert(row)
	if err != nil {
		return nil, translateAlertPgError(err)
	}
	return created, nil
}

// FindByID は ID で購読を取得します。
func (r *AlertRepository) FindByID(ctx context.Context, id string) (*alert.JobAlert, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT id, user_id, keywords, location, created_at
          FROM job_alerts
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanAlert(row)
	if err != nil {
		return nil, translateAlertPgError(err)
	}
	return found, nil
}

// ListByUser は利用者の購読一覧を作成順に取得します。
func (r *AlertRepository) ListByUser(ctx context.Context, userID string) ([]*alert.JobAlert, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT id, user_id, keywords, location, created_at
          FROM job_alerts
         WHERE user_id = $1
         ORDER BY created_at DESC, id
    `, userID)
	if err != nil {
		return nil, translateAlertPgError(err)
	}
	defer rows.Close()

	var alerts []*alert.JobAlert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, translateAlertPgError(err)
		}
		alerts = append(alerts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, translateAlertPgError(err)
	}

	return alerts, nil
}

// ListSubscriptions は全購読を購読者のメールアドレス付きで取得します。
// 新着求人の通知配信に使われます。
func (r *AlertRepository) ListSubscriptions(ctx context.Context) ([]*alert.Subscription, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT a.id, a.user_id, a.keywords, a.location, a.created_at, p.email
          FROM job_alerts a
          JOIN profiles p ON p.id = a.user_id
    `)
	if err != nil {
		return nil, translateAlertPgError(err)
	}
	defer rows.Close()

	var subscriptions []*alert.Subscription
	for rows.Next() {
		var sub alert.Subscription
		if err := rows.Scan(
			&sub.Alert.ID,
			&sub.Alert.UserID,
			&sub.Alert.Keywords,
			&sub.Alert.Location,
			&sub.Alert.CreatedAt,
			&sub.Email,
		); err != nil {
			return nil, translateAlertPgError(err)
		}
		subscriptions = append(subscriptions, &sub)
	}

	if err := rows.Err(); err != nil {
		return nil, translateAlertPgError(err)
	}

	return subscriptions, nil
}

// Delete は購読を削除します。
func (r *AlertRepository) Delete(ctx context.Context, id string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM job_alerts WHERE id = $1`, id)
	if err != nil {
		return translateAlertPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return alert.ErrAlertNotFound
	}
	return nil
}

func scanAlert(row pgx.Row) (*alert.JobAlert, error) {
	var a alert.JobAlert
	if err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.Keywords,
		&a.Location,
		&a.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, alert.ErrAlertNotFound
		}
		return nil, err
	}
	return &a, nil
}

func translateAlertPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return alert.ErrAlertNotFound
	}
	return err
}
