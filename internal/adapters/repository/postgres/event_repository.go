package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/workfound/workfound-server/internal/core/event"
	pgdb "github.com/workfound/workfound-server/internal/platform/db/postgres"
)

const eventColumns = `e.id, e.employer_id, e.application_id, e.title, e.description,
               e.start_time, e.end_time, e.event_type, p.full_name`

// EventRepository は PostgreSQL を利用したカレンダー予定永続化の実装です。
// 応募に紐づく予定は応募者名を結合して返します。
type EventRepository struct {
	pool pgdb.Queryer
}

// NewEventRepository は EventRepository を生成します。
func NewEventRepository(pool pgdb.Queryer) *EventRepository {
	return &EventRepository{pool: pool}
}

// Create は予定を新規作成します。
func (r *EventRepository) Create(ctx context.Context, e *event.Event) (*event.Event, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        WITH inserted AS (
            INSERT INTO calendar_events (employer_id, application_id, title, description, start_time, end_time, event_type)
            VALUES ($1, $2, $3, $4, $5, $6, $7)
            RETURNING id, employer_id, application_id, title, description, start_time, end_time, event_type
        )
        SELECT e.id, e.employer_id, e.application_id, e.title, e.description,
               e.start_time, e.end_time, e.event_type, p.full_name
          FROM inserted e
          LEFT JOIN applications a ON a.id = e.application_id
          LEFT JOIN profiles p ON p.id = a.seeker_id
    `,
		e.EmployerID,
		nullableString(e.ApplicationID),
		e.Title,
		nullableString(e.Description),
		e.StartTime,
		e.EndTime,
		string(e.Type),
	)

	created, err := scanEvent(row)
	if err != nil {
		return nil, translateEventPgError(err)
	}
	return created, nil
}

// FindByID は ID で予定を取得します。
func (r *EventRepository) FindByID(ctx context.Context, id string) (*event.Event, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+eventColumns+`
          FROM calendar_events e
          LEFT JOIN applications a ON a.id = e.application_id
          LEFT JOIN profiles p ON p.id = a.seeker_id
         WHERE e.id = $1
         LIMIT 1
    `, id)

	found, err := scanEvent(row)
	if err != nil {
		return nil, translateEventPgError(err)
	}
	return found, nil
}

// ListByEmployer は採用担当者の予定を開始時刻順に取得します。
// from / to がゼロ値の場合は期間で絞り込みません。
func (r *EventRepository) ListByEmployer(ctx context.Context, employerID string, from, to time.Time) ([]*event.Event, error) {
	args := []any{employerID}
	query := `
        SELECT ` + eventColumns + `
          FROM calendar_events e
          LEFT JOIN applications a ON a.id = e.application_id
          LEFT JOIN profiles p ON p.id = a.seeker_id
         WHERE e.employer_id = $1`

	if !from.IsZero() {
		args = append(args, from)
		query += ` AND e.start_time >= $2`
	}
	if !to.IsZero() {
		args = append(args, to)
		query += ` AND e.start_time < $` + strconv.Itoa(len(args))
	}
	query += `
         ORDER BY e.start_time ASC, e.id ASC
    `

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, translateEventPgError(err)
	}
	defer rows.Close()

	var events []*event.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, translateEventPgError(err)
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, translateEventPgError(err)
	}

	return events, nil
}

// Delete は予定を削除します。
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM calendar_events WHERE id = $1`, id)
	if err != nil {
		return translateEventPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return event.ErrEventNotFound
	}
	return nil
}

func scanEvent(row pgx.Row) (*event.Event, error) {
	var (
		e             event.Event
		applicationID sql.NullString
		description   sql.NullString
		eventType     string
		candidateName sql.NullString
	)

	if err := row.Scan(
		&e.ID,
		&e.EmployerID,
		&applicationID,
		&e.Title,
		&description,
		&e.StartTime,
		&e.EndTime,
		&eventType,
		&candidateName,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, event.ErrEventNotFound
		}
		return nil, err
	}

	e.ApplicationID = nullStringPtr(applicationID)
	e.Description = nullStringPtr(description)
	e.Type = event.Type(eventType)
	e.CandidateName = nullStringPtr(candidateName)
	return &e, nil
}

func translateEventPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return event.ErrEventNotFound
	}
	return err
}
