package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/workfound/workfound-server/internal/core/identity"
	"github.com/workfound/workfound-server/internal/core/user"
	pgdb "github.com/workfound/workfound-server/internal/platform/db/postgres"
)

// UserRepository は PostgreSQL を利用したプロフィール永続化の実装です。
type UserRepository struct {
	pool pgdb.Queryer
}

// NewUserRepository は UserRepository を生成します。
func NewUserRepository(pool pgdb.Queryer) *UserRepository {
	return &UserRepository{pool: pool}
}

// FindByID は ID でプロフィールを取得します。
func (r *UserRepository) FindByID(ctx context.Context, id string) (*user.Profile, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT id, email, role, full_name, company_name, phone, created_at
          FROM profiles
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanProfile(row)
	if err != nil {
		return nil, translateUserPgError(err)
	}
	return found, nil
}

// Update はプロフィールを更新します。
func (r *UserRepository) Update(ctx context.Context, profile *user.Profile) (*user.Profile, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE profiles
           SET full_name = $1,
               company_name = $2,
               phone = $3
         WHERE id = $4
        RETURNING id, email, role, full_name, company_name, phone, created_at
    `,
		profile.FullName,
		nullableString(profile.CompanyName),
		nullableString(profile.Phone),
		profile.ID,
	)

	updated, err := scanProfile(row)
	if err != nil {
		return nil, translateUserPgError(err)
	}
	return updated, nil
}

// List はプロフィールの一覧を取得します。管理画面用です。
func (r *UserRepository) List(ctx context.Context, filter user.ListProfilesFilter) ([]*user.Profile, string, error) {
	if filter.Limit <= 0 {
		return nil, "", user.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", user.ErrInvalidPageToken
	}

	limitWithBuffer := filter.Limit + 1

	args := make([]any, 0, 3)
	whereClause := ""
	if filter.Role != nil {
		args = append(args, string(*filter.Role))
		whereClause = " WHERE role = $1"
	}

	limitPlaceholder := "$" + strconv.Itoa(len(args)+1)
	args = append(args, limitWithBuffer)
	offsetPlaceholder := "$" + strconv.Itoa(len(args)+1)
	args = append(args, filter.Offset)

	query := `
        SELECT id, email, role, full_name, company_name, phone, created_at
          FROM profiles` + whereClause + `
         ORDER BY created_at DESC, id DESC
         LIMIT ` + limitPlaceholder + `
        OFFSET ` + offsetPlaceholder + `
    `

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, "", translateUserPgError(err)
	}
	defer rows.Close()

	profiles := make([]*user.Profile, 0, filter.Limit)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, "", translateUserPgError(err)
		}
		profiles = append(profiles, p)
	}

	if err := rows.Err(); err != nil {
		return nil, "", translateUserPgError(err)
	}

	var nextToken string
	if len(profiles) == limitWithBuffer {
		profiles = profiles[:filter.Limit]
		nextToken = strconv.Itoa(filter.Offset + filter.Limit)
	}

	return profiles, nextToken, nil
}

func scanProfile(row pgx.Row) (*user.Profile, error) {
	var (
		id          string
		email       string
		role        string
		fullName    string
		companyName sql.NullString
		phone       sql.NullString
		createdAt   time.Time
	)

	if err := row.Scan(&id, &email, &role, &fullName, &companyName, &phone, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrProfileNotFound
		}
		return nil, err
	}

	return &user.Profile{
		ID:          id,
		Email:       email,
		Role:        identity.Role(role),
		FullName:    fullName,
		CompanyName: nullStringPtr(companyName),
		Phone:       nullStringPtr(phone),
		CreatedAt:   createdAt,
	}, nil
}

func translateUserPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return user.ErrProfileNotFound
	}
	return err
}

func nullableString(value *string) any {
	if value == nil {
		return nil
	}
	return *value
}

func nullStringPtr(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	s := value.String
	return &s
}

func nullTimePtr(value sql.NullTime) *time.Time {
	if !value.Valid {
		return nil
	}
	t := value.Time
	return &t
}
