package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/workfound/workfound-server/internal/core/company"
	pgdb "github.com/workfound/workfound-server/internal/platform/db/postgres"
)

const uniqueViolationCode = "23505"

// CompanyRepository は PostgreSQL を利用した会社永続化の実装です。
type CompanyRepository struct {
	pool pgdb.Queryer
}

// NewCompanyRepository は CompanyRepository を生成します。
func NewCompanyRepository(pool pgdb.Queryer) *CompanyRepository {
	return &CompanyRepository{pool: pool}
}

// Create は会社を新規作成します。
func (r *CompanyRepository) Create(ctx context.Context, c *company.Company) (*company.Company, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO companies (name, slug, logo_url, website, description, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, name, slug, logo_url, website, description, balance_minor, created_at, updated_at
    `,
		c.Name,
		c.Slug,
		nullableString(c.LogoURL),
		nullableString(c.Website),
		nullableString(c.Description),
		c.CreatedAt,
		c.UpdatedAt,
	)

	created, err := scanCompany(row)
	if err != nil {
		return nil, translateCompanyPgError(err)
	}
	return created, nil
}

// Update は会社情報を更新します。残高は wallet 側でのみ変更されます。
func (r *CompanyRepository) Update(ctx context.Context, c *company.Company) (*company.Company, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE companies
           SET name = $1,
               logo_url = $2,
               website = $3,
               description = $4,
               updated_at = $5
         WHERE id = $6
        RETURNING id, name, slug, logo_url, website, description, balance_minor, created_at, updated_at
    `,
		c.Name,
		nullableString(c.LogoURL),
		nullableString(c.Website),
		nullableString(c.Description),
		c.UpdatedAt,
		c.ID,
	)

	updated, err := scanCompany(row)
	if err != nil {
		return nil, translateCompanyPgError(err)
	}
	return updated, nil
}

// FindByID は ID で会社を取得します。
func (r *CompanyRepository) FindByID(ctx context.Context, id string) (*company.Company, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT id, name, slug, logo_url, website, description, balance_minor, created_at, updated_at
          FROM companies
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanCompany(row)
	if err != nil {
		return nil, translateCompanyPgError(err)
	}
	return found, nil
}

// FindBySlug はスラッグで会社を取得します。
func (r *CompanyRepository) FindBySlug(ctx context.Context, slug string) (*company.Company, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT id, name, slug, logo_url, website, description, balance_minor, created_at, updated_at
          FROM companies
         WHERE slug = $1
         LIMIT 1
    `, slug)

	found, err := scanCompany(row)
	if err != nil {
		return nil, translateCompanyPgError(err)
	}
	return found, nil
}

// AddMember は会社メンバーを追加します。
func (r *CompanyRepository) AddMember(ctx context.Context, m *company.Member) (*company.Member, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO company_members (company_id, user_id, role, created_at)
        VALUES ($1, $2, $3, $4)
        RETURNING id, company_id, user_id, role, created_at
    `,
		m.CompanyID,
		m.UserID,
		string(m.Role),
		m.CreatedAt,
	)

	added, err := scanMember(row)
	if err != nil {
		return nil, translateCompanyPgError(err)
	}
	return added, nil
}

// ListMembers は会社のメンバー一覧を取得します。
func (r *CompanyRepository) ListMembers(ctx context.Context, companyID string) ([]*company.Member, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT id, company_id, user_id, role, created_at
          FROM company_members
         WHERE company_id = $1
         ORDER BY created_at ASC
    `, companyID)
	if err != nil {
		return nil, translateCompanyPgError(err)
	}
	defer rows.Close()

	var members []*company.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, translateCompanyPgError(err)
		}
		members = append(members, m)
	}

	if err := rows.Err(); err != nil {
		return nil, translateCompanyPgError(err)
	}

	return members, nil
}

// FindMember は会社とユーザーの組み合わせでメンバーシップを取得します。
func (r *CompanyRepository) FindMember(ctx context.Context, companyID, userID string) (*company.Member, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT id, company_id, user_id, role, created_at
          FROM company_members
         WHERE company_id = $1 AND user_id = $2
         LIMIT 1
    `, companyID, userID)

	found, err := scanMember(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, company.ErrMemberNotFound
		}
		return nil, translateCompanyPgError(err)
	}
	return found, nil
}

// FindMembershipByUser は利用者の所属メンバーシップを取得します。
func (r *CompanyRepository) FindMembershipByUser(ctx context.Context, userID string) (*company.Member, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT id, company_id, user_id, role, created_at
          FROM company_members
         WHERE user_id = $1
         ORDER BY created_at ASC
         LIMIT 1
    `, userID)

	found, err := scanMember(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, company.ErrMemberNotFound
		}
		return nil, translateCompanyPgError(err)
	}
	return found, nil
}

func scanCompany(row pgx.Row) (*company.Company, error) {
	var (
		id           string
		name         string
		slug         string
		logoURL      sql.NullString
		website      sql.NullString
		description  sql.NullString
		balanceMinor int64
		createdAt    time.Time
		updatedAt    time.Time
	)

	if err := row.Scan(&id, &name, &slug, &logoURL, &website, &description, &balanceMinor, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, company.ErrCompanyNotFound
		}
		return nil, err
	}

	return &company.Company{
		ID:           id,
		Name:         name,
		Slug:         slug,
		LogoURL:      nullStringPtr(logoURL),
		Website:      nullStringPtr(website),
		Description:  nullStringPtr(description),
		BalanceMinor: balanceMinor,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}, nil
}

func scanMember(row pgx.Row) (*company.Member, error) {
	var (
		id        string
		companyID string
		userID    string
		role      string
		createdAt time.Time
	)

	if err := row.Scan(&id, &companyID, &userID, &role, &createdAt); err != nil {
		return nil, err
	}

	return &company.Member{
		ID:        id,
		CompanyID: companyID,
		UserID:    userID,
		Role:      company.MemberRole(role),
		CreatedAt: createdAt,
	}, nil
}

func translateCompanyPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return company.ErrCompanyNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		switch pgErr.ConstraintName {
		case "companies_slug_key":
			return company.ErrSlugAlreadyExists
		case "company_members_company_id_user_id_key":
			return company.ErrAlreadyMember
		}
	}

	return err
}
