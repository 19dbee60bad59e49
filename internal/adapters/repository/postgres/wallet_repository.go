package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/workfound/workfound-server/internal/core/wallet"
	pgdb "github.com/workfound/workfound-server/internal/platform/db/postgres"
)

// WalletRepository は PostgreSQL を利用したウォレット永続化の実装です。
// 残高は companies.balance_minor、取引ログは wallet_transactions に保持します。
type WalletRepository struct {
	pool pgdb.Queryer
}

// NewWalletRepository は WalletRepository を生成します。
func NewWalletRepository(pool pgdb.Queryer) *WalletRepository {
	return &WalletRepository{pool: pool}
}

// InsertTransaction は取引ログを追記します。
// external_session_id の一意制約に抵触した場合は ErrSessionAlreadyCredited を返します。
func (r *WalletRepository) InsertTransaction(ctx context.Context, txn *wallet.Transaction) (*wallet.Transaction, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO wallet_transactions (company_id, amount_minor, type, description, external_session_id, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, company_id, amount_minor, type, description, external_session_id, created_at
    `,
		txn.CompanyID,
		txn.AmountMinor,
		string(txn.Type),
		txn.Description,
		nullableString(txn.ExternalSessionID),
		txn.CreatedAt,
	)

	created, err := scanWalletTransaction(row)
	if err != nil {
		return nil, translateWalletPgError(err)
	}
	return created, nil
}

// CreditBalance は会社残高を amount だけ増やします。
func (r *WalletRepository) CreditBalance(ctx context.Context, companyID string, amount int64) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `
        UPDATE companies SET balance_minor = balance_minor + $1 WHERE id = $2
    `, amount, companyID)
	if err != nil {
		return translateWalletPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return wallet.ErrCompanyNotFound
	}
	return nil
}

// DebitBalanceIfSufficient は残高が足りる場合に限り amount を減算します。
// 条件付きの単一 UPDATE で行われるため、並行する支出が重なっても
// 残高が負になることはありません。
func (r *WalletRepository) DebitBalanceIfSufficient(ctx context.Context, companyID string, amount int64) (bool, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `
        UPDATE companies
           SET balance_minor = balance_minor - $1
         WHERE id = $2 AND balance_minor >= $1
    `, amount, companyID)
	if err != nil {
		return false, translateWalletPgError(err)
	}
	return tag.RowsAffected() > 0, nil
}

// Balance は会社の残高を返します。
func (r *WalletRepository) Balance(ctx context.Context, companyID string) (int64, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `SELECT balance_minor FROM companies WHERE id = $1 LIMIT 1`, companyID)

	var balance int64
	if err := row.Scan(&balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, wallet.ErrCompanyNotFound
		}
		return 0, err
	}

	return balance, nil
}

// ListTransactions は会社の取引ログを新しい順に取得します。
func (r *WalletRepository) ListTransactions(ctx context.Context, companyID string) ([]*wallet.Transaction, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT id, company_id, amount_minor, type, description, external_session_id, created_at
          FROM wallet_transactions
         WHERE company_id = $1
         ORDER BY created_at DESC, id DESC
    `, companyID)
	if err != nil {
		return nil, translateWalletPgError(err)
	}
	defer rows.Close()

	var txns []*wallet.Transaction
	for rows.Next() {
		txn, err := scanWalletTransaction(rows)
		if err != nil {
			return nil, translateWalletPgError(err)
		}
		txns = append(txns, txn)
	}

	if err := rows.Err(); err != nil {
		return nil, translateWalletPgError(err)
	}

	return txns, nil
}

func scanWalletTransaction(row pgx.Row) (*wallet.Transaction, error) {
	var (
		id          string
		companyID   string
		amountMinor int64
		txnType     string
		description string
		sessionID   sql.NullString
		createdAt   time.Time
	)

	if err := row.Scan(&id, &companyID, &amountMinor, &txnType, &description, &sessionID, &createdAt); err != nil {
		return nil, err
	}

	return &wallet.Transaction{
		ID:                id,
		CompanyID:         companyID,
		AmountMinor:       amountMinor,
		Type:              wallet.TransactionType(txnType),
		Description:       description,
		ExternalSessionID: nullStringPtr(sessionID),
		CreatedAt:         createdAt,
	}, nil
}

func translateWalletPgError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		if pgErr.ConstraintName == "wallet_transactions_external_session_id_key" {
			return wallet.ErrSessionAlreadyCredited
		}
	}

	return err
}
