package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/workfound/workfound-server/internal/core/identity"
	pgdb "github.com/workfound/workfound-server/internal/platform/db/postgres"
)

// SessionVerifier は sessions テーブルを参照するトークン検証の実装です。
// セッション行の発行は外部の認証基盤が行い、ここでは検証のみを担います。
type SessionVerifier struct {
	pool  pgdb.Queryer
	clock func() time.Time
}

// NewSessionVerifier は SessionVerifier を生成します。
func NewSessionVerifier(pool pgdb.Queryer) *SessionVerifier {
	return &SessionVerifier{pool: pool, clock: func() time.Time { return time.Now().UTC() }}
}

// Verify はベアラートークンを Principal に解決します。
// 期限切れまたは未知のトークンは ErrInvalidToken を返します。
func (v *SessionVerifier) Verify(ctx context.Context, token string) (identity.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return identity.Principal{}, identity.ErrInvalidToken
	}

	exec := pgdb.QueryerFromContext(ctx, v.pool)
	row := exec.QueryRow(ctx, `
        SELECT s.user_id, p.role
          FROM sessions s
          JOIN profiles p ON p.id = s.user_id
         WHERE s.token = $1 AND s.expires_at > $2
         LIMIT 1
    `, token, v.clock())

	var (
		userID string
		role   string
	)
	if err := row.Scan(&userID, &role); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return identity.Principal{}, identity.ErrInvalidToken
		}
		return identity.Principal{}, err
	}

	return identity.Principal{UserID: userID, Role: identity.Role(role)}, nil
}
