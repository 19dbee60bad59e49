package identity

import (
	"context"
	"errors"
)

// Role は利用者の役割を表します。
type Role string

const (
	RoleSeeker   Role = "seeker"
	RoleEmployer Role = "employer"
	RoleAdmin    Role = "admin"
)

var (
	// ErrUnauthenticated は呼び出し元の身元が確認できない場合に返却されます。
	ErrUnauthenticated = errors.New("identity: unauthenticated")
	// ErrInvalidToken はトークンが無効または期限切れの場合に返却されます。
	ErrInvalidToken = errors.New("identity: invalid token")
)

// Principal は認証済みの呼び出し元を表します。
type Principal struct {
	UserID string
	Role   Role
}

// IsAdmin は管理者権限を持つかどうかを返します。
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// TokenVerifier はベアラートークンを Principal に解決します。
// セッション発行そのものは外部の認証基盤に委譲されます。
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (Principal, error)
}

type principalContextKey struct{}

var ctxKey = principalContextKey{}

// WithPrincipal は Principal をコンテキストへ格納します。
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKey, p)
}

// FromContext はコンテキストから Principal を取り出します。
// 存在しない場合は ErrUnauthenticated を返します。
func FromContext(ctx context.Context) (Principal, error) {
	p, ok := ctx.Value(ctxKey).(Principal)
	if !ok {
		return Principal{}, ErrUnauthenticated
	}
	return p, nil
}
