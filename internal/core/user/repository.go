package user

import (
	"context"

	"github.com/workfound/workfound-server/internal/core/identity"
)

// Repository はプロフィール永続化の抽象です。
type Repository interface {
	FindByID(ctx context.Context, id string) (*Profile, error)
	Update(ctx context.Context, profile *Profile) (*Profile, error)
	List(ctx context.Context, filter ListProfilesFilter) ([]*Profile, string, error)
}

// ListProfilesFilter は一覧取得用フィルタです。管理画面で使用します。
type ListProfilesFilter struct {
	Role   *identity.Role
	Limit  int
	Offset int
}
