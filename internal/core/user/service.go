package user

import (
	"context"
	"strconv"
	"strings"

	"github.com/workfound/workfound-server/internal/core/identity"
)

const (
	defaultListPageSize = 50
	maxListPageSize     = 200
)

// Service はプロフィールに関するユースケースをまとめます。
type Service struct {
	repo Repository
}

// UseCase はプロフィールユースケースの公開インターフェースです。
type UseCase interface {
	GetProfile(ctx context.Context, id string) (*Profile, error)
	UpdateProfile(ctx context.Context, in UpdateProfileInput) (*Profile, error)
	ListProfiles(ctx context.Context, in ListProfilesInput) (*ListProfilesResult, error)
}

// NewService は Service を生成します。
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// UpdateProfileInput はプロフィール更新時の入力です。
type UpdateProfileInput struct {
	FullName    *string
	CompanyName *string
	Phone       *string
}

// ListProfilesInput は一覧取得時の入力です。
type ListProfilesInput struct {
	PageSize  int
	PageToken string
	Role      *identity.Role
}

// ListProfilesResult は一覧取得結果を表します。
type ListProfilesResult struct {
	Profiles      []*Profile
	NextPageToken string
}

// GetProfile は ID でプロフィールを取得します。
func (s *Service) GetProfile(ctx context.Context, id string) (*Profile, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidID
	}
	return s.repo.FindByID(ctx, id)
}

// UpdateProfile は呼び出し元自身のプロフィールを更新します。
func (s *Service) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*Profile, error) {
	principal, err := identity.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByID(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}

	if in.FullName != nil {
		name := strings.TrimSpace(*in.FullName)
		if name == "" {
			return nil, ErrInvalidFullName
		}
		existing.FullName = name
	}
	if in.CompanyName != nil {
		existing.CompanyName = optional(in.CompanyName)
	}
	if in.Phone != nil {
		existing.Phone = optional(in.Phone)
	}

	return s.repo.Update(ctx, existing)
}

// ListProfiles は利用者一覧を取得します。管理者のみ実行できます。
func (s *Service) ListProfiles(ctx context.Context, in ListProfilesInput) (*ListProfilesResult, error) {
	principal, err := identity.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	if !principal.IsAdmin() {
		return nil, ErrNotAuthorized
	}

	limit := in.PageSize
	if limit <= 0 {
		limit = defaultListPageSize
	}
	if limit > maxListPageSize {
		return nil, ErrInvalidPageSize
	}

	offset := 0
	if strings.TrimSpace(in.PageToken) != "" {
		offset, err = strconv.Atoi(in.PageToken)
		if err != nil || offset < 0 {
			return nil, ErrInvalidPageToken
		}
	}

	profiles, nextToken, err := s.repo.List(ctx, ListProfilesFilter{
		Role:   in.Role,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, err
	}

	return &ListProfilesResult{Profiles: profiles, NextPageToken: nextToken}, nil
}

func optional(raw *string) *string {
	if raw == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*raw)
	if trimmed == "" {
		return nil
	}
	value := trimmed
	return &value
}
