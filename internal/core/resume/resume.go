package resume

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/workfound/workfound-server/internal/core/identity"
)

var (
	ErrInvalidID      = errors.New("resume: invalid id")
	ErrInvalidTitle   = errors.New("resume: invalid title")
	ErrResumeNotFound = errors.New("resume: not found")
	ErrNotAuthorized  = errors.New("resume: not authorized")
)

// Resume は求職者が作成する履歴書です。
type Resume struct {
	ID         string
	UserID     string
	Title      string
	About      string
	Skills     string
	Experience string
	IsPublic   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Repository は履歴書永続化の抽象です。
type Repository interface {
	Create(ctx context.Context, resume *Resume) (*Resume, error)
	Update(ctx context.Context, resume *Resume) (*Resume, error)
	FindByID(ctx context.Context, id string) (*Resume, error)
	ListByUser(ctx context.Context, userID string) ([]*Resume, error)
	SearchPublic(ctx context.Context, query string, limit int) ([]*Resume, error)
}

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

const searchLimit = 50

// Service は履歴書に関するユースケースをまとめます。
type Service struct {
	repo  Repository
	clock Clock
}

// UseCase は履歴書ユースケースの公開インターフェースです。
type UseCase interface {
	CreateResume(ctx context.Context, in CreateResumeInput) (*Resume, error)
	UpdateResume(ctx context.Context, in UpdateResumeInput) (*Resume, error)
	GetResume(ctx context.Context, id string) (*Resume, error)
	ListMine(ctx context.Context) ([]*Resume, error)
	SearchPublic(ctx context.Context, query string) ([]*Resume, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, clock Clock) *Service {
	if clock == nil {
		clock = realClock{}
	}
	return &Service{repo: repo, clock: clock}
}

// CreateResumeInput は履歴書作成時の入力です。
type CreateResumeInput struct {
	Title      string
	About      string
	Skills     string
	Experience string
	IsPublic   bool
}

// UpdateResumeInput は履歴書更新時の入力です。
type UpdateResumeInput struct {
	ID         string
	Title      *string
	About      *string
	Skills     *string
	Experience *string
	IsPublic   *bool
}

// CreateResume は呼び出し元求職者の履歴書を作成します。
func (s *Service) CreateResume(ctx context.Context, in CreateResumeInput) (*Resume, error) {
	principal, err := identity.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ErrInvalidTitle
	}

	now := s.clock.Now()
	return s.repo.Create(ctx, &Resume{
		UserID:     principal.UserID,
		Title:      title,
		About:      strings.TrimSpace(in.About),
		Skills:     strings.TrimSpace(in.Skills),
		Experience: strings.TrimSpace(in.Experience),
		IsPublic:   in.IsPublic,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
}

// UpdateResume は履歴書を更新します。所有者のみ実行できます。
func (s *Service) UpdateResume(ctx context.Context, in UpdateResumeInput) (*Resume, error) {
	principal, err := identity.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(in.ID) == "" {
		return nil, ErrInvalidID
	}

	existing, err := s.repo.FindByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if existing.UserID != principal.UserID {
		return nil, ErrNotAuthorized
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, ErrInvalidTitle
		}
		existing.Title = title
	}
	if in.About != nil {
		existing.About = strings.TrimSpace(*in.About)
	}
	if in.Skills != nil {
		existing.Skills = strings.TrimSpace(*in.Skills)
	}
	if in.Experience != nil {
		existing.Experience = strings.TrimSpace(*in.Experience)
	}
	if in.IsPublic != nil {
		existing.IsPublic = *in.IsPublic
	}

	existing.UpdatedAt = s.clock.Now()

	return s.repo.Update(ctx, existing)
}

// GetResume は履歴書を取得します。所有者以外は公開分のみ閲覧できます。
func (s *Service) GetResume(ctx context.Context, id string) (*Resume, error) {
	principal, err := identity.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidID
	}

	found, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if found.UserID != principal.UserID && !found.IsPublic && !principal.IsAdmin() {
		return nil, ErrNotAuthorized
	}

	return found, nil
}

// ListMine は呼び出し元の履歴書一覧を返します。
func (s *Service) ListMine(ctx context.Context) ([]*Resume, error) {
	principal, err := identity.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByUser(ctx, principal.UserID)
}

// SearchPublic は公開履歴書をタイトルとスキルで検索します。採用担当者向けです。
func (s *Service) SearchPublic(ctx context.Context, query string) ([]*Resume, error) {
	if _, err := identity.FromContext(ctx); err != nil {
		return nil, err
	}
	return s.repo.SearchPublic(ctx, strings.TrimSpace(query), searchLimit)
}
