package company

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/workfound/workfound-server/internal/core/identity"
	"github.com/workfound/workfound-server/internal/core/notify"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// Service は会社に関するユースケースをまとめます。
type Service struct {
	repo     Repository
	clock    Clock
	tx       TransactionManager
	notifier notify.Notifier
}

// UseCase は会社ユースケースの公開インターフェースです。
type UseCase interface {
	CreateCompany(ctx context.Context, in CreateCompanyInput) (*Company, error)
	GetCompany(ctx context.Context, id string) (*Company, error)
	GetCompanyBySlug(ctx context.Context, slug string) (*Company, error)
	UpdateCompany(ctx context.Context, in UpdateCompanyInput) (*Company, error)
	AddMember(ctx context.Context, in AddMemberInput) (*Member, error)
	ListMembers(ctx context.Context, companyID string) ([]*Member, error)
	MembershipOf(ctx context.Context, userID string) (*Member, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, clock Clock, tx TransactionManager, notifier notify.Notifier) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Service{repo: repo, clock: clock, tx: tx, notifier: notifier}
}

// CreateCompanyInput は会社作成時の入力です。
type CreateCompanyInput struct {
	Name        string
	Slug        string
	Website     *string
	Description *string
}

// UpdateCompanyInput は会社更新時の入力です。
type UpdateCompanyInput struct {
	ID          string
	Name        *string
	Website     *string
	Description *string
	LogoURL     *string
}

// AddMemberInput はメンバー追加時の入力です。
type AddMemberInput struct {
	CompanyID string
	UserID    string
	Email     string
	Role      MemberRole
}

// CreateCompany は会社を作成し、呼び出し元をオーナーとして登録します。
func (s *Service) CreateCompany(ctx context.Context, in CreateCompanyInput) (*Company, error) {
	principal, err := identity.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrInvalidName
	}

	slug, err := normalizeSlug(in.Slug, name)
	if err != nil {
		return nil, err
	}

	var created *Company
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if err := s.ensureSlugNotExists(txCtx, slug); err != nil {
			return err
		}

		now := s.clock.Now()
		result, err := s.repo.Create(txCtx, &Company{
			Name:        name,
			Slug:        slug,
			Website:     normalizeOptional(in.Website),
			Description: normalizeOptional(in.Description),
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		if err != nil {
			return err
		}

		if _, err := s.repo.AddMember(txCtx, &Member{
			CompanyID: result.ID,
			UserID:    principal.UserID,
			Role:      MemberRoleOwner,
			CreatedAt: now,
		}); err != nil {
			return err
		}

		created = result
		return nil
	}); err != nil {
		return nil, err
	}

	return created, nil
}

// GetCompany は ID で会社を取得します。
func (s *Service) GetCompany(ctx context.Context, id string) (*Company, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidID
	}
	return s.repo.FindByID(ctx, id)
}

// GetCompanyBySlug はスラッグで会社を取得します。公開ページ用です。
func (s *Service) GetCompanyBySlug(ctx context.Context, slug string) (*Company, error) {
	if strings.TrimSpace(slug) == "" {
		return nil, ErrInvalidSlug
	}
	return s.repo.FindBySlug(ctx, slug)
}

// UpdateCompany は会社情報を更新します。メンバーのみ実行できます。
func (s *Service) UpdateCompany(ctx context.Context, in UpdateCompanyInput) (*Company, error) {
	principal, err := identity.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(in.ID) == "" {
		return nil, ErrInvalidID
	}

	var updated *Company
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if err := s.requireMember(txCtx, in.ID, principal); err != nil {
			return err
		}

		existing, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}

		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return ErrInvalidName
			}
			existing.Name = name
		}
		if in.Website != nil {
			existing.Website = normalizeOptional(in.Website)
		}
		if in.Description != nil {
			existing.Description = normalizeOptional(in.Description)
		}
		if in.LogoURL != nil {
			existing.LogoURL = normalizeOptional(in.LogoURL)
		}

		existing.UpdatedAt = s.clock.Now()

		result, err := s.repo.Update(txCtx, existing)
		if err != nil {
			return err
		}

		updated = result
		return nil
	}); err != nil {
		return nil, err
	}

	return updated, nil
}

// AddMember は会社にメンバーを追加します。owner / admin のみ実行できます。
// 追加されたメンバーへは招待メールをベストエフォートで送信します。
func (s *Service) AddMember(ctx context.Context, in AddMemberInput) (*Member, error) {
	principal, err := identity.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(in.CompanyID) == "" {
		return nil, ErrInvalidID
	}
	if !isValidMemberRole(in.Role) {
		return nil, ErrInvalidMemberRole
	}

	var added *Member
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		caller, err := s.repo.FindMember(txCtx, in.CompanyID, principal.UserID)
		if err != nil {
			if errors.Is(err, ErrMemberNotFound) {
				return ErrNotAuthorized
			}
			return err
		}
		if !caller.CanManageMembers() {
			return ErrNotAuthorized
		}

		existing, err := s.repo.FindMember(txCtx, in.CompanyID, in.UserID)
		if err != nil && !errors.Is(err, ErrMemberNotFound) {
			return err
		}
		if existing != nil {
			return ErrAlreadyMember
		}

		result, err := s.repo.AddMember(txCtx, &Member{
			CompanyID: in.CompanyID,
			UserID:    in.UserID,
			Role:      in.Role,
			CreatedAt: s.clock.Now(),
		})
		if err != nil {
			return err
		}

		added = result
		return nil
	}); err != nil {
		return nil, err
	}

	if in.Email != "" {
		s.notifier.SendEmail(ctx, notify.Email{
			To:      in.Email,
			Subject: "Workfound: вас добавили в команду компании",
			Body:    fmt.Sprintf("Вы добавлены в компанию с ролью %q.", added.Role),
		})
	}

	return added, nil
}

// ListMembers は会社のメンバー一覧を取得します。メンバーのみ閲覧できます。
func (s *Service) ListMembers(ctx context.Context, companyID string) ([]*Member, error) {
	principal, err := identity.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(companyID) == "" {
		return nil, ErrInvalidID
	}

	if err := s.requireMember(ctx, companyID, principal); err != nil {
		return nil, err
	}

	return s.repo.ListMembers(ctx, companyID)
}

// MembershipOf は利用者が所属する会社メンバーシップを返します。
func (s *Service) MembershipOf(ctx context.Context, userID string) (*Member, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidID
	}
	return s.repo.FindMembershipByUser(ctx, userID)
}

// IsMember は利用者が会社のメンバーかどうかを返します。
// job / application / wallet の各サービスが認可判定に利用します。
func (s *Service) IsMember(ctx context.Context, companyID, userID string) (bool, error) {
	if _, err := s.repo.FindMember(ctx, companyID, userID); err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *Service) requireMember(ctx context.Context, companyID string, principal identity.Principal) error {
	if principal.IsAdmin() {
		return nil
	}
	if _, err := s.repo.FindMember(ctx, companyID, principal.UserID); err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			return ErrNotAuthorized
		}
		return err
	}
	return nil
}

func (s *Service) ensureSlugNotExists(ctx context.Context, slug string) error {
	existing, err := s.repo.FindBySlug(ctx, slug)
	if err != nil && !errors.Is(err, ErrCompanyNotFound) {
		return err
	}
	if existing != nil {
		return ErrSlugAlreadyExists
	}
	return nil
}

func normalizeSlug(raw, name string) (string, error) {
	slug := strings.TrimSpace(raw)
	if slug == "" {
		slug = name
	}
	slug = strings.ToLower(slug)
	slug = strings.ReplaceAll(slug, " ", "-")
	if !slugPattern.MatchString(slug) {
		return "", ErrInvalidSlug
	}
	return slug, nil
}

func normalizeOptional(raw *string) *string {
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

func isValidMemberRole(role MemberRole) bool {
	switch role {
	case MemberRoleOwner, MemberRoleAdmin, MemberRoleRecruiter:
		return true
	default:
		return false
	}
}
