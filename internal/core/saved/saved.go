package saved

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/workfound/workfound-server/internal/core/identity"
)

var (
	ErrInvalidID   = errors.New("saved: invalid item id")
	ErrInvalidType = errors.New("saved: invalid item type")
)

// ItemType は保存対象の種別を表します。
type ItemType string

const (
	TypeJob    ItemType = "job"
	TypeResume ItemType = "resume"
)

// SavedJob は保存済み求人の一覧表示用ビューです。
type SavedJob struct {
	ID          string
	Title       string
	Location    string
	CompanyName string
	SavedAt     time.Time
}

// SavedResume は保存済み履歴書の一覧表示用ビューです。
type SavedResume struct {
	ID       string
	Title    string
	IsPublic bool
	SavedAt  time.Time
}

// Repository は保存済みアイテム永続化の抽象です。
type Repository interface {
	Exists(ctx context.Context, userID, itemID string, itemType ItemType) (bool, error)
	Create(ctx context.Context, userID, itemID string, itemType ItemType, savedAt time.Time) error
	Delete(ctx context.Context, userID, itemID string, itemType ItemType) error
	ListJobs(ctx context.Context, userID string) ([]*SavedJob, error)
	ListResumes(ctx context.Context, userID string) ([]*SavedResume, error)
}

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

// Service は保存済みアイテムに関するユースケースをまとめます。
// 求職者は求人を、採用担当者は履歴書を保存します。
type Service struct {
	repo  Repository
	clock Clock
	tx    TransactionManager
}

// UseCase は保存済みアイテムユースケースの公開インターフェースです。
type UseCase interface {
	Toggle(ctx context.Context, in ToggleInput) (bool, error)
	IsSaved(ctx context.Context, itemID string, itemType ItemType) (bool, error)
	ListSavedJobs(ctx context.Context) ([]*SavedJob, error)
	ListSavedResumes(ctx context.Context) ([]*SavedResume, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, clock Clock, tx TransactionManager) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{repo: repo, clock: clock, tx: tx}
}

// ToggleInput は保存切り替えの入力です。
type ToggleInput struct {
	ItemID string
	Type   ItemType
}

// Toggle はアイテムの保存状態を反転し、反転後に保存済みかどうかを返します。
func (s *Service) Toggle(ctx context.Context, in ToggleInput) (bool, error) {
	principal, err := identity.FromContext(ctx)
	if err != nil {
		return false, err
	}

	itemID := strings.TrimSpace(in.ItemID)
	if itemID == "" {
		return false, ErrInvalidID
	}
	if !isValidType(in.Type) {
		return false, ErrInvalidType
	}

	var nowSaved bool
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		exists, err := s.repo.Exists(txCtx, principal.UserID, itemID, in.Type)
		if err != nil {
			return err
		}
		if exists {
			return s.repo.Delete(txCtx, principal.UserID, itemID, in.Type)
		}
		nowSaved = true
		return s.repo.Create(txCtx, principal.UserID, itemID, in.Type, s.clock.Now())
	}); err != nil {
		return false, err
	}

	return nowSaved, nil
}

// IsSaved はアイテムが呼び出し元により保存済みかどうかを返します。
func (s *Service) IsSaved(ctx context.Context, itemID string, itemType ItemType) (bool, error) {
	principal, err := identity.FromContext(ctx)
	if err != nil {
		return false, err
	}

	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return false, ErrInvalidID
	}
	if !isValidType(itemType) {
		return false, ErrInvalidType
	}

	return s.repo.Exists(ctx, principal.UserID, itemID, itemType)
}

// ListSavedJobs は呼び出し元が保存した求人の一覧を返します。
func (s *Service) ListSavedJobs(ctx context.Context) ([]*SavedJob, error) {
	principal, err := identity.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListJobs(ctx, principal.UserID)
}

// ListSavedResumes は呼び出し元が保存した履歴書の一覧を返します。
func (s *Service) ListSavedResumes(ctx context.Context) ([]*SavedResume, error) {
	principal, err := identity.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListResumes(ctx, principal.UserID)
}

func isValidType(t ItemType) bool {
	switch t {
	case TypeJob, TypeResume:
		return true
	default:
		return false
	}
}
