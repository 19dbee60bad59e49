package alert

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/workfound/workfound-server/internal/core/identity"
	"github.com/workfound/workfound-server/internal/core/notify"
)

var (
	ErrInvalidID     = errors.New("alert: invalid id")
	ErrEmptyFilter   = errors.New("alert: keywords or location is required")
	ErrAlertNotFound = errors.New("alert: not found")
	ErrNotAuthorized = errors.New("alert: not authorized")
)

// JobAlert は求職者の求人購読です。キーワードと勤務地の少なくとも
// 一方で新着求人を絞り込みます。空のフィールドは条件なしを意味します。
type JobAlert struct {
	ID        string
	UserID    string
	Keywords  string
	Location  string
	CreatedAt time.Time
}

// Subscription は通知送信用に購読者のメールアドレスを結合した購読です。
type Subscription struct {
	Alert JobAlert
	Email string
}

// Repository は求人購読永続化の抽象です。
type Repository interface {
	Create(ctx context.Context, alert *JobAlert) (*JobAlert, error)
	FindByID(ctx context.Context, id string) (*JobAlert, error)
	ListByUser(ctx context.Context, userID string) ([]*JobAlert, error)
	ListSubscriptions(ctx context.Context) ([]*Subscription, error)
	Delete(ctx context.Context, id string) error
}

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// Service は求人購読に関するユースケースをまとめます。
type Service struct {
	repo     Repository
	clock    Clock
	notifier notify.Notifier
}

// UseCase は求人購読ユースケースの公開インターフェースです。
type UseCase interface {
	CreateAlert(ctx context.Context, in CreateAlertInput) (*JobAlert, error)
	ListAlerts(ctx context.Context) ([]*JobAlert, error)
	DeleteAlert(ctx context.Context, id string) error
}

// NewService は Service を生成します。
func NewService(repo Repository, clock Clock, notifier notify.Notifier) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Service{repo: repo, clock: clock, notifier: notifier}
}

// CreateAlertInput は購読作成時の入力です。
type CreateAlertInput struct {
	Keywords string
	Location string
}

// CreateAlert は呼び出し元の求人購読を作成します。
// キーワードと勤務地のいずれかは必須です。
func (s *Service) CreateAlert(ctx context.Context, in CreateAlertInput) (*JobAlert, error) {
	principal, err := identity.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	keywords := strings.TrimSpace(in.Keywords)
	location := strings.TrimSpace(in.Location)
	if keywords == "" && location == "" {
		return nil, ErrEmptyFilter
	}

	return s.repo.Create(ctx, &JobAlert{
		UserID:    principal.UserID,
		Keywords:  keywords,
		Location:  location,
		CreatedAt: s.clock.Now(),
	})
}

// ListAlerts は呼び出し元の購読一覧を返します。
func (s *Service) ListAlerts(ctx context.Context) ([]*JobAlert, error) {
	principal, err := identity.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByUser(ctx, principal.UserID)
}

// DeleteAlert は購読を削除します。所有者のみ実行できます。
func (s *Service) DeleteAlert(ctx context.Context, id string) error {
	principal, err := identity.FromContext(ctx)
	if err != nil {
		return err
	}

	if strings.TrimSpace(id) == "" {
		return ErrInvalidID
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.UserID != principal.UserID {
		return ErrNotAuthorized
	}

	return s.repo.Delete(ctx, id)
}

// JobPublished は公開された求人に一致する購読者へメールを送ります。
// ベストエフォートであり、失敗しても求人の公開には影響しません。
func (s *Service) JobPublished(ctx context.Context, jobID, title, location string) {
	subscriptions, err := s.repo.ListSubscriptions(ctx)
	if err != nil {
		return
	}

	for _, sub := range subscriptions {
		if sub.Email == "" || !matches(sub.Alert, title, location) {
			continue
		}
		s.notifier.SendEmail(ctx, notify.Email{
			To:      sub.Email,
			Subject: "Workfound: новая вакансия по вашей подписке",
			Body:    fmt.Sprintf("По вашей подписке появилась новая вакансия: %q (%s).", title, location),
		})
	}
}

// matches は購読条件と求人を照合します。部分一致、大文字小文字は無視します。
func matches(a JobAlert, title, location string) bool {
	if a.Keywords == "" && a.Location == "" {
		return false
	}
	if a.Keywords != "" && !containsFold(title, a.Keywords) {
		return false
	}
	if a.Location != "" && !containsFold(location, a.Location) {
		return false
	}
	return true
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
