package event

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/workfound/workfound-server/internal/core/identity"
)

var (
	ErrInvalidID        = errors.New("event: invalid id")
	ErrInvalidTitle     = errors.New("event: invalid title")
	ErrInvalidType      = errors.New("event: invalid event type")
	ErrInvalidTimeRange = errors.New("event: end time must be after start time")
	ErrEventNotFound    = errors.New("event: not found")
	ErrNotAuthorized    = errors.New("event: not authorized")
)

// Type はカレンダー予定の種別を表します。
type Type string

const (
	TypeInterview Type = "interview"
	TypeCall      Type = "call"
	TypeTask      Type = "task"
)

// Event は採用担当者のカレンダー予定です。
// ApplicationID を指定すると応募に紐づき、CandidateName に応募者名が入ります。
type Event struct {
	ID            string
	EmployerID    string
	ApplicationID *string
	Title         string
	Description   *string
	StartTime     time.Time
	EndTime       time.Time
	Type          Type
	CandidateName *string
}

// Repository はカレンダー予定永続化の抽象です。
type Repository interface {
	Create(ctx context.Context, event *Event) (*Event, error)
	FindByID(ctx context.Context, id string) (*Event, error)
	ListByEmployer(ctx context.Context, employerID string, from, to time.Time) ([]*Event, error)
	Delete(ctx context.Context, id string) error
}

// Service はカレンダー予定に関するユースケースをまとめます。
type Service struct {
	repo Repository
}

// UseCase はカレンダーユースケースの公開インターフェースです。
type UseCase interface {
	CreateEvent(ctx context.Context, in CreateEventInput) (*Event, error)
	ListEvents(ctx context.Context, in ListEventsInput) ([]*Event, error)
	DeleteEvent(ctx context.Context, id string) error
}

// NewService は Service を生成します。
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateEventInput は予定作成時の入力です。
type CreateEventInput struct {
	ApplicationID *string
	Title         string
	Description   *string
	StartTime     time.Time
	EndTime       time.Time
	Type          Type
}

// ListEventsInput は予定一覧取得の入力です。範囲未指定は全期間です。
type ListEventsInput struct {
	From time.Time
	To   time.Time
}

// CreateEvent は呼び出し元採用担当者の予定を作成します。
func (s *Service) CreateEvent(ctx context.Context, in CreateEventInput) (*Event, error) {
	principal, err := identity.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ErrInvalidTitle
	}
	if !isValidType(in.Type) {
		return nil, ErrInvalidType
	}
	if !in.EndTime.After(in.StartTime) {
		return nil, ErrInvalidTimeRange
	}

	return s.repo.Create(ctx, &Event{
		EmployerID:    principal.UserID,
		ApplicationID: in.ApplicationID,
		Title:         title,
		Description:   in.Description,
		StartTime:     in.StartTime,
		EndTime:       in.EndTime,
		Type:          in.Type,
	})
}

// ListEvents は呼び出し元の予定一覧を開始時刻順に返します。
func (s *Service) ListEvents(ctx context.Context, in ListEventsInput) ([]*Event, error) {
	principal, err := identity.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByEmployer(ctx, principal.UserID, in.From, in.To)
}

// DeleteEvent は予定を削除します。所有者のみ実行できます。
func (s *Service) DeleteEvent(ctx context.Context, id string) error {
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
	if existing.EmployerID != principal.UserID {
		return ErrNotAuthorized
	}

	return s.repo.Delete(ctx, id)
}

func isValidType(t Type) bool {
	switch t {
	case TypeInterview, TypeCall, TypeTask:
		return true
	default:
		return false
	}
}
