package job

import (
	"context"
	"time"
)

// Repository は求人と質問の永続化を行うインターフェースです。
type Repository interface {
	Create(ctx context.Context, job *Job) (*Job, error)
	Update(ctx context.Context, job *Job) (*Job, error)
	FindByID(ctx context.Context, id string) (*Job, error)
	ListPublished(ctx context.Context, filter ListJobsFilter) ([]*Job, string, error)
	ListByCompany(ctx context.Context, companyID string) ([]*Job, error)
	IncrementViews(ctx context.Context, id string) error

	CreateQuestions(ctx context.Context, jobID string, questions []*Question) ([]*Question, error)
	ListQuestions(ctx context.Context, jobID string) ([]*Question, error)

	// SetPromotion はプロモーション効果を求人へ適用します。
	// highlight は恒久フラグ、promotedUntil は TOP 表示の期限です。
	SetPromotion(ctx context.Context, jobID string, highlight bool, promotedUntil *time.Time) error
}

// ListJobsFilter は公開求人の検索条件です。
// TitleQuery はタイトルの部分一致検索に使用します。
type ListJobsFilter struct {
	TitleQuery string
	Limit      int
	Offset     int
	Now        time.Time
}
