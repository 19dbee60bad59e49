package job

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/workfound/workfound-server/internal/core/identity"
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

// MembershipChecker は会社メンバーシップの照会を行います。
type MembershipChecker interface {
	IsMember(ctx context.Context, companyID, userID string) (bool, error)
}

// AlertNotifier は公開された求人を購読中の求職者へ通知します。
// ベストエフォートであり、失敗しても求人操作は成功します。
type AlertNotifier interface {
	JobPublished(ctx context.Context, jobID, title, location string)
}

type nopAlertNotifier struct{}

func (nopAlertNotifier) JobPublished(context.Context, string, string, string) {}

const (
	defaultListPageSize = 20
	maxListPageSize     = 100
)

// Service は求人に関するユースケースをまとめます。
type Service struct {
	repo    Repository
	members MembershipChecker
	clock   Clock
	tx      TransactionManager
	alerts  AlertNotifier
}

// UseCase は求人ユースケースの公開インターフェースです。
type UseCase interface {
	CreateJob(ctx context.Context, in CreateJobInput) (*Job, error)
	GetJob(ctx context.Context, id string) (*Job, error)
	ListPublishedJobs(ctx context.Context, in ListJobsInput) (*ListJobsResult, error)
	ListCompanyJobs(ctx context.Context, companyID string) ([]*Job, error)
	SetJobStatus(ctx context.Context, in SetJobStatusInput) (*Job, error)
	RecordView(ctx context.Context, id string) error
}

// NewService は Service を生成します。
func NewService(repo Repository, members MembershipChecker, clock Clock, tx TransactionManager, alerts AlertNotifier) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	if alerts == nil {
		alerts = nopAlertNotifier{}
	}
	return &Service{repo: repo, members: members, clock: clock, tx: tx, alerts: alerts}
}

// QuestionInput は求人作成時のスクリーニング質問です。
type QuestionInput struct {
	Text           string
	ExpectedAnswer *string
	Disqualifying  bool
}

// CreateJobInput は求人作成時の入力です。
type CreateJobInput struct {
	CompanyID    string
	Title        string
	Description  string
	Location     string
	SalaryMin    *int64
	SalaryMax    *int64
	SalaryPeriod *SalaryPeriod
	Method       ApplicationMethod
	ContactInfo  *string
	Status       Status
	Questions    []QuestionInput
}

// SetJobStatusInput は求人の公開状態変更の入力です。
type SetJobStatusInput struct {
	ID     string
	Status Status
}

// ListJobsInput は公開求人の検索入力です。
type ListJobsInput struct {
	TitleQuery string
	PageSize   int
	PageToken  string
}

// ListJobsResult は検索結果です。
type ListJobsResult struct {
	Jobs          []*Job
	NextPageToken string
}

// CreateJob は求人と質問を 1 トランザクションで作成します。
// 呼び出し元は対象会社のメンバーでなければなりません。
func (s *Service) CreateJob(ctx context.Context, in CreateJobInput) (*Job, error) {
	principal, err := identity.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(in.CompanyID) == "" {
		return nil, ErrInvalidID
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ErrInvalidTitle
	}

	location := strings.TrimSpace(in.Location)
	if location == "" {
		return nil, ErrInvalidLocation
	}

	if !isValidMethod(in.Method) {
		return nil, ErrInvalidMethod
	}

	status := in.Status
	if status == "" {
		status = StatusPublished
	}
	if !isValidStatus(status) {
		return nil, ErrInvalidStatus
	}

	if in.SalaryMin != nil && in.SalaryMax != nil && *in.SalaryMin > *in.SalaryMax {
		return nil, ErrInvalidSalary
	}

	questions := make([]*Question, 0, len(in.Questions))
	for _, q := range in.Questions {
		text := strings.TrimSpace(q.Text)
		if text == "" {
			return nil, ErrInvalidQuestion
		}
		if q.ExpectedAnswer != nil {
			answer := strings.ToLower(strings.TrimSpace(*q.ExpectedAnswer))
			if answer != "yes" && answer != "no" {
				return nil, ErrInvalidQuestion
			}
			q.ExpectedAnswer = &answer
		}
		questions = append(questions, &Question{
			Text:           text,
			ExpectedAnswer: q.ExpectedAnswer,
			Disqualifying:  q.Disqualifying,
		})
	}

	var created *Job
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		ok, err := s.members.IsMember(txCtx, in.CompanyID, principal.UserID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotAuthorized
		}

		now := s.clock.Now()
		result, err := s.repo.Create(txCtx, &Job{
			CompanyID:    in.CompanyID,
			EmployerID:   principal.UserID,
			Title:        title,
			Description:  strings.TrimSpace(in.Description),
			Location:     location,
			SalaryMin:    in.SalaryMin,
			SalaryMax:    in.SalaryMax,
			SalaryPeriod: in.SalaryPeriod,
			Method:       in.Method,
			ContactInfo:  in.ContactInfo,
			Status:       status,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err != nil {
			return err
		}

		if len(questions) > 0 {
			saved, err := s.repo.CreateQuestions(txCtx, result.ID, questions)
			if err != nil {
				return err
			}
			result.Questions = saved
		}

		created = result
		return nil
	}); err != nil {
		return nil, err
	}

	if created.Status == StatusPublished {
		s.alerts.JobPublished(ctx, created.ID, created.Title, created.Location)
	}

	return created, nil
}

// GetJob は質問込みで求人を取得します。
func (s *Service) GetJob(ctx context.Context, id string) (*Job, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidID
	}

	found, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	questions, err := s.repo.ListQuestions(ctx, id)
	if err != nil {
		return nil, err
	}
	found.Questions = questions

	return found, nil
}

// ListPublishedJobs は公開中の求人を検索します。
// TOP プロモーション中の求人が先頭に並びます。
func (s *Service) ListPublishedJobs(ctx context.Context, in ListJobsInput) (*ListJobsResult, error) {
	limit := in.PageSize
	if limit <= 0 {
		limit = defaultListPageSize
	}
	if limit > maxListPageSize {
		return nil, ErrInvalidPageSize
	}

	offset := 0
	if strings.TrimSpace(in.PageToken) != "" {
		parsed, err := strconv.Atoi(in.PageToken)
		if err != nil || parsed < 0 {
			return nil, ErrInvalidPageToken
		}
		offset = parsed
	}

	jobs, nextToken, err := s.repo.ListPublished(ctx, ListJobsFilter{
		TitleQuery: strings.TrimSpace(in.TitleQuery),
		Limit:      limit,
		Offset:     offset,
		Now:        s.clock.Now(),
	})
	if err != nil {
		return nil, err
	}

	return &ListJobsResult{Jobs: jobs, NextPageToken: nextToken}, nil
}

// ListCompanyJobs は会社の求人一覧を取得します。メンバーのみ閲覧できます。
func (s *Service) ListCompanyJobs(ctx context.Context, companyID string) ([]*Job, error) {
	principal, err := identity.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(companyID) == "" {
		return nil, ErrInvalidID
	}

	ok, err := s.members.IsMember(ctx, companyID, principal.UserID)
	if err != nil {
		return nil, err
	}
	if !ok && !principal.IsAdmin() {
		return nil, ErrNotAuthorized
	}

	return s.repo.ListByCompany(ctx, companyID)
}

// SetJobStatus は求人の公開状態を変更します。
func (s *Service) SetJobStatus(ctx context.Context, in SetJobStatusInput) (*Job, error) {
	principal, err := identity.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(in.ID) == "" {
		return nil, ErrInvalidID
	}
	if !isValidStatus(in.Status) {
		return nil, ErrInvalidStatus
	}

	var (
		updated      *Job
		wasPublished bool
	)
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}

		ok, err := s.members.IsMember(txCtx, existing.CompanyID, principal.UserID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotAuthorized
		}

		wasPublished = existing.Status == StatusPublished
		existing.Status = in.Status
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

	if updated.Status == StatusPublished && !wasPublished {
		s.alerts.JobPublished(ctx, updated.ID, updated.Title, updated.Location)
	}

	return updated, nil
}

// RecordView は求人の閲覧数を加算します。認証不要です。
func (s *Service) RecordView(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrInvalidID
	}
	return s.repo.IncrementViews(ctx, id)
}

// ApplyPromotion は購入済みプランの効果を求人へ適用します。
// 残高の検証と支払いは wallet 側の購入トランザクション内で行われるため、
// この操作は単体では公開されません。
func (s *Service) ApplyPromotion(ctx context.Context, jobID string, planID string) error {
	if strings.TrimSpace(jobID) == "" {
		return ErrInvalidID
	}

	switch PromotionPlan(planID) {
	case PlanHighlight:
		return s.repo.SetPromotion(ctx, jobID, true, nil)
	case PlanTop7:
		until := s.clock.Now().Add(Top7Duration)
		return s.repo.SetPromotion(ctx, jobID, false, &until)
	default:
		return ErrInvalidPlan
	}
}

func isValidStatus(status Status) bool {
	switch status {
	case StatusDraft, StatusPublished, StatusClosed:
		return true
	default:
		return false
	}
}

func isValidMethod(method ApplicationMethod) bool {
	switch method {
	case MethodInternalATS, MethodPhone, MethodWhatsApp, MethodViber:
		return true
	default:
		return false
	}
}
