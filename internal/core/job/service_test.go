package job

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/workfound/workfound-server/internal/core/identity"
)

type stubClock struct {
	now time.Time
}

func (s *stubClock) Now() time.Time {
	return s.now
}

type fakeMembers struct {
	members map[string]string // userID -> companyID
}

func (f *fakeMembers) IsMember(_ context.Context, companyID, userID string) (bool, error) {
	return f.members[userID] == companyID, nil
}

type fakeRepo struct {
	jobs      map[string]*Job
	questions map[string][]*Question
	seq       int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		jobs:      make(map[string]*Job),
		questions: make(map[string][]*Question),
	}
}

func (r *fakeRepo) Create(_ context.Context, job *Job) (*Job, error) {
	r.seq++
	clone := *job
	clone.ID = fmt.Sprintf("job-%d", r.seq)
	r.jobs[clone.ID] = &clone
	result := clone
	return &result, nil
}

func (r *fakeRepo) Update(_ context.Context, job *Job) (*Job, error) {
	if _, ok := r.jobs[job.ID]; !ok {
		return nil, ErrJobNotFound
	}
	clone := *job
	r.jobs[job.ID] = &clone
	result := clone
	return &result, nil
}

func (r *fakeRepo) FindByID(_ context.Context, id string) (*Job, error) {
	found, ok := r.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	clone := *found
	return &clone, nil
}

func (r *fakeRepo) ListPublished(_ context.Context, filter ListJobsFilter) ([]*Job, string, error) {
	var matched []*Job
	for _, j := range r.jobs {
		if j.Status != StatusPublished {
			continue
		}
		if filter.TitleQuery != "" && !strings.Contains(strings.ToLower(j.Title), strings.ToLower(filter.TitleQuery)) {
			continue
		}
		clone := *j
		matched = append(matched, &clone)
	}

	sort.Slice(matched, func(i, k int) bool {
		pi, pk := matched[i].IsPromoted(filter.Now), matched[k].IsPromoted(filter.Now)
		if pi != pk {
			return pi
		}
		return matched[i].CreatedAt.After(matched[k].CreatedAt)
	})

	if filter.Offset >= len(matched) {
		return nil, "", nil
	}
	matched = matched[filter.Offset:]

	next := ""
	if len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
		next = strconv.Itoa(filter.Offset + filter.Limit)
	}
	return matched, next, nil
}

func (r *fakeRepo) ListByCompany(_ context.Context, companyID string) ([]*Job, error) {
	var out []*Job
	for _, j := range r.jobs {
		if j.CompanyID == companyID {
			clone := *j
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeRepo) IncrementViews(_ context.Context, id string) error {
	found, ok := r.jobs[id]
	if !ok {
		return ErrJobNotFound
	}
	found.Views++
	return nil
}

func (r *fakeRepo) CreateQuestions(_ context.Context, jobID string, questions []*Question) ([]*Question, error) {
	var saved []*Question
	for _, q := range questions {
		r.seq++
		clone := *q
		clone.ID = fmt.Sprintf("question-%d", r.seq)
		clone.JobID = jobID
		saved = append(saved, &clone)
	}
	r.questions[jobID] = saved
	return saved, nil
}

func (r *fakeRepo) ListQuestions(_ context.Context, jobID string) ([]*Question, error) {
	return r.questions[jobID], nil
}

func (r *fakeRepo) SetPromotion(_ context.Context, jobID string, highlight bool, promotedUntil *time.Time) error {
	found, ok := r.jobs[jobID]
	if !ok {
		return ErrJobNotFound
	}
	if highlight {
		found.IsHighlighted = true
	}
	found.PromotedUntil = promotedUntil
	return nil
}

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func employerCtx() context.Context {
	return identity.WithPrincipal(context.Background(), identity.Principal{UserID: "employer-1", Role: identity.RoleEmployer})
}

func newTestService(repo *fakeRepo) *Service {
	members := &fakeMembers{members: map[string]string{"employer-1": "company-1"}}
	return NewService(repo, members, &stubClock{now: testNow}, nil, nil)
}

type recordingAlerts struct {
	published []string // jobID
}

func (r *recordingAlerts) JobPublished(_ context.Context, jobID, _, _ string) {
	r.published = append(r.published, jobID)
}

func newTestServiceWithAlerts(repo *fakeRepo, alerts AlertNotifier) *Service {
	members := &fakeMembers{members: map[string]string{"employer-1": "company-1"}}
	return NewService(repo, members, &stubClock{now: testNow}, nil, alerts)
}

func strptr(s string) *string {
	return &s
}

func TestCreateJob_WithQuestions(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	svc := newTestService(repo)

	created, err := svc.CreateJob(employerCtx(), CreateJobInput{
		CompanyID:   "company-1",
		Title:       "Кассир",
		Description: "Работа в магазине",
		Location:    "Москва",
		Method:      MethodInternalATS,
		Questions: []QuestionInput{
			{Text: "Есть ли у вас опыт работы с кассой?", ExpectedAnswer: strptr(" Yes "), Disqualifying: true},
			{Text: "Готовы ли вы к сменному графику?"},
		},
	})
	if err != nil {
		t.Fatalf("CreateJob returned error: %v", err)
	}

	if created.Status != StatusPublished {
		t.Fatalf("expected default status published, got %s", created.Status)
	}
	if len(created.Questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(created.Questions))
	}
	if got := *created.Questions[0].ExpectedAnswer; got != "yes" {
		t.Fatalf("expected answer normalized to \"yes\", got %q", got)
	}
	if created.Questions[1].ExpectedAnswer != nil {
		t.Fatal("question without expected answer must stay nil")
	}
	if len(repo.questions[created.ID]) != 2 {
		t.Fatal("questions must be persisted together with the job")
	}
}

func TestCreateJob_InvalidExpectedAnswer(t *testing.T) {
	t.Parallel()

	svc := newTestService(newFakeRepo())

	for _, answer := range []string{"maybe", "да", "нет"} {
		_, err := svc.CreateJob(employerCtx(), CreateJobInput{
			CompanyID: "company-1",
			Title:     "Кассир",
			Location:  "Москва",
			Method:    MethodInternalATS,
			Questions: []QuestionInput{
				{Text: "Вопрос", ExpectedAnswer: strptr(answer), Disqualifying: true},
			},
		})
		if !errors.Is(err, ErrInvalidQuestion) {
			t.Fatalf("expected ErrInvalidQuestion for %q, got %v", answer, err)
		}
	}
}

func TestCreateJob_InvalidSalaryRange(t *testing.T) {
	t.Parallel()

	svc := newTestService(newFakeRepo())

	minSalary := int64(5000)
	maxSalary := int64(1000)
	_, err := svc.CreateJob(employerCtx(), CreateJobInput{
		CompanyID: "company-1",
		Title:     "Кассир",
		Location:  "Москва",
		Method:    MethodInternalATS,
		SalaryMin: &minSalary,
		SalaryMax: &maxSalary,
	})
	if !errors.Is(err, ErrInvalidSalary) {
		t.Fatalf("expected ErrInvalidSalary, got %v", err)
	}
}

func TestCreateJob_NotMember(t *testing.T) {
	t.Parallel()

	svc := newTestService(newFakeRepo())

	_, err := svc.CreateJob(employerCtx(), CreateJobInput{
		CompanyID: "company-2",
		Title:     "Кассир",
		Location:  "Москва",
		Method:    MethodInternalATS,
	})
	if !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
}

func TestListPublishedJobs_PromotedFirst(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := employerCtx()

	for i := 0; i < 3; i++ {
		if _, err := svc.CreateJob(ctx, CreateJobInput{
			CompanyID: "company-1",
			Title:     fmt.Sprintf("Вакансия %d", i),
			Location:  "Москва",
			Method:    MethodInternalATS,
		}); err != nil {
			t.Fatalf("CreateJob returned error: %v", err)
		}
	}

	until := testNow.Add(Top7Duration)
	if err := repo.SetPromotion(ctx, "job-2", false, &until); err != nil {
		t.Fatalf("SetPromotion returned error: %v", err)
	}

	result, err := svc.ListPublishedJobs(ctx, ListJobsInput{})
	if err != nil {
		t.Fatalf("ListPublishedJobs returned error: %v", err)
	}

	if len(result.Jobs) != 3 {
		t.Fatalf("expected 3 jobs, got %d", len(result.Jobs))
	}
	if result.Jobs[0].ID != "job-2" {
		t.Fatalf("expected promoted job first, got %s", result.Jobs[0].ID)
	}
}

func TestListPublishedJobs_ExpiredPromotionIgnored(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := employerCtx()

	first, err := svc.CreateJob(ctx, CreateJobInput{
		CompanyID: "company-1", Title: "Старая", Location: "Москва", Method: MethodInternalATS,
	})
	if err != nil {
		t.Fatalf("CreateJob returned error: %v", err)
	}
	if _, err := svc.CreateJob(ctx, CreateJobInput{
		CompanyID: "company-1", Title: "Новая", Location: "Москва", Method: MethodInternalATS,
	}); err != nil {
		t.Fatalf("CreateJob returned error: %v", err)
	}

	// 期限切れの TOP 表示は優先されません。
	expired := testNow.Add(-time.Hour)
	if err := repo.SetPromotion(ctx, first.ID, false, &expired); err != nil {
		t.Fatalf("SetPromotion returned error: %v", err)
	}
	repo.jobs[first.ID].CreatedAt = testNow.Add(-24 * time.Hour)

	result, err := svc.ListPublishedJobs(ctx, ListJobsInput{})
	if err != nil {
		t.Fatalf("ListPublishedJobs returned error: %v", err)
	}

	if result.Jobs[0].ID == first.ID {
		t.Fatal("expired promotion must not float the job to the top")
	}
}

func TestListPublishedJobs_InvalidPageToken(t *testing.T) {
	t.Parallel()

	svc := newTestService(newFakeRepo())

	if _, err := svc.ListPublishedJobs(context.Background(), ListJobsInput{PageToken: "abc"}); !errors.Is(err, ErrInvalidPageToken) {
		t.Fatalf("expected ErrInvalidPageToken, got %v", err)
	}
	if _, err := svc.ListPublishedJobs(context.Background(), ListJobsInput{PageSize: maxListPageSize + 1}); !errors.Is(err, ErrInvalidPageSize) {
		t.Fatalf("expected ErrInvalidPageSize, got %v", err)
	}
}

func TestSetJobStatus_ClosesJob(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := employerCtx()

	created, err := svc.CreateJob(ctx, CreateJobInput{
		CompanyID: "company-1", Title: "Кассир", Location: "Москва", Method: MethodInternalATS,
	})
	if err != nil {
		t.Fatalf("CreateJob returned error: %v", err)
	}

	updated, err := svc.SetJobStatus(ctx, SetJobStatusInput{ID: created.ID, Status: StatusClosed})
	if err != nil {
		t.Fatalf("SetJobStatus returned error: %v", err)
	}

	if updated.Status != StatusClosed {
		t.Fatalf("expected status closed, got %s", updated.Status)
	}

	result, err := svc.ListPublishedJobs(ctx, ListJobsInput{})
	if err != nil {
		t.Fatalf("ListPublishedJobs returned error: %v", err)
	}
	if len(result.Jobs) != 0 {
		t.Fatalf("closed job must not be listed, got %d jobs", len(result.Jobs))
	}
}

func TestCreateJob_PublishedJobReachesSubscribers(t *testing.T) {
	t.Parallel()

	alerts := &recordingAlerts{}
	svc := newTestServiceWithAlerts(newFakeRepo(), alerts)
	ctx := employerCtx()

	created, err := svc.CreateJob(ctx, CreateJobInput{
		CompanyID: "company-1", Title: "Кассир", Location: "Москва", Method: MethodInternalATS,
	})
	if err != nil {
		t.Fatalf("CreateJob returned error: %v", err)
	}

	if len(alerts.published) != 1 || alerts.published[0] != created.ID {
		t.Fatalf("expected one publish notification for %s, got %v", created.ID, alerts.published)
	}

	if _, err := svc.CreateJob(ctx, CreateJobInput{
		CompanyID: "company-1", Title: "Повар", Location: "Москва", Method: MethodInternalATS, Status: StatusDraft,
	}); err != nil {
		t.Fatalf("CreateJob returned error: %v", err)
	}

	if len(alerts.published) != 1 {
		t.Fatalf("draft job must not notify subscribers, got %v", alerts.published)
	}
}

func TestSetJobStatus_NotifiesOnPublish(t *testing.T) {
	t.Parallel()

	alerts := &recordingAlerts{}
	svc := newTestServiceWithAlerts(newFakeRepo(), alerts)
	ctx := employerCtx()

	created, err := svc.CreateJob(ctx, CreateJobInput{
		CompanyID: "company-1", Title: "Кассир", Location: "Москва", Method: MethodInternalATS, Status: StatusDraft,
	})
	if err != nil {
		t.Fatalf("CreateJob returned error: %v", err)
	}
	if len(alerts.published) != 0 {
		t.Fatalf("draft creation must not notify, got %v", alerts.published)
	}

	if _, err := svc.SetJobStatus(ctx, SetJobStatusInput{ID: created.ID, Status: StatusPublished}); err != nil {
		t.Fatalf("SetJobStatus returned error: %v", err)
	}
	if len(alerts.published) != 1 {
		t.Fatalf("expected one notification after publish, got %v", alerts.published)
	}

	if _, err := svc.SetJobStatus(ctx, SetJobStatusInput{ID: created.ID, Status: StatusPublished}); err != nil {
		t.Fatalf("SetJobStatus returned error: %v", err)
	}
	if len(alerts.published) != 1 {
		t.Fatalf("re-publishing an already published job must not notify again, got %v", alerts.published)
	}
}

func TestApplyPromotion_Top7SetsDeadline(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	svc := newTestService(repo)

	created, err := svc.CreateJob(employerCtx(), CreateJobInput{
		CompanyID: "company-1", Title: "Кассир", Location: "Москва", Method: MethodInternalATS,
	})
	if err != nil {
		t.Fatalf("CreateJob returned error: %v", err)
	}

	if err := svc.ApplyPromotion(context.Background(), created.ID, "top_7"); err != nil {
		t.Fatalf("ApplyPromotion returned error: %v", err)
	}

	stored := repo.jobs[created.ID]
	if stored.PromotedUntil == nil {
		t.Fatal("expected promoted_until to be set")
	}
	if want := testNow.Add(Top7Duration); !stored.PromotedUntil.Equal(want) {
		t.Fatalf("expected promoted_until %v, got %v", want, *stored.PromotedUntil)
	}
	if stored.IsHighlighted {
		t.Fatal("top_7 must not set the highlight flag")
	}
}

func TestApplyPromotion_HighlightIsPermanent(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	svc := newTestService(repo)

	created, err := svc.CreateJob(employerCtx(), CreateJobInput{
		CompanyID: "company-1", Title: "Кассир", Location: "Москва", Method: MethodInternalATS,
	})
	if err != nil {
		t.Fatalf("CreateJob returned error: %v", err)
	}

	if err := svc.ApplyPromotion(context.Background(), created.ID, "highlight"); err != nil {
		t.Fatalf("ApplyPromotion returned error: %v", err)
	}

	stored := repo.jobs[created.ID]
	if !stored.IsHighlighted {
		t.Fatal("expected highlight flag to be set")
	}
	if stored.PromotedUntil != nil {
		t.Fatal("highlight must not set a deadline")
	}
}

func TestApplyPromotion_UnknownPlan(t *testing.T) {
	t.Parallel()

	svc := newTestService(newFakeRepo())

	if err := svc.ApplyPromotion(context.Background(), "job-1", "top_30"); !errors.Is(err, ErrInvalidPlan) {
		t.Fatalf("expected ErrInvalidPlan, got %v", err)
	}
}

func TestRecordView_Increments(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	svc := newTestService(repo)

	created, err := svc.CreateJob(employerCtx(), CreateJobInput{
		CompanyID: "company-1", Title: "Кассир", Location: "Москва", Method: MethodInternalATS,
	})
	if err != nil {
		t.Fatalf("CreateJob returned error: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := svc.RecordView(context.Background(), created.ID); err != nil {
			t.Fatalf("RecordView returned error: %v", err)
		}
	}

	if repo.jobs[created.ID].Views != 3 {
		t.Fatalf("expected 3 views, got %d", repo.jobs[created.ID].Views)
	}
}
