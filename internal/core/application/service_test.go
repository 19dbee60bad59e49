package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/workfound/workfound-server/internal/core/identity"
	"github.com/workfound/workfound-server/internal/core/notify"
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

type recordingNotifier struct {
	mu     sync.Mutex
	emails []notify.Email
}

func (r *recordingNotifier) SendEmail(_ context.Context, email notify.Email) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.emails = append(r.emails, email)
}

type fakeRepo struct {
	apps      map[string]*Application
	answers   map[string][]*Answer
	notes     map[string]*Note
	jobs      map[string]*PostedJob
	questions map[string][]*ScreeningQuestion
	emails    map[string]string
	seq       int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		apps:      make(map[string]*Application),
		answers:   make(map[string][]*Answer),
		notes:     make(map[string]*Note),
		jobs:      make(map[string]*PostedJob),
		questions: make(map[string][]*ScreeningQuestion),
		emails:    make(map[string]string),
	}
}

func (r *fakeRepo) Create(_ context.Context, app *Application) (*Application, error) {
	r.seq++
	clone := *app
	clone.ID = fmt.Sprintf("app-%d", r.seq)
	r.apps[clone.ID] = &clone
	result := clone
	return &result, nil
}

func (r *fakeRepo) CreateAnswers(_ context.Context, applicationID string, answers []*Answer) error {
	r.answers[applicationID] = answers
	return nil
}

func (r *fakeRepo) FindByID(_ context.Context, id string) (*Application, error) {
	app, ok := r.apps[id]
	if !ok {
		return nil, ErrApplicationNotFound
	}
	clone := *app
	return &clone, nil
}

func (r *fakeRepo) UpdateStatus(_ context.Context, id string, status Status) error {
	app, ok := r.apps[id]
	if !ok {
		return ErrApplicationNotFound
	}
	app.Status = status
	return nil
}

func (r *fakeRepo) ListByCompany(_ context.Context, companyID string) ([]*Application, error) {
	var out []*Application
	for _, app := range r.apps {
		if job, ok := r.jobs[app.JobID]; ok && job.CompanyID == companyID {
			clone := *app
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListBySeeker(_ context.Context, seekerID string) ([]*Application, error) {
	var out []*Application
	for _, app := range r.apps {
		if app.SeekerID == seekerID {
			clone := *app
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListAnswers(_ context.Context, applicationID string) ([]*Answer, error) {
	return r.answers[applicationID], nil
}

func (r *fakeRepo) FindPostedJob(_ context.Context, jobID string) (*PostedJob, error) {
	job, ok := r.jobs[jobID]
	if !ok {
		return nil, ErrJobNotFound
	}
	return job, nil
}

func (r *fakeRepo) ListScreeningQuestions(_ context.Context, jobID string) ([]*ScreeningQuestion, error) {
	return r.questions[jobID], nil
}

func (r *fakeRepo) FindSeekerEmail(_ context.Context, seekerID string) (string, error) {
	return r.emails[seekerID], nil
}

func (r *fakeRepo) CreateNote(_ context.Context, note *Note) (*Note, error) {
	r.seq++
	clone := *note
	clone.ID = fmt.Sprintf("note-%d", r.seq)
	r.notes[clone.ID] = &clone
	result := clone
	return &result, nil
}

func (r *fakeRepo) FindNote(_ context.Context, id string) (*Note, error) {
	note, ok := r.notes[id]
	if !ok {
		return nil, ErrNoteNotFound
	}
	clone := *note
	return &clone, nil
}

func (r *fakeRepo) ListNotes(_ context.Context, applicationID string) ([]*Note, error) {
	var out []*Note
	for _, note := range r.notes {
		if note.ApplicationID == applicationID {
			clone := *note
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeRepo) DeleteNote(_ context.Context, id string) error {
	if _, ok := r.notes[id]; !ok {
		return ErrNoteNotFound
	}
	delete(r.notes, id)
	return nil
}

func yes() *string {
	v := "yes"
	return &v
}

func seekerCtx(userID string) context.Context {
	return identity.WithPrincipal(context.Background(), identity.Principal{UserID: userID, Role: identity.RoleSeeker})
}

func employerCtx(userID string) context.Context {
	return identity.WithPrincipal(context.Background(), identity.Principal{UserID: userID, Role: identity.RoleEmployer})
}

func newTestService(repo *fakeRepo, members *fakeMembers, notifier notify.Notifier) *Service {
	return NewService(repo, members, &stubClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}, nil, notifier)
}

func seedJob(repo *fakeRepo) {
	repo.jobs["job-1"] = &PostedJob{ID: "job-1", CompanyID: "company-1", Title: "Строитель", Published: true, AcceptsATS: true}
}

func TestSubmitApplication_DisqualifyingMismatchRejects(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	seedJob(repo)
	repo.questions["job-1"] = []*ScreeningQuestion{
		{ID: "q-1", Text: "Есть ли у вас опыт?", ExpectedAnswer: yes(), Disqualifying: true},
	}

	svc := newTestService(repo, &fakeMembers{}, nil)

	app, err := svc.SubmitApplication(seekerCtx("seeker-1"), SubmitApplicationInput{
		JobID:   "job-1",
		Answers: []AnswerInput{{QuestionID: "q-1", Text: "no"}},
	})
	if err != nil {
		t.Fatalf("SubmitApplication returned error: %v", err)
	}

	if app.Status != StatusRejected {
		t.Fatalf("expected status rejected, got %s", app.Status)
	}
}

func TestSubmitApplication_MatchingAnswersAcceptedAsNew(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	seedJob(repo)
	repo.questions["job-1"] = []*ScreeningQuestion{
		{ID: "q-1", ExpectedAnswer: yes(), Disqualifying: true},
		{ID: "q-2", ExpectedAnswer: yes(), Disqualifying: true},
	}

	svc := newTestService(repo, &fakeMembers{}, nil)

	app, err := svc.SubmitApplication(seekerCtx("seeker-1"), SubmitApplicationInput{
		JobID: "job-1",
		Answers: []AnswerInput{
			{QuestionID: "q-1", Text: "yes"},
			{QuestionID: "q-2", Text: "Yes"},
		},
	})
	if err != nil {
		t.Fatalf("SubmitApplication returned error: %v", err)
	}

	if app.Status != StatusNew {
		t.Fatalf("expected status new, got %s", app.Status)
	}
}

func TestSubmitApplication_EmployerRoleNotAllowed(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	seedJob(repo)

	svc := newTestService(repo, &fakeMembers{}, nil)

	_, err := svc.SubmitApplication(employerCtx("employer-1"), SubmitApplicationInput{JobID: "job-1"})
	if !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized for employer principal, got %v", err)
	}
	if len(repo.apps) != 0 {
		t.Fatalf("expected no application to be stored, got %d", len(repo.apps))
	}
}

func TestSubmitApplication_NoQuestionsYieldsNew(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	seedJob(repo)

	svc := newTestService(repo, &fakeMembers{}, nil)

	app, err := svc.SubmitApplication(seekerCtx("seeker-1"), SubmitApplicationInput{JobID: "job-1"})
	if err != nil {
		t.Fatalf("SubmitApplication returned error: %v", err)
	}

	if app.Status != StatusNew {
		t.Fatalf("expected status new, got %s", app.Status)
	}
}

func TestSubmitApplication_NonDisqualifyingMismatchIgnored(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	seedJob(repo)
	repo.questions["job-1"] = []*ScreeningQuestion{
		{ID: "q-1", ExpectedAnswer: yes(), Disqualifying: false},
	}

	svc := newTestService(repo, &fakeMembers{}, nil)

	app, err := svc.SubmitApplication(seekerCtx("seeker-1"), SubmitApplicationInput{
		JobID:   "job-1",
		Answers: []AnswerInput{{QuestionID: "q-1", Text: "no"}},
	})
	if err != nil {
		t.Fatalf("SubmitApplication returned error: %v", err)
	}

	if app.Status != StatusNew {
		t.Fatalf("expected status new for non-disqualifying mismatch, got %s", app.Status)
	}
}

func TestSubmitApplication_MissingAnswerRejects(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	seedJob(repo)
	repo.questions["job-1"] = []*ScreeningQuestion{
		{ID: "q-1", ExpectedAnswer: yes(), Disqualifying: true},
	}

	svc := newTestService(repo, &fakeMembers{}, nil)

	app, err := svc.SubmitApplication(seekerCtx("seeker-1"), SubmitApplicationInput{JobID: "job-1"})
	if err != nil {
		t.Fatalf("SubmitApplication returned error: %v", err)
	}

	if app.Status != StatusRejected {
		t.Fatalf("expected missing answer to reject, got %s", app.Status)
	}
}

func TestSubmitApplication_Unauthenticated(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	seedJob(repo)

	svc := newTestService(repo, &fakeMembers{}, nil)

	if _, err := svc.SubmitApplication(context.Background(), SubmitApplicationInput{JobID: "job-1"}); !errors.Is(err, identity.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestSubmitApplication_JobNotOpen(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	repo.jobs["job-closed"] = &PostedJob{ID: "job-closed", CompanyID: "company-1", Published: false, AcceptsATS: true}
	repo.jobs["job-phone"] = &PostedJob{ID: "job-phone", CompanyID: "company-1", Published: true, AcceptsATS: false}

	svc := newTestService(repo, &fakeMembers{}, nil)

	for _, jobID := range []string{"job-closed", "job-phone"} {
		if _, err := svc.SubmitApplication(seekerCtx("seeker-1"), SubmitApplicationInput{JobID: jobID}); !errors.Is(err, ErrJobNotOpen) {
			t.Fatalf("expected ErrJobNotOpen for %s, got %v", jobID, err)
		}
	}
}

func TestSubmitApplication_PersistsAnswers(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	seedJob(repo)

	svc := newTestService(repo, &fakeMembers{}, nil)

	app, err := svc.SubmitApplication(seekerCtx("seeker-1"), SubmitApplicationInput{
		JobID: "job-1",
		Answers: []AnswerInput{
			{QuestionID: "q-1", Text: " yes "},
			{QuestionID: "q-2", Text: "no"},
		},
	})
	if err != nil {
		t.Fatalf("SubmitApplication returned error: %v", err)
	}

	saved := repo.answers[app.ID]
	if len(saved) != 2 {
		t.Fatalf("expected 2 answers persisted, got %d", len(saved))
	}
	if saved[0].Text != "yes" {
		t.Fatalf("expected trimmed answer, got %q", saved[0].Text)
	}
}

func TestSetStatus_LastWriteWins(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	seedJob(repo)
	repo.apps["app-1"] = &Application{ID: "app-1", JobID: "job-1", SeekerID: "seeker-1", Status: StatusNew}

	members := &fakeMembers{members: map[string]string{"employer-1": "company-1"}}
	svc := newTestService(repo, members, nil)

	ctx := employerCtx("employer-1")

	// rejected からの復帰を含め、遷移表の制限は無い。
	sequence := []Status{StatusViewed, StatusRejected, StatusInterview, StatusOffer}
	for _, status := range sequence {
		if _, err := svc.SetStatus(ctx, SetStatusInput{ApplicationID: "app-1", Status: status}); err != nil {
			t.Fatalf("SetStatus(%s) returned error: %v", status, err)
		}
	}

	if repo.apps["app-1"].Status != StatusOffer {
		t.Fatalf("expected final status offer, got %s", repo.apps["app-1"].Status)
	}
}

func TestSetStatus_InvalidStatus(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	svc := newTestService(repo, &fakeMembers{}, nil)

	if _, err := svc.SetStatus(employerCtx("employer-1"), SetStatusInput{ApplicationID: "app-1", Status: "archived"}); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestSetStatus_NotMember(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	seedJob(repo)
	repo.apps["app-1"] = &Application{ID: "app-1", JobID: "job-1", SeekerID: "seeker-1", Status: StatusNew}

	svc := newTestService(repo, &fakeMembers{members: map[string]string{"employer-1": "other-company"}}, nil)

	if _, err := svc.SetStatus(employerCtx("employer-1"), SetStatusInput{ApplicationID: "app-1", Status: StatusViewed}); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}

	if repo.apps["app-1"].Status != StatusNew {
		t.Fatalf("status must not change on authorization failure, got %s", repo.apps["app-1"].Status)
	}
}

func TestSetStatus_NotFound(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	svc := newTestService(repo, &fakeMembers{}, nil)

	if _, err := svc.SetStatus(employerCtx("employer-1"), SetStatusInput{ApplicationID: "missing", Status: StatusViewed}); !errors.Is(err, ErrApplicationNotFound) {
		t.Fatalf("expected ErrApplicationNotFound, got %v", err)
	}
}

func TestSetStatus_NotifiesSeeker(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	seedJob(repo)
	repo.apps["app-1"] = &Application{ID: "app-1", JobID: "job-1", SeekerID: "seeker-1", Status: StatusNew}
	repo.emails["seeker-1"] = "seeker@example.com"

	members := &fakeMembers{members: map[string]string{"employer-1": "company-1"}}
	notifier := &recordingNotifier{}
	svc := newTestService(repo, members, notifier)

	if _, err := svc.SetStatus(employerCtx("employer-1"), SetStatusInput{ApplicationID: "app-1", Status: StatusInterview}); err != nil {
		t.Fatalf("SetStatus returned error: %v", err)
	}

	if len(notifier.emails) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifier.emails))
	}
	if notifier.emails[0].To != "seeker@example.com" {
		t.Fatalf("unexpected recipient: %s", notifier.emails[0].To)
	}
}

func TestAddNote_RequiresCompanyMember(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	seedJob(repo)
	repo.apps["app-1"] = &Application{ID: "app-1", JobID: "job-1", SeekerID: "seeker-1", Status: StatusNew}

	svc := newTestService(repo, &fakeMembers{}, nil)

	if _, err := svc.AddNote(employerCtx("outsider"), AddNoteInput{ApplicationID: "app-1", Content: "note"}); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
}

func TestDeleteNote_RemovesNote(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	seedJob(repo)
	repo.apps["app-1"] = &Application{ID: "app-1", JobID: "job-1", SeekerID: "seeker-1", Status: StatusNew}
	repo.notes["note-1"] = &Note{ID: "note-1", ApplicationID: "app-1", AuthorID: "employer-1", Content: "call later"}

	members := &fakeMembers{members: map[string]string{"employer-1": "company-1"}}
	svc := newTestService(repo, members, nil)

	if err := svc.DeleteNote(employerCtx("employer-1"), "note-1"); err != nil {
		t.Fatalf("DeleteNote returned error: %v", err)
	}

	if _, ok := repo.notes["note-1"]; ok {
		t.Fatal("expected note to be deleted")
	}
}
