package saved

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/workfound/workfound-server/internal/core/identity"
)

type savedKey struct {
	userID string
	itemID string
	t      ItemType
}

type fakeRepo struct {
	items   map[savedKey]time.Time
	jobs    map[string]*SavedJob
	resumes map[string]*SavedResume
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		items:   map[savedKey]time.Time{},
		jobs:    map[string]*SavedJob{},
		resumes: map[string]*SavedResume{},
	}
}

func (f *fakeRepo) Exists(_ context.Context, userID, itemID string, itemType ItemType) (bool, error) {
	_, ok := f.items[savedKey{userID, itemID, itemType}]
	return ok, nil
}

func (f *fakeRepo) Create(_ context.Context, userID, itemID string, itemType ItemType, savedAt time.Time) error {
	f.items[savedKey{userID, itemID, itemType}] = savedAt
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, userID, itemID string, itemType ItemType) error {
	delete(f.items, savedKey{userID, itemID, itemType})
	return nil
}

func (f *fakeRepo) ListJobs(_ context.Context, userID string) ([]*SavedJob, error) {
	var out []*SavedJob
	for key, savedAt := range f.items {
		if key.userID != userID || key.t != TypeJob {
			continue
		}
		if j, ok := f.jobs[key.itemID]; ok {
			copied := *j
			copied.SavedAt = savedAt
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListResumes(_ context.Context, userID string) ([]*SavedResume, error) {
	var out []*SavedResume
	for key, savedAt := range f.items {
		if key.userID != userID || key.t != TypeResume {
			continue
		}
		if r, ok := f.resumes[key.itemID]; ok {
			copied := *r
			copied.SavedAt = savedAt
			out = append(out, &copied)
		}
	}
	return out, nil
}

type stubClock struct {
	now time.Time
}

func (s stubClock) Now() time.Time {
	return s.now
}

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func seekerContext(userID string) context.Context {
	return identity.WithPrincipal(context.Background(), identity.Principal{UserID: userID, Role: identity.RoleSeeker})
}

func employerContext(userID string) context.Context {
	return identity.WithPrincipal(context.Background(), identity.Principal{UserID: userID, Role: identity.RoleEmployer})
}

func TestToggle_SaveThenRemove(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	svc := NewService(repo, stubClock{now: testNow}, nil)

	saved, err := svc.Toggle(seekerContext("seeker-1"), ToggleInput{ItemID: "job-1", Type: TypeJob})
	if err != nil {
		t.Fatalf("Toggle returned error: %v", err)
	}
	if !saved {
		t.Fatal("expected first toggle to save the item")
	}

	saved, err = svc.Toggle(seekerContext("seeker-1"), ToggleInput{ItemID: "job-1", Type: TypeJob})
	if err != nil {
		t.Fatalf("Toggle returned error: %v", err)
	}
	if saved {
		t.Fatal("expected second toggle to remove the item")
	}

	exists, err := svc.IsSaved(seekerContext("seeker-1"), "job-1", TypeJob)
	if err != nil {
		t.Fatalf("IsSaved returned error: %v", err)
	}
	if exists {
		t.Fatal("expected item to be removed after second toggle")
	}
}

func TestToggle_InvalidType(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeRepo(), stubClock{now: testNow}, nil)

	_, err := svc.Toggle(seekerContext("seeker-1"), ToggleInput{ItemID: "job-1", Type: "company"})
	if !errors.Is(err, ErrInvalidType) {
		t.Fatalf("expected ErrInvalidType, got %v", err)
	}
}

func TestToggle_EmptyItemID(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeRepo(), stubClock{now: testNow}, nil)

	_, err := svc.Toggle(seekerContext("seeker-1"), ToggleInput{ItemID: "   ", Type: TypeJob})
	if !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}

func TestToggle_ScopedPerUser(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	svc := NewService(repo, stubClock{now: testNow}, nil)

	if _, err := svc.Toggle(seekerContext("seeker-1"), ToggleInput{ItemID: "job-1", Type: TypeJob}); err != nil {
		t.Fatalf("Toggle returned error: %v", err)
	}

	exists, err := svc.IsSaved(seekerContext("seeker-2"), "job-1", TypeJob)
	if err != nil {
		t.Fatalf("IsSaved returned error: %v", err)
	}
	if exists {
		t.Fatal("saved item must not leak to another user")
	}
}

func TestListSavedJobs_ReturnsOnlyJobs(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	repo.jobs["job-1"] = &SavedJob{ID: "job-1", Title: "Кассир", Location: "Москва", CompanyName: "Магнит Плюс"}
	repo.resumes["resume-1"] = &SavedResume{ID: "resume-1", Title: "Водитель", IsPublic: true}

	svc := NewService(repo, stubClock{now: testNow}, nil)
	ctx := seekerContext("seeker-1")

	if _, err := svc.Toggle(ctx, ToggleInput{ItemID: "job-1", Type: TypeJob}); err != nil {
		t.Fatalf("Toggle returned error: %v", err)
	}
	if _, err := svc.Toggle(ctx, ToggleInput{ItemID: "resume-1", Type: TypeResume}); err != nil {
		t.Fatalf("Toggle returned error: %v", err)
	}

	jobs, err := svc.ListSavedJobs(ctx)
	if err != nil {
		t.Fatalf("ListSavedJobs returned error: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected 1 saved job, got %d", len(jobs))
	}
	if jobs[0].Title != "Кассир" {
		t.Errorf("unexpected saved job: %+v", jobs[0])
	}
	if !jobs[0].SavedAt.Equal(testNow) {
		t.Errorf("unexpected saved at: %v", jobs[0].SavedAt)
	}
}

func TestListSavedResumes_EmployerFlow(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	repo.resumes["resume-1"] = &SavedResume{ID: "resume-1", Title: "Повар", IsPublic: true}

	svc := NewService(repo, stubClock{now: testNow}, nil)
	ctx := employerContext("employer-1")

	if _, err := svc.Toggle(ctx, ToggleInput{ItemID: "resume-1", Type: TypeResume}); err != nil {
		t.Fatalf("Toggle returned error: %v", err)
	}

	resumes, err := svc.ListSavedResumes(ctx)
	if err != nil {
		t.Fatalf("ListSavedResumes returned error: %v", err)
	}
	if len(resumes) != 1 {
		t.Fatalf("expected 1 saved resume, got %d", len(resumes))
	}
	if resumes[0].Title != "Повар" {
		t.Errorf("unexpected saved resume: %+v", resumes[0])
	}
}
