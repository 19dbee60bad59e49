package event

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/workfound/workfound-server/internal/core/identity"
)

type fakeRepo struct {
	events map[string]*Event
	seq    int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{events: map[string]*Event{}}
}

func (f *fakeRepo) Create(_ context.Context, e *Event) (*Event, error) {
	f.seq++
	stored := *e
	stored.ID = fmt.Sprintf("event-%d", f.seq)
	f.events[stored.ID] = &stored
	copied := stored
	return &copied, nil
}

func (f *fakeRepo) FindByID(_ context.Context, id string) (*Event, error) {
	found, ok := f.events[id]
	if !ok {
		return nil, ErrEventNotFound
	}
	copied := *found
	return &copied, nil
}

func (f *fakeRepo) ListByEmployer(_ context.Context, employerID string, from, to time.Time) ([]*Event, error) {
	var out []*Event
	for _, e := range f.events {
		if e.EmployerID != employerID {
			continue
		}
		if !from.IsZero() && e.StartTime.Before(from) {
			continue
		}
		if !to.IsZero() && e.StartTime.After(to) {
			continue
		}
		copied := *e
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.events[id]; !ok {
		return ErrEventNotFound
	}
	delete(f.events, id)
	return nil
}

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func employerContext(userID string) context.Context {
	return identity.WithPrincipal(context.Background(), identity.Principal{UserID: userID, Role: identity.RoleEmployer})
}

func TestCreateEvent_Succeeds(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	svc := NewService(repo)

	created, err := svc.CreateEvent(employerContext("employer-1"), CreateEventInput{
		Title:     "Собеседование с кандидатом",
		StartTime: testNow,
		EndTime:   testNow.Add(time.Hour),
		Type:      TypeInterview,
	})
	if err != nil {
		t.Fatalf("CreateEvent error: %v", err)
	}
	if created.EmployerID != "employer-1" {
		t.Fatalf("expected owner employer-1, got %s", created.EmployerID)
	}
}

func TestCreateEvent_Validation(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeRepo())
	ctx := employerContext("employer-1")

	base := CreateEventInput{
		Title:     "Звонок",
		StartTime: testNow,
		EndTime:   testNow.Add(30 * time.Minute),
		Type:      TypeCall,
	}

	in := base
	in.Title = "  "
	if _, err := svc.CreateEvent(ctx, in); !errors.Is(err, ErrInvalidTitle) {
		t.Fatalf("expected ErrInvalidTitle, got %v", err)
	}

	in = base
	in.Type = "meeting"
	if _, err := svc.CreateEvent(ctx, in); !errors.Is(err, ErrInvalidType) {
		t.Fatalf("expected ErrInvalidType, got %v", err)
	}

	in = base
	in.EndTime = in.StartTime
	if _, err := svc.CreateEvent(ctx, in); !errors.Is(err, ErrInvalidTimeRange) {
		t.Fatalf("expected ErrInvalidTimeRange, got %v", err)
	}
}

func TestListEvents_FiltersByRange(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := employerContext("employer-1")

	for i := 0; i < 3; i++ {
		start := testNow.AddDate(0, 0, i)
		if _, err := svc.CreateEvent(ctx, CreateEventInput{
			Title:     "Задача",
			StartTime: start,
			EndTime:   start.Add(time.Hour),
			Type:      TypeTask,
		}); err != nil {
			t.Fatalf("CreateEvent error: %v", err)
		}
	}

	events, err := svc.ListEvents(ctx, ListEventsInput{
		From: testNow.AddDate(0, 0, 1),
		To:   testNow.AddDate(0, 0, 1).Add(2 * time.Hour),
	})
	if err != nil {
		t.Fatalf("ListEvents error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event in range, got %d", len(events))
	}
}

func TestDeleteEvent_OwnerOnly(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	svc := NewService(repo)

	created, err := svc.CreateEvent(employerContext("employer-1"), CreateEventInput{
		Title:     "Собеседование",
		StartTime: testNow,
		EndTime:   testNow.Add(time.Hour),
		Type:      TypeInterview,
	})
	if err != nil {
		t.Fatalf("CreateEvent error: %v", err)
	}

	if err := svc.DeleteEvent(employerContext("employer-2"), created.ID); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized for stranger, got %v", err)
	}

	if err := svc.DeleteEvent(employerContext("employer-1"), created.ID); err != nil {
		t.Fatalf("DeleteEvent error: %v", err)
	}

	if err := svc.DeleteEvent(employerContext("employer-1"), created.ID); !errors.Is(err, ErrEventNotFound) {
		t.Fatalf("expected ErrEventNotFound after delete, got %v", err)
	}
}
