package company

import (
	"context"
	"errors"
	"fmt"
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

type recordingNotifier struct {
	emails []notify.Email
}

func (r *recordingNotifier) SendEmail(_ context.Context, email notify.Email) {
	r.emails = append(r.emails, email)
}

type fakeRepo struct {
	companies map[string]*Company
	members   map[string]*Member // key: companyID + "/" + userID
	seq       int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		companies: make(map[string]*Company),
		members:   make(map[string]*Member),
	}
}

func memberKey(companyID, userID string) string {
	return companyID + "/" + userID
}

func (r *fakeRepo) Create(_ context.Context, company *Company) (*Company, error) {
	r.seq++
	clone := *company
	clone.ID = fmt.Sprintf("company-%d", r.seq)
	r.companies[clone.ID] = &clone
	result := clone
	return &result, nil
}

func (r *fakeRepo) Update(_ context.Context, company *Company) (*Company, error) {
	if _, ok := r.companies[company.ID]; !ok {
		return nil, ErrCompanyNotFound
	}
	clone := *company
	r.companies[company.ID] = &clone
	result := clone
	return &result, nil
}

func (r *fakeRepo) FindByID(_ context.Context, id string) (*Company, error) {
	found, ok := r.companies[id]
	if !ok {
		return nil, ErrCompanyNotFound
	}
	clone := *found
	return &clone, nil
}

func (r *fakeRepo) FindBySlug(_ context.Context, slug string) (*Company, error) {
	for _, c := range r.companies {
		if c.Slug == slug {
			clone := *c
			return &clone, nil
		}
	}
	return nil, ErrCompanyNotFound
}

func (r *fakeRepo) AddMember(_ context.Context, member *Member) (*Member, error) {
	r.seq++
	clone := *member
	clone.ID = fmt.Sprintf("member-%d", r.seq)
	r.members[memberKey(member.CompanyID, member.UserID)] = &clone
	result := clone
	return &result, nil
}

func (r *fakeRepo) ListMembers(_ context.Context, companyID string) ([]*Member, error) {
	var out []*Member
	for _, m := range r.members {
		if m.CompanyID == companyID {
			clone := *m
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeRepo) FindMember(_ context.Context, companyID, userID string) (*Member, error) {
	found, ok := r.members[memberKey(companyID, userID)]
	if !ok {
		return nil, ErrMemberNotFound
	}
	clone := *found
	return &clone, nil
}

func (r *fakeRepo) FindMembershipByUser(_ context.Context, userID string) (*Member, error) {
	for _, m := range r.members {
		if m.UserID == userID {
			clone := *m
			return &clone, nil
		}
	}
	return nil, ErrMemberNotFound
}

func employerCtx(userID string) context.Context {
	return identity.WithPrincipal(context.Background(), identity.Principal{UserID: userID, Role: identity.RoleEmployer})
}

func newTestService(repo *fakeRepo, notifier notify.Notifier) *Service {
	return NewService(repo, &stubClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}, nil, notifier)
}

func TestCreateCompany_RegistersOwner(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	svc := newTestService(repo, nil)

	created, err := svc.CreateCompany(employerCtx("employer-1"), CreateCompanyInput{
		Name: "Магнит Плюс",
		Slug: "Magnit Plus",
	})
	if err != nil {
		t.Fatalf("CreateCompany returned error: %v", err)
	}

	if created.Slug != "magnit-plus" {
		t.Fatalf("expected normalized slug magnit-plus, got %q", created.Slug)
	}

	member, err := repo.FindMember(context.Background(), created.ID, "employer-1")
	if err != nil {
		t.Fatalf("owner membership not found: %v", err)
	}
	if member.Role != MemberRoleOwner {
		t.Fatalf("expected role owner, got %s", member.Role)
	}
}

func TestCreateCompany_SlugTaken(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	svc := newTestService(repo, nil)

	if _, err := svc.CreateCompany(employerCtx("employer-1"), CreateCompanyInput{Name: "Acme", Slug: "acme"}); err != nil {
		t.Fatalf("CreateCompany returned error: %v", err)
	}

	if _, err := svc.CreateCompany(employerCtx("employer-2"), CreateCompanyInput{Name: "Other", Slug: "acme"}); !errors.Is(err, ErrSlugAlreadyExists) {
		t.Fatalf("expected ErrSlugAlreadyExists, got %v", err)
	}
}

func TestCreateCompany_InvalidSlug(t *testing.T) {
	t.Parallel()

	svc := newTestService(newFakeRepo(), nil)

	if _, err := svc.CreateCompany(employerCtx("employer-1"), CreateCompanyInput{Name: "Acme", Slug: "-bad!"}); !errors.Is(err, ErrInvalidSlug) {
		t.Fatalf("expected ErrInvalidSlug, got %v", err)
	}
}

func TestUpdateCompany_MemberOnly(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	svc := newTestService(repo, nil)

	created, err := svc.CreateCompany(employerCtx("employer-1"), CreateCompanyInput{Name: "Acme", Slug: "acme"})
	if err != nil {
		t.Fatalf("CreateCompany returned error: %v", err)
	}

	name := "Acme Corp"
	if _, err := svc.UpdateCompany(employerCtx("stranger"), UpdateCompanyInput{ID: created.ID, Name: &name}); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}

	updated, err := svc.UpdateCompany(employerCtx("employer-1"), UpdateCompanyInput{ID: created.ID, Name: &name})
	if err != nil {
		t.Fatalf("UpdateCompany returned error: %v", err)
	}
	if updated.Name != "Acme Corp" {
		t.Fatalf("expected updated name, got %q", updated.Name)
	}
}

func TestAddMember_OwnerInvites(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	notifier := &recordingNotifier{}
	svc := newTestService(repo, notifier)

	created, err := svc.CreateCompany(employerCtx("employer-1"), CreateCompanyInput{Name: "Acme", Slug: "acme"})
	if err != nil {
		t.Fatalf("CreateCompany returned error: %v", err)
	}

	added, err := svc.AddMember(employerCtx("employer-1"), AddMemberInput{
		CompanyID: created.ID,
		UserID:    "recruiter-1",
		Email:     "recruiter@example.com",
		Role:      MemberRoleRecruiter,
	})
	if err != nil {
		t.Fatalf("AddMember returned error: %v", err)
	}

	if added.Role != MemberRoleRecruiter {
		t.Fatalf("expected role recruiter, got %s", added.Role)
	}
	if len(notifier.emails) != 1 {
		t.Fatalf("expected 1 invite email, got %d", len(notifier.emails))
	}
	if notifier.emails[0].To != "recruiter@example.com" {
		t.Fatalf("unexpected email recipient: %s", notifier.emails[0].To)
	}
}

func TestAddMember_RecruiterCannotInvite(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	svc := newTestService(repo, nil)

	created, err := svc.CreateCompany(employerCtx("employer-1"), CreateCompanyInput{Name: "Acme", Slug: "acme"})
	if err != nil {
		t.Fatalf("CreateCompany returned error: %v", err)
	}
	if _, err := svc.AddMember(employerCtx("employer-1"), AddMemberInput{
		CompanyID: created.ID, UserID: "recruiter-1", Role: MemberRoleRecruiter,
	}); err != nil {
		t.Fatalf("AddMember returned error: %v", err)
	}

	_, err = svc.AddMember(employerCtx("recruiter-1"), AddMemberInput{
		CompanyID: created.ID, UserID: "recruiter-2", Role: MemberRoleRecruiter,
	})
	if !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
}

func TestAddMember_AlreadyMember(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	svc := newTestService(repo, nil)

	created, err := svc.CreateCompany(employerCtx("employer-1"), CreateCompanyInput{Name: "Acme", Slug: "acme"})
	if err != nil {
		t.Fatalf("CreateCompany returned error: %v", err)
	}

	_, err = svc.AddMember(employerCtx("employer-1"), AddMemberInput{
		CompanyID: created.ID, UserID: "employer-1", Role: MemberRoleAdmin,
	})
	if !errors.Is(err, ErrAlreadyMember) {
		t.Fatalf("expected ErrAlreadyMember, got %v", err)
	}
}

func TestIsMember(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	svc := newTestService(repo, nil)

	created, err := svc.CreateCompany(employerCtx("employer-1"), CreateCompanyInput{Name: "Acme", Slug: "acme"})
	if err != nil {
		t.Fatalf("CreateCompany returned error: %v", err)
	}

	ok, err := svc.IsMember(context.Background(), created.ID, "employer-1")
	if err != nil {
		t.Fatalf("IsMember returned error: %v", err)
	}
	if !ok {
		t.Fatal("expected owner to be a member")
	}

	ok, err = svc.IsMember(context.Background(), created.ID, "stranger")
	if err != nil {
		t.Fatalf("IsMember returned error: %v", err)
	}
	if ok {
		t.Fatal("expected stranger not to be a member")
	}
}
