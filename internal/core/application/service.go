package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/workfound/workfound-server/internal/core/identity"
	"github.com/workfound/workfound-server/internal/core/notify"
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

// Service は応募に関するユースケースをまとめます。
type Service struct {
	repo     Repository
	members  MembershipChecker
	clock    Clock
	tx       TransactionManager
	notifier notify.Notifier
}

// UseCase は応募ユースケースの公開インターフェースです。
type UseCase interface {
	SubmitApplication(ctx context.Context, in SubmitApplicationInput) (*Application, error)
	SetStatus(ctx context.Context, in SetStatusInput) (*Application, error)
	GetApplication(ctx context.Context, id string) (*Application, error)
	ListForCompany(ctx context.Context, companyID string) ([]*Application, error)
	ListForSeeker(ctx context.Context) ([]*Application, error)
	AddNote(ctx context.Context, in AddNoteInput) (*Note, error)
	ListNotes(ctx context.Context, applicationID string) ([]*Note, error)
	DeleteNote(ctx context.Context, noteID string) error
}

// NewService は Service を生成します。
func NewService(repo Repository, members MembershipChecker, clock Clock, tx TransactionManager, notifier notify.Notifier) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Service{repo: repo, members: members, clock: clock, tx: tx, notifier: notifier}
}

// AnswerInput はスクリーニング質問への回答入力です。
type AnswerInput struct {
	QuestionID string
	Text       string
}

// SubmitApplicationInput は応募提出時の入力です。
type SubmitApplicationInput struct {
	JobID       string
	ResumeID    *string
	ResumeURL   *string
	CoverLetter *string
	Answers     []AnswerInput
}

// SetStatusInput は選考段階変更の入力です。
type SetStatusInput struct {
	ApplicationID string
	Status        Status
}

// AddNoteInput は社内メモ追加の入力です。
type AddNoteInput struct {
	ApplicationID string
	Content       string
}

// SubmitApplication は応募を受け付け、初期状態を決定します。
//
// 求人の不適格質問 (期待回答付き) のいずれかで回答が一致しない場合、
// 初期状態は rejected、そうでなければ new になります。
// 応募行と回答行は 1 トランザクションで書き込まれます。
func (s *Service) SubmitApplication(ctx context.Context, in SubmitApplicationInput) (*Application, error) {
	principal, err := identity.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	// 応募できるのは求職者のみです。
	if principal.Role != identity.RoleSeeker {
		return nil, ErrNotAuthorized
	}

	if strings.TrimSpace(in.JobID) == "" {
		return nil, ErrInvalidID
	}

	answers := make([]*Answer, 0, len(in.Answers))
	for _, a := range in.Answers {
		if strings.TrimSpace(a.QuestionID) == "" {
			return nil, ErrInvalidAnswer
		}
		answers = append(answers, &Answer{
			QuestionID: a.QuestionID,
			Text:       strings.TrimSpace(a.Text),
		})
	}

	var submitted *Application
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		posted, err := s.repo.FindPostedJob(txCtx, in.JobID)
		if err != nil {
			return err
		}
		if !posted.Published || !posted.AcceptsATS {
			return ErrJobNotOpen
		}

		questions, err := s.repo.ListScreeningQuestions(txCtx, in.JobID)
		if err != nil {
			return err
		}

		status := screen(questions, answers)

		created, err := s.repo.Create(txCtx, &Application{
			JobID:       in.JobID,
			SeekerID:    principal.UserID,
			Status:      status,
			ResumeID:    in.ResumeID,
			ResumeURL:   in.ResumeURL,
			CoverLetter: in.CoverLetter,
			CreatedAt:   s.clock.Now(),
		})
		if err != nil {
			return err
		}

		if len(answers) > 0 {
			if err := s.repo.CreateAnswers(txCtx, created.ID, answers); err != nil {
				return err
			}
			created.Answers = answers
		}

		submitted = created
		return nil
	}); err != nil {
		return nil, err
	}

	return submitted, nil
}

// screen は初期状態を決定します。不適格質問は読み込み順に評価し、
// 最初の不一致で打ち切ります。回答が無い場合も不一致として扱います。
func screen(questions []*ScreeningQuestion, answers []*Answer) Status {
	for _, q := range questions {
		if !q.Disqualifying || q.ExpectedAnswer == nil {
			continue
		}

		var given string
		for _, a := range answers {
			if a.QuestionID == q.ID {
				given = a.Text
				break
			}
		}

		if !strings.EqualFold(strings.TrimSpace(given), *q.ExpectedAnswer) {
			return StatusRejected
		}
	}
	return StatusNew
}

// SetStatus は応募の選考段階を変更します。
//
// 遷移表による制限は設けず、どの段階からどの段階へも移動できます
// (rejected からの復帰を含む)。最後に成功した変更が残ります。
// 求人を所有する会社のメンバーのみ実行できます。
func (s *Service) SetStatus(ctx context.Context, in SetStatusInput) (*Application, error) {
	principal, err := identity.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(in.ApplicationID) == "" {
		return nil, ErrInvalidID
	}
	if !IsValidStatus(in.Status) {
		return nil, ErrInvalidStatus
	}

	var (
		updated  *Application
		jobTitle string
	)
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, in.ApplicationID)
		if err != nil {
			return err
		}

		posted, err := s.repo.FindPostedJob(txCtx, existing.JobID)
		if err != nil {
			return err
		}

		ok, err := s.members.IsMember(txCtx, posted.CompanyID, principal.UserID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotAuthorized
		}

		if err := s.repo.UpdateStatus(txCtx, existing.ID, in.Status); err != nil {
			return err
		}

		existing.Status = in.Status
		updated = existing
		jobTitle = posted.Title
		return nil
	}); err != nil {
		return nil, err
	}

	s.notifyStatusChange(ctx, updated, jobTitle)

	return updated, nil
}

// notifyStatusChange は求職者へ選考状況の変化を通知します。ベストエフォートです。
func (s *Service) notifyStatusChange(ctx context.Context, app *Application, jobTitle string) {
	email, err := s.repo.FindSeekerEmail(ctx, app.SeekerID)
	if err != nil || email == "" {
		return
	}

	s.notifier.SendEmail(ctx, notify.Email{
		To:      email,
		Subject: "Workfound: статус вашего отклика изменился",
		Body:    fmt.Sprintf("Статус отклика на вакансию %q: %s.", jobTitle, app.Status),
	})
}

// GetApplication は応募を取得します。応募者本人か求人側メンバーのみ閲覧できます。
func (s *Service) GetApplication(ctx context.Context, id string) (*Application, error) {
	principal, err := identity.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidID
	}

	found, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if found.SeekerID != principal.UserID {
		if err := s.requireCompanyMember(ctx, found.JobID, principal); err != nil {
			return nil, err
		}
	}

	answers, err := s.repo.ListAnswers(ctx, id)
	if err != nil {
		return nil, err
	}
	found.Answers = answers

	return found, nil
}

// ListForCompany は会社宛ての応募一覧を返します。カンバンボードのデータ源です。
func (s *Service) ListForCompany(ctx context.Context, companyID string) ([]*Application, error) {
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
	if !ok {
		return nil, ErrNotAuthorized
	}

	return s.repo.ListByCompany(ctx, companyID)
}

// ListForSeeker は呼び出し元求職者自身の応募一覧を返します。
func (s *Service) ListForSeeker(ctx context.Context) ([]*Application, error) {
	principal, err := identity.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListBySeeker(ctx, principal.UserID)
}

// AddNote は応募へ社内メモを追加します。求人側メンバーのみ実行できます。
func (s *Service) AddNote(ctx context.Context, in AddNoteInput) (*Note, error) {
	principal, err := identity.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, ErrInvalidNote
	}

	existing, err := s.repo.FindByID(ctx, in.ApplicationID)
	if err != nil {
		return nil, err
	}

	if err := s.requireCompanyMember(ctx, existing.JobID, principal); err != nil {
		return nil, err
	}

	return s.repo.CreateNote(ctx, &Note{
		ApplicationID: existing.ID,
		AuthorID:      principal.UserID,
		Content:       content,
		CreatedAt:     s.clock.Now(),
	})
}

// ListNotes は応募の社内メモ一覧を返します。求人側メンバーのみ閲覧できます。
func (s *Service) ListNotes(ctx context.Context, applicationID string) ([]*Note, error) {
	principal, err := identity.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	if err := s.requireCompanyMember(ctx, existing.JobID, principal); err != nil {
		return nil, err
	}

	return s.repo.ListNotes(ctx, applicationID)
}

// DeleteNote は社内メモを削除します。求人側メンバーのみ実行できます。
func (s *Service) DeleteNote(ctx context.Context, noteID string) error {
	principal, err := identity.FromContext(ctx)
	if err != nil {
		return err
	}

	if strings.TrimSpace(noteID) == "" {
		return ErrInvalidID
	}

	note, err := s.repo.FindNote(ctx, noteID)
	if err != nil {
		return err
	}

	existing, err := s.repo.FindByID(ctx, note.ApplicationID)
	if err != nil {
		return err
	}

	if err := s.requireCompanyMember(ctx, existing.JobID, principal); err != nil {
		return err
	}

	return s.repo.DeleteNote(ctx, noteID)
}

func (s *Service) requireCompanyMember(ctx context.Context, jobID string, principal identity.Principal) error {
	posted, err := s.repo.FindPostedJob(ctx, jobID)
	if err != nil {
		return err
	}

	ok, err := s.members.IsMember(ctx, posted.CompanyID, principal.UserID)
	if err != nil {
		return err
	}
	if !ok && !principal.IsAdmin() {
		return ErrNotAuthorized
	}
	return nil
}
