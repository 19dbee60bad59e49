package application

import "context"

// Repository は応募・回答・メモの永続化を行うインターフェースです。
// FindPostedJob / ListScreeningQuestions は同じストア上の求人テーブルを参照し、
// 提出トランザクション内で一貫したスナップショットを読むために同居しています。
type Repository interface {
	Create(ctx context.Context, app *Application) (*Application, error)
	CreateAnswers(ctx context.Context, applicationID string, answers []*Answer) error
	FindByID(ctx context.Context, id string) (*Application, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
	ListByCompany(ctx context.Context, companyID string) ([]*Application, error)
	ListBySeeker(ctx context.Context, seekerID string) ([]*Application, error)
	ListAnswers(ctx context.Context, applicationID string) ([]*Answer, error)

	FindPostedJob(ctx context.Context, jobID string) (*PostedJob, error)
	ListScreeningQuestions(ctx context.Context, jobID string) ([]*ScreeningQuestion, error)
	FindSeekerEmail(ctx context.Context, seekerID string) (string, error)

	CreateNote(ctx context.Context, note *Note) (*Note, error)
	FindNote(ctx context.Context, id string) (*Note, error)
	ListNotes(ctx context.Context, applicationID string) ([]*Note, error)
	DeleteNote(ctx context.Context, id string) error
}
