// Package http は JSON API のルーティングとミドルウェアを提供します。
package http

import (
	"net/http"

	"golang.org/x/time/rate"

	"github.com/workfound/workfound-server/internal/core/identity"
)

// RouterDependencies はルーター構築に必要なハンドラ群です。
type RouterDependencies struct {
	Users        *UserHandler
	Companies    *CompanyHandler
	Jobs         *JobHandler
	Applications *ApplicationHandler
	Wallets      *WalletHandler
	Resumes      *ResumeHandler
	Events       *EventHandler
	Messages     *MessageHandler
	Alerts       *AlertHandler
	Saved        *SavedHandler
	Uploads      *UploadHandler

	Verifier identity.TokenVerifier
	Limiter  *rate.Limiter
}

// NewRouter は全エンドポイントを配線した http.Handler を返します。
// 公開エンドポイント以外は Bearer トークン認証が必要です。
func NewRouter(deps RouterDependencies) http.Handler {
	auth := Authenticate(deps.Verifier)
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// 公開エンドポイント。
	mux.HandleFunc("GET /v1/jobs", deps.Jobs.ListPublished)
	mux.HandleFunc("GET /v1/jobs/{id}", deps.Jobs.Get)
	mux.HandleFunc("POST /v1/jobs/{id}/views", deps.Jobs.RecordView)
	mux.HandleFunc("GET /v1/companies/slug/{slug}", deps.Companies.GetBySlug)

	protected := func(h http.HandlerFunc) http.Handler {
		return auth(h)
	}

	// プロフィール。
	mux.Handle("GET /v1/me", protected(deps.Users.GetMe))
	mux.Handle("PATCH /v1/me", protected(deps.Users.UpdateMe))
	mux.Handle("GET /v1/users", protected(deps.Users.List))

	// 会社。
	mux.Handle("POST /v1/companies", protected(deps.Companies.Create))
	mux.Handle("GET /v1/companies/{id}", protected(deps.Companies.Get))
	mux.Handle("PATCH /v1/companies/{id}", protected(deps.Companies.Update))
	mux.Handle("POST /v1/companies/{id}/members", protected(deps.Companies.AddMember))
	mux.Handle("GET /v1/companies/{id}/members", protected(deps.Companies.ListMembers))

	// 求人。
	mux.Handle("POST /v1/jobs", protected(deps.Jobs.Create))
	mux.Handle("GET /v1/companies/{id}/jobs", protected(deps.Jobs.ListByCompany))
	mux.Handle("PATCH /v1/jobs/{id}/status", protected(deps.Jobs.SetStatus))

	// 応募。
	mux.Handle("POST /v1/applications", protected(deps.Applications.Submit))
	mux.Handle("GET /v1/applications/{id}", protected(deps.Applications.Get))
	mux.Handle("PATCH /v1/applications/{id}/status", protected(deps.Applications.SetStatus))
	mux.Handle("GET /v1/companies/{id}/applications", protected(deps.Applications.ListForCompany))
	mux.Handle("GET /v1/me/applications", protected(deps.Applications.ListMine))
	mux.Handle("POST /v1/applications/{id}/notes", protected(deps.Applications.AddNote))
	mux.Handle("GET /v1/applications/{id}/notes", protected(deps.Applications.ListNotes))
	mux.Handle("DELETE /v1/notes/{id}", protected(deps.Applications.DeleteNote))

	// ウォレット。
	mux.Handle("POST /v1/companies/{id}/wallet/deposits", protected(deps.Wallets.RecordDeposit))
	mux.Handle("GET /v1/companies/{id}/wallet", protected(deps.Wallets.GetBalance))
	mux.Handle("GET /v1/companies/{id}/wallet/transactions", protected(deps.Wallets.ListTransactions))
	mux.Handle("POST /v1/companies/{id}/wallet/purchases", protected(deps.Wallets.PurchasePromotion))

	// 履歴書。
	mux.Handle("POST /v1/resumes", protected(deps.Resumes.Create))
	mux.Handle("PATCH /v1/resumes/{id}", protected(deps.Resumes.Update))
	mux.Handle("GET /v1/resumes/{id}", protected(deps.Resumes.Get))
	mux.Handle("GET /v1/me/resumes", protected(deps.Resumes.ListMine))
	mux.Handle("GET /v1/resumes", protected(deps.Resumes.Search))

	// カレンダー。
	mux.Handle("POST /v1/events", protected(deps.Events.Create))
	mux.Handle("GET /v1/events", protected(deps.Events.List))
	mux.Handle("DELETE /v1/events/{id}", protected(deps.Events.Delete))

	// メッセージ。
	mux.Handle("POST /v1/conversations", protected(deps.Messages.Start))
	mux.Handle("GET /v1/conversations", protected(deps.Messages.ListConversations))
	mux.Handle("POST /v1/conversations/{id}/messages", protected(deps.Messages.Send))
	mux.Handle("GET /v1/conversations/{id}/messages", protected(deps.Messages.ListMessages))

	// 求人購読。
	mux.Handle("POST /v1/alerts", protected(deps.Alerts.Create))
	mux.Handle("GET /v1/alerts", protected(deps.Alerts.List))
	mux.Handle("DELETE /v1/alerts/{id}", protected(deps.Alerts.Delete))

	// 保存済みアイテム。
	mux.Handle("POST /v1/saved", protected(deps.Saved.Toggle))
	mux.Handle("GET /v1/saved/jobs", protected(deps.Saved.ListJobs))
	mux.Handle("GET /v1/saved/resumes", protected(deps.Saved.ListResumes))
	mux.Handle("GET /v1/saved/{id}", protected(deps.Saved.Check))

	// アップロード。
	mux.Handle("POST /v1/uploads", protected(deps.Uploads.Upload))

	return Chain(mux, RequestID, Logging, Recover, RateLimit(deps.Limiter))
}
