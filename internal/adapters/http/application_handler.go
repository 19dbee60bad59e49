package http

import (
	"net/http"
	"time"

	"github.com/workfound/workfound-server/internal/core/application"
)

// ApplicationHandler は応募関連のエンドポイントを提供します。
type ApplicationHandler struct {
	applications application.UseCase
}

// NewApplicationHandler は ApplicationHandler を生成します。
func NewApplicationHandler(applications application.UseCase) *ApplicationHandler {
	return &ApplicationHandler{applications: applications}
}

type answerResponse struct {
	QuestionID string `json:"question_id"`
	Text       string `json:"text"`
}

type applicationResponse struct {
	ID          string           `json:"id"`
	JobID       string           `json:"job_id"`
	SeekerID    string           `json:"seeker_id"`
	Status      string           `json:"status"`
	ResumeID    *string          `json:"resume_id,omitempty"`
	ResumeURL   *string          `json:"resume_url,omitempty"`
	CoverLetter *string          `json:"cover_letter,omitempty"`
	Answers     []answerResponse `json:"answers,omitempty"`
	CreatedAt   string           `json:"created_at"`
}

func toApplicationResponse(app *application.Application) applicationResponse {
	resp := applicationResponse{
		ID:          app.ID,
		JobID:       app.JobID,
		SeekerID:    app.SeekerID,
		Status:      string(app.Status),
		ResumeID:    app.ResumeID,
		ResumeURL:   app.ResumeURL,
		CoverLetter: app.CoverLetter,
		CreatedAt:   app.CreatedAt.Format(time.RFC3339),
	}
	for _, a := range app.Answers {
		resp.Answers = append(resp.Answers, answerResponse{QuestionID: a.QuestionID, Text: a.Text})
	}
	return resp
}

type answerRequest struct {
	QuestionID string `json:"question_id"`
	Text       string `json:"text"`
}

type submitApplicationRequest struct {
	JobID       string          `json:"job_id"`
	ResumeID    *string         `json:"resume_id"`
	ResumeURL   *string         `json:"resume_url"`
	CoverLetter *string         `json:"cover_letter"`
	Answers     []answerRequest `json:"answers"`
}

// Submit は応募を受け付けます。
func (h *ApplicationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitApplicationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	in := application.SubmitApplicationInput{
		JobID:       req.JobID,
		ResumeID:    req.ResumeID,
		ResumeURL:   req.ResumeURL,
		CoverLetter: req.CoverLetter,
	}
	for _, a := range req.Answers {
		in.Answers = append(in.Answers, application.AnswerInput{QuestionID: a.QuestionID, Text: a.Text})
	}

	submitted, err := h.applications.SubmitApplication(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toApplicationResponse(submitted))
}

// Get は応募を返します。
func (h *ApplicationHandler) Get(w http.ResponseWriter, r *http.Request) {
	found, err := h.applications.GetApplication(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toApplicationResponse(found))
}

type setStatusRequest struct {
	Status string `json:"status"`
}

// SetStatus は応募の選考段階を変更します。
func (h *ApplicationHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req setStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	updated, err := h.applications.SetStatus(r.Context(), application.SetStatusInput{
		ApplicationID: r.PathValue("id"),
		Status:        application.Status(req.Status),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toApplicationResponse(updated))
}

// ListForCompany は会社宛ての応募一覧を返します。
func (h *ApplicationHandler) ListForCompany(w http.ResponseWriter, r *http.Request) {
	apps, err := h.applications.ListForCompany(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]applicationResponse, 0, len(apps))
	for _, app := range apps {
		resp = append(resp, toApplicationResponse(app))
	}

	writeJSON(w, http.StatusOK, resp)
}

// ListMine は呼び出し元求職者の応募一覧を返します。
func (h *ApplicationHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	apps, err := h.applications.ListForSeeker(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]applicationResponse, 0, len(apps))
	for _, app := range apps {
		resp = append(resp, toApplicationResponse(app))
	}

	writeJSON(w, http.StatusOK, resp)
}

type noteResponse struct {
	ID            string `json:"id"`
	ApplicationID string `json:"application_id"`
	AuthorID      string `json:"author_id"`
	Content       string `json:"content"`
	CreatedAt     string `json:"created_at"`
}

func toNoteResponse(n *application.Note) noteResponse {
	return noteResponse{
		ID:            n.ID,
		ApplicationID: n.ApplicationID,
		AuthorID:      n.AuthorID,
		Content:       n.Content,
		CreatedAt:     n.CreatedAt.Format(time.RFC3339),
	}
}

type addNoteRequest struct {
	Content string `json:"content"`
}

// AddNote は応募へ社内メモを追加します。
func (h *ApplicationHandler) AddNote(w http.ResponseWriter, r *http.Request) {
	var req addNoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	added, err := h.applications.AddNote(r.Context(), application.AddNoteInput{
		ApplicationID: r.PathValue("id"),
		Content:       req.Content,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toNoteResponse(added))
}

// ListNotes は応募の社内メモ一覧を返します。
func (h *ApplicationHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.applications.ListNotes(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]noteResponse, 0, len(notes))
	for _, n := range notes {
		resp = append(resp, toNoteResponse(n))
	}

	writeJSON(w, http.StatusOK, resp)
}

// DeleteNote は社内メモを削除します。
func (h *ApplicationHandler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	if err := h.applications.DeleteNote(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
