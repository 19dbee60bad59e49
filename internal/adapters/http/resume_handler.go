package http

import (
	"net/http"
	"time"

	"github.com/workfound/workfound-server/internal/core/resume"
)

// ResumeHandler は履歴書関連のエンドポイントを提供します。
type ResumeHandler struct {
	resumes resume.UseCase
}

// NewResumeHandler は ResumeHandler を生成します。
func NewResumeHandler(resumes resume.UseCase) *ResumeHandler {
	return &ResumeHandler{resumes: resumes}
}

type resumeResponse struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	Title      string `json:"title"`
	About      string `json:"about"`
	Skills     string `json:"skills"`
	Experience string `json:"experience"`
	IsPublic   bool   `json:"is_public"`
	UpdatedAt  string `json:"updated_at"`
}

func toResumeResponse(res *resume.Resume) resumeResponse {
	return resumeResponse{
		ID:         res.ID,
		UserID:     res.UserID,
		Title:      res.Title,
		About:      res.About,
		Skills:     res.Skills,
		Experience: res.Experience,
		IsPublic:   res.IsPublic,
		UpdatedAt:  res.UpdatedAt.Format(time.RFC3339),
	}
}

type createResumeRequest struct {
	Title      string `json:"title"`
	About      string `json:"about"`
	Skills     string `json:"skills"`
	Experience string `json:"experience"`
	IsPublic   bool   `json:"is_public"`
}

// Create は履歴書を作成します。
func (h *ResumeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createResumeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	created, err := h.resumes.CreateResume(r.Context(), resume.CreateResumeInput{
		Title:      req.Title,
		About:      req.About,
		Skills:     req.Skills,
		Experience: req.Experience,
		IsPublic:   req.IsPublic,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toResumeResponse(created))
}

type updateResumeRequest struct {
	Title      *string `json:"title"`
	About      *string `json:"about"`
	Skills     *string `json:"skills"`
	Experience *string `json:"experience"`
	IsPublic   *bool   `json:"is_public"`
}

// Update は履歴書を更新します。
func (h *ResumeHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateResumeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	updated, err := h.resumes.UpdateResume(r.Context(), resume.UpdateResumeInput{
		ID:         r.PathValue("id"),
		Title:      req.Title,
		About:      req.About,
		Skills:     req.Skills,
		Experience: req.Experience,
		IsPublic:   req.IsPublic,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResumeResponse(updated))
}

// Get は履歴書を返します。
func (h *ResumeHandler) Get(w http.ResponseWriter, r *http.Request) {
	found, err := h.resumes.GetResume(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toResumeResponse(found))
}

// ListMine は呼び出し元の履歴書一覧を返します。
func (h *ResumeHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	resumes, err := h.resumes.ListMine(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]resumeResponse, 0, len(resumes))
	for _, res := range resumes {
		resp = append(resp, toResumeResponse(res))
	}

	writeJSON(w, http.StatusOK, resp)
}

// Search は公開履歴書を検索して返します。採用担当者向けです。
func (h *ResumeHandler) Search(w http.ResponseWriter, r *http.Request) {
	resumes, err := h.resumes.SearchPublic(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]resumeResponse, 0, len(resumes))
	for _, res := range resumes {
		resp = append(resp, toResumeResponse(res))
	}

	writeJSON(w, http.StatusOK, resp)
}
