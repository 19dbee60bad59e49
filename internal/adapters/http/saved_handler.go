package http

import (
	"net/http"
	"time"

	"github.com/workfound/workfound-server/internal/core/saved"
)

// SavedHandler は保存済みアイテム関連のエンドポイントを提供します。
type SavedHandler struct {
	items saved.UseCase
}

// NewSavedHandler は SavedHandler を生成します。
func NewSavedHandler(items saved.UseCase) *SavedHandler {
	return &SavedHandler{items: items}
}

type toggleSavedRequest struct {
	ItemID string `json:"item_id"`
	Type   string `json:"item_type"`
}

type savedStateResponse struct {
	Saved bool `json:"saved"`
}

// Toggle はアイテムの保存状態を反転します。
func (h *SavedHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	var req toggleSavedRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	nowSaved, err := h.items.Toggle(r.Context(), saved.ToggleInput{
		ItemID: req.ItemID,
		Type:   saved.ItemType(req.Type),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, savedStateResponse{Saved: nowSaved})
}

// Check はアイテムが保存済みかどうかを返します。種別は type クエリで指定します。
func (h *SavedHandler) Check(w http.ResponseWriter, r *http.Request) {
	itemType := saved.ItemType(r.URL.Query().Get("type"))

	exists, err := h.items.IsSaved(r.Context(), r.PathValue("id"), itemType)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, savedStateResponse{Saved: exists})
}

type savedJobResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Location    string `json:"location"`
	CompanyName string `json:"company_name"`
	SavedAt     string `json:"saved_at"`
}

// ListJobs は保存済み求人の一覧を返します。
func (h *SavedHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.items.ListSavedJobs(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]savedJobResponse, 0, len(jobs))
	for _, j := range jobs {
		resp = append(resp, savedJobResponse{
			ID:          j.ID,
			Title:       j.Title,
			Location:    j.Location,
			CompanyName: j.CompanyName,
			SavedAt:     j.SavedAt.Format(time.RFC3339),
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

type savedResumeResponse struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	IsPublic bool   `json:"is_public"`
	SavedAt  string `json:"saved_at"`
}

// ListResumes は保存済み履歴書の一覧を返します。
func (h *SavedHandler) ListResumes(w http.ResponseWriter, r *http.Request) {
	resumes, err := h.items.ListSavedResumes(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]savedResumeResponse, 0, len(resumes))
	for _, re := range resumes {
		resp = append(resp, savedResumeResponse{
			ID:       re.ID,
			Title:    re.Title,
			IsPublic: re.IsPublic,
			SavedAt:  re.SavedAt.Format(time.RFC3339),
		})
	}

	writeJSON(w, http.StatusOK, resp)
}
