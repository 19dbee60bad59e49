package http

import (
	"net/http"
	"time"

	"github.com/workfound/workfound-server/internal/core/alert"
)

// AlertHandler は求人購読関連のエンドポイントを提供します。
type AlertHandler struct {
	alerts alert.UseCase
}

// NewAlertHandler は AlertHandler を生成します。
func NewAlertHandler(alerts alert.UseCase) *AlertHandler {
	return &AlertHandler{alerts: alerts}
}

type alertResponse struct {
	ID        string `json:"id"`
	Keywords  string `json:"keywords,omitempty"`
	Location  string `json:"location,omitempty"`
	CreatedAt string `json:"created_at"`
}

func toAlertResponse(a *alert.JobAlert) alertResponse {
	return alertResponse{
		ID:        a.ID,
		Keywords:  a.Keywords,
		Location:  a.Location,
		CreatedAt: a.CreatedAt.Format(time.RFC3339),
	}
}

type createAlertRequest struct {
	Keywords string `json:"keywords"`
	Location string `json:"location"`
}

// Create は求人購読を作成します。
func (h *AlertHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAlertRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	created, err := h.alerts.CreateAlert(r.Context(), alert.CreateAlertInput{
		Keywords: req.Keywords,
		Location: req.Location,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toAlertResponse(created))
}

// List は呼び出し元の購読一覧を返します。
func (h *AlertHandler) List(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.alerts.ListAlerts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]alertResponse, 0, len(alerts))
	for _, a := range alerts {
		resp = append(resp, toAlertResponse(a))
	}

	writeJSON(w, http.StatusOK, resp)
}

// Delete は購読を削除します。
func (h *AlertHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.alerts.DeleteAlert(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
