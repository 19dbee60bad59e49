package http

import (
	"net/http"
	"time"

	"github.com/workfound/workfound-server/internal/core/event"
)

// EventHandler はカレンダー関連のエンドポイントを提供します。
type EventHandler struct {
	events event.UseCase
}

// NewEventHandler は EventHandler を生成します。
func NewEventHandler(events event.UseCase) *EventHandler {
	return &EventHandler{events: events}
}

type eventResponse struct {
	ID            string  `json:"id"`
	ApplicationID *string `json:"application_id,omitempty"`
	Title         string  `json:"title"`
	Description   *string `json:"description,omitempty"`
	StartTime     string  `json:"start_time"`
	EndTime       string  `json:"end_time"`
	Type          string  `json:"type"`
	CandidateName *string `json:"candidate_name,omitempty"`
}

func toEventResponse(e *event.Event) eventResponse {
	return eventResponse{
		ID:            e.ID,
		ApplicationID: e.ApplicationID,
		Title:         e.Title,
		Description:   e.Description,
		StartTime:     e.StartTime.Format(time.RFC3339),
		EndTime:       e.EndTime.Format(time.RFC3339),
		Type:          string(e.Type),
		CandidateName: e.CandidateName,
	}
}

type createEventRequest struct {
	ApplicationID *string   `json:"application_id"`
	Title         string    `json:"title"`
	Description   *string   `json:"description"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	Type          string    `json:"type"`
}

// Create はカレンダー予定を作成します。
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	created, err := h.events.CreateEvent(r.Context(), event.CreateEventInput{
		ApplicationID: req.ApplicationID,
		Title:         req.Title,
		Description:   req.Description,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		Type:          event.Type(req.Type),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toEventResponse(created))
}

// List は呼び出し元の予定一覧を返します。from / to は RFC3339 です。
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var in event.ListEventsInput
	if raw := q.Get("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, errBadRequest)
			return
		}
		in.From = parsed
	}
	if raw := q.Get("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, errBadRequest)
			return
		}
		in.To = parsed
	}

	events, err := h.events.ListEvents(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]eventResponse, 0, len(events))
	for _, e := range events {
		resp = append(resp, toEventResponse(e))
	}

	writeJSON(w, http.StatusOK, resp)
}

// Delete は予定を削除します。
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.events.DeleteEvent(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
