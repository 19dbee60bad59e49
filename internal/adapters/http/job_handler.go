package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/workfound/workfound-server/internal/core/job"
)

// JobHandler は求人関連のエンドポイントを提供します。
type JobHandler struct {
	jobs job.UseCase
}

// NewJobHandler は JobHandler を生成します。
func NewJobHandler(jobs job.UseCase) *JobHandler {
	return &JobHandler{jobs: jobs}
}

type questionResponse struct {
	ID             string  `json:"id"`
	Text           string  `json:"text"`
	ExpectedAnswer *string `json:"expected_answer,omitempty"`
	Disqualifying  bool    `json:"is_disqualifying"`
}

type jobResponse struct {
	ID            string             `json:"id"`
	CompanyID     string             `json:"company_id"`
	Title         string             `json:"title"`
	Description   string             `json:"description"`
	Location      string             `json:"location"`
	SalaryMin     *int64             `json:"salary_min,omitempty"`
	SalaryMax     *int64             `json:"salary_max,omitempty"`
	SalaryPeriod  *string            `json:"salary_period,omitempty"`
	Method        string             `json:"application_method"`
	ContactInfo   *string            `json:"contact_info,omitempty"`
	Status        string             `json:"status"`
	IsHighlighted bool               `json:"is_highlighted"`
	PromotedUntil *string            `json:"promoted_until,omitempty"`
	Views         int64              `json:"views"`
	CreatedAt     string             `json:"created_at"`
	Questions     []questionResponse `json:"questions,omitempty"`
}

func toJobResponse(j *job.Job) jobResponse {
	resp := jobResponse{
		ID:            j.ID,
		CompanyID:     j.CompanyID,
		Title:         j.Title,
		Description:   j.Description,
		Location:      j.Location,
		SalaryMin:     j.SalaryMin,
		SalaryMax:     j.SalaryMax,
		Method:        string(j.Method),
		ContactInfo:   j.ContactInfo,
		Status:        string(j.Status),
		IsHighlighted: j.IsHighlighted,
		Views:         j.Views,
		CreatedAt:     j.CreatedAt.Format(time.RFC3339),
	}
	if j.SalaryPeriod != nil {
		period := string(*j.SalaryPeriod)
		resp.SalaryPeriod = &period
	}
	if j.PromotedUntil != nil {
		until := j.PromotedUntil.Format(time.RFC3339)
		resp.PromotedUntil = &until
	}
	for _, q := range j.Questions {
		resp.Questions = append(resp.Questions, questionResponse{
			ID:             q.ID,
			Text:           q.Text,
			ExpectedAnswer: q.ExpectedAnswer,
			Disqualifying:  q.Disqualifying,
		})
	}
	return resp
}

type questionRequest struct {
	Text           string  `json:"text"`
	ExpectedAnswer *string `json:"expected_answer"`
	Disqualifying  bool    `json:"is_disqualifying"`
}

type createJobRequest struct {
	CompanyID    string            `json:"company_id"`
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	Location     string            `json:"location"`
	SalaryMin    *int64            `json:"salary_min"`
	SalaryMax    *int64            `json:"salary_max"`
	SalaryPeriod *string           `json:"salary_period"`
	Method       string            `json:"application_method"`
	ContactInfo  *string           `json:"contact_info"`
	Status       string            `json:"status"`
	Questions    []questionRequest `json:"questions"`
}

// Create は求人を作成します。
func (h *JobHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createJobRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	in := job.CreateJobInput{
		CompanyID:   req.CompanyID,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		SalaryMin:   req.SalaryMin,
		SalaryMax:   req.SalaryMax,
		Method:      job.ApplicationMethod(req.Method),
		ContactInfo: req.ContactInfo,
		Status:      job.Status(req.Status),
	}
	if req.SalaryPeriod != nil {
		period := job.SalaryPeriod(*req.SalaryPeriod)
		in.SalaryPeriod = &period
	}
	for _, q := range req.Questions {
		in.Questions = append(in.Questions, job.QuestionInput{
			Text:           q.Text,
			ExpectedAnswer: q.ExpectedAnswer,
			Disqualifying:  q.Disqualifying,
		})
	}

	created, err := h.jobs.CreateJob(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toJobResponse(created))
}

// Get は質問込みで求人を返します。
func (h *JobHandler) Get(w http.ResponseWriter, r *http.Request) {
	found, err := h.jobs.GetJob(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toJobResponse(found))
}

type listJobsResponse struct {
	Jobs          []jobResponse `json:"jobs"`
	NextPageToken string        `json:"next_page_token,omitempty"`
}

// ListPublished は公開中の求人を検索して返します。
func (h *JobHandler) ListPublished(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	pageSize := 0
	if raw := q.Get("page_size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, job.ErrInvalidPageSize)
			return
		}
		pageSize = parsed
	}

	result, err := h.jobs.ListPublishedJobs(r.Context(), job.ListJobsInput{
		TitleQuery: q.Get("q"),
		PageSize:   pageSize,
		PageToken:  q.Get("page_token"),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	resp := listJobsResponse{
		Jobs:          make([]jobResponse, 0, len(result.Jobs)),
		NextPageToken: result.NextPageToken,
	}
	for _, j := range result.Jobs {
		resp.Jobs = append(resp.Jobs, toJobResponse(j))
	}

	writeJSON(w, http.StatusOK, resp)
}

// ListByCompany は会社の求人一覧を返します。
func (h *JobHandler) ListByCompany(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.jobs.ListCompanyJobs(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]jobResponse, 0, len(jobs))
	for _, j := range jobs {
		resp = append(resp, toJobResponse(j))
	}

	writeJSON(w, http.StatusOK, resp)
}

type setJobStatusRequest struct {
	Status string `json:"status"`
}

// SetStatus は求人の公開状態を変更します。
func (h *JobHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req setJobStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	updated, err := h.jobs.SetJobStatus(r.Context(), job.SetJobStatusInput{
		ID:     r.PathValue("id"),
		Status: job.Status(req.Status),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toJobResponse(updated))
}

// RecordView は求人の閲覧数を加算します。認証不要です。
func (h *JobHandler) RecordView(w http.ResponseWriter, r *http.Request) {
	if err := h.jobs.RecordView(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
