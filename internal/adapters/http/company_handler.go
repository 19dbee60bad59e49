package http

import (
	"net/http"
	"time"

	"github.com/workfound/workfound-server/internal/core/company"
)

// CompanyHandler は会社関連のエンドポイントを提供します。
type CompanyHandler struct {
	companies company.UseCase
}

// NewCompanyHandler は CompanyHandler を生成します。
func NewCompanyHandler(companies company.UseCase) *CompanyHandler {
	return &CompanyHandler{companies: companies}
}

type companyResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Slug         string  `json:"slug"`
	LogoURL      *string `json:"logo_url,omitempty"`
	Website      *string `json:"website,omitempty"`
	Description  *string `json:"description,omitempty"`
	BalanceMinor int64   `json:"balance_minor"`
	CreatedAt    string  `json:"created_at"`
}

func toCompanyResponse(c *company.Company) companyResponse {
	return companyResponse{
		ID:           c.ID,
		Name:         c.Name,
		Slug:         c.Slug,
		LogoURL:      c.LogoURL,
		Website:      c.Website,
		Description:  c.Description,
		BalanceMinor: c.BalanceMinor,
		CreatedAt:    c.CreatedAt.Format(time.RFC3339),
	}
}

type createCompanyRequest struct {
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Website     *string `json:"website"`
	Description *string `json:"description"`
}

// Create は会社を作成します。
func (h *CompanyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCompanyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	created, err := h.companies.CreateCompany(r.Context(), company.CreateCompanyInput{
		Name:        req.Name,
		Slug:        req.Slug,
		Website:     req.Website,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toCompanyResponse(created))
}

// Get は ID で会社を返します。
func (h *CompanyHandler) Get(w http.ResponseWriter, r *http.Request) {
	found, err := h.companies.GetCompany(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCompanyResponse(found))
}

// GetBySlug はスラッグで会社を返します。公開ページ用です。
func (h *CompanyHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	found, err := h.companies.GetCompanyBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCompanyResponse(found))
}

type updateCompanyRequest struct {
	Name        *string `json:"name"`
	Website     *string `json:"website"`
	Description *string `json:"description"`
	LogoURL     *string `json:"logo_url"`
}

// Update は会社情報を更新します。
func (h *CompanyHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateCompanyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	updated, err := h.companies.UpdateCompany(r.Context(), company.UpdateCompanyInput{
		ID:          r.PathValue("id"),
		Name:        req.Name,
		Website:     req.Website,
		Description: req.Description,
		LogoURL:     req.LogoURL,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toCompanyResponse(updated))
}

type memberResponse struct {
	ID        string `json:"id"`
	CompanyID string `json:"company_id"`
	UserID    string `json:"user_id"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
}

func toMemberResponse(m *company.Member) memberResponse {
	return memberResponse{
		ID:        m.ID,
		CompanyID: m.CompanyID,
		UserID:    m.UserID,
		Role:      string(m.Role),
		CreatedAt: m.CreatedAt.Format(time.RFC3339),
	}
}

type addMemberRequest struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// AddMember は会社へメンバーを追加します。
func (h *CompanyHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	var req addMemberRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	added, err := h.companies.AddMember(r.Context(), company.AddMemberInput{
		CompanyID: r.PathValue("id"),
		UserID:    req.UserID,
		Email:     req.Email,
		Role:      company.MemberRole(req.Role),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toMemberResponse(added))
}

// ListMembers は会社のメンバー一覧を返します。
func (h *CompanyHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.companies.ListMembers(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]memberResponse, 0, len(members))
	for _, m := range members {
		resp = append(resp, toMemberResponse(m))
	}

	writeJSON(w, http.StatusOK, resp)
}
