package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/workfound/workfound-server/internal/core/identity"
	"github.com/workfound/workfound-server/internal/core/user"
)

// UserHandler はプロフィール関連のエンドポイントを提供します。
type UserHandler struct {
	users user.UseCase
}

// NewUserHandler は UserHandler を生成します。
func NewUserHandler(users user.UseCase) *UserHandler {
	return &UserHandler{users: users}
}

type profileResponse struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	Role        string  `json:"role"`
	FullName    string  `json:"full_name"`
	CompanyName *string `json:"company_name,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

func toProfileResponse(p *user.Profile) profileResponse {
	return profileResponse{
		ID:          p.ID,
		Email:       p.Email,
		Role:        string(p.Role),
		FullName:    p.FullName,
		CompanyName: p.CompanyName,
		Phone:       p.Phone,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
	}
}

// GetMe は呼び出し元自身のプロフィールを返します。
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	principal, err := identity.FromContext(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	found, err := h.users.GetProfile(r.Context(), principal.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toProfileResponse(found))
}

type updateProfileRequest struct {
	FullName    *string `json:"full_name"`
	CompanyName *string `json:"company_name"`
	Phone       *string `json:"phone"`
}

// UpdateMe は呼び出し元自身のプロフィールを更新します。
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	updated, err := h.users.UpdateProfile(r.Context(), user.UpdateProfileInput{
		FullName:    req.FullName,
		CompanyName: req.CompanyName,
		Phone:       req.Phone,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toProfileResponse(updated))
}

type listProfilesResponse struct {
	Profiles      []profileResponse `json:"profiles"`
	NextPageToken string            `json:"next_page_token,omitempty"`
}

// List は利用者一覧を返します。管理者専用です。
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	pageSize := 0
	if raw := q.Get("page_size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, user.ErrInvalidPageSize)
			return
		}
		pageSize = parsed
	}

	var role *identity.Role
	if raw := q.Get("role"); raw != "" {
		value := identity.Role(raw)
		role = &value
	}

	result, err := h.users.ListProfiles(r.Context(), user.ListProfilesInput{
		PageSize:  pageSize,
		PageToken: q.Get("page_token"),
		Role:      role,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	resp := listProfilesResponse{
		Profiles:      make([]profileResponse, 0, len(result.Profiles)),
		NextPageToken: result.NextPageToken,
	}
	for _, p := range result.Profiles {
		resp.Profiles = append(resp.Profiles, toProfileResponse(p))
	}

	writeJSON(w, http.StatusOK, resp)
}
