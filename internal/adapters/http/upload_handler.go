package http

import (
	"context"
	"io"
	"net/http"
	"path"

	"github.com/google/uuid"

	"github.com/workfound/workfound-server/internal/core/identity"
)

const maxUploadBytes = 10 << 20

// ObjectStore はアップロードされたファイルの保管先です。
// 保存後の公開 URL を返します。
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}

// UploadHandler はレジュメファイルや会社ロゴのアップロードを受け付けます。
type UploadHandler struct {
	store ObjectStore
}

// NewUploadHandler は UploadHandler を生成します。
func NewUploadHandler(store ObjectStore) *UploadHandler {
	return &UploadHandler{store: store}
}

type uploadResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// Upload は multipart/form-data の file フィールドを保存します。
// キーは利用者 ID とランダムな UUID から構成され、推測できません。
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	principal, err := identity.FromContext(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, errBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, errBadRequest)
		return
	}
	defer file.Close()

	key := "uploads/" + principal.UserID + "/" + uuid.NewString() + path.Ext(header.Filename)
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	url, err := h.store.Put(r.Context(), key, contentType, file)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, uploadResponse{Key: key, URL: url})
}
