package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/HasanBasriTaskin/noteapp/internal/middleware"
	"github.com/HasanBasriTaskin/noteapp/internal/model"
)

// TagServiceInterface はタグハンドラーが必要とするサービスインターフェース。
type TagServiceInterface interface {
	// SaveOrGet はタグを重複排除しながら保存する。
	SaveOrGet(ctx context.Context, t model.Tag) (model.Tag, error)
	// Update はタグのnameとcolorを更新する。
	Update(ctx context.Context, t model.Tag) error
	// Delete はタグと関連junction行を削除する。
	Delete(ctx context.Context, tagID, userID int64) error
	// Get は(id, user_id)で一致するタグを取得する。
	Get(ctx context.Context, tagID, userID int64) (*model.Tag, error)
	// List はユーザーの全タグを名前昇順で返す。
	List(ctx context.Context, userID int64) ([]model.Tag, error)
}

// TagHandler はタグ管理のHTTPハンドラー。
type TagHandler struct {
	service TagServiceInterface
}

// NewTagHandler はTagHandlerを生成する。
func NewTagHandler(service TagServiceInterface) *TagHandler {
	return &TagHandler{service: service}
}

// tagRequest はタグ作成・更新リクエストのボディ。
type tagRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// tagResponse はタグのAPIレスポンス。
type tagResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	UserID    int64     `json:"user_id"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

func toTagResponse(t model.Tag) tagResponse {
	return tagResponse{
		ID:        t.ID,
		Name:      t.Name,
		UserID:    t.UserID,
		Color:     t.Color,
		CreatedAt: t.CreatedAt,
	}
}

// Create はタグを作成する。同名タグが既に存在する場合は既存タグを返す。
// POST /api/tags
func (h *TagHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeErrorResponse(w, http.StatusUnauthorized, "UNAUTHORIZED", "resolved user id is required")
		return
	}

	var req tagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_REQUEST", "failed to parse request body")
		return
	}

	saved, err := h.service.SaveOrGet(r.Context(), model.NewTag(req.Name, userID, req.Color))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toTagResponse(saved))
}

// Update はタグのnameとcolorを更新する。
// PUT /api/tags/{id}
func (h *TagHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeErrorResponse(w, http.StatusUnauthorized, "UNAUTHORIZED", "resolved user id is required")
		return
	}

	tagID, err := parseIDParam(r)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_ID", "tag id must be a positive integer")
		return
	}

	var req tagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_REQUEST", "failed to parse request body")
		return
	}

	t := model.Tag{
		ID:     tagID,
		UserID: userID,
		Name:   req.Name,
		Color:  req.Color,
	}
	if err := h.service.Update(r.Context(), t); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Delete はタグを削除する。タグを付けていたノートは残る。
// DELETE /api/tags/{id}
func (h *TagHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeErrorResponse(w, http.StatusUnauthorized, "UNAUTHORIZED", "resolved user id is required")
		return
	}

	tagID, err := parseIDParam(r)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_ID", "tag id must be a positive integer")
		return
	}

	if err := h.service.Delete(r.Context(), tagID, userID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Get はタグを1件取得する。
// GET /api/tags/{id}
func (h *TagHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeErrorResponse(w, http.StatusUnauthorized, "UNAUTHORIZED", "resolved user id is required")
		return
	}

	tagID, err := parseIDParam(r)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_ID", "tag id must be a positive integer")
		return
	}

	t, err := h.service.Get(r.Context(), tagID, userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toTagResponse(*t))
}

// List はユーザーのタグ一覧を名前昇順で返す。
// GET /api/tags
func (h *TagHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeErrorResponse(w, http.StatusUnauthorized, "UNAUTHORIZED", "resolved user id is required")
		return
	}

	tags, err := h.service.List(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	out := make([]tagResponse, 0, len(tags))
	for _, t := range tags {
		out = append(out, toTagResponse(t))
	}
	writeJSON(w, http.StatusOK, out)
}
