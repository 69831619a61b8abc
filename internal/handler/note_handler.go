package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/HasanBasriTaskin/noteapp/internal/middleware"
	"github.com/HasanBasriTaskin/noteapp/internal/model"
)

// NoteServiceInterface はノートハンドラーが必要とするサービスインターフェース。
type NoteServiceInterface interface {
	// Save は新規ノートを永続化し、採番済みIDを持つコピーを返す。
	Save(ctx context.Context, n model.Note) (model.Note, error)
	// Update はノート本体とタグ関連付けを更新する。
	Update(ctx context.Context, n model.Note) error
	// Delete はノートを削除する。
	Delete(ctx context.Context, noteID int64) error
	// Get はノートをタグ集合付きで取得する。
	Get(ctx context.Context, noteID int64) (*model.Note, error)
	// List はユーザーの全ノートをupdated_at降順で返す。
	List(ctx context.Context, userID int64) ([]model.Note, error)
	// Search は部分一致検索を実行する。
	Search(ctx context.Context, userID int64, text string) ([]model.Note, error)
}

// NoteHandler はノート管理のHTTPハンドラー。
type NoteHandler struct {
	service NoteServiceInterface
}

// NewNoteHandler はNoteHandlerを生成する。
func NewNoteHandler(service NoteServiceInterface) *NoteHandler {
	return &NoteHandler{service: service}
}

// noteRequest はノート作成・更新リクエストのボディ。
type noteRequest struct {
	Title      string       `json:"title"`
	Content    string       `json:"content"`
	IsPinned   bool         `json:"is_pinned"`
	IsArchived bool         `json:"is_archived"`
	Tags       []tagPayload `json:"tags"`
}

// tagPayload はリクエスト中のタグ表現。
type tagPayload struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// noteResponse はノートのAPIレスポンス。
type noteResponse struct {
	ID         int64         `json:"id"`
	UserID     int64         `json:"user_id"`
	Title      string        `json:"title"`
	Content    string        `json:"content"`
	IsPinned   bool          `json:"is_pinned"`
	IsArchived bool          `json:"is_archived"`
	Tags       []tagResponse `json:"tags"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

func toNoteResponse(n model.Note) noteResponse {
	tags := make([]tagResponse, 0, len(n.Tags))
	for _, t := range n.Tags {
		tags = append(tags, toTagResponse(t))
	}
	return noteResponse{
		ID:         n.ID,
		UserID:     n.UserID,
		Title:      n.Title,
		Content:    n.Content,
		IsPinned:   n.IsPinned,
		IsArchived: n.IsArchived,
		Tags:       tags,
		CreatedAt:  n.CreatedAt,
		UpdatedAt:  n.UpdatedAt,
	}
}

func toNoteResponses(notes []model.Note) []noteResponse {
	out := make([]noteResponse, 0, len(notes))
	for _, n := range notes {
		out = append(out, toNoteResponse(n))
	}
	return out
}

// Create は新規ノートを作成する。
// POST /api/notes
func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeErrorResponse(w, http.StatusUnauthorized, "UNAUTHORIZED", "resolved user id is required")
		return
	}

	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_REQUEST", "failed to parse request body")
		return
	}

	n := model.NewNote(userID, req.Title, req.Content)
	n.IsPinned = req.IsPinned
	n.IsArchived = req.IsArchived
	n.Tags = toModelTags(req.Tags, userID)

	saved, err := h.service.Save(r.Context(), n)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toNoteResponse(saved))
}

// Update は既存ノートを更新する。タグ関連付けは送られた集合で全置換される。
// PUT /api/notes/{id}
func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeErrorResponse(w, http.StatusUnauthorized, "UNAUTHORIZED", "resolved user id is required")
		return
	}

	noteID, err := parseIDParam(r)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_ID", "note id must be a positive integer")
		return
	}

	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_REQUEST", "failed to parse request body")
		return
	}

	n := model.Note{
		ID:         noteID,
		UserID:     userID,
		Title:      req.Title,
		Content:    req.Content,
		IsPinned:   req.IsPinned,
		IsArchived: req.IsArchived,
		Tags:       toModelTags(req.Tags, userID),
	}

	if err := h.service.Update(r.Context(), n); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Delete はノートを削除する。
// DELETE /api/notes/{id}
func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	noteID, err := parseIDParam(r)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_ID", "note id must be a positive integer")
		return
	}

	if err := h.service.Delete(r.Context(), noteID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Get はノートを1件取得する。
// GET /api/notes/{id}
func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	noteID, err := parseIDParam(r)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_ID", "note id must be a positive integer")
		return
	}

	n, err := h.service.Get(r.Context(), noteID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toNoteResponse(*n))
}

// List はユーザーのノート一覧を返す。qクエリパラメータがある場合は部分一致検索。
// GET /api/notes[?q=text]
func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeErrorResponse(w, http.StatusUnauthorized, "UNAUTHORIZED", "resolved user id is required")
		return
	}

	var notes []model.Note
	if q := r.URL.Query().Get("q"); q != "" {
		notes, err = h.service.Search(r.Context(), userID, q)
	} else {
		notes, err = h.service.List(r.Context(), userID)
	}
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toNoteResponses(notes))
}

func toModelTags(payloads []tagPayload, userID int64) []model.Tag {
	if len(payloads) == 0 {
		return nil
	}
	tags := make([]model.Tag, 0, len(payloads))
	for _, p := range payloads {
		tags = append(tags, model.NewTag(p.Name, userID, p.Color))
	}
	return tags
}

func parseIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, strconv.ErrSyntax
	}
	return id, nil
}
