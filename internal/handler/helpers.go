// Package handler はHTTP APIのハンドラーとルーティングを提供する。
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/HasanBasriTaskin/noteapp/internal/model"
	"github.com/HasanBasriTaskin/noteapp/internal/note"
	"github.com/HasanBasriTaskin/noteapp/internal/tag"
)

// errorResponseBody はAPIエラーレスポンスの統一フォーマット。
type errorResponseBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// writeErrorResponse は統一エラーフォーマットでHTTPエラーレスポンスを書き込む。
func writeErrorResponse(w http.ResponseWriter, statusCode int, code, message string) {
	writeJSON(w, statusCode, errorResponseBody{Code: code, Message: message})
}

// handleServiceError はサービス層のエラーをHTTPステータスへ変換する。
// 永続化層のエラー分類をそのままステータスに対応させる。
func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, note.ErrTitleRequired):
		writeErrorResponse(w, http.StatusBadRequest, "TITLE_REQUIRED", "note title must not be empty")
	case errors.Is(err, tag.ErrNameRequired):
		writeErrorResponse(w, http.StatusBadRequest, "NAME_REQUIRED", "tag name must not be empty")
	case model.IsNotFound(err):
		writeErrorResponse(w, http.StatusNotFound, "NOT_FOUND", "requested resource was not found")
	case model.IsConstraintViolation(err):
		writeErrorResponse(w, http.StatusConflict, "CONSTRAINT_VIOLATION", "operation violates a data constraint")
	case model.IsConnectionUnavailable(err):
		writeErrorResponse(w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "datastore is unavailable")
	case model.IsTransactionFailure(err):
		slog.Error("transaction failure", slog.String("error", err.Error()))
		writeErrorResponse(w, http.StatusInternalServerError, "TRANSACTION_FAILURE", "operation was rolled back")
	default:
		slog.Error("unexpected service error", slog.String("error", err.Error()))
		writeErrorResponse(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}
