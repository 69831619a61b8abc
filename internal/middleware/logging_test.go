package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// リクエストログにmethod・path・status・duration_msが含まれることを検証
func TestLoggingMiddleware_LogsRequest(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := NewLoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/notes", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	var record map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &record); err != nil {
		t.Fatalf("log output is not valid JSON: %v", err)
	}

	if record["msg"] != "http_request" {
		t.Errorf("msg = %v, want http_request", record["msg"])
	}
	if record["method"] != "POST" {
		t.Errorf("method = %v, want POST", record["method"])
	}
	if record["path"] != "/api/notes" {
		t.Errorf("path = %v, want /api/notes", record["path"])
	}
	if record["status"] != float64(201) {
		t.Errorf("status = %v, want 201", record["status"])
	}
	if _, ok := record["duration_ms"]; !ok {
		t.Error("expected duration_ms in log record")
	}
}

// 5xxレスポンスがERRORレベルで記録されることを検証
func TestLoggingMiddleware_ServerError_LogsAtError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := NewLoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	var record map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &record); err != nil {
		t.Fatalf("log output is not valid JSON: %v", err)
	}
	if record["level"] != "ERROR" {
		t.Errorf("level = %v, want ERROR", record["level"])
	}
}

// 4xxレスポンスがWARNレベルで記録されることを検証
func TestLoggingMiddleware_ClientError_LogsAtWarn(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := NewLoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	var record map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &record); err != nil {
		t.Fatalf("log output is not valid JSON: %v", err)
	}
	if record["level"] != "WARN" {
		t.Errorf("level = %v, want WARN", record["level"])
	}
}

// identity・requestid通過後のリクエストでuser_idとrequest_idが相関することを検証
func TestLoggingMiddleware_IncludesCorrelationFields(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	inner := NewLoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	handler := NewRequestIDMiddleware()(NewIdentityMiddleware()(inner))

	req := httptest.NewRequest(http.MethodGet, "/api/tags", nil)
	req.Header.Set("X-User-ID", "5")
	req.Header.Set("X-Request-ID", "req-123")

	handler.ServeHTTP(httptest.NewRecorder(), req)

	var record map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &record); err != nil {
		t.Fatalf("log output is not valid JSON: %v", err)
	}
	if record["user_id"] != "5" {
		t.Errorf("user_id = %v, want \"5\"", record["user_id"])
	}
	if record["request_id"] != "req-123" {
		t.Errorf("request_id = %v, want req-123", record["request_id"])
	}
}
