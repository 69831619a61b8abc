package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/HasanBasriTaskin/noteapp/internal/middleware"
	"github.com/HasanBasriTaskin/noteapp/internal/model"
)

// stubHealthChecker は固定結果を返すテスト用HealthChecker。
type stubHealthChecker struct{ err error }

func (s *stubHealthChecker) Ping(ctx context.Context) error { return s.err }

func newTestRouter(t *testing.T, health HealthChecker) http.Handler {
	t.Helper()

	rl := middleware.NewRateLimiter(middleware.NewRateLimiterConfig(120, 30))
	t.Cleanup(rl.Stop)

	return NewRouter(&RouterDeps{
		Logger:            slog.New(slog.DiscardHandler),
		HealthChecker:     health,
		MetricsGatherer:   prometheus.NewRegistry(),
		RateLimiter:       rl,
		CORSAllowedOrigin: "http://localhost:3000",

		NoteService: &mockNoteService{
			listFunc: func(ctx context.Context, userID int64) ([]model.Note, error) {
				return nil, nil
			},
		},
		TagService: &mockTagService{
			listFunc: func(ctx context.Context, userID int64) ([]model.Tag, error) {
				return nil, nil
			},
		},
	})
}

// /healthzがPing成功時に200を返すことを検証
func TestRouter_Healthz_OK(t *testing.T) {
	router := newTestRouter(t, &stubHealthChecker{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

// /healthzがPing失敗時に503を返すことを検証
func TestRouter_Healthz_StoreDown_Returns503(t *testing.T) {
	router := newTestRouter(t, &stubHealthChecker{
		err: model.NewConnectionUnavailableError(errors.New("refused")),
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

// /metricsが認証なしで到達でき、Prometheus形式を返すことを検証
func TestRouter_Metrics_NoAuthRequired(t *testing.T) {
	router := newTestRouter(t, &stubHealthChecker{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

// /api配下がX-User-IDなしで401になることを検証
func TestRouter_APIRequiresIdentity(t *testing.T) {
	router := newTestRouter(t, &stubHealthChecker{})

	for _, path := range []string{"/api/notes", "/api/tags"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: status = %d, want 401", path, rec.Code)
		}
	}
}

// X-User-ID付きリクエストが/api配下を通過することを検証
func TestRouter_APIWithIdentity_OK(t *testing.T) {
	router := newTestRouter(t, &stubHealthChecker{})

	req := httptest.NewRequest(http.MethodGet, "/api/notes", nil)
	req.Header.Set("X-User-ID", "1")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
}

// 全レスポンスにX-Request-IDが付与されることを検証
func TestRouter_SetsRequestID(t *testing.T) {
	router := newTestRouter(t, &stubHealthChecker{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header on all responses")
	}
}

// OPTIONSプリフライトがCORSミドルウェアで終端されることを検証
func TestRouter_Preflight_Returns204(t *testing.T) {
	router := newTestRouter(t, &stubHealthChecker{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/notes", nil))

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); !strings.Contains(got, "localhost:3000") {
		t.Errorf("Allow-Origin = %q", got)
	}
}

// 未定義ルートが404になることを検証
func TestRouter_UnknownRoute_Returns404(t *testing.T) {
	router := newTestRouter(t, &stubHealthChecker{})

	req := httptest.NewRequest(http.MethodGet, "/api/unknown", nil)
	req.Header.Set("X-User-ID", "1")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
