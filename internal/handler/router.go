package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/HasanBasriTaskin/noteapp/internal/metrics"
	"github.com/HasanBasriTaskin/noteapp/internal/middleware"
)

// HealthChecker はヘルスチェックに必要なインターフェース。
// database.Storeの部分集合として定義する。
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	Logger            *slog.Logger
	HealthChecker     HealthChecker
	MetricsGatherer   prometheus.Gatherer
	RateLimiter       *middleware.RateLimiter
	CORSAllowedOrigin string

	NoteService NoteServiceInterface
	TagService  TagServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成した
// chi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → Logging → Recovery → CORS → Identity → RateLimit(General)
//
// /healthz と /metrics はIdentity・RateLimitチェーンの外に配置する。
// 書き込み系ルートには書き込み専用レート制限を追加する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRequestIDMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	// --- 認証不要のルート ---

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if err := deps.HealthChecker.Ping(req.Context()); err != nil {
			writeErrorResponse(w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "datastore is unavailable")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.MetricsGatherer))

	// --- 解決済みユーザーIDが必要なルート ---

	noteHandler := NewNoteHandler(deps.NoteService)
	tagHandler := NewTagHandler(deps.TagService)

	r.Group(func(r chi.Router) {
		r.Use(middleware.NewIdentityMiddleware())
		r.Use(deps.RateLimiter.GeneralMiddleware())

		write := deps.RateLimiter.WriteMiddleware()

		// ノート管理
		r.Route("/api/notes", func(r chi.Router) {
			r.Get("/", noteHandler.List)
			r.With(write).Post("/", noteHandler.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", noteHandler.Get)
				r.With(write).Put("/", noteHandler.Update)
				r.With(write).Delete("/", noteHandler.Delete)
			})
		})

		// タグ管理
		r.Route("/api/tags", func(r chi.Router) {
			r.Get("/", tagHandler.List)
			r.With(write).Post("/", tagHandler.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", tagHandler.Get)
				r.With(write).Put("/", tagHandler.Update)
				r.With(write).Delete("/", tagHandler.Delete)
			})
		})
	})

	return r
}
