// Package app はアプリケーションの起動と依存関係のワイヤリングを提供する。
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/HasanBasriTaskin/noteapp/internal/config"
	"github.com/HasanBasriTaskin/noteapp/internal/database"
	"github.com/HasanBasriTaskin/noteapp/internal/handler"
	"github.com/HasanBasriTaskin/noteapp/internal/logger"
	"github.com/HasanBasriTaskin/noteapp/internal/metrics"
	"github.com/HasanBasriTaskin/noteapp/internal/middleware"
	"github.com/HasanBasriTaskin/noteapp/internal/note"
	"github.com/HasanBasriTaskin/noteapp/internal/repository"
	"github.com/HasanBasriTaskin/noteapp/internal/security"
	"github.com/HasanBasriTaskin/noteapp/internal/tag"
)

// Init はアプリケーションの初期化を行う。
// JSON構造化ログをセットアップし、設定ファイルと環境変数からConfigを解決する。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 設定ファイル・環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	switch cmd {
	case CommandInitDB:
		return runInitDB(cfg)
	case CommandServe:
		return runServe(cfg)
	default:
		return runServe(cfg)
	}
}

// runServe はAPIサーバーモードで起動する。
// コネクションプールを開き、スキーマを初期化し、全依存関係をワイヤリングして
// HTTPサーバーを起動する。SIGINTまたはSIGTERMシグナルを受信すると
// グレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. コネクションプールの起動
	store := database.NewStore()
	if err := store.Start(cfg); err != nil {
		return fmt.Errorf("failed to start datastore: %w", err)
	}
	defer store.Stop()

	slog.Info("database connection pool established")

	// 2. スキーマ初期化。失敗した場合は起動を中断する
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	err := database.InitSchema(ctx, store)
	cancel()
	if err != nil {
		return fmt.Errorf("schema initialization failed: %w", err)
	}

	// 3. リポジトリの初期化
	tagRepo := repository.NewPostgresTagRepo(store)
	noteRepo := repository.NewPostgresNoteRepo(store, tagRepo)

	// 4. セキュリティ・メトリクスの初期化
	sanitizer := security.NewContentSanitizer()
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 5. ドメインサービスの初期化
	noteService := note.NewService(noteRepo, sanitizer, collector)
	tagService := tag.NewService(tagRepo, collector)

	// 6. ルーターの構築
	rateLimiter := middleware.NewRateLimiter(
		middleware.NewRateLimiterConfig(cfg.RateLimitGeneral, cfg.RateLimitWrite),
	)
	defer rateLimiter.Stop()

	deps := &handler.RouterDeps{
		Logger:            slog.Default(),
		HealthChecker:     store,
		MetricsGatherer:   registry,
		RateLimiter:       rateLimiter,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,

		NoteService: noteService,
		TagService:  tagService,
	}

	router := handler.NewRouter(deps)

	// 7. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runInitDB はスキーマ初期化のみを実行して終了する。
// CI環境や初回セットアップでサーバーを起動せずにテーブルを作成する用途。
func runInitDB(cfg *config.Config) error {
	store := database.NewStore()
	if err := store.Start(cfg); err != nil {
		return fmt.Errorf("failed to start datastore: %w", err)
	}
	defer store.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := database.InitSchema(ctx, store); err != nil {
		return fmt.Errorf("schema initialization failed: %w", err)
	}

	slog.Info("schema initialization completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /healthz エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/healthz", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
