// Package database はデータベース接続プールとスキーマ初期化を提供する。
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "github.com/lib/pq"

	"github.com/HasanBasriTaskin/noteapp/internal/config"
	"github.com/HasanBasriTaskin/noteapp/internal/model"
)

// プール境界。接続URL以外は固定値として扱う。
const (
	maxOpenConns    = 10
	minIdleConns    = 2
	connIdleTimeout = 30 * time.Second

	// AcquireTimeout は接続取得の待機上限。
	// この時間内に接続を取得できない呼び出しはconnection_unavailableを受け取る。
	AcquireTimeout = 20 * time.Second
)

// livenessProbe は接続確認に使うクエリ。
const livenessProbe = "SELECT 1"

// Store はプロセス起動時に構築し各リポジトリへ注入する接続ハンドル。
// グローバル状態は持たず、ライフサイクルはStart/Stopで明示する。
type Store struct {
	mu      sync.Mutex
	db      *sql.DB
	started bool
}

// NewStore は未接続のStoreを生成する。
func NewStore() *Store {
	return &Store{}
}

// Start は接続プールを初期化し、livenessプローブで到達性を確認する。
// すでに開始済みの場合は何もしない。
func (s *Store) Start(cfg *config.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	db, err := sql.Open(cfg.Driver, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(minIdleConns)
	db.SetConnMaxIdleTime(connIdleTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), AcquireTimeout)
	defer cancel()

	var probe int
	if err := db.QueryRowContext(ctx, livenessProbe).Scan(&probe); err != nil {
		db.Close()
		return model.NewConnectionUnavailableError(err)
	}

	s.db = db
	s.started = true

	slog.Info("database connection pool initialized",
		slog.Int("max_open", maxOpenConns),
		slog.Int("min_idle", minIdleConns),
	)
	return nil
}

// Stop はプールの全リソースを解放する。冪等であり、
// 二重呼び出しやStart前の呼び出しはエラーにならない。
func (s *Store) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	err := s.db.Close()
	s.db = nil
	s.started = false

	slog.Info("database connection pool closed")
	return err
}

// Acquire はプールから接続を1本取得する。
// AcquireTimeout以内に取得できない場合はconnection_unavailableを返し、
// 無期限に待機することはない。
func (s *Store) Acquire(ctx context.Context) (*sql.Conn, error) {
	s.mu.Lock()
	db := s.db
	started := s.started
	s.mu.Unlock()

	if !started {
		return nil, model.NewConnectionUnavailableError(fmt.Errorf("store is not started"))
	}

	acquireCtx, cancel := context.WithTimeout(ctx, AcquireTimeout)
	defer cancel()

	conn, err := db.Conn(acquireCtx)
	if err != nil {
		return nil, model.NewConnectionUnavailableError(err)
	}
	return conn, nil
}

// Release は取得した接続をプールへ返却する。nil接続は無視する。
func (s *Store) Release(conn *sql.Conn) {
	if conn == nil {
		return
	}
	if err := conn.Close(); err != nil {
		slog.Warn("failed to release connection", slog.String("error", err.Error()))
	}
}

// Ping は到達性を確認する。ヘルスチェックで使用する。
func (s *Store) Ping(ctx context.Context) error {
	s.mu.Lock()
	db := s.db
	started := s.started
	s.mu.Unlock()

	if !started {
		return model.NewConnectionUnavailableError(fmt.Errorf("store is not started"))
	}
	if err := db.PingContext(ctx); err != nil {
		return model.NewConnectionUnavailableError(err)
	}
	return nil
}
