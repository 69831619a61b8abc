package database

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"strings"

	"github.com/HasanBasriTaskin/noteapp/internal/model"
)

//go:embed schema.sql
var schemaSQL string

// InitSchema は5テーブル（users, notes, tags, note_tags, reminders）を
// 存在しない場合のみ作成し、開発用シードユーザーを冪等に投入する。
// マイグレーションやバージョン管理は行わない。
// 失敗はschema_initとして返し、呼び出し側はプロセス起動不能として扱う。
// remindersはスキーマ定義のみで、どのリポジトリ操作からも読み書きされない。
func InitSchema(ctx context.Context, store *Store) error {
	conn, err := store.Acquire(ctx)
	if err != nil {
		return model.NewSchemaInitError(err)
	}
	defer store.Release(conn)

	for _, stmt := range SchemaStatements() {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return model.NewSchemaInitError(fmt.Errorf("failed to execute schema statement: %w", err))
		}
	}

	slog.Info("database schema initialized")
	return nil
}

// SchemaStatements は埋め込みスキーマを文単位に分割して返す。
func SchemaStatements() []string {
	parts := strings.Split(schemaSQL, ";")
	stmts := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		stmts = append(stmts, p)
	}
	return stmts
}
