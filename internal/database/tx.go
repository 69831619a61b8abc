package database

import (
	"context"
	"database/sql"

	"github.com/HasanBasriTaskin/noteapp/internal/model"
)

// Querier は*sql.DB・*sql.Conn・*sql.Txが共通して満たすクエリ実行インターフェース。
// リポジトリの内部ヘルパーはQuerierを受け取り、
// 単文実行とトランザクション内実行を同じコードで扱う。
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ Querier = (*sql.DB)(nil)
	_ Querier = (*sql.Conn)(nil)
	_ Querier = (*sql.Tx)(nil)
)

// WithTx は1論理操作分のunit of workを実行する。
// fnがエラーを返した場合は全文をロールバックしてそのエラーを返す。
// begin/commitの失敗はtransaction_failureへ変換する。
// ロールバックの境界をメソッドごとに再実装せず、ここに集約する。
func WithTx(ctx context.Context, conn *sql.Conn, fn func(tx *sql.Tx) error) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return model.NewTransactionFailureError(err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return model.NewTransactionFailureError(err)
	}
	return nil
}
