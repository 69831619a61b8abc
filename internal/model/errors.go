package model

import (
	"errors"
	"fmt"
)

// ErrorKind は永続化層のエラー分類を表す。
// リポジトリ操作はドライバ由来のエラーを自身の境界でいずれかの分類へ変換する。
type ErrorKind string

const (
	// KindConnectionUnavailable はプール枯渇またはストア到達不能を示す。
	KindConnectionUnavailable ErrorKind = "connection_unavailable"
	// KindConstraintViolation は一意制約・外部キー制約の違反を示す。
	KindConstraintViolation ErrorKind = "constraint_violation"
	// KindNotFound は検索ミス、またはID/所有者不一致による更新・削除の空振りを示す。
	KindNotFound ErrorKind = "not_found"
	// KindTransactionFailure はロールバックに至った複文書き込みの失敗を示す。
	KindTransactionFailure ErrorKind = "transaction_failure"
	// KindSchemaInit はスキーマ初期化の失敗を示す。
	// 通常の操作失敗と区別し、プロセス起動不能として扱う。
	KindSchemaInit ErrorKind = "schema_init"
)

// StoreError は永続化層の明示的な失敗シグナル。
// 呼び出し側は戻り値の有無ではなくKindで分岐する。
type StoreError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

// Error はerrorインターフェースを実装する。
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap はドライバ由来の元エラーを返す。
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewConnectionUnavailableError は接続取得失敗エラーを生成する。
func NewConnectionUnavailableError(err error) *StoreError {
	return &StoreError{
		Kind:    KindConnectionUnavailable,
		Message: "database connection unavailable",
		Err:     err,
	}
}

// NewConstraintViolationError は制約違反エラーを生成する。
func NewConstraintViolationError(message string, err error) *StoreError {
	return &StoreError{
		Kind:    KindConstraintViolation,
		Message: message,
		Err:     err,
	}
}

// NewNotFoundError は対象行が存在しない（または所有者が一致しない）ことを示すエラーを生成する。
func NewNotFoundError(message string) *StoreError {
	return &StoreError{
		Kind:    KindNotFound,
		Message: message,
	}
}

// NewTransactionFailureError はトランザクション失敗エラーを生成する。
func NewTransactionFailureError(err error) *StoreError {
	return &StoreError{
		Kind:    KindTransactionFailure,
		Message: "transaction rolled back",
		Err:     err,
	}
}

// NewSchemaInitError はスキーマ初期化失敗エラーを生成する。
func NewSchemaInitError(err error) *StoreError {
	return &StoreError{
		Kind:    KindSchemaInit,
		Message: "schema initialization failed",
		Err:     err,
	}
}

// IsKind はerrが指定分類のStoreErrorかどうかを判定する。
func IsKind(err error, kind ErrorKind) bool {
	var se *StoreError
	return errors.As(err, &se) && se.Kind == kind
}

// IsConnectionUnavailable は接続取得失敗かどうかを判定する。
func IsConnectionUnavailable(err error) bool {
	return IsKind(err, KindConnectionUnavailable)
}

// IsConstraintViolation は制約違反かどうかを判定する。
func IsConstraintViolation(err error) bool {
	return IsKind(err, KindConstraintViolation)
}

// IsNotFound は対象不在かどうかを判定する。
func IsNotFound(err error) bool {
	return IsKind(err, KindNotFound)
}

// IsTransactionFailure はトランザクション失敗かどうかを判定する。
func IsTransactionFailure(err error) bool {
	return IsKind(err, KindTransactionFailure)
}

// IsSchemaInit はスキーマ初期化失敗かどうかを判定する。
func IsSchemaInit(err error) bool {
	return IsKind(err, KindSchemaInit)
}
