package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/HasanBasriTaskin/noteapp/internal/model"
)

// rowScanner は*sql.Rowと*sql.Rowsが共通して満たすインターフェース。
type rowScanner interface {
	Scan(dest ...any) error
}

// scanTag は1行をTagへデコードする。カラム欠落や型不一致は明示的なエラーになる。
// colorはNULL許容で、NULLの場合は既定色を適用する。
func scanTag(row rowScanner) (model.Tag, error) {
	var tag model.Tag
	var color sql.NullString
	if err := row.Scan(&tag.ID, &tag.Name, &tag.UserID, &color, &tag.CreatedAt); err != nil {
		return model.Tag{}, err
	}
	if color.Valid {
		tag.Color = color.String
	} else {
		tag.Color = model.DefaultTagColor
	}
	return tag, nil
}

// scanNote は1行をNoteへデコードする。contentはNULL許容で、NULLは空文字列として扱う。
// タグ集合は含まれないため、呼び出し側が別途復元する。
func scanNote(row rowScanner) (model.Note, error) {
	var note model.Note
	var content sql.NullString
	err := row.Scan(
		&note.ID, &note.UserID, &note.Title, &content,
		&note.IsPinned, &note.IsArchived, &note.CreatedAt, &note.UpdatedAt,
	)
	if err != nil {
		return model.Note{}, err
	}
	note.Content = content.String
	return note, nil
}

// isUniqueViolation は一意制約違反（PostgreSQLエラーコード23505）かどうかを判定する。
// タグの同時保存レースで再検索へ切り替える合図になる。
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// convertError はドライバ由来のエラーを永続化層のエラー分類へ変換する。
// 整合性制約クラス（23xxx）はconstraint_violation、
// それ以外はストア到達不能としてconnection_unavailableにまとめる。
func convertError(op string, err error) error {
	var se *model.StoreError
	if errors.As(err, &se) {
		return err
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Class() == "23" {
		return model.NewConstraintViolationError(
			fmt.Sprintf("%s violated constraint %s", op, pqErr.Constraint), err)
	}
	return model.NewConnectionUnavailableError(fmt.Errorf("%s: %w", op, err))
}
