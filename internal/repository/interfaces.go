// Package repository はノートとタグの永続化を提供する。
package repository

import (
	"context"

	"github.com/HasanBasriTaskin/noteapp/internal/database"
	"github.com/HasanBasriTaskin/noteapp/internal/model"
)

// TagRepository はタグデータの永続化インターフェース。
type TagRepository interface {
	// SaveOrGet は(name, user_id)で既存行を検索し、あればその行を変更せず返す
	// （提案されたcolor等は適用しない。重複排除が更新に勝つ）。
	// なければ挿入し、採番済みIDを持つ行を返す。
	// 同時挿入による一意制約違反は再検索を1回だけ行ってから諦める。
	SaveOrGet(ctx context.Context, tag model.Tag) (model.Tag, error)

	// SaveOrGetIn はSaveOrGetと同じ契約を、呼び出し側が保持する接続上で実行する。
	// NoteRepositoryがノート操作と同じ接続でタグを解決するために使う。
	SaveOrGetIn(ctx context.Context, q database.Querier, tag model.Tag) (model.Tag, error)

	// Update は(id, user_id)で一致する行のnameとcolorを更新する。
	// 所有者不一致またはID不在はnot_foundを返し、例外的な失敗とは区別する。
	Update(ctx context.Context, tag model.Tag) error

	// Delete はタグを参照する全junction行を削除してから、
	// (id, user_id)で一致するタグ行を削除する。タグ行が削除できなかった場合は
	// junction削除も含めて全てロールバックし、not_foundを返す。
	Delete(ctx context.Context, tagID, userID int64) error

	// FindByID は(id, user_id)で一致するタグを返す。不在はnot_found。
	FindByID(ctx context.Context, tagID, userID int64) (*model.Tag, error)

	// FindByNameAndUser は(name, user_id)で一致するタグを返す。不在はnot_found。
	FindByNameAndUser(ctx context.Context, name string, userID int64) (*model.Tag, error)

	// ListByUser はユーザーの全タグを名前昇順で返す。
	ListByUser(ctx context.Context, userID int64) ([]model.Tag, error)
}

// NoteRepository はノートデータの永続化インターフェース。
// タグの永続化と関連付けの置き換えはTagRepositoryへ委譲し、
// note_tags junction行はこのリポジトリが所有する。
type NoteRepository interface {
	// Save はノート行を挿入して採番済みIDを取り込み、その後タグ集合を
	// 重複排除しながら永続化してjunction行を一括挿入する。
	// ノート本体の挿入が失敗した場合は何も永続化されない。
	// タグの永続化はノートIDが確定した後にのみ行う。
	Save(ctx context.Context, note model.Note) (model.Note, error)

	// Update はIDで一致する行のtitle/content/is_pinned/is_archived/updated_atを
	// 更新し、成功時にタグ関連付け集合を全置換する（既存junction行を全削除し、
	// 現在のタグ1件につき1行を再挿入する）。いずれかの段階の失敗は
	// 行更新を含む操作全体をロールバックする。
	Update(ctx context.Context, note model.Note) error

	// Delete はノートのjunction行を削除してからノート行を削除する。
	// ノート行が削除できなかった場合は全てロールバックし、not_foundを返す。
	Delete(ctx context.Context, noteID int64) error

	// FindByID はノート行を読み込み、JOINクエリでタグ集合を復元して返す。
	// 不在はnot_found。
	FindByID(ctx context.Context, noteID int64) (*model.Note, error)

	// ListByUser はユーザーの全ノートをupdated_at降順で返す。
	// タグ復元はノート1件につき1クエリで行う。
	ListByUser(ctx context.Context, userID int64) ([]model.Note, error)

	// Search はtitleまたはcontentに対する大文字小文字を区別しない部分一致で
	// ノートを検索する。順序と復元はListByUserと同じ。
	// 検索文字列中のLIKEワイルドカードはエスケープしない（upstream準拠）。
	Search(ctx context.Context, userID int64, text string) ([]model.Note, error)
}
