package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/HasanBasriTaskin/noteapp/internal/database"
	"github.com/HasanBasriTaskin/noteapp/internal/model"
)

// PostgresNoteRepo はPostgreSQLを使用したノートリポジトリ。
// タグの保存はTagRepositoryへ委譲し、note_tags junction行は自身が所有する。
type PostgresNoteRepo struct {
	store *database.Store
	tags  TagRepository
}

// NewPostgresNoteRepo はPostgresNoteRepoを生成する。
func NewPostgresNoteRepo(store *database.Store, tags TagRepository) *PostgresNoteRepo {
	return &PostgresNoteRepo{store: store, tags: tags}
}

// Save はノートを挿入し、採番されたIDを取り込んでからタグを永続化する。
// ノート本体の挿入失敗時は何も残らない。タグとjunction行の永続化は
// ノートIDが確定した後にのみ行う。
func (r *PostgresNoteRepo) Save(ctx context.Context, note model.Note) (model.Note, error) {
	conn, err := r.store.Acquire(ctx)
	if err != nil {
		return model.Note{}, err
	}
	defer r.store.Release(conn)

	now := time.Now()
	if note.CreatedAt.IsZero() {
		note.CreatedAt = now
	}
	if note.UpdatedAt.IsZero() {
		note.UpdatedAt = now
	}

	err = conn.QueryRowContext(ctx,
		`INSERT INTO notes (user_id, title, content, is_pinned, is_archived, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		note.UserID, note.Title, nullableText(note.Content),
		note.IsPinned, note.IsArchived, note.CreatedAt, note.UpdatedAt,
	).Scan(&note.ID)
	if err != nil {
		return model.Note{}, convertError("insert note", err)
	}

	resolved, err := r.resolveTags(ctx, conn, note)
	if err != nil {
		return model.Note{}, err
	}
	if err := insertNoteTags(ctx, conn, note.ID, resolved); err != nil {
		return model.Note{}, err
	}

	note.Tags = resolved
	return note, nil
}

// Update はノート行の更新とタグ関連付けの全置換を1トランザクションで行う。
// 差分適用ではなく全置換で、既存junction行を全削除してから現在の集合を
// 再挿入する。どの段階の失敗も行更新を含めて全てロールバックされる。
func (r *PostgresNoteRepo) Update(ctx context.Context, note model.Note) error {
	conn, err := r.store.Acquire(ctx)
	if err != nil {
		return err
	}
	defer r.store.Release(conn)

	// タグの解決はトランザクションの外で行う。一意制約違反の再試行を
	// 伴うため、進行中のトランザクション内で実行すると以降の文が
	// 全て失敗する（PostgreSQLはエラー後の文を受け付けない）。
	resolved, err := r.resolveTags(ctx, conn, note)
	if err != nil {
		return err
	}

	return database.WithTx(ctx, conn, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE notes SET title = $1, content = $2, is_pinned = $3, is_archived = $4, updated_at = $5
			 WHERE id = $6`,
			note.Title, nullableText(note.Content),
			note.IsPinned, note.IsArchived, time.Now(), note.ID,
		)
		if err != nil {
			return convertError("update note", err)
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return convertError("update note rows affected", err)
		}
		if rows == 0 {
			return model.NewNotFoundError(fmt.Sprintf("note %d not found", note.ID))
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM note_tags WHERE note_id = $1`, note.ID,
		); err != nil {
			return convertError("delete note associations", err)
		}
		return insertNoteTags(ctx, tx, note.ID, resolved)
	})
}

// Delete はノートとそのjunction行を1トランザクションで削除する。
// タグ行自体は残る（他のノートから共有されている可能性があるため）。
func (r *PostgresNoteRepo) Delete(ctx context.Context, noteID int64) error {
	conn, err := r.store.Acquire(ctx)
	if err != nil {
		return err
	}
	defer r.store.Release(conn)

	return database.WithTx(ctx, conn, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM note_tags WHERE note_id = $1`, noteID,
		); err != nil {
			return convertError("delete note associations", err)
		}

		res, err := tx.ExecContext(ctx,
			`DELETE FROM notes WHERE id = $1`, noteID,
		)
		if err != nil {
			return convertError("delete note", err)
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return convertError("delete note rows affected", err)
		}
		if rows == 0 {
			return model.NewNotFoundError(fmt.Sprintf("note %d not found", noteID))
		}
		return nil
	})
}

// FindByID はノート行を読み込み、タグ集合を復元して返す。
func (r *PostgresNoteRepo) FindByID(ctx context.Context, noteID int64) (*model.Note, error) {
	conn, err := r.store.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer r.store.Release(conn)

	row := conn.QueryRowContext(ctx,
		`SELECT id, user_id, title, content, is_pinned, is_archived, created_at, updated_at
		 FROM notes WHERE id = $1`,
		noteID,
	)
	note, err := scanNote(row)
	if err == sql.ErrNoRows {
		return nil, model.NewNotFoundError(fmt.Sprintf("note %d not found", noteID))
	}
	if err != nil {
		return nil, convertError("find note by id", err)
	}

	if err := loadNoteTags(ctx, conn, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

// ListByUser はユーザーの全ノートをupdated_at降順で返す。
func (r *PostgresNoteRepo) ListByUser(ctx context.Context, userID int64) ([]model.Note, error) {
	return r.queryNotes(ctx,
		`SELECT id, user_id, title, content, is_pinned, is_archived, created_at, updated_at
		 FROM notes WHERE user_id = $1 ORDER BY updated_at DESC`,
		userID,
	)
}

// Search はtitleまたはcontentに対する大文字小文字を区別しない部分一致検索。
// パターンは%text%で、text中のLIKEワイルドカードはエスケープしない。
func (r *PostgresNoteRepo) Search(ctx context.Context, userID int64, text string) ([]model.Note, error) {
	pattern := "%" + text + "%"
	return r.queryNotes(ctx,
		`SELECT id, user_id, title, content, is_pinned, is_archived, created_at, updated_at
		 FROM notes WHERE user_id = $1 AND (title ILIKE $2 OR content ILIKE $2)
		 ORDER BY updated_at DESC`,
		userID, pattern,
	)
}

// queryNotes はノート一覧クエリを実行し、1件ずつタグを復元する共通ヘルパー。
// 復元は一覧取得と同じ接続上で行う。
func (r *PostgresNoteRepo) queryNotes(ctx context.Context, query string, args ...any) ([]model.Note, error) {
	conn, err := r.store.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer r.store.Release(conn)

	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, convertError("query notes", err)
	}

	var notes []model.Note
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			rows.Close()
			return nil, convertError("scan note", err)
		}
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, convertError("iterate notes", err)
	}
	rows.Close()

	for i := range notes {
		if err := loadNoteTags(ctx, conn, &notes[i]); err != nil {
			return nil, err
		}
	}
	return notes, nil
}

// resolveTags はノートのタグ集合を重複排除しながら永続化し、ID確定済みの
// タグ列を返す。タグはノートの所有ユーザーの名前空間で解決するため、
// 別ユーザーのタグIDがjunction行に紛れ込むことはない。
func (r *PostgresNoteRepo) resolveTags(ctx context.Context, q database.Querier, note model.Note) ([]model.Tag, error) {
	deduped := model.DedupeTags(note.Tags)
	if len(deduped) == 0 {
		return nil, nil
	}

	resolved := make([]model.Tag, 0, len(deduped))
	for _, tag := range deduped {
		tag.UserID = note.UserID
		saved, err := r.tags.SaveOrGetIn(ctx, q, tag)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, saved)
	}
	return resolved, nil
}

// insertNoteTags はjunction行を1文で一括挿入する。
func insertNoteTags(ctx context.Context, q database.Querier, noteID int64, tags []model.Tag) error {
	if len(tags) == 0 {
		return nil
	}
	query, args := buildJunctionInsert(noteID, tags)
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return convertError("insert note associations", err)
	}
	return nil
}

// buildJunctionInsert は可変行数のINSERT文とそのパラメータを構築する。
func buildJunctionInsert(noteID int64, tags []model.Tag) (string, []any) {
	var sb strings.Builder
	sb.WriteString("INSERT INTO note_tags (note_id, tag_id) VALUES ")

	args := make([]any, 0, len(tags)*2)
	for i, tag := range tags {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "($%d, $%d)", i*2+1, i*2+2)
		args = append(args, noteID, tag.ID)
	}
	return sb.String(), args
}

// loadNoteTags はJOINクエリでノートのタグ集合を復元する。
func loadNoteTags(ctx context.Context, q database.Querier, note *model.Note) error {
	rows, err := q.QueryContext(ctx,
		`SELECT t.id, t.name, t.user_id, t.color, t.created_at
		 FROM tags t
		 JOIN note_tags nt ON t.id = nt.tag_id
		 WHERE nt.note_id = $1`,
		note.ID,
	)
	if err != nil {
		return convertError("load note tags", err)
	}
	defer rows.Close()

	var tags []model.Tag
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return convertError("scan note tag", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return convertError("iterate note tags", err)
	}
	note.Tags = tags
	return nil
}

// nullableText は空文字列をNULLとして保存するための変換。
func nullableText(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// compile-time interface check
var _ NoteRepository = (*PostgresNoteRepo)(nil)
