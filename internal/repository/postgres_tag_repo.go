package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/HasanBasriTaskin/noteapp/internal/database"
	"github.com/HasanBasriTaskin/noteapp/internal/model"
)

// PostgresTagRepo はPostgreSQLを使用したタグリポジトリ。
// 各操作はStoreから接続を取得し、終了時に必ず返却する。
type PostgresTagRepo struct {
	store *database.Store
}

// NewPostgresTagRepo はPostgresTagRepoを生成する。
func NewPostgresTagRepo(store *database.Store) *PostgresTagRepo {
	return &PostgresTagRepo{store: store}
}

// SaveOrGet は(name, user_id)で重複排除しながらタグを保存する。
func (r *PostgresTagRepo) SaveOrGet(ctx context.Context, tag model.Tag) (model.Tag, error) {
	conn, err := r.store.Acquire(ctx)
	if err != nil {
		return model.Tag{}, err
	}
	defer r.store.Release(conn)

	return r.SaveOrGetIn(ctx, conn, tag)
}

// SaveOrGetIn はSaveOrGetの本体。呼び出し側が保持する接続上で実行する。
// 既存行が見つかった場合は提案されたcolor等を適用せずそのまま返す。
// 挿入が(name, user_id)の一意制約に弾かれた場合は、同時保存のレースに
// 負けたものとして再検索を1回だけ行い、それでも見つからなければ
// constraint_violationを返す。
func (r *PostgresTagRepo) SaveOrGetIn(ctx context.Context, q database.Querier, tag model.Tag) (model.Tag, error) {
	existing, err := findTagByNameAndUser(ctx, q, tag.Name, tag.UserID)
	if err == nil {
		return *existing, nil
	}
	if !model.IsNotFound(err) {
		return model.Tag{}, err
	}

	if tag.Color == "" {
		tag.Color = model.DefaultTagColor
	}
	if tag.CreatedAt.IsZero() {
		tag.CreatedAt = time.Now()
	}

	err = q.QueryRowContext(ctx,
		`INSERT INTO tags (name, user_id, color, created_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		tag.Name, tag.UserID, tag.Color, tag.CreatedAt,
	).Scan(&tag.ID)
	if err == nil {
		return tag, nil
	}
	if !isUniqueViolation(err) {
		return model.Tag{}, convertError("insert tag", err)
	}

	// 同時挿入レース: もう一方の挿入がコミット済みのはずなので再検索する。
	existing, retryErr := findTagByNameAndUser(ctx, q, tag.Name, tag.UserID)
	if retryErr != nil {
		return model.Tag{}, model.NewConstraintViolationError(
			fmt.Sprintf("tag (%s, %d) violates uniqueness and retry lookup failed", tag.Name, tag.UserID), err)
	}
	return *existing, nil
}

// Update は(id, user_id)で一致する行のnameとcolorを更新する。
func (r *PostgresTagRepo) Update(ctx context.Context, tag model.Tag) error {
	conn, err := r.store.Acquire(ctx)
	if err != nil {
		return err
	}
	defer r.store.Release(conn)

	res, err := conn.ExecContext(ctx,
		`UPDATE tags SET name = $1, color = $2 WHERE id = $3 AND user_id = $4`,
		tag.Name, tag.Color, tag.ID, tag.UserID,
	)
	if err != nil {
		return convertError("update tag", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return convertError("update tag rows affected", err)
	}
	if rows == 0 {
		return model.NewNotFoundError(fmt.Sprintf("tag %d not found for user %d", tag.ID, tag.UserID))
	}
	return nil
}

// Delete はタグと、タグを参照する全junction行を1トランザクションで削除する。
// 所有者不一致のタグに対する削除はjunction削除も含めて取り消される。
func (r *PostgresTagRepo) Delete(ctx context.Context, tagID, userID int64) error {
	conn, err := r.store.Acquire(ctx)
	if err != nil {
		return err
	}
	defer r.store.Release(conn)

	return database.WithTx(ctx, conn, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM note_tags WHERE tag_id = $1`, tagID,
		); err != nil {
			return convertError("delete tag associations", err)
		}

		res, err := tx.ExecContext(ctx,
			`DELETE FROM tags WHERE id = $1 AND user_id = $2`, tagID, userID,
		)
		if err != nil {
			return convertError("delete tag", err)
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return convertError("delete tag rows affected", err)
		}
		if rows == 0 {
			return model.NewNotFoundError(fmt.Sprintf("tag %d not found for user %d", tagID, userID))
		}
		return nil
	})
}

// FindByID は(id, user_id)で一致するタグを返す。
func (r *PostgresTagRepo) FindByID(ctx context.Context, tagID, userID int64) (*model.Tag, error) {
	conn, err := r.store.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer r.store.Release(conn)

	row := conn.QueryRowContext(ctx,
		`SELECT id, name, user_id, color, created_at
		 FROM tags WHERE id = $1 AND user_id = $2`,
		tagID, userID,
	)
	tag, err := scanTag(row)
	if err == sql.ErrNoRows {
		return nil, model.NewNotFoundError(fmt.Sprintf("tag %d not found for user %d", tagID, userID))
	}
	if err != nil {
		return nil, convertError("find tag by id", err)
	}
	return &tag, nil
}

// FindByNameAndUser は(name, user_id)で一致するタグを返す。
func (r *PostgresTagRepo) FindByNameAndUser(ctx context.Context, name string, userID int64) (*model.Tag, error) {
	conn, err := r.store.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer r.store.Release(conn)

	return findTagByNameAndUser(ctx, conn, name, userID)
}

// ListByUser はユーザーの全タグを名前昇順で返す。
func (r *PostgresTagRepo) ListByUser(ctx context.Context, userID int64) ([]model.Tag, error) {
	conn, err := r.store.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer r.store.Release(conn)

	rows, err := conn.QueryContext(ctx,
		`SELECT id, name, user_id, color, created_at
		 FROM tags WHERE user_id = $1 ORDER BY name ASC`,
		userID,
	)
	if err != nil {
		return nil, convertError("list tags", err)
	}
	defer rows.Close()

	var tags []model.Tag
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, convertError("scan tag", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, convertError("iterate tags", err)
	}
	return tags, nil
}

// findTagByNameAndUser は任意のQuerier上で(name, user_id)検索を行う共通ヘルパー。
func findTagByNameAndUser(ctx context.Context, q database.Querier, name string, userID int64) (*model.Tag, error) {
	row := q.QueryRowContext(ctx,
		`SELECT id, name, user_id, color, created_at
		 FROM tags WHERE name = $1 AND user_id = $2`,
		name, userID,
	)
	tag, err := scanTag(row)
	if err == sql.ErrNoRows {
		return nil, model.NewNotFoundError(fmt.Sprintf("tag %q not found for user %d", name, userID))
	}
	if err != nil {
		return nil, convertError("find tag by name", err)
	}
	return &tag, nil
}

// compile-time interface check
var _ TagRepository = (*PostgresTagRepo)(nil)
