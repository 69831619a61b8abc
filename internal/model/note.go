package model

import "time"

// Note はユーザーが作成するノートを表す。
// Tagsは順序を持たない集合として扱い、(name, user_id)で一意化される。
// リポジトリから返るNoteはストアから切り離されたコピーであり、
// 変更を永続化するには再度保存する必要がある。
type Note struct {
	ID         int64
	UserID     int64
	Title      string
	Content    string
	IsPinned   bool
	IsArchived bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Tags       []Tag
}

// NewNote は未永続のNoteを生成する。IDは初回保存時にストアが採番する。
func NewNote(userID int64, title, content string) Note {
	now := time.Now()
	return Note{
		UserID:    userID,
		Title:     title,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// WithTitle はタイトルを適用した新しいNoteと変更有無を返す。
// 変更があった場合のみUpdatedAtを更新する。レシーバは変更しない。
func (n Note) WithTitle(title string) (Note, bool) {
	if n.Title == title {
		return n, false
	}
	n.Title = title
	n.UpdatedAt = time.Now()
	return n, true
}

// WithContent は本文を適用した新しいNoteと変更有無を返す。
func (n Note) WithContent(content string) (Note, bool) {
	if n.Content == content {
		return n, false
	}
	n.Content = content
	n.UpdatedAt = time.Now()
	return n, true
}

// WithPinned はピン留めフラグを適用した新しいNoteと変更有無を返す。
func (n Note) WithPinned(pinned bool) (Note, bool) {
	if n.IsPinned == pinned {
		return n, false
	}
	n.IsPinned = pinned
	n.UpdatedAt = time.Now()
	return n, true
}

// WithArchived はアーカイブフラグを適用した新しいNoteと変更有無を返す。
func (n Note) WithArchived(archived bool) (Note, bool) {
	if n.IsArchived == archived {
		return n, false
	}
	n.IsArchived = archived
	n.UpdatedAt = time.Now()
	return n, true
}

// WithTags はタグ集合を置き換えた新しいNoteと変更有無を返す。
// 入力は正規化キーで一意化され、集合として等しい場合は変更なしとみなす。
func (n Note) WithTags(tags []Tag) (Note, bool) {
	next := DedupeTags(tags)
	if tagSetEqual(n.Tags, next) {
		return n, false
	}
	n.Tags = next
	n.UpdatedAt = time.Now()
	return n, true
}

// HasTag は指定名のタグを保持しているかどうかを返す。名前は正規化して比較する。
func (n Note) HasTag(name string) bool {
	key := Tag{Name: name}.Key()
	for _, t := range n.Tags {
		if t.Key() == key {
			return true
		}
	}
	return false
}

// DedupeTags はタグ列を正規化キーで一意化して返す。最初の出現が勝つ。
// 空名のタグは集合に含めない。
func DedupeTags(tags []Tag) []Tag {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]Tag, 0, len(tags))
	for _, t := range tags {
		key := t.Key()
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func tagSetEqual(a, b []Tag) bool {
	if len(a) != len(b) {
		return false
	}
	keys := make(map[string]struct{}, len(a))
	for _, t := range a {
		keys[t.Key()] = struct{}{}
	}
	for _, t := range b {
		if _, ok := keys[t.Key()]; !ok {
			return false
		}
	}
	return true
}
