// Package model はドメインモデルを定義する。
package model

import (
	"strings"
	"time"
)

// DefaultTagColor はcolor未指定でタグを作成したときの既定色。
const DefaultTagColor = "#607D8B"

// Tag はノートに付与するユーザー定義のタグを表す。
// (Name, UserID) の組はユーザーごとに一意で、同名の保存は既存行に解決される。
type Tag struct {
	ID        int64
	Name      string
	UserID    int64
	Color     string
	CreatedAt time.Time
}

// NewTag は新しいTagを生成する。colorが空の場合は既定色を適用する。
func NewTag(name string, userID int64, color string) Tag {
	if color == "" {
		color = DefaultTagColor
	}
	return Tag{
		Name:      strings.TrimSpace(name),
		UserID:    userID,
		Color:     color,
		CreatedAt: time.Now(),
	}
}

// Key はユーザー内でタグを同一視するための正規化済みキーを返す。
func (t Tag) Key() string {
	return strings.ToLower(strings.TrimSpace(t.Name))
}
