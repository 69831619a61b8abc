package model

import (
	"testing"
	"time"
)

// NewNoteが未永続（ID=0）のNoteを生成し、両タイムスタンプを設定することを検証
func TestNewNote_Initializes(t *testing.T) {
	n := NewNote(1, "buy milk", "2 liters")

	if n.ID != 0 {
		t.Errorf("ID = %d, want 0 before first save", n.ID)
	}
	if n.UserID != 1 {
		t.Errorf("UserID = %d, want 1", n.UserID)
	}
	if n.Title != "buy milk" {
		t.Errorf("Title = %q, want %q", n.Title, "buy milk")
	}
	if n.CreatedAt.IsZero() || n.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
	if !n.CreatedAt.Equal(n.UpdatedAt) {
		t.Error("expected CreatedAt and UpdatedAt to be equal on creation")
	}
}

// WithTitleが値の変化時のみchanged=trueを返し、UpdatedAtを進めることを検証
func TestNote_WithTitle_ChangeDetection(t *testing.T) {
	n := NewNote(1, "old", "")
	before := n.UpdatedAt

	same, changed := n.WithTitle("old")
	if changed {
		t.Error("expected changed=false for identical title")
	}
	if !same.UpdatedAt.Equal(before) {
		t.Error("UpdatedAt should not move when nothing changed")
	}

	next, changed := n.WithTitle("new")
	if !changed {
		t.Error("expected changed=true for new title")
	}
	if next.Title != "new" {
		t.Errorf("Title = %q, want %q", next.Title, "new")
	}
	if next.UpdatedAt.Before(before) {
		t.Error("UpdatedAt should advance on change")
	}
	// レシーバが変更されていないこと
	if n.Title != "old" {
		t.Errorf("receiver mutated: Title = %q", n.Title)
	}
}

// WithContent・WithPinned・WithArchivedの変更検出を検証
func TestNote_WithFieldOps_ChangeDetection(t *testing.T) {
	n := NewNote(1, "t", "c")

	if _, changed := n.WithContent("c"); changed {
		t.Error("WithContent: expected changed=false for identical content")
	}
	if next, changed := n.WithContent("c2"); !changed || next.Content != "c2" {
		t.Errorf("WithContent: changed=%v Content=%q", changed, next.Content)
	}

	if _, changed := n.WithPinned(false); changed {
		t.Error("WithPinned: expected changed=false for identical flag")
	}
	if next, changed := n.WithPinned(true); !changed || !next.IsPinned {
		t.Errorf("WithPinned: changed=%v IsPinned=%v", changed, next.IsPinned)
	}

	if _, changed := n.WithArchived(false); changed {
		t.Error("WithArchived: expected changed=false for identical flag")
	}
	if next, changed := n.WithArchived(true); !changed || !next.IsArchived {
		t.Errorf("WithArchived: changed=%v IsArchived=%v", changed, next.IsArchived)
	}
}

// WithTagsが集合として等しい場合にchanged=falseを返すことを検証
func TestNote_WithTags_SetSemantics(t *testing.T) {
	n := NewNote(1, "t", "")
	n.Tags = []Tag{{Name: "work", UserID: 1}, {Name: "home", UserID: 1}}

	// 順序が違っても集合として等しければ変更なし
	if _, changed := n.WithTags([]Tag{{Name: "home", UserID: 1}, {Name: "work", UserID: 1}}); changed {
		t.Error("expected changed=false for same tag set in different order")
	}

	// 大文字小文字の違いも同一視される
	if _, changed := n.WithTags([]Tag{{Name: "WORK", UserID: 1}, {Name: "Home", UserID: 1}}); changed {
		t.Error("expected changed=false for case-insensitive same set")
	}

	next, changed := n.WithTags([]Tag{{Name: "urgent", UserID: 1}})
	if !changed {
		t.Error("expected changed=true for different tag set")
	}
	if len(next.Tags) != 1 || next.Tags[0].Name != "urgent" {
		t.Errorf("Tags = %v, want single 'urgent'", next.Tags)
	}
}

// HasTagが正規化済みキーで比較することを検証
func TestNote_HasTag_Normalized(t *testing.T) {
	n := Note{Tags: []Tag{{Name: "Work"}}}

	if !n.HasTag("work") {
		t.Error("expected HasTag to match case-insensitively")
	}
	if !n.HasTag("  WORK  ") {
		t.Error("expected HasTag to match after trimming")
	}
	if n.HasTag("home") {
		t.Error("expected HasTag=false for absent tag")
	}
}

// DedupeTagsが最初の出現を残し、空名を落とすことを検証
func TestDedupeTags(t *testing.T) {
	in := []Tag{
		{Name: "work", Color: "#FF0000"},
		{Name: "WORK", Color: "#00FF00"},
		{Name: ""},
		{Name: "  "},
		{Name: "home"},
	}

	out := DedupeTags(in)
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2", len(out))
	}
	// 最初の出現が勝つ
	if out[0].Name != "work" || out[0].Color != "#FF0000" {
		t.Errorf("out[0] = %+v, want first occurrence of 'work'", out[0])
	}
	if out[1].Name != "home" {
		t.Errorf("out[1].Name = %q, want %q", out[1].Name, "home")
	}
}

// DedupeTagsが空入力と全滅入力でnilを返すことを検証
func TestDedupeTags_Empty(t *testing.T) {
	if out := DedupeTags(nil); out != nil {
		t.Errorf("DedupeTags(nil) = %v, want nil", out)
	}
	if out := DedupeTags([]Tag{{Name: ""}, {Name: "   "}}); out != nil {
		t.Errorf("DedupeTags(blank names) = %v, want nil", out)
	}
}

// UpdatedAtの単調性: 連続した変更で時刻が巻き戻らないこと
func TestNote_UpdatedAt_Monotonic(t *testing.T) {
	n := NewNote(1, "a", "")
	first := n.UpdatedAt

	time.Sleep(time.Millisecond)
	n2, _ := n.WithTitle("b")
	if n2.UpdatedAt.Before(first) {
		t.Error("UpdatedAt moved backwards")
	}
}
