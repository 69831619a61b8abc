package database

import (
	"strings"
	"testing"
)

// 埋め込みスキーマが5テーブル定義とシード投入の6文に分割されることを検証
func TestSchemaStatements_Count(t *testing.T) {
	stmts := SchemaStatements()
	if len(stmts) != 6 {
		t.Fatalf("len = %d, want 6 statements", len(stmts))
	}
}

// 全テーブルがCREATE TABLE IF NOT EXISTSで定義されることを検証
func TestSchemaStatements_TablesAreIdempotent(t *testing.T) {
	tables := []string{"users", "notes", "tags", "note_tags", "reminders"}
	stmts := SchemaStatements()

	for _, table := range tables {
		found := false
		for _, stmt := range stmts {
			if strings.Contains(stmt, "CREATE TABLE IF NOT EXISTS "+table) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("missing idempotent CREATE for table %q", table)
		}
	}
}

// タグの一意制約が(name, user_id)で定義されることを検証
func TestSchemaStatements_TagUniqueConstraint(t *testing.T) {
	var tagStmt string
	for _, stmt := range SchemaStatements() {
		if strings.Contains(stmt, "CREATE TABLE IF NOT EXISTS tags") {
			tagStmt = stmt
			break
		}
	}
	if tagStmt == "" {
		t.Fatal("tags table definition not found")
	}

	if !strings.Contains(tagStmt, "CONSTRAINT unique_tag_per_user UNIQUE (name, user_id)") {
		t.Error("tags table should carry unique_tag_per_user on (name, user_id)")
	}
	if !strings.Contains(tagStmt, "DEFAULT '#607D8B'") {
		t.Error("tags table should default color to #607D8B")
	}
}

// junctionテーブルが複合主キーとカスケード削除を持つことを検証
func TestSchemaStatements_NoteTagsJunction(t *testing.T) {
	var stmt string
	for _, s := range SchemaStatements() {
		if strings.Contains(s, "CREATE TABLE IF NOT EXISTS note_tags") {
			stmt = s
			break
		}
	}
	if stmt == "" {
		t.Fatal("note_tags table definition not found")
	}

	if !strings.Contains(stmt, "PRIMARY KEY (note_id, tag_id)") {
		t.Error("note_tags should use composite primary key")
	}
	if strings.Count(stmt, "ON DELETE CASCADE") != 2 {
		t.Error("note_tags should cascade on both foreign keys")
	}
}

// シードユーザーの投入が冪等（ON CONFLICT DO NOTHING）であることを検証
func TestSchemaStatements_SeedUserIdempotent(t *testing.T) {
	var seed string
	for _, stmt := range SchemaStatements() {
		if strings.Contains(stmt, "INSERT INTO users") {
			seed = stmt
			break
		}
	}
	if seed == "" {
		t.Fatal("seed user statement not found")
	}

	if !strings.Contains(seed, "ON CONFLICT (username) DO NOTHING") {
		t.Error("seed insert should be idempotent via ON CONFLICT (username) DO NOTHING")
	}
	if !strings.Contains(seed, "'testuser'") {
		t.Error("seed insert should create the development user 'testuser'")
	}
}

// シードがid列を明示指定しないことを検証。
// SERIAL列へ明示IDで挿入するとusers_id_seqが進まず、
// 以降のID自動採番が既存行と衝突する。
func TestSchemaStatements_SeedDoesNotBypassSequence(t *testing.T) {
	for _, stmt := range SchemaStatements() {
		if !strings.Contains(stmt, "INSERT INTO users") {
			continue
		}
		if strings.Contains(stmt, "(id,") || strings.Contains(stmt, "(id ") {
			t.Errorf("seed insert should not specify an explicit id: %s", stmt)
		}
		return
	}
	t.Fatal("seed user statement not found")
}

// スキーマにバージョン管理テーブルが含まれないことを検証
func TestSchemaStatements_NoMigrationTable(t *testing.T) {
	for _, stmt := range SchemaStatements() {
		if strings.Contains(stmt, "schema_migrations") || strings.Contains(stmt, "schema_version") {
			t.Errorf("schema should not track versions, found: %s", stmt)
		}
	}
}
