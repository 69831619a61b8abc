package model

import "testing"

// WithEmail・WithFullNameの変更検出を検証
func TestUser_WithFieldOps(t *testing.T) {
	u := User{ID: 1, Username: "testuser", Email: "old@example.com", FullName: "Old Name"}

	if _, changed := u.WithEmail("old@example.com"); changed {
		t.Error("WithEmail: expected changed=false for identical email")
	}
	next, changed := u.WithEmail("new@example.com")
	if !changed || next.Email != "new@example.com" {
		t.Errorf("WithEmail: changed=%v Email=%q", changed, next.Email)
	}
	if next.UpdatedAt.IsZero() {
		t.Error("WithEmail should stamp UpdatedAt on change")
	}

	if _, changed := u.WithFullName("Old Name"); changed {
		t.Error("WithFullName: expected changed=false for identical name")
	}
	if next, changed := u.WithFullName("New Name"); !changed || next.FullName != "New Name" {
		t.Errorf("WithFullName: changed=%v FullName=%q", changed, next.FullName)
	}
}
