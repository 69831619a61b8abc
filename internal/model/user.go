package model

import "time"

// User はサービス利用ユーザーを表す。
// 本体の永続化はこの層の範囲外で、notes/tagsの外部キー参照先としてのみ使われる。
// 呼び出し側は解決済みのユーザーIDを各操作に渡す。
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	FullName     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// WithEmail はメールアドレスを適用した新しいUserと変更有無を返す。
func (u User) WithEmail(email string) (User, bool) {
	if u.Email == email {
		return u, false
	}
	u.Email = email
	u.UpdatedAt = time.Now()
	return u, true
}

// WithFullName は表示名を適用した新しいUserと変更有無を返す。
func (u User) WithFullName(fullName string) (User, bool) {
	if u.FullName == fullName {
		return u, false
	}
	u.FullName = fullName
	u.UpdatedAt = time.Now()
	return u, true
}
