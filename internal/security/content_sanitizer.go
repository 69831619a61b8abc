// Package security はアプリケーションのセキュリティ機能を提供する。
//
// ContentSanitizer はノート本文のHTMLコンテンツをサニタイズし、
// 保存したコンテンツを後で表示するクライアントをXSSから保護する。
// bluemondayの許可リストベースのポリシーで、安全なタグと属性のみを通過させる。
package security

import (
	"net/url"

	"github.com/microcosm-cc/bluemonday"
)

// ContentSanitizer はノート本文のサニタイズ機能のインターフェース。
// ノート保存・更新の前にサービス層から使用される。
type ContentSanitizer interface {
	// Sanitize はHTMLコンテンツをサニタイズして安全なテキストを返す。
	// プレーンテキストの本文はそのまま通過する。
	// 空文字列の入力には空文字列を返し、同一入力には常に同一出力を返す（冪等）。
	Sanitize(content string) string
}

// noteSanitizer はContentSanitizerの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type noteSanitizer struct {
	policy *bluemonday.Policy
}

// NewContentSanitizer はノート本文用のContentSanitizerを生成する。
// ポリシーの内容:
//   - 許可タグ: p, br, ul, ol, li, blockquote, pre, code, strong, em
//   - script, iframe, style および全てのon*イベント属性は除去される
//   - aタグはhref属性のみ許可し、rel="noreferrer noopener"を強制付与する
//   - imgタグのsrc属性はhttpsスキームのみ許可する
func NewContentSanitizer() ContentSanitizer {
	p := bluemonday.NewPolicy()

	p.AllowElements(
		"p", "br", "ul", "ol", "li",
		"blockquote", "pre", "code",
		"strong", "em",
	)

	p.AllowAttrs("href").OnElements("a")
	p.AllowRelativeURLs(false)
	p.RequireNoReferrerOnLinks(true)

	p.AllowAttrs("src", "alt").OnElements("img")
	p.AllowURLSchemeWithCustomPolicy("https", func(u *url.URL) bool {
		return true
	})

	return &noteSanitizer{policy: p}
}

// Sanitize はノート本文をサニタイズして返す。
func (s *noteSanitizer) Sanitize(content string) string {
	return s.policy.Sanitize(content)
}
