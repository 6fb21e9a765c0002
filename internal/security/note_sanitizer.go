// Package security はアプリケーションのセキュリティ機能を提供する。
//
// NoteSanitizerService はトレーニング記録の備考テキストをサニタイズし、
// 保存データへのHTML混入やXSS攻撃からクライアントを保護する。
// bluemondayライブラリの厳格ポリシーで、全てのタグを除去して
// プレーンテキストのみを通過させる。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// maxNoteLength は備考テキストの最大長（rune数）。
// 超過分は切り詰められる。
const maxNoteLength = 500

// NoteSanitizerService は備考テキストのサニタイズ機能のインターフェースを定義する。
// トレーニング記録の保存前に使用される。
type NoteSanitizerService interface {
	// Sanitize は備考テキストをサニタイズしてプレーンテキストを返す。
	// HTMLタグは全て除去され、前後の空白はトリムされる。
	// 最大長を超える入力は切り詰められる。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(raw string) string
}

// noteSanitizer はNoteSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type noteSanitizer struct {
	policy *bluemonday.Policy
}

// NewNoteSanitizer はNoteSanitizerServiceの新しいインスタンスを生成する。
// bluemondayのStrictPolicy（全タグ除去）を使用する。
func NewNoteSanitizer() *noteSanitizer {
	return &noteSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize は備考テキストをサニタイズしてプレーンテキストを返す。
func (s *noteSanitizer) Sanitize(raw string) string {
	if raw == "" {
		return ""
	}

	// タグ除去後、bluemondayがエスケープしたエンティティを元に戻す。
	// 保存するのはプレーンテキストであり、HTMLとして再解釈されることはない。
	cleaned := html.UnescapeString(s.policy.Sanitize(raw))
	cleaned = strings.TrimSpace(cleaned)

	if runes := []rune(cleaned); len(runes) > maxNoteLength {
		cleaned = string(runes[:maxNoteLength])
	}

	return cleaned
}
