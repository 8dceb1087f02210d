// Package security はアプリケーションのセキュリティ機能を提供する。
//
// TextSanitizer は上流APIから受け取ったテキストからHTMLを取り除く。
// 上流はプレーンテキストを返す想定だが、第三者のデータであるため
// bluemondayのStrictPolicyでタグをすべて除去してから扱う。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizer はテキストのサニタイズ機能のインターフェース。
type TextSanitizer interface {
	// SanitizeText はHTMLタグを除去したプレーンテキストを返す。
	// 戻り値はエスケープされていないため、描画側でエスケープすること。
	SanitizeText(raw string) string
}

// textSanitizer はTextSanitizerの実装。
// bluemonday.Policyはスレッドセーフなため共有してよい。
type textSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerの新しいインスタンスを生成する。
func NewTextSanitizer() *textSanitizer {
	return &textSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// SanitizeText はHTMLタグを除去し、エンティティを戻したテキストを返す。
// 前後の空白は取り除く。
func (s *textSanitizer) SanitizeText(raw string) string {
	if raw == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(raw)))
}
