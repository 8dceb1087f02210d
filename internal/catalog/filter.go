// Package catalog は派生済み投稿一覧の検索・カテゴリ絞り込み・ページ分割を提供する。
// すべての関数は入力を変更しない純粋関数。
package catalog

import (
	"fmt"
	"strings"

	"github.com/hitoshi/carblog/internal/model"
)

// Query は一覧の絞り込み条件。
type Query struct {
	Search   string // タイトルまたはカテゴリ名に対する部分一致（大文字小文字を区別しない）
	Category string // カテゴリID。空または "all" は絞り込みなし
}

// Filter は検索文字列とカテゴリで投稿を絞り込む。
// 検索文字列が空でなければ、タイトルまたはカテゴリ名に部分一致する投稿を残す。
// 続いてカテゴリが "all" 以外ならカテゴリIDが完全一致する投稿を残す。
// 戻り値は新しいスライスで、元の相対順序を保つ。
func Filter(posts []model.DerivedPost, q Query) []model.DerivedPost {
	search := strings.ToLower(q.Search)
	filtered := make([]model.DerivedPost, 0, len(posts))

	for _, p := range posts {
		if search != "" && !matchesSearch(p, search) {
			continue
		}
		if q.Category != "" && q.Category != model.CategoryAll && p.Category != q.Category {
			continue
		}
		filtered = append(filtered, p)
	}
	return filtered
}

// matchesSearch は小文字化済みの検索文字列がタイトルかカテゴリ名に含まれるかを判定する。
func matchesSearch(p model.DerivedPost, search string) bool {
	if strings.Contains(strings.ToLower(p.Title), search) {
		return true
	}
	c, ok := model.FindCategory(p.Category)
	return ok && strings.Contains(strings.ToLower(c.Name), search)
}

// Summary は絞り込み結果の件数表示文を返す。
// 例: `3 posts found for "tesla"`
func Summary(count int, search string) string {
	noun := "posts"
	if count == 1 {
		noun = "post"
	}
	s := fmt.Sprintf("%d %s found", count, noun)
	if search != "" {
		s += fmt.Sprintf(" for %q", search)
	}
	return s
}
