package catalog

import "github.com/hitoshi/carblog/internal/model"

// DefaultPageSize は1ページあたりの投稿数（デフォルト）。
const DefaultPageSize = 6

// Page はページ分割された一覧の1ページ分。
type Page struct {
	Items       []model.DerivedPost `json:"items"`
	CurrentPage int                 `json:"currentPage"`
	TotalPages  int                 `json:"totalPages"`
	TotalCount  int                 `json:"totalCount"`
	PageSize    int                 `json:"pageSize"`
}

// HasNext は次のページが存在するかを返す。
func (p Page) HasNext() bool {
	return p.CurrentPage < p.TotalPages
}

// HasPrev は前のページが存在するかを返す。
func (p Page) HasPrev() bool {
	return p.CurrentPage > 1 && p.TotalPages > 0
}

// TotalPages は n 件を pageSize 件ずつ分割したときのページ数 ceil(n/pageSize) を返す。
func TotalPages(n, pageSize int) int {
	if n <= 0 || pageSize <= 0 {
		return 0
	}
	return (n + pageSize - 1) / pageSize
}

// Paginate は1始まりのページ番号で投稿一覧を切り出す。
// pageSizeが0以下の場合は DefaultPageSize を使う。
// 範囲外のページでは Items が空になる（エラーにするかは呼び出し側が判断する）。
func Paginate(posts []model.DerivedPost, page, pageSize int) Page {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	result := Page{
		Items:       []model.DerivedPost{},
		CurrentPage: page,
		TotalPages:  TotalPages(len(posts), pageSize),
		TotalCount:  len(posts),
		PageSize:    pageSize,
	}

	// 乗算より先に範囲を確認する（巨大なページ番号でのオーバーフロー防止）
	if page < 1 || page > result.TotalPages {
		return result
	}

	start := (page - 1) * pageSize
	end := min(start+pageSize, len(posts))

	result.Items = append(result.Items, posts[start:end]...)
	return result
}
