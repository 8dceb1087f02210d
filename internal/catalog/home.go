package catalog

import "github.com/hitoshi/carblog/internal/model"

const (
	trendingCount = 4
	newTechCount  = 4
)

// HomeSections はトップページの構成。
type HomeSections struct {
	Featured *model.DerivedPost  `json:"featured"`
	Trending []model.DerivedPost `json:"trending"`
	NewTech  []model.DerivedPost `json:"newTech"`
}

// BuildHomeSections はトップページの各セクションを組み立てる。
// Featured は絞り込み前一覧の先頭、Trending はその次の4件、
// NewTech は現在のページの先頭4件。
func BuildHomeSections(all []model.DerivedPost, page Page) HomeSections {
	sections := HomeSections{
		Trending: []model.DerivedPost{},
		NewTech:  []model.DerivedPost{},
	}

	if len(all) > 0 {
		featured := all[0]
		sections.Featured = &featured
	}
	if len(all) > 1 {
		end := min(1+trendingCount, len(all))
		sections.Trending = append(sections.Trending, all[1:end]...)
	}

	end := min(newTechCount, len(page.Items))
	sections.NewTech = append(sections.NewTech, page.Items[:end]...)

	return sections
}
