package model

// CategoryAll はカテゴリで絞り込まないことを示すセレクタ値。
const CategoryAll = "all"

// Category は記事カテゴリを表す。
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// categories はカテゴリ表。並び順は投稿IDからの割り当てに使うため変更しないこと。
var categories = []Category{
	{ID: "electric", Name: "Electric", Color: "bg-green-600"},
	{ID: "suv", Name: "SUV", Color: "bg-blue-600"},
	{ID: "luxury", Name: "Luxury", Color: "bg-purple-600"},
}

// Categories はカテゴリ表のコピーを返す。
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// FindCategory はIDに一致するカテゴリを返す。
func FindCategory(id string) (Category, bool) {
	for _, c := range categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// IsValidCategorySelector はセレクタ値が all または既知のカテゴリIDかを判定する。
func IsValidCategorySelector(selector string) bool {
	if selector == CategoryAll {
		return true
	}
	_, ok := FindCategory(selector)
	return ok
}
