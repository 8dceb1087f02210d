// Package derive は投稿IDから表示用メタデータを決定的に算出する純粋関数群を提供する。
//
// すべての関数は副作用を持たず、任意の整数IDに対して定義される（負のIDも
// 非負の剰余で表を引くため範囲外アクセスは起きない）。同じIDからは常に同じ値が得られる。
package derive

import (
	"fmt"
	"unicode/utf8"

	"github.com/hitoshi/carblog/internal/model"
)

// excerptLength は一覧カードに表示する本文抜粋の最大文字数。
const excerptLength = 100

var categoryTable = model.Categories()

// mod は除数の符号に関係なく [0, n) の値を返す剰余。
func mod(id, n int) int {
	r := id % n
	if r < 0 {
		r += n
	}
	return r
}

// CategoryFor は投稿IDに割り当てられるカテゴリを返す。
func CategoryFor(id int) model.Category {
	return categoryTable[mod(id, len(categoryTable))]
}

// RatingFor は投稿IDに割り当てられる評価（3.5, 4.0, 4.5 のいずれか）を返す。
func RatingFor(id int) float64 {
	return 3.5 + float64(mod(id, 3))*0.5
}

// LikesFor は投稿IDに割り当てられる初期いいね数（15〜114）を返す。
func LikesFor(id int) int {
	return 15 + mod(id*7, 100)
}

var (
	modelYears    = []string{"2024", "2023", "2025"}
	fuelTypes     = []string{"Electric", "Hybrid", "Gasoline", "Diesel"}
	topSpeeds     = []string{"120", "150", "180", "200", "250"}
	prices        = []string{"$25,000", "$35,000", "$45,000", "$55,000", "$75,000"}
	horsepowers   = []string{"150", "200", "300", "400", "500"}
	transmissions = []string{"Automatic", "Manual", "CVT", "Dual-Clutch"}
)

// SpecsFor は投稿IDに割り当てられる車両スペックを返す。
func SpecsFor(id int) model.CarSpecs {
	return model.CarSpecs{
		ModelYear:    modelYears[mod(id, len(modelYears))],
		FuelType:     fuelTypes[mod(id, len(fuelTypes))],
		TopSpeed:     topSpeeds[mod(id, len(topSpeeds))] + " mph",
		Price:        prices[mod(id, len(prices))],
		Horsepower:   horsepowers[mod(id, len(horsepowers))] + " HP",
		Transmission: transmissions[mod(id, len(transmissions))],
	}
}

// ImageSize は画像URLのサイズプリセット。
type ImageSize struct {
	Width  int
	Height int
}

var (
	// ImageSizeCard は一覧カード用のサイズ。
	ImageSizeCard = ImageSize{Width: 800, Height: 600}
	// ImageSizeHero は詳細ページのヒーロー画像用のサイズ。
	ImageSizeHero = ImageSize{Width: 1200, Height: 800}
)

// detailPhotos は詳細ページで使うPexelsの写真ID表。IDが1から始まるため (id-1) で引く。
var detailPhotos = []int{
	3802510, 1545743, 1149137, 1592384,
	1805053, 1335077, 1719648, 1007410,
	1545743, 1149137, 3802510, 1592384,
}

// listingPhotos は一覧カードで使う8件の写真ID表。
var listingPhotos = detailPhotos[:8]

// ImageURLFor は詳細ページ（ヒーロー画像と関連記事）の画像URLを返す。
func ImageURLFor(id int, size ImageSize) string {
	return photoURL(detailPhotos[mod(id-1, len(detailPhotos))], size)
}

// ListingImageURLFor は一覧カードの画像URLを返す。8件周期で写真が巡回する。
func ListingImageURLFor(id int) string {
	return photoURL(listingPhotos[mod(id-1, len(listingPhotos))], ImageSizeCard)
}

func photoURL(photo int, size ImageSize) string {
	return fmt.Sprintf(
		"https://images.pexels.com/photos/%d/pexels-photo-%d.jpeg?auto=compress&cs=tinysrgb&w=%d&h=%d&fit=crop",
		photo, photo, size.Width, size.Height,
	)
}

// Excerpt は本文を抜粋する。100文字を超える場合は切り詰めて "..." を付ける。
func Excerpt(body string) string {
	if utf8.RuneCountInString(body) <= excerptLength {
		return body
	}
	runes := []rune(body)
	return string(runes[:excerptLength]) + "..."
}

// Decorate は投稿の先頭limit件に著者と派生メタデータを付与する。
// limitが0以下の場合は全件を対象とする。
// 著者がユーザー一覧に存在しない場合は model.UnknownAuthor を使う。
// 戻り値の順序は入力の順序と同じ。
func Decorate(posts []model.Post, users []model.User, limit int) []model.DerivedPost {
	if limit > 0 && len(posts) > limit {
		posts = posts[:limit]
	}

	usersByID := make(map[int]model.User, len(users))
	for _, u := range users {
		usersByID[u.ID] = u
	}

	derived := make([]model.DerivedPost, 0, len(posts))
	for _, p := range posts {
		author, ok := usersByID[p.UserID]
		if !ok {
			author = model.UnknownAuthor()
		}
		derived = append(derived, DecoratePost(p, author))
	}
	return derived
}

// DecoratePost は1件の投稿に著者と派生メタデータを付与する。
func DecoratePost(p model.Post, author model.User) model.DerivedPost {
	return model.DerivedPost{
		Post:     p,
		Author:   author,
		Category: CategoryFor(p.ID).ID,
		Rating:   RatingFor(p.ID),
		Likes:    LikesFor(p.ID),
		ImageURL: ListingImageURLFor(p.ID),
		Excerpt:  Excerpt(p.Body),
	}
}
