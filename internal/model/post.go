// Package model はドメインモデルを定義する。
package model

// Post は上流API（JSONPlaceholder）から取得した投稿を表す。
// フィールドは上流のレスポンスをそのまま保持する。
type Post struct {
	ID     int    `json:"id"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	UserID int    `json:"userId"`
}

// User は投稿の著者を表す。
type User struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UnknownAuthor はユーザー一覧に著者が存在しない場合の代替著者を返す。
func UnknownAuthor() User {
	return User{ID: 0, Name: "Unknown", Email: ""}
}

// DerivedPost は投稿に著者とID由来の表示用メタデータを付与したもの。
// Category, Rating, Likes, ImageURL はすべて投稿IDの純粋関数で算出される。
type DerivedPost struct {
	Post
	Author   User    `json:"author"`
	Category string  `json:"category"` // カテゴリID（electric, suv, luxury）
	Rating   float64 `json:"rating"`
	Likes    int     `json:"likes"`
	ImageURL string  `json:"imageUrl"`
	Excerpt  string  `json:"excerpt"`
}

// CarSpecs は詳細ページに表示する車両スペック。
type CarSpecs struct {
	ModelYear    string `json:"modelYear"`
	FuelType     string `json:"fuelType"`
	TopSpeed     string `json:"topSpeed"`
	Price        string `json:"price"`
	Horsepower   string `json:"horsepower"`
	Transmission string `json:"transmission"`
}

// RelatedPost は詳細ページの関連記事リンク。
type RelatedPost struct {
	ID       int    `json:"id"`
	ImageURL string `json:"imageUrl"`
}

// PostDetail は記事詳細の表示に必要な情報をまとめたもの。
type PostDetail struct {
	DerivedPost
	CategoryName string        `json:"categoryName"`
	Specs        CarSpecs      `json:"specs"`
	Related      []RelatedPost `json:"related"`
}
