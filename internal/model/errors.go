package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string            // エラーコード
	Message  string            // エラーメッセージ
	Category string            // カテゴリ: validation, upstream, system
	Action   string            // ユーザー向け対処方法
	Fields   map[string]string // フィールド単位のバリデーションエラー（任意）
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeFetchFailed     = "FETCH_FAILED"
	ErrCodePostNotFound    = "POST_NOT_FOUND"
	ErrCodeInvalidPostID   = "INVALID_POST_ID"
	ErrCodeInvalidPage     = "INVALID_PAGE"
	ErrCodeInvalidCategory = "INVALID_CATEGORY"
	ErrCodeInvalidRequest  = "INVALID_REQUEST"
	ErrCodeValidation      = "VALIDATION_FAILED"
)

// FetchFailedMessage は上流APIの取得失敗時にユーザーへ表示する唯一のメッセージ。
const FetchFailedMessage = "Unable to fetch car blogs. Please try again later."

// NewFetchFailedError は上流APIの取得失敗エラーを生成する。
// 原因に関わらずメッセージは固定で、詳細はログにのみ残す。
func NewFetchFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeFetchFailed,
		Message:  FetchFailedMessage,
		Category: "upstream",
		Action:   "Please try again later.",
	}
}

// NewPostNotFoundError は記事未検出エラーを生成する。
func NewPostNotFoundError(postID int) *APIError {
	return &APIError{
		Code:     ErrCodePostNotFound,
		Message:  fmt.Sprintf("Post not found: %d", postID),
		Category: "upstream",
		Action:   "The post you're looking for doesn't exist. Go back to the blog list.",
	}
}

// NewInvalidPostIDError は記事IDが不正な場合のエラーを生成する。
func NewInvalidPostIDError(raw string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidPostID,
		Message:  fmt.Sprintf("Invalid post id: %q", raw),
		Category: "validation",
		Action:   "Specify a positive integer post id.",
	}
}

// NewInvalidPageError はページ番号が不正な場合のエラーを生成する。
func NewInvalidPageError(raw string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidPage,
		Message:  fmt.Sprintf("Invalid page: %q", raw),
		Category: "validation",
		Action:   "Specify a page number of 1 or greater.",
	}
}

// NewInvalidCategoryError はカテゴリセレクタが不正な場合のエラーを生成する。
func NewInvalidCategoryError(selector string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCategory,
		Message:  fmt.Sprintf("Invalid category: %q", selector),
		Category: "validation",
		Action:   "Use one of: all, electric, suv, luxury.",
	}
}

// NewInvalidRequestError はリクエストボディが解析できない場合のエラーを生成する。
func NewInvalidRequestError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  "Failed to parse request body.",
		Category: "validation",
		Action:   "Send a valid JSON body.",
	}
}

// NewValidationError はフィールド単位のバリデーションエラーを生成する。
func NewValidationError(fields map[string]string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  "Some fields are invalid.",
		Category: "validation",
		Action:   "Fix the highlighted fields and submit again.",
		Fields:   fields,
	}
}
