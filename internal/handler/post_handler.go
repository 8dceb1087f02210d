package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/carblog/internal/blog"
	"github.com/hitoshi/carblog/internal/catalog"
	"github.com/hitoshi/carblog/internal/middleware"
	"github.com/hitoshi/carblog/internal/model"
)

// BlogServiceInterface は投稿ハンドラーが必要とするサービスインターフェース。
type BlogServiceInterface interface {
	// Browse は一覧を取得し、絞り込みとページ分割を行った結果を返す。
	Browse(ctx context.Context, view string, limit int, q catalog.Query, page, pageSize int) (*blog.BrowseResult, error)
	// Post は記事詳細を返す。
	Post(ctx context.Context, id int) (*model.PostDetail, error)
}

// PostHandlerConfig は一覧表示の件数設定。
type PostHandlerConfig struct {
	PostsPerPage  int
	HomePostLimit int
	BlogPostLimit int
}

// PostHandler は投稿一覧・詳細のHTTPハンドラー。
type PostHandler struct {
	service BlogServiceInterface
	config  PostHandlerConfig
}

// NewPostHandler はPostHandlerを生成する。0以下の設定値はデフォルトで補う。
func NewPostHandler(service BlogServiceInterface, config PostHandlerConfig) *PostHandler {
	if config.PostsPerPage <= 0 {
		config.PostsPerPage = catalog.DefaultPageSize
	}
	if config.HomePostLimit <= 0 {
		config.HomePostLimit = blog.HomePostLimit
	}
	if config.BlogPostLimit <= 0 {
		config.BlogPostLimit = blog.BlogPostLimit
	}
	return &PostHandler{
		service: service,
		config:  config,
	}
}

// --- レスポンス型 ---

// paginationResponse はページ情報のレスポンス。
type paginationResponse struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalCount  int  `json:"totalCount"`
	PageSize    int  `json:"pageSize"`
	HasNext     bool `json:"hasNext"`
	HasPrev     bool `json:"hasPrev"`
}

// listingResponse は一覧1ページ分のレスポンス。
type listingResponse struct {
	Posts      []model.DerivedPost `json:"posts"`
	Pagination paginationResponse  `json:"pagination"`
	Summary    string              `json:"summary"`
	Query      string              `json:"query"`
	Category   string              `json:"category"`
}

// homeResponse はトップページのレスポンス。
type homeResponse struct {
	catalog.HomeSections
	listingResponse
}

// categoriesResponse はカテゴリ一覧のレスポンス。
type categoriesResponse struct {
	Categories []model.Category `json:"categories"`
}

// staticIDsResponse は事前生成する詳細ページIDのレスポンス。
type staticIDsResponse struct {
	IDs []int `json:"ids"`
}

// Home はトップページの構成を返す。
// GET /api/home?q=&category=&page=
func (h *PostHandler) Home(w http.ResponseWriter, r *http.Request) {
	q, page, ok := parseListingParams(w, r)
	if !ok {
		return
	}

	result, err := h.service.Browse(r.Context(), "home", h.config.HomePostLimit, q, page, h.config.PostsPerPage)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, homeResponse{
		HomeSections:    catalog.BuildHomeSections(result.All, result.Page),
		listingResponse: toListingResponse(result, q),
	})
}

// ListPosts はブログ一覧の1ページを返す。
// GET /api/posts?q=&category=&page=
func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	q, page, ok := parseListingParams(w, r)
	if !ok {
		return
	}

	result, err := h.service.Browse(r.Context(), "blogs", h.config.BlogPostLimit, q, page, h.config.PostsPerPage)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toListingResponse(result, q))
}

// GetPost は記事詳細を返す。
// GET /api/posts/{id}
func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewInvalidPostIDError(raw))
		return
	}

	detail, err := h.service.Post(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, detail)
}

// StaticPostIDs は事前生成する詳細ページのID一覧を返す。
// GET /api/posts/static-ids
func (h *PostHandler) StaticPostIDs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, staticIDsResponse{IDs: blog.StaticPostIDs()})
}

// Categories はカテゴリ表を返す。
// GET /api/categories
func (h *PostHandler) Categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, categoriesResponse{Categories: model.Categories()})
}

// parseListingParams はq, category, pageクエリパラメータを解析する。
// 不正な値の場合は400を書き込んでok=falseを返す。
func parseListingParams(w http.ResponseWriter, r *http.Request) (catalog.Query, int, bool) {
	values := r.URL.Query()

	category := values.Get("category")
	if category == "" {
		category = model.CategoryAll
	}
	if !model.IsValidCategorySelector(category) {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewInvalidCategoryError(category))
		return catalog.Query{}, 0, false
	}

	page := 1
	if raw := values.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewInvalidPageError(raw))
			return catalog.Query{}, 0, false
		}
		page = n
	}

	return catalog.Query{Search: values.Get("q"), Category: category}, page, true
}

func toListingResponse(result *blog.BrowseResult, q catalog.Query) listingResponse {
	p := result.Page
	return listingResponse{
		Posts: p.Items,
		Pagination: paginationResponse{
			CurrentPage: p.CurrentPage,
			TotalPages:  p.TotalPages,
			TotalCount:  p.TotalCount,
			PageSize:    p.PageSize,
			HasNext:     p.HasNext(),
			HasPrev:     p.HasPrev(),
		},
		Summary:  result.Summary,
		Query:    q.Search,
		Category: q.Category,
	}
}
