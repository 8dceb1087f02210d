package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/carblog/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	StatusCounter     middleware.StatusCounter

	// メトリクスのスクレイプ用ハンドラー（nilの場合は /metrics を公開しない）
	MetricsHandler http.Handler

	// 投稿
	BlogService BlogServiceInterface
	PostConfig  PostHandlerConfig

	// お問い合わせ
	ContactService ContactServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → Recovery → Logging → Metrics → SecurityHeaders → CORS → RateLimit
//
// /health と /metrics はレート制限の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRequestIDMiddleware())
	r.Use(middleware.NewRecoveryMiddleware())
	if deps.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	}
	if deps.StatusCounter != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.StatusCounter))
	}
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	postHandler := NewPostHandler(deps.BlogService, deps.PostConfig)
	contactHandler := NewContactHandler(deps.ContactService)

	// --- レート制限の対象外 ---
	r.Get("/health", Health)
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	// --- API ---
	r.Route("/api", func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.Middleware())
		}

		r.Get("/categories", postHandler.Categories)
		r.Get("/home", postHandler.Home)

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", postHandler.ListPosts)
			r.Get("/static-ids", postHandler.StaticPostIDs)
			r.Get("/{id}", postHandler.GetPost)
		})

		r.Post("/contact", contactHandler.Submit)
	})

	return r
}
