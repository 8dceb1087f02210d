// Package blog は上流APIから投稿と著者を取得し、表示用に派生させるサービスを提供する。
package blog

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hitoshi/carblog/internal/catalog"
	"github.com/hitoshi/carblog/internal/derive"
	"github.com/hitoshi/carblog/internal/jsonplaceholder"
	"github.com/hitoshi/carblog/internal/metrics"
	"github.com/hitoshi/carblog/internal/model"
	"github.com/hitoshi/carblog/internal/security"
)

const (
	// HomePostLimit はトップページで扱う投稿数。
	HomePostLimit = 20
	// BlogPostLimit はブログ一覧ページで扱う投稿数。
	BlogPostLimit = 30
	// StaticPostCount は詳細ページを事前に用意する投稿数（ID 1〜30）。
	StaticPostCount = 30
)

// Source は投稿とユーザーの取得元のインターフェース。
// jsonplaceholder.Client が実装する。
type Source interface {
	ListPosts(ctx context.Context) ([]model.Post, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	GetPost(ctx context.Context, id int) (*model.Post, error)
	GetUser(ctx context.Context, id int) (*model.User, error)
}

// Service は投稿一覧・詳細の取得と派生を行うサービス。
type Service struct {
	source    Source
	sanitizer security.TextSanitizer
	metrics   metrics.MetricsCollector
	logger    *slog.Logger
}

// NewService はServiceの新しいインスタンスを生成する。
// collectorがnilの場合はメトリクスを記録しない。
func NewService(
	source Source,
	sanitizer security.TextSanitizer,
	collector metrics.MetricsCollector,
	logger *slog.Logger,
) *Service {
	if collector == nil {
		collector = metrics.Nop{}
	}
	return &Service{
		source:    source,
		sanitizer: sanitizer,
		metrics:   collector,
		logger:    logger,
	}
}

// Listing は投稿一覧とユーザー一覧を並行に取得して結合し、先頭limit件を派生させて返す。
// どちらかの取得に失敗した場合は全体を失敗とし、model.NewFetchFailedError を返す。
// リトライは行わない。
func (s *Service) Listing(ctx context.Context, limit int) ([]model.DerivedPost, error) {
	var (
		posts []model.Post
		users []model.User
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		posts, err = observe(s, "posts", func() ([]model.Post, error) {
			return s.source.ListPosts(gctx)
		})
		return err
	})

	g.Go(func() error {
		var err error
		users, err = observe(s, "users", func() ([]model.User, error) {
			return s.source.ListUsers(gctx)
		})
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("failed to fetch posts with authors",
			slog.String("error", err.Error()),
		)
		return nil, model.NewFetchFailedError()
	}

	// サニタイズは表示する先頭limit件だけに行う
	if limit > 0 && len(posts) > limit {
		posts = posts[:limit]
	}

	return derive.Decorate(s.sanitizePosts(posts), s.sanitizeUsers(users), limit), nil
}

// BrowseResult は一覧画面1ページ分の結果。
type BrowseResult struct {
	All     []model.DerivedPost // 絞り込み前の一覧
	Page    catalog.Page        // 絞り込み後の該当ページ
	Summary string              // 件数表示文
}

// Browse は一覧を取得し、検索・カテゴリで絞り込んだうえで指定ページを切り出す。
// viewはメトリクスのラベル（home, blogs）。
func (s *Service) Browse(ctx context.Context, view string, limit int, q catalog.Query, page, pageSize int) (*BrowseResult, error) {
	all, err := s.Listing(ctx, limit)
	if err != nil {
		return nil, err
	}

	filtered := catalog.Filter(all, q)
	s.metrics.RecordListingResults(view, len(filtered))

	return &BrowseResult{
		All:     all,
		Page:    catalog.Paginate(filtered, page, pageSize),
		Summary: catalog.Summary(len(filtered), q.Search),
	}, nil
}

// Post は投稿を1件取得し、著者を取得して詳細表示用に派生させる。
// 投稿→著者の順に逐次取得する。いずれかが存在しない場合は
// model.NewPostNotFoundError、その他の失敗は model.NewFetchFailedError を返す。
func (s *Service) Post(ctx context.Context, id int) (*model.PostDetail, error) {
	post, err := observe(s, "post", func() (*model.Post, error) {
		return s.source.GetPost(ctx, id)
	})
	if err != nil {
		return nil, s.detailError(id, err)
	}

	author, err := observe(s, "user", func() (*model.User, error) {
		return s.source.GetUser(ctx, post.UserID)
	})
	if err != nil {
		return nil, s.detailError(id, err)
	}

	sanitizedPost := s.sanitizePosts([]model.Post{*post})[0]
	sanitizedAuthor := s.sanitizeUsers([]model.User{*author})[0]

	derived := derive.DecoratePost(sanitizedPost, sanitizedAuthor)
	derived.ImageURL = derive.ImageURLFor(post.ID, derive.ImageSizeHero)

	return &model.PostDetail{
		DerivedPost:  derived,
		CategoryName: derive.CategoryFor(post.ID).Name,
		Specs:        derive.SpecsFor(post.ID),
		Related: []model.RelatedPost{
			{ID: post.ID + 1, ImageURL: derive.ImageURLFor(post.ID+1, derive.ImageSizeCard)},
			{ID: post.ID + 2, ImageURL: derive.ImageURLFor(post.ID+2, derive.ImageSizeCard)},
		},
	}, nil
}

// StaticPostIDs は詳細ページを事前に用意する投稿IDの一覧（1〜30）を返す。
func StaticPostIDs() []int {
	ids := make([]int, StaticPostCount)
	for i := range ids {
		ids[i] = i + 1
	}
	return ids
}

// detailError は詳細取得時のエラーをAPIErrorに変換する。
func (s *Service) detailError(id int, err error) error {
	if errors.Is(err, jsonplaceholder.ErrNotFound) {
		return model.NewPostNotFoundError(id)
	}
	s.logger.Error("failed to fetch post",
		slog.Int("post_id", id),
		slog.String("error", err.Error()),
	)
	return model.NewFetchFailedError()
}

func (s *Service) sanitizePosts(posts []model.Post) []model.Post {
	out := make([]model.Post, len(posts))
	for i, p := range posts {
		p.Title = s.sanitizer.SanitizeText(p.Title)
		p.Body = s.sanitizer.SanitizeText(p.Body)
		out[i] = p
	}
	return out
}

func (s *Service) sanitizeUsers(users []model.User) []model.User {
	out := make([]model.User, len(users))
	for i, u := range users {
		u.Name = s.sanitizer.SanitizeText(u.Name)
		u.Email = s.sanitizer.SanitizeText(u.Email)
		out[i] = u
	}
	return out
}

// observe は上流呼び出しの成否とレイテンシを記録する。
func observe[T any](s *Service, resource string, call func() (T, error)) (T, error) {
	start := time.Now()
	v, err := call()
	s.metrics.RecordUpstreamLatency(resource, time.Since(start))
	if err != nil {
		s.metrics.RecordUpstreamFailure(resource)
		return v, err
	}
	s.metrics.RecordUpstreamSuccess(resource)
	return v, nil
}
