package blog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hitoshi/carblog/internal/catalog"
	"github.com/hitoshi/carblog/internal/jsonplaceholder"
	"github.com/hitoshi/carblog/internal/model"
	"github.com/hitoshi/carblog/internal/security"
)

// --- モック ---

type mockSource struct {
	listPostsFn func(ctx context.Context) ([]model.Post, error)
	listUsersFn func(ctx context.Context) ([]model.User, error)
	getPostFn   func(ctx context.Context, id int) (*model.Post, error)
	getUserFn   func(ctx context.Context, id int) (*model.User, error)
}

func (m *mockSource) ListPosts(ctx context.Context) ([]model.Post, error) {
	return m.listPostsFn(ctx)
}

func (m *mockSource) ListUsers(ctx context.Context) ([]model.User, error) {
	return m.listUsersFn(ctx)
}

func (m *mockSource) GetPost(ctx context.Context, id int) (*model.Post, error) {
	return m.getPostFn(ctx, id)
}

func (m *mockSource) GetUser(ctx context.Context, id int) (*model.User, error) {
	return m.getUserFn(ctx, id)
}

type mockMetrics struct {
	mu        sync.Mutex
	successes map[string]int
	failures  map[string]int
	listings  map[string]int
}

func newMockMetrics() *mockMetrics {
	return &mockMetrics{
		successes: map[string]int{},
		failures:  map[string]int{},
		listings:  map[string]int{},
	}
}

func (m *mockMetrics) RecordUpstreamSuccess(resource string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.successes[resource]++
}

func (m *mockMetrics) RecordUpstreamFailure(resource string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[resource]++
}

func (m *mockMetrics) RecordUpstreamLatency(string, time.Duration) {}
func (m *mockMetrics) RecordHTTPStatus(int)                        {}

func (m *mockMetrics) RecordListingResults(view string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listings[view] = count
}

// --- ヘルパー ---

func newTestService(src Source, mm *mockMetrics, buf *bytes.Buffer) *Service {
	logger := slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	return NewService(src, security.NewTextSanitizer(), mm, logger)
}

func samplePosts(n int) []model.Post {
	posts := make([]model.Post, n)
	for i := range posts {
		posts[i] = model.Post{
			ID:     i + 1,
			Title:  fmt.Sprintf("post title %d", i+1),
			Body:   "body",
			UserID: i%10 + 1,
		}
	}
	return posts
}

func sampleUsers() []model.User {
	users := make([]model.User, 10)
	for i := range users {
		users[i] = model.User{ID: i + 1, Name: fmt.Sprintf("user %d", i+1), Email: fmt.Sprintf("u%d@example.com", i+1)}
	}
	return users
}

func okSource() *mockSource {
	return &mockSource{
		listPostsFn: func(ctx context.Context) ([]model.Post, error) { return samplePosts(100), nil },
		listUsersFn: func(ctx context.Context) ([]model.User, error) { return sampleUsers(), nil },
	}
}

// --- Listing ---

func TestListing_JoinsAndLimits(t *testing.T) {
	var buf bytes.Buffer
	mm := newMockMetrics()
	svc := newTestService(okSource(), mm, &buf)

	got, err := svc.Listing(context.Background(), BlogPostLimit)
	if err != nil {
		t.Fatalf("Listing がエラーを返した: %v", err)
	}
	if len(got) != 30 {
		t.Fatalf("len = %d, want 30", len(got))
	}
	if got[0].Author.Name != "user 1" || got[10].Author.Name != "user 1" {
		t.Errorf("著者が結合されていない: %+v / %+v", got[0].Author, got[10].Author)
	}
	if got[0].Category != "suv" || got[0].Rating != 4.0 || got[0].Likes != 22 {
		t.Errorf("派生値が不正: %+v", got[0])
	}
	if mm.successes["posts"] != 1 || mm.successes["users"] != 1 {
		t.Errorf("成功メトリクス = %v", mm.successes)
	}
}

func TestListing_FetchesConcurrently(t *testing.T) {
	var started sync.WaitGroup
	started.Add(2)

	// 両方の呼び出しが開始されるまで待つ。逐次実行ならタイムアウトする。
	waitBoth := func(ctx context.Context) error {
		started.Done()
		done := make(chan struct{})
		go func() {
			started.Wait()
			close(done)
		}()
		select {
		case <-done:
			return nil
		case <-time.After(2 * time.Second):
			return errors.New("fetches are not concurrent")
		}
	}

	src := &mockSource{
		listPostsFn: func(ctx context.Context) ([]model.Post, error) {
			if err := waitBoth(ctx); err != nil {
				return nil, err
			}
			return samplePosts(3), nil
		},
		listUsersFn: func(ctx context.Context) ([]model.User, error) {
			if err := waitBoth(ctx); err != nil {
				return nil, err
			}
			return sampleUsers(), nil
		},
	}

	var buf bytes.Buffer
	svc := newTestService(src, newMockMetrics(), &buf)

	if _, err := svc.Listing(context.Background(), HomePostLimit); err != nil {
		t.Fatalf("Listing がエラーを返した: %v", err)
	}
}

func TestListing_EitherFailureAbortsWithStaticError(t *testing.T) {
	tests := []struct {
		name     string
		postsErr error
		usersErr error
		resource string
	}{
		{"posts失敗", errors.New("connection reset"), nil, "posts"},
		{"users失敗", nil, errors.New("status 503"), "users"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &mockSource{
				listPostsFn: func(ctx context.Context) ([]model.Post, error) {
					if tt.postsErr != nil {
						return nil, tt.postsErr
					}
					return samplePosts(5), nil
				},
				listUsersFn: func(ctx context.Context) ([]model.User, error) {
					if tt.usersErr != nil {
						return nil, tt.usersErr
					}
					return sampleUsers(), nil
				},
			}

			var buf bytes.Buffer
			mm := newMockMetrics()
			svc := newTestService(src, mm, &buf)

			got, err := svc.Listing(context.Background(), HomePostLimit)
			if got != nil {
				t.Errorf("失敗時は結果を返さない: %v", got)
			}

			var apiErr *model.APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("err = %v, want *model.APIError", err)
			}
			if apiErr.Code != model.ErrCodeFetchFailed || apiErr.Message != model.FetchFailedMessage {
				t.Errorf("apiErr = %+v", apiErr)
			}
			if mm.failures[tt.resource] != 1 {
				t.Errorf("failures = %v, want %s=1", mm.failures, tt.resource)
			}
			if !bytes.Contains(buf.Bytes(), []byte("failed to fetch posts with authors")) {
				t.Errorf("失敗がログに記録されていない: %s", buf.String())
			}
		})
	}
}

func TestListing_SanitizesUpstreamText(t *testing.T) {
	src := &mockSource{
		listPostsFn: func(ctx context.Context) ([]model.Post, error) {
			return []model.Post{{ID: 1, Title: "<b>Tesla</b> review", Body: "<script>x</script>fast", UserID: 1}}, nil
		},
		listUsersFn: func(ctx context.Context) ([]model.User, error) {
			return []model.User{{ID: 1, Name: "<i>Leanne</i>"}}, nil
		},
	}

	var buf bytes.Buffer
	svc := newTestService(src, newMockMetrics(), &buf)

	got, err := svc.Listing(context.Background(), 0)
	if err != nil {
		t.Fatalf("Listing がエラーを返した: %v", err)
	}
	if got[0].Title != "Tesla review" || got[0].Body != "fast" || got[0].Author.Name != "Leanne" {
		t.Errorf("サニタイズされていない: %+v", got[0])
	}
}

// countingSanitizer はサニタイズ対象の文字列を数える。
type countingSanitizer struct {
	mu    sync.Mutex
	calls map[string]int
}

func (c *countingSanitizer) SanitizeText(raw string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls[raw]++
	return raw
}

func TestListing_SanitizesOnlyLimitedPosts(t *testing.T) {
	sanitizer := &countingSanitizer{calls: map[string]int{}}
	logger := slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))
	svc := NewService(okSource(), sanitizer, newMockMetrics(), logger)

	got, err := svc.Listing(context.Background(), HomePostLimit)
	if err != nil {
		t.Fatalf("Listing がエラーを返した: %v", err)
	}
	if len(got) != HomePostLimit {
		t.Fatalf("len = %d, want %d", len(got), HomePostLimit)
	}

	if sanitizer.calls["post title 20"] != 1 {
		t.Errorf("20件目のタイトルは1回サニタイズされるべき: %d", sanitizer.calls["post title 20"])
	}
	if n := sanitizer.calls["post title 21"]; n != 0 {
		t.Errorf("limit外の投稿はサニタイズしないこと: post title 21 = %d回", n)
	}
	if n := sanitizer.calls["body"]; n != HomePostLimit {
		t.Errorf("本文のサニタイズ回数 = %d, want %d", n, HomePostLimit)
	}
}

// --- Browse ---

func TestBrowse_FiltersAndPaginates(t *testing.T) {
	var buf bytes.Buffer
	mm := newMockMetrics()
	svc := newTestService(okSource(), mm, &buf)

	res, err := svc.Browse(context.Background(), "blogs", BlogPostLimit, catalog.Query{Category: "suv"}, 2, 6)
	if err != nil {
		t.Fatalf("Browse がエラーを返した: %v", err)
	}

	if len(res.All) != 30 {
		t.Errorf("len(All) = %d, want 30", len(res.All))
	}
	// suv は ID 1,4,...,28 の10件 → 2ページ目は4件
	if res.Page.TotalCount != 10 || res.Page.TotalPages != 2 || len(res.Page.Items) != 4 {
		t.Errorf("Page = total %d, pages %d, items %d", res.Page.TotalCount, res.Page.TotalPages, len(res.Page.Items))
	}
	if res.Page.Items[0].ID != 19 {
		t.Errorf("2ページ目の先頭 = %d, want 19", res.Page.Items[0].ID)
	}
	if res.Summary != "10 posts found" {
		t.Errorf("Summary = %q", res.Summary)
	}
	if mm.listings["blogs"] != 10 {
		t.Errorf("listing metric = %d, want 10", mm.listings["blogs"])
	}
}

func TestBrowse_PropagatesFetchError(t *testing.T) {
	src := okSource()
	src.listUsersFn = func(ctx context.Context) ([]model.User, error) { return nil, errors.New("boom") }

	var buf bytes.Buffer
	svc := newTestService(src, newMockMetrics(), &buf)

	if _, err := svc.Browse(context.Background(), "home", HomePostLimit, catalog.Query{}, 1, 6); err == nil {
		t.Fatal("取得失敗時はエラーを返すべき")
	}
}

// --- Post ---

func TestPost_ReturnsDetail(t *testing.T) {
	var userCalls atomic.Int32
	src := &mockSource{
		getPostFn: func(ctx context.Context, id int) (*model.Post, error) {
			return &model.Post{ID: id, Title: "magnam facilis", Body: "body", UserID: 3}, nil
		},
		getUserFn: func(ctx context.Context, id int) (*model.User, error) {
			userCalls.Add(1)
			if id != 3 {
				t.Errorf("GetUser id = %d, want 3", id)
			}
			return &model.User{ID: 3, Name: "Clementine Bauch", Email: "Nathan@yesenia.net"}, nil
		},
	}

	var buf bytes.Buffer
	svc := newTestService(src, newMockMetrics(), &buf)

	detail, err := svc.Post(context.Background(), 7)
	if err != nil {
		t.Fatalf("Post がエラーを返した: %v", err)
	}

	if detail.ID != 7 || detail.Author.Name != "Clementine Bauch" {
		t.Errorf("detail = %+v", detail)
	}
	if detail.Category != "suv" || detail.CategoryName != "SUV" {
		t.Errorf("category = %q/%q, want suv/SUV", detail.Category, detail.CategoryName)
	}
	if detail.Rating != 4.0 || detail.Likes != 64 {
		t.Errorf("rating = %v, likes = %d", detail.Rating, detail.Likes)
	}
	if detail.Specs.FuelType != "Diesel" {
		t.Errorf("Specs = %+v", detail.Specs)
	}
	if len(detail.Related) != 2 || detail.Related[0].ID != 8 || detail.Related[1].ID != 9 {
		t.Errorf("Related = %+v", detail.Related)
	}
	if !bytes.Contains([]byte(detail.ImageURL), []byte("w=1200&h=800")) {
		t.Errorf("詳細はヒーロー画像サイズを使う: %s", detail.ImageURL)
	}
	if userCalls.Load() != 1 {
		t.Errorf("GetUser calls = %d, want 1", userCalls.Load())
	}
}

func TestPost_NotFound(t *testing.T) {
	tests := []struct {
		name    string
		postErr error
		userErr error
	}{
		{"投稿が存在しない", fmt.Errorf("GET /posts/999: %w", jsonplaceholder.ErrNotFound), nil},
		{"著者が存在しない", nil, fmt.Errorf("GET /users/3: %w", jsonplaceholder.ErrNotFound)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &mockSource{
				getPostFn: func(ctx context.Context, id int) (*model.Post, error) {
					if tt.postErr != nil {
						return nil, tt.postErr
					}
					return &model.Post{ID: id, UserID: 3}, nil
				},
				getUserFn: func(ctx context.Context, id int) (*model.User, error) {
					return nil, tt.userErr
				},
			}

			var buf bytes.Buffer
			svc := newTestService(src, newMockMetrics(), &buf)

			_, err := svc.Post(context.Background(), 999)
			var apiErr *model.APIError
			if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodePostNotFound {
				t.Errorf("err = %v, want POST_NOT_FOUND", err)
			}
		})
	}
}

func TestPost_UpstreamFailure(t *testing.T) {
	src := &mockSource{
		getPostFn: func(ctx context.Context, id int) (*model.Post, error) {
			return nil, errors.New("dial tcp: i/o timeout")
		},
	}

	var buf bytes.Buffer
	svc := newTestService(src, newMockMetrics(), &buf)

	_, err := svc.Post(context.Background(), 1)
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeFetchFailed {
		t.Errorf("err = %v, want FETCH_FAILED", err)
	}
}

func TestStaticPostIDs(t *testing.T) {
	ids := StaticPostIDs()
	if len(ids) != 30 || ids[0] != 1 || ids[29] != 30 {
		t.Errorf("StaticPostIDs() = %v", ids)
	}
}

func TestNewService_NilMetricsUsesNop(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	svc := NewService(okSource(), security.NewTextSanitizer(), nil, logger)

	if _, err := svc.Listing(context.Background(), 5); err != nil {
		t.Fatalf("Listing がエラーを返した: %v", err)
	}
}
