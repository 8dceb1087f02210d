// Package jsonplaceholder はJSONPlaceholder（公開デモREST API）のクライアントを提供する。
// 投稿とユーザーの読み取り専用エンドポイントのみを扱う。
package jsonplaceholder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/hitoshi/carblog/internal/model"
)

const (
	// DefaultBaseURL はJSONPlaceholderのベースURL。
	DefaultBaseURL = "https://jsonplaceholder.typicode.com"
	// defaultMaxResponseSize はレスポンスボディの最大サイズ（5MB）。
	defaultMaxResponseSize int64 = 5 * 1024 * 1024
)

// ErrNotFound は単一リソースの取得で上流が404を返したことを示す。
var ErrNotFound = errors.New("jsonplaceholder: resource not found")

// Client はJSONPlaceholderのクライアント。
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string
	maxSize    int64
}

// NewClient はClientの新しいインスタンスを生成する。
// baseURLが空の場合は DefaultBaseURL を使う。maxSizeが0以下の場合は5MBとする。
func NewClient(httpClient *http.Client, logger *slog.Logger, baseURL string, maxSize int64) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if maxSize <= 0 {
		maxSize = defaultMaxResponseSize
	}
	return &Client{
		httpClient: httpClient,
		logger:     logger,
		baseURL:    strings.TrimRight(baseURL, "/"),
		maxSize:    maxSize,
	}
}

// ListPosts は投稿一覧を取得する。GET /posts
func (c *Client) ListPosts(ctx context.Context) ([]model.Post, error) {
	var posts []model.Post
	if err := c.getJSON(ctx, "/posts", &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// ListUsers はユーザー一覧を取得する。GET /users
func (c *Client) ListUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := c.getJSON(ctx, "/users", &users); err != nil {
		return nil, err
	}
	return users, nil
}

// GetPost は投稿を1件取得する。GET /posts/{id}
// 上流が404を返した場合は ErrNotFound を返す。
func (c *Client) GetPost(ctx context.Context, id int) (*model.Post, error) {
	var post model.Post
	if err := c.getJSON(ctx, "/posts/"+strconv.Itoa(id), &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// GetUser はユーザーを1件取得する。GET /users/{id}
// 上流が404を返した場合は ErrNotFound を返す。
func (c *Client) GetUser(ctx context.Context, id int) (*model.User, error) {
	var user model.User
	if err := c.getJSON(ctx, "/users/"+strconv.Itoa(id), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// getJSON はpathへGETリクエストを送り、JSONレスポンスをoutにデコードする。
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	reqURL, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return fmt.Errorf("failed to build request URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Carblog/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("upstream request failed",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("GET %s: %w", path, ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("upstream returned error status",
			slog.String("path", path),
			slog.Int("http_status", resp.StatusCode),
		)
		return fmt.Errorf("GET %s: unexpected status %d", path, resp.StatusCode)
	}

	// 上限+1バイトまで読み、超過を検出する
	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxSize+1))
	if err != nil {
		return fmt.Errorf("GET %s: failed to read body: %w", path, err)
	}
	if int64(len(body)) > c.maxSize {
		return fmt.Errorf("GET %s: response exceeds %d bytes", path, c.maxSize)
	}

	if err := json.Unmarshal(body, out); err != nil {
		c.logger.Error("failed to decode upstream response",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("GET %s: failed to decode JSON: %w", path, err)
	}

	return nil
}
