package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultUpstreamBaseURL は記事とユーザーを取得する公開デモAPIのベースURL。
const DefaultUpstreamBaseURL = "https://jsonplaceholder.typicode.com"

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Upstream
	UpstreamBaseURL string
	FetchTimeout    time.Duration
	FetchMaxSize    int64

	// Listing
	PostsPerPage  int
	HomePostLimit int
	BlogPostLimit int

	// Rate Limit
	RateLimitGeneral int

	// Logging
	LogLevel string

	// Server
	ServerPort string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// 値が不正な場合（上流URLの形式、0以下の件数）はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{
		UpstreamBaseURL:   strings.TrimRight(getEnvString("UPSTREAM_BASE_URL", DefaultUpstreamBaseURL), "/"),
		FetchTimeout:      getEnvDuration("FETCH_TIMEOUT", 10*time.Second),
		FetchMaxSize:      getEnvInt64("FETCH_MAX_SIZE", 5242880),
		PostsPerPage:      getEnvInt("POSTS_PER_PAGE", 6),
		HomePostLimit:     getEnvInt("HOME_POST_LIMIT", 20),
		BlogPostLimit:     getEnvInt("BLOG_POST_LIMIT", 30),
		RateLimitGeneral:  getEnvInt("RATE_LIMIT_GENERAL", 120),
		LogLevel:          getEnvString("LOG_LEVEL", "info"),
		ServerPort:        getEnvString("SERVER_PORT", "8080"),
		CORSAllowedOrigin: getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000"),
	}

	var invalid []string

	if err := validateBaseURL(cfg.UpstreamBaseURL); err != nil {
		invalid = append(invalid, fmt.Sprintf("UPSTREAM_BASE_URL (%v)", err))
	}

	positives := []struct {
		key string
		val int64
	}{
		{"FETCH_MAX_SIZE", cfg.FetchMaxSize},
		{"POSTS_PER_PAGE", int64(cfg.PostsPerPage)},
		{"HOME_POST_LIMIT", int64(cfg.HomePostLimit)},
		{"BLOG_POST_LIMIT", int64(cfg.BlogPostLimit)},
		{"RATE_LIMIT_GENERAL", int64(cfg.RateLimitGeneral)},
	}
	for _, p := range positives {
		if p.val <= 0 {
			invalid = append(invalid, p.key)
		}
	}
	if cfg.FetchTimeout <= 0 {
		invalid = append(invalid, "FETCH_TIMEOUT")
	}

	if len(invalid) > 0 {
		return nil, fmt.Errorf("invalid environment variables: %v", invalid)
	}

	return cfg, nil
}

// validateBaseURL はURLがhttp/httpsの絶対URLであることを検証する。
func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("host is empty")
	}
	return nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvInt64(key string, defaultVal int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
