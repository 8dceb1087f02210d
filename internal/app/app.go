package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hitoshi/carblog/internal/blog"
	"github.com/hitoshi/carblog/internal/config"
	"github.com/hitoshi/carblog/internal/contact"
	"github.com/hitoshi/carblog/internal/handler"
	"github.com/hitoshi/carblog/internal/jsonplaceholder"
	"github.com/hitoshi/carblog/internal/logger"
	"github.com/hitoshi/carblog/internal/metrics"
	"github.com/hitoshi/carblog/internal/middleware"
	"github.com/hitoshi/carblog/internal/security"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w, slog.LevelInfo)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 3. 設定のログレベルで再設定する
	logger.SetupDefault(w, logger.ParseLevel(cfg.LogLevel))

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("upstream_base_url", cfg.UpstreamBaseURL),
	)

	return runServe(cfg)
}

// Server はワイヤリング済みのHTTPハンドラーと後始末処理をまとめたもの。
type Server struct {
	Handler     http.Handler
	rateLimiter *middleware.RateLimiter
}

// Close はバックグラウンド処理を停止する。
func (s *Server) Close() {
	s.rateLimiter.Stop()
}

// NewServer は設定から全依存関係をワイヤリングし、HTTPハンドラーを構築する。
// 上流のベースURLが内部ネットワークを指している場合はエラーを返す。
func NewServer(cfg *config.Config, log *slog.Logger) (*Server, error) {
	// 1. セキュリティサービスの初期化
	guard := security.NewUpstreamGuard()
	if err := guard.ValidateBaseURL(cfg.UpstreamBaseURL); err != nil {
		return nil, fmt.Errorf("invalid upstream base URL: %w", err)
	}
	sanitizer := security.NewTextSanitizer()

	// 2. メトリクスの初期化
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	// 3. 上流クライアントとドメインサービスの初期化
	source := jsonplaceholder.NewClient(
		guard.NewClient(cfg.FetchTimeout),
		log,
		cfg.UpstreamBaseURL,
		cfg.FetchMaxSize,
	)
	blogService := blog.NewService(source, sanitizer, collector, log)
	contactService := contact.NewService(log)

	// 4. ルーターの構築
	// configのRateLimitGeneralはreq/min単位
	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfigPerMinute(cfg.RateLimitGeneral))

	router := handler.NewRouter(&handler.RouterDeps{
		Logger:            log,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
		StatusCounter:     collector,
		MetricsHandler:    metrics.Handler(registry),

		BlogService: blogService,
		PostConfig: handler.PostHandlerConfig{
			PostsPerPage:  cfg.PostsPerPage,
			HomePostLimit: cfg.HomePostLimit,
			BlogPostLimit: cfg.BlogPostLimit,
		},

		ContactService: contactService,
	})

	return &Server{Handler: router, rateLimiter: rateLimiter}, nil
}

// runServe はAPIサーバーモードで起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	srv, err := NewServer(cfg, slog.Default())
	if err != nil {
		return err
	}
	defer srv.Close()

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      srv.Handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second + cfg.FetchTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	listenErr := make(chan error, 1)
	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			listenErr <- err
		}
	}()

	select {
	case err := <-listenErr:
		return fmt.Errorf("server listen error: %w", err)
	case <-stop:
	}
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}
