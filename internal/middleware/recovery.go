package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
)

// requestIDFor はリクエストIDをコンテキストから取り出す。
// RecoveryがリクエストIDミドルウェアより外側にある場合はコンテキストに値がないため、
// 内側で設定済みのレスポンスヘッダーを参照する。
func requestIDFor(w http.ResponseWriter, r *http.Request) string {
	if id := RequestIDFromContext(r.Context()); id != "" {
		return id
	}
	return w.Header().Get(RequestIDHeader)
}

// NewRecoveryMiddleware はpanic発生時にプロセスクラッシュを防ぎ、
// 500レスポンスを返すミドルウェアを生成する。
func NewRecoveryMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					slog.Error("panic recovered",
						slog.Any("panic", rec),
						slog.String("method", r.Method),
						slog.String("path", r.URL.Path),
						slog.String("request_id", requestIDFor(w, r)),
						slog.String("stack", string(debug.Stack())),
					)
					WriteInternalServerError(w)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
