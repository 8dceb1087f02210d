package middleware

import "net/http"

const (
	corsAllowMethods  = "GET, POST, OPTIONS"
	corsAllowHeaders  = "Content-Type, " + RequestIDHeader
	corsExposeHeaders = RequestIDHeader + ", Retry-After"
)

// NewCORSMiddleware はフロントエンドのオリジンからの読み取りAPIとお問い合わせ送信を許可する
// CORSミドルウェアを返す。Cookieや認証情報は扱わないため Allow-Credentials は送らない。
// X-Request-IDはリクエストで受け付け、レスポンスからも読めるようにする。
// OPTIONSプリフライトリクエストには204で応答し、後続のハンドラーは呼ばない。
func NewCORSMiddleware(allowedOrigin string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", allowedOrigin)
			h.Set("Access-Control-Allow-Methods", corsAllowMethods)
			h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
			h.Set("Access-Control-Expose-Headers", corsExposeHeaders)
			h.Set("Access-Control-Max-Age", "86400")
			h.Add("Vary", "Origin")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
