package middleware

import "net/http"

// apiSecurityHeaders はJSONのみを返すAPI向けのレスポンスヘッダー。
// HTMLを返さないため、CSPは全リソースの読み込みとフレーム埋め込みを禁止する。
var apiSecurityHeaders = [][2]string{
	{"X-Content-Type-Options", "nosniff"},
	{"X-Frame-Options", "DENY"},
	{"Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'"},
	{"Referrer-Policy", "no-referrer"},
}

// NewSecurityHeadersMiddleware はAPIレスポンスにセキュリティ関連ヘッダーを付与するミドルウェアを返す。
func NewSecurityHeadersMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, kv := range apiSecurityHeaders {
				w.Header().Set(kv[0], kv[1])
			}
			next.ServeHTTP(w, r)
		})
	}
}
