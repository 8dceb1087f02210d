package middleware

import "net/http"

// StatusCounter はHTTPステータスコードを記録するインターフェース。
// metrics.Collector が実装する。
type StatusCounter interface {
	RecordHTTPStatus(statusCode int)
}

// NewMetricsMiddleware はレスポンスのステータスコードを記録するミドルウェアを返す。
func NewMetricsMiddleware(counter StatusCounter) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}
			next.ServeHTTP(rec, r)
			counter.RecordHTTPStatus(rec.statusCode)
		})
	}
}
