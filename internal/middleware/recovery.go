package middleware

import (
	"net/http"

	"promptoon-golang/server/internal/logger"
)

// Recovery converts any handler panic into the service's generic 500 JSON
// error instead of letting it propagate as an unhandled fault.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				logger.Error("panic: %v", v)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"success":false,"error":"服务器内部错误，请查看服务端日志。"}`))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
