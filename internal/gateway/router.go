package gateway

import (
	"context"
	"errors"
	"net/http"

	"github.com/a-h/templ"

	"promptoon-golang/server/internal/gateway/views"
	"promptoon-golang/server/internal/middleware"
)

func NewRouter(g *Gateway) http.Handler {
	mux := http.NewServeMux()

	index := templ.Handler(views.Index())
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		// "/" is the ServeMux catch-all; everything else is a 404.
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		index.ServeHTTP(w, r)
	})

	mux.HandleFunc("/health", allowMethods(handleHealth, http.MethodGet, http.MethodHead))
	mux.HandleFunc("/encrypt_api_key", allowMethods(g.HandleEncryptAPIKey, http.MethodPost))
	mux.HandleFunc("/generate_prompt", allowMethods(g.HandleGeneratePrompt, http.MethodPost))

	h := middleware.Recovery(mux)
	h = middleware.Logging(h)
	h = middleware.CORS(h)

	return h
}

func allowMethods(h http.HandlerFunc, methods ...string) http.HandlerFunc {
	allowed := make(map[string]struct{}, len(methods))
	for _, m := range methods {
		allowed[m] = struct{}{}
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := allowed[r.Method]; ok {
			h(w, r)
			return
		}
		if errors.Is(r.Context().Err(), context.Canceled) {
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusMethodNotAllowed)
		_, _ = w.Write([]byte(`{"success":false,"error":"不支持的请求方法，请检查接口要求的 HTTP Method。"}`))
	}
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}
