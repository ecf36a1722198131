package viewer

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sejoroajose/Starknet-Data-Explorer/internal/infra"
)

// NewRouter wires all dependencies and returns the chi router.
func NewRouter(inf *infra.Infra, requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(zerologMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(zstdMiddleware)

	h := &viewerHandler{svc: NewService(inf)}

	r.Get("/healthz", handleHealthz)
	r.Get("/readyz", handleReadyz(inf))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/sources", func(r chi.Router) {
		r.Get("/", h.Sources)
		r.Get("/{source}/tables", h.Tables)
		r.Get("/{source}/tables/{table}/columns", h.Columns)
		r.Post("/{source}/series", h.Series)
	})

	return r
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReadyz pings every warehouse session and the cache to confirm
// the service is ready.
func handleReadyz(inf *infra.Infra) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := inf.Ready(r.Context())

		status := http.StatusOK
		body := make(map[string]string, len(checks))
		for name, err := range checks {
			if err != nil {
				body[name] = err.Error()
				status = http.StatusServiceUnavailable
			} else {
				body[name] = "ok"
			}
		}
		writeJSON(w, status, body)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
