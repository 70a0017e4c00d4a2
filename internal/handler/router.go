package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
}

// Options configures NewRouter. Zero values disable the optional parts.
type Options struct {
	Metrics  *Metrics
	Gatherer prometheus.Gatherer
	Limiter  *ClientRateLimiter
	Build    BuildInfo
}

// Route binds a named handler to a method and path.
type Route struct {
	Name    string
	Method  string
	Pattern string
	Handler http.Handler
}

// NewRouter returns the API router with logging, request IDs and, when
// configured, rate limiting and a /metrics endpoint.
func NewRouter(opts Options) *mux.Router {
	router := mux.NewRouter()
	routes := []Route{
		{"ControlTimes", http.MethodGet, "/api/v1/control-times", ControlTimesHandler(opts.Metrics)},
		{"Schedule", http.MethodPost, "/api/v1/schedules", ScheduleHandler(opts.Metrics)},
		{"Brevets", http.MethodGet, "/api/v1/brevets", BrevetsHandler()},
		{"Health", http.MethodGet, "/healthz", healthHandler()},
		{"Version", http.MethodGet, "/version", versionHandler(opts.Build)},
	}
	if opts.Gatherer != nil {
		routes = append(routes, Route{"Metrics", http.MethodGet, "/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})})
	}

	for _, route := range routes {
		h := route.Handler
		if opts.Limiter != nil && route.Name != "Health" && route.Name != "Metrics" {
			h = opts.Limiter.Middleware(h, opts.Metrics)
		}
		h = WithRequestID(RESTLogger(h, route.Name, opts.Metrics))

		router.
			Methods(route.Method).
			Path(route.Pattern).
			Name(route.Name).
			Handler(h)
	}
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return router
}

func healthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

func versionHandler(info BuildInfo) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, info)
	})
}
