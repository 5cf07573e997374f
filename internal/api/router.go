// internal/api/router.go
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"scheme-advisor/internal/advisor"
	"scheme-advisor/internal/cache"
	"scheme-advisor/internal/common/config"
	"scheme-advisor/internal/common/logger"
	"scheme-advisor/internal/engine/query"
	"scheme-advisor/internal/models"
)

// SchemeEngine is the read surface of the query engine used by the handlers.
type SchemeEngine interface {
	All(ctx context.Context) []models.ScoredScheme
	Filter(ctx context.Context, req query.FilterRequest) (*query.FilterResult, error)
	Category(ctx context.Context, slug string) *query.CategoryResult
	Lookup(ctx context.Context, planID string) (models.ScoredScheme, error)
	Provider(ctx context.Context, name string) (query.ProviderInfo, error)
	Query(ctx context.Context, prompt string) (*query.Result, error)
	DataQuery(ctx context.Context, queryType models.QueryType, q string) (*query.DataResult, error)
}

// AdviceService answers free-form questions. It is optional.
type AdviceService interface {
	Advise(ctx context.Context, prompt, requestID string) (*advisor.Advice, error)
	Chat(ctx context.Context, message string, history []advisor.Turn, requestID string) (*advisor.Advice, error)
}

type Dependencies struct {
	Engine SchemeEngine
	// Cache may be nil.
	Cache *cache.Cache
	// Advisor may be nil; advice routes then answer 503.
	Advisor AdviceService
	// Ready reports whether the backing services are reachable. nil means
	// always ready.
	Ready func(ctx context.Context) error
}

type Handler struct {
	engine  SchemeEngine
	cache   *cache.Cache
	advisor AdviceService
	log     logger.Logger
}

// NewRouter wires every route and the shared middleware stack.
func NewRouter(deps Dependencies, cfg config.ServerConfig, log logger.Logger) http.Handler {
	log = log.WithFields(map[string]interface{}{"component": "http"})
	h := &Handler{
		engine:  deps.Engine,
		cache:   deps.Cache,
		advisor: deps.Advisor,
		log:     log,
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(RequestLogger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(CORS(cfg.AllowedOrigins))
	r.Use(Metrics)
	if cfg.RequestTimeout > 0 {
		r.Use(chimiddleware.Timeout(config.GetDuration(cfg.RequestTimeout)))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	})
	r.Get("/ready", readyHandler(deps.Ready))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/schemes", func(r chi.Router) {
		r.Get("/", h.ListSchemes)
		r.Get("/filter", h.FilterSchemes)
		r.Get("/category/{slug}", h.CategorySchemes)
		r.Post("/query", h.QuerySchemes)
		r.Get("/{planId}", h.GetScheme)
	})

	r.Route("/api/ai-data", func(r chi.Router) {
		r.Post("/query-data", h.QueryData)
		r.Get("/scheme/{planId}", h.SchemeDetails)
		r.Get("/bank/{bankName}", h.BankDetails)
	})

	r.Route("/api/ai", func(r chi.Router) {
		r.Post("/get-advice", h.GetAdvice)
		r.Post("/chat", h.Chat)
		r.Get("/health", h.AdvisorHealth)
	})

	return r
}

func readyHandler(ready func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().UTC().Format(time.RFC3339)
		if ready != nil {
			if err := ready(r.Context()); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status": "not ready",
					"error":  err.Error(),
					"time":   now,
				})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready", "time": now})
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
