package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// RouterOptions configures the HTTP middleware stack.
type RouterOptions struct {
	CORSOrigins []string
	RateLimit   float64 // requests/sec across all clients; 0 disables
	RateBurst   int
}

// NewRouter builds the chi router for the query endpoints.
func NewRouter(svc *Service, opts RouterOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:         300,
	}))
	if opts.RateLimit > 0 {
		r.Use(rateLimit(opts.RateLimit, opts.RateBurst))
	}

	h := &handlers{svc: svc}
	r.Get("/health", h.health)
	r.Get("/city-risk", h.cityRisk)
	r.Get("/area-risk", h.areaRisk)
	r.Get("/area-risk.geojson", h.areaRiskGeoJSON)
	r.Get("/model", h.model)

	return r
}

type handlers struct {
	svc *Service
}

func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) cityRisk(w http.ResponseWriter, r *http.Request) {
	cities, err := h.svc.CityRisk(r.URL.Query().Get("city"))
	if err != nil {
		writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cities)
}

func (h *handlers) areaRisk(w http.ResponseWriter, r *http.Request) {
	areas, err := h.svc.AreaRisk(r.URL.Query().Get("city"))
	if err != nil {
		writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, areas)
}

func (h *handlers) areaRiskGeoJSON(w http.ResponseWriter, r *http.Request) {
	areas, err := h.svc.AreaRisk(r.URL.Query().Get("city"))
	if err != nil {
		writeLookupError(w, err)
		return
	}
	data, err := json.Marshal(AreaFeatures(areas))
	if err != nil {
		zap.L().Error("api: encode geojson", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "encode geojson failed")
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *handlers) model(w http.ResponseWriter, _ *http.Request) {
	m := h.svc.State().Model
	writeJSON(w, http.StatusOK, map[string]any{
		"id":        m.ID,
		"k":         m.K,
		"seed":      m.Seed,
		"centroids": m.Centroids,
		"levels":    m.Levels,
		"inertia":   m.Inertia,
		"samples":   m.Samples,
		"fitted_at": m.FittedAt,
	})
}

func writeLookupError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrCityNotFound), errors.Is(err, ErrAreasNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		zap.L().Error("api: lookup failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeJSON encodes v before writing the status so an encoding failure can
// still be reported as a 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		zap.L().Error("api: encode response", zap.Error(err))
		data = []byte(`{"error":"encode response failed"}`)
		status = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(data, '\n')); err != nil {
		zap.L().Warn("api: write response", zap.Error(err))
	}
}

// requestLogger logs one line per request with zap.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Info("api: request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("query", r.URL.RawQuery),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
