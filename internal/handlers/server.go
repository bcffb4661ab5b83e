package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/pep299/study-planner/internal/cache"
	"github.com/pep299/study-planner/internal/config"
	"github.com/pep299/study-planner/internal/logger"
	"github.com/pep299/study-planner/internal/model"
	"github.com/pep299/study-planner/internal/provider"
)

// Version is reported by the health endpoint
const Version = "v1.0.0"

const requestIDHeader = "X-Request-ID"

// Planner is the pipeline behind the HTTP API
type Planner interface {
	Generate(ctx context.Context, opts model.GenerationOptions) (*model.GenerationResult, error)
	Research(ctx context.Context, topic string, depth int) (*model.ResearchBundle, error)
	Translate(ctx context.Context, text, language string) (string, error)
	TrendingTopics() []string
	Describe() (provider.Description, bool)
	PageCacheStats(ctx context.Context) (*cache.Stats, error)
}

// Server holds the HTTP handlers and their dependencies
type Server struct {
	config  *config.Config
	planner Planner
	log     *logger.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, planner Planner, log *logger.Logger) *Server {
	if log == nil {
		log = logger.NewNop()
	}
	return &Server{
		config:  cfg,
		planner: planner,
		log:     log.With("component", "http"),
	}
}

// SetupRoutes configures HTTP routes
func (s *Server) SetupRoutes() *mux.Router {
	r := mux.NewRouter()

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(s.corsMiddleware)
	api.Use(s.requestIDMiddleware)
	api.Use(s.loggingMiddleware)

	api.HandleFunc("/health", s.healthHandler).Methods(http.MethodGet)

	// Plan generation
	api.HandleFunc("/study-plans", s.createStudyPlanHandler).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/research", s.researchHandler).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/translate", s.translateHandler).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/topics/trending", s.trendingTopicsHandler).Methods(http.MethodGet)

	// Status and configuration
	api.HandleFunc("/cache/stats", s.cacheStatsHandler).Methods(http.MethodGet)
	api.HandleFunc("/config", s.configHandler).Methods(http.MethodGet)

	return r
}

// Middleware functions

// corsMiddleware adds CORS headers
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+requestIDHeader)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

type requestIDKey struct{}

// requestIDMiddleware propagates or assigns a request id
func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

// RequestID returns the id assigned by the request id middleware
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap the ResponseWriter to capture status code
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		s.log.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.statusCode,
			"duration", time.Since(start).String(),
			"request_id", RequestID(r.Context()),
		)
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
