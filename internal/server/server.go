// Package server exposes the tutor engine over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/adaptive-tutor/internal/config"
	"github.com/jonathan/adaptive-tutor/internal/metrics"
	"github.com/jonathan/adaptive-tutor/internal/server/ratelimit"
	"github.com/jonathan/adaptive-tutor/internal/tutor"
	"github.com/jonathan/adaptive-tutor/internal/types"
)

// maxBodyBytes bounds request bodies; essays are the largest payload
const maxBodyBytes = 1 << 20

// Tutor is the engine surface the handlers call
type Tutor interface {
	GenerateAnswerFeedback(ctx context.Context, req tutor.FeedbackRequest) *types.FeedbackResult
	AnalyzeProgress(ctx context.Context, learnerID uuid.UUID, subject string) *types.ProgressAnalysis
	GenerateMotivationalMessage(ctx context.Context, learnerID uuid.UUID, msgContext string) *types.MotivationalMessage
	GenerateEssayThemes(ctx context.Context) ([]types.EssayTheme, error)
	GradeEssay(ctx context.Context, learnerID uuid.UUID, theme, text string) (*types.EssayEvaluation, error)
}

// Server represents the HTTP server
type Server struct {
	httpServer      *http.Server
	tutor           Tutor
	metrics         *metrics.Manager
	rateLimiter     *ratelimit.Limiter
	corsOrigin      string
	shutdownTimeout time.Duration
	onShutdown      []func()
}

// Option customizes a Server
type Option func(*Server)

// WithMetrics records HTTP metrics and serves them on GET /metrics
func WithMetrics(m *metrics.Manager) Option {
	return func(s *Server) { s.metrics = m }
}

// OnShutdown registers fn to run after the listener has drained, e.g. closing the database pool
func OnShutdown(fn func()) Option {
	return func(s *Server) { s.onShutdown = append(s.onShutdown, fn) }
}

// New creates a new server instance
func New(cfg *config.Config, engine Tutor, opts ...Option) *Server {
	s := &Server{
		tutor:           engine,
		rateLimiter:     ratelimit.NewLimiter(ratelimit.NewConfig(cfg.RateLimit)),
		corsOrigin:      cfg.Server.CORSOrigin,
		shutdownTimeout: cfg.Server.ShutdownTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.httpServer = &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// generation calls are bounded by the LLM timeout, essays take longest
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the routed handler wrapped in the middleware chain
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /feedback", s.handleFeedback)
	mux.HandleFunc("GET /progress/{learner_id}/{subject}", s.handleProgress)
	mux.HandleFunc("GET /motivation/{learner_id}", s.handleMotivation)
	mux.HandleFunc("GET /essays/themes", s.handleEssayThemes)
	mux.HandleFunc("POST /essays/grade", s.handleGradeEssay)
	mux.HandleFunc("GET /health", s.handleHealth)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}

	return s.withMetrics(s.withRateLimit(s.withLogging(s.withCORS(mux))))
}

// Start listens until SIGINT or SIGTERM, then drains in-flight requests
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err, ok := <-serveErr:
		if ok {
			s.cleanup()
			return fmt.Errorf("server error: %w", err)
		}
	case <-stop:
	}
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.cleanup()
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.cleanup()
	log.Println("Server stopped")
	return nil
}

func (s *Server) cleanup() {
	s.rateLimiter.Stop()
	for _, fn := range s.onShutdown {
		fn()
	}
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.corsOrigin != "" {
			w.Header().Set("Access-Control-Allow-Origin", s.corsOrigin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit rejects clients over their endpoint budget with 429
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(clientID(r), r.URL.Path, r.Method)
		setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// statusRecorder captures the response status for metrics
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withMetrics observes every request under its route pattern
func (s *Server) withMetrics(next http.Handler) http.Handler {
	if s.metrics == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		// ServeMux fills in Pattern on the shared request
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		s.metrics.ObserveHTTP(r.Method, route, rec.status, time.Since(start))
	})
}

// clientID identifies the caller by remote IP
func clientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit <= 0 {
		return
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
}

func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	response := map[string]any{
		"error":   "rate_limit_exceeded",
		"message": "Rate limit exceeded. Please try again later.",
		"limit":   info.Limit,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}
	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Round(time.Second).Seconds())
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	log.Printf("[rate-limit] %s %s from %s: limit=%d", r.Method, r.URL.Path, clientID(r), info.Limit)
	s.jsonResponse(w, http.StatusTooManyRequests, response)
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}
