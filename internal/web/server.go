// Package web serves the upload, geocode and download pages.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/geocoder/internal/export"
	"github.com/sells-group/geocoder/internal/pipeline"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.New("").Funcs(template.FuncMap{
	"percent": percent,
}).ParseFS(templateFS, "templates/*.html"))

// Options configures the server.
type Options struct {
	MaxUploadBytes   int64
	MaxResults       int
	UploadsPerMinute int
	CORSOrigins      []string
	Map              export.MapOptions
	Provider         string // shown on the pages
}

// Server is the HTTP front end of the geocoder.
type Server struct {
	opts     Options
	geocoder pipeline.Geocoder
	results  *ResultStore
	limiter  *uploadLimiter
	router   *chi.Mux
	server   *http.Server
}

// NewServer creates a Server that geocodes uploads through gc. gc is shared
// by every request, so its dispatch floor holds across concurrent uploads.
func NewServer(gc pipeline.Geocoder, opts Options) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	s := &Server{
		opts:     opts,
		geocoder: gc,
		results:  NewResultStore(opts.MaxResults),
		limiter:  newUploadLimiter(opts.UploadsPerMinute),
		router:   chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(securityHeaders)

	origins := s.opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/", s.handleIndex)
	s.router.Get("/health", s.handleHealth)

	// Uploads are throttled per client; every row costs one upstream request.
	s.router.Group(func(r chi.Router) {
		r.Use(s.limiter.middleware)
		r.Post("/inspect", s.handleInspect)
		r.Post("/geocode", s.handleGeocode)
	})

	s.router.Route("/results/{id}", func(r chi.Router) {
		r.Get("/", s.handleResult)
		r.Get("/csv", s.handleResultCSV)
		r.Get("/geojson", s.handleResultGeoJSON)
		r.Get("/map", s.handleResultMap)
	})
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
		// No write timeout: a geocode request takes at least one second per row.
	}

	zap.L().Info("web: starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Debug("web: request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	if status >= http.StatusInternalServerError {
		zap.L().Error("web: request failed", zap.Int("status", status), zap.String("error", message))
	}
	writeJSONStatus(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("web: encode response", zap.Error(err))
	}
}

func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return part * 100 / total
}
