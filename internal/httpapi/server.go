package httpapi

import (
	"context"
	_ "embed"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/hamed0406/linkcheck/internal/domain"
	apimw "github.com/hamed0406/linkcheck/internal/httpapi/middleware"
)

//go:embed web/index.html
var indexHTML []byte

// BatchRunner checks an ordered list of URLs.
type BatchRunner interface {
	Run(ctx context.Context, urls []string) ([]domain.CheckResult, error)
}

type Options struct {
	AllowedOrigins []string // empty allows every origin
	MaxUploadBytes int64
	CheckRPM       int // per client IP on /check_urls, 0 disables
	CheckBurst     int
}

type Server struct {
	Logger *zap.Logger
	Runner BatchRunner
	opts   Options
}

func NewServer(l *zap.Logger, runner BatchRunner, opts Options) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	return &Server{Logger: l, Runner: runner, opts: opts}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(apimw.AccessLog(s.Logger))
	r.Use(s.corsHandler())

	r.Get("/", s.handleIndex)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.With(apimw.RateLimit(s.opts.CheckRPM, s.opts.CheckBurst)).Post("/check_urls", s.handleCheckURLs)
	r.Post("/read_excel", s.handleReadExcel)
	r.Post("/export_excel", s.handleExportExcel)

	return r
}

func (s *Server) corsHandler() func(http.Handler) http.Handler {
	if len(s.opts.AllowedOrigins) == 0 {
		return cors.AllowAll().Handler
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexHTML)
}
