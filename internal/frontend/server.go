package frontend

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"path"
	"strings"
	"time"

	"spiritlife-frontend/internal/audio"
	"spiritlife-frontend/internal/search"
	"spiritlife-frontend/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

//go:embed templates/*.gohtml
var tplFS embed.FS

//go:embed all:static
var staticFS embed.FS

var pages = []string{"home.gohtml"}

type Searcher interface {
	FetchResults(ctx context.Context, p search.Payload) (search.SearchResponse, error)
}

type AudioFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
	FetchWithProgress(ctx context.Context, url string, fn audio.ProgressFunc) ([]byte, error)
}

type Options struct {
	PageTitle         string
	DateFilterEnabled bool
	AudioPrefetch     bool
	SearchTimeout     time.Duration
}

type Server struct {
	searcher  Searcher
	fetcher   AudioFetcher
	sessions  *session.Store
	publisher *Publisher
	metrics   *Metrics
	opts      Options
	templates map[string]*template.Template
	now       func() time.Time
}

func NewServer(searcher Searcher, fetcher AudioFetcher, sessions *session.Store, publisher *Publisher, metrics *Metrics, opts Options) (*Server, error) {
	if opts.PageTitle == "" {
		opts.PageTitle = "Spirit-and-Life"
	}
	if opts.SearchTimeout <= 0 {
		opts.SearchTimeout = time.Minute
	}

	s := &Server{
		searcher:  searcher,
		fetcher:   fetcher,
		sessions:  sessions,
		publisher: publisher,
		metrics:   metrics,
		opts:      opts,
		templates: make(map[string]*template.Template, len(pages)),
		now:       time.Now,
	}
	for _, name := range pages {
		tpl, err := template.ParseFS(tplFS, "templates/base.gohtml", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("frontend: parse %s: %w", name, err)
		}
		s.templates[name] = tpl
	}
	return s, nil
}

// Router wires one handler per user action.
func (s *Server) Router(middlewares ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	for _, mw := range middlewares {
		r.Use(mw)
	}

	r.Get("/health", s.handleHealth)
	r.Get("/static/*", s.handleStatic)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Get("/", s.handleIndex)
	r.With(middleware.Timeout(s.opts.SearchTimeout+5*time.Second)).Post("/search", s.handleSearch)

	// {gen} pins the links to the results the page was rendered from
	r.Get("/audio/{gen}/{idx}", s.handleAudio)
	r.Get("/audio/{gen}/{idx}/download", s.handleDownload)
	r.Get("/audio/{gen}/{idx}/progress", s.handleProgress)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "sermon-search-frontend",
	})
}

func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	p := strings.TrimPrefix(r.URL.Path, "/static/")
	b, err := staticFS.ReadFile(path.Join("static", p))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	switch {
	case strings.HasSuffix(p, ".js"):
		w.Header().Set("Content-Type", "application/javascript")
	case strings.HasSuffix(p, ".css"):
		w.Header().Set("Content-Type", "text/css")
	case strings.HasSuffix(p, ".svg"):
		w.Header().Set("Content-Type", "image/svg+xml")
	}
	_, _ = w.Write(b)
}

func (s *Server) render(w http.ResponseWriter, status int, name string, v View) {
	tpl, ok := s.templates[name]
	if !ok {
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	var buf strings.Builder
	if err := tpl.ExecuteTemplate(&buf, "base", v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(buf.String()))
}
