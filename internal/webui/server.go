// Package webui serves a small HTML view over the combined dataset.
//
// Routes:
//
//	GET /            → home page
//	GET /time_days/  → bar chart of sample counts per TimeDays value
package webui

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

// Config controls server startup.
type Config struct {
	Addr string

	// DataFile is the combined CSV the chart is built from. It is read on
	// every request so a fresh run shows up without a restart.
	DataFile string
}

// Server wraps an http.ServeMux with the parsed page templates.
type Server struct {
	cfg   Config
	mux   *http.ServeMux
	pages map[string]*template.Template
	log   *zap.Logger
}

// NewServer constructs a Server with routes and embedded templates.
func NewServer(cfg Config) *Server {
	s := &Server{
		cfg:   cfg,
		mux:   http.NewServeMux(),
		pages: map[string]*template.Template{},
		log:   zap.L(),
	}
	for _, name := range []string{"home.html", "chart.html", "error.html"} {
		s.pages[name] = template.Must(template.New("base.html").Funcs(funcs).
			ParseFS(templateFS, "templates/base.html", "templates/"+name))
	}
	s.routes()
	return s
}

// Handler returns the server's routes.
func (s *Server) Handler() http.Handler { return s.mux }

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.log.Info("webui: listening", zap.String("addr", s.cfg.Addr), zap.String("data_file", s.cfg.DataFile))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /{$}", s.handleHome)
	s.mux.HandleFunc("GET /time_days/", s.handleTimeDays)
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "home.html", map[string]any{"Title": "Viral load data"})
}

// handleTimeDays renders the TimeDays frequency chart. A missing data file is
// a 404 naming the path; any other failure is a 500 with the error text.
func (s *Server) handleTimeDays(w http.ResponseWriter, r *http.Request) {
	counts, err := TimeDayCounts(s.cfg.DataFile)
	if err != nil {
		status := http.StatusInternalServerError
		msg := "An error occurred during data processing: " + err.Error()
		if errors.Is(err, os.ErrNotExist) {
			status = http.StatusNotFound
			msg = "Data file not found at: " + s.cfg.DataFile
		}
		s.log.Warn("webui: chart failed", zap.Int("status", status), zap.Error(err))
		s.render(w, status, "error.html", map[string]any{"Title": "Error", "Message": msg})
		return
	}

	top := 0
	for _, c := range counts {
		if c.Count > top {
			top = c.Count
		}
	}
	s.render(w, http.StatusOK, "chart.html", map[string]any{
		"Title":  "Count of Samples by Time Day",
		"Counts": counts,
		"Max":    top,
	})
}

func (s *Server) render(w http.ResponseWriter, status int, page string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.pages[page].Execute(w, data); err != nil {
		s.log.Error("webui: template error", zap.String("page", page), zap.Error(err))
	}
}
