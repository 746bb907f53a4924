// Package webui exposes the computed production tables over HTTP for a
// presentation layer. The server owns the merged dataset; every request
// carries its own filter state in the query string.
//
// Routes:
//
//	GET  /                     → resumo page
//	GET  /api/sources          → listed sources, load failures, filter options
//	GET  /api/summary          → resumo rows (JSON)
//	GET  /api/summary.csv      → resumo rows (CSV, UTF-8 BOM)
//	GET  /api/ranking/monthly  → top/bottom by monthly attainment
//	GET  /api/ranking/daily    → top/bottom by daily attainment
//	GET  /api/insights         → KPI totals, daily series, units, audit
//	GET  /api/probe            → header diagnosis of ?source= (format=json|csv)
//	POST /api/reload           → re-run ingestion (?source= repeatable)
//
// Filter parameters: unit and inspector (repeatable), from and to
// (YYYY-MM-DD or DD/MM/YYYY), token (from a previous response), month
// (YYYY-MM), type (FIXO or MOVEL) and day.
package webui

import (
	"context"
	_ "embed"
	"errors"
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"vistoria/internal/datasource"
	"vistoria/internal/ingest"
	"vistoria/internal/metrics"
	"vistoria/internal/production"
)

// Config controls server startup.
type Config struct {
	Addr string
	// Job labels request metrics.
	Job string
	Log logrus.FieldLogger
	// Fetcher enables /api/probe when set.
	Fetcher datasource.Fetcher
}

// Loader is the part of ingest.Loader the server uses.
type Loader interface {
	Sources(ctx context.Context) ([]datasource.SourceInfo, error)
	Load(ctx context.Context, ids ...string) (ingest.Result, error)
}

// Server serves one merged dataset and can replace it on reload.
type Server struct {
	cfg    Config
	mux    *http.ServeMux
	tmpl   *template.Template
	loader Loader

	mu       sync.RWMutex
	data     production.MergedDataset
	selected []string
	loadedAt time.Time
}

// NewServer constructs a Server with routes and the embedded page. The
// dataset is empty until Reload or SetDataset.
func NewServer(cfg Config, l Loader) *Server {
	if cfg.Log == nil {
		cfg.Log = logrus.StandardLogger()
	}
	s := &Server{
		cfg:    cfg,
		mux:    http.NewServeMux(),
		tmpl:   template.Must(template.New("index").Funcs(pageFuncs).Parse(indexHTML)),
		loader: l,
	}
	s.routes()
	return s
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.mux }

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

// SetDataset replaces the served dataset.
func (s *Server) SetDataset(d production.MergedDataset, selected []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = d
	s.selected = append([]string(nil), selected...)
	s.loadedAt = time.Now()
}

// Reload ingests ids (all sources when empty) and swaps the dataset in.
// When nothing survives the previous dataset is kept and
// production.ErrNoRecords is returned with the failed result.
func (s *Server) Reload(ctx context.Context, ids ...string) (ingest.Result, error) {
	res, err := s.loader.Load(ctx, ids...)
	if err != nil {
		return res, err
	}
	s.SetDataset(res.Dataset, ids)
	return res, nil
}

func (s *Server) dataset() production.MergedDataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /{$}", s.instrument("index", s.handleIndex))
	s.mux.HandleFunc("GET /api/sources", s.instrument("sources", s.handleSources))
	s.mux.HandleFunc("GET /api/summary", s.instrument("summary", s.handleSummary))
	s.mux.HandleFunc("GET /api/summary.csv", s.instrument("summary_csv", s.handleSummaryCSV))
	s.mux.HandleFunc("GET /api/ranking/monthly", s.instrument("ranking_monthly", s.handleMonthlyRanking))
	s.mux.HandleFunc("GET /api/ranking/daily", s.instrument("ranking_daily", s.handleDailyRanking))
	s.mux.HandleFunc("GET /api/insights", s.instrument("insights", s.handleInsights))
	s.mux.HandleFunc("GET /api/probe", s.instrument("probe", s.handleProbe))
	s.mux.HandleFunc("POST /api/reload", s.instrument("reload", s.handleReload))
}

// statusWriter remembers the response code for instrument.
type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

func (s *Server) instrument(name string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		h(sw, r)
		var err error
		if sw.code >= http.StatusInternalServerError {
			err = errors.New(http.StatusText(sw.code))
		}
		metrics.RecordStep(s.cfg.Job, "http_"+name, err, time.Since(start))
		s.cfg.Log.WithFields(logrus.Fields{
			"route":    name,
			"status":   sw.code,
			"duration": time.Since(start).Round(time.Microsecond),
		}).Debug("request")
	}
}

// indexHTML is the resumo page.
//
//go:embed index.tmpl.html
var indexHTML string
