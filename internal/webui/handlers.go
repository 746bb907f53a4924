package webui

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"vistoria/internal/datasource"
	"vistoria/internal/probe"
	"vistoria/internal/production"
)

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.cfg.Log.WithError(err).Warn("encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, code int, err error) {
	s.writeJSON(w, code, map[string]string{"error": err.Error()})
}

// view parses the request filter against the current dataset and returns
// the filtered records.
func (s *Server) view(w http.ResponseWriter, r *http.Request) (production.MergedDataset, query, []production.InspectionRecord, bool) {
	d := s.dataset()
	q, err := parseQuery(r.URL.Query(), d)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return d, q, nil, false
	}
	return d, q, q.filter.Apply(d.Records), true
}

func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	listed, err := s.loader.Sources(r.Context())
	if err != nil {
		s.writeError(w, http.StatusBadGateway, err)
		return
	}
	d := s.dataset()
	o := production.Options(d)

	s.mu.RLock()
	selected := append([]string(nil), s.selected...)
	loadedAt := s.loadedAt
	s.mu.RUnlock()

	resp := sourcesResponse{
		Sources:  toSources(listed, d),
		Selected: nonNil(selected),
		Failures: toFailures(d.Failures),
		Token:    d.Token,
		Options: optionsJSON{
			Units:      nonNil(o.Units),
			Inspectors: nonNil(o.Inspectors),
			MinDate:    fmtDate(o.MinDate),
			MaxDate:    fmtDate(o.MaxDate),
		},
	}
	if !loadedAt.IsZero() {
		resp.LoadedAt = loadedAt.UTC().Format(time.RFC3339)
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) summaries(d production.MergedDataset, q query, view []production.InspectionRecord) []production.InspectorMonthSummary {
	if q.month != "" {
		return production.SummarizeMonth(view, d.Goals, q.month)
	}
	return production.Summarize(view, d.Goals)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	d, q, view, ok := s.view(w, r)
	if !ok {
		return
	}
	sums := s.summaries(d, q, view)
	rows := make([]summaryRow, 0, len(sums))
	for _, sm := range sums {
		rows = append(rows, toSummaryRow(sm))
	}
	s.writeJSON(w, http.StatusOK, summaryResponse{
		Filter:  toFilterJSON(q.filter),
		Columns: production.SummaryColumns,
		Rows:    rows,
	})
}

func (s *Server) handleSummaryCSV(w http.ResponseWriter, r *http.Request) {
	d, q, view, ok := s.view(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="resumo.csv"`)
	if err := production.WriteSummaryCSV(w, s.summaries(d, q, view)); err != nil {
		s.cfg.Log.WithError(err).Warn("write summary csv")
	}
}

func (s *Server) handleMonthlyRanking(w http.ResponseWriter, r *http.Request) {
	d, q, view, ok := s.view(w, r)
	if !ok {
		return
	}
	month := q.month
	if month == "" {
		month = production.LatestMonth(view)
	}
	sums := production.SummarizeMonth(view, d.Goals, month)

	resp := rankingResponse{Filter: toFilterJSON(q.filter)}
	for _, t := range q.types {
		resp.Rankings = append(resp.Rankings, toRankingJSON(production.MonthlyRanking(sums, t, month)))
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDailyRanking(w http.ResponseWriter, r *http.Request) {
	d, q, view, ok := s.view(w, r)
	if !ok {
		return
	}
	resp := rankingResponse{Filter: toFilterJSON(q.filter)}
	for _, t := range q.types {
		dr, err := production.DailyRanking(view, d.Goals, t, q.filter.Day)
		if errors.Is(err, production.ErrNoDates) {
			s.writeError(w, http.StatusNotFound, err)
			return
		}
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err)
			return
		}
		rj := toRankingJSON(dr.Ranking)
		rj.Requested = fmtDate(dr.Requested)
		rj.Day = fmtDate(dr.Day)
		rj.Substituted = dr.Substituted
		resp.Rankings = append(resp.Rankings, rj)
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	d, q, view, ok := s.view(w, r)
	if !ok {
		return
	}
	month := q.month
	if month == "" {
		month = production.LatestMonth(view)
	}
	s.writeJSON(w, http.StatusOK, insightsResponse{
		Filter:           toFilterJSON(q.filter),
		Totals:           production.ComputeTotals(view),
		Month:            production.ConsolidateMonth(production.SummarizeMonth(view, d.Goals, month), month),
		Daily:            toDaily(production.DailySeries(view)),
		Units:            production.ByUnit(view),
		MultiInspections: toAudit(production.MultiInspections(view)),
	})
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	var ids []string
	for _, id := range r.URL.Query()["source"] {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	res, err := s.Reload(r.Context(), ids...)
	switch {
	case errors.Is(err, production.ErrNoRecords):
		s.writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":    err.Error(),
			"failures": toFailures(res.Dataset.Failures),
		})
		return
	case err != nil:
		s.writeError(w, http.StatusBadGateway, err)
		return
	}
	s.cfg.Log.WithField("run", res.RunID).Infof("reloaded %d sources", len(res.Dataset.Sources))
	s.writeJSON(w, http.StatusOK, map[string]any{
		"run":      res.RunID,
		"token":    res.Dataset.Token,
		"sources":  res.Dataset.Sources,
		"records":  len(res.Dataset.Records),
		"goals":    len(res.Dataset.Goals),
		"failures": toFailures(res.Dataset.Failures),
	})
}

// handleProbe returns text/plain lines by default so scripts can curl it.
func (s *Server) handleProbe(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Fetcher == nil {
		s.writeError(w, http.StatusNotFound, errors.New("probe is not enabled"))
		return
	}
	q := r.URL.Query()
	id := strings.TrimSpace(q.Get("source"))
	if id == "" {
		s.writeError(w, http.StatusBadRequest, errors.New("source is required"))
		return
	}
	asJSON := q.Get("format") == "json"
	res, err := probe.Probe(r.Context(), s.cfg.Fetcher, probe.Options{Source: id, OutputJSON: asJSON})
	if err != nil {
		s.writeError(w, http.StatusBadGateway, err)
		return
	}
	if asJSON {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
	} else {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	if _, err := w.Write(res.Body); err != nil {
		s.cfg.Log.WithError(err).Debug("write probe")
	}
}

type pageData struct {
	Sources  []datasource.SourceInfo
	Filter   filterJSON
	Options  production.FilterOptions
	Columns  []string
	Rows     [][]string
	Totals   production.Totals
	Failures []failureJSON
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	d, q, view, ok := s.view(w, r)
	if !ok {
		return
	}
	listed, err := s.loader.Sources(r.Context())
	if err != nil {
		s.cfg.Log.WithError(err).Warn("list sources")
	}
	data := pageData{
		Sources:  listed,
		Filter:   toFilterJSON(q.filter),
		Options:  production.Options(d),
		Columns:  production.SummaryColumns,
		Totals:   production.ComputeTotals(view),
		Failures: toFailures(d.Failures),
	}
	for _, sm := range s.summaries(d, q, view) {
		data.Rows = append(data.Rows, production.FormatSummaryRow(sm))
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.Execute(w, data); err != nil {
		s.cfg.Log.WithError(err).Warn("template error")
	}
}
