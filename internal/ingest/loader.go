// Package ingest loads every selected source through a datasource.Fetcher,
// normalizes each one independently and merges the survivors. A source that
// fails to fetch or lacks required columns is reported and skipped; the
// others continue.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"vistoria/internal/config"
	"vistoria/internal/datasource"
	"vistoria/internal/metrics"
	"vistoria/internal/production"
)

// Options configures a Loader. Zero values are usable.
type Options struct {
	// Job labels metrics; config.DefaultJob when empty.
	Job string
	// Workers bounds concurrent source fetches; config.DefaultFetchWorkers
	// when <= 0.
	Workers int
	// Scope is config.ScopeSource (default) or config.ScopeGlobal.
	Scope string
	// Now resolves goal months of sources without any date; time.Now when nil.
	Now func() time.Time
	Log logrus.FieldLogger
}

// Loader runs ingestion passes.
type Loader struct {
	fetcher datasource.Fetcher
	opt     Options
}

// NewLoader returns a Loader reading through f.
func NewLoader(f datasource.Fetcher, opt Options) *Loader {
	if opt.Job == "" {
		opt.Job = config.DefaultJob
	}
	if opt.Workers <= 0 {
		opt.Workers = config.DefaultFetchWorkers
	}
	if opt.Scope == "" {
		opt.Scope = config.ScopeSource
	}
	if opt.Now == nil {
		opt.Now = time.Now
	}
	if opt.Log == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		opt.Log = l
	}
	return &Loader{fetcher: f, opt: opt}
}

// Result is the outcome of one ingestion pass.
type Result struct {
	RunID   string
	Dataset production.MergedDataset
	// Stats holds per-source normalization counters, by source ID.
	Stats    map[string]production.NormalizeStats
	Duration time.Duration
}

// Sources lists what the fetcher offers.
func (l *Loader) Sources(ctx context.Context) ([]datasource.SourceInfo, error) {
	return l.fetcher.List(ctx)
}

// Load ingests the sources named by ids, or all listed sources when ids is
// empty. Sources are merged in listing order. Per-source failures end up in
// Result.Dataset.Failures. It returns production.ErrNoRecords, along with the
// Result, when no record survived; listing errors and context cancellation
// are returned as is.
func (l *Loader) Load(ctx context.Context, ids ...string) (Result, error) {
	start := time.Now()
	res := Result{RunID: uuid.NewString(), Stats: map[string]production.NormalizeStats{}}
	log := l.opt.Log.WithField("run", res.RunID)

	listed, err := l.fetcher.List(ctx)
	metrics.RecordStep(l.opt.Job, "list", err, time.Since(start))
	if err != nil {
		return res, fmt.Errorf("list sources: %w", err)
	}
	selected, failures := selectSources(listed, ids)

	slots := make([]outcome, len(selected))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.opt.Workers)
	for i, info := range selected {
		g.Go(func() error {
			slots[i] = l.loadOne(gctx, info, log)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return res, err
	}

	var sources []production.NormalizedSource
	for _, o := range slots {
		if o.err != nil {
			failures = append(failures, production.SourceFailure{Source: o.source.ID, Err: o.err})
			metrics.RecordSource(l.opt.Job, "failed")
			continue
		}
		metrics.RecordSource(l.opt.Job, "ok")
		res.Stats[o.source.ID] = o.source.Stats
		sources = append(sources, o.source)
	}

	mergeStart := time.Now()
	res.Dataset = production.Merge(sources, failures)
	if l.opt.Scope == config.ScopeGlobal {
		res.Dataset = res.Dataset.Reclassify()
	}
	metrics.RecordStep(l.opt.Job, "merge", nil, time.Since(mergeStart))
	res.Duration = time.Since(start)
	l.report(log, res)

	if res.Dataset.Empty() {
		return res, production.ErrNoRecords
	}
	return res, nil
}

type outcome struct {
	source production.NormalizedSource
	err    error
}

func (l *Loader) loadOne(ctx context.Context, info datasource.SourceInfo, log logrus.FieldLogger) outcome {
	log = log.WithField("source", info.ID)
	ns := production.NormalizedSource{ID: info.ID, Title: info.Title}

	t := time.Now()
	raw, err := l.fetcher.FetchRecords(ctx, info.ID)
	metrics.RecordStep(l.opt.Job, "fetch", err, time.Since(t))
	if err != nil {
		log.WithError(err).Warn("source unavailable")
		return outcome{source: ns, err: datasource.Unavailable(info.ID, err)}
	}
	metrics.RecordRows(l.opt.Job, "loaded", int64(len(raw)))

	t = time.Now()
	recs, stats, err := production.Normalize(info.ID, raw)
	metrics.RecordStep(l.opt.Job, "normalize", err, time.Since(t))
	if err != nil {
		log.WithError(err).Warn("source skipped")
		return outcome{source: ns, err: err}
	}
	ns.Stats = stats
	ns.Records = production.Classify(recs)
	metrics.RecordRows(l.opt.Job, "kept", int64(stats.Kept))
	metrics.RecordRows(l.opt.Job, "date_failures", int64(stats.DateFailures))
	metrics.RecordRows(l.opt.Job, "reinspections", int64(countReinspections(ns.Records)))

	t = time.Now()
	ns.Goals, err = l.goals(ctx, info, ns.Records)
	metrics.RecordStep(l.opt.Job, "goals", err, time.Since(t))
	if err != nil {
		// Goals are optional: the source still counts, with zero goals.
		log.WithError(err).Warn("goals ignored")
	}
	metrics.RecordRows(l.opt.Job, "goals", int64(len(ns.Goals)))

	log.WithFields(logrus.Fields{
		"rows":          stats.Rows,
		"kept":          stats.Kept,
		"banned_units":  stats.BannedUnits,
		"date_failures": stats.DateFailures,
		"goals":         len(ns.Goals),
	}).Debug("source loaded")
	return outcome{source: ns}
}

func (l *Loader) goals(ctx context.Context, info datasource.SourceInfo, recs []production.InspectionRecord) ([]production.GoalRecord, error) {
	raw, err := l.fetcher.FetchGoals(ctx, info.ID)
	if err != nil {
		return nil, datasource.Unavailable(info.ID, err)
	}
	return production.NormalizeGoals(raw, production.GoalContext{
		SourceID: info.ID,
		Title:    info.Title,
		Records:  recs,
		Now:      l.opt.Now,
	})
}

func (l *Loader) report(log logrus.FieldLogger, res Result) {
	var rows, dateFailures int
	for _, s := range res.Stats {
		rows += s.Rows
		dateFailures += s.DateFailures
	}
	entry := log.WithFields(logrus.Fields{
		"sources_ok":     len(res.Dataset.Sources),
		"sources_failed": len(res.Dataset.Failures),
		"duration":       res.Duration.Round(time.Millisecond),
	})
	for _, f := range res.Dataset.Failures {
		var se *production.SchemaError
		if errors.As(f.Err, &se) {
			entry.WithField("source", f.Source).Errorf("missing columns: %v", se.Missing)
		}
	}
	entry.Infof("ingested %s of %s rows (%s goals, %s undated)",
		humanize.Comma(int64(len(res.Dataset.Records))),
		humanize.Comma(int64(rows)),
		humanize.Comma(int64(len(res.Dataset.Goals))),
		humanize.Comma(int64(dateFailures)))
}

// selectSources keeps listed sources named in ids, in listing order. Unknown
// ids become failures.
func selectSources(listed []datasource.SourceInfo, ids []string) ([]datasource.SourceInfo, []production.SourceFailure) {
	if len(ids) == 0 {
		return listed, nil
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []datasource.SourceInfo
	for _, s := range listed {
		if want[s.ID] {
			out = append(out, s)
			delete(want, s.ID)
		}
	}
	var failures []production.SourceFailure
	for _, id := range ids {
		if want[id] {
			failures = append(failures, production.SourceFailure{
				Source: id,
				Err:    datasource.Unavailable(id, errors.New("not listed")),
			})
			delete(want, id)
		}
	}
	return out, failures
}

func countReinspections(recs []production.InspectionRecord) int {
	n := 0
	for _, r := range recs {
		if r.IsReinspection {
			n++
		}
	}
	return n
}
