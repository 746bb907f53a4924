package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"vistoria/internal/config"
	"vistoria/internal/datasource"
	"vistoria/internal/datasource/file"
	"vistoria/internal/datasource/httpds"
	"vistoria/internal/metrics"
	"vistoria/internal/metrics/datadog"
	"vistoria/internal/metrics/prompush"
	pcsv "vistoria/internal/parser/csv"
	"vistoria/internal/storage"
)

const defaultPushgatewayURL = "http://localhost:9091"

// buildFetcher returns the fetcher for cfg.Source and a func releasing it.
func buildFetcher(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (datasource.Fetcher, func(), error) {
	nop := func() {}
	opts := cfg.Parser.Options
	csvOpt := pcsv.Options{
		Comma:     opts.Rune("comma", ','),
		Encoding:  opts.String("encoding", "utf-8"),
		TrimSpace: true,
		Log:       log,
	}

	switch strings.ToLower(cfg.Source.Kind) {
	case config.SourceFolder:
		return file.NewFolder(cfg.Source.Folder.Path, file.FolderOptions{
			CSV:          csvOpt,
			RecordsSheet: opts.String("records_sheet", ""),
			GoalsSheet:   opts.String("goals_sheet", config.DefaultGoalsSheet),
		}), nop, nil

	case config.SourceHTTP:
		h := cfg.Source.HTTP
		remotes := make([]httpds.Remote, 0, len(h.Sources))
		for _, s := range h.Sources {
			remotes = append(remotes, httpds.Remote{Title: s.Title, RecordsURL: s.RecordsURL, GoalsURL: s.GoalsURL})
		}
		if h.ListFile != "" {
			lines, err := file.ReadList(h.ListFile)
			if err != nil {
				return nil, nop, fmt.Errorf("read list file: %w", err)
			}
			listed, err := httpds.ParseList(lines)
			if err != nil {
				return nil, nop, err
			}
			remotes = append(remotes, listed...)
		}
		var timeout time.Duration
		if h.Timeout != "" {
			d, err := time.ParseDuration(h.Timeout)
			if err != nil {
				return nil, nop, fmt.Errorf("source.http.timeout: %w", err)
			}
			timeout = d
		}
		headers := http.Header{}
		for k, v := range h.Headers {
			headers.Set(k, v)
		}
		client := httpds.NewClient(httpds.Config{
			Timeout:     timeout,
			MaxRetries:  h.MaxRetries,
			BaseHeaders: headers,
		})
		return httpds.NewFetcher(client, remotes, csvOpt), nop, nil

	case config.SourceDB:
		db := cfg.Source.DB
		repo, err := storage.New(ctx, storage.Config{Kind: db.Driver, DSN: db.DSN})
		if err != nil {
			return nil, nop, fmt.Errorf("open %s source: %w", db.Driver, err)
		}
		f, err := storage.NewFetcher(repo, storage.Tables{
			Records:      db.RecordsTable,
			Goals:        db.GoalsTable,
			SourceColumn: db.SourceColumn,
		})
		if err != nil {
			repo.Close()
			return nil, nop, err
		}
		return f, repo.Close, nil

	default:
		return nil, nop, fmt.Errorf("unsupported source kind %q", cfg.Source.Kind)
	}
}

// setupMetrics installs the configured backend and returns the flush to
// run before exit. Backend failures degrade to the nop backend.
func setupMetrics(cfg config.Config, log logrus.FieldLogger) func() {
	log = log.WithField("backend", cfg.Metrics.Backend)
	var (
		b   metrics.Backend
		err error
	)
	switch cfg.Metrics.Backend {
	case "pushgateway":
		url := cfg.Metrics.Pushgateway.URL
		if url == "" {
			url = defaultPushgatewayURL
		}
		b, err = prompush.NewBackend(cfg.Job, url)
	case "datadog":
		b, err = datadog.NewBackend(datadog.Config{
			Addr:       cfg.Metrics.Datadog.Addr,
			Namespace:  cfg.Metrics.Datadog.Namespace,
			GlobalTags: cfg.Metrics.Datadog.Tags,
		})
	default:
		log.Debug("metrics disabled")
		return func() {}
	}
	if err != nil {
		log.WithError(err).Warn("metrics: init failed; using nop")
		return func() {}
	}
	metrics.SetBackend(b)
	log.Debug("metrics enabled")
	return func() {
		if err := metrics.Flush(); err != nil {
			log.WithError(err).Warn("metrics: flush")
		}
	}
}
