// Command painel loads inspection sheets, computes inspector production
// against monthly goals and prints the resumo and rankings, exports them to
// CSV, or serves them over HTTP.
//
// Usage:
//
//	painel -config painel.yaml                 # print tables for all sources
//	painel -config painel.yaml -source a.xlsx  # one source
//	painel -config painel.yaml -out resumo.csv # export the resumo
//	painel -config painel.yaml -serve          # HTTP API on server.addr
//	painel -config painel.yaml -probe -json    # diagnose sheet headers
//	painel -config painel.yaml -validate       # lint the config and exit
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"vistoria/internal/config"
	"vistoria/internal/datasource"
	"vistoria/internal/ingest"
	"vistoria/internal/logger"
	"vistoria/internal/probe"
	"vistoria/internal/production"
	"vistoria/internal/webui"

	// register all SQL backends with the storage factory; the config picks one.
	_ "vistoria/internal/storage/all"
)

// server is the part of *webui.Server run needs.
type server interface {
	SetDataset(d production.MergedDataset, selected []string)
	ListenAndServe() error
}

// newServer is swapped in tests.
var newServer = func(cfg webui.Config, l webui.Loader) server {
	return webui.NewServer(cfg, l)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr, os.Getenv); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type cliFlags struct {
	configPath string
	envPath    string
	sources    string
	month      string
	day        string
	out        string
	addr       string
	serve      bool
	list       bool
	probe      bool
	json       bool
	validate   bool
	verbose    bool
}

func parseFlags(args []string, stderr io.Writer) (cliFlags, error) {
	var f cliFlags
	fs := flag.NewFlagSet("painel", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&f.configPath, "config", "painel.yaml", "config file (.json, .yaml or .yml)")
	fs.StringVar(&f.envPath, "env", ".env", "dotenv file with PAINEL_* overrides; ignored when missing")
	fs.StringVar(&f.sources, "source", "", "comma-separated source IDs (default: all listed sources)")
	fs.StringVar(&f.month, "month", "", "reference month for rankings, YYYY-MM (default: latest)")
	fs.StringVar(&f.day, "day", "", "day for the daily ranking, YYYY-MM-DD (default: latest)")
	fs.StringVar(&f.out, "out", "", "write the resumo as CSV to this path")
	fs.StringVar(&f.addr, "addr", "", "listen address for -serve (overrides server.addr)")
	fs.BoolVar(&f.serve, "serve", false, "serve the HTTP API instead of printing")
	fs.BoolVar(&f.list, "list", false, "list available sources and exit")
	fs.BoolVar(&f.probe, "probe", false, "diagnose the headers of the selected sources and exit")
	fs.BoolVar(&f.json, "json", false, "with -probe, print JSON reports instead of CSV lines")
	fs.BoolVar(&f.validate, "validate", false, "validate the configuration and exit")
	fs.BoolVar(&f.verbose, "v", false, "enable debug logs")
	if err := fs.Parse(args); err != nil {
		return f, err
	}
	return f, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, getenv func(string) string) error {
	f, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	getenv, err = withDotenv(f.envPath, getenv)
	if err != nil {
		return err
	}
	cfg, err := config.Load(f.configPath, getenv)
	if err != nil {
		return err
	}

	issues := config.ValidateConfig(cfg)
	for _, iss := range issues {
		fmt.Fprintf(stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		return fmt.Errorf("configuration is invalid: %s", f.configPath)
	}
	if f.validate {
		fmt.Fprintf(stdout, "configuration is valid: %s\n", f.configPath)
		return nil
	}

	level := cfg.Log.Level
	if f.verbose {
		level = "debug"
	}
	log, closeLog, err := logger.New(level, cfg.Log.File)
	if err != nil {
		return err
	}
	defer closeLog()

	flush := setupMetrics(cfg, log)
	defer flush()

	fetcher, closeFetcher, err := buildFetcher(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeFetcher()

	loader := ingest.NewLoader(fetcher, ingest.Options{
		Job:     cfg.Job,
		Workers: cfg.Runtime.FetchWorkers,
		Scope:   cfg.Engine.ReinspectionScope,
		Log:     log,
	})

	if f.list {
		infos, err := loader.Sources(ctx)
		if err != nil {
			return err
		}
		printSources(stdout, infos)
		return nil
	}

	ids := splitIDs(f.sources)
	if f.probe {
		return probeSources(ctx, stdout, fetcher, ids, f.json)
	}

	res, err := loader.Load(ctx, ids...)
	if err != nil && !errors.Is(err, production.ErrNoRecords) {
		return err
	}
	for _, fl := range res.Dataset.Failures {
		log.WithField("source", fl.Source).WithError(fl.Err).Warn("source left out")
	}

	if f.serve {
		addr := cfg.Server.Addr
		if f.addr != "" {
			addr = f.addr
		}
		srv := newServer(webui.Config{Addr: addr, Job: cfg.Job, Log: log, Fetcher: fetcher}, loader)
		srv.SetDataset(res.Dataset, ids)
		log.Infof("listening on %s", addr)
		return srv.ListenAndServe()
	}

	if err != nil {
		return err
	}
	return report(stdout, res.Dataset, reportOptions{month: f.month, day: f.day, out: f.out}, log)
}

// probeSources prints a probe report per source; all listed sources when ids
// is empty.
func probeSources(ctx context.Context, w io.Writer, f datasource.Fetcher, ids []string, asJSON bool) error {
	if len(ids) == 0 {
		infos, err := f.List(ctx)
		if err != nil {
			return err
		}
		for _, s := range infos {
			ids = append(ids, s.ID)
		}
	}
	for _, id := range ids {
		res, err := probe.Probe(ctx, f, probe.Options{Source: id, OutputJSON: asJSON})
		if err != nil {
			return fmt.Errorf("probe %s: %w", id, err)
		}
		if !asJSON {
			fmt.Fprintf(w, "## %s\n", id)
		}
		if _, err := w.Write(res.Body); err != nil {
			return err
		}
	}
	return nil
}

// withDotenv layers the variables of path under getenv: the process
// environment wins, as with godotenv.Load, but the process is not mutated.
func withDotenv(path string, getenv func(string) string) (func(string) string, error) {
	if path == "" {
		return getenv, nil
	}
	vals, err := godotenv.Read(path)
	if errors.Is(err, os.ErrNotExist) {
		return getenv, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return func(k string) string {
		if v := getenv(k); v != "" {
			return v
		}
		return vals[k]
	}, nil
}

func splitIDs(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseDayFlag(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	d, ok := production.ParseDate(s)
	if !ok {
		return time.Time{}, fmt.Errorf("-day: cannot parse %q", s)
	}
	return d, nil
}
