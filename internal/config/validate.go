package config

import (
	"fmt"
	"strings"
	"time"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError blocks execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is reported but does not block.
	SeverityWarning IssueSeverity = "warning"
)

// Issue is one lint finding. Path is dotted, e.g. "source.http.sources[1].records_url".
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ValidateConfig lints c without modifying it.
func ValidateConfig(c Config) []Issue {
	var issues []Issue
	issues = append(issues, validateSource(c.Source)...)
	issues = append(issues, validateParser(c.Parser)...)
	issues = append(issues, validateEngine(c.Engine)...)
	issues = append(issues, validateRuntime(c.Runtime)...)
	issues = append(issues, validateMetrics(c.Metrics)...)
	issues = append(issues, validateLog(c.Log)...)
	return issues
}

func errorf(path, format string, a ...any) Issue {
	return Issue{Severity: SeverityError, Path: path, Message: fmt.Sprintf(format, a...)}
}

func warnf(path, format string, a ...any) Issue {
	return Issue{Severity: SeverityWarning, Path: path, Message: fmt.Sprintf(format, a...)}
}

func validateSource(s Source) []Issue {
	var issues []Issue
	switch strings.ToLower(strings.TrimSpace(s.Kind)) {
	case SourceFolder:
		if strings.TrimSpace(s.Folder.Path) == "" {
			issues = append(issues, errorf("source.folder.path", "path is required for folder sources"))
		}
	case SourceHTTP:
		if len(s.HTTP.Sources) == 0 && strings.TrimSpace(s.HTTP.ListFile) == "" {
			issues = append(issues, errorf("source.http", "either sources or list_file is required"))
		}
		for i, src := range s.HTTP.Sources {
			if strings.TrimSpace(src.RecordsURL) == "" {
				issues = append(issues, errorf(fmt.Sprintf("source.http.sources[%d].records_url", i), "records_url is required"))
			}
			if strings.TrimSpace(src.GoalsURL) == "" {
				issues = append(issues, warnf(fmt.Sprintf("source.http.sources[%d].goals_url", i), "no goals_url; inspectors from this source will have no goal"))
			}
		}
		if s.HTTP.Timeout != "" {
			if _, err := time.ParseDuration(s.HTTP.Timeout); err != nil {
				issues = append(issues, errorf("source.http.timeout", "invalid duration %q", s.HTTP.Timeout))
			}
		}
		if s.HTTP.MaxRetries < 0 {
			issues = append(issues, errorf("source.http.max_retries", "must be >= 0"))
		}
	case SourceDB:
		switch s.DB.Driver {
		case "postgres", "sqlite", "mssql":
		case "":
			issues = append(issues, errorf("source.db.driver", "driver is required"))
		default:
			issues = append(issues, errorf("source.db.driver", "unsupported driver %q (want postgres, sqlite or mssql)", s.DB.Driver))
		}
		if strings.TrimSpace(s.DB.DSN) == "" {
			issues = append(issues, errorf("source.db.dsn", "dsn is required"))
		}
		if strings.TrimSpace(s.DB.RecordsTable) == "" {
			issues = append(issues, errorf("source.db.records_table", "records_table is required"))
		}
		if strings.TrimSpace(s.DB.GoalsTable) == "" {
			issues = append(issues, warnf("source.db.goals_table", "no goals_table; all inspectors will have no goal"))
		}
		if strings.TrimSpace(s.DB.SourceColumn) == "" {
			issues = append(issues, warnf("source.db.source_column", "no source_column; each table is read as a single source"))
		}
	case "":
		issues = append(issues, errorf("source.kind", "kind is required"))
	default:
		issues = append(issues, errorf("source.kind", "unsupported kind %q", s.Kind))
	}
	return issues
}

func validateParser(p Parser) []Issue {
	var issues []Issue
	if v, ok := p.Options["comma"]; ok {
		s, isStr := v.(string)
		if !isStr || len([]rune(s)) != 1 {
			issues = append(issues, errorf("parser.options.comma", "comma must be a single character"))
		}
	}
	switch strings.ToLower(p.Options.String("encoding", "utf-8")) {
	case "utf-8", "utf8", "latin1", "iso-8859-1", "windows-1252", "cp1252":
	default:
		issues = append(issues, errorf("parser.options.encoding", "unsupported encoding %q", p.Options.String("encoding", "")))
	}
	return issues
}

func validateEngine(e Engine) []Issue {
	switch e.ReinspectionScope {
	case "", ScopeSource, ScopeGlobal:
		return nil
	default:
		return []Issue{errorf("engine.reinspection_scope", "must be %q or %q", ScopeSource, ScopeGlobal)}
	}
}

func validateRuntime(r RuntimeConfig) []Issue {
	if r.FetchWorkers < 0 {
		return []Issue{errorf("runtime.fetch_workers", "must be >= 0")}
	}
	if r.FetchWorkers > 32 {
		return []Issue{warnf("runtime.fetch_workers", "%d workers is unusually high for sheet downloads", r.FetchWorkers)}
	}
	return nil
}

func validateMetrics(m Metrics) []Issue {
	switch m.Backend {
	case "", "none":
	case "pushgateway":
		if m.Pushgateway.URL == "" {
			return []Issue{warnf("metrics.pushgateway.url", "empty; http://localhost:9091 will be used")}
		}
	case "datadog":
		if m.Datadog.Addr == "" {
			return []Issue{errorf("metrics.datadog.addr", "addr is required for the datadog backend")}
		}
	default:
		return []Issue{errorf("metrics.backend", "unknown backend %q", m.Backend)}
	}
	return nil
}

func validateLog(l Log) []Issue {
	switch strings.ToLower(l.Level) {
	case "", "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic":
		return nil
	default:
		return []Issue{warnf("log.level", "unknown level %q; info will be used", l.Level)}
	}
}
