// Package config defines the configuration model for the inspector
// production panel. A config file is JSON or YAML with the same shape:
//
//	{
//	  "job":     "painel",
//	  "source":  { "kind": "folder", "folder": { "path": "./planilhas" } },
//	  "parser":  { "options": { "comma": ";", "encoding": "latin1" } },
//	  "engine":  { "reinspection_scope": "source" },
//	  "runtime": { "fetch_workers": 4 },
//	  "metrics": { "backend": "pushgateway", "pushgateway": { "url": "http://localhost:9091" } },
//	  "log":     { "level": "info" },
//	  "server":  { "addr": ":8080" }
//	}
package config

import "encoding/json"

// Config is the top-level document.
type Config struct {
	// Job names the run in logs and metrics.
	Job string `json:"job" yaml:"job"`

	Source  Source        `json:"source" yaml:"source"`
	Parser  Parser        `json:"parser" yaml:"parser"`
	Engine  Engine        `json:"engine" yaml:"engine"`
	Runtime RuntimeConfig `json:"runtime" yaml:"runtime"`
	Metrics Metrics       `json:"metrics" yaml:"metrics"`
	Log     Log           `json:"log" yaml:"log"`
	Server  Server        `json:"server" yaml:"server"`
}

// Source kinds.
const (
	SourceFolder = "folder"
	SourceHTTP   = "http"
	SourceDB     = "db"
)

// Source selects where inspection sheets come from.
type Source struct {
	// Kind is one of "folder", "http" or "db".
	Kind string `json:"kind" yaml:"kind"`

	Folder SourceFolderConfig `json:"folder" yaml:"folder"`
	HTTP   SourceHTTPConfig   `json:"http" yaml:"http"`
	DB     DBConfig           `json:"db" yaml:"db"`
}

// SourceFolderConfig points at a directory of .xlsx / .csv sheets.
type SourceFolderConfig struct {
	Path string `json:"path" yaml:"path"`
}

// SourceHTTPConfig lists CSV exports reachable over HTTP.
type SourceHTTPConfig struct {
	// Sources are declared inline.
	Sources []HTTPSource `json:"sources" yaml:"sources"`

	// ListFile is a text file with one source per line:
	// "title | records_url [| goals_url]". Blank lines and # comments are skipped.
	ListFile string `json:"list_file" yaml:"list_file"`

	// Timeout is a Go duration string, e.g. "30s".
	Timeout    string            `json:"timeout" yaml:"timeout"`
	MaxRetries int               `json:"max_retries" yaml:"max_retries"`
	Headers    map[string]string `json:"headers" yaml:"headers"`
}

// HTTPSource is one remote sheet.
type HTTPSource struct {
	Title      string `json:"title" yaml:"title"`
	RecordsURL string `json:"records_url" yaml:"records_url"`
	GoalsURL   string `json:"goals_url" yaml:"goals_url"`
}

// DBConfig reads sheets previously loaded into SQL tables.
type DBConfig struct {
	// Driver is "postgres", "sqlite" or "mssql".
	Driver string `json:"driver" yaml:"driver"`
	DSN    string `json:"dsn" yaml:"dsn"`

	// RecordsTable and GoalsTable may be schema-qualified.
	RecordsTable string `json:"records_table" yaml:"records_table"`
	GoalsTable   string `json:"goals_table" yaml:"goals_table"`

	// SourceColumn partitions both tables into sources (e.g. the sheet title).
	SourceColumn string `json:"source_column" yaml:"source_column"`
}

// Parser carries format options. Recognised keys:
//
//	comma         (string)  CSV delimiter, default ","
//	encoding      (string)  "utf-8" (default) or "latin1"
//	records_sheet (string)  workbook sheet with inspections, default: first sheet
//	goals_sheet   (string)  workbook sheet with goals, default "METAS"
type Parser struct {
	Options Options `json:"options" yaml:"options"`
}

// Re-inspection scopes.
const (
	ScopeSource = "source"
	ScopeGlobal = "global"
)

// Engine tunes the metrics engine.
type Engine struct {
	// ReinspectionScope is "source" (classify each sheet on its own) or
	// "global" (classify the merged set).
	ReinspectionScope string `json:"reinspection_scope" yaml:"reinspection_scope"`
}

// RuntimeConfig controls concurrency.
type RuntimeConfig struct {
	FetchWorkers int `json:"fetch_workers" yaml:"fetch_workers"`
}

// Metrics selects a metrics backend.
type Metrics struct {
	// Backend is "none", "pushgateway" or "datadog".
	Backend     string            `json:"backend" yaml:"backend"`
	Pushgateway PushgatewayConfig `json:"pushgateway" yaml:"pushgateway"`
	Datadog     DatadogConfig     `json:"datadog" yaml:"datadog"`
}

type PushgatewayConfig struct {
	URL string `json:"url" yaml:"url"`
}

type DatadogConfig struct {
	Addr      string   `json:"addr" yaml:"addr"`
	Namespace string   `json:"namespace" yaml:"namespace"`
	Tags      []string `json:"tags" yaml:"tags"`
}

// Log configures the logger.
type Log struct {
	Level string `json:"level" yaml:"level"`
	File  string `json:"file" yaml:"file"`
}

// Server configures the HTTP API.
type Server struct {
	Addr string `json:"addr" yaml:"addr"`
}

// Options is a free-form bag with typed accessors. Accessors return def
// when the key is missing or holds an unexpected type.
type Options map[string]any

// String returns the string value for key or def.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the bool value for key or def.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Int accepts float64 (JSON numbers) and int (YAML numbers).
func (o Options) Int(key string, def int) int {
	if v, ok := o[key]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		}
	}
	return def
}

// Rune returns the first rune of a string value, for delimiter settings.
func (o Options) Rune(key string, def rune) rune {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok && len(s) > 0 {
			return []rune(s)[0]
		}
	}
	return def
}

// StringMap returns the string-valued entries of an object value.
func (o Options) StringMap(key string) map[string]string {
	res := map[string]string{}
	if v, ok := o[key]; ok {
		if m, ok := v.(map[string]any); ok {
			for k, vv := range m {
				if s, ok := vv.(string); ok {
					res[k] = s
				}
			}
		}
	}
	return res
}

// StringSlice returns the string elements of an array value, or nil.
func (o Options) StringSlice(key string) []string {
	if v, ok := o[key]; ok {
		switch vv := v.(type) {
		case []any:
			out := make([]string, 0, len(vv))
			for _, x := range vv {
				if s, ok := x.(string); ok {
					out = append(out, s)
				}
			}
			return out
		case []string:
			return vv
		}
	}
	return nil
}

// UnmarshalJSON makes a missing or null options object decode to an empty,
// non-nil map.
func (o *Options) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		*o = Options{}
		return nil
	}
	var tmp map[string]any
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*o = Options(tmp)
	return nil
}
