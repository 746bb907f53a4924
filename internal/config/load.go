package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Defaults applied by Load for zero values.
const (
	DefaultJob          = "painel"
	DefaultFetchWorkers = 4
	DefaultGoalsSheet   = "METAS"
	DefaultServerAddr   = ":8080"
)

// Load reads a JSON or YAML config (by extension), applies environment
// overrides through getenv and fills defaults. A nil getenv means os.Getenv.
func Load(path string, getenv func(string) string) (Config, error) {
	var c Config

	b, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := Decode(b, filepath.Ext(path), &c); err != nil {
		return c, fmt.Errorf("config: decode %s: %w", path, err)
	}

	if getenv == nil {
		getenv = os.Getenv
	}
	ApplyEnv(&c, getenv)
	ApplyDefaults(&c)
	return c, nil
}

// Decode unmarshals b as YAML when ext is ".yaml"/".yml", JSON otherwise.
func Decode(b []byte, ext string, c *Config) error {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, c); err != nil {
			return err
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(b))
		if err := dec.Decode(c); err != nil {
			return err
		}
	}
	if c.Parser.Options == nil {
		c.Parser.Options = Options{}
	}
	return nil
}

// ApplyEnv overrides file values with PAINEL_* variables when set.
func ApplyEnv(c *Config, getenv func(string) string) {
	if v := getenv("PAINEL_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := getenv("PAINEL_METRICS_BACKEND"); v != "" {
		c.Metrics.Backend = v
	}
	if v := getenv("PAINEL_PUSHGATEWAY_URL"); v != "" {
		c.Metrics.Pushgateway.URL = v
	}
	if v := getenv("PAINEL_DB_DSN"); v != "" {
		c.Source.DB.DSN = v
	}
	if v := getenv("PAINEL_HTTP_ADDR"); v != "" {
		c.Server.Addr = v
	}
	c.Runtime.FetchWorkers = pickInt(getenvInt(getenv, "PAINEL_FETCH_WORKERS", 0), c.Runtime.FetchWorkers)
}

// ApplyDefaults fills zero values.
func ApplyDefaults(c *Config) {
	if c.Job == "" {
		c.Job = DefaultJob
	}
	if c.Engine.ReinspectionScope == "" {
		c.Engine.ReinspectionScope = ScopeSource
	}
	c.Runtime.FetchWorkers = pickInt(c.Runtime.FetchWorkers, DefaultFetchWorkers)
	if c.Metrics.Backend == "" {
		c.Metrics.Backend = "none"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultServerAddr
	}
	if c.Parser.Options == nil {
		c.Parser.Options = Options{}
	}
}

func getenvInt(getenv func(string) string, k string, def int) int {
	v := strings.TrimSpace(getenv(k))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// pickInt returns a when positive, else b.
func pickInt(a, b int) int {
	if a > 0 {
		return a
	}
	return b
}
