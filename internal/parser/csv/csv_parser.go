// Package csv parses CSV exports of inspection and goal sheets into raw
// records. Header text is kept as written (minus BOM and edge spaces);
// canonicalization happens later in the transformer chain.
package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"vistoria/pkg/records"
)

// Options configures the parser. Zero values are usable.
type Options struct {
	// Comma is the field delimiter; ',' when zero. Brazilian Excel exports
	// commonly use ';'.
	Comma rune

	// Encoding is "utf-8" (default), "latin1"/"iso-8859-1" or
	// "windows-1252"/"cp1252".
	Encoding string

	// TrimSpace trims cell values.
	TrimSpace bool

	// Log receives one line per malformed row (capped). Nil disables it.
	Log logrus.FieldLogger
}

// Parser parses CSV input according to Options. Not safe for concurrent use.
type Parser struct{ opt Options }

// NewParser constructs a Parser.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// maxLoggedSkips caps per-file malformed-row log lines.
const maxLoggedSkips = 20

// Decoder returns the text decoder for name, or nil for UTF-8.
func Decoder(name string) (*encoding.Decoder, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return nil, nil
	case "latin1", "iso-8859-1":
		return charmap.ISO8859_1.NewDecoder(), nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder(), nil
	default:
		return nil, fmt.Errorf("csv: unsupported encoding %q", name)
	}
}

// Parse reads a header row followed by data rows. Short rows are padded
// with nil, rows wider than the header are skipped and counted, rows whose
// cells are all empty are dropped silently. Empty cells become nil.
func (p *Parser) Parse(r io.Reader) ([]records.Record, int, error) {
	dec, err := Decoder(p.opt.Encoding)
	if err != nil {
		return nil, 0, err
	}
	if dec != nil {
		r = dec.Reader(r)
	}

	cr := csv.NewReader(r)
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	h, err := cr.Read()
	if err == io.EOF {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("read csv header: %w", err)
	}
	headers := cleanHeaders(h)

	var (
		out     []records.Record
		skipped int
	)
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			p.logSkip(skipped, line, err.Error())
			skipped++
			continue
		}
		if len(row) > len(headers) && !blankTail(row[len(headers):]) {
			p.logSkip(skipped, line, fmt.Sprintf("expected %d fields, got %d", len(headers), len(row)))
			skipped++
			continue
		}

		rec := make(records.Record, len(headers))
		blank := true
		for i, key := range headers {
			if key == "" {
				continue
			}
			var val string
			if i < len(row) {
				val = row[i]
			}
			if p.opt.TrimSpace {
				val = strings.TrimSpace(val)
			}
			if val == "" {
				rec[key] = nil
				continue
			}
			blank = false
			rec[key] = val
		}
		if blank {
			continue
		}
		out = append(out, rec)
	}
	return out, skipped, nil
}

func (p *Parser) logSkip(n, line int, reason string) {
	if p.opt.Log == nil || n >= maxLoggedSkips {
		return
	}
	p.opt.Log.WithField("line", line).Warnf("csv: skipping row: %s", reason)
}

// cleanHeaders strips the BOM and edge spaces. Unnamed columns get "" and
// are ignored; duplicate names get a numeric suffix so no cell is lost.
func cleanHeaders(h []string) []string {
	res := make([]string, len(h))
	seen := make(map[string]int, len(h))
	for i, col := range h {
		c := strings.TrimSpace(col)
		if i == 0 {
			c = strings.TrimSpace(StripBOM(c))
		}
		if c == "" {
			continue
		}
		if n := seen[c]; n > 0 {
			seen[c] = n + 1
			c = fmt.Sprintf("%s_%d", c, n+1)
		} else {
			seen[c] = 1
		}
		res[i] = c
	}
	return res
}

func blankTail(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
