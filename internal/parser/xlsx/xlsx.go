// Package xlsx reads workbook sheets into raw records. The first row of a
// sheet is its header; header text is kept as written.
package xlsx

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"vistoria/internal/textnorm"
	"vistoria/pkg/records"
)

// Options configures sheet reading.
type Options struct {
	// DateColumns lists headers (matched accent/case-insensitively) whose
	// numeric cells are Excel date serials to be rendered as "2006-01-02".
	// Defaults to DATA.
	DateColumns []string
}

func (o Options) dateSet() textnorm.Set {
	cols := o.DateColumns
	if len(cols) == 0 {
		cols = []string{"DATA"}
	}
	return textnorm.NewSet(cols...)
}

// Workbook wraps an open excelize file.
type Workbook struct {
	f   *excelize.File
	opt Options
}

// Open reads a workbook from r.
func Open(r io.Reader, opt Options) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("xlsx: open: %w", err)
	}
	return &Workbook{f: f, opt: opt}, nil
}

// OpenFile opens the workbook at path.
func OpenFile(path string, opt Options) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("xlsx: open %s: %w", path, err)
	}
	return &Workbook{f: f, opt: opt}, nil
}

// Close releases the workbook.
func (w *Workbook) Close() error { return w.f.Close() }

// Sheets lists sheet names in workbook order.
func (w *Workbook) Sheets() []string { return w.f.GetSheetList() }

// FirstSheet returns the first sheet name, or "" for an empty workbook.
func (w *Workbook) FirstSheet() string {
	if s := w.f.GetSheetList(); len(s) > 0 {
		return s[0]
	}
	return ""
}

// FindSheet looks a sheet up ignoring case, accents and edge spaces, so
// "metas", "Metas " and "METAS" all match.
func (w *Workbook) FindSheet(name string) (string, bool) {
	want := textnorm.Key(name)
	for _, s := range w.f.GetSheetList() {
		if textnorm.Key(s) == want {
			return s, true
		}
	}
	return "", false
}

// Records reads sheet into records. Empty cells become nil and fully blank
// rows are dropped. The int result is always 0; workbook rows cannot be
// malformed the way CSV lines can.
func (w *Workbook) Records(sheet string) ([]records.Record, int, error) {
	rows, err := w.f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, 0, fmt.Errorf("xlsx: read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, 0, nil
	}

	dates := w.opt.dateSet()
	header := make([]string, len(rows[0]))
	isDate := make([]bool, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
		isDate[i] = dates.Contains(h)
	}

	out := make([]records.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(records.Record, len(header))
		blank := true
		for i, key := range header {
			if key == "" {
				continue
			}
			var val string
			if i < len(row) {
				val = strings.TrimSpace(row[i])
			}
			if val == "" {
				rec[key] = nil
				continue
			}
			blank = false
			if isDate[i] {
				val = serialToDate(val)
			}
			rec[key] = val
		}
		if !blank {
			out = append(out, rec)
		}
	}
	return out, 0, nil
}

// serialToDate converts an Excel serial ("45414" or "45414.5") to
// "2006-01-02"; anything else is returned unchanged.
func serialToDate(v string) string {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 1 {
		return v
	}
	t, err := excelize.ExcelDateToTime(f, false)
	if err != nil {
		return v
	}
	return t.Format("2006-01-02")
}

// SheetParser adapts a single sheet to parser.Parser. An empty Sheet
// selects the first sheet.
type SheetParser struct {
	Sheet string
	Options
}

// Parse implements parser.Parser.
func (p SheetParser) Parse(r io.Reader) ([]records.Record, int, error) {
	wb, err := Open(r, p.Options)
	if err != nil {
		return nil, 0, err
	}
	defer wb.Close()

	sheet := wb.FirstSheet()
	if p.Sheet != "" {
		s, ok := wb.FindSheet(p.Sheet)
		if !ok {
			return nil, 0, fmt.Errorf("xlsx: sheet %q not found", p.Sheet)
		}
		sheet = s
	}
	return wb.Records(sheet)
}
