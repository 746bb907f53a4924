package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"vistoria/internal/datasource"
	"vistoria/internal/parser"
	pcsv "vistoria/internal/parser/csv"
	"vistoria/internal/parser/xlsx"
	"vistoria/pkg/records"
)

// goalsSuffix marks the companion goals file of a CSV source:
// "maio_2024.csv" pairs with "maio_2024_METAS.csv".
const goalsSuffix = "_METAS"

// FolderOptions configures a Folder.
type FolderOptions struct {
	// CSV is used for .csv sources and their goal companions.
	CSV pcsv.Options
	// RecordsSheet selects the workbook sheet with inspections; the first
	// sheet when empty.
	RecordsSheet string
	// GoalsSheet names the workbook goals sheet; "METAS" when empty.
	GoalsSheet string
}

// Folder serves every .xlsx and .csv file of a directory as a source. The
// source ID is the file name.
type Folder struct {
	dir string
	opt FolderOptions
}

// NewFolder returns a Folder over dir.
func NewFolder(dir string, opt FolderOptions) *Folder {
	if opt.GoalsSheet == "" {
		opt.GoalsSheet = "METAS"
	}
	return &Folder{dir: dir, opt: opt}
}

var _ datasource.Fetcher = (*Folder)(nil)

// List returns workbook and CSV files ordered by modification time,
// newest first, then by name. Goal companions, office lock files ("~$")
// and hidden files are not listed.
func (f *Folder) List(ctx context.Context) ([]datasource.SourceInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", f.dir, err)
	}

	var out []datasource.SourceInfo
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$") {
			continue
		}
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".xlsx" && ext != ".csv" {
			continue
		}
		stem := strings.TrimSuffix(name, filepath.Ext(name))
		if ext == ".csv" && strings.HasSuffix(strings.ToUpper(stem), goalsSuffix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", name, err)
		}
		out = append(out, datasource.SourceInfo{ID: name, Title: stem, ModTime: info.ModTime()})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].ModTime.Equal(out[j].ModTime) {
			return out[i].ModTime.After(out[j].ModTime)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// FetchRecords parses the inspection sheet of the file named id.
func (f *Folder) FetchRecords(ctx context.Context, id string) ([]records.Record, error) {
	path, err := f.resolve(id)
	if err != nil {
		return nil, datasource.Unavailable(id, err)
	}

	if isWorkbook(id) {
		recs, err := f.parse(ctx, path, xlsx.SheetParser{Sheet: f.opt.RecordsSheet})
		return recs, datasource.Unavailable(id, err)
	}
	recs, err := f.parse(ctx, path, pcsv.NewParser(f.opt.CSV))
	return recs, datasource.Unavailable(id, err)
}

// FetchGoals reads the goals sheet of a workbook, or the "<stem>_METAS.csv"
// companion of a CSV file. Either being absent yields nil, nil.
func (f *Folder) FetchGoals(ctx context.Context, id string) ([]records.Record, error) {
	path, err := f.resolve(id)
	if err != nil {
		return nil, datasource.Unavailable(id, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if isWorkbook(id) {
		wb, err := xlsx.OpenFile(path, xlsx.Options{})
		if err != nil {
			return nil, datasource.Unavailable(id, err)
		}
		defer wb.Close()
		sheet, ok := wb.FindSheet(f.opt.GoalsSheet)
		if !ok {
			return nil, nil
		}
		recs, _, err := wb.Records(sheet)
		return recs, datasource.Unavailable(id, err)
	}

	companion, ok, err := f.companion(id)
	if err != nil {
		return nil, datasource.Unavailable(id, err)
	}
	if !ok {
		return nil, nil
	}
	recs, err := f.parse(ctx, companion, pcsv.NewParser(f.opt.CSV))
	return recs, datasource.Unavailable(id, err)
}

func (f *Folder) parse(ctx context.Context, path string, p parser.Parser) ([]records.Record, error) {
	rc, err := NewLocal(path).Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	recs, _, err := p.Parse(rc)
	return recs, err
}

// resolve rejects IDs that would escape the folder.
func (f *Folder) resolve(id string) (string, error) {
	if id == "" || filepath.Base(id) != id || id == "." || id == ".." {
		return "", fmt.Errorf("invalid source id %q", id)
	}
	return filepath.Join(f.dir, id), nil
}

// companion finds "<stem>_METAS.csv" case-insensitively.
func (f *Folder) companion(id string) (string, bool, error) {
	stem := strings.TrimSuffix(id, filepath.Ext(id))
	want := strings.ToUpper(stem + goalsSuffix + ".csv")

	entries, err := os.ReadDir(f.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, err
	}
	for _, e := range entries {
		if !e.IsDir() && strings.ToUpper(e.Name()) == want {
			return filepath.Join(f.dir, e.Name()), true, nil
		}
	}
	return "", false, nil
}

func isWorkbook(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".xlsx")
}
