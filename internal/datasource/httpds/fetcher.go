package httpds

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"vistoria/internal/datasource"
	pcsv "vistoria/internal/parser/csv"
	"vistoria/pkg/records"
)

// Remote is one published sheet: a CSV export of its inspection tab and,
// optionally, of its goals tab.
type Remote struct {
	Title      string
	RecordsURL string
	GoalsURL   string
}

// ParseList parses list-file lines of the form
// "title | records_url [| goals_url]". A line holding only a URL uses the
// URL as title.
func ParseList(lines []string) ([]Remote, error) {
	out := make([]Remote, 0, len(lines))
	for i, line := range lines {
		parts := strings.Split(line, "|")
		for j := range parts {
			parts[j] = strings.TrimSpace(parts[j])
		}
		var r Remote
		switch len(parts) {
		case 1:
			r = Remote{Title: parts[0], RecordsURL: parts[0]}
		case 2:
			r = Remote{Title: parts[0], RecordsURL: parts[1]}
		case 3:
			r = Remote{Title: parts[0], RecordsURL: parts[1], GoalsURL: parts[2]}
		default:
			return nil, fmt.Errorf("httpds: list line %d: want at most 3 fields, got %d", i+1, len(parts))
		}
		if r.RecordsURL == "" {
			return nil, fmt.Errorf("httpds: list line %d: empty records url", i+1)
		}
		out = append(out, r)
	}
	return out, nil
}

// Fetcher serves a fixed set of remotes.
type Fetcher struct {
	client  *Client
	remotes []Remote
	byID    map[string]Remote
	csv     pcsv.Options
}

var _ datasource.Fetcher = (*Fetcher)(nil)

// NewFetcher builds a Fetcher; CSV bodies are parsed with opt.
func NewFetcher(c *Client, remotes []Remote, opt pcsv.Options) *Fetcher {
	byID := make(map[string]Remote, len(remotes))
	for _, r := range remotes {
		byID[SourceID(r.RecordsURL)] = r
	}
	return &Fetcher{client: c, remotes: remotes, byID: byID, csv: opt}
}

// List returns the remotes in declared order. Modification times are not
// known over plain HTTP.
func (f *Fetcher) List(ctx context.Context) ([]datasource.SourceInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]datasource.SourceInfo, 0, len(f.remotes))
	for _, r := range f.remotes {
		out = append(out, datasource.SourceInfo{ID: SourceID(r.RecordsURL), Title: r.Title})
	}
	return out, nil
}

// FetchRecords downloads and parses the records export.
func (f *Fetcher) FetchRecords(ctx context.Context, id string) ([]records.Record, error) {
	r, ok := f.byID[id]
	if !ok {
		return nil, datasource.Unavailable(id, fmt.Errorf("unknown source"))
	}
	recs, err := f.fetch(ctx, r.RecordsURL)
	return recs, datasource.Unavailable(id, err)
}

// FetchGoals downloads the goals export. No goals URL, or a 404 for it,
// means the source has no goals.
func (f *Fetcher) FetchGoals(ctx context.Context, id string) ([]records.Record, error) {
	r, ok := f.byID[id]
	if !ok {
		return nil, datasource.Unavailable(id, fmt.Errorf("unknown source"))
	}
	if r.GoalsURL == "" {
		return nil, nil
	}
	recs, err := f.fetch(ctx, r.GoalsURL)
	var se *StatusError
	if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	return recs, datasource.Unavailable(id, err)
}

func (f *Fetcher) fetch(ctx context.Context, url string) ([]records.Record, error) {
	rc, err := f.client.Source(url).Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	recs, _, err := pcsv.NewParser(f.csv).Parse(rc)
	return recs, err
}
