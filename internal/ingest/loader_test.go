package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"vistoria/internal/config"
	"vistoria/internal/datasource"
	"vistoria/internal/datasource/file"
	"vistoria/internal/logger"
	"vistoria/internal/production"
	"vistoria/pkg/records"
)

type fakeFetcher struct {
	list     []datasource.SourceInfo
	listErr  error
	recs     map[string][]records.Record
	goals    map[string][]records.Record
	fail     map[string]error
	inFlight int32
	peak     int32
}

func (f *fakeFetcher) List(context.Context) ([]datasource.SourceInfo, error) {
	return f.list, f.listErr
}

func (f *fakeFetcher) FetchRecords(_ context.Context, id string) ([]records.Record, error) {
	n := atomic.AddInt32(&f.inFlight, 1)
	defer atomic.AddInt32(&f.inFlight, -1)
	for {
		p := atomic.LoadInt32(&f.peak)
		if n <= p || atomic.CompareAndSwapInt32(&f.peak, p, n) {
			break
		}
	}
	time.Sleep(time.Millisecond)
	if err := f.fail[id]; err != nil {
		return nil, err
	}
	return f.recs[id], nil
}

func (f *fakeFetcher) FetchGoals(_ context.Context, id string) ([]records.Record, error) {
	return f.goals[id], nil
}

func row(unit, date, chassi, perito string) records.Record {
	return records.Record{"UNIDADE": unit, "DATA": date, "CHASSI": chassi, "PERITO": perito}
}

func fixture() *fakeFetcher {
	return &fakeFetcher{
		list: []datasource.SourceInfo{
			{ID: "maio", Title: "VISTORIAS 05/2024"},
			{ID: "abril", Title: "VISTORIAS 04/2024"},
			{ID: "quebrada", Title: "SEM COLUNAS"},
			{ID: "offline", Title: "OFFLINE"},
		},
		recs: map[string][]records.Record{
			"maio": {
				row("P1", "02/05/2024", "A1", "JOAO"),
				row("P1", "03/05/2024", "B2", "MARIA"),
			},
			"abril": {
				row("P1", "29/04/2024", "A1", "JOAO"),
				row("CODIGO", "29/04/2024", "Z9", "JOAO"),
			},
			"quebrada": {{"UNIDADE": "P1", "DATA": "02/05/2024"}},
		},
		goals: map[string][]records.Record{
			"maio": {{"VISTORIADOR": "JOAO", "META MENSAL": "20", "DIAS UTEIS": "20", "TIPO": "FIXO"}},
		},
		fail: map[string]error{"offline": errors.New("connection refused")},
	}
}

func TestLoadAll(t *testing.T) {
	t.Parallel()

	f := fixture()
	l := NewLoader(f, Options{Workers: 2, Log: logger.Discard()})
	res, err := l.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	d := res.Dataset
	if diff := cmp.Diff([]string{"maio", "abril"}, d.Sources); diff != "" {
		t.Errorf("sources (-want +got):\n%s", diff)
	}
	if len(d.Records) != 3 {
		t.Errorf("records = %d, want 3", len(d.Records))
	}
	for _, r := range d.Records {
		if r.IsReinspection {
			t.Errorf("per-source scope marked %+v as reinspection", r)
		}
	}
	if len(d.Goals) != 1 || d.Goals[0].ReferenceMonth != "2024-05" || d.Goals[0].MonthlyGoal != 20 {
		t.Errorf("goals = %+v", d.Goals)
	}

	failed := map[string]error{}
	for _, fl := range d.Failures {
		failed[fl.Source] = fl.Err
	}
	var se *production.SchemaError
	if !errors.As(failed["quebrada"], &se) {
		t.Errorf("quebrada failure = %v, want *SchemaError", failed["quebrada"])
	}
	var su *datasource.SourceUnavailable
	if !errors.As(failed["offline"], &su) {
		t.Errorf("offline failure = %v, want *SourceUnavailable", failed["offline"])
	}
	if res.Stats["abril"].BannedUnits != 1 {
		t.Errorf("abril stats = %+v", res.Stats["abril"])
	}
	if res.RunID == "" {
		t.Error("empty RunID")
	}
	if p := atomic.LoadInt32(&f.peak); p > 2 {
		t.Errorf("peak concurrency %d exceeds 2 workers", p)
	}
}

func TestLoadGlobalScope(t *testing.T) {
	t.Parallel()

	l := NewLoader(fixture(), Options{Scope: config.ScopeGlobal, Log: logger.Discard()})
	res, err := l.Load(context.Background(), "maio", "abril")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	var revs []string
	for _, r := range res.Dataset.Records {
		if r.IsReinspection {
			revs = append(revs, r.VehicleID+"@"+r.ReferenceMonth)
		}
	}
	if diff := cmp.Diff([]string{"A1@2024-05"}, revs); diff != "" {
		t.Errorf("reinspections (-want +got):\n%s", diff)
	}
}

func TestLoadSelectionAndEmpty(t *testing.T) {
	t.Parallel()

	l := NewLoader(fixture(), Options{Log: logger.Discard()})
	res, err := l.Load(context.Background(), "offline", "nao-existe")
	if !errors.Is(err, production.ErrNoRecords) {
		t.Fatalf("err = %v, want ErrNoRecords", err)
	}
	if len(res.Dataset.Failures) != 2 {
		t.Errorf("failures = %+v", res.Dataset.Failures)
	}
}

func TestLoadListError(t *testing.T) {
	t.Parallel()

	boom := errors.New("drive down")
	_, err := NewLoader(&fakeFetcher{listErr: boom}, Options{}).Load(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}

func TestLoadCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewLoader(fixture(), Options{Log: logger.Discard()}).Load(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestLoadFolderEndToEnd(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	write := func(name, body string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("VISTORIAS 05-2024.csv", "Unidade,Data,Chassi,Perito,Digitador\n"+
		"Posto 1,02/05/2024,a1,joao,\n"+
		"Posto 1,03/05/2024,A1,,maria\n"+
		"POSTO CÓDIGO,03/05/2024,x,y,\n")
	write("VISTORIAS 05-2024_METAS.csv", "VISTORIADOR,TIPO,META_MENSAL,DIAS UTEIS\njoao,movel,40,20\n")

	l := NewLoader(file.NewFolder(dir, file.FolderOptions{}), Options{Log: logger.Discard()})
	res, err := l.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	rows := production.Summarize(res.Dataset.Records, res.Dataset.Goals)
	if len(rows) != 2 {
		t.Fatalf("summary rows = %+v", rows)
	}
	for _, r := range rows {
		switch r.Inspector {
		case "JOAO":
			if r.Net != 1 || r.Type() != production.GoalMobile || r.MonthlyGoal() != 40 {
				t.Errorf("JOAO = %+v", r)
			}
		case "MARIA":
			if r.Reinspections != 1 || r.Net != 0 || r.Goal != nil {
				t.Errorf("MARIA = %+v", r)
			}
		default:
			t.Errorf("unexpected inspector %q", r.Inspector)
		}
	}
}
