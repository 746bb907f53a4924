package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"vistoria/internal/datasource"
	"vistoria/internal/storage"
)

func newRepo(tb testing.TB) *Repository {
	tb.Helper()
	dsn := filepath.Join(tb.TempDir(), "painel.db")
	r, closeFn, err := NewRepository(context.Background(), Config{DSN: dsn})
	if err != nil {
		tb.Fatalf("open sqlite %s: %v", dsn, err)
	}
	tb.Cleanup(closeFn)
	return r
}

func mustExec(tb testing.TB, r *Repository, stmt string, args ...any) {
	tb.Helper()
	if err := r.Exec(context.Background(), stmt, args...); err != nil {
		tb.Fatalf("exec %q: %v", stmt, err)
	}
}

func seed(tb testing.TB, r *Repository) {
	tb.Helper()
	mustExec(tb, r, `CREATE TABLE vistorias (FONTE TEXT, UNIDADE TEXT, DATA TEXT, CHASSI TEXT, PERITO TEXT)`)
	mustExec(tb, r, `INSERT INTO vistorias VALUES
		('VISTORIAS 05/2024', 'POSTO 1', '02/05/2024', 'A1', 'joao'),
		('VISTORIAS 05/2024', 'POSTO 1', '05/05/2024', 'A1', 'joao'),
		('VISTORIAS 06/2024', 'POSTO 2', '03/06/2024', 'B2', 'maria')`)
	mustExec(tb, r, `CREATE TABLE metas (FONTE TEXT, VISTORIADOR TEXT, META_MENSAL INTEGER)`)
	mustExec(tb, r, `INSERT INTO metas VALUES ('VISTORIAS 05/2024', 'JOAO', 20)`)
}

func TestNewRepositoryEmptyDSN(t *testing.T) {
	t.Parallel()

	if _, _, err := NewRepository(context.Background(), Config{DSN: "  "}); err == nil {
		t.Fatal("expected error for empty DSN")
	}
}

func TestRepositoryQueries(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := newRepo(t)
	seed(t, r)

	for table, want := range map[string]bool{"vistorias": true, "main.metas": true, "nada": false} {
		got, err := r.TableExists(ctx, table)
		if err != nil {
			t.Fatalf("TableExists(%q): %v", table, err)
		}
		if got != want {
			t.Errorf("TableExists(%q) = %v, want %v", table, got, want)
		}
	}

	srcs, err := r.Distinct(ctx, "vistorias", "FONTE")
	if err != nil {
		t.Fatalf("Distinct: %v", err)
	}
	if len(srcs) != 2 || srcs[0] != "VISTORIAS 05/2024" || srcs[1] != "VISTORIAS 06/2024" {
		t.Fatalf("Distinct = %v", srcs)
	}

	all, err := r.Rows(ctx, "vistorias", "", "")
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Rows(all) = %d rows, want 3", len(all))
	}

	may, err := r.Rows(ctx, "vistorias", "FONTE", "VISTORIAS 05/2024")
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	if len(may) != 2 {
		t.Fatalf("Rows(05/2024) = %d rows, want 2", len(may))
	}
	if got := may[0].String("CHASSI"); got != "A1" {
		t.Errorf("CHASSI = %q, want A1", got)
	}
}

func TestFactoryAndFetcher(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "painel.db")

	repo, err := storage.New(ctx, storage.Config{Kind: "sqlite", DSN: dsn})
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	defer repo.Close()
	seed(t, repo.(*wrappedRepo).Repository)

	f, err := storage.NewFetcher(repo, storage.Tables{Records: "vistorias", Goals: "metas", SourceColumn: "FONTE"})
	if err != nil {
		t.Fatalf("NewFetcher: %v", err)
	}

	list, err := f.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].ID != "VISTORIAS 05/2024" {
		t.Fatalf("List = %+v", list)
	}

	recs, err := f.FetchRecords(ctx, "VISTORIAS 06/2024")
	if err != nil || len(recs) != 1 {
		t.Fatalf("FetchRecords = %v, %v", recs, err)
	}

	goals, err := f.FetchGoals(ctx, "VISTORIAS 05/2024")
	if err != nil || len(goals) != 1 {
		t.Fatalf("FetchGoals(05) = %v, %v", goals, err)
	}
	if goals[0]["META_MENSAL"] != int64(20) {
		t.Errorf("META_MENSAL = %#v, want int64(20)", goals[0]["META_MENSAL"])
	}

	goals, err = f.FetchGoals(ctx, "VISTORIAS 06/2024")
	if err != nil || goals != nil {
		t.Fatalf("FetchGoals(06) = %v, %v; want nil, nil", goals, err)
	}
}

func TestFetcherMissingTables(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := newRepo(t)
	seed(t, r)
	w := &wrappedRepo{Repository: r}

	f, err := storage.NewFetcher(w, storage.Tables{Records: "ausente", Goals: "metas_2024"})
	if err != nil {
		t.Fatalf("NewFetcher: %v", err)
	}
	goals, err := f.FetchGoals(ctx, "ausente")
	if err != nil || goals != nil {
		t.Fatalf("FetchGoals = %v, %v; want nil, nil", goals, err)
	}

	_, err = f.FetchRecords(ctx, "ausente")
	var su *datasource.SourceUnavailable
	if !errors.As(err, &su) {
		t.Fatalf("FetchRecords error = %v, want *SourceUnavailable", err)
	}
	if su.Source != "ausente" {
		t.Errorf("Source = %q", su.Source)
	}
}
