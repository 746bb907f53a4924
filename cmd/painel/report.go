package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"

	"vistoria/internal/datasource"
	"vistoria/internal/production"
)

type reportOptions struct {
	month string
	day   string
	out   string
}

// report prints the resumo, the month consolidation and both rankings of d,
// and writes the resumo CSV when opt.out is set.
func report(w io.Writer, d production.MergedDataset, opt reportOptions, log logrus.FieldLogger) error {
	day, err := parseDayFlag(opt.day)
	if err != nil {
		return err
	}
	month := production.LatestMonth(d.Records)
	if opt.month != "" {
		m, ok := production.ParseMonth(opt.month)
		if !ok {
			return fmt.Errorf("-month: cannot parse %q", opt.month)
		}
		month = m
	}

	summaries := production.Summarize(d.Records, d.Goals)
	if opt.out != "" {
		if err := writeCSV(opt.out, summaries); err != nil {
			return err
		}
		log.WithField("path", opt.out).Infof("wrote %d resumo rows", len(summaries))
	}

	totals := production.ComputeTotals(d.Records)
	fmt.Fprintf(w, "Vistorias: %s  Revistorias: %s  Líquido: %s  %% Revistoria: %s%%\n\n",
		production.FormatThousands(totals.Inspections),
		production.FormatThousands(totals.Reinspections),
		production.FormatThousands(totals.Net),
		production.FormatDecimal(totals.ReinspectionRate))

	printSummary(w, summaries)

	monthly := production.SummarizeMonth(d.Records, d.Goals, month)
	mt := production.ConsolidateMonth(monthly, month)
	fmt.Fprintf(w, "\nMês %s: meta %s, vistorias %s, líquido %s, atingimento %s\n",
		mt.Month,
		production.FormatThousands(mt.GoalSum),
		production.FormatThousands(mt.Inspections),
		production.FormatThousands(mt.Net),
		production.PercentChip(mt.AttainmentPct))

	for _, t := range []production.GoalType{production.GoalFixed, production.GoalMobile} {
		printRanking(w, fmt.Sprintf("Ranking mensal %s %s", t, month), production.MonthlyRanking(monthly, t, month))
	}

	for _, t := range []production.GoalType{production.GoalFixed, production.GoalMobile} {
		dr, err := production.DailyRanking(d.Records, d.Goals, t, day)
		if errors.Is(err, production.ErrNoDates) {
			fmt.Fprintln(w, "\nSem datas válidas para o ranking diário.")
			break
		}
		if err != nil {
			return err
		}
		title := fmt.Sprintf("Ranking diário %s %s", t, dr.Day.Format("02/01/2006"))
		if dr.Substituted {
			title += fmt.Sprintf(" (sem registros em %s)", dr.Requested.Format("02/01/2006"))
		}
		printRanking(w, title, dr.Ranking)
	}
	return nil
}

func writeCSV(path string, rows []production.InspectorMonthSummary) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := production.WriteSummaryCSV(f, rows); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	t := tablewriter.NewWriter(w)
	t.SetHeader(header)
	t.SetAutoFormatHeaders(false)
	t.SetAutoWrapText(false)
	return t
}

func printSummary(w io.Writer, rows []production.InspectorMonthSummary) {
	t := newTable(w, production.SummaryColumns)
	for _, r := range rows {
		t.Append(production.FormatSummaryRow(r))
	}
	t.Render()
}

func printRanking(w io.Writer, title string, r production.Ranking) {
	fmt.Fprintf(w, "\n%s\n", title)
	if len(r.Top) == 0 {
		fmt.Fprintln(w, "Sem vistoriadores com meta.")
		return
	}
	for _, side := range []struct {
		name string
		rows []production.RankRow
	}{{"Top", r.Top}, {"Bottom", r.Bottom}} {
		t := newTable(w, []string{side.name, "VISTORIADOR", "META", "VISTORIAS", "LIQUIDO", "%"})
		for _, row := range side.rows {
			pct := row.AttainmentPct
			t.Append([]string{
				row.Mark,
				row.Inspector,
				production.FormatDecimal(row.Goal),
				strconv.Itoa(row.Inspections),
				strconv.Itoa(row.Net),
				production.PercentChip(&pct),
			})
		}
		t.Render()
	}
}

func printSources(w io.Writer, infos []datasource.SourceInfo) {
	t := newTable(w, []string{"ID", "TÍTULO", "MODIFICADO"})
	for _, s := range infos {
		mod := ""
		if !s.ModTime.IsZero() {
			mod = s.ModTime.Format("2006-01-02 15:04")
		}
		t.Append([]string{s.ID, s.Title, mod})
	}
	t.Render()
}
