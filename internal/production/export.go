package production

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	pcsv "vistoria/internal/parser/csv"
	"vistoria/internal/textnorm"
	"vistoria/internal/transformer/builtin"
)

// SummaryColumns is the display column order of the resumo table and of
// its CSV export.
var SummaryColumns = []string{
	"VISTORIADOR", "UNIDADE", "TIPO",
	"META_MENSAL", "DIAS_UTEIS", "META_DIA",
	"VISTORIAS", "REVISTORIAS", "LIQUIDO",
	"FALTANTE_MES", "NECESSIDADE_DIA", "TENDÊNCIA", "PROJECAO_MES",
}

var ptBR = message.NewPrinter(language.BrazilianPortuguese)

// FormatThousands renders n with pt-BR grouping: 1234 -> "1.234".
func FormatThousands(n int) string { return ptBR.Sprintf("%d", n) }

// FormatDecimal renders f with one pt-BR decimal: 2.5 -> "2,5".
func FormatDecimal(f float64) string { return ptBR.Sprintf("%.1f", f) }

// FormatSummaryRow returns the display cells of s in SummaryColumns order.
func FormatSummaryRow(s InspectorMonthSummary) []string {
	unit := ""
	if s.Goal != nil {
		unit = s.Goal.Unit
	}
	return []string{
		s.Inspector,
		unit,
		s.Type().Label(),
		FormatThousands(s.MonthlyGoal()),
		strconv.Itoa(workdays(s)),
		FormatDecimal(s.DailyGoal),
		strconv.Itoa(s.Inspections),
		strconv.Itoa(s.Reinspections),
		strconv.Itoa(s.Net),
		strconv.Itoa(s.Shortfall),
		NeedChip(s.RequiredDailyRate),
		TendencyChip(s.AttainmentPct),
		strconv.Itoa(s.ProjectedMonthEnd),
	}
}

func workdays(s InspectorMonthSummary) int {
	if s.Goal == nil {
		return 0
	}
	return s.Goal.WorkdaysInMonth
}

// WriteSummaryCSV writes rows, in the given order, as a UTF-8 CSV with BOM
// and a SummaryColumns header.
func WriteSummaryCSV(w io.Writer, rows []InspectorMonthSummary) error {
	if err := pcsv.WriteBOM(w); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(SummaryColumns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, s := range rows {
		if err := cw.Write(FormatSummaryRow(s)); err != nil {
			return fmt.Errorf("write %s: %w", s.Inspector, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportedRow is what ReadSummaryCSV recovers from an exported file.
type ExportedRow struct {
	Inspector     string
	Unit          string
	Type          GoalType
	Inspections   int
	Reinspections int
	Net           int
	Projected     int
}

// ReadSummaryCSV parses a file produced by WriteSummaryCSV.
func ReadSummaryCSV(r io.Reader) ([]ExportedRow, error) {
	recs, _, err := pcsv.NewParser(pcsv.Options{TrimSpace: true}).Parse(r)
	if err != nil {
		return nil, err
	}
	out := make([]ExportedRow, 0, len(recs))
	for _, rec := range recs {
		out = append(out, ExportedRow{
			Inspector:     rec.String("VISTORIADOR"),
			Unit:          rec.String("UNIDADE"),
			Type:          parseTypeLabel(rec.String("TIPO")),
			Inspections:   builtin.ParseCount(rec["VISTORIAS"]),
			Reinspections: builtin.ParseCount(rec["REVISTORIAS"]),
			Net:           builtin.ParseCount(rec["LIQUIDO"]),
			Projected:     builtin.ParseCount(rec["PROJECAO_MES"]),
		})
	}
	return out, nil
}

func parseTypeLabel(s string) GoalType {
	for _, t := range []GoalType{GoalFixed, GoalMobile} {
		if s == t.Label() || textnorm.Key(s) == textnorm.Key(t.String()) {
			return t
		}
	}
	return GoalUnknown
}
