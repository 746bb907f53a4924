package production

import (
	"vistoria/internal/textnorm"
	"vistoria/internal/transformer"
	"vistoria/internal/transformer/builtin"
	"vistoria/pkg/records"
)

// Canonical inspection sheet headers.
const (
	ColUnit               = "UNIDADE"
	ColDate               = "DATA"
	ColVehicle            = "CHASSI"
	ColPrimaryInspector   = "PERITO"
	ColSecondaryInspector = "DIGITADOR"
)

// bannedUnits are placeholder values that show up in the unit column of
// hand-kept sheets (header repeats, blanks, pandas NaN spill-over).
var bannedUnits = textnorm.NewSet("POSTO CÓDIGO", "POSTO CODIGO", "CÓDIGO", "CODIGO", "", "—", "NAN")

// IsBannedUnit reports whether unit is a placeholder that must be dropped.
func IsBannedUnit(unit string) bool { return bannedUnits.Contains(unit) }

// NormalizeStats counts what Normalize did with a sheet.
type NormalizeStats struct {
	Rows         int
	Kept         int
	BannedUnits  int
	DateFailures int
}

// Normalize turns raw inspection rows into records. Headers are matched
// case- and spacing-insensitively. The inspector is PERITO when non-empty,
// otherwise DIGITADOR. Dates that cannot be parsed leave the record dated
// zero and count as DateFailures. Rows in a banned unit are dropped.
//
// It returns a *SchemaError when UNIDADE, DATA, CHASSI, or both inspector
// columns are missing. An empty sheet yields no records and no error.
func Normalize(source string, raw []records.Record) ([]InspectionRecord, NormalizeStats, error) {
	stats := NormalizeStats{Rows: len(raw)}
	if len(raw) == 0 {
		return nil, stats, nil
	}

	cloned := make([]records.Record, len(raw))
	for i, r := range raw {
		cloned[i] = r.Clone()
	}
	rows := transformer.Chain{
		builtin.Normalize{},
		builtin.Canonicalize{},
	}.Apply(cloned)

	missing := builtin.MissingColumns(builtin.Columns(rows),
		[]string{ColUnit, ColDate, ColVehicle},
		[]string{ColPrimaryInspector, ColSecondaryInspector})
	if len(missing) > 0 {
		return nil, stats, &SchemaError{Source: source, Missing: missing}
	}

	out := make([]InspectionRecord, 0, len(rows))
	for i, r := range rows {
		unit := textnorm.Upper(r.String(ColUnit))
		if IsBannedUnit(unit) {
			stats.BannedUnits++
			continue
		}
		inspector := textnorm.Upper(r.String(ColPrimaryInspector))
		if inspector == "" {
			inspector = textnorm.Upper(r.String(ColSecondaryInspector))
		}
		rec := InspectionRecord{
			Unit:      unit,
			VehicleID: textnorm.Upper(r.String(ColVehicle)),
			Inspector: inspector,
			SourceID:  source,
			Seq:       i,
		}
		if d, ok := ParseDate(r[ColDate]); ok {
			rec.Date = d
		} else {
			stats.DateFailures++
		}
		out = append(out, rec)
	}
	stats.Kept = len(out)
	return out, stats, nil
}
