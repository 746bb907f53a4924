package production

import (
	"vistoria/internal/transformer/builtin"
	"vistoria/pkg/records"
)

// NormalizedSource is one source after Normalize, Classify and
// NormalizeGoals.
type NormalizedSource struct {
	ID      string
	Title   string
	Records []InspectionRecord
	Goals   []GoalRecord
	Stats   NormalizeStats
}

// SourceFailure records a source left out of a merge.
type SourceFailure struct {
	Source string `json:"source"`
	Err    error  `json:"-"`
}

// MergedDataset is the immutable result of merging sources.
type MergedDataset struct {
	Records []InspectionRecord
	Goals   []GoalRecord
	// Sources lists merged source IDs in merge order.
	Sources  []string
	Failures []SourceFailure
	// Token identifies the set of merged sources; see SourceToken.
	Token string
}

// Empty reports whether no record survived.
func (d MergedDataset) Empty() bool { return len(d.Records) == 0 }

// Merge concatenates sources in order into a new dataset. Record Seq values
// are renumbered across the whole set. Goals for the same inspector and
// month keep the one from the latest source.
func Merge(sources []NormalizedSource, failures []SourceFailure) MergedDataset {
	var d MergedDataset
	var goals []GoalRecord
	for _, s := range sources {
		d.Sources = append(d.Sources, s.ID)
		for _, r := range s.Records {
			r.Seq = len(d.Records)
			d.Records = append(d.Records, r)
		}
		goals = append(goals, s.Goals...)
	}
	d.Goals = dedupGoals(goals)
	d.Failures = append([]SourceFailure(nil), failures...)
	d.Token = SourceToken(d.Sources)
	return d
}

// Reclassify re-runs Classify over the whole dataset, so that a vehicle seen
// in an earlier month's sheet counts as a re-inspection in a later one.
func (d MergedDataset) Reclassify() MergedDataset {
	out := d
	out.Records = Classify(d.Records)
	for i := range out.Records {
		out.Records[i].Seq = i
	}
	return out
}

func dedupGoals(goals []GoalRecord) []GoalRecord {
	if len(goals) == 0 {
		return nil
	}
	rows := make([]records.Record, len(goals))
	for i, g := range goals {
		rows[i] = records.Record{ColInspector: g.Inspector, ColRefMonth: g.ReferenceMonth, "#": i}
	}
	rows = builtin.DeDup{Keys: []string{ColInspector, ColRefMonth}, Policy: "keep-last"}.Apply(rows)
	out := make([]GoalRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, goals[r["#"].(int)])
	}
	return out
}
