package production

import "sort"

// Classify orders records by date then vehicle and marks every occurrence of
// a vehicle after its first as a re-inspection. Undated records sort before
// dated ones; equal keys keep their input order. ReferenceMonth is set from
// each record's date. The input slice is not modified.
func Classify(recs []InspectionRecord) []InspectionRecord {
	out := make([]InspectionRecord, len(recs))
	copy(out, recs)
	sort.SliceStable(out, func(i, j int) bool { return before(out[i], out[j]) })

	seen := make(map[string]int, len(out))
	for i := range out {
		n := seen[out[i].VehicleID]
		out[i].IsReinspection = n >= 1
		seen[out[i].VehicleID] = n + 1
		out[i].ReferenceMonth = MonthKey(out[i].Date)
	}
	return out
}

// before is the classifier order without the stability tie-break.
func before(a, b InspectionRecord) bool {
	ad, bd := a.HasDate(), b.HasDate()
	switch {
	case ad != bd:
		return !ad
	case ad && !a.Date.Equal(b.Date):
		return a.Date.Before(b.Date)
	default:
		return a.VehicleID < b.VehicleID
	}
}
