package production

import (
	"fmt"
	"math"
)

// Tier grades an attainment percentage for display.
type Tier int

const (
	TierPoor Tier = iota
	TierWeak
	TierOK
	TierGood
	TierBest
)

func (t Tier) String() string {
	switch t {
	case TierBest:
		return "BEST"
	case TierGood:
		return "GOOD"
	case TierOK:
		return "OK"
	case TierWeak:
		return "WEAK"
	default:
		return "POOR"
	}
}

// Emoji is the chip glyph of t.
func (t Tier) Emoji() string {
	switch t {
	case TierBest:
		return "🏆"
	case TierGood:
		return "🚀"
	case TierOK:
		return "💪"
	case TierWeak:
		return "😬"
	default:
		return "😟"
	}
}

// AttainmentTier grades monthly and daily ranking attainment: 110, 100, 90
// and 80 are the cut points.
func AttainmentTier(pct float64) Tier {
	switch {
	case pct >= 110:
		return TierBest
	case pct >= 100:
		return TierGood
	case pct >= 90:
		return TierOK
	case pct >= 80:
		return TierWeak
	default:
		return TierPoor
	}
}

// TendencyTier grades the resumo-table projection: 100, 95 and 85. It never
// returns TierBest.
func TendencyTier(pct float64) Tier {
	switch {
	case pct >= 100:
		return TierGood
	case pct >= 95:
		return TierOK
	case pct >= 85:
		return TierWeak
	default:
		return TierPoor
	}
}

// PercentChip renders a ranking attainment, e.g. "104% 🚀"; "—" for nil.
func PercentChip(pct *float64) string {
	if pct == nil || math.IsNaN(*pct) {
		return "—"
	}
	return fmt.Sprintf("%.0f%% %s", *pct, AttainmentTier(*pct).Emoji())
}

// TendencyChip renders a summary's attainment, e.g. "96% 💪"; "—" for nil.
func TendencyChip(pct *float64) string {
	if pct == nil || math.IsNaN(*pct) {
		return "—"
	}
	return fmt.Sprintf("%.0f%% %s", *pct, TendencyTier(*pct).Emoji())
}

// NeedChip renders the required daily rate: "0 ✅" when nothing is missing,
// otherwise the rounded rate with a fire mark.
func NeedChip(v float64) string {
	if v <= 0 {
		return "0 ✅"
	}
	return fmt.Sprintf("%d 🔥", int(math.RoundToEven(v)))
}
