package production

import (
	"math"
	"testing"
)

func TestAttainmentTier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		pct  float64
		want Tier
	}{
		{150, TierBest}, {110, TierBest}, {109.9, TierGood}, {100, TierGood},
		{99.99, TierOK}, {90, TierOK}, {89, TierWeak}, {80, TierWeak}, {79.9, TierPoor}, {0, TierPoor},
	}
	for _, tt := range tests {
		if got := AttainmentTier(tt.pct); got != tt.want {
			t.Errorf("AttainmentTier(%v) = %v, want %v", tt.pct, got, tt.want)
		}
	}
}

func TestTendencyTier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		pct  float64
		want Tier
	}{
		{130, TierGood}, {100, TierGood}, {95, TierOK}, {94.9, TierWeak}, {85, TierWeak}, {84, TierPoor},
	}
	for _, tt := range tests {
		if got := TendencyTier(tt.pct); got != tt.want {
			t.Errorf("TendencyTier(%v) = %v, want %v", tt.pct, got, tt.want)
		}
	}
}

func TestChips(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name, got, want string
	}{
		{"percent best", PercentChip(f64(112.4)), "112% 🏆"},
		{"percent good", PercentChip(f64(100)), "100% 🚀"},
		{"percent ok", PercentChip(f64(90.2)), "90% 💪"},
		{"percent weak", PercentChip(f64(80)), "80% 😬"},
		{"percent poor", PercentChip(f64(12)), "12% 😟"},
		{"percent nil", PercentChip(nil), "—"},
		{"percent nan", PercentChip(f64(math.NaN())), "—"},
		{"tendency good", TendencyChip(f64(120)), "120% 🚀"},
		{"tendency ok", TendencyChip(f64(96)), "96% 💪"},
		{"tendency weak", TendencyChip(f64(85)), "85% 😬"},
		{"tendency poor", TendencyChip(f64(50)), "50% 😟"},
		{"tendency nil", TendencyChip(nil), "—"},
		{"need none", NeedChip(0), "0 ✅"},
		{"need negative", NeedChip(-1), "0 ✅"},
		{"need some", NeedChip(2.6), "3 🔥"},
		{"need tie rounds down to even", NeedChip(2.5), "2 🔥"},
		{"need tie rounds up to even", NeedChip(3.5), "4 🔥"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, tt.got, tt.want)
		}
	}
}
