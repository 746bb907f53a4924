package builtin

import (
	"testing"

	"vistoria/pkg/records"
)

func TestParseCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   any
		want int
	}{
		{"nil", nil, 0},
		{"empty", "", 0},
		{"plain", "20", 20},
		{"float_text", "20.0", 20},
		{"comma_decimal", "12,7", 12},
		{"negative", "-3", 0},
		{"garbage", "vinte", 0},
		{"float64", 22.0, 22},
		{"int64", int64(9), 9},
		{"padded", "  15 ", 15},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := ParseCount(tc.in); got != tc.want {
				t.Fatalf("ParseCount(%#v) = %d; want %d", tc.in, got, tc.want)
			}
		})
	}
}

func TestCoerceApply(t *testing.T) {
	t.Parallel()

	in := []records.Record{{"META_MENSAL": "abc", "TIPO": " movel ", "UNIDADE": nil}}
	out := Coerce{Types: map[string]string{
		"META_MENSAL": "count",
		"DIAS_UTEIS":  "count",
		"TIPO":        "upper",
		"UNIDADE":     "string",
	}}.Apply(in)

	r := out[0]
	if r["META_MENSAL"] != 0 || r["DIAS_UTEIS"] != 0 {
		t.Fatalf("counts = %v/%v; want 0/0", r["META_MENSAL"], r["DIAS_UTEIS"])
	}
	if r["TIPO"] != "MOVEL" {
		t.Fatalf("TIPO = %q; want MOVEL", r["TIPO"])
	}
	if r["UNIDADE"] != "" {
		t.Fatalf("UNIDADE = %#v; want empty string", r["UNIDADE"])
	}
}
