package builtin

import (
	"reflect"
	"testing"

	"vistoria/pkg/records"
)

func TestNormalizeApply(t *testing.T) {
	tests := []struct {
		name string
		in   []records.Record
		want []records.Record
	}{
		{
			name: "non_strings_untouched",
			in:   []records.Record{{"DIAS_UTEIS": 21, "X": nil}},
			want: []records.Record{{"DIAS_UTEIS": 21, "X": nil}},
		},
		{
			name: "trims_whitespace",
			in:   []records.Record{{"PERITO": " JOAO ", "UNIDADE": "\tCENTRO\n"}},
			want: []records.Record{{"PERITO": "JOAO", "UNIDADE": "CENTRO"}},
		},
		{
			name: "nbsp_padding",
			in:   []records.Record{{"CHASSI": nbspace + "9BW123" + nbspace}},
			want: []records.Record{{"CHASSI": "9BW123"}},
		},
		{
			name: "inner_nbsp_becomes_space",
			in:   []records.Record{{"PERITO": "MARIA" + nbspace + "SILVA"}},
			want: []records.Record{{"PERITO": "MARIA SILVA"}},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := Normalize{}.Apply(tc.in)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("got %#v want %#v", got, tc.want)
			}
			if len(tc.in) > 0 && reflect.ValueOf(got[0]).Pointer() != reflect.ValueOf(tc.in[0]).Pointer() {
				t.Fatalf("expected in-place mutation")
			}
		})
	}
}
