package lift_test

import (
	"testing"

	"dartlift/internal/lift"
)

func TestFnParams_String(t *testing.T) {
	tests := []struct {
		name   string
		params *lift.FnParams
		want   string
	}{
		{"nil", nil, ""},
		{"empty", &lift.FnParams{}, ""},
		{"positional", &lift.FnParams{
			Params: []lift.FnParam{{Index: 0}, {Index: 1}},
		}, "param_0, param_1"},
		{"named and typed", &lift.FnParams{
			Params: []lift.FnParam{
				{Index: 0, Name: "x", Type: "int"},
				{Index: 1, Name: "y"},
			},
		}, "int x, y"},
		{"type args", &lift.FnParams{
			Params:      []lift.FnParam{{Index: 0, Name: "value", Type: "T"}},
			HasTypeArgs: true,
		}, "<T>, T value"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.params.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}
