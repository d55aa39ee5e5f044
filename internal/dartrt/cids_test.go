package dartrt_test

import (
	"testing"

	"dartlift/internal/dartrt"
)

func TestSmiEncoding(t *testing.T) {
	tests := []int64{0, 1, 42, -1, -42, 1 << 40}
	for _, v := range tests {
		raw := dartrt.EncodeSmi(v)
		if !dartrt.IsSmi(raw) {
			t.Errorf("EncodeSmi(%d) = %#x is not a smi", v, raw)
		}
		if got := dartrt.DecodeSmi(raw); got != v {
			t.Errorf("DecodeSmi(EncodeSmi(%d)) = %d", v, got)
		}
	}
}

func TestIsSmi_TaggedPointer(t *testing.T) {
	// Heap pointers carry the object tag in the low bit.
	if dartrt.IsSmi(0x20000001) {
		t.Error("tagged heap pointer classified as smi")
	}
	if !dartrt.IsSmi(0x20000000) {
		t.Error("even word classified as pointer")
	}
}

func TestWellKnownCids(t *testing.T) {
	// The lifter keys idiom matching on these; pin them.
	tests := []struct {
		name string
		cid  dartrt.ClassID
		want int32
	}{
		{"illegal", dartrt.IllegalCid, 0},
		{"object", dartrt.ObjectCid, 1},
		{"smi", dartrt.SmiCid, 57},
		{"mint", dartrt.MintCid, 58},
		{"double", dartrt.DoubleCid, 59},
		{"bool", dartrt.BoolCid, 61},
		{"array", dartrt.ArrayCid, 72},
		{"growable", dartrt.GrowableObjectArrayCid, 74},
		{"string", dartrt.StringCid, 81},
		{"null", dartrt.NullCid, 91},
	}
	for _, tt := range tests {
		if int32(tt.cid) != tt.want {
			t.Errorf("%s cid = %d, want %d", tt.name, tt.cid, tt.want)
		}
	}
}
