package vars_test

import (
	"testing"

	"dartlift/internal/dartrt"
	"dartlift/internal/vars"
)

func TestInteger_SmiDecoding(t *testing.T) {
	tests := []struct {
		name    string
		raw     int64
		intType vars.TypeID
		want    int64
	}{
		{"tagged positive", 84, vars.TypeID(dartrt.SmiCid), 42},
		{"tagged zero", 0, vars.TypeID(dartrt.SmiCid), 0},
		{"tagged negative", -84, vars.TypeID(dartrt.SmiCid), -42},
		{"native untagged", 42, vars.TypeNativeInt, 42},
		{"boxed untagged", 42, vars.TypeID(dartrt.MintCid), 42},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := vars.NewInteger(tt.raw, tt.intType)
			if got := v.Value(); got != tt.want {
				t.Errorf("Value() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestInteger_SetTypeChangesDecoding(t *testing.T) {
	v := vars.NewInteger(84, vars.TypeID(dartrt.IntegerCid))
	if got := v.Value(); got != 84 {
		t.Fatalf("undetermined representation should read raw: got %d", got)
	}
	v.SetType(vars.TypeID(dartrt.SmiCid))
	if got := v.Value(); got != 42 {
		t.Errorf("after SetType(smi) Value() = %d, want 42", got)
	}
}

func TestSetSmiIfInt(t *testing.T) {
	v := vars.NewInteger(84, vars.TypeID(dartrt.IntegerCid))
	vars.SetSmiIfInt(v)
	if v.IntType != vars.TypeID(dartrt.SmiCid) {
		t.Errorf("IntType = %d, want SmiCid", v.IntType)
	}

	// Already-refined representations are left alone.
	native := vars.NewInteger(7, vars.TypeNativeInt)
	vars.SetSmiIfInt(native)
	if native.IntType != vars.TypeNativeInt {
		t.Errorf("native IntType changed to %d", native.IntType)
	}

	// Non-integers are a no-op.
	vars.SetSmiIfInt(vars.NewNull())
}

func TestClassID_Render(t *testing.T) {
	tagged := vars.NewClassID(114, true)
	if got := tagged.String(); got != "TaggedCid_57" {
		t.Errorf("tagged String() = %q, want %q", got, "TaggedCid_57")
	}
	plain := vars.NewClassID(57, false)
	if got := plain.String(); got != "cid_57" {
		t.Errorf("plain String() = %q, want %q", got, "cid_57")
	}
	if vars.NewUnknownClassID().HasValue() {
		t.Error("unknown class id should not report a known value")
	}
}

func TestExpr_Refinement(t *testing.T) {
	e := vars.NewExpr("THR::stack_limit")
	if e.TypeID() != vars.TypeID(dartrt.IllegalCid) {
		t.Fatalf("fresh Expr TypeID = %d, want IllegalCid", e.TypeID())
	}
	if e.RawTypeID() != vars.TypeExpression {
		t.Fatalf("RawTypeID = %d, want TypeExpression", e.RawTypeID())
	}

	e.SetText("len(list)")
	e.SetType(vars.TypeID(dartrt.SmiCid))
	if e.String() != "len(list)" {
		t.Errorf("String() = %q after SetText", e.String())
	}
	if e.TypeID() != vars.TypeID(dartrt.SmiCid) {
		t.Errorf("TypeID() = %d after SetType", e.TypeID())
	}
}

func TestAsInteger_Narrowing(t *testing.T) {
	if _, ok := vars.AsInteger(vars.NewInteger(1, vars.TypeNativeInt)); !ok {
		t.Error("AsInteger rejected an Integer")
	}
	if _, ok := vars.AsInteger(vars.NewNull()); ok {
		t.Error("AsInteger accepted a Null")
	}
	if _, ok := vars.AsParam(vars.NewParam(2)); !ok {
		t.Error("AsParam rejected a Param")
	}
	if _, ok := vars.AsParam(vars.NewExpr("x")); ok {
		t.Error("AsParam accepted an Expr")
	}
}

func TestStr_Render(t *testing.T) {
	v := vars.NewStr(`say "hi"`)
	if got := v.String(); got != `"say \"hi\""` {
		t.Errorf("String() = %q", got)
	}
}

func TestValue_Renders(t *testing.T) {
	cls := &dartrt.Class{ID: 90, Name: "Point"}
	tests := []struct {
		name string
		val  vars.Value
		want string
	}{
		{"null", vars.NewNull(), "Null"},
		{"true", vars.NewBoolean(true), "true"},
		{"double", vars.NewDouble(2.5, vars.TypeNativeDouble), "2.5"},
		{"instance", vars.NewInstance(cls), "Instance_Point"},
		{"instance unknown", vars.NewInstance(nil), "Instance_unknown"},
		{"param", vars.NewParam(3), "param_3"},
		{"sentinel", vars.NewSentinel(), "Sentinel"},
		{"stc", vars.NewSubtypeTestCacheValue(), "SubtypeTestCache"},
		{"unlinked", vars.NewUnlinkedCallSite(&dartrt.Stub{Name: "uc", Addr: 0x1234}), "UnlinkedCall_0x1234"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.val.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInstance_TypeIDRefinement(t *testing.T) {
	cls := &dartrt.Class{ID: 90, Name: "Point"}
	v := vars.NewInstance(cls)
	if v.TypeID() != vars.TypeID(90) {
		t.Errorf("TypeID() = %d, want class id 90", v.TypeID())
	}
	if v.RawTypeID() != vars.TypeID(dartrt.InstanceCid) {
		t.Errorf("RawTypeID() = %d, want InstanceCid", v.RawTypeID())
	}
	if vars.NewInstance(nil).TypeID() != vars.TypeID(dartrt.InstanceCid) {
		t.Error("nil-class instance should keep the generic tag")
	}
}
