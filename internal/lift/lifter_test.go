package lift_test

import (
	"strings"
	"testing"

	"dartlift/internal/arm64"
	"dartlift/internal/dartrt"
	"dartlift/internal/diag"
	"dartlift/internal/il"
	"dartlift/internal/lift"
	"dartlift/internal/snapshot"
	"dartlift/internal/testkit"
)

func reg(r arm64.Register) lift.Op { return lift.Op{Kind: lift.OpReg, Reg: r} }
func imm(v int64) lift.Op          { return lift.Op{Kind: lift.OpImm, Imm: v} }

func mem(base arm64.Register, disp int64) lift.Op {
	return lift.Op{Kind: lift.OpMem, Base: base, Disp: disp}
}

func memWB(base arm64.Register, disp int64) lift.Op {
	return lift.Op{Kind: lift.OpMem, Base: base, Disp: disp, WriteBack: true}
}

func memIdx(base, index arm64.Register, shift uint8) lift.Op {
	return lift.Op{Kind: lift.OpMemIdx, Base: base, Index: index, Shift: shift}
}

func ins(mn string, ops ...lift.Op) lift.Insn {
	return lift.Insn{Mnemonic: mn, Ops: ops}
}

// stream assigns consecutive addresses starting at base.
func stream(base uint64, insns ...lift.Insn) []lift.Insn {
	addr := base
	for i := range insns {
		insns[i].Addr = addr
		insns[i].Size = 4
		addr += 4
	}
	return insns
}

func testStore(t *testing.T) *snapshot.Store {
	t.Helper()
	store, err := snapshot.Build(&snapshot.Payload{
		Schema: 1,
		Classes: []snapshot.ClassRec{
			{ID: 90, Name: "Point", SuperID: 1, InstanceSize: 16},
		},
		Functions: []snapshot.FuncRec{
			{Name: "main", OwnerID: 90, Addr: 0x2000, Size: 0x40},
			{Name: "AllocatePointStub", Addr: 0x3000, Size: 0x20},
			{Name: "ArrayWriteBarrierStub", Addr: 0x3100, Size: 0x20},
		},
		Pool: []snapshot.PoolRec{
			{Offset: 0x10, Kind: snapshot.PoolString, Bytes: []byte("greeting")},
			{Offset: 0x18, Kind: snapshot.PoolInt, Int: 7},
		},
	})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	return store
}

// lifts runs a fresh lifter over insns and returns the nodes plus the bag.
func lifts(t *testing.T, insns []lift.Insn) ([]il.Instr, *diag.Bag) {
	t.Helper()
	bag := diag.NewBag(32)
	l := lift.New(dartrt.Default(), testStore(t), diag.NewBagReporter(bag))
	fn := &dartrt.Function{Name: "f", Addr: insns[0].Addr,
		Size: uint32(len(insns)) * 4}
	res := l.LiftFunction(fn, insns)
	if err := testkit.CheckNodeInvariants(fn, res.Nodes); err != nil {
		t.Fatalf("node invariants: %v", err)
	}
	return res.Nodes, bag
}

func wantKinds(t *testing.T, nodes []il.Instr, kinds ...il.Kind) {
	t.Helper()
	if len(nodes) != len(kinds) {
		t.Fatalf("got %d nodes, want %d", len(nodes), len(kinds))
	}
	for i, k := range kinds {
		if nodes[i].Kind() != k {
			t.Fatalf("nodes[%d] = %s, want %s", i, nodes[i].Kind(), k)
		}
	}
}

func TestLift_Prologue(t *testing.T) {
	limit, ok := dartrt.Default().OffsetOf("stack_limit")
	if !ok {
		t.Fatal("no stack_limit offset")
	}
	nodes, bag := lifts(t, stream(0x1000,
		ins("stp", reg(arm64.FP), reg(arm64.LR), memWB(arm64.SP, -16)),
		ins("mov", reg(arm64.FP), reg(arm64.SP)),
		ins("sub", reg(arm64.SP), reg(arm64.SP), imm(0x20)),
		ins("ldr", reg(arm64.X16), mem(arm64.ThreadReg, limit)),
		ins("cmp", reg(arm64.SP), reg(arm64.X16)),
		ins("b.ls", imm(0x1200)),
	))
	wantKinds(t, nodes, il.EnterFrame, il.AllocateStack, il.CheckStackOverflow)
	if bag.Len() != 0 {
		t.Errorf("unexpected diagnostics: %v", bag.Items())
	}
	if alloc := nodes[1].(*il.AllocateStackInstr); alloc.Size != 0x20 {
		t.Errorf("AllocateStack size = %#x", alloc.Size)
	}
	chk := nodes[2].(*il.CheckStackOverflowInstr)
	if chk.OverflowBranch != 0x1200 {
		t.Errorf("overflow branch = %#x", chk.OverflowBranch)
	}
	if got := chk.Range(); got.Start != 0x100c || got.End != 0x1018 {
		t.Errorf("CheckStackOverflow range = %s", got)
	}
}

func TestLift_Epilogue(t *testing.T) {
	nodes, _ := lifts(t, stream(0x1000,
		ins("mov", reg(arm64.SP), reg(arm64.FP)),
		ins("ldp", reg(arm64.FP), reg(arm64.LR), memWB(arm64.SP, 16)),
		ins("ret"),
	))
	wantKinds(t, nodes, il.LeaveFrame, il.Return)
	if got := nodes[0].Range(); got.Start != 0x1000 || got.End != 0x1008 {
		t.Errorf("LeaveFrame range = %s", got)
	}
}

func TestLift_PoolLoad(t *testing.T) {
	nodes, bag := lifts(t, stream(0x1000,
		ins("ldr", reg(arm64.X0), mem(arm64.PoolReg, 0x10)),
		ins("ldr", reg(arm64.X1), mem(arm64.PoolReg, 0x999)),
		ins("str", reg(arm64.X2), mem(arm64.PoolReg, 0x20)),
	))
	wantKinds(t, nodes, il.LoadValue, il.LoadValue, il.StoreObjectPool)

	hit := nodes[0].(*il.LoadValueInstr)
	if hit.Val.StorageName() != "[pp+0x10]" {
		t.Errorf("storage = %q", hit.Val.StorageName())
	}
	if hit.Val.ValueString() != `"greeting"` {
		t.Errorf("value = %q", hit.Val.ValueString())
	}

	miss := nodes[1].(*il.LoadValueInstr)
	if miss.Val.ValueString() != "PP_0x999" {
		t.Errorf("miss value = %q", miss.Val.ValueString())
	}
	if bag.Len() != 1 || bag.Items()[0].Code != diag.MetaPoolEntryMiss {
		t.Errorf("diagnostics = %v", bag.Items())
	}

	st := nodes[2].(*il.StoreObjectPoolInstr)
	if st.Src != arm64.X2 || st.Offset != 0x20 {
		t.Errorf("StoreObjectPool = %+v", st)
	}
}

func TestLift_ThreadLoad(t *testing.T) {
	nodes, bag := lifts(t, stream(0x1000,
		ins("ldr", reg(arm64.X2), mem(arm64.ThreadReg, 56)),
		ins("ldr", reg(arm64.X3), mem(arm64.ThreadReg, 0x1000)),
	))
	wantKinds(t, nodes, il.LoadValue, il.LoadValue)

	known := nodes[0].(*il.LoadValueInstr)
	if known.Val.ValueString() != "THR::stack_limit" {
		t.Errorf("known value = %q", known.Val.ValueString())
	}
	miss := nodes[1].(*il.LoadValueInstr)
	if miss.Val.ValueString() != "thr_0x1000" {
		t.Errorf("miss value = %q", miss.Val.ValueString())
	}
	if bag.Len() != 1 || bag.Items()[0].Code != diag.MetaThreadOffsetMiss {
		t.Errorf("diagnostics = %v", bag.Items())
	}
}

func TestLift_LeafRuntimeCall(t *testing.T) {
	nodes, bag := lifts(t, stream(0x1000,
		ins("mov", reg(arm64.X0), reg(arm64.X3)),
		ins("mov", reg(arm64.X1), reg(arm64.X4)),
		ins("ldr", reg(arm64.LR), mem(arm64.ThreadReg, 352)),
		ins("blr", reg(arm64.LR)),
	))
	wantKinds(t, nodes, il.CallLeafRuntime)
	if bag.Len() != 0 {
		t.Errorf("unexpected diagnostics: %v", bag.Items())
	}

	call := nodes[0].(*il.CallLeafRuntimeInstr)
	if !strings.Contains(call.String(), "LibcPow") {
		t.Errorf("String() = %q", call.String())
	}
	if len(call.Moves) != 2 || call.Moves[0].Dst != arm64.X0 || call.Moves[1].Dst != arm64.X1 {
		t.Errorf("Moves = %v", call.Moves)
	}
	// Folding the moves does not widen the call's own span.
	if got := call.Range(); got.Start != 0x1008 || got.End != 0x1010 {
		t.Errorf("call range = %s", got)
	}
	if call.Moves[0].Range().Start != 0x1000 {
		t.Errorf("first move range = %s", call.Moves[0].Range())
	}
}

func TestLift_LeafRuntimeCall_UnknownEntry(t *testing.T) {
	_, bag := lifts(t, stream(0x1000,
		ins("ldr", reg(arm64.LR), mem(arm64.ThreadReg, 0x2000)),
		ins("blr", reg(arm64.LR)),
	))
	if bag.Len() != 1 || bag.Items()[0].Code != diag.MetaLeafSignatureMiss {
		t.Errorf("diagnostics = %v", bag.Items())
	}
}

func TestLift_GdtCall(t *testing.T) {
	nodes, _ := lifts(t, stream(0x1000,
		ins("ldr", reg(arm64.LR), mem(arm64.DispatchTableReg, 0x40)),
		ins("blr", reg(arm64.LR)),
	))
	wantKinds(t, nodes, il.GdtCall)
}

func TestLift_DirectCall(t *testing.T) {
	nodes, bag := lifts(t, stream(0x1000,
		ins("bl", imm(0x2000)),
		ins("bl", imm(0x5555)),
	))
	wantKinds(t, nodes, il.Call, il.Call)

	resolved := nodes[0].(*il.CallInstr)
	if resolved.Fn == nil || resolved.Fn.FullName() != "Point::main" {
		t.Errorf("resolved call = %+v", resolved.Fn)
	}
	unresolved := nodes[1].(*il.CallInstr)
	if unresolved.Fn != nil || unresolved.Addr != 0x5555 {
		t.Errorf("unresolved call = %+v", unresolved)
	}
	if bag.Len() != 1 || bag.Items()[0].Code != diag.MetaUnresolvedFunction {
		t.Errorf("diagnostics = %v", bag.Items())
	}
}

func TestLift_AllocStubAndWriteBarrier(t *testing.T) {
	nodes, _ := lifts(t, stream(0x1000,
		ins("bl", imm(0x3000)),
		ins("bl", imm(0x3100)),
	))
	wantKinds(t, nodes, il.AllocateObject, il.WriteBarrier)

	alloc := nodes[0].(*il.AllocateObjectInstr)
	if alloc.Dst != arm64.ResultReg || alloc.Class == nil || alloc.Class.Name != "Point" {
		t.Errorf("AllocateObject = %+v", alloc)
	}
	wb := nodes[1].(*il.WriteBarrierInstr)
	if !wb.IsArray {
		t.Error("ArrayWriteBarrierStub not classified as array barrier")
	}
}

func TestLift_ClassIdPatterns(t *testing.T) {
	nodes, _ := lifts(t, stream(0x1000,
		ins("ldur", reg(arm64.X16), mem(arm64.X1, -1)),
		ins("ubfx", reg(arm64.X2), reg(arm64.X16), imm(12), imm(20)),
	))
	wantKinds(t, nodes, il.LoadClassId)
	load := nodes[0].(*il.LoadClassIdInstr)
	if load.Obj != arm64.X1 || load.Cid != arm64.X2 {
		t.Errorf("LoadClassId = %+v", load)
	}

	taggedSmi := int64(dartrt.SmiCid) << dartrt.SmiTagSize
	nodes, _ = lifts(t, stream(0x2000,
		ins("movz", reg(arm64.X2), imm(taggedSmi)),
		ins("tbz", reg(arm64.X1), imm(0), imm(0x2010)),
		ins("ldur", reg(arm64.X16), mem(arm64.X1, -1)),
		ins("ubfx", reg(arm64.X2), reg(arm64.X16), imm(12), imm(20)),
	))
	wantKinds(t, nodes, il.LoadTaggedClassIdMayBeSmi)
	comp := nodes[0].(*il.LoadTaggedClassIdMayBeSmiInstr)
	if comp.TaggedCid != arm64.X2 || comp.Obj != arm64.X1 {
		t.Errorf("composite = %+v", comp)
	}
	if got := comp.Range(); got.Start != 0x2000 || got.End != 0x2010 {
		t.Errorf("composite range = %s", got)
	}
}

func TestLift_DataAccess(t *testing.T) {
	nodes, _ := lifts(t, stream(0x1000,
		ins("sbfiz", reg(arm64.X0), reg(arm64.X2), imm(1), imm(31)),
		ins("ldursw", reg(arm64.X3), mem(arm64.X0, 7)),
		ins("ldr", reg(arm64.X1), memIdx(arm64.X2, arm64.X3, 3)),
		ins("ldrsw", reg(arm64.X4), memIdx(arm64.X2, arm64.X3, 2)),
		ins("ldur", reg(arm64.X1), mem(arm64.X2, 15)),
		ins("stur", reg(arm64.X1), mem(arm64.X2, 23)),
		ins("add", reg(arm64.X0), reg(arm64.X0), reg(arm64.HeapBaseReg)),
	))
	wantKinds(t, nodes, il.BoxInt64, il.LoadInt32,
		il.LoadArrayElement, il.LoadArrayElement,
		il.LoadField, il.StoreField, il.DecompressPointer)

	arr := nodes[2].(*il.LoadArrayElementInstr)
	if arr.Op.Size != 8 || arr.Op.Kind != il.ArrayTypedUnsigned || !arr.Op.IsLoad {
		t.Errorf("array op = %+v", arr.Op)
	}
	signed := nodes[3].(*il.LoadArrayElementInstr)
	if signed.Op.Size != 4 || signed.Op.Kind != il.ArrayTypedSigned {
		t.Errorf("signed array op = %+v", signed.Op)
	}
	// ldur/stur displacements carry the heap tag; nodes keep the untagged
	// field offset.
	if ld := nodes[4].(*il.LoadFieldInstr); ld.Offset != 16 {
		t.Errorf("LoadField offset = %d", ld.Offset)
	}
	if st := nodes[5].(*il.StoreFieldInstr); st.Offset != 24 {
		t.Errorf("StoreField offset = %d", st.Offset)
	}
	if dp := nodes[6].(*il.DecompressPointerInstr); dp.Target.Name() != "r0" {
		t.Errorf("decompress target = %q", dp.Target.Name())
	}
}

func TestLift_ArrayElementInvalidShift(t *testing.T) {
	nodes, bag := lifts(t, stream(0x1000,
		ins("ldr", reg(arm64.X1), memIdx(arm64.X2, arm64.X3, 4)),
		ins("str", reg(arm64.X4), memIdx(arm64.X2, arm64.X3, 9)),
	))
	wantKinds(t, nodes, il.Unknown, il.Unknown)
	if unk := nodes[0].(*il.UnknownInstr); unk.Text != "ldr r1, [r2, r3, lsl #4]" {
		t.Errorf("unknown text = %q", unk.Text)
	}
	if bag.Len() != 2 {
		t.Fatalf("diagnostics = %v", bag.Items())
	}
	for i, d := range bag.Items() {
		if d.Code != diag.LiftInvalidElementSize || d.Severity != diag.SevError {
			t.Errorf("items[%d] = %v", i, d)
		}
	}
}

func TestLift_StaticField(t *testing.T) {
	table, ok := dartrt.Default().OffsetOf("field_table_values")
	if !ok {
		t.Fatal("no field_table_values offset")
	}
	nodes, _ := lifts(t, stream(0x1000,
		ins("ldr", reg(arm64.X16), mem(arm64.ThreadReg, table)),
		ins("ldr", reg(arm64.X0), mem(arm64.X16, 0x30)),
		ins("ldr", reg(arm64.X16), mem(arm64.ThreadReg, table)),
		ins("str", reg(arm64.X1), mem(arm64.X16, 0x38)),
	))
	wantKinds(t, nodes, il.LoadStaticField, il.StoreStaticField)
	if ld := nodes[0].(*il.LoadStaticFieldInstr); ld.Dst != arm64.X0 || ld.Offset != 0x30 {
		t.Errorf("LoadStaticField = %+v", ld)
	}
	if st := nodes[1].(*il.StoreStaticFieldInstr); st.Val != arm64.X1 || st.Offset != 0x38 {
		t.Errorf("StoreStaticField = %+v", st)
	}
}

func TestLift_SaveRestoreAndImmediates(t *testing.T) {
	nodes, _ := lifts(t, stream(0x1000,
		ins("str", reg(arm64.X0), memWB(arm64.SP, -8)),
		ins("ldr", reg(arm64.X0), memWB(arm64.SP, 8)),
		ins("movz", reg(arm64.X5), imm(42)),
		ins("movn", reg(arm64.X6), imm(0)),
		ins("tbz", reg(arm64.X1), imm(0), imm(0x1020)),
	))
	wantKinds(t, nodes, il.SaveRegister, il.RestoreRegister,
		il.LoadValue, il.LoadValue, il.BranchIfSmi)

	if got := nodes[2].(*il.LoadValueInstr).Val.ValueString(); got != "42" {
		t.Errorf("movz value = %q", got)
	}
	if got := nodes[3].(*il.LoadValueInstr).Val.ValueString(); got != "-1" {
		t.Errorf("movn value = %q", got)
	}
	br := nodes[4].(*il.BranchIfSmiInstr)
	if br.Obj != arm64.X1 || br.Target != 0x1020 {
		t.Errorf("BranchIfSmi = %+v", br)
	}
}

func TestLift_UnknownWindow(t *testing.T) {
	nodes, bag := lifts(t, stream(0x1000,
		ins("fadd", reg(arm64.X0), reg(arm64.X1), reg(arm64.X2)),
		ins("ret"),
	))
	wantKinds(t, nodes, il.Unknown, il.Return)
	unk := nodes[0].(*il.UnknownInstr)
	if unk.Text != "fadd r0, r1, r2" {
		t.Errorf("unknown text = %q", unk.Text)
	}
	if bag.Len() != 1 || bag.Items()[0].Code != diag.LiftUnknownWindow {
		t.Errorf("diagnostics = %v", bag.Items())
	}
}

func TestInsn_Text(t *testing.T) {
	in := ins("ldr", reg(arm64.X0), mem(arm64.PoolReg, 0x30))
	if got := in.Text(); got != "ldr r0, [PP, #0x30]" {
		t.Errorf("Text() = %q", got)
	}
	idx := ins("str", reg(arm64.X1), memIdx(arm64.X2, arm64.X3, 3))
	if got := idx.Text(); got != "str r1, [r2, r3, lsl #3]" {
		t.Errorf("Text() = %q", got)
	}
}
