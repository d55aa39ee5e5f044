package lift

import (
	"fmt"
	"strings"

	"fortio.org/safecast"

	"dartlift/internal/arm64"
	"dartlift/internal/dartrt"
	"dartlift/internal/diag"
	"dartlift/internal/il"
	"dartlift/internal/snapshot"
	"dartlift/internal/vars"
)

// Lifter reconstructs typed nodes from one function's instruction stream.
// Matchers run longest-pattern-first over a cursor; anything no matcher
// claims becomes an UnknownInstr so the listing never loses an address.
//
// A Lifter is single-use per function and not safe for concurrent calls;
// the driver creates one per worker.
type Lifter struct {
	thread *dartrt.ThreadInfo
	store  *snapshot.Store
	rep    diag.Reporter

	regs  *RegState
	nodes []il.Instr
}

// Result is one lifted function.
type Result struct {
	Fn    *dartrt.Function
	Nodes []il.Instr
}

func New(thread *dartrt.ThreadInfo, store *snapshot.Store, rep diag.Reporter) *Lifter {
	if rep == nil {
		rep = diag.NopReporter{}
	}
	return &Lifter{thread: thread, store: store, rep: rep}
}

// LiftFunction lifts the instruction stream of fn. The stream must be the
// complete body in address order.
func (l *Lifter) LiftFunction(fn *dartrt.Function, insns []Insn) *Result {
	l.regs = NewRegState()
	l.nodes = make([]il.Instr, 0, len(insns))

	for i := 0; i < len(insns); {
		node, n := l.match(insns, i)
		if n == 0 {
			in := &insns[i]
			diag.ReportWarning(l.rep, diag.LiftUnknownWindow, in.Range(),
				"unmatched instruction: "+in.Text())
			node, n = il.NewUnknown(in.Range(), in.Text()), 1
		}
		l.nodes = append(l.nodes, node)
		i += n
	}
	return &Result{Fn: fn, Nodes: l.nodes}
}

type matcher func(l *Lifter, insns []Insn, i int) (il.Instr, int)

// Ordered longest-first so composites win over their own sub-patterns.
var matchers = []matcher{
	matchLoadTaggedClassIdMayBeSmi,
	matchCheckStackOverflow,
	matchEnterFrame,
	matchLeaveFrame,
	matchStaticField,
	matchLoadClassId,
	matchLeafRuntimeCall,
	matchGdtCall,
	matchAllocStack,
	matchSaveRestore,
	matchPool,
	matchThreadLoad,
	matchCall,
	matchClosureCall,
	matchReturn,
	matchBranchIfSmi,
	matchBoxInt64,
	matchLoadInt32,
	matchArrayElement,
	matchDecompressPointer,
	matchFieldAccess,
	matchMove,
	matchLoadImm,
}

func (l *Lifter) match(insns []Insn, i int) (il.Instr, int) {
	for _, m := range matchers {
		if node, n := m(l, insns, i); n > 0 {
			return node, n
		}
	}
	return nil, 0
}

func span(insns []Insn, i, n int) il.AddrRange {
	last := &insns[i+n-1]
	return il.AddrRange{Start: insns[i].Addr, End: last.Addr + uint64(last.Size)}
}

// stp fp, lr, [sp, #-16]!; mov fp, sp
func matchEnterFrame(l *Lifter, insns []Insn, i int) (il.Instr, int) {
	if i+1 >= len(insns) {
		return nil, 0
	}
	in := &insns[i]
	if in.Mnemonic != "stp" || !in.IsReg(0, arm64.FP) || !in.IsReg(1, arm64.LR) {
		return nil, 0
	}
	mem, ok := in.Mem(2)
	if !ok || mem.Base != arm64.SP || !mem.WriteBack {
		return nil, 0
	}
	next := &insns[i+1]
	if next.Mnemonic != "mov" || !next.IsReg(0, arm64.FP) || !next.IsReg(1, arm64.SP) {
		return nil, 0
	}
	return il.NewEnterFrame(span(insns, i, 2)), 2
}

// mov sp, fp; ldp fp, lr, [sp], #16
func matchLeaveFrame(l *Lifter, insns []Insn, i int) (il.Instr, int) {
	n := 0
	if insns[i].Mnemonic == "mov" && insns[i].IsReg(0, arm64.SP) && insns[i].IsReg(1, arm64.FP) {
		n = 1
	}
	if i+n >= len(insns) {
		return nil, 0
	}
	in := &insns[i+n]
	if in.Mnemonic != "ldp" || !in.IsReg(0, arm64.FP) || !in.IsReg(1, arm64.LR) {
		return nil, 0
	}
	mem, ok := in.Mem(2)
	if !ok || mem.Base != arm64.SP || !mem.WriteBack {
		return nil, 0
	}
	return il.NewLeaveFrame(span(insns, i, n+1)), n + 1
}

// sub sp, sp, #imm
func matchAllocStack(l *Lifter, insns []Insn, i int) (il.Instr, int) {
	in := &insns[i]
	if in.Mnemonic != "sub" || !in.IsReg(0, arm64.SP) || !in.IsReg(1, arm64.SP) {
		return nil, 0
	}
	imm, ok := in.Imm(2)
	if !ok {
		return nil, 0
	}
	size, err := safecast.Conv[uint32](imm)
	if err != nil {
		return nil, 0
	}
	return il.NewAllocateStack(in.Range(), size), 1
}

// ldr tmp, [THR, #stack_limit]; cmp sp, tmp; b.ls overflow
func matchCheckStackOverflow(l *Lifter, insns []Insn, i int) (il.Instr, int) {
	if i+2 >= len(insns) {
		return nil, 0
	}
	in := &insns[i]
	if in.Mnemonic != "ldr" {
		return nil, 0
	}
	mem, ok := in.Mem(1)
	if !ok || mem.Base != arm64.ThreadReg {
		return nil, 0
	}
	limit, ok := l.thread.OffsetOf("stack_limit")
	if !ok || mem.Disp != limit {
		return nil, 0
	}
	tmp := in.Reg(0)
	cmp := &insns[i+1]
	if cmp.Mnemonic != "cmp" || !cmp.IsReg(0, arm64.SP) || !cmp.IsReg(1, tmp) {
		return nil, 0
	}
	br := &insns[i+2]
	target, ok := br.Imm(0)
	if br.Mnemonic != "b.ls" || !ok {
		return nil, 0
	}
	return il.NewCheckStackOverflow(span(insns, i, 3), uint64(target)), 3
}

// str reg, [sp, #-N]! spills, ldr reg, [sp], #N restores.
func matchSaveRestore(l *Lifter, insns []Insn, i int) (il.Instr, int) {
	in := &insns[i]
	mem, ok := in.Mem(1)
	if !ok || mem.Base != arm64.SP || !mem.WriteBack {
		return nil, 0
	}
	switch in.Mnemonic {
	case "str":
		return il.NewSaveRegister(in.Range(), in.Reg(0)), 1
	case "ldr":
		l.regs.Clear(in.Reg(0))
		return il.NewRestoreRegister(in.Range(), in.Reg(0)), 1
	}
	return nil, 0
}

// Object-pool traffic through PP.
func matchPool(l *Lifter, insns []Insn, i int) (il.Instr, int) {
	in := &insns[i]
	mem, ok := in.Mem(1)
	if !ok || mem.Base != arm64.PoolReg {
		return nil, 0
	}
	switch in.Mnemonic {
	case "str":
		return il.NewStoreObjectPool(in.Range(), in.Reg(0), mem.Disp), 1
	case "ldr":
		dst := in.Reg(0)
		val, found := l.store.PoolValue(mem.Disp)
		if !found {
			diag.ReportWarning(l.rep, diag.MetaPoolEntryMiss, in.Range(),
				fmt.Sprintf("no pool entry at [pp+%#x]", mem.Disp))
			val = vars.NewExpr(fmt.Sprintf("PP_%#x", mem.Disp))
		}
		item := vars.NewItem(vars.NewPool(mem.Disp), val)
		// Pool lookups mint fresh values, so the tracked binding gets its
		// own copy rather than sharing ownership with the node.
		if tracked, ok := l.store.PoolValue(mem.Disp); ok {
			l.regs.Set(dst, vars.NewRegItem(dst, tracked))
		} else {
			l.regs.Set(dst, vars.NewRegItem(dst, vars.NewExpr(fmt.Sprintf("PP_%#x", mem.Disp))))
		}
		return il.NewLoadValue(in.Range(), dst, item), 1
	}
	return nil, 0
}

// ldr dst, [THR, #off] for a named plain field.
func matchThreadLoad(l *Lifter, insns []Insn, i int) (il.Instr, int) {
	in := &insns[i]
	if in.Mnemonic != "ldr" {
		return nil, 0
	}
	mem, ok := in.Mem(1)
	if !ok || mem.Base != arm64.ThreadReg {
		return nil, 0
	}
	dst := in.Reg(0)
	name, known := l.thread.FieldName(mem.Disp)
	var text string
	if known {
		text = "THR::" + name
	} else {
		diag.ReportWarning(l.rep, diag.MetaThreadOffsetMiss, in.Range(),
			fmt.Sprintf("no thread field at thr+%#x", mem.Disp))
		text = fmt.Sprintf("thr_%#x", mem.Disp)
	}
	item := vars.NewItem(vars.NewThread(mem.Disp), vars.NewExpr(text))
	l.regs.Set(dst, vars.NewRegItem(dst, vars.NewExpr(text)))
	return il.NewLoadValue(in.Range(), dst, item), 1
}

// ldr lr, [THR, #entry]; blr lr. Trailing register moves already emitted are
// folded back in as the call's argument moves.
func matchLeafRuntimeCall(l *Lifter, insns []Insn, i int) (il.Instr, int) {
	if i+1 >= len(insns) {
		return nil, 0
	}
	in := &insns[i]
	if in.Mnemonic != "ldr" || !in.IsReg(0, arm64.LR) {
		return nil, 0
	}
	mem, ok := in.Mem(1)
	if !ok || mem.Base != arm64.ThreadReg {
		return nil, 0
	}
	next := &insns[i+1]
	if next.Mnemonic != "blr" || !next.IsReg(0, arm64.LR) {
		return nil, 0
	}
	call := il.NewCallLeafRuntime(span(insns, i, 2), l.thread, mem.Disp, nil)
	for _, mv := range l.takeTrailingMoves() {
		call.AddMove(mv)
	}
	if _, isLeaf := l.thread.LeafFunction(mem.Disp); !isLeaf {
		if _, named := l.thread.FieldName(mem.Disp); !named {
			diag.ReportWarning(l.rep, diag.MetaLeafSignatureMiss, call.Range(),
				fmt.Sprintf("no leaf entry at thr+%#x", mem.Disp))
		}
	}
	l.clobberCall()
	return call, 2
}

// takeTrailingMoves pops the run of MoveRegInstr nodes immediately before the
// cursor, returning them in program order.
func (l *Lifter) takeTrailingMoves() []*il.MoveRegInstr {
	j := len(l.nodes)
	for j > 0 {
		if _, ok := l.nodes[j-1].(*il.MoveRegInstr); !ok {
			break
		}
		j--
	}
	moves := make([]*il.MoveRegInstr, 0, len(l.nodes)-j)
	for _, n := range l.nodes[j:] {
		moves = append(moves, n.(*il.MoveRegInstr))
	}
	l.nodes = l.nodes[:j]
	return moves
}

// ldr lr, [DISPATCH_TABLE, #disp]; blr lr
func matchGdtCall(l *Lifter, insns []Insn, i int) (il.Instr, int) {
	if i+1 >= len(insns) {
		return nil, 0
	}
	in := &insns[i]
	if in.Mnemonic != "ldr" || !in.IsReg(0, arm64.LR) {
		return nil, 0
	}
	mem, ok := in.Mem(1)
	if !ok || mem.Base != arm64.DispatchTableReg {
		return nil, 0
	}
	next := &insns[i+1]
	if next.Mnemonic != "blr" || !next.IsReg(0, arm64.LR) {
		return nil, 0
	}
	l.clobberCall()
	return il.NewGdtCall(span(insns, i, 2), mem.Disp), 2
}

// bl #addr. Allocation and write-barrier stubs get their own node kinds;
// everything else is a direct call, resolved when the target address is in
// the function table.
func matchCall(l *Lifter, insns []Insn, i int) (il.Instr, int) {
	in := &insns[i]
	if in.Mnemonic != "bl" {
		return nil, 0
	}
	target, ok := in.Imm(0)
	if !ok {
		return nil, 0
	}
	addr := uint64(target)
	fn, resolved := l.store.FunctionAt(addr)
	if resolved {
		if cls, isAlloc := allocStubClass(l.store, fn.Name); isAlloc {
			l.clobberCall()
			return il.NewAllocateObject(in.Range(), arm64.ResultReg, cls), 1
		}
		if strings.Contains(fn.Name, "WriteBarrier") {
			isArray := strings.Contains(fn.Name, "Array")
			return il.NewWriteBarrier(in.Range(), arm64.X1, arm64.ResultReg, isArray), 1
		}
	} else {
		diag.ReportInfo(l.rep, diag.MetaUnresolvedFunction, in.Range(),
			fmt.Sprintf("call target %#x not in function table", addr))
	}
	l.clobberCall()
	return il.NewCall(in.Range(), fn, addr), 1
}

// allocStubClass maps an AllocateFooStub name to the class Foo.
func allocStubClass(store *snapshot.Store, name string) (*dartrt.Class, bool) {
	const prefix, suffix = "Allocate", "Stub"
	if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, suffix) {
		return nil, false
	}
	clsName := name[len(prefix) : len(name)-len(suffix)]
	if clsName == "" {
		return nil, false
	}
	return store.ClassByName(clsName)
}

// blr reg for any untracked register is an indirect closure invocation.
func matchClosureCall(l *Lifter, insns []Insn, i int) (il.Instr, int) {
	in := &insns[i]
	if in.Mnemonic != "blr" {
		return nil, 0
	}
	l.clobberCall()
	return il.NewClosureCall(in.Range(), 0, 0), 1
}

func matchReturn(l *Lifter, insns []Insn, i int) (il.Instr, int) {
	if insns[i].Mnemonic != "ret" {
		return nil, 0
	}
	return il.NewReturn(insns[i].Range()), 1
}

// tbz obj, #0, target
func matchBranchIfSmi(l *Lifter, insns []Insn, i int) (il.Instr, int) {
	in := &insns[i]
	if in.Mnemonic != "tbz" {
		return nil, 0
	}
	bit, okBit := in.Imm(1)
	target, okTgt := in.Imm(2)
	if !okBit || bit != 0 || !okTgt {
		return nil, 0
	}
	return il.NewBranchIfSmi(in.Range(), in.Reg(0), uint64(target)), 1
}

// ldur tmp, [obj, #-1]; ubfx cid, tmp, #12, #20
func matchLoadClassId(l *Lifter, insns []Insn, i int) (il.Instr, int) {
	if i+1 >= len(insns) {
		return nil, 0
	}
	in := &insns[i]
	if in.Mnemonic != "ldur" {
		return nil, 0
	}
	mem, ok := in.Mem(1)
	if !ok || mem.Disp != -int64(dartrt.HeapObjectTag) {
		return nil, 0
	}
	tmp := in.Reg(0)
	ext := &insns[i+1]
	lsb, okLsb := ext.Imm(2)
	width, okW := ext.Imm(3)
	if ext.Mnemonic != "ubfx" || !ext.IsReg(1, tmp) || !okLsb || lsb != 12 || !okW || width != 20 {
		return nil, 0
	}
	cid := ext.Reg(0)
	l.regs.Set(cid, vars.NewRegItem(cid, vars.NewUnknownClassID()))
	return il.NewLoadClassId(span(insns, i, 2), mem.Base, cid), 2
}

// movz cid, #smi_cid; tbz obj, #0, done; ldur tmp, [obj, #-1]; ubfx cid, ...
func matchLoadTaggedClassIdMayBeSmi(l *Lifter, insns []Insn, i int) (il.Instr, int) {
	if i+3 >= len(insns) {
		return nil, 0
	}
	mv := &insns[i]
	imm, ok := mv.Imm(1)
	taggedSmi := int64(dartrt.SmiCid) << dartrt.SmiTagSize
	if (mv.Mnemonic != "movz" && mv.Mnemonic != "mov") || !ok || imm != taggedSmi {
		return nil, 0
	}
	cid := mv.Reg(0)
	branch, bn := matchBranchIfSmi(l, insns, i+1)
	if bn == 0 {
		return nil, 0
	}
	load, ln := matchLoadClassId(l, insns, i+1+bn)
	if ln == 0 {
		return nil, 0
	}
	loadCid := load.(*il.LoadClassIdInstr)
	if loadCid.Cid != cid {
		return nil, 0
	}
	item := vars.NewRegItem(cid, vars.NewClassID(imm, true))
	loadImm := il.NewLoadValue(mv.Range(), cid, item)
	n := 1 + bn + ln
	node := il.NewLoadTaggedClassIdMayBeSmi(span(insns, i, n), loadImm,
		branch.(*il.BranchIfSmiInstr), loadCid)
	l.regs.Set(cid, vars.NewRegItem(cid, vars.NewClassID(imm, true)))
	return node, n
}

// sbfiz obj, src, #1, #31 is the smi fast path of int boxing.
func matchBoxInt64(l *Lifter, insns []Insn, i int) (il.Instr, int) {
	in := &insns[i]
	if in.Mnemonic != "sbfiz" {
		return nil, 0
	}
	lsb, okLsb := in.Imm(2)
	width, okW := in.Imm(3)
	if !okLsb || lsb != int64(dartrt.SmiTagSize) || !okW || width != 31 {
		return nil, 0
	}
	return il.NewBoxInt64(in.Range(), in.Reg(0), in.Reg(1)), 1
}

// ldursw dst, [obj, #off] unboxes a 32-bit int field.
func matchLoadInt32(l *Lifter, insns []Insn, i int) (il.Instr, int) {
	in := &insns[i]
	if in.Mnemonic != "ldursw" {
		return nil, 0
	}
	mem, ok := in.Mem(1)
	if !ok {
		return nil, 0
	}
	return il.NewLoadInt32(in.Range(), in.Reg(0), mem.Base), 1
}

// Scaled-index loads and stores against an array body. A shift above 3 maps
// to no element size in {1, 2, 4, 8}; that window is reported and kept
// opaque rather than lifted into a plausible-looking access.
func matchArrayElement(l *Lifter, insns []Insn, i int) (il.Instr, int) {
	in := &insns[i]
	if len(in.Ops) < 2 || in.Ops[1].Kind != OpMemIdx {
		return nil, 0
	}
	isLoad := strings.HasPrefix(in.Mnemonic, "ldr")
	if !isLoad && !strings.HasPrefix(in.Mnemonic, "str") {
		return nil, 0
	}
	mem := in.Ops[1]
	if mem.Shift > 3 {
		diag.ReportError(l.rep, diag.LiftInvalidElementSize, in.Range(),
			fmt.Sprintf("indexed access shift %d exceeds any element size", mem.Shift))
		return il.NewUnknown(in.Range(), in.Text()), 1
	}
	size := uint8(1) << mem.Shift
	kind := il.ArrayUnknown
	switch {
	case strings.HasPrefix(in.Mnemonic, "ldrs") || strings.HasPrefix(in.Mnemonic, "strs"):
		kind = il.ArrayTypedSigned
	case mem.Shift > 0:
		kind = il.ArrayTypedUnsigned
	}
	idx := vars.NewRegister(mem.Index)
	op := il.NewArrayOp(size, isLoad, kind)
	if isLoad {
		l.regs.Clear(in.Reg(0))
		return il.NewLoadArrayElement(in.Range(), in.Reg(0), mem.Base, idx, op), 1
	}
	return il.NewStoreArrayElement(in.Range(), in.Reg(0), mem.Base, idx, op), 1
}

// add dst, dst, HEAP, lsl #32 rebuilds a full pointer from a compressed one.
func matchDecompressPointer(l *Lifter, insns []Insn, i int) (il.Instr, int) {
	in := &insns[i]
	if in.Mnemonic != "add" || !in.IsReg(1, in.Reg(0)) || !in.IsReg(2, arm64.HeapBaseReg) {
		return nil, 0
	}
	return il.NewDecompressPointer(in.Range(), vars.NewRegister(in.Reg(0))), 1
}

// Unscaled object-relative loads and stores are field accesses. The
// displacement carries the heap tag; the node renders the untagged offset.
func matchFieldAccess(l *Lifter, insns []Insn, i int) (il.Instr, int) {
	in := &insns[i]
	if in.Mnemonic != "ldur" && in.Mnemonic != "stur" {
		return nil, 0
	}
	mem, ok := in.Mem(1)
	if !ok || mem.Base == arm64.SP || mem.Base == arm64.FP {
		return nil, 0
	}
	off, err := safecast.Conv[uint32](mem.Disp + int64(dartrt.HeapObjectTag))
	if err != nil {
		return nil, 0
	}
	if in.Mnemonic == "ldur" {
		l.regs.Clear(in.Reg(0))
		return il.NewLoadField(in.Range(), in.Reg(0), mem.Base, off), 1
	}
	return il.NewStoreField(in.Range(), in.Reg(0), mem.Base, off), 1
}

// Static-field slots live behind the thread's field table:
// ldr tmp, [THR, #field_table_values]; ldr dst, [tmp, #off].
func matchStaticField(l *Lifter, insns []Insn, i int) (il.Instr, int) {
	if i+1 >= len(insns) {
		return nil, 0
	}
	in := &insns[i]
	if in.Mnemonic != "ldr" {
		return nil, 0
	}
	mem, ok := in.Mem(1)
	if !ok || mem.Base != arm64.ThreadReg {
		return nil, 0
	}
	tableOff, ok := l.thread.OffsetOf("field_table_values")
	if !ok || mem.Disp != tableOff {
		return nil, 0
	}
	tmp := in.Reg(0)
	next := &insns[i+1]
	slot, ok := next.Mem(1)
	if !ok || slot.Base != tmp {
		return nil, 0
	}
	off, err := safecast.Conv[uint32](slot.Disp)
	if err != nil {
		return nil, 0
	}
	switch next.Mnemonic {
	case "ldr":
		dst := next.Reg(0)
		l.regs.Clear(dst)
		return il.NewLoadStaticField(span(insns, i, 2), dst, off), 2
	case "str":
		return il.NewStoreStaticField(span(insns, i, 2), next.Reg(0), off), 2
	}
	return nil, 0
}

// mov dst, src between general registers relocates the tracked binding.
func matchMove(l *Lifter, insns []Insn, i int) (il.Instr, int) {
	in := &insns[i]
	if in.Mnemonic != "mov" {
		return nil, 0
	}
	dst, src := in.Reg(0), in.Reg(1)
	if !dst.IsValid() || !src.IsValid() || dst == arm64.SP || src == arm64.SP {
		return nil, 0
	}
	l.regs.Move(dst, src)
	return il.NewMoveReg(in.Range(), dst, src), 1
}

// mov/movz/movn dst, #imm materializes a small immediate.
func matchLoadImm(l *Lifter, insns []Insn, i int) (il.Instr, int) {
	in := &insns[i]
	switch in.Mnemonic {
	case "mov", "movz", "movn":
	default:
		return nil, 0
	}
	imm, ok := in.Imm(1)
	if !ok {
		return nil, 0
	}
	if in.Mnemonic == "movn" {
		imm = ^imm
	}
	dst := in.Reg(0)
	item := vars.NewItem(vars.NewSmallImm(imm), vars.NewInteger(imm, vars.TypeNativeInt))
	l.regs.Set(dst, vars.NewRegItem(dst, vars.NewInteger(imm, vars.TypeNativeInt)))
	return il.NewLoadValue(in.Range(), dst, item), 1
}

// clobberCall drops call-clobbered registers and marks r0 as a call result.
func (l *Lifter) clobberCall() {
	l.regs.ClearCallClobbered()
	l.regs.Set(arm64.ResultReg, vars.NewItem(vars.NewCall(), vars.NewExpr("r0")))
}
