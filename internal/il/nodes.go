package il

import (
	"fmt"

	"dartlift/internal/arm64"
	"dartlift/internal/dartrt"
	"dartlift/internal/vars"
)

// UnknownInstr wraps an instruction window the lifter could not match.
// Text keeps the raw assembly for the listing.
type UnknownInstr struct {
	base
	Text string
}

func NewUnknown(rng AddrRange, text string) *UnknownInstr {
	return &UnknownInstr{base{Unknown, rng}, text}
}

func (n *UnknownInstr) String() string { return "unknown" }

// EnterFrameInstr is the two-instruction prologue
// (stp lr, fp, [sp, #-16]!; mov fp, sp).
type EnterFrameInstr struct {
	base
}

func NewEnterFrame(rng AddrRange) *EnterFrameInstr {
	return &EnterFrameInstr{base{EnterFrame, rng}}
}

func (n *EnterFrameInstr) String() string { return "EnterFrame" }

// LeaveFrameInstr is the matching epilogue.
type LeaveFrameInstr struct {
	base
}

func NewLeaveFrame(rng AddrRange) *LeaveFrameInstr {
	return &LeaveFrameInstr{base{LeaveFrame, rng}}
}

func (n *LeaveFrameInstr) String() string { return "LeaveFrame" }

// AllocateStackInstr reserves Size bytes of stack. Size may be zero.
type AllocateStackInstr struct {
	base
	Size uint32
}

func NewAllocateStack(rng AddrRange, size uint32) *AllocateStackInstr {
	return &AllocateStackInstr{base{AllocateStack, rng}, size}
}

func (n *AllocateStackInstr) String() string {
	return fmt.Sprintf("AllocStack(%#x)", n.Size)
}

// CheckStackOverflowInstr is the three-instruction overflow check
// (ldr tmp, [THR, #stack_limit]; cmp sp, tmp; b.ls overflow).
type CheckStackOverflowInstr struct {
	base
	OverflowBranch uint64
}

func NewCheckStackOverflow(rng AddrRange, overflowBranch uint64) *CheckStackOverflowInstr {
	return &CheckStackOverflowInstr{base{CheckStackOverflow, rng}, overflowBranch}
}

func (n *CheckStackOverflowInstr) String() string { return "CheckStackOverflow" }

// MoveRegInstr is a plain register move.
type MoveRegInstr struct {
	base
	Dst arm64.Register
	Src arm64.Register
}

func NewMoveReg(rng AddrRange, dst, src arm64.Register) *MoveRegInstr {
	return &MoveRegInstr{base{MoveReg, rng}, dst, src}
}

func (n *MoveRegInstr) String() string {
	return fmt.Sprintf("%s = %s", n.Dst.Name(), n.Src.Name())
}

// CallLeafRuntimeInstr calls a leaf runtime entry point resolved through the
// thread registry at render time. Moves accumulates the argument moves that
// precede the call; AddMove may append to it until the node is finalized.
type CallLeafRuntimeInstr struct {
	base
	ThrOffset int64
	Moves     []*MoveRegInstr

	thread *dartrt.ThreadInfo
}

func NewCallLeafRuntime(rng AddrRange, thread *dartrt.ThreadInfo, thrOffset int64, moves []*MoveRegInstr) *CallLeafRuntimeInstr {
	return &CallLeafRuntimeInstr{base{CallLeafRuntime, rng}, thrOffset, moves, thread}
}

// AddMove appends a resolved argument move.
func (n *CallLeafRuntimeInstr) AddMove(m *MoveRegInstr) {
	n.Moves = append(n.Moves, m)
}

func (n *CallLeafRuntimeInstr) String() string {
	if n.thread != nil {
		name, ok := n.thread.FieldName(n.ThrOffset)
		if fn, okFn := n.thread.LeafFunction(n.ThrOffset); ok && okFn {
			return fmt.Sprintf("CallRuntime_%s(%s) -> %s", name, fn.Params, fn.ReturnType)
		}
		if ok {
			return fmt.Sprintf("CallRuntime_%s()", name)
		}
	}
	return fmt.Sprintf("CallRuntime_unknown(thr+%#x)", n.ThrOffset)
}

// LoadValueInstr materializes an abstract value into a register. The node
// owns the value binding it materializes.
type LoadValueInstr struct {
	base
	Dst arm64.Register
	Val *vars.Item
}

func NewLoadValue(rng AddrRange, dst arm64.Register, val *vars.Item) *LoadValueInstr {
	return &LoadValueInstr{base{LoadValue, rng}, dst, val}
}

// Value returns the owned binding.
func (n *LoadValueInstr) Value() *vars.Item { return n.Val }

func (n *LoadValueInstr) String() string {
	return n.Dst.Name() + " = " + n.Val.Name()
}

// StoreObjectPoolInstr writes a register back into the object pool.
type StoreObjectPoolInstr struct {
	base
	Src    arm64.Register
	Offset int64
}

func NewStoreObjectPool(rng AddrRange, src arm64.Register, offset int64) *StoreObjectPoolInstr {
	return &StoreObjectPoolInstr{base{StoreObjectPool, rng}, src, offset}
}

func (n *StoreObjectPoolInstr) String() string {
	return fmt.Sprintf("[PP+%#x] = %s", n.Offset, n.Src.Name())
}

// ClosureCallInstr is an indirect call through a closure object. Argument
// counts are non-negative.
type ClosureCallInstr struct {
	base
	NumArgs     int32
	NumTypeArgs int32
}

func NewClosureCall(rng AddrRange, numArgs, numTypeArgs int32) *ClosureCallInstr {
	return &ClosureCallInstr{base{ClosureCall, rng}, numArgs, numTypeArgs}
}

func (n *ClosureCallInstr) String() string { return "ClosureCall" }

// DecompressPointerInstr expands a compressed object reference. The target
// may be any storage, not only a register.
type DecompressPointerInstr struct {
	base
	Target vars.Storage
}

func NewDecompressPointer(rng AddrRange, target vars.Storage) *DecompressPointerInstr {
	return &DecompressPointerInstr{base{DecompressPointer, rng}, target}
}

func (n *DecompressPointerInstr) String() string {
	return "DecompressPointer " + n.Target.Name()
}

// SaveRegisterInstr spills a register around a call. Every save is matched
// by a RestoreRegisterInstr in well-formed lifted output; the pairing is the
// lifter's responsibility, not checked here.
type SaveRegisterInstr struct {
	base
	Src arm64.Register
}

func NewSaveRegister(rng AddrRange, src arm64.Register) *SaveRegisterInstr {
	return &SaveRegisterInstr{base{SaveRegister, rng}, src}
}

func (n *SaveRegisterInstr) String() string {
	return "SaveReg " + n.Src.Name()
}

// RestoreRegisterInstr reloads a spilled register.
type RestoreRegisterInstr struct {
	base
	Dst arm64.Register
}

func NewRestoreRegister(rng AddrRange, dst arm64.Register) *RestoreRegisterInstr {
	return &RestoreRegisterInstr{base{RestoreRegister, rng}, dst}
}

func (n *RestoreRegisterInstr) String() string {
	return "RestoreReg " + n.Dst.Name()
}

// SetupParametersInstr binds incoming arguments to parameter slots.
// Rendering is delegated to the parameter-description collaborator.
type SetupParametersInstr struct {
	base
	Params fmt.Stringer
}

func NewSetupParameters(rng AddrRange, params fmt.Stringer) *SetupParametersInstr {
	return &SetupParametersInstr{base{SetupParameters, rng}, params}
}

func (n *SetupParametersInstr) String() string {
	if n.Params == nil {
		return "SetupParameters(unknown)"
	}
	return "SetupParameters(" + n.Params.String() + ")"
}

// InitAsyncInstr marks entry into async-function setup. RetType is carried
// for display only.
type InitAsyncInstr struct {
	base
	RetType *dartrt.Type
}

func NewInitAsync(rng AddrRange, retType *dartrt.Type) *InitAsyncInstr {
	return &InitAsyncInstr{base{InitAsync, rng}, retType}
}

func (n *InitAsyncInstr) String() string {
	return "InitAsync() -> " + n.RetType.String()
}

// GdtCallInstr dispatches through the global dispatch table. Offset is added
// to the table slot implied by the class id already loaded in r0's cid
// register.
type GdtCallInstr struct {
	base
	Offset int64
}

func NewGdtCall(rng AddrRange, offset int64) *GdtCallInstr {
	return &GdtCallInstr{base{GdtCall, rng}, offset}
}

func (n *GdtCallInstr) String() string {
	return fmt.Sprintf("r0 = GDT[cid_x0 + %#x]()", n.Offset)
}

// CallInstr is a direct call. Exactly one of Fn and Addr is meaningful:
// Fn when the target resolved, the raw Addr otherwise.
type CallInstr struct {
	base
	Fn   *dartrt.Function
	Addr uint64
}

func NewCall(rng AddrRange, fn *dartrt.Function, addr uint64) *CallInstr {
	return &CallInstr{base{Call, rng}, fn, addr}
}

// Function returns the resolved target, nil when unresolved.
func (n *CallInstr) Function() *dartrt.Function { return n.Fn }

// CallAddress returns the raw target address.
func (n *CallInstr) CallAddress() uint64 { return n.Addr }

func (n *CallInstr) String() string {
	if n.Fn != nil {
		return fmt.Sprintf("r0 = %s()", n.Fn.Name)
	}
	return fmt.Sprintf("r0 = call %#x", n.Addr)
}

// ReturnInstr terminates the function. Always the last node of a block.
type ReturnInstr struct {
	base
}

func NewReturn(rng AddrRange) *ReturnInstr {
	return &ReturnInstr{base{Return, rng}}
}

func (n *ReturnInstr) String() string { return "ret" }
