package il

import "fmt"

// Kind enumerates IL node kinds. Each kind models one code-generation idiom
// of the AOT compiler, spanning one or more native instructions.
type Kind uint8

const (
	// Unknown is an instruction window the lifter could not interpret.
	Unknown Kind = iota
	// EnterFrame is the function prologue (save lr/fp, set up fp).
	EnterFrame
	// LeaveFrame is the matching epilogue.
	LeaveFrame
	// AllocateStack reserves fixed stack space.
	AllocateStack
	// CheckStackOverflow compares SP against the thread stack limit.
	CheckStackOverflow
	// CallLeafRuntime calls a leaf runtime entry point through the thread.
	CallLeafRuntime
	// LoadValue materializes an abstract value into a register.
	LoadValue
	// ClosureCall is an indirect call through a closure object.
	ClosureCall
	// MoveReg is a register-to-register move.
	MoveReg
	// DecompressPointer expands a compressed object reference in place.
	DecompressPointer
	// SaveRegister spills a register around a call.
	SaveRegister
	// RestoreRegister reloads a spilled register.
	RestoreRegister
	// SetupParameters binds incoming arguments to parameter slots.
	SetupParameters
	// InitAsync marks entry into asynchronous-function setup.
	InitAsync
	// GdtCall dispatches through the global dispatch table.
	GdtCall
	// Call is a direct call.
	Call
	// Return terminates the function.
	Return
	// BranchIfSmi branches when an object is a tagged small integer.
	BranchIfSmi
	// LoadClassId extracts the class id of a non-smi tagged object.
	LoadClassId
	// LoadTaggedClassIdMayBeSmi is the smi-safe composite class-id load.
	LoadTaggedClassIdMayBeSmi
	// BoxInt64 boxes a native 64-bit integer.
	BoxInt64
	// LoadInt32 unboxes a 32-bit integer field.
	LoadInt32
	// AllocateObject is the inline allocation fast path for a known class.
	AllocateObject
	// LoadArrayElement / StoreArrayElement are indexed array access.
	LoadArrayElement
	StoreArrayElement
	// LoadField / StoreField access an object field by byte offset.
	LoadField
	StoreField
	// InitLateStaticField is the first-touch init of a deferred static.
	InitLateStaticField
	// LoadStaticField / StoreStaticField access a static-field slot.
	LoadStaticField
	StoreStaticField
	// WriteBarrier marks a GC write barrier.
	WriteBarrier
	// TestType asserts a runtime type.
	TestType
	// StoreObjectPool writes a register back into the object pool.
	StoreObjectPool
)

func (k Kind) String() string {
	switch k {
	case Unknown:
		return "Unknown"
	case EnterFrame:
		return "EnterFrame"
	case LeaveFrame:
		return "LeaveFrame"
	case AllocateStack:
		return "AllocateStack"
	case CheckStackOverflow:
		return "CheckStackOverflow"
	case CallLeafRuntime:
		return "CallLeafRuntime"
	case LoadValue:
		return "LoadValue"
	case ClosureCall:
		return "ClosureCall"
	case MoveReg:
		return "MoveReg"
	case DecompressPointer:
		return "DecompressPointer"
	case SaveRegister:
		return "SaveRegister"
	case RestoreRegister:
		return "RestoreRegister"
	case SetupParameters:
		return "SetupParameters"
	case InitAsync:
		return "InitAsync"
	case GdtCall:
		return "GdtCall"
	case Call:
		return "Call"
	case Return:
		return "Return"
	case BranchIfSmi:
		return "BranchIfSmi"
	case LoadClassId:
		return "LoadClassId"
	case LoadTaggedClassIdMayBeSmi:
		return "LoadTaggedClassIdMayBeSmi"
	case BoxInt64:
		return "BoxInt64"
	case LoadInt32:
		return "LoadInt32"
	case AllocateObject:
		return "AllocateObject"
	case LoadArrayElement:
		return "LoadArrayElement"
	case StoreArrayElement:
		return "StoreArrayElement"
	case LoadField:
		return "LoadField"
	case StoreField:
		return "StoreField"
	case InitLateStaticField:
		return "InitLateStaticField"
	case LoadStaticField:
		return "LoadStaticField"
	case StoreStaticField:
		return "StoreStaticField"
	case WriteBarrier:
		return "WriteBarrier"
	case TestType:
		return "TestType"
	case StoreObjectPool:
		return "StoreObjectPool"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// AddrRange is the half-open native address range [Start, End) a node
// replaces.
type AddrRange struct {
	Start uint64
	End   uint64
}

// NewAddrRange builds a range from an instruction address and byte length.
func NewAddrRange(addr uint64, size uint32) AddrRange {
	return AddrRange{Start: addr, End: addr + uint64(size)}
}

func (r AddrRange) String() string {
	return fmt.Sprintf("%#x..%#x", r.Start, r.End)
}

// Contains reports whether addr falls inside the range.
func (r AddrRange) Contains(addr uint64) bool {
	return addr >= r.Start && addr < r.End
}

// Instr is one lifted IL node. Nodes are constructed fully-formed by their
// New* constructor and are immutable afterwards, except where a kind
// documents a mutable accumulation field. Node identity (the pointer) is
// meaningful for cross-referencing; nodes are never copied.
type Instr interface {
	Kind() Kind
	Range() AddrRange
	String() string
}

// base carries the kind and address range shared by every node.
type base struct {
	kind Kind
	rng  AddrRange
}

func (b *base) Kind() Kind       { return b.kind }
func (b *base) Range() AddrRange { return b.rng }

// Start returns the first native address the node covers.
func (b *base) Start() uint64 { return b.rng.Start }

// End returns the address one past the last covered byte.
func (b *base) End() uint64 { return b.rng.End }
