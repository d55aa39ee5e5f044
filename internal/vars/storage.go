package vars

import (
	"fmt"

	"dartlift/internal/arm64"
)

// StorageKind classifies where an abstract value currently lives.
type StorageKind uint8

const (
	// Expression: the value exists only as a pending expression.
	Expression StorageKind = iota
	// Register: a machine register.
	Register
	// Local: a frame-pointer-relative stack slot.
	Local
	// Argument: a caller-pushed argument slot.
	Argument
	// Static: a static-variable slot in the field table.
	Static
	// Pool: an object-pool entry addressed off PP.
	Pool
	// Thread: a fixed slot in the per-thread runtime context.
	Thread
	// InInstruction: transient storage while a single native instruction is
	// split across several lifted nodes.
	InInstruction
	// Immediate: an instruction immediate.
	Immediate
	// SmallImm: a small immediate (array or object offset).
	SmallImm
	// Call: the pending result of a call.
	Call
	// Field: an object field slot.
	Field
	// Uninit: no storage assigned yet. Must be overwritten before use.
	Uninit
)

func (k StorageKind) String() string {
	switch k {
	case Expression:
		return "Expression"
	case Register:
		return "Register"
	case Local:
		return "Local"
	case Argument:
		return "Argument"
	case Static:
		return "Static"
	case Pool:
		return "Pool"
	case Thread:
		return "Thread"
	case InInstruction:
		return "InInstruction"
	case Immediate:
		return "Immediate"
	case SmallImm:
		return "SmallImm"
	case Call:
		return "Call"
	case Field:
		return "Field"
	case Uninit:
		return "Uninit"
	}
	return "Unknown"
}

// Storage tags one location in the abstract machine state. Register storage
// carries a register; every other kind except Uninit carries an offset or
// index.
type Storage struct {
	Kind   StorageKind
	Reg    arm64.Register
	Offset int64
}

func NewExpression() Storage { return Storage{Kind: Expression, Reg: arm64.NoRegister} }

func NewRegister(reg arm64.Register) Storage { return Storage{Kind: Register, Reg: reg} }

func NewLocal(offset int64) Storage {
	return Storage{Kind: Local, Reg: arm64.NoRegister, Offset: offset}
}

func NewArgument(idx int64) Storage {
	return Storage{Kind: Argument, Reg: arm64.NoRegister, Offset: idx}
}

func NewStatic(offset int64) Storage {
	return Storage{Kind: Static, Reg: arm64.NoRegister, Offset: offset}
}

func NewPool(offset int64) Storage {
	return Storage{Kind: Pool, Reg: arm64.NoRegister, Offset: offset}
}

func NewThread(offset int64) Storage {
	return Storage{Kind: Thread, Reg: arm64.NoRegister, Offset: offset}
}

func NewInInstruction() Storage { return Storage{Kind: InInstruction, Reg: arm64.NoRegister} }

func NewImmediate() Storage { return Storage{Kind: Immediate, Reg: arm64.NoRegister} }

func NewSmallImm(val int64) Storage {
	return Storage{Kind: SmallImm, Reg: arm64.NoRegister, Offset: val}
}

func NewCall() Storage { return Storage{Kind: Call, Reg: arm64.NoRegister} }

func NewField(offset int64) Storage {
	return Storage{Kind: Field, Reg: arm64.NoRegister, Offset: offset}
}

func NewUninit() Storage { return Storage{Kind: Uninit, Reg: arm64.NoRegister} }

// IsRegister reports whether s is register storage in reg.
func (s Storage) IsRegister(reg arm64.Register) bool {
	return s.Kind == Register && s.Reg == reg
}

// IsImmediate reports whether s is immediate storage.
func (s Storage) IsImmediate() bool { return s.Kind == Immediate }

// IsPredefined reports whether the stored value is known before execution
// (an immediate or a pool constant).
func (s Storage) IsPredefined() bool { return s.Kind == Immediate || s.Kind == Pool }

// Name renders the storage location.
func (s Storage) Name() string {
	switch s.Kind {
	case Expression:
		return "expr"
	case Register:
		return s.Reg.Name()
	case Local:
		return fmt.Sprintf("local_%#x", s.Offset)
	case Argument:
		return fmt.Sprintf("arg_%d", s.Offset)
	case Static:
		return fmt.Sprintf("static_%#x", s.Offset)
	case Pool:
		return fmt.Sprintf("[pp+%#x]", s.Offset)
	case Thread:
		return fmt.Sprintf("[thr+%#x]", s.Offset)
	case InInstruction:
		return "tmp"
	case Immediate:
		return "imm"
	case SmallImm:
		return fmt.Sprintf("%d", s.Offset)
	case Call:
		return "r0(ret)"
	case Field:
		return fmt.Sprintf("field_%#x", s.Offset)
	case Uninit:
		return "uninit"
	}
	return "invalid"
}

func (s Storage) String() string { return s.Name() }
