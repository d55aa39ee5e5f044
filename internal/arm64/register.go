package arm64

import "fmt"

// Register identifies an ARM64 general-purpose register as used by Dart AOT
// generated code. The numbering follows the architectural encoding (X0..X30),
// with SP and ZR as the two meanings of register number 31.
type Register uint8

const (
	X0 Register = iota
	X1
	X2
	X3
	X4
	X5
	X6
	X7
	X8
	X9
	X10
	X11
	X12
	X13
	X14
	X15
	X16
	X17
	X18
	X19
	X20
	X21
	X22
	X23
	X24
	X25
	X26
	X27
	X28
	X29
	X30
	SP
	ZR

	// NoRegister is the sentinel for an absent register operand.
	NoRegister Register = 0xff
)

// Dart VM fixed register assignments on ARM64. Generated code addresses the
// runtime context, the object pool and the dispatch table through these
// registers rather than through calls.
const (
	// ResultReg receives call results.
	ResultReg = X0
	// ArgsDescReg holds the arguments descriptor on entry.
	ArgsDescReg = X4
	// DartSP is the Dart stack pointer (distinct from the C stack pointer).
	DartSP = X15
	// IPReg0 and IPReg1 are scratch registers used by multi-instruction idioms.
	IPReg0 = X16
	IPReg1 = X17
	// DispatchTableReg holds the global dispatch table base.
	DispatchTableReg = X21
	// NullReg permanently holds the null object.
	NullReg = X22
	// CodeReg holds the current Code object.
	CodeReg = X23
	// ThreadReg points at the per-thread runtime context.
	ThreadReg = X26
	// PoolReg points at the global object pool.
	PoolReg = X27
	// HeapBaseReg holds the heap base when pointers are compressed.
	HeapBaseReg = X28
	// FP and LR keep their AAPCS roles.
	FP = X29
	LR = X30
)

var roleNames = map[Register]string{
	ArgsDescReg:      "ARGS_DESC",
	DartSP:           "SP",
	DispatchTableReg: "DISPATCH_TABLE",
	NullReg:          "NULL",
	CodeReg:          "CODE",
	ThreadReg:        "THR",
	PoolReg:          "PP",
	HeapBaseReg:      "HEAP",
	FP:               "fp",
	LR:               "lr",
}

// Name returns the display name of the register: the Dart VM role alias when
// the register has a fixed role, the architectural name otherwise.
func (r Register) Name() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	switch {
	case r <= X30:
		return fmt.Sprintf("r%d", uint8(r))
	case r == SP:
		return "csp"
	case r == ZR:
		return "zr"
	}
	return "r?"
}

func (r Register) String() string { return r.Name() }

// IsValid reports whether r names an actual register.
func (r Register) IsValid() bool { return r <= ZR }
