package il

import "fmt"

// ArrayKind classifies the element category of an array access.
type ArrayKind uint8

const (
	// ArrayList is a plain object array.
	ArrayList ArrayKind = iota
	// ArrayTypedUnknown is typed data of unknown signedness.
	ArrayTypedUnknown
	// ArrayTypedSigned is signed typed data.
	ArrayTypedSigned
	// ArrayTypedUnsigned is unsigned typed data.
	ArrayTypedUnsigned
	// ArrayUnknown might be an object array, a list or typed data.
	ArrayUnknown
)

// InvalidSizeLog2 is returned by SizeLog2 for element sizes without a valid
// log2. It is deliberately implausible so it cannot pass for a real shift.
const InvalidSizeLog2 = 255

// ArrayOp describes one indexed array access: element byte size (1, 2, 4 or
// 8), direction, and element category.
type ArrayOp struct {
	Size   uint8
	IsLoad bool
	Kind   ArrayKind
}

func NewArrayOp(size uint8, isLoad bool, kind ArrayKind) ArrayOp {
	return ArrayOp{Size: size, IsLoad: isLoad, Kind: kind}
}

// IsArrayOp reports whether the descriptor describes a real access.
func (op ArrayOp) IsArrayOp() bool { return op.Size != 0 }

// SizeLog2 maps the element size to its shift amount. Sizes outside
// {1, 2, 4, 8} yield InvalidSizeLog2.
func (op ArrayOp) SizeLog2() uint8 {
	switch op.Size {
	case 8:
		return 3
	case 4:
		return 2
	case 2:
		return 1
	case 1:
		return 0
	}
	return InvalidSizeLog2
}

func (op ArrayOp) String() string {
	switch op.Kind {
	case ArrayList:
		return fmt.Sprintf("List_%d", op.Size)
	case ArrayTypedUnknown:
		return fmt.Sprintf("TypeUnknown_%d", op.Size)
	case ArrayTypedSigned:
		return fmt.Sprintf("TypedSigned_%d", op.Size)
	case ArrayTypedUnsigned:
		return fmt.Sprintf("TypedUnsigned_%d", op.Size)
	case ArrayUnknown:
		return fmt.Sprintf("Unknown_%d", op.Size)
	}
	return ""
}
