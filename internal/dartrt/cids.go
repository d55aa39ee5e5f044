package dartrt

// ClassID is a runtime class identifier. Non-negative ids index the analyzed
// binary's class table; negative ids are lifter pseudo-types that never occur
// in a snapshot (see vars.TypeID for the pseudo-type list).
type ClassID int32

// Well-known class ids for the runtime revision covered by DefaultProfile.
// The snapshot class table is authoritative for application classes; these
// constants only name the VM-internal classes the value model reaches for.
const (
	IllegalCid             ClassID = 0
	ObjectCid              ClassID = 1
	ClassCid               ClassID = 2
	FunctionCid            ClassID = 5
	FieldCid               ClassID = 8
	CodeCid                ClassID = 15
	ObjectPoolCid          ClassID = 19
	ContextCid             ClassID = 25
	SentinelCid            ClassID = 27
	UnlinkedCallCid        ClassID = 29
	SubtypeTestCacheCid    ClassID = 34
	InstanceCid            ClassID = 41
	TypeArgumentsCid       ClassID = 43
	TypeCid                ClassID = 45
	FunctionTypeCid        ClassID = 46
	TypeParameterCid       ClassID = 48
	IntegerCid             ClassID = 56
	SmiCid                 ClassID = 57
	MintCid                ClassID = 58
	DoubleCid              ClassID = 59
	BoolCid                ClassID = 61
	ArrayCid               ClassID = 72
	GrowableObjectArrayCid ClassID = 74
	StringCid              ClassID = 81
	OneByteStringCid       ClassID = 82
	TwoByteStringCid       ClassID = 83
	NullCid                ClassID = 91
)

// Tagging and layout constants for the ARM64 AOT runtime.
const (
	// SmiTagSize is the width of the small-integer tag: a smi is the value
	// shifted left by this amount, with a zero low bit.
	SmiTagSize = 1
	SmiTagMask = 1

	// WordSize is the native word size; CompressedWordSize is the in-object
	// size of a (compressed) pointer slot.
	WordSize           = 8
	CompressedWordSize = 4

	// HeapObjectTag: tagged object pointers have the low bit set.
	HeapObjectTag = 1

	// ArrayDataOffset is the byte offset of element 0 in a fixed array.
	// GrowableArrayDataOffset / GrowableArrayLengthOffset are the backing
	// store and length slots of a growable array.
	ArrayDataOffset           = 16
	GrowableArrayLengthOffset = 8
	GrowableArrayDataOffset   = 12
)

// DecodeSmi recovers the integer value from its tagged small-integer form.
func DecodeSmi(raw int64) int64 { return raw >> SmiTagSize }

// EncodeSmi produces the tagged small-integer form of v.
func EncodeSmi(v int64) int64 { return v << SmiTagSize }

// IsSmi reports whether a tagged word is a small integer.
func IsSmi(raw int64) bool { return raw&SmiTagMask == 0 }
