package snapshot

// Disk representation of extracted snapshot metadata. A separate extraction
// step (outside this tool) walks the app snapshot and writes these records;
// dartlift only consumes them. The format is msgpack with a schema version
// for safe invalidation.

// Current schema version - increment when the payload format changes.
const schemaVersion uint16 = 1

// Payload is the root record of a metadata file.
type Payload struct {
	Schema uint16

	Classes   []ClassRec
	Fields    []FieldRec
	Functions []FuncRec
	Pool      []PoolRec

	// Code carries pre-decoded instruction records per function. Decoding
	// raw bytes is the extractor's job; dartlift never parses machine code.
	Code []FuncCode
}

// ClassRec is one class-table entry.
type ClassRec struct {
	ID             int32
	Name           string
	SuperID        int32
	InstanceSize   int32
	TypeArgsOffset int32
}

// FieldRec is one field with its layout offset. Offset is the in-instance
// byte offset, or the field-table offset for statics.
type FieldRec struct {
	Name     string
	OwnerID  int32
	Offset   int64
	IsStatic bool
}

// FuncRec is one compiled function.
type FuncRec struct {
	Name    string
	OwnerID int32
	Addr    uint64
	Size    uint32
}

// PoolKind classifies an object-pool entry.
type PoolKind uint8

const (
	// PoolNull is the null object.
	PoolNull PoolKind = iota
	// PoolString is a one-byte (Latin-1) string; Bytes holds the raw data.
	PoolString
	// PoolWideString is a two-byte string; Bytes holds UTF-16LE code units.
	PoolWideString
	// PoolInt is a boxed integer; Int holds the value.
	PoolInt
	// PoolDouble is a boxed double; Double holds the value.
	PoolDouble
	// PoolFunction references Functions[Ref].
	PoolFunction
	// PoolStub is a VM stub; Name and Addr describe it.
	PoolStub
)

// PoolRec is one object-pool entry, keyed by its byte offset off PP.
type PoolRec struct {
	Offset int64
	Kind   PoolKind

	Bytes  []byte
	Int    int64
	Double float64
	Ref    int32
	Name   string
	Addr   uint64
}

// OpKind classifies a decoded operand.
type OpKind uint8

const (
	// OpReg is a register operand.
	OpReg OpKind = iota
	// OpImm is an immediate.
	OpImm
	// OpMem is a base-register plus displacement memory operand.
	OpMem
	// OpMemIdx is a base-plus-scaled-index memory operand.
	OpMemIdx
)

// OpRec is one decoded operand.
type OpRec struct {
	Kind      OpKind
	Reg       uint8
	Imm       int64
	Base      uint8
	Disp      int64
	Index     uint8
	Shift     uint8
	WriteBack bool
}

// InsnRec is one decoded native instruction.
type InsnRec struct {
	Addr     uint64
	Size     uint32
	Mnemonic string
	Ops      []OpRec
}

// FuncCode is the decoded instruction stream of one function, keyed by the
// function's entry address.
type FuncCode struct {
	Addr  uint64
	Insns []InsnRec
}
