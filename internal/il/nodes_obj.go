package il

import (
	"fmt"

	"dartlift/internal/arm64"
	"dartlift/internal/dartrt"
	"dartlift/internal/vars"
)

// BranchIfSmiInstr branches to Target (an absolute address in the analyzed
// binary) when the object's tag bit says "small integer".
type BranchIfSmiInstr struct {
	base
	Obj    arm64.Register
	Target uint64
}

func NewBranchIfSmi(rng AddrRange, obj arm64.Register, target uint64) *BranchIfSmiInstr {
	return &BranchIfSmiInstr{base{BranchIfSmi, rng}, obj, target}
}

func (n *BranchIfSmiInstr) String() string {
	return fmt.Sprintf("branchIfSmi(%s, %#x)", n.Obj.Name(), n.Target)
}

// LoadClassIdInstr extracts the class id of a tagged object into CidReg.
// The object must not be a tagged small integer.
type LoadClassIdInstr struct {
	base
	Obj arm64.Register
	Cid arm64.Register
}

func NewLoadClassId(rng AddrRange, obj, cid arm64.Register) *LoadClassIdInstr {
	return &LoadClassIdInstr{base{LoadClassId, rng}, obj, cid}
}

func (n *LoadClassIdInstr) String() string {
	return fmt.Sprintf("%s = LoadClassIdInstr(%s)", n.Cid.Name(), n.Obj.Name())
}

// LoadTaggedClassIdMayBeSmiInstr is the smi-safe class-id load: an immediate
// load of the smi class id, a BranchIfSmi over the slow path, and the
// LoadClassId itself. The composite owns its three sub-nodes; their original
// address ranges stay intact for diagnostics.
type LoadTaggedClassIdMayBeSmiInstr struct {
	base
	TaggedCid arm64.Register
	Obj       arm64.Register

	LoadImm *LoadValueInstr
	Branch  *BranchIfSmiInstr
	LoadCid *LoadClassIdInstr
}

func NewLoadTaggedClassIdMayBeSmi(rng AddrRange, loadImm *LoadValueInstr, branch *BranchIfSmiInstr, loadCid *LoadClassIdInstr) *LoadTaggedClassIdMayBeSmiInstr {
	return &LoadTaggedClassIdMayBeSmiInstr{
		base:      base{LoadTaggedClassIdMayBeSmi, rng},
		TaggedCid: loadCid.Cid,
		Obj:       loadCid.Obj,
		LoadImm:   loadImm,
		Branch:    branch,
		LoadCid:   loadCid,
	}
}

func (n *LoadTaggedClassIdMayBeSmiInstr) String() string {
	return fmt.Sprintf("%s = LoadTaggedClassIdMayBeSmiInstr(%s)", n.TaggedCid.Name(), n.Obj.Name())
}

// BoxInt64Instr boxes the native integer in Src into the object in Obj.
type BoxInt64Instr struct {
	base
	Obj arm64.Register
	Src arm64.Register
}

func NewBoxInt64(rng AddrRange, obj, src arm64.Register) *BoxInt64Instr {
	return &BoxInt64Instr{base{BoxInt64, rng}, obj, src}
}

func (n *BoxInt64Instr) String() string {
	return fmt.Sprintf("%s = BoxInt64Instr(%s)", n.Obj.Name(), n.Src.Name())
}

// LoadInt32Instr unboxes a 32-bit integer field of SrcObj into Dst.
type LoadInt32Instr struct {
	base
	Dst    arm64.Register
	SrcObj arm64.Register
}

func NewLoadInt32(rng AddrRange, dst, srcObj arm64.Register) *LoadInt32Instr {
	return &LoadInt32Instr{base{LoadInt32, rng}, dst, srcObj}
}

func (n *LoadInt32Instr) String() string {
	return fmt.Sprintf("%s = LoadInt32Instr(%s)", n.Dst.Name(), n.SrcObj.Name())
}

// AllocateObjectInstr is the inline allocation fast path for a known class.
type AllocateObjectInstr struct {
	base
	Dst   arm64.Register
	Class *dartrt.Class
}

func NewAllocateObject(rng AddrRange, dst arm64.Register, cls *dartrt.Class) *AllocateObjectInstr {
	return &AllocateObjectInstr{base{AllocateObject, rng}, dst, cls}
}

func (n *AllocateObjectInstr) String() string {
	return fmt.Sprintf("%s = inline_Allocate%s()", n.Dst.Name(), n.Class.String())
}

// LoadArrayElementInstr is an indexed array load.
type LoadArrayElementInstr struct {
	base
	Dst   arm64.Register
	Arr   arm64.Register
	Index vars.Storage
	Op    ArrayOp
}

func NewLoadArrayElement(rng AddrRange, dst, arr arm64.Register, index vars.Storage, op ArrayOp) *LoadArrayElementInstr {
	return &LoadArrayElementInstr{base{LoadArrayElement, rng}, dst, arr, index, op}
}

func (n *LoadArrayElementInstr) String() string {
	return fmt.Sprintf("ArrayLoad: %s = %s[%s]  ; %s", n.Dst.Name(), n.Arr.Name(), n.Index.Name(), n.Op)
}

// StoreArrayElementInstr is an indexed array store.
type StoreArrayElementInstr struct {
	base
	Val   arm64.Register
	Arr   arm64.Register
	Index vars.Storage
	Op    ArrayOp
}

func NewStoreArrayElement(rng AddrRange, val, arr arm64.Register, index vars.Storage, op ArrayOp) *StoreArrayElementInstr {
	return &StoreArrayElementInstr{base{StoreArrayElement, rng}, val, arr, index, op}
}

func (n *StoreArrayElementInstr) String() string {
	return fmt.Sprintf("ArrayStore: %s[%s] = %s  ; %s", n.Arr.Name(), n.Index.Name(), n.Val.Name(), n.Op)
}

// LoadFieldInstr loads an object field by byte offset. Field identity is not
// resolved here; the offset renders as-is.
type LoadFieldInstr struct {
	base
	Dst    arm64.Register
	Obj    arm64.Register
	Offset uint32
}

func NewLoadField(rng AddrRange, dst, obj arm64.Register, offset uint32) *LoadFieldInstr {
	return &LoadFieldInstr{base{LoadField, rng}, dst, obj, offset}
}

func (n *LoadFieldInstr) String() string {
	return fmt.Sprintf("LoadField: %s = %s->field_%x", n.Dst.Name(), n.Obj.Name(), n.Offset)
}

// StoreFieldInstr stores into an object field by byte offset.
type StoreFieldInstr struct {
	base
	Val    arm64.Register
	Obj    arm64.Register
	Offset uint32
}

func NewStoreField(rng AddrRange, val, obj arm64.Register, offset uint32) *StoreFieldInstr {
	return &StoreFieldInstr{base{StoreField, rng}, val, obj, offset}
}

func (n *StoreFieldInstr) String() string {
	return fmt.Sprintf("StoreField: %s->field_%x = %s", n.Obj.Name(), n.Offset, n.Val.Name())
}

// InitLateStaticFieldInstr is the first-touch initialization of a deferred
// static field.
type InitLateStaticFieldInstr struct {
	base
	Dst   vars.Storage
	Field *dartrt.Field
}

func NewInitLateStaticField(rng AddrRange, dst vars.Storage, field *dartrt.Field) *InitLateStaticFieldInstr {
	return &InitLateStaticFieldInstr{base{InitLateStaticField, rng}, dst, field}
}

// ValueExpression is the expression text the initialized slot holds after
// this node.
func (n *InitLateStaticFieldInstr) ValueExpression() string { return n.Field.Name }

func (n *InitLateStaticFieldInstr) String() string {
	return fmt.Sprintf("%s = InitLateStaticField(%#x) // %s", n.Dst.Name(), n.Field.Offset, n.Field.FullName())
}

// LoadStaticFieldInstr loads a static-field slot.
type LoadStaticFieldInstr struct {
	base
	Dst    arm64.Register
	Offset uint32
}

func NewLoadStaticField(rng AddrRange, dst arm64.Register, offset uint32) *LoadStaticFieldInstr {
	return &LoadStaticFieldInstr{base{LoadStaticField, rng}, dst, offset}
}

func (n *LoadStaticFieldInstr) String() string {
	return fmt.Sprintf("%s = LoadStaticField(%#x)", n.Dst.Name(), n.Offset)
}

// StoreStaticFieldInstr stores into a static-field slot.
type StoreStaticFieldInstr struct {
	base
	Val    arm64.Register
	Offset uint32
}

func NewStoreStaticField(rng AddrRange, val arm64.Register, offset uint32) *StoreStaticFieldInstr {
	return &StoreStaticFieldInstr{base{StoreStaticField, rng}, val, offset}
}

func (n *StoreStaticFieldInstr) String() string {
	return fmt.Sprintf("StoreStaticField(%#x, %s)", n.Offset, n.Val.Name())
}

// WriteBarrierInstr marks the GC write barrier emitted for a reference
// store. IsArray only changes the rendered label.
type WriteBarrierInstr struct {
	base
	Obj     arm64.Register
	Val     arm64.Register
	IsArray bool
}

func NewWriteBarrier(rng AddrRange, obj, val arm64.Register, isArray bool) *WriteBarrierInstr {
	return &WriteBarrierInstr{base{WriteBarrier, rng}, obj, val, isArray}
}

func (n *WriteBarrierInstr) String() string {
	prefix := ""
	if n.IsArray {
		prefix = "Array"
	}
	return fmt.Sprintf("%sWriteBarrierInstr(obj = %s, val = %s)", prefix, n.Obj.Name(), n.Val.Name())
}

// TestTypeInstr asserts a runtime type. TypeName is a display string, not a
// resolved type object; resolving during lifting would cost more than the
// assertion is worth.
type TestTypeInstr struct {
	base
	Src      arm64.Register
	TypeName string
}

func NewTestType(rng AddrRange, src arm64.Register, typeName string) *TestTypeInstr {
	return &TestTypeInstr{base{TestType, rng}, src, typeName}
}

func (n *TestTypeInstr) String() string {
	return fmt.Sprintf("%s as %s", n.Src.Name(), n.TypeName)
}
