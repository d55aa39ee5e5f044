package vars

import (
	"fmt"
	"strconv"

	"dartlift/internal/dartrt"
)

// TypeID is the runtime type tag of an abstract value. Non-negative ids are
// class ids from the analyzed binary; negative ids are lifter pseudo-types.
type TypeID int32

const (
	// TypeExpression tags a value that exists only as unresolved text.
	TypeExpression TypeID = -1000 + iota
	// TypeTaggedCid tags a class id still in tagged-smi form.
	TypeTaggedCid
	// TypeNativeInt tags an untagged native integer.
	TypeNativeInt
	// TypeNativeDouble tags an unboxed double.
	TypeNativeDouble
	// TypeParameter tags an incoming call parameter.
	TypeParameter
	// TypeArgsDesc tags an arguments descriptor.
	TypeArgsDesc
	// TypeCurrNumNameParam tags the running count of named parameters being
	// loaded. It has no use after parameter setup, but some functions spill
	// it; tracking it suppresses a use-before-define report.
	TypeCurrNumNameParam
)

// Value is an abstract runtime value: a compile-time constant, a reference to
// snapshot metadata, or an expression pending resolution. The set of
// implementations is closed; consumers dispatch with a type switch.
type Value interface {
	// HasValue reports whether the concrete value is statically known.
	HasValue() bool
	// RawTypeID returns the tag the value was constructed with.
	RawTypeID() TypeID
	// TypeID returns the effective runtime type tag. Most variants return
	// the raw tag; Expression and Instance refine it.
	TypeID() TypeID
	String() string

	sealed()
}

// valueBase carries the tag and the known-value flag shared by all variants.
type valueBase struct {
	tid   TypeID
	known bool
}

func (b *valueBase) HasValue() bool    { return b.known }
func (b *valueBase) RawTypeID() TypeID { return b.tid }
func (b *valueBase) TypeID() TypeID    { return b.tid }
func (b *valueBase) sealed()           {}

// Null is the null object.
type Null struct{ valueBase }

func NewNull() *Null {
	return &Null{valueBase{tid: TypeID(dartrt.NullCid), known: true}}
}

func (v *Null) String() string { return "Null" }

// Boolean is a bool, known or not.
type Boolean struct {
	valueBase
	Val bool
}

func NewBoolean(val bool) *Boolean {
	return &Boolean{valueBase{tid: TypeID(dartrt.BoolCid), known: true}, val}
}

func NewUnknownBoolean() *Boolean {
	return &Boolean{valueBase{tid: TypeID(dartrt.BoolCid)}, false}
}

func (v *Boolean) String() string {
	if v.Val {
		return "true"
	}
	return "false"
}

// Integer is an integer with a representation tag. IntType distinguishes the
// tagged small-integer encoding (SmiCid) from native and boxed encodings;
// Raw holds the bits as they appear in the machine state.
type Integer struct {
	valueBase
	IntType TypeID
	Raw     int64
}

func NewInteger(raw int64, intType TypeID) *Integer {
	return &Integer{valueBase{tid: TypeID(dartrt.IntegerCid), known: true}, intType, raw}
}

func NewUnknownInteger(intType TypeID) *Integer {
	return &Integer{valueBase{tid: TypeID(dartrt.IntegerCid)}, intType, 0}
}

// Value returns the integer magnitude. This is the only place tagged-smi
// decoding happens; consumers must not read Raw for the magnitude.
func (v *Integer) Value() int64 {
	if v.IntType == TypeID(dartrt.SmiCid) {
		return v.Raw >> dartrt.SmiTagSize
	}
	return v.Raw
}

// SetType refines the representation tag once the lifter learns it.
func (v *Integer) SetType(intType TypeID) { v.IntType = intType }

func (v *Integer) String() string { return strconv.FormatInt(v.Value(), 10) }

// Double is a floating-point value with a representation tag (boxed or
// unboxed).
type Double struct {
	valueBase
	DoubleType TypeID
	Val        float64
}

func NewDouble(val float64, doubleType TypeID) *Double {
	return &Double{valueBase{tid: TypeID(dartrt.DoubleCid), known: true}, doubleType, val}
}

func NewUnknownDouble(doubleType TypeID) *Double {
	return &Double{valueBase{tid: TypeID(dartrt.DoubleCid)}, doubleType, 0}
}

func (v *Double) String() string { return strconv.FormatFloat(v.Val, 'g', -1, 64) }

// Str is a string constant from the object pool.
type Str struct {
	valueBase
	Text string
}

func NewStr(text string) *Str {
	return &Str{valueBase{tid: TypeID(dartrt.StringCid), known: true}, text}
}

func (v *Str) String() string { return strconv.Quote(v.Text) }

// FunctionRef references a compiled function.
type FunctionRef struct {
	valueBase
	Fn *dartrt.Function
}

func NewFunctionRef(fn *dartrt.Function) *FunctionRef {
	return &FunctionRef{valueBase{tid: TypeID(dartrt.FunctionCid), known: true}, fn}
}

func (v *FunctionRef) String() string { return v.Fn.FullName() }

// FieldRef references a field object.
type FieldRef struct {
	valueBase
	Field *dartrt.Field
}

func NewFieldRef(field *dartrt.Field) *FieldRef {
	return &FieldRef{valueBase{tid: TypeID(dartrt.FieldCid), known: true}, field}
}

func (v *FieldRef) String() string { return v.Field.Name }

// Expr is a placeholder for a value whose concrete form is not resolved yet.
// Its text and type tag may be refined in place until it is consumed.
type Expr struct {
	valueBase
	Text string
	Cid  TypeID
}

func NewExpr(text string) *Expr {
	return &Expr{valueBase{tid: TypeExpression}, text, TypeID(dartrt.IllegalCid)}
}

func NewTypedExpr(text string, cid TypeID) *Expr {
	return &Expr{valueBase{tid: TypeExpression}, text, cid}
}

func (v *Expr) String() string      { return v.Text }
func (v *Expr) TypeID() TypeID      { return v.Cid }
func (v *Expr) SetText(text string) { v.Text = text }
func (v *Expr) SetType(cid TypeID)  { v.Cid = cid }

// FixedArray is a fixed-length array. Length is -1 when unknown.
type FixedArray struct {
	valueBase
	Ele    *dartrt.Type
	Length int64
}

func NewFixedArray(ele *dartrt.Type, length int64) *FixedArray {
	return &FixedArray{valueBase{tid: TypeID(dartrt.ArrayCid)}, ele, length}
}

func (v *FixedArray) String() string {
	if v.Ele != nil {
		return fmt.Sprintf("Array<%s>", v.Ele)
	}
	return "Array"
}

// DataOffset returns the byte offset of element 0.
func (v *FixedArray) DataOffset() int64 { return dartrt.ArrayDataOffset }

// ElementSize returns the in-object element slot size.
func (v *FixedArray) ElementSize() int64 { return dartrt.CompressedWordSize }

// IsElementTypeInt reports whether the element type is known to be int.
func (v *FixedArray) IsElementTypeInt() bool {
	return v.Ele != nil && v.Ele.Text == "int"
}

// GrowableArray is a growable array; its data lives in a backing fixed array
// whose length is the capacity.
type GrowableArray struct {
	valueBase
	Ele *dartrt.Type
}

func NewGrowableArray(ele *dartrt.Type) *GrowableArray {
	return &GrowableArray{valueBase{tid: TypeID(dartrt.GrowableObjectArrayCid)}, ele}
}

func (v *GrowableArray) String() string { return "GrowableArray" }

// LengthOffset returns the byte offset of the length slot.
func (v *GrowableArray) LengthOffset() int64 { return dartrt.GrowableArrayLengthOffset }

// DataOffset returns the byte offset of the backing-array slot.
func (v *GrowableArray) DataOffset() int64 { return dartrt.GrowableArrayDataOffset }

// ElementSize returns the in-object element slot size.
func (v *GrowableArray) ElementSize() int64 { return dartrt.CompressedWordSize }

// IsElementTypeInt reports whether the element type is known to be int.
func (v *GrowableArray) IsElementTypeInt() bool {
	return v.Ele != nil && v.Ele.Text == "int"
}

// UnlinkedCallSite references an unlinked call stub.
type UnlinkedCallSite struct {
	valueBase
	Stub *dartrt.Stub
}

func NewUnlinkedCallSite(stub *dartrt.Stub) *UnlinkedCallSite {
	return &UnlinkedCallSite{valueBase{tid: TypeID(dartrt.UnlinkedCallCid), known: true}, stub}
}

func (v *UnlinkedCallSite) String() string {
	return fmt.Sprintf("UnlinkedCall_%#x", v.Stub.Addr)
}

// Instance is an object instance of a known or unknown class.
type Instance struct {
	valueBase
	Class *dartrt.Class
}

func NewInstance(cls *dartrt.Class) *Instance {
	return &Instance{valueBase{tid: TypeID(dartrt.InstanceCid), known: cls != nil}, cls}
}

func (v *Instance) TypeID() TypeID {
	if v.Class == nil {
		return TypeID(dartrt.InstanceCid)
	}
	return TypeID(v.Class.ID)
}

func (v *Instance) String() string {
	if v.Class == nil {
		return "Instance_unknown"
	}
	return "Instance_" + v.Class.Name
}

// TypeValue wraps an instantiated type object.
type TypeValue struct {
	valueBase
	Type *dartrt.Type
}

func NewTypeValue(t *dartrt.Type) *TypeValue {
	return &TypeValue{valueBase{tid: TypeID(dartrt.TypeCid), known: true}, t}
}

func (v *TypeValue) String() string { return v.Type.String() }

// TypeParameterValue wraps a type-parameter object.
type TypeParameterValue struct {
	valueBase
	Param *dartrt.TypeParameter
}

func NewTypeParameterValue(p *dartrt.TypeParameter) *TypeParameterValue {
	return &TypeParameterValue{valueBase{tid: TypeID(dartrt.TypeParameterCid), known: true}, p}
}

func (v *TypeParameterValue) String() string { return v.Param.String() }

// FunctionTypeValue wraps a function-type object.
type FunctionTypeValue struct {
	valueBase
	FnType *dartrt.FunctionType
}

func NewFunctionTypeValue(t *dartrt.FunctionType) *FunctionTypeValue {
	return &FunctionTypeValue{valueBase{tid: TypeID(dartrt.FunctionTypeCid), known: true}, t}
}

func (v *FunctionTypeValue) String() string { return v.FnType.String() }

// TypeArgumentsValue wraps a type-argument vector.
type TypeArgumentsValue struct {
	valueBase
	Args *dartrt.TypeArguments
}

func NewTypeArgumentsValue(a *dartrt.TypeArguments) *TypeArgumentsValue {
	return &TypeArgumentsValue{valueBase{tid: TypeID(dartrt.TypeArgumentsCid), known: true}, a}
}

func (v *TypeArgumentsValue) String() string { return v.Args.String() }

// Sentinel marks an uninitialized runtime object.
type Sentinel struct{ valueBase }

func NewSentinel() *Sentinel {
	return &Sentinel{valueBase{tid: TypeID(dartrt.SentinelCid)}}
}

func (v *Sentinel) String() string { return "Sentinel" }

// SubtypeTestCacheValue is a subtype-test cache object.
type SubtypeTestCacheValue struct{ valueBase }

func NewSubtypeTestCacheValue() *SubtypeTestCacheValue {
	return &SubtypeTestCacheValue{valueBase{tid: TypeID(dartrt.SubtypeTestCacheCid)}}
}

func (v *SubtypeTestCacheValue) String() string { return "SubtypeTestCache" }

// ClassID is a class id held in a register, possibly still in tagged-smi
// form.
type ClassID struct {
	valueBase
	Cid   int64
	IsSmi bool
}

func NewClassID(cid int64, isSmi bool) *ClassID {
	return &ClassID{valueBase{tid: TypeID(dartrt.ClassCid), known: cid != 0}, cid, isSmi}
}

func NewUnknownClassID() *ClassID {
	return &ClassID{valueBase{tid: TypeID(dartrt.ClassCid)}, 0, false}
}

func (v *ClassID) String() string {
	if v.IsSmi {
		return fmt.Sprintf("TaggedCid_%d", v.Cid>>dartrt.SmiTagSize)
	}
	return fmt.Sprintf("cid_%d", v.Cid)
}

// Param is an incoming call parameter by index.
type Param struct {
	valueBase
	Index int
}

func NewParam(index int) *Param {
	return &Param{valueBase{tid: TypeParameter}, index}
}

func (v *Param) String() string { return fmt.Sprintf("param_%d", v.Index) }

// AsInteger narrows v to *Integer when its tag matches.
func AsInteger(v Value) (*Integer, bool) {
	i, ok := v.(*Integer)
	return i, ok
}

// AsParam narrows v to *Param when its tag matches.
func AsParam(v Value) (*Param, bool) {
	p, ok := v.(*Param)
	return p, ok
}

// SetSmiIfInt refines an integer value of unknown representation to the
// tagged small-integer form. Non-integer values are left alone.
func SetSmiIfInt(v Value) {
	if i, ok := AsInteger(v); ok && i.IntType == TypeID(dartrt.IntegerCid) {
		i.SetType(TypeID(dartrt.SmiCid))
	}
}
