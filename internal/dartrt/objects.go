package dartrt

import "fmt"

// Metadata objects extracted from the runtime snapshot. They carry only what
// rendering needs: names, owners, offsets and addresses. The snapshot store
// builds them once; everything downstream holds shared pointers.

// Class describes one entry of the class table.
type Class struct {
	ID           ClassID
	Name         string
	SuperID      ClassID
	InstanceSize int32
	// TypeArgsOffset is the byte offset of the type-arguments slot inside an
	// instance, or -1 when the class is not generic.
	TypeArgsOffset int32
}

func (c *Class) String() string {
	if c == nil {
		return "Class_unknown"
	}
	return c.Name
}

// Field describes an instance or static field.
type Field struct {
	Name     string
	Owner    *Class
	Offset   int64
	IsStatic bool
}

// FullName returns the owner-qualified field name.
func (f *Field) FullName() string {
	if f.Owner == nil {
		return f.Name
	}
	return f.Owner.Name + "::" + f.Name
}

func (f *Field) String() string { return f.FullName() }

// Function describes a compiled function: its qualified name and the native
// address range its instructions occupy.
type Function struct {
	Name  string
	Owner *Class
	Addr  uint64
	Size  uint32
}

// FullName returns the owner-qualified function name.
func (f *Function) FullName() string {
	if f.Owner == nil {
		return f.Name
	}
	return f.Owner.Name + "::" + f.Name
}

func (f *Function) String() string { return f.FullName() }

// Stub describes a VM stub routine referenced from the object pool.
type Stub struct {
	Name string
	Addr uint64
}

func (s *Stub) String() string {
	if s.Name != "" {
		return s.Name
	}
	return fmt.Sprintf("stub_%#x", s.Addr)
}

// The type-system display objects below wrap the rendered form produced by
// the snapshot service. The lifter never inspects their structure, it only
// re-renders them, so a display string is the whole contract.

// Type is an instantiated type.
type Type struct{ Text string }

func (t *Type) String() string {
	if t == nil || t.Text == "" {
		return "dynamic"
	}
	return t.Text
}

// TypeParameter is a reference to a type parameter of a generic class or
// function.
type TypeParameter struct{ Text string }

func (t *TypeParameter) String() string {
	if t == nil || t.Text == "" {
		return "X?"
	}
	return t.Text
}

// FunctionType is a function signature type.
type FunctionType struct{ Text string }

func (t *FunctionType) String() string {
	if t == nil || t.Text == "" {
		return "Function"
	}
	return t.Text
}

// TypeArguments is a type-argument vector.
type TypeArguments struct{ Text string }

func (t *TypeArguments) String() string {
	if t == nil || t.Text == "" {
		return "<?>"
	}
	return t.Text
}
