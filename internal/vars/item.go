package vars

import (
	"dartlift/internal/arm64"
	"dartlift/internal/dartrt"
)

// Item binds one storage location to the abstract value it currently holds.
// An Item exclusively owns its value: MoveTo and TakeValue transfer that
// ownership and leave the source consumed. Rendering an item that never had
// a value assigned produces a visible defect marker instead of failing, so a
// partial dump stays inspectable.
type Item struct {
	Storage Storage
	val     Value
}

// NoValueMarker is rendered when a binding's value is read before one was
// assigned. Its presence in output is a lifting defect to investigate, not a
// fatal condition.
const NoValueMarker = "BUG_NO_ASSIGN_VALUE"

func NewItem(storage Storage, val Value) *Item {
	return &Item{Storage: storage, val: val}
}

// NewRegItem binds a value to register storage.
func NewRegItem(reg arm64.Register, val Value) *Item {
	return &Item{Storage: NewRegister(reg), val: val}
}

// NewUninitItem is a binding with neither storage nor value assigned.
func NewUninitItem() *Item {
	return &Item{Storage: NewUninit()}
}

// HasValue reports whether a value is currently assigned. Callers must check
// this before Value on bindings that may have been consumed.
func (it *Item) HasValue() bool { return it.val != nil }

// Value returns the owned value, nil if none is assigned.
func (it *Item) Value() Value { return it.val }

// TakeValue transfers the owned value out, leaving the item consumed.
func (it *Item) TakeValue() Value {
	v := it.val
	it.val = nil
	return v
}

// MoveTo relocates the binding to new storage, transferring value ownership.
// The receiver is consumed and must not be read again.
func (it *Item) MoveTo(storage Storage) *Item {
	return &Item{Storage: storage, val: it.TakeValue()}
}

// MoveToReg relocates the binding into a register.
func (it *Item) MoveToReg(reg arm64.Register) *Item {
	return it.MoveTo(NewRegister(reg))
}

// StorageName renders the storage location.
func (it *Item) StorageName() string { return it.Storage.Name() }

// ValueString renders the owned value, or the defect marker when none is
// assigned.
func (it *Item) ValueString() string {
	if it.val == nil {
		return NoValueMarker
	}
	return it.val.String()
}

// ValueTypeID returns the raw type tag of the owned value, IllegalCid when
// none is assigned.
func (it *Item) ValueTypeID() TypeID {
	if it.val == nil {
		return TypeID(dartrt.IllegalCid)
	}
	return it.val.RawTypeID()
}

// Name renders the item: the value when it is statically known, the storage
// location otherwise.
func (it *Item) Name() string {
	if it.val != nil && it.val.HasValue() {
		return it.val.String()
	}
	return it.Storage.Name()
}

// CallArgName renders the item as a call argument: predefined values render
// as themselves, everything else by location.
func (it *Item) CallArgName() string {
	if it.Storage.IsPredefined() && it.val != nil {
		return it.ValueString()
	}
	return it.Storage.Name()
}
