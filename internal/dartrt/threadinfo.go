package dartrt

import (
	"sync"
	"sync/atomic"
)

// ThreadInfo maps fixed offsets inside the per-thread runtime context to the
// semantic fields and entry points they hold. Generated code reads these
// slots directly (ldr xN, [THR, #offset]); rendering a lifted instruction
// resolves the offset back to a name through this registry.
//
// A ThreadInfo is immutable after construction. Lookups are comma-ok: an
// unmapped offset yields an absent result, never a silently inserted default.
type ThreadInfo struct {
	names   map[int64]string
	offsets map[string]int64
	leaf    map[int64]LeafFunc
	max     int64
}

// LeafFunc is the signature of a leaf runtime entry point: a helper called
// directly from generated code without a full frame.
type LeafFunc struct {
	ReturnType string
	Params     string
}

type threadEntry struct {
	offset int64
	name   string
}

type leafEntry struct {
	offset int64
	name   string
	fn     LeafFunc
}

// Direct thread fields and cached stub entry points for the runtime revision
// covered by DefaultProfile. A profile override replaces offsets by name.
var builtinFields = []threadEntry{
	{40, "write_barrier_mask"},
	{48, "heap_base"},
	{56, "stack_limit"},
	{64, "saved_stack_limit"},
	{72, "stack_overflow_flags"},
	{80, "top"},
	{88, "end"},
	{96, "safepoint_state"},
	{104, "exit_through_ffi"},
	{112, "api_top_scope"},
	{120, "isolate"},
	{128, "isolate_group"},
	{136, "field_table_values"},
	{144, "dart_stream"},
	{152, "store_buffer_block"},
	{160, "marking_stack_block"},
	{168, "top_exit_frame_info"},
	{176, "vm_tag"},
	{184, "global_object_pool"},
	{192, "dispatch_table_array"},
	{200, "active_exception"},
	{208, "active_stacktrace"},
	{216, "resume_pc"},
	{224, "execution_state"},
	{232, "saved_shadow_call_stack"},
	{240, "write_barrier_entry_point"},
	{248, "AllocateMint"},
	{256, "AllocateObject"},
	{264, "AllocateArray"},
	{272, "StackOverflow"},
	{280, "CloneContext"},
	{288, "ReThrow"},
	{296, "InitLateStaticField"},
	{304, "InitLateFinalStaticField"},
	{312, "SubtypeCheck"},
}

var builtinLeaf = []leafEntry{
	{320, "DeoptimizeCopyFrame", LeafFunc{"intptr_t", "uword, uword"}},
	{328, "EnsureRememberedAndMarkingDeferred", LeafFunc{"uword", "uword, Thread*"}},
	{336, "StoreBufferBlockProcess", LeafFunc{"void", "Thread*"}},
	{344, "MarkingStackBlockProcess", LeafFunc{"void", "Thread*"}},
	{352, "LibcPow", LeafFunc{"double", "double, double"}},
	{360, "LibcSin", LeafFunc{"double", "double"}},
	{368, "LibcCos", LeafFunc{"double", "double"}},
	{376, "LibcTan", LeafFunc{"double", "double"}},
	{384, "LibcAsin", LeafFunc{"double", "double"}},
	{392, "LibcAcos", LeafFunc{"double", "double"}},
	{400, "LibcAtan", LeafFunc{"double", "double"}},
	{408, "LibcAtan2", LeafFunc{"double", "double, double"}},
	{416, "LibcExp", LeafFunc{"double", "double"}},
	{424, "LibcLog", LeafFunc{"double", "double"}},
}

var (
	defaultOnce   sync.Once
	defaultInfo   *ThreadInfo
	defaultBuilds atomic.Int32
)

// Default returns the process-wide registry for the builtin profile. The
// first call from any goroutine populates it; later calls reuse the same
// tables.
func Default() *ThreadInfo {
	defaultOnce.Do(func() {
		defaultBuilds.Add(1)
		defaultInfo = New(nil)
	})
	return defaultInfo
}

// New builds a registry from the builtin tables, with offsets renamed per the
// profile's [thread] overrides when one is given.
func New(p *Profile) *ThreadInfo {
	t := &ThreadInfo{
		names:   make(map[int64]string, len(builtinFields)+len(builtinLeaf)),
		offsets: make(map[string]int64, len(builtinFields)+len(builtinLeaf)),
		leaf:    make(map[int64]LeafFunc, len(builtinLeaf)),
	}
	override := map[string]int64{}
	if p != nil {
		override = p.Thread
	}
	add := func(offset int64, name string) int64 {
		if o, ok := override[name]; ok {
			offset = o
		}
		t.names[offset] = name
		t.offsets[name] = offset
		if offset > t.max {
			t.max = offset
		}
		return offset
	}
	for _, e := range builtinFields {
		add(e.offset, e.name)
	}
	for _, e := range builtinLeaf {
		off := add(e.offset, e.name)
		t.leaf[off] = e.fn
	}
	return t
}

// FieldName resolves a thread offset to its semantic name.
func (t *ThreadInfo) FieldName(offset int64) (string, bool) {
	name, ok := t.names[offset]
	return name, ok
}

// OffsetOf is the reverse lookup: the offset a named field lives at.
func (t *ThreadInfo) OffsetOf(name string) (int64, bool) {
	off, ok := t.offsets[name]
	return off, ok
}

// LeafFunction resolves a thread offset to a leaf entry-point signature.
// Offsets that name plain fields or non-leaf entry points are absent here.
func (t *ThreadInfo) LeafFunction(offset int64) (LeafFunc, bool) {
	fn, ok := t.leaf[offset]
	return fn, ok
}

// MaxOffset returns the largest mapped offset.
func (t *ThreadInfo) MaxOffset() int64 { return t.max }

// Offsets returns a copy of the offset-to-name table.
func (t *ThreadInfo) Offsets() map[int64]string {
	m := make(map[int64]string, len(t.names))
	for k, v := range t.names {
		m[k] = v
	}
	return m
}
