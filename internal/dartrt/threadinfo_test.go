package dartrt

import (
	"sync"
	"testing"
)

func TestThreadInfo_Lookups(t *testing.T) {
	info := New(nil)

	off, ok := info.OffsetOf("stack_limit")
	if !ok || off != 56 {
		t.Fatalf("OffsetOf(stack_limit) = (%d, %v), want (56, true)", off, ok)
	}
	name, ok := info.FieldName(56)
	if !ok || name != "stack_limit" {
		t.Fatalf("FieldName(56) = (%q, %v)", name, ok)
	}

	// Unmapped offsets come back absent, never a default.
	if name, ok := info.FieldName(0x7ff8); ok {
		t.Errorf("FieldName(0x7ff8) = %q, want absent", name)
	}
	if off, ok := info.OffsetOf("no_such_field"); ok {
		t.Errorf("OffsetOf(no_such_field) = %d, want absent", off)
	}
}

func TestThreadInfo_LeafLookups(t *testing.T) {
	info := New(nil)

	fn, ok := info.LeafFunction(352)
	if !ok {
		t.Fatal("LeafFunction(352) absent, want LibcPow")
	}
	if fn.ReturnType != "double" || fn.Params != "double, double" {
		t.Errorf("LibcPow signature = %q (%q)", fn.ReturnType, fn.Params)
	}

	// Plain fields and non-leaf entry points are not leaf functions.
	if _, ok := info.LeafFunction(56); ok {
		t.Error("stack_limit resolved as a leaf function")
	}
	if _, ok := info.LeafFunction(256); ok {
		t.Error("AllocateObject stub resolved as a leaf function")
	}
}

func TestThreadInfo_MaxOffset(t *testing.T) {
	info := New(nil)
	if got := info.MaxOffset(); got != 424 {
		t.Errorf("MaxOffset() = %d, want 424", got)
	}
}

func TestThreadInfo_OffsetsIsACopy(t *testing.T) {
	info := New(nil)
	m := info.Offsets()
	m[56] = "clobbered"
	if name, _ := info.FieldName(56); name != "stack_limit" {
		t.Error("mutating the Offsets copy changed the registry")
	}
}

func TestThreadInfo_ProfileOverride(t *testing.T) {
	p := DefaultProfile()
	p.Thread["stack_limit"] = 72

	info := New(p)
	if off, _ := info.OffsetOf("stack_limit"); off != 72 {
		t.Errorf("overridden OffsetOf(stack_limit) = %d, want 72", off)
	}
	if name, ok := info.FieldName(72); !ok || name != "stack_limit" {
		t.Errorf("FieldName(72) = (%q, %v)", name, ok)
	}

	// The builtin tables stay untouched for fresh registries.
	fresh := New(nil)
	if off, _ := fresh.OffsetOf("stack_limit"); off != 56 {
		t.Errorf("fresh OffsetOf(stack_limit) = %d, want 56", off)
	}
}

func TestDefault_BuildsOnce(t *testing.T) {
	const goroutines = 16
	results := make([]*ThreadInfo, goroutines)

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = Default()
		}(i)
	}
	wg.Wait()

	for i := 1; i < goroutines; i++ {
		if results[i] != results[0] {
			t.Fatal("Default() returned distinct registries")
		}
	}
	if builds := defaultBuilds.Load(); builds != 1 {
		t.Errorf("default registry built %d times, want 1", builds)
	}
}
