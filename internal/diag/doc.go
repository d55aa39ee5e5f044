// Package diag defines the diagnostic model for the lifting pipeline.
//
// A Diagnostic records one finding against a native address range of the
// analyzed binary: an instruction window the lifter had to leave opaque, a
// metadata lookup that missed, a binding read without an assigned value.
// Severity is tri-level (Info, Warning, Error); Code gives each finding a
// stable numeric identity for filtering and tests.
//
// Producers emit through a Reporter so they stay decoupled from storage.
// BagReporter aggregates into a Bag, which supports sorting, deduplication
// and an error/warning census. DedupReporter suppresses repeats, which
// matters when the same unmapped thread offset is hit on every call site.
//
// Lifting is best-effort: diagnostics mark gaps in the rendered output,
// they never abort a pass.
package diag
