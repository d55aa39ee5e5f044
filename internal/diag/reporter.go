package diag

import "dartlift/internal/il"

// Reporter is the minimal contract for receiving diagnostics from lifting
// phases. Implementations: BagReporter (collects into a Bag), NopReporter,
// DedupReporter (suppresses repeats).
type Reporter interface {
	Report(code Code, sev Severity, addr il.AddrRange, msg string, notes []Note)
}

// BagReporter stores every reported diagnostic in a Bag.
type BagReporter struct {
	Bag *Bag
}

func NewBagReporter(bag *Bag) *BagReporter {
	return &BagReporter{Bag: bag}
}

func (r *BagReporter) Report(code Code, sev Severity, addr il.AddrRange, msg string, notes []Note) {
	if r == nil || r.Bag == nil {
		return
	}
	r.Bag.Add(Diagnostic{
		Severity: sev,
		Code:     code,
		Message:  msg,
		Addr:     addr,
		Notes:    notes,
	})
}

// NopReporter drops everything.
type NopReporter struct{}

func (NopReporter) Report(Code, Severity, il.AddrRange, string, []Note) {}

// ReportError is a shortcut for SevError diagnostics without notes.
func ReportError(r Reporter, code Code, addr il.AddrRange, msg string) {
	if r != nil {
		r.Report(code, SevError, addr, msg, nil)
	}
}

// ReportWarning is a shortcut for SevWarning diagnostics without notes.
func ReportWarning(r Reporter, code Code, addr il.AddrRange, msg string) {
	if r != nil {
		r.Report(code, SevWarning, addr, msg, nil)
	}
}

// ReportInfo is a shortcut for SevInfo diagnostics without notes.
func ReportInfo(r Reporter, code Code, addr il.AddrRange, msg string) {
	if r != nil {
		r.Report(code, SevInfo, addr, msg, nil)
	}
}
