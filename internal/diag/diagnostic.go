package diag

import (
	"fmt"

	"dartlift/internal/il"
)

// Note is secondary context attached to a diagnostic, anchored at another
// address range of the same binary.
type Note struct {
	Addr il.AddrRange
	Msg  string
}

// Diagnostic is one finding against a native address range.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Addr     il.AddrRange
	Notes    []Note
}

func (d *Diagnostic) String() string {
	return fmt.Sprintf("%s %s %s: %s", d.Severity, d.Code, d.Addr, d.Message)
}

// WithNote returns d with an extra note appended.
func (d Diagnostic) WithNote(addr il.AddrRange, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Addr: addr, Msg: msg})
	return d
}
