package diag

// Severity ranks how much a diagnostic compromises the lifted output.
// Bag.Sort orders same-address diagnostics by descending severity, so the
// numeric order matters.
type Severity uint8

const (
	// SevInfo marks context that needs no action (an unresolved call target
	// outside the function table, for example).
	SevInfo Severity = iota
	// SevWarning marks a gap in the reconstruction: the listing is complete
	// but some window or operand rendered as a placeholder.
	SevWarning
	// SevError marks a violated structural invariant; the affected window is
	// opaque in the listing.
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}
