package diag

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	// SevInfo is an informational message.
	SevInfo Severity = iota
	// SevWarning does not fail the compilation.
	SevWarning
	// SevError fails the compilation.
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "info"
	case SevWarning:
		return "warning"
	case SevError:
		return "error"
	default:
		return "unknown"
	}
}
