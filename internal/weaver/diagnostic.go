package weaver

import "fmt"

// Severity classifies a diagnostic. The weave never fails; everything it
// reports is a warning and the result is always usable.
type Severity int

const (
	SeverityWarning Severity = iota
)

// NoLine marks a diagnostic that belongs to end-of-file rather than a line.
const NoLine = -1

// Diagnostic is one recorded markup problem, tagged with the opaque source
// identifier the weave was invoked with.
type Diagnostic struct {
	Severity Severity
	Source   string
	Message  string
	Line     int // zero-based, or NoLine
}

func regionAlreadyOpen(source, name string, line int) Diagnostic {
	return Diagnostic{
		Severity: SeverityWarning,
		Source:   source,
		Message:  fmt.Sprintf("region %q is already open", name),
		Line:     line,
	}
}

func regionNotOpen(source, name string, line int) Diagnostic {
	return Diagnostic{
		Severity: SeverityWarning,
		Source:   source,
		Message:  fmt.Sprintf("region %q is not open", name),
		Line:     line,
	}
}

func regionNeverClosed(source, name string) Diagnostic {
	return Diagnostic{
		Severity: SeverityWarning,
		Source:   source,
		Message:  fmt.Sprintf("region %q never closed", name),
		Line:     NoLine,
	}
}
