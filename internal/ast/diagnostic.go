package ast

// Severity mirrors the LSP diagnostic severities.
type Severity int

const (
	SeverityError Severity = iota + 1
	SeverityWarning
	SeverityInformation
	SeverityHint
)

// Diagnostic is a problem found in a source file.
type Diagnostic struct {
	Span     Span
	Severity Severity
	Message  string
	Source   string
}
