package diag

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
)

// Severity ranks a soft anomaly.
type Severity uint8

const (
	SeverityDebug Severity = iota
	SeverityWarning
	SeverityError // hard failure confined to one item or resource
)

// String returns the severity name.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return fmt.Sprintf("severity(%d)", uint8(s))
	}
}

// Diagnostic is an unexpected but structurally parseable value observed during decoding.
type Diagnostic struct {
	Severity Severity
	Scope    string // e.g. "uix", "item[3]", "resource[0]"
	Msg      string
	Position int64 // absolute stream position, -1 when not applicable
}

func (d Diagnostic) String() string {
	if d.Position >= 0 {
		return fmt.Sprintf("%s: %s: %s (at 0x%X)", d.Severity, d.Scope, d.Msg, d.Position)
	}
	return fmt.Sprintf("%s: %s: %s", d.Severity, d.Scope, d.Msg)
}

// List collects diagnostics in the order they were raised.
type List []Diagnostic

// Warnf appends a warning.
func (l *List) Warnf(scope string, pos int64, format string, args ...any) {
	*l = append(*l, Diagnostic{Severity: SeverityWarning, Scope: scope, Msg: fmt.Sprintf(format, args...), Position: pos})
}

// Debugf appends a debug note.
func (l *List) Debugf(scope string, pos int64, format string, args ...any) {
	*l = append(*l, Diagnostic{Severity: SeverityDebug, Scope: scope, Msg: fmt.Sprintf(format, args...), Position: pos})
}

// Fail appends an error-severity entry for a hard failure that was contained.
func (l *List) Fail(scope string, pos int64, err error) {
	*l = append(*l, Diagnostic{Severity: SeverityError, Scope: scope, Msg: err.Error(), Position: pos})
}

// Append adds entries from another list, rescoping those without a scope.
func (l *List) Append(scope string, other []Diagnostic) {
	for _, d := range other {
		if d.Scope == "" {
			d.Scope = scope
		}
		*l = append(*l, d)
	}
}

// Warnings returns the number of warning or error entries.
func (l List) Warnings() int {
	n := 0
	for _, d := range l {
		if d.Severity >= SeverityWarning {
			n++
		}
	}
	return n
}

// Log writes every entry to logger at the matching level.
func (l List) Log(logger hclog.Logger) {
	if logger == nil {
		return
	}
	for _, d := range l {
		args := []any{"scope", d.Scope}
		if d.Position >= 0 {
			args = append(args, "position", fmt.Sprintf("0x%X", d.Position))
		}
		switch d.Severity {
		case SeverityDebug:
			logger.Debug(d.Msg, args...)
		case SeverityWarning:
			logger.Warn(d.Msg, args...)
		default:
			logger.Error(d.Msg, args...)
		}
	}
}
