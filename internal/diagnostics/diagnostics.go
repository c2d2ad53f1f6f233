// Package diagnostics defines the positioned, coded messages produced by the
// compilation pipeline. Stages construct diagnostics through NewError and
// NewWarning; presentation (color, carets, ordering on screen) is the
// driver's concern.
package diagnostics

import (
	"fmt"
	"sort"

	"github.com/linuskmr/fortytwo-lang/internal/token"
)

// Severity ranks a diagnostic. Errors block backend handoff, warnings never
// do.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// Diagnostic is a single compiler message tied to the token it was raised at.
// It implements error.
type Diagnostic struct {
	Code     ErrorCode
	Severity Severity
	Token    token.Token
	Message  string
}

// NewError builds an error diagnostic for code at tok. args fill the code's
// message format.
func NewError(code ErrorCode, tok token.Token, args ...interface{}) *Diagnostic {
	return &Diagnostic{
		Code:     code,
		Severity: SeverityError,
		Token:    tok,
		Message:  formatMessage(code, args...),
	}
}

// NewWarning builds a warning diagnostic for code at tok.
func NewWarning(code ErrorCode, tok token.Token, args ...interface{}) *Diagnostic {
	return &Diagnostic{
		Code:     code,
		Severity: SeverityWarning,
		Token:    tok,
		Message:  formatMessage(code, args...),
	}
}

func formatMessage(code ErrorCode, args ...interface{}) string {
	format, ok := messages[code]
	if !ok {
		return fmt.Sprintf("unknown diagnostic %s", code)
	}
	return fmt.Sprintf(format, args...)
}

// Stage names the pipeline stage that owns this diagnostic's code family.
func (d *Diagnostic) Stage() string {
	if len(d.Code) == 0 {
		return "unknown"
	}
	if name, ok := stageNames[d.Code[0]]; ok {
		return name
	}
	return "unknown"
}

// Error renders the diagnostic as "line:col: severity[code]: message".
func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%d:%d: %s[%s]: %s", d.Token.Line, d.Token.Column, d.Severity, d.Code, d.Message)
}

// Sort orders diagnostics by source position, stable so that messages raised
// at the same token keep their emission order.
func Sort(diags []*Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		if diags[i].Token.Line != diags[j].Token.Line {
			return diags[i].Token.Line < diags[j].Token.Line
		}
		return diags[i].Token.Column < diags[j].Token.Column
	})
}

// HasErrors reports whether any diagnostic in diags has error severity.
func HasErrors(diags []*Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}
