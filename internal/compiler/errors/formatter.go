package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// FormatError renders e over several lines: a header with the code and the
// schema position, then the message prefixed by the type and field it is
// about, then any expected/actual pair, hint and fixes.
func FormatError(e *CompilerError) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s[%s] %s", e.Severity, e.Code, categoryDisplayName(e.Category))
	if pos := e.Position(); pos != "" {
		fmt.Fprintf(&b, " at %s", pos)
	}
	b.WriteString("\n")

	if target := e.Target(); target != "" {
		fmt.Fprintf(&b, "  %s: %s\n", target, e.Message)
	} else {
		fmt.Fprintf(&b, "  %s\n", e.Message)
	}
	if e.Expected != "" {
		fmt.Fprintf(&b, "  expected: %s\n", e.Expected)
	}
	if e.Actual != "" {
		fmt.Fprintf(&b, "  actual:   %s\n", e.Actual)
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "  hint: %s\n", e.Suggestion)
	}
	for _, example := range e.Examples {
		fmt.Fprintf(&b, "    %s\n", example)
	}
	if e.Documentation != "" {
		fmt.Fprintf(&b, "  see %s\n", e.Documentation)
	}
	return b.String()
}

// FormatErrorList renders every diagnostic after a count summary.
func FormatErrorList(errors ErrorList) string {
	if len(errors) == 0 {
		return "no errors"
	}

	var b strings.Builder
	errCount, warnCount, infoCount := errors.ErrorCount()
	fmt.Fprintf(&b, "%d error(s), %d warning(s), %d info\n", errCount, warnCount, infoCount)
	for _, err := range errors {
		b.WriteString("\n")
		b.WriteString(err.Format())
	}
	return b.String()
}

// FormatCompact renders e on one line, in the file:line: form editors link.
func FormatCompact(e *CompilerError) string {
	var b strings.Builder
	if pos := e.Position(); pos != "" {
		b.WriteString(pos)
		b.WriteString(": ")
	}
	fmt.Fprintf(&b, "%s %s: ", e.Severity, e.Code)
	if target := e.Target(); target != "" {
		b.WriteString(target)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	return b.String()
}

// Compact renders err on one line. Diagnostics are rendered with
// FormatCompact and joined with "; "; other errors use their message.
func Compact(err error) string {
	if err == nil {
		return ""
	}
	var list ErrorList
	if stderrors.As(err, &list) {
		parts := make([]string, len(list))
		for i, e := range list {
			parts[i] = FormatCompact(e)
		}
		return strings.Join(parts, "; ")
	}
	var cerr *CompilerError
	if stderrors.As(err, &cerr) {
		return FormatCompact(cerr)
	}
	return err.Error()
}

func categoryDisplayName(category ErrorCategory) string {
	switch category {
	case CategoryResolution:
		return "resolution error"
	case CategoryModel:
		return "model error"
	case CategoryCodeGen:
		return "code generation error"
	default:
		return "parcelgen error"
	}
}
