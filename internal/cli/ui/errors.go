package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	cerrors "github.com/conduit-lang/parcelgen/internal/compiler/errors"
)

// ErrorLevel represents the severity of an error message
type ErrorLevel int

const (
	ErrorLevelError ErrorLevel = iota
	ErrorLevelWarning
	ErrorLevelInfo
)

// ErrorOptions configures the error message formatting
type ErrorOptions struct {
	Level        ErrorLevel
	Context      string
	Problem      string
	Location     string
	Details      []string
	Suggestions  []string
	Hint         string
	HelpCommands []string
	NoColor      bool
}

func paint(noColor bool, attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if noColor {
		c.DisableColor()
	}
	return c
}

// FormatError creates a standardized message with suggestions and help commands
//
// Example output:
//
//	❌ PRC100: Cannot resolve an adapter for field tags of com.example.User
//	   schema/user.yaml:12
//
//	   Actual: unresolved type: util.Deque<lang.String>
//
//	   💡 Declare an adapter for util.Deque
//
//	   → See registered adapters: parcelgen adapters
func FormatError(opts ErrorOptions) string {
	var b strings.Builder

	var headerColor, bodyColor *color.Color
	var symbol string

	switch opts.Level {
	case ErrorLevelError:
		headerColor = paint(opts.NoColor, color.FgRed, color.Bold)
		bodyColor = paint(opts.NoColor, color.FgRed)
		symbol = "❌"
	case ErrorLevelWarning:
		headerColor = paint(opts.NoColor, color.FgYellow, color.Bold)
		bodyColor = paint(opts.NoColor, color.FgYellow)
		symbol = "⚠️"
	default:
		headerColor = paint(opts.NoColor, color.FgCyan, color.Bold)
		bodyColor = paint(opts.NoColor, color.FgCyan)
		symbol = "ℹ️"
	}

	if opts.Context != "" {
		headerColor.Fprintf(&b, "%s %s: %s\n", symbol, opts.Context, opts.Problem)
	} else {
		headerColor.Fprintf(&b, "%s %s\n", symbol, opts.Problem)
	}

	if opts.Location != "" {
		paint(opts.NoColor, color.FgHiBlack).Fprintf(&b, "   %s\n", opts.Location)
	}

	if len(opts.Details) > 0 {
		b.WriteString("\n")
		for _, d := range opts.Details {
			bodyColor.Fprintf(&b, "   %s\n", d)
		}
	}

	if len(opts.Suggestions) > 0 {
		b.WriteString("\n")
		paint(opts.NoColor, color.FgYellow).Fprintf(&b, "   Did you mean: %s?\n", strings.Join(opts.Suggestions, ", "))
	}

	if opts.Hint != "" {
		b.WriteString("\n")
		paint(opts.NoColor, color.FgGreen).Fprintf(&b, "   💡 %s\n", opts.Hint)
	}

	if len(opts.HelpCommands) > 0 {
		b.WriteString("\n")
		cyan := paint(opts.NoColor, color.FgCyan)
		for _, cmd := range opts.HelpCommands {
			cyan.Fprintf(&b, "   → %s\n", cmd)
		}
	}

	return b.String()
}

// WriteError writes a formatted error message to the writer
func WriteError(w io.Writer, opts ErrorOptions) {
	fmt.Fprint(w, FormatError(opts))
}

func levelOf(s cerrors.ErrorSeverity) ErrorLevel {
	switch s {
	case cerrors.SeverityWarning:
		return ErrorLevelWarning
	case cerrors.SeverityInfo:
		return ErrorLevelInfo
	default:
		return ErrorLevelError
	}
}

// FormatDiagnostic renders one compiler diagnostic.
func FormatDiagnostic(e *cerrors.CompilerError, noColor bool) string {
	opts := ErrorOptions{
		Level:   levelOf(e.Severity),
		Context: string(e.Code),
		Problem: e.Message,
		Hint:    e.Suggestion,
		NoColor: noColor,
	}
	if target := e.Target(); target != "" {
		opts.Problem = target + ": " + e.Message
	}
	switch {
	case e.File != "" && e.Location.Line > 0:
		opts.Location = fmt.Sprintf("%s:%d", e.File, e.Location.Line)
	case e.File != "":
		opts.Location = e.File
	}
	if e.Expected != "" {
		opts.Details = append(opts.Details, "Expected: "+e.Expected)
	}
	if e.Actual != "" {
		opts.Details = append(opts.Details, "Actual:   "+e.Actual)
	}
	switch e.Category {
	case cerrors.CategoryResolution:
		opts.HelpCommands = []string{"See registered adapters: parcelgen adapters"}
	case cerrors.CategoryModel:
		opts.HelpCommands = []string{"Inspect field strategies: parcelgen plan --format text"}
	}
	return FormatError(opts)
}

// WriteDiagnostics writes every diagnostic followed by a summary line. It
// writes nothing for an empty list.
func WriteDiagnostics(w io.Writer, list cerrors.ErrorList, noColor bool) {
	if len(list) == 0 {
		return
	}
	for _, e := range list {
		fmt.Fprintln(w, FormatDiagnostic(e, noColor))
	}
	errs, warnings, infos := list.ErrorCount()
	summary := fmt.Sprintf("%d error(s), %d warning(s), %d info", errs, warnings, infos)
	if errs > 0 {
		paint(noColor, color.FgRed, color.Bold).Fprintln(w, summary)
	} else {
		paint(noColor, color.FgYellow).Fprintln(w, summary)
	}
}

// FormatSuccess creates a success message
func FormatSuccess(message string, noColor bool) string {
	return paint(noColor, color.FgGreen, color.Bold).Sprintf("✓ %s", message)
}

// WriteSuccess writes a success message to the writer
func WriteSuccess(w io.Writer, message string, noColor bool) {
	fmt.Fprintln(w, FormatSuccess(message, noColor))
}

// TypeNotFoundError creates a standardized type not found error
func TypeNotFoundError(typeName string, suggestions []string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:       ErrorLevelError,
		Context:     "TYPE NOT FOUND",
		Problem:     fmt.Sprintf("No parcel type '%s' in the loaded schemas.", typeName),
		Suggestions: suggestions,
		HelpCommands: []string{
			"See all planned types: parcelgen plan --format text",
		},
		NoColor: noColor,
	})
}

// ConfigError creates a standardized configuration error
func ConfigError(message string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:   ErrorLevelError,
		Context: "CONFIGURATION ERROR",
		Problem: message,
		HelpCommands: []string{
			"Create a config: parcelgen init",
			"Get help: parcelgen --help",
		},
		NoColor: noColor,
	})
}

// Warning creates a standardized warning message
func Warning(message string, noColor bool) string {
	return FormatError(ErrorOptions{Level: ErrorLevelWarning, Problem: message, NoColor: noColor})
}

// Info creates a standardized info message
func Info(message string, noColor bool) string {
	return FormatError(ErrorOptions{Level: ErrorLevelInfo, Problem: message, NoColor: noColor})
}
