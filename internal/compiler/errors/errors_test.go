package errors

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
)

func TestErrorCodeUniqueness(t *testing.T) {
	codes := make(map[ErrorCode]string)

	groups := map[string][]ErrorCode{
		"resolution": {ErrUnresolvedType, ErrAmbiguousAdapter, ErrCyclicDependency, ErrInvalidAdapter},
		"model":      {ErrNonReadableField, ErrNonWritableFields, ErrInvalidSchema, ErrUnknownType, ErrReflectAccess},
		"codegen":    {ErrCodeGenFailed, ErrMissingGoType},
	}

	for group, list := range groups {
		for _, code := range list {
			if prev, exists := codes[code]; exists {
				t.Errorf("Duplicate error code %s (previously used for %s)", code, prev)
			}
			codes[code] = group
			if !strings.HasPrefix(string(code), "PRC") {
				t.Errorf("Error code %s should use the PRC prefix", code)
			}
		}
	}
}

func TestErrorJSONSerialization(t *testing.T) {
	loc := Location{Line: 10, Column: 5}
	err := NewUnresolvedType(loc, "com.example.Tree", "children", "util.List<com.example.Node>", "no adapter for com.example.Node")

	data, jsonErr := json.Marshal(err)
	if jsonErr != nil {
		t.Fatalf("Failed to serialize error to JSON: %v", jsonErr)
	}

	var parsed CompilerError
	if unmarshalErr := json.Unmarshal(data, &parsed); unmarshalErr != nil {
		t.Fatalf("Failed to parse error JSON: %v", unmarshalErr)
	}

	if parsed.Code != ErrUnresolvedType {
		t.Errorf("Expected code %s, got %s", ErrUnresolvedType, parsed.Code)
	}
	if parsed.Type != "unresolved_type" {
		t.Errorf("Expected type 'unresolved_type', got '%s'", parsed.Type)
	}
	if parsed.Category != CategoryResolution {
		t.Errorf("Expected category %s, got %s", CategoryResolution, parsed.Category)
	}
	if parsed.Location.Line != 10 || parsed.Location.Column != 5 {
		t.Errorf("Expected location 10:5, got %d:%d", parsed.Location.Line, parsed.Location.Column)
	}
	if parsed.Subject != "com.example.Tree" {
		t.Errorf("Expected subject to be the owning type, got '%s'", parsed.Subject)
	}
	if parsed.Field != "children" {
		t.Errorf("Expected field 'children', got '%s'", parsed.Field)
	}
	if !strings.Contains(parsed.Message, "util.List<com.example.Node>") {
		t.Errorf("Expected message to name the type, got '%s'", parsed.Message)
	}
	if parsed.Actual != "no adapter for com.example.Node" {
		t.Errorf("Expected reason as actual, got '%s'", parsed.Actual)
	}
}

func TestErrorListJSONSerialization(t *testing.T) {
	errors := ErrorList{
		NewNonReadableField(Location{Line: 5, Column: 10}, "com.example.Point", "x"),
		NewUnknownType(Location{Line: 12, Column: 3}, "com.example.Missing"),
	}

	data, jsonErr := json.Marshal(errors)
	if jsonErr != nil {
		t.Fatalf("Failed to serialize error list to JSON: %v", jsonErr)
	}

	var parsed ErrorList
	if unmarshalErr := json.Unmarshal(data, &parsed); unmarshalErr != nil {
		t.Fatalf("Failed to parse error list JSON: %v", unmarshalErr)
	}

	if len(parsed) != 2 {
		t.Fatalf("Expected 2 errors, got %d", len(parsed))
	}
}

func TestErrorFormatting(t *testing.T) {
	err := NewNonReadableField(Location{Line: 10, Column: 5}, "com.example.Point", "x").
		WithFile("models.yaml")

	formatted := err.Format()

	for _, want := range []string{
		"error[PRC200] model error at models.yaml:10:5\n",
		"  com.example.Point.x: field cannot be read\n",
		"  hint: Make the field visible or add a getter\n",
		"    func (x *Point) X() ...\n",
		"  see https://docs.conduit-lang.org/parcelgen/errors/PRC200\n",
	} {
		if !strings.Contains(formatted, want) {
			t.Errorf("Formatted error should contain %q:\n%s", want, formatted)
		}
	}
}

func TestErrorFormatting_NoLocation(t *testing.T) {
	formatted := NewCyclicDependency(Location{}, "com.example.Tree", []string{"com.example.Tree", "com.example.Tree"}).Format()

	if !strings.HasPrefix(formatted, "error[PRC102] resolution error\n") {
		t.Errorf("Formatted error should omit an unknown location:\n%s", formatted)
	}
	if !strings.Contains(formatted, "actual:   com.example.Tree -> com.example.Tree") {
		t.Error("Formatted error should contain the dependency chain")
	}
}

func TestPosition(t *testing.T) {
	tests := []struct {
		name string
		err  *CompilerError
		want string
	}{
		{"nothing", &CompilerError{}, ""},
		{"file only", &CompilerError{File: "a.yaml"}, "a.yaml"},
		{"line", &CompilerError{File: "a.yaml", Location: Location{Line: 3}}, "a.yaml:3"},
		{"line and column", &CompilerError{File: "a.yaml", Location: Location{Line: 3, Column: 7}}, "a.yaml:3:7"},
		{"no file", &CompilerError{Location: Location{Line: 3}}, "<schema>:3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Position(); got != tt.want {
				t.Errorf("Position() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTarget(t *testing.T) {
	if got := (&CompilerError{Subject: "com.example.Point", Field: "x"}).Target(); got != "com.example.Point.x" {
		t.Errorf("Target() = %q", got)
	}
	if got := (&CompilerError{Subject: "com.example.Point"}).Target(); got != "com.example.Point" {
		t.Errorf("Target() = %q", got)
	}
	if got := (&CompilerError{Field: "x"}).Target(); got != "x" {
		t.Errorf("Target() = %q", got)
	}
	if got := (&CompilerError{}).Target(); got != "" {
		t.Errorf("Target() = %q", got)
	}
}

func TestFormatCompact(t *testing.T) {
	err := NewInvalidSchema(Location{Line: 3, Column: 7}, "unknown key 'adapterz'").WithFile("parcels.yaml")
	want := "parcels.yaml:3:7: error PRC202: Invalid schema: unknown key 'adapterz'"
	if got := FormatCompact(err); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}

	unresolved := NewUnresolvedType(Location{}, "com.example.Tree", "children", "util.List<com.example.Node>", "")
	want = "error PRC100: com.example.Tree.children: no adapter for util.List<com.example.Node>"
	if got := FormatCompact(unresolved); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestCompact(t *testing.T) {
	if got := Compact(nil); got != "" {
		t.Errorf("Compact(nil) = %q", got)
	}

	single := NewUnknownType(Location{Line: 3}, "com.example.Missing").WithFile("a.yaml")
	if got := Compact(fmt.Errorf("wrapped: %w", single)); got != "a.yaml:3: error PRC203: com.example.Missing: Unknown type com.example.Missing" {
		t.Errorf("Compact() = %q", got)
	}

	list := ErrorList{single, NewInvalidSchema(Location{}, "bad")}
	got := Compact(list)
	if strings.Contains(got, "\n") || strings.Count(got, "; ") != 1 {
		t.Errorf("expected one line joining two diagnostics, got %q", got)
	}

	if got := Compact(fmt.Errorf("plain failure")); got != "plain failure" {
		t.Errorf("Compact() = %q", got)
	}
}

func TestErrorListFormatting(t *testing.T) {
	errors := ErrorList{
		NewAmbiguousAdapter(Location{Line: 5, Column: 10}, "com.example.Confused", []string{"A", "B"}),
		NewNonWritableFields(Location{Line: 12, Column: 3}, "com.example.Point", []string{"x", "y"}),
	}

	formatted := errors.Error()

	if !strings.Contains(formatted, "2 error(s)") {
		t.Error("Formatted error list should contain error count")
	}
	if !strings.Contains(formatted, "resolution error") {
		t.Error("Formatted error list should contain first error")
	}
	if !strings.Contains(formatted, "cannot be written: x, y") {
		t.Error("Formatted error list should contain second error")
	}
}

func TestErrorListErrorCount(t *testing.T) {
	warning := newError("PRC999", "test_warning", CategoryModel, SeverityWarning, "warning", Location{})
	errors := ErrorList{
		NewUnknownType(Location{Line: 1, Column: 1}, "com.example.Missing"),
		warning,
		NewReflectAccess(Location{Line: 3, Column: 1}, "com.example.Point", []string{"x"}),
	}

	errCount, warnCount, infoCount := errors.ErrorCount()

	if errCount != 1 {
		t.Errorf("Expected 1 error, got %d", errCount)
	}
	if warnCount != 1 {
		t.Errorf("Expected 1 warning, got %d", warnCount)
	}
	if infoCount != 1 {
		t.Errorf("Expected 1 info, got %d", infoCount)
	}
}

func TestErrorListHasErrors(t *testing.T) {
	errorsWithError := ErrorList{
		NewCodeGenFailed(Location{Line: 1, Column: 1}, "format failed"),
	}
	infoOnly := ErrorList{
		NewReflectAccess(Location{Line: 2, Column: 1}, "com.example.Point", []string{"x"}),
	}

	if !errorsWithError.HasErrors() {
		t.Error("Expected HasErrors() to return true when list contains errors")
	}
	if infoOnly.HasErrors() {
		t.Error("Expected HasErrors() to return false when list contains only info")
	}
	if (ErrorList{}).Error() != "no errors" {
		t.Error("Expected empty list to report no errors")
	}
}

func TestErrorCategories(t *testing.T) {
	tests := []struct {
		name     string
		err      *CompilerError
		category ErrorCategory
	}{
		{"Unresolved", NewUnresolvedType(Location{}, "x.T", "f", "lang.Object", ""), CategoryResolution},
		{"Ambiguous", NewAmbiguousAdapter(Location{}, "x.A", []string{"T"}), CategoryResolution},
		{"Cyclic", NewCyclicDependency(Location{}, "x.T", nil), CategoryResolution},
		{"Invalid adapter", NewInvalidAdapter(Location{}, "x.A", "missing adapts"), CategoryResolution},
		{"Non readable", NewNonReadableField(Location{}, "x.T", "f"), CategoryModel},
		{"Invalid schema", NewInvalidSchema(Location{}, "bad"), CategoryModel},
		{"Codegen", NewCodeGenFailed(Location{}, "bad"), CategoryCodeGen},
		{"Missing Go type", NewMissingGoType(Location{}, "x.T"), CategoryCodeGen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Category != tt.category {
				t.Errorf("Expected category %s, got %s", tt.category, tt.err.Category)
			}
			if tt.err.Documentation == "" {
				t.Error("Expected documentation URL to be set")
			}
		})
	}
}

func TestWithMethods(t *testing.T) {
	err := NewUnknownType(Location{Line: 5, Column: 10}, "com.example.Missing").
		WithFile("parcels.yaml").
		WithLine(7).
		WithField("owner").
		WithSuggestion("Declare it").
		WithExamples("types:", "  - name: com.example.Missing")

	if err.File != "parcels.yaml" {
		t.Errorf("Expected file 'parcels.yaml', got '%s'", err.File)
	}
	if err.Location.Line != 7 {
		t.Errorf("Expected line 7, got %d", err.Location.Line)
	}
	if err.Field != "owner" {
		t.Errorf("Expected field 'owner', got '%s'", err.Field)
	}
	if err.Suggestion != "Declare it" {
		t.Errorf("Expected suggestion 'Declare it', got '%s'", err.Suggestion)
	}
	if len(err.Examples) != 2 {
		t.Errorf("Expected 2 examples, got %d", len(err.Examples))
	}
}

func TestCollect(t *testing.T) {
	if Collect(nil) != nil {
		t.Error("Expected nil for nil error")
	}

	single := NewUnknownType(Location{Line: 3}, "com.example.Missing")
	if got := Collect(fmt.Errorf("wrapped: %w", single)); len(got) != 1 || got[0] != single {
		t.Errorf("Expected wrapped diagnostic, got %v", got)
	}

	list := ErrorList{single, NewReflectAccess(Location{}, "com.example.Point", []string{"x"})}
	if got := Collect(list); len(got) != 2 {
		t.Errorf("Expected 2 diagnostics, got %d", len(got))
	}

	plain := Collect(fmt.Errorf("open geo.yaml: no such file"))
	if len(plain) != 1 || plain[0].Code != ErrInvalidSchema {
		t.Fatalf("Expected one PRC202 diagnostic, got %v", plain)
	}
	if !strings.Contains(plain[0].Message, "no such file") {
		t.Errorf("Expected message to carry the cause, got %q", plain[0].Message)
	}
}
