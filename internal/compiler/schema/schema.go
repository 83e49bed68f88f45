// Package schema loads parcelgen schema files.
//
// A schema file describes one Go package: the types it declares, which of
// them get generated marshal code, the enums they use and any hand-written
// adapters. Type expressions use qualified names (com.example.User) or the
// simple names of builtin types (String, List<Integer>).
package schema

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"

	cerrors "github.com/conduit-lang/parcelgen/internal/compiler/errors"
)

// Schema is one loaded schema file.
type Schema struct {
	Package  string         `yaml:"package"`
	Import   string         `yaml:"import"`
	Types    []*TypeDecl    `yaml:"types"`
	Enums    []*EnumDecl    `yaml:"enums"`
	Adapters []*AdapterDecl `yaml:"adapters"`

	// Path is the file the schema was loaded from.
	Path string `yaml:"-"`
}

// TypeDecl declares a class. Parcel types get generated marshal code.
type TypeDecl struct {
	Name             string             `yaml:"name"`
	GoType           string             `yaml:"go_type"`
	Factory          string             `yaml:"factory"`
	Params           []string           `yaml:"params"`
	Supertypes       []string           `yaml:"supertypes"`
	Parcel           bool               `yaml:"parcel"`
	Singleton        bool               `yaml:"singleton"`
	Instance         string             `yaml:"instance"`
	NonNullByDefault bool               `yaml:"non_null_by_default"`
	Fields           []*FieldDecl       `yaml:"fields"`
	Methods          []*MethodDecl      `yaml:"methods"`
	Constructors     []*ConstructorDecl `yaml:"constructors"`
	Nested           []*TypeDecl        `yaml:"nested"`

	Line int `yaml:"-"`
}

// FieldDecl declares a field of a type.
type FieldDecl struct {
	Name        string   `yaml:"name"`
	Type        string   `yaml:"type"`
	Visibility  string   `yaml:"visibility"`
	Final       bool     `yaml:"final"`
	Required    bool     `yaml:"required"`
	Annotations []string `yaml:"annotations"`

	Line int `yaml:"-"`
}

// ParamDecl is a method or constructor parameter.
type ParamDecl struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// MethodDecl declares a method. An empty Returns means no result.
type MethodDecl struct {
	Name       string       `yaml:"name"`
	Params     []*ParamDecl `yaml:"params"`
	Returns    string       `yaml:"returns"`
	Visibility string       `yaml:"visibility"`
}

// ConstructorDecl declares a constructor function.
type ConstructorDecl struct {
	Name       string       `yaml:"name"`
	Params     []*ParamDecl `yaml:"params"`
	Visibility string       `yaml:"visibility"`
}

// EnumDecl declares an enumeration held as an int32 ordinal in Go.
type EnumDecl struct {
	Name   string `yaml:"name"`
	GoType string `yaml:"go_type"`

	Line int `yaml:"-"`
}

// AdapterDecl declares a hand-written adapter.
type AdapterDecl struct {
	Name         string            `yaml:"name"`
	GoExpr       string            `yaml:"go_expr"`
	Import       string            `yaml:"import"`
	TypeParams   []string          `yaml:"type_params"`
	Adapts       string            `yaml:"adapts"`
	Dependencies []*DependencyDecl `yaml:"dependencies"`
	Singleton    bool              `yaml:"singleton"`
	NullSafe     bool              `yaml:"null_safe"`
	ValueType    bool              `yaml:"value_type"`
	Priority     int               `yaml:"priority"`

	Line int `yaml:"-"`
}

// DependencyDecl is a constructor parameter of an adapter. Kind is adapter,
// class or factory; empty means adapter.
type DependencyDecl struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind"`
	Type string `yaml:"type"`
}

var errLine = regexp.MustCompile(`line (\d+)`)

// Load reads and parses the schema file at path.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema: %w", err)
	}
	return Parse(path, data)
}

// Parse parses schema data. Unknown keys are an error. path is used in
// diagnostics only.
func Parse(path string, data []byte) (*Schema, error) {
	s := &Schema{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(s); err != nil && !errors.Is(err, io.EOF) {
		return nil, yamlError(path, err)
	}
	s.Path = path

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, yamlError(path, err)
	}
	s.attachLines(&root)

	if errs := s.validate(); len(errs) > 0 {
		return nil, errs
	}
	return s, nil
}

func yamlError(path string, err error) *cerrors.CompilerError {
	loc := cerrors.Location{}
	if m := errLine.FindStringSubmatch(err.Error()); m != nil {
		loc.Line, _ = strconv.Atoi(m[1])
	}
	return cerrors.NewInvalidSchema(loc, err.Error()).WithFile(path)
}

// AllTypes returns the declared types with nested types flattened, each
// nested type following its enclosing type.
func (s *Schema) AllTypes() []*TypeDecl {
	var all []*TypeDecl
	var walk func([]*TypeDecl)
	walk = func(decls []*TypeDecl) {
		for _, t := range decls {
			all = append(all, t)
			walk(t.Nested)
		}
	}
	walk(s.Types)
	return all
}

func (s *Schema) attachLines(root *yaml.Node) {
	doc := root
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		doc = doc.Content[0]
	}
	attachTypes(s.Types, items(doc, "types"))
	for i, n := range items(doc, "enums") {
		if i < len(s.Enums) {
			s.Enums[i].Line = n.Line
		}
	}
	for i, n := range items(doc, "adapters") {
		if i < len(s.Adapters) {
			s.Adapters[i].Line = n.Line
		}
	}
}

func attachTypes(decls []*TypeDecl, nodes []*yaml.Node) {
	for i, n := range nodes {
		if i >= len(decls) {
			return
		}
		decls[i].Line = n.Line
		for j, f := range items(n, "fields") {
			if j < len(decls[i].Fields) {
				decls[i].Fields[j].Line = f.Line
			}
		}
		attachTypes(decls[i].Nested, items(n, "nested"))
	}
}

// items returns the elements of the sequence stored under key in mapping n.
func items(n *yaml.Node, key string) []*yaml.Node {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			if v := n.Content[i+1]; v.Kind == yaml.SequenceNode {
				return v.Content
			}
			return nil
		}
	}
	return nil
}

func (s *Schema) validate() cerrors.ErrorList {
	var errs cerrors.ErrorList
	report := func(line int, format string, args ...any) {
		errs = append(errs, cerrors.NewInvalidSchema(cerrors.Location{Line: line}, fmt.Sprintf(format, args...)).WithFile(s.Path))
	}

	seen := make(map[string]int)
	declare := func(name string, line int) {
		if name == "" {
			return
		}
		if first, ok := seen[name]; ok {
			report(line, "%s is declared twice (first on line %d)", name, first)
			return
		}
		seen[name] = line
	}

	parcels := 0
	for _, t := range s.AllTypes() {
		if t.Name == "" {
			report(t.Line, "type without a name")
			continue
		}
		declare(t.Name, t.Line)
		if t.Singleton && len(t.Fields) > 0 {
			report(t.Line, "singleton type %s cannot declare fields", t.Name)
		}
		if t.Singleton && t.Instance == "" {
			report(t.Line, "singleton type %s needs an instance", t.Name)
		}
		if t.Parcel {
			parcels++
			if len(t.Params) > 0 {
				report(t.Line, "parcel type %s cannot have type parameters", t.Name)
			}
		}
		for _, f := range t.Fields {
			if f.Name == "" || f.Type == "" {
				report(f.Line, "field of %s needs a name and a type", t.Name)
			}
		}
	}
	for _, e := range s.Enums {
		if e.Name == "" {
			report(e.Line, "enum without a name")
			continue
		}
		declare(e.Name, e.Line)
	}
	for _, a := range s.Adapters {
		if a.Name == "" || a.Adapts == "" || a.GoExpr == "" {
			report(a.Line, "adapter needs a name, go_expr and adapts")
		}
	}
	if parcels > 0 && (s.Package == "" || s.Import == "") {
		report(0, "package and import are required when parcel types are declared")
	}
	return errs
}
