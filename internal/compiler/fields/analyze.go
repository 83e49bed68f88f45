package fields

import (
	"fmt"
	"sort"
	"strings"

	cerrors "github.com/conduit-lang/parcelgen/internal/compiler/errors"
	"github.com/conduit-lang/parcelgen/internal/compiler/types"
)

// Analyze builds the field model of spec. Failures are returned as a
// cerrors.ErrorList holding one diagnostic per problem.
func Analyze(u *types.Universe, spec TypeSpec, opts Options) (*Model, error) {
	if spec.Name == "" {
		return nil, cerrors.NewInvalidSchema(cerrors.Location{Line: spec.Line}, "type without a name").WithFile(spec.File)
	}

	model := &Model{Type: spec.Name, File: spec.File, Line: spec.Line}
	if spec.Singleton {
		model.Construction = Construction{Kind: ConstructSingleton, Func: spec.Instance}
		return model, nil
	}

	a := &analyzer{universe: u, spec: spec, opts: opts}
	for i := range spec.Fields {
		a.checkKnown(spec.Fields[i])
	}
	if len(a.errs) > 0 {
		return nil, a.errs
	}

	for i := range spec.Fields {
		f := a.field(spec.Fields[i])
		if f != nil {
			model.Fields = append(model.Fields, f)
		}
	}
	if len(a.errs) > 0 {
		return nil, a.errs
	}

	construction, ok := a.construct(model.Fields)
	if !ok {
		return nil, a.errs
	}
	model.Construction = construction
	return model, nil
}

type analyzer struct {
	universe *types.Universe
	spec     TypeSpec
	opts     Options
	errs     cerrors.ErrorList
}

func (a *analyzer) location(line int) cerrors.Location {
	if line == 0 {
		line = a.spec.Line
	}
	return cerrors.Location{Line: line}
}

func (a *analyzer) report(err *cerrors.CompilerError) {
	a.errs = append(a.errs, err.WithFile(a.spec.File))
}

func (a *analyzer) checkKnown(fs FieldSpec) {
	if fs.Type == nil {
		a.report(cerrors.NewInvalidSchema(a.location(fs.Line), fmt.Sprintf("field %s of %s has no type", fs.Name, a.spec.Name)))
		return
	}
	for _, name := range unknownNames(a.universe, fs.Type) {
		a.report(cerrors.NewUnknownType(a.location(fs.Line), name))
	}
}

func unknownNames(u *types.Universe, t types.Type) []string {
	var unknown []string
	var walk func(types.Type)
	walk = func(t types.Type) {
		switch x := t.(type) {
		case *types.Declared:
			if _, ok := u.Lookup(x.Name); !ok {
				unknown = append(unknown, x.Name)
			}
			for _, arg := range x.Args {
				walk(arg)
			}
		case *types.Array:
			walk(x.Elem)
		case *types.Wildcard:
			if x.Extends != nil {
				walk(x.Extends)
			}
			if x.Super != nil {
				walk(x.Super)
			}
		}
	}
	walk(t)
	return unknown
}

func (a *analyzer) field(fs FieldSpec) *Field {
	f := &Field{
		Name:      fs.Name,
		Type:      fs.Type,
		Boxed:     types.Box(fs.Type),
		Primitive: types.IsPrimitive(fs.Type),
		Line:      fs.Line,
	}
	required := fs.Required || a.spec.NonNullByDefault || fs.HasAnnotation(a.opts.NonNullAnnotations...)
	f.Nullable = !f.Primitive && !required

	read, ok := a.readInfo(fs)
	if !ok {
		a.report(cerrors.NewNonReadableField(a.location(fs.Line), a.spec.Name, fs.Name))
		return nil
	}
	f.Read = read
	return f
}

func (a *analyzer) readInfo(fs FieldSpec) (ReadInfo, bool) {
	if fs.Visibility != Private {
		return ReadInfo{Kind: ReadDirect}, true
	}
	for _, name := range getterNames(fs.Name) {
		m, ok := a.method(name)
		if !ok || len(m.Params) != 0 || m.Returns == nil {
			continue
		}
		if types.IsSubtype(a.universe, m.Returns, fs.Type) {
			return ReadInfo{Kind: ReadAccessor, Accessor: m.Name}, true
		}
	}
	if fs.HasAnnotation(a.opts.ReflectAnnotations...) {
		return ReadInfo{Kind: ReadReflect}, true
	}
	return ReadInfo{}, false
}

func (a *analyzer) method(name string) (Method, bool) {
	for _, m := range a.spec.Methods {
		if m.Name == name && m.Visibility != Private {
			return m, true
		}
	}
	return Method{}, false
}

// construct picks the first candidate constructor under which every field is
// writable. Candidates are tried largest first.
func (a *analyzer) construct(fields []*Field) (Construction, bool) {
	candidates := a.candidates()
	if len(candidates) == 0 {
		a.report(cerrors.NewNonWritableFields(a.location(0), a.spec.Name, fieldNames(fields)).
			WithSuggestion("Declare a constructor that is not private"))
		return Construction{}, false
	}

	var firstFailure []string
	for _, c := range candidates {
		writes, unwritable := a.writeInfos(c, fields)
		if len(unwritable) == 0 {
			for i, f := range fields {
				f.Write = writes[i]
			}
			return c, true
		}
		if firstFailure == nil {
			firstFailure = unwritable
		}
	}
	a.report(cerrors.NewNonWritableFields(a.location(0), a.spec.Name, firstFailure))
	return Construction{}, false
}

func (a *analyzer) candidates() []Construction {
	if len(a.spec.Constructors) == 0 {
		return []Construction{{Kind: ConstructLiteral}}
	}
	ctors := make([]Constructor, 0, len(a.spec.Constructors))
	for _, c := range a.spec.Constructors {
		if c.Visibility != Private {
			ctors = append(ctors, c)
		}
	}
	sort.SliceStable(ctors, func(i, j int) bool {
		return len(ctors[i].Params) > len(ctors[j].Params)
	})

	var result []Construction
	for _, c := range ctors {
		args := make([]string, len(c.Params))
		for i, p := range c.Params {
			args[i] = p.Name
		}
		result = append(result, Construction{Kind: ConstructCall, Func: c.Name, Args: args})
	}
	return result
}

func (a *analyzer) constructor(name string) Constructor {
	for _, c := range a.spec.Constructors {
		if c.Name == name {
			return c
		}
	}
	return Constructor{}
}

// writeInfos computes write strategies under construction c. It returns the
// names of fields that cannot be written, or of all constructor parameters
// when c itself is unusable.
func (a *analyzer) writeInfos(c Construction, fields []*Field) ([]WriteInfo, []string) {
	writes := make([]WriteInfo, len(fields))
	bound := make([]bool, len(fields))

	if c.Kind == ConstructCall {
		ctor := a.constructor(c.Func)
		for pi, p := range ctor.Params {
			fi := indexOf(fields, p.Name)
			if fi < 0 || bound[fi] || !types.IsSubtype(a.universe, fields[fi].Type, p.Type) {
				return nil, c.Args
			}
			bound[fi] = true
			writes[fi] = WriteInfo{Kind: WriteConstructor, Index: pi}
		}
	}

	var unwritable []string
	for i, f := range fields {
		if bound[i] {
			continue
		}
		w, ok := a.writeInfo(a.fieldSpec(f.Name))
		if !ok {
			unwritable = append(unwritable, f.Name)
			continue
		}
		writes[i] = w
	}
	return writes, unwritable
}

func (a *analyzer) writeInfo(fs FieldSpec) (WriteInfo, bool) {
	if fs.Visibility != Private && !fs.Final {
		return WriteInfo{Kind: WriteDirect}, true
	}
	for _, name := range setterNames(fs.Name) {
		m, ok := a.method(name)
		if !ok || len(m.Params) != 1 || m.Returns != nil {
			continue
		}
		if types.IsSubtype(a.universe, fs.Type, m.Params[0].Type) {
			return WriteInfo{Kind: WriteMutator, Mutator: m.Name}, true
		}
	}
	if fs.HasAnnotation(a.opts.ReflectAnnotations...) {
		return WriteInfo{Kind: WriteReflect}, true
	}
	return WriteInfo{}, false
}

func (a *analyzer) fieldSpec(name string) FieldSpec {
	for _, fs := range a.spec.Fields {
		if fs.Name == name {
			return fs
		}
	}
	return FieldSpec{}
}

func indexOf(fields []*Field, name string) int {
	for i, f := range fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

func fieldNames(fields []*Field) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// getterNames lists accessor names tried for a field, in order.
func getterNames(field string) []string {
	c := capitalize(field)
	return []string{field, c, "is" + c, "Is" + c, "has" + c, "Has" + c, "get" + c, "Get" + c}
}

// setterNames lists mutator names tried for a field, in order.
func setterNames(field string) []string {
	c := capitalize(field)
	return []string{field, c, "set" + c, "Set" + c}
}
