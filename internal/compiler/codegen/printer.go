// Package codegen prints marshal plans as Go source.
// One file holds the adapter declarations shared by every type of a package,
// followed by WriteX, ReadX and an XAdapter value for each type.
package codegen

import (
	"bufio"
	"bytes"
	"fmt"
	"go/format"
	"sort"
	"strconv"
	"strings"

	"github.com/conduit-lang/parcelgen/internal/compiler/adapter"
	cerrors "github.com/conduit-lang/parcelgen/internal/compiler/errors"
	"github.com/conduit-lang/parcelgen/internal/compiler/fields"
	"github.com/conduit-lang/parcelgen/internal/compiler/plan"
	"github.com/conduit-lang/parcelgen/internal/compiler/types"
)

// FingerprintPrefix starts the header line carrying the plan fingerprint.
const FingerprintPrefix = "// parcelgen:fingerprint "

var writerMethods = map[types.Kind]string{
	types.Boolean: "WriteBool",
	types.Byte:    "WriteInt8",
	types.Short:   "WriteInt16",
	types.Int:     "WriteInt32",
	types.Long:    "WriteInt64",
	types.Char:    "WriteChar",
	types.Float:   "WriteFloat32",
	types.Double:  "WriteFloat64",
}

var readerMethods = map[types.Kind]string{
	types.Boolean: "ReadBool",
	types.Byte:    "ReadInt8",
	types.Short:   "ReadInt16",
	types.Int:     "ReadInt32",
	types.Long:    "ReadInt64",
	types.Char:    "ReadChar",
	types.Float:   "ReadFloat32",
	types.Double:  "ReadFloat64",
}

// Generator prints the plans of one Go package.
type Generator struct {
	buf        *bytes.Buffer
	indent     int
	imports    map[string]bool
	pkg        string
	importPath string
	names      *plan.Namer
	reserved   []string
	err        error
}

// NewGenerator creates a generator for package pkg, importable as importPath.
// Adapters living in importPath are referenced unqualified.
func NewGenerator(pkg, importPath string) *Generator {
	return &Generator{
		buf:        &bytes.Buffer{},
		imports:    make(map[string]bool),
		pkg:        pkg,
		importPath: importPath,
	}
}

// Generate prints plans as one formatted Go file. Plans are printed in the
// order given.
func (g *Generator) Generate(plans []*plan.Plan) ([]byte, error) {
	g.reset()
	if g.pkg == "" {
		return nil, cerrors.NewCodeGenFailed(cerrors.Location{}, "package name is empty")
	}
	if len(plans) == 0 {
		return nil, cerrors.NewCodeGenFailed(cerrors.Location{}, "no types to generate")
	}

	g.imports[adapter.RuntimeImport] = true
	g.reserve(plans)
	decls := g.collectDecls(plans)

	if len(decls) > 0 {
		g.writeLine("var (")
		g.indent++
		for _, d := range decls {
			name, _ := g.names.Lookup(d.TypeName)
			g.writeLine("%s = %s", name, g.declExpr(d))
		}
		g.indent--
		g.writeLine(")")
		g.writeLine("")
	}

	for i, p := range plans {
		if i > 0 {
			g.writeLine("")
		}
		g.generateType(p)
	}
	if g.err != nil {
		return nil, g.err
	}

	body := g.buf.String()
	g.buf = &bytes.Buffer{}
	g.writeLine("// Code generated by parcelgen. DO NOT EDIT.")
	g.writeLine("%s%016x", FingerprintPrefix, plan.FingerprintAll(plans))
	g.writeLine("")
	g.writeLine("package %s", g.pkg)
	g.writeLine("")
	g.writeImports()
	g.writeLine("")
	g.buf.WriteString(body)

	src, err := format.Source(g.buf.Bytes())
	if err != nil {
		return nil, cerrors.NewCodeGenFailed(cerrors.Location{}, err.Error()).
			WithActual(g.buf.String())
	}
	return src, nil
}

// ParseFingerprint returns the fingerprint recorded in the header of a file
// printed by Generate.
func ParseFingerprint(src []byte) (uint64, bool) {
	sc := bufio.NewScanner(bytes.NewReader(src))
	for i := 0; i < 5 && sc.Scan(); i++ {
		line := sc.Text()
		if !strings.HasPrefix(line, FingerprintPrefix) {
			continue
		}
		v, err := strconv.ParseUint(strings.TrimPrefix(line, FingerprintPrefix), 16, 64)
		if err != nil {
			return 0, false
		}
		return v, true
	}
	return 0, false
}

func (g *Generator) reset() {
	g.buf.Reset()
	g.indent = 0
	g.imports = make(map[string]bool)
	g.err = nil
}

func (g *Generator) fail(reason string) {
	if g.err == nil {
		g.err = cerrors.NewCodeGenFailed(cerrors.Location{}, reason)
	}
}

// reserve takes the top-level identifiers of every type so adapter
// declarations cannot shadow them.
func (g *Generator) reserve(plans []*plan.Plan) {
	g.reserved = []string{"parcel", "big", "time", "w", "r", "x"}
	for _, p := range plans {
		base := baseName(p.GoType)
		g.reserved = append(g.reserved,
			"Write"+base, "Read"+base, plan.AdapterVar(base), plan.LocalName(base)+"Adapter")
	}
	g.names = plan.NewNamer(g.reserved...)
}

// collectDecls merges the declarations of every plan, keeping the first
// occurrence of each TypeName. Each plan lists dependencies first, so the
// merged list does too.
func (g *Generator) collectDecls(plans []*plan.Plan) []*plan.Decl {
	var decls []*plan.Decl
	for _, p := range plans {
		for _, d := range p.Decls {
			if _, ok := g.names.Lookup(d.TypeName); ok {
				continue
			}
			g.reserved = append(g.reserved, g.names.Name(d.TypeName, d.Name))
			decls = append(decls, d)
		}
	}
	return decls
}

func (g *Generator) declExpr(d *plan.Decl) string {
	var typeArgs, args []string
	for _, a := range d.Args {
		switch a.Kind {
		case adapter.DependencyClass:
			g.noteType(a.GoType)
			typeArgs = append(typeArgs, a.GoType)
		case adapter.DependencyFactory:
			args = append(args, a.Factory)
		default:
			args = append(args, g.adapterExpr(a.Ref))
		}
	}
	fn := g.qualify(d.Func, d.Import)
	if len(typeArgs) > 0 {
		fn += "[" + strings.Join(typeArgs, ", ") + "]"
	}
	return fn + "(" + strings.Join(args, ", ") + ")"
}

func (g *Generator) adapterExpr(ref *plan.Ref) string {
	if ref == nil {
		g.fail("adapter reference is missing")
		return "nil"
	}
	var expr string
	if ref.Singleton() {
		expr = g.qualify(ref.Expr, ref.Import)
	} else {
		name, ok := g.names.Lookup(ref.TypeName)
		if !ok {
			g.fail(fmt.Sprintf("adapter %s is not declared", ref.TypeName))
			return "nil"
		}
		expr = name
	}
	if ref.Wrap {
		expr = "parcel.NullSafe(" + expr + ")"
	}
	return expr
}

// qualify returns expr as seen from the generated package, recording the
// import it needs.
func (g *Generator) qualify(expr, importPath string) string {
	if importPath == "" {
		return expr
	}
	if importPath == g.importPath {
		if i := strings.Index(expr, "."); i >= 0 {
			return expr[i+1:]
		}
		return expr
	}
	g.imports[importPath] = true
	return expr
}

func (g *Generator) noteType(goType string) {
	if strings.Contains(goType, "big.") {
		g.imports["math/big"] = true
	}
	if strings.Contains(goType, "time.") {
		g.imports["time"] = true
	}
}

func (g *Generator) generateType(p *plan.Plan) {
	base := baseName(p.GoType)
	ptr := "*" + base

	g.writeLine("// Write%s writes x to w.", base)
	g.writeLine("func Write%s(w *parcel.Writer, x %s) {", base, ptr)
	g.indent++
	locals := plan.NewNamer(g.reserved...)
	if !p.Singleton() {
		for _, f := range p.Fields {
			g.writeField(f, locals)
		}
	}
	g.indent--
	g.writeLine("}")
	g.writeLine("")

	g.writeLine("// Read%s reads a %s written by Write%s.", base, base, base)
	g.writeLine("func Read%s(r *parcel.Reader) %s {", base, ptr)
	g.indent++
	if p.Singleton() {
		g.writeLine("return %s", p.Construction.Func)
	} else {
		g.readBody(p, base)
	}
	g.indent--
	g.writeLine("}")
	g.writeLine("")

	impl := plan.LocalName(base) + "Adapter"
	g.writeLine("type %s struct{}", impl)
	g.writeLine("")
	g.writeLine("func (%s) WriteTo(w *parcel.Writer, x %s) { Write%s(w, x) }", impl, ptr, base)
	g.writeLine("func (%s) ReadFrom(r *parcel.Reader) %s { return Read%s(r) }", impl, ptr, base)
	g.writeLine("")
	g.writeLine("// %s marshals %s values.", plan.AdapterVar(base), base)
	g.writeLine("var %s parcel.Adapter[%s] = %s{}", plan.AdapterVar(base), ptr, impl)
}

func (g *Generator) writeField(f *plan.FieldPlan, locals *plan.Namer) {
	var value string
	switch f.Read.Kind {
	case fields.ReadAccessor:
		value = "x." + f.Read.Accessor + "()"
	case fields.ReadReflect:
		g.noteType(f.GoType)
		value = fmt.Sprintf("parcel.GetField[%s](w, x, %q)", f.GoType, f.Name)
	default:
		value = "x." + f.Name
	}

	if f.Encoding == plan.EncodePrimitive {
		g.writeLine("w.%s(%s)", writerMethods[f.Kind], value)
		return
	}
	a := g.adapterExpr(f.Adapter)
	switch {
	case f.Pointer:
		g.writeLine("parcel.WriteNullable(w, %s, %s)", value, a)
	case f.NullTag:
		if f.Read.Kind != fields.ReadDirect {
			v := locals.Name(f.Name, plan.LocalName(f.Name))
			g.writeLine("%s := %s", v, value)
			value = v
		}
		g.writeLine("parcel.WriteTagged(w, %s, %s != nil, %s)", value, value, a)
	default:
		g.writeLine("%s.WriteTo(w, %s)", a, value)
	}
}

func (g *Generator) readBody(p *plan.Plan, base string) {
	locals := plan.NewNamer(g.reserved...)
	for _, f := range p.Fields {
		v := locals.Name(f.Name, plan.LocalName(f.Name))
		if f.Encoding == plan.EncodePrimitive {
			g.writeLine("%s := r.%s()", v, readerMethods[f.Kind])
			continue
		}
		a := g.adapterExpr(f.Adapter)
		switch {
		case f.Pointer:
			g.writeLine("%s := parcel.ReadNullable(r, %s)", v, a)
		case f.NullTag:
			g.writeLine("%s := parcel.ReadTagged(r, %s)", v, a)
		default:
			g.writeLine("%s := %s.ReadFrom(r)", v, a)
		}
	}

	switch p.Construction.Kind {
	case fields.ConstructCall:
		args := make([]string, len(p.Construction.Args))
		for i, name := range p.Construction.Args {
			v, ok := locals.Lookup(name)
			if !ok {
				g.fail(fmt.Sprintf("constructor %s takes unknown field %s", p.Construction.Func, name))
			}
			args[i] = v
		}
		g.writeLine("x := %s(%s)", p.Construction.Func, strings.Join(args, ", "))
	default:
		g.writeLine("x := &%s{}", base)
	}

	for _, f := range p.Fields {
		v, _ := locals.Lookup(f.Name)
		switch f.Write.Kind {
		case fields.WriteDirect:
			g.writeLine("x.%s = %s", f.Name, v)
		case fields.WriteMutator:
			g.writeLine("x.%s(%s)", f.Write.Mutator, v)
		case fields.WriteReflect:
			g.writeLine("parcel.SetField(r, x, %q, %s)", f.Name, v)
		}
	}
	g.writeLine("return x")
}

// writeLine writes a formatted line with proper indentation
func (g *Generator) writeLine(format string, args ...interface{}) {
	if format == "" {
		g.buf.WriteString("\n")
		return
	}
	for i := 0; i < g.indent; i++ {
		g.buf.WriteString("\t")
	}
	if len(args) > 0 {
		g.buf.WriteString(fmt.Sprintf(format, args...))
	} else {
		g.buf.WriteString(format)
	}
	g.buf.WriteString("\n")
}

// writeImports writes the import block, standard library first.
func (g *Generator) writeImports() {
	var stdlib, external []string
	for imp := range g.imports {
		if strings.Contains(strings.SplitN(imp, "/", 2)[0], ".") {
			external = append(external, imp)
		} else {
			stdlib = append(stdlib, imp)
		}
	}
	sort.Strings(stdlib)
	sort.Strings(external)

	g.writeLine("import (")
	g.indent++
	for _, imp := range stdlib {
		g.writeLine("%q", imp)
	}
	if len(stdlib) > 0 && len(external) > 0 {
		g.writeLine("")
	}
	for _, imp := range external {
		g.writeLine("%q", imp)
	}
	g.indent--
	g.writeLine(")")
}

func baseName(goType string) string {
	name := strings.TrimPrefix(goType, "*")
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}
