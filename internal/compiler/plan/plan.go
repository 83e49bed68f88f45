// Package plan builds marshal plans: for one type, the ordered field
// encodings, the presence tags and the adapter instances the generated code
// declares.
//
// Write order and read order are the same list, Plan.Fields. Adapter
// instances appear in Plan.Decls once per adapter TypeName, dependencies
// before dependents; singleton adapters are never declared and are referenced
// through their shared instance.
package plan

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/cespare/xxhash/v2"

	"github.com/conduit-lang/parcelgen/internal/compiler/adapter"
	"github.com/conduit-lang/parcelgen/internal/compiler/fields"
	"github.com/conduit-lang/parcelgen/internal/compiler/types"
)

// Encoding is how a field payload is produced.
type Encoding int

const (
	// EncodePrimitive writes the field with the writer's fixed-width method.
	EncodePrimitive Encoding = iota
	// EncodeAdapter delegates to an adapter.
	EncodeAdapter
)

func (e Encoding) String() string {
	if e == EncodeAdapter {
		return "adapter"
	}
	return "primitive"
}

func (e Encoding) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// Ref points at an adapter instance. Singleton references carry the shared
// instance in Expr; other references name a Decl by TypeName.
type Ref struct {
	TypeName string `json:"type_name"`
	Expr     string `json:"expr,omitempty"`
	Import   string `json:"import,omitempty"`
	// Wrap adds an element presence tag around the referenced adapter.
	Wrap bool `json:"wrap,omitempty"`
}

// Singleton reports whether the reference is to a shared instance.
func (r *Ref) Singleton() bool {
	return r.Expr != ""
}

// Arg is one constructor argument of a declared adapter.
type Arg struct {
	Name string                 `json:"name"`
	Kind adapter.DependencyKind `json:"kind"`
	// Ref is set for adapter arguments.
	Ref *Ref `json:"ref,omitempty"`
	// GoType is the type a class argument stands for.
	GoType string `json:"go_type,omitempty"`
	// Factory is the function a factory argument passes.
	Factory string `json:"factory,omitempty"`
}

// Decl is an adapter instance declared once per generated file.
type Decl struct {
	Name     string `json:"name"`
	TypeName string `json:"type_name"`
	Func     string `json:"func"`
	Import   string `json:"import,omitempty"`
	Args     []Arg  `json:"args,omitempty"`
}

// FieldPlan is the encoding of one field.
type FieldPlan struct {
	Name     string   `json:"name"`
	Type     string   `json:"type"`
	GoType   string   `json:"go_type,omitempty"`
	Encoding Encoding `json:"encoding"`
	// Kind is the primitive kind for EncodePrimitive.
	Kind    types.Kind `json:"-"`
	Adapter *Ref       `json:"adapter,omitempty"`
	// NullTag reports that a presence tag precedes the payload.
	NullTag bool `json:"null_tag"`
	// Pointer reports that the nullable value is held through a pointer.
	Pointer bool             `json:"pointer,omitempty"`
	Read    fields.ReadInfo  `json:"read"`
	Write   fields.WriteInfo `json:"write"`
	Line    int              `json:"line,omitempty"`
}

// Plan is the marshal plan of one type.
type Plan struct {
	Type         string              `json:"type"`
	GoType       string              `json:"go_type"`
	Fields       []*FieldPlan        `json:"fields"`
	Decls        []*Decl             `json:"decls"`
	Construction fields.Construction `json:"construction"`
	File         string              `json:"file,omitempty"`
}

// Singleton reports whether the type decodes to its shared instance.
func (p *Plan) Singleton() bool {
	return p.Construction.Kind == fields.ConstructSingleton
}

// Decl returns the declaration of the adapter called typeName.
func (p *Plan) Decl(typeName string) (*Decl, bool) {
	for _, d := range p.Decls {
		if d.TypeName == typeName {
			return d, true
		}
	}
	return nil, false
}

// Imports returns the sorted import paths the plan's adapters live in.
func (p *Plan) Imports() []string {
	set := make(map[string]bool)
	add := func(path string) {
		if path != "" {
			set[path] = true
		}
	}
	for _, f := range p.Fields {
		if f.Adapter != nil {
			add(f.Adapter.Import)
		}
	}
	for _, d := range p.Decls {
		add(d.Import)
		for _, a := range d.Args {
			if a.Ref != nil {
				add(a.Ref.Import)
			}
		}
	}
	result := make([]string, 0, len(set))
	for path := range set {
		result = append(result, path)
	}
	sort.Strings(result)
	return result
}

// Fingerprint hashes everything the printed code depends on.
func (p *Plan) Fingerprint() uint64 {
	h := xxhash.New()
	write := func(parts ...any) {
		for _, part := range parts {
			fmt.Fprint(h, part)
			h.Write([]byte{0})
		}
	}
	writeRef := func(r *Ref) {
		if r == nil {
			write("-")
			return
		}
		write(r.TypeName, r.Expr, r.Import, r.Wrap)
	}

	write(p.Type, p.GoType, p.Construction.Kind, p.Construction.Func, len(p.Construction.Args))
	for _, a := range p.Construction.Args {
		write(a)
	}
	var count [8]byte
	binary.LittleEndian.PutUint64(count[:], uint64(len(p.Fields)))
	h.Write(count[:])
	for _, f := range p.Fields {
		write(f.Name, f.Type, f.GoType, f.Encoding, int(f.Kind), f.NullTag, f.Pointer,
			f.Read.Kind, f.Read.Accessor, f.Write.Kind, f.Write.Mutator, f.Write.Index)
		writeRef(f.Adapter)
	}
	binary.LittleEndian.PutUint64(count[:], uint64(len(p.Decls)))
	h.Write(count[:])
	for _, d := range p.Decls {
		write(d.Name, d.TypeName, d.Func, d.Import, len(d.Args))
		for _, a := range d.Args {
			write(a.Name, a.Kind, a.GoType, a.Factory)
			writeRef(a.Ref)
		}
	}
	return h.Sum64()
}

// FingerprintAll combines the fingerprints of plans in order.
func FingerprintAll(plans []*Plan) uint64 {
	h := xxhash.New()
	var buf [8]byte
	for _, p := range plans {
		binary.LittleEndian.PutUint64(buf[:], p.Fingerprint())
		h.Write(buf[:])
	}
	return h.Sum64()
}
