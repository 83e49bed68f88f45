package fields

import (
	"github.com/conduit-lang/parcelgen/internal/compiler/types"
)

// ReadKind is how generated code obtains a field value.
type ReadKind int

const (
	// ReadDirect reads the field itself.
	ReadDirect ReadKind = iota
	// ReadAccessor calls a getter.
	ReadAccessor
	// ReadReflect reads through the runtime's reflective accessor.
	ReadReflect
)

func (k ReadKind) String() string {
	switch k {
	case ReadAccessor:
		return "accessor"
	case ReadReflect:
		return "reflect"
	default:
		return "direct"
	}
}

func (k ReadKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// WriteKind is how generated code stores a decoded field value.
type WriteKind int

const (
	// WriteConstructor passes the value as a constructor argument.
	WriteConstructor WriteKind = iota
	// WriteDirect assigns the field itself.
	WriteDirect
	// WriteMutator calls a setter.
	WriteMutator
	// WriteReflect assigns through the runtime's reflective accessor.
	WriteReflect
)

func (k WriteKind) String() string {
	switch k {
	case WriteDirect:
		return "direct"
	case WriteMutator:
		return "mutator"
	case WriteReflect:
		return "reflect"
	default:
		return "constructor"
	}
}

func (k WriteKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ReadInfo describes the read strategy for one field.
type ReadInfo struct {
	Kind     ReadKind `json:"kind"`
	Accessor string   `json:"accessor,omitempty"`
}

// WriteInfo describes the write strategy for one field. Index is the
// constructor argument position for WriteConstructor.
type WriteInfo struct {
	Kind    WriteKind `json:"kind"`
	Mutator string    `json:"mutator,omitempty"`
	Index   int       `json:"index,omitempty"`
}

// Field is one analysed field.
type Field struct {
	Name      string
	Type      types.Type
	Boxed     types.Type
	Primitive bool
	Nullable  bool
	Read      ReadInfo
	Write     WriteInfo
	Line      int
}

// ConstructKind selects how a decoded value is materialized.
type ConstructKind int

const (
	// ConstructLiteral builds a zero value and assigns every field afterwards.
	ConstructLiteral ConstructKind = iota
	// ConstructCall calls a constructor function.
	ConstructCall
	// ConstructSingleton returns the type's shared instance.
	ConstructSingleton
)

func (k ConstructKind) String() string {
	switch k {
	case ConstructCall:
		return "call"
	case ConstructSingleton:
		return "singleton"
	default:
		return "literal"
	}
}

func (k ConstructKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Construction is the chosen construction recipe. Args lists field names in
// constructor parameter order.
type Construction struct {
	Kind ConstructKind `json:"kind"`
	Func string        `json:"func,omitempty"`
	Args []string      `json:"args,omitempty"`
}

// Model is the analysed form of a type. Fields keep declaration order.
type Model struct {
	Type         string
	Fields       []*Field
	Construction Construction
	File         string
	Line         int
}

// Field returns the named field.
func (m *Model) Field(name string) (*Field, bool) {
	for _, f := range m.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// Reflective returns the names of fields read or written via reflection.
func (m *Model) Reflective() []string {
	var names []string
	for _, f := range m.Fields {
		if f.Read.Kind == ReadReflect || f.Write.Kind == WriteReflect {
			names = append(names, f.Name)
		}
	}
	return names
}

// Singleton reports whether decoded values are the shared instance.
func (m *Model) Singleton() bool {
	return m.Construction.Kind == ConstructSingleton
}
