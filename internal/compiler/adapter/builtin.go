package adapter

// RuntimeImport is the import path of the parcel runtime the builtin
// adapters live in.
const RuntimeImport = "github.com/conduit-lang/parcelgen/pkg/parcel"

func singleton(name, adapts string, valueType bool) Spec {
	return Spec{
		Name:      "parcel." + name,
		GoExpr:    "parcel." + name,
		Import:    RuntimeImport,
		Adapts:    adapts,
		Singleton: true,
		ValueType: valueType,
	}
}

func primitiveArray(name, adapts string) Spec {
	s := singleton(name, adapts, false)
	s.NullSafe = true
	return s
}

func container(name, adapts string, params []string, deps ...DependencySpec) Spec {
	return Spec{
		Name:         "parcel." + name,
		GoExpr:       "parcel.New" + name,
		Import:       RuntimeImport,
		TypeParams:   params,
		Adapts:       adapts,
		Dependencies: deps,
	}
}

func enumAdapter() Spec {
	s := container("EnumAdapter", "T", []string{"T extends lang.Enum<T>"},
		DependencySpec{Name: "enumClass", Kind: DependencyClass, Type: "T"})
	s.ValueType = true
	return s
}

func adapterOf(name, typ string) DependencySpec {
	return DependencySpec{Name: name, Kind: DependencyAdapter, Type: typ}
}

// BuiltinSpecs returns the builtin adapter declarations in registry order.
func BuiltinSpecs() []Spec {
	return []Spec{
		singleton("StringAdapter", "lang.String", true),
		singleton("IntegerAdapter", "lang.Integer", true),
		container("MapAdapter", "util.Map<K, V>", []string{"K", "V"},
			adapterOf("keyAdapter", "K"), adapterOf("valueAdapter", "V")),
		container("ParcelableAdapter", "T", []string{"T extends parcel.Parcelable"},
			DependencySpec{Name: "create", Kind: DependencyFactory, Type: "T"}),
		singleton("ShortAdapter", "lang.Short", true),
		singleton("LongAdapter", "lang.Long", true),
		singleton("FloatAdapter", "lang.Float", true),
		singleton("DoubleAdapter", "lang.Double", true),
		singleton("BooleanAdapter", "lang.Boolean", true),
		singleton("ByteAdapter", "lang.Byte", true),
		singleton("CharacterAdapter", "lang.Character", true),
		singleton("CharSequenceAdapter", "lang.CharSequence", true),
		container("ListAdapter", "util.List<T>", []string{"T"}, adapterOf("itemAdapter", "T")),
		container("SparseArrayAdapter", "util.SparseArray<T>", []string{"T"}, adapterOf("itemAdapter", "T")),
		primitiveArray("BooleanArrayAdapter", "boolean[]"),
		primitiveArray("ByteArrayAdapter", "byte[]"),
		primitiveArray("IntArrayAdapter", "int[]"),
		primitiveArray("LongArrayAdapter", "long[]"),
		primitiveArray("CharArrayAdapter", "char[]"),
		primitiveArray("FloatArrayAdapter", "float[]"),
		primitiveArray("DoubleArrayAdapter", "double[]"),
		primitiveArray("ShortArrayAdapter", "short[]"),
		primitiveArray("SparseBooleanArrayAdapter", "util.SparseBooleanArray"),
		container("CollectionAdapter", "util.Collection<T>", []string{"T"}, adapterOf("itemAdapter", "T")),
		container("ArrayAdapter", "T[]", []string{"T"}, adapterOf("componentAdapter", "T")),
		container("SetAdapter", "util.Set<T>", []string{"T"}, adapterOf("itemAdapter", "T")),
		enumAdapter(),
		singleton("BigIntegerAdapter", "math.BigInteger", false),
		singleton("BigDecimalAdapter", "math.BigDecimal", false),
		singleton("DateAdapter", "time.Date", true),
	}
}
