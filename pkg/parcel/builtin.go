package parcel

import (
	"fmt"
	"math/big"
	"sort"
	"time"
)

type scalar[T any] struct {
	write func(*Writer, T)
	read  func(*Reader) T
}

func (a scalar[T]) WriteTo(w *Writer, v T) { a.write(w, v) }
func (a scalar[T]) ReadFrom(r *Reader) T   { return a.read(r) }

// Shared adapters for boxed scalars and strings.
var (
	StringAdapter       Adapter[string]  = scalar[string]{(*Writer).WriteString, (*Reader).ReadString}
	CharSequenceAdapter Adapter[string]  = scalar[string]{(*Writer).WriteString, (*Reader).ReadString}
	IntegerAdapter      Adapter[int32]   = scalar[int32]{(*Writer).WriteInt32, (*Reader).ReadInt32}
	ShortAdapter        Adapter[int16]   = scalar[int16]{(*Writer).WriteInt16, (*Reader).ReadInt16}
	LongAdapter         Adapter[int64]   = scalar[int64]{(*Writer).WriteInt64, (*Reader).ReadInt64}
	FloatAdapter        Adapter[float32] = scalar[float32]{(*Writer).WriteFloat32, (*Reader).ReadFloat32}
	DoubleAdapter       Adapter[float64] = scalar[float64]{(*Writer).WriteFloat64, (*Reader).ReadFloat64}
	BooleanAdapter      Adapter[bool]    = scalar[bool]{(*Writer).WriteBool, (*Reader).ReadBool}
	ByteAdapter         Adapter[int8]    = scalar[int8]{(*Writer).WriteInt8, (*Reader).ReadInt8}
	CharacterAdapter    Adapter[rune]    = scalar[rune]{(*Writer).WriteChar, (*Reader).ReadChar}
)

// primitiveArray encodes nil as an absent length, so it needs no presence tag.
type primitiveArray[T any] struct {
	elem scalar[T]
}

func (a primitiveArray[T]) WriteTo(w *Writer, v []T) {
	if v == nil {
		w.WriteLength(absent)
		return
	}
	w.WriteLength(len(v))
	for _, e := range v {
		a.elem.write(w, e)
	}
}

func (a primitiveArray[T]) ReadFrom(r *Reader) []T {
	n := r.ReadLength()
	if n < 0 {
		return nil
	}
	out := make([]T, 0, r.capacity(n))
	for i := 0; i < n && r.Err() == nil; i++ {
		out = append(out, a.elem.read(r))
	}
	return out
}

func arrayOf[T any](elem Adapter[T]) primitiveArray[T] {
	return primitiveArray[T]{elem: elem.(scalar[T])}
}

// Shared adapters for primitive arrays. They are null-safe.
var (
	BooleanArrayAdapter Adapter[[]bool]    = arrayOf(BooleanAdapter)
	IntArrayAdapter     Adapter[[]int32]   = arrayOf(IntegerAdapter)
	LongArrayAdapter    Adapter[[]int64]   = arrayOf(LongAdapter)
	CharArrayAdapter    Adapter[[]rune]    = arrayOf(CharacterAdapter)
	FloatArrayAdapter   Adapter[[]float32] = arrayOf(FloatAdapter)
	DoubleArrayAdapter  Adapter[[]float64] = arrayOf(DoubleAdapter)
	ShortArrayAdapter   Adapter[[]int16]   = arrayOf(ShortAdapter)
	ByteArrayAdapter    Adapter[[]int8]    = byteArray{}
)

// byteArray packs bytes four to a word.
type byteArray struct{}

func (byteArray) WriteTo(w *Writer, v []int8) {
	if v == nil {
		w.WriteBytes(nil)
		return
	}
	b := make([]byte, len(v))
	for i, e := range v {
		b[i] = byte(e)
	}
	w.WriteBytes(b)
}

func (byteArray) ReadFrom(r *Reader) []int8 {
	b := r.ReadBytes()
	if b == nil {
		return nil
	}
	out := make([]int8, len(b))
	for i, e := range b {
		out[i] = int8(e)
	}
	return out
}

// SparseBooleanArrayAdapter is null-safe. Keys are written in ascending order.
var SparseBooleanArrayAdapter Adapter[map[int32]bool] = sparseBooleanArray{}

type sparseBooleanArray struct{}

func (sparseBooleanArray) WriteTo(w *Writer, v map[int32]bool) {
	if v == nil {
		w.WriteLength(absent)
		return
	}
	w.WriteLength(len(v))
	for _, k := range sortedKeys(v) {
		w.WriteInt32(k)
		w.WriteBool(v[k])
	}
}

func (sparseBooleanArray) ReadFrom(r *Reader) map[int32]bool {
	n := r.ReadLength()
	if n < 0 {
		return nil
	}
	out := make(map[int32]bool, r.capacity(n))
	for i := 0; i < n && r.Err() == nil; i++ {
		k := r.ReadInt32()
		out[k] = r.ReadBool()
	}
	return out
}

func sortedKeys[V any](m map[int32]V) []int32 {
	keys := make([]int32, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// BigIntegerAdapter writes the decimal text of the value. Nil is written as
// an absent string.
var BigIntegerAdapter Adapter[*big.Int] = bigInteger{}

type bigInteger struct{}

func (bigInteger) WriteTo(w *Writer, v *big.Int) {
	if v == nil {
		w.WriteStringPtr(nil)
		return
	}
	w.WriteString(v.Text(10))
}

func (bigInteger) ReadFrom(r *Reader) *big.Int {
	s := r.ReadStringPtr()
	if s == nil {
		return nil
	}
	v, ok := new(big.Int).SetString(*s, 10)
	if !ok {
		r.Fail(fmt.Errorf("%w: big integer %q", ErrCorrupt, *s))
		return nil
	}
	return v
}

// BigDecimalAdapter writes the exact fraction of the value. Nil is written as
// an absent string.
var BigDecimalAdapter Adapter[*big.Rat] = bigDecimal{}

type bigDecimal struct{}

func (bigDecimal) WriteTo(w *Writer, v *big.Rat) {
	if v == nil {
		w.WriteStringPtr(nil)
		return
	}
	w.WriteString(v.RatString())
}

func (bigDecimal) ReadFrom(r *Reader) *big.Rat {
	s := r.ReadStringPtr()
	if s == nil {
		return nil
	}
	v, ok := new(big.Rat).SetString(*s)
	if !ok {
		r.Fail(fmt.Errorf("%w: big decimal %q", ErrCorrupt, *s))
		return nil
	}
	return v
}

// DateAdapter writes milliseconds since the Unix epoch. Values read back are
// in UTC.
var DateAdapter Adapter[time.Time] = date{}

type date struct{}

func (date) WriteTo(w *Writer, v time.Time) {
	w.WriteInt64(v.UnixMilli())
}

func (date) ReadFrom(r *Reader) time.Time {
	return time.UnixMilli(r.ReadInt64()).UTC()
}
