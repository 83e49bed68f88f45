package parcel

import (
	"bytes"
	"fmt"
	"sort"
)

type sliceAdapter[T any] struct {
	item Adapter[T]
}

// NewListAdapter returns an adapter for lists of T. Nil lists are written as
// absent.
func NewListAdapter[T any](item Adapter[T]) Adapter[[]T] {
	return sliceAdapter[T]{item: item}
}

// NewCollectionAdapter returns an adapter for collections of T. Collections
// are held as slices and use the list encoding.
func NewCollectionAdapter[T any](item Adapter[T]) Adapter[[]T] {
	return sliceAdapter[T]{item: item}
}

// NewArrayAdapter returns an adapter for arrays of T.
func NewArrayAdapter[T any](component Adapter[T]) Adapter[[]T] {
	return sliceAdapter[T]{item: component}
}

func (a sliceAdapter[T]) WriteTo(w *Writer, v []T) {
	if v == nil {
		w.WriteLength(absent)
		return
	}
	w.WriteLength(len(v))
	for _, e := range v {
		a.item.WriteTo(w, e)
	}
}

func (a sliceAdapter[T]) ReadFrom(r *Reader) []T {
	n := r.ReadLength()
	if n < 0 {
		return nil
	}
	out := make([]T, 0, r.capacity(n))
	for i := 0; i < n && r.Err() == nil; i++ {
		out = append(out, a.item.ReadFrom(r))
	}
	return out
}

type setAdapter[T comparable] struct {
	item Adapter[T]
}

// NewSetAdapter returns an adapter for sets of T. Elements are written in the
// byte order of their encoding, so equal sets encode to equal bytes.
func NewSetAdapter[T comparable](item Adapter[T]) Adapter[map[T]struct{}] {
	return setAdapter[T]{item: item}
}

func (a setAdapter[T]) WriteTo(w *Writer, v map[T]struct{}) {
	if v == nil {
		w.WriteLength(absent)
		return
	}
	elems := make([]T, 0, len(v))
	for e := range v {
		elems = append(elems, e)
	}
	w.WriteLength(len(v))
	for _, e := range encodeSorted(w, a.item, elems) {
		w.writeRaw(e.data)
	}
}

func (a setAdapter[T]) ReadFrom(r *Reader) map[T]struct{} {
	n := r.ReadLength()
	if n < 0 {
		return nil
	}
	out := make(map[T]struct{}, r.capacity(n))
	for i := 0; i < n && r.Err() == nil; i++ {
		out[a.item.ReadFrom(r)] = struct{}{}
	}
	return out
}

type mapAdapter[K comparable, V any] struct {
	key   Adapter[K]
	value Adapter[V]
}

// NewMapAdapter returns an adapter for maps from K to V. Each entry is its key
// followed by its value. Entries are written in the byte order of their
// encoded keys, so equal maps encode to equal bytes.
func NewMapAdapter[K comparable, V any](key Adapter[K], value Adapter[V]) Adapter[map[K]V] {
	return mapAdapter[K, V]{key: key, value: value}
}

func (a mapAdapter[K, V]) WriteTo(w *Writer, v map[K]V) {
	if v == nil {
		w.WriteLength(absent)
		return
	}
	keys := make([]K, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	w.WriteLength(len(v))
	for _, k := range encodeSorted(w, a.key, keys) {
		w.writeRaw(k.data)
		a.value.WriteTo(w, v[k.value])
	}
}

func (a mapAdapter[K, V]) ReadFrom(r *Reader) map[K]V {
	n := r.ReadLength()
	if n < 0 {
		return nil
	}
	out := make(map[K]V, r.capacity(n))
	for i := 0; i < n && r.Err() == nil; i++ {
		k := a.key.ReadFrom(r)
		out[k] = a.value.ReadFrom(r)
	}
	return out
}

type encoded[T any] struct {
	value T
	data  []byte
}

// encodeSorted encodes each value on its own and orders the results by
// their bytes. Encoding errors are recorded on w.
func encodeSorted[T any](w *Writer, a Adapter[T], values []T) []encoded[T] {
	out := make([]encoded[T], 0, len(values))
	for _, v := range values {
		ew := NewWriter()
		a.WriteTo(ew, v)
		if err := ew.Err(); err != nil {
			w.Fail(err)
			return nil
		}
		out = append(out, encoded[T]{value: v, data: ew.Bytes()})
	}
	sort.Slice(out, func(i, j int) bool { return bytes.Compare(out[i].data, out[j].data) < 0 })
	return out
}

type sparseArrayAdapter[T any] struct {
	item Adapter[T]
}

// NewSparseArrayAdapter returns an adapter for sparse arrays of T. Keys are
// written in ascending order.
func NewSparseArrayAdapter[T any](item Adapter[T]) Adapter[map[int32]T] {
	return sparseArrayAdapter[T]{item: item}
}

func (a sparseArrayAdapter[T]) WriteTo(w *Writer, v map[int32]T) {
	if v == nil {
		w.WriteLength(absent)
		return
	}
	w.WriteLength(len(v))
	for _, k := range sortedKeys(v) {
		w.WriteInt32(k)
		a.item.WriteTo(w, v[k])
	}
}

func (a sparseArrayAdapter[T]) ReadFrom(r *Reader) map[int32]T {
	n := r.ReadLength()
	if n < 0 {
		return nil
	}
	out := make(map[int32]T, r.capacity(n))
	for i := 0; i < n && r.Err() == nil; i++ {
		k := r.ReadInt32()
		out[k] = a.item.ReadFrom(r)
	}
	return out
}

// Enum is satisfied by enumerations declared as int32 ordinals.
type Enum interface {
	~int32
}

type enumAdapter[T Enum] struct{}

// NewEnumAdapter returns an adapter that writes enum values as their ordinal.
func NewEnumAdapter[T Enum]() Adapter[T] {
	return enumAdapter[T]{}
}

func (enumAdapter[T]) WriteTo(w *Writer, v T) {
	w.WriteInt32(int32(v))
}

func (enumAdapter[T]) ReadFrom(r *Reader) T {
	n := r.ReadInt32()
	if n < 0 {
		r.Fail(fmt.Errorf("%w: enum ordinal %d", ErrCorrupt, n))
		return 0
	}
	return T(n)
}

type parcelableAdapter[T Parcelable] struct {
	create func(*Reader) T
}

// NewParcelableAdapter returns an adapter for a type that encodes itself.
// create reads a value written by WriteToParcel.
func NewParcelableAdapter[T Parcelable](create func(*Reader) T) Adapter[T] {
	return parcelableAdapter[T]{create: create}
}

func (a parcelableAdapter[T]) WriteTo(w *Writer, v T) {
	v.WriteToParcel(w)
}

func (a parcelableAdapter[T]) ReadFrom(r *Reader) T {
	return a.create(r)
}
