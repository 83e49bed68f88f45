package parcel

import (
	"fmt"
	"reflect"
)

// Adapter writes values of T to a parcel and reads them back.
type Adapter[T any] interface {
	WriteTo(w *Writer, v T)
	ReadFrom(r *Reader) T
}

// Parcelable is implemented by hand-written types that encode themselves.
type Parcelable interface {
	WriteToParcel(w *Writer)
}

// Marshal encodes v with a.
func Marshal[T any](a Adapter[T], v T) ([]byte, error) {
	w := NewWriter()
	a.WriteTo(w, v)
	if err := w.Err(); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// Unmarshal decodes data with a. Trailing bytes are an error.
func Unmarshal[T any](a Adapter[T], data []byte) (T, error) {
	r := NewReader(data)
	v := a.ReadFrom(r)
	if err := r.Err(); err != nil {
		var zero T
		return zero, err
	}
	if n := r.Remaining(); n > 0 {
		var zero T
		return zero, fmt.Errorf("%w: %d trailing bytes", ErrCorrupt, n)
	}
	return v, nil
}

type nullSafe[T any] struct {
	inner Adapter[T]
}

// NullSafe wraps a with a presence tag so nil values survive a round trip.
// Values of non-nillable types are always written as present.
func NullSafe[T any](a Adapter[T]) Adapter[T] {
	if _, ok := a.(nullSafe[T]); ok {
		return a
	}
	return nullSafe[T]{inner: a}
}

func (a nullSafe[T]) WriteTo(w *Writer, v T) {
	if isNil(v) {
		w.WriteTag(false)
		return
	}
	w.WriteTag(true)
	a.inner.WriteTo(w, v)
}

func (a nullSafe[T]) ReadFrom(r *Reader) T {
	if !r.ReadTag() {
		var zero T
		return zero
	}
	return a.inner.ReadFrom(r)
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// WriteNullable writes a tagged value held through a pointer.
func WriteNullable[T any](w *Writer, v *T, a Adapter[T]) {
	if v == nil {
		w.WriteTag(false)
		return
	}
	w.WriteTag(true)
	a.WriteTo(w, *v)
}

// ReadNullable reads a value written by WriteNullable.
func ReadNullable[T any](r *Reader, a Adapter[T]) *T {
	if !r.ReadTag() {
		return nil
	}
	v := a.ReadFrom(r)
	return &v
}

// WriteTagged writes a presence tag followed by v when present.
func WriteTagged[T any](w *Writer, v T, present bool, a Adapter[T]) {
	w.WriteTag(present)
	if present {
		a.WriteTo(w, v)
	}
}

// ReadTagged reads a value written by WriteTagged. Absent values read as the
// zero value of T.
func ReadTagged[T any](r *Reader, a Adapter[T]) T {
	if !r.ReadTag() {
		var zero T
		return zero
	}
	return a.ReadFrom(r)
}
