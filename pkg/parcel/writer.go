// Package parcel is the runtime used by code generated by parcelgen.
//
// A parcel is a stream of 4-byte little-endian words. Booleans, bytes,
// shorts, chars, ints and floats take one word; longs and doubles take two.
// Strings are a byte-length word (-1 when absent) followed by UTF-8 bytes
// padded to a word boundary. Nullable values whose adapter cannot represent
// absence are preceded by a presence tag word, TagPresent or TagAbsent.
//
// Writer and Reader keep the first error they encounter; later calls are
// no-ops, so generated code checks Err once at the end.
package parcel

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Presence tags written before nullable values.
const (
	TagPresent int32 = 0
	TagAbsent  int32 = 1
)

const (
	wordSize = 4
	absent   = -1
)

var (
	// ErrShortBuffer is returned when a read runs past the end of the parcel.
	ErrShortBuffer = errors.New("parcel: short buffer")
	// ErrCorrupt is returned for values no writer produces.
	ErrCorrupt = errors.New("parcel: corrupt data")
)

// Writer appends values to a parcel.
type Writer struct {
	buf []byte
	err error
}

// NewWriter returns an empty writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Bytes returns the encoded parcel.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return len(w.buf)
}

// Err returns the first error recorded by the writer.
func (w *Writer) Err() error {
	return w.err
}

// Fail records err unless an error is already recorded.
func (w *Writer) Fail(err error) {
	if w.err == nil && err != nil {
		w.err = err
	}
}

// WriteInt32 writes one word.
func (w *Writer) WriteInt32(v int32) {
	if w.err != nil {
		return
	}
	w.buf = binary.LittleEndian.AppendUint32(w.buf, uint32(v))
}

// WriteInt64 writes two words.
func (w *Writer) WriteInt64(v int64) {
	if w.err != nil {
		return
	}
	w.buf = binary.LittleEndian.AppendUint64(w.buf, uint64(v))
}

// WriteBool writes 1 for true and 0 for false.
func (w *Writer) WriteBool(v bool) {
	if v {
		w.WriteInt32(1)
	} else {
		w.WriteInt32(0)
	}
}

// WriteInt8 writes a byte as one word.
func (w *Writer) WriteInt8(v int8) {
	w.WriteInt32(int32(v))
}

// WriteInt16 writes a short as one word.
func (w *Writer) WriteInt16(v int16) {
	w.WriteInt32(int32(v))
}

// WriteChar writes a character as its code point.
func (w *Writer) WriteChar(v rune) {
	w.WriteInt32(v)
}

// WriteFloat32 writes the IEEE 754 bits of v as one word.
func (w *Writer) WriteFloat32(v float32) {
	w.WriteInt32(int32(math.Float32bits(v)))
}

// WriteFloat64 writes the IEEE 754 bits of v as two words.
func (w *Writer) WriteFloat64(v float64) {
	w.WriteInt64(int64(math.Float64bits(v)))
}

// WriteTag writes the presence tag for a nullable value.
func (w *Writer) WriteTag(present bool) {
	if present {
		w.WriteInt32(TagPresent)
	} else {
		w.WriteInt32(TagAbsent)
	}
}

// WriteLength writes a container length; n < 0 marks an absent container.
func (w *Writer) WriteLength(n int) {
	if n > math.MaxInt32 {
		w.Fail(fmt.Errorf("parcel: length %d overflows a word", n))
		return
	}
	if n < 0 {
		n = absent
	}
	w.WriteInt32(int32(n))
}

// WriteString writes s as a length-prefixed, padded byte sequence.
func (w *Writer) WriteString(s string) {
	w.WriteLength(len(s))
	w.writePadded([]byte(s))
}

// WriteStringPtr writes *s, or an absent length for nil.
func (w *Writer) WriteStringPtr(s *string) {
	if s == nil {
		w.WriteLength(absent)
		return
	}
	w.WriteString(*s)
}

// WriteBytes writes b as a length-prefixed, padded byte sequence. A nil
// slice is written as absent.
func (w *Writer) WriteBytes(b []byte) {
	if b == nil {
		w.WriteLength(absent)
		return
	}
	w.WriteLength(len(b))
	w.writePadded(b)
}

func (w *Writer) writePadded(b []byte) {
	if w.err != nil {
		return
	}
	w.buf = append(w.buf, b...)
	if rem := len(b) % wordSize; rem != 0 {
		w.buf = append(w.buf, make([]byte, wordSize-rem)...)
	}
}

func (w *Writer) writeRaw(b []byte) {
	if w.err != nil {
		return
	}
	w.buf = append(w.buf, b...)
}
