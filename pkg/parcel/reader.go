package parcel

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Reader consumes values from a parcel in the order they were written.
type Reader struct {
	buf []byte
	pos int
	err error
}

// NewReader returns a reader over data.
func NewReader(data []byte) *Reader {
	return &Reader{buf: data}
}

// Err returns the first error recorded by the reader.
func (r *Reader) Err() error {
	return r.err
}

// Fail records err unless an error is already recorded.
func (r *Reader) Fail(err error) {
	if r.err == nil && err != nil {
		r.err = err
	}
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.pos
}

func (r *Reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.Remaining() < n {
		r.Fail(fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrShortBuffer, n, r.pos, r.Remaining()))
		return nil
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b
}

// ReadInt32 reads one word.
func (r *Reader) ReadInt32() int32 {
	b := r.take(wordSize)
	if b == nil {
		return 0
	}
	return int32(binary.LittleEndian.Uint32(b))
}

// ReadInt64 reads two words.
func (r *Reader) ReadInt64() int64 {
	b := r.take(2 * wordSize)
	if b == nil {
		return 0
	}
	return int64(binary.LittleEndian.Uint64(b))
}

// ReadBool reads a word written by WriteBool.
func (r *Reader) ReadBool() bool {
	return r.ReadInt32() != 0
}

// ReadInt8 reads a byte.
func (r *Reader) ReadInt8() int8 {
	return int8(r.ReadInt32())
}

// ReadInt16 reads a short.
func (r *Reader) ReadInt16() int16 {
	return int16(r.ReadInt32())
}

// ReadChar reads a character.
func (r *Reader) ReadChar() rune {
	return r.ReadInt32()
}

// ReadFloat32 reads a float.
func (r *Reader) ReadFloat32() float32 {
	return math.Float32frombits(uint32(r.ReadInt32()))
}

// ReadFloat64 reads a double.
func (r *Reader) ReadFloat64() float64 {
	return math.Float64frombits(uint64(r.ReadInt64()))
}

// ReadTag reads a presence tag and reports whether a value follows.
func (r *Reader) ReadTag() bool {
	switch tag := r.ReadInt32(); tag {
	case TagPresent:
		return r.err == nil
	case TagAbsent:
		return false
	default:
		r.Fail(fmt.Errorf("%w: presence tag %d", ErrCorrupt, tag))
		return false
	}
}

// ReadLength reads a container length. It returns -1 for an absent
// container.
func (r *Reader) ReadLength() int {
	n := r.ReadInt32()
	if r.err != nil {
		return absent
	}
	if n < absent {
		r.Fail(fmt.Errorf("%w: length %d", ErrCorrupt, n))
		return absent
	}
	return int(n)
}

// ReadString reads a string. An absent string reads as "".
func (r *Reader) ReadString() string {
	s := r.ReadStringPtr()
	if s == nil {
		return ""
	}
	return *s
}

// ReadStringPtr reads a string written by WriteStringPtr.
func (r *Reader) ReadStringPtr() *string {
	b := r.readPadded()
	if b == nil {
		return nil
	}
	s := string(b)
	return &s
}

// ReadBytes reads a byte slice written by WriteBytes.
func (r *Reader) ReadBytes() []byte {
	b := r.readPadded()
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

func (r *Reader) readPadded() []byte {
	n := r.ReadLength()
	if n < 0 {
		return nil
	}
	padded := (n + wordSize - 1) / wordSize * wordSize
	b := r.take(padded)
	if b == nil {
		return nil
	}
	return b[:n]
}

// capacity bounds the preallocation for a container of n elements so a
// corrupt length cannot force a huge allocation.
func (r *Reader) capacity(n int) int {
	if limit := r.Remaining()/wordSize + 1; n > limit {
		return limit
	}
	return n
}
