package binary

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"unicode/utf8"

	"github.com/wippyai/wasm-inspect/errors"
)

// Reader is a forward cursor over a seekable byte source with position tracking
// and WASM-specific read methods. One Reader belongs to one decode.
type Reader struct {
	r    *bufio.Reader
	pos  int64
	size int64
}

// New creates a Reader over the first size bytes of src.
// Files and in-memory buffers both satisfy io.ReaderAt.
func New(src io.ReaderAt, size int64) *Reader {
	return &Reader{
		r:    bufio.NewReader(io.NewSectionReader(src, 0, size)),
		size: size,
	}
}

// FromBytes creates a Reader over an in-memory buffer.
func FromBytes(data []byte) *Reader {
	return New(bytes.NewReader(data), int64(len(data)))
}

// Position returns the current byte position.
func (r *Reader) Position() int64 {
	return r.pos
}

// Since returns the number of bytes consumed since mark.
func (r *Reader) Since(mark int64) int64 {
	return r.pos - mark
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int64 {
	return r.size - r.pos
}

// Len returns the total size of the source.
func (r *Reader) Len() int64 {
	return r.size
}

// ReadByte reads a single byte and advances the position.
func (r *Reader) ReadByte() (byte, error) {
	if r.pos >= r.size {
		return 0, errors.UnexpectedEOF(r.pos, 1, 0)
	}
	b, err := r.r.ReadByte()
	if err != nil {
		return 0, r.short(1, err)
	}
	r.pos++
	return b, nil
}

// ReadU8 is ReadByte under the fixed-width naming.
func (r *Reader) ReadU8() (uint8, error) {
	return r.ReadByte()
}

// ReadBytes reads exactly n bytes.
func (r *Reader) ReadBytes(n int64) ([]byte, error) {
	if n < 0 || n > r.Remaining() {
		return nil, errors.UnexpectedEOF(r.pos, n, r.Remaining())
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		return nil, r.short(n, err)
	}
	r.pos += n
	return buf, nil
}

// ReadU16 reads a little-endian uint16.
func (r *Reader) ReadU16() (uint16, error) {
	buf, err := r.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf), nil
}

// ReadU32 reads a little-endian uint32 (fixed 4 bytes).
func (r *Reader) ReadU32() (uint32, error) {
	buf, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf), nil
}

// ReadU64 reads a little-endian uint64 (fixed 8 bytes).
func (r *Reader) ReadU64() (uint64, error) {
	buf, err := r.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf), nil
}

// ReadF32 reads a little-endian IEEE-754 float32.
func (r *Reader) ReadF32() (float32, error) {
	bits, err := r.ReadU32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(bits), nil
}

// ReadF64 reads a little-endian IEEE-754 float64.
func (r *Reader) ReadF64() (float64, error) {
	bits, err := r.ReadU64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(bits), nil
}

// ReadName reads a UTF-8 encoded name (varuint32 length-prefixed byte sequence).
func (r *Reader) ReadName() (string, error) {
	s, _, err := r.ReadNameLen()
	return s, err
}

// ReadNameLen is ReadName that also reports the total bytes consumed,
// length prefix included.
func (r *Reader) ReadNameLen() (string, int64, error) {
	start := r.pos
	length, _, err := r.ReadVarUint(32)
	if err != nil {
		return "", r.Since(start), err
	}
	at := r.pos
	data, err := r.ReadBytes(int64(length))
	if err != nil {
		return "", r.Since(start), err
	}
	if !utf8.Valid(data) {
		return "", r.Since(start), errors.InvalidUTF8(at, data)
	}
	return string(data), r.Since(start), nil
}

func (r *Reader) short(want int64, cause error) error {
	e := errors.UnexpectedEOF(r.pos, want, r.Remaining())
	if cause != io.EOF && cause != io.ErrUnexpectedEOF {
		e.Cause = cause
	}
	return e
}
