package binary

import "github.com/wippyai/wasm-inspect/errors"

// MaxVarintLen returns the maximum number of LEB128 bytes for a value of maxBits.
func MaxVarintLen(maxBits int) int {
	return (maxBits + 6) / 7
}

// ReadVarUint reads an unsigned LEB128 value of at most maxBits bits and
// reports how many bytes it occupied.
//
// More than MaxVarintLen(maxBits) bytes, or set bits above maxBits in the final
// byte, fail with KindVarintTooLong.
func (r *Reader) ReadVarUint(maxBits int) (uint64, int, error) {
	start := r.pos
	maxBytes := MaxVarintLen(maxBits)
	var result uint64
	var shift uint
	for n := 1; ; n++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, n - 1, err
		}
		if n == maxBytes {
			if b&0x80 != 0 {
				return 0, n, errors.VarintTooLong(start, maxBits, "encoding exceeds maximum length")
			}
			if used := maxBits - 7*(maxBytes-1); used < 7 && b>>used != 0 {
				return 0, n, errors.VarintTooLong(start, maxBits, "unused bits set in final byte")
			}
		}
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, n, nil
		}
		shift += 7
	}
}

// ReadVarInt reads a signed LEB128 value of at most maxBits bits and reports
// how many bytes it occupied. The result is sign-extended to 64 bits.
func (r *Reader) ReadVarInt(maxBits int) (int64, int, error) {
	start := r.pos
	maxBytes := MaxVarintLen(maxBits)
	var result int64
	var shift uint
	for n := 1; ; n++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, n - 1, err
		}
		if n == maxBytes {
			if b&0x80 != 0 {
				return 0, n, errors.VarintTooLong(start, maxBits, "encoding exceeds maximum length")
			}
			// bits from the sign bit of the value upward must all agree
			if used := maxBits - 7*(maxBytes-1); used < 7 {
				mask := byte(0x7f>>(used-1)) << (used - 1)
				if s := b & mask; s != 0 && s != mask {
					return 0, n, errors.VarintTooLong(start, maxBits, "unused bits do not match sign")
				}
			}
		}
		result |= int64(b&0x7f) << shift
		shift += 7
		if b&0x80 == 0 {
			if shift < 64 && b&0x40 != 0 {
				result |= ^int64(0) << shift
			}
			return result, n, nil
		}
	}
}

// ReadVarUint1 reads a varuint1 flag.
func (r *Reader) ReadVarUint1() (bool, error) {
	v, _, err := r.ReadVarUint(1)
	return v != 0, err
}

// ReadVarUint7 reads a varuint7, used for section ids and type tags.
func (r *Reader) ReadVarUint7() (byte, error) {
	v, _, err := r.ReadVarUint(7)
	return byte(v), err
}

// ReadVarUint32 reads a varuint32, used for counts, lengths and indices.
func (r *Reader) ReadVarUint32() (uint32, error) {
	v, _, err := r.ReadVarUint(32)
	return uint32(v), err
}

// ReadVarInt7 reads a varint7.
func (r *Reader) ReadVarInt7() (int8, error) {
	v, _, err := r.ReadVarInt(7)
	return int8(v), err
}

// ReadVarInt32 reads a varint32.
func (r *Reader) ReadVarInt32() (int32, error) {
	v, _, err := r.ReadVarInt(32)
	return int32(v), err
}

// ReadVarInt64 reads a varint64.
func (r *Reader) ReadVarInt64() (int64, error) {
	v, _, err := r.ReadVarInt(64)
	return v, err
}
