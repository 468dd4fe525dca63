// Package word defines the VM's native integer width and little-endian codec.
package word

import "encoding/binary"

// Word is the VM's native word type: a fixed-width unsigned integer used for
// every register, address, and immediate value.
type Word uint64

// Size is W, the word width in bytes. Registers, stack slots, addresses, and
// immediates are all Size-byte little-endian words.
const Size = 8

// Bytes returns w encoded as Size little-endian bytes.
func (w Word) Bytes() []byte {
	buf := make([]byte, Size)
	binary.LittleEndian.PutUint64(buf, uint64(w))
	return buf
}

// FromBytes decodes a Word from the first Size bytes of b, zero-extending if
// fewer than Size bytes are available.
func FromBytes(b []byte) Word {
	var buf [Size]byte
	copy(buf[:], b)
	return Word(binary.LittleEndian.Uint64(buf[:]))
}

// AsInt converts w to an int, for use as a slice index or loop bound.
// Truncates on platforms where int is narrower than 64 bits; RAM_LEN is far
// below that boundary in practice so this is not a safe-conversion concern
// the way vm/safeconv.go's ARM32 narrowing checks were.
func (w Word) AsInt() int {
	return int(w)
}
