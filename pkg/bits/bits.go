// Package bits reads and writes little-endian bit-packed integers at
// arbitrary bit offsets. HID reports pack fields back to back without byte
// alignment, so a field may start in the middle of one byte and end in the
// middle of another.
package bits

// Bit n of a buffer lives in byte n/8 at position n%8, matching the HID
// report wire layout.

// Read extracts size bits starting at the given bit offset and returns them
// as an unsigned integer. size must be between 0 and 32. Bits beyond the end
// of data read as zero.
func Read(data []byte, offset, size int) uint32 {
	var v uint32
	for i := 0; i < size; i++ {
		bit := offset + i
		idx := bit / 8
		if idx >= len(data) {
			break
		}
		if data[idx]&(1<<(bit%8)) != 0 {
			v |= 1 << i
		}
	}
	return v
}

// ReadSigned extracts size bits starting at offset and sign-extends the
// result from its most significant bit.
func ReadSigned(data []byte, offset, size int) int32 {
	return SignExtend(Read(data, offset, size), size)
}

// Write stores the low size bits of value starting at the given bit offset.
// Bits outside the field are left untouched. Writes beyond the end of data
// are dropped.
func Write(data []byte, offset, size int, value uint32) {
	for i := 0; i < size; i++ {
		bit := offset + i
		idx := bit / 8
		if idx >= len(data) {
			return
		}
		mask := byte(1) << (bit % 8)
		if value&(1<<i) != 0 {
			data[idx] |= mask
		} else {
			data[idx] &^= mask
		}
	}
}

// SignExtend interprets the low size bits of value as a two's-complement
// integer.
func SignExtend(value uint32, size int) int32 {
	if size <= 0 || size >= 32 {
		return int32(value)
	}
	if value&(1<<(size-1)) != 0 {
		value |= ^uint32(0) << size
	}
	return int32(value)
}

// Truncate keeps the low size bits of the two's-complement encoding of
// value. Truncate and SignExtend are inverses for values representable in
// size bits.
func Truncate(value int32, size int) uint32 {
	if size <= 0 || size >= 32 {
		return uint32(value)
	}
	return uint32(value) & (1<<size - 1)
}
