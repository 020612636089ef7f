// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package ion

import (
	"encoding/binary"
	"math/bits"
)

// Ion 1.1 encodes VarUInts with a trailing-zero length prefix:
// the number of trailing zero bits in the first byte gives the
// number of continuation bytes that follow it; a 1 bit marks the
// final byte of the encoding. This lets the decoder determine the
// length from a single byte instead of scanning for a high-bit
// terminator.

// bytesNeeded11[leadingZeros] gives the number of bytes required
// to encode a u64 value with that many leading zero bits, mirroring
// BYTES_NEEDED_CACHE in the reference VarUInt 1.1 implementation.
var bytesNeeded11 = func() [65]byte {
	var cache [65]byte
	for lz := 0; lz < 64; lz++ {
		bits := 64 - lz
		cache[lz] = byte((bits + 6) / 7)
	}
	cache[64] = 1
	return cache
}()

// varUint11Size returns the number of bytes needed to encode
// value as an Ion 1.1 VarUInt. It always agrees with
// varUint10Size for the same value.
func varUint11Size(value uint64) int {
	if value < 0x80 {
		return 1
	}
	if value < 0x4000 {
		return 2
	}
	return int(bytesNeeded11[bits.LeadingZeros64(value)])
}

// writeVarUint11 appends the Ion 1.1 VarUInt encoding of value to
// dst and returns the extended slice.
func writeVarUint11(dst []byte, value uint64) []byte {
	if value < 0x80 {
		return append(dst, byte(value<<1)|1)
	}
	if value < 0x4000 {
		var b [2]byte
		binary.LittleEndian.PutUint16(b[:], uint16(value<<2)|2)
		return append(dst, b[:]...)
	}
	n := int(bytesNeeded11[bits.LeadingZeros64(value)])
	switch {
	case n <= 8:
		flag := uint64(1) << (n - 1)
		encoded := (value << uint(n)) | flag
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], encoded)
		return append(dst, b[:n]...)
	case n == 9:
		var b [9]byte
		encoded := (value << 1) | 1
		binary.LittleEndian.PutUint64(b[1:], encoded)
		return append(dst, b[:]...)
	default: // n == 10
		var b [10]byte
		b[1] = byte((value&0x3f)<<2) | 0b10
		binary.LittleEndian.PutUint64(b[2:], value>>6)
		return append(dst, b[:]...)
	}
}

// readVarUint11 reads an Ion 1.1 VarUInt from the front of buf.
// It returns the number of bytes consumed and the decoded value.
func readVarUint11(buf []byte) (size int, value uint64, err error) {
	if len(buf) == 0 {
		return 0, 0, incompleteErr(0, "VarUInt 1.1: empty input")
	}
	b0 := buf[0]
	if b0 != 0x00 {
		n := bits.TrailingZeros8(b0) + 1
		if len(buf) < n {
			return 0, 0, incompleteErr(0, "VarUInt 1.1: need %d bytes, have %d", n, len(buf))
		}
		var padded [8]byte
		copy(padded[:], buf[:n])
		encoded := binary.LittleEndian.Uint64(padded[:])
		bits := uint(8 * n)
		var mask uint64
		if bits >= 64 {
			mask = ^uint64(0)
		} else {
			mask = (uint64(1) << bits) - 1
		}
		v := (encoded & mask) >> uint(n)
		return n, v, nil
	}
	if len(buf) < 2 {
		return 0, 0, incompleteErr(0, "VarUInt 1.1: need second byte")
	}
	b1 := buf[1]
	switch b1 & 0b11 {
	case 0b00:
		return 0, 0, decodingErr("VarUInt 1.1: encoding longer than 10 bytes unsupported")
	case 0b10:
		if len(buf) < 10 {
			return 0, 0, incompleteErr(0, "VarUInt 1.1: need 10 bytes, have %d", len(buf))
		}
		low6 := uint64(b1 >> 2)
		rem := binary.LittleEndian.Uint64(buf[2:10])
		if rem > (uint64(1)<<58)-1 {
			return 0, 0, decodingErr("VarUInt 1.1: 10-byte encoding overflows u64")
		}
		return 10, (rem << 6) | low6, nil
	default: // low bit set: 9-byte encoding
		if len(buf) < 9 {
			return 0, 0, incompleteErr(0, "VarUInt 1.1: need 9 bytes, have %d", len(buf))
		}
		v := binary.LittleEndian.Uint64(buf[1:9]) >> 1
		return 9, v, nil
	}
}
