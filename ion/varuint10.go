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

// Ion 1.0 encodes variable-length unsigned integers with a
// high-bit continuation scheme: each byte carries 7 bits of
// magnitude, most significant byte first, and the final byte
// (only) has its high bit set.

const maxVarUintBytes10 = 10 // ceil(64/7)

// readVarUint10 reads an Ion 1.0 VarUInt from the front of buf.
// It returns the number of bytes consumed and the decoded value.
func readVarUint10(buf []byte) (size int, value uint64, err error) {
	var v uint64
	overflowRisk := buf != nil && len(buf) > 0 && buf[0] > 1
	limit := len(buf)
	if limit > maxVarUintBytes10 {
		limit = maxVarUintBytes10
	}
	for i := 0; i < limit; i++ {
		b := buf[i]
		v = (v << 7) | uint64(b&0x7f)
		if b&0x80 != 0 {
			n := i + 1
			if n == maxVarUintBytes10 && overflowRisk {
				return 0, 0, decodingErr("VarUInt 1.0: %d-byte encoding overflows u64", n)
			}
			return n, v, nil
		}
	}
	if len(buf) >= maxVarUintBytes10 {
		return 0, 0, decodingErr("VarUInt 1.0: no terminator byte within %d bytes", maxVarUintBytes10)
	}
	return 0, 0, incompleteErr(0, "VarUInt 1.0: ran out of input before terminator byte")
}

// varUint10Size returns the number of bytes needed to encode
// value as an Ion 1.0 VarUInt.
func varUint10Size(value uint64) int {
	if value == 0 {
		return 1
	}
	n := 0
	for v := value; v != 0; v >>= 7 {
		n++
	}
	return n
}

// writeVarUint10 appends the Ion 1.0 VarUInt encoding of value to
// dst and returns the extended slice.
func writeVarUint10(dst []byte, value uint64) []byte {
	if value == 0 {
		return append(dst, 0b1000_0000)
	}
	var buf [maxVarUintBytes10]byte
	buf[maxVarUintBytes10-1] = 0b1000_0000
	first := maxVarUintBytes10
	v := value
	for i := maxVarUintBytes10 - 1; i >= 0; i-- {
		first--
		buf[i] |= byte(v) & 0x7f
		v >>= 7
		if v == 0 {
			break
		}
	}
	return append(dst, buf[first:]...)
}
