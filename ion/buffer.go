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

// ionBuffer is an immutable view of a byte slice paired with the
// absolute stream offset of its first byte. Ranges recorded by the
// parser (header/body/annotations) are always absolute offsets
// into the same top-level buffer, so a value handle can slice back
// into ionBuffer.bytes without re-threading offsets through every
// call.
type ionBuffer struct {
	bytes []byte
	base  int64
}

func newIonBuffer(b []byte, base int64) ionBuffer {
	return ionBuffer{bytes: b, base: base}
}

func (b ionBuffer) len() int { return len(b.bytes) }

// end returns the absolute offset one past the last byte in b.
func (b ionBuffer) end() int64 { return b.base + int64(len(b.bytes)) }

// slice returns the bytes covering the absolute range [lo, hi).
func (b ionBuffer) slice(lo, hi int64) []byte {
	return b.bytes[lo-b.base : hi-b.base]
}

// peekByte returns the byte at absolute offset off, or (0, false)
// if off is outside the buffer.
func (b ionBuffer) peekByte(off int64) (byte, bool) {
	i := off - b.base
	if i < 0 || i >= int64(len(b.bytes)) {
		return 0, false
	}
	return b.bytes[i], true
}

// remaining returns the bytes from absolute offset off to the end
// of the buffer.
func (b ionBuffer) remaining(off int64) []byte {
	i := off - b.base
	if i < 0 {
		i = 0
	}
	if i >= int64(len(b.bytes)) {
		return nil
	}
	return b.bytes[i:]
}
