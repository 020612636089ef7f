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

// RawContainer is a List, SExp, or Struct value whose children have
// not yet been parsed. It holds only the container's body
// sub-buffer, so cloning it (or starting a fresh iterator over it)
// is cheap; it never keeps a running index of already-yielded
// children.
type RawContainer struct {
	kind Type
	body []byte
	ver  Version
}

// Type returns List, SExp, or Struct.
func (c *RawContainer) Type() Type { return c.kind }

// Iter returns a fresh child iterator positioned at the start of
// the container's body.
func (c *RawContainer) Iter() *RawContainerIter {
	return &RawContainerIter{
		buf:      newIonBuffer(c.body, 0),
		ver:      c.ver,
		inStruct: c.kind == StructType,
	}
}

// RawContainerIter yields successive child values of a container
// in on-wire order, skipping NOP pads as it goes.
type RawContainerIter struct {
	buf      ionBuffer
	off      int64
	ver      Version
	inStruct bool
}

// Next returns the next child value, or (zero, false, nil) once the
// container body is exhausted.
func (it *RawContainerIter) Next() (EncodedValue, bool, error) {
	for {
		if it.off >= it.buf.end() {
			return EncodedValue{}, false, nil
		}
		ev, nop, ok, err := parseOne(it.buf, it.ver, it.off, it.inStruct)
		if err != nil {
			return EncodedValue{}, false, err
		}
		if ok {
			it.off = ev.bodyEnd
			return ev, true, nil
		}
		if nop == 0 {
			return EncodedValue{}, false, decodingErr("container iteration made no progress")
		}
		it.off += nop
	}
}
