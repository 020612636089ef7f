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

// Version identifies which binary encoding generation a stream
// declared via its IVM. The wire format diverges only in the
// VarUInt encoding used for "length follows" tails and in the
// opcode table; everything else (IVM shape, symbol table
// processing, annotations-wrapper nesting) is shared.
type Version struct {
	Major, Minor byte
}

var (
	Version1_0 = Version{1, 0}
	Version1_1 = Version{1, 1}
)

func (v Version) is11() bool { return v.Minor == 1 }

// readVarUint reads a length VarUInt using the encoding that
// the stream's declared version specifies.
func (v Version) readVarUint(buf []byte) (int, uint64, error) {
	if v.is11() {
		return readVarUint11(buf)
	}
	return readVarUint10(buf)
}
