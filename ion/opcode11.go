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

// Ion 1.1 replaces the 1.0 type-descriptor table with a new opcode
// space and merges the separate positive/negative Int type codes
// into a single two's-complement Int occupying the nibble that 1.0
// used for Decimal. Macro/template opcodes and the rest of the
// expanded 1.1 opcode space (delimited containers, FlexSym-keyed
// structs, NOP variants beyond the shared NOP rule) are outside
// this core's scope -- only the subset needed to recognize plain
// scalars and containers is implemented here. Nibbles with no
// supported 1.1 meaning are reported as a Decoding error rather
// than silently misparsed.
type opcodeTable11 struct{}

var tc11 opcodeTable11

func (opcodeTable11) ionType(opcode byte) Type {
	tc, _ := decodeOpcode(opcode)
	switch tc {
	case tcNull:
		return NullType
	case tcBool:
		return BoolType
	case typeCode(5):
		return IntType
	case tcSymbol:
		return SymbolType
	case tcString:
		return StringType
	case tcClob:
		return ClobType
	case tcBlob:
		return BlobType
	case tcList:
		return ListType
	case tcSexp:
		return SexpType
	case tcStruct:
		return StructType
	default:
		return InvalidType
	}
}

func (opcodeTable11) supported(opcode byte) bool {
	return tc11.ionType(opcode) != InvalidType
}
