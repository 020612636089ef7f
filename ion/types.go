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

// Type is one of the Ion datatypes. It is a closed enum: every
// encoded value in a well-formed stream maps to exactly one Type.
type Type byte

const (
	NullType Type = iota
	BoolType
	IntType
	FloatType
	DecimalType
	TimestampType
	SymbolType
	StringType
	ClobType
	BlobType
	ListType
	SexpType
	StructType
)

func (t Type) String() string {
	switch t {
	case NullType:
		return "null"
	case BoolType:
		return "bool"
	case IntType:
		return "int"
	case FloatType:
		return "float"
	case DecimalType:
		return "decimal"
	case TimestampType:
		return "timestamp"
	case SymbolType:
		return "symbol"
	case StringType:
		return "string"
	case ClobType:
		return "clob"
	case BlobType:
		return "blob"
	case ListType:
		return "list"
	case SexpType:
		return "sexp"
	case StructType:
		return "struct"
	default:
		return "invalid"
	}
}

// Composite reports whether t is a container type.
func (t Type) Composite() bool {
	switch t {
	case ListType, SexpType, StructType:
		return true
	default:
		return false
	}
}

// typeCode is the Ion 1.0 binary type code occupying the high
// nibble of an opcode byte (see the type-descriptor table).
type typeCode byte

const (
	tcNull        typeCode = 0
	tcBool        typeCode = 1
	tcPosInt      typeCode = 2
	tcNegInt      typeCode = 3
	tcFloat       typeCode = 4
	tcDecimal     typeCode = 5
	tcTimestamp   typeCode = 6
	tcSymbol      typeCode = 7
	tcString      typeCode = 8
	tcClob        typeCode = 9
	tcBlob        typeCode = 10
	tcList        typeCode = 11
	tcSexp        typeCode = 12
	tcStruct      typeCode = 13
	tcAnnotation  typeCode = 14
	tcReservedIVM typeCode = 15
)

// lLengthFollows and lIsNull are the two universal meanings of the
// type descriptor's low nibble: 14 means "VarUInt length follows",
// 15 means "null of this type".
const (
	lLengthFollows = 0x0e
	lIsNull        = 0x0f
)

// decodeOpcode splits an opcode byte into its type code and length
// code (high nibble / low nibble, per the Ion 1.0 type-descriptor
// table).
func decodeOpcode(b byte) (tc typeCode, l byte) {
	return typeCode(b >> 4), b & 0x0f
}

func (tc typeCode) ionType() Type {
	switch tc {
	case tcNull:
		return NullType
	case tcBool:
		return BoolType
	case tcPosInt, tcNegInt:
		return IntType
	case tcFloat:
		return FloatType
	case tcDecimal:
		return DecimalType
	case tcTimestamp:
		return TimestampType
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

// InvalidType is not a real Ion type; it is returned by accessors
// when a handle does not describe a well-formed scalar/container
// opcode (annotation wrappers and the reserved/IVM code are never
// surfaced to callers as a Type).
const InvalidType = Type(0xff)

// IsBVM reports whether the first four bytes of buf are an Ion
// Version Marker, regardless of the embedded version numbers.
func IsBVM(buf []byte) bool {
	return len(buf) >= 4 && buf[0] == 0xe0 && buf[3] == 0xea
}
