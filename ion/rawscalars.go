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
	"math"
	"math/big"
	"math/bits"
	"unicode/utf8"

	"github.com/sneller-ion/ion-go/date"
)

// RawValueRef is the decoded payload of a scalar value, or a
// container marker whose children are parsed on demand. The raw
// layer never resolves symbol text; Symbol carries a RawSymbolRef.
type RawValueRef struct {
	kind   Type
	isNull bool

	boolVal  bool
	intVal   *big.Int
	floatVal float64
	decVal   Decimal
	tsVal    Timestamp
	strVal   string
	blobVal  []byte
	symVal   RawSymbolRef
	cont     *RawContainer
}

// Type returns the decoded value's Ion type.
func (r RawValueRef) Type() Type { return r.kind }

// IsNull reports whether the value is a typed null.
func (r RawValueRef) IsNull() bool { return r.isNull }

func wrongKind(have, want Type) error {
	return illegalOpErr("read as %s, but value is %s", want, have)
}

func (r RawValueRef) Bool() (bool, error) {
	if r.kind != BoolType {
		return false, wrongKind(r.kind, BoolType)
	}
	return r.boolVal, nil
}

func (r RawValueRef) Int() (*big.Int, error) {
	if r.kind != IntType {
		return nil, wrongKind(r.kind, IntType)
	}
	if r.intVal == nil {
		return big.NewInt(0), nil
	}
	return r.intVal, nil
}

func (r RawValueRef) Float() (float64, error) {
	if r.kind != FloatType {
		return 0, wrongKind(r.kind, FloatType)
	}
	return r.floatVal, nil
}

func (r RawValueRef) DecimalValue() (Decimal, error) {
	if r.kind != DecimalType {
		return Decimal{}, wrongKind(r.kind, DecimalType)
	}
	return r.decVal, nil
}

func (r RawValueRef) TimestampValue() (Timestamp, error) {
	if r.kind != TimestampType {
		return Timestamp{}, wrongKind(r.kind, TimestampType)
	}
	return r.tsVal, nil
}

func (r RawValueRef) StringValue() (string, error) {
	if r.kind != StringType {
		return "", wrongKind(r.kind, StringType)
	}
	return r.strVal, nil
}

func (r RawValueRef) ClobValue() ([]byte, error) {
	if r.kind != ClobType {
		return nil, wrongKind(r.kind, ClobType)
	}
	return r.blobVal, nil
}

func (r RawValueRef) BlobValue() ([]byte, error) {
	if r.kind != BlobType {
		return nil, wrongKind(r.kind, BlobType)
	}
	return r.blobVal, nil
}

func (r RawValueRef) SymbolValue() (RawSymbolRef, error) {
	if r.kind != SymbolType {
		return RawSymbolRef{}, wrongKind(r.kind, SymbolType)
	}
	return r.symVal, nil
}

// Container returns the child-iterating handle for List/SExp/Struct
// values.
func (r RawValueRef) Container() (*RawContainer, error) {
	if r.cont == nil {
		return nil, wrongKind(r.kind, ListType)
	}
	return r.cont, nil
}

func decodeRawValue(v EncodedValue) (RawValueRef, error) {
	t := v.IonType()
	isNull := v.IsNull()
	if isNull {
		return RawValueRef{kind: t, isNull: true}, nil
	}
	body := v.body()
	switch t {
	case NullType:
		return RawValueRef{kind: NullType, isNull: true}, nil
	case BoolType:
		_, l := decodeOpcode(v.opcode)
		return RawValueRef{kind: BoolType, boolVal: l == 1}, nil
	case IntType:
		iv, err := decodeInt(v)
		if err != nil {
			return RawValueRef{}, err
		}
		return RawValueRef{kind: IntType, intVal: iv}, nil
	case FloatType:
		f, err := decodeFloat(body)
		if err != nil {
			return RawValueRef{}, err
		}
		return RawValueRef{kind: FloatType, floatVal: f}, nil
	case DecimalType:
		d, err := decodeDecimal(body)
		if err != nil {
			return RawValueRef{}, err
		}
		return RawValueRef{kind: DecimalType, decVal: d}, nil
	case TimestampType:
		ts, err := decodeTimestamp(body)
		if err != nil {
			return RawValueRef{}, err
		}
		return RawValueRef{kind: TimestampType, tsVal: ts}, nil
	case SymbolType:
		if len(body) > 8 {
			return RawValueRef{}, decodingErr("symbol ID magnitude of %d bytes out of range", len(body))
		}
		return RawValueRef{kind: SymbolType, symVal: RawSID(Symbol(readBigEndianMag(body)))}, nil
	case StringType:
		if !utf8.Valid(body) {
			return RawValueRef{}, decodingErr("string body is not valid UTF-8")
		}
		return RawValueRef{kind: StringType, strVal: string(body)}, nil
	case ClobType:
		return RawValueRef{kind: ClobType, blobVal: body}, nil
	case BlobType:
		return RawValueRef{kind: BlobType, blobVal: body}, nil
	case ListType, SexpType, StructType:
		return RawValueRef{kind: t, cont: &RawContainer{kind: t, body: body, ver: v.ver}}, nil
	default:
		return RawValueRef{}, decodingErr("cannot decode opcode 0x%02x", v.opcode)
	}
}

func readBigEndianMag(body []byte) uint64 {
	var u uint64
	for _, b := range body {
		u = (u << 8) | uint64(b)
	}
	return u
}

func decodeInt(v EncodedValue) (*big.Int, error) {
	body := v.body()
	if len(body) == 0 {
		return big.NewInt(0), nil
	}
	if v.ver.is11() {
		// Ion 1.1 ints are plain two's-complement.
		neg := body[0]&0x80 != 0
		mag := new(big.Int).SetBytes(twosComplementAbs(body))
		if neg {
			mag.Neg(mag)
		}
		return mag, nil
	}
	tc, _ := decodeOpcode(v.opcode)
	mag := new(big.Int).SetBytes(body)
	if tc == tcNegInt {
		if mag.Sign() == 0 {
			return nil, decodingErr("negative int with zero magnitude is malformed")
		}
		mag.Neg(mag)
	}
	return mag, nil
}

// twosComplementAbs interprets body as a two's-complement integer
// and returns its absolute-value big-endian magnitude bytes. The
// caller is responsible for negating the result when body[0]&0x80
// is set.
func twosComplementAbs(body []byte) []byte {
	if len(body) == 0 || body[0]&0x80 == 0 {
		return body
	}
	// two's complement negative: invert and add one
	out := make([]byte, len(body))
	carry := true
	for i := len(body) - 1; i >= 0; i-- {
		b := ^body[i]
		if carry {
			b++
			carry = b == 0
		}
		out[i] = b
	}
	return out
}

func decodeFloat(body []byte) (float64, error) {
	switch len(body) {
	case 0:
		return 0.0, nil
	case 4:
		return float64(math.Float32frombits(binary.BigEndian.Uint32(body))), nil
	case 8:
		return math.Float64frombits(binary.BigEndian.Uint64(body)), nil
	default:
		return 0, decodingErr("float body length %d not in {0,4,8}", len(body))
	}
}

// readVarInt reads Ion's signed VarInt (used for decimal exponents
// and timestamp offsets): 6 magnitude bits and a sign bit in the
// first byte, 7 magnitude bits in each continuation byte, high bit
// of the final byte set.
func readVarInt(buf []byte) (n int, value int, err error) {
	if len(buf) == 0 {
		return 0, 0, incompleteErr(0, "VarInt: empty input")
	}
	neg := buf[0]&0x40 != 0
	v := int(buf[0] & 0x3f)
	if buf[0]&0x80 != 0 {
		if neg {
			v = -v
		}
		return 1, v, nil
	}
	i := 1
	for ; i < len(buf); i++ {
		v = (v << 7) | int(buf[i]&0x7f)
		if buf[i]&0x80 != 0 {
			if neg {
				v = -v
			}
			return i + 1, v, nil
		}
	}
	return 0, 0, incompleteErr(0, "VarInt: ran out of input before terminator byte")
}

func decodeDecimal(body []byte) (Decimal, error) {
	if len(body) == 0 {
		return Decimal{Coefficient: big.NewInt(0)}, nil
	}
	n, exp, err := readVarInt(body)
	if err != nil {
		return Decimal{}, err
	}
	rest := body[n:]
	if len(rest) == 0 {
		return Decimal{Coefficient: big.NewInt(0), Exponent: exp}, nil
	}
	neg := rest[0]&0x80 != 0
	mag := new(big.Int).SetBytes(clearSignBit(rest))
	if mag.Sign() == 0 {
		return Decimal{Coefficient: big.NewInt(0), Exponent: exp, NegativeZero: neg}, nil
	}
	if neg {
		mag.Neg(mag)
	}
	return Decimal{Coefficient: mag, Exponent: exp}, nil
}

func clearSignBit(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	out[0] &^= 0x80
	return out
}

func decodeTimestamp(body []byte) (Timestamp, error) {
	if len(body) == 0 {
		return Timestamp{}, decodingErr("timestamp with empty body")
	}
	n, offset, err := readVarInt(body)
	if err != nil {
		return Timestamp{}, err
	}
	rest := body[n:]
	if len(rest) == 0 {
		return Timestamp{}, decodingErr("timestamp missing year field")
	}
	offsetKnown := true
	if n == 1 && body[0] == 0xc0 {
		// VarInt encoding for -0 (sign bit set, magnitude 0) marks
		// an unknown local offset, per the Ion binary spec.
		offsetKnown = false
		offset = 0
	}
	year, rest, err := readVarUintField(rest)
	if err != nil {
		return Timestamp{}, err
	}
	month, day, hour, minute, second := 1, 1, 0, 0, 0
	prec := PrecisionYear
	if len(rest) > 0 {
		month, rest, err = readVarUintField(rest)
		if err != nil {
			return Timestamp{}, err
		}
		prec = PrecisionMonth
	}
	if len(rest) > 0 {
		day, rest, err = readVarUintField(rest)
		if err != nil {
			return Timestamp{}, err
		}
		prec = PrecisionDay
	}
	if len(rest) > 0 {
		hour, rest, err = readVarUintField(rest)
		if err != nil {
			return Timestamp{}, err
		}
		if len(rest) == 0 {
			return Timestamp{}, decodingErr("timestamp has hour but no minute")
		}
		minute, rest, err = readVarUintField(rest)
		if err != nil {
			return Timestamp{}, err
		}
		prec = PrecisionMinute
	}
	if len(rest) > 0 {
		second, rest, err = readVarUintField(rest)
		if err != nil {
			return Timestamp{}, err
		}
		prec = PrecisionSecond
	}
	ts := Timestamp{
		T:             date.Date(year, month, day, hour, minute, second, 0),
		OffsetMinutes: offset,
		OffsetKnown:   offsetKnown,
		Precision:     prec,
	}
	if len(rest) > 0 {
		fn, fexp, err := readVarInt(rest)
		if err != nil {
			return Timestamp{}, err
		}
		rest = rest[fn:]
		coeff := int64(0)
		if len(rest) > 0 {
			coeff = int64(readBigEndianMag(rest))
		}
		ts.Precision = PrecisionFraction
		ts.FractionExponent = fexp
		ts.FractionCoefficient = coeff
		switch fexp {
		case -9:
			ts.T = date.Date(year, month, day, hour, minute, second, int(coeff))
		case -6:
			ts.T = date.Date(year, month, day, hour, minute, second, int(coeff)*1000)
		case -3:
			ts.T = date.Date(year, month, day, hour, minute, second, int(coeff)*1_000_000)
		}
	}
	return ts, nil
}

// readVarUintField reads one VarUInt-encoded timestamp component
// (year, month, day, ...) and returns it as a plain int, since
// these fields are always small.
func readVarUintField(buf []byte) (int, []byte, error) {
	n, v, err := readVarUint10(buf)
	if err != nil {
		return 0, nil, err
	}
	if v > uint64(bits.UintSize)<<20 {
		return 0, nil, decodingErr("timestamp field magnitude %d implausibly large", v)
	}
	return int(v), buf[n:], nil
}
