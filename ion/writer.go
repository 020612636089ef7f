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
	"io"
	"math"
	"math/big"
)

// Writer is a streaming binary Ion encoder. It always produces Ion
// 1.0 wire bytes (the writer side of the core does not target 1.1).
//
// Containers are not streamed inline: each open List/SExp/Struct
// pushes a fresh scratch buffer, which is concatenated into its
// parent's buffer only once its length is known at close. The open
// containers form an explicit stack rather than a chain of parent
// back-references, so there are no cycles to manage and an error
// mid-container simply pops and discards its scratch buffer.
type Writer struct {
	out io.Writer
	top []byte
	cs  []frame
}

type containerKind byte

const (
	containerList containerKind = iota
	containerSexp
	containerStruct
	containerAnnotation
)

type frame struct {
	kind containerKind
	buf  []byte
}

// NewWriter creates a Writer that will emit its encoded bytes to out
// on Flush.
func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out}
}

func (w *Writer) current() *[]byte {
	if len(w.cs) == 0 {
		return &w.top
	}
	return &w.cs[len(w.cs)-1].buf
}

// WriteIVM appends an Ion Version Marker directly to the current
// buffer. It is the caller's responsibility to write one before the
// first top-level value of a stream; the writer does not do this
// implicitly, since a Writer is equally useful for encoding a single
// value's bytes for embedding elsewhere.
func (w *Writer) WriteIVM(v Version) error {
	dst := w.current()
	*dst = append(*dst, 0xe0, v.Major, v.Minor, 0xea)
	return nil
}

func (w *Writer) emitLengthPrefixed(tc typeCode, body []byte) error {
	dst := w.current()
	n := len(body)
	if n <= 13 {
		*dst = append(*dst, byte(tc)<<4|byte(n))
	} else {
		*dst = append(*dst, byte(tc)<<4|lLengthFollows)
		*dst = writeVarUint10(*dst, uint64(n))
	}
	*dst = append(*dst, body...)
	return nil
}

func (w *Writer) beginContainer(kind containerKind) {
	w.cs = append(w.cs, frame{kind: kind})
}

// popDiscard abandons the innermost open container without writing
// anything to its parent, the cancellation behavior a mid-container
// error or a dropped writer gets: no partial header ever reaches the
// parent buffer.
func (w *Writer) popDiscard() {
	w.cs = w.cs[:len(w.cs)-1]
}

func (w *Writer) endContainer(tc typeCode) error {
	if len(w.cs) == 0 {
		return illegalOpErr("no open container to end")
	}
	f := w.cs[len(w.cs)-1]
	w.cs = w.cs[:len(w.cs)-1]
	return w.emitLengthPrefixed(tc, f.buf)
}

func (w *Writer) inStruct() bool {
	return len(w.cs) > 0 && w.cs[len(w.cs)-1].kind == containerStruct
}

// WriteField writes the VarUInt field-name SID that must precede
// every value inside a struct. Calling it outside a struct is an
// IllegalOperation.
func (w *Writer) WriteField(sid Symbol) error {
	if !w.inStruct() {
		return illegalOpErr("WriteField called outside a struct")
	}
	dst := w.current()
	*dst = writeVarUint10(*dst, uint64(sid))
	return nil
}

// WriteFieldText always fails: the raw writer only accepts SID field
// tokens, never inline text, so a caller reaching for inline field
// text has mismatched the raw and user layers.
func (w *Writer) WriteFieldText(name string) error {
	return encodingErr("raw writer: struct field names must be symbol IDs, not text %q", name)
}

// WriteList invokes f with the receiver positioned to write the
// list's children, then closes the list. No bytes reach the parent
// buffer if f returns an error.
func (w *Writer) WriteList(f func(*Writer) error) error {
	w.beginContainer(containerList)
	if err := f(w); err != nil {
		w.popDiscard()
		return err
	}
	return w.endContainer(tcList)
}

// WriteSexp is WriteList for s-expressions.
func (w *Writer) WriteSexp(f func(*Writer) error) error {
	w.beginContainer(containerSexp)
	if err := f(w); err != nil {
		w.popDiscard()
		return err
	}
	return w.endContainer(tcSexp)
}

// WriteStruct is WriteList for structs; f should call WriteField
// before each member value.
func (w *Writer) WriteStruct(f func(*Writer) error) error {
	w.beginContainer(containerStruct)
	if err := f(w); err != nil {
		w.popDiscard()
		return err
	}
	return w.endContainer(tcStruct)
}

// Annotate wraps the value written by write with an annotations
// envelope carrying sids, in order.
func (w *Writer) Annotate(sids []Symbol, write func() error) error {
	if len(sids) == 0 {
		return encodingErr("annotation wrapper requires at least one symbol")
	}
	w.beginContainer(containerAnnotation)
	if err := write(); err != nil {
		w.popDiscard()
		return err
	}
	f := w.cs[len(w.cs)-1]
	w.cs = w.cs[:len(w.cs)-1]

	var annotBytes []byte
	for _, sid := range sids {
		annotBytes = writeVarUint10(annotBytes, uint64(sid))
	}
	var body []byte
	body = writeVarUint10(body, uint64(len(annotBytes)))
	body = append(body, annotBytes...)
	body = append(body, f.buf...)
	return w.emitLengthPrefixed(tcAnnotation, body)
}

// WriteNull writes a typed null; pass NullType for the untyped
// null.null.
func (w *Writer) WriteNull(t Type) error {
	dst := w.current()
	tc, err := typeCodeFor(t)
	if err != nil {
		return err
	}
	*dst = append(*dst, byte(tc)<<4|lIsNull)
	return nil
}

func typeCodeFor(t Type) (typeCode, error) {
	switch t {
	case NullType:
		return tcNull, nil
	case BoolType:
		return tcBool, nil
	case IntType:
		return tcPosInt, nil
	case FloatType:
		return tcFloat, nil
	case DecimalType:
		return tcDecimal, nil
	case TimestampType:
		return tcTimestamp, nil
	case SymbolType:
		return tcSymbol, nil
	case StringType:
		return tcString, nil
	case ClobType:
		return tcClob, nil
	case BlobType:
		return tcBlob, nil
	case ListType:
		return tcList, nil
	case SexpType:
		return tcSexp, nil
	case StructType:
		return tcStruct, nil
	default:
		return 0, illegalOpErr("no type-descriptor code for %s", t)
	}
}

func (w *Writer) WriteBool(v bool) error {
	dst := w.current()
	if v {
		*dst = append(*dst, 0x11)
	} else {
		*dst = append(*dst, 0x10)
	}
	return nil
}

// WriteInt writes an arbitrary-precision integer. A nil v is treated
// as zero.
func (w *Writer) WriteInt(v *big.Int) error {
	if v == nil || v.Sign() == 0 {
		dst := w.current()
		*dst = append(*dst, 0x20)
		return nil
	}
	tc := tcPosInt
	if v.Sign() < 0 {
		tc = tcNegInt
	}
	mag := new(big.Int).Abs(v).Bytes()
	return w.emitLengthPrefixed(tc, mag)
}

// WriteI64 is a convenience wrapper for the common case of a native
// signed integer.
func (w *Writer) WriteI64(v int64) error {
	return w.WriteInt(big.NewInt(v))
}

func (w *Writer) WriteFloat32(v float32) error {
	if v == 0 && !isNegZero32(v) {
		dst := w.current()
		*dst = append(*dst, 0x40)
		return nil
	}
	var body [4]byte
	bits := math.Float32bits(v)
	body[0] = byte(bits >> 24)
	body[1] = byte(bits >> 16)
	body[2] = byte(bits >> 8)
	body[3] = byte(bits)
	return w.emitLengthPrefixed(tcFloat, body[:])
}

func (w *Writer) WriteFloat64(v float64) error {
	if v == 0 && !isNegZero64(v) {
		dst := w.current()
		*dst = append(*dst, 0x40)
		return nil
	}
	var body [8]byte
	bits := math.Float64bits(v)
	for i := 0; i < 8; i++ {
		body[i] = byte(bits >> uint(56-8*i))
	}
	return w.emitLengthPrefixed(tcFloat, body[:])
}

func isNegZero32(v float32) bool { return math.Float32bits(v) == 1<<31 }
func isNegZero64(v float64) bool { return math.Float64bits(v) == 1<<63 }

func (w *Writer) WriteDecimal(d Decimal) error {
	coeff := d.Coefficient
	if coeff == nil {
		coeff = big.NewInt(0)
	}
	var body []byte
	if d.Exponent != 0 || coeff.Sign() != 0 || d.NegativeZero {
		body = writeVarInt(body, d.Exponent)
	}
	if coeff.Sign() == 0 {
		if d.NegativeZero {
			body = append(body, 0x80)
		}
		return w.emitLengthPrefixed(tcDecimal, body)
	}
	mag := new(big.Int).Abs(coeff).Bytes()
	if mag[0]&0x80 != 0 {
		mag = append([]byte{0}, mag...)
	}
	if coeff.Sign() < 0 {
		mag[0] |= 0x80
	}
	body = append(body, mag...)
	return w.emitLengthPrefixed(tcDecimal, body)
}

// writeVarInt appends the VarInt encoding of value (used for decimal
// exponents and timestamp offsets) to dst and returns the extended
// slice. The first byte holds 6 magnitude bits plus a sign bit;
// every continuation byte holds 7 magnitude bits; the last byte's
// high bit marks the end.
func writeVarInt(dst []byte, value int) []byte {
	neg := value < 0
	mag := uint64(value)
	if neg {
		mag = uint64(-value)
	}
	n := 1
	limit := uint64(0x3f)
	for mag > limit {
		n++
		limit = (limit << 7) | 0x7f
	}
	if n == 1 {
		b := byte(mag) | 0x80
		if neg {
			b |= 0x40
		}
		return append(dst, b)
	}
	buf := make([]byte, n)
	m := mag
	buf[n-1] = byte(m&0x7f) | 0x80
	m >>= 7
	for i := n - 2; i >= 1; i-- {
		buf[i] = byte(m & 0x7f)
		m >>= 7
	}
	buf[0] = byte(m & 0x3f)
	if neg {
		buf[0] |= 0x40
	}
	return append(dst, buf...)
}

func (w *Writer) WriteTimestamp(ts Timestamp) error {
	var body []byte
	if !ts.OffsetKnown {
		body = append(body, 0xc0)
	} else {
		body = writeVarInt(body, ts.OffsetMinutes)
	}
	body = writeVarUint10(body, uint64(ts.T.Year()))
	if ts.Precision == PrecisionYear {
		return w.emitLengthPrefixed(tcTimestamp, body)
	}
	body = writeVarUint10(body, uint64(ts.T.Month()))
	if ts.Precision == PrecisionMonth {
		return w.emitLengthPrefixed(tcTimestamp, body)
	}
	body = writeVarUint10(body, uint64(ts.T.Day()))
	if ts.Precision == PrecisionDay {
		return w.emitLengthPrefixed(tcTimestamp, body)
	}
	body = writeVarUint10(body, uint64(ts.T.Hour()))
	body = writeVarUint10(body, uint64(ts.T.Minute()))
	if ts.Precision == PrecisionMinute {
		return w.emitLengthPrefixed(tcTimestamp, body)
	}
	body = writeVarUint10(body, uint64(ts.T.Second()))
	if ts.Precision == PrecisionSecond {
		return w.emitLengthPrefixed(tcTimestamp, body)
	}
	body = writeVarInt(body, ts.FractionExponent)
	coeff := big.NewInt(ts.FractionCoefficient)
	body = append(body, coeff.Bytes()...)
	return w.emitLengthPrefixed(tcTimestamp, body)
}

func (w *Writer) WriteString(s string) error {
	return w.emitLengthPrefixed(tcString, []byte(s))
}

// WriteSymbol writes a symbol value by SID only; the raw layer never
// writes inline symbol text.
func (w *Writer) WriteSymbol(sid Symbol) error {
	if sid == 0 {
		dst := w.current()
		*dst = append(*dst, 0x70)
		return nil
	}
	var buf []byte
	for v := uint64(sid); v > 0; v >>= 8 {
		buf = append([]byte{byte(v)}, buf...)
	}
	return w.emitLengthPrefixed(tcSymbol, buf)
}

func (w *Writer) WriteClob(b []byte) error {
	return w.emitLengthPrefixed(tcClob, b)
}

func (w *Writer) WriteBlob(b []byte) error {
	return w.emitLengthPrefixed(tcBlob, b)
}

// Flush writes the top-level buffer to the output sink, flushes the
// sink if it exposes a Flush method, and resets the writer's buffer
// for reuse. Flush fails if any container is still open.
func (w *Writer) Flush() error {
	if len(w.cs) != 0 {
		return illegalOpErr("flush called with %d container(s) still open", len(w.cs))
	}
	if len(w.top) > 0 {
		if _, err := w.out.Write(w.top); err != nil {
			return ioErr(err)
		}
	}
	if f, ok := w.out.(interface{ Flush() error }); ok {
		if err := f.Flush(); err != nil {
			return ioErr(err)
		}
	}
	w.top = w.top[:0]
	return nil
}
