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

// EncodedValue is a lazy handle over an already-located value in a
// caller-owned buffer. It is a plain value type: small integers and
// absolute byte offsets plus a reference to the buffer it was
// parsed from. Copying an EncodedValue is cheap and never touches
// the heap; its lifetime is bounded by the buffer it points into.
type EncodedValue struct {
	buf ionBuffer
	ver Version

	opcode byte

	hasField bool
	field    Symbol

	hasAnnot      bool
	annotWrapStart int64 // offset of the annotation-wrapper opcode byte
	annotListStart int64 // offset of the first annotation SID byte
	annotListEnd   int64

	headerStart, headerEnd int64
	bodyStart, bodyEnd     int64
}

// IonType returns the Ion type of the value, decoded from its
// opcode in O(1).
func (v EncodedValue) IonType() Type {
	tc, _ := decodeOpcode(v.opcode)
	if v.ver.is11() {
		return tc11.ionType(v.opcode)
	}
	return tc.ionType()
}

// IsNull reports whether the value's length code is 15 (null of
// its type).
func (v EncodedValue) IsNull() bool {
	_, l := decodeOpcode(v.opcode)
	return l == lIsNull
}

// TotalLength returns the number of bytes the value (including any
// annotation wrapper) occupies on the wire.
func (v EncodedValue) TotalLength() int64 {
	if v.hasAnnot {
		return v.bodyEnd - v.annotWrapStart
	}
	return v.bodyEnd - v.headerStart
}

// Offset returns the absolute stream offset at which the value
// (including its annotation wrapper, if present) begins.
func (v EncodedValue) Offset() int64 {
	if v.hasAnnot {
		return v.annotWrapStart
	}
	return v.headerStart
}

// FieldName returns the raw field-name SID and true if this value
// was read out of a struct body; otherwise it returns (0, false).
// Field names in binary Ion are always SIDs, never inline
// text, so no RawSymbolRef is needed here.
func (v EncodedValue) FieldName() (Symbol, bool) {
	return v.field, v.hasField
}

// Annotations returns an iterator over the value's raw annotation
// SIDs, in wire order. The iterator is empty if the value carries
// no annotation wrapper.
func (v EncodedValue) Annotations() *AnnotationIter {
	if !v.hasAnnot {
		return &AnnotationIter{}
	}
	return &AnnotationIter{buf: v.buf.slice(v.annotListStart, v.annotListEnd), ver: v.ver}
}

// AnnotationIter walks the raw SID sequence of an annotations
// wrapper without resolving any text.
type AnnotationIter struct {
	buf []byte
	ver Version
}

// Next returns the next raw annotation SID, or (0, false) once
// exhausted.
func (it *AnnotationIter) Next() (Symbol, bool, error) {
	if len(it.buf) == 0 {
		return 0, false, nil
	}
	n, v, err := it.ver.readVarUint(it.buf)
	if err != nil {
		return 0, false, err
	}
	it.buf = it.buf[n:]
	return Symbol(v), true, nil
}

// body returns the raw payload bytes of the value.
func (v EncodedValue) body() []byte {
	return v.buf.slice(v.bodyStart, v.bodyEnd)
}

// header returns the type-descriptor (+ optional trailing VarUInt
// length) bytes of the value.
func (v EncodedValue) header() []byte {
	return v.buf.slice(v.headerStart, v.headerEnd)
}

// Read decodes the value's body into a RawValueRef. Scalars are
// decoded eagerly; containers yield a handle whose children are
// parsed on demand via RawContainer.Iter.
func (v EncodedValue) Read() (RawValueRef, error) {
	return decodeRawValue(v)
}
