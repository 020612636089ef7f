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

// This file implements the non-allocating binary parser: it walks
// a byte buffer, recognizes IVMs, NOP pads, and values, and returns
// EncodedValue handles (ranges over the input) without decoding any
// payload bytes. Scalar and container contents are only decoded
// when the caller asks for them via EncodedValue.Read.

// ivmAt reports whether buf begins with a 4-byte Ion Version
// Marker at absolute offset off, returning its declared version.
func ivmAt(buf ionBuffer, off int64) (Version, bool, error) {
	rest := buf.remaining(off)
	if len(rest) == 0 {
		return Version{}, false, nil
	}
	if rest[0] != 0xe0 {
		return Version{}, false, nil
	}
	if len(rest) < 4 {
		return Version{}, false, incompleteErr(off, "IVM truncated")
	}
	if rest[3] != 0xea {
		return Version{}, false, decodingErr("malformed IVM trailer byte 0x%02x", rest[3])
	}
	v := Version{rest[1], rest[2]}
	if v != Version1_0 && v != Version1_1 {
		return Version{}, false, decodingErr("unsupported Ion version %d.%d", v.Major, v.Minor)
	}
	return v, true, nil
}

// parseOne parses exactly one item at absolute offset off: a NOP
// pad or a value (possibly annotated). An exhausted buffer is
// reported as an Incomplete error, so callers check for the end of
// input first. It does not itself recognize the IVM; callers check
// ivmAt first since an IVM can only appear where a top-level value
// is expected.
//
// inStruct controls whether a field-name VarUInt precedes the
// value. The returned EncodedValue's total length tells the caller
// how far to advance; a NOP pad is signaled by ok==false with
// nopLen > 0 so the caller can skip it and try again.
func parseOne(buf ionBuffer, ver Version, off int64, inStruct bool) (ev EncodedValue, nopLen int64, ok bool, err error) {
	start := off
	var field Symbol
	hasField := false
	if inStruct {
		rest := buf.remaining(off)
		if len(rest) == 0 {
			return EncodedValue{}, 0, false, incompleteErr(off, "expected struct field name")
		}
		n, sid, ferr := ver.readVarUint(rest)
		if ferr != nil {
			return EncodedValue{}, 0, false, ferr
		}
		field = Symbol(sid)
		hasField = true
		off += int64(n)
	}

	annotStart := start
	hasAnnot := false
	var annotListStart, annotListEnd int64

	b, present := buf.peekByte(off)
	if !present {
		return EncodedValue{}, 0, false, incompleteErr(off, "expected value opcode")
	}
	tc, l := decodeOpcode(b)

	// Annotations wrapper: type code 14, never null/IVM-shaped here
	// because the IVM is checked by the caller before parseOne runs.
	if tc == tcAnnotation && b != 0xe0 {
		hasAnnot = true
		wrapHeaderStart := off
		off++ // past opcode
		wrapLen, lenBytes, werr := readLengthField(buf, ver, off, tc, l)
		if werr != nil {
			return EncodedValue{}, 0, false, werr
		}
		off += int64(lenBytes)
		wrapBodyStart := off
		wrapBodyEnd := wrapBodyStart + int64(wrapLen)
		if buf.end() < wrapBodyEnd {
			return EncodedValue{}, 0, false, incompleteErr(wrapHeaderStart, "annotation wrapper body truncated")
		}
		annotLenField := buf.remaining(off)
		alN, alLen, aerr := ver.readVarUint(annotLenField)
		if aerr != nil {
			return EncodedValue{}, 0, false, aerr
		}
		if alLen == 0 {
			return EncodedValue{}, 0, false, decodingErr("annotations wrapper declares zero annotations")
		}
		off += int64(alN)
		annotListStart = off
		annotListEnd = annotListStart + int64(alLen)
		if annotListEnd > wrapBodyEnd {
			return EncodedValue{}, 0, false, decodingErr("annotation list length exceeds wrapper body")
		}
		off = annotListEnd

		// Recurse into the wrapped value. A NOP pad inside the
		// wrapper's body is legal (it is simply skipped, per the
		// general NOP rule) even though it is unusual; the wrapper
		// must still end with exactly one value consuming the rest
		// of its declared body.
		var inner EncodedValue
		var iok bool
		for {
			var nop int64
			var ierr error
			inner, nop, iok, ierr = parseOne(buf, ver, off, false)
			if ierr != nil {
				return EncodedValue{}, 0, false, ierr
			}
			if iok {
				break
			}
			if nop == 0 {
				return EncodedValue{}, 0, false, incompleteErr(wrapHeaderStart, "annotation wrapper body truncated")
			}
			off += nop
			if off >= wrapBodyEnd {
				return EncodedValue{}, 0, false, decodingErr("annotation wrapper contains no value after NOP padding")
			}
		}
		if inner.bodyEnd != wrapBodyEnd {
			return EncodedValue{}, 0, false, decodingErr("annotation wrapper declared length does not match wrapped value")
		}
		inner.hasAnnot = true
		inner.annotWrapStart = wrapHeaderStart
		inner.annotListStart = annotListStart
		inner.annotListEnd = annotListEnd
		inner.hasField = hasField
		inner.field = field
		return inner, 0, true, nil
	}

	headerStart := off
	off++ // past opcode byte

	if tc == tcNull && l == lIsNull {
		return EncodedValue{
			buf: buf, ver: ver, opcode: b,
			hasField: hasField, field: field,
			headerStart: headerStart, headerEnd: off,
			bodyStart: off, bodyEnd: off,
		}, 0, true, nil
	}
	if tc == tcNull {
		// NOP pad: l==15 handled above as null; other l values are
		// pad lengths (0..13 inline, 14 VarUInt-prefixed).
		bodyLen, lenBytes, nerr := readLengthField(buf, ver, off, tc, l)
		if nerr != nil {
			return EncodedValue{}, 0, false, nerr
		}
		off += int64(lenBytes)
		total := (off + int64(bodyLen)) - start
		if buf.end() < off+int64(bodyLen) {
			return EncodedValue{}, 0, false, incompleteErr(start, "NOP pad body truncated")
		}
		return EncodedValue{}, total, false, nil
	}

	if tc == tcBool && l != lIsNull {
		// l encodes the boolean value itself (0 false, 1 true); there
		// are no body bytes to read, unlike every other type where a
		// low nibble below 14 is a literal byte count.
		return EncodedValue{
			buf: buf, ver: ver, opcode: b,
			hasField: hasField, field: field,
			hasAnnot: hasAnnot, annotWrapStart: annotStart,
			annotListStart: annotListStart, annotListEnd: annotListEnd,
			headerStart: headerStart, headerEnd: off,
			bodyStart: off, bodyEnd: off,
		}, 0, true, nil
	}

	bodyLen, lenBytes, lerr := readLengthField(buf, ver, off, tc, l)
	if lerr != nil {
		return EncodedValue{}, 0, false, lerr
	}
	off += int64(lenBytes)
	bodyStart := off
	bodyEnd := bodyStart + int64(bodyLen)
	if buf.end() < bodyEnd {
		return EncodedValue{}, 0, false, incompleteErr(start, "value body truncated")
	}
	ev = EncodedValue{
		buf: buf, ver: ver, opcode: b,
		hasField: hasField, field: field,
		hasAnnot: hasAnnot, annotWrapStart: annotStart,
		annotListStart: annotListStart, annotListEnd: annotListEnd,
		headerStart: headerStart, headerEnd: bodyStart,
		bodyStart: bodyStart, bodyEnd: bodyEnd,
	}
	if ver.is11() && !tc11.supported(b) {
		return EncodedValue{}, 0, false, decodingErr("ion 1.1 opcode 0x%02x not supported by this implementation", b)
	}
	return ev, 0, true, nil
}

// readLengthField interprets the length code l at absolute offset
// off (just past the opcode byte): l<14 is an inline byte count,
// l==14 means a VarUInt length follows, l==15 means null (callers
// handle that case before calling this function for types where it
// applies). It returns the resolved body length and the number of
// bytes the (optional) VarUInt occupied.
//
// Struct is the one exception: l==1 does not mean "inline body of
// one byte" there, it flags a field-ID-sorted struct whose length is
// still a following VarUInt, exactly like l==lLengthFollows.
func readLengthField(buf ionBuffer, ver Version, off int64, tc typeCode, l byte) (length uint64, lenBytes int, err error) {
	if tc == tcStruct && l == 1 {
		rest := buf.remaining(off)
		n, v, verr := ver.readVarUint(rest)
		if verr != nil {
			return 0, 0, verr
		}
		return v, n, nil
	}
	if l < lLengthFollows {
		return uint64(l), 0, nil
	}
	if l == lIsNull {
		return 0, 0, nil
	}
	rest := buf.remaining(off)
	n, v, verr := ver.readVarUint(rest)
	if verr != nil {
		return 0, 0, verr
	}
	return v, n, nil
}
