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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParserSkipsTopLevelNOP(t *testing.T) {
	// a one-byte NOP (opcode 0x00) followed by bool true (0x11).
	buf := []byte{0x00, 0x11}
	r := NewRawReader(buf)
	item, err := r.Next()
	require.NoError(t, err)
	require.Equal(t, ItemValue, item.Kind)
	require.Equal(t, BoolType, item.Value.IonType())
}

func TestParserAnnotationWrapperTotalLengthInvariant(t *testing.T) {
	buf := &writeBuf{}
	w := NewWriter(buf)
	err := w.Annotate([]Symbol{11, 12}, func() error {
		return w.WriteI64(5)
	})
	require.NoError(t, err)
	require.NoError(t, w.Flush())

	r := NewRawReader(buf.Bytes())
	item, err := r.Next()
	require.NoError(t, err)
	require.Equal(t, ItemValue, item.Kind)
	ev := item.Value
	require.True(t, ev.IsNull() == false)
	require.Equal(t, int64(len(buf.Bytes())), ev.TotalLength())

	var syms []Symbol
	it := ev.Annotations()
	for {
		sym, ok, err := it.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		syms = append(syms, sym)
	}
	require.Equal(t, []Symbol{11, 12}, syms)
}

func TestParserAnnotationWrapperAllowsInteriorNOP(t *testing.T) {
	// Hand-build: annotation wrapper (type 14) wrapping a NOP pad
	// then a bool true. Wrapper body = [annot-len VarUInt(1), annot
	// SID VarUInt(11), NOP(1 byte), bool true(1 byte)].
	annotLen := writeVarUint10(nil, 1)
	annotSID := writeVarUint10(nil, 11)
	nop := []byte{0x00}
	boolTrue := []byte{0x11}
	body := append(append(append([]byte{}, annotLen...), annotSID...), append(nop, boolTrue...)...)
	header := []byte{byte(tcAnnotation)<<4 | byte(len(body))}
	buf := append(header, body...)

	r := NewRawReader(buf)
	item, err := r.Next()
	require.NoError(t, err)
	require.Equal(t, ItemValue, item.Kind)
	require.Equal(t, BoolType, item.Value.IonType())
}

func TestParserRejectsZeroAnnotationLength(t *testing.T) {
	// annot-len VarUInt(0), then a bool.
	body := append(writeVarUint10(nil, 0), 0x11)
	header := []byte{byte(tcAnnotation)<<4 | byte(len(body))}
	buf := append(header, body...)

	r := NewRawReader(buf)
	_, err := r.Next()
	require.Error(t, err)
	var ierr *Error
	require.ErrorAs(t, err, &ierr)
	require.Equal(t, KindDecoding, ierr.Kind)
}

func TestParserStructFieldIDSortedFormReadsVarUintLength(t *testing.T) {
	// struct (type 13), l=1: a field-ID-sorted struct whose body
	// length is a following VarUInt rather than an inline byte count.
	// Body: field SID 10, bool true.
	body := append(writeVarUint10(nil, 10), 0x11)
	header := []byte{byte(tcStruct)<<4 | 1}
	length := writeVarUint10(nil, uint64(len(body)))
	buf := append(append(header, length...), body...)

	r := NewRawReader(buf)
	item, err := r.Next()
	require.NoError(t, err)
	require.Equal(t, ItemValue, item.Kind)
	require.Equal(t, StructType, item.Value.IonType())
	require.Equal(t, int64(len(buf)), item.Value.TotalLength())
}

func TestParserContainerChildLengthsSumToBody(t *testing.T) {
	buf := &writeBuf{}
	w := NewWriter(buf)
	err := w.WriteList(func(w *Writer) error {
		require.NoError(t, w.WriteI64(1))
		require.NoError(t, w.WriteString("ab"))
		return w.WriteBool(true)
	})
	require.NoError(t, err)
	require.NoError(t, w.Flush())

	r := NewRawReader(buf.Bytes())
	item, err := r.Next()
	require.NoError(t, err)
	ref, err := item.Value.Read()
	require.NoError(t, err)
	cont, err := ref.Container()
	require.NoError(t, err)

	var sum int64
	it := cont.Iter()
	for {
		child, ok, err := it.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		sum += child.TotalLength()
	}
	bodyLen := item.Value.TotalLength() - int64(len(item.Value.header()))
	require.Equal(t, bodyLen, sum)
}
