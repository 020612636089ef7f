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
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriterListOfIntsMatchesWireBytes(t *testing.T) {
	buf := &writeBuf{}
	w := NewWriter(buf)
	err := w.WriteList(func(w *Writer) error {
		for _, v := range []int64{1, 2, 3} {
			if err := w.WriteI64(v); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, w.Flush())
	require.Equal(t,
		[]byte{0xb6, 0x21, 0x01, 0x21, 0x02, 0x21, 0x03},
		buf.Bytes())
}

func TestWriterStructTextFieldIsEncodingError(t *testing.T) {
	w := NewWriter(&writeBuf{})
	err := w.WriteFieldText("foo")
	require.Error(t, err)
	var ierr *Error
	require.ErrorAs(t, err, &ierr)
	require.Equal(t, KindEncoding, ierr.Kind)
}

func TestWriterContainerErrorDiscardsPartialBytes(t *testing.T) {
	sentinel := decodingErr("boom")
	buf := &writeBuf{}
	w := NewWriter(buf)
	err := w.WriteList(func(w *Writer) error {
		require.NoError(t, w.WriteI64(1))
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)
	require.NoError(t, w.Flush())
	require.Empty(t, buf.Bytes())
}

func TestWriterFlushRejectsOpenContainer(t *testing.T) {
	w := NewWriter(&writeBuf{})
	w.beginContainer(containerList)
	err := w.Flush()
	require.Error(t, err)
	var ierr *Error
	require.ErrorAs(t, err, &ierr)
	require.Equal(t, KindIllegalOperation, ierr.Kind)
}

func TestWriterRoundTripsThroughReader(t *testing.T) {
	buf := &writeBuf{}
	w := NewWriter(buf)
	require.NoError(t, w.WriteIVM(Version1_0))
	err := w.WriteStruct(func(w *Writer) error {
		if err := w.WriteField(Symbol(20)); err != nil {
			return err
		}
		return w.WriteString("hello")
	})
	require.NoError(t, err)
	require.NoError(t, w.Flush())

	r := NewRawReader(buf.Bytes())
	item, err := r.Next()
	require.NoError(t, err)
	require.Equal(t, ItemIVM, item.Kind)

	item, err = r.Next()
	require.NoError(t, err)
	require.Equal(t, ItemValue, item.Kind)
	require.Equal(t, StructType, item.Value.IonType())

	ref, err := item.Value.Read()
	require.NoError(t, err)
	cont, err := ref.Container()
	require.NoError(t, err)
	it := cont.Iter()
	field, ok, err := it.Next()
	require.NoError(t, err)
	require.True(t, ok)
	sid, ok := field.FieldName()
	require.True(t, ok)
	require.Equal(t, Symbol(20), sid)
	fref, err := field.Read()
	require.NoError(t, err)
	s, err := fref.StringValue()
	require.NoError(t, err)
	require.Equal(t, "hello", s)
}

func TestWriterNestedEmptyListsLinear(t *testing.T) {
	const depth = 1000
	var build func(w *Writer, n int) error
	build = func(w *Writer, n int) error {
		if n == 0 {
			return nil
		}
		return w.WriteList(func(w *Writer) error {
			return build(w, n-1)
		})
	}
	buf := &writeBuf{}
	w := NewWriter(buf)
	require.NoError(t, build(w, depth))
	require.NoError(t, w.Flush())

	r := NewRawReader(buf.Bytes())
	got := 0
	for {
		item, err := r.Next()
		require.NoError(t, err)
		if item.Kind == ItemEndOfStream {
			break
		}
		got++
		ref, err := item.Value.Read()
		require.NoError(t, err)
		cont, err := ref.Container()
		require.NoError(t, err)
		n := 0
		it := cont.Iter()
		for {
			_, ok, err := it.Next()
			require.NoError(t, err)
			if !ok {
				break
			}
			n++
		}
		require.LessOrEqual(t, n, 1)
		break // only the outermost value is a top-level item
	}
	require.Equal(t, 1, got)
}

func TestWriterIntZero(t *testing.T) {
	buf := &writeBuf{}
	w := NewWriter(buf)
	require.NoError(t, w.WriteInt(big.NewInt(0)))
	require.NoError(t, w.Flush())
	require.Equal(t, []byte{0x20}, buf.Bytes())
}

func TestWriterFloatPositiveZero(t *testing.T) {
	buf := &writeBuf{}
	w := NewWriter(buf)
	require.NoError(t, w.WriteFloat64(0))
	require.NoError(t, w.Flush())
	require.Equal(t, []byte{0x40}, buf.Bytes())
}
