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

// buildStructStream writes IVM + one LST interning fieldName, then
// a struct {fieldName: "value"}, exercising the user reader's
// transparent LST handling end to end.
func buildStructStream(t *testing.T, fieldName string) []byte {
	t.Helper()
	buf := &writeBuf{}
	w := NewWriter(buf)
	require.NoError(t, w.WriteIVM(Version1_0))

	fieldSID := Symbol(len(systemsyms)) // first interned symbol's ID
	err := w.Annotate([]Symbol{SymDollarIonSymbolTable}, func() error {
		return w.WriteStruct(func(w *Writer) error {
			if err := w.WriteField(SymSymbols); err != nil {
				return err
			}
			return w.WriteList(func(w *Writer) error {
				return w.WriteString(fieldName)
			})
		})
	})
	require.NoError(t, err)

	err = w.WriteStruct(func(w *Writer) error {
		if err := w.WriteField(fieldSID); err != nil {
			return err
		}
		return w.WriteString("value")
	})
	require.NoError(t, err)
	require.NoError(t, w.Flush())
	return buf.Bytes()
}

func TestUserReaderResolvesFieldNameThroughLST(t *testing.T) {
	buf := buildStructStream(t, "greeting")
	r := NewUserReader(buf)

	v, ok, err := r.Next()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, StructType, v.IonType())

	require.NoError(t, r.StepIn())
	field, ok, err := r.Next()
	require.NoError(t, err)
	require.True(t, ok)
	name, hasName := field.FieldName()
	require.True(t, hasName)
	text, known := name.Text()
	require.True(t, known)
	require.Equal(t, "greeting", text)

	ref, err := field.Read()
	require.NoError(t, err)
	s, err := ref.StringValue()
	require.NoError(t, err)
	require.Equal(t, "value", s)

	require.NoError(t, r.StepOut())

	_, ok, err = r.Next()
	require.NoError(t, err)
	require.False(t, ok)
}

func TestUserReaderResolvesSymbolZeroAsUnknownText(t *testing.T) {
	buf := &writeBuf{}
	w := NewWriter(buf)
	err := w.WriteStruct(func(w *Writer) error {
		if err := w.WriteField(Symbol(0)); err != nil {
			return err
		}
		return w.WriteBool(true)
	})
	require.NoError(t, err)
	require.NoError(t, w.Flush())

	r := NewUserReader(buf.Bytes())
	v, ok, err := r.Next()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, StructType, v.IonType())

	require.NoError(t, r.StepIn())
	field, ok, err := r.Next()
	require.NoError(t, err)
	require.True(t, ok)
	name, hasName := field.FieldName()
	require.True(t, hasName)
	_, known := name.Text()
	require.False(t, known)
	require.Equal(t, Symbol(0), name.SymbolID())
}

func TestUserReaderStepOutDiscardsRemainingSiblings(t *testing.T) {
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
	// a second top-level value, to prove step_out resumed the
	// *parent* iterator correctly rather than leaving it stuck.
	require.NoError(t, w.WriteBool(true))
	require.NoError(t, w.Flush())

	r := NewUserReader(buf.Bytes())
	_, ok, err := r.Next()
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, r.StepIn())
	// read only the first child, then step out early
	_, ok, err = r.Next()
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, r.StepOut())

	next, ok, err := r.Next()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, BoolType, next.IonType())
}

func TestUserReaderStepOutAtTopLevelIsIllegalOperation(t *testing.T) {
	r := NewUserReader(nil)
	err := r.StepOut()
	require.Error(t, err)
	var ierr *Error
	require.ErrorAs(t, err, &ierr)
	require.Equal(t, KindIllegalOperation, ierr.Kind)
}
