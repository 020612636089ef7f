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

func TestSymtabInternIdempotent(t *testing.T) {
	var s Symtab
	a := s.Intern("foo")
	b := s.Intern("foo")
	require.Equal(t, a, b)
	require.Equal(t, "foo", s.Get(a))
}

func TestSymtabLookupZeroIsUnknownText(t *testing.T) {
	var s Symtab
	_, ok := s.Lookup(0)
	require.False(t, ok)

	s.Intern("foo")
	_, ok = s.Lookup(0)
	require.False(t, ok)
}

func TestSymtabResetRestoresSystemSymbols(t *testing.T) {
	var s Symtab
	s.Intern("foo")
	require.Greater(t, s.MaxID(), len(systemsyms))
	s.Reset()
	require.Equal(t, len(systemsyms), s.MaxID())
	_, ok := s.Symbolize("foo")
	require.False(t, ok)
}

// buildLSTBytes writes a $ion_symbol_table-annotated struct with
// given import marker (append vs reset) and symbol list, then
// reads it back via the raw/lazy parser so ProcessLST is exercised
// against real EncodedValue handles rather than hand-built ones.
func buildLSTBytes(t *testing.T, appendExisting bool, symbols []string) []byte {
	t.Helper()
	buf := &writeBuf{}
	w := NewWriter(buf)
	err := w.Annotate([]Symbol{SymDollarIonSymbolTable}, func() error {
		return w.WriteStruct(func(w *Writer) error {
			if appendExisting {
				if err := w.WriteField(SymImports); err != nil {
					return err
				}
				if err := w.WriteSymbol(SymDollarIonSymbolTable); err != nil {
					return err
				}
			}
			if err := w.WriteField(SymSymbols); err != nil {
				return err
			}
			return w.WriteList(func(w *Writer) error {
				for _, sym := range symbols {
					if err := w.WriteString(sym); err != nil {
						return err
					}
				}
				return nil
			})
		})
	})
	require.NoError(t, err)
	require.NoError(t, w.Flush())
	return buf.Bytes()
}

// writeBuf is a minimal io.Writer collecting bytes, used instead of
// bytes.Buffer to keep this file's own dependency footprint
// explicit about what it needs (Write and Bytes only).
type writeBuf struct{ b []byte }

func (w *writeBuf) Write(p []byte) (int, error) {
	w.b = append(w.b, p...)
	return len(p), nil
}
func (w *writeBuf) Bytes() []byte { return w.b }

func firstEncodedValue(t *testing.T, buf []byte) EncodedValue {
	t.Helper()
	r := NewRawReader(buf)
	item, err := r.Next()
	require.NoError(t, err)
	require.Equal(t, ItemValue, item.Kind)
	return item.Value
}

func TestProcessLSTResetAppendsSymbols(t *testing.T) {
	buf := buildLSTBytes(t, false, []string{"foo", "bar"})
	ev := firstEncodedValue(t, buf)
	lst, err := isLSTAnnotated(ev)
	require.NoError(t, err)
	require.True(t, lst)

	var s Symtab
	s.Intern("stale") // should be wiped by the reset
	require.NoError(t, s.ProcessLST(ev))

	id, ok := s.Symbolize("foo")
	require.True(t, ok)
	require.Equal(t, "foo", s.Get(id))
	_, ok = s.Symbolize("stale")
	require.False(t, ok)
}

func TestProcessLSTAppendPreservesExisting(t *testing.T) {
	var s Symtab
	kept := s.Intern("kept")

	buf := buildLSTBytes(t, true, []string{"added"})
	ev := firstEncodedValue(t, buf)
	require.NoError(t, s.ProcessLST(ev))

	require.Equal(t, "kept", s.Get(kept))
	_, ok := s.Symbolize("added")
	require.True(t, ok)
}

func TestProcessLSTNonStructIsIllegalOperation(t *testing.T) {
	buf := &writeBuf{}
	w := NewWriter(buf)
	require.NoError(t, w.WriteI64(42))
	require.NoError(t, w.Flush())

	ev := firstEncodedValue(t, buf.Bytes())
	var s Symtab
	err := s.ProcessLST(ev)
	require.Error(t, err)
	var ierr *Error
	require.ErrorAs(t, err, &ierr)
	require.Equal(t, KindIllegalOperation, ierr.Kind)
}
