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

import "strconv"

// Symbol is a symbol ID: a non-negative integer handle into a
// symbol table. Symbol 0 is reserved and denotes unknown text.
type Symbol uint64

// System symbol IDs 1..=9, fixed by the Ion specification.
const (
	SymDollarIon                  Symbol = 1
	SymDollarIon10                Symbol = 2
	SymDollarIonSymbolTable       Symbol = 3
	SymName                       Symbol = 4
	SymVersion                    Symbol = 5
	SymImports                    Symbol = 6
	SymSymbols                    Symbol = 7
	SymMaxID                      Symbol = 8
	SymDollarIonSharedSymbolTable Symbol = 9
)

// RawSymbolRef is how the raw (pre-resolution) layer represents a
// symbol token: either a bare SID, whose text must be looked up in
// a symbol table, or inline text that needs no lookup. The raw
// layer never performs that lookup itself.
type RawSymbolRef struct {
	id    Symbol
	text  []byte
	isSID bool
}

// RawSID constructs a RawSymbolRef carrying a symbol ID.
func RawSID(id Symbol) RawSymbolRef { return RawSymbolRef{id: id, isSID: true} }

// RawText constructs a RawSymbolRef carrying inline text.
func RawText(text []byte) RawSymbolRef { return RawSymbolRef{text: text} }

// IsSymbolID reports whether the ref is a bare SID rather than
// inline text.
func (r RawSymbolRef) IsSymbolID() bool { return r.isSID }

// SymbolID returns the SID carried by the ref. It is only
// meaningful when IsSymbolID is true.
func (r RawSymbolRef) SymbolID() Symbol { return r.id }

// Text returns the inline text carried by the ref. It is only
// meaningful when IsSymbolID is false.
func (r RawSymbolRef) Text() []byte { return r.text }

// SymbolRef is the user-layer, fully-resolved form of a symbol
// token: either known text, or a SID whose text is unknown (SID 0,
// or a SID beyond the live symbol table produced by an
// unknown-text LST entry).
type SymbolRef struct {
	text      string
	sid       Symbol
	textKnown bool
}

// KnownText constructs a SymbolRef with resolved text.
func KnownText(text string) SymbolRef { return SymbolRef{text: text, textKnown: true} }

// UnknownText constructs a SymbolRef whose text could not be
// resolved, retaining the SID for diagnostics.
func UnknownText(sid Symbol) SymbolRef { return SymbolRef{sid: sid} }

// Text returns the resolved text and true, or ("", false) if the
// text is unknown.
func (s SymbolRef) Text() (string, bool) { return s.text, s.textKnown }

// SymbolID returns the SID this ref resolved from, if known.
func (s SymbolRef) SymbolID() Symbol { return s.sid }

func (s SymbolRef) String() string {
	if s.textKnown {
		return s.text
	}
	return "$" + strconv.FormatUint(uint64(s.sid), 10)
}
