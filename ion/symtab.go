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
	"reflect"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Symtab is an ion symbol table
type Symtab struct {
	interned []string       // symbol -> string lookup
	aliased  int            // read-only len of interned
	toindex  map[string]int // string -> symbol lookup
	memsize  int
}

func (s *Symtab) init() {
	s.toindex = maps.Clone(system2id)
}

// Reset resets a symbol table
// so that it no longer contains
// any symbols (except for the ion
// pre-defined symbols).
func (s *Symtab) Reset() {
	// NOTE: clear keeps the existing
	// s.toindex map and deletes its
	// entries rather than re-allocating
	// a new map.
	s.clear()
}

// Get gets the string associated
// with the given interned symbol,
// or returns the empty string
// when there is no symbol with
// the given association.
func (s *Symtab) Get(x Symbol) string {
	lbl, _ := s.Lookup(x)
	return lbl
}

// Lookup gets the string associated
// with the given interned symbol.
// This returns ("", false) when the
// symbol is not present in the table,
// and always for symbol 0, which Ion
// reserves to denote unknown text.
func (s *Symtab) Lookup(x Symbol) (string, bool) {
	if x == 0 {
		return "", false
	}
	if int(x) < len(systemsyms) {
		return systemsyms[x], true
	}
	id := int(x) - len(systemsyms)
	if id < len(s.interned) {
		return s.interned[id], true
	}
	return "", false
}

// MaxID returns the total number of
// interned symbols. Note that ion
// defines ten symbols that are automatically
// interned, so an "empty" symbol table
// has MaxID() of 10.
func (s *Symtab) MaxID() int {
	return len(systemsyms) + len(s.interned)
}

func (s *Symtab) getBytes(buf []byte) (Symbol, bool) {
	if s.toindex == nil {
		i, ok := system2id[string(buf)]
		return Symbol(i), ok
	}
	i, ok := s.toindex[string(buf)]
	return Symbol(i), ok
}

// InternBytes is identical to Intern,
// except that it accepts a []byte instead of
// a string as an argument.
func (s *Symtab) InternBytes(buf []byte) Symbol {
	if s.toindex == nil {
		s.init()
	}
	i, ok := s.toindex[string(buf)]
	if ok {
		return Symbol(i)
	}
	id := len(s.interned) + len(systemsyms)
	s.toindex[string(buf)] = id
	s.append(string(buf))
	s.memsize += len(buf)
	return Symbol(id)
}

// Intern interns the given string
// if it is not already interned
// and returns the associated Symbol
func (s *Symtab) Intern(x string) Symbol {
	if s.toindex == nil {
		s.init()
	}
	i, ok := s.toindex[x]
	if ok {
		return Symbol(i)
	}
	id := len(s.interned) + len(systemsyms)
	s.toindex[x] = id
	s.append(x)
	s.memsize += len(x)
	return Symbol(id)
}

// Symbolize returns the symbol associated
// with the string 'x' in the symbol table,
// or (0, false) if the string has not been
// interned.
func (s *Symtab) Symbolize(x string) (Symbol, bool) {
	if s.toindex == nil {
		i, ok := system2id[x]
		return Symbol(i), ok
	}
	i, ok := s.toindex[x]
	return Symbol(i), ok
}

// SymbolizeBytes works identically to Symbolize,
// except that it accepts a []byte.
func (s *Symtab) SymbolizeBytes(x []byte) (Symbol, bool) {
	if s.toindex == nil {
		i, ok := system2id[string(x)]
		return Symbol(i), ok
	}
	i, ok := s.toindex[string(x)]
	return Symbol(i), ok
}

// Equal checks if two symtabs are equal.
func (s *Symtab) Equal(o *Symtab) bool {
	return reflect.DeepEqual(s, o)
}

// CloneInto performs a deep copy
// of s into o. CloneInto takes care to
// use some of the existing storage in o
// in order to reduce the copying overhead.
func (s *Symtab) CloneInto(o *Symtab) {
	// skip common prefix:
	i := 0
	for i < len(o.interned) && i < len(s.interned) && s.interned[i] == o.interned[i] {
		i++
	}
	if o.toindex == nil {
		o.init()
	}
	// for non-overlapping elements in o,
	// overwrite with elements from s
	// or delete the associated toindex entry
	for ; i < len(o.interned); i++ {
		str := o.interned[i]
		if old, ok := o.toindex[str]; ok && old == i+len(systemsyms) {
			// we can only delete if the key
			// was not part of an insert already
			// (i.e. the symbol was moved from
			// a high to a low position)
			delete(o.toindex, str)
		}
		o.memsize -= len(o.interned[i])
		if i < len(s.interned) {
			o.set(i, s.interned[i])
			o.memsize += len(s.interned[i])
			o.toindex[o.interned[i]] = i + len(systemsyms)
		}
	}
	// if we are inserting more elements, keep going:
	for len(o.interned) < len(s.interned) {
		x := s.interned[len(o.interned)]
		o.memsize += len(x)
		o.toindex[x] = len(o.interned) + len(systemsyms)
		o.append(x)
	}
	// ... or, drop the tail now that we've deleted toindex[...]
	o.interned = o.interned[:len(s.interned)]
}

func (s *Symtab) append(v string) {
	if i := len(s.interned); i < cap(s.interned) {
		s.interned = s.interned[:i+1]
		s.set(i, v)
	} else {
		s.interned = append(s.interned, v)
		s.aliased = 0
	}
}

func (s *Symtab) set(i int, v string) {
	if s.interned[i] != v {
		if i < s.aliased {
			s.interned = slices.Clone(s.interned)
			s.aliased = 0
		}
		s.interned[i] = v
	}
}

// these symbols are predefined
var systemsyms = []string{
	"$0",
	"$ion",
	"$ion_1_0",
	"$ion_symbol_table",
	"name",
	"version",
	"imports",
	"symbols",
	"max_id",
	"$ion_shared_symbol_table",
}

var system2id map[string]int

func init() {
	system2id = make(map[string]int, len(systemsyms))
	for i := range systemsyms {
		system2id[systemsyms[i]] = i
	}
}

// MinimumID returns the lowest ID
// that a string could be symbolized as.
//
// System symbols have IDs less than 10;
// all other symbols have and ID of at least 10.
func MinimumID(str string) int {
	i, ok := system2id[str]
	if !ok {
		return len(systemsyms)
	}
	return i
}

func (s *Symtab) clear() {
	s.interned = s.interned[:0]
	s.memsize = 0
	if s.toindex != nil {
		maps.Clear(s.toindex)
		maps.Copy(s.toindex, system2id)
	}
}

// isLSTAnnotated reports whether ev carries a leading $ion_symbol_table
// (SID 3) annotation, the marker that introduces a local symbol table.
func isLSTAnnotated(ev EncodedValue) (bool, error) {
	it := ev.Annotations()
	sym, ok, err := it.Next()
	if err != nil {
		return false, err
	}
	return ok && sym == SymDollarIonSymbolTable, nil
}

// ProcessLST applies a local symbol table struct (already recognized
// by its $ion_symbol_table annotation) to s. It implements the
// append-vs-reset rule: an 'imports' field equal to SID 3
// ($ion_symbol_table) means the new 'symbols' are appended after the
// table's current contents; any other value (including its absence)
// resets the table to just the system symbols before appending.
//
// Shared symbol table imports (a list of {name, version, max_id}
// structs under 'imports') are not supported; encountering one is a
// decoding error rather than a silent misread.
func (s *Symtab) ProcessLST(ev EncodedValue) error {
	if ev.IonType() != StructType {
		return illegalOpErr("local symbol table value must be a struct")
	}
	ref, err := ev.Read()
	if err != nil {
		return err
	}
	container, err := ref.Container()
	if err != nil {
		return err
	}

	reset := true
	var symbolsField *EncodedValue
	it := container.Iter()
	for {
		field, ok, ferr := it.Next()
		if ferr != nil {
			return ferr
		}
		if !ok {
			break
		}
		sid, _ := field.FieldName()
		switch Symbol(sid) {
		case SymImports:
			fref, rerr := field.Read()
			if rerr != nil {
				return rerr
			}
			switch {
			case fref.Type() == SymbolType:
				sv, serr := fref.SymbolValue()
				if serr != nil {
					return serr
				}
				if sv.SymbolID() == SymDollarIonSymbolTable {
					reset = false
				}
			case fref.Type() == ListType:
				return decodingErr("shared symbol table imports are not supported")
			}
		case SymSymbols:
			f := field
			symbolsField = &f
		}
	}

	if reset {
		s.clear()
	}
	if s.toindex == nil {
		s.init()
	}

	if symbolsField == nil {
		return nil
	}
	sref, err := symbolsField.Read()
	if err != nil {
		return err
	}
	list, err := sref.Container()
	if err != nil {
		return err
	}
	lit := list.Iter()
	for {
		entry, ok, lerr := lit.Next()
		if lerr != nil {
			return lerr
		}
		if !ok {
			break
		}
		eref, rerr := entry.Read()
		if rerr != nil {
			return rerr
		}
		if eref.Type() != StringType || eref.IsNull() {
			// Non-string entries (including null.string) still
			// consume a symbol ID, per the binary spec; the text
			// for that ID is simply unknown.
			s.append("")
			s.memsize++
			continue
		}
		str, serr := eref.StringValue()
		if serr != nil {
			return serr
		}
		s.append(str)
		s.memsize += len(str)
		if _, ok := s.toindex[str]; !ok {
			s.toindex[str] = len(s.interned) - 1 + len(systemsyms)
		}
	}
	return nil
}

// Contains returns true if s is a superset
// of the symbols within inner, and all of
// the symbols in inner have the same symbol
// ID in s.
//
// If x.Contains(y), then x is a semantically
// equivalent substitute for y.
func (s *Symtab) Contains(inner *Symtab) bool {
	return s.contains(inner.interned)
}

func (s *Symtab) contains(in []string) bool {
	return stcontains(s.interned, in)
}

// stcontains returns whether s is a superset of in.
func stcontains(s, in []string) bool {
	return len(in) == 0 || len(in) <= len(s) &&
		(&in[0] == &s[0] || slices.Equal(s[:len(in)], in))
}

// alias returns a reference to the current symbol
// table and marks the symbol table as aliased so it
// is not overwritten when resetting or cloning.
func (s *Symtab) alias() []string {
	n := len(s.interned)
	if n > s.aliased {
		s.aliased = n
	}
	return s.interned[:n:n]
}
