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

// UserReader wraps a RawReader, hiding IVMs and local-symbol-table
// structs and resolving every SID it surfaces to text via its
// Symtab. It is the reader most callers want; RawReader remains
// available for callers that need to see system-level items
// themselves.
type UserReader struct {
	raw   *RawReader
	syms  Symtab
	stack []*RawContainerIter
	cur   EncodedValue
	have  bool
}

// NewUserReader creates a UserReader over buf, starting with an
// empty symbol table (the system symbols only, as if a fresh IVM
// had just been seen).
func NewUserReader(buf []byte) *UserReader {
	return &UserReader{raw: NewRawReader(buf)}
}

// Symtab returns the reader's live symbol table, useful for
// diagnostics or for seeding another reader/writer with the same
// symbols.
func (r *UserReader) Symtab() *Symtab { return &r.syms }

func (r *UserReader) resolve(sid Symbol) SymbolRef {
	if text, ok := r.syms.Lookup(sid); ok {
		return KnownText(text)
	}
	return UnknownText(sid)
}

// Next advances to the next user-visible value, transparently
// consuming any IVMs and local-symbol-table structs it encounters
// along the way. It returns (ValueReader{}, false, nil) at the end
// of the current container (or the stream, at depth 0).
func (r *UserReader) Next() (ValueReader, bool, error) {
	for {
		var ev EncodedValue
		if depth := len(r.stack); depth > 0 {
			next, ok, err := r.stack[depth-1].Next()
			if err != nil {
				return ValueReader{}, false, err
			}
			if !ok {
				return ValueReader{}, false, nil
			}
			ev = next
		} else {
			item, err := r.raw.Next()
			if err != nil {
				return ValueReader{}, false, err
			}
			switch item.Kind {
			case ItemIVM:
				r.syms.Reset()
				continue
			case ItemEndOfStream:
				return ValueReader{}, false, nil
			default:
				ev = item.Value
			}

			lst, lerr := isLSTAnnotated(ev)
			if lerr != nil {
				return ValueReader{}, false, lerr
			}
			if lst {
				if err := r.syms.ProcessLST(ev); err != nil {
					return ValueReader{}, false, err
				}
				continue
			}
		}
		r.cur = ev
		r.have = true
		return ValueReader{r: r, ev: ev}, true, nil
	}
}

// StepIn descends into the container most recently returned by
// Next. It is an IllegalOperation if that value is not a container
// or if Next has not yet returned a value.
func (r *UserReader) StepIn() error {
	if !r.have {
		return illegalOpErr("step_in called before any value was read")
	}
	ref, err := r.cur.Read()
	if err != nil {
		return err
	}
	cont, err := ref.Container()
	if err != nil {
		return err
	}
	r.stack = append(r.stack, cont.Iter())
	r.have = false
	return nil
}

// StepOut returns to the enclosing container (or the top level),
// discarding any unread children of the container just left. It is
// an IllegalOperation at depth 0.
func (r *UserReader) StepOut() error {
	if len(r.stack) == 0 {
		return illegalOpErr("step_out called at top level")
	}
	r.stack = r.stack[:len(r.stack)-1]
	r.have = false
	return nil
}

// Depth returns the current container nesting depth (0 at the top
// level).
func (r *UserReader) Depth() int { return len(r.stack) }

// ValueReader is the resolved, user-facing view of one value: its
// field name and annotations (if any) have had their SIDs resolved
// against the reader's live symbol table.
type ValueReader struct {
	r  *UserReader
	ev EncodedValue
}

// IonType returns the value's Ion type.
func (v ValueReader) IonType() Type { return v.ev.IonType() }

// IsNull reports whether the value is a typed null.
func (v ValueReader) IsNull() bool { return v.ev.IsNull() }

// FieldName returns the resolved field name and true if this value
// was read from a struct.
func (v ValueReader) FieldName() (SymbolRef, bool) {
	sid, ok := v.ev.FieldName()
	if !ok {
		return SymbolRef{}, false
	}
	return v.r.resolve(sid), true
}

// Annotations returns the value's annotations, resolved to text
// where possible, in wire order.
func (v ValueReader) Annotations() ([]SymbolRef, error) {
	it := v.ev.Annotations()
	var out []SymbolRef
	for {
		sid, ok, err := it.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, v.r.resolve(sid))
	}
}

// Read decodes the value's body, exactly as the raw layer would.
// Containers still need StepIn/StepOut on the enclosing UserReader
// to visit their children with symbol resolution.
func (v ValueReader) Read() (RawValueRef, error) {
	return v.ev.Read()
}

// SymbolValue reads the value as a symbol and resolves its SID
// against the reader's live symbol table.
func (v ValueReader) SymbolValue() (SymbolRef, error) {
	ref, err := v.ev.Read()
	if err != nil {
		return SymbolRef{}, err
	}
	raw, err := ref.SymbolValue()
	if err != nil {
		return SymbolRef{}, err
	}
	return v.r.resolve(raw.SymbolID()), nil
}
