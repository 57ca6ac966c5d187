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

package object

import "fmt"

// Object is the universal FilterX value. Concrete types embed Base and
// override the hooks that apply to them; operations that don't apply to a
// given type fall back to Base's "method not supported" behavior rather
// than being silently absent (see design notes in DESIGN.md).
type Object interface {
	Type() *Type
	TypeName() string

	Ref() Object
	Unref()
	Freeze()
	UnfreezeAndFree()
	MakeReadonly()
	IsReadonly() bool

	Truthy() bool
	Len() (int, error)
	Repr() string
	Str() string
	FormatJSON(w JSONWriter) error
	Marshal() ([]byte, ValueType, error)

	GetSubscript(key Object) (Object, error)
	SetSubscript(key Object, value Object) error
	IsKeySet(key Object) (bool, error)
	UnsetKey(key Object) (bool, error)

	GetAttr(name string) (Object, error)
	SetAttr(name string, value Object) error

	Add(other Object) (Object, error)

	Clone() Object
	Dedup(storage *DedupStorage) Object

	// setParent/parent implement the weak back-reference used by CoW
	// propagation (§3.1, §4.3). They are unexported because only the
	// object package's own Ref/container machinery is allowed to walk
	// or mutate this link.
	setParent(p *Ref)
	parent() *Ref
}

// freer is implemented by concrete types that own children and must
// release them when the last strong+freeze reference disappears.
type freer interface {
	free()
}

// NotSupportedError is returned by the Base default implementation of any
// operation hook a concrete type does not override.
type NotSupportedError struct {
	Type string
	Op   string
}

func (e *NotSupportedError) Error() string {
	return fmt.Sprintf("filterx: %s does not support %s", e.Type, e.Op)
}

// ReadonlyError is returned when a mutating operation is attempted on an
// object that is readonly, or whose ownership chain contains a readonly
// ancestor.
type ReadonlyError struct {
	Type string
}

func (e *ReadonlyError) Error() string {
	return fmt.Sprintf("filterx: %s is readonly", e.Type)
}

// TypeError reports a type mismatch during evaluation (e.g. a dict
// operation attempted on a non-dict).
type TypeError struct {
	Msg string
}

func (e *TypeError) Error() string { return e.Msg }

func errTypef(format string, args ...interface{}) error {
	return &TypeError{Msg: fmt.Sprintf(format, args...)}
}

// Base is embedded by every concrete Object implementation. It owns the
// refcount, freeze count, readonly flag, dirty flag, and weak parent
// back-reference described in §3.1, plus default ("not supported")
// implementations of every operation hook a type does not need.
type Base struct {
	self     Object
	typ      *Type
	refcount int32
	freezeN  int32
	readonly bool
	dirty    bool
	owner    *Ref
	share    int32
}

// Init must be called by every concrete constructor before the object is
// handed to a caller. self is the concrete value embedding this Base (the
// "virtual self" pointer used to dispatch to type-specific free()).
func (b *Base) Init(self Object, t *Type) {
	b.self = self
	b.typ = t
	b.refcount = 1
}

func (b *Base) Type() *Type     { return b.typ }
func (b *Base) TypeName() string {
	if b.typ == nil {
		return "<uninitialized>"
	}
	return b.typ.Name
}

func (b *Base) Ref() Object {
	b.refcount++
	return b.self
}

func (b *Base) Unref() {
	b.refcount--
	b.maybeFree()
}

func (b *Base) Freeze() {
	b.freezeN++
}

func (b *Base) UnfreezeAndFree() {
	b.freezeN--
	b.maybeFree()
}

func (b *Base) maybeFree() {
	if b.refcount <= 0 && b.freezeN <= 0 {
		if f, ok := b.self.(freer); ok {
			f.free()
		}
	}
}

func (b *Base) RefCount() int32 { return b.refcount }
func (b *Base) FreezeCount() int32 { return b.freezeN }

func (b *Base) MakeReadonly()     { b.readonly = true }
func (b *Base) IsReadonly() bool  { return b.readonly }
func (b *Base) isDirty() bool     { return b.dirty }
func (b *Base) markDirty()        { b.dirty = true }

func (b *Base) setParent(p *Ref) { b.owner = p }
func (b *Base) parent() *Ref     { return b.owner }

// shareCount/adjustShareCount track how many Refs currently wrap this
// container instance; see ref.go's UnwrapRW for how this drives forking.
func (b *Base) shareCount() int32          { return b.share }
func (b *Base) adjustShareCount(d int32)   { b.share += d }

// Default operation hooks: "method not supported" rather than a silent
// no-op, per the §9 design note.

func (b *Base) Truthy() bool { return true }

func (b *Base) Len() (int, error) {
	return 0, &NotSupportedError{Type: b.TypeName(), Op: "len"}
}

func (b *Base) Repr() string { return "<" + b.TypeName() + ">" }
func (b *Base) Str() string  { return b.Repr() }

func (b *Base) FormatJSON(w JSONWriter) error {
	return &NotSupportedError{Type: b.TypeName(), Op: "format_json"}
}

func (b *Base) Marshal() ([]byte, ValueType, error) {
	return nil, VTUnknown, &NotSupportedError{Type: b.TypeName(), Op: "marshal"}
}

func (b *Base) GetSubscript(key Object) (Object, error) {
	return nil, &NotSupportedError{Type: b.TypeName(), Op: "get_subscript"}
}

func (b *Base) SetSubscript(key Object, value Object) error {
	return &NotSupportedError{Type: b.TypeName(), Op: "set_subscript"}
}

func (b *Base) IsKeySet(key Object) (bool, error) {
	return false, &NotSupportedError{Type: b.TypeName(), Op: "is_key_set"}
}

func (b *Base) UnsetKey(key Object) (bool, error) {
	return false, &NotSupportedError{Type: b.TypeName(), Op: "unset_key"}
}

func (b *Base) GetAttr(name string) (Object, error) {
	return nil, &NotSupportedError{Type: b.TypeName(), Op: "getattr"}
}

func (b *Base) SetAttr(name string, value Object) error {
	return &NotSupportedError{Type: b.TypeName(), Op: "setattr"}
}

func (b *Base) Add(other Object) (Object, error) {
	return nil, &NotSupportedError{Type: b.TypeName(), Op: "add"}
}

// Clone is the default value-copy: immutable atoms need no deep copy, so
// the default just hands back another strong reference.
func (b *Base) Clone() Object { return b.self.Ref() }

// Dedup's default treats the receiver as already-canonical: atoms override
// this to consult the dedup storage (see dedup.go); containers override it
// to recurse into children without dedup'ing themselves.
func (b *Base) Dedup(storage *DedupStorage) Object { return b.self }

// JSONWriter is the sink format_json writes into; satisfied by
// *strings.Builder and *bytes.Buffer alike.
type JSONWriter interface {
	WriteString(string) (int, error)
	WriteByte(byte) error
}

// checkWritable walks the ownership chain starting at obj (through any Ref
// wrappers encountered) and fails if obj or any ancestor is readonly. It is
// the shared implementation of invariant §3.1.2.
func checkWritable(obj Object) error {
	if obj.IsReadonly() {
		return &ReadonlyError{Type: obj.TypeName()}
	}
	for p := obj.parent(); p != nil; p = p.parent() {
		if p.IsReadonly() || p.inner.IsReadonly() {
			return &ReadonlyError{Type: p.inner.TypeName()}
		}
	}
	return nil
}
