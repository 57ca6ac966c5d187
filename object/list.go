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

import "golang.org/x/exp/slices"

// maxListLen bounds list_object the same way the host's LogMessage value
// array is bounded (§3.5).
const maxListLen = 65536

var (
	TypeList       = &Type{Name: "list", Parent: TypeObject, Mutable: true}
	TypeListObject = &Type{Name: "list_object", Parent: TypeList, Mutable: true}
)

// ListObject is the built-in index-addressed container (§3.5): a dense
// slice of Objects, negative indices normalized against the current length.
type ListObject struct {
	Base
	items []Object
}

// NewList creates an empty list_object.
func NewList() *ListObject {
	l := &ListObject{}
	l.Base.Init(l, TypeListObject)
	return l
}

// NewListRef creates an empty list_object already wrapped in a Ref, the
// only form mutable containers are meant to be handed out in (§3.1
// invariant 4).
func NewListRef() *Ref { return NewRef(NewList()) }

// IsList reports whether o is (or wraps) a list.
func IsList(o Object) bool {
	_, ok := asListItems(o)
	return ok
}

// newListFrom adopts items directly (already ref'd/parented by the caller)
// without copying, for internal builders like Keys.
func newListFrom(items []Object) *ListObject {
	l := &ListObject{items: items}
	l.Base.Init(l, TypeListObject)
	return l
}

func (l *ListObject) free() {
	for _, it := range l.items {
		it.setParent(nil)
		it.Unref()
	}
}

func (l *ListObject) Truthy() bool      { return len(l.items) > 0 }
func (l *ListObject) Len() (int, error) { return len(l.items), nil }

func (l *ListObject) Repr() string {
	var b builder
	b.WriteByte('[')
	for i, it := range l.items {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(it.Repr())
	}
	b.WriteByte(']')
	return b.String()
}

func (l *ListObject) Str() string { return l.Repr() }

func (l *ListObject) FormatJSON(w JSONWriter) error {
	w.WriteByte('[')
	for i, it := range l.items {
		if i > 0 {
			w.WriteString(",")
		}
		if err := it.FormatJSON(w); err != nil {
			return err
		}
	}
	w.WriteByte(']')
	return nil
}

func (l *ListObject) Marshal() ([]byte, ValueType, error) {
	var b builder
	if err := l.FormatJSON(&b); err != nil {
		return nil, VTUnknown, err
	}
	return []byte(b.String()), VTList, nil
}

// normalizeIndex converts a possibly-negative index to a slice position,
// per §3.5's "negative indices count back from the end" rule.
func (l *ListObject) normalizeIndex(i int64) (int, bool) {
	n := int64(len(l.items))
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return 0, false
	}
	return int(i), true
}

func asIndex(key Object) (int64, bool) {
	switch v := key.(type) {
	case *Integer:
		return v.Value, true
	case *Ref:
		return asIndex(v.inner)
	}
	return 0, false
}

func (l *ListObject) GetSubscript(key Object) (Object, error) {
	idx, ok := asIndex(key)
	if !ok {
		return nil, errTypef("list indices must be integers, got %s", key.TypeName())
	}
	pos, ok := l.normalizeIndex(idx)
	if !ok {
		return nil, errTypef("list index %d out of range", idx)
	}
	return l.items[pos].Ref(), nil
}

func (l *ListObject) SetSubscript(key Object, value Object) error {
	if err := checkWritable(l); err != nil {
		return err
	}
	idx, ok := asIndex(key)
	if !ok {
		return errTypef("list indices must be integers, got %s", key.TypeName())
	}
	if pos, ok := l.normalizeIndex(idx); ok {
		old := l.items[pos]
		old.setParent(nil)
		old.Unref()
		l.items[pos] = value
		return nil
	}
	if idx >= int64(len(l.items)) {
		if idx >= maxListLen {
			return errTypef("list exceeds maximum length %d", maxListLen)
		}
		// object-list.c:125-126 grows the backing array with
		// g_ptr_array_set_size(index+1) before storing, zero-filling the
		// gap; we fill with fresh null objects instead of a shared
		// singleton so each gap slot still has independent refcount and
		// parent-pointer ownership like every other list slot.
		l.items = slices.Grow(l.items, int(idx+1)-len(l.items))
		for int64(len(l.items)) < idx {
			gap := NewNull()
			gap.setParent(nil)
			l.items = append(l.items, gap)
		}
		l.items = append(l.items, value)
		return nil
	}
	return errTypef("list index %d out of range", idx)
}

func (l *ListObject) IsKeySet(key Object) (bool, error) {
	idx, ok := asIndex(key)
	if !ok {
		return false, errTypef("list indices must be integers, got %s", key.TypeName())
	}
	_, ok = l.normalizeIndex(idx)
	return ok, nil
}

func (l *ListObject) UnsetKey(key Object) (bool, error) {
	if err := checkWritable(l); err != nil {
		return false, err
	}
	idx, ok := asIndex(key)
	if !ok {
		return false, errTypef("list indices must be integers, got %s", key.TypeName())
	}
	pos, ok := l.normalizeIndex(idx)
	if !ok {
		return false, nil
	}
	l.items[pos].setParent(nil)
	l.items[pos].Unref()
	l.items = slices.Delete(l.items, pos, pos+1)
	return true, nil
}

// Append adds value to the end of the list, as used by generators
// producing list output (§4.4).
func (l *ListObject) Append(value Object) error {
	if err := checkWritable(l); err != nil {
		return err
	}
	if len(l.items) >= maxListLen {
		return errTypef("list exceeds maximum length %d", maxListLen)
	}
	l.items = append(l.items, value)
	return nil
}

func (l *ListObject) Add(other Object) (Object, error) {
	rhs, ok := asListItems(other)
	if !ok {
		return nil, errTypef("cannot add %s to list", other.TypeName())
	}
	cloned := l.cloneContainer(nil).(*ListObject)
	cloned.items = slices.Grow(cloned.items, len(rhs))
	for _, it := range rhs {
		stored := it.Clone()
		stored.setParent(nil)
		cloned.items = append(cloned.items, stored)
	}
	return NewRef(cloned), nil
}

// Reserve grows the backing slice's spare capacity by n elements without
// changing Len, for callers (e.g. expr's literal-container build) that
// know the final element count up front but still fill it in one at a
// time via SetSubscript.
func (l *ListObject) Reserve(n int) {
	l.items = slices.Grow(l.items, n)
}

func asListItems(o Object) ([]Object, bool) {
	switch v := o.(type) {
	case *ListObject:
		return v.items, true
	case *Ref:
		return asListItems(v.inner)
	}
	return nil, false
}

func (l *ListObject) cloneContainer(childOfInterest Object) Container {
	nl := &ListObject{items: make([]Object, len(l.items))}
	nl.Base.Init(nl, TypeListObject)
	for i, it := range l.items {
		var stored Object
		if childOfInterest != nil && RefValuesEqual(it, childOfInterest) {
			stored = it.Ref()
		} else {
			stored = it.Clone()
		}
		stored.setParent(nil)
		nl.items[i] = stored
	}
	return nl
}

func (l *ListObject) Clone() Object { return NewRef(l.cloneContainer(nil)) }

func (l *ListObject) reparentChildren(owner *Ref) {
	for _, it := range l.items {
		it.setParent(owner)
	}
}

func (l *ListObject) Dedup(storage *DedupStorage) Object {
	for i, it := range l.items {
		canon := it.Dedup(storage)
		if canon != it {
			canon.setParent(nil)
			l.items[i] = canon
		}
	}
	return l
}

func (l *ListObject) MakeReadonly() {
	l.Base.MakeReadonly()
	for _, it := range l.items {
		it.MakeReadonly()
	}
}

func (l *ListObject) Freeze() {
	l.Base.Freeze()
	for _, it := range l.items {
		it.Freeze()
	}
}

func (l *ListObject) UnfreezeAndFree() {
	l.Base.UnfreezeAndFree()
	for _, it := range l.items {
		it.UnfreezeAndFree()
	}
}
