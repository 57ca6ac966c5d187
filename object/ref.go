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

// Container is implemented by every built-in mutable container (dict_object,
// list_object). cloneContainer is the type-specific half of the clone
// described in §4.1: a deep clone of every child except the one that is
// ref_values_equal to childOfInterest, which is kept (by reference,
// re-parented) instead of being duplicated.
type Container interface {
	Object
	cloneContainer(childOfInterest Object) Container
	shareCount() int32
	adjustShareCount(delta int32)
	// reparentChildren sets every direct child's weak parent back-reference
	// to owner. Called once when a container is first wrapped in a Ref and
	// again on every CoW fork, since cloneContainer's clones start out with
	// a nil parent (see dict.go/list.go's cloneContainer).
	reparentChildren(owner *Ref)
}

// Ref is the copy-on-write wrapper every mutable container is exposed
// through (§3.3). It is itself an Object so that it can be stored as a
// dict/list child and carry its own weak parent back-reference, but all of
// its operation hooks pass through to the wrapped inner container.
type Ref struct {
	Base
	inner Container
}

var typeRef = &Type{Name: "ref", Parent: TypeObject, Mutable: true}

// NewRef wraps c in a fresh, exclusively-held Ref.
func NewRef(c Container) *Ref {
	r := &Ref{inner: c}
	r.Base.Init(r, typeRef)
	c.adjustShareCount(1)
	c.reparentChildren(r)
	return r
}

func (r *Ref) free() {
	r.inner.adjustShareCount(-1)
	r.inner.Unref()
}

// UnwrapRO returns the shared inner container for read-only use. The
// result may be aliased by other Refs.
func (r *Ref) UnwrapRO() Container { return r.inner }

// UnwrapRW guarantees exclusive access to the inner container, forking the
// CoW spine on demand (§4.3).
func (r *Ref) UnwrapRW() (Container, error) {
	if err := checkWritable(r); err != nil {
		return nil, err
	}
	if r.inner.shareCount() <= 1 {
		return r.inner, nil
	}

	// Walk from leaf (r) to root collecting the ancestor chain.
	chain := []*Ref{r}
	for cur := r; cur.parent() != nil; {
		p := cur.parent()
		chain = append(chain, p)
		cur = p
	}
	// chain[0] == r (leaf) ... chain[len-1] == root

	for i := len(chain) - 1; i >= 0; i-- {
		anc := chain[i]
		if anc.inner.shareCount() <= 1 {
			continue
		}
		var childOfInterest Object
		if i > 0 {
			childOfInterest = chain[i-1]
		}
		newInner := anc.inner.cloneContainer(childOfInterest)
		anc.inner.adjustShareCount(-1)
		anc.inner.Unref()
		anc.inner = newInner
		newInner.adjustShareCount(1)
		newInner.reparentChildren(anc)
	}
	return r.inner, nil
}

// CowFork produces a new Ref that currently shares the same inner
// container as r; the first write through either Ref triggers UnwrapRW's
// unshare-on-demand behavior. The returned Ref has no parent yet; the
// caller is expected to install it into a container (which will set its
// parent) or use it as a standalone handle.
func CowFork(r *Ref) *Ref {
	nr := &Ref{inner: r.inner}
	nr.Base.Init(nr, typeRef)
	r.inner.Ref()
	r.inner.adjustShareCount(1)
	return nr
}

// CowStore prepares value for insertion into container (whose own Ref is
// containerRef): if value is a Ref already owned by a different parent, it
// is forked so the new slot gets its own handle; the stored child's parent
// back-reference is then set to containerRef.
func CowStore(containerRef *Ref, value Object) Object {
	if childRef, ok := value.(*Ref); ok {
		if childRef.parent() != nil && childRef.parent() != containerRef {
			childRef = CowFork(childRef)
		}
		childRef.setParent(containerRef)
		return childRef
	}
	value.setParent(containerRef)
	return value
}

// RefValuesEqual is true when a and b are the same Ref, or both wrap the
// same inner container. Used while cloning to recognize the "child of
// interest" that must keep its identity.
func RefValuesEqual(a, b Object) bool {
	if a == nil || b == nil {
		return a == b
	}
	ra, aIsRef := a.(*Ref)
	rb, bIsRef := b.(*Ref)
	if aIsRef && bIsRef {
		return ra == rb || ra.inner == rb.inner
	}
	return a == b
}

// --- Ref's own Object hooks: delegate to the wrapped inner container ---

func (r *Ref) Truthy() bool                         { return r.inner.Truthy() }
func (r *Ref) Len() (int, error)                    { return r.inner.Len() }
func (r *Ref) Repr() string                          { return r.inner.Repr() }
func (r *Ref) Str() string                           { return r.inner.Str() }
func (r *Ref) FormatJSON(w JSONWriter) error         { return r.inner.FormatJSON(w) }
func (r *Ref) Marshal() ([]byte, ValueType, error)   { return r.inner.Marshal() }
func (r *Ref) TypeName() string                      { return r.inner.TypeName() }
func (r *Ref) Type() *Type                           { return r.inner.Type() }

func (r *Ref) GetSubscript(key Object) (Object, error) {
	return r.inner.GetSubscript(key)
}

func (r *Ref) SetSubscript(key Object, value Object) error {
	rw, err := r.UnwrapRW()
	if err != nil {
		return err
	}
	return rw.SetSubscript(key, CowStore(r, value))
}

func (r *Ref) IsKeySet(key Object) (bool, error) { return r.inner.IsKeySet(key) }

func (r *Ref) UnsetKey(key Object) (bool, error) {
	rw, err := r.UnwrapRW()
	if err != nil {
		return false, err
	}
	return rw.UnsetKey(key)
}

func (r *Ref) GetAttr(name string) (Object, error) { return r.inner.GetAttr(name) }

func (r *Ref) SetAttr(name string, value Object) error {
	rw, err := r.UnwrapRW()
	if err != nil {
		return err
	}
	return rw.SetAttr(name, CowStore(r, value))
}

func (r *Ref) Add(other Object) (Object, error) { return r.inner.Add(other) }

func (r *Ref) Clone() Object {
	cloned := r.inner.cloneContainer(nil)
	return NewRef(cloned)
}

func (r *Ref) Dedup(storage *DedupStorage) Object {
	r.inner.Dedup(storage)
	return r
}

func (r *Ref) IsReadonly() bool { return r.Base.IsReadonly() || r.inner.IsReadonly() }

func (r *Ref) MakeReadonly() {
	r.Base.MakeReadonly()
	r.inner.MakeReadonly()
}

func (r *Ref) Freeze() {
	r.Base.Freeze()
	r.inner.Freeze()
}

func (r *Ref) UnfreezeAndFree() {
	r.Base.UnfreezeAndFree()
	r.inner.UnfreezeAndFree()
}
