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

import (
	"crypto/rand"
	"encoding/binary"

	"github.com/dchest/siphash"
	"golang.org/x/exp/slices"
)

// Dict is the abstract string-keyed container contract; dict_object is the
// only built-in implementation, but the interface lets other hosts plug in
// specialized dicts (e.g. a view onto a log record) without this package
// knowing about them.
type Dict interface {
	Container
	Iter(func(key string, value Object) bool)
}

var (
	TypeDict       = &Type{Name: "dict", Parent: TypeObject, Mutable: true}
	TypeDictObject = &Type{Name: "dict_object", Parent: TypeDict, Mutable: true}
)

// dictIndexSlot sentinels, mirroring FXD_IX_EMPTY / FXD_IX_DUMMY.
const (
	slotEmpty int32 = -1
	slotDummy int32 = -2
)

type dictEntry struct {
	key   string
	value Object
	used  bool // false once unset; key/value cleared
}

// hashKey0/hashKey1 are generated once per process so that dict hashing is
// stable within one run (§4.1) without being predictable across runs,
// exactly the keyed-hash pattern the teacher uses for content-addressing in
// plan/input.go's HashSplit.
var hashKey0, hashKey1 uint64

func init() {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand failing is catastrophic for the whole process;
		// fall back to fixed keys rather than panicking at import time.
		hashKey0, hashKey1 = 0x5d1ec810febed702, 0x40fd7fee17262f71
		return
	}
	hashKey0 = binary.LittleEndian.Uint64(buf[0:8])
	hashKey1 = binary.LittleEndian.Uint64(buf[8:16])
}

func hashString(s string) uint64 {
	return siphash.Hash(hashKey0, hashKey1, []byte(s))
}

// DictObject is the built-in open-addressed, insertion-ordered string dict
// (§3.4, §4.9 of spec.md's design notes reference Python's dict as
// inspiration, same as the teacher source this is grounded on).
type DictObject struct {
	Base
	indices []int32 // slotEmpty, slotDummy, or an index into entries
	entries []dictEntry
	size    uint32 // == len(indices), always a power of two
	mask    uint32
	numUsed uint32 // live + tombstoned entries
	numDead uint32 // tombstoned entries (empties)
}

const dictMinSize = 8

// NewDict creates an empty dict_object.
func NewDict() *DictObject {
	return newDictSized(dictMinSize)
}

// NewDictSized creates an empty dict_object pre-sized to comfortably hold
// n entries without an immediate resize.
func NewDictSized(n int) *DictObject {
	size := uint32(dictMinSize)
	for size*2/3 < uint32(n) {
		size *= 2
	}
	return newDictSized(size)
}

func newDictSized(size uint32) *DictObject {
	d := &DictObject{
		indices: make([]int32, size),
		size:    size,
		mask:    size - 1,
	}
	for i := range d.indices {
		d.indices[i] = slotEmpty
	}
	d.Base.Init(d, TypeDictObject)
	return d
}

func (d *DictObject) free() {
	for i := range d.entries {
		if d.entries[i].used {
			d.entries[i].value.setParent(nil)
			d.entries[i].value.Unref()
		}
	}
}

// probe walks the perturbed open-addressing sequence described in §3.4 and
// returns the index slot holding key (or -1 if absent) plus the first
// available slot (EMPTY, or a DUMMY slot if seen along the way) suitable
// for inserting key.
func (d *DictObject) probe(key string, h uint64) (found int32, insertAt int32) {
	perturb := h
	slot := uint32(h) & d.mask
	insertAt = -1
	for {
		idx := d.indices[slot]
		switch idx {
		case slotEmpty:
			if insertAt < 0 {
				insertAt = int32(slot)
			}
			return -1, insertAt
		case slotDummy:
			if insertAt < 0 {
				insertAt = int32(slot)
			}
		default:
			e := &d.entries[idx]
			if e.used && e.key == key {
				return int32(slot), int32(slot)
			}
		}
		perturb >>= 5
		slot = uint32(5*uint64(slot)+perturb+1) & d.mask
	}
}

func (d *DictObject) needsResize() bool {
	return uint32(len(d.entries))+1 > d.size*2/3
}

func (d *DictObject) resize() {
	newSize := d.size * 2
	for uint32(int(d.numUsed-d.numDead)) >= newSize*2/3 {
		newSize *= 2
	}
	nd := newDictSized(newSize)
	nd.entries = slices.Grow(nd.entries, len(d.entries))
	for _, e := range d.entries {
		if !e.used {
			continue
		}
		nd.insertFresh(e.key, e.value)
	}
	d.indices = nd.indices
	d.size = nd.size
	d.mask = nd.mask
	d.entries = nd.entries
	d.numUsed = uint32(len(d.entries))
	d.numDead = 0
}

// insertFresh appends a known-absent key directly, used only while
// rebuilding during resize (keys are already guaranteed unique and in the
// desired iteration order).
func (d *DictObject) insertFresh(key string, value Object) {
	h := hashString(key)
	_, slot := d.probe(key, h)
	idx := int32(len(d.entries))
	d.entries = append(d.entries, dictEntry{key: key, value: value, used: true})
	d.indices[slot] = idx
}

// Get returns the value stored under key, or (nil, false).
func (d *DictObject) Get(key string) (Object, bool) {
	h := hashString(key)
	slot, _ := d.probe(key, h)
	if slot < 0 {
		return nil, false
	}
	return d.entries[d.indices[slot]].value, true
}

// Set inserts or overwrites key with value (already CoW-prepared by the
// caller). Reuses DUMMY slots on insert, preserving original position on
// overwrite (§8.1.5).
func (d *DictObject) Set(key string, value Object) {
	h := hashString(key)
	slot, insertAt := d.probe(key, h)
	if slot >= 0 {
		e := &d.entries[d.indices[slot]]
		e.value.setParent(nil)
		e.value.Unref()
		e.value = value
		return
	}
	if d.needsResize() {
		d.resize()
		slot, insertAt = d.probe(key, h)
		_ = slot
	}
	idx := int32(len(d.entries))
	d.entries = append(d.entries, dictEntry{key: key, value: value, used: true})
	d.indices[insertAt] = idx
	d.numUsed++
}

// Unset clears key's entry, marking its index slot DUMMY (§3.4).
func (d *DictObject) Unset(key string) bool {
	h := hashString(key)
	slot, _ := d.probe(key, h)
	if slot < 0 {
		return false
	}
	idx := d.indices[slot]
	e := &d.entries[idx]
	e.value.setParent(nil)
	e.value.Unref()
	e.key = ""
	e.value = nil
	e.used = false
	d.indices[slot] = slotDummy
	d.numDead++
	return true
}

func (d *DictObject) count() int {
	n := 0
	for _, e := range d.entries {
		if e.used {
			n++
		}
	}
	return n
}

// Iter walks entries in insertion order, skipping unset slots (§3.4, §8.1.5).
func (d *DictObject) Iter(fn func(key string, value Object) bool) {
	for i := range d.entries {
		if !d.entries[i].used {
			continue
		}
		if !fn(d.entries[i].key, d.entries[i].value) {
			return
		}
	}
}

func (d *DictObject) Truthy() bool      { return d.count() > 0 }
func (d *DictObject) Len() (int, error) { return d.count(), nil }

func (d *DictObject) Repr() string {
	var b builder
	b.WriteByte('{')
	first := true
	d.Iter(func(k string, v Object) bool {
		if !first {
			b.WriteString(", ")
		}
		first = false
		b.WriteString(keyRepr(k))
		b.WriteString(": ")
		b.WriteString(v.Repr())
		return true
	})
	b.WriteByte('}')
	return b.String()
}

func (d *DictObject) Str() string { return d.Repr() }

func (d *DictObject) FormatJSON(w JSONWriter) error {
	w.WriteByte('{')
	first := true
	var err error
	d.Iter(func(k string, v Object) bool {
		if !first {
			w.WriteString(",")
		}
		first = false
		if e := writeJSONString(w, k); e != nil {
			err = e
			return false
		}
		w.WriteString(":")
		if e := v.FormatJSON(w); e != nil {
			err = e
			return false
		}
		return true
	})
	if err != nil {
		return err
	}
	w.WriteByte('}')
	return nil
}

func (d *DictObject) Marshal() ([]byte, ValueType, error) {
	var b builder
	if err := d.FormatJSON(&b); err != nil {
		return nil, VTUnknown, err
	}
	return []byte(b.String()), VTJSON, nil
}

func (d *DictObject) GetSubscript(key Object) (Object, error) {
	k, ok := AsString(key)
	if !ok {
		return nil, errTypef("dict keys must be strings, got %s", key.TypeName())
	}
	v, ok := d.Get(k)
	if !ok {
		return nil, errTypef("key %q is not set", k)
	}
	return v.Ref(), nil
}

func (d *DictObject) SetSubscript(key Object, value Object) error {
	if err := checkWritable(d); err != nil {
		return err
	}
	k, ok := AsString(key)
	if !ok {
		return errTypef("dict keys must be strings, got %s", key.TypeName())
	}
	d.Set(k, value)
	return nil
}

func (d *DictObject) IsKeySet(key Object) (bool, error) {
	k, ok := AsString(key)
	if !ok {
		return false, errTypef("dict keys must be strings, got %s", key.TypeName())
	}
	_, present := d.Get(k)
	return present, nil
}

func (d *DictObject) UnsetKey(key Object) (bool, error) {
	if err := checkWritable(d); err != nil {
		return false, err
	}
	k, ok := AsString(key)
	if !ok {
		return false, errTypef("dict keys must be strings, got %s", key.TypeName())
	}
	return d.Unset(k), nil
}

func (d *DictObject) GetAttr(name string) (Object, error) {
	return d.GetSubscript(NewString(name))
}

func (d *DictObject) SetAttr(name string, value Object) error {
	return d.SetSubscript(NewString(name), value)
}

func (d *DictObject) Add(other Object) (Object, error) {
	rhs, ok := asDict(other)
	if !ok {
		return nil, errTypef("cannot add %s to dict", other.TypeName())
	}
	cloned := d.cloneContainer(nil).(*DictObject)
	rhs.Iter(func(k string, v Object) bool {
		stored := v.Clone()
		stored.setParent(nil)
		cloned.Set(k, stored)
		return true
	})
	return NewRef(cloned), nil
}

func asDict(o Object) (Dict, bool) {
	switch v := o.(type) {
	case Dict:
		return v, true
	case *Ref:
		return asDict(v.inner)
	}
	return nil, false
}

// cloneContainer implements §4.1's clone_container contract: every entry is
// deep-cloned except the one ref_values_equal to childOfInterest, which is
// kept by reference (ref'd) and re-parented instead.
func (d *DictObject) cloneContainer(childOfInterest Object) Container {
	nd := NewDictSized(d.count())
	d.Iter(func(k string, v Object) bool {
		var stored Object
		if childOfInterest != nil && RefValuesEqual(v, childOfInterest) {
			stored = v.Ref()
		} else {
			stored = v.Clone()
		}
		nd.Set(k, stored)
		stored.setParent(nil)
		return true
	})
	return nd
}

func (d *DictObject) Clone() Object {
	return NewRef(d.cloneContainer(nil))
}

func (d *DictObject) reparentChildren(owner *Ref) {
	d.Iter(func(_ string, v Object) bool {
		v.setParent(owner)
		return true
	})
}

func (d *DictObject) Dedup(storage *DedupStorage) Object {
	for i := range d.entries {
		if !d.entries[i].used {
			continue
		}
		old := d.entries[i].value
		canon := old.Dedup(storage)
		if canon != old {
			canon.setParent(nil)
			d.entries[i].value = canon
		}
	}
	return d
}

func (d *DictObject) MakeReadonly() {
	d.Base.MakeReadonly()
	d.Iter(func(_ string, v Object) bool {
		v.MakeReadonly()
		return true
	})
}

func (d *DictObject) Freeze() {
	d.Base.Freeze()
	d.Iter(func(_ string, v Object) bool {
		v.Freeze()
		return true
	})
}

func (d *DictObject) UnfreezeAndFree() {
	d.Base.UnfreezeAndFree()
	d.Iter(func(_ string, v Object) bool {
		v.UnfreezeAndFree()
		return true
	})
}

// Keys returns a new list_object of o's keys in insertion order (see
// SPEC_FULL.md §4.2, adapted from func-keys.h).
func Keys(o Object) (Object, error) {
	d, ok := asDict(o)
	if !ok {
		return nil, errTypef("keys() requires a dict, got %s", o.TypeName())
	}
	out := slices.Grow(make([]Object, 0), d.count())
	d.Iter(func(k string, _ Object) bool {
		out = append(out, NewString(k))
		return true
	})
	return NewRef(newListFrom(out)), nil
}

func keyRepr(k string) string {
	return quoteString(k)
}

// NewDictRef creates an empty dict_object already wrapped in a Ref, the
// only form mutable containers are meant to be handed out in (§3.1
// invariant 4).
func NewDictRef() *Ref { return NewRef(NewDict()) }

// IsDict reports whether o is (or wraps) a Dict.
func IsDict(o Object) bool {
	_, ok := asDict(o)
	return ok
}

// DictForEach iterates o's entries in insertion order if o is (or wraps) a
// Dict, for use by code outside this package (e.g. the dict-merge half of
// the `+` generator, §4.8).
func DictForEach(o Object, fn func(key string, value Object) bool) error {
	d, ok := asDict(o)
	if !ok {
		return errTypef("expected a dict, got %s", o.TypeName())
	}
	d.Iter(fn)
	return nil
}
