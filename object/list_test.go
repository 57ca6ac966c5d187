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

import "testing"

func TestListAppendAndGet(t *testing.T) {
	l := NewList()
	defer l.Unref()
	if err := l.Append(NewInteger(1)); err != nil {
		t.Fatal(err)
	}
	if err := l.Append(NewInteger(2)); err != nil {
		t.Fatal(err)
	}
	n, _ := l.Len()
	if n != 2 {
		t.Fatalf("Len() = %d, want 2", n)
	}
	v, err := l.GetSubscript(NewInteger(0))
	if err != nil {
		t.Fatal(err)
	}
	defer v.Unref()
	if iv := v.(*Integer); iv.Value != 1 {
		t.Fatalf("GetSubscript(0) = %d, want 1", iv.Value)
	}
}

func TestListNegativeIndexRoundTrip(t *testing.T) {
	l := NewList()
	defer l.Unref()
	l.Append(NewInteger(10))
	l.Append(NewInteger(20))
	l.Append(NewInteger(30))

	v, err := l.GetSubscript(NewInteger(-1))
	if err != nil {
		t.Fatal(err)
	}
	defer v.Unref()
	if iv := v.(*Integer); iv.Value != 30 {
		t.Fatalf("GetSubscript(-1) = %d, want 30", iv.Value)
	}

	v2, err := l.GetSubscript(NewInteger(-3))
	if err != nil {
		t.Fatal(err)
	}
	defer v2.Unref()
	if iv := v2.(*Integer); iv.Value != 10 {
		t.Fatalf("GetSubscript(-3) = %d, want 10", iv.Value)
	}
}

func TestListEmptyNegativeIndexOutOfRange(t *testing.T) {
	l := NewList()
	defer l.Unref()
	if _, err := l.GetSubscript(NewInteger(-1)); err == nil {
		t.Fatalf("GetSubscript(-1) on empty list should fail, not wrap to a positive index")
	}
}

func TestListSetSubscriptAppendAtLength(t *testing.T) {
	l := NewList()
	defer l.Unref()
	l.Append(NewInteger(1))
	if err := l.SetSubscript(NewInteger(1), NewInteger(2)); err != nil {
		t.Fatal(err)
	}
	n, _ := l.Len()
	if n != 2 {
		t.Fatalf("Len() = %d, want 2", n)
	}
}

// TestListSetSubscriptBeyondLengthExtendsWithDefaults exercises §3.5's
// "extend with defaults if index > length" rule, grounded on
// object-list.c:125-126's g_ptr_array_set_size(index+1) zero-fill before
// storing the new value.
func TestListSetSubscriptBeyondLengthExtendsWithDefaults(t *testing.T) {
	l := NewList()
	defer l.Unref()
	l.Append(NewInteger(1))
	l.Append(NewInteger(2))

	if err := l.SetSubscript(NewInteger(5), NewInteger(9)); err != nil {
		t.Fatal(err)
	}
	n, _ := l.Len()
	if n != 6 {
		t.Fatalf("Len() after SetSubscript(5, ...) = %d, want 6", n)
	}
	for _, gapIdx := range []int64{2, 3, 4} {
		v, err := l.GetSubscript(NewInteger(gapIdx))
		if err != nil {
			t.Fatalf("GetSubscript(%d) on gap slot: %v", gapIdx, err)
		}
		if _, ok := v.(*Null); !ok {
			t.Fatalf("gap slot %d = %T, want *Null", gapIdx, v)
		}
		v.Unref()
	}
	v, err := l.GetSubscript(NewInteger(5))
	if err != nil {
		t.Fatal(err)
	}
	defer v.Unref()
	if iv := v.(*Integer); iv.Value != 9 {
		t.Fatalf("GetSubscript(5) = %d, want 9", iv.Value)
	}
}

func TestListSetSubscriptAtMaxLengthBoundaryFails(t *testing.T) {
	l := NewList()
	defer l.Unref()
	if err := l.SetSubscript(NewInteger(maxListLen), NewInteger(1)); err == nil {
		t.Fatalf("SetSubscript at maxListLen should fail")
	}
}

func TestListUnsetKeyShiftsRemaining(t *testing.T) {
	l := NewList()
	defer l.Unref()
	l.Append(NewInteger(1))
	l.Append(NewInteger(2))
	l.Append(NewInteger(3))

	ok, err := l.UnsetKey(NewInteger(1))
	if err != nil || !ok {
		t.Fatalf("UnsetKey(1) = %v, %v", ok, err)
	}
	n, _ := l.Len()
	if n != 2 {
		t.Fatalf("Len() after unset = %d, want 2", n)
	}
	v, _ := l.GetSubscript(NewInteger(1))
	defer v.Unref()
	if iv := v.(*Integer); iv.Value != 3 {
		t.Fatalf("GetSubscript(1) after unset = %d, want 3", iv.Value)
	}
}

func TestListReadonlyRejectsAppend(t *testing.T) {
	l := NewList()
	defer l.Unref()
	l.Append(NewInteger(1))
	l.MakeReadonly()

	err := l.Append(NewInteger(2))
	if err == nil {
		t.Fatalf("Append on readonly list should fail")
	}
	if _, ok := err.(*ReadonlyError); !ok {
		t.Fatalf("Append error = %T, want *ReadonlyError", err)
	}
}

func TestListMaxLengthEnforced(t *testing.T) {
	l := NewList()
	defer l.Unref()
	for i := 0; i < maxListLen; i++ {
		if err := l.Append(NewInteger(int64(i))); err != nil {
			t.Fatalf("Append at %d: %v", i, err)
		}
	}
	if err := l.Append(NewInteger(0)); err == nil {
		t.Fatalf("Append beyond maxListLen should fail")
	}
}
