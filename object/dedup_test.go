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

func TestDedupStorageCanonicalizesRepeats(t *testing.T) {
	s := NewDedupStorage()
	a := NewString("repeat")
	b := NewString("repeat")
	defer a.Unref()
	defer b.Unref()

	ca := s.canonicalize(a, "s:repeat")
	cb := s.canonicalize(b, "s:repeat")
	defer ca.Unref()
	defer cb.Unref()

	if ca != cb {
		t.Fatalf("second canonicalize() should return the first-seen instance")
	}
	if ca != Object(a) {
		t.Fatalf("first canonicalize() should return the original object")
	}
}

func TestDedupTreeCollapsesRepeatedLeaves(t *testing.T) {
	root, err := FromJSON([]byte(`{"a":"x","b":"x","c":1,"d":1}`))
	if err != nil {
		t.Fatal(err)
	}
	ref := root.(*Ref)
	defer ref.Unref()

	s := NewDedupStorage()
	ref.Dedup(s)

	aObj, _ := ref.GetSubscript(NewString("a"))
	defer aObj.Unref()
	bObj, _ := ref.GetSubscript(NewString("b"))
	defer bObj.Unref()
	if aObj != bObj {
		t.Fatalf("dedup should collapse two equal string leaves to one instance")
	}

	cObj, _ := ref.GetSubscript(NewString("c"))
	defer cObj.Unref()
	dObj, _ := ref.GetSubscript(NewString("d"))
	defer dObj.Unref()
	if cObj != dObj {
		t.Fatalf("dedup should collapse two equal integer leaves to one instance")
	}
}

func TestDedupStorageSizeCountsDistinctValues(t *testing.T) {
	root, err := FromJSON([]byte(`{"a":"x","b":"x","c":1,"d":1}`))
	if err != nil {
		t.Fatal(err)
	}
	ref := root.(*Ref)
	defer ref.Unref()

	s := NewDedupStorage()
	ref.Dedup(s)

	if got := s.Size(); got != 2 {
		t.Fatalf("Size() = %d, want 2 (one canonical string, one canonical integer)", got)
	}
}

func TestDedupIsIdempotent(t *testing.T) {
	root, err := FromJSON([]byte(`{"a":"x","b":"x"}`))
	if err != nil {
		t.Fatal(err)
	}
	ref := root.(*Ref)
	defer ref.Unref()

	s := NewDedupStorage()
	ref.Dedup(s)

	aObj, _ := ref.GetSubscript(NewString("a"))
	defer aObj.Unref()

	// Running dedup a second time against the same storage must be a
	// no-op: every leaf is already canonical, so nothing should change.
	ref.Dedup(s)
	aAgain, _ := ref.GetSubscript(NewString("a"))
	defer aAgain.Unref()
	if aObj != aAgain {
		t.Fatalf("second Dedup() pass should not replace an already-canonical leaf")
	}
}
