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

package expr

import (
	"testing"

	"github.com/flowdrop/filterx/evalctx"
	"github.com/flowdrop/filterx/object"
)

func litStrs(vals ...string) []Node {
	nodes := make([]Node, len(vals))
	for i, v := range vals {
		nodes[i] = NewLiteral(object.NewString(v))
	}
	return nodes
}

func TestListGeneratorAppendsInOrder(t *testing.T) {
	g := NewListGenerator(litStrs("foo", "bar", "baz"))
	if err := g.Init(&Config{}); err != nil {
		t.Fatal(err)
	}
	defer g.Deinit()

	res, err := g.Eval(evalctx.New(nil))
	if err != nil {
		t.Fatal(err)
	}
	defer res.Unref()

	ln, _ := res.Len()
	if ln != 3 {
		t.Fatalf("Len() = %d, want 3", ln)
	}
	for i, want := range []string{"foo", "bar", "baz"} {
		v, err := res.GetSubscript(object.NewInteger(int64(i)))
		if err != nil {
			t.Fatal(err)
		}
		if got := v.Str(); got != want {
			t.Fatalf("list[%d] = %q, want %q", i, got, want)
		}
		v.Unref()
	}
}

// TestPlusGeneratorMergesTwoListGenerators mirrors the two literal-list
// generators combined via plus_generator into a single list, in source
// order of LHS then RHS.
func TestPlusGeneratorMergesTwoListGenerators(t *testing.T) {
	lhs := NewListGenerator(litStrs("foo", "bar", "baz"))
	rhs := NewListGenerator(litStrs("other"))
	n := NewPlusGenerator(lhs, rhs)
	if err := n.Init(&Config{}); err != nil {
		t.Fatal(err)
	}
	defer n.Deinit()

	res, err := n.Eval(evalctx.New(nil))
	if err != nil {
		t.Fatal(err)
	}
	defer res.Unref()

	ln, _ := res.Len()
	if ln != 4 {
		t.Fatalf("Len() = %d, want 4", ln)
	}
	want := []string{"foo", "bar", "baz", "other"}
	for i, w := range want {
		v, err := res.GetSubscript(object.NewInteger(int64(i)))
		if err != nil {
			t.Fatal(err)
		}
		if got := v.Str(); got != w {
			t.Fatalf("list[%d] = %q, want %q", i, got, w)
		}
		v.Unref()
	}
}

func TestCreateContainerNewMaterializesGeneratorYield(t *testing.T) {
	gen := NewListGenerator(litStrs("x", "y"))
	n := NewCreateContainerNew(gen, nil)
	if err := n.Init(&Config{}); err != nil {
		t.Fatal(err)
	}
	defer n.Deinit()

	res, err := n.Eval(evalctx.New(nil))
	if err != nil {
		t.Fatal(err)
	}
	defer res.Unref()

	if !object.IsList(res) {
		t.Fatalf("CreateContainerNew over a ListGenerator should yield a list")
	}
	ln, _ := res.Len()
	if ln != 2 {
		t.Fatalf("Len() = %d, want 2", ln)
	}
}

func TestMergeIntoRejectsMismatchedKinds(t *testing.T) {
	fillable := object.NewListRef()
	defer fillable.Unref()
	dictValue, err := object.FromJSON([]byte(`{"a":1}`))
	if err != nil {
		t.Fatal(err)
	}
	defer dictValue.Unref()

	if err := mergeInto(fillable, dictValue); err == nil {
		t.Fatalf("merging a dict into a list fillable should fail")
	}
}
