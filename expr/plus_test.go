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

func TestPlusEvalStringConcat(t *testing.T) {
	n := NewPlus(NewLiteral(object.NewString("foo")), NewLiteral(object.NewString("bar")))
	if err := n.Init(&Config{}); err != nil {
		t.Fatal(err)
	}
	defer n.Deinit()

	res, err := n.Eval(evalctx.New(nil))
	if err != nil {
		t.Fatal(err)
	}
	defer res.Unref()
	if got := res.Str(); got != "foobar" {
		t.Fatalf("Eval() = %q, want %q", got, "foobar")
	}
}

func TestPlusOptimizeConstantFolds(t *testing.T) {
	n := NewPlus(NewLiteral(object.NewInteger(2)), NewLiteral(object.NewInteger(3)))
	opt := n.Optimize()
	lit, ok := IsLiteral(opt)
	if !ok {
		t.Fatalf("Optimize() of two literals should fold to a Literal, got %T", opt)
	}
	iv, ok := lit.Value.(*object.Integer)
	if !ok || iv.Value != 5 {
		t.Fatalf("folded value = %v, want Integer(5)", lit.Value)
	}
}

func TestPlusOptimizeLeavesNonLiteralAlone(t *testing.T) {
	nonLiteral := NewListGenerator(nil)
	n := NewPlus(NewLiteral(object.NewInteger(1)), nonLiteral)
	opt := n.Optimize()
	if _, ok := IsLiteral(opt); ok {
		t.Fatalf("Optimize() must not fold when one side is not a Literal")
	}
	if opt != Node(n) {
		t.Fatalf("Optimize() should return the same node when it can't fold")
	}
}

func TestPlusEvalOrderLHSBeforeRHS(t *testing.T) {
	var order []string
	lhs := &recordingNode{name: "lhs", order: &order, value: object.NewInteger(1)}
	rhs := &recordingNode{name: "rhs", order: &order, value: object.NewInteger(2)}
	n := NewPlus(lhs, rhs)
	if err := n.Init(&Config{}); err != nil {
		t.Fatal(err)
	}
	res, err := n.Eval(evalctx.New(nil))
	if err != nil {
		t.Fatal(err)
	}
	defer res.Unref()
	if len(order) != 2 || order[0] != "lhs" || order[1] != "rhs" {
		t.Fatalf("eval order = %v, want [lhs rhs]", order)
	}
}

// recordingNode is a minimal Node that logs its name to *order on Eval,
// used to pin down evaluation order without depending on side effects
// visible through the returned value alone.
type recordingNode struct {
	base
	name  string
	order *[]string
	value object.Object
}

func (n *recordingNode) Eval(ctx *evalctx.EvalContext) (Result, error) {
	*n.order = append(*n.order, n.name)
	return n.value.Ref(), nil
}
