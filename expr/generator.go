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
	"fmt"

	"github.com/flowdrop/filterx/evalctx"
	"github.com/flowdrop/filterx/object"
)

// Generator is implemented by expression nodes whose contract is "merge my
// yielded content into the provided fillable" rather than "return a
// value" (§4.7). Every Generator is also an ordinary Node: its own Eval
// builds a fresh fillable via CreateContainer and Generate()s into it, so
// a generator can still be used wherever a plain expression is expected.
type Generator interface {
	Node
	// Generate yields into fillable, returning false only when the
	// generator's own "ignore_falsy_result" semantics call for treating
	// an empty result as a no-op rather than success; callers building a
	// fillable should treat this boolean as informational, not failure —
	// failure is always reported through the error return (§4.7).
	Generate(ctx *evalctx.EvalContext, fillable Result) (bool, error)

	// CreateContainer produces a fresh empty fillable of the kind this
	// generator yields into, optionally keyed off parentHint (may be nil).
	CreateContainer(ctx *evalctx.EvalContext, parentHint Result) (Result, error)
}

func asGenerator(n Node) (Generator, bool) {
	g, ok := n.(Generator)
	return g, ok
}

// ListGenerator yields a fixed, ordered sequence of value expressions,
// appending each to a list fillable (§8.2 scenario 6's "literal-list
// generator").
type ListGenerator struct {
	base
	Elements []Node
}

func NewListGenerator(elements []Node) *ListGenerator {
	n := &ListGenerator{Elements: elements}
	n.bind(n)
	return n
}

func (n *ListGenerator) Init(cfg *Config) error {
	for i, el := range n.Elements {
		if err := el.Init(cfg); err != nil {
			for j := 0; j < i; j++ {
				n.Elements[j].Deinit()
			}
			return err
		}
	}
	return nil
}

func (n *ListGenerator) Deinit() {
	for _, el := range n.Elements {
		el.Deinit()
	}
}

func (n *ListGenerator) Generate(ctx *evalctx.EvalContext, fillable Result) (bool, error) {
	any := false
	for _, el := range n.Elements {
		v, err := el.Eval(ctx)
		if err != nil {
			return false, err
		}
		length, _ := fillable.Len()
		if err := fillable.SetSubscript(object.NewInteger(int64(length)), v); err != nil {
			v.Unref()
			return false, err
		}
		any = true
	}
	return any, nil
}

func (n *ListGenerator) CreateContainer(ctx *evalctx.EvalContext, parentHint Result) (Result, error) {
	return object.NewListRef(), nil
}

func (n *ListGenerator) Eval(ctx *evalctx.EvalContext) (Result, error) {
	fillable, err := n.CreateContainer(ctx, nil)
	if err != nil {
		return nil, err
	}
	if _, err := n.Generate(ctx, fillable); err != nil {
		fillable.Unref()
		return nil, err
	}
	return fillable, nil
}

func (n *ListGenerator) walk(w Visitor) {
	for _, el := range n.Elements {
		Walk(w, el)
	}
}

// CreateContainerNew wraps a Generator in a node whose Eval asks the
// generator to build its own fresh empty container keyed to ParentHint
// (may be nil), and materializes its yield — how literal assignments like
// `x = { ...generator... }` become concrete containers (§4.7).
type CreateContainerNew struct {
	base
	Gen        Generator
	ParentHint Node
}

func NewCreateContainerNew(gen Generator, parentHint Node) *CreateContainerNew {
	n := &CreateContainerNew{Gen: gen, ParentHint: parentHint}
	n.bind(n)
	return n
}

func (n *CreateContainerNew) Init(cfg *Config) error {
	if err := n.Gen.Init(cfg); err != nil {
		return err
	}
	if n.ParentHint != nil {
		if err := n.ParentHint.Init(cfg); err != nil {
			n.Gen.Deinit()
			return err
		}
	}
	return nil
}

func (n *CreateContainerNew) Deinit() {
	n.Gen.Deinit()
	if n.ParentHint != nil {
		n.ParentHint.Deinit()
	}
}

func (n *CreateContainerNew) Eval(ctx *evalctx.EvalContext) (Result, error) {
	var hint Result
	if n.ParentHint != nil {
		h, err := n.ParentHint.Eval(ctx)
		if err != nil {
			return nil, err
		}
		defer h.Unref()
		hint = h
	}
	fillable, err := n.Gen.CreateContainer(ctx, hint)
	if err != nil {
		return nil, err
	}
	if _, err := n.Gen.Generate(ctx, fillable); err != nil {
		fillable.Unref()
		return nil, err
	}
	return fillable, nil
}

func (n *CreateContainerNew) walk(w Visitor) {
	Walk(w, n.Gen)
	if n.ParentHint != nil {
		Walk(w, n.ParentHint)
	}
}

// mergeInto merges value's content into fillable per §4.8's
// list_merge/dict_merge rule, used by PlusGenerator for the non-generator
// side of a `+`.
func mergeInto(fillable Result, value Result) error {
	switch {
	case object.IsDict(fillable):
		if !object.IsDict(value) {
			return fmt.Errorf("filterx/expr: invalid fillable type: dict fillable merging non-dict value")
		}
		var mergeErr error
		object.DictForEach(value, func(k string, v object.Object) bool {
			stored := v.Clone()
			if err := fillable.SetSubscript(object.NewString(k), stored); err != nil {
				stored.Unref()
				mergeErr = err
				return false
			}
			return true
		})
		return mergeErr
	case object.IsList(fillable):
		if !object.IsList(value) {
			return fmt.Errorf("filterx/expr: invalid fillable type: list fillable merging non-list value")
		}
		n, _ := value.Len()
		for i := 0; i < n; i++ {
			item, err := value.GetSubscript(object.NewInteger(int64(i)))
			if err != nil {
				return err
			}
			length, _ := fillable.Len()
			if err := fillable.SetSubscript(object.NewInteger(int64(length)), item); err != nil {
				item.Unref()
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("filterx/expr: invalid fillable type")
	}
}

// PlusGenerator is the generator form of `+`, usable in container-building
// contexts (§4.8). Each side is either itself a Generator (its yield is
// merged directly) or an ordinary expression (its result is merged via
// mergeInto).
type PlusGenerator struct {
	base
	LHS, RHS Node
}

func NewPlusGenerator(lhs, rhs Node) *PlusGenerator {
	n := &PlusGenerator{LHS: lhs, RHS: rhs}
	n.bind(n)
	return n
}

func (n *PlusGenerator) Init(cfg *Config) error {
	if err := n.LHS.Init(cfg); err != nil {
		return err
	}
	if err := n.RHS.Init(cfg); err != nil {
		n.LHS.Deinit()
		return err
	}
	return nil
}

func (n *PlusGenerator) Deinit() {
	n.LHS.Deinit()
	n.RHS.Deinit()
}

func (n *PlusGenerator) Generate(ctx *evalctx.EvalContext, fillable Result) (bool, error) {
	for _, side := range [2]Node{n.LHS, n.RHS} {
		if g, ok := asGenerator(side); ok {
			if _, err := g.Generate(ctx, fillable); err != nil {
				return false, err
			}
			continue
		}
		v, err := side.Eval(ctx)
		if err != nil {
			return false, err
		}
		err = mergeInto(fillable, v)
		v.Unref()
		if err != nil {
			return false, err
		}
	}
	return true, nil
}

func (n *PlusGenerator) CreateContainer(ctx *evalctx.EvalContext, parentHint Result) (Result, error) {
	if g, ok := asGenerator(n.RHS); ok {
		return g.CreateContainer(ctx, parentHint)
	}
	if g, ok := asGenerator(n.LHS); ok {
		return g.CreateContainer(ctx, parentHint)
	}
	return nil, fmt.Errorf("filterx/expr: plus_generator requires at least one generator operand")
}

func (n *PlusGenerator) Eval(ctx *evalctx.EvalContext) (Result, error) {
	fillable, err := n.CreateContainer(ctx, nil)
	if err != nil {
		return nil, err
	}
	if _, err := n.Generate(ctx, fillable); err != nil {
		fillable.Unref()
		return nil, err
	}
	return fillable, nil
}

func (n *PlusGenerator) walk(w Visitor) {
	Walk(w, n.LHS)
	Walk(w, n.RHS)
}
