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

// ContainerKind selects which built-in container a LiteralContainer node
// (or a generator's create_container) builds.
type ContainerKind int

const (
	KindDict ContainerKind = iota
	KindList
)

// ContainerElement is one (key?, value) pair of a literal-container node
// (§4.6). KeyExpr is nil for list elements.
type ContainerElement struct {
	KeyExpr   Node
	ValueExpr Node
}

// LiteralContainer builds a dict_object or list_object from a sealed,
// ordered sequence of elements (§4.6). Elements must not be modified after
// Init — "sealing" is represented here simply by never mutating Elements
// past that point; Go gives no cheaper enforcement than documentation for
// this without extra bookkeeping the core doesn't need.
type LiteralContainer struct {
	base
	Kind     ContainerKind
	Elements []ContainerElement
	sealed   bool
}

// NewLiteralContainer builds a dict or list literal-container node from
// elements in source order. For a list, every element's KeyExpr must be
// nil.
func NewLiteralContainer(kind ContainerKind, elements []ContainerElement) *LiteralContainer {
	n := &LiteralContainer{Kind: kind, Elements: elements}
	n.bind(n)
	return n
}

func (n *LiteralContainer) Optimize() Node {
	allLiteral := true
	for i := range n.Elements {
		n.Elements[i].ValueExpr = n.Elements[i].ValueExpr.Optimize()
		if _, ok := IsLiteral(n.Elements[i].ValueExpr); !ok {
			allLiteral = false
		}
		if n.Elements[i].KeyExpr != nil {
			n.Elements[i].KeyExpr = n.Elements[i].KeyExpr.Optimize()
			if _, ok := IsLiteral(n.Elements[i].KeyExpr); !ok {
				allLiteral = false
			}
		}
	}
	if !allLiteral {
		return n
	}
	built, err := n.build(nil)
	if err != nil {
		// Constant folding is best-effort: if it would fail we keep the
		// node so the real failure surfaces (with a proper error frame)
		// at actual eval time instead of silently at optimize time.
		return n
	}
	return NewLiteral(built)
}

func (n *LiteralContainer) Init(cfg *Config) error {
	n.sealed = true
	for i, el := range n.Elements {
		if el.KeyExpr != nil {
			if err := el.KeyExpr.Init(cfg); err != nil {
				n.deinitUpTo(i, true)
				return err
			}
		}
		if err := el.ValueExpr.Init(cfg); err != nil {
			n.deinitUpTo(i, el.KeyExpr != nil)
			return err
		}
	}
	return nil
}

func (n *LiteralContainer) deinitUpTo(i int, includeKeyAtI bool) {
	for j := 0; j < i; j++ {
		if n.Elements[j].KeyExpr != nil {
			n.Elements[j].KeyExpr.Deinit()
		}
		n.Elements[j].ValueExpr.Deinit()
	}
	if includeKeyAtI && n.Elements[i].KeyExpr != nil {
		n.Elements[i].KeyExpr.Deinit()
	}
}

func (n *LiteralContainer) Deinit() {
	for _, el := range n.Elements {
		if el.KeyExpr != nil {
			el.KeyExpr.Deinit()
		}
		el.ValueExpr.Deinit()
	}
}

// build evaluates every element against ctx (nil is fine for a purely
// literal build at optimize time, since Literal.Eval never touches ctx)
// and assembles the container, used by both Optimize's constant folding
// and Eval itself.
func (n *LiteralContainer) build(ctx *evalctx.EvalContext) (Result, error) {
	switch n.Kind {
	case KindDict:
		return n.buildDict(ctx)
	case KindList:
		return n.buildList(ctx)
	default:
		return nil, fmt.Errorf("filterx/expr: unknown container kind %d", n.Kind)
	}
}

func (n *LiteralContainer) buildDict(ctx *evalctx.EvalContext) (Result, error) {
	ref := object.NewDictRef()
	for _, el := range n.Elements {
		keyVal, err := el.KeyExpr.Eval(ctx)
		if err != nil {
			ref.Unref()
			return nil, err
		}
		key, ok := object.AsString(keyVal)
		keyVal.Unref()
		if !ok {
			ref.Unref()
			return nil, fmt.Errorf("filterx/expr: dict literal keys must evaluate to strings")
		}
		val, err := el.ValueExpr.Eval(ctx)
		if err != nil {
			ref.Unref()
			return nil, err
		}
		if err := ref.SetSubscript(object.NewString(key), val); err != nil {
			val.Unref()
			ref.Unref()
			return nil, err
		}
	}
	return ref, nil
}

func (n *LiteralContainer) buildList(ctx *evalctx.EvalContext) (Result, error) {
	ref := object.NewListRef()
	if c, err := ref.UnwrapRW(); err == nil {
		if lo, ok := c.(*object.ListObject); ok {
			lo.Reserve(len(n.Elements))
		}
	}
	idx := 0
	for _, el := range n.Elements {
		val, err := el.ValueExpr.Eval(ctx)
		if err != nil {
			ref.Unref()
			return nil, err
		}
		if err := ref.SetSubscript(object.NewInteger(int64(idx)), val); err != nil {
			val.Unref()
			ref.Unref()
			return nil, err
		}
		idx++
	}
	return ref, nil
}

func (n *LiteralContainer) Eval(ctx *evalctx.EvalContext) (Result, error) {
	return n.build(ctx)
}

func (n *LiteralContainer) walk(w Visitor) {
	for _, el := range n.Elements {
		if el.KeyExpr != nil {
			Walk(w, el.KeyExpr)
		}
		Walk(w, el.ValueExpr)
	}
}
