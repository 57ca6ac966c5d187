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

import "github.com/flowdrop/filterx/evalctx"

// Literal holds an owned Object and always evaluates to a fresh reference
// to it (§4.5). It is the optimizer's constant-folding sink: any node
// whose Optimize determines it is fully constant replaces itself with a
// Literal wrapping the precomputed value.
type Literal struct {
	base
	Value Result
}

// NewLiteral wraps value (the node takes ownership of the reference).
func NewLiteral(value Result) *Literal {
	n := &Literal{Value: value}
	n.bind(n)
	return n
}

func (n *Literal) Eval(ctx *evalctx.EvalContext) (Result, error) {
	return n.Value.Ref(), nil
}

// IsLiteral reports whether n is a Literal node, used by the container
// nodes' optimize pass (§4.6) and by function arguments requiring a
// literal pattern/replacement string (§4.9.2, §4.9.3).
func IsLiteral(n Node) (*Literal, bool) {
	l, ok := n.(*Literal)
	return l, ok
}
