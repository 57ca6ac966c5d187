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

// Plus is the ordinary (non-generator) binary `+` node (§4.8): evaluate
// lhs then rhs, strictly in that order, and dispatch to lhs's Add hook.
type Plus struct {
	base
	LHS, RHS Node
}

func NewPlus(lhs, rhs Node) *Plus {
	n := &Plus{LHS: lhs, RHS: rhs}
	n.bind(n)
	return n
}

func (n *Plus) Optimize() Node {
	n.LHS = n.LHS.Optimize()
	n.RHS = n.RHS.Optimize()
	lhsLit, lok := IsLiteral(n.LHS)
	rhsLit, rok := IsLiteral(n.RHS)
	if !lok || !rok {
		return n
	}
	v, err := lhsLit.Value.Add(rhsLit.Value)
	if err != nil {
		// Leave the failure to surface at real eval time with a proper
		// error frame, rather than swallowing it during optimize.
		return n
	}
	return NewLiteral(v)
}

func (n *Plus) Init(cfg *Config) error {
	if err := n.LHS.Init(cfg); err != nil {
		return err
	}
	if err := n.RHS.Init(cfg); err != nil {
		n.LHS.Deinit()
		return err
	}
	return nil
}

func (n *Plus) Deinit() {
	n.LHS.Deinit()
	n.RHS.Deinit()
}

func (n *Plus) Eval(ctx *evalctx.EvalContext) (Result, error) {
	lv, err := n.LHS.Eval(ctx)
	if err != nil {
		return nil, err
	}
	rv, err := n.RHS.Eval(ctx)
	if err != nil {
		lv.Unref()
		return nil, err
	}
	res, err := lv.Add(rv)
	lv.Unref()
	rv.Unref()
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (n *Plus) walk(w Visitor) {
	Walk(w, n.LHS)
	Walk(w, n.RHS)
}
