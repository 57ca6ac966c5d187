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
	"github.com/flowdrop/filterx/evalctx"
	"github.com/flowdrop/filterx/object"
)

// unsetEmpties implements `unset_empties(target, ...)` (§4's supplemented
// path/container helpers): evaluate target, strip (or replace) empty
// members per opts, and return the (possibly copy-on-write forked)
// result.
type unsetEmpties struct {
	base
	target Node
	opts   object.UnsetEmptiesOpts
}

// NewUnsetEmpties builds the unset_empties() call node. opts.Targets and
// opts.Replacement, if set, are owned by the returned node.
func NewUnsetEmpties(target Node, opts object.UnsetEmptiesOpts) Node {
	n := &unsetEmpties{target: target, opts: opts}
	n.bind(n)
	return n
}

func (n *unsetEmpties) Optimize() Node {
	n.target = n.target.Optimize()
	return n
}

func (n *unsetEmpties) Init(cfg *Config) error {
	return n.target.Init(cfg)
}

func (n *unsetEmpties) Deinit() {
	n.target.Deinit()
	for _, t := range n.opts.Targets {
		t.Unref()
	}
	if n.opts.Replacement != nil {
		n.opts.Replacement.Unref()
	}
}

func (n *unsetEmpties) Eval(ctx *evalctx.EvalContext) (Result, error) {
	root, err := n.target.Eval(ctx)
	if err != nil {
		return nil, err
	}
	return object.UnsetEmpties(root, n.opts)
}

func (n *unsetEmpties) walk(w Visitor) {
	Walk(w, n.target)
}
