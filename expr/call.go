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

// SimpleFunc is the "simple" half of the §6.3 calling convention:
// arguments are evaluated left to right before the call, and the function
// returns a fresh owned Object or an error. Declared here (rather than in
// the function package) because the call node built around it must
// satisfy Node's unexported walk method, which only a type declared in
// this package can do.
type SimpleFunc func(args []object.Object) (object.Object, error)

// simpleCall adapts a SimpleFunc to the Node interface: evaluate every
// argument, invoke fn, unref the arguments.
type simpleCall struct {
	base
	name string
	fn   SimpleFunc
	args []Node
}

// NewSimpleCall builds a call node around fn; name is used only for error
// messages.
func NewSimpleCall(name string, fn SimpleFunc, args []Node) Node {
	n := &simpleCall{name: name, fn: fn, args: args}
	n.bind(n)
	return n
}

func (n *simpleCall) Optimize() Node {
	for i := range n.args {
		n.args[i] = n.args[i].Optimize()
	}
	return n
}

func (n *simpleCall) Init(cfg *Config) error {
	for i, a := range n.args {
		if err := a.Init(cfg); err != nil {
			for j := 0; j < i; j++ {
				n.args[j].Deinit()
			}
			return err
		}
	}
	return nil
}

func (n *simpleCall) Deinit() {
	for _, a := range n.args {
		a.Deinit()
	}
}

func (n *simpleCall) Eval(ctx *evalctx.EvalContext) (Result, error) {
	vals := make([]object.Object, 0, len(n.args))
	for _, a := range n.args {
		v, err := a.Eval(ctx)
		if err != nil {
			for _, done := range vals {
				done.Unref()
			}
			return nil, err
		}
		vals = append(vals, v)
	}
	res, err := n.fn(vals)
	for _, v := range vals {
		v.Unref()
	}
	return res, err
}

func (n *simpleCall) walk(w Visitor) {
	for _, a := range n.args {
		Walk(w, a)
	}
}
