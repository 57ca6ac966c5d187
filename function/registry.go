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

package function

import (
	"fmt"
	"sync"

	"github.com/flowdrop/filterx/expr"
	"github.com/flowdrop/filterx/object"
)

// SimpleFunc is the "simple" calling convention (§6.3): arguments are
// already evaluated, the function returns a fresh owned Object or an
// error. Alias of expr.SimpleFunc: the call node adapting it to Node
// must live in package expr (Node's walk method is unexported), so the
// function type itself is defined there too.
type SimpleFunc = expr.SimpleFunc

// registry is the process-wide, append-only function table (§6.3
// "registration... process-wide and immutable after filterx_global_init").
// Guarded by a mutex only to catch accidental concurrent registration
// during startup, not because lookups need it: Lookup is called only
// after registration has finished.
type registry struct {
	mu      sync.RWMutex
	simple  map[string]SimpleFunc
	ctors   map[string]expr.FunctionCtor
	genCtor map[string]expr.FunctionCtor
}

var global = &registry{
	simple:  make(map[string]SimpleFunc),
	ctors:   make(map[string]expr.FunctionCtor),
	genCtor: make(map[string]expr.FunctionCtor),
}

// RegisterSimple registers a simple function under name.
func RegisterSimple(name string, fn SimpleFunc) {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.simple[name] = fn
}

// RegisterFunctionCtor registers a function-node constructor under name.
func RegisterFunctionCtor(name string, ctor expr.FunctionCtor) {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.ctors[name] = ctor
}

// RegisterGeneratorFunctionCtor registers a generator-function-node
// constructor under name.
func RegisterGeneratorFunctionCtor(name string, ctor expr.FunctionCtor) {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.genCtor[name] = ctor
}

// wrappedSimpleFunc wraps fn so a failure carries the function's name,
// then hands it to expr.NewSimpleCall (the node adapting a SimpleFunc to
// Node; it must live in package expr since Node's walk method is
// unexported).
func wrappedSimpleFunc(name string, fn SimpleFunc) expr.SimpleFunc {
	return func(args []object.Object) (object.Object, error) {
		res, err := fn(args)
		if err != nil {
			return nil, fmt.Errorf("filterx/function: %s: %w", name, err)
		}
		return res, nil
	}
}

// Lookup resolves name to a node constructor, trying (in order) a
// registered function-node constructor, a registered generator-function
// constructor, then a simple function wrapped as a call node. Satisfies
// expr.FunctionLookup.
func (r *registry) Lookup(name string) (expr.FunctionCtor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if ctor, ok := r.ctors[name]; ok {
		return ctor, true
	}
	if ctor, ok := r.genCtor[name]; ok {
		return ctor, true
	}
	if fn, ok := r.simple[name]; ok {
		wrapped := wrappedSimpleFunc(name, fn)
		return func(args expr.CallArgs) (expr.Node, error) {
			return expr.NewSimpleCall(name, wrapped, args.Positional), nil
		}, true
	}
	return nil, false
}

// GlobalLookup is the single process-wide expr.FunctionLookup over the
// registries that filterx.GlobalInit fills; a host passes it as
// expr.Config.Functions.
var GlobalLookup expr.FunctionLookup = global
