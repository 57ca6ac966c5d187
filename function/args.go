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

// Package function implements the §6.3 function calling convention:
// positional/named argument extraction for function-node and
// generator-function-node constructors, plus the three registries
// (simple functions, function-node constructors, generator-function-node
// constructors).
package function

import (
	"fmt"

	"github.com/flowdrop/filterx/expr"
	"github.com/flowdrop/filterx/object"
)

// FunctionArgs holds a function call's parsed positional and named
// arguments, still as unevaluated expression nodes (§6.3). Constructors
// extract what they need and call Check at the end to reject unknown
// leftover arguments.
type FunctionArgs struct {
	name       string
	positional []expr.Node
	named      map[string]expr.Node

	usedPositional map[int]bool
	usedNamed      map[string]bool
}

// NewFunctionArgs wraps a parsed call's argument lists. name is used only
// for error messages.
func NewFunctionArgs(name string, args expr.CallArgs) *FunctionArgs {
	return &FunctionArgs{
		name:           name,
		positional:     args.Positional,
		named:          args.Named,
		usedPositional: make(map[int]bool),
		usedNamed:      make(map[string]bool),
	}
}

// Len returns the number of positional arguments (function_args_len).
func (a *FunctionArgs) Len() int { return len(a.positional) }

// GetExpr returns positional argument n unevaluated, for function-node
// constructors that evaluate their own sub-expressions at eval time.
func (a *FunctionArgs) GetExpr(n int) (expr.Node, error) {
	if n < 0 || n >= len(a.positional) {
		return nil, fmt.Errorf("filterx/function: %s: argument %d out of range (have %d)", a.name, n, len(a.positional))
	}
	a.usedPositional[n] = true
	return a.positional[n], nil
}

// GetLiteralString requires positional argument n to be a literal string,
// e.g. a regexp pattern that must be known at construction time.
func (a *FunctionArgs) GetLiteralString(n int) (string, error) {
	node, err := a.GetExpr(n)
	if err != nil {
		return "", err
	}
	lit, ok := expr.IsLiteral(node)
	if !ok {
		return "", fmt.Errorf("filterx/function: %s: argument %d must be a literal", a.name, n)
	}
	s, ok := object.AsString(lit.Value)
	if !ok {
		return "", fmt.Errorf("filterx/function: %s: argument %d must be a literal string", a.name, n)
	}
	return s, nil
}

// GetNamedExpr returns a named argument unevaluated, if present.
func (a *FunctionArgs) GetNamedExpr(name string) (expr.Node, bool) {
	node, ok := a.named[name]
	if ok {
		a.usedNamed[name] = true
	}
	return node, ok
}

// GetNamedLiteralString returns a named argument's literal string value.
// exists is false if the argument was not supplied at all; err is set if
// it was supplied but is not a literal string.
func (a *FunctionArgs) GetNamedLiteralString(name string) (value string, exists bool, err error) {
	node, ok := a.GetNamedExpr(name)
	if !ok {
		return "", false, nil
	}
	lit, ok := expr.IsLiteral(node)
	if !ok {
		return "", true, fmt.Errorf("filterx/function: %s: argument %q must be a literal", a.name, name)
	}
	s, ok := object.AsString(lit.Value)
	if !ok {
		return "", true, fmt.Errorf("filterx/function: %s: argument %q must be a literal string", a.name, name)
	}
	return s, true, nil
}

// GetNamedLiteralBoolean returns a named argument's literal boolean value.
func (a *FunctionArgs) GetNamedLiteralBoolean(name string) (value bool, exists bool, err error) {
	node, ok := a.GetNamedExpr(name)
	if !ok {
		return false, false, nil
	}
	lit, ok := expr.IsLiteral(node)
	if !ok {
		return false, true, fmt.Errorf("filterx/function: %s: argument %q must be a literal", a.name, name)
	}
	b, ok := object.AsBoolean(lit.Value)
	if !ok {
		return false, true, fmt.Errorf("filterx/function: %s: argument %q must be a literal boolean", a.name, name)
	}
	return b, true, nil
}

// GetNamedLiteralObject returns a named argument's literal value as a raw
// Object, for functions that accept an arbitrary literal (e.g. a default
// value).
func (a *FunctionArgs) GetNamedLiteralObject(name string) (value object.Object, exists bool, err error) {
	node, ok := a.GetNamedExpr(name)
	if !ok {
		return nil, false, nil
	}
	lit, ok := expr.IsLiteral(node)
	if !ok {
		return nil, true, fmt.Errorf("filterx/function: %s: argument %q must be a literal", a.name, name)
	}
	return lit.Value, true, nil
}

// Check asserts every positional and named argument was consumed by one
// of the Get* accessors above; call it last in a constructor
// (function_args_check).
func (a *FunctionArgs) Check() error {
	for i := range a.positional {
		if !a.usedPositional[i] {
			return fmt.Errorf("filterx/function: %s: unexpected argument %d", a.name, i)
		}
	}
	for name := range a.named {
		if !a.usedNamed[name] {
			return fmt.Errorf("filterx/function: %s: unexpected named argument %q", a.name, name)
		}
	}
	return nil
}
