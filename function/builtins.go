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

	"github.com/flowdrop/filterx/expr"
	"github.com/flowdrop/filterx/expr/regexp"
	"github.com/flowdrop/filterx/object"
)

// keys(dict) returns the dict's key list (§4's supplemented path/container
// helpers, grounded on func-keys.h). No context is needed, so it is a
// simple function.
func keysFunc(args []object.Object) (object.Object, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("keys() takes exactly one argument")
	}
	return object.Keys(args[0])
}

// path_lookup(root, key, key, ...) walks root through the remaining,
// already-evaluated keys (grounded on func-path-lookup.c).
func pathLookupFunc(args []object.Object) (object.Object, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("path_lookup() requires at least one argument")
	}
	root := args[0].Ref()
	res, err := object.PathLookup(root, args[1:])
	root.Unref()
	return res, err
}

// listLiteralElements evaluates a must-be-literal-list argument node into
// its owned element objects, for named arguments that take multiple
// values (e.g. unset_empties' targets=[...]).
func listLiteralElements(name, argName string, node expr.Node) ([]object.Object, error) {
	lit, ok := expr.IsLiteral(node)
	if !ok {
		return nil, fmt.Errorf("filterx/function: %s: argument %q must be a literal list", name, argName)
	}
	if !object.IsList(lit.Value) {
		return nil, fmt.Errorf("filterx/function: %s: argument %q must be a list", name, argName)
	}
	n, err := lit.Value.Len()
	if err != nil {
		return nil, err
	}
	out := make([]object.Object, 0, n)
	for i := 0; i < n; i++ {
		v, err := lit.Value.GetSubscript(object.NewInteger(int64(i)))
		if err != nil {
			for _, done := range out {
				done.Unref()
			}
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func newUnsetEmptiesNode(callArgs expr.CallArgs) (expr.Node, error) {
	args := NewFunctionArgs("unset_empties", callArgs)
	targetExpr, err := args.GetExpr(0)
	if err != nil {
		return nil, err
	}

	opts := object.UnsetEmptiesOpts{Recursive: true}
	if recursive, exists, err := args.GetNamedLiteralBoolean("recursive"); err != nil {
		return nil, err
	} else if exists {
		opts.Recursive = recursive
	}
	if ignorecase, exists, err := args.GetNamedLiteralBoolean("ignorecase"); err != nil {
		return nil, err
	} else if exists {
		opts.IgnoreCase = ignorecase
	}
	if replacement, exists, err := args.GetNamedLiteralObject("replacement"); err != nil {
		return nil, err
	} else if exists {
		opts.Replacement = replacement.Clone()
	}
	if targetsExpr, exists := args.GetNamedExpr("targets"); exists {
		targets, err := listLiteralElements("unset_empties", "targets", targetsExpr)
		if err != nil {
			return nil, err
		}
		opts.Targets = targets
	}
	if err := args.Check(); err != nil {
		return nil, err
	}
	return expr.NewUnsetEmpties(targetExpr, opts), nil
}

func regexpFlagsFrom(args *FunctionArgs) (regexp.Flags, error) {
	var flags regexp.Flags
	var err error
	if flags.ICase, _, err = args.GetNamedLiteralBoolean("ignorecase"); err != nil {
		return flags, err
	}
	if flags.Newline, _, err = args.GetNamedLiteralBoolean("newline"); err != nil {
		return flags, err
	}
	if flags.UTF8, _, err = args.GetNamedLiteralBoolean("utf8"); err != nil {
		return flags, err
	}
	if flags.JIT, _, err = args.GetNamedLiteralBoolean("jit"); err != nil {
		return flags, err
	}
	return flags, nil
}

func newRegexpSearchNode(callArgs expr.CallArgs) (expr.Node, error) {
	args := NewFunctionArgs("regexp_search", callArgs)
	stringExpr, err := args.GetExpr(0)
	if err != nil {
		return nil, err
	}
	pattern, err := args.GetLiteralString(1)
	if err != nil {
		return nil, err
	}
	keepZero, _, err := args.GetNamedLiteralBoolean("keep_zero")
	if err != nil {
		return nil, err
	}
	listMode, _, err := args.GetNamedLiteralBoolean("list_mode")
	if err != nil {
		return nil, err
	}
	flags, err := regexpFlagsFrom(args)
	if err != nil {
		return nil, err
	}
	if err := args.Check(); err != nil {
		return nil, err
	}
	return expr.NewRegexpSearch(stringExpr, pattern, flags, keepZero, listMode)
}

func newRegexpSubstNode(callArgs expr.CallArgs) (expr.Node, error) {
	args := NewFunctionArgs("regexp_subst", callArgs)
	stringExpr, err := args.GetExpr(0)
	if err != nil {
		return nil, err
	}
	pattern, err := args.GetLiteralString(1)
	if err != nil {
		return nil, err
	}
	replacement, err := args.GetLiteralString(2)
	if err != nil {
		return nil, err
	}
	global, _, err := args.GetNamedLiteralBoolean("global")
	if err != nil {
		return nil, err
	}
	// groups defaults to whether the replacement text has a \N
	// back-reference (§4.9.3); an explicit groups= overrides the default.
	groups := hasBackref(replacement)
	if g, exists, err := args.GetNamedLiteralBoolean("groups"); err != nil {
		return nil, err
	} else if exists {
		groups = g
	}
	flags, err := regexpFlagsFrom(args)
	if err != nil {
		return nil, err
	}
	if err := args.Check(); err != nil {
		return nil, err
	}
	return expr.NewRegexpSubst(stringExpr, pattern, replacement, flags, global, groups)
}

func hasBackref(replacement string) bool {
	for i := 0; i+1 < len(replacement); i++ {
		if replacement[i] == '\\' && replacement[i+1] >= '0' && replacement[i+1] <= '9' {
			return true
		}
	}
	return false
}

func newCacheJSONFileNode(callArgs expr.CallArgs) (expr.Node, error) {
	args := NewFunctionArgs("cache_json_file", callArgs)
	path, err := args.GetLiteralString(0)
	if err != nil {
		return nil, err
	}
	if err := args.Check(); err != nil {
		return nil, err
	}
	return expr.NewCacheJSONFile(path)
}

// RegisterBuiltins wires every function this package implements into the
// registry. Called once from filterx.GlobalInit, not from a package
// init(): the teacher's own convention keeps anything with observable
// global state behind an explicit call (e.g. expr/simplify.go's rewrite
// tables are built lazily, not in init()).
func RegisterBuiltins() {
	RegisterSimple("keys", keysFunc)
	RegisterSimple("path_lookup", pathLookupFunc)
	RegisterFunctionCtor("unset_empties", newUnsetEmptiesNode)
	RegisterFunctionCtor("regexp_search", newRegexpSearchNode)
	RegisterFunctionCtor("regexp_subst", newRegexpSubstNode)
	RegisterFunctionCtor("cache_json_file", newCacheJSONFileNode)
	registerFailureInfo()
}
