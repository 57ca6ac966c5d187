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
)

// The node types backing these four functions live in package expr
// (expr/failure_info.go): Node's walk method is unexported, so only a
// type declared in expr can implement it. This file just does the
// CallArgs parsing and registration, grounded on func-failure-info.c.

func newFailureInfoNode(args expr.CallArgs) (expr.Node, error) {
	if len(args.Positional) != 0 || len(args.Named) != 0 {
		return nil, fmt.Errorf("failure_info() takes no arguments")
	}
	return expr.NewFailureInfo(), nil
}

func newFailureInfoClearNode(args expr.CallArgs) (expr.Node, error) {
	if len(args.Positional) != 0 || len(args.Named) != 0 {
		return nil, fmt.Errorf("failure_info_clear() takes no arguments")
	}
	return expr.NewFailureInfoClear(), nil
}

func newFailureInfoEnableNode(callArgs expr.CallArgs) (expr.Node, error) {
	args := NewFunctionArgs("failure_info_enable", callArgs)
	collectFalsy, _, err := args.GetNamedLiteralBoolean("collect_falsy")
	if err != nil {
		return nil, err
	}
	if err := args.Check(); err != nil {
		return nil, err
	}
	return expr.NewFailureInfoEnable(collectFalsy), nil
}

func newFailureInfoMetaNode(callArgs expr.CallArgs) (expr.Node, error) {
	args := NewFunctionArgs("failure_info_meta", callArgs)
	metaExpr, err := args.GetExpr(0)
	if err != nil {
		return nil, err
	}
	if err := args.Check(); err != nil {
		return nil, err
	}
	lit, ok := expr.IsLiteral(metaExpr)
	if !ok {
		return nil, fmt.Errorf("failure_info_meta: argument must be a literal")
	}
	return expr.NewFailureInfoMeta(lit.Value.Clone()), nil
}

// registerFailureInfo wires the four failure_info* builtins into the
// registry; called once from RegisterBuiltins, not from a package init()
// (observable global state is registered explicitly, not via init-time
// magic — see filterx.GlobalInit).
func registerFailureInfo() {
	RegisterFunctionCtor("failure_info", newFailureInfoNode)
	RegisterFunctionCtor("failure_info_clear", newFailureInfoClearNode)
	RegisterFunctionCtor("failure_info_enable", newFailureInfoEnableNode)
	RegisterFunctionCtor("failure_info_meta", newFailureInfoMetaNode)
}
