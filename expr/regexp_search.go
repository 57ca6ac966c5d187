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
	"strconv"

	"github.com/flowdrop/filterx/evalctx"
	"github.com/flowdrop/filterx/expr/regexp"
	"github.com/flowdrop/filterx/object"
)

// RegexpSearch implements the `regexp_search` function (§4.9.2): match
// once and return either a dict keyed by group index/name, or (in
// list_mode) a flat list of substrings in group order.
type RegexpSearch struct {
	base
	StringExpr Node
	Pattern    *regexp.Pattern
	KeepZero   bool
	ListMode   bool
}

// NewRegexpSearch compiles pattern (must be supplied as a literal by the
// caller, enforced at the function-registration layer) and builds the
// node.
func NewRegexpSearch(stringExpr Node, pattern string, flags regexp.Flags, keepZero, listMode bool) (*RegexpSearch, error) {
	p, err := regexp.Compile(pattern, flags)
	if err != nil {
		return nil, err
	}
	n := &RegexpSearch{StringExpr: stringExpr, Pattern: p, KeepZero: keepZero, ListMode: listMode}
	n.bind(n)
	return n, nil
}

func (n *RegexpSearch) Init(cfg *Config) error { return n.StringExpr.Init(cfg) }
func (n *RegexpSearch) Deinit()                { n.StringExpr.Deinit() }
func (n *RegexpSearch) walk(w Visitor)         { Walk(w, n.StringExpr) }

func (n *RegexpSearch) Eval(ctx *evalctx.EvalContext) (Result, error) {
	sv, err := n.StringExpr.Eval(ctx)
	if err != nil {
		return nil, err
	}
	s, ok := object.AsString(sv)
	sv.Unref()
	if !ok {
		return nil, fmt.Errorf("filterx/expr: regexp_search requires a string argument")
	}

	loc := n.Pattern.FindSubmatchIndex(s)
	if loc == nil {
		if n.ListMode {
			return object.NewListRef(), nil
		}
		return object.NewDictRef(), nil
	}

	numGroups := n.Pattern.NumGroups()
	startIdx := 1
	if n.KeepZero || numGroups == 0 {
		startIdx = 0
	}

	if n.ListMode {
		ref := object.NewListRef()
		idx := 0
		for g := startIdx; g <= numGroups; g++ {
			var val object.Object
			st, en := loc[2*g], loc[2*g+1]
			if st < 0 {
				val = object.NewNull()
			} else {
				val = object.NewString(s[st:en])
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

	ref := object.NewDictRef()
	for g := startIdx; g <= numGroups; g++ {
		st, en := loc[2*g], loc[2*g+1]
		if st < 0 {
			continue
		}
		key := strconv.Itoa(g)
		if err := ref.SetSubscript(object.NewString(key), object.NewString(s[st:en])); err != nil {
			ref.Unref()
			return nil, err
		}
	}
	for g := 1; g <= numGroups; g++ {
		name := n.Pattern.GroupName(g)
		if name == "" {
			continue
		}
		numKey := object.NewString(strconv.Itoa(g))
		present, err := ref.IsKeySet(numKey)
		if err != nil {
			ref.Unref()
			return nil, err
		}
		if !present {
			continue
		}
		val, err := ref.GetSubscript(numKey)
		if err != nil {
			ref.Unref()
			return nil, err
		}
		if err := ref.SetSubscript(object.NewString(name), val); err != nil {
			val.Unref()
			ref.Unref()
			return nil, err
		}
		if _, err := ref.UnsetKey(object.NewString(strconv.Itoa(g))); err != nil {
			ref.Unref()
			return nil, err
		}
	}
	return ref, nil
}
