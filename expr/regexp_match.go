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
	"github.com/flowdrop/filterx/expr/regexp"
	"github.com/flowdrop/filterx/object"
)

// RegexpMatch implements `=~` / `!~` (§4.9.1). The pattern is compiled
// eagerly at construction time (the pattern string must be a literal, not
// a sub-expression), since there is no separate Init-time recompile path
// this node needs.
type RegexpMatch struct {
	base
	LHS     Node
	Pattern *regexp.Pattern
	Invert  bool
}

// NewRegexpMatch compiles pattern and builds the match node; returns an
// error (rather than a null node) on compile failure, per §4.9.1 "null
// return on failure".
func NewRegexpMatch(lhs Node, pattern string, flags regexp.Flags, invert bool) (*RegexpMatch, error) {
	p, err := regexp.Compile(pattern, flags)
	if err != nil {
		return nil, err
	}
	n := &RegexpMatch{LHS: lhs, Pattern: p, Invert: invert}
	n.bind(n)
	return n, nil
}

func (n *RegexpMatch) Init(cfg *Config) error { return n.LHS.Init(cfg) }
func (n *RegexpMatch) Deinit()                { n.LHS.Deinit() }

func (n *RegexpMatch) Eval(ctx *evalctx.EvalContext) (Result, error) {
	lv, err := n.LHS.Eval(ctx)
	if err != nil {
		return nil, err
	}
	s, ok := object.AsString(lv)
	lv.Unref()
	if !ok {
		return nil, fmt.Errorf("filterx/expr: =~ left-hand side must evaluate to a string")
	}
	matched := n.Pattern.Match(s)
	result := matched != n.Invert
	return object.NewBoolean(result), nil
}

func (n *RegexpMatch) walk(w Visitor) { Walk(w, n.LHS) }
