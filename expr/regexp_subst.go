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
	"strings"

	"github.com/flowdrop/filterx/evalctx"
	"github.com/flowdrop/filterx/expr/regexp"
	"github.com/flowdrop/filterx/object"
)

// RegexpSubst implements the `regexp_subst` function (§4.9.3).
type RegexpSubst struct {
	base
	StringExpr  Node
	Pattern     *regexp.Pattern
	Replacement string
	Global      bool
	Groups      bool
}

func NewRegexpSubst(stringExpr Node, pattern, replacement string, flags regexp.Flags, global, groups bool) (*RegexpSubst, error) {
	p, err := regexp.Compile(pattern, flags)
	if err != nil {
		return nil, err
	}
	n := &RegexpSubst{
		StringExpr:  stringExpr,
		Pattern:     p,
		Replacement: replacement,
		Global:      global,
		Groups:      groups,
	}
	n.bind(n)
	return n, nil
}

func (n *RegexpSubst) Init(cfg *Config) error { return n.StringExpr.Init(cfg) }
func (n *RegexpSubst) Deinit()                { n.StringExpr.Deinit() }
func (n *RegexpSubst) walk(w Visitor)         { Walk(w, n.StringExpr) }

// expandReplacement resolves `\N` back-references in n.Replacement
// against the match described by loc (an ovector over s). Ill-formed or
// out-of-range references are kept verbatim (§4.9.3).
func (n *RegexpSubst) expandReplacement(s string, loc []int) string {
	if !n.Groups {
		return n.Replacement
	}
	var out strings.Builder
	repl := n.Replacement
	for i := 0; i < len(repl); i++ {
		c := repl[i]
		if c != '\\' || i+1 >= len(repl) {
			out.WriteByte(c)
			continue
		}
		j := i + 1
		digitsStart := j
		for j < len(repl) && j < digitsStart+3 && repl[j] >= '0' && repl[j] <= '9' {
			j++
		}
		if j == digitsStart {
			// Not a digit after the backslash: keep both bytes verbatim.
			out.WriteByte(c)
			continue
		}
		groupNum, _ := strconv.Atoi(repl[digitsStart:j])
		if groupNum > n.Pattern.NumGroups() || 2*groupNum+1 >= len(loc) {
			// Unknown/out-of-range group reference: keep verbatim.
			out.WriteString(repl[i:j])
			i = j - 1
			continue
		}
		st, en := loc[2*groupNum], loc[2*groupNum+1]
		if st >= 0 {
			out.WriteString(s[st:en])
		}
		i = j - 1
	}
	return out.String()
}

// Eval mirrors expr-regexp-subst.c's _replace_matches: the ovector that
// decides the trailing zero-length-match append is whichever match was
// last found by the engine, whether or not the loop went on to apply it.
// That means two distinct exit paths feed the check: running out of
// matches entirely (the append refers to the last *applied* match), or
// stopping early — non-global, or reaching the end of the string — while
// a further match was already found by the lookahead (the append then
// refers to that *un-applied* match instead).
func (n *RegexpSubst) Eval(ctx *evalctx.EvalContext) (Result, error) {
	sv, err := n.StringExpr.Eval(ctx)
	if err != nil {
		return nil, err
	}
	s, ok := object.AsString(sv)
	sv.Unref()
	if !ok {
		return nil, fmt.Errorf("filterx/expr: regexp_subst requires a string argument")
	}

	loc := n.Pattern.FindSubmatchIndexFrom(s, 0)
	if loc == nil {
		return object.NewString(s), nil
	}

	var out strings.Builder
	pos := 0
	finalLoc := loc
	for {
		start, end := loc[0], loc[1]
		out.WriteString(s[pos:start])
		out.WriteString(n.expandReplacement(s, loc))
		if start == end {
			if start < len(s) {
				out.WriteByte(s[start])
			}
			pos = start + 1
		} else {
			pos = end
		}
		finalLoc = loc

		next := n.Pattern.FindSubmatchIndexFrom(s, pos)
		if next == nil {
			break
		}
		if !(pos < len(s) && n.Global) {
			finalLoc = next
			break
		}
		loc = next
	}

	if pos <= len(s) {
		out.WriteString(s[pos:])
	}
	if finalLoc[0] == finalLoc[1] {
		out.WriteString(n.expandReplacement(s, finalLoc))
	}
	return object.NewString(out.String()), nil
}
