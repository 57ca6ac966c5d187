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
	"testing"

	"github.com/flowdrop/filterx/evalctx"
	"github.com/flowdrop/filterx/expr/regexp"
	"github.com/flowdrop/filterx/object"
)

func evalSubst(t *testing.T, n *RegexpSubst) string {
	t.Helper()
	if err := n.Init(&Config{}); err != nil {
		t.Fatal(err)
	}
	defer n.Deinit()
	res, err := n.Eval(evalctx.New(nil))
	if err != nil {
		t.Fatal(err)
	}
	defer res.Unref()
	return res.Str()
}

func TestRegexpSubstBackreferencesReorderDate(t *testing.T) {
	n, err := NewRegexpSubst(
		NewLiteral(object.NewString("25-02-2022")),
		`(\d+)-(\d+)-(\d+)`, `\3-\2-\1`,
		regexp.Flags{}, false, true,
	)
	if err != nil {
		t.Fatal(err)
	}
	if got := evalSubst(t, n); got != "2022-02-25" {
		t.Fatalf("subst with groups=true = %q, want %q", got, "2022-02-25")
	}
}

func TestRegexpSubstGroupsFalseKeepsReplacementLiteral(t *testing.T) {
	n, err := NewRegexpSubst(
		NewLiteral(object.NewString("25-02-2022")),
		`(\d+)-(\d+)-(\d+)`, `\3-\2-\1`,
		regexp.Flags{}, false, false,
	)
	if err != nil {
		t.Fatal(err)
	}
	if got := evalSubst(t, n); got != `\3-\2-\1` {
		t.Fatalf("subst with groups=false = %q, want literal %q", got, `\3-\2-\1`)
	}
}

func TestRegexpSubstGlobalReplacesAllOccurrences(t *testing.T) {
	n, err := NewRegexpSubst(
		NewLiteral(object.NewString("banana")),
		`a`, `o`,
		regexp.Flags{}, true, false,
	)
	if err != nil {
		t.Fatal(err)
	}
	if got := evalSubst(t, n); got != "bonono" {
		t.Fatalf("global subst = %q, want %q", got, "bonono")
	}
}

func TestRegexpSubstNonGlobalReplacesFirstOnly(t *testing.T) {
	n, err := NewRegexpSubst(
		NewLiteral(object.NewString("banana")),
		`a`, `o`,
		regexp.Flags{}, false, false,
	)
	if err != nil {
		t.Fatal(err)
	}
	if got := evalSubst(t, n); got != "bonana" {
		t.Fatalf("non-global subst = %q, want %q", got, "bonana")
	}
}

func TestRegexpSubstNoMatchReturnsOriginal(t *testing.T) {
	n, err := NewRegexpSubst(
		NewLiteral(object.NewString("hello")),
		`\d+`, `X`,
		regexp.Flags{}, true, false,
	)
	if err != nil {
		t.Fatal(err)
	}
	if got := evalSubst(t, n); got != "hello" {
		t.Fatalf("no-match subst = %q, want original %q", got, "hello")
	}
}

// TestRegexpSubstGlobalZeroLengthMatch exercises §4.9.3's zero-length-match
// edge case: a pattern that can match the empty string must advance one
// byte at a time rather than looping forever, and the replacement text
// must appear exactly once per scan position (including the boundary at
// the end of the string), not duplicated.
func TestRegexpSubstGlobalZeroLengthMatch(t *testing.T) {
	n, err := NewRegexpSubst(
		NewLiteral(object.NewString("abc")),
		`x*`, `Y`,
		regexp.Flags{}, true, false,
	)
	if err != nil {
		t.Fatal(err)
	}
	if got := evalSubst(t, n); got != "YaYbYcY" {
		t.Fatalf("zero-length global subst = %q, want %q", got, "YaYbYcY")
	}
}

// TestRegexpSubstNonGlobalZeroLengthMatchAppendsTrailingReplacement
// exercises the other half of §4.9.3's zero-length rule: when the loop
// stops after a single (non-global) zero-length match, the replacement
// that would have applied at the next scan position must still be
// appended once after the untouched remainder of the string (grounded on
// expr-regexp-subst.c's post-loop `is_zero_length_match` check, which
// fires independently of the `global` flag).
func TestRegexpSubstNonGlobalZeroLengthMatchAppendsTrailingReplacement(t *testing.T) {
	n, err := NewRegexpSubst(
		NewLiteral(object.NewString("abc")),
		`x*`, `-`,
		regexp.Flags{}, false, false,
	)
	if err != nil {
		t.Fatal(err)
	}
	if got := evalSubst(t, n); got != "-abc-" {
		t.Fatalf("non-global zero-length subst = %q, want %q", got, "-abc-")
	}
}

func TestRegexpSubstBackrefOutOfRangeKeptVerbatim(t *testing.T) {
	n, err := NewRegexpSubst(
		NewLiteral(object.NewString("ab")),
		`(a)(b)`, `\9`,
		regexp.Flags{}, false, true,
	)
	if err != nil {
		t.Fatal(err)
	}
	if got := evalSubst(t, n); got != `\9` {
		t.Fatalf("out-of-range backref = %q, want verbatim %q", got, `\9`)
	}
}
