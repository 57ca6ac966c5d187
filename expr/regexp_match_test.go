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

func TestRegexpMatchPlain(t *testing.T) {
	n, err := NewRegexpMatch(NewLiteral(object.NewString("hello world")), `wor\w+`, regexp.Flags{}, false)
	if err != nil {
		t.Fatal(err)
	}
	if err := n.Init(&Config{}); err != nil {
		t.Fatal(err)
	}
	defer n.Deinit()

	res, err := n.Eval(evalctx.New(nil))
	if err != nil {
		t.Fatal(err)
	}
	defer res.Unref()
	if !res.Truthy() {
		t.Fatalf("=~ should match")
	}
}

func TestRegexpMatchInvert(t *testing.T) {
	n, err := NewRegexpMatch(NewLiteral(object.NewString("hello world")), `zzz`, regexp.Flags{}, true)
	if err != nil {
		t.Fatal(err)
	}
	if err := n.Init(&Config{}); err != nil {
		t.Fatal(err)
	}
	defer n.Deinit()

	res, err := n.Eval(evalctx.New(nil))
	if err != nil {
		t.Fatal(err)
	}
	defer res.Unref()
	if !res.Truthy() {
		t.Fatalf("!~ with a non-matching pattern should be true")
	}
}

func TestRegexpMatchCaseInsensitive(t *testing.T) {
	n, err := NewRegexpMatch(NewLiteral(object.NewString("HELLO")), `hello`, regexp.Flags{ICase: true}, false)
	if err != nil {
		t.Fatal(err)
	}
	if err := n.Init(&Config{}); err != nil {
		t.Fatal(err)
	}
	defer n.Deinit()

	res, err := n.Eval(evalctx.New(nil))
	if err != nil {
		t.Fatal(err)
	}
	defer res.Unref()
	if !res.Truthy() {
		t.Fatalf("icase match should succeed")
	}
}

func TestRegexpMatchRejectsBadPattern(t *testing.T) {
	if _, err := NewRegexpMatch(NewLiteral(object.NewString("x")), `(unclosed`, regexp.Flags{}, false); err == nil {
		t.Fatalf("an invalid pattern should fail to compile")
	}
}

func TestRegexpMatchRequiresStringLHS(t *testing.T) {
	n, err := NewRegexpMatch(NewLiteral(object.NewInteger(1)), `\d+`, regexp.Flags{}, false)
	if err != nil {
		t.Fatal(err)
	}
	if err := n.Init(&Config{}); err != nil {
		t.Fatal(err)
	}
	defer n.Deinit()

	if _, err := n.Eval(evalctx.New(nil)); err == nil {
		t.Fatalf("=~ against a non-string left-hand side should fail")
	}
}
