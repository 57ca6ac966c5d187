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
	"github.com/flowdrop/filterx/object"
)

func TestLiteralEvalReturnsFreshRef(t *testing.T) {
	val := object.NewString("hello")
	n := NewLiteral(val)
	if err := n.Init(&Config{}); err != nil {
		t.Fatal(err)
	}
	defer n.Deinit()

	ctx := evalctx.New(nil)
	res, err := n.Eval(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Unref()
	if got := res.Str(); got != "hello" {
		t.Fatalf("Eval() = %q, want %q", got, "hello")
	}
	if val.RefCount() < 2 {
		t.Fatalf("Eval() should hand back an additional reference, refcount = %d", val.RefCount())
	}
}

func TestIsLiteral(t *testing.T) {
	lit := NewLiteral(object.NewInteger(1))
	if _, ok := IsLiteral(lit); !ok {
		t.Fatalf("IsLiteral(Literal) should be true")
	}
	plus := NewPlus(NewLiteral(object.NewInteger(1)), NewLiteral(object.NewInteger(2)))
	if _, ok := IsLiteral(plus); ok {
		t.Fatalf("IsLiteral(Plus) should be false")
	}
}
