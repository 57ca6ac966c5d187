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

package object

import "testing"

func TestFromJSONScalarTypes(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`42`, "42"},
		{`3.5`, "3.5"},
		{`"hi"`, `"hi"`},
		{`true`, "true"},
		{`null`, "null"},
	}
	for _, c := range cases {
		obj, err := FromJSON([]byte(c.in))
		if err != nil {
			t.Fatalf("FromJSON(%s): %v", c.in, err)
		}
		defer obj.Unref()
		var b builder
		if err := obj.FormatJSON(&b); err != nil {
			t.Fatalf("FormatJSON(%s): %v", c.in, err)
		}
		if got := b.String(); got != c.want {
			t.Errorf("FromJSON(%s) round-trip = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFromJSONIntegerVsDoubleDisambiguation(t *testing.T) {
	obj, err := FromJSON([]byte(`7`))
	if err != nil {
		t.Fatal(err)
	}
	defer obj.Unref()
	if _, ok := obj.(*Integer); !ok {
		t.Fatalf("FromJSON(7) = %T, want *Integer", obj)
	}

	fobj, err := FromJSON([]byte(`7.5`))
	if err != nil {
		t.Fatal(err)
	}
	defer fobj.Unref()
	if _, ok := fobj.(*Double); !ok {
		t.Fatalf("FromJSON(7.5) = %T, want *Double", fobj)
	}
}

func TestFromJSONNestedContainers(t *testing.T) {
	obj, err := FromJSON([]byte(`{"a":[1,2,3],"b":{"c":"d"}}`))
	if err != nil {
		t.Fatal(err)
	}
	ref := obj.(*Ref)
	defer ref.Unref()

	aObj, err := ref.GetSubscript(NewString("a"))
	if err != nil {
		t.Fatal(err)
	}
	defer aObj.Unref()
	n, _ := aObj.Len()
	if n != 3 {
		t.Fatalf("len(a) = %d, want 3", n)
	}

	bObj, err := ref.GetSubscript(NewString("b"))
	if err != nil {
		t.Fatal(err)
	}
	defer bObj.Unref()
	cObj, err := bObj.(*Ref).GetSubscript(NewString("c"))
	if err != nil {
		t.Fatal(err)
	}
	defer cObj.Unref()
	if got := cObj.Str(); got != "d" {
		t.Fatalf("b.c = %q, want %q", got, "d")
	}
}

func TestFromJSONInvalidInput(t *testing.T) {
	if _, err := FromJSON([]byte(`{not json`)); err == nil {
		t.Fatalf("FromJSON with malformed input should fail")
	}
}
