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

package regexp

import (
	"strings"
	"testing"
)

func TestCompileTranslatesNamedGroups(t *testing.T) {
	p, err := Compile(`(?<year>\d{4})-(?<month>\d{2})`, Flags{})
	if err != nil {
		t.Fatal(err)
	}
	if p.NumGroups() != 2 {
		t.Fatalf("NumGroups() = %d, want 2", p.NumGroups())
	}
	if p.GroupName(1) != "year" || p.GroupName(2) != "month" {
		t.Fatalf("group names = %q, %q, want year, month", p.GroupName(1), p.GroupName(2))
	}
}

func TestCompileICaseFlag(t *testing.T) {
	p, err := Compile(`hello`, Flags{ICase: true})
	if err != nil {
		t.Fatal(err)
	}
	if !p.Match("HELLO") {
		t.Fatalf("icase pattern should match regardless of case")
	}
}

func TestCompileRejectsTooManyCaptureGroups(t *testing.T) {
	var b strings.Builder
	for i := 0; i < MaxCaptureGroups+1; i++ {
		b.WriteString("(a)")
	}
	if _, err := Compile(b.String(), Flags{}); err == nil {
		t.Fatalf("a pattern with more than %d capture groups should be rejected", MaxCaptureGroups)
	}
}

func TestFindSubmatchIndexFromOffsetsAreAbsolute(t *testing.T) {
	p, err := Compile(`\d+`, Flags{})
	if err != nil {
		t.Fatal(err)
	}
	loc := p.FindSubmatchIndexFrom("ab12cd34", 4)
	if loc == nil || loc[0] != 6 || loc[1] != 8 {
		t.Fatalf("FindSubmatchIndexFrom(...,4) = %v, want match at [6,8]", loc)
	}
}

func TestNoMatchReturnsNil(t *testing.T) {
	p, err := Compile(`\d+`, Flags{})
	if err != nil {
		t.Fatal(err)
	}
	if loc := p.FindSubmatchIndex("abcdef"); loc != nil {
		t.Fatalf("FindSubmatchIndex on a non-matching string = %v, want nil", loc)
	}
}
