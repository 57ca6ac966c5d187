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

// Package regexp wraps the stdlib RE2 engine behind the PCRE-compatible
// contract §4.9 assumes: compile with named-group support, match with
// ovector access, and group-name introspection. No cgo PCRE binding
// exists anywhere in the retrieval pack, so this is the module's one
// deliberate stdlib-over-library exception (see DESIGN.md).
package regexp

import (
	"fmt"
	"regexp"

	"github.com/flowdrop/filterx/regexp2"
)

// Flags mirrors the PCRE2 compile-option surface §4.9 names, translated
// to Go's inline-flag syntax at Compile time.
type Flags struct {
	ICase   bool // CASELESS
	Newline bool // NEWLINE_ANYCRLF: '.' does not match \n, ^/$ match at line boundaries
	UTF8    bool // NO_UTF_CHECK: informational only, Go strings are always UTF-8
	JIT     bool // informational only: RE2 has no separate JIT step
}

// MaxCaptureGroups bounds group count the same way PCRE2's ovector
// allocation would (§8.4 "more than 256 capture groups").
const MaxCaptureGroups = 256

// namedGroupRe rewrites PCRE-style `(?<name>...)` named groups into Go's
// `(?P<name>...)` syntax; negative/positive lookbehind spellings
// `(?<=` / `(?<!` are left untouched (and will simply fail to compile,
// since RE2 has no lookaround support at all).
var namedGroupRe = regexp.MustCompile(`\(\?<([^=!][^>]*)>`)

func translateNamedGroups(pattern string) string {
	return namedGroupRe.ReplaceAllString(pattern, "(?P<$1>")
}

// Pattern is a compiled regexp plus its capture-group name table.
type Pattern struct {
	re     *regexp.Regexp
	source string
}

// Compile compiles pattern under flags. DUPNAMES (multiple groups sharing
// a name) is accepted implicitly: Go's regexp/syntax already tolerates
// duplicate group names and SubexpNames just returns the same name twice.
func Compile(pattern string, flags Flags) (*Pattern, error) {
	if err := regexp2.IsSupported(pattern); err != nil {
		return nil, fmt.Errorf("filterx/expr/regexp: %w", err)
	}

	goPattern := translateNamedGroups(pattern)
	var prefix string
	if flags.ICase {
		prefix += "i"
	}
	if flags.Newline {
		// Go's (?m) multiline mode makes ^/$ match at line boundaries,
		// matching PCRE2_NEWLINE_ANYCRLF's effect on anchors; '.' not
		// matching \n is Go's regexp default already, so no (?s) needed.
		prefix += "m"
	}
	if prefix != "" {
		goPattern = "(?" + prefix + ")" + goPattern
	}

	re, err := regexp.Compile(goPattern)
	if err != nil {
		return nil, fmt.Errorf("filterx/expr/regexp: compiling pattern %q: %w", pattern, err)
	}
	if re.NumSubexp() > MaxCaptureGroups {
		return nil, fmt.Errorf("filterx/expr/regexp: pattern %q has more than %d capture groups", pattern, MaxCaptureGroups)
	}
	return &Pattern{re: re, source: pattern}, nil
}

// String returns the original (uncompiled) pattern text, for error
// messages.
func (p *Pattern) String() string { return p.source }

// NumGroups returns the number of capture groups, not counting group 0
// (the whole match).
func (p *Pattern) NumGroups() int { return p.re.NumSubexp() }

// GroupName returns the name of capture group i (1-based), or "" if it is
// unnamed. Group 0 (the whole match) has no name.
func (p *Pattern) GroupName(i int) string {
	names := p.re.SubexpNames()
	if i < 0 || i >= len(names) {
		return ""
	}
	return names[i]
}

// Match reports whether s matches the pattern anywhere, like PCRE2's
// plain match call (used by the `=~`/`!~` node, which doesn't need
// submatches).
func (p *Pattern) Match(s string) bool {
	return p.re.MatchString(s)
}

// FindSubmatchIndex returns the byte-offset ovector of the first match in
// s: pairs [start0,end0, start1,end1, ...], -1 for an unset group, or nil
// if there is no match at all (§4.9.2's "no match" case).
func (p *Pattern) FindSubmatchIndex(s string) []int {
	return p.re.FindStringSubmatchIndex(s)
}

// FindSubmatchIndexFrom returns the submatch ovector of the first match
// at or after byte offset start, or nil if none (used by the substitution
// loop, §4.9.3).
func (p *Pattern) FindSubmatchIndexFrom(s string, start int) []int {
	if start > len(s) {
		return nil
	}
	loc := p.re.FindStringSubmatchIndex(s[start:])
	if loc == nil {
		return nil
	}
	out := make([]int, len(loc))
	for i, v := range loc {
		if v < 0 {
			out[i] = -1
			continue
		}
		out[i] = v + start
	}
	return out
}
