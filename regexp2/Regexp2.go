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

package regexp2

import (
	"fmt"
	"unicode/utf8"
)

// MaxCharInRegex is the maximum number of characters accepted in a regex
// pattern string before IsSupported rejects it outright, independent of
// whatever the underlying engine itself would tolerate.
const MaxCharInRegex = 1000

// IsSupported determines whether expr is an acceptable regex pattern,
// ahead of handing it to the real compiler; returns nil if supported, an
// error otherwise. Used by expr/regexp as a cheap pre-compile guard
// (kept from the teacher's own regex front door, minus the
// NFA/DFA-construction machinery this module has no use for).
func IsSupported(expr string) error {
	nRunesExpr := utf8.RuneCountInString(expr)
	if nRunesExpr > MaxCharInRegex {
		return fmt.Errorf("provided regex expression contains %v code-points which is more than the max %v", nRunesExpr, MaxCharInRegex)
	}
	return nil
}
