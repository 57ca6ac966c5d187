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

import "github.com/flowdrop/filterx/object"

// Result is the value an Eval call hands back: an owned Object reference
// the caller must Unref. A null Result is never valid on success — §3.6
// requires eval to always push at least one error frame before returning
// failure, so callers distinguish success/failure by the error return, not
// by nilness of Result.
type Result = object.Object

// Truthy reports res's truthiness, treating a nil Result (should not occur
// on a successful Eval, but defensively handled by callers such as
// compound-block short-circuiting) as false.
func Truthy(res Result) bool {
	if res == nil {
		return false
	}
	return res.Truthy()
}
