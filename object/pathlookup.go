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

import "fmt"

// PathLookup walks root through a sequence of keys, calling GetSubscript
// at each step (§4.1 path_lookup). A non-container encountered with keys
// remaining is an error rather than a silent stop.
func PathLookup(root Object, keys []Object) (Object, error) {
	cur := root.Ref()
	for i, k := range keys {
		next, err := cur.GetSubscript(k)
		cur.Unref()
		if err != nil {
			return nil, fmt.Errorf("filterx/object: path_lookup: at segment %d: %w", i, err)
		}
		cur = next
	}
	return cur, nil
}
