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

import "golang.org/x/exp/maps"

// DedupStorage canonicalizes repeated atom values (strings, integers,
// doubles) encountered while freezing a tree loaded in one shot, most
// notably a cache_json_file() snapshot (§4.1, §6.4): many leaves in a
// large config blob repeat the same short strings, and collapsing them to
// one shared, frozen instance avoids one allocation per occurrence.
//
// A DedupStorage is meant to be used once per tree: build it, call Dedup
// on the tree's root, then discard it.
type DedupStorage struct {
	table map[string]Object
}

// NewDedupStorage returns an empty canonicalization table.
func NewDedupStorage() *DedupStorage {
	return &DedupStorage{table: make(map[string]Object)}
}

// canonicalize returns the first-seen Object registered under key, ref'd;
// if key hasn't been seen before, obj itself becomes canonical and is
// stored (ref'd) for future callers.
func (s *DedupStorage) canonicalize(obj Object, key string) Object {
	if existing, ok := s.table[key]; ok {
		existing.setParent(nil)
		return existing.Ref()
	}
	obj.Ref()
	s.table[key] = obj
	return obj
}

// Size returns the number of distinct canonical values currently held,
// for callers (e.g. cachejson's reload log line) that want to report how
// much a tree's leaves deduplicated.
func (s *DedupStorage) Size() int {
	return len(maps.Keys(s.table))
}
