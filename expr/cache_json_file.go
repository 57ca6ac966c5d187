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
	"github.com/flowdrop/filterx/cachejson"
	"github.com/flowdrop/filterx/evalctx"
)

// cacheJSONFile implements `cache_json_file(path)` (§6.4): the path is
// fixed at construction time, loaded once, and kept fresh by a
// background watcher; each Eval hands out a fresh reference to whatever
// is currently published.
type cacheJSONFile struct {
	base
	cache *cachejson.Cache
}

// NewCacheJSONFile loads path and builds the cache_json_file() call node
// around it.
func NewCacheJSONFile(path string) (Node, error) {
	c, err := cachejson.Load(path)
	if err != nil {
		return nil, err
	}
	n := &cacheJSONFile{cache: c}
	n.bind(n)
	return n, nil
}

func (n *cacheJSONFile) Eval(ctx *evalctx.EvalContext) (Result, error) {
	return n.cache.Current(), nil
}

func (n *cacheJSONFile) Deinit() {
	n.cache.Close()
}

func (n *cacheJSONFile) walk(w Visitor) {}
