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

// Package cachejson implements the `cache_json_file(path)` function
// (§6.4): load once, watch for changes, publish the parsed tree through a
// single atomic pointer workers read without locking.
package cachejson

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync/atomic"

	"github.com/klauspost/compress/zstd"

	"github.com/flowdrop/filterx/object"
)

// holder is the concrete type stored in the atomic.Value (Go 1.18 predates
// the generic atomic.Pointer[T], so the teacher's own go.mod pin rules
// that out; wrapping in a one-field struct is the idiomatic workaround).
type holder struct {
	obj object.Object
}

// Cache is one cache_json_file(path) instance: a loaded, readonly,
// deduplicated JSON tree kept fresh by a background file watcher.
type Cache struct {
	path    string
	current atomic.Value // holds *holder
	watcher *watcher
}

// Load reads path, parses it as JSON (transparently zstd-decompressing a
// ".zst"-suffixed path — klauspost/compress, the teacher's own block
// compressor, repurposed here for a different payload), makes the result
// readonly, deduplicates its string leaves, and starts a file watcher that
// reloads on change. The returned Cache owns the watcher goroutine; call
// Close to stop it.
func Load(path string) (*Cache, error) {
	c := &Cache{path: path}
	if err := c.reload(); err != nil {
		return nil, err
	}
	w, err := newWatcher(path, c.reloadLogged)
	if err != nil {
		// A file we can watch is nice-to-have, not required: the cache
		// still works without live reload, just log and move on.
		log.Printf("filterx/cachejson: %s: file watch disabled: %v", path, err)
	} else {
		c.watcher = w
	}
	return c, nil
}

func readFile(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %s (%w)", path, err)
	}
	if !strings.HasSuffix(path, ".zst") {
		return raw, nil
	}
	dec, err := zstd.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to init zstd decoder: %s (%w)", path, err)
	}
	defer dec.Close()
	out, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress file: %s (%w)", path, err)
	}
	return out, nil
}

func (c *Cache) reload() error {
	raw, err := readFile(c.path)
	if err != nil {
		return err
	}
	obj, err := object.FromJSON(raw)
	if err != nil {
		return fmt.Errorf("failed to parse JSON file: %s (%w)", c.path, err)
	}
	obj.MakeReadonly()
	dedup := object.NewDedupStorage()
	obj = obj.Dedup(dedup)
	log.Printf("filterx/cachejson: loaded %s (%d deduplicated leaf values)", c.path, dedup.Size())

	old, _ := c.current.Swap(&holder{obj: obj}).(*holder)
	if old != nil {
		old.obj.Unref()
	}
	return nil
}

// reloadLogged is the watcher callback: any error during reload is logged
// and the previous value is retained (§6.4), matching the original's
// "keeping current json version" log message.
func (c *Cache) reloadLogged() {
	if err := c.reload(); err != nil {
		log.Printf("filterx/cachejson: error while loading json file, keeping current json version: %s: %v", c.path, err)
	}
}

// Current returns a fresh strong reference to the currently published
// root (§6.4 eval contract).
func (c *Cache) Current() object.Object {
	h := c.current.Load().(*holder)
	return h.obj.Ref()
}

// Close stops the file watcher. Safe to call more than once.
func (c *Cache) Close() {
	if c.watcher != nil {
		c.watcher.stop()
		c.watcher = nil
	}
}
