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

package cachejson

import (
	"encoding/binary"
	"fmt"
	"log"

	"golang.org/x/sys/unix"
)

// watcher is a minimal inotify-backed file watcher: one watch on the
// directory containing path (watching the file itself would be dropped
// across an editor's rename-into-place replace), filtered down to events
// naming path's own basename. Deletion keeps the last good value, per
// §6.4 and the original's "keeping current json version" behavior.
type watcher struct {
	fd     int
	stopCh chan struct{}
	doneCh chan struct{}
}

func newWatcher(path string, onChange func()) (*watcher, error) {
	dir, base := splitPath(path)

	fd, err := unix.InotifyInit1(unix.IN_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("inotify_init1: %w", err)
	}
	_, err = unix.InotifyAddWatch(fd, dir,
		unix.IN_CLOSE_WRITE|unix.IN_MOVED_TO|unix.IN_DELETE|unix.IN_MOVE_SELF)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("inotify_add_watch: %s: %w", dir, err)
	}

	w := &watcher{fd: fd, stopCh: make(chan struct{}), doneCh: make(chan struct{})}
	go w.run(base, onChange)
	return w, nil
}

// cString trims trailing NUL padding from an inotify_event name field.
func cString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

func splitPath(path string) (dir, base string) {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[:i], path[i+1:]
		}
	}
	return ".", path
}

func (w *watcher) run(base string, onChange func()) {
	defer close(w.doneCh)
	buf := make([]byte, 4096)
	for {
		select {
		case <-w.stopCh:
			return
		default:
		}

		n, err := unix.Read(w.fd, buf)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			if err == unix.EBADF {
				return
			}
			log.Printf("filterx/cachejson: inotify read: %v", err)
			return
		}
		if n <= 0 {
			continue
		}

		changed := false
		offset := 0
		const headerLen = 16 // wd, mask, cookie, len: four uint32/int32 fields
		for offset+headerLen <= n {
			nameLen := int(binary.LittleEndian.Uint32(buf[offset+12 : offset+16]))
			start := offset + headerLen
			name := ""
			if nameLen > 0 && start+nameLen <= n {
				name = cString(buf[start : start+nameLen])
			}
			if name == "" || name == base {
				changed = true
			}
			offset = start + nameLen
		}
		if changed {
			onChange()
		}
	}
}

func (w *watcher) stop() {
	close(w.stopCh)
	unix.Close(w.fd)
	<-w.doneCh
}
