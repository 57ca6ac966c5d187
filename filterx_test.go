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

package filterx

import "testing"

// TestGlobalInitIsIdempotent relies on GlobalInit's sync.Once: the first
// call in the whole test binary does the real registration, every later
// call (here and from any other test in this package) must return the
// exact same error without re-running registerTypes.
func TestGlobalInitIsIdempotent(t *testing.T) {
	if Initialized() {
		t.Skip("GlobalInit already ran earlier in this test binary; idempotency is exercised by the call below regardless")
	}
	err1 := GlobalInit()
	if err1 != nil {
		t.Fatalf("GlobalInit() first call = %v, want nil", err1)
	}
	if !Initialized() {
		t.Fatalf("Initialized() should report true after GlobalInit")
	}
	err2 := GlobalInit()
	if err2 != err1 {
		t.Fatalf("GlobalInit() second call = %v, want the same %v returned by the first", err2, err1)
	}
}

func TestGlobalDeinitDoesNotPanic(t *testing.T) {
	GlobalDeinit()
}
