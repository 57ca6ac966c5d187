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

// Package filterx is the embeddable FilterX expression evaluation core: a
// polymorphic value model (object/), an expression node tree (expr/), an
// evaluation context (evalctx/), and the builtin function set
// (function/, cachejson/). GlobalInit wires process-wide type and
// function registration together exactly once; everything downstream of
// that (parsing a concrete rule set into a Node tree, feeding it records)
// is left to the embedding host.
package filterx

import (
	"fmt"
	"sync"

	"github.com/flowdrop/filterx/function"
	"github.com/flowdrop/filterx/object"
)

var (
	globalOnce sync.Once
	globalErr  error
	globalDone bool
)

// GlobalInit registers every built-in type and function exactly once for
// the life of the process (§4.2/§6.3 assume this ran before any rule is
// parsed or evaluated). Calling it more than once is a no-op; the error
// from the first call is what every subsequent call returns.
func GlobalInit() error {
	globalOnce.Do(func() {
		globalErr = registerTypes()
		if globalErr == nil {
			function.RegisterBuiltins()
		}
		globalDone = true
	})
	return globalErr
}

func registerTypes() error {
	types := []*object.Type{
		object.TypeObject,
		object.TypeString,
		object.TypeBytes,
		object.TypeProtobuf,
		object.TypeInteger,
		object.TypeDouble,
		object.TypeBoolean,
		object.TypeNull,
		object.TypeDatetime,
		object.TypeMessageValue,
		object.TypeDict,
		object.TypeDictObject,
		object.TypeList,
		object.TypeListObject,
	}
	for _, t := range types {
		if err := object.RegisterType(t); err != nil {
			return fmt.Errorf("filterx: %w", err)
		}
	}
	return nil
}

// GlobalDeinit releases what GlobalInit acquired. The core itself holds
// no global resources beyond the registries (which are process lifetime
// by design, §6.3), so today this only exists so a host has a single,
// stable shutdown hook to call regardless of what future builtins add to
// it — mirroring the teacher's own pair of explicit, symmetric
// init/deinit entry points rather than relying on process exit.
func GlobalDeinit() {}

// Initialized reports whether GlobalInit has run (successfully or not),
// for hosts that want to assert startup order in tests.
func Initialized() bool {
	return globalDone
}
