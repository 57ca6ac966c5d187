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

// Package object implements the FilterX polymorphic value model: the Type
// registry, the refcounted/freezable/readonly Object base, the copy-on-write
// Ref wrapper, and the built-in dict and list containers.
package object

import (
	"fmt"
	"sync"
)

// ValueType is the marshal type tag attached to the byte-serialized form of
// an Object, taken from a fixed enum mirroring the host's value-type space.
type ValueType int

const (
	VTUnknown ValueType = iota
	VTString
	VTJSON
	VTList
	VTInteger
	VTDouble
	VTBoolean
	VTNull
	VTDatetime
	VTBytes
	VTProtobuf
)

func (v ValueType) String() string {
	switch v {
	case VTString:
		return "string"
	case VTJSON:
		return "json"
	case VTList:
		return "list"
	case VTInteger:
		return "integer"
	case VTDouble:
		return "double"
	case VTBoolean:
		return "boolean"
	case VTNull:
		return "null"
	case VTDatetime:
		return "datetime"
	case VTBytes:
		return "bytes"
	case VTProtobuf:
		return "protobuf"
	default:
		return "unknown"
	}
}

// Type is a shared, process-wide descriptor for a family of Objects. It is
// never duplicated per-object; Objects carry a pointer to their Type.
type Type struct {
	Name    string
	Parent  *Type
	Mutable bool
}

// IsA reports whether t is the same type as other or descends from it
// through the single-chain type hierarchy.
func (t *Type) IsA(other *Type) bool {
	for c := t; c != nil; c = c.Parent {
		if c == other {
			return true
		}
	}
	return false
}

func (t *Type) String() string {
	if t == nil {
		return "<nil type>"
	}
	return t.Name
}

// Root type of the single-chain hierarchy; every other Type eventually
// chains up to this one.
var TypeObject = &Type{Name: "object"}

var (
	registryMu sync.Mutex
	registry   = map[string]*Type{}
)

// RegisterType adds t to the process-wide name->type table. Re-registering
// a name that is already present is rejected, matching the "once per type
// at initialization" contract of the core.
func RegisterType(t *Type) error {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[t.Name]; exists {
		return fmt.Errorf("filterx/object: type %q already registered", t.Name)
	}
	registry[t.Name] = t
	return nil
}

// LookupType finds a previously registered type by name, for reflection
// purposes (e.g. formatting a trace that names an expression node's type).
func LookupType(name string) (*Type, bool) {
	registryMu.Lock()
	defer registryMu.Unlock()
	t, ok := registry[name]
	return t, ok
}
