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

import (
	"fmt"
	"strconv"

	"github.com/flowdrop/filterx/date"
)

var (
	TypeString       = &Type{Name: "string", Parent: TypeObject}
	TypeBytes        = &Type{Name: "bytes", Parent: TypeObject}
	TypeProtobuf     = &Type{Name: "protobuf", Parent: TypeObject}
	TypeInteger      = &Type{Name: "integer", Parent: TypeObject}
	TypeDouble       = &Type{Name: "double", Parent: TypeObject}
	TypeBoolean      = &Type{Name: "boolean", Parent: TypeObject}
	TypeNull         = &Type{Name: "null", Parent: TypeObject}
	TypeDatetime     = &Type{Name: "datetime", Parent: TypeObject}
	TypeMessageValue = &Type{Name: "message_value", Parent: TypeObject}
)

// String is the FilterX UTF-8 string atom.
type String struct {
	Base
	Value string
}

func NewString(v string) *String {
	s := &String{Value: v}
	s.Base.Init(s, TypeString)
	return s
}

func (s *String) Truthy() bool { return s.Value != "" }
func (s *String) Len() (int, error) { return len([]rune(s.Value)), nil }
func (s *String) Repr() string { return strconv.Quote(s.Value) }
func (s *String) Str() string  { return s.Value }
func (s *String) FormatJSON(w JSONWriter) error { return writeJSONString(w, s.Value) }
func (s *String) Marshal() ([]byte, ValueType, error) { return []byte(s.Value), VTString, nil }

func (s *String) Add(other Object) (Object, error) {
	o, ok := AsString(other)
	if !ok {
		return nil, errTypef("cannot add %s to string", other.TypeName())
	}
	return NewString(s.Value + o), nil
}

func (s *String) Clone() Object { return s.Ref() }

func (s *String) Dedup(storage *DedupStorage) Object {
	return storage.canonicalize(s, "s:"+s.Value)
}

// AsString extracts a string's backing value, also accepting a
// message_value tagged LM_VT_STRING (§4.1 "hashing... or the message_value
// variant tagged LM_VT_STRING").
func AsString(o Object) (string, bool) {
	switch v := o.(type) {
	case *String:
		return v.Value, true
	case *MessageValue:
		if v.ValueType == VTString {
			return v.Raw, true
		}
	case *Ref:
		return AsString(v.inner)
	}
	return "", false
}

// AsBoolean extracts a Boolean's value, unwrapping a Ref if needed.
func AsBoolean(o Object) (bool, bool) {
	switch v := o.(type) {
	case *Boolean:
		return v.Value, true
	case *Ref:
		return AsBoolean(v.inner)
	}
	return false, false
}

// Bytes is an opaque byte-string atom.
type Bytes struct {
	Base
	Value []byte
}

func NewBytes(v []byte) *Bytes {
	b := &Bytes{Value: v}
	b.Base.Init(b, TypeBytes)
	return b
}

func (b *Bytes) Truthy() bool          { return len(b.Value) != 0 }
func (b *Bytes) Len() (int, error)     { return len(b.Value), nil }
func (b *Bytes) Repr() string          { return fmt.Sprintf("b%q", string(b.Value)) }
func (b *Bytes) Str() string           { return string(b.Value) }
func (b *Bytes) Marshal() ([]byte, ValueType, error) { return b.Value, VTBytes, nil }
func (b *Bytes) FormatJSON(w JSONWriter) error { return writeJSONString(w, string(b.Value)) }
func (b *Bytes) Clone() Object          { return b.Ref() }

// Protobuf is an opaque, core-agnostic protobuf payload; the core only
// needs to carry it through marshal/clone, not interpret it.
type Protobuf struct {
	Base
	Value []byte
}

func NewProtobuf(v []byte) *Protobuf {
	p := &Protobuf{Value: v}
	p.Base.Init(p, TypeProtobuf)
	return p
}

func (p *Protobuf) Truthy() bool      { return len(p.Value) != 0 }
func (p *Protobuf) Len() (int, error) { return len(p.Value), nil }
func (p *Protobuf) Repr() string      { return "<protobuf>" }
func (p *Protobuf) Str() string       { return "<protobuf>" }
func (p *Protobuf) Marshal() ([]byte, ValueType, error) { return p.Value, VTProtobuf, nil }
func (p *Protobuf) Clone() Object     { return p.Ref() }

// Integer is a signed 64-bit integer atom.
type Integer struct {
	Base
	Value int64
}

func NewInteger(v int64) *Integer {
	i := &Integer{Value: v}
	i.Base.Init(i, TypeInteger)
	return i
}

func (i *Integer) Truthy() bool { return i.Value != 0 }
func (i *Integer) Repr() string { return strconv.FormatInt(i.Value, 10) }
func (i *Integer) Str() string  { return i.Repr() }
func (i *Integer) FormatJSON(w JSONWriter) error {
	_, err := w.WriteString(i.Repr())
	return err
}
func (i *Integer) Marshal() ([]byte, ValueType, error) {
	return []byte(i.Repr()), VTInteger, nil
}

func (i *Integer) Add(other Object) (Object, error) {
	switch o := other.(type) {
	case *Integer:
		return NewInteger(i.Value + o.Value), nil
	case *Double:
		return NewDouble(float64(i.Value) + o.Value), nil
	}
	return nil, errTypef("cannot add %s to integer", other.TypeName())
}

func (i *Integer) Clone() Object { return i.Ref() }
func (i *Integer) Dedup(storage *DedupStorage) Object {
	return storage.canonicalize(i, "i:"+i.Repr())
}

// Double is a 64-bit floating point atom.
type Double struct {
	Base
	Value float64
}

func NewDouble(v float64) *Double {
	d := &Double{Value: v}
	d.Base.Init(d, TypeDouble)
	return d
}

func (d *Double) Truthy() bool { return d.Value != 0 }
func (d *Double) Repr() string { return strconv.FormatFloat(d.Value, 'g', -1, 64) }
func (d *Double) Str() string  { return d.Repr() }
func (d *Double) FormatJSON(w JSONWriter) error {
	_, err := w.WriteString(d.Repr())
	return err
}
func (d *Double) Marshal() ([]byte, ValueType, error) {
	return []byte(d.Repr()), VTDouble, nil
}

func (d *Double) Add(other Object) (Object, error) {
	switch o := other.(type) {
	case *Double:
		return NewDouble(d.Value + o.Value), nil
	case *Integer:
		return NewDouble(d.Value + float64(o.Value)), nil
	}
	return nil, errTypef("cannot add %s to double", other.TypeName())
}

func (d *Double) Clone() Object { return d.Ref() }
func (d *Double) Dedup(storage *DedupStorage) Object {
	return storage.canonicalize(d, "d:"+d.Repr())
}

// Boolean is the true/false atom.
type Boolean struct {
	Base
	Value bool
}

var (
	True  = newBoolean(true)
	False = newBoolean(false)
)

func newBoolean(v bool) *Boolean {
	b := &Boolean{Value: v}
	b.Base.Init(b, TypeBoolean)
	return b
}

// NewBoolean returns the shared True/False singleton, ref'd.
func NewBoolean(v bool) *Boolean {
	if v {
		True.Ref()
		return True
	}
	False.Ref()
	return False
}

func (b *Boolean) Truthy() bool { return b.Value }
func (b *Boolean) Repr() string {
	if b.Value {
		return "true"
	}
	return "false"
}
func (b *Boolean) Str() string { return b.Repr() }
func (b *Boolean) FormatJSON(w JSONWriter) error {
	_, err := w.WriteString(b.Repr())
	return err
}
func (b *Boolean) Marshal() ([]byte, ValueType, error) {
	return []byte(b.Repr()), VTBoolean, nil
}
func (b *Boolean) Clone() Object { return b.Ref() }

// Null is the single null atom.
type Null struct{ Base }

var NullValue = newNull()

func newNull() *Null {
	n := &Null{}
	n.Base.Init(n, TypeNull)
	return n
}

// NewNull returns the shared Null singleton, ref'd.
func NewNull() *Null {
	NullValue.Ref()
	return NullValue
}

func (n *Null) Truthy() bool { return false }
func (n *Null) Repr() string { return "null" }
func (n *Null) Str() string  { return "null" }
func (n *Null) FormatJSON(w JSONWriter) error {
	_, err := w.WriteString("null")
	return err
}
func (n *Null) Marshal() ([]byte, ValueType, error) { return nil, VTNull, nil }
func (n *Null) Clone() Object                        { return n.Ref() }

// Datetime wraps date.Time (§3.2; grounded on the teacher's date package).
type Datetime struct {
	Base
	Value date.Time
}

func NewDatetime(t date.Time) *Datetime {
	d := &Datetime{Value: t}
	d.Base.Init(d, TypeDatetime)
	return d
}

func (d *Datetime) Truthy() bool { return true }
func (d *Datetime) Repr() string { return d.Value.String() }
func (d *Datetime) Str() string  { return d.Value.String() }
func (d *Datetime) FormatJSON(w JSONWriter) error { return writeJSONString(w, d.Value.String()) }
func (d *Datetime) Marshal() ([]byte, ValueType, error) {
	return []byte(d.Value.String()), VTDatetime, nil
}
func (d *Datetime) Clone() Object { return d.Ref() }

// MessageValue is a lazily-typed string taken straight from the log
// message's own value-type tagging (LM_VT_*), deferring full parsing until
// something actually needs the typed form.
type MessageValue struct {
	Base
	Raw       string
	ValueType ValueType
}

func NewMessageValue(raw string, vt ValueType) *MessageValue {
	m := &MessageValue{Raw: raw, ValueType: vt}
	m.Base.Init(m, TypeMessageValue)
	return m
}

func (m *MessageValue) Truthy() bool { return m.Raw != "" }
func (m *MessageValue) Repr() string { return strconv.Quote(m.Raw) }
func (m *MessageValue) Str() string  { return m.Raw }
func (m *MessageValue) FormatJSON(w JSONWriter) error { return writeJSONString(w, m.Raw) }
func (m *MessageValue) Marshal() ([]byte, ValueType, error) {
	return []byte(m.Raw), m.ValueType, nil
}
func (m *MessageValue) Clone() Object { return m.Ref() }
