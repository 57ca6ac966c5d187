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
	"encoding/json"
	"fmt"
	"strconv"
)

// builder is the concrete JSONWriter used internally by Repr/FormatJSON:
// an append-only byte slice, kept as a named type so its method set lines
// up with the JSONWriter interface without importing strings here.
type builder struct {
	buf []byte
}

func (b *builder) WriteString(s string) (int, error) {
	b.buf = append(b.buf, s...)
	return len(s), nil
}

func (b *builder) WriteByte(c byte) error {
	b.buf = append(b.buf, c)
	return nil
}

func (b *builder) String() string { return string(b.buf) }

// writeJSONString writes s as a JSON string literal, quotes included.
func writeJSONString(w JSONWriter, s string) error {
	enc, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("filterx/object: formatting string as json: %w", err)
	}
	_, err = w.WriteString(string(enc))
	return err
}

// quoteString produces a Go-syntax quoted string for use in Repr output,
// matching the teacher's convention of using strconv.Quote for debug
// representations rather than JSON escaping.
func quoteString(s string) string { return strconv.Quote(s) }

// FromJSON parses JSON-encoded data into a fresh Object tree: objects and
// arrays become dict_object/list_object wrapped in Ref, scalars become the
// matching atom (§4.1 object_from_json, used by cache_json_file and by any
// function accepting a raw JSON argument).
func FromJSON(data []byte) (Object, error) {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("filterx/object: parsing json: %w", err)
	}
	return fromJSONValue(v), nil
}

func fromJSONValue(v interface{}) Object {
	switch x := v.(type) {
	case nil:
		return NewNull()
	case bool:
		return NewBoolean(x)
	case float64:
		if x == float64(int64(x)) {
			return NewInteger(int64(x))
		}
		return NewDouble(x)
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return NewInteger(i)
		}
		f, _ := x.Float64()
		return NewDouble(f)
	case string:
		return NewString(x)
	case []interface{}:
		items := make([]Object, len(x))
		for i, e := range x {
			items[i] = fromJSONValue(e)
		}
		return NewRef(newListFrom(items))
	case map[string]interface{}:
		d := NewDictSized(len(x))
		for k, e := range x {
			d.Set(k, fromJSONValue(e))
		}
		return NewRef(d)
	default:
		return NewNull()
	}
}
