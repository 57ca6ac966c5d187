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

import "strings"

// UnsetEmptiesOpts controls UnsetEmpties (§4 supplemented features,
// grounded on func-unset-empties.c). The zero value does not recurse; it
// treats "", null, [] and {} as empty, unsets (doesn't replace) matches,
// and compares strings case-sensitively. The unset_empties() function
// (function/builtins.go) sets Recursive to true unless told otherwise.
type UnsetEmptiesOpts struct {
	Recursive   bool
	Targets     []Object
	Replacement Object
	IgnoreCase  bool
}

// UnsetEmpties walks root (a dict or list), unsetting (or, if Replacement
// is set, overwriting) every entry whose value matches one of Targets —
// or, with no Targets given, the built-in empty set ("", null, empty
// list, empty dict). Recursion descends into nested dicts/lists first, so
// a container that becomes empty only after its own children were
// cleared is itself eligible. Mutation goes through the ordinary
// SetSubscript/UnsetKey CoW path, so a forked root is handed back when
// root was shared.
func UnsetEmpties(root Object, opts UnsetEmptiesOpts) (Object, error) {
	switch {
	case IsDict(root):
		return unsetEmptiesDict(root, opts)
	case IsList(root):
		return unsetEmptiesList(root, opts)
	default:
		return nil, errTypef("unset_empties() requires a dict or list, got %s", root.TypeName())
	}
}

func unsetEmptiesDict(root Object, opts UnsetEmptiesOpts) (Object, error) {
	var keys []string
	if err := DictForEach(root, func(k string, _ Object) bool {
		keys = append(keys, k)
		return true
	}); err != nil {
		return nil, err
	}

	for _, k := range keys {
		val, err := root.GetSubscript(NewString(k))
		if err != nil {
			return nil, err
		}
		if opts.Recursive && (IsDict(val) || IsList(val)) {
			newVal, err := UnsetEmpties(val, opts)
			if err != nil {
				val.Unref()
				return nil, err
			}
			val = newVal
		}
		if isEmptyTarget(val, opts) {
			if opts.Replacement != nil {
				err = root.SetSubscript(NewString(k), opts.Replacement.Clone())
			} else {
				_, err = root.UnsetKey(NewString(k))
			}
			val.Unref()
			if err != nil {
				return nil, err
			}
			continue
		}
		if opts.Recursive {
			if err := root.SetSubscript(NewString(k), val); err != nil {
				return nil, err
			}
			continue
		}
		val.Unref()
	}
	return root, nil
}

func unsetEmptiesList(root Object, opts UnsetEmptiesOpts) (Object, error) {
	n, err := root.Len()
	if err != nil {
		return nil, err
	}

	kept := make([]Object, 0, n)
	for i := 0; i < n; i++ {
		val, err := root.GetSubscript(NewInteger(int64(i)))
		if err != nil {
			for _, v := range kept {
				v.Unref()
			}
			return nil, err
		}
		if opts.Recursive && (IsDict(val) || IsList(val)) {
			newVal, err := UnsetEmpties(val, opts)
			if err != nil {
				val.Unref()
				for _, v := range kept {
					v.Unref()
				}
				return nil, err
			}
			val = newVal
		}
		if isEmptyTarget(val, opts) {
			if opts.Replacement != nil {
				kept = append(kept, opts.Replacement.Clone())
			}
			val.Unref()
			continue
		}
		kept = append(kept, val)
	}

	for i := n - 1; i >= 0; i-- {
		if _, err := root.UnsetKey(NewInteger(int64(i))); err != nil {
			for _, v := range kept {
				v.Unref()
			}
			return nil, err
		}
	}
	for i, v := range kept {
		if err := root.SetSubscript(NewInteger(int64(i)), v); err != nil {
			for _, rest := range kept[i+1:] {
				rest.Unref()
			}
			return nil, err
		}
	}
	return root, nil
}

func isEmptyTarget(o Object, opts UnsetEmptiesOpts) bool {
	if len(opts.Targets) == 0 {
		return isDefaultEmpty(o)
	}
	for _, t := range opts.Targets {
		if targetMatches(o, t, opts.IgnoreCase) {
			return true
		}
	}
	return false
}

func isDefaultEmpty(o Object) bool {
	if s, ok := AsString(o); ok {
		return s == ""
	}
	if o.TypeName() == "null" {
		return true
	}
	if IsList(o) || IsDict(o) {
		n, _ := o.Len()
		return n == 0
	}
	return false
}

func targetMatches(o, t Object, ignoreCase bool) bool {
	if t.TypeName() == "null" {
		return o.TypeName() == "null"
	}
	if ts, ok := AsString(t); ok {
		os, ok2 := AsString(o)
		if !ok2 {
			return false
		}
		if ignoreCase {
			return strings.EqualFold(os, ts)
		}
		return os == ts
	}
	return o.Repr() == t.Repr()
}
