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
	"github.com/flowdrop/filterx/evalctx"
	"github.com/flowdrop/filterx/object"
)

// failureInfo implements `failure_info()` (§4.10): returns the
// accumulated failure-info log as a fresh list of dicts.
type failureInfo struct{ base }

// NewFailureInfo builds the failure_info() call node.
func NewFailureInfo() Node {
	n := &failureInfo{}
	n.bind(n)
	return n
}

func (n *failureInfo) Eval(ctx *evalctx.EvalContext) (Result, error) {
	return ctx.FailureInfo(), nil
}

func (n *failureInfo) walk(w Visitor) {}

// failureInfoClear implements `failure_info_clear()`.
type failureInfoClear struct{ base }

// NewFailureInfoClear builds the failure_info_clear() call node.
func NewFailureInfoClear() Node {
	n := &failureInfoClear{}
	n.bind(n)
	return n
}

func (n *failureInfoClear) Eval(ctx *evalctx.EvalContext) (Result, error) {
	ctx.FailureInfoClear()
	return object.NewBoolean(true), nil
}

func (n *failureInfoClear) walk(w Visitor) {}

// failureInfoEnable implements `failure_info_enable(collect_falsy=...)`.
type failureInfoEnable struct {
	base
	collectFalsy bool
}

// NewFailureInfoEnable builds the failure_info_enable() call node.
func NewFailureInfoEnable(collectFalsy bool) Node {
	n := &failureInfoEnable{collectFalsy: collectFalsy}
	n.bind(n)
	return n
}

func (n *failureInfoEnable) Eval(ctx *evalctx.EvalContext) (Result, error) {
	ctx.FailureInfoEnable(n.collectFalsy)
	return object.NewBoolean(true), nil
}

func (n *failureInfoEnable) walk(w Visitor) {}

// failureInfoMeta implements `failure_info_meta({...})`: the metadata
// value is fixed at construction time, matching the original's
// eval-at-ctor-time shortcut (there is no per-record context to
// re-evaluate a literal against).
type failureInfoMeta struct {
	base
	metadata object.Object
}

// NewFailureInfoMeta builds the failure_info_meta() call node. metadata
// is consumed (owned by the returned node).
func NewFailureInfoMeta(metadata object.Object) Node {
	n := &failureInfoMeta{metadata: metadata}
	n.bind(n)
	return n
}

func (n *failureInfoMeta) Eval(ctx *evalctx.EvalContext) (Result, error) {
	if ctx.FailureInfoEnabled() {
		if err := ctx.FailureInfoMeta(n.metadata); err != nil {
			return nil, err
		}
	}
	return object.NewBoolean(true), nil
}

func (n *failureInfoMeta) Deinit() {
	n.metadata.Unref()
}

func (n *failureInfoMeta) walk(w Visitor) {}
