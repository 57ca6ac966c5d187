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

// Package evalctx holds the per-evaluation mutable state described in
// §4.10: the scope handle, the LIFO error stack, and optional failure-info
// collection.
package evalctx

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/flowdrop/filterx/object"
)

// Scope is an opaque handle onto the log record being evaluated; the core
// only needs to carry it through, never interpret it (§4.10, §2 "scope").
type Scope interface{}

// ErrorFrame is one annotated entry on the error stack.
type ErrorFrame struct {
	Summary  string
	ExprText string
	ExprLoc  string
	Detail   string
}

func (f ErrorFrame) String() string {
	if f.Detail == "" {
		return f.Summary
	}
	return fmt.Sprintf("%s: %s", f.Summary, f.Detail)
}

// FailureRecord is one captured entry of the failure-info log (§4.10,
// grounded on func-failure-info.c/.h).
type FailureRecord struct {
	ExprLoc  string
	ExprText string
	Message  string
	Meta     object.Object
}

// EvalContext is the per-evaluation state threaded through Eval calls. Not
// safe for concurrent use: each goroutine processing a record owns its own
// context and scope (§5).
type EvalContext struct {
	ID    uuid.UUID
	Scope Scope

	errors []ErrorFrame

	failureInfoEnabled bool
	collectFalsy       bool
	failures           []FailureRecord
	currentMeta        object.Object
}

// New creates a context over scope, with a fresh correlation id — mirrors
// the teacher's use of github.com/google/uuid for per-request identifiers.
func New(scope Scope) *EvalContext {
	return &EvalContext{ID: uuid.New(), Scope: scope}
}

// PushError records a bare summary with no expression context.
func (c *EvalContext) PushError(summary string) {
	c.errors = append(c.errors, ErrorFrame{Summary: summary})
}

// PushErrorStaticInfo records summary plus the failing expression's
// location/text and a static detail string (used when wrapping a child
// failure while propagating null upward, §7).
func (c *EvalContext) PushErrorStaticInfo(summary, exprLoc, exprText, detail string) {
	c.errors = append(c.errors, ErrorFrame{
		Summary:  summary,
		ExprLoc:  exprLoc,
		ExprText: exprText,
		Detail:   detail,
	})
}

// PushErrorInfo is PushErrorStaticInfo with a detail string built by the
// caller at the call site (as opposed to a compile-time constant).
func (c *EvalContext) PushErrorInfo(summary, exprLoc, exprText, detail string) {
	c.PushErrorStaticInfo(summary, exprLoc, exprText, detail)
}

// PushErrorInfoPrintf is PushErrorInfo with printf-style detail formatting.
func (c *EvalContext) PushErrorInfoPrintf(summary, exprLoc, exprText, format string, args ...interface{}) {
	c.PushErrorStaticInfo(summary, exprLoc, exprText, fmt.Sprintf(format, args...))
}

// Errors returns the error stack, outermost-last (i.e. push order).
func (c *EvalContext) Errors() []ErrorFrame { return c.errors }

// ClearErrors drops the accumulated error stack, e.g. between top-level
// evaluations reusing the same context.
func (c *EvalContext) ClearErrors() { c.errors = c.errors[:0] }

// FailureInfoEnable turns on failure-info collection; collectFalsy selects
// between "always" and "only when the evaluated result is falsy" modes.
func (c *EvalContext) FailureInfoEnable(collectFalsy bool) {
	c.failureInfoEnabled = true
	c.collectFalsy = collectFalsy
}

// FailureInfoEnabled reports whether collection is currently on.
func (c *EvalContext) FailureInfoEnabled() bool { return c.failureInfoEnabled }

// FailureInfoClear drops the accumulated failure-info log.
func (c *EvalContext) FailureInfoClear() {
	c.failures = nil
	c.failureInfoEnabled = false
	c.collectFalsy = false
	c.currentMeta = nil
}

// FailureInfoMeta attaches meta to the current frame; only valid while
// failure-info collection is enabled (§4.10).
func (c *EvalContext) FailureInfoMeta(meta object.Object) error {
	if !c.failureInfoEnabled {
		return fmt.Errorf("filterx/evalctx: failure_info_meta requires failure-info collection to be enabled")
	}
	c.currentMeta = meta
	return nil
}

// RecordFailure appends rec to the failure-info log if collection is
// enabled and truthy selects whether this particular result qualifies
// under the current always/collect_falsy mode.
func (c *EvalContext) RecordFailure(exprLoc, exprText, message string, truthy bool) {
	if !c.failureInfoEnabled {
		return
	}
	if c.collectFalsy && truthy {
		return
	}
	c.failures = append(c.failures, FailureRecord{
		ExprLoc:  exprLoc,
		ExprText: exprText,
		Message:  message,
		Meta:     c.currentMeta,
	})
}

// FailureInfo returns the accumulated failure-info log as a fresh
// list_object Ref, one dict per record (§4.10 failure_info()).
func (c *EvalContext) FailureInfo() object.Object {
	items := make([]object.Object, 0, len(c.failures))
	for _, rec := range c.failures {
		d := object.NewDictSized(4)
		d.Set("location", object.NewString(rec.ExprLoc))
		d.Set("source", object.NewString(rec.ExprText))
		d.Set("error", object.NewString(rec.Message))
		if rec.Meta != nil {
			d.Set("meta", rec.Meta.Clone())
		} else {
			d.Set("meta", object.NewNull())
		}
		items = append(items, object.NewRef(d))
	}
	return object.NewRef(newListFrom(items))
}

// newListFrom builds a list_object holding items, appending them one by
// one through the exported object.NewList/Append API.
func newListFrom(items []object.Object) *object.ListObject {
	l := object.NewList()
	for _, it := range items {
		_ = l.Append(it)
	}
	return l
}
