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

// Package expr implements the FilterX expression node tree: the node
// lifecycle protocol (optimize/init/eval/deinit/free) and the built-in
// node set (literals, literal containers, generators, binary +, regexp
// match).
package expr

import "github.com/flowdrop/filterx/evalctx"

// Node is the common interface of every expression tree node. The
// lifecycle mirrors the teacher's optimize-then-evaluate convention:
// Optimize runs once per tree (constant folding, literal hoisting), Init
// binds the node to a running evaluation (config-time setup such as
// compiling a literal's contents into a canonical Object), Eval runs once
// per input record, and Deinit/the node going out of scope releases
// anything Init acquired.
type Node interface {
	// Optimize returns a (possibly) simplified replacement for the node,
	// called once before any Init. Most nodes just return themselves.
	Optimize() Node

	// Init binds the node to cfg for repeated Eval calls. Init is called
	// once per node per "compiled program", not once per input record.
	Init(cfg *Config) error

	// Eval evaluates the node against ctx, returning a strong reference
	// the caller owns (and must Unref when done), or an error.
	Eval(ctx *evalctx.EvalContext) (Result, error)

	// Deinit releases resources Init acquired. Called once, mirroring
	// Init, when the owning program is torn down.
	Deinit()

	walk(w Visitor)
}

// Config is the static, read-only configuration a tree of nodes is bound
// to via Init: currently just the registries a FunctionCall node needs to
// resolve its callee. Kept deliberately small and host-supplied: FilterX is
// an embedded evaluation core, not a standalone process (§0), so it has no
// config file of its own to parse.
type Config struct {
	Functions FunctionLookup
}

// FunctionLookup resolves a function name to its constructor, implemented
// by the function package's registry (kept here as an interface to avoid
// an import cycle between expr and function).
type FunctionLookup interface {
	Lookup(name string) (FunctionCtor, bool)
}

// CallArgs is a parsed call's positional and named argument expressions,
// still unevaluated (§6.3). Declared here (rather than in the function
// package) so FunctionCtor can reference it without an import cycle;
// function.FunctionArgs wraps a CallArgs with the §6.3 accessor methods.
type CallArgs struct {
	Positional []Node
	Named      map[string]Node
}

// FunctionCtor builds a call node for name given already-parsed
// arguments; see function/registry.go.
type FunctionCtor func(args CallArgs) (Node, error)

// Result is what Eval returns: either a literal truth value used for
// filter short-circuiting, or a carried Object for the enrichment/rewrite
// path. Declared in result.go.

// Visitor is an interface that must be satisfied by the argument to Walk.
//
// A Visitor's Visit method is invoked for each node encountered by Walk. If
// the result visitor w is not nil, Walk visits each of the children of node
// with the visitor w, followed by a call of w.Visit(nil).
//
// (see also: ast.Visitor)
type Visitor interface {
	Visit(Node) Visitor
}

// Rewriter accepts a Node and returns a new node (or just its argument).
type Rewriter interface {
	// Rewrite is applied to nodes in depth-first order, and each node is
	// re-written to use the returned value.
	Rewrite(Node) Node

	// Walk is called during node traversal and the returned Rewriter is
	// used for all the children of Node. If the returned rewriter is nil,
	// then traversal does not proceed past Node.
	Walk(Node) Rewriter
}

type nonleaf interface {
	rewrite(r Rewriter) Node
}

// Rewrite recursively applies a Rewriter in depth-first order.
func Rewrite(r Rewriter, n Node) Node {
	if n == nil {
		return nil
	}
	nl, ok := n.(nonleaf)
	if ok {
		rc := r.Walk(n)
		if rc != nil {
			n = nl.rewrite(rc)
		}
	}
	n = r.Rewrite(n)
	return n
}

// Walk traverses a node tree in depth-first order: it starts by calling
// v.Visit(node); node must not be nil. If the visitor w returned by
// v.Visit(node) is not nil, Walk is invoked recursively with visitor w for
// each of the non-nil children of node, followed by a call of w.Visit(nil).
//
// (see also: ast.Walk)
func Walk(v Visitor, n Node) {
	w := v.Visit(n)
	if w != nil {
		n.walk(w)
		w.Visit(nil)
	}
}

// base is embedded by every concrete node; it supplies the no-op defaults
// most leaf nodes need (Optimize returning the node unchanged, Init/Deinit
// doing nothing, walk visiting no children).
type base struct {
	self Node
}

func (b *base) bind(self Node) { b.self = self }
func (b *base) Optimize() Node { return b.self }
func (b *base) Init(cfg *Config) error { return nil }
func (b *base) Deinit() {}
func (b *base) walk(w Visitor) {}
