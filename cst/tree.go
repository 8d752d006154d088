// Copyright 2026 The EURE Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cst implements the tolerant concrete syntax tree for EURE
// source and the LL(1) recursive-descent parser that
// builds it. The tree retains every byte of the input,
// including trivia, so that ∀ source s: the concatenation of all
// terminal (and trivia) spans of parse_tolerant(s) equals s
// byte-for-byte.
package cst

import (
	"eure.dev/go/lexer"
	"eure.dev/go/token"
)

// NodeID is an index into a Tree's arena. The zero value is not a
// valid node; Tree.Root is always > 0 for a non-empty tree.
type NodeID int

// Kind classifies a Node. Terminal kinds carry a scanned token;
// non-terminal kinds carry Children in declaration order.
type Kind int

const (
	KindInvalid Kind = iota

	// terminal kinds
	KindIdent
	KindExtIdent
	KindMetaExtIdent
	KindTrue
	KindFalse
	KindNull
	KindInt
	KindFloat
	KindString
	KindImplicitText
	KindLangText
	KindCodeBlock
	KindSymbol // structural single tokens: = : . , { } [ ] ( ) @ !
	KindErrorTok

	// non-terminal kinds
	KindDocument
	KindBinding
	KindSection
	KindPath
	KindPathSegment
	KindArrayIndex
	KindTupleIndex
	KindInlineMap
	KindInlineArray
	KindInlineTuple
	KindHole
	KindError
)

func (k Kind) IsTerminal() bool {
	return k != KindInvalid && k < KindDocument
}

// TriviaKind classifies a piece of leading trivia.
type TriviaKind int

const (
	TriviaWhitespace TriviaKind = iota
	TriviaNewline
	TriviaComment
)

// Trivia is a span of non-semantic source text (whitespace, newlines,
// comments) attached to the terminal that follows it.
type Trivia struct {
	Kind TriviaKind
	Span token.Span
	Text string
}

// Node is one CST tree element. Terminal nodes carry Tok/Lit/Leading;
// non-terminal nodes carry Children. Both kinds carry a Span covering
// their own contribution (terminals: the token; non-terminals: the
// union of their children's spans, set once all children are known).
type Node struct {
	ID       NodeID
	Kind     Kind
	Span     token.Span
	Tok      lexer.Token
	Lit      string
	Leading  []Trivia
	Children []NodeID
}

// Tree is the arena-allocated CST for one source file.
type Tree struct {
	File     token.FileKey
	Src      []byte
	Nodes    []Node
	Root     NodeID
	Trailing []Trivia // trivia after the last terminal, to EOF
}

func (t *Tree) Node(id NodeID) *Node {
	if id <= 0 || int(id) > len(t.Nodes) {
		return nil
	}
	return &t.Nodes[id-1]
}

func (t *Tree) alloc(n Node) NodeID {
	t.Nodes = append(t.Nodes, n)
	id := NodeID(len(t.Nodes))
	t.Nodes[len(t.Nodes)-1].ID = id
	return id
}

// Children returns the child node pointers of id in declaration
// order, or nil for a terminal or unknown node.
func (t *Tree) Children(id NodeID) []NodeID {
	n := t.Node(id)
	if n == nil {
		return nil
	}
	return n.Children
}

// Text returns the exact source bytes covered by a node's span.
func (t *Tree) Text(id NodeID) string {
	n := t.Node(id)
	if n == nil {
		return ""
	}
	return string(t.Src[n.Span.Start:n.Span.End])
}

// Walk visits every node of the tree in pre-order, including Error
// nodes, calling visit(id) for each. Traversal does not abort if
// visit returns false for a child; it simply skips descending into
// that child's children.
func (t *Tree) Walk(visit func(id NodeID) bool) {
	if t.Root == 0 {
		return
	}
	var rec func(id NodeID)
	rec = func(id NodeID) {
		if !visit(id) {
			return
		}
		for _, c := range t.Children(id) {
			rec(c)
		}
	}
	rec(t.Root)
}
