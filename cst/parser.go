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

package cst

import (
	"eure.dev/go/errors"
	"eure.dev/go/lexer"
	"eure.dev/go/token"
)

// ParseResult bundles the parsed tree with the error list produced
// while building it; tolerant parsing always returns both.
type ParseResult struct {
	Tree   *Tree
	Errors errors.List
}

// ParseTolerant parses src as EURE source in tolerant mode: parse
// errors are recorded but never abort the parse, and a best-effort
// tree is always returned.
func ParseTolerant(file *token.File, src []byte) ParseResult {
	p := &parser{file: file, src: src}
	p.scan.Init(file, src, &p.errs)
	p.tree = &Tree{File: file.Key(), Src: src}
	p.nextSig()
	root := p.parseDocument()
	p.tree.Root = root
	p.tree.Trailing = p.leading
	return ParseResult{Tree: p.tree, Errors: p.errs}
}

// ParseStrict runs the same tolerant algorithm but returns a non-nil
// error (the accumulated list) if any parse error was recorded:
// the same algorithm with errors promoted to a failure.
func ParseStrict(file *token.File, src []byte) (*Tree, error) {
	res := ParseTolerant(file, src)
	if len(res.Errors) > 0 {
		return res.Tree, res.Errors
	}
	return res.Tree, nil
}

// resync token set: EOL (newline — handled specially since it's
// trivia, see isAtResyncPoint), ',', '}', ']', ')', '@', EOF.
func isResyncToken(t lexer.Token) bool {
	switch t {
	case lexer.COMMA, lexer.RBRACE, lexer.RBRACK, lexer.RPAREN, lexer.AT, lexer.EOF:
		return true
	}
	return false
}

type parser struct {
	file *token.File
	src  []byte
	scan lexer.Scanner
	errs errors.List
	tree *Tree

	tok     lexer.Token
	lit     string
	pos     int
	leading []Trivia

	sawNewline bool // true if any NEWLINE trivia preceded the current token
	errCount   int
}

const maxErrors = 200

func (p *parser) errf(span token.Span, kind errors.Kind, format string, args ...any) {
	if p.errCount > maxErrors {
		return
	}
	p.errCount++
	p.errs.AddNewf(kind, token.Origin{File: p.file.Key(), Span: span}, format, args...)
}

// nextSig advances past all trivia to the next significant token,
// recording consumed trivia in p.leading (to be attached to whatever
// terminal node is built from the token it now points at).
func (p *parser) nextSig() {
	var trivia []Trivia
	sawNL := false
	for {
		pos, tok, lit := p.scan.Scan()
		switch tok {
		case lexer.WHITESPACE:
			trivia = append(trivia, Trivia{Kind: TriviaWhitespace, Span: token.Span{Start: pos, End: pos + len(lit)}, Text: lit})
			continue
		case lexer.NEWLINE:
			sawNL = true
			trivia = append(trivia, Trivia{Kind: TriviaNewline, Span: token.Span{Start: pos, End: pos + len(lit)}, Text: lit})
			continue
		case lexer.COMMENT:
			trivia = append(trivia, Trivia{Kind: TriviaComment, Span: token.Span{Start: pos, End: pos + len(lit)}, Text: lit})
			continue
		}
		p.pos, p.tok, p.lit = pos, tok, lit
		p.leading = trivia
		p.sawNewline = sawNL
		return
	}
}

// term allocates a terminal node for the current token (whose kind
// must be provided by the caller based on grammar context) and
// advances to the next significant token.
func (p *parser) term(kind Kind) NodeID {
	n := Node{
		Kind:    kind,
		Span:    token.Span{Start: p.pos, End: p.pos + len(p.lit)},
		Tok:     p.tok,
		Lit:     p.lit,
		Leading: p.leading,
	}
	id := p.tree.alloc(n)
	p.nextSig()
	return id
}

// errorTerm synthesises an Error terminal covering the current
// position without consuming input, standing in for an entirely
// missing production.
func (p *parser) errorTerm() NodeID {
	n := Node{
		Kind:    KindErrorTok,
		Span:    token.Span{Start: p.pos, End: p.pos},
		Leading: p.leading,
	}
	p.leading = nil
	return p.tree.alloc(n)
}

func (p *parser) nonTerminal(kind Kind, children []NodeID) NodeID {
	span := token.Span{}
	for _, c := range children {
		if cn := p.tree.Node(c); cn != nil {
			span = span.Cover(cn.Span)
		}
	}
	return p.tree.alloc(Node{Kind: kind, Span: span, Children: children})
}

func (p *parser) expect(tok lexer.Token, kind Kind, what string) NodeID {
	if p.tok == tok {
		return p.term(kind)
	}
	p.errorExpected(what)
	return p.errorTerm()
}

func (p *parser) errorExpected(what string) {
	if p.tok == lexer.EOF {
		p.errf(token.Span{Start: p.pos, End: p.pos}, errors.UnexpectedEOF, "expected %s, found end of file", what)
		return
	}
	p.errf(token.Span{Start: p.pos, End: p.pos + len(p.lit)}, errors.UnexpectedToken, "expected %s, found %q", what, p.lit)
}

// resync advances tokens until one of the resync set (EOL, ',', '}',
// ']', ')', '@', EOF) is reached, preserving every skipped token as
// an Error terminal so the tree still covers its bytes. The stopping
// token itself is never consumed: a closing delimiter belongs to the
// enclosing construct's loop, not to the failed production.
func (p *parser) resync() []NodeID {
	var skipped []NodeID
	for !p.sawNewline && !isResyncToken(p.tok) {
		skipped = append(skipped, p.term(KindErrorTok))
	}
	return skipped
}

func (p *parser) parseDocument() NodeID {
	var children []NodeID
	for p.tok != lexer.EOF {
		start := p.pos
		children = append(children, p.parseTopLevel())
		if p.pos == start && p.tok != lexer.EOF {
			// guarantee progress even on a completely unrecognised
			// token, keeping its bytes in the tree
			children = append(children, p.term(KindErrorTok))
		}
	}
	return p.nonTerminal(KindDocument, children)
}

func (p *parser) parseTopLevel() NodeID {
	switch p.tok {
	case lexer.AT:
		return p.parseSection()
	case lexer.IDENT, lexer.TRUE, lexer.FALSE, lexer.NULL, lexer.EXT_IDENT, lexer.META_EXT_IDENT:
		return p.parseValueBinding()
	default:
		p.errorExpected("a binding or section")
		children := []NodeID{p.errorTerm()}
		children = append(children, p.resync()...)
		if p.tok == lexer.COMMA {
			children = append(children, p.term(KindSymbol))
		}
		return p.nonTerminal(KindError, children)
	}
}

func startsPath(tok lexer.Token) bool {
	switch tok {
	case lexer.IDENT, lexer.TRUE, lexer.FALSE, lexer.NULL, lexer.EXT_IDENT, lexer.META_EXT_IDENT, lexer.LBRACK, lexer.LPAREN:
		return true
	}
	return false
}

func (p *parser) parseSection() NodeID {
	at := p.term(KindSymbol)
	children := []NodeID{at}
	if !p.sawNewline && startsPath(p.tok) {
		children = append(children, p.parsePath())
	} else {
		// empty "@" header: pops the cursor to the document root.
		children = append(children, p.nonTerminal(KindPath, nil))
	}
	if p.tok == lexer.LBRACE {
		children = append(children, p.term(KindSymbol))
		for p.tok != lexer.RBRACE && p.tok != lexer.EOF {
			start := p.pos
			children = append(children, p.parseTopLevel())
			if p.pos == start && p.tok != lexer.RBRACE && p.tok != lexer.EOF {
				children = append(children, p.term(KindErrorTok))
			}
		}
		children = append(children, p.expect(lexer.RBRACE, KindSymbol, "'}'"))
	}
	return p.nonTerminal(KindSection, children)
}

// parseValueBinding handles both ordinary bindings (path = value) and
// extension bindings, since $ident / $$ident are valid first path
// segments (see parsePathSegment) and need no separate production.
func (p *parser) parseValueBinding() NodeID {
	var children []NodeID
	children = append(children, p.parsePath())
	children = append(children, p.expectAssignLike())
	children = append(children, p.parseValue())
	return p.nonTerminal(KindBinding, children)
}

// expectAssignLike accepts either '=' or ':'; the two binding forms
// are equivalent.
func (p *parser) expectAssignLike() NodeID {
	if p.tok == lexer.ASSIGN || p.tok == lexer.COLON {
		return p.term(KindSymbol)
	}
	p.errorExpected("'=' or ':'")
	return p.errorTerm()
}

func (p *parser) parsePath() NodeID {
	var children []NodeID
	children = append(children, p.parsePathSegment())
	for {
		switch p.tok {
		case lexer.DOT:
			children = append(children, p.term(KindSymbol))
			children = append(children, p.parsePathSegment())
		case lexer.LBRACK, lexer.LPAREN:
			// "[n]", "[]" and "(n)" follow a segment without a '.'
			children = append(children, p.parsePathSegment())
		default:
			return p.nonTerminal(KindPath, children)
		}
	}
}

func (p *parser) parsePathSegment() NodeID {
	switch p.tok {
	case lexer.IDENT, lexer.TRUE, lexer.FALSE, lexer.NULL:
		inner := p.term(KindIdent)
		return p.nonTerminal(KindPathSegment, []NodeID{inner})
	case lexer.EXT_IDENT:
		inner := p.term(KindExtIdent)
		return p.nonTerminal(KindPathSegment, []NodeID{inner})
	case lexer.META_EXT_IDENT:
		inner := p.term(KindMetaExtIdent)
		return p.nonTerminal(KindPathSegment, []NodeID{inner})
	case lexer.LBRACK:
		inner := p.parseArrayIndex()
		return p.nonTerminal(KindPathSegment, []NodeID{inner})
	case lexer.LPAREN:
		inner := p.parseTupleIndex()
		return p.nonTerminal(KindPathSegment, []NodeID{inner})
	default:
		p.errorExpected("a path segment")
		e := p.errorTerm()
		return p.nonTerminal(KindPathSegment, []NodeID{e})
	}
}

func (p *parser) parseArrayIndex() NodeID {
	var children []NodeID
	children = append(children, p.term(KindSymbol)) // '['
	if p.tok == lexer.INT {
		children = append(children, p.term(KindInt))
	}
	children = append(children, p.expect(lexer.RBRACK, KindSymbol, "']'"))
	return p.nonTerminal(KindArrayIndex, children)
}

func (p *parser) parseTupleIndex() NodeID {
	var children []NodeID
	children = append(children, p.term(KindSymbol)) // '('
	children = append(children, p.expect(lexer.INT, KindInt, "a tuple index"))
	children = append(children, p.expect(lexer.RPAREN, KindSymbol, "')'"))
	return p.nonTerminal(KindTupleIndex, children)
}

func (p *parser) parseValue() NodeID {
	switch p.tok {
	case lexer.TRUE:
		return p.term(KindTrue)
	case lexer.FALSE:
		return p.term(KindFalse)
	case lexer.NULL:
		return p.term(KindNull)
	case lexer.INT:
		return p.term(KindInt)
	case lexer.FLOAT:
		return p.term(KindFloat)
	case lexer.STRING:
		return p.term(KindString)
	case lexer.IMPLICIT_TEXT:
		return p.term(KindImplicitText)
	case lexer.LANG_TEXT:
		return p.term(KindLangText)
	case lexer.CODE_BLOCK:
		return p.term(KindCodeBlock)
	case lexer.BANG:
		return p.parseHole()
	case lexer.EXT_IDENT:
		return p.term(KindExtIdent)
	case lexer.META_EXT_IDENT:
		return p.term(KindMetaExtIdent)
	case lexer.LBRACE:
		return p.parseInlineMap()
	case lexer.LBRACK:
		return p.parseInlineArray()
	case lexer.LPAREN:
		return p.parseInlineTuple()
	default:
		p.errorExpected("a value")
		children := []NodeID{p.errorTerm()}
		children = append(children, p.resync()...)
		if len(children) == 1 {
			return children[0]
		}
		return p.nonTerminal(KindError, children)
	}
}

func (p *parser) parseHole() NodeID {
	children := []NodeID{p.term(KindSymbol)} // '!'
	if p.tok == lexer.IDENT && !p.sawNewline {
		children = append(children, p.term(KindIdent))
	}
	return p.nonTerminal(KindHole, children)
}

func (p *parser) parseInlineMap() NodeID {
	children := []NodeID{p.term(KindSymbol)} // '{'
	for p.tok != lexer.RBRACE && p.tok != lexer.EOF {
		start := p.pos
		switch p.tok {
		case lexer.IDENT, lexer.TRUE, lexer.FALSE, lexer.NULL, lexer.EXT_IDENT, lexer.META_EXT_IDENT:
			children = append(children, p.parseValueBinding())
		default:
			p.errorExpected("a binding")
			children = append(children, p.errorTerm())
			children = append(children, p.resync()...)
		}
		if p.tok == lexer.COMMA {
			children = append(children, p.term(KindSymbol))
		} else if p.tok != lexer.RBRACE {
			if p.pos == start {
				children = append(children, p.term(KindErrorTok))
			}
			break
		}
	}
	children = append(children, p.expect(lexer.RBRACE, KindSymbol, "'}'"))
	return p.nonTerminal(KindInlineMap, children)
}

func (p *parser) parseInlineArray() NodeID {
	children := []NodeID{p.term(KindSymbol)} // '['
	for p.tok != lexer.RBRACK && p.tok != lexer.EOF {
		start := p.pos
		children = append(children, p.parseValue())
		if p.tok == lexer.COMMA {
			children = append(children, p.term(KindSymbol))
		} else if p.tok != lexer.RBRACK {
			if p.pos == start {
				children = append(children, p.term(KindErrorTok))
			}
			break
		}
	}
	children = append(children, p.expect(lexer.RBRACK, KindSymbol, "']'"))
	return p.nonTerminal(KindInlineArray, children)
}

func (p *parser) parseInlineTuple() NodeID {
	children := []NodeID{p.term(KindSymbol)} // '('
	for p.tok != lexer.RPAREN && p.tok != lexer.EOF {
		start := p.pos
		children = append(children, p.parseValue())
		if p.tok == lexer.COMMA {
			children = append(children, p.term(KindSymbol))
		} else if p.tok != lexer.RPAREN {
			if p.pos == start {
				children = append(children, p.term(KindErrorTok))
			}
			break
		}
	}
	children = append(children, p.expect(lexer.RPAREN, KindSymbol, "')'"))
	return p.nonTerminal(KindInlineTuple, children)
}
