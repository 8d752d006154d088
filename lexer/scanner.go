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

// Package lexer implements the EURE scanner: it turns source bytes
// into a stream of Tokens, preserving comments and newlines as
// trivia so a CST built on top never loses a byte.
package lexer

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"eure.dev/go/errors"
	"eure.dev/go/token"
)

// Scanner holds the scanning state for a single source buffer. It is
// grounded on cue/scanner.Scanner's rune-cursor design: next() reads
// one rune ahead into ch, offset tracks the start of ch, rdOffset the
// read cursor after it.
type Scanner struct {
	file *token.File
	src  []byte

	ch       rune
	offset   int
	rdOffset int

	errs *errors.List
}

const bom = 0xFEFF

// Init prepares s to scan src, whose byte length must equal
// file.Size().
func (s *Scanner) Init(file *token.File, src []byte, errs *errors.List) {
	if file.Size() != len(src) {
		panic(fmt.Sprintf("file size (%d) does not match src len (%d)", file.Size(), len(src)))
	}
	s.file = file
	s.src = src
	s.errs = errs
	s.ch = ' '
	s.offset = 0
	s.rdOffset = 0
	s.next()
	if s.ch == bom {
		s.next() // ignore BOM at file start
	}
}

func (s *Scanner) next() {
	if s.rdOffset < len(s.src) {
		s.offset = s.rdOffset
		if s.ch == '\n' {
			s.file.AddLine(s.offset)
		}
		r, w := rune(s.src[s.rdOffset]), 1
		switch {
		case r == 0:
			s.error(s.offset, "illegal character NUL")
		case r >= utf8.RuneSelf:
			r, w = utf8.DecodeRune(s.src[s.rdOffset:])
			if r == utf8.RuneError && w == 1 {
				s.error(s.offset, "illegal UTF-8 encoding")
			}
		}
		s.rdOffset += w
		s.ch = r
	} else {
		s.offset = len(s.src)
		if s.ch == '\n' {
			s.file.AddLine(s.offset)
		}
		s.ch = -1
	}
}

// peek returns the byte after the reading position without consuming
// it, or 0 at end of file.
func (s *Scanner) peek() byte {
	if s.rdOffset < len(s.src) {
		return s.src[s.rdOffset]
	}
	return 0
}

func (s *Scanner) error(offset int, msg string, args ...any) {
	s.errs.AddNewf(errors.UnexpectedToken, token.Origin{File: s.file.Key(), Span: token.Span{Start: offset, End: offset + 1}}, msg, args...)
}

func isLetter(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

func isDigit(ch rune) bool {
	return unicode.IsDigit(ch) || ('0' <= ch && ch <= '9')
}

// isIdentCont reports whether ch may continue an identifier: any XID
// continuation character, or '-' (legal after the first character).
func isIdentCont(ch rune) bool {
	return isLetter(ch) || isDigit(ch) || ch == '-'
}

func digitVal(ch rune) int {
	switch {
	case '0' <= ch && ch <= '9':
		return int(ch - '0')
	case 'a' <= ch && ch <= 'f':
		return int(ch-'a') + 10
	case 'A' <= ch && ch <= 'F':
		return int(ch-'A') + 10
	}
	return 16 // larger than any legal digit val
}

func (s *Scanner) skipWhitespace() {
	for s.ch == ' ' || s.ch == '\t' || s.ch == '\r' {
		s.next()
	}
}

// Pos returns the current scanning offset.
func (s *Scanner) Pos() int { return s.offset }

func (s *Scanner) scanIdentifier() string {
	offs := s.offset
	for isIdentCont(s.ch) {
		s.next()
	}
	return string(s.src[offs:s.offset])
}

func (s *Scanner) scanMantissa(base int) {
	for digitVal(s.ch) < base || s.ch == '_' {
		s.next()
	}
}

func (s *Scanner) scanNumber() (Token, string) {
	offs := s.offset
	tok := INT

	if s.ch == '0' && (s.peek() == 'x' || s.peek() == 'X') {
		s.next()
		s.next()
		s.scanMantissa(16)
		return tok, string(s.src[offs:s.offset])
	}

	s.scanMantissa(10)
	if s.ch == '.' && isDigit(rune(s.peek())) {
		tok = FLOAT
		s.next()
		s.scanMantissa(10)
	}
	if s.ch == 'e' || s.ch == 'E' {
		tok = FLOAT
		s.next()
		if s.ch == '+' || s.ch == '-' {
			s.next()
		}
		s.scanMantissa(10)
	}
	if s.ch == 'f' {
		// f32 / f64 suffix
		save := s.offset
		s.next()
		if (s.ch == '3' && s.peek() == '2') || (s.ch == '6' && s.peek() == '4') {
			tok = FLOAT
			s.next()
			s.next()
		} else {
			// not a suffix; the 'f' stays part of the literal, and the
			// document builder rejects the literal as an invalid
			// number.
			_ = save
		}
	}
	return tok, string(s.src[offs:s.offset])
}

func (s *Scanner) scanEscape(quote rune) bool {
	offs := s.offset
	var n int
	var base, max uint32
	switch s.ch {
	case 'a', 'b', 'f', 'n', 'r', 't', 'v', '\\', quote, '/':
		s.next()
		return true
	case 'x':
		s.next()
		n, base, max = 2, 16, 255
	case 'u':
		s.next()
		n, base, max = 4, 16, unicode.MaxRune
	case 'U':
		s.next()
		n, base, max = 8, 16, unicode.MaxRune
	default:
		msg := "unknown escape sequence"
		if s.ch < 0 {
			msg = "escape sequence not terminated"
		}
		s.errs.AddNewf(errors.InvalidEscape, token.Origin{File: s.file.Key(), Span: token.Span{Start: offs, End: s.offset + 1}}, msg)
		return false
	}
	var x uint32
	for i := 0; i < n; i++ {
		d := uint32(digitVal(s.ch))
		if d >= base {
			s.errs.AddNewf(errors.InvalidEscape, token.Origin{File: s.file.Key(), Span: token.Span{Start: offs, End: s.offset}}, "illegal character in escape sequence")
			return false
		}
		x = x*base + d
		s.next()
	}
	if x > max {
		s.errs.AddNewf(errors.InvalidEscape, token.Origin{File: s.file.Key(), Span: token.Span{Start: offs, End: s.offset}}, "escape sequence is invalid code point")
		return false
	}
	return true
}

func (s *Scanner) scanString(quote rune) string {
	offs := s.offset - 1
	for {
		ch := s.ch
		if ch == '\n' || ch < 0 {
			s.errs.AddNewf(errors.UnterminatedString, token.Origin{File: s.file.Key(), Span: token.Span{Start: offs, End: s.offset}}, "string literal not terminated")
			break
		}
		s.next()
		if ch == quote {
			break
		}
		if ch == '\\' {
			s.scanEscape(quote)
		}
	}
	return string(s.src[offs:s.offset])
}

// scanBacktick scans `...`, lang`...`, or a ``` fenced code block,
// starting just after an opening backtick that has already been
// consumed. The returned literal starts at that backtick; for
// lang`...` the caller prepends the language tag it scanned.
func (s *Scanner) scanBacktick() string {
	offs := s.offset - 1
	if s.ch == '`' && s.peek() == '`' {
		// ``` fenced code block: consume two more backticks, the
		// language tag (to EOL), then the body until a closing ```.
		s.next()
		s.next()
		for s.ch != '\n' && s.ch >= 0 {
			s.next()
		}
		for {
			if s.ch < 0 {
				s.errs.AddNewf(errors.UnterminatedString, token.Origin{File: s.file.Key(), Span: token.Span{Start: offs, End: s.offset}}, "code block not terminated")
				break
			}
			if s.ch == '`' {
				closeStart := s.offset
				count := 0
				for s.ch == '`' && count < 3 {
					s.next()
					count++
				}
				if count == 3 {
					break
				}
				_ = closeStart
				continue
			}
			s.next()
		}
		return string(s.src[offs:s.offset])
	}
	for {
		ch := s.ch
		if ch == '\n' || ch < 0 {
			s.errs.AddNewf(errors.UnterminatedString, token.Origin{File: s.file.Key(), Span: token.Span{Start: offs, End: s.offset}}, "text literal not terminated")
			break
		}
		s.next()
		if ch == '`' {
			break
		}
	}
	return string(s.src[offs:s.offset])
}

func (s *Scanner) scanComment() string {
	offs := s.offset - 1
	if s.src[offs] == '#' {
		for s.ch != '\n' && s.ch >= 0 {
			s.next()
		}
		return string(s.src[offs:s.offset])
	}
	// block comment '/*', possibly nested
	depth := 1
	s.next() // consume '*'
	for depth > 0 {
		if s.ch < 0 {
			s.errs.AddNewf(errors.UnexpectedEOF, token.Origin{File: s.file.Key(), Span: token.Span{Start: offs, End: s.offset}}, "comment not terminated")
			break
		}
		if s.ch == '/' && s.peek() == '*' {
			depth++
			s.next()
			s.next()
			continue
		}
		if s.ch == '*' && s.peek() == '/' {
			depth--
			s.next()
			s.next()
			continue
		}
		s.next()
	}
	return string(s.src[offs:s.offset])
}

// Scan returns the next token: its start offset, its kind, and its
// literal text (for literal-bearing tokens; structural tokens return
// their canonical spelling).
func (s *Scanner) Scan() (pos int, tok Token, lit string) {
	pos = s.offset

	ch := s.ch
	switch {
	case ch < 0:
		return pos, EOF, ""
	case ch == ' ' || ch == '\t' || ch == '\r':
		s.skipWhitespace()
		return pos, WHITESPACE, string(s.src[pos:s.offset])
	case ch == '\n':
		s.next()
		return pos, NEWLINE, "\n"
	case isLetter(ch):
		lit = s.scanIdentifier()
		if kw, ok := LookupKeyword(lit); ok {
			return pos, kw, lit
		}
		if s.ch == '`' {
			// lang`...` tagged text: lit is the language tag; body
			// already carries both delimiting backticks.
			s.next()
			body := s.scanBacktick()
			return pos, LANG_TEXT, lit + body
		}
		return pos, IDENT, lit
	case isDigit(ch):
		tok, lit = s.scanNumber()
		return pos, tok, lit
	}

	s.next() // always make progress
	switch ch {
	case '#':
		lit = s.scanComment()
		return pos, COMMENT, lit
	case '/':
		if s.ch == '*' {
			lit = s.scanComment()
			return pos, COMMENT, lit
		}
		return pos, ILLEGAL, "/"
	case '"':
		lit = s.scanString('"')
		return pos, STRING, lit
	case '`':
		lit = s.scanBacktick()
		if len(lit) >= 6 && lit[:3] == "```" {
			return pos, CODE_BLOCK, lit
		}
		return pos, IMPLICIT_TEXT, lit
	case '$':
		if s.ch == '$' {
			s.next()
			if isLetter(s.ch) {
				return pos, META_EXT_IDENT, "$$" + s.scanIdentifier()
			}
			return pos, ILLEGAL, "$$"
		}
		if isLetter(s.ch) {
			return pos, EXT_IDENT, "$" + s.scanIdentifier()
		}
		return pos, ILLEGAL, "$"
	case '=':
		return pos, ASSIGN, "="
	case ':':
		return pos, COLON, ":"
	case '.':
		return pos, DOT, "."
	case ',':
		return pos, COMMA, ","
	case '{':
		return pos, LBRACE, "{"
	case '}':
		return pos, RBRACE, "}"
	case '[':
		return pos, LBRACK, "["
	case ']':
		return pos, RBRACK, "]"
	case '(':
		return pos, LPAREN, "("
	case ')':
		return pos, RPAREN, ")"
	case '@':
		return pos, AT, "@"
	case '!':
		return pos, BANG, "!"
	default:
		s.errs.AddNewf(errors.UnexpectedToken, token.Origin{File: s.file.Key(), Span: token.Span{Start: pos, End: s.offset}}, "illegal character %#U", ch)
		return pos, ILLEGAL, string(ch)
	}
}
