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

// Package errors defines the shared error currency for the EURE
// toolchain. Every diagnostic produced by the lexer, CST parser,
// document builder, schema loader, validator, and query runtime is a
// *CoreError collected in a List, so that a single Sanitize pipeline
// (and the printer in package report) can present them uniformly.
package errors

import (
	"cmp"
	goerrors "errors"
	"fmt"
	"slices"
	"strings"

	"eure.dev/go/token"
)

// Kind identifies the taxonomy of an error. Kind strings
// are load-bearing: tests and host tooling match on them.
type Kind string

const (
	// Parse errors.
	UnexpectedToken    Kind = "UnexpectedToken"
	UnterminatedString Kind = "UnterminatedString"
	InvalidEscape      Kind = "InvalidEscape"
	UnexpectedEOF      Kind = "UnexpectedEof"

	// Document construction errors.
	AlreadyAssigned   Kind = "AlreadyAssigned"
	ExpectedMap       Kind = "ExpectedMap"
	ExpectedArray     Kind = "ExpectedArray"
	ExpectedTuple     Kind = "ExpectedTuple"
	TupleIndexOverflow Kind = "TupleIndexOverflow"
	InvalidIdentifier Kind = "InvalidIdentifier"
	InvalidInteger    Kind = "InvalidInteger"
	InvalidFloat      Kind = "InvalidFloat"
	InvalidKeyType    Kind = "InvalidKeyType"
	ConflictingTypes  Kind = "ConflictingTypes"

	// Schema loader errors.
	UnknownTypeReference Kind = "UnknownTypeReference"
	FlattenCollision     Kind = "FlattenCollision"
	InvalidConstraint    Kind = "InvalidConstraint"

	// Validation errors.
	TypeMismatch              Kind = "TypeMismatch"
	RequiredFieldMissing       Kind = "RequiredFieldMissing"
	UnexpectedField            Kind = "UnexpectedField"
	LengthViolation            Kind = "LengthViolation"
	RangeViolation             Kind = "RangeViolation"
	PatternMismatch            Kind = "PatternMismatch"
	ArrayLengthViolation       Kind = "ArrayLengthViolation"
	UnknownVariant             Kind = "UnknownVariant"
	AmbiguousUnion             Kind = "AmbiguousUnion"
	NoVariantMatched           Kind = "NoVariantMatched"
	VariantDiscriminatorMissing Kind = "VariantDiscriminatorMissing"
	CannotProjectHole          Kind = "CannotProjectHole"

	// Runtime errors.
	Cycle Kind = "Cycle"
)

// Severity of a diagnostic. Only Error is currently produced by this
// core; the others exist for forward compatibility.
type Severity int

const (
	Error Severity = iota
	Warning
	Info
	Hint
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Info:
		return "info"
	case Hint:
		return "hint"
	default:
		return "error"
	}
}

// CoreError is the concrete error type produced throughout this
// module. It carries a Kind (for programmatic matching), a primary
// origin, an optional secondary origin (e.g. a schema origin
// alongside a document origin), a path into the document/schema tree,
// and a human message.
type CoreError struct {
	Kind     Kind
	Severity Severity
	Origin   token.Origin
	Related  *token.Origin
	Path     []string
	format   string
	args     []any
}

// Newf creates a CoreError with the given kind, primary origin, and
// a printf-style message.
func Newf(kind Kind, origin token.Origin, format string, args ...any) *CoreError {
	return &CoreError{Kind: kind, Severity: Error, Origin: origin, format: format, args: args}
}

// WithRelated attaches a secondary origin (e.g. the schema node that
// rejected a value) and returns the receiver for chaining.
func (e *CoreError) WithRelated(o token.Origin) *CoreError {
	e.Related = &o
	return e
}

// WithPath attaches a document/schema path and returns the receiver.
func (e *CoreError) WithPath(path ...string) *CoreError {
	e.Path = path
	return e
}

func (e *CoreError) Error() string {
	return fmt.Sprintf(e.format, e.args...)
}

func (e *CoreError) Msg() (string, []any) { return e.format, e.args }

// Position implements the positional-error contract used by Print.
func (e *CoreError) Position() token.Origin { return e.Origin }

// List is an ordered collection of errors. The zero value is an
// empty list ready to use.
type List []*CoreError

// Add appends err to the list.
func (l *List) Add(err *CoreError) { *l = append(*l, err) }

// AddNewf is a convenience wrapper around Newf + Add.
func (l *List) AddNewf(kind Kind, origin token.Origin, format string, args ...any) {
	l.Add(Newf(kind, origin, format, args...))
}

// Err returns an error equivalent to the list, or nil if it is empty.
func (l List) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}

func (l List) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	default:
		return fmt.Sprintf("%s (and %d more errors)", l[0].Error(), len(l)-1)
	}
}

// Sort orders the list by (file, start offset), then path, then
// message, keeping validator output stable in document pre-order and
// giving a deterministic order for every other stage too.
func (l List) Sort() {
	slices.SortFunc(l, func(a, b *CoreError) int {
		if c := cmp.Compare(a.Origin.File.String(), b.Origin.File.String()); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Origin.Span.Start, b.Origin.Span.Start); c != 0 {
			return c
		}
		if c := slices.Compare(a.Path, b.Path); c != 0 {
			return c
		}
		return cmp.Compare(a.Error(), b.Error())
	})
}

// Sanitize sorts the list and removes exact duplicates (same kind,
// origin, and message), on a best-effort basis.
func (l List) Sanitize() List {
	if len(l) == 0 {
		return l
	}
	out := slices.Clone(l)
	out.Sort()
	out = slices.CompactFunc(out, func(a, b *CoreError) bool {
		return a.Kind == b.Kind && a.Origin == b.Origin && a.Error() == b.Error()
	})
	return out
}

// As reports whether err, or any error it wraps, is a *CoreError, and
// if so assigns it to target.
func As(err error, target **CoreError) bool {
	return goerrors.As(err, target)
}

// Is is a thin re-export of the standard library for convenience when
// working with sentinel errors alongside CoreError values.
func Is(err, target error) bool { return goerrors.Is(err, target) }

// Join concatenates the errors in multiple Lists, preserving order.
func Join(lists ...List) List {
	var out List
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}

// String renders a single CoreError including its kind, for
// programmatic-friendly logging.
func String(e *CoreError) string {
	var b strings.Builder
	if len(e.Path) > 0 {
		b.WriteString(strings.Join(e.Path, "."))
		b.WriteString(": ")
	}
	b.WriteString(string(e.Kind))
	b.WriteString(": ")
	b.WriteString(e.Error())
	return b.String()
}
