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

package query

import "eure.dev/go/errors"

// ErrKind classifies a QueryError.
type ErrKind int

const (
	// ErrSuspend means the query blocked on an asset that has not been
	// resolved yet; the runtime records the dependency and the caller
	// re-drives the query once the host resolves it.
	ErrSuspend ErrKind = iota
	// ErrUserError is a query-author-visible failure carrying one or
	// more formatted reports.
	ErrUserError
	// ErrRecursionLimit means nested ctx.query calls exceeded
	// Config.RecursionLimit.
	ErrRecursionLimit
	// ErrAssetError means the host recorded that an asset could not be
	// supplied (ResolveAssetError).
	ErrAssetError
)

// QueryError is returned by a failed query evaluation or asset read.
// Only ErrUserError is meant to reach an end user as a diagnostic;
// the others are control-flow signals the runtime itself consumes
// and propagates verbatim.
type QueryError struct {
	Kind    ErrKind
	Asset   AssetKey
	Reports errors.List
	Err     error
}

func (e *QueryError) Error() string {
	switch e.Kind {
	case ErrSuspend:
		return "suspended on asset " + e.Asset.String()
	case ErrUserError:
		return e.Reports.Error()
	case ErrRecursionLimit:
		return "query recursion limit exceeded"
	case ErrAssetError:
		return "asset error for " + e.Asset.String() + ": " + e.Err.Error()
	default:
		return "query error"
	}
}

// Suspend builds a QueryError signalling that key has not been
// resolved yet.
func Suspend(key AssetKey) *QueryError { return &QueryError{Kind: ErrSuspend, Asset: key} }

// UserErr builds a QueryError carrying reports, the query-author-
// visible error channel.
func UserErr(reports errors.List) *QueryError { return &QueryError{Kind: ErrUserError, Reports: reports} }

// IsSuspend reports whether err is a suspend signal for some asset.
func IsSuspend(err *QueryError) bool { return err != nil && err.Kind == ErrSuspend }
