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

package report

import (
	"strings"

	json "github.com/goccy/go-json"

	"eure.dev/go/errors"
)

// Batch is a JSON-serialisable view of one diagnostic batch, for
// hosts that consume diagnostics programmatically instead of through
// Print. Files, when set, supplies line/column resolution.
type Batch struct {
	Errors errors.List
	Files  *FileRegistry
}

type batchItem struct {
	Kind     string `json:"kind"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	File     string `json:"file"`
	Line     int    `json:"line,omitempty"`
	Column   int    `json:"column,omitempty"`
	Path     string `json:"path,omitempty"`
}

// MarshalJSON renders the batch as a sorted array of diagnostics.
func (b Batch) MarshalJSON() ([]byte, error) {
	items := make([]batchItem, 0, len(b.Errors))
	for _, e := range b.Errors.Sanitize() {
		it := batchItem{
			Kind:     string(e.Kind),
			Severity: e.Severity.String(),
			Message:  e.Error(),
			File:     e.Origin.File.String(),
			Path:     strings.Join(e.Path, "."),
		}
		if b.Files != nil {
			if f := b.Files.fileSet.File(e.Origin.File); f != nil {
				p := f.Position(e.Origin.Span.Start)
				it.Line, it.Column = p.Line, p.Column
			}
		}
		items = append(items, it)
	}
	return json.Marshal(items)
}

// ExitCode maps a diagnostic batch to the process exit code a host
// CLI should use: 0 on success, 1 when at least one error was
// reported, 2 on a runtime failure.
func ExitCode(errs errors.List, runtimeFailed bool) int {
	switch {
	case runtimeFailed:
		return 2
	case len(errs) > 0:
		return 1
	default:
		return 0
	}
}
