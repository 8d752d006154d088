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

// Package report renders errors.List diagnostics as text: a title
// line, a primary span annotation, zero or more secondary
// annotations, and an optional source excerpt with a caret.
package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"eure.dev/go/errors"
	"eure.dev/go/token"
)

// FileRegistry records the source bytes of every FileKey a report
// batch touches, so the reporter can render excerpts. A host
// constructs one per report batch; the core itself holds no source
// text.
type FileRegistry struct {
	fileSet *token.FileSet
	sources map[token.FileKey][]byte
}

// NewFileRegistry creates a registry backed by fs for line/column
// resolution.
func NewFileRegistry(fs *token.FileSet) *FileRegistry {
	return &FileRegistry{fileSet: fs, sources: make(map[token.FileKey][]byte)}
}

// AddSource records src as the content of key.
func (r *FileRegistry) AddSource(key token.FileKey, src []byte) {
	r.sources[key] = src
}

// line returns the source line containing o's start offset, and the
// 1-based column within it, or ok=false if no excerpt is available.
func (r *FileRegistry) line(o token.Origin) (text string, col int, ok bool) {
	if r == nil {
		return "", 0, false
	}
	f := r.fileSet.File(o.File)
	src, hasSrc := r.sources[o.File]
	if f == nil || !hasSrc {
		return "", 0, false
	}
	start, end := f.LineRange(o.Span.Start)
	if start < 0 || end > len(src) || start > end {
		return "", 0, false
	}
	pos := f.Position(o.Span.Start)
	return string(src[start:end]), pos.Column, true
}

// Config controls how a report is rendered. The zero Config renders
// plain, uncoloured text with file paths as given.
type Config struct {
	// Format, if set, replaces the default fmt.Fprintf-based writer.
	Format func(w io.Writer, format string, args ...any)

	// Cwd, if set, makes file paths relative to it.
	Cwd string

	// ToSlash forces forward slashes in rendered paths.
	ToSlash bool

	// Files supplies source text for excerpts; nil disables them.
	Files *FileRegistry

	// Color enables ANSI styling of the kind, path, position and caret.
	Color bool
}

var zeroConfig = &Config{}

func defaultFprintf(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format, args...)
}

// Print renders errs to w, sorted by (file, start), one report per
// error.
func Print(w io.Writer, errs errors.List, cfg *Config) {
	if cfg == nil {
		cfg = zeroConfig
	}
	sorted := errs.Sanitize()
	s := styleFor(cfg)
	for _, e := range sorted {
		printOne(w, e, cfg, s)
	}
}

// Details renders errs with Print and returns the result as a string.
func Details(errs errors.List, cfg *Config) string {
	var b strings.Builder
	Print(&b, errs, cfg)
	return b.String()
}

func printOne(w io.Writer, e *errors.CoreError, cfg *Config, s style) {
	fprintf := cfg.Format
	if fprintf == nil {
		fprintf = defaultFprintf
	}

	fprintf(w, "%s", s.kind(string(e.Kind)))
	if len(e.Path) > 0 {
		fprintf(w, " %s", s.path(strings.Join(e.Path, ".")))
	}
	fprintf(w, ": %s\n", e.Error())

	printPosition(w, fprintf, "", e.Origin, cfg, s)
	if e.Related != nil {
		printPosition(w, fprintf, "related: ", *e.Related, cfg, s)
	}
}

func printPosition(w io.Writer, fprintf func(io.Writer, string, ...any), label string, o token.Origin, cfg *Config, s style) {
	path := relPath(o.File.String(), cfg)
	pos := "-"
	if cfg.Files != nil {
		if f := cfg.Files.fileSet.File(o.File); f != nil {
			p := f.Position(o.Span.Start)
			pos = fmt.Sprintf("%d:%d", p.Line, p.Column)
		}
	}
	fprintf(w, "    %s%s", label, s.pos(fmt.Sprintf("%s:%s", path, pos)))
	fprintf(w, "\n")

	// An empty span with a known file still gets a file-level message,
	// never a caret pointing at nothing.
	if o.Span.IsEmpty() {
		return
	}
	line, col, ok := cfg.Files.line(o)
	if !ok {
		return
	}
	fprintf(w, "        %s\n", strings.TrimRight(line, "\n"))
	caretLen := o.Span.Len()
	if caretLen < 1 {
		caretLen = 1
	}
	if col-1+caretLen > len(line) {
		caretLen = 1
	}
	fprintf(w, "        %s%s\n", strings.Repeat(" ", col-1), s.caret(strings.Repeat("^", caretLen)))
}

func relPath(path string, cfg *Config) string {
	if path == "" {
		return path
	}
	if cfg.Cwd != "" {
		if p, err := filepath.Rel(cfg.Cwd, path); err == nil {
			path = p
			if !strings.HasPrefix(path, ".") {
				path = fmt.Sprintf(".%c%s", filepath.Separator, path)
			}
		}
	}
	if cfg.ToSlash {
		path = filepath.ToSlash(path)
	}
	return path
}
