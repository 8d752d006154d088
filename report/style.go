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

import "github.com/fatih/color"

// style renders report fragments, optionally with ANSI colour.
type style struct {
	color bool
}

func styleFor(cfg *Config) style { return style{color: cfg.Color} }

// colored returns a Color with auto-detection overridden: a host that
// asked for Config.Color wants it regardless of whether this process
// happens to be attached to a terminal.
func colored(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	c.EnableColor()
	return c
}

func (s style) kind(text string) string {
	if !s.color {
		return text
	}
	return colored(color.FgRed, color.Bold).Sprint(text)
}

func (s style) path(text string) string {
	if !s.color {
		return text
	}
	return colored(color.FgYellow).Sprint(text)
}

func (s style) pos(text string) string {
	if !s.color {
		return text
	}
	return colored(color.FgCyan).Sprint(text)
}

func (s style) caret(text string) string {
	if !s.color {
		return text
	}
	return colored(color.FgGreen, color.Bold).Sprint(text)
}
