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

import (
	"github.com/google/uuid"

	"eure.dev/go/token"
)

// AssetKey identifies a single piece of host-supplied input. The
// runtime never performs I/O itself; every asset is
// supplied by the host via ResolveAsset/ResolveAssetError.
type AssetKey interface {
	assetKey()
	String() string
}

// TextFileKey names a source artifact by its token.FileKey.
type TextFileKey struct{ File token.FileKey }

func (TextFileKey) assetKey() {}

func (k TextFileKey) String() string { return "TextFile(" + k.File.String() + ")" }

// TextFileContent is the value resolved for a TextFileKey.
type TextFileContent struct {
	Content  string
	NotFound bool
}

// WorkspaceIDKey names one workspace root.
type WorkspaceIDKey struct{ ID uuid.UUID }

func (WorkspaceIDKey) assetKey() {}

func (k WorkspaceIDKey) String() string { return "WorkspaceId(" + k.ID.String() + ")" }

// Workspace is the value resolved for a WorkspaceIDKey.
type Workspace struct {
	Path       string
	ConfigPath string
}

// NewWorkspaceID mints an opaque workspace identity.
func NewWorkspaceID() uuid.UUID { return uuid.New() }

// GlobKey names a host-expanded file pattern; the host, not the
// runtime, performs the expansion.
type GlobKey struct{ Pattern string }

func (GlobKey) assetKey() {}

func (k GlobKey) String() string { return "Glob(" + k.Pattern + ")" }

// GlobResult is the value resolved for a GlobKey.
type GlobResult struct {
	Files []TextFileKey
}
