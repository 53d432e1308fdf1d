/*
Copyright © 2025 Jayson Grace <jayson.e.grace@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/

package templates

import (
	"github.com/cowdogmoo/archgen/logging"
)

// SourceKind classifies a Source by how it is obtained.
type SourceKind int

// Source kinds.
const (
	SourceLocal SourceKind = iota
	SourceGit
	SourceArchive
)

func (k SourceKind) String() string {
	switch k {
	case SourceGit:
		return "git"
	case SourceArchive:
		return "archive"
	default:
		return "local"
	}
}

// Source describes where a template pack lives.
type Source struct {
	// Location is a local directory, a git URL or an archive URL.
	Location string
	// Ref is a branch, tag or semantic version for git sources. "latest"
	// selects the highest semantic version tag. Ignored for local sources.
	Ref string
}

// Kind reports how the source is obtained.
func (s Source) Kind() SourceKind {
	pv := NewPathValidator()
	switch {
	case pv.IsArchiveURL(s.Location):
		return SourceArchive
	case pv.IsGitURL(s.Location):
		return SourceGit
	default:
		return SourceLocal
	}
}

// IsLocal reports whether the source is read in place.
func (s Source) IsLocal() bool { return s.Kind() == SourceLocal }

// String returns the source with credentials redacted.
func (s Source) String() string {
	loc := logging.RedactURL(s.Location)
	if s.Ref == "" || s.IsLocal() {
		return loc
	}
	return loc + "@" + s.Ref
}

// CachePolicy controls whether ResolvePack may answer from the cache.
type CachePolicy int

// Cache policies.
const (
	// UseCache returns a fresh cached pack when one exists.
	UseCache CachePolicy = iota
	// Refresh always fetches, falling back to the cache only when the fetch
	// fails.
	Refresh
)

// CacheState records how a pack was obtained.
type CacheState int

// Cache states.
const (
	// StateFresh is a local pack, a cache hit within its TTL, or a cache
	// entry refreshed by this call.
	StateFresh CacheState = iota
	// StateStale is a cached pack returned after a failed fetch, or one past
	// its TTL that could not be refreshed.
	StateStale
	// StateFetched is a pack that was missing from the cache and fetched by
	// this call.
	StateFetched
)

func (s CacheState) String() string {
	switch s {
	case StateStale:
		return "stale"
	case StateFetched:
		return "fetched"
	default:
		return "fresh"
	}
}
