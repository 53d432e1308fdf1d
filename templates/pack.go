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

// Package templates loads template packs and makes them available to the
// resolver and the generator.
//
// A pack is a directory tree with a pack.yaml manifest at its root:
//
//	pack.yaml
//	architectures/<arch>/<component>/...
//	architectures/<arch>/project/structure.yaml
//	frameworks/<framework>/<paradigm>/<component>/...
//	adapters/<output|input>/<type>/...
//	adapters/<output|input>/<type>/<paradigm>/...
//
// Files ending in .tmpl are templates. Their logical path drops the suffix.
// A template may open with a YAML front matter block between two "---"
// lines that sets its output path pattern, artifact kind and merge hints.
//
// Packs come from a local directory or from a remote git repository or
// archive, fetched into an explicit Cache. Loaded packs are immutable.
package templates

import (
	"iter"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/opencontainers/go-digest"
)

// Top-level pack layout.
const (
	ManifestFile     = "pack.yaml"
	ArchitecturesDir = "architectures"
	FrameworksDir    = "frameworks"
	AdaptersDir      = "adapters"
	StructureFile    = "structure.yaml"
	TemplateSuffix   = ".tmpl"
)

// Component directory names.
const (
	ComponentProject       = "project"
	ComponentEntity        = "entity"
	ComponentUseCase       = "usecase"
	ComponentOutputAdapter = "output-adapter"
	ComponentInputAdapter  = "input-adapter"
)

// Kind classifies a template entry.
type Kind string

// Entry kinds.
const (
	KindProjectFile Kind = "project-file"
	KindStructure   Kind = "structure-definition"
	KindComponent   Kind = "component-file"
	KindMetadata    Kind = "metadata"
)

// ArtifactKind governs whether and how a generated file may be merged.
type ArtifactKind string

// Artifact kinds.
const (
	ArtifactOpaque    ArtifactKind = "opaque-text"
	ArtifactConfig    ArtifactKind = "structured-config"
	ArtifactBuild     ArtifactKind = "structured-build-descriptor"
	ArtifactDirectory ArtifactKind = "directory"
)

// Valid reports whether k is a known artifact kind.
func (k ArtifactKind) Valid() bool {
	switch k {
	case ArtifactOpaque, ArtifactConfig, ArtifactBuild, ArtifactDirectory:
		return true
	}
	return false
}

// Mergeable reports whether existing files of this kind are merged rather
// than skipped.
func (k ArtifactKind) Mergeable() bool {
	return k == ArtifactConfig || k == ArtifactBuild
}

// InferArtifactKind picks the artifact kind for an output path from its file
// name.
func InferArtifactKind(outputPath string) ArtifactKind {
	base := path.Base(outputPath)
	switch base {
	case "build.gradle", "build.gradle.kts", "settings.gradle", "settings.gradle.kts":
		return ArtifactBuild
	}
	switch path.Ext(base) {
	case ".yaml", ".yml", ".properties":
		return ArtifactConfig
	}
	return ArtifactOpaque
}

// Entry is one template unit of a pack. Entries are immutable.
type Entry struct {
	path    string
	kind    Kind
	body    string
	meta    Meta
	metaErr error
	vars    []string
	scanErr error
	digest  digest.Digest
}

// Path returns the logical path, slash separated and without .tmpl.
func (e *Entry) Path() string { return e.path }

// Kind returns the entry kind.
func (e *Entry) Kind() Kind { return e.kind }

// Body returns the template body without its front matter.
func (e *Entry) Body() string { return e.body }

// Meta returns the parsed front matter.
func (e *Entry) Meta() Meta { return e.meta }

// MetaErr returns the front matter parse error, if any.
func (e *Entry) MetaErr() error { return e.metaErr }

// Variables returns the root variables referenced by the body and the
// output pattern, sorted.
func (e *Entry) Variables() []string { return slices.Clone(e.vars) }

// ScanErr returns the template parse error found while scanning variables.
func (e *Entry) ScanErr() error { return e.scanErr }

// Digest returns the content digest of the raw file.
func (e *Entry) Digest() digest.Digest { return e.digest }

// Artifact returns the declared artifact kind, or the kind inferred from the
// output path.
func (e *Entry) Artifact() ArtifactKind {
	if e.meta.Artifact != "" {
		return e.meta.Artifact
	}
	if e.kind == KindStructure {
		return ArtifactDirectory
	}
	return InferArtifactKind(e.OutputPattern(""))
}

// OutputPattern returns the output path pattern: the front matter output,
// or the entry path relative to levelPrefix.
func (e *Entry) OutputPattern(levelPrefix string) string {
	if e.meta.Output != "" {
		return e.meta.Output
	}
	if levelPrefix != "" {
		if rel, ok := strings.CutPrefix(e.path, levelPrefix+"/"); ok {
			return rel
		}
	}
	return e.path
}

// Pack is an immutable snapshot of a loaded template pack.
type Pack struct {
	id       string
	source   Source
	state    CacheState
	root     string
	loadedAt time.Time
	manifest *Manifest
	entries  map[string]*Entry
	paths    []string
	byDigest map[digest.Digest]*Entry
}

func newPack(id string, src Source, root string, manifest *Manifest, entries []*Entry) *Pack {
	p := &Pack{
		id:       id,
		source:   src,
		root:     root,
		loadedAt: time.Now(),
		manifest: manifest,
		entries:  make(map[string]*Entry, len(entries)),
		byDigest: make(map[digest.Digest]*Entry, len(entries)),
	}
	for _, e := range entries {
		p.entries[e.path] = e
		p.paths = append(p.paths, e.path)
		if _, dup := p.byDigest[e.digest]; !dup {
			p.byDigest[e.digest] = e
		}
	}
	slices.Sort(p.paths)
	return p
}

// withState returns a copy of p reporting state. Entries are shared.
func (p *Pack) withState(state CacheState) *Pack {
	cp := *p
	cp.state = state
	return &cp
}

// ID returns the pack identifier from the manifest name.
func (p *Pack) ID() string { return p.id }

// Source returns the descriptor the pack was resolved from.
func (p *Pack) Source() Source { return p.source }

// State returns how the pack was obtained.
func (p *Pack) State() CacheState { return p.state }

// Root returns the directory the pack was loaded from.
func (p *Pack) Root() string { return p.root }

// LoadedAt returns when the snapshot was taken.
func (p *Pack) LoadedAt() time.Time { return p.loadedAt }

// Manifest returns the parsed pack.yaml.
func (p *Pack) Manifest() *Manifest { return p.manifest }

// Len returns the number of entries.
func (p *Pack) Len() int { return len(p.paths) }

// Lookup returns the entry at a logical path.
func (p *Pack) Lookup(logicalPath string) (*Entry, bool) {
	e, ok := p.entries[logicalPath]
	return e, ok
}

// LookupDigest returns an entry whose raw content has digest d.
func (p *Pack) LookupDigest(d digest.Digest) (*Entry, bool) {
	e, ok := p.byDigest[d]
	return e, ok
}

// Entries yields the entries at or below prefix in lexical path order. An
// empty prefix yields every entry. The sequence may be ranged over any
// number of times.
func (p *Pack) Entries(prefix string) iter.Seq[*Entry] {
	prefix = strings.Trim(prefix, "/")
	return func(yield func(*Entry) bool) {
		start, _ := slices.BinarySearch(p.paths, prefix)
		for _, lp := range p.paths[start:] {
			if !strings.HasPrefix(lp, prefix) {
				return
			}
			if prefix != "" && lp != prefix && lp[len(prefix)] != '/' {
				continue
			}
			if !yield(p.entries[lp]) {
				return
			}
		}
	}
}

// Children returns the distinct path segments directly below prefix, sorted.
// Children("adapters/output") lists the output adapter types.
func (p *Pack) Children(prefix string) []string {
	prefix = strings.Trim(prefix, "/")
	seen := map[string]struct{}{}
	var out []string
	for e := range p.Entries(prefix) {
		rest := e.path
		if prefix != "" {
			rest = strings.TrimPrefix(e.path, prefix+"/")
		}
		seg, _, nested := strings.Cut(rest, "/")
		if !nested || seg == "" {
			continue
		}
		if _, ok := seen[seg]; ok {
			continue
		}
		seen[seg] = struct{}{}
		out = append(out, seg)
	}
	slices.Sort(out)
	return out
}
