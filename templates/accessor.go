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
	"context"
	"fmt"
	"path/filepath"

	"github.com/cowdogmoo/archgen/errors"
	"github.com/cowdogmoo/archgen/logging"
	"github.com/spf13/afero"
)

// Accessor turns source descriptors into loaded packs.
type Accessor struct {
	cache       *Cache
	loader      *Loader
	cacheLoader *Loader
	fetchers    map[SourceKind]Fetcher
	versions    *VersionManager
}

// AccessorOption configures an Accessor.
type AccessorOption func(*Accessor)

// WithFetcher replaces the fetcher used for one kind of remote source.
func WithFetcher(kind SourceKind, f Fetcher) AccessorOption {
	return func(a *Accessor) { a.fetchers[kind] = f }
}

// WithFileSystem reads local packs through fsys instead of the OS. Cached
// remote packs are always read from disk.
func WithFileSystem(fsys afero.Fs) AccessorOption {
	return func(a *Accessor) { a.loader = NewLoader(fsys) }
}

// WithVersionManager enables the pack.yaml requires check.
func WithVersionManager(vm *VersionManager) AccessorOption {
	return func(a *Accessor) { a.versions = vm }
}

// NewAccessor creates an accessor over cache. Remote sources use a
// GitFetcher and an ArchiveFetcher without credentials unless replaced with
// WithFetcher.
func NewAccessor(cache *Cache, opts ...AccessorOption) *Accessor {
	a := &Accessor{
		cache:       cache,
		loader:      NewLoader(nil),
		cacheLoader: NewLoader(nil),
		fetchers: map[SourceKind]Fetcher{
			SourceGit:     NewGitFetcher("", ""),
			SourceArchive: NewArchiveFetcher(""),
		},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ResolvePack returns the pack for src.
//
// Local sources are loaded in place and are always fresh. Remote sources go
// through the cache: with UseCache a fresh cached copy is returned as is; a
// missing or stale copy, or the Refresh policy, triggers a fetch into a
// staging directory that is shape checked and then renamed into the cache.
// When the fetch fails and a cached copy exists, that copy is returned with
// StateStale. Without a usable cache the error is a SourceError.
func (a *Accessor) ResolvePack(ctx context.Context, src Source, policy CachePolicy) (*Pack, error) {
	if src.IsLocal() {
		return a.resolveLocal(ctx, src)
	}
	if a.cache == nil {
		return nil, &errors.SourceError{Source: src.String(), Err: fmt.Errorf("no template cache configured")}
	}

	dir, rec, hit := a.cache.Lookup(src)
	if hit && policy == UseCache && !a.cache.IsStale(src, rec) {
		pack, err := a.load(ctx, src, dir)
		if err == nil {
			logging.DebugContext(ctx, "Using cached pack %s", src)
			return pack.withState(StateFresh), nil
		}
		logging.WarnContext(ctx, "Cached pack for %s is unusable, fetching again: %v", src, err)
		hit = false
	}

	pack, err := a.fetch(ctx, src)
	if err == nil {
		if hit {
			return pack.withState(StateFresh), nil
		}
		return pack.withState(StateFetched), nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if errors.Is(err, errors.ErrInvalidPackStructure) {
		return nil, err
	}

	if hit {
		if stale, lerr := a.load(ctx, src, dir); lerr == nil {
			logging.WarnContext(ctx, "Could not refresh %s, using cached copy from %s: %v",
				src, rec.FetchedAt.Format("2006-01-02 15:04"), err)
			return stale.withState(StateStale), nil
		}
	}
	return nil, &errors.SourceError{Source: src.String(), Err: err}
}

func (a *Accessor) resolveLocal(ctx context.Context, src Source) (*Pack, error) {
	root, err := NewPathValidator().ExpandPath(src.Location)
	if err != nil {
		return nil, &errors.SourceError{Source: src.String(), Err: err}
	}
	if ok, _ := afero.DirExists(a.loader.fs, root); !ok {
		return nil, &errors.SourceError{Source: src.String(), Err: fmt.Errorf("directory does not exist")}
	}

	pack, err := a.loader.Load(ctx, src, root)
	if err != nil {
		return nil, err
	}
	if err := a.checkCompatibility(pack.Root(), pack.Manifest()); err != nil {
		return nil, err
	}
	return pack.withState(StateFresh), nil
}

// fetch downloads src into staging, verifies it and commits it to the
// cache. Nothing becomes visible in the cache unless every step succeeds.
func (a *Accessor) fetch(ctx context.Context, src Source) (*Pack, error) {
	fetcher, ok := a.fetchers[src.Kind()]
	if !ok || fetcher == nil {
		return nil, fmt.Errorf("no fetcher for %s sources", src.Kind())
	}

	staging, cleanup, err := a.cache.Stage()
	if err != nil {
		return nil, err
	}
	defer cleanup()

	dest := filepath.Join(staging, "pack")
	resolved, err := fetcher.Fetch(ctx, src, dest)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	manifest, err := a.cacheLoader.CheckShape(dest)
	if err != nil {
		return nil, err
	}
	if err := a.checkCompatibility(src.String(), manifest); err != nil {
		return nil, err
	}

	cached, err := a.cache.Commit(src, dest, resolved)
	if err != nil {
		return nil, err
	}
	logging.DebugContext(ctx, "Cached %s at %s", src, cached)
	return a.load(ctx, src, cached)
}

func (a *Accessor) load(ctx context.Context, src Source, dir string) (*Pack, error) {
	pack, err := a.cacheLoader.Load(ctx, src, dir)
	if err != nil {
		return nil, err
	}
	if err := a.checkCompatibility(dir, pack.Manifest()); err != nil {
		return nil, err
	}
	return pack, nil
}

func (a *Accessor) checkCompatibility(pack string, m *Manifest) error {
	if a.versions == nil || m == nil {
		return nil
	}
	ok, warnings, err := a.versions.CheckCompatibility(m.Requires)
	if err != nil {
		return &errors.PackError{Pack: pack, Path: ManifestFile, Reason: err.Error()}
	}
	if !ok {
		return &errors.PackError{Pack: pack, Path: ManifestFile, Reason: warnings[0]}
	}
	return nil
}
