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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cowdogmoo/archgen/errors"
	"github.com/opencontainers/go-digest"
)

const (
	cacheRecordSuffix = ".cache.json"
	stagingDirName    = ".staging"
	dirPerm           = 0o755
	filePerm          = 0o644
)

// Cache stores fetched remote packs on disk, keyed by (location, ref).
// A Cache is an explicit handle: tests and callers create their own rather
// than sharing a process-wide instance.
type Cache struct {
	dir string
	ttl time.Duration
	now func() time.Time

	mu sync.Mutex
}

// CacheRecord is the metadata stored beside a cached pack.
type CacheRecord struct {
	Location  string    `json:"location"`
	Ref       string    `json:"ref,omitempty"`
	Resolved  string    `json:"resolved,omitempty"`
	FetchedAt time.Time `json:"fetched_at"`
}

// NewCache returns a cache rooted at dir. Branch-tracking entries older than
// ttl are stale; a ttl of zero or less never expires them.
func NewCache(dir string, ttl time.Duration) *Cache {
	return &Cache{dir: dir, ttl: ttl, now: time.Now}
}

// Dir returns the cache root.
func (c *Cache) Dir() string { return c.dir }

// Path returns where the pack for src is stored.
func (c *Cache) Path(src Source) string {
	cleanURL := locationKey(src.Location)

	refKey := "default"
	if src.Ref != "" {
		refKey = digest.FromString(src.Ref).Encoded()[:12]
	}

	return filepath.Join(c.dir, cleanURL, refKey)
}

// Lookup returns the cached pack directory and its record for src.
func (c *Cache) Lookup(src Source) (string, *CacheRecord, bool) {
	dir := c.Path(src)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", nil, false
	}

	rec := &CacheRecord{Location: src.Location, Ref: src.Ref}
	if data, err := os.ReadFile(dir + cacheRecordSuffix); err == nil {
		if err := json.Unmarshal(data, rec); err != nil {
			rec.FetchedAt = time.Time{}
		}
	}
	return dir, rec, true
}

// IsStale reports whether a cached entry should be refetched. Entries for
// pinned refs never go stale.
func (c *Cache) IsStale(src Source, rec *CacheRecord) bool {
	if IsPinnedRef(src.Ref) {
		return false
	}
	if c.ttl <= 0 {
		return false
	}
	if rec == nil || rec.FetchedAt.IsZero() {
		return true
	}
	return c.now().Sub(rec.FetchedAt) > c.ttl
}

// Stage creates an empty staging directory inside the cache root. Fetches
// write there and become visible only through Commit. The returned cleanup
// removes whatever is left of the staging directory.
func (c *Cache) Stage() (string, func(), error) {
	base := filepath.Join(c.dir, stagingDirName)
	if err := os.MkdirAll(base, dirPerm); err != nil {
		return "", nil, errors.Wrap("create staging directory", base, err)
	}
	dir, err := os.MkdirTemp(base, "fetch-")
	if err != nil {
		return "", nil, errors.Wrap("create staging directory", base, err)
	}
	return dir, func() { _ = os.RemoveAll(dir) }, nil
}

// Commit atomically moves a fully fetched pack from staged into the cache
// slot for src, replacing any previous entry, and records the fetch.
func (c *Cache) Commit(src Source, staged, resolvedRef string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	dest := c.Path(src)
	if err := os.MkdirAll(filepath.Dir(dest), dirPerm); err != nil {
		return "", errors.Wrap("create cache directory", filepath.Dir(dest), err)
	}

	// rename(2) will not replace a non-empty directory, so the previous
	// entry is moved aside first and dropped once the new one is in place.
	var old string
	if _, err := os.Stat(dest); err == nil {
		old = fmt.Sprintf("%s.old-%d", dest, c.now().UnixNano())
		if err := os.Rename(dest, old); err != nil {
			return "", errors.Wrap("retire cached pack", dest, err)
		}
	}
	if err := os.Rename(staged, dest); err != nil {
		if old != "" {
			_ = os.Rename(old, dest)
		}
		return "", errors.Wrap("commit cached pack", dest, err)
	}
	if old != "" {
		_ = os.RemoveAll(old)
	}

	rec := CacheRecord{Location: src.Location, Ref: src.Ref, Resolved: resolvedRef, FetchedAt: c.now().UTC()}
	if err := writeFileAtomic(dest+cacheRecordSuffix, rec); err != nil {
		return "", err
	}
	return dest, nil
}

// Remove deletes the cached entry for src.
func (c *Cache) Remove(src Source) error {
	dest := c.Path(src)
	if err := os.RemoveAll(dest); err != nil {
		return errors.Wrap("remove cached pack", dest, err)
	}
	if err := os.Remove(dest + cacheRecordSuffix); err != nil && !os.IsNotExist(err) {
		return errors.Wrap("remove cache record", dest, err)
	}
	return nil
}

func writeFileAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap("encode cache record", path, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-")
	if err != nil {
		return errors.Wrap("write cache record", path, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Wrap("write cache record", path, err)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap("write cache record", path, err)
	}
	if err := os.Chmod(tmp.Name(), filePerm); err != nil {
		return errors.Wrap("write cache record", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrap("write cache record", path, err)
	}
	return nil
}

// locationKey turns a remote location into a relative directory path.
func locationKey(location string) string {
	clean := location
	for _, prefix := range []string{"https://", "http://", "ssh://", "file://", "git@"} {
		clean = strings.TrimPrefix(clean, prefix)
	}
	if i := strings.IndexAny(clean, "?#"); i >= 0 {
		clean = clean[:i]
	}
	// Credentials in the authority never reach the file system.
	if host, rest, ok := strings.Cut(clean, "/"); ok {
		if i := strings.LastIndex(host, "@"); i >= 0 {
			clean = host[i+1:] + "/" + rest
		}
	} else if i := strings.LastIndex(clean, "@"); i >= 0 {
		clean = clean[i+1:]
	}
	clean = strings.ReplaceAll(clean, ":", "/")
	clean = strings.TrimSuffix(clean, ".git")

	var parts []string
	for _, p := range strings.Split(clean, "/") {
		if p == "" || p == "." || p == ".." {
			continue
		}
		parts = append(parts, p)
	}
	if len(parts) == 0 {
		return "unnamed"
	}
	return filepath.Join(parts...)
}
