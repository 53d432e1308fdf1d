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
	"io/fs"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cowdogmoo/archgen/errors"
	"github.com/cowdogmoo/archgen/logging"
	"github.com/cowdogmoo/archgen/render"
	"github.com/opencontainers/go-digest"
	"github.com/spf13/afero"
)

// levelDirs are the top-level directories whose files become entries.
var levelDirs = []string{ArchitecturesDir, FrameworksDir, AdaptersDir}

// Loader reads pack directories into Pack snapshots.
type Loader struct {
	fs afero.Fs
}

// NewLoader returns a Loader reading through fsys. A nil fsys means the OS
// filesystem.
func NewLoader(fsys afero.Fs) *Loader {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &Loader{fs: fsys}
}

// CheckShape verifies that root has a readable pack.yaml and an
// architectures directory.
func (l *Loader) CheckShape(root string) (*Manifest, error) {
	manifest, _, err := l.checkShape(root)
	return manifest, err
}

func (l *Loader) checkShape(root string) (*Manifest, []byte, error) {
	data, err := afero.ReadFile(l.fs, filepath.Join(root, ManifestFile))
	if err != nil {
		return nil, nil, &errors.PackError{Pack: root, Path: ManifestFile, Reason: "manifest is missing or unreadable"}
	}
	manifest, err := ParseManifest(data)
	if err != nil {
		return nil, nil, &errors.PackError{Pack: root, Path: ManifestFile, Reason: err.Error()}
	}
	if ok, _ := afero.DirExists(l.fs, filepath.Join(root, ArchitecturesDir)); !ok {
		return nil, nil, &errors.PackError{Pack: root, Path: ArchitecturesDir, Reason: "directory is missing"}
	}
	return manifest, data, nil
}

// Load reads the pack rooted at root. Entries whose front matter or body
// fail to parse are still loaded; their errors are kept on the entry for
// Validate to report.
func (l *Loader) Load(ctx context.Context, src Source, root string) (*Pack, error) {
	manifest, raw, err := l.checkShape(root)
	if err != nil {
		return nil, err
	}

	entries := []*Entry{{
		path:   ManifestFile,
		kind:   KindMetadata,
		body:   string(raw),
		digest: digest.FromBytes(raw),
	}}

	for _, dir := range levelDirs {
		base := filepath.Join(root, dir)
		if ok, _ := afero.DirExists(l.fs, base); !ok {
			continue
		}
		err := afero.Walk(l.fs, base, func(p string, info fs.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if info.IsDir() {
				if strings.HasPrefix(info.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			rel, err := filepath.Rel(root, p)
			if err != nil {
				return err
			}
			entry, err := l.loadEntry(p, filepath.ToSlash(rel))
			if err != nil {
				return err
			}
			if entry != nil {
				entries = append(entries, entry)
			}
			return nil
		})
		if err != nil {
			return nil, errors.Wrap("load pack", root, err)
		}
	}

	pack := newPack(manifest.Name, src, root, manifest, entries)
	logging.DebugContext(ctx, "Loaded pack %s from %s with %d entries", pack.ID(), root, pack.Len())
	return pack, nil
}

// loadEntry builds the entry for one file. Files that are neither templates
// nor structure definitions are skipped.
func (l *Loader) loadEntry(fsPath, rel string) (*Entry, error) {
	name := path.Base(rel)
	isTemplate := strings.HasSuffix(name, TemplateSuffix)
	logical := strings.TrimSuffix(rel, TemplateSuffix)

	kind, ok := classify(logical)
	if !ok || (!isTemplate && kind != KindStructure) {
		return nil, nil
	}

	raw, err := afero.ReadFile(l.fs, fsPath)
	if err != nil {
		return nil, err
	}
	content := string(raw)

	e := &Entry{
		path:   logical,
		kind:   kind,
		digest: digest.FromBytes(raw),
	}
	if isTemplate {
		e.meta, e.body, e.metaErr = splitFrontMatter(content)
	} else {
		e.body = content
	}

	vars, err := render.Scan(logical, e.body)
	if err != nil {
		e.scanErr = err
	}
	if e.meta.Output != "" {
		outVars, err := render.Scan(logical+"#output", e.meta.Output)
		if err != nil && e.scanErr == nil {
			e.scanErr = err
		}
		vars = append(vars, outVars...)
	}
	slices.Sort(vars)
	e.vars = slices.Compact(vars)
	return e, nil
}

// classify assigns an entry kind from its logical path. Paths outside the
// level layout report false.
func classify(logical string) (Kind, bool) {
	parts := strings.Split(logical, "/")
	switch parts[0] {
	case ArchitecturesDir:
		// architectures/<arch>/<component>/<file...>
		if len(parts) < 4 {
			return "", false
		}
		if parts[2] == ComponentProject {
			if len(parts) == 4 && parts[3] == StructureFile {
				return KindStructure, true
			}
			return KindProjectFile, true
		}
		return KindComponent, true
	case FrameworksDir:
		// frameworks/<framework>/<paradigm>/<component>/<file...>
		if len(parts) < 5 {
			return "", false
		}
		if parts[3] == ComponentProject {
			return KindProjectFile, true
		}
		return KindComponent, true
	case AdaptersDir:
		// adapters/<direction>/<type>/<file...>
		if len(parts) < 4 {
			return "", false
		}
		return KindComponent, true
	}
	return "", false
}
