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

package generator

import (
	"bytes"
	"context"
	"os"
	"path/filepath"

	"github.com/cowdogmoo/archgen/config"
	"github.com/cowdogmoo/archgen/errors"
	"github.com/cowdogmoo/archgen/logging"
	"github.com/cowdogmoo/archgen/merge"
	"github.com/cowdogmoo/archgen/templates"
	"github.com/spf13/afero"
)

// write puts one planned artifact on disk while holding its path lock.
func (g *Generator) write(ctx context.Context, root string, p planned, opts Options) Artifact {
	art := Artifact{
		Path:      p.path,
		Kind:      p.kind,
		Template:  p.template,
		Notes:     p.notes,
		Conflicts: p.conflicts,
	}
	fail := func(err error) Artifact {
		art.Status = StatusFailed
		art.Err = err
		return art
	}
	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	target := filepath.Join(root, filepath.FromSlash(p.path))
	unlock, err := g.locks.Lock(target)
	if err != nil {
		return fail(err)
	}
	defer unlock()

	if p.kind == templates.ArtifactDirectory {
		return g.writeDirectory(target, art, opts, fail)
	}

	existing, err := afero.ReadFile(g.fs, target)
	switch {
	case errors.Is(err, os.ErrNotExist):
		art.Status = StatusCreated
		if opts.DryRun {
			return art
		}
		if err := g.writeAtomic(target, p.content); err != nil {
			return fail(err)
		}
		logging.DebugContext(ctx, "Created %s", p.path)
		return art
	case err != nil:
		return fail(errors.Wrap("read existing file", target, err))
	}

	if p.kind.Mergeable() {
		merged, plan, err := merge.Merge(existing, p.content, p.path, p.kind, p.hints)
		if err != nil {
			return fail(err)
		}
		art.Notes = append(art.Notes, plan.Notes...)
		art.Conflicts = append(art.Conflicts, plan.Conflicts...)
		switch {
		case len(art.Conflicts) > 0:
			art.Status = StatusMergedWithConflicts
		case plan.Changed():
			art.Status = StatusMerged
		default:
			art.Status = StatusSkippedIdentical
		}
		if !plan.Changed() || opts.DryRun {
			return art
		}
		if err := g.writeAtomic(target, merged); err != nil {
			return fail(err)
		}
		logging.DebugContext(ctx, "Merged %s: %d additions, %d conflicts", p.path, len(plan.Additions), len(plan.Conflicts))
		return art
	}

	switch {
	case bytes.Equal(existing, p.content):
		art.Status = StatusSkippedIdentical
	case opts.Force:
		art.Status = StatusOverwritten
		if !opts.DryRun {
			if err := g.writeAtomic(target, p.content); err != nil {
				return fail(err)
			}
		}
	default:
		art.Status = StatusSkippedExisting
	}
	return art
}

func (g *Generator) writeDirectory(target string, art Artifact, opts Options, fail func(error) Artifact) Artifact {
	info, err := g.fs.Stat(target)
	switch {
	case err == nil && info.IsDir():
		art.Status = StatusSkippedIdentical
		return art
	case err == nil:
		return fail(errors.Wrap("create directory", target, errors.New("a file exists at this path")))
	case !errors.Is(err, os.ErrNotExist):
		return fail(errors.Wrap("stat directory", target, err))
	}
	art.Status = StatusCreated
	if opts.DryRun {
		return art
	}
	if err := g.fs.MkdirAll(target, config.DirPermReadWriteExec); err != nil {
		return fail(errors.Wrap("create directory", target, err))
	}
	return art
}

// writeAtomic writes data next to target and renames it into place, so a
// reader never sees a partial file.
func (g *Generator) writeAtomic(target string, data []byte) error {
	dir := filepath.Dir(target)
	if err := g.fs.MkdirAll(dir, config.DirPermReadWriteExec); err != nil {
		return errors.Wrap("create directory", dir, err)
	}
	tmp, err := afero.TempFile(g.fs, dir, "."+filepath.Base(target)+".tmp-*")
	if err != nil {
		return errors.Wrap("create temp file", dir, err)
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = g.fs.Remove(name)
		return errors.Wrap("write temp file", name, err)
	}
	if err := tmp.Close(); err != nil {
		_ = g.fs.Remove(name)
		return errors.Wrap("close temp file", name, err)
	}
	if err := g.fs.Chmod(name, config.FilePermReadWrite); err != nil {
		_ = g.fs.Remove(name)
		return errors.Wrap("chmod temp file", name, err)
	}
	if err := g.fs.Rename(name, target); err != nil {
		_ = g.fs.Remove(name)
		return errors.Wrap("rename into place", target, err)
	}
	return nil
}
