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

// Package generator turns a generation request into files under a target
// root.
//
// A request runs through three phases. Resolving picks the template
// entries, Rendering expands every entry and its output path, and Writing
// puts the results on disk. Resolving and Rendering are all or nothing: a
// missing template or an undefined variable fails the request before a
// single file is touched. Writing is per artifact: each target path is
// locked, merged or written atomically, and a failure is recorded on that
// artifact without stopping the others.
//
// Structured artifacts (configuration files and build descriptors) that
// already exist are merged, never overwritten. Existing opaque files are
// left alone unless Force is set.
package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/cowdogmoo/archgen/config"
	"github.com/cowdogmoo/archgen/errors"
	"github.com/cowdogmoo/archgen/logging"
	"github.com/cowdogmoo/archgen/merge"
	"github.com/cowdogmoo/archgen/render"
	"github.com/cowdogmoo/archgen/resolver"
	"github.com/cowdogmoo/archgen/templates"
	"github.com/spf13/afero"
)

// Status is the outcome of one artifact.
type Status string

// Artifact statuses.
const (
	StatusCreated             Status = "created"
	StatusMerged              Status = "merged"
	StatusMergedWithConflicts Status = "merged-with-conflicts"
	StatusSkippedExisting     Status = "skipped-existing"
	StatusSkippedIdentical    Status = "skipped-identical"
	StatusOverwritten         Status = "overwritten"
	StatusFailed              Status = "failed"
)

// State is a phase of a generation run.
type State string

// Generation states.
const (
	StateResolving State = "resolving"
	StateRendering State = "rendering"
	StateWriting   State = "writing"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// Options change how artifacts are written.
type Options struct {
	// Force overwrites existing opaque files. Structured files are always
	// merged.
	Force bool
	// DryRun computes every status without touching the filesystem.
	DryRun bool
}

// Request describes one generation.
type Request struct {
	// Selectors choose the templates. Empty architecture, framework and
	// paradigm fall back to the project settings.
	Selectors resolver.Selectors
	// Context holds caller supplied variables such as entityName or fields.
	Context render.Context
	// Root is the target directory artifacts are written below.
	Root    string
	Options Options
	Pack    *templates.Pack
	// Project carries project-wide invariants. It may be nil.
	Project *config.ProjectSettings
}

// Artifact is one generated path and what happened to it.
type Artifact struct {
	// Path is relative to the request root, slash separated.
	Path      string                 `json:"path"`
	Kind      templates.ArtifactKind `json:"kind"`
	Status    Status                 `json:"status"`
	Template  string                 `json:"template,omitempty"`
	Notes     []string               `json:"notes,omitempty"`
	Conflicts []merge.Conflict       `json:"conflicts,omitempty"`
	Err       error                  `json:"-"`
}

// MarshalJSON adds the write error as a string.
func (a Artifact) MarshalJSON() ([]byte, error) {
	type plain Artifact
	out := struct {
		plain
		Error string `json:"error,omitempty"`
	}{plain: plain(a)}
	if a.Err != nil {
		out.Error = a.Err.Error()
	}
	return json.Marshal(out)
}

// Conflict is a merge conflict located in an artifact.
type Conflict struct {
	Path string `json:"path"`
	merge.Conflict
}

// Result lists the artifacts of a request in generation order.
type Result struct {
	Artifacts []Artifact `json:"artifacts"`
	Conflicts []Conflict `json:"conflicts,omitempty"`
}

// Failed returns the artifacts that could not be written.
func (r *Result) Failed() []Artifact {
	var out []Artifact
	for _, a := range r.Artifacts {
		if a.Status == StatusFailed {
			out = append(out, a)
		}
	}
	return out
}

// Artifact returns the artifact generated at p.
func (r *Result) Artifact(p string) (Artifact, bool) {
	for _, a := range r.Artifacts {
		if a.Path == p {
			return a, true
		}
	}
	return Artifact{}, false
}

// Option configures a Generator.
type Option func(*Generator)

// WithLockDir keeps advisory lock files in dir. Without it only
// in-process locks are taken.
func WithLockDir(dir string) Option {
	return func(g *Generator) { g.locks.dir = dir }
}

// WithAuthor sets the author placed in every render context.
func WithAuthor(author string) Option {
	return func(g *Generator) { g.author = author }
}

// Generator runs generation requests against a filesystem. It is safe for
// concurrent use; writes to the same path are serialized.
type Generator struct {
	fs       afero.Fs
	resolver *resolver.Resolver
	renderer *render.Renderer
	locks    *pathLocks
	author   string
}

// New returns a Generator writing through fsys.
func New(fsys afero.Fs, opts ...Option) *Generator {
	g := &Generator{
		fs:       fsys,
		resolver: resolver.New(),
		renderer: render.New(),
		locks:    newPathLocks(""),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// planned is a rendered artifact waiting to be written.
type planned struct {
	path      string
	kind      templates.ArtifactKind
	template  string
	level     resolver.Level
	content   []byte
	hints     merge.Hints
	notes     []string
	conflicts []merge.Conflict
}

// Generate resolves, renders and writes req. The returned error covers
// resolution and rendering; write failures are reported per artifact in
// the result.
func (g *Generator) Generate(ctx context.Context, req Request) (*Result, error) {
	if req.Pack == nil {
		return nil, fmt.Errorf("generate %s: no template pack", req.Selectors.Target)
	}
	sel := selectors(req)

	logging.DebugContext(ctx, "Generation %s: %s", sel.Target, StateResolving)
	resolved, err := g.resolver.Resolve(sel, req.Pack)
	if err != nil {
		logging.DebugContext(ctx, "Generation %s: %s", sel.Target, StateFailed)
		return nil, err
	}

	logging.DebugContext(ctx, "Generation %s: %s %d entries", sel.Target, StateRendering, len(resolved))
	base := buildContext(req, sel, g.author)
	rendered, err := g.renderAll(resolved, base)
	if err != nil {
		logging.DebugContext(ctx, "Generation %s: %s", sel.Target, StateFailed)
		return nil, err
	}
	plan, err := combine(rendered)
	if err != nil {
		logging.DebugContext(ctx, "Generation %s: %s", sel.Target, StateFailed)
		return nil, err
	}

	logging.DebugContext(ctx, "Generation %s: %s %d artifacts", sel.Target, StateWriting, len(plan))
	result := &Result{Artifacts: make([]Artifact, 0, len(plan))}
	for _, p := range plan {
		art := g.write(ctx, req.Root, p, req.Options)
		if art.Err != nil {
			logging.WarnContext(ctx, "Failed to write %s: %v", art.Path, art.Err)
		}
		for _, c := range art.Conflicts {
			result.Conflicts = append(result.Conflicts, Conflict{Path: art.Path, Conflict: c})
		}
		result.Artifacts = append(result.Artifacts, art)
	}

	logging.DebugContext(ctx, "Generation %s: %s", sel.Target, StateCompleted)
	return result, nil
}

// selectors fills empty request selectors from the project settings.
func selectors(req Request) resolver.Selectors {
	sel := req.Selectors
	if p := req.Project; p != nil {
		if sel.Architecture == "" {
			sel.Architecture = p.Architecture
		}
		if sel.Framework == "" {
			sel.Framework = p.Framework
		}
		if sel.Paradigm == "" {
			sel.Paradigm = p.Paradigm
		}
	}
	return sel
}

// renderAll renders every resolved entry. The first failure aborts.
func (g *Generator) renderAll(resolved []resolver.Resolved, base render.Context) ([]planned, error) {
	var out []planned
	for _, res := range resolved {
		e := res.Entry
		ctx := base.With(render.Context{
			"entry": map[string]any{"path": e.Path(), "level": int(res.Level)},
		})

		body, err := g.renderer.Render(e.Path(), e.Body(), ctx)
		if err != nil {
			return nil, err
		}

		if e.Kind() == templates.KindStructure {
			dirs, err := parseStructure(e.Path(), body)
			if err != nil {
				return nil, err
			}
			for _, dir := range dirs {
				out = append(out, planned{path: dir, kind: templates.ArtifactDirectory, template: e.Path(), level: res.Level})
			}
			continue
		}

		target, err := g.renderer.Render(e.Path()+"#output", res.Identity(), ctx)
		if err != nil {
			return nil, err
		}
		target, err = cleanTarget(target)
		if err != nil {
			return nil, errors.Wrap("render output path", e.Path(), err)
		}

		kind := e.Meta().Artifact
		if kind == "" {
			kind = templates.InferArtifactKind(target)
		}
		out = append(out, planned{
			path:     target,
			kind:     kind,
			template: e.Path(),
			level:    res.Level,
			content:  []byte(body),
			hints:    e.Meta().Merge,
		})
	}
	return out, nil
}

// cleanTarget normalizes a rendered output path and keeps it inside the
// target root.
func cleanTarget(p string) (string, error) {
	p = strings.TrimSpace(p)
	if p == "" {
		return "", errors.New("output path is empty")
	}
	if path.IsAbs(p) || strings.HasPrefix(p, `\`) {
		return "", fmt.Errorf("output path %q must be relative", p)
	}
	clean := path.Clean(p)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("output path %q leaves the target root", p)
	}
	return clean, nil
}

// combine folds artifacts that render to the same path. Mergeable kinds
// are merged in memory in resolution order; for other kinds the higher
// ranked render stays, and on equal rank the first one does.
func combine(rendered []planned) ([]planned, error) {
	var out []planned
	index := map[string]int{}
	for _, p := range rendered {
		i, dup := index[p.path]
		if !dup {
			index[p.path] = len(out)
			out = append(out, p)
			continue
		}
		cur := &out[i]
		switch {
		case cur.kind == templates.ArtifactDirectory && p.kind == templates.ArtifactDirectory:
		case cur.kind.Mergeable() && cur.kind == p.kind:
			merged, plan, err := merge.Merge(cur.content, p.content, p.path, p.kind, p.hints)
			if err != nil {
				return nil, errors.Wrap("combine templates", cur.template+" and "+p.template, err)
			}
			cur.content = merged
			cur.notes = append(cur.notes, plan.Notes...)
			cur.conflicts = append(cur.conflicts, plan.Conflicts...)
			cur.template += ", " + p.template
		case p.level > cur.level:
			*cur = p
		default:
			cur.notes = append(cur.notes, fmt.Sprintf("%s also renders this path and was ignored", p.template))
		}
	}
	return out, nil
}
