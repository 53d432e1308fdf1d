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

// Package merge combines a freshly rendered structured artifact with the
// copy already on disk without losing edits made to it.
//
// Configuration documents merge key by key: missing keys are inserted,
// identical keys are left alone and keys holding a different value are
// reported as conflicts while the existing value stays. Build descriptors
// merge as sets of dependencies, plugins and included modules; an existing
// dependency keeps its version and a differing template version becomes an
// upgrade note.
//
// Merging never fails because of a conflict, and merging a fragment into
// its own merged output changes nothing.
package merge

import (
	"fmt"
	"path"
	"slices"

	"github.com/cowdogmoo/archgen/document"
	"github.com/cowdogmoo/archgen/errors"
	"github.com/cowdogmoo/archgen/templates"
)

// Hints tune where new build entries are placed.
type Hints = templates.MergeHints

// Conflict is a key present in both documents with different values. Old
// is kept in the output.
type Conflict struct {
	Key string `json:"key"`
	Old string `json:"old"`
	New string `json:"new"`
}

// Plan describes what a merge did.
type Plan struct {
	Additions []string   `json:"additions,omitempty"`
	Conflicts []Conflict `json:"conflicts,omitempty"`
	Unchanged []string   `json:"unchanged,omitempty"`
	Notes     []string   `json:"notes,omitempty"`
}

// Changed reports whether the merge added anything.
func (p *Plan) Changed() bool {
	return len(p.Additions) > 0
}

// HasConflicts reports whether any key conflicted.
func (p *Plan) HasConflicts() bool {
	return len(p.Conflicts) > 0
}

// Combine appends the entries of other to p.
func (p *Plan) Combine(other *Plan) {
	if other == nil {
		return
	}
	p.Additions = append(p.Additions, other.Additions...)
	p.Conflicts = append(p.Conflicts, other.Conflicts...)
	p.Unchanged = append(p.Unchanged, other.Unchanged...)
	p.Notes = append(p.Notes, other.Notes...)
}

// Config merges fragment into a copy of existing. existing is not
// modified.
func Config(existing, fragment document.Document) (document.Document, *Plan) {
	out := existing.Clone()
	plan := &Plan{}
	mergeNode(out, nil, out.Root(), fragment.Root(), plan)
	return out, plan
}

func mergeNode(doc document.Document, path []string, have, want *document.Node, plan *Plan) {
	if have.Kind != document.MappingNode || want.Kind != document.MappingNode {
		compare(path, have, want, plan)
		return
	}
	for _, f := range want.Fields {
		key := append(slices.Clone(path), f.Key)
		cur := have.Get(f.Key)
		switch {
		case cur == nil:
			if err := doc.Insert(key, f.Value); err != nil {
				// Refused by the codec, e.g. a key under a YAML alias. Surface
				// it without touching the existing text.
				plan.Conflicts = append(plan.Conflicts, Conflict{Key: document.KeyString(key), New: f.Value.String()})
				continue
			}
			plan.Additions = append(plan.Additions, document.KeyString(key))
		case cur.Kind == document.MappingNode && f.Value.Kind == document.MappingNode:
			mergeNode(doc, key, cur, f.Value, plan)
		default:
			compare(key, cur, f.Value, plan)
		}
	}
}

func compare(path []string, have, want *document.Node, plan *Plan) {
	key := document.KeyString(path)
	if key == "" {
		key = "(root)"
	}
	if have.Equal(want) {
		plan.Unchanged = append(plan.Unchanged, key)
		return
	}
	plan.Conflicts = append(plan.Conflicts, Conflict{Key: key, Old: have.String(), New: want.String()})
}

// Merge parses existing and fragment with the codec chosen by filePath and
// merges them as kind. When nothing is added the existing bytes are
// returned unchanged, so re-merging leaves the file byte for byte intact.
func Merge(existing, fragment []byte, filePath string, kind templates.ArtifactKind, hints Hints) ([]byte, *Plan, error) {
	var (
		merged document.Document
		plan   *Plan
	)
	switch kind {
	case templates.ArtifactConfig:
		have, err := document.Parse(filePath, existing)
		if err != nil {
			return nil, nil, errors.Wrap("parse existing file", filePath, err)
		}
		want, err := document.Parse(filePath, fragment)
		if err != nil {
			return nil, nil, errors.Wrap("parse rendered fragment", filePath, err)
		}
		merged, plan = Config(have, want)
	case templates.ArtifactBuild:
		name := path.Base(filePath)
		have, err := document.ParseBuild(name, existing)
		if err != nil {
			return nil, nil, errors.Wrap("parse existing file", filePath, err)
		}
		want, err := document.ParseBuild(name, fragment)
		if err != nil {
			return nil, nil, errors.Wrap("parse rendered fragment", filePath, err)
		}
		merged, plan = Build(have, want, hints)
	default:
		return nil, nil, fmt.Errorf("merge %s: %s artifacts are not mergeable", filePath, kind)
	}

	if !plan.Changed() {
		return existing, plan, nil
	}
	out, err := merged.Bytes()
	if err != nil {
		return nil, nil, errors.Wrap("serialize merged file", filePath, err)
	}
	return out, plan, nil
}
