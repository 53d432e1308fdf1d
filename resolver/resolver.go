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

// Package resolver selects the template entries that apply to a generation
// request.
//
// A request draws templates from up to four levels of a pack, ranked from
// least to most specific:
//
//	1 architecture       architectures/<arch>/<component>
//	2 framework/paradigm frameworks/<framework>/<paradigm>/<component>
//	3 adapter type       adapters/<direction>/<type>
//	4 adapter+paradigm   adapters/<direction>/<type>/<paradigm>
//
// Two entries claiming the same output at different levels resolve to the
// higher ranked one. The rank is fixed per level and never derived from the
// depth of a path.
package resolver

import (
	"cmp"
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/cowdogmoo/archgen/errors"
	"github.com/cowdogmoo/archgen/templates"
)

// Target is the kind of generation a request performs.
type Target string

// Targets.
const (
	TargetInitProject   Target = "init-project"
	TargetEntity        Target = "generate-entity"
	TargetUseCase       Target = "generate-use-case"
	TargetOutputAdapter Target = "generate-output-adapter"
	TargetInputAdapter  Target = "generate-input-adapter"
)

// Targets lists every target kind.
var Targets = []Target{TargetInitProject, TargetEntity, TargetUseCase, TargetOutputAdapter, TargetInputAdapter}

// Component returns the component directory the target reads from.
func (t Target) Component() string {
	switch t {
	case TargetInitProject:
		return templates.ComponentProject
	case TargetEntity:
		return templates.ComponentEntity
	case TargetUseCase:
		return templates.ComponentUseCase
	case TargetOutputAdapter:
		return templates.ComponentOutputAdapter
	case TargetInputAdapter:
		return templates.ComponentInputAdapter
	}
	return ""
}

// Direction returns "output" or "input" for adapter targets and "" otherwise.
func (t Target) Direction() string {
	switch t {
	case TargetOutputAdapter:
		return "output"
	case TargetInputAdapter:
		return "input"
	}
	return ""
}

// IsAdapter reports whether the target generates an adapter.
func (t Target) IsAdapter() bool { return t.Direction() != "" }

// Valid reports whether t is a known target.
func (t Target) Valid() bool { return t.Component() != "" }

// Level is the rank of a template level. Higher ranks override lower ones.
type Level int

// Levels in ascending specificity.
const (
	LevelArchitecture    Level = 1
	LevelFramework       Level = 2
	LevelAdapter         Level = 3
	LevelAdapterParadigm Level = 4
)

func (l Level) String() string {
	switch l {
	case LevelArchitecture:
		return "architecture"
	case LevelFramework:
		return "framework"
	case LevelAdapter:
		return "adapter"
	case LevelAdapterParadigm:
		return "adapter-paradigm"
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// defaultParadigms are always treated as paradigm directories below an
// adapter type, in addition to the paradigms a pack declares.
var defaultParadigms = []string{"imperative", "reactive"}

// Selectors are the request fields that pick templates.
type Selectors struct {
	Target       Target
	Architecture string
	Framework    string
	Paradigm     string
	// AdapterType names the adapter for adapter targets, e.g. "redis".
	AdapterType string
}

// Resolved is one selected entry and where it was found.
type Resolved struct {
	Entry *templates.Entry
	Level Level
	// Prefix is the level directory the entry lives under.
	Prefix string
}

// Identity is the output an entry claims: its front matter output pattern,
// or its path relative to the level directory.
func (r Resolved) Identity() string {
	return r.Entry.OutputPattern(r.Prefix)
}

// Resolver computes the ordered entry list for a request.
type Resolver struct{}

// New returns a Resolver.
func New() *Resolver {
	return &Resolver{}
}

type level struct {
	rank   Level
	prefix string
	// exclude drops entries below these child directories of prefix.
	exclude []string
}

// Resolve returns the entries that apply to sel, ordered by level rank and
// then path. It fails with an *errors.ResolveError of kind
// ErrTemplateNotFound when the mandatory base is missing, or
// ErrUnsupportedSelector when the selector combination has no templates.
func (r *Resolver) Resolve(sel Selectors, pack *templates.Pack) ([]Resolved, error) {
	if !sel.Target.Valid() {
		return nil, &errors.ResolveError{
			Kind:        errors.ErrUnsupportedSelector,
			Path:        string(sel.Target),
			Reason:      "unknown target",
			Suggestions: suggest(string(sel.Target), targetNames()),
		}
	}

	levels, err := r.levels(sel, pack)
	if err != nil {
		return nil, err
	}

	chosen := map[string][]Resolved{}
	for _, lv := range levels {
		for e := range pack.Entries(lv.prefix) {
			if skipped(e, lv) {
				continue
			}
			res := Resolved{Entry: e, Level: lv.rank, Prefix: lv.prefix}
			id := res.Identity()
			prev := chosen[id]
			switch {
			case len(prev) == 0 || prev[0].Level < res.Level:
				chosen[id] = []Resolved{res}
			case prev[0].Level == res.Level:
				// Same output twice on one level: both stay, the
				// generator merges or reports them.
				chosen[id] = append(prev, res)
			}
		}
	}

	if len(chosen) == 0 {
		return nil, &errors.ResolveError{
			Kind:   errors.ErrUnsupportedSelector,
			Path:   describe(sel),
			Reason: "no templates at any level",
		}
	}

	var out []Resolved
	for _, group := range chosen {
		out = append(out, group...)
	}
	slices.SortFunc(out, func(a, b Resolved) int {
		if c := cmp.Compare(a.Level, b.Level); c != 0 {
			return c
		}
		return strings.Compare(a.Entry.Path(), b.Entry.Path())
	})
	return out, nil
}

func skipped(e *templates.Entry, lv level) bool {
	if e.Kind() == templates.KindMetadata {
		return true
	}
	if len(lv.exclude) == 0 {
		return false
	}
	rest := strings.TrimPrefix(e.Path(), lv.prefix+"/")
	child, _, nested := strings.Cut(rest, "/")
	return nested && slices.Contains(lv.exclude, child)
}

// levels checks the selectors against the pack and lists the level
// directories to read, lowest rank first.
func (r *Resolver) levels(sel Selectors, pack *templates.Pack) ([]level, error) {
	component := sel.Target.Component()
	declared := declaredParadigms(pack)
	paradigms := knownParadigms(declared)

	if sel.Paradigm != "" && len(declared) > 0 && !slices.Contains(declared, sel.Paradigm) {
		return nil, &errors.ResolveError{
			Kind:        errors.ErrUnsupportedSelector,
			Path:        "paradigm " + sel.Paradigm,
			Reason:      fmt.Sprintf("pack %s supports %s", pack.ID(), strings.Join(declared, ", ")),
			Suggestions: suggest(sel.Paradigm, declared),
		}
	}

	var levels []level

	// Architecture level. Mandatory for everything except adapters, which
	// may live entirely under adapters/.
	if sel.Architecture == "" && !sel.Target.IsAdapter() {
		return nil, &errors.ResolveError{
			Kind:   errors.ErrUnsupportedSelector,
			Path:   templates.ArchitecturesDir,
			Reason: "an architecture is required for " + string(sel.Target),
		}
	}
	if sel.Architecture != "" {
		archDir := path.Join(templates.ArchitecturesDir, sel.Architecture)
		known := pack.Children(templates.ArchitecturesDir)
		if !slices.Contains(known, sel.Architecture) {
			return nil, &errors.ResolveError{
				Kind:        errors.ErrTemplateNotFound,
				Path:        archDir,
				Reason:      "unknown architecture",
				Suggestions: suggest(sel.Architecture, known),
			}
		}
		prefix := path.Join(archDir, component)
		if !sel.Target.IsAdapter() && !hasEntries(pack, prefix) {
			return nil, &errors.ResolveError{
				Kind:   errors.ErrTemplateNotFound,
				Path:   prefix,
				Reason: "architecture defines no " + component + " templates",
			}
		}
		levels = append(levels, level{rank: LevelArchitecture, prefix: prefix})
	}

	// Framework/paradigm level. Optional.
	if sel.Framework != "" {
		known := pack.Children(templates.FrameworksDir)
		if len(known) > 0 && !slices.Contains(known, sel.Framework) {
			return nil, &errors.ResolveError{
				Kind:        errors.ErrUnsupportedSelector,
				Path:        path.Join(templates.FrameworksDir, sel.Framework),
				Reason:      "unknown framework",
				Suggestions: suggest(sel.Framework, known),
			}
		}
		if sel.Paradigm != "" {
			levels = append(levels, level{
				rank:   LevelFramework,
				prefix: path.Join(templates.FrameworksDir, sel.Framework, sel.Paradigm, component),
			})
		}
	}

	// Adapter levels. The type directory is the mandatory base.
	if sel.Target.IsAdapter() {
		dirs, err := adapterLevels(sel, pack, paradigms)
		if err != nil {
			return nil, err
		}
		levels = append(levels, dirs...)
	}

	return levels, nil
}

func adapterLevels(sel Selectors, pack *templates.Pack, paradigms []string) ([]level, error) {
	directionDir := path.Join(templates.AdaptersDir, sel.Target.Direction())
	typeDir := path.Join(directionDir, sel.AdapterType)

	if sel.AdapterType == "" {
		return nil, &errors.ResolveError{
			Kind:   errors.ErrUnsupportedSelector,
			Path:   directionDir,
			Reason: "an adapter type is required for " + string(sel.Target),
		}
	}
	if !hasEntries(pack, typeDir) {
		return nil, &errors.ResolveError{
			Kind:        errors.ErrTemplateNotFound,
			Path:        typeDir,
			Reason:      "unknown " + sel.Target.Direction() + " adapter type",
			Suggestions: suggest(sel.AdapterType, pack.Children(directionDir)),
		}
	}

	var defined []string
	for _, child := range pack.Children(typeDir) {
		if slices.Contains(paradigms, child) {
			defined = append(defined, child)
		}
	}
	if sel.Paradigm != "" && len(defined) > 0 && !slices.Contains(defined, sel.Paradigm) {
		return nil, &errors.ResolveError{
			Kind:   errors.ErrUnsupportedSelector,
			Path:   path.Join(typeDir, sel.Paradigm),
			Reason: fmt.Sprintf("adapter type %s only defines %s templates", sel.AdapterType, strings.Join(defined, ", ")),
		}
	}

	levels := []level{{rank: LevelAdapter, prefix: typeDir, exclude: paradigms}}
	if sel.Paradigm != "" && slices.Contains(defined, sel.Paradigm) {
		levels = append(levels, level{rank: LevelAdapterParadigm, prefix: path.Join(typeDir, sel.Paradigm)})
	}
	return levels, nil
}

func hasEntries(pack *templates.Pack, prefix string) bool {
	for range pack.Entries(prefix) {
		return true
	}
	return false
}

func declaredParadigms(pack *templates.Pack) []string {
	if m := pack.Manifest(); m != nil {
		return m.Paradigms
	}
	return nil
}

func knownParadigms(declared []string) []string {
	out := append(slices.Clone(defaultParadigms), declared...)
	slices.Sort(out)
	return slices.Compact(out)
}

func targetNames() []string {
	names := make([]string, 0, len(Targets))
	for _, t := range Targets {
		names = append(names, string(t))
	}
	return names
}

func describe(sel Selectors) string {
	parts := []string{string(sel.Target)}
	for _, s := range []string{sel.Architecture, sel.Framework, sel.Paradigm, sel.AdapterType} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "/")
}
