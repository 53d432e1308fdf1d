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
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/cowdogmoo/archgen/templates"
)

// Problem is one defect found in a pack.
type Problem struct {
	TemplatePath string `json:"template_path"`
	Problem      string `json:"problem"`
}

func (p Problem) String() string {
	return p.TemplatePath + ": " + p.Problem
}

// ValidationReport lists the problems of a pack, ordered by path.
type ValidationReport struct {
	Pack     string    `json:"pack"`
	Problems []Problem `json:"problems"`
}

// OK reports whether the pack has no problems.
func (r *ValidationReport) OK() bool { return len(r.Problems) == 0 }

func (r *ValidationReport) add(p, format string, args ...any) {
	r.Problems = append(r.Problems, Problem{TemplatePath: p, Problem: fmt.Sprintf(format, args...)})
}

// Validate checks a pack without rendering it. Reported are unreadable
// front matter, template parse errors, variables outside the vocabulary of
// the entry's component and pack.yaml, architectures without project
// templates, adapter types missing a declared paradigm and a requires
// constraint vm does not satisfy. A nil vm skips the version check.
func Validate(pack *templates.Pack, vm *templates.VersionManager) *ValidationReport {
	report := &ValidationReport{Pack: pack.ID(), Problems: []Problem{}}
	manifest := pack.Manifest()
	var extra []string
	if manifest != nil {
		extra = manifest.VariableNames()
	}

	if manifest != nil && vm != nil {
		ok, _, err := vm.CheckCompatibility(manifest.Requires)
		switch {
		case err != nil:
			report.add(templates.ManifestFile, "%v", err)
		case !ok:
			report.add(templates.ManifestFile, "requires archgen %s", manifest.Requires)
		}
	}

	for e := range pack.Entries("") {
		if e.Kind() == templates.KindMetadata {
			continue
		}
		if err := e.MetaErr(); err != nil {
			report.add(e.Path(), "front matter: %v", err)
		}
		if err := e.ScanErr(); err != nil {
			report.add(e.Path(), "template: %v", err)
			continue
		}
		known := append(vocabulary(componentOf(e.Path())), extra...)
		var unknown []string
		for _, v := range e.Variables() {
			if !slices.Contains(known, v) {
				unknown = append(unknown, v)
			}
		}
		if len(unknown) > 0 {
			report.add(e.Path(), "undeclared variables: %s", strings.Join(unknown, ", "))
		}
	}

	for _, arch := range pack.Children(templates.ArchitecturesDir) {
		dir := path.Join(templates.ArchitecturesDir, arch)
		if !hasEntries(pack, path.Join(dir, templates.ComponentProject)) {
			report.add(dir, "architecture has no %s templates", templates.ComponentProject)
		}
	}

	if manifest != nil && len(manifest.Paradigms) > 0 {
		for _, direction := range []string{"output", "input"} {
			directionDir := path.Join(templates.AdaptersDir, direction)
			for _, typ := range pack.Children(directionDir) {
				typeDir := path.Join(directionDir, typ)
				children := pack.Children(typeDir)
				var defined, missing []string
				for _, p := range manifest.Paradigms {
					if slices.Contains(children, p) {
						defined = append(defined, p)
					} else {
						missing = append(missing, p)
					}
				}
				// Types without paradigm directories serve every paradigm.
				if len(defined) > 0 && len(missing) > 0 {
					report.add(typeDir, "no templates for paradigm %s", strings.Join(missing, ", "))
				}
			}
		}
	}

	slices.SortStableFunc(report.Problems, func(a, b Problem) int {
		return strings.Compare(a.TemplatePath, b.TemplatePath)
	})
	return report
}

// componentOf returns the component an entry path belongs to.
func componentOf(p string) string {
	parts := strings.Split(p, "/")
	switch {
	case parts[0] == templates.ArchitecturesDir && len(parts) > 2:
		return parts[2]
	case parts[0] == templates.FrameworksDir && len(parts) > 3:
		return parts[3]
	case parts[0] == templates.AdaptersDir && len(parts) > 1:
		return parts[1] + "-adapter"
	}
	return ""
}

func hasEntries(pack *templates.Pack, prefix string) bool {
	for range pack.Entries(prefix) {
		return true
	}
	return false
}
