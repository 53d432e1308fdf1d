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

package merge

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/cowdogmoo/archgen/document"
)

// Scopes a dependency can be placed in.
const (
	ScopeMain = "main"
	ScopeTest = "test"
)

// Build merges fragment into a copy of existing. Dependencies are keyed by
// group and artifact, plugins by id and includes by module name.
func Build(existing, fragment *document.BuildDescriptor, hints Hints) (*document.BuildDescriptor, *Plan) {
	out := existing.CloneBuild()
	plan := &Plan{}

	for _, p := range fragment.Plugins() {
		key := "plugin " + p.ID
		have, ok := out.Plugin(p.ID)
		if ok {
			plan.Unchanged = append(plan.Unchanged, key)
			if note := versionNote(key, have.Version, p.Version); note != "" {
				plan.Notes = append(plan.Notes, note)
			}
			continue
		}
		if err := out.AddPlugin(p); err != nil {
			plan.Notes = append(plan.Notes, err.Error())
			continue
		}
		plan.Additions = append(plan.Additions, key)
	}

	for _, dep := range fragment.Dependencies() {
		key := "dependency " + dep.Key()
		have, ok := out.Dependency(dep.Key())
		if ok {
			plan.Unchanged = append(plan.Unchanged, key)
			if note := versionNote(key, have.Version, dep.Version); note != "" {
				plan.Notes = append(plan.Notes, note)
			}
			continue
		}
		scope := hints.Scope
		if scope == "" {
			scope = scopeOf(dep, hints)
		}
		after := func(d document.Dependency) bool { return scopeOf(d, hints) == scope }
		if err := out.AddDependency(dep, after); err != nil {
			plan.Notes = append(plan.Notes, err.Error())
			continue
		}
		plan.Additions = append(plan.Additions, key)
	}

	for _, module := range fragment.Includes() {
		key := "include " + strings.TrimPrefix(module, ":")
		if out.HasInclude(module) {
			plan.Unchanged = append(plan.Unchanged, key)
			continue
		}
		if err := out.AddInclude(module); err != nil {
			plan.Notes = append(plan.Notes, err.Error())
			continue
		}
		plan.Additions = append(plan.Additions, key)
	}

	return out, plan
}

// scopeOf classifies a declaration by its configuration name.
func scopeOf(d document.Dependency, hints Hints) string {
	if len(hints.TestConfigurations) > 0 {
		if slices.Contains(hints.TestConfigurations, d.Configuration) {
			return ScopeTest
		}
		return ScopeMain
	}
	if strings.HasPrefix(d.Configuration, "test") {
		return ScopeTest
	}
	return ScopeMain
}

// versionNote describes a version the template declares that differs from
// the one kept. It is empty when the versions match or either is unset.
func versionNote(key, kept, declared string) string {
	if kept == "" || declared == "" || kept == declared {
		return ""
	}
	k, errK := semver.NewVersion(kept)
	d, errD := semver.NewVersion(declared)
	switch {
	case errK == nil && errD == nil && d.GreaterThan(k):
		return fmt.Sprintf("%s: upgrade available, keeping %s, template declares %s", key, kept, declared)
	case errK == nil && errD == nil:
		return fmt.Sprintf("%s: keeping %s, template declares older %s", key, kept, declared)
	}
	return fmt.Sprintf("%s: keeping %s, template declares %s", key, kept, declared)
}
