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
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/cowdogmoo/archgen/errors"
	"gopkg.in/yaml.v3"
)

// Manifest is the pack.yaml at the root of every pack.
type Manifest struct {
	Name        string `yaml:"name" json:"name" jsonschema:"required,description=Pack identifier"`
	Version     string `yaml:"version,omitempty" json:"version,omitempty" jsonschema:"description=Semantic version of the pack"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Author      string `yaml:"author,omitempty" json:"author,omitempty"`
	// Requires is a semantic version constraint on the archgen version.
	Requires string `yaml:"requires,omitempty" json:"requires,omitempty" jsonschema:"description=Semver constraint the archgen version must satisfy,example=>= 0.1.0"`
	// Paradigms lists the paradigms every adapter type must support.
	Paradigms []string `yaml:"paradigms,omitempty" json:"paradigms,omitempty" jsonschema:"description=Paradigms each adapter type must provide templates for"`
	// Variables extends the vocabulary templates may reference.
	Variables []Variable `yaml:"variables,omitempty" json:"variables,omitempty"`
}

// Variable declares a pack-specific render context key.
type Variable struct {
	Name        string `yaml:"name" json:"name" jsonschema:"required"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	// Default is used when the request context does not set the variable.
	Default any `yaml:"default,omitempty" json:"default,omitempty"`
}

// VariableNames returns the declared variable names.
func (m *Manifest) VariableNames() []string {
	names := make([]string, 0, len(m.Variables))
	for _, v := range m.Variables {
		names = append(names, v.Name)
	}
	return names
}

// Defaults returns the declared variables that carry a default value.
func (m *Manifest) Defaults() map[string]any {
	out := map[string]any{}
	for _, v := range m.Variables {
		if v.Default != nil {
			out[v.Name] = v.Default
		}
	}
	return out
}

// ParseManifest decodes pack.yaml. Unknown keys are rejected.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("parse %s: %w", ManifestFile, err)
	}
	if strings.TrimSpace(m.Name) == "" {
		return nil, fmt.Errorf("%s: name is required", ManifestFile)
	}
	for i, v := range m.Variables {
		if v.Name == "" {
			return nil, fmt.Errorf("%s: variables[%d] has no name", ManifestFile, i)
		}
	}
	return &m, nil
}

// Meta is the front matter of a template.
type Meta struct {
	// Output is the target path pattern relative to the target root. It is
	// rendered like the body.
	Output string `yaml:"output,omitempty" json:"output,omitempty" jsonschema:"description=Target path pattern relative to the target root"`
	// Artifact overrides the kind inferred from the output file name.
	Artifact ArtifactKind `yaml:"artifact,omitempty" json:"artifact,omitempty" jsonschema:"enum=opaque-text,enum=structured-config,enum=structured-build-descriptor,enum=directory"`
	// Merge carries hints for structured merges.
	Merge MergeHints `yaml:"merge,omitempty" json:"merge,omitempty"`
	// Mandatory marks the entry as the base template for its level.
	Mandatory bool `yaml:"mandatory,omitempty" json:"mandatory,omitempty"`
}

// MergeHints tune how a rendered fragment merges into an existing file.
type MergeHints struct {
	// Scope places new dependencies among "main" or "test" dependencies.
	// Empty means each dependency's configuration decides.
	Scope string `yaml:"scope,omitempty" json:"scope,omitempty" jsonschema:"enum=main,enum=test"`
	// TestConfigurations names configurations that count as test scope. The
	// default is every configuration starting with "test".
	TestConfigurations []string `yaml:"test_configurations,omitempty" json:"test_configurations,omitempty"`
}

const frontMatterDelim = "---"

// splitFrontMatter separates a leading front matter block from the body.
// Content without an opening delimiter line has no front matter.
func splitFrontMatter(content string) (Meta, string, error) {
	var meta Meta

	first, rest, ok := cutLine(content)
	if !ok || strings.TrimRight(first, " \t\r") != frontMatterDelim {
		return meta, content, nil
	}

	var header strings.Builder
	for {
		line, next, more := cutLine(rest)
		if strings.TrimRight(line, " \t\r") == frontMatterDelim {
			rest = next
			break
		}
		if !more {
			return meta, content, fmt.Errorf("front matter is not closed by %q", frontMatterDelim)
		}
		header.WriteString(line)
		header.WriteByte('\n')
		rest = next
	}

	dec := yaml.NewDecoder(strings.NewReader(header.String()))
	dec.KnownFields(true)
	if err := dec.Decode(&meta); err != nil && !errors.Is(err, io.EOF) {
		return Meta{}, rest, fmt.Errorf("parse front matter: %w", err)
	}
	if meta.Artifact != "" && !meta.Artifact.Valid() {
		return meta, rest, fmt.Errorf("unknown artifact kind %q", meta.Artifact)
	}
	switch meta.Merge.Scope {
	case "", "main", "test":
	default:
		return meta, rest, fmt.Errorf("unknown merge scope %q", meta.Merge.Scope)
	}
	return meta, rest, nil
}

// cutLine splits s after its first newline. more is false when s has no
// newline.
func cutLine(s string) (line, rest string, more bool) {
	line, rest, more = strings.Cut(s, "\n")
	return line, rest, more
}
