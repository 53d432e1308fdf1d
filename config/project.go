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

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/cowdogmoo/archgen/errors"
	"gopkg.in/yaml.v3"
)

// ProjectFileName is the name of the per-project settings file written by
// "archgen init" into the project root.
const ProjectFileName = "archgen.yaml"

var (
	basePackagePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*(\.[a-zA-Z_][a-zA-Z0-9_]*)*$`)
	paradigmPattern    = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)
)

// ProjectSettings are the project-level invariants fed into every render
// context: naming, selectors chosen at init time, the template source and
// dependency versions.
type ProjectSettings struct {
	Name         string            `yaml:"name"`
	BasePackage  string            `yaml:"base_package"`
	Architecture string            `yaml:"architecture"`
	Framework    string            `yaml:"framework"`
	Paradigm     string            `yaml:"paradigm"`
	Templates    ProjectTemplates  `yaml:"templates,omitempty"`
	Versions     map[string]string `yaml:"versions,omitempty"`
	Variables    map[string]any    `yaml:"variables,omitempty"`
}

// ProjectTemplates names the template pack a project was generated from.
type ProjectTemplates struct {
	// Source is a local directory or a remote git/archive URL.
	Source string `yaml:"source,omitempty"`
	// Ref is a branch, tag or version for remote sources.
	Ref string `yaml:"ref,omitempty"`
}

// DefaultProjectSettings returns settings with archgen's defaults filled in.
func DefaultProjectSettings() *ProjectSettings {
	return &ProjectSettings{
		Framework: "spring",
		Paradigm:  "imperative",
		Versions:  map[string]string{},
		Variables: map[string]any{},
	}
}

// LoadProject reads archgen.yaml from dir. Missing fields keep their
// defaults.
func LoadProject(dir string) (*ProjectSettings, error) {
	path := filepath.Join(dir, ProjectFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap("read project file", path, err)
	}

	settings := DefaultProjectSettings()
	if err := yaml.Unmarshal(data, settings); err != nil {
		return nil, errors.Wrap("parse project file", path, err)
	}
	if err := settings.Validate(); err != nil {
		return nil, errors.Wrap("validate project file", path, err)
	}
	return settings, nil
}

// SaveProject writes settings to dir/archgen.yaml.
func SaveProject(dir string, settings *ProjectSettings) error {
	data, err := yaml.Marshal(settings)
	if err != nil {
		return errors.Wrap("marshal project file", "", err)
	}
	path := filepath.Join(dir, ProjectFileName)
	if err := os.WriteFile(path, data, FilePermReadWrite); err != nil {
		return errors.Wrap("write project file", path, err)
	}
	return nil
}

// Validate checks the shape of the fields every generation needs. Whether
// the paradigm exists is decided by the pack at resolution time.
func (p *ProjectSettings) Validate() error {
	if p.BasePackage != "" && !basePackagePattern.MatchString(p.BasePackage) {
		return fmt.Errorf("base_package %q is not a valid Java package name", p.BasePackage)
	}
	if p.Paradigm != "" && !paradigmPattern.MatchString(p.Paradigm) {
		return fmt.Errorf("paradigm %q is not a valid paradigm name", p.Paradigm)
	}
	return nil
}
