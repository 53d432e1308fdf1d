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
	"fmt"
	"io/fs"
	"slices"
	"strings"

	"github.com/cowdogmoo/archgen/config"
	"github.com/cowdogmoo/archgen/errors"
	"github.com/cowdogmoo/archgen/logging"
	"github.com/spf13/viper"
)

// Manager handles template source management: adding and removing named
// repositories and local pack directories, and persisting them to the
// config file.
type Manager struct {
	config     *config.Config
	validator  *PathValidator
	configPath func() (string, error)
}

// NewManager creates a new template manager with the given configuration.
func NewManager(cfg *config.Config) *Manager {
	return &Manager{
		config:     cfg,
		validator:  NewPathValidator(),
		configPath: func() (string, error) { return config.ConfigFile("config.yaml") },
	}
}

// NamedSource is a configured template source.
type NamedSource struct {
	Name   string
	Source Source
}

// Sources lists the configured sources: the default source first, then
// named repositories sorted by name, then local paths in configured order.
func (m *Manager) Sources() []NamedSource {
	var out []NamedSource
	t := m.config.Templates
	if t.DefaultSource != "" {
		out = append(out, NamedSource{Name: "default", Source: Source{Location: t.DefaultSource, Ref: t.DefaultRef}})
	}

	names := make([]string, 0, len(t.Repositories))
	for name := range t.Repositories {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		out = append(out, NamedSource{Name: name, Source: Source{Location: t.Repositories[name], Ref: t.DefaultRef}})
	}

	for _, p := range t.LocalPaths {
		out = append(out, NamedSource{Name: "local:" + p, Source: Source{Location: p}})
	}
	return out
}

// Lookup turns a repository name, a URL or a path into a Source. Empty
// names resolve to the default source.
func (m *Manager) Lookup(nameOrLocation, ref string) (Source, error) {
	t := m.config.Templates
	if ref == "" {
		ref = t.DefaultRef
	}

	switch {
	case nameOrLocation == "" || nameOrLocation == "default":
		if t.DefaultSource == "" {
			return Source{}, fmt.Errorf("no template source given and templates.default_source is not set")
		}
		return Source{Location: t.DefaultSource, Ref: ref}, nil
	case t.Repositories[nameOrLocation] != "":
		return Source{Location: t.Repositories[nameOrLocation], Ref: ref}, nil
	case m.validator.IsRemote(nameOrLocation):
		return Source{Location: nameOrLocation, Ref: ref}, nil
	}

	path, err := m.validator.ExpandPath(nameOrLocation)
	if err != nil {
		return Source{}, err
	}
	return Source{Location: path}, nil
}

// AddGitRepository adds a remote repository or archive to template sources.
// If name is empty, it is derived from the URL.
func (m *Manager) AddGitRepository(ctx context.Context, name, gitURL string) error {
	if m.config.Templates.Repositories == nil {
		m.config.Templates.Repositories = make(map[string]string)
	}

	if name == "" {
		name = ExtractRepoName(gitURL)
	}

	if !m.validator.IsRemote(gitURL) {
		return fmt.Errorf("invalid repository URL '%s'; expected https://, http://, ssh://, git@ or an archive URL", gitURL)
	}

	if isPlaceholderURL(gitURL) {
		return fmt.Errorf("URL '%s' appears to be a placeholder from documentation examples; please use a real repository URL", gitURL)
	}

	if existing, ok := m.config.Templates.Repositories[name]; ok {
		if existing == gitURL {
			logging.WarnContext(ctx, "Repository '%s' already exists", name)
			return nil
		}
		return fmt.Errorf("repository name '%s' already exists with different URL: %s", name, logging.RedactURL(existing))
	}

	logging.InfoContext(ctx, "Adding template repository: %s -> %s", name, logging.RedactURL(gitURL))
	m.config.Templates.Repositories[name] = gitURL

	configPath, err := m.saveConfigValue("templates.repositories", m.config.Templates.Repositories)
	if err != nil {
		return err
	}

	logging.InfoContext(ctx, "Repository added successfully as '%s' to %s", name, configPath)
	logging.InfoContext(ctx, "Run 'archgen templates update' to fetch it")

	return nil
}

// AddLocalPath adds a local pack directory to template sources.
func (m *Manager) AddLocalPath(ctx context.Context, path string) error {
	expandedPath, err := m.validator.ExpandPath(path)
	if err != nil {
		return fmt.Errorf("failed to expand path: %w", err)
	}

	if err := m.validator.ValidateLocalPath(expandedPath); err != nil {
		return err
	}

	if slices.Contains(m.config.Templates.LocalPaths, expandedPath) {
		logging.WarnContext(ctx, "Path already exists in local_paths")
		return nil
	}

	logging.InfoContext(ctx, "Adding local template directory: %s", expandedPath)
	m.config.Templates.LocalPaths = append(m.config.Templates.LocalPaths, expandedPath)

	configPath, err := m.saveConfigValue("templates.local_paths", m.config.Templates.LocalPaths)
	if err != nil {
		return err
	}

	logging.InfoContext(ctx, "Template directory added successfully to %s", configPath)
	return nil
}

// RemoveSource removes a template source by path or repository name.
func (m *Manager) RemoveSource(ctx context.Context, pathOrName string) error {
	normalizedPath, err := m.validator.NormalizePath(pathOrName)
	if err != nil {
		normalizedPath = pathOrName
	}

	removedFromPaths := m.removeFromLocalPaths(normalizedPath, pathOrName)
	removedFromRepos := m.removeFromRepositories(pathOrName)

	if !removedFromPaths && !removedFromRepos {
		return fmt.Errorf("template source not found: %s", pathOrName)
	}

	configPath, err := m.saveTemplatesConfig()
	if err != nil {
		return err
	}

	if removedFromPaths {
		logging.InfoContext(ctx, "Removed from local_paths in %s", configPath)
	}
	if removedFromRepos {
		logging.InfoContext(ctx, "Removed from repositories in %s", configPath)
	}

	return nil
}

func (m *Manager) removeFromLocalPaths(normalizedPath, originalPath string) bool {
	kept := []string{}
	removed := false

	for _, existingPath := range m.config.Templates.LocalPaths {
		if existingPath != normalizedPath && existingPath != originalPath {
			kept = append(kept, existingPath)
		} else {
			removed = true
		}
	}

	m.config.Templates.LocalPaths = kept
	return removed
}

func (m *Manager) removeFromRepositories(name string) bool {
	if _, exists := m.config.Templates.Repositories[name]; exists {
		delete(m.config.Templates.Repositories, name)
		return true
	}
	return false
}

// saveConfigValue sets one key in the config file, creating the file if
// needed, and returns its path.
func (m *Manager) saveConfigValue(key string, value any) (string, error) {
	return m.writeConfig(func(v *viper.Viper) { v.Set(key, value) })
}

// saveTemplatesConfig writes both source lists to the config file.
func (m *Manager) saveTemplatesConfig() (string, error) {
	return m.writeConfig(func(v *viper.Viper) {
		v.Set("templates.local_paths", m.config.Templates.LocalPaths)
		v.Set("templates.repositories", m.config.Templates.Repositories)
	})
}

func (m *Manager) writeConfig(update func(*viper.Viper)) (string, error) {
	configPath, err := m.configPath()
	if err != nil {
		return "", fmt.Errorf("failed to get config path: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil && !isMissingFile(err) {
		return "", fmt.Errorf("failed to read config: %w", err)
	}

	update(v)

	if err := v.WriteConfigAs(configPath); err != nil {
		return "", fmt.Errorf("failed to save config: %w", err)
	}

	return configPath, nil
}

func isMissingFile(err error) bool {
	return config.IsNotFoundError(err) || errors.Is(err, fs.ErrNotExist)
}

// isPlaceholderURL reports URLs copied verbatim from documentation.
func isPlaceholderURL(u string) bool {
	lower := strings.ToLower(u)
	for _, marker := range []string{"example.com", "example.org", "your-org", "<", ">"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
