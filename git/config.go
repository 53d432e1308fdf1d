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

// Package git reads the author identity that generated files are stamped
// with.
package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cowdogmoo/archgen/logging"
	"github.com/cowdogmoo/archgen/templates"
	"gopkg.in/ini.v1"
)

// maxIncludeDepth bounds [include] chains, which git allows to nest.
const maxIncludeDepth = 10

// ConfigReader resolves the author from the environment and git config
// files. Lookups, most specific first:
//
//  1. GIT_AUTHOR_NAME and GIT_AUTHOR_EMAIL
//  2. <project>/.git/config
//  3. ~/.gitconfig
//  4. $XDG_CONFIG_HOME/git/config (default ~/.config/git/config)
//
// [include] paths are followed. A name and an email may come from different
// files.
type ConfigReader struct {
	home   string
	getenv func(string) string
}

// NewConfigReader returns a reader for the current user.
func NewConfigReader() *ConfigReader {
	home, _ := os.UserHomeDir()
	return &ConfigReader{home: home, getenv: os.Getenv}
}

// identity accumulates the first non-empty name and email seen.
type identity struct {
	name, email string
}

func (id *identity) complete() bool { return id.name != "" && id.email != "" }

func (id *identity) fill(name, email string) {
	if id.name == "" {
		id.name = name
	}
	if id.email == "" {
		id.email = email
	}
}

// Author returns "Name <email>", "Name", "email" or "" for the project at
// projectDir. An empty projectDir skips the repository config.
func (r *ConfigReader) Author(ctx context.Context, projectDir string) string {
	var id identity
	id.fill(r.getenv("GIT_AUTHOR_NAME"), r.getenv("GIT_AUTHOR_EMAIL"))

	for _, file := range r.configFiles(projectDir) {
		if id.complete() {
			break
		}
		r.readFile(ctx, file, &id, 0)
	}
	return formatAuthor(id.name, id.email)
}

func (r *ConfigReader) configFiles(projectDir string) []string {
	var files []string
	if projectDir != "" {
		files = append(files, filepath.Join(projectDir, ".git", "config"))
	}
	if r.home != "" {
		files = append(files, filepath.Join(r.home, ".gitconfig"))
	}
	xdg := r.getenv("XDG_CONFIG_HOME")
	if xdg == "" && r.home != "" {
		xdg = filepath.Join(r.home, ".config")
	}
	if xdg != "" {
		files = append(files, filepath.Join(xdg, "git", "config"))
	}
	return files
}

// readFile takes the [user] values of path, then of the files it includes.
func (r *ConfigReader) readFile(ctx context.Context, path string, id *identity, depth int) {
	if depth > maxIncludeDepth {
		logging.DebugContext(ctx, "Ignoring git config include deeper than %d: %s", maxIncludeDepth, path)
		return
	}
	cfg, err := ini.LoadSources(ini.LoadOptions{AllowShadows: true, Insensitive: true}, path)
	if err != nil {
		logging.DebugContext(ctx, "Skipping git config %s: %v", path, err)
		return
	}

	user := cfg.Section("user")
	id.fill(user.Key("name").String(), user.Key("email").String())

	for _, include := range includePaths(cfg) {
		if id.complete() {
			return
		}
		r.readFile(ctx, r.resolveInclude(path, include), id, depth+1)
	}
}

func includePaths(cfg *ini.File) []string {
	if !cfg.HasSection("include") {
		return nil
	}
	key := cfg.Section("include").Key("path")
	var out []string
	for _, v := range key.ValueWithShadows() {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// resolveInclude expands ~ and environment variables; relative includes are
// relative to the including file, as in git.
func (r *ConfigReader) resolveInclude(from, include string) string {
	expanded, err := templates.ExpandPath(include)
	if err != nil {
		expanded = include
	}
	if !filepath.IsAbs(expanded) {
		expanded = filepath.Join(filepath.Dir(from), expanded)
	}
	return expanded
}

// formatAuthor formats name and email as a git author string.
func formatAuthor(name, email string) string {
	switch {
	case name != "" && email != "":
		return fmt.Sprintf("%s <%s>", name, email)
	case name != "":
		return name
	case email != "":
		return email
	default:
		return ""
	}
}
