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

package document

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// Dependency is one declaration in a top-level dependencies block.
type Dependency struct {
	Configuration string
	Group         string
	Artifact      string
	Version       string
	// Text holds the declaration as written, without the block
	// indentation. Declarations with a configuration closure span several
	// lines.
	Text []string

	first, last int
}

// Key returns the identity of the dependency: group and artifact without
// the version.
func (d Dependency) Key() string {
	return d.Group + ":" + d.Artifact
}

// Plugin is one entry of the top-level plugins block.
type Plugin struct {
	ID      string
	Version string
	Text    string

	line int
}

type include struct {
	name string
	line int
}

// block is the span of a top-level block. open is -1 when the file has no
// such block.
type block struct {
	open, close int
}

// BuildDescriptor is a Gradle build or settings script in Groovy or Kotlin
// DSL. Only top-level plugins and dependencies blocks and include
// statements are interpreted; every other line is kept as written.
type BuildDescriptor struct {
	name    string
	kotlin  bool
	lines   []string
	newline bool

	deps         []Dependency
	plugins      []Plugin
	includes     []include
	depsBlock    block
	pluginsBlock block
}

var (
	blockOpenPattern    = regexp.MustCompile(`^([A-Za-z_]\w*)\s*(?:\(\s*\))?\s*\{`)
	coordinatePattern   = regexp.MustCompile(`^([A-Za-z_]\w*)\s*\(?\s*(?:(?:enforcedPlatform|platform)\s*\(\s*)?["']([^"':\s]+):([^"':\s]+)(?::([^"'@:\s]+))?(?::[^"'@\s]+)?(?:@\w+)?["']`)
	mapNotationPattern  = regexp.MustCompile(`^([A-Za-z_]\w*)\s*\(?\s*group\s*[:=]\s*["']([^"']+)["']\s*,\s*name\s*[:=]\s*["']([^"']+)["'](?:\s*,\s*version\s*[:=]\s*["']([^"']+)["'])?`)
	projectDepPattern   = regexp.MustCompile(`^([A-Za-z_]\w*)\s*\(?\s*project\s*\(\s*(?:path\s*[:=]\s*)?["']([^"']+)["']`)
	pluginIDPattern     = regexp.MustCompile(`^id\s*\(?\s*["']([^"']+)["']\s*\)?(?:\s+version\s*\(?\s*["']([^"']+)["']\s*\)?)?`)
	kotlinPluginPattern = regexp.MustCompile(`^kotlin\s*\(\s*"([^"]+)"\s*\)(?:\s+version\s+"([^"]+)")?`)
	barePluginPattern   = regexp.MustCompile("^`?([A-Za-z][\\w.-]*)`?$")
	includePattern      = regexp.MustCompile(`^include\b`)
	quotedPattern       = regexp.MustCompile(`["']([^"']+)["']`)
)

// ParseBuild decodes a build script. name is the file name; a .kts suffix
// selects the Kotlin DSL for inserted lines.
func ParseBuild(name string, data []byte) (*BuildDescriptor, error) {
	text := string(data)
	d := &BuildDescriptor{
		name:    name,
		kotlin:  strings.HasSuffix(name, ".kts"),
		newline: text == "" || strings.HasSuffix(text, "\n"),
	}
	text = strings.TrimSuffix(text, "\n")
	if text != "" {
		d.lines = strings.Split(text, "\n")
	}
	if err := d.index(); err != nil {
		return nil, err
	}
	return d, nil
}

// index rebuilds the interpreted view from lines.
func (d *BuildDescriptor) index() error {
	d.deps, d.plugins, d.includes = nil, nil, nil
	d.depsBlock, d.pluginsBlock = block{-1, -1}, block{-1, -1}

	var (
		depth     int
		current   string
		openedAt  int
		inComment bool
		pending   = -1
	)
	for i, raw := range d.lines {
		code, stillIn := stripComments(strings.TrimSuffix(raw, "\r"), inComment)
		inComment = stillIn
		trimmed := strings.TrimSpace(code)
		opens, closes := countBraces(code)

		switch {
		case depth == 0:
			if m := blockOpenPattern.FindStringSubmatch(trimmed); m != nil {
				current, openedAt = m[1], i
			} else if includePattern.MatchString(trimmed) {
				for _, q := range quotedPattern.FindAllStringSubmatch(trimmed, -1) {
					d.includes = append(d.includes, include{name: q[1], line: i})
				}
			}
		case depth == 1 && current == "dependencies":
			if dep, ok := parseDependency(trimmed); ok {
				dep.first, dep.last = i, i
				d.deps = append(d.deps, dep)
				if opens > closes {
					pending = len(d.deps) - 1
				}
			}
		case depth == 1 && current == "plugins":
			if p, ok := d.parsePlugin(trimmed); ok {
				p.line = i
				d.plugins = append(d.plugins, p)
			}
		}

		if pending >= 0 && i > d.deps[pending].first {
			d.deps[pending].last = i
		}

		depth += opens - closes
		if depth < 0 {
			return fmt.Errorf("parse %s: unbalanced braces at line %d", d.name, i+1)
		}
		if depth <= 1 {
			pending = -1
		}
		if depth == 0 && current != "" {
			// One-line blocks are not interpreted; inserting into them would
			// need the line split.
			if openedAt != i {
				switch current {
				case "dependencies":
					d.depsBlock = block{openedAt, i}
				case "plugins":
					d.pluginsBlock = block{openedAt, i}
				}
			}
			current = ""
		}
	}
	if depth != 0 {
		return fmt.Errorf("parse %s: %d unclosed braces", d.name, depth)
	}

	for i := range d.deps {
		d.deps[i].Text = dedent(d.lines[d.deps[i].first : d.deps[i].last+1])
	}
	return nil
}

func parseDependency(line string) (Dependency, bool) {
	if m := coordinatePattern.FindStringSubmatch(line); m != nil {
		return Dependency{Configuration: m[1], Group: m[2], Artifact: m[3], Version: m[4]}, true
	}
	if m := mapNotationPattern.FindStringSubmatch(line); m != nil {
		return Dependency{Configuration: m[1], Group: m[2], Artifact: m[3], Version: m[4]}, true
	}
	if m := projectDepPattern.FindStringSubmatch(line); m != nil {
		return Dependency{Configuration: m[1], Group: "project", Artifact: m[2]}, true
	}
	return Dependency{}, false
}

func (d *BuildDescriptor) parsePlugin(line string) (Plugin, bool) {
	if m := pluginIDPattern.FindStringSubmatch(line); m != nil {
		return Plugin{ID: m[1], Version: m[2], Text: line}, true
	}
	if m := kotlinPluginPattern.FindStringSubmatch(line); m != nil {
		return Plugin{ID: "org.jetbrains.kotlin." + m[1], Version: m[2], Text: line}, true
	}
	if m := barePluginPattern.FindStringSubmatch(line); m != nil && line != "}" {
		return Plugin{ID: m[1], Text: line}, true
	}
	return Plugin{}, false
}

// stripComments removes // and /* */ comments outside string literals.
// inComment carries an open block comment across lines.
func stripComments(line string, inComment bool) (string, bool) {
	var b strings.Builder
	var quote byte
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case inComment:
			if c == '*' && i+1 < len(line) && line[i+1] == '/' {
				inComment = false
				i++
			}
		case quote != 0:
			b.WriteByte(c)
			if c == '\\' && i+1 < len(line) {
				i++
				b.WriteByte(line[i])
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
			b.WriteByte(c)
		case c == '/' && i+1 < len(line) && line[i+1] == '/':
			return b.String(), false
		case c == '/' && i+1 < len(line) && line[i+1] == '*':
			inComment = true
			i++
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), inComment
}

// countBraces counts braces outside string literals.
func countBraces(code string) (opens, closes int) {
	var quote byte
	for i := 0; i < len(code); i++ {
		c := code[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '{':
			opens++
		case c == '}':
			closes++
		}
	}
	return opens, closes
}

func leadingSpace(s string) string {
	return s[:len(s)-len(strings.TrimLeft(s, " \t"))]
}

// dedent strips the indentation of the first line from every line.
func dedent(lines []string) []string {
	if len(lines) == 0 {
		return nil
	}
	indent := leadingSpace(lines[0])
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = strings.TrimPrefix(strings.TrimSuffix(l, "\r"), indent)
	}
	return out
}

// Kotlin reports whether the script uses the Kotlin DSL.
func (d *BuildDescriptor) Kotlin() bool { return d.kotlin }

// Dependencies returns the declarations in file order.
func (d *BuildDescriptor) Dependencies() []Dependency {
	return slices.Clone(d.deps)
}

// Dependency returns the first declaration with the given key.
func (d *BuildDescriptor) Dependency(key string) (Dependency, bool) {
	for _, dep := range d.deps {
		if dep.Key() == key {
			return dep, true
		}
	}
	return Dependency{}, false
}

// Plugins returns the plugin entries in file order.
func (d *BuildDescriptor) Plugins() []Plugin {
	return slices.Clone(d.plugins)
}

// Plugin returns the entry for a plugin id.
func (d *BuildDescriptor) Plugin(id string) (Plugin, bool) {
	for _, p := range d.plugins {
		if p.ID == id {
			return p, true
		}
	}
	return Plugin{}, false
}

// Includes returns the included module names as written.
func (d *BuildDescriptor) Includes() []string {
	out := make([]string, 0, len(d.includes))
	for _, inc := range d.includes {
		out = append(out, inc.name)
	}
	return out
}

// HasInclude reports whether module is included. A leading colon is not
// significant.
func (d *BuildDescriptor) HasInclude(module string) bool {
	want := strings.TrimPrefix(module, ":")
	for _, inc := range d.includes {
		if strings.TrimPrefix(inc.name, ":") == want {
			return true
		}
	}
	return false
}

// AddDependency inserts dep after the last existing declaration for which
// after returns true, or at the end of the dependencies block when none
// does. A missing block is appended to the file.
func (d *BuildDescriptor) AddDependency(dep Dependency, after func(Dependency) bool) error {
	if _, ok := d.Dependency(dep.Key()); ok {
		return fmt.Errorf("add dependency %s: already declared", dep.Key())
	}
	text := dep.Text
	if len(text) == 0 {
		text = []string{d.formatDependency(dep)}
	}

	if d.depsBlock.open < 0 {
		d.appendBlock("dependencies", text)
		return d.index()
	}

	at := d.depsBlock.close
	for _, existing := range d.deps {
		if after != nil && after(existing) {
			at = existing.last + 1
		}
	}
	d.insertLines(at, indentLines(d.blockIndent(), text))
	return d.index()
}

// AddPlugin inserts p after the last plugin entry. A missing plugins block
// is created at the top of the script, after leading comments.
func (d *BuildDescriptor) AddPlugin(p Plugin) error {
	if _, ok := d.Plugin(p.ID); ok {
		return fmt.Errorf("add plugin %s: already applied", p.ID)
	}
	text := p.Text
	if text == "" {
		text = d.formatPlugin(p)
	}

	if d.pluginsBlock.open < 0 {
		at := 0
		for at < len(d.lines) && isCommentOrBlank(d.lines[at]) {
			at++
		}
		lines := []string{"plugins {", d.blockIndent() + text, "}"}
		if at < len(d.lines) {
			lines = append(lines, "")
		}
		d.insertLines(at, lines)
		return d.index()
	}

	at := d.pluginsBlock.close
	if n := len(d.plugins); n > 0 {
		at = d.plugins[n-1].line + 1
	}
	d.insertLines(at, []string{d.blockIndent() + text})
	return d.index()
}

// AddInclude adds an include statement for module after the last one, or
// at the end of the script.
func (d *BuildDescriptor) AddInclude(module string) error {
	if d.HasInclude(module) {
		return fmt.Errorf("add include %s: already included", module)
	}
	line := fmt.Sprintf("include '%s'", module)
	if d.kotlin {
		line = fmt.Sprintf("include(%q)", module)
	}
	at := len(d.lines)
	if n := len(d.includes); n > 0 {
		at = d.includes[n-1].line + 1
	}
	d.insertLines(at, []string{line})
	return d.index()
}

func (d *BuildDescriptor) formatDependency(dep Dependency) string {
	coord := dep.Key()
	if dep.Version != "" {
		coord += ":" + dep.Version
	}
	if dep.Group == "project" {
		if d.kotlin {
			return fmt.Sprintf("%s(project(%q))", dep.Configuration, dep.Artifact)
		}
		return fmt.Sprintf("%s project('%s')", dep.Configuration, dep.Artifact)
	}
	if d.kotlin {
		return fmt.Sprintf("%s(%q)", dep.Configuration, coord)
	}
	return fmt.Sprintf("%s '%s'", dep.Configuration, coord)
}

func (d *BuildDescriptor) formatPlugin(p Plugin) string {
	if d.kotlin {
		if p.Version != "" {
			return fmt.Sprintf("id(%q) version %q", p.ID, p.Version)
		}
		return fmt.Sprintf("id(%q)", p.ID)
	}
	if p.Version != "" {
		return fmt.Sprintf("id '%s' version '%s'", p.ID, p.Version)
	}
	return fmt.Sprintf("id '%s'", p.ID)
}

// blockIndent returns the indentation used inside blocks, taken from the
// first indented declaration. The default is four spaces.
func (d *BuildDescriptor) blockIndent() string {
	for _, dep := range d.deps {
		if ind := leadingSpace(d.lines[dep.first]); ind != "" {
			return ind
		}
	}
	for _, p := range d.plugins {
		if ind := leadingSpace(d.lines[p.line]); ind != "" {
			return ind
		}
	}
	return "    "
}

func (d *BuildDescriptor) appendBlock(name string, body []string) {
	var lines []string
	if n := len(d.lines); n > 0 && strings.TrimSpace(d.lines[n-1]) != "" {
		lines = append(lines, "")
	}
	lines = append(lines, name+" {")
	lines = append(lines, indentLines(d.blockIndent(), body)...)
	lines = append(lines, "}")
	d.insertLines(len(d.lines), lines)
}

func (d *BuildDescriptor) insertLines(at int, lines []string) {
	d.lines = slices.Insert(d.lines, at, lines...)
}

func indentLines(indent string, lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		if l == "" {
			continue
		}
		out[i] = indent + l
	}
	return out
}

func isCommentOrBlank(line string) bool {
	t := strings.TrimSpace(line)
	return t == "" || strings.HasPrefix(t, "//") || strings.HasPrefix(t, "/*") || strings.HasPrefix(t, "*")
}

// Root implements Document. The tree has three keys: plugins (id to
// version), dependencies (group:artifact to configuration and version) and
// include (module names).
func (d *BuildDescriptor) Root() *Node {
	plugins := Mapping()
	for _, p := range d.plugins {
		plugins.Set(p.ID, Scalar(p.Version))
	}
	deps := Mapping()
	for _, dep := range d.deps {
		deps.Set(dep.Key(), Mapping().
			Set("configuration", Scalar(dep.Configuration)).
			Set("version", Scalar(dep.Version)))
	}
	includes := Sequence()
	for _, inc := range d.includes {
		includes.Items = append(includes.Items, Scalar(inc.name))
	}
	return Mapping().
		Set("plugins", plugins).
		Set("dependencies", deps).
		Set("include", includes)
}

// Insert implements Document for the paths Root exposes:
// ["plugins", id], ["dependencies", "group:artifact"] and ["include"].
func (d *BuildDescriptor) Insert(path []string, value *Node) error {
	switch {
	case len(path) == 2 && path[0] == "plugins":
		return d.AddPlugin(Plugin{ID: path[1], Version: value.Value})
	case len(path) == 2 && path[0] == "dependencies":
		group, artifact, ok := strings.Cut(path[1], ":")
		if !ok {
			return fmt.Errorf("insert %s: dependency key must be group:artifact", KeyString(path))
		}
		dep := Dependency{Group: group, Artifact: artifact, Configuration: "implementation"}
		if c := value.Get("configuration"); c != nil && c.Value != "" {
			dep.Configuration = c.Value
		}
		if v := value.Get("version"); v != nil {
			dep.Version = v.Value
		}
		return d.AddDependency(dep, nil)
	case len(path) == 1 && path[0] == "include":
		names := []*Node{value}
		if value.Kind == SequenceNode {
			names = value.Items
		}
		for _, n := range names {
			if d.HasInclude(n.Value) {
				continue
			}
			if err := d.AddInclude(n.Value); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("insert %s: not a build descriptor key", KeyString(path))
}

// Clone implements Document.
func (d *BuildDescriptor) Clone() Document {
	return d.CloneBuild()
}

// CloneBuild returns an independent copy of d.
func (d *BuildDescriptor) CloneBuild() *BuildDescriptor {
	cp := &BuildDescriptor{
		name:    d.name,
		kotlin:  d.kotlin,
		lines:   slices.Clone(d.lines),
		newline: d.newline,
	}
	// The lines parsed once already; index cannot fail on them again.
	_ = cp.index()
	return cp
}

// Bytes implements Document.
func (d *BuildDescriptor) Bytes() ([]byte, error) {
	out := strings.Join(d.lines, "\n")
	if d.newline && len(d.lines) > 0 {
		out += "\n"
	}
	return []byte(out), nil
}
