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

// Package cli holds the option types, parsing, validation and output
// formatting shared by the archgen commands.
package cli

// TemplateCLIOptions selects the template pack a command reads.
type TemplateCLIOptions struct {
	// Source is a repository name, a git or archive URL, or a local path.
	// Empty means the project's source, then the configured default.
	Source string

	// Ref is the branch, tag or version of a remote source.
	Ref string

	// Refresh fetches remote sources even when the cache is fresh.
	Refresh bool
}

// InitCLIOptions defines command-line options for the init command.
type InitCLIOptions struct {
	TemplateCLIOptions

	// Dir is the project root. It is created when missing.
	Dir string

	// Name is the project name. Defaults to the base name of Dir.
	Name string

	// BasePackage is the root Java package, e.g. com.example.shop.
	BasePackage string

	Architecture string
	Framework    string
	Paradigm     string

	// Versions are dependency versions recorded in archgen.yaml
	// (unparsed key=value strings).
	Versions []string

	// Variables are extra render variables (unparsed key=value strings).
	Variables []string

	Force  bool
	DryRun bool
}

// GenerateCLIOptions defines command-line options for the generate
// subcommands.
type GenerateCLIOptions struct {
	TemplateCLIOptions

	// Dir is the project root holding archgen.yaml.
	Dir string

	// Name is the entity, use case or adapter name.
	Name string

	// Entity names the entity an adapter or use case works with.
	Entity string

	// AdapterType picks the adapter templates, e.g. redis or rest.
	AdapterType string

	// Paradigm overrides the project paradigm.
	Paradigm string

	// Fields are entity fields (unparsed name:type strings).
	Fields []string

	// Variables are extra render variables (unparsed key=value strings).
	Variables []string

	Force  bool
	DryRun bool
}
