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

package cli

import (
	"fmt"
	"regexp"

	"github.com/cowdogmoo/archgen/templates"
)

var (
	identifierPattern  = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_ -]*$`)
	selectorPattern    = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)
	packageNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*(\.[a-zA-Z_][a-zA-Z0-9_]*)*$`)
)

// Validator validates CLI input before passing to business logic.
type Validator struct {
	parser        *Parser
	pathValidator *templates.PathValidator
}

// NewValidator creates a new CLI validator.
func NewValidator() *Validator {
	return &Validator{
		parser:        NewParser(),
		pathValidator: templates.NewPathValidator(),
	}
}

// ValidateInitOptions validates init command options.
func (v *Validator) ValidateInitOptions(opts InitCLIOptions) error {
	if opts.BasePackage == "" {
		return fmt.Errorf("--base-package is required")
	}
	if !packageNamePattern.MatchString(opts.BasePackage) {
		return fmt.Errorf("invalid base package %q (expected a Java package like com.example.shop)", opts.BasePackage)
	}
	if opts.Architecture == "" {
		return fmt.Errorf("--architecture is required")
	}
	if err := validateParadigm(opts.Paradigm); err != nil {
		return err
	}
	if err := v.validateKeyValues("version", opts.Versions); err != nil {
		return err
	}
	return v.validateKeyValues("variable", opts.Variables)
}

// ValidateGenerateOptions validates options of a generate subcommand. The
// adapter type is required for adapters only.
func (v *Validator) ValidateGenerateOptions(opts GenerateCLIOptions, adapter bool) error {
	if !identifierPattern.MatchString(opts.Name) {
		return fmt.Errorf("invalid name %q (letters, digits, spaces, '-' and '_', starting with a letter)", opts.Name)
	}
	if opts.Entity != "" && !identifierPattern.MatchString(opts.Entity) {
		return fmt.Errorf("invalid entity name %q", opts.Entity)
	}
	if adapter && opts.AdapterType == "" {
		return fmt.Errorf("--type is required for adapters")
	}
	if err := validateParadigm(opts.Paradigm); err != nil {
		return err
	}
	if _, err := v.parser.ParseFields(opts.Fields); err != nil {
		return err
	}
	return v.validateKeyValues("variable", opts.Variables)
}

// ValidateTemplateAddOptions validates template add command options.
func (v *Validator) ValidateTemplateAddOptions(name, urlOrPath string) error {
	if urlOrPath == "" {
		return fmt.Errorf("URL or path is required")
	}

	// If name is provided, urlOrPath must be remote
	if name != "" && !v.pathValidator.IsRemote(urlOrPath) {
		return fmt.Errorf("when providing a name, the URL must be a git or archive URL (not a local path)")
	}

	return nil
}

func (v *Validator) validateKeyValues(what string, pairs []string) error {
	for _, pair := range pairs {
		if !ValidateKeyValueFormat(pair) {
			return fmt.Errorf("invalid %s format: %s (expected key=value)", what, pair)
		}
	}
	return nil
}

// validateParadigm checks the shape only. Which paradigms exist is up to
// the pack; the resolver rejects ones it does not declare.
func validateParadigm(p string) error {
	if p == "" || selectorPattern.MatchString(p) {
		return nil
	}
	return fmt.Errorf("invalid paradigm %q (lowercase letters, digits, '-' and '_')", p)
}
