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

// Package errors provides error wrapping utilities and the error taxonomy
// shared by the generation engine.
//
// Resolution and rendering failures are fatal for a request and are reported
// through the typed errors below. Each of them matches one of the sentinel
// values with errors.Is, so callers can branch on the category without caring
// about the concrete type:
//
//	if errors.Is(err, archerrors.ErrTemplateNotFound) { ... }
package errors

import (
	stderrors "errors"
	"fmt"
)

// Sentinel categories. Typed errors in this package unwrap to one of these.
var (
	// ErrSourceUnavailable means the template source could not be reached and
	// no usable cache exists.
	ErrSourceUnavailable = stderrors.New("template source unavailable")
	// ErrInvalidPackStructure means a loaded or fetched pack failed its shape
	// checks.
	ErrInvalidPackStructure = stderrors.New("invalid template pack structure")
	// ErrTemplateNotFound means a mandatory template entry is absent.
	ErrTemplateNotFound = stderrors.New("template not found")
	// ErrUnsupportedSelector means no template applies to the requested
	// selector combination.
	ErrUnsupportedSelector = stderrors.New("unsupported selector")
	// ErrUndefinedVariable means a template references a variable missing
	// from the render context.
	ErrUndefinedVariable = stderrors.New("undefined variable")
)

// Wrap wraps an error with a descriptive action and optional detail.
// It returns a formatted error in the form "failed to <action> [(<detail>)]: <error>".
//
// Example usage:
//
//	if err := doSomething(); err != nil {
//	    return errors.Wrap("load pack", "", err)
//	}
//
//	if err := parseFile(path); err != nil {
//	    return errors.Wrap("parse front matter", path, err)
//	}
func Wrap(action, detail string, err error) error {
	if err == nil {
		return nil
	}

	if detail != "" {
		return fmt.Errorf("failed to %s (%s): %w", action, detail, err)
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}

// SourceError reports a template source that could not be resolved.
type SourceError struct {
	// Source is the printable source descriptor (credentials redacted).
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("template source %s unavailable: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("template source %s unavailable", e.Source)
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *SourceError) Unwrap() []error {
	return []error{ErrSourceUnavailable, e.Err}
}

// PackError reports a pack that failed shape or compatibility checks.
type PackError struct {
	// Pack is the pack root or identifier.
	Pack string
	// Path is the logical path of the offending entry, if any.
	Path   string
	Reason string
}

func (e *PackError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("invalid template pack %s: %s: %s", e.Pack, e.Path, e.Reason)
	}
	return fmt.Sprintf("invalid template pack %s: %s", e.Pack, e.Reason)
}

// Unwrap returns ErrInvalidPackStructure.
func (e *PackError) Unwrap() error { return ErrInvalidPackStructure }

// ResolveError reports a resolution-stage failure. Kind is either
// ErrTemplateNotFound or ErrUnsupportedSelector.
type ResolveError struct {
	Kind error
	// Path is the logical template path (or level prefix) that was expected.
	Path   string
	Reason string
	// Suggestions lists close matches for a mistyped selector value.
	Suggestions []string
}

func (e *ResolveError) Error() string {
	msg := fmt.Sprintf("%v: %s", e.Kind, e.Path)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(" (did you mean %v?)", e.Suggestions)
	}
	return msg
}

// Unwrap returns the error category.
func (e *ResolveError) Unwrap() error { return e.Kind }

// UndefinedVariableError reports a template variable missing from the
// render context.
type UndefinedVariableError struct {
	Name         string
	TemplatePath string
}

func (e *UndefinedVariableError) Error() string {
	return fmt.Sprintf("undefined variable %q in template %s", e.Name, e.TemplatePath)
}

// Unwrap returns ErrUndefinedVariable.
func (e *UndefinedVariableError) Unwrap() error { return ErrUndefinedVariable }

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return stderrors.Is(err, target) }

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool { return stderrors.As(err, target) }

// New returns an error that formats as the given text.
func New(text string) error { return stderrors.New(text) }
