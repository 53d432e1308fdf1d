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

// Package render expands template bodies against a render context.
//
// Templates use Go text/template syntax with ${ and } as action delimiters:
//
//	package ${.basePackage}.domain;
//
//	public record ${.entityNamePascal}(${range $i, $f := .fields}${$f.type} ${$f.name}${if not (last $i $.fields)}, ${end}${end}) {}
//
// Every root variable a template reads must be present in the context.
// Missing variables fail with an *errors.UndefinedVariableError naming the
// variable and the template, both before execution (from the static scan)
// and during it (for keys read inside range and with bodies). A literal ${
// is written as ${"${"}.
package render

import (
	"maps"
	"regexp"
	"strings"
	"text/template"

	"github.com/cowdogmoo/archgen/errors"
)

// Action delimiters.
const (
	LeftDelim  = "${"
	RightDelim = "}"
)

var (
	missingKeyPattern    = regexp.MustCompile(`map has no entry for key "([^"]+)"`)
	undefinedFuncPattern = regexp.MustCompile(`function "([^"]+)" not defined`)
)

// Context is the variable environment for one render.
type Context map[string]any

// With returns a copy of c extended with extra. Keys in extra win.
func (c Context) With(extra Context) Context {
	out := make(Context, len(c)+len(extra))
	maps.Copy(out, c)
	maps.Copy(out, extra)
	return out
}

// Renderer compiles and executes templates. The zero value is not usable;
// call New.
type Renderer struct {
	funcs template.FuncMap
}

// New returns a Renderer with the standard function set.
func New() *Renderer {
	return &Renderer{funcs: Funcs()}
}

// Template is a compiled template with its declared variable set.
type Template struct {
	name string
	tmpl *template.Template
	vars []string
}

// Compile parses body under name and computes its declared variables.
func (r *Renderer) Compile(name, body string) (*Template, error) {
	t, err := r.parse(name, body)
	if err != nil {
		return nil, err
	}
	return &Template{name: name, tmpl: t, vars: scanTree(t.Tree)}, nil
}

// Render compiles body and executes it against ctx.
func (r *Renderer) Render(name, body string, ctx Context) (string, error) {
	t, err := r.Compile(name, body)
	if err != nil {
		return "", err
	}
	return t.Execute(ctx)
}

func (r *Renderer) parse(name, body string) (*template.Template, error) {
	t, err := template.New(name).
		Delims(LeftDelim, RightDelim).
		Funcs(r.funcs).
		Option("missingkey=error").
		Parse(body)
	if err != nil {
		return nil, translate(name, err)
	}
	return t, nil
}

// Name returns the template path the template was compiled under.
func (t *Template) Name() string { return t.name }

// Variables returns the declared variable set, sorted.
func (t *Template) Variables() []string {
	return append([]string(nil), t.vars...)
}

// Execute validates ctx against the declared variables and expands the
// template.
func (t *Template) Execute(ctx Context) (string, error) {
	for _, v := range t.vars {
		if _, ok := ctx[v]; !ok {
			return "", &errors.UndefinedVariableError{Name: v, TemplatePath: t.name}
		}
	}

	var buf strings.Builder
	if err := t.tmpl.Execute(&buf, ctx); err != nil {
		return "", translate(t.name, err)
	}
	return buf.String(), nil
}

// translate maps text/template failures that mean "unknown name" onto
// UndefinedVariableError. A bare ${name} parses as a call to an undefined
// function, so it is reported the same way.
func translate(name string, err error) error {
	msg := err.Error()
	if m := missingKeyPattern.FindStringSubmatch(msg); m != nil {
		return &errors.UndefinedVariableError{Name: m[1], TemplatePath: name}
	}
	if m := undefinedFuncPattern.FindStringSubmatch(msg); m != nil {
		return &errors.UndefinedVariableError{Name: m[1], TemplatePath: name}
	}
	return errors.Wrap("render template", name, err)
}
