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

package generator

import (
	"maps"

	"github.com/cowdogmoo/archgen/render"
	"github.com/cowdogmoo/archgen/resolver"
	"github.com/cowdogmoo/archgen/templates"
	"github.com/iancoleman/strcase"
	"github.com/jinzhu/inflection"
)

// namedKeys get case and plural variants in the render context:
// entityName yields entityNamePascal, entityNameCamel and so on.
var namedKeys = []string{"entityName", "useCaseName", "adapterName"}

var nameVariants = []struct {
	suffix string
	fn     func(string) string
}{
	{"Pascal", strcase.ToCamel},
	{"Camel", strcase.ToLowerCamel},
	{"Snake", strcase.ToSnake},
	{"Kebab", strcase.ToKebab},
	{"Plural", func(s string) string { return inflection.Plural(strcase.ToCamel(s)) }},
}

// commonKeys are present in every render context.
var commonKeys = []string{
	"architecture", "framework", "paradigm", "reactive", "imperative",
	"basePackage", "packagePath", "projectName", "author", "versions", "entry",
}

// buildContext assembles the render context for a request. Later sources
// win: pack defaults, project variables, project invariants, the request
// context. Derived keys only fill gaps. Project invariants without a value
// are left out, so a template using them fails as undefined instead of
// rendering a blank.
func buildContext(req Request, sel resolver.Selectors, author string) render.Context {
	ctx := render.Context{}
	if m := req.Pack.Manifest(); m != nil {
		maps.Copy(ctx, m.Defaults())
	}

	ctx["versions"] = map[string]string{}
	if p := req.Project; p != nil {
		maps.Copy(ctx, p.Variables)
		setNonEmpty(ctx, "basePackage", p.BasePackage)
		setNonEmpty(ctx, "projectName", p.Name)
		if p.Versions != nil {
			ctx["versions"] = maps.Clone(p.Versions)
		}
	}
	setNonEmpty(ctx, "author", author)
	ctx["architecture"] = sel.Architecture
	ctx["framework"] = sel.Framework
	ctx["paradigm"] = sel.Paradigm
	if sel.Target.IsAdapter() {
		ctx["adapterType"] = sel.AdapterType
	}

	maps.Copy(ctx, req.Context)

	if sel.Target.IsAdapter() {
		setDefault(ctx, "adapterName", sel.AdapterType)
		setDefault(ctx, "adapterTypePascal", strcase.ToCamel(sel.AdapterType))
	}
	paradigm, _ := ctx["paradigm"].(string)
	setDefault(ctx, "reactive", paradigm == "reactive")
	setDefault(ctx, "imperative", paradigm != "reactive")
	if pkg, ok := ctx["basePackage"].(string); ok && pkg != "" {
		setDefault(ctx, "packagePath", render.PackagePath(pkg))
	}
	for _, key := range namedKeys {
		name, ok := ctx[key].(string)
		if !ok || name == "" {
			continue
		}
		for _, v := range nameVariants {
			setDefault(ctx, key+v.suffix, v.fn(name))
		}
	}
	return ctx
}

func setNonEmpty(ctx render.Context, key, value string) {
	if value != "" {
		ctx[key] = value
	}
}

func setDefault(ctx render.Context, key string, value any) {
	if _, ok := ctx[key]; !ok {
		ctx[key] = value
	}
}

// vocabulary returns the keys a template of component may reference
// without the pack declaring them.
func vocabulary(component string) []string {
	keys := append([]string(nil), commonKeys...)
	add := func(name string) {
		keys = append(keys, name)
		for _, v := range nameVariants {
			keys = append(keys, name+v.suffix)
		}
	}
	switch component {
	case templates.ComponentEntity:
		add("entityName")
		keys = append(keys, "fields")
	case templates.ComponentUseCase:
		add("useCaseName")
		add("entityName")
	case templates.ComponentOutputAdapter, templates.ComponentInputAdapter:
		add("adapterName")
		add("entityName")
		keys = append(keys, "fields", "adapterType", "adapterTypePascal")
	}
	return keys
}
