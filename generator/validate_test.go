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

package generator_test

import (
	"testing"

	"github.com/cowdogmoo/archgen/generator"
	"github.com/cowdogmoo/archgen/templates"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCleanPack(t *testing.T) {
	files := packFiles()
	delete(files, "adapters/output/broken/B.java.tmpl")
	// A reactive-only adapter type would leave imperative unserved.
	delete(files, "adapters/output/redis/reactive/Adapter.java.tmpl")
	vm, err := templates.NewVersionManager("0.3.0")
	require.NoError(t, err)

	report := generator.Validate(loadPack(t, files), vm)
	assert.True(t, report.OK(), "%v", report.Problems)
	assert.Equal(t, "clean", report.Pack)
}

func TestValidateProblems(t *testing.T) {
	files := map[string]string{
		"pack.yaml": "name: broken\nrequires: \">= 9.0.0\"\nparadigms: [imperative, reactive]\n" +
			"variables:\n  - name: javaVersion\n",

		"architectures/hexagonal/project/build.gradle.tmpl": "// java ${.javaVersion}\n",
		"architectures/hexagonal/entity/Entity.java.tmpl":   "class ${.entityNamePascal} { ${.tableName} }\n",
		"architectures/onion/entity/Entity.java.tmpl":       "class ${.entityNamePascal} {}\n",

		"adapters/output/redis/Adapter.java.tmpl":          "---\nartifact: binary\n---\nclass A {}\n",
		"adapters/output/redis/reactive/Adapter.java.tmpl": "class ${if .reactive} {}\n",
		"adapters/input/rest/Controller.java.tmpl":         "class ${.adapterNamePascal}Controller {}\n",
	}
	vm, err := templates.NewVersionManager("0.3.0")
	require.NoError(t, err)

	report := generator.Validate(loadPack(t, files), vm)
	require.False(t, report.OK())

	got := map[string]string{}
	for _, p := range report.Problems {
		got[p.TemplatePath] = p.Problem
	}
	assert.Len(t, got, 6, "%v", report.Problems)
	assert.Equal(t, "requires archgen >= 9.0.0", got["pack.yaml"])
	assert.Equal(t, "undeclared variables: tableName", got["architectures/hexagonal/entity/Entity.java"])
	assert.Equal(t, "architecture has no project templates", got["architectures/onion"])
	assert.Contains(t, got["adapters/output/redis/Adapter.java"], "unknown artifact kind")
	assert.Contains(t, got["adapters/output/redis/reactive/Adapter.java"], "template:")
	assert.Equal(t, "no templates for paradigm imperative", got["adapters/output/redis"])
	assert.NotContains(t, got, "adapters/input/rest/Controller.java")
	assert.NotContains(t, got, "adapters/input/rest")
}

func TestValidateWithoutVersionManager(t *testing.T) {
	files := map[string]string{
		"pack.yaml": "name: future\nrequires: \">= 9.0.0\"\n",
		"architectures/hexagonal/project/build.gradle.tmpl": "// build\n",
	}
	assert.True(t, generator.Validate(loadPack(t, files), nil).OK())
}
