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
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

const testManifest = `name: spring-clean
version: 1.2.0
description: Clean architecture packs for Spring
requires: ">= 0.1.0"
paradigms: [reactive, imperative]
variables:
  - name: javaVersion
    default: "21"
`

const testEntityTemplate = `---
output: src/main/java/${packagePath .basePackage}/domain/model/${.entityNamePascal}.java
mandatory: true
---
package ${.basePackage}.domain.model;

public record ${.entityNamePascal}() {}
`

// testPackFiles is a small but complete pack.
func testPackFiles() map[string]string {
	files := map[string]string{
		"architectures/hexagonal/project/structure.yaml":       "directories:\n  - src/main/java/${packagePath .basePackage}/domain\n",
		"architectures/hexagonal/project/settings.gradle.tmpl": "rootProject.name = '${.projectName}'\n",
		"architectures/hexagonal/entity/Entity.java.tmpl":      testEntityTemplate,
		"architectures/hexagonal/entity/notes.txt":             "not a template",
		"frameworks/spring/reactive/project/build.gradle.tmpl": "plugins {\n    id 'java'\n}\n",
		"frameworks/spring/reactive/usecase/UseCase.java.tmpl": "class ${.useCaseName} {}\n",
		"adapters/output/redis/Adapter.java.tmpl":              "class ${.adapterName}Adapter {}\n",
		"adapters/output/redis/reactive/Adapter.java.tmpl":     "class Reactive${.adapterName}Adapter {}\n",
		"adapters/output/redis/application.yml.tmpl":           "spring:\n  data:\n    redis:\n      host: localhost\n",
		"adapters/input/rest/.hidden/Skipped.java.tmpl":        "skipped",
	}
	files[ManifestFile] = testManifest
	files["README.md"] = "pack readme"
	return files
}

// writePack writes files below root on fsys.
func writePack(t *testing.T, fsys afero.Fs, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, fsys.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, afero.WriteFile(fsys, p, []byte(content), 0o644))
	}
}

// writeOSPack writes a pack to disk below dir.
func writeOSPack(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	writePack(t, afero.NewOsFs(), dir, files)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
