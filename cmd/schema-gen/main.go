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

// Package main generates JSON schemas for the files a template pack author
// writes: the pack.yaml manifest and the front matter block of a template.
// The schemas enable IDE autocompletion and validation for both.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cowdogmoo/archgen/config"
	"github.com/cowdogmoo/archgen/templates"
	"github.com/invopop/jsonschema"
)

var (
	output     = flag.String("o", "schema/archgen-pack.json", "Output path for the pack manifest JSON schema")
	metaOutput = flag.String("m", "schema/archgen-template-meta.json", "Output path for the template front matter JSON schema")
)

// Schema identifiers.
const (
	PackSchemaID = "https://archgen.dev/schema/pack.json"
	MetaSchemaID = "https://archgen.dev/schema/template-meta.json"
)

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	reflector := jsonschema.Reflector{
		ExpandedStruct:            true,
		DoNotReference:            false,
		AllowAdditionalProperties: false,
	}

	// Field descriptions come from the jsonschema tags; type descriptions
	// from the doc comments, when the source tree is available.
	if err := reflector.AddGoComments("github.com/cowdogmoo/archgen", "./"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to extract type-level comments: %v\n", err)
	}

	pack := reflector.Reflect(&templates.Manifest{})
	pack.ID = jsonschema.ID(PackSchemaID)
	pack.Title = "archgen Template Pack"
	pack.Description = "Schema for the pack.yaml manifest at the root of an archgen template pack"
	if pack.Extras == nil {
		pack.Extras = make(map[string]any)
	}
	pack.Extras["packLayout"] = []string{
		templates.ArchitecturesDir,
		templates.FrameworksDir,
		templates.AdaptersDir,
	}
	pack.Examples = []any{
		map[string]any{
			"name":        "clean-spring",
			"version":     "1.2.0",
			"description": "Hexagonal and onion layouts for Spring Boot",
			"author":      "Platform Team <platform@example.com>",
			"requires":    ">= 0.1.0",
			"paradigms":   []string{"imperative", "reactive"},
			"variables": []any{
				map[string]any{
					"name":        "javaVersion",
					"description": "Java toolchain version",
					"default":     "21",
				},
			},
		},
	}

	meta := reflector.Reflect(&templates.Meta{})
	meta.ID = jsonschema.ID(MetaSchemaID)
	meta.Title = "archgen Template Front Matter"
	meta.Description = "Schema for the YAML block between --- lines at the top of a .tmpl file"
	meta.Examples = []any{
		map[string]any{
			"output":   "build.gradle",
			"artifact": string(templates.ArtifactBuild),
			"merge": map[string]any{
				"scope": "main",
			},
		},
		map[string]any{
			"output":    "src/main/java/${packagePath .basePackage}/infrastructure/${.adapterTypePascal}${.entityNamePascal}Adapter.java",
			"mandatory": true,
		},
	}

	if err := writeSchema(pack, *output); err != nil {
		return err
	}
	return writeSchema(meta, *metaOutput)
}

func writeSchema(schema *jsonschema.Schema, path string) error {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal schema: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, config.DirPermReadWriteExec); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	// Append newline to satisfy end-of-file-fixer
	data = append(data, '\n')

	if err := os.WriteFile(path, data, config.FilePermReadWrite); err != nil {
		return fmt.Errorf("failed to write schema file: %w", err)
	}

	fmt.Printf("✓ Generated JSON schema: %s\n", path)
	return nil
}
