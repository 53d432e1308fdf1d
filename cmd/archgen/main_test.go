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

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cowdogmoo/archgen/cli"
	"github.com/cowdogmoo/archgen/config"
	"github.com/cowdogmoo/archgen/generator"
	"github.com/cowdogmoo/archgen/logging"
	"github.com/cowdogmoo/archgen/resolver"
	"github.com/spf13/cobra"
)

// setupTestContext creates a context with a logger suitable for testing.
func setupTestContext(t *testing.T) context.Context {
	t.Helper()
	logger := logging.NewCustomLoggerWithOptions("error", "text", true, false)
	return logging.WithLogger(context.Background(), logger)
}

// writePack lays out a minimal template pack under a temp dir.
func writePack(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"pack.yaml": "name: test-pack\nparadigms: [imperative]\n",
		"architectures/hexagonal/project/build.gradle.tmpl": "plugins {\n    id 'java'\n}\n\n" +
			"dependencies {\n    implementation 'org.springframework.boot:spring-boot-starter'\n}\n",
		"architectures/hexagonal/project/application.yaml.tmpl": "---\noutput: src/main/resources/application.yaml\n---\n" +
			"spring:\n  application:\n    name: ${.projectName}\n",
		"adapters/output/redis/Adapter.java.tmpl": "---\noutput: infrastructure/redis/${.entityNamePascal}RedisAdapter.java\n---\n" +
			"package ${.basePackage}.infrastructure.redis;\n\npublic class ${.entityNamePascal}RedisAdapter {}\n",
		"adapters/output/redis/build.gradle.tmpl": "---\noutput: build.gradle\n---\n" +
			"dependencies {\n    implementation 'org.springframework.boot:spring-boot-starter-data-redis'\n}\n",
	}
	for rel, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
	return dir
}

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.ExecuteContext(setupTestContext(t))
	return buf.String(), err
}

func artifactStatuses(t *testing.T, out string) map[string]generator.Status {
	t.Helper()
	var res generator.Result
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("output is not a JSON result: %v\n%s", err, out)
	}
	got := map[string]generator.Status{}
	for _, a := range res.Artifacts {
		got[a.Path] = a.Status
	}
	return got
}

func TestInitAndGenerate(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	packDir := writePack(t)
	projectDir := filepath.Join(t.TempDir(), "shop")

	out, err := runRoot(t, "init", projectDir,
		"--base-package", "com.example.shop",
		"--architecture", "hexagonal",
		"--source", packDir,
		"--format", "json")
	if err != nil {
		t.Fatalf("init failed: %v\n%s", err, out)
	}
	got := artifactStatuses(t, out)
	for _, p := range []string{"build.gradle", "src/main/resources/application.yaml"} {
		if got[p] != generator.StatusCreated {
			t.Errorf("init: %s status = %q, want %q", p, got[p], generator.StatusCreated)
		}
	}

	settings, err := config.LoadProject(projectDir)
	if err != nil {
		t.Fatalf("archgen.yaml not written: %v", err)
	}
	if settings.Templates.Source != packDir {
		t.Errorf("recorded source = %q, want %q", settings.Templates.Source, packDir)
	}
	if settings.Name != "shop" {
		t.Errorf("project name = %q, want shop", settings.Name)
	}

	out, err = runRoot(t, "generate", "output-adapter", "user-cache",
		"--dir", projectDir,
		"--type", "redis",
		"--entity", "User",
		"--format", "json")
	if err != nil {
		t.Fatalf("generate failed: %v\n%s", err, out)
	}
	got = artifactStatuses(t, out)
	if got["infrastructure/redis/UserRedisAdapter.java"] != generator.StatusCreated {
		t.Errorf("adapter status = %q, want created", got["infrastructure/redis/UserRedisAdapter.java"])
	}
	if got["build.gradle"] != generator.StatusMerged {
		t.Errorf("build.gradle status = %q, want merged", got["build.gradle"])
	}

	build, err := os.ReadFile(filepath.Join(projectDir, "build.gradle"))
	if err != nil {
		t.Fatalf("read build.gradle: %v", err)
	}
	for _, dep := range []string{"spring-boot-starter'", "spring-boot-starter-data-redis"} {
		if strings.Count(string(build), dep) != 1 {
			t.Errorf("build.gradle should declare %s exactly once:\n%s", dep, build)
		}
	}

	adapter, err := os.ReadFile(filepath.Join(projectDir, "infrastructure", "redis", "UserRedisAdapter.java"))
	if err != nil {
		t.Fatalf("read adapter: %v", err)
	}
	if !strings.Contains(string(adapter), "package com.example.shop.infrastructure.redis;") {
		t.Errorf("adapter package not rendered:\n%s", adapter)
	}
}

func TestGenerateOutsideProject(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	_, err := runRoot(t, "generate", "entity", "User", "--dir", t.TempDir())
	if err == nil {
		t.Fatal("expected an error outside an archgen project")
	}
	if !strings.Contains(err.Error(), "archgen init") {
		t.Errorf("error should point at archgen init, got: %v", err)
	}
}

func TestGenerateSubcommands(t *testing.T) {
	t.Parallel()

	want := map[string][]string{
		"entity":         {"dir", "field", "var", "source", "force", "dry-run"},
		"usecase":        {"dir", "entity", "var"},
		"output-adapter": {"dir", "type", "entity", "field"},
		"input-adapter":  {"dir", "type", "entity", "field"},
	}
	for name, flags := range want {
		cmd, _, err := generateCmd.Find([]string{name})
		if err != nil || cmd == generateCmd {
			t.Errorf("generate %s is not registered", name)
			continue
		}
		for _, f := range flags {
			if cmd.Flags().Lookup(f) == nil {
				t.Errorf("generate %s: missing --%s flag", name, f)
			}
		}
	}

	entity, _, _ := generateCmd.Find([]string{"entity"})
	if entity.Flags().Lookup("type") != nil {
		t.Error("generate entity should not take --type")
	}
}

func TestRequestContext(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		target resolver.Target
		opts   cli.GenerateCLIOptions
		want   map[string]any
		fields int
	}{
		{
			name:   "entity",
			target: resolver.TargetEntity,
			opts:   cli.GenerateCLIOptions{Name: "User", Fields: []string{"name:String", "age:int"}},
			want:   map[string]any{"entityName": "User"},
			fields: 2,
		},
		{
			name:   "use case",
			target: resolver.TargetUseCase,
			opts:   cli.GenerateCLIOptions{Name: "place order", Entity: "Order"},
			want:   map[string]any{"useCaseName": "place order", "entityName": "Order"},
			fields: -1,
		},
		{
			name:   "adapter with variables",
			target: resolver.TargetOutputAdapter,
			opts:   cli.GenerateCLIOptions{Name: "user-cache", Entity: "User", Variables: []string{"ttl=60"}},
			want:   map[string]any{"adapterName": "user-cache", "entityName": "User", "ttl": 60},
			fields: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctx, err := requestContext(tt.target, tt.opts)
			if err != nil {
				t.Fatalf("requestContext() error = %v", err)
			}
			for k, v := range tt.want {
				if ctx[k] != v {
					t.Errorf("ctx[%q] = %v, want %v", k, ctx[k], v)
				}
			}
			fields, ok := ctx["fields"].([]map[string]any)
			if tt.fields < 0 {
				if ok {
					t.Error("use cases should not carry fields")
				}
				return
			}
			if len(fields) != tt.fields {
				t.Errorf("len(fields) = %d, want %d", len(fields), tt.fields)
			}
		})
	}
}

func TestRequestContextRejectsDuplicateField(t *testing.T) {
	t.Parallel()

	_, err := requestContext(resolver.TargetEntity, cli.GenerateCLIOptions{
		Name:   "User",
		Fields: []string{"name:String", "name:String"},
	})
	if err == nil {
		t.Fatal("expected an error for a duplicate field")
	}
}

func TestProjectSettings(t *testing.T) {
	t.Parallel()

	opts := cli.InitCLIOptions{
		BasePackage:  "com.example.shop",
		Architecture: "onion",
		Paradigm:     "reactive",
		Versions:     []string{"springBoot=3.3.0"},
	}
	settings, err := projectSettings(opts, "/tmp/projects/shop")
	if err != nil {
		t.Fatalf("projectSettings() error = %v", err)
	}
	if settings.Name != "shop" {
		t.Errorf("Name = %q, want shop", settings.Name)
	}
	if settings.Framework != "spring" {
		t.Errorf("Framework = %q, want the spring default", settings.Framework)
	}
	if settings.Paradigm != "reactive" {
		t.Errorf("Paradigm = %q, want reactive", settings.Paradigm)
	}
	if settings.Versions["springBoot"] != "3.3.0" {
		t.Errorf("Versions = %v", settings.Versions)
	}

	opts.Paradigm = "functional"
	if _, err := projectSettings(opts, "/tmp/projects/shop"); err == nil {
		t.Error("expected an error for an unknown paradigm")
	}
}

func TestMergeResults(t *testing.T) {
	t.Parallel()

	a := &generator.Result{Artifacts: []generator.Artifact{{Path: "a", Status: generator.StatusCreated}}}
	b := &generator.Result{
		Artifacts: []generator.Artifact{{Path: "b", Status: generator.StatusMergedWithConflicts}},
		Conflicts: []generator.Conflict{{Path: "b"}},
	}
	got := mergeResults([]*generator.Result{a, nil, b})
	if len(got.Artifacts) != 2 || got.Artifacts[1].Path != "b" {
		t.Errorf("Artifacts = %+v", got.Artifacts)
	}
	if len(got.Conflicts) != 1 {
		t.Errorf("Conflicts = %+v", got.Conflicts)
	}
}

func TestGetCommandPath(t *testing.T) {
	t.Parallel()

	root := &cobra.Command{Use: "archgen"}
	gen := &cobra.Command{Use: "generate"}
	entity := &cobra.Command{Use: "entity"}
	root.AddCommand(gen)
	gen.AddCommand(entity)

	tests := []struct {
		cmd  *cobra.Command
		want string
	}{
		{cmd: root, want: ""},
		{cmd: gen, want: "generate"},
		{cmd: entity, want: "generate.entity"},
	}
	for _, tt := range tests {
		if got := getCommandPath(tt.cmd); got != tt.want {
			t.Errorf("getCommandPath(%s) = %q, want %q", tt.cmd.Use, got, tt.want)
		}
	}
}

func TestVersionString(t *testing.T) {
	t.Parallel()

	got := versionString()
	if !strings.HasPrefix(got, version) || !strings.Contains(got, "commit: ") {
		t.Errorf("versionString() = %q", got)
	}
}
