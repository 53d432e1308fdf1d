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

package merge_test

import (
	"testing"

	"github.com/cowdogmoo/archgen/document"
	"github.com/cowdogmoo/archgen/merge"
	"github.com/cowdogmoo/archgen/templates"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const existingYAML = `# edited by hand
spring:
  application:
    name: shop
  data:
    redis:
      host: cache.internal # production cache
server:
  port: 8080
`

const fragmentYAML = `spring:
  data:
    redis:
      host: localhost
      port: 6379
server:
  port: 8080
`

func parseYAML(t *testing.T, s string) document.Document {
	t.Helper()
	doc, err := document.ParseYAML([]byte(s))
	require.NoError(t, err)
	return doc
}

func TestConfigConflictPreservation(t *testing.T) {
	existing := parseYAML(t, existingYAML)
	merged, plan := merge.Config(existing, parseYAML(t, fragmentYAML))

	assert.Equal(t, []string{"spring.data.redis.port"}, plan.Additions)
	assert.Equal(t, []merge.Conflict{{Key: "spring.data.redis.host", Old: "cache.internal", New: "localhost"}}, plan.Conflicts)
	assert.Equal(t, []string{"server.port"}, plan.Unchanged)
	assert.True(t, plan.Changed())
	assert.True(t, plan.HasConflicts())

	root := merged.Root()
	assert.Equal(t, "cache.internal", root.Lookup("spring", "data", "redis", "host").Value)
	assert.Equal(t, "6379", root.Lookup("spring", "data", "redis", "port").Value)
	assert.Equal(t, "shop", root.Lookup("spring", "application", "name").Value)

	assert.Nil(t, existing.Root().Lookup("spring", "data", "redis", "port"), "existing document must not change")

	out, err := merged.Bytes()
	require.NoError(t, err)
	assert.Contains(t, string(out), "# edited by hand")
	assert.Contains(t, string(out), "host: cache.internal # production cache")
}

func TestConfigShapeConflicts(t *testing.T) {
	tests := []struct {
		name     string
		existing string
		fragment string
		want     []merge.Conflict
	}{
		{
			name:     "scalar replaced by mapping",
			existing: "logging: verbose\n",
			fragment: "logging:\n  level: debug\n",
			want:     []merge.Conflict{{Key: "logging", Old: "verbose", New: "{level: debug}"}},
		},
		{
			name:     "sequence differs",
			existing: "profiles: [dev]\n",
			fragment: "profiles: [dev, local]\n",
			want:     []merge.Conflict{{Key: "profiles", Old: "[dev]", New: "[dev, local]"}},
		},
		{
			name:     "root kinds differ",
			existing: "- a\n",
			fragment: "a: 1\n",
			want:     []merge.Conflict{{Key: "(root)", Old: "[a]", New: "{a: 1}"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, plan := merge.Config(parseYAML(t, tt.existing), parseYAML(t, tt.fragment))
			assert.Equal(t, tt.want, plan.Conflicts)
			assert.Empty(t, plan.Additions)
		})
	}
}

func TestMergeIdempotent(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		kind     templates.ArtifactKind
		existing string
		fragment string
	}{
		{
			name:     "yaml",
			path:     "src/main/resources/application.yml",
			kind:     templates.ArtifactConfig,
			existing: existingYAML,
			fragment: fragmentYAML,
		},
		{
			name:     "properties",
			path:     "src/main/resources/application.properties",
			kind:     templates.ArtifactConfig,
			existing: "# shop\nspring.application.name=shop\nserver.port=9090\n",
			fragment: "spring.data.redis.host=localhost\nspring.data.redis.port=6379\nserver.port=8080\n",
		},
		{
			name:     "build",
			path:     "build.gradle",
			kind:     templates.ArtifactBuild,
			existing: "dependencies {\n    implementation 'org.springframework.boot:spring-boot-starter-web'\n}\n",
			fragment: "dependencies {\n    implementation 'org.springframework.boot:spring-boot-starter-data-redis'\n}\n",
		},
		{
			name:     "settings",
			path:     "settings.gradle.kts",
			kind:     templates.ArtifactBuild,
			existing: "rootProject.name = \"shop\"\ninclude(\"domain\")\n",
			fragment: "include(\"domain\")\ninclude(\"infrastructure:redis\")\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			once, first, err := merge.Merge([]byte(tt.existing), []byte(tt.fragment), tt.path, tt.kind, merge.Hints{})
			require.NoError(t, err)
			require.True(t, first.Changed())

			twice, second, err := merge.Merge(once, []byte(tt.fragment), tt.path, tt.kind, merge.Hints{})
			require.NoError(t, err)
			assert.Equal(t, string(once), string(twice))
			assert.Empty(t, second.Additions)
			assert.Equal(t, first.Conflicts, second.Conflicts)
		})
	}
}

func TestMergeNoAdditionsKeepsBytes(t *testing.T) {
	existing := []byte("server:\n    port:   8080   # odd spacing\n")
	out, plan, err := merge.Merge(existing, []byte("server:\n  port: 9090\n"), "application.yaml", templates.ArtifactConfig, merge.Hints{})
	require.NoError(t, err)
	assert.Equal(t, existing, out)
	assert.Len(t, plan.Conflicts, 1)
}

func TestMergeIntoAliasedMapping(t *testing.T) {
	existing := []byte("defaults: &d\n  host: localhost\nspring:\n  redis: *d\n")
	fragment := []byte("spring:\n  redis:\n    port: 6379\n")

	out, plan, err := merge.Merge(existing, fragment, "application.yaml", templates.ArtifactConfig, merge.Hints{})
	require.NoError(t, err)
	assert.Equal(t, string(existing), string(out))
	assert.Empty(t, plan.Additions)
	assert.Equal(t, []merge.Conflict{{Key: "spring.redis.port", New: "6379"}}, plan.Conflicts)

	again, second, err := merge.Merge(out, fragment, "application.yaml", templates.ArtifactConfig, merge.Hints{})
	require.NoError(t, err)
	assert.Equal(t, string(out), string(again))
	assert.Empty(t, second.Additions)
}

func TestMergeYAMLKeepsLayout(t *testing.T) {
	existing := "server:\n  port: 8080\n\nspring:\n  application:\n    name: shop   # inline\n\nlogging:\n  level:\n    root: INFO\n"
	fragment := "spring:\n  data:\n    mongodb:\n      uri: mongodb://localhost/shop\n"

	out, plan, err := merge.Merge([]byte(existing), []byte(fragment), "application.yaml", templates.ArtifactConfig, merge.Hints{})
	require.NoError(t, err)
	assert.Equal(t, []string{"spring.data"}, plan.Additions)
	assert.Equal(t, "server:\n  port: 8080\n\nspring:\n  application:\n    name: shop   # inline\n  data:\n    mongodb:\n      uri: mongodb://localhost/shop\n\nlogging:\n  level:\n    root: INFO\n", string(out))
}

func TestMergeProperties(t *testing.T) {
	out, plan, err := merge.Merge(
		[]byte("# shop\nspring.application.name=shop\nserver.port=9090\n"),
		[]byte("spring.data.redis.host=localhost\nserver.port=8080\n"),
		"application.properties", templates.ArtifactConfig, merge.Hints{})
	require.NoError(t, err)

	assert.Equal(t, "# shop\nspring.application.name=shop\nspring.data.redis.host=localhost\nserver.port=9090\n", string(out))
	assert.Equal(t, []string{"spring.data.redis.host"}, plan.Additions)
	assert.Equal(t, []merge.Conflict{{Key: "server.port", Old: "9090", New: "8080"}}, plan.Conflicts)
}

func TestMergeErrors(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		kind     templates.ArtifactKind
		existing string
		want     string
	}{
		{name: "opaque", path: "App.java", kind: templates.ArtifactOpaque, want: "not mergeable"},
		{name: "unparseable existing", path: "application.yml", kind: templates.ArtifactConfig, existing: "a: [1\n", want: "parse existing file"},
		{name: "unbalanced build", path: "build.gradle", kind: templates.ArtifactBuild, existing: "dependencies {\n", want: "parse existing file"},
		{name: "no codec", path: "notes.txt", kind: templates.ArtifactConfig, want: "unsupported document format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := merge.Merge([]byte(tt.existing), []byte("a: 1\n"), tt.path, tt.kind, merge.Hints{})
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestPlanCombine(t *testing.T) {
	p := &merge.Plan{Additions: []string{"a"}}
	p.Combine(&merge.Plan{Additions: []string{"b"}, Conflicts: []merge.Conflict{{Key: "c"}}, Notes: []string{"n"}})
	p.Combine(nil)
	assert.Equal(t, []string{"a", "b"}, p.Additions)
	assert.Len(t, p.Conflicts, 1)
	assert.Equal(t, []string{"n"}, p.Notes)
}
