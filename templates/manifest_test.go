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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseManifest(t *testing.T) {
	m, err := ParseManifest([]byte(testManifest))
	require.NoError(t, err)

	assert.Equal(t, "spring-clean", m.Name)
	assert.Equal(t, ">= 0.1.0", m.Requires)
	assert.Equal(t, []string{"reactive", "imperative"}, m.Paradigms)
	assert.Equal(t, []string{"javaVersion"}, m.VariableNames())
	assert.Equal(t, map[string]any{"javaVersion": "21"}, m.Defaults())
}

func TestParseManifestErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{name: "empty", data: "", wantErr: "parse pack.yaml"},
		{name: "blank name", data: "name: \"  \"\n", wantErr: "name is required"},
		{name: "unnamed variable", data: "name: p\nvariables:\n  - default: x\n", wantErr: "variables[0] has no name"},
		{name: "unknown key", data: "name: p\nfoo: bar\n", wantErr: "foo"},
		{name: "not yaml", data: "name: [", wantErr: "parse pack.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseManifest([]byte(tt.data))
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestSplitFrontMatter(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantMeta Meta
		wantBody string
		wantErr  string
	}{
		{
			name:     "no front matter",
			content:  "class A {}\n",
			wantBody: "class A {}\n",
		},
		{
			name:     "delimiter not on first line",
			content:  "a\n---\nb\n",
			wantBody: "a\n---\nb\n",
		},
		{
			name:     "full header",
			content:  "---\noutput: src/${.x}.java\nartifact: opaque-text\nmandatory: true\n---\nbody\n",
			wantMeta: Meta{Output: "src/${.x}.java", Artifact: ArtifactOpaque, Mandatory: true},
			wantBody: "body\n",
		},
		{
			name:     "merge hints",
			content:  "---\nmerge:\n  scope: test\n  test_configurations: [integrationImplementation]\n---\n",
			wantMeta: Meta{Merge: MergeHints{Scope: "test", TestConfigurations: []string{"integrationImplementation"}}},
			wantBody: "",
		},
		{
			name:     "empty header",
			content:  "---\n---\nbody",
			wantBody: "body",
		},
		{
			name:     "crlf delimiters",
			content:  "---\r\noutput: a.txt\r\n---\r\nbody",
			wantMeta: Meta{Output: "a.txt"},
			wantBody: "body",
		},
		{
			name:    "unclosed",
			content: "---\noutput: a\n",
			wantErr: "not closed",
		},
		{
			name:    "unknown field",
			content: "---\npath: a\n---\n",
			wantErr: "parse front matter",
		},
		{
			name:    "bad artifact",
			content: "---\nartifact: binary\n---\n",
			wantErr: "unknown artifact kind",
		},
		{
			name:    "bad scope",
			content: "---\nmerge:\n  scope: runtime\n---\n",
			wantErr: "unknown merge scope",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta, body, err := splitFrontMatter(tt.content)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMeta, meta)
			assert.Equal(t, tt.wantBody, body)
		})
	}
}

func TestInferArtifactKind(t *testing.T) {
	tests := []struct {
		path string
		want ArtifactKind
	}{
		{"build.gradle", ArtifactBuild},
		{"app/build.gradle.kts", ArtifactBuild},
		{"settings.gradle", ArtifactBuild},
		{"src/main/resources/application.yml", ArtifactConfig},
		{"src/main/resources/application.yaml", ArtifactConfig},
		{"src/main/resources/application.properties", ArtifactConfig},
		{"src/main/java/com/acme/User.java", ArtifactOpaque},
		{"gradle.build", ArtifactOpaque},
		{"README", ArtifactOpaque},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, InferArtifactKind(tt.path))
		})
	}
}

func TestArtifactKind(t *testing.T) {
	assert.True(t, ArtifactConfig.Mergeable())
	assert.True(t, ArtifactBuild.Mergeable())
	assert.False(t, ArtifactOpaque.Mergeable())
	assert.False(t, ArtifactDirectory.Mergeable())

	assert.True(t, ArtifactDirectory.Valid())
	assert.False(t, ArtifactKind("binary").Valid())
	assert.False(t, ArtifactKind("").Valid())
}
