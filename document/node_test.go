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

package document_test

import (
	"testing"

	"github.com/cowdogmoo/archgen/document"
	"github.com/stretchr/testify/assert"
)

func TestNodeEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b *document.Node
		want bool
	}{
		{name: "same scalar", a: document.Scalar("8080"), b: document.Scalar("8080"), want: true},
		{name: "different scalar", a: document.Scalar("8080"), b: document.Scalar("9090")},
		{name: "kind mismatch", a: document.Scalar("a"), b: document.Sequence(document.Scalar("a"))},
		{
			name: "mapping order ignored",
			a:    document.Mapping().Set("a", document.Scalar("1")).Set("b", document.Scalar("2")),
			b:    document.Mapping().Set("b", document.Scalar("2")).Set("a", document.Scalar("1")),
			want: true,
		},
		{
			name: "sequence order matters",
			a:    document.Sequence(document.Scalar("a"), document.Scalar("b")),
			b:    document.Sequence(document.Scalar("b"), document.Scalar("a")),
		},
		{name: "nil", a: nil, b: nil, want: true},
		{name: "nil and value", a: nil, b: document.Scalar("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Equal(tt.b))
		})
	}
}

func TestNodeAccess(t *testing.T) {
	root := document.Mapping().
		Set("spring", document.Mapping().Set("data", document.Mapping().Set("redis", document.Mapping().Set("port", document.Scalar("6379"))))).
		Set("profiles", document.Sequence(document.Scalar("dev"), document.Scalar("test")))

	assert.Equal(t, "6379", root.Lookup("spring", "data", "redis", "port").Value)
	assert.Nil(t, root.Lookup("spring", "missing"))
	assert.Nil(t, root.Lookup("profiles", "x"))
	assert.Equal(t, []string{"spring", "profiles"}, root.Keys())
	assert.Equal(t, "{spring: {data: {redis: {port: 6379}}}, profiles: [dev, test]}", root.String())

	cp := root.Clone()
	cp.Lookup("spring", "data", "redis").Set("port", document.Scalar("6380"))
	assert.Equal(t, "6379", root.Lookup("spring", "data", "redis", "port").Value)

	root.Set("profiles", document.Scalar("prod"))
	assert.Equal(t, []string{"spring", "profiles"}, root.Keys())
	assert.Equal(t, "prod", root.Get("profiles").Value)
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		path string
		want document.Format
		ok   bool
	}{
		{path: "src/main/resources/application.yml", want: document.FormatYAML, ok: true},
		{path: "config/app.yaml", want: document.FormatYAML, ok: true},
		{path: "src/main/resources/application.properties", want: document.FormatProperties, ok: true},
		{path: "build.gradle", want: document.FormatGradle, ok: true},
		{path: "infrastructure/settings.gradle.kts", want: document.FormatGradle, ok: true},
		{path: "src/main/java/App.java"},
		{path: "gradle.lockfile"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := document.FormatOf(tt.path)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseUnsupported(t *testing.T) {
	_, err := document.Parse("App.java", []byte("class App {}"))
	assert.ErrorIs(t, err, document.ErrUnsupportedFormat)
}
