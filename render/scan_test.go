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

package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScan(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{name: "plain text", body: "no actions here", want: []string{}},
		{name: "fields", body: "${.a.b} ${.c}", want: []string{"a", "c"}},
		{name: "function args", body: "${pascal .entityName} ${index .fields 0}", want: []string{"entityName", "fields"}},
		{name: "range body is element scope", body: "${range .fields}${.name}${end}", want: []string{"fields"}},
		{name: "range else is root scope", body: "${range .fields}${.name}${else}${.empty}${end}", want: []string{"empty", "fields"}},
		{name: "with body is element scope", body: "${with .user}${.email}${end}", want: []string{"user"}},
		{name: "dollar inside range", body: "${range $i, $f := .fields}${$f.name}${$.entityName}${end}", want: []string{"entityName", "fields"}},
		{name: "if branches", body: "${if .reactive}${.mono}${else}${.plain}${end}", want: []string{"mono", "plain", "reactive"}},
		{name: "has guard", body: `${if has . "desc"}${.desc}${end}`, want: []string{}},
		{name: "has guard does not cover else", body: `${if has . "desc"}${.desc}${else}${.desc}${end}`, want: []string{"desc"}},
		{name: "and of guards", body: `${if and (has . "a") (has $ "b")}${.a}${$.b}${end}`, want: []string{}},
		{name: "parenthesised chain", body: "${(index .fields 0).name}", want: []string{"fields"}},
		{name: "local variable", body: "${$x := .a}${$x}", want: []string{"a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Scan("t.tmpl", tt.body)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScanParseError(t *testing.T) {
	_, err := Scan("t.tmpl", "${range .x}")
	assert.Error(t, err)
}

func TestPackagePath(t *testing.T) {
	assert.Equal(t, "com/example/shop", PackagePath("com.example.shop"))
	assert.Equal(t, "com", PackagePath("com"))
	assert.Equal(t, "", PackagePath(""))
}

func TestIsLast(t *testing.T) {
	list := []string{"a", "b", "c"}
	for i, want := range []bool{false, false, true} {
		got, err := isLast(i, list)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := isLast(0, nil)
	assert.Error(t, err)
	_, err = isLast(0, 42)
	assert.Error(t, err)
}

func TestHas(t *testing.T) {
	assert.True(t, has(map[string]any{"a": nil}, "a"))
	assert.False(t, has(map[string]any{}, "a"))
	assert.True(t, has(Context{"a": 1}, "a"))
	assert.False(t, has(nil, "a"))
	assert.False(t, has("not a map", "a"))
}

func TestDefaultValue(t *testing.T) {
	assert.Equal(t, "x", defaultValue("x", ""))
	assert.Equal(t, "x", defaultValue("x", nil))
	assert.Equal(t, "x", defaultValue("x", []string{}))
	assert.Equal(t, "y", defaultValue("x", "y"))
	assert.Equal(t, 3, defaultValue(1, 3))
}
