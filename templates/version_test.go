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
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVersionManager(t *testing.T) {
	vm, err := NewVersionManager("1.4.0")
	require.NoError(t, err)
	assert.Equal(t, "1.4.0", vm.toolVersion.String())

	_, err = NewVersionManager("not-a-version")
	assert.ErrorContains(t, err, "invalid archgen version")
}

func TestCheckCompatibility(t *testing.T) {
	vm, err := NewVersionManager("1.4.0")
	require.NoError(t, err)

	tests := []struct {
		name       string
		requires   string
		compatible bool
		wantErr    bool
	}{
		{name: "no constraint", requires: "", compatible: true},
		{name: "satisfied", requires: ">= 1.0.0", compatible: true},
		{name: "caret", requires: "^1.2", compatible: true},
		{name: "too old", requires: ">= 2.0.0", compatible: false},
		{name: "invalid", requires: ">> nope", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, warnings, err := vm.CheckCompatibility(tt.requires)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.compatible, ok)
			if !tt.compatible {
				require.Len(t, warnings, 1)
				assert.Contains(t, warnings[0], tt.requires)
			}
		})
	}
}

func TestParseVersion(t *testing.T) {
	v, err := ParseVersion("v1.2.3")
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", v.String())

	v, err = ParseVersion(LatestRef)
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = ParseVersion("main")
	assert.Error(t, err)
}

func TestIsPinnedRef(t *testing.T) {
	assert.True(t, IsPinnedRef("v1.0.0"))
	assert.True(t, IsPinnedRef("2.1.0"))
	assert.False(t, IsPinnedRef("main"))
	assert.False(t, IsPinnedRef(LatestRef))
	assert.False(t, IsPinnedRef(""))
}

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		v1, v2 string
		want   int
	}{
		{"1.0.0", "1.0.1", -1},
		{"v2.0.0", "1.9.9", 1},
		{"1.0.0", "v1.0.0", 0},
		{LatestRef, "9.0.0", 1},
		{"9.0.0", LatestRef, -1},
		{LatestRef, LatestRef, 0},
	}
	for _, tt := range tests {
		t.Run(tt.v1+"_"+tt.v2, func(t *testing.T) {
			got, err := CompareVersions(tt.v1, tt.v2)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := CompareVersions("main", "1.0.0")
	assert.Error(t, err)
}

func TestGetLatestVersion(t *testing.T) {
	ctx := context.Background()

	latest, err := GetLatestVersion(ctx, []string{"v1.0.0", "nightly", "v1.10.0", "v1.9.3"})
	require.NoError(t, err)
	assert.Equal(t, "v1.10.0", latest)

	_, err = GetLatestVersion(ctx, nil)
	assert.ErrorContains(t, err, "no versions provided")

	_, err = GetLatestVersion(ctx, []string{"nightly", "stable"})
	assert.ErrorContains(t, err, "no semantic version")
}
