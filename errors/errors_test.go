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

package errors

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap(t *testing.T) {
	baseErr := errors.New("something went wrong")

	tests := []struct {
		name           string
		action         string
		detail         string
		err            error
		expectedPrefix string
		shouldContain  []string
	}{
		{
			name:           "wrap with action only",
			action:         "load pack",
			err:            baseErr,
			expectedPrefix: "failed to load pack:",
			shouldContain:  []string{"failed to load pack:", "something went wrong"},
		},
		{
			name:           "wrap with action and detail",
			action:         "parse front matter",
			detail:         "architectures/hexagonal/entity/Entity.java",
			err:            baseErr,
			expectedPrefix: "failed to parse front matter (architectures/hexagonal/entity/Entity.java):",
			shouldContain:  []string{"failed to parse front matter", "Entity.java", "something went wrong"},
		},
		{
			name:   "wrap nil error returns nil",
			action: "do something",
			detail: "details",
			err:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Wrap(tt.action, tt.detail, tt.err)

			if tt.err == nil {
				assert.NoError(t, result)
				return
			}

			errMsg := result.Error()
			if !strings.HasPrefix(errMsg, tt.expectedPrefix) {
				t.Errorf("Expected error to start with %q, got: %q", tt.expectedPrefix, errMsg)
			}
			for _, expected := range tt.shouldContain {
				assert.Contains(t, errMsg, expected)
			}
			assert.True(t, errors.Is(result, baseErr))
		})
	}
}

func TestTypedErrorsMatchSentinels(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")

	tests := []struct {
		name     string
		err      error
		sentinel error
		contains []string
	}{
		{
			name:     "source error",
			err:      &SourceError{Source: "https://example.com/pack.git@main", Err: cause},
			sentinel: ErrSourceUnavailable,
			contains: []string{"https://example.com/pack.git@main", "connection refused"},
		},
		{
			name:     "pack error with path",
			err:      &PackError{Pack: "/tmp/pack", Path: "pack.yaml", Reason: "missing"},
			sentinel: ErrInvalidPackStructure,
			contains: []string{"/tmp/pack", "pack.yaml", "missing"},
		},
		{
			name:     "template not found",
			err:      &ResolveError{Kind: ErrTemplateNotFound, Path: "adapters/output/redis"},
			sentinel: ErrTemplateNotFound,
			contains: []string{"template not found", "adapters/output/redis"},
		},
		{
			name: "unsupported selector with suggestions",
			err: &ResolveError{
				Kind:        ErrUnsupportedSelector,
				Path:        "adapters/output/rdis",
				Suggestions: []string{"redis"},
			},
			sentinel: ErrUnsupportedSelector,
			contains: []string{"did you mean", "redis"},
		},
		{
			name:     "undefined variable",
			err:      &UndefinedVariableError{Name: "entityName", TemplatePath: "architectures/hexagonal/entity/Entity.java"},
			sentinel: ErrUndefinedVariable,
			contains: []string{`"entityName"`, "architectures/hexagonal/entity/Entity.java"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, Is(tt.err, tt.sentinel))
			for _, s := range tt.contains {
				assert.Contains(t, tt.err.Error(), s)
			}
		})
	}
}

func TestSourceErrorUnwrapsCause(t *testing.T) {
	cause := errors.New("offline")
	err := Wrap("resolve pack", "", &SourceError{Source: "x", Err: cause})

	assert.True(t, errors.Is(err, cause))
	assert.True(t, errors.Is(err, ErrSourceUnavailable))

	var se *SourceError
	assert.True(t, As(err, &se))
	assert.Equal(t, "x", se.Source)
}
