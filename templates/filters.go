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
	"iter"
	"strings"
)

// Filter narrows entry listings for display.
type Filter struct{}

// NewFilter creates a new entry filter.
func NewFilter() *Filter {
	return &Filter{}
}

// Collect drains seq into a slice.
func (f *Filter) Collect(seq iter.Seq[*Entry]) []*Entry {
	var out []*Entry
	for e := range seq {
		out = append(out, e)
	}
	return out
}

// ByLevel keeps entries under one top-level directory: "architectures",
// "frameworks" or "adapters". "all" and "" keep everything.
func (f *Filter) ByLevel(entries []*Entry, level string) []*Entry {
	if level == "all" || level == "" {
		return entries
	}

	var filtered []*Entry
	for _, e := range entries {
		if strings.HasPrefix(e.Path(), level+"/") {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// ByKind keeps entries of the given kind. Empty keeps everything.
func (f *Filter) ByKind(entries []*Entry, kind string) []*Entry {
	if kind == "" {
		return entries
	}

	var filtered []*Entry
	for _, e := range entries {
		if string(e.Kind()) == kind {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// ByName keeps entries whose path contains query, case-insensitively.
func (f *Filter) ByName(entries []*Entry, query string) []*Entry {
	if query == "" {
		return entries
	}

	query = strings.ToLower(query)
	var filtered []*Entry
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Path()), query) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}
