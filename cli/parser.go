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

package cli

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Parser turns raw flag values into typed values.
type Parser struct{}

// NewParser creates a new CLI parser.
func NewParser() *Parser {
	return &Parser{}
}

// ParseKeyValue splits "key=value". The value may contain further '='
// characters; the key may not be empty.
func ParseKeyValue(s string) (string, string, error) {
	key, value, ok := strings.Cut(s, "=")
	if !ok {
		return "", "", fmt.Errorf("invalid format %q (expected key=value)", s)
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", "", fmt.Errorf("empty key in %q", s)
	}
	return key, strings.TrimSpace(value), nil
}

// ValidateKeyValueFormat reports whether s parses as key=value.
func ValidateKeyValueFormat(s string) bool {
	_, _, err := ParseKeyValue(s)
	return err == nil
}

// ParseKeyValuePairs parses a list of key=value strings. Later keys win.
func (p *Parser) ParseKeyValuePairs(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, err := ParseKeyValue(pair)
		if err != nil {
			return nil, err
		}
		out[key] = value
	}
	return out, nil
}

// ParseVariables parses key=value strings into render variables. Values
// are read as YAML scalars or flow collections, so "port=8080" is an int,
// "secure=true" a bool and "modules=[a, b]" a list. A value that does not
// parse stays a string.
func (p *Parser) ParseVariables(pairs []string) (map[string]any, error) {
	raw, err := p.ParseKeyValuePairs(pairs)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(raw))
	for key, value := range raw {
		var v any
		if value == "" || yaml.Unmarshal([]byte(value), &v) != nil || v == nil {
			v = value
		}
		out[key] = v
	}
	return out, nil
}

// ParseFields parses "name:type" field declarations in order. A missing
// type defaults to String.
func (p *Parser) ParseFields(specs []string) ([]map[string]any, error) {
	fields := make([]map[string]any, 0, len(specs))
	seen := map[string]bool{}
	for _, spec := range specs {
		name, typ, _ := strings.Cut(spec, ":")
		name, typ = strings.TrimSpace(name), strings.TrimSpace(typ)
		if name == "" {
			return nil, fmt.Errorf("invalid field %q (expected name:type)", spec)
		}
		if seen[name] {
			return nil, fmt.Errorf("field %q declared twice", name)
		}
		seen[name] = true
		if typ == "" {
			typ = "String"
		}
		fields = append(fields, map[string]any{"name": name, "type": typ})
	}
	return fields, nil
}
