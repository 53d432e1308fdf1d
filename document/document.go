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

// Package document parses and serializes the structured files the generator
// merges into: YAML and .properties configuration and Gradle build
// descriptors.
//
// Codecs keep comments and key order across a parse and serialize round
// trip, and leave every line they do not insert byte for byte. The YAML
// codec encodes inserted keys through yaml.v3 at the detected indentation
// width and splices them into the source text.
package document

import (
	"fmt"
	"path"
	"strings"

	"github.com/cowdogmoo/archgen/errors"
)

// ErrUnsupportedFormat is returned by Parse for file types without a codec.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// Document is a parsed structured file.
type Document interface {
	// Root returns a snapshot of the document as a node tree. Changing the
	// returned nodes does not change the document.
	Root() *Node
	// Insert adds value at path. Missing intermediate mappings are created.
	// Inserting at an existing key fails.
	Insert(path []string, value *Node) error
	// Clone returns an independent copy.
	Clone() Document
	// Bytes serializes the document.
	Bytes() ([]byte, error)
}

// Format names a concrete syntax.
type Format string

// Supported formats.
const (
	FormatYAML       Format = "yaml"
	FormatProperties Format = "properties"
	FormatGradle     Format = "gradle"
)

// FormatOf picks the format for a file path.
func FormatOf(filePath string) (Format, bool) {
	base := path.Base(filePath)
	switch {
	case IsBuildFile(base):
		return FormatGradle, true
	case strings.HasSuffix(base, ".yaml"), strings.HasSuffix(base, ".yml"):
		return FormatYAML, true
	case strings.HasSuffix(base, ".properties"):
		return FormatProperties, true
	}
	return "", false
}

// IsBuildFile reports whether base names a Gradle build or settings script.
func IsBuildFile(base string) bool {
	switch base {
	case "build.gradle", "build.gradle.kts", "settings.gradle", "settings.gradle.kts":
		return true
	}
	return false
}

// Parse decodes data with the codec chosen by filePath.
func Parse(filePath string, data []byte) (Document, error) {
	format, ok := FormatOf(filePath)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filePath)
	}
	switch format {
	case FormatYAML:
		return ParseYAML(data)
	case FormatProperties:
		return ParseProperties(data)
	default:
		return ParseBuild(path.Base(filePath), data)
	}
}

// KeyString joins a key path for display.
func KeyString(path []string) string {
	return strings.Join(path, ".")
}
