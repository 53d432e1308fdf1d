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

package document

import (
	"fmt"
	"slices"
	"strings"
)

// Properties is a Java .properties file. Lines are kept verbatim; Insert
// adds one line per key next to the entry sharing the longest dotted key
// prefix.
type Properties struct {
	lines   []string
	entries []propEntry
	newline bool
	sep     string
}

type propEntry struct {
	key   string
	value string
	// last is the index of the final physical line of the entry.
	last int
}

// ParseProperties decodes data. It never fails on content; malformed lines
// are kept as written and ignored.
func ParseProperties(data []byte) (*Properties, error) {
	text := string(data)
	p := &Properties{newline: text == "" || strings.HasSuffix(text, "\n"), sep: "="}
	text = strings.TrimSuffix(text, "\n")
	if text != "" {
		p.lines = strings.Split(text, "\n")
	}
	p.index()
	if len(p.entries) > 0 {
		p.sep = p.detectSeparator()
	}
	return p, nil
}

func (p *Properties) index() {
	p.entries = p.entries[:0]
	for i := 0; i < len(p.lines); i++ {
		logical := strings.TrimLeft(strings.TrimSuffix(p.lines[i], "\r"), " \t\f")
		if logical == "" || logical[0] == '#' || logical[0] == '!' {
			continue
		}
		for continues(logical) && i+1 < len(p.lines) {
			i++
			next := strings.TrimLeft(strings.TrimSuffix(p.lines[i], "\r"), " \t\f")
			logical = logical[:len(logical)-1] + next
		}
		key, value := splitProperty(logical)
		p.entries = append(p.entries, propEntry{key: key, value: value, last: i})
	}
}

// continues reports whether a line ends in an odd number of backslashes.
func continues(line string) bool {
	n := 0
	for i := len(line) - 1; i >= 0 && line[i] == '\\'; i-- {
		n++
	}
	return n%2 == 1
}

func splitProperty(line string) (string, string) {
	end := len(line)
	for i := 0; i < len(line); i++ {
		c := line[i]
		if c == '\\' {
			i++
			continue
		}
		if c == '=' || c == ':' || c == ' ' || c == '\t' || c == '\f' {
			end = i
			break
		}
	}
	key := line[:end]
	rest := strings.TrimLeft(line[end:], " \t\f")
	if rest != "" && (rest[0] == '=' || rest[0] == ':') {
		rest = strings.TrimLeft(rest[1:], " \t\f")
	}
	return unescapeProperty(key), unescapeProperty(rest)
}

func unescapeProperty(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'f':
			b.WriteByte('\f')
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

func escapeProperty(s string, key bool) string {
	var b strings.Builder
	for i, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '=', ':', '#', '!':
			if key {
				b.WriteByte('\\')
			}
			b.WriteRune(r)
		case ' ':
			if key || i == 0 {
				b.WriteByte('\\')
			}
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// detectSeparator returns the key/value separator of the first entry line
// that is written on a single line.
func (p *Properties) detectSeparator() string {
	for _, e := range p.entries {
		line := strings.TrimLeft(p.lines[e.last], " \t\f")
		if continues(line) {
			continue
		}
		for _, sep := range []string{" = ", "=", ": ", ":"} {
			if strings.HasPrefix(line, escapeProperty(e.key, true)+sep) {
				return sep
			}
		}
	}
	return "="
}

// Get returns the value of key.
func (p *Properties) Get(key string) (string, bool) {
	for i := len(p.entries) - 1; i >= 0; i-- {
		if p.entries[i].key == key {
			return p.entries[i].value, true
		}
	}
	return "", false
}

// Keys returns the distinct keys in file order.
func (p *Properties) Keys() []string {
	seen := map[string]bool{}
	var keys []string
	for _, e := range p.entries {
		if !seen[e.key] {
			seen[e.key] = true
			keys = append(keys, e.key)
		}
	}
	return keys
}

// Root implements Document. Keys are flat dotted names; a repeated key
// reports its last value.
func (p *Properties) Root() *Node {
	root := Mapping()
	for _, e := range p.entries {
		root.Set(e.key, Scalar(e.value))
	}
	return root
}

// Insert implements Document. The path is joined with dots. Mapping
// values insert one key per leaf; sequences are written comma separated.
func (p *Properties) Insert(path []string, value *Node) error {
	key := KeyString(path)
	if key == "" {
		return fmt.Errorf("insert: empty key path")
	}
	switch value.Kind {
	case MappingNode:
		for _, f := range value.Fields {
			if err := p.Insert(append(append([]string(nil), path...), f.Key), f.Value); err != nil {
				return err
			}
		}
		return nil
	case SequenceNode:
		items := make([]string, 0, len(value.Items))
		for _, item := range value.Items {
			items = append(items, item.String())
		}
		return p.set(key, strings.Join(items, ","))
	}
	return p.set(key, value.Value)
}

func (p *Properties) set(key, value string) error {
	if _, ok := p.Get(key); ok {
		return fmt.Errorf("insert %s: key exists", key)
	}
	line := escapeProperty(key, true) + p.sep + escapeProperty(value, false)
	at := p.insertionPoint(key)
	p.lines = slices.Insert(p.lines, at, line)
	p.index()
	return nil
}

// insertionPoint returns the line index after the last entry sharing the
// most leading key segments with key, or the end of the file.
func (p *Properties) insertionPoint(key string) int {
	best, at := 0, len(p.lines)
	for _, e := range p.entries {
		if n := sharedSegments(e.key, key); n > 0 && n >= best {
			best, at = n, e.last+1
		}
	}
	return at
}

func sharedSegments(a, b string) int {
	as, bs := strings.Split(a, "."), strings.Split(b, ".")
	n := 0
	for n < len(as) && n < len(bs) && as[n] == bs[n] {
		n++
	}
	return n
}

// Clone implements Document.
func (p *Properties) Clone() Document {
	cp := &Properties{
		lines:   append([]string(nil), p.lines...),
		newline: p.newline,
		sep:     p.sep,
	}
	cp.index()
	return cp
}

// Bytes implements Document.
func (p *Properties) Bytes() ([]byte, error) {
	out := strings.Join(p.lines, "\n")
	if p.newline && len(p.lines) > 0 {
		out += "\n"
	}
	return []byte(out), nil
}
