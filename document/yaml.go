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
	"bufio"
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/cowdogmoo/archgen/errors"
	"gopkg.in/yaml.v3"
)

const defaultYAMLIndent = 2

// YAMLDocument is a YAML file held as a yaml.v3 node tree. Serializing a
// document with inserted keys splices them into the source text; lines
// outside the insertions are kept byte for byte.
type YAMLDocument struct {
	doc    *yaml.Node
	src    []byte
	orig   map[*yaml.Node]bool
	indent int
}

// ParseYAML decodes a single YAML document. Empty input yields an empty
// mapping.
func ParseYAML(data []byte) (*YAMLDocument, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))

	var doc yaml.Node
	switch err := dec.Decode(&doc); {
	case errors.Is(err, io.EOF):
	case err != nil:
		return nil, errors.Wrap("parse yaml", "", err)
	default:
		var extra yaml.Node
		if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse yaml: multi-document files are not supported")
		}
	}

	orig := map[*yaml.Node]bool{}
	markNodes(&doc, orig)

	if doc.Kind == 0 {
		doc = yaml.Node{Kind: yaml.DocumentNode}
	}
	if len(doc.Content) == 0 {
		doc.Content = []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}
	}
	return &YAMLDocument{doc: &doc, src: data, orig: orig, indent: detectIndent(data)}, nil
}

func markNodes(n *yaml.Node, seen map[*yaml.Node]bool) {
	if n == nil || seen[n] {
		return
	}
	seen[n] = true
	for _, c := range n.Content {
		markNodes(c, seen)
	}
}

func (d *YAMLDocument) body() *yaml.Node {
	return d.doc.Content[0]
}

// Root implements Document.
func (d *YAMLDocument) Root() *Node {
	return fromYAML(d.body())
}

// Insert implements Document. Keys are never inserted through an alias:
// the new key would land in the anchored mapping and change every other
// place that refers to it.
func (d *YAMLDocument) Insert(path []string, value *Node) error {
	if len(path) == 0 {
		return fmt.Errorf("insert: empty key path")
	}
	cur := resolveAlias(d.body())
	for i, key := range path {
		if cur.Kind != yaml.MappingNode {
			return fmt.Errorf("insert %s: %s is not a mapping", KeyString(path), KeyString(path[:i]))
		}
		v := mappingValue(cur, key)
		if i == len(path)-1 {
			if v != nil {
				return fmt.Errorf("insert %s: key exists", KeyString(path))
			}
			cur.Content = append(cur.Content, keyNode(key), toYAML(value))
			return nil
		}
		if v == nil {
			v = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
			cur.Content = append(cur.Content, keyNode(key), v)
		}
		if v.Kind == yaml.AliasNode {
			return fmt.Errorf("insert %s: %s is an alias", KeyString(path), KeyString(path[:i+1]))
		}
		cur = v
	}
	return nil
}

// Clone implements Document.
func (d *YAMLDocument) Clone() Document {
	copies := map[*yaml.Node]*yaml.Node{}
	doc := copyYAML(d.doc, copies)
	orig := make(map[*yaml.Node]bool, len(d.orig))
	for n := range d.orig {
		if cp, ok := copies[n]; ok {
			orig[cp] = true
		}
	}
	return &YAMLDocument{doc: doc, src: d.src, orig: orig, indent: d.indent}
}

// Bytes implements Document.
func (d *YAMLDocument) Bytes() ([]byte, error) {
	splices, ok, err := d.splices()
	if err != nil {
		return nil, err
	}
	if !ok {
		return d.encode(d.doc)
	}
	if len(splices) == 0 {
		return d.src, nil
	}

	lines := strings.SplitAfter(string(d.src), "\n")
	var buf bytes.Buffer
	next := 0
	for i, line := range lines {
		buf.WriteString(line)
		for next < len(splices) && splices[next].after == i {
			if !strings.HasSuffix(line, "\n") {
				buf.WriteString("\n")
				line += "\n"
			}
			buf.WriteString(splices[next].text)
			next++
		}
	}
	return buf.Bytes(), nil
}

func (d *YAMLDocument) encode(n *yaml.Node) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(d.indent)
	if err := enc.Encode(n); err != nil {
		return nil, errors.Wrap("encode yaml", "", err)
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap("encode yaml", "", err)
	}
	return buf.Bytes(), nil
}

// splice is encoded text placed after a zero-based source line.
type splice struct {
	after  int
	indent int
	text   string
}

// splices collects the text for keys added to mappings that came from the
// source. ok is false when the additions cannot be placed in the source
// text (no source mapping, or an inserted key in a flow mapping) and the
// whole document has to be encoded instead.
func (d *YAMLDocument) splices() ([]splice, bool, error) {
	body := d.body()
	if !d.orig[body] {
		return nil, false, nil
	}
	lines := strings.SplitAfter(string(d.src), "\n")

	var out []splice
	var walk func(m *yaml.Node) (bool, error)
	walk = func(m *yaml.Node) (bool, error) {
		switch m.Kind {
		case yaml.SequenceNode:
			for _, item := range m.Content {
				if ok, err := walk(item); !ok || err != nil {
					return ok, err
				}
			}
			return true, nil
		case yaml.MappingNode:
		default:
			return true, nil
		}

		split := len(m.Content)
		for i := 0; i+1 < len(m.Content); i += 2 {
			if !d.orig[m.Content[i]] {
				split = i
				break
			}
			if ok, err := walk(m.Content[i+1]); !ok || err != nil {
				return ok, err
			}
		}
		if split == len(m.Content) {
			return true, nil
		}
		if split == 0 || m.Style&yaml.FlowStyle != 0 {
			return false, nil
		}

		lastKey := m.Content[split-2]
		indent := m.Content[0].Column - 1
		text, err := d.encode(&yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", Content: m.Content[split:]})
		if err != nil {
			return false, err
		}
		out = append(out, splice{
			after:  regionEnd(lines, lastKey.Line-1, indent),
			indent: indent,
			text:   indentYAMLText(string(text), indent),
		})
		return true, nil
	}

	ok, err := walk(body)
	if !ok || err != nil {
		return nil, ok, err
	}
	// Nested mappings ending on the same line go before their parents.
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].after != out[j].after {
			return out[i].after < out[j].after
		}
		return out[i].indent > out[j].indent
	})
	return out, true, nil
}

// regionEnd returns the last content line of the block that starts at line
// start and holds keys indented by indent. Blank and comment lines after
// the block stay after it.
func regionEnd(lines []string, start, indent int) int {
	last := start
	for i := start + 1; i < len(lines); i++ {
		line := strings.TrimRight(lines[i], "\r\n")
		trimmed := strings.TrimLeft(line, " ")
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		n := len(line) - len(trimmed)
		if n < indent || (n == 0 && (strings.HasPrefix(trimmed, "---") || strings.HasPrefix(trimmed, "..."))) {
			break
		}
		last = i
	}
	return last
}

func indentYAMLText(text string, indent int) string {
	if indent == 0 {
		return text
	}
	pad := strings.Repeat(" ", indent)
	lines := strings.SplitAfter(text, "\n")
	var b strings.Builder
	for _, line := range lines {
		if line == "" {
			continue
		}
		if line != "\n" {
			b.WriteString(pad)
		}
		b.WriteString(line)
	}
	return b.String()
}

func fromYAML(n *yaml.Node) *Node {
	n = resolveAlias(n)
	switch n.Kind {
	case yaml.MappingNode:
		out := Mapping()
		out.yaml = n
		for i := 0; i+1 < len(n.Content); i += 2 {
			out.Fields = append(out.Fields, Field{Key: n.Content[i].Value, Value: fromYAML(n.Content[i+1])})
		}
		return out
	case yaml.SequenceNode:
		out := Sequence()
		out.yaml = n
		for _, item := range n.Content {
			out.Items = append(out.Items, fromYAML(item))
		}
		return out
	case yaml.DocumentNode:
		if len(n.Content) > 0 {
			return fromYAML(n.Content[0])
		}
		return Mapping()
	}
	out := Scalar(n.Value)
	out.yaml = n
	return out
}

// toYAML builds a yaml.v3 node for n. Scalars decoded from YAML keep their
// original node; collections are rebuilt from their children and keep the
// original style.
func toYAML(n *Node) *yaml.Node {
	orig, _ := n.yaml.(*yaml.Node)
	switch n.Kind {
	case MappingNode:
		out := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		if orig != nil {
			out.Style = orig.Style
		}
		for _, f := range n.Fields {
			out.Content = append(out.Content, keyNode(f.Key), toYAML(f.Value))
		}
		return out
	case SequenceNode:
		out := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		if orig != nil {
			out.Style = orig.Style
		}
		for _, item := range n.Items {
			out.Content = append(out.Content, toYAML(item))
		}
		return out
	}
	if orig != nil && orig.Kind == yaml.ScalarNode && orig.Value == n.Value {
		return copyYAML(orig, map[*yaml.Node]*yaml.Node{})
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Value: n.Value}
}

func keyNode(key string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}
}

func mappingValue(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

// copyYAML deep-copies n. Aliases point at the copy of their anchor;
// copies records each copied node.
func copyYAML(n *yaml.Node, copies map[*yaml.Node]*yaml.Node) *yaml.Node {
	if n == nil {
		return nil
	}
	if cp, ok := copies[n]; ok {
		return cp
	}
	cp := *n
	copies[n] = &cp
	cp.Content = make([]*yaml.Node, len(n.Content))
	for i, c := range n.Content {
		cp.Content[i] = copyYAML(c, copies)
	}
	if n.Alias != nil {
		cp.Alias = copyYAML(n.Alias, copies)
	}
	return &cp
}

// detectIndent returns the smallest indentation used in data, falling back
// to two spaces.
func detectIndent(data []byte) int {
	indent := 0
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := sc.Text()
		trimmed := strings.TrimLeft(line, " ")
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if n := len(line) - len(trimmed); n > 0 && (indent == 0 || n < indent) {
			indent = n
		}
	}
	if indent < 2 || indent > 8 {
		return defaultYAMLIndent
	}
	return indent
}
