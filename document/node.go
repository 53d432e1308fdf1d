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
	"slices"
	"strings"
)

// NodeKind tags the variant a Node holds.
type NodeKind int

// Node kinds.
const (
	ScalarNode NodeKind = iota + 1
	SequenceNode
	MappingNode
)

func (k NodeKind) String() string {
	switch k {
	case ScalarNode:
		return "scalar"
	case SequenceNode:
		return "sequence"
	case MappingNode:
		return "mapping"
	}
	return "invalid"
}

// Node is a value in a structured document: a scalar, a sequence of nodes
// or a mapping with ordered string keys.
type Node struct {
	Kind   NodeKind
	Value  string
	Items  []*Node
	Fields []Field

	// yaml keeps the node a value was decoded from so that re-inserting it
	// into a YAML document retains its style and comments.
	yaml any
}

// Field is one key of a mapping.
type Field struct {
	Key   string
	Value *Node
}

// Scalar returns a scalar node.
func Scalar(value string) *Node {
	return &Node{Kind: ScalarNode, Value: value}
}

// Sequence returns a sequence node holding items.
func Sequence(items ...*Node) *Node {
	return &Node{Kind: SequenceNode, Items: items}
}

// Mapping returns an empty mapping node.
func Mapping() *Node {
	return &Node{Kind: MappingNode}
}

// Set adds or replaces key in a mapping and returns n.
func (n *Node) Set(key string, value *Node) *Node {
	for i := range n.Fields {
		if n.Fields[i].Key == key {
			n.Fields[i].Value = value
			return n
		}
	}
	n.Fields = append(n.Fields, Field{Key: key, Value: value})
	return n
}

// Get returns the value of key, or nil when n is not a mapping or lacks
// the key.
func (n *Node) Get(key string) *Node {
	if n == nil || n.Kind != MappingNode {
		return nil
	}
	for _, f := range n.Fields {
		if f.Key == key {
			return f.Value
		}
	}
	return nil
}

// Lookup follows path from n.
func (n *Node) Lookup(path ...string) *Node {
	cur := n
	for _, key := range path {
		cur = cur.Get(key)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// Keys returns the mapping keys in document order.
func (n *Node) Keys() []string {
	if n == nil {
		return nil
	}
	keys := make([]string, 0, len(n.Fields))
	for _, f := range n.Fields {
		keys = append(keys, f.Key)
	}
	return keys
}

// Equal reports whether n and o hold the same value. Mapping key order is
// not significant; sequence order is.
func (n *Node) Equal(o *Node) bool {
	if n == nil || o == nil {
		return n == o
	}
	if n.Kind != o.Kind {
		return false
	}
	switch n.Kind {
	case ScalarNode:
		return n.Value == o.Value
	case SequenceNode:
		return slices.EqualFunc(n.Items, o.Items, (*Node).Equal)
	case MappingNode:
		if len(n.Fields) != len(o.Fields) {
			return false
		}
		for _, f := range n.Fields {
			if !f.Value.Equal(o.Get(f.Key)) {
				return false
			}
		}
		return true
	}
	return false
}

// Clone returns a deep copy of n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	cp := &Node{Kind: n.Kind, Value: n.Value, yaml: n.yaml}
	for _, item := range n.Items {
		cp.Items = append(cp.Items, item.Clone())
	}
	for _, f := range n.Fields {
		cp.Fields = append(cp.Fields, Field{Key: f.Key, Value: f.Value.Clone()})
	}
	return cp
}

// String renders n in a compact flow form, used in conflict reports.
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	var b strings.Builder
	n.write(&b)
	return b.String()
}

func (n *Node) write(b *strings.Builder) {
	switch n.Kind {
	case ScalarNode:
		b.WriteString(n.Value)
	case SequenceNode:
		b.WriteByte('[')
		for i, item := range n.Items {
			if i > 0 {
				b.WriteString(", ")
			}
			item.write(b)
		}
		b.WriteByte(']')
	case MappingNode:
		b.WriteByte('{')
		for i, f := range n.Fields {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(f.Key)
			b.WriteString(": ")
			f.Value.write(b)
		}
		b.WriteByte('}')
	}
}
