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
	"slices"
	"text/template/parse"
)

// Scan parses body and returns the root context variables it references,
// sorted. A variable is a root reference when it is read as .name outside
// any range or with body, or as $.name anywhere. References guarded by an
// enclosing ${if has . "name"} are optional and not reported.
func Scan(name, body string) ([]string, error) {
	t, err := New().parse(name, body)
	if err != nil {
		return nil, err
	}
	return scanTree(t.Tree), nil
}

type scanner struct {
	vars map[string]struct{}
}

func scanTree(tree *parse.Tree) []string {
	if tree == nil || tree.Root == nil {
		return nil
	}
	s := &scanner{vars: map[string]struct{}{}}
	s.walk(tree.Root, true, nil)

	out := make([]string, 0, len(s.vars))
	for v := range s.vars {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

// walk visits node. root reports whether dot is the render context; guarded
// holds the keys proven present by an enclosing has check.
func (s *scanner) walk(node parse.Node, root bool, guarded map[string]bool) {
	switch n := node.(type) {
	case *parse.ListNode:
		if n == nil {
			return
		}
		for _, child := range n.Nodes {
			s.walk(child, root, guarded)
		}
	case *parse.ActionNode:
		s.pipe(n.Pipe, root, guarded)
	case *parse.IfNode:
		s.pipe(n.Pipe, root, guarded)
		s.walk(n.List, root, withGuards(guarded, hasGuards(n.Pipe, root)))
		s.walk(n.ElseList, root, guarded)
	case *parse.RangeNode:
		s.pipe(n.Pipe, root, guarded)
		s.walk(n.List, false, guarded)
		s.walk(n.ElseList, root, guarded)
	case *parse.WithNode:
		s.pipe(n.Pipe, root, guarded)
		s.walk(n.List, false, guarded)
		s.walk(n.ElseList, root, guarded)
	case *parse.TemplateNode:
		s.pipe(n.Pipe, root, guarded)
	}
}

func (s *scanner) pipe(p *parse.PipeNode, root bool, guarded map[string]bool) {
	if p == nil {
		return
	}
	for _, cmd := range p.Cmds {
		for _, arg := range cmd.Args {
			s.arg(arg, root, guarded)
		}
	}
}

func (s *scanner) arg(node parse.Node, root bool, guarded map[string]bool) {
	switch n := node.(type) {
	case *parse.FieldNode:
		if root {
			s.add(n.Ident[0], guarded)
		}
	case *parse.VariableNode:
		if len(n.Ident) > 1 && n.Ident[0] == "$" {
			s.add(n.Ident[1], guarded)
		}
	case *parse.ChainNode:
		s.arg(n.Node, root, guarded)
	case *parse.PipeNode:
		s.pipe(n, root, guarded)
	}
}

func (s *scanner) add(name string, guarded map[string]bool) {
	if guarded[name] {
		return
	}
	s.vars[name] = struct{}{}
}

// hasGuards extracts the keys checked by `has . "key"`, `has $ "key"` or an
// `and` of such checks.
func hasGuards(p *parse.PipeNode, root bool) []string {
	if p == nil || len(p.Cmds) != 1 {
		return nil
	}
	return guardArgs(p.Cmds[0].Args, root)
}

func guardArgs(args []parse.Node, root bool) []string {
	if len(args) == 0 {
		return nil
	}
	ident, ok := args[0].(*parse.IdentifierNode)
	if !ok {
		return nil
	}

	switch ident.Ident {
	case "has":
		if len(args) != 3 {
			return nil
		}
		key, ok := args[2].(*parse.StringNode)
		if !ok || !isContextRef(args[1], root) {
			return nil
		}
		return []string{key.Text}
	case "and":
		var keys []string
		for _, a := range args[1:] {
			if p, ok := a.(*parse.PipeNode); ok {
				keys = append(keys, hasGuards(p, root)...)
			}
		}
		return keys
	}
	return nil
}

func isContextRef(node parse.Node, root bool) bool {
	switch n := node.(type) {
	case *parse.DotNode:
		return root
	case *parse.VariableNode:
		return len(n.Ident) == 1 && n.Ident[0] == "$"
	}
	return false
}

func withGuards(guarded map[string]bool, keys []string) map[string]bool {
	if len(keys) == 0 {
		return guarded
	}
	out := make(map[string]bool, len(guarded)+len(keys))
	for k := range guarded {
		out[k] = true
	}
	for _, k := range keys {
		out[k] = true
	}
	return out
}
