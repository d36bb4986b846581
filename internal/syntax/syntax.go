// Package syntax translates tree-sitter Elm trees into the ast model.
package syntax

import (
	"context"
	"fmt"
	"strings"

	"github.com/jfmengels/elm-language-server/internal/ast"
	"github.com/jfmengels/elm-language-server/internal/parser"
	sitter "github.com/smacker/go-tree-sitter"
)

// DiagnosticSource tags diagnostics produced while reading syntax.
const DiagnosticSource = "elm-syntax"

// Tree is a translated source file.
type Tree struct {
	Source      []byte
	File        *ast.File
	Diagnostics []ast.Diagnostic
}

// Translate converts a tree-sitter tree rooted at root into an ast.File.
func Translate(uri string, root *sitter.Node, source []byte) *Tree {
	t := &translator{src: source}
	file := t.file(root)
	file.URI = uri
	file.Attach()
	t.collectErrors(root)
	return &Tree{Source: source, File: file, Diagnostics: t.diags}
}

// Parse parses source with a parser from pool and translates the result.
func Parse(ctx context.Context, pool *parser.Pool, uri string, source []byte) (*Tree, error) {
	tree, err := pool.Parse(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", uri, err)
	}
	defer tree.Close()
	return Translate(uri, tree.RootNode(), source), nil
}

type translator struct {
	src   []byte
	diags []ast.Diagnostic
}

func (t *translator) text(n *sitter.Node) string {
	return n.Content(t.src)
}

func spanOf(n *sitter.Node) ast.Span {
	s, e := n.StartPoint(), n.EndPoint()
	return ast.Span{
		StartByte: n.StartByte(),
		EndByte:   n.EndByte(),
		Start:     ast.Point{Row: s.Row, Column: s.Column},
		End:       ast.Point{Row: e.Row, Column: e.Column},
	}
}

func meta(n *sitter.Node) ast.Meta {
	return ast.At(spanOf(n))
}

// named returns the named children of n, comments excluded.
func named(n *sitter.Node) []*sitter.Node {
	count := int(n.NamedChildCount())
	out := make([]*sitter.Node, 0, count)
	for i := 0; i < count; i++ {
		c := n.NamedChild(i)
		if c == nil || skipped[c.Type()] {
			continue
		}
		out = append(out, c)
	}
	return out
}

// all returns every child of n, anonymous tokens included.
func all(n *sitter.Node) []*sitter.Node {
	count := int(n.ChildCount())
	out := make([]*sitter.Node, 0, count)
	for i := 0; i < count; i++ {
		if c := n.Child(i); c != nil && !skipped[c.Type()] {
			out = append(out, c)
		}
	}
	return out
}

func childOfType(n *sitter.Node, types ...string) *sitter.Node {
	for _, c := range named(n) {
		for _, ty := range types {
			if c.Type() == ty {
				return c
			}
		}
	}
	return nil
}

func childrenOfType(n *sitter.Node, ty string) []*sitter.Node {
	var out []*sitter.Node
	for _, c := range named(n) {
		if c.Type() == ty {
			out = append(out, c)
		}
	}
	return out
}

func hasToken(n *sitter.Node, tokens ...string) bool {
	for _, c := range all(n) {
		for _, tok := range tokens {
			if c.Type() == tok {
				return true
			}
		}
	}
	return false
}

// compact removes all whitespace, for qualified names split over lines.
func compact(s string) string {
	return strings.Join(strings.Fields(s), "")
}

// splitQualified splits `A.B.name.f1.f2` into qualifier A.B, name and the
// trailing field accesses. A name made only of upper case segments is a
// constructor; its last segment is the name.
func splitQualified(text string) (qualifier, name string, fields []string) {
	segments := strings.Split(compact(text), ".")
	i := 0
	for i < len(segments) && isUpper(segments[i]) {
		i++
	}
	if i == len(segments) {
		return strings.Join(segments[:i-1], "."), segments[i-1], nil
	}
	return strings.Join(segments[:i], "."), segments[i], segments[i+1:]
}

func isUpper(s string) bool {
	return s != "" && s[0] >= 'A' && s[0] <= 'Z'
}

func (t *translator) invalid(n *sitter.Node) *ast.Invalid {
	return &ast.Invalid{Meta: meta(n), Text: t.text(n)}
}

func (t *translator) collectErrors(n *sitter.Node) {
	switch {
	case n.Type() == "ERROR":
		snippet := t.text(n)
		if len(snippet) > 40 {
			snippet = snippet[:40] + "…"
		}
		t.diags = append(t.diags, ast.Diagnostic{
			Span:     spanOf(n),
			Severity: ast.SeverityError,
			Message:  fmt.Sprintf("Syntax error near %q", snippet),
			Source:   DiagnosticSource,
		})
		return
	case n.IsMissing():
		t.diags = append(t.diags, ast.Diagnostic{
			Span:     spanOf(n),
			Severity: ast.SeverityError,
			Message:  fmt.Sprintf("Syntax error: missing %s", n.Type()),
			Source:   DiagnosticSource,
		})
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if c := n.Child(i); c != nil {
			t.collectErrors(c)
		}
	}
}
