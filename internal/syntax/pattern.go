package syntax

import (
	"github.com/jfmengels/elm-language-server/internal/ast"
	sitter "github.com/smacker/go-tree-sitter"
)

func patternChildren(n *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	for _, c := range named(n) {
		if _, ok := patternKinds[c.Type()]; ok {
			out = append(out, c)
		}
	}
	return out
}

func (t *translator) patterns(nodes []*sitter.Node) []ast.Pattern {
	out := make([]ast.Pattern, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, t.pattern(n))
	}
	return out
}

func (t *translator) pattern(n *sitter.Node) ast.Pattern {
	m := meta(n)
	switch patternKinds[n.Type()] {
	case ast.KindAliasPattern:
		parts := patternChildren(n)
		if len(parts) == 0 {
			return t.invalid(n)
		}
		inner := t.pattern(parts[0])
		if len(parts) == 2 && hasToken(n, "as") {
			if alias, ok := t.pattern(parts[1]).(*ast.VarPattern); ok {
				return &ast.AliasPattern{Meta: m, Inner: inner, Alias: alias}
			}
		}
		return inner
	case ast.KindVarPattern:
		return &ast.VarPattern{Meta: m, Name: compact(t.text(n))}
	case ast.KindAnythingPattern:
		return &ast.AnythingPattern{Meta: m}
	case ast.KindCtorPattern:
		if n.Type() == "upper_case_qid" {
			q, name, _ := splitQualified(t.text(n))
			return &ast.CtorPattern{Meta: m, Qualifier: q, Name: name}
		}
		parts := named(n)
		if len(parts) == 0 || parts[0].Type() != "upper_case_qid" {
			return t.invalid(n)
		}
		q, name, _ := splitQualified(t.text(parts[0]))
		p := &ast.CtorPattern{Meta: m, Qualifier: q, Name: name}
		for _, c := range parts[1:] {
			if _, ok := patternKinds[c.Type()]; ok {
				p.Args = append(p.Args, t.pattern(c))
			}
		}
		return p
	case ast.KindTuplePattern:
		return &ast.TuplePattern{Meta: m, Items: t.patterns(patternChildren(n))}
	case ast.KindListPattern:
		return &ast.ListPattern{Meta: m, Items: t.patterns(patternChildren(n))}
	case ast.KindConsPattern:
		parts := t.patterns(patternChildren(n))
		if len(parts) < 2 {
			return t.invalid(n)
		}
		return consChain(m, parts)
	case ast.KindRecordPattern:
		r := &ast.RecordPattern{Meta: m}
		for _, c := range childrenOfType(n, "lower_pattern") {
			r.Fields = append(r.Fields, &ast.VarPattern{Meta: meta(c), Name: compact(t.text(c))})
		}
		return r
	case ast.KindLiteralPattern:
		return &ast.LiteralPattern{Meta: m, Literal: t.expr(n)}
	case ast.KindUnitPattern:
		return &ast.UnitPattern{Meta: m}
	}
	return t.invalid(n)
}

// consChain folds `a :: b :: rest` to the right.
func consChain(m ast.Meta, parts []ast.Pattern) ast.Pattern {
	tail := parts[len(parts)-1]
	for i := len(parts) - 2; i >= 0; i-- {
		span := m.Range
		span.StartByte = parts[i].Span().StartByte
		span.Start = parts[i].Span().Start
		tail = &ast.ConsPattern{Meta: ast.At(span), Head: parts[i], Tail: tail}
	}
	return tail
}
