package syntax

import (
	"strings"

	"github.com/jfmengels/elm-language-server/internal/ast"
	sitter "github.com/smacker/go-tree-sitter"
)

func isExpr(n *sitter.Node) bool {
	_, ok := exprKinds[n.Type()]
	return ok
}

// exprChildren returns the expression children of n in order.
func exprChildren(n *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	for _, c := range named(n) {
		if isExpr(c) || c.Type() == "ERROR" {
			out = append(out, c)
		}
	}
	return out
}

func (t *translator) exprs(nodes []*sitter.Node) []ast.Expr {
	out := make([]ast.Expr, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, t.expr(n))
	}
	return out
}

// firstExpr returns the first expression child, or an Invalid placeholder
// at n when there is none.
func (t *translator) firstExpr(n *sitter.Node) ast.Expr {
	if cs := exprChildren(n); len(cs) > 0 {
		return t.expr(cs[0])
	}
	return t.invalid(n)
}

func (t *translator) lastExpr(n *sitter.Node) ast.Expr {
	if cs := exprChildren(n); len(cs) > 0 {
		return t.expr(cs[len(cs)-1])
	}
	return t.invalid(n)
}

func (t *translator) expr(n *sitter.Node) ast.Expr {
	kind, ok := exprKinds[n.Type()]
	if !ok {
		return t.invalid(n)
	}
	m := meta(n)
	switch kind {
	case ast.KindValueRef:
		return t.valueRef(n)
	case ast.KindCall:
		cs := exprChildren(n)
		if len(cs) == 0 {
			return t.invalid(n)
		}
		return &ast.Call{Meta: m, Target: t.expr(cs[0]), Args: t.exprs(cs[1:])}
	case ast.KindBinOp:
		op := &ast.BinOp{Meta: m}
		for _, c := range named(n) {
			if c.Type() == "operator" {
				op.Operators = append(op.Operators, &ast.Operator{Meta: meta(c), Symbol: compact(t.text(c))})
			} else if isExpr(c) || c.Type() == "ERROR" {
				op.Operands = append(op.Operands, t.expr(c))
			}
		}
		if len(op.Operands) != len(op.Operators)+1 {
			return t.invalid(n)
		}
		return op
	case ast.KindOperatorRef:
		return &ast.OperatorRef{Meta: m, Symbol: operatorSymbol(t.text(n))}
	case ast.KindNegate:
		return &ast.Negate{Meta: m, Operand: t.firstExpr(n)}
	case ast.KindNumber:
		text := compact(t.text(n))
		return &ast.NumberLit{Meta: m, Text: text, Float: isFloatLiteral(text)}
	case ast.KindString:
		return &ast.StringLit{Meta: m, Text: t.text(n)}
	case ast.KindChar:
		return &ast.CharLit{Meta: m, Text: t.text(n)}
	case ast.KindList:
		return &ast.List{Meta: m, Items: t.exprs(exprChildren(n))}
	case ast.KindTuple:
		return &ast.Tuple{Meta: m, Items: t.exprs(exprChildren(n))}
	case ast.KindUnit:
		return &ast.Unit{Meta: m}
	case ast.KindParens:
		return &ast.Parens{Meta: m, Inner: t.firstExpr(n)}
	case ast.KindLetIn:
		let := &ast.LetIn{Meta: m}
		for _, c := range named(n) {
			switch declKinds[c.Type()] {
			case ast.KindValueDecl, ast.KindTypeAnnotation:
				let.Decls = append(let.Decls, t.decl(c))
			}
		}
		let.Body = t.lastExpr(n)
		return let
	case ast.KindCase:
		c := &ast.Case{Meta: m, Subject: t.firstExpr(n)}
		for _, b := range childrenOfType(n, "case_of_branch") {
			c.Branches = append(c.Branches, t.caseBranch(b))
		}
		return c
	case ast.KindIf:
		return t.ifElse(n)
	case ast.KindLambda:
		l := &ast.Lambda{Meta: m}
		l.Params, l.Body = t.arrowParts(n)
		return l
	case ast.KindRecord:
		return t.record(n)
	case ast.KindFieldAccess:
		fa := &ast.FieldAccess{Meta: m, Target: t.firstExpr(n)}
		ids := childrenOfType(n, "lower_case_identifier")
		if len(ids) == 0 {
			return t.invalid(n)
		}
		fa.Field = t.text(ids[len(ids)-1])
		return fa
	case ast.KindFieldAccessor:
		return &ast.FieldAccessor{Meta: m, Field: strings.TrimPrefix(compact(t.text(n)), ".")}
	}
	return t.invalid(n)
}

func (t *translator) valueRef(n *sitter.Node) ast.Expr {
	qualifier, name, fields := splitQualified(t.text(n))
	var e ast.Expr = &ast.ValueRef{Meta: meta(n), Qualifier: qualifier, Name: name}
	for _, f := range fields {
		e = &ast.FieldAccess{Meta: meta(n), Target: e, Field: f}
	}
	return e
}

func (t *translator) caseBranch(n *sitter.Node) *ast.CaseBranch {
	b := &ast.CaseBranch{Meta: meta(n)}
	params, body := t.arrowParts(n)
	if len(params) > 0 {
		b.Pattern = params[0]
	} else {
		b.Pattern = t.invalid(n)
	}
	b.Body = body
	return b
}

// arrowParts splits the children of a lambda or case branch into the
// patterns before the arrow and the expression after it.
func (t *translator) arrowParts(n *sitter.Node) ([]ast.Pattern, ast.Expr) {
	var (
		patterns  []ast.Pattern
		body      ast.Expr
		seenArrow bool
	)
	for _, c := range all(n) {
		switch {
		case c.Type() == "arrow" || c.Type() == "->":
			seenArrow = true
		case !c.IsNamed():
		case !seenArrow:
			if _, ok := patternKinds[c.Type()]; ok {
				patterns = append(patterns, t.pattern(c))
			}
		case isExpr(c) || c.Type() == "ERROR":
			body = t.expr(c)
		}
	}
	if body == nil {
		body = t.invalid(n)
	}
	return patterns, body
}

func (t *translator) ifElse(n *sitter.Node) ast.Expr {
	cs := exprChildren(n)
	e := &ast.If{Meta: meta(n)}
	for len(cs) >= 2 {
		e.Conditions = append(e.Conditions, t.expr(cs[0]))
		e.Thens = append(e.Thens, t.expr(cs[1]))
		cs = cs[2:]
	}
	if len(cs) == 1 {
		e.Else = t.expr(cs[0])
	} else {
		e.Else = t.invalid(n)
	}
	if len(e.Conditions) == 0 {
		return t.invalid(n)
	}
	return e
}

func (t *translator) record(n *sitter.Node) ast.Expr {
	var fields []*ast.Field
	for _, c := range childrenOfType(n, "field") {
		f := &ast.Field{Meta: meta(c)}
		if id := childOfType(c, "lower_case_identifier"); id != nil {
			f.Name = t.text(id)
		}
		f.Value = t.lastExpr(c)
		fields = append(fields, f)
	}
	if base := childOfType(n, "record_base_identifier"); base != nil {
		return &ast.RecordUpdate{
			Meta:   meta(n),
			Base:   &ast.ValueRef{Meta: meta(base), Name: compact(t.text(base))},
			Fields: fields,
		}
	}
	return &ast.Record{Meta: meta(n), Fields: fields}
}

func isFloatLiteral(text string) bool {
	if strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "-0x") {
		return false
	}
	return strings.ContainsAny(text, ".eE")
}
