package syntax

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jfmengels/elm-language-server/internal/ast"
	sitter "github.com/smacker/go-tree-sitter"
)

var infixPattern = regexp.MustCompile(`^infix\s+(left|right|non)\s+(\d+)\s+\(\s*([^\s)]+)\s*\)\s*=\s*([\w.]+)`)

func (t *translator) file(root *sitter.Node) *ast.File {
	f := &ast.File{Meta: meta(root)}
	for _, c := range named(root) {
		switch declKinds[c.Type()] {
		case ast.KindModule:
			f.Module = t.module(c)
		case ast.KindImport:
			f.Imports = append(f.Imports, t.importClause(c))
		default:
			if d := t.decl(c); d != nil {
				f.Decls = append(f.Decls, d)
			}
		}
	}
	return f
}

func (t *translator) module(n *sitter.Node) *ast.ModuleDecl {
	m := &ast.ModuleDecl{Meta: meta(n)}
	if name := childOfType(n, "upper_case_qid"); name != nil {
		m.Name = compact(t.text(name))
	}
	if exp := childOfType(n, "exposing_list"); exp != nil {
		m.Exposing = t.exposing(exp)
	}
	return m
}

func (t *translator) exposing(n *sitter.Node) *ast.Exposing {
	e := &ast.Exposing{Meta: meta(n)}
	for _, c := range named(n) {
		switch c.Type() {
		case "double_dot":
			e.All = true
		case "exposed_value":
			e.Values = append(e.Values, compact(t.text(c)))
		case "exposed_type":
			name := t.text(c)
			if id := childOfType(c, "upper_case_identifier"); id != nil {
				name = t.text(id)
			}
			e.Types = append(e.Types, ast.ExposedType{
				Name: compact(strings.SplitN(name, "(", 2)[0]),
				Open: strings.Contains(compact(t.text(c)), "(..)"),
			})
		case "exposed_operator":
			e.Operators = append(e.Operators, operatorSymbol(t.text(c)))
		}
	}
	return e
}

func (t *translator) importClause(n *sitter.Node) *ast.Import {
	imp := &ast.Import{Meta: meta(n)}
	if name := childOfType(n, "upper_case_qid"); name != nil {
		imp.ModuleName = compact(t.text(name))
	}
	if as := childOfType(n, "as_clause"); as != nil {
		if id := childOfType(as, "upper_case_identifier"); id != nil {
			imp.Alias = t.text(id)
		}
	}
	if exp := childOfType(n, "exposing_list"); exp != nil {
		imp.Exposing = t.exposing(exp)
	}
	return imp
}

func (t *translator) decl(n *sitter.Node) ast.Decl {
	switch declKinds[n.Type()] {
	case ast.KindValueDecl:
		return t.valueDecl(n)
	case ast.KindTypeAnnotation:
		a := &ast.TypeAnnotation{Meta: meta(n)}
		if id := childOfType(n, "lower_case_identifier"); id != nil {
			a.Name = t.text(id)
		}
		if ty := childOfType(n, "type_expression"); ty != nil {
			a.Type = t.typeExpr(ty)
		}
		return a
	case ast.KindPortAnnotation:
		p := &ast.PortAnnotation{Meta: meta(n)}
		if id := childOfType(n, "lower_case_identifier"); id != nil {
			p.Name = t.text(id)
		}
		if ty := childOfType(n, "type_expression"); ty != nil {
			p.Type = t.typeExpr(ty)
		}
		return p
	case ast.KindTypeDecl:
		return t.typeDecl(n)
	case ast.KindTypeAlias:
		a := &ast.TypeAlias{Meta: meta(n)}
		if id := childOfType(n, "upper_case_identifier"); id != nil {
			a.Name = t.text(id)
		}
		for _, p := range childrenOfType(n, "lower_type_name") {
			a.Params = append(a.Params, compact(t.text(p)))
		}
		if ty := childOfType(n, "type_expression"); ty != nil {
			a.Type = t.typeExpr(ty)
		}
		return a
	case ast.KindInfixDecl:
		return t.infixDecl(n)
	}
	return nil
}

func (t *translator) valueDecl(n *sitter.Node) *ast.ValueDecl {
	d := &ast.ValueDecl{Meta: meta(n)}
	seenEq := false
	for _, c := range all(n) {
		switch {
		case c.Type() == "eq" || c.Type() == "=":
			seenEq = true
		case c.Type() == "function_declaration_left":
			for i, part := range named(c) {
				if i == 0 && part.Type() == "lower_case_identifier" {
					d.Name = t.text(part)
					continue
				}
				d.Params = append(d.Params, t.pattern(part))
			}
		case !seenEq && c.Type() == "pattern":
			d.Pattern = t.pattern(c)
		case seenEq && c.IsNamed():
			d.Body = t.expr(c)
		}
	}
	if d.Body == nil {
		d.Body = &ast.Invalid{Meta: ast.At(ast.Span{
			StartByte: d.Range.EndByte,
			EndByte:   d.Range.EndByte,
			Start:     d.Range.End,
			End:       d.Range.End,
		})}
	}
	return d
}

func (t *translator) typeDecl(n *sitter.Node) *ast.TypeDecl {
	d := &ast.TypeDecl{Meta: meta(n)}
	if id := childOfType(n, "upper_case_identifier"); id != nil {
		d.Name = t.text(id)
	}
	for _, p := range childrenOfType(n, "lower_type_name") {
		d.Params = append(d.Params, compact(t.text(p)))
	}
	for _, v := range childrenOfType(n, "union_variant") {
		variant := &ast.Variant{Meta: meta(v)}
		for i, c := range named(v) {
			if i == 0 && c.Type() == "upper_case_identifier" {
				variant.Name = t.text(c)
				continue
			}
			if _, ok := typeKinds[c.Type()]; ok {
				variant.Args = append(variant.Args, t.typeExpr(c))
			}
		}
		d.Variants = append(d.Variants, variant)
	}
	return d
}

func (t *translator) infixDecl(n *sitter.Node) ast.Decl {
	m := infixPattern.FindStringSubmatch(strings.TrimSpace(t.text(n)))
	if m == nil {
		return nil
	}
	prec, err := strconv.Atoi(m[2])
	if err != nil {
		return nil
	}
	assoc := ast.AssocNone
	switch m[1] {
	case "left":
		assoc = ast.AssocLeft
	case "right":
		assoc = ast.AssocRight
	}
	return &ast.InfixDecl{
		Meta:       meta(n),
		Symbol:     m[3],
		Assoc:      assoc,
		Precedence: prec,
		Function:   m[4],
	}
}

// operatorSymbol strips the parentheses of `(+)`.
func operatorSymbol(text string) string {
	return strings.TrimSuffix(strings.TrimPrefix(compact(text), "("), ")")
}
