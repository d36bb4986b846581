package syntax

import (
	"github.com/jfmengels/elm-language-server/internal/ast"
	sitter "github.com/smacker/go-tree-sitter"
)

func typeChildren(n *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	for _, c := range named(n) {
		if _, ok := typeKinds[c.Type()]; ok {
			out = append(out, c)
		}
	}
	return out
}

func (t *translator) typeExprs(nodes []*sitter.Node) []ast.TypeExpr {
	out := make([]ast.TypeExpr, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, t.typeExpr(n))
	}
	return out
}

func (t *translator) typeExpr(n *sitter.Node) ast.TypeExpr {
	m := meta(n)
	switch typeKinds[n.Type()] {
	case ast.KindFunctionType:
		parts := t.typeExprs(typeChildren(n))
		switch len(parts) {
		case 0:
			return t.invalid(n)
		case 1:
			return parts[0]
		}
		return &ast.FunctionType{Meta: m, Params: parts[:len(parts)-1], Return: parts[len(parts)-1]}
	case ast.KindTypeRef:
		parts := named(n)
		if len(parts) == 0 || parts[0].Type() != "upper_case_qid" {
			return t.invalid(n)
		}
		q, name, _ := splitQualified(t.text(parts[0]))
		ref := &ast.TypeRef{Meta: m, Qualifier: q, Name: name}
		for _, c := range parts[1:] {
			if _, ok := typeKinds[c.Type()]; ok {
				ref.Args = append(ref.Args, t.typeExpr(c))
			}
		}
		return ref
	case ast.KindTypeVar:
		return &ast.TypeVar{Meta: m, Name: compact(t.text(n))}
	case ast.KindRecordType:
		r := &ast.RecordType{Meta: m}
		if base := childOfType(n, "record_base_identifier"); base != nil {
			r.Base = compact(t.text(base))
		}
		for _, c := range childrenOfType(n, "field_type") {
			f := &ast.FieldType{Meta: meta(c)}
			if id := childOfType(c, "lower_case_identifier"); id != nil {
				f.Name = t.text(id)
			}
			if ty := childOfType(c, "type_expression"); ty != nil {
				f.Type = t.typeExpr(ty)
			} else {
				f.Type = t.invalid(c)
			}
			r.Fields = append(r.Fields, f)
		}
		return r
	case ast.KindTupleType:
		var items []ast.TypeExpr
		for _, c := range named(n) {
			if c.Type() == "type_expression" {
				items = append(items, t.typeExpr(c))
			}
		}
		switch len(items) {
		case 0:
			return &ast.UnitType{Meta: m}
		case 1:
			return items[0]
		}
		return &ast.TupleType{Meta: m, Items: items}
	case ast.KindUnitType:
		return &ast.UnitType{Meta: m}
	}
	return t.invalid(n)
}
