package infer

import (
	"github.com/jfmengels/elm-language-server/internal/ast"
	"github.com/jfmengels/elm-language-server/internal/types"
)

func (e *Engine) expr(n ast.Expr) types.Type {
	if n == nil {
		return &types.Unknown{}
	}
	return e.record(n, e.exprType(n))
}

func (e *Engine) exprType(n ast.Expr) types.Type {
	switch n := n.(type) {
	case *ast.ValueRef:
		return e.valueRef(n)
	case *ast.Call:
		return e.call(n)
	case *ast.BinOp:
		return e.binOp(n)
	case *ast.OperatorRef:
		op, ok := e.ctx.LookupOperator(n.Symbol)
		if !ok {
			return &types.Unknown{}
		}
		return e.instantiate(op.Scheme)
	case *ast.Negate:
		t := e.expr(n.Operand)
		if !e.unifyAt(n, e.supply.FreshClass(types.ClassNumber), t) {
			return &types.Unknown{}
		}
		return t
	case *ast.NumberLit:
		if n.Float {
			return types.Float()
		}
		v := e.supply.FreshClass(types.ClassNumber)
		v.Literal = true
		return v
	case *ast.StringLit:
		return types.String()
	case *ast.CharLit:
		return types.Char()
	case *ast.List:
		elem := types.Type(e.supply.Fresh())
		for _, item := range n.Items {
			e.unifyAt(item, elem, e.expr(item))
		}
		return types.List(elem)
	case *ast.Tuple:
		items := make([]types.Type, len(n.Items))
		for i, item := range n.Items {
			items[i] = e.expr(item)
		}
		return &types.Tuple{Items: items}
	case *ast.Unit:
		return &types.Unit{}
	case *ast.Parens:
		return e.expr(n.Inner)
	case *ast.LetIn:
		e.push()
		defer e.pop()
		e.letDecls(n.Decls)
		return e.expr(n.Body)
	case *ast.Case:
		return e.caseOf(n)
	case *ast.If:
		return e.ifThen(n)
	case *ast.Lambda:
		e.push()
		defer e.pop()
		params := make([]types.Type, len(n.Params))
		for i, p := range n.Params {
			params[i] = e.pattern(p)
		}
		return &types.Function{Params: params, Return: e.expr(n.Body)}
	case *ast.Record:
		r := &types.Record{Fields: make(map[string]types.Type, len(n.Fields))}
		for _, f := range n.Fields {
			r.Fields[f.Name] = e.record(f, e.expr(f.Value))
		}
		return r
	case *ast.RecordUpdate:
		return e.recordUpdate(n)
	case *ast.FieldAccess:
		target := e.expr(n.Target)
		field := e.supply.Fresh()
		want := &types.Record{Fields: map[string]types.Type{n.Field: field}, Row: e.supply.Fresh()}
		if !e.unifyAt(n, want, target) {
			return &types.Unknown{}
		}
		return field
	case *ast.FieldAccessor:
		field := e.supply.Fresh()
		arg := &types.Record{Fields: map[string]types.Type{n.Field: field}, Row: e.supply.Fresh()}
		return &types.Function{Params: []types.Type{arg}, Return: field}
	}
	return &types.Unknown{}
}

// valueRef looks locals up first, then asks the context. Unresolved
// names are Unknown without a diagnostic.
func (e *Engine) valueRef(n *ast.ValueRef) types.Type {
	if n.Qualifier == "" {
		if s, ok := e.local(n.Name); ok {
			return e.instantiate(s)
		}
	}
	s, ok := e.ctx.LookupValue(n.Qualifier, n.Name)
	if !ok {
		return &types.Unknown{}
	}
	return e.instantiate(s)
}

func (e *Engine) call(n *ast.Call) types.Type {
	target := e.expr(n.Target)
	args := make([]types.Type, len(n.Args))
	for i, a := range n.Args {
		args[i] = e.expr(a)
	}
	if types.IsUnknown(e.sub.prune(target)) {
		return &types.Unknown{}
	}
	if len(args) == 0 {
		return target
	}
	ret := e.supply.Fresh()
	if !e.unifyAt(n, target, &types.Function{Params: args, Return: ret}) {
		return &types.Unknown{}
	}
	return ret
}

type operator struct {
	node *ast.Operator
	t    types.Type
	prec int
	// right associative
	right bool
}

// binOp re-associates the flat operator chain by precedence and infers
// each application.
func (e *Engine) binOp(n *ast.BinOp) types.Type {
	operands := make([]types.Type, len(n.Operands))
	for i, o := range n.Operands {
		operands[i] = e.expr(o)
	}
	if len(n.Operands) != len(n.Operators)+1 {
		return &types.Unknown{}
	}
	ops := make([]operator, len(n.Operators))
	for i, o := range n.Operators {
		op := operator{node: o, t: &types.Unknown{}, prec: 9}
		if resolved, ok := e.ctx.LookupOperator(o.Symbol); ok {
			op.t = e.instantiate(resolved.Scheme)
			op.prec = resolved.Precedence
			op.right = resolved.Assoc == ast.AssocRight
		}
		e.record(o, op.t)
		ops[i] = op
	}

	values := []types.Type{operands[0]}
	var pending []int
	reduce := func() {
		op := ops[pending[len(pending)-1]]
		pending = pending[:len(pending)-1]
		l, r := values[len(values)-2], values[len(values)-1]
		values = append(values[:len(values)-2], e.applyOperator(op, l, r))
	}
	for i, op := range ops {
		for len(pending) > 0 {
			top := ops[pending[len(pending)-1]]
			if top.prec < op.prec || (top.prec == op.prec && op.right) {
				break
			}
			reduce()
		}
		pending = append(pending, i)
		values = append(values, operands[i+1])
	}
	for len(pending) > 0 {
		reduce()
	}
	return values[0]
}

func (e *Engine) applyOperator(op operator, l, r types.Type) types.Type {
	if types.IsUnknown(e.sub.prune(op.t)) {
		return &types.Unknown{}
	}
	ret := e.supply.Fresh()
	if !e.unifyAt(op.node, op.t, &types.Function{Params: []types.Type{l, r}, Return: ret}) {
		return &types.Unknown{}
	}
	return ret
}

func (e *Engine) caseOf(n *ast.Case) types.Type {
	subject := e.expr(n.Subject)
	result := types.Type(e.supply.Fresh())
	for _, b := range n.Branches {
		e.push()
		if b.Pattern != nil {
			e.unifyAt(b.Pattern, subject, e.pattern(b.Pattern))
		}
		e.unifyAt(b.Body, result, e.expr(b.Body))
		e.pop()
	}
	return result
}

func (e *Engine) ifThen(n *ast.If) types.Type {
	result := types.Type(e.supply.Fresh())
	for i, c := range n.Conditions {
		e.unifyAt(c, types.Bool(), e.expr(c))
		if i < len(n.Thens) {
			e.unifyAt(n.Thens[i], result, e.expr(n.Thens[i]))
		}
	}
	if n.Else != nil {
		e.unifyAt(n.Else, result, e.expr(n.Else))
	}
	return result
}

func (e *Engine) recordUpdate(n *ast.RecordUpdate) types.Type {
	var base types.Type = &types.Unknown{}
	if n.Base != nil {
		base = e.expr(n.Base)
	}
	want := &types.Record{Fields: make(map[string]types.Type, len(n.Fields)), Row: e.supply.Fresh()}
	for _, f := range n.Fields {
		want.Fields[f.Name] = e.record(f, e.expr(f.Value))
	}
	if !e.unifyAt(n, base, want) {
		return &types.Unknown{}
	}
	if types.IsUnknown(e.sub.prune(base)) {
		return want
	}
	return base
}
