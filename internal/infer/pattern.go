package infer

import (
	"github.com/jfmengels/elm-language-server/internal/ast"
	"github.com/jfmengels/elm-language-server/internal/types"
)

// pattern infers the type a pattern matches and binds its variables in
// the current scope.
func (e *Engine) pattern(p ast.Pattern) types.Type {
	if p == nil {
		return &types.Unknown{}
	}
	return e.record(p, e.patternType(p))
}

func (e *Engine) patternType(p ast.Pattern) types.Type {
	switch p := p.(type) {
	case *ast.VarPattern:
		v := e.supply.Fresh()
		e.define(p.Name, types.Mono(v))
		return v
	case *ast.AnythingPattern:
		return e.supply.Fresh()
	case *ast.CtorPattern:
		return e.ctorPattern(p)
	case *ast.TuplePattern:
		items := make([]types.Type, len(p.Items))
		for i, item := range p.Items {
			items[i] = e.pattern(item)
		}
		return &types.Tuple{Items: items}
	case *ast.ListPattern:
		elem := types.Type(e.supply.Fresh())
		for _, item := range p.Items {
			e.unifyAt(item, elem, e.pattern(item))
		}
		return types.List(elem)
	case *ast.ConsPattern:
		head := e.pattern(p.Head)
		list := types.List(head)
		e.unifyAt(p.Tail, list, e.pattern(p.Tail))
		return list
	case *ast.RecordPattern:
		r := &types.Record{Fields: make(map[string]types.Type, len(p.Fields)), Row: e.supply.Fresh()}
		for _, f := range p.Fields {
			r.Fields[f.Name] = e.pattern(f)
		}
		return r
	case *ast.LiteralPattern:
		return e.expr(p.Literal)
	case *ast.UnitPattern:
		return &types.Unit{}
	case *ast.AliasPattern:
		t := e.pattern(p.Inner)
		if p.Alias != nil {
			e.define(p.Alias.Name, types.Mono(t))
			e.record(p.Alias, t)
		}
		return t
	}
	return &types.Unknown{}
}

func (e *Engine) ctorPattern(p *ast.CtorPattern) types.Type {
	args := make([]types.Type, len(p.Args))
	for i, a := range p.Args {
		args[i] = e.pattern(a)
	}
	s, ok := e.ctx.LookupValue(p.Qualifier, p.Name)
	if !ok {
		return &types.Unknown{}
	}
	t := e.instantiate(s)
	var params []types.Type
	result := t
	if f, ok := e.sub.prune(t).(*types.Function); ok {
		params, result = f.Params, f.Return
	}
	if len(params) != len(args) {
		e.errorAt(p, arityMessage(p.Name, len(params), len(args)))
		return &types.Unknown{}
	}
	for i, a := range p.Args {
		if !e.unifyAt(a, params[i], args[i]) {
			return &types.Unknown{}
		}
	}
	return result
}
