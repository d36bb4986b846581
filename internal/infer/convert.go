package infer

import (
	"fmt"

	"github.com/jfmengels/elm-language-server/internal/ast"
	"github.com/jfmengels/elm-language-server/internal/types"
)

// converter turns written types into semantic ones.
type converter struct {
	ctx    Context
	supply *types.Supply
	vars   map[string]*types.Var
	// rigid makes new variables rigid; used when checking a body against
	// its own annotation.
	rigid bool
	// placeholders keeps constraint classes as Basics placeholders, the
	// form schemes are stored in.
	placeholders bool
	diags        []ast.Diagnostic
}

func (c *converter) errorAt(n ast.Node, msg string) {
	c.diags = append(c.diags, ast.Diagnostic{
		Span:     n.Span(),
		Severity: ast.SeverityError,
		Message:  msg,
		Source:   DiagnosticSource,
	})
}

func (c *converter) variable(name string, class types.Class) *types.Var {
	if v, ok := c.vars[name]; ok {
		return v
	}
	v := c.supply.FreshClass(class)
	v.Name = name
	v.Rigid = c.rigid
	c.vars[name] = v
	return v
}

func (c *converter) convert(t ast.TypeExpr) types.Type {
	switch t := t.(type) {
	case *ast.TypeVar:
		class := types.ClassOf(t.Name)
		if c.placeholders && class != types.ClassNone {
			return types.ClassPlaceholder(t.Name)
		}
		return c.variable(t.Name, class)
	case *ast.TypeRef:
		args := make([]types.Type, len(t.Args))
		for i, a := range t.Args {
			args[i] = c.convert(a)
		}
		return c.named(t, args)
	case *ast.FunctionType:
		params := make([]types.Type, len(t.Params))
		for i, p := range t.Params {
			params[i] = c.convert(p)
		}
		return &types.Function{Params: params, Return: c.convert(t.Return)}
	case *ast.RecordType:
		r := &types.Record{Fields: make(map[string]types.Type, len(t.Fields))}
		for _, f := range t.Fields {
			r.Fields[f.Name] = c.convert(f.Type)
		}
		if t.Base != "" {
			r.Row = c.variable(t.Base, types.ClassNone)
		}
		return r
	case *ast.TupleType:
		items := make([]types.Type, len(t.Items))
		for i, item := range t.Items {
			items[i] = c.convert(item)
		}
		return &types.Tuple{Items: items}
	case *ast.UnitType:
		return &types.Unit{}
	}
	return &types.Unknown{}
}

func (c *converter) named(ref *ast.TypeRef, args []types.Type) types.Type {
	def, ok := c.ctx.LookupType(ref.Qualifier, ref.Name)
	if !ok {
		return &types.Unknown{}
	}
	if def.Alias == nil {
		return &types.Union{Module: def.Module, Name: def.Name, Args: args}
	}
	if len(args) != len(def.Params) {
		c.errorAt(ref, fmt.Sprintf("The `%s` type alias expects %d arguments, but it got %d", def.Name, len(def.Params), len(args)))
		return &types.Unknown{}
	}
	return Expand(def, args)
}

// Expand substitutes args for the parameters of an alias.
func Expand(def *TypeDef, args []types.Type) types.Type {
	subst := make(map[int]types.Type, len(def.Params))
	for i, p := range def.Params {
		subst[p.ID] = args[i]
	}
	t := types.Map(def.Alias, func(v *types.Var) types.Type {
		if a, ok := subst[v.ID]; ok {
			return a
		}
		return v
	})
	if r, ok := t.(*types.Record); ok {
		return &types.Record{Fields: r.Fields, Row: r.Row, Alias: &types.AliasRef{Module: def.Module, Name: def.Name, Args: args}}
	}
	return t
}

// AnnotationScheme converts an annotation to the scheme its users see:
// every variable quantified, constraint classes as placeholders.
func AnnotationScheme(ctx Context, t ast.TypeExpr) (*types.Scheme, []ast.Diagnostic) {
	c := &converter{ctx: ctx, supply: ctx.Supply(), vars: map[string]*types.Var{}, placeholders: true}
	converted := normalize(c.convert(t))
	return types.Generalize(converted, nil), c.diags
}

// ConvertAlias converts the body of a type alias over its parameters.
func ConvertAlias(ctx Context, params []string, body ast.TypeExpr) (*TypeDef, []ast.Diagnostic) {
	c := &converter{ctx: ctx, supply: ctx.Supply(), vars: map[string]*types.Var{}}
	def := &TypeDef{}
	for _, p := range params {
		def.Params = append(def.Params, c.variable(p, types.ClassNone))
	}
	def.Alias = normalize(c.convert(body))
	return def, c.diags
}

// ConvertVariant converts the argument types of a union variant written
// over the union's parameters.
func ConvertVariant(ctx Context, params []*types.Var, names []string, args []ast.TypeExpr) ([]types.Type, []ast.Diagnostic) {
	c := &converter{ctx: ctx, supply: ctx.Supply(), vars: map[string]*types.Var{}}
	for i, name := range names {
		c.vars[name] = params[i]
	}
	out := make([]types.Type, len(args))
	for i, a := range args {
		out[i] = normalize(c.convert(a))
	}
	return out, c.diags
}

// convertRigid converts the annotation of the declaration being checked.
// Its variables stay in scope for annotations in nested let blocks.
func (e *Engine) convertRigid(t ast.TypeExpr) types.Type {
	c := &converter{ctx: e.ctx, supply: e.supply, vars: e.rigid, rigid: true}
	out := normalize(c.convert(t))
	e.diags = append(e.diags, c.diags...)
	return out
}
