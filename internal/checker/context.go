package checker

import (
	"github.com/jfmengels/elm-language-server/internal/ast"
	"github.com/jfmengels/elm-language-server/internal/forest"
	"github.com/jfmengels/elm-language-server/internal/infer"
	"github.com/jfmengels/elm-language-server/internal/resolver"
	"github.com/jfmengels/elm-language-server/internal/types"
)

// fileContext resolves names for inference as seen from one file.
type fileContext struct {
	checker *TypeChecker
	file    *forest.SourceFile
}

func (fc *fileContext) Supply() *types.Supply {
	return &fc.checker.supply
}

func (fc *fileContext) LookupValue(qualifier, name string) (*types.Scheme, bool) {
	c := fc.checker
	v, ok := c.resolver.Value(fc.file, qualifier, name)
	if !ok {
		return nil, false
	}
	return c.valueScheme(v), true
}

func (fc *fileContext) LookupOperator(symbol string) (infer.Operator, bool) {
	c := fc.checker
	op, ok := c.resolver.Operator(fc.file, symbol)
	if !ok {
		return infer.Operator{}, false
	}
	out := infer.Operator{Precedence: op.Infix.Precedence, Assoc: op.Infix.Assoc}
	qualifier, name := splitFunction(op.Infix.Function)
	if v, ok := c.resolver.Value(op.File, qualifier, name); ok {
		out.Scheme = c.valueScheme(v)
	}
	return out, true
}

func (fc *fileContext) LookupType(qualifier, name string) (*infer.TypeDef, bool) {
	c := fc.checker
	t, ok := c.resolver.Type(fc.file, qualifier, name)
	if !ok {
		return nil, false
	}
	var def *infer.TypeDef
	if t.Union != nil {
		def = c.typeDef(t.File, t.Union)
	} else {
		def = c.typeDef(t.File, t.Alias)
	}
	return def, def != nil
}

func splitFunction(ref string) (qualifier, name string) {
	for i := len(ref) - 1; i >= 0; i-- {
		if ref[i] == '.' {
			return ref[:i], ref[i+1:]
		}
	}
	return "", ref
}

// valueScheme is the scheme users of v instantiate.
func (c *TypeChecker) valueScheme(v resolver.Value) *types.Scheme {
	switch v.Kind {
	case resolver.KindPort:
		return c.annotationScheme(v.File, v.Port.Type)
	case resolver.KindConstructor:
		ctor := v.Constructor
		if ctor.Alias != nil {
			return c.recordConstructorScheme(v.File, ctor.Alias)
		}
		return c.variantScheme(v.File, ctor.Union, ctor.Variant)
	}
	if a := v.Decl.Annotation; a != nil && a.Type != nil {
		return c.annotationScheme(v.File, a.Type)
	}
	return c.declaration(v.File, v.Decl).result.Scheme
}

func (c *TypeChecker) annotationScheme(sf *forest.SourceFile, t ast.TypeExpr) *types.Scheme {
	if t == nil {
		return types.Mono(&types.Unknown{})
	}
	st := c.state(sf)
	if s, ok := st.schemes[t]; ok {
		return s
	}
	s, _ := infer.AnnotationScheme(&fileContext{checker: c, file: sf}, t)
	st.schemes[t] = s
	return s
}

// typeDef describes a union or alias declared in sf. A recursive alias
// has no definition.
func (c *TypeChecker) typeDef(sf *forest.SourceFile, decl ast.Decl) *infer.TypeDef {
	st := c.state(sf)
	if def, ok := st.typeDefs[decl]; ok {
		return def
	}
	if st.busy[decl] {
		return nil
	}
	var def *infer.TypeDef
	switch d := decl.(type) {
	case *ast.TypeDecl:
		def = &infer.TypeDef{Module: sf.ModuleName, Name: d.Name}
		for _, p := range d.Params {
			v := c.supply.Fresh()
			v.Name = p
			def.Params = append(def.Params, v)
		}
	case *ast.TypeAlias:
		if d.Type == nil {
			return nil
		}
		st.busy[decl] = true
		def, _ = infer.ConvertAlias(&fileContext{checker: c, file: sf}, d.Params, d.Type)
		delete(st.busy, decl)
		def.Module, def.Name = sf.ModuleName, d.Name
		if types.IsUnknown(def.Alias) {
			return nil
		}
	default:
		return nil
	}
	st.typeDefs[decl] = def
	return def
}

func (c *TypeChecker) variantScheme(sf *forest.SourceFile, union *ast.TypeDecl, variant *ast.Variant) *types.Scheme {
	st := c.state(sf)
	if s, ok := st.schemes[variant]; ok {
		return s
	}
	def := c.typeDef(sf, union)
	args, _ := infer.ConvertVariant(&fileContext{checker: c, file: sf}, def.Params, union.Params, variant.Args)
	params := make([]types.Type, len(def.Params))
	for i, p := range def.Params {
		params[i] = p
	}
	var t types.Type = &types.Union{Module: def.Module, Name: def.Name, Args: params}
	if len(args) > 0 {
		t = &types.Function{Params: args, Return: t}
	}
	s := types.Generalize(t, nil)
	st.schemes[variant] = s
	return s
}

// recordConstructorScheme builds the constructor function of a record
// alias, taking the fields in declaration order.
func (c *TypeChecker) recordConstructorScheme(sf *forest.SourceFile, alias *ast.TypeAlias) *types.Scheme {
	st := c.state(sf)
	if s, ok := st.schemes[alias]; ok {
		return s
	}
	s := types.Mono(&types.Unknown{})
	def := c.typeDef(sf, alias)
	written, _ := alias.Type.(*ast.RecordType)
	if def != nil && written != nil {
		args := make([]types.Type, len(def.Params))
		for i, p := range def.Params {
			args[i] = p
		}
		if record, ok := infer.Expand(def, args).(*types.Record); ok {
			params := make([]types.Type, 0, len(written.Fields))
			for _, f := range written.Fields {
				params = append(params, record.Fields[f.Name])
			}
			var t types.Type = record
			if len(params) > 0 {
				t = &types.Function{Params: params, Return: record}
			}
			s = types.Generalize(t, nil)
		}
	}
	st.schemes[alias] = s
	return s
}
