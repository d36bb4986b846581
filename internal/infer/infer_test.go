package infer_test

import (
	"context"
	"strings"
	"testing"

	"github.com/jfmengels/elm-language-server/internal/ast"
	"github.com/jfmengels/elm-language-server/internal/infer"
	"github.com/jfmengels/elm-language-server/internal/parser"
	"github.com/jfmengels/elm-language-server/internal/syntax"
	"github.com/jfmengels/elm-language-server/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeContext stands in for a checked program with a handful of core
// values.
type fakeContext struct {
	supply  types.Supply
	values  map[string]*types.Scheme
	ops     map[string]infer.Operator
	typeDef map[string]*infer.TypeDef
}

func maybe(t types.Type) *types.Union {
	return &types.Union{Module: "Maybe", Name: "Maybe", Args: []types.Type{t}}
}

func newContext() *fakeContext {
	ctx := &fakeContext{
		values:  map[string]*types.Scheme{},
		ops:     map[string]infer.Operator{},
		typeDef: map[string]*infer.TypeDef{},
	}
	poly := func(build func(a, b *types.Var) types.Type) *types.Scheme {
		a, b := ctx.supply.Fresh(), ctx.supply.Fresh()
		return types.Generalize(build(a, b), nil)
	}
	fn := func(ret types.Type, params ...types.Type) *types.Function {
		return &types.Function{Params: params, Return: ret}
	}
	number := types.ClassPlaceholder("number")
	comparable := types.ClassPlaceholder("comparable")
	appendable := types.ClassPlaceholder("appendable")

	arith := types.Mono(fn(number, number, number))
	ctx.ops["+"] = infer.Operator{Scheme: arith, Precedence: 6, Assoc: ast.AssocLeft}
	ctx.ops["-"] = infer.Operator{Scheme: arith, Precedence: 6, Assoc: ast.AssocLeft}
	ctx.ops["*"] = infer.Operator{Scheme: arith, Precedence: 7, Assoc: ast.AssocLeft}
	ctx.ops["<="] = infer.Operator{Scheme: types.Mono(fn(types.Bool(), comparable, comparable)), Precedence: 4}
	ctx.ops["++"] = infer.Operator{Scheme: types.Mono(fn(appendable, appendable, appendable)), Precedence: 5, Assoc: ast.AssocRight}
	ctx.ops["::"] = infer.Operator{
		Scheme:     poly(func(a, _ *types.Var) types.Type { return fn(types.List(a), a, types.List(a)) }),
		Precedence: 5,
		Assoc:      ast.AssocRight,
	}
	ctx.ops["|>"] = infer.Operator{
		Scheme:     poly(func(a, b *types.Var) types.Type { return fn(b, a, fn(b, a)) }),
		Precedence: 0,
		Assoc:      ast.AssocLeft,
	}

	ctx.values["Just"] = poly(func(a, _ *types.Var) types.Type { return fn(maybe(a), a) })
	ctx.values["Nothing"] = poly(func(a, _ *types.Var) types.Type { return maybe(a) })
	ctx.values["identity"] = poly(func(a, _ *types.Var) types.Type { return fn(a, a) })
	ctx.values["String.length"] = types.Mono(fn(types.Int(), types.String()))
	ctx.values["getName"] = poly(func(row, _ *types.Var) types.Type {
		return fn(types.String(), &types.Record{Fields: map[string]types.Type{"name": types.String()}, Row: row})
	})
	ctx.values["exactName"] = types.Mono(fn(types.String(), &types.Record{Fields: map[string]types.Type{"name": types.String()}}))

	for _, name := range []string{"Int", "Float", "Bool"} {
		ctx.typeDef[name] = &infer.TypeDef{Module: "Basics", Name: name}
	}
	ctx.typeDef["String"] = &infer.TypeDef{Module: "String", Name: "String"}
	ctx.typeDef["List"] = &infer.TypeDef{Module: "List", Name: "List"}
	ctx.typeDef["Maybe"] = &infer.TypeDef{Module: "Maybe", Name: "Maybe"}
	ctx.typeDef["Point"] = &infer.TypeDef{
		Module: "Geometry",
		Name:   "Point",
		Alias:  &types.Record{Fields: map[string]types.Type{"x": types.Int(), "y": types.Int()}},
	}
	return ctx
}

func (c *fakeContext) Supply() *types.Supply { return &c.supply }

func (c *fakeContext) LookupValue(qualifier, name string) (*types.Scheme, bool) {
	if qualifier != "" {
		name = qualifier + "." + name
	}
	s, ok := c.values[name]
	return s, ok
}

func (c *fakeContext) LookupOperator(symbol string) (infer.Operator, bool) {
	op, ok := c.ops[symbol]
	return op, ok
}

func (c *fakeContext) LookupType(qualifier, name string) (*infer.TypeDef, bool) {
	def, ok := c.typeDef[name]
	return def, ok
}

func parseDecl(t *testing.T, src, name string) *ast.ValueDecl {
	t.Helper()
	pool := parser.NewPool(1)
	t.Cleanup(func() { pool.Close() })
	tree, err := syntax.Parse(context.Background(), pool, "file:///work/src/M.elm", []byte("module M exposing (..)\n\n\n"+src+"\n"))
	require.NoError(t, err)
	require.Empty(t, tree.Diagnostics, "source must parse cleanly")
	for _, d := range tree.File.Values() {
		if d.Name == name {
			return d
		}
	}
	t.Fatalf("no declaration %q", name)
	return nil
}

func infersTo(t *testing.T, src, want string) *infer.Result {
	t.Helper()
	res := infer.Declaration(newContext(), parseDecl(t, src, "f"))
	assert.Empty(t, res.Diagnostics)
	assert.Equal(t, want, types.ToString(res.Type))
	return res
}

func TestInfer(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"identity", "f x = x", "a -> a"},
		{"constant", "f x y = x", "a -> b -> a"},
		{"float literal", "f = 1.5", "Float"},
		{"int literal defaults", "f = 42", "Int"},
		{"string", `f = "elm"`, "String"},
		{"char", "f = 'c'", "Char"},
		{"unit", "f = ()", "()"},
		{"literal arithmetic", "f x = x + 1", "Int -> Int"},
		{"number polymorphism", "f x y = x + y", "number -> number -> number"},
		{"precedence", "f x = 1 + x * 2", "Int -> Int"},
		{"self reference", "f x =\n    if x <= 0 then\n        0\n\n    else\n        f (x - 1)", "Int -> Int"},
		{"list", "f = [ 1, 2 ]", "List Int"},
		{"cons", "f x = x :: []", "a -> List a"},
		{"append", `f x = x ++ "!"`, "String -> String"},
		{"tuple", `f x = ( x, "s" )`, "a -> ( a, String )"},
		{"lambda", "f = \\x -> ( x, x )", "a -> ( a, a )"},
		{"pipe", `f = "elm" |> String.length`, "Int"},
		{"record", `f = { x = 1, y = "s" }`, "{ x : Int, y : String }"},
		{"field access", "f r = r.name", "{ a | name : b } -> b"},
		{"field accessor", "f = .name", "{ a | name : b } -> b"},
		{"record update", "f r = { r | x = 1 }", "{ a | x : Int } -> { a | x : Int }"},
		{"record pattern", "f { x } = x", "{ a | x : b } -> b"},
		{"row polymorphism", `f = getName { name = "x", age = 1 }`, "String"},
		{"constructor", "f = Just 1", "Maybe Int"},
		{"case", "f m =\n    case m of\n        Just v ->\n            v\n\n        Nothing ->\n            0", "Maybe Int -> Int"},
		{"cons pattern", "f xs =\n    case xs of\n        x :: _ ->\n            Just x\n\n        [] ->\n            Nothing", "List a -> Maybe a"},
		{"let polymorphism", "f =\n    let\n        id x =\n            x\n    in\n    ( id 1, id \"s\" )", "( Int, String )"},
		{"let forward reference", "f =\n    let\n        a =\n            b\n\n        b =\n            1.5\n    in\n    a", "Float"},
		{"let destructuring", "f =\n    let\n        ( a, b ) =\n            ( 1.5, \"s\" )\n    in\n    b", "String"},
		{"let annotation", "f =\n    let\n        g : a -> a\n        g x =\n            x\n    in\n    ( g \"s\", g 1.5 )", "( String, Float )"},
		{"unresolved name", "f = something", "unknown"},
		{"alias annotation", "f : Point -> Int\nf p =\n    p.x", "Point -> Int"},
		{"class annotation", "f : number -> number\nf n =\n    n + 1", "number -> number"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			infersTo(t, tc.src, tc.want)
		})
	}
}

func TestAnnotationKeepsClassPlaceholders(t *testing.T) {
	res := infersTo(t, "f : something -> number\nf something =\n    1", "something -> number")
	fn, ok := res.Type.(*types.Function)
	require.True(t, ok)
	require.Len(t, fn.Params, 1)
	assert.IsType(t, &types.Var{}, fn.Params[0])
	assert.Equal(t, types.ClassPlaceholder("number"), fn.Return)
}

func TestExpressionTypes(t *testing.T) {
	decl := parseDecl(t, "f x =\n    String.length x", "f")
	res := infer.Declaration(newContext(), decl)
	require.Empty(t, res.Diagnostics)

	param := decl.Params[0]
	assert.Equal(t, "String", types.ToString(res.ExprTypes[param]))
	assert.Equal(t, "Int", types.ToString(res.ExprTypes[decl.Body]))
	assert.Equal(t, "String -> Int", types.ToString(res.ExprTypes[decl]))
}

func diagnostics(t *testing.T, src string) (*infer.Result, string) {
	t.Helper()
	res := infer.Declaration(newContext(), parseDecl(t, src, "f"))
	var msgs []string
	for _, d := range res.Diagnostics {
		assert.Equal(t, infer.DiagnosticSource, d.Source)
		msgs = append(msgs, d.Message)
	}
	return res, strings.Join(msgs, "\n")
}

func TestMismatchIsContained(t *testing.T) {
	res, msgs := diagnostics(t, `f = ( 1 + "s", 2 )`)
	assert.Contains(t, msgs, "Type mismatch")
	assert.Equal(t, "( unknown, Int )", types.ToString(res.Type))
}

func TestRigidAnnotation(t *testing.T) {
	_, msgs := diagnostics(t, "f : a -> Int\nf x =\n    x")
	assert.Contains(t, msgs, "Type mismatch")
}

func TestOccursCheck(t *testing.T) {
	_, msgs := diagnostics(t, "f x =\n    x x")
	assert.Contains(t, msgs, "Infinite type")
}

func TestConstructorArity(t *testing.T) {
	_, msgs := diagnostics(t, "f m =\n    case m of\n        Just a b ->\n            a\n\n        _ ->\n            0")
	assert.Contains(t, msgs, "expects 1 argument, but it got 2")
}

func TestClosedRecord(t *testing.T) {
	_, msgs := diagnostics(t, `f = exactName { name = "x", age = 1 }`)
	assert.Contains(t, msgs, "field `age`")
}

func TestConditionMustBeBool(t *testing.T) {
	res, msgs := diagnostics(t, "f =\n    if 1 then\n        2\n\n    else\n        3")
	assert.Contains(t, msgs, "Type mismatch")
	assert.Equal(t, "Int", types.ToString(res.Type))
}
