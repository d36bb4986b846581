package syntax_test

import (
	"context"
	"testing"

	"github.com/jfmengels/elm-language-server/internal/ast"
	"github.com/jfmengels/elm-language-server/internal/parser"
	"github.com/jfmengels/elm-language-server/internal/syntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) *syntax.Tree {
	t.Helper()
	pool := parser.NewPool(1)
	defer pool.Close()
	tree, err := syntax.Parse(context.Background(), pool, "file:///work/src/Main.elm", []byte(src))
	require.NoError(t, err)
	return tree
}

func valueNamed(t *testing.T, f *ast.File, name string) *ast.ValueDecl {
	t.Helper()
	for _, v := range f.Values() {
		if v.Name == name {
			return v
		}
	}
	t.Fatalf("no value declaration %q", name)
	return nil
}

func TestKindTable(t *testing.T) {
	produced := syntax.Kinds()
	for _, k := range ast.Kinds() {
		switch k {
		case ast.KindFile, ast.KindRecordUpdate:
			continue
		}
		assert.NotEmpty(t, produced[k], "no grammar kind translates to %s", k)
	}
}

func TestHeader(t *testing.T) {
	tree := parse(t, `module Page.Home exposing (Model, Msg(..), view, (|=))

import Html exposing (..)
import Html.Attributes as Attr
import Dict exposing (Dict, get)
`)
	f := tree.File
	assert.Empty(t, tree.Diagnostics)
	assert.Equal(t, "Page.Home", f.ModuleName())
	assert.Equal(t, "file:///work/src/Main.elm", f.URI)

	exp := f.Module.Exposing
	require.NotNil(t, exp)
	assert.False(t, exp.All)
	assert.Equal(t, []string{"view"}, exp.Values)
	assert.Equal(t, []ast.ExposedType{{Name: "Model"}, {Name: "Msg", Open: true}}, exp.Types)
	assert.Equal(t, []string{"|="}, exp.Operators)

	require.Len(t, f.Imports, 3)
	assert.Equal(t, "Html", f.Imports[0].ModuleName)
	assert.True(t, f.Imports[0].Exposing.All)
	assert.Equal(t, "Html.Attributes", f.Imports[1].ModuleName)
	assert.Equal(t, "Attr", f.Imports[1].Alias)
	assert.Nil(t, f.Imports[1].Exposing)
	assert.Equal(t, []string{"get"}, f.Imports[2].Exposing.Values)
}

func TestMissingHeaderIsMain(t *testing.T) {
	tree := parse(t, "x = 1\n")
	assert.Equal(t, "Main", tree.File.ModuleName())
}

func TestDeclarations(t *testing.T) {
	tree := parse(t, `module Main exposing (..)

type Shape a
    = Circle Float
    | Poly (List a)
    | Empty

type alias Point =
    { x : Float, y : Float }

infix left 6 (|.) = plus

area : Shape a -> Float
area shape =
    0

plus a b =
    a
`)
	f := tree.File
	assert.Empty(t, tree.Diagnostics)

	var (
		union *ast.TypeDecl
		alias *ast.TypeAlias
		infix *ast.InfixDecl
	)
	for _, d := range f.Decls {
		switch d := d.(type) {
		case *ast.TypeDecl:
			union = d
		case *ast.TypeAlias:
			alias = d
		case *ast.InfixDecl:
			infix = d
		}
	}
	require.NotNil(t, union)
	assert.Equal(t, "Shape", union.Name)
	assert.Equal(t, []string{"a"}, union.Params)
	require.Len(t, union.Variants, 3)
	assert.Equal(t, "Circle", union.Variants[0].Name)
	assert.Len(t, union.Variants[0].Args, 1)
	poly, ok := union.Variants[1].Args[0].(*ast.TypeRef)
	require.True(t, ok)
	assert.Equal(t, "List", poly.Name)
	assert.Empty(t, union.Variants[2].Args)

	require.NotNil(t, alias)
	rec, ok := alias.Type.(*ast.RecordType)
	require.True(t, ok)
	assert.Len(t, rec.Fields, 2)

	require.NotNil(t, infix)
	assert.Equal(t, "|.", infix.Symbol)
	assert.Equal(t, ast.AssocLeft, infix.Assoc)
	assert.Equal(t, 6, infix.Precedence)
	assert.Equal(t, "plus", infix.Function)

	area := valueNamed(t, f, "area")
	require.NotNil(t, area.Annotation)
	fn, ok := area.Annotation.Type.(*ast.FunctionType)
	require.True(t, ok)
	assert.Len(t, fn.Params, 1)
	assert.Len(t, area.Params, 1)
	assert.Nil(t, valueNamed(t, f, "plus").Annotation)
}

func TestExpressions(t *testing.T) {
	tree := parse(t, `module Main exposing (..)

ops =
    1 + 2 * 3

qualified =
    Dict.empty

fieldOf model =
    model.count

ctor =
    Maybe.Just 1

cond x =
    if x then
        1
    else
        2

branch m =
    case m of
        Just v ->
            v

        Nothing ->
            0

local =
    let
        y : Int
        y =
            1
    in
    y

lambda =
    \a b -> a

update r =
    { r | count = 1 }
`)
	f := tree.File
	assert.Empty(t, tree.Diagnostics)

	bin, ok := valueNamed(t, f, "ops").Body.(*ast.BinOp)
	require.True(t, ok)
	assert.Len(t, bin.Operands, 3)
	require.Len(t, bin.Operators, 2)
	assert.Equal(t, "+", bin.Operators[0].Symbol)
	assert.Equal(t, "*", bin.Operators[1].Symbol)

	ref, ok := valueNamed(t, f, "qualified").Body.(*ast.ValueRef)
	require.True(t, ok)
	assert.Equal(t, "Dict", ref.Qualifier)
	assert.Equal(t, "empty", ref.Name)

	access, ok := valueNamed(t, f, "fieldOf").Body.(*ast.FieldAccess)
	require.True(t, ok)
	assert.Equal(t, "count", access.Field)

	call, ok := valueNamed(t, f, "ctor").Body.(*ast.Call)
	require.True(t, ok)
	target := call.Target.(*ast.ValueRef)
	assert.True(t, target.IsConstructor())
	assert.Equal(t, "Maybe.Just", target.FullName())

	cond, ok := valueNamed(t, f, "cond").Body.(*ast.If)
	require.True(t, ok)
	assert.Len(t, cond.Conditions, 1)
	assert.NotNil(t, cond.Else)

	branch, ok := valueNamed(t, f, "branch").Body.(*ast.Case)
	require.True(t, ok)
	require.Len(t, branch.Branches, 2)
	just, ok := branch.Branches[0].Pattern.(*ast.CtorPattern)
	require.True(t, ok)
	assert.Equal(t, "Just", just.Name)
	assert.Len(t, just.Args, 1)

	let, ok := valueNamed(t, f, "local").Body.(*ast.LetIn)
	require.True(t, ok)
	require.Len(t, let.Values(), 1)
	assert.NotNil(t, let.Values()[0].Annotation)

	lambda, ok := valueNamed(t, f, "lambda").Body.(*ast.Lambda)
	require.True(t, ok)
	assert.Len(t, lambda.Params, 2)

	upd, ok := valueNamed(t, f, "update").Body.(*ast.RecordUpdate)
	require.True(t, ok)
	assert.Equal(t, "r", upd.Base.Name)
	assert.Len(t, upd.Fields, 1)
}

func TestNodesBelongToFile(t *testing.T) {
	tree := parse(t, "module Main exposing (..)\n\nx =\n    [ 1, 2 ]\n")
	f := tree.File
	ast.Walk(f, func(n ast.Node) bool {
		assert.Same(t, f, n.File())
		return true
	})
	lits := ast.Descendants[*ast.NumberLit](f)
	require.Len(t, lits, 2)
	assert.Same(t, lits[1], f.NodeAt(lits[1].Span().StartByte))
	assert.Equal(t, ast.Decl(valueNamed(t, f, "x")), f.Enclosing(lits[0]))
}

func TestSyntaxErrors(t *testing.T) {
	tree := parse(t, "module Main exposing (..)\n\nx =\n    (1 +\n")
	assert.NotEmpty(t, tree.Diagnostics)
	for _, d := range tree.Diagnostics {
		assert.Equal(t, ast.SeverityError, d.Severity)
		assert.Equal(t, syntax.DiagnosticSource, d.Source)
	}
}
