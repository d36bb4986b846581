package forest_test

import (
	"context"
	"testing"

	"github.com/jfmengels/elm-language-server/internal/forest"
	"github.com/jfmengels/elm-language-server/internal/parser"
	"github.com/jfmengels/elm-language-server/internal/syntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const root = "file:///work"

type fixture struct {
	t      *testing.T
	pool   *parser.Pool
	forest *forest.Forest
}

func newFixture(t *testing.T) *fixture {
	pool := parser.NewPool(1)
	t.Cleanup(func() { pool.Close() })
	return &fixture{t: t, pool: pool, forest: forest.New(root)}
}

func (fx *fixture) tree(uri, src string) *syntax.Tree {
	fx.t.Helper()
	tree, err := syntax.Parse(context.Background(), fx.pool, uri, []byte(src))
	require.NoError(fx.t, err)
	return tree
}

func (fx *fixture) set(path, src string) *forest.SourceFile {
	fx.t.Helper()
	uri := root + "/" + path
	return fx.forest.Set(uri, fx.tree(uri, src))
}

func (fx *fixture) stamp(sf *forest.SourceFile) uint64 {
	return fx.forest.Stamp(sf.ID)
}

func uris(seq func(func(*forest.SourceFile) bool)) []string {
	var out []string
	for sf := range seq {
		out = append(out, sf.URI)
	}
	return out
}

func TestSetAndGet(t *testing.T) {
	fx := newFixture(t)
	sf := fx.set("src/Main.elm", "module Main exposing (..)\n\nx = 1\n")

	got, err := fx.forest.Get(root + "/src/Main.elm")
	require.NoError(t, err)
	assert.Same(t, sf, got)
	assert.Equal(t, "Main", got.ModuleName)
	assert.False(t, got.IsTestFile)

	_, err = fx.forest.Get(root + "/src/Missing.elm")
	assert.ErrorIs(t, err, forest.ErrNotFound)
}

func TestStableIDs(t *testing.T) {
	fx := newFixture(t)
	first := fx.set("src/A.elm", "module A exposing (..)\n\nx = 1\n")
	second := fx.set("src/A.elm", "module A exposing (..)\n\nx = 2\n")
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Version+1, second.Version)

	require.NoError(t, fx.forest.Remove(root+"/src/A.elm"))
	third := fx.set("src/A.elm", "module A exposing (..)\n\nx = 3\n")
	assert.Equal(t, first.ID, third.ID)
}

func TestValues(t *testing.T) {
	fx := newFixture(t)
	fx.set("src/B.elm", "module B exposing (..)\n\nb = 1\n")
	fx.set("src/A.elm", "module A exposing (..)\n\na = 1\n")
	fx.set("tests/ATest.elm", "module ATest exposing (..)\n\nt = 1\n")
	dep := fx.tree("elm-core:///Basics.elm", "module Basics exposing (..)\n\nid x = x\n")
	fx.forest.SetDependency("elm-core:///Basics.elm", dep)

	without := fx.forest.Values(false)
	assert.Equal(t, []string{root + "/src/A.elm", root + "/src/B.elm"}, uris(without))
	// restartable
	assert.Equal(t, []string{root + "/src/A.elm", root + "/src/B.elm"}, uris(without))

	assert.Equal(t, []string{
		root + "/src/A.elm",
		root + "/src/B.elm",
		root + "/tests/ATest.elm",
	}, uris(fx.forest.Values(true)))

	test, err := fx.forest.Get(root + "/tests/ATest.elm")
	require.NoError(t, err)
	assert.True(t, test.IsTestFile)

	_, err = fx.forest.View(false).Get(root + "/tests/ATest.elm")
	assert.ErrorIs(t, err, forest.ErrNotFound)
	_, err = fx.forest.View(true).Get(root + "/tests/ATest.elm")
	assert.NoError(t, err)
}

func TestImportGraph(t *testing.T) {
	fx := newFixture(t)
	a := fx.set("src/A.elm", "module A exposing (..)\n\nimport B\n\na = B.b\n")
	assert.Empty(t, fx.forest.Imports(a.ID))

	before := fx.stamp(a)
	b := fx.set("src/B.elm", "module B exposing (..)\n\nb = 1\n")
	assert.Equal(t, []forest.FileID{b.ID}, fx.forest.Imports(a.ID))
	assert.Equal(t, []forest.FileID{a.ID}, fx.forest.Importers(b.ID))
	assert.NotEqual(t, before, fx.stamp(a), "importer of a late module is dirty")

	// renaming B detaches A
	fx.set("src/B.elm", "module B2 exposing (..)\n\nb = 1\n")
	assert.Empty(t, fx.forest.Imports(a.ID))

	fx.set("src/B.elm", "module B exposing (..)\n\nb = 1\n")
	require.NoError(t, fx.forest.Remove(root+"/src/B.elm"))
	assert.Empty(t, fx.forest.Imports(a.ID))
	_, err := fx.forest.Get(root + "/src/B.elm")
	assert.ErrorIs(t, err, forest.ErrNotFound)
}

func TestMarkDirtyIsTransitive(t *testing.T) {
	fx := newFixture(t)
	a := fx.set("src/A.elm", "module A exposing (..)\n\na = 1\n")
	b := fx.set("src/B.elm", "module B exposing (..)\n\nimport A\n\nb = A.a\n")
	c := fx.set("src/C.elm", "module C exposing (..)\n\nimport B\n\nc = B.b\n")
	d := fx.set("src/D.elm", "module D exposing (..)\n\nd = 1\n")

	sa, sb, sc, sd := fx.stamp(a), fx.stamp(b), fx.stamp(c), fx.stamp(d)
	fx.set("src/A.elm", "module A exposing (..)\n\na = \"changed\"\n")

	assert.NotEqual(t, sa, fx.stamp(a))
	assert.NotEqual(t, sb, fx.stamp(b))
	assert.NotEqual(t, sc, fx.stamp(c))
	assert.Equal(t, sd, fx.stamp(d))
}

func TestMarkDirtyTerminatesOnCycles(t *testing.T) {
	fx := newFixture(t)
	a := fx.set("src/A.elm", "module A exposing (..)\n\nimport B\n\na = 1\n")
	b := fx.set("src/B.elm", "module B exposing (..)\n\nimport A\n\nb = 1\n")

	sa, sb := fx.stamp(a), fx.stamp(b)
	fx.set("src/A.elm", "module A exposing (..)\n\nimport B\n\na = 2\n")
	assert.NotEqual(t, sa, fx.stamp(a))
	assert.NotEqual(t, sb, fx.stamp(b))
}

func TestStructure(t *testing.T) {
	fx := newFixture(t)
	s0 := fx.forest.Structure()
	fx.set("src/A.elm", "module A exposing (..)\n\na = 1\n")
	s1 := fx.forest.Structure()
	assert.NotEqual(t, s0, s1)

	fx.set("src/A.elm", "module A exposing (..)\n\na = 2\n")
	assert.Equal(t, s1, fx.forest.Structure(), "content edits are not structural")

	require.NoError(t, fx.forest.Remove(root+"/src/A.elm"))
	assert.NotEqual(t, s1, fx.forest.Structure())
}

func TestDefaultImports(t *testing.T) {
	fx := newFixture(t)
	sf := fx.set("src/A.elm", "module A exposing (..)\n\nimport Dict\n\na = 1\n")
	require.NotEmpty(t, sf.Imports)
	assert.Equal(t, "Dict", sf.Imports[0].ModuleName)
	assert.False(t, sf.Imports[0].Implicit)
	assert.Contains(t, sf.ImportedModules(), "Basics")
	assert.Contains(t, sf.ImportedModules(), "Platform.Cmd")

	basics := fx.set("src/Basics.elm", "module Basics exposing (..)\n\nx = 1\n")
	assert.NotContains(t, basics.ImportedModules(), "Basics")
}

func TestExposedNames(t *testing.T) {
	fx := newFixture(t)
	sf := fx.set("src/Shapes.elm", `module Shapes exposing (Shape(..), Point, area, (|=))

type Shape
    = Circle Float
    | Square Float

type Hidden
    = Hidden

type alias Point =
    { x : Float, y : Float }

infix left 6 (|=) = add

area s =
    0

add a b =
    a
`)
	assert.Equal(t, []string{"(|=)", "Circle", "Point", "Shape", "Square", "area"}, sf.ExposedNames())
	assert.True(t, sf.Symbols.ExposesConstructor("Point"))
	assert.False(t, sf.Symbols.ExposesConstructor("Hidden"))
	assert.False(t, sf.Symbols.ExposesValue("add"))
}

func TestEvents(t *testing.T) {
	fx := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := fx.forest.Subscribe(ctx)

	b := fx.set("src/B.elm", "module B exposing (..)\n\nb = 1\n")
	a := fx.set("src/A.elm", "module A exposing (..)\n\nimport B\n\na = 1\n")
	require.NoError(t, fx.forest.Remove(root+"/src/A.elm"))

	var got []forest.EventType
	for len(got) < 5 {
		ev := <-events
		got = append(got, ev.Type)
		if ev.Type == forest.CreateImport {
			assert.Equal(t, a.ID, ev.Import.Source)
			assert.Equal(t, b.ID, ev.Import.Target)
		}
	}
	assert.Equal(t, []forest.EventType{
		forest.CreateFile,
		forest.CreateFile,
		forest.CreateImport,
		forest.DeleteImport,
		forest.DeleteFile,
	}, got)
}
