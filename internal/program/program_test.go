package program_test

import (
	"context"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/jfmengels/elm-language-server/internal/ast"
	"github.com/jfmengels/elm-language-server/internal/config"
	"github.com/jfmengels/elm-language-server/internal/forest"
	"github.com/jfmengels/elm-language-server/internal/program"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const root = "file:///work"

const elmJSON = `{
    "type": "application",
    "source-directories": ["src"],
    "elm-version": "0.19.1",
    "dependencies": {"direct": {"elm/core": "1.0.5"}, "indirect": {}},
    "test-dependencies": {"direct": {}, "indirect": {}}
}`

func workspace(t *testing.T, files map[string]string) billy.Filesystem {
	t.Helper()
	fsys := memfs.New()
	for name, content := range files {
		require.NoError(t, util.WriteFile(fsys, name, []byte(content), 0o644))
	}
	return fsys
}

func load(t *testing.T, files map[string]string) *program.Program {
	t.Helper()
	cfg := config.Default()
	cfg.Exclude = append(cfg.Exclude, "src/Generated/**")
	p, err := program.New(root, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { p.Close() })
	require.NoError(t, p.Load(context.Background(), workspace(t, files)))
	return p
}

func uris(view forest.View) []string {
	var out []string
	for sf := range view.Values() {
		out = append(out, sf.URI)
	}
	return out
}

func value(t *testing.T, sf *forest.SourceFile, name string) *ast.ValueDecl {
	t.Helper()
	for _, d := range sf.Tree.Values() {
		if d.Name == name {
			return d
		}
	}
	t.Fatalf("no declaration %s in %s", name, sf.URI)
	return nil
}

var project = map[string]string{
	"elm.json": elmJSON,
	"src/Main.elm": `module Main exposing (main)

import Helpers exposing (double)


main =
    double 21
`,
	"src/Helpers.elm": `module Helpers exposing (double)


double : Int -> Int
double n =
    n * 2
`,
	"src/Generated/Api.elm": `module Generated.Api exposing (..)


x =
    1
`,
	"tests/HelpersTest.elm": `module HelpersTest exposing (..)

import Helpers


check =
    Helpers.double 2 == 4
`,
}

func TestLoad(t *testing.T) {
	p := load(t, project)

	assert.Equal(t, root, p.RootPath())
	assert.Equal(t, []string{"src"}, p.ElmJSON().Sources())
	assert.Equal(t, []string{
		root + "/src/Helpers.elm",
		root + "/src/Main.elm",
	}, uris(p.GetForest(false)))
	assert.Equal(t, []string{
		root + "/src/Helpers.elm",
		root + "/src/Main.elm",
		root + "/tests/HelpersTest.elm",
	}, uris(p.GetForest(true)))

	test, err := p.GetForest(true).Get(root + "/tests/HelpersTest.elm")
	require.NoError(t, err)
	assert.True(t, test.IsTestFile)
	_, err = p.GetForest(false).Get(root + "/tests/HelpersTest.elm")
	assert.ErrorIs(t, err, forest.ErrNotFound)

	main, err := p.GetForest(false).Get(root + "/src/Main.elm")
	require.NoError(t, err)
	tc := p.GetTypeChecker()
	assert.Equal(t, "Int", tc.TypeToString(tc.FindType(value(t, main, "main"))))
	assert.Equal(t, "Bool", tc.TypeToString(tc.FindType(value(t, test, "check"))))
}

func TestLoadWithoutElmJSON(t *testing.T) {
	p := load(t, map[string]string{
		"src/Main.elm": "module Main exposing (..)\n\n\nanswer =\n    42\n",
	})
	assert.Equal(t, []string{root + "/src/Main.elm"}, uris(p.GetForest(false)))
}

func TestLoadUnsupportedVersion(t *testing.T) {
	p, err := program.New(root, config.Default())
	require.NoError(t, err)
	defer p.Close()

	fsys := workspace(t, map[string]string{
		"elm.json": `{"type": "application", "source-directories": ["src"], "elm-version": "0.18.0"}`,
	})
	assert.ErrorIs(t, p.Load(context.Background(), fsys), config.ErrUnsupportedVersion)
}

func TestTypeCheckerMemo(t *testing.T) {
	p := load(t, project)
	ctx := context.Background()

	tc := p.GetTypeChecker()
	assert.Same(t, tc, p.GetTypeChecker())

	// a content edit keeps the checker, its caches notice through stamps
	_, err := p.SetSource(ctx, root+"/src/Helpers.elm", []byte(`module Helpers exposing (double)


double : Float -> Float
double n =
    n * 2
`))
	require.NoError(t, err)
	assert.Same(t, tc, p.GetTypeChecker())

	main, err := p.GetForest(false).Get(root + "/src/Main.elm")
	require.NoError(t, err)
	assert.Equal(t, "Float", tc.TypeToString(tc.FindType(value(t, main, "main"))))

	// adding a file is structural
	_, err = p.SetSource(ctx, root+"/src/Extra.elm", []byte("module Extra exposing (..)\n\n\nextra =\n    \"\"\n"))
	require.NoError(t, err)
	next := p.GetTypeChecker()
	assert.NotSame(t, tc, next)

	require.NoError(t, p.Remove(root+"/src/Extra.elm"))
	assert.NotSame(t, next, p.GetTypeChecker())
	assert.ErrorIs(t, p.Remove(root+"/src/Extra.elm"), forest.ErrNotFound)
}

func TestLoadCanceled(t *testing.T) {
	p, err := program.New(root, config.Default())
	require.NoError(t, err)
	defer p.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.Load(ctx, workspace(t, project)), context.Canceled)
}

func TestURIs(t *testing.T) {
	rel, err := program.RelPath(root, root+"/src/Page/Home.elm")
	require.NoError(t, err)
	assert.Equal(t, "src/Page/Home.elm", rel)

	_, err = program.RelPath(root, "untitled:Untitled-1")
	assert.Error(t, err)

	uri, err := program.JoinURI(root, "src/Main.elm")
	require.NoError(t, err)
	assert.Equal(t, root+"/src/Main.elm", uri)

	assert.Equal(t, "file:///home/me/my%20project", program.PathToURI("/home/me/my project"))
	path, err := program.URIToPath("file:///home/me/my%20project/src/Main.elm")
	require.NoError(t, err)
	assert.Equal(t, "/home/me/my project/src/Main.elm", path)
}
