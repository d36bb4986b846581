package scanner_test

import (
	"io/fs"
	"sort"
	"sync"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/jfmengels/elm-language-server/internal/scanner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScan(t *testing.T) {
	fsys := memfs.New()
	files := map[string]string{
		"src/Main.elm":             "module Main exposing (..)",
		"src/Page/Home.elm":        "module Page.Home exposing (..)",
		"src/.hidden/Secret.elm":   "module Secret exposing (..)",
		"src/elm-stuff/Cached.elm": "module Cached exposing (..)",
		"src/README.md":            "# readme",
		"src/Generated/Schema.elm": "module Generated.Schema exposing (..)",
		"tests/MainTest.elm":       "module MainTest exposing (..)",
	}
	for name, content := range files {
		require.NoError(t, util.WriteFile(fsys, name, []byte(content), 0o644))
	}

	var mu sync.Mutex
	var seen []string
	contents := map[string]string{}
	err := scanner.Scan(fsys, "src",
		func(relPath string, info fs.FileInfo) bool {
			return relPath == "src/Generated/Schema.elm"
		},
		func(relPath string, document []byte) {
			mu.Lock()
			defer mu.Unlock()
			seen = append(seen, relPath)
			contents[relPath] = string(document)
		})
	require.NoError(t, err)

	sort.Strings(seen)
	assert.Equal(t, []string{"src/Main.elm", "src/Page/Home.elm"}, seen)
	assert.Equal(t, files["src/Page/Home.elm"], contents["src/Page/Home.elm"])
}

func TestScanMissingRoot(t *testing.T) {
	called := false
	err := scanner.Scan(memfs.New(), "tests", nil, func(string, []byte) { called = true })
	assert.Error(t, err)
	assert.False(t, called)
}
