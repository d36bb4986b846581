package manager_test

import (
	"context"
	"testing"

	"github.com/jfmengels/elm-language-server/internal/manager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

const uri = "file:///work/src/Main.elm"

const source = `module Main exposing (..)


answer =
    42
`

func names(t *testing.T, dm *manager.DocumentManager) []string {
	t.Helper()
	tree, err := dm.Tree(context.Background(), uri)
	require.NoError(t, err)
	var out []string
	for _, d := range tree.File.Values() {
		out = append(out, d.Name)
	}
	return out
}

func ranged(startLine, startChar, endLine, endChar uint32, text string) protocol.TextDocumentContentChangeEvent {
	return protocol.TextDocumentContentChangeEvent{
		Range: &protocol.Range{
			Start: protocol.Position{Line: startLine, Character: startChar},
			End:   protocol.Position{Line: endLine, Character: endChar},
		},
		Text: text,
	}
}

func TestIncrementalEdits(t *testing.T) {
	dm := manager.NewDocumentManager()
	defer dm.CloseAll()

	require.NoError(t, dm.Open(uri, []byte(source), 1))
	assert.True(t, dm.IsOpen(uri))
	assert.Equal(t, []string{uri}, dm.URIs())
	assert.Equal(t, []string{"answer"}, names(t, dm))

	// rename answer to result, then add a second declaration
	require.NoError(t, dm.Apply(uri, 2, []any{
		ranged(3, 0, 3, 6, "result"),
		ranged(5, 0, 5, 0, "\n\nother =\n    result\n"),
	}))

	text, err := dm.Text(uri)
	require.NoError(t, err)
	assert.Equal(t, "module Main exposing (..)\n\n\nresult =\n    42\n\n\nother =\n    result\n", string(text))
	version, err := dm.Version(uri)
	require.NoError(t, err)
	assert.Equal(t, protocol.Integer(2), version)

	tree, err := dm.Tree(context.Background(), uri)
	require.NoError(t, err)
	assert.Empty(t, tree.Diagnostics)
	assert.Equal(t, []string{"result", "other"}, names(t, dm))
}

func TestWholeDocumentChange(t *testing.T) {
	dm := manager.NewDocumentManager()
	defer dm.CloseAll()

	require.NoError(t, dm.Open(uri, nil, 1))
	require.NoError(t, dm.Apply(uri, 2, []any{
		protocol.TextDocumentContentChangeEventWhole{Text: source},
	}))
	assert.Equal(t, []string{"answer"}, names(t, dm))

	require.NoError(t, dm.Apply(uri, 3, []any{
		protocol.TextDocumentContentChangeEvent{Text: "module Main exposing (..)\n\n\nx =\n    1\n"},
	}))
	assert.Equal(t, []string{"x"}, names(t, dm))

	assert.Error(t, dm.Apply(uri, 4, []any{"not a change"}))
}

func TestRelease(t *testing.T) {
	dm := manager.NewDocumentManager()
	require.NoError(t, dm.Open(uri, []byte(source), 1))
	require.NoError(t, dm.Release(uri))

	assert.False(t, dm.IsOpen(uri))
	_, err := dm.Text(uri)
	assert.ErrorIs(t, err, manager.ErrNotOpen)
	assert.ErrorIs(t, dm.Release(uri), manager.ErrNotOpen)
	assert.ErrorIs(t, dm.ApplyIncrementalEdit(uri, ranged(0, 0, 0, 0, "x")), manager.ErrNotOpen)
}
