package graph_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/jfmengels/elm-language-server/internal/forest"
	"github.com/jfmengels/elm-language-server/internal/graph"
	"github.com/jfmengels/elm-language-server/internal/parser"
	"github.com/jfmengels/elm-language-server/internal/syntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func read(t *testing.T, conn *websocket.Conn) graph.IncrementalMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg graph.IncrementalMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestWebSocketUpdates(t *testing.T) {
	v := graph.NewViewer()
	v.AddNode(graph.Node{ID: 1, Label: "Main", Group: "workspace"})

	srv := httptest.NewServer(v.Handler())
	defer srv.Close()
	defer v.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	first := read(t, conn)
	assert.Equal(t, "init", first.Op)
	require.NotNil(t, first.Graph)
	assert.Equal(t, []graph.Node{{ID: 1, Label: "Main", Group: "workspace"}}, first.Graph.Nodes)

	v.AddNode(graph.Node{ID: 2, Label: "Helpers", Group: "workspace"})
	msg := read(t, conn)
	assert.Equal(t, "add", msg.Op)
	assert.Equal(t, "Helpers", msg.Node.Label)

	v.AddLink(graph.Link{Source: 1, Target: 2})
	v.AddLink(graph.Link{Source: 1, Target: 2})
	msg = read(t, conn)
	assert.Equal(t, &graph.Link{Source: 1, Target: 2}, msg.Link)

	v.DeleteNode(2)
	msg = read(t, conn)
	assert.Equal(t, "deleteNode", msg.Op, "the duplicate link was not broadcast")
	assert.Empty(t, v.GetGraph().Links)
}

func TestStaticPage(t *testing.T) {
	srv := httptest.NewServer(graph.NewViewer().Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/static/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestFollow(t *testing.T) {
	pool := parser.NewPool(1)
	defer pool.Close()
	f := forest.New("file:///work")
	set := func(module, src string) *forest.SourceFile {
		uri := "file:///work/src/" + module + ".elm"
		tree, err := syntax.Parse(context.Background(), pool, uri, []byte(src))
		require.NoError(t, err)
		return f.Set(uri, tree)
	}

	helpers := set("Helpers", "module Helpers exposing (..)\n\n\nx =\n    1\n")
	main := set("Main", "module Main exposing (..)\n\nimport Helpers\n\n\ny =\n    Helpers.x\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	v := graph.NewViewer()
	v.Follow(ctx, f)

	g := v.GetGraph()
	assert.ElementsMatch(t, []graph.Node{
		{ID: int(helpers.ID), Label: "Helpers", Group: "workspace"},
		{ID: int(main.ID), Label: "Main", Group: "workspace"},
	}, g.Nodes)
	assert.Equal(t, []graph.Link{{Source: int(main.ID), Target: int(helpers.ID)}}, g.Links)

	set("Main", "module Main exposing (..)\n\n\ny =\n    2\n")
	assert.Eventually(t, func() bool {
		return len(v.GetGraph().Links) == 0
	}, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, f.Remove(helpers.URI))
	assert.Eventually(t, func() bool {
		return len(v.GetGraph().Nodes) == 1
	}, 2*time.Second, 5*time.Millisecond)
}
