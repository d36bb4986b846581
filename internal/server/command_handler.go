package server

import (
	"context"
	"fmt"

	"github.com/jfmengels/elm-language-server/internal/graph"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func (s *Server) workspaceExecuteCommand(
	context *glsp.Context,
	params *protocol.ExecuteCommandParams,
) (any, error) {
	switch params.Command {
	case ShowImportGraphCommand:
		return s.showImportGraph(context, params.Arguments)
	}
	return nil, fmt.Errorf("unknown command %q", params.Command)
}

// showImportGraph opens the graph viewer of the workspace named by the
// first argument, a URI inside it, or of the only workspace.
func (s *Server) showImportGraph(ctx *glsp.Context, arguments []any) (string, error) {
	ws, err := s.commandWorkspace(arguments)
	if err != nil {
		return "", err
	}

	ws.viewerMu.Lock()
	if ws.viewer == nil {
		viewer := graph.NewViewer()
		var follow context.Context
		follow, ws.stopViewer = context.WithCancel(context.Background())
		viewer.Follow(follow, ws.program.Forest())
		ws.viewer = viewer
	}
	url, err := ws.viewer.Show(s.cfg.GraphAddress)
	ws.viewerMu.Unlock()
	if err != nil {
		return "", fmt.Errorf("failed to start graph viewer: %w", err)
	}

	ctx.Notify(
		"window/showDocument",
		protocol.ShowDocumentParams{
			URI:      protocol.URI(url),
			External: &protocol.True,
		},
	)
	return url, nil
}

func (s *Server) commandWorkspace(arguments []any) (*workspace, error) {
	if len(arguments) > 0 {
		if uri, ok := arguments[0].(string); ok {
			return s.route(uri)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ws := range s.workspaces {
		if len(s.workspaces) == 1 {
			return ws, nil
		}
	}
	return nil, fmt.Errorf("%s needs a workspace uri when %d workspaces are open", ShowImportGraphCommand, len(s.workspaces))
}
