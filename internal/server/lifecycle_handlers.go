package server

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/jfmengels/elm-language-server/internal/config"
	"github.com/jfmengels/elm-language-server/internal/program"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func (s *Server) initialize(
	context *glsp.Context,
	params *protocol.InitializeParams,
) (any, error) {
	cfg, err := config.Load(params.InitializationOptions)
	if err != nil {
		return nil, err
	}
	s.cfg = cfg
	s.diagnosticsMu.Lock()
	s.notify = context.Notify
	s.diagnosticsMu.Unlock()
	log.Infof("config: %+v", cfg)

	for _, root := range workspaceRoots(params) {
		ws, err := s.openWorkspace(root)
		if err != nil {
			return nil, fmt.Errorf("failed to open workspace %s: %w", root, err)
		}
		if err := s.loadWorkspace(ws); err != nil {
			return nil, err
		}
	}

	syncKind := protocol.TextDocumentSyncKindIncremental

	capabilities := s.handler.CreateServerCapabilities()
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: &protocol.True,
		Change:    &syncKind,
		Save:      &protocol.SaveOptions{IncludeText: &protocol.True},
	}
	capabilities.ExecuteCommandProvider = &protocol.ExecuteCommandOptions{
		Commands: []string{ShowImportGraphCommand},
	}
	capabilities.Workspace = &protocol.ServerCapabilitiesWorkspace{
		WorkspaceFolders: &protocol.WorkspaceFoldersServerCapabilities{
			Supported:           &protocol.True,
			ChangeNotifications: &protocol.BoolOrString{Value: true},
		},
	}

	version := Version
	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    Name,
			Version: &version,
		},
	}, nil
}

// Version is set by the command at startup.
var Version = "dev"

// workspaceRoots prefers the workspace folders over the legacy root.
func workspaceRoots(params *protocol.InitializeParams) []string {
	var roots []string
	for _, folder := range params.WorkspaceFolders {
		roots = append(roots, folder.URI)
	}
	if len(roots) == 0 && params.RootURI != nil {
		roots = append(roots, *params.RootURI)
	}
	return roots
}

func (s *Server) initialized(
	context *glsp.Context,
	params *protocol.InitializedParams,
) error {
	log.Info("client initialized")
	return nil
}

func (s *Server) workspaceDidChangeWorkspaceFolders(
	context *glsp.Context,
	params *protocol.DidChangeWorkspaceFoldersParams,
) error {
	for _, folder := range params.Event.Removed {
		if err := s.closeWorkspace(folder.URI); err != nil {
			log.Warningf("closing workspace %s: %s", folder.URI, err)
		}
	}
	for _, folder := range params.Event.Added {
		ws, err := s.openWorkspace(folder.URI)
		if err != nil {
			return err
		}
		if err := s.loadWorkspace(ws); err != nil {
			return err
		}
	}
	return nil
}

func (s *Server) setTrace(context *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (s *Server) shutdown(context *glsp.Context) error {
	s.mu.Lock()
	workspaces := s.workspaces
	s.workspaces = make(map[string]*workspace)
	s.mu.Unlock()

	for _, ws := range workspaces {
		ws.stop()
	}
	s.registry.CloseAll()
	protocol.SetTraceValue(protocol.TraceValueOff)
	return s.manager.CloseAll()
}

// workspaceFS opens the directory of a root URI.
func workspaceFS(root string) (billy.Filesystem, error) {
	path, err := program.URIToPath(root)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("workspace %s: %w", root, err)
	}
	return osfs.New(path), nil
}

// StateDir returns the directory for logs and other state of appName,
// creating it if needed.
func StateDir(appName string) (string, error) {
	xdgStateHome := os.Getenv("XDG_STATE_HOME")
	if xdgStateHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		xdgStateHome = filepath.Join(homeDir, ".local", "state")
	}

	appStateDir := filepath.Join(xdgStateHome, appName)
	if err := os.MkdirAll(appStateDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create state directory: %w", err)
	}
	return appStateDir, nil
}
