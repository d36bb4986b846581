// Package server speaks the language server protocol on top of the
// workspace Programs.
package server

import (
	"context"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/jfmengels/elm-language-server/internal/config"
	"github.com/jfmengels/elm-language-server/internal/graph"
	"github.com/jfmengels/elm-language-server/internal/manager"
	"github.com/jfmengels/elm-language-server/internal/program"
	"github.com/jfmengels/elm-language-server/internal/scheduler"
	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"
)

const Name = "elmls"

// ShowImportGraphCommand opens the import graph viewer of a workspace.
const ShowImportGraphCommand = "elm.showImportGraph"

// checkInterval paces the background type check of whole workspaces.
const checkInterval = 30 * time.Second

var log = commonlog.GetLogger("elmls.server")

type Server struct {
	handler  *protocol.Handler
	cfg      config.Config
	registry *program.Registry
	manager  *manager.DocumentManager

	mu         sync.Mutex
	workspaces map[string]*workspace
	notify     glsp.NotifyFunc

	diagnosticsMu   sync.Mutex
	diagnosticCache map[string][]protocol.Diagnostic
}

// workspace is a Program with the machinery serving it. Every read or
// write of the Program goes through its scheduler.
type workspace struct {
	program   *program.Program
	scheduler *scheduler.Scheduler
	debounced func(func())

	pendingMu sync.Mutex
	pending   map[string]struct{}

	viewerMu   sync.Mutex
	viewer     *graph.Viewer
	stopViewer context.CancelFunc
}

// New creates a Server with default configuration. Workspaces are
// opened by initialize.
func New() *Server {
	s := &Server{
		cfg:             config.Default(),
		registry:        program.NewRegistry(),
		manager:         manager.NewDocumentManager(),
		workspaces:      make(map[string]*workspace),
		diagnosticCache: make(map[string][]protocol.Diagnostic),
	}
	s.handler = &protocol.Handler{
		Initialize:                         s.initialize,
		Initialized:                        s.initialized,
		Shutdown:                           s.shutdown,
		SetTrace:                           s.setTrace,
		TextDocumentDidOpen:                s.textDocumentDidOpen,
		TextDocumentDidChange:              s.textDocumentDidChange,
		TextDocumentDidSave:                s.textDocumentDidSave,
		TextDocumentDidClose:               s.textDocumentDidClose,
		TextDocumentHover:                  s.textDocumentHover,
		TextDocumentDefinition:             s.textDocumentDefinition,
		WorkspaceSymbol:                    s.workspaceSymbol,
		WorkspaceExecuteCommand:            s.workspaceExecuteCommand,
		WorkspaceDidChangeWorkspaceFolders: s.workspaceDidChangeWorkspaceFolders,
	}
	return s
}

// NewServer creates the protocol server around a new Server.
func NewServer() *server.Server {
	return server.NewServer(New().handler, Name, false)
}

// Handler exposes the protocol handler.
func (s *Server) Handler() *protocol.Handler { return s.handler }

// route returns the workspace owning uri.
func (s *Server) route(uri string) (*workspace, error) {
	p, err := s.registry.Route(uri)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ws, ok := s.workspaces[p.RootPath()]
	if !ok {
		return nil, &program.WorkspaceNotFoundError{URI: uri}
	}
	return ws, nil
}

func (s *Server) openWorkspace(root string) (*workspace, error) {
	p, err := s.registry.Open(root, s.cfg)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if ws, ok := s.workspaces[p.RootPath()]; ok {
		return ws, nil
	}

	ws := &workspace{
		program:   p,
		scheduler: scheduler.NewScheduler(64),
		debounced: debounce.New(time.Duration(s.cfg.DiagnosticsDelayMS) * time.Millisecond),
		pending:   make(map[string]struct{}),
	}
	s.workspaces[p.RootPath()] = ws
	ws.scheduler.RunScheduler()
	log.Infof("opened workspace %s (program %s)", p.RootPath(), p.ID)
	return ws, nil
}

// loadWorkspace schedules reading the workspace from disk and the
// periodic background check.
func (s *Server) loadWorkspace(ws *workspace) error {
	err := ws.scheduler.ScheduleHighPriorityTask(scheduler.Task{
		Name: "load " + ws.program.RootPath(),
		Execute: func() error {
			fsys, err := workspaceFS(ws.program.RootPath())
			if err != nil {
				return err
			}
			if err := ws.program.Load(context.Background(), fsys); err != nil {
				return err
			}
			s.schedulePublish(ws)
			return nil
		},
	})
	if err != nil {
		return err
	}
	ws.scheduler.SchedulePeriodicTask(checkInterval, scheduler.Task{
		Name: "check " + ws.program.RootPath(),
		Execute: func() error {
			checkWorkspace(ws.program)
			return nil
		},
	})
	return nil
}

func checkWorkspace(p *program.Program) {
	tc := p.GetTypeChecker()
	files := 0
	for sf := range p.GetForest(true).Values() {
		tc.CheckFile(sf)
		files++
	}
	stats := tc.Stats()
	log.Debugf("program %s: checked %d file(s), %d inference(s), %d failure(s)", p.ID, files, stats.Inferences, stats.Failures)
}

func (s *Server) closeWorkspace(root string) error {
	p, err := s.registry.Route(root)
	if err != nil {
		return err
	}
	s.mu.Lock()
	ws := s.workspaces[p.RootPath()]
	delete(s.workspaces, p.RootPath())
	s.mu.Unlock()

	if ws != nil {
		ws.stop()
	}
	return s.registry.Close(p.RootPath())
}

func (ws *workspace) stop() {
	ws.scheduler.StopScheduler()
	ws.viewerMu.Lock()
	defer ws.viewerMu.Unlock()
	if ws.viewer != nil {
		ws.stopViewer()
		ws.viewer.Close()
		ws.viewer = nil
	}
}
