package server

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"reflect"

	"github.com/jfmengels/elm-language-server/internal/ast"
	"github.com/jfmengels/elm-language-server/internal/program"
	"github.com/jfmengels/elm-language-server/internal/sitteradapter"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func (s *Server) textDocumentDidOpen(
	context *glsp.Context,
	params *protocol.DidOpenTextDocumentParams,
) error {
	uri := params.TextDocument.URI
	ws, err := s.route(uri)
	if err != nil {
		return err
	}
	if err := s.manager.Open(uri, []byte(params.TextDocument.Text), params.TextDocument.Version); err != nil {
		return err
	}
	return s.install(ws, uri)
}

func (s *Server) textDocumentDidChange(
	context *glsp.Context,
	params *protocol.DidChangeTextDocumentParams,
) error {
	uri := params.TextDocument.URI
	ws, err := s.route(uri)
	if err != nil {
		return err
	}
	if err := s.manager.Apply(uri, params.TextDocument.Version, params.ContentChanges); err != nil {
		return err
	}
	return s.install(ws, uri)
}

func (s *Server) textDocumentDidSave(
	context *glsp.Context,
	params *protocol.DidSaveTextDocumentParams,
) error {
	uri := params.TextDocument.URI
	ws, err := s.route(uri)
	if err != nil {
		return err
	}
	if params.Text == nil || !s.manager.IsOpen(uri) {
		return nil
	}
	if err := s.manager.Replace(uri, []byte(*params.Text)); err != nil {
		return err
	}
	return s.install(ws, uri)
}

// textDocumentDidClose hands the file back to its content on disk.
func (s *Server) textDocumentDidClose(
	context *glsp.Context,
	params *protocol.DidCloseTextDocumentParams,
) error {
	uri := params.TextDocument.URI
	if err := s.manager.Release(uri); err != nil {
		log.Warningf("close %s: %s", uri, err)
	}
	ws, err := s.route(uri)
	if err != nil {
		return err
	}

	err = ws.scheduler.Do(bg(), "close "+uri, func() error {
		path, err := program.URIToPath(uri)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			return ws.program.Remove(uri)
		}
		if err != nil {
			return err
		}
		_, err = ws.program.SetSource(bg(), uri, data)
		return err
	})
	s.publishDiagnostics(uri, []protocol.Diagnostic{})
	s.schedulePublish(ws)
	return err
}

// install re-reads the tree of an open document into its Program and
// queues a diagnostics refresh.
func (s *Server) install(ws *workspace, uri string) error {
	err := ws.scheduler.Do(bg(), "install "+uri, func() error {
		tree, err := s.manager.Tree(bg(), uri)
		if err != nil {
			return err
		}
		ws.program.SetTree(uri, tree)
		return nil
	})
	if err != nil {
		return err
	}
	s.schedulePublish(ws, uri)
	return nil
}

// schedulePublish refreshes the diagnostics of uris and of every open
// document of the workspace once edits settle.
func (s *Server) schedulePublish(ws *workspace, uris ...string) {
	ws.pendingMu.Lock()
	for _, uri := range uris {
		ws.pending[uri] = struct{}{}
	}
	ws.pendingMu.Unlock()

	ws.debounced(func() {
		ws.pendingMu.Lock()
		targets := ws.pending
		ws.pending = make(map[string]struct{})
		ws.pendingMu.Unlock()

		for _, uri := range s.manager.URIs() {
			if ws.program.Contains(uri) {
				targets[uri] = struct{}{}
			}
		}
		s.refreshDiagnostics(ws, targets)
	})
}

func (s *Server) refreshDiagnostics(ws *workspace, uris map[string]struct{}) {
	results := map[string][]protocol.Diagnostic{}
	err := ws.scheduler.Do(bg(), "diagnostics", func() error {
		tc := ws.program.GetTypeChecker()
		for uri := range uris {
			sf, err := ws.program.Forest().Get(uri)
			if err != nil {
				continue
			}
			results[uri] = toDiagnostics(tc.CheckFile(sf), string(sf.Source))
		}
		return nil
	})
	if err != nil {
		log.Errorf("diagnostics: %s", err)
		return
	}
	for uri, diagnostics := range results {
		s.publishDiagnostics(uri, diagnostics)
	}
}

func (s *Server) publishDiagnostics(uri string, diagnostics []protocol.Diagnostic) {
	s.diagnosticsMu.Lock()
	// Check if diagnostics have changed
	if previous, exists := s.diagnosticCache[uri]; exists && reflect.DeepEqual(previous, diagnostics) {
		s.diagnosticsMu.Unlock()
		return
	}
	s.diagnosticCache[uri] = diagnostics
	notify := s.notify
	s.diagnosticsMu.Unlock()

	if notify == nil {
		return
	}
	notify("textDocument/publishDiagnostics", protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

func toDiagnostics(diags []ast.Diagnostic, document string) []protocol.Diagnostic {
	out := make([]protocol.Diagnostic, 0, len(diags))
	for _, d := range diags {
		severity := protocol.DiagnosticSeverity(d.Severity)
		source := d.Source
		out = append(out, protocol.Diagnostic{
			Range:    sitteradapter.SpanToRange(d.Span, document),
			Severity: &severity,
			Source:   &source,
			Message:  d.Message,
		})
	}
	return out
}

func bg() context.Context { return context.Background() }
