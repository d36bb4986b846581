package server

import (
	"fmt"
	"strings"

	"github.com/jfmengels/elm-language-server/internal/ast"
	"github.com/jfmengels/elm-language-server/internal/forest"
	"github.com/jfmengels/elm-language-server/internal/prelude"
	"github.com/jfmengels/elm-language-server/internal/resolver"
	"github.com/jfmengels/elm-language-server/internal/sitteradapter"
	"github.com/jfmengels/elm-language-server/internal/types"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

const maxSymbols = 128

func (s *Server) textDocumentHover(
	context *glsp.Context,
	params *protocol.HoverParams,
) (*protocol.Hover, error) {
	uri := params.TextDocument.URI
	ws, err := s.route(uri)
	if err != nil {
		return nil, err
	}

	var hover *protocol.Hover
	err = ws.scheduler.Do(bg(), "hover", func() error {
		sf, err := ws.program.Forest().Get(uri)
		if err != nil {
			return nil
		}
		document := string(sf.Source)
		node := sf.Tree.NodeAt(sitteradapter.PositionToOffset(document, params.Position))
		if node == nil {
			return nil
		}
		tc := ws.program.GetTypeChecker()
		t := tc.FindType(node)
		if types.IsUnknown(t) {
			return nil
		}

		signature := tc.TypeToStringIn(t, sf)
		if name := hoverName(node); name != "" {
			signature = name + " : " + signature
		}
		rng := sitteradapter.SpanToRange(node.Span(), document)
		hover = &protocol.Hover{
			Contents: protocol.MarkupContent{
				Kind:  protocol.MarkupKindMarkdown,
				Value: "```elm\n" + signature + "\n```",
			},
			Range: &rng,
		}
		return nil
	})
	return hover, err
}

func hoverName(n ast.Node) string {
	switch n := n.(type) {
	case *ast.ValueDecl:
		return n.Name
	case *ast.ValueRef:
		return n.FullName()
	case *ast.Variant:
		return n.Name
	case *ast.PortAnnotation:
		return n.Name
	}
	return ""
}

func (s *Server) textDocumentDefinition(
	context *glsp.Context,
	params *protocol.DefinitionParams,
) (any, error) {
	uri := params.TextDocument.URI
	ws, err := s.route(uri)
	if err != nil {
		return nil, err
	}

	var location *protocol.Location
	err = ws.scheduler.Do(bg(), "definition", func() error {
		sf, err := ws.program.Forest().Get(uri)
		if err != nil {
			return nil
		}
		node := sf.Tree.NodeAt(sitteradapter.PositionToOffset(string(sf.Source), params.Position))
		res := ws.program.GetTypeChecker().Resolver()

		var target *forest.SourceFile
		var decl ast.Node
		switch n := node.(type) {
		case *ast.ValueRef:
			if local := sf.Tree.LocalBinding(n); local != nil {
				target, decl = sf, local
				break
			}
			v, ok := res.Value(sf, n.Qualifier, n.Name)
			if !ok {
				return nil
			}
			target, decl = v.File, valueNode(v)
		case *ast.TypeRef:
			t, ok := res.Type(sf, n.Qualifier, n.Name)
			if !ok {
				return nil
			}
			target, decl = t.File, typeNode(t)
		default:
			return nil
		}
		if decl == nil || prelude.IsCore(target.URI) {
			return nil
		}
		location = &protocol.Location{
			URI:   target.URI,
			Range: sitteradapter.SpanToRange(decl.Span(), string(target.Source)),
		}
		return nil
	})
	if err != nil || location == nil {
		return nil, err
	}
	return *location, nil
}

func valueNode(v resolver.Value) ast.Node {
	switch v.Kind {
	case resolver.KindValue:
		return v.Decl
	case resolver.KindPort:
		return v.Port
	case resolver.KindConstructor:
		if v.Constructor.Variant != nil {
			return v.Constructor.Variant
		}
		if v.Constructor.Alias != nil {
			return v.Constructor.Alias
		}
	}
	return nil
}

func typeNode(t resolver.Type) ast.Node {
	if t.Union != nil {
		return t.Union
	}
	if t.Alias != nil {
		return t.Alias
	}
	return nil
}

// workspaceSymbol lists top-level values whose name contains the query
// as a subsequence.
func (s *Server) workspaceSymbol(
	context *glsp.Context,
	params *protocol.WorkspaceSymbolParams,
) ([]protocol.SymbolInformation, error) {
	query := strings.ToLower(params.Query)
	var symbols []protocol.SymbolInformation

	for _, p := range s.registry.Programs() {
		s.mu.Lock()
		ws := s.workspaces[p.RootPath()]
		s.mu.Unlock()
		if ws == nil {
			continue
		}

		err := ws.scheduler.Do(bg(), "symbols", func() error {
			for sf := range p.GetForest(true).Values() {
				module := sf.ModuleName
				for _, d := range sf.Tree.Values() {
					if len(symbols) == maxSymbols {
						return nil
					}
					if d.Name == "" || !isSubsequence(query, strings.ToLower(d.Name)) {
						continue
					}
					symbols = append(symbols, protocol.SymbolInformation{
						Name: d.Name,
						Kind: symbolKind(d),
						Location: protocol.Location{
							URI:   sf.URI,
							Range: sitteradapter.SpanToRange(d.Span(), string(sf.Source)),
						},
						ContainerName: &module,
					})
				}
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("symbols of %s: %w", p.RootPath(), err)
		}
	}
	return symbols, nil
}

func symbolKind(d *ast.ValueDecl) protocol.SymbolKind {
	if len(d.Params) > 0 {
		return protocol.SymbolKindFunction
	}
	return protocol.SymbolKindConstant
}

// isSubsequence reports whether every rune of query appears in s in order.
func isSubsequence(query, s string) bool {
	rest := []rune(query)
	for _, r := range s {
		if len(rest) == 0 {
			break
		}
		if r == rest[0] {
			rest = rest[1:]
		}
	}
	return len(rest) == 0
}
