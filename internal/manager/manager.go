// Package manager keeps the text and incremental parser of every
// document the editor has open.
package manager

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jfmengels/elm-language-server/internal/parser"
	"github.com/jfmengels/elm-language-server/internal/sitteradapter"
	"github.com/jfmengels/elm-language-server/internal/syntax"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"golang.org/x/exp/maps"
)

var ErrNotOpen = errors.New("document not open")

type document struct {
	parser  *parser.Parser
	text    []byte
	version protocol.Integer
	// edited is set once the tree received edits not yet re-parsed.
	edited bool
}

// DocumentManager encapsulates parser and document state for each open URI.
type DocumentManager struct {
	mu   sync.Mutex
	docs map[string]*document
}

// NewDocumentManager creates an initialized DocumentManager.
func NewDocumentManager() *DocumentManager {
	return &DocumentManager{docs: make(map[string]*document)}
}

func (dm *DocumentManager) get(uri string) (*document, error) {
	doc, ok := dm.docs[uri]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotOpen, uri)
	}
	return doc, nil
}

// Open starts tracking uri with its initial text, replacing any earlier
// state.
func (dm *DocumentManager) Open(uri string, text []byte, version protocol.Integer) error {
	p, err := parser.NewParser(text)
	if err != nil {
		return fmt.Errorf("failed to create parser for %s: %w", uri, err)
	}

	dm.mu.Lock()
	defer dm.mu.Unlock()
	if old, ok := dm.docs[uri]; ok {
		old.parser.Close()
	}
	dm.docs[uri] = &document{parser: p, text: text, version: version}
	return nil
}

// IsOpen reports whether uri is tracked.
func (dm *DocumentManager) IsOpen(uri string) bool {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	_, ok := dm.docs[uri]
	return ok
}

// URIs returns the open documents in no particular order.
func (dm *DocumentManager) URIs() []string {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	return maps.Keys(dm.docs)
}

// Text returns the current document bytes for a URI.
func (dm *DocumentManager) Text(uri string) ([]byte, error) {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	doc, err := dm.get(uri)
	if err != nil {
		return nil, err
	}
	return doc.text, nil
}

// Version returns the editor version of the last applied change.
func (dm *DocumentManager) Version(uri string) (protocol.Integer, error) {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	doc, err := dm.get(uri)
	if err != nil {
		return 0, err
	}
	return doc.version, nil
}

// Apply applies the changes of one didChange notification in order.
// Ranged changes edit the tree, whole-document changes restart the parser.
func (dm *DocumentManager) Apply(uri string, version protocol.Integer, changes []any) error {
	for _, change := range changes {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEvent:
			if c.Range == nil {
				if err := dm.Replace(uri, []byte(c.Text)); err != nil {
					return err
				}
				continue
			}
			if err := dm.ApplyIncrementalEdit(uri, c); err != nil {
				return err
			}
		case protocol.TextDocumentContentChangeEventWhole:
			if err := dm.Replace(uri, []byte(c.Text)); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unsupported content change %T for %s", change, uri)
		}
	}

	dm.mu.Lock()
	defer dm.mu.Unlock()
	doc, err := dm.get(uri)
	if err != nil {
		return err
	}
	doc.version = version
	return nil
}

// Replace swaps the whole content of uri.
func (dm *DocumentManager) Replace(uri string, text []byte) error {
	p, err := parser.NewParser(text)
	if err != nil {
		return fmt.Errorf("failed to create parser for %s: %w", uri, err)
	}

	dm.mu.Lock()
	defer dm.mu.Unlock()
	doc, err := dm.get(uri)
	if err != nil {
		p.Close()
		return err
	}
	doc.parser.Close()
	doc.parser = p
	doc.text = text
	doc.edited = false
	return nil
}

// ApplyIncrementalEdit applies a Tree-sitter edit and updates stored bytes.
func (dm *DocumentManager) ApplyIncrementalEdit(
	uri string,
	change protocol.TextDocumentContentChangeEvent,
) error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	doc, err := dm.get(uri)
	if err != nil {
		return err
	}

	old := string(doc.text)
	err = doc.parser.Update(parser.Edit(sitteradapter.EditInput(change, old)))
	if err != nil && !errors.Is(err, parser.ErrNoTree) {
		return fmt.Errorf("failed to edit tree of %s: %w", uri, err)
	}
	doc.text = []byte(sitteradapter.ApplyTextEdit(change, old))
	doc.edited = true
	return nil
}

// Tree re-parses uri if it was edited and translates the result.
func (dm *DocumentManager) Tree(ctx context.Context, uri string) (*syntax.Tree, error) {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	doc, err := dm.get(uri)
	if err != nil {
		return nil, err
	}
	if _, _, err := doc.parser.Tree(); errors.Is(err, parser.ErrNoTree) {
		doc.edited = true
	}
	if doc.edited {
		if _, err := doc.parser.Parse(ctx, doc.text); err != nil {
			return nil, err
		}
		doc.edited = false
	}
	tree, source, err := doc.parser.Tree()
	if err != nil {
		return nil, err
	}
	return syntax.Translate(uri, tree.RootNode(), source), nil
}

// Release frees parser and document for a URI.
func (dm *DocumentManager) Release(uri string) error {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	doc, err := dm.get(uri)
	if err != nil {
		return err
	}
	delete(dm.docs, uri)
	return doc.parser.Close()
}

// CloseAll cleans up all parsers.
func (dm *DocumentManager) CloseAll() error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	for uri, doc := range dm.docs {
		if err := doc.parser.Close(); err != nil {
			return fmt.Errorf("error closing parser for %s: %w", uri, err)
		}
	}
	clear(dm.docs)
	return nil
}
