// Package parser wraps the tree-sitter Elm grammar.
package parser

import (
	"context"
	"errors"
	"fmt"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/elm"
)

var lang = elm.GetLanguage()

// ErrNoTree is returned when an operation needs a parsed tree.
var ErrNoTree = errors.New("parser: no parsed tree available")

// Language returns the Elm grammar.
func Language() *sitter.Language { return lang }

// Edit represents an edit change for incremental parsing.
type Edit sitter.EditInput

// Parser wraps a tree-sitter parser instance along with the syntax tree of
// the last document it parsed. It supports incremental re-parsing.
type Parser struct {
	parser *sitter.Parser
	tree   *sitter.Tree
	source []byte
	mu     sync.Mutex
}

// NewParser creates a new Parser and parses initialText if it is non-empty.
func NewParser(initialText []byte) (*Parser, error) {
	p := sitter.NewParser()
	p.SetLanguage(lang)
	parser := &Parser{
		parser: p,
		source: initialText,
	}
	if len(initialText) > 0 {
		tree, err := p.ParseCtx(context.Background(), nil, initialText)
		if err != nil {
			return nil, fmt.Errorf("failed to parse initial text: %w", err)
		}
		parser.tree = tree
	}
	return parser, nil
}

// Parse replaces the document and parses it. When a tree exists and has
// received edits, the old tree is reused.
func (p *Parser) Parse(ctx context.Context, source []byte) (*sitter.Tree, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	tree, err := p.parser.ParseCtx(ctx, p.tree, source)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if p.tree != nil {
		p.tree.Close()
	}
	p.tree = tree
	p.source = source
	return tree, nil
}

// Update applies a set of edits to the current tree. A following Parse
// re-parses incrementally.
func (p *Parser) Update(changes ...Edit) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.tree == nil {
		return ErrNoTree
	}
	for _, change := range changes {
		p.tree.Edit(sitter.EditInput(change))
	}
	return nil
}

// Tree returns the current tree and its source.
func (p *Parser) Tree() (*sitter.Tree, []byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.tree == nil {
		return nil, nil, ErrNoTree
	}
	return p.tree, p.source, nil
}

// Close frees any resources held by the Parser.
func (p *Parser) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.tree != nil {
		p.tree.Close()
		p.tree = nil
	}
	if p.parser != nil {
		p.parser.Close()
		p.parser = nil
	}
	return nil
}

// Pool maintains a fixed set of parsers for one-shot parses.
type Pool struct {
	pool chan *sitter.Parser
}

// NewPool creates a Pool with n parsers.
func NewPool(n int) *Pool {
	if n < 1 {
		n = 1
	}
	pp := &Pool{pool: make(chan *sitter.Parser, n)}
	for i := 0; i < n; i++ {
		p := sitter.NewParser()
		p.SetLanguage(lang)
		pp.pool <- p
	}
	return pp
}

// Parse performs a one-time parse of document. The caller owns the
// returned tree and must close it.
func (pp *Pool) Parse(ctx context.Context, document []byte) (*sitter.Tree, error) {
	var p *sitter.Parser
	select {
	case p = <-pp.pool:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { pp.pool <- p }()

	tree, err := p.ParseCtx(ctx, nil, document)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return tree, nil
}

// Close releases all parsers in the pool.
func (pp *Pool) Close() error {
	close(pp.pool)
	for p := range pp.pool {
		p.Close()
	}
	return nil
}
