package forest

import (
	"sort"
	"strings"
	"sync"

	"github.com/jfmengels/elm-language-server/internal/ast"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// FileID identifies a file for the lifetime of a Forest. It survives
// content replacement and removal of the same URI.
type FileID uint32

// SourceFile is one parsed file. Everything except the type diagnostics
// is immutable once installed; a content change installs a new value.
type SourceFile struct {
	ID           FileID
	URI          string
	Source       []byte
	Tree         *ast.File
	ModuleName   string
	Imports      []*ast.Import
	IsTestFile   bool
	IsDependency bool
	Version      int
	Symbols      *Symbols

	parseDiagnostics []ast.Diagnostic

	mu              sync.Mutex
	typeDiagnostics map[ast.Decl][]ast.Diagnostic
}

func newSourceFile(id FileID, uri string, tree *ast.File, source []byte, diags []ast.Diagnostic) *SourceFile {
	sf := &SourceFile{
		ID:               id,
		URI:              uri,
		Source:           source,
		Tree:             tree,
		ModuleName:       tree.ModuleName(),
		Symbols:          collectSymbols(tree),
		parseDiagnostics: diags,
		typeDiagnostics:  make(map[ast.Decl][]ast.Diagnostic),
	}
	sf.Imports = append(sf.Imports, tree.Imports...)
	sf.Imports = append(sf.Imports, defaultImports(sf.ModuleName)...)
	return sf
}

// ImportedModules returns the distinct module names sf imports.
func (sf *SourceFile) ImportedModules() []string {
	seen := map[string]bool{}
	var out []string
	for _, imp := range sf.Imports {
		if imp.ModuleName == "" || imp.ModuleName == sf.ModuleName || seen[imp.ModuleName] {
			continue
		}
		seen[imp.ModuleName] = true
		out = append(out, imp.ModuleName)
	}
	return out
}

// ExposedNames lists what the module exposes: values, types and
// operators, sorted.
func (sf *SourceFile) ExposedNames() []string {
	s := sf.Symbols
	set := map[string]bool{}
	for name := range s.Values {
		if s.ExposesValue(name) {
			set[name] = true
		}
	}
	for name := range s.Ports {
		if s.ExposesValue(name) {
			set[name] = true
		}
	}
	for name := range s.Types {
		if s.ExposesType(name) {
			set[name] = true
		}
	}
	for name := range s.Aliases {
		if s.ExposesType(name) {
			set[name] = true
		}
	}
	for name := range s.Constructors {
		if s.ExposesConstructor(name) {
			set[name] = true
		}
	}
	for sym := range s.Infixes {
		if s.ExposesOperator(sym) {
			set["("+sym+")"] = true
		}
	}
	out := maps.Keys(set)
	slices.Sort(out)
	return out
}

// SetTypeDiagnostics records the inference diagnostics of one declaration.
func (sf *SourceFile) SetTypeDiagnostics(owner ast.Decl, diags []ast.Diagnostic) {
	sf.mu.Lock()
	defer sf.mu.Unlock()
	if len(diags) == 0 {
		delete(sf.typeDiagnostics, owner)
		return
	}
	sf.typeDiagnostics[owner] = diags
}

func (sf *SourceFile) clearTypeDiagnostics() {
	sf.mu.Lock()
	defer sf.mu.Unlock()
	clear(sf.typeDiagnostics)
}

// Diagnostics returns syntax and type diagnostics ordered by position.
func (sf *SourceFile) Diagnostics() []ast.Diagnostic {
	sf.mu.Lock()
	out := append([]ast.Diagnostic(nil), sf.parseDiagnostics...)
	for _, ds := range sf.typeDiagnostics {
		out = append(out, ds...)
	}
	sf.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Span.StartByte < out[j].Span.StartByte
	})
	return out
}

func isTestFile(root, uri string) bool {
	return root != "" && strings.HasPrefix(uri, root+"/tests")
}
