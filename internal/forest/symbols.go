package forest

import (
	"github.com/jfmengels/elm-language-server/internal/ast"
	"golang.org/x/exp/slices"
)

// Constructor is a value that builds a type: a union variant or the
// record constructor of a type alias.
type Constructor struct {
	Union   *ast.TypeDecl
	Variant *ast.Variant
	Alias   *ast.TypeAlias
}

// Symbols is the top-level symbol table of a file.
type Symbols struct {
	Values       map[string]*ast.ValueDecl
	Ports        map[string]*ast.PortAnnotation
	Types        map[string]*ast.TypeDecl
	Aliases      map[string]*ast.TypeAlias
	Constructors map[string]Constructor
	Infixes      map[string]*ast.InfixDecl

	exposing *ast.Exposing
}

func collectSymbols(f *ast.File) *Symbols {
	s := &Symbols{
		Values:       map[string]*ast.ValueDecl{},
		Ports:        map[string]*ast.PortAnnotation{},
		Types:        map[string]*ast.TypeDecl{},
		Aliases:      map[string]*ast.TypeAlias{},
		Constructors: map[string]Constructor{},
		Infixes:      map[string]*ast.InfixDecl{},
	}
	if f.Module != nil {
		s.exposing = f.Module.Exposing
	}
	// First declaration wins on duplicates.
	for _, d := range f.Decls {
		switch d := d.(type) {
		case *ast.ValueDecl:
			if _, ok := s.Values[d.Name]; d.Name != "" && !ok {
				s.Values[d.Name] = d
			}
		case *ast.PortAnnotation:
			if _, ok := s.Ports[d.Name]; !ok {
				s.Ports[d.Name] = d
			}
		case *ast.TypeDecl:
			if _, ok := s.Types[d.Name]; ok {
				continue
			}
			s.Types[d.Name] = d
			for _, v := range d.Variants {
				if _, ok := s.Constructors[v.Name]; !ok {
					s.Constructors[v.Name] = Constructor{Union: d, Variant: v}
				}
			}
		case *ast.TypeAlias:
			if _, ok := s.Aliases[d.Name]; ok {
				continue
			}
			s.Aliases[d.Name] = d
			if _, isRecord := d.Type.(*ast.RecordType); isRecord {
				if _, ok := s.Constructors[d.Name]; !ok {
					s.Constructors[d.Name] = Constructor{Alias: d}
				}
			}
		case *ast.InfixDecl:
			if _, ok := s.Infixes[d.Symbol]; !ok {
				s.Infixes[d.Symbol] = d
			}
		}
	}
	return s
}

// A file without a module header exposes everything.
func (s *Symbols) all() bool {
	return s.exposing == nil || s.exposing.All
}

// ExposesValue reports whether the module exposes the value name.
func (s *Symbols) ExposesValue(name string) bool {
	return s.all() || slices.Contains(s.exposing.Values, name)
}

// ExposesType reports whether the module exposes the type name.
func (s *Symbols) ExposesType(name string) bool {
	if s.all() {
		return true
	}
	for _, t := range s.exposing.Types {
		if t.Name == name {
			return true
		}
	}
	return false
}

// ExposesConstructor reports whether the constructor is visible outside
// the module.
func (s *Symbols) ExposesConstructor(name string) bool {
	c, ok := s.Constructors[name]
	if !ok {
		return false
	}
	if s.all() {
		return true
	}
	if c.Alias != nil {
		return s.ExposesType(c.Alias.Name)
	}
	for _, t := range s.exposing.Types {
		if t.Name == c.Union.Name {
			return t.Open
		}
	}
	return false
}

// ExposesOperator reports whether the module exposes the operator.
func (s *Symbols) ExposesOperator(symbol string) bool {
	return s.all() || slices.Contains(s.exposing.Operators, symbol)
}
