// Package resolver answers which declaration a name refers to from inside
// a given source file.
package resolver

import (
	"github.com/jfmengels/elm-language-server/internal/ast"
	"github.com/jfmengels/elm-language-server/internal/forest"
	"golang.org/x/exp/slices"
)

// Modules finds the file providing a module.
type Modules interface {
	Lookup(module string) (*forest.SourceFile, bool)
}

// Resolver resolves top-level and imported names. Locally bound names
// (let, lambda and case bindings) are the caller's business and must be
// looked up before asking the Resolver.
type Resolver struct {
	modules Modules
}

func New(modules Modules) *Resolver {
	return &Resolver{modules: modules}
}

type ValueKind int

const (
	KindValue ValueKind = iota
	KindPort
	KindConstructor
)

// Value is a resolved value reference.
type Value struct {
	File        *forest.SourceFile
	Kind        ValueKind
	Decl        *ast.ValueDecl
	Port        *ast.PortAnnotation
	Constructor forest.Constructor
}

// Type is a resolved type reference: either a union or an alias.
type Type struct {
	File  *forest.SourceFile
	Union *ast.TypeDecl
	Alias *ast.TypeAlias
}

// Name returns the declared name of the type.
func (t Type) Name() string {
	if t.Union != nil {
		return t.Union.Name
	}
	return t.Alias.Name
}

// Operator is a resolved infix operator.
type Operator struct {
	File  *forest.SourceFile
	Infix *ast.InfixDecl
}

func localValue(sf *forest.SourceFile, name string) (Value, bool) {
	s := sf.Symbols
	if d, ok := s.Values[name]; ok {
		return Value{File: sf, Kind: KindValue, Decl: d}, true
	}
	if p, ok := s.Ports[name]; ok {
		return Value{File: sf, Kind: KindPort, Port: p}, true
	}
	if c, ok := s.Constructors[name]; ok {
		return Value{File: sf, Kind: KindConstructor, Constructor: c}, true
	}
	return Value{}, false
}

// exportedValue looks name up in the module of sf, honouring its exposing
// list.
func exportedValue(sf *forest.SourceFile, name string) (Value, bool) {
	v, ok := localValue(sf, name)
	if !ok {
		return Value{}, false
	}
	if v.Kind == KindConstructor {
		return v, sf.Symbols.ExposesConstructor(name)
	}
	return v, sf.Symbols.ExposesValue(name)
}

// importExposesValue reports whether imp brings name into unqualified
// scope, given the module it refers to exposes it.
func importExposesValue(imp *ast.Import, target Value) bool {
	e := imp.Exposing
	if e == nil {
		return false
	}
	if e.All {
		return true
	}
	switch target.Kind {
	case KindConstructor:
		c := target.Constructor
		for _, t := range e.Types {
			if c.Alias != nil && t.Name == c.Alias.Name {
				return true
			}
			if c.Union != nil && t.Name == c.Union.Name && t.Open {
				return true
			}
		}
		return false
	case KindPort:
		return slices.Contains(e.Values, target.Port.Name)
	}
	return slices.Contains(e.Values, target.Decl.Name)
}

// matches reports whether imp answers to the qualifier prefix.
func matches(imp *ast.Import, prefix string) bool {
	return imp.ModuleName == prefix || (imp.Alias != "" && imp.Alias == prefix)
}

// Value resolves a value or constructor reference made from sf.
// Unqualified names are looked up in sf's own declarations first, then in
// the names its imports expose, first import first. Qualified names go to
// the first import matching the qualifier that exposes the name.
func (r *Resolver) Value(sf *forest.SourceFile, qualifier, name string) (Value, bool) {
	if qualifier == "" {
		if v, ok := localValue(sf, name); ok {
			return v, true
		}
	}
	for _, imp := range sf.Imports {
		if qualifier != "" && !matches(imp, qualifier) {
			continue
		}
		target, ok := r.modules.Lookup(imp.ModuleName)
		if !ok {
			continue
		}
		v, ok := exportedValue(target, name)
		if !ok {
			continue
		}
		if qualifier != "" || importExposesValue(imp, v) {
			return v, true
		}
	}
	return Value{}, false
}

func localType(sf *forest.SourceFile, name string) (Type, bool) {
	if u, ok := sf.Symbols.Types[name]; ok {
		return Type{File: sf, Union: u}, true
	}
	if a, ok := sf.Symbols.Aliases[name]; ok {
		return Type{File: sf, Alias: a}, true
	}
	return Type{}, false
}

func importExposesType(imp *ast.Import, name string) bool {
	if imp.Exposing == nil {
		return false
	}
	if imp.Exposing.All {
		return true
	}
	for _, t := range imp.Exposing.Types {
		if t.Name == name {
			return true
		}
	}
	return false
}

// Type resolves a type reference made from sf, with the same lookup order
// as Value.
func (r *Resolver) Type(sf *forest.SourceFile, qualifier, name string) (Type, bool) {
	if qualifier == "" {
		if t, ok := localType(sf, name); ok {
			return t, true
		}
	}
	for _, imp := range sf.Imports {
		if qualifier != "" && !matches(imp, qualifier) {
			continue
		}
		target, ok := r.modules.Lookup(imp.ModuleName)
		if !ok {
			continue
		}
		t, ok := localType(target, name)
		if !ok || !target.Symbols.ExposesType(name) {
			continue
		}
		if qualifier != "" || importExposesType(imp, name) {
			return t, true
		}
	}
	return Type{}, false
}

// Operator resolves an infix operator used in sf.
func (r *Resolver) Operator(sf *forest.SourceFile, symbol string) (Operator, bool) {
	if d, ok := sf.Symbols.Infixes[symbol]; ok {
		return Operator{File: sf, Infix: d}, true
	}
	for _, imp := range sf.Imports {
		if imp.Exposing == nil || !(imp.Exposing.All || slices.Contains(imp.Exposing.Operators, symbol)) {
			continue
		}
		target, ok := r.modules.Lookup(imp.ModuleName)
		if !ok {
			continue
		}
		if d, ok := target.Symbols.Infixes[symbol]; ok && target.Symbols.ExposesOperator(symbol) {
			return Operator{File: target, Infix: d}, true
		}
	}
	return Operator{}, false
}

// QualifierFor returns the import of sf that makes prefix.name resolve:
// the first import answering to prefix whose module exposes name.
func (r *Resolver) QualifierFor(sf *forest.SourceFile, prefix, name string) (*ast.Import, bool) {
	for _, imp := range sf.Imports {
		if !matches(imp, prefix) {
			continue
		}
		target, ok := r.modules.Lookup(imp.ModuleName)
		if !ok {
			continue
		}
		if _, ok := exportedValue(target, name); ok {
			return imp, true
		}
		if _, ok := localType(target, name); ok && target.Symbols.ExposesType(name) {
			return imp, true
		}
	}
	return nil, false
}

// ImportsFor returns the import clauses written in sf whose module name or
// alias equals prefix, in declaration order.
func ImportsFor(sf *forest.SourceFile, prefix string) []*ast.Import {
	var out []*ast.Import
	for _, imp := range sf.Tree.Imports {
		if matches(imp, prefix) {
			out = append(out, imp)
		}
	}
	return out
}

// TypeName returns how the type module.name is written inside sf: bare
// when it is in unqualified scope, otherwise through the first import of
// its module.
func (r *Resolver) TypeName(sf *forest.SourceFile, module, name string) string {
	if module == sf.ModuleName {
		return name
	}
	if t, ok := r.Type(sf, "", name); ok && t.File.ModuleName == module {
		return name
	}
	for _, imp := range sf.Imports {
		if imp.ModuleName != module {
			continue
		}
		if importExposesType(imp, name) {
			return name
		}
		if imp.Alias != "" {
			return imp.Alias + "." + name
		}
		return module + "." + name
	}
	return module + "." + name
}
