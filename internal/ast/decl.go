package ast

// File is the root of a translated source file.
type File struct {
	Meta
	URI     string
	Module  *ModuleDecl
	Imports []*Import
	Decls   []Decl
}

func (*File) Kind() Kind { return KindFile }

// ModuleName returns the declared module name, or Main when the header
// is missing.
func (f *File) ModuleName() string {
	if f.Module == nil || f.Module.Name == "" {
		return "Main"
	}
	return f.Module.Name
}

// Values returns the named top-level value declarations.
func (f *File) Values() []*ValueDecl {
	var out []*ValueDecl
	for _, d := range f.Decls {
		if v, ok := d.(*ValueDecl); ok {
			out = append(out, v)
		}
	}
	return out
}

// Attach records f as the owner of every node below it and links value
// declarations to their annotations.
func (f *File) Attach() {
	f.file = f
	Walk(f, func(n Node) bool {
		n.meta().file = f
		return true
	})
	linkAnnotations(f.Decls)
	Walk(f, func(n Node) bool {
		if let, ok := n.(*LetIn); ok {
			linkAnnotations(let.Decls)
		}
		return true
	})
}

func linkAnnotations(decls []Decl) {
	var pending *TypeAnnotation
	for _, d := range decls {
		switch d := d.(type) {
		case *TypeAnnotation:
			pending = d
			continue
		case *ValueDecl:
			if pending != nil && pending.Name == d.Name {
				d.Annotation = pending
			}
		}
		pending = nil
	}
}

// ModuleDecl is the `module X exposing (..)` header.
type ModuleDecl struct {
	Meta
	Name     string
	Exposing *Exposing
}

func (*ModuleDecl) Kind() Kind { return KindModule }

// ExposedType is one type entry of an exposing list.
type ExposedType struct {
	Name string
	// Open is set for `Type(..)`.
	Open bool
}

// Exposing is an exposing list on a module header or an import.
type Exposing struct {
	Meta
	All       bool
	Values    []string
	Types     []ExposedType
	Operators []string
}

func (*Exposing) Kind() Kind { return KindExposing }

// Import is an import clause.
type Import struct {
	Meta
	ModuleName string
	Alias      string
	Exposing   *Exposing
	// Implicit marks the default imports every module receives.
	Implicit bool
}

func (*Import) Kind() Kind { return KindImport }

// ValueDecl is `name params = body`, or `pattern = body` inside a let.
type ValueDecl struct {
	Meta
	Name       string
	Params     []Pattern
	Pattern    Pattern
	Body       Expr
	Annotation *TypeAnnotation
}

func (*ValueDecl) Kind() Kind { return KindValueDecl }
func (*ValueDecl) decl()      {}

// TypeAnnotation is `name : type`.
type TypeAnnotation struct {
	Meta
	Name string
	Type TypeExpr
}

func (*TypeAnnotation) Kind() Kind { return KindTypeAnnotation }
func (*TypeAnnotation) decl()      {}

// TypeDecl is a union type declaration.
type TypeDecl struct {
	Meta
	Name     string
	Params   []string
	Variants []*Variant
}

func (*TypeDecl) Kind() Kind { return KindTypeDecl }
func (*TypeDecl) decl()      {}

// Variant is one constructor of a union type.
type Variant struct {
	Meta
	Name string
	Args []TypeExpr
}

func (*Variant) Kind() Kind { return KindVariant }

// TypeAlias is `type alias Name params = type`.
type TypeAlias struct {
	Meta
	Name   string
	Params []string
	Type   TypeExpr
}

func (*TypeAlias) Kind() Kind { return KindTypeAlias }
func (*TypeAlias) decl()      {}

// Assoc is operator associativity.
type Assoc int

const (
	AssocNone Assoc = iota
	AssocLeft
	AssocRight
)

// InfixDecl is `infix left 6 (+) = add`.
type InfixDecl struct {
	Meta
	Symbol     string
	Assoc      Assoc
	Precedence int
	Function   string
}

func (*InfixDecl) Kind() Kind { return KindInfixDecl }
func (*InfixDecl) decl()      {}

// PortAnnotation is `port name : type`.
type PortAnnotation struct {
	Meta
	Name string
	Type TypeExpr
}

func (*PortAnnotation) Kind() Kind { return KindPortAnnotation }
func (*PortAnnotation) decl()      {}
