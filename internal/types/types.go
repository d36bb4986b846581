// Package types is the semantic type model produced by inference.
package types

import (
	"strings"
	"sync/atomic"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Type is one of Var, Unit, Tuple, Record, Function, Union, Unknown or
// InProgressBinding.
type Type interface {
	isType()
}

// Class constrains what a type variable may stand for.
type Class int

const (
	ClassNone Class = iota
	ClassNumber
	ClassComparable
	ClassAppendable
	ClassCompAppend
)

var classNames = map[Class]string{
	ClassNumber:     "number",
	ClassComparable: "comparable",
	ClassAppendable: "appendable",
	ClassCompAppend: "compappend",
}

func (c Class) String() string {
	if name, ok := classNames[c]; ok {
		return name
	}
	return ""
}

// ClassOf returns the class an annotation variable name denotes: names
// starting with number, comparable, appendable or compappend.
func ClassOf(name string) Class {
	for c, prefix := range classNames {
		if strings.HasPrefix(name, prefix) {
			return c
		}
	}
	return ClassNone
}

// Var is a type variable. Rigid variables come from annotations and only
// unify with themselves or flexible variables. Literal marks a number
// variable introduced by an integer literal.
type Var struct {
	ID      int
	Name    string
	Class   Class
	Rigid   bool
	Literal bool
}

type Unit struct{}

type Tuple struct {
	Items []Type
}

// AliasRef names the type alias a record came from, for display only.
type AliasRef struct {
	Module string
	Name   string
	Args   []Type
}

// Record is a record type. Row is nil for a closed record; otherwise it
// stands for the fields not listed.
type Record struct {
	Fields map[string]Type
	Row    *Var
	Alias  *AliasRef
}

// FieldNames returns the field names in sorted order.
func (r *Record) FieldNames() []string {
	names := maps.Keys(r.Fields)
	slices.Sort(names)
	return names
}

// Function is a curried function with all its parameters flattened.
type Function struct {
	Params []Type
	Return Type
}

// Union is a named type applied to arguments.
type Union struct {
	Module string
	Name   string
	Args   []Type
}

// Unknown stands for a type that could not be determined.
type Unknown struct{}

// InProgressBinding is the placeholder for a declaration whose inference
// has started but not finished.
type InProgressBinding struct{}

func (*Var) isType()               {}
func (*Unit) isType()              {}
func (*Tuple) isType()             {}
func (*Record) isType()            {}
func (*Function) isType()          {}
func (*Union) isType()             {}
func (*Unknown) isType()           {}
func (*InProgressBinding) isType() {}

// Scheme is a type with universally quantified variables.
type Scheme struct {
	Vars []int
	Type Type
}

// Mono wraps t in a scheme without quantified variables.
func Mono(t Type) *Scheme { return &Scheme{Type: t} }

// Supply hands out unique variable ids.
type Supply struct {
	next atomic.Int64
}

// Fresh returns a new flexible variable.
func (s *Supply) Fresh() *Var {
	return &Var{ID: int(s.next.Add(1))}
}

// FreshClass returns a new flexible variable constrained to c.
func (s *Supply) FreshClass(c Class) *Var {
	v := s.Fresh()
	v.Class = c
	return v
}

// Constructors for the built-in types.

const (
	ModuleBasics = "Basics"
	ModuleString = "String"
	ModuleChar   = "Char"
	ModuleList   = "List"
)

func Int() *Union    { return &Union{Module: ModuleBasics, Name: "Int"} }
func Float() *Union  { return &Union{Module: ModuleBasics, Name: "Float"} }
func Bool() *Union   { return &Union{Module: ModuleBasics, Name: "Bool"} }
func String() *Union { return &Union{Module: ModuleString, Name: "String"} }
func Char() *Union   { return &Union{Module: ModuleChar, Name: "Char"} }

func List(elem Type) *Union {
	return &Union{Module: ModuleList, Name: "List", Args: []Type{elem}}
}

// ClassPlaceholder is how a constraint class written in an annotation is
// represented: a union named after the class in Basics.
func ClassPlaceholder(name string) *Union {
	return &Union{Module: ModuleBasics, Name: name}
}

// PlaceholderClass reports the class of a class placeholder union.
func PlaceholderClass(u *Union) Class {
	if u.Module != ModuleBasics || len(u.Args) > 0 {
		return ClassNone
	}
	return ClassOf(u.Name)
}

// IsUnknown reports whether t is Unknown or an unfinished binding.
func IsUnknown(t Type) bool {
	switch t.(type) {
	case *Unknown, *InProgressBinding, nil:
		return true
	}
	return false
}

// Map rebuilds t bottom-up, replacing each variable with fn's result.
func Map(t Type, fn func(*Var) Type) Type {
	switch t := t.(type) {
	case *Var:
		return fn(t)
	case *Tuple:
		return &Tuple{Items: mapAll(t.Items, fn)}
	case *Function:
		return &Function{Params: mapAll(t.Params, fn), Return: Map(t.Return, fn)}
	case *Union:
		if len(t.Args) == 0 {
			return t
		}
		return &Union{Module: t.Module, Name: t.Name, Args: mapAll(t.Args, fn)}
	case *Record:
		// Variables are visited in display order: alias arguments, the
		// row, then fields by name.
		out := &Record{Fields: make(map[string]Type, len(t.Fields)), Alias: t.Alias}
		if t.Alias != nil && len(t.Alias.Args) > 0 {
			out.Alias = &AliasRef{Module: t.Alias.Module, Name: t.Alias.Name, Args: mapAll(t.Alias.Args, fn)}
		}
		var row Type
		if t.Row != nil {
			row = fn(t.Row)
		}
		for _, name := range t.FieldNames() {
			out.Fields[name] = Map(t.Fields[name], fn)
		}
		switch row := row.(type) {
		case *Var:
			out.Row = row
		case *Record:
			for name, f := range row.Fields {
				if _, ok := out.Fields[name]; !ok {
					out.Fields[name] = f
				}
			}
			out.Row = row.Row
			out.Alias = nil
		}
		return out
	}
	return t
}

func mapAll(ts []Type, fn func(*Var) Type) []Type {
	out := make([]Type, len(ts))
	for i, t := range ts {
		out[i] = Map(t, fn)
	}
	return out
}

// Vars returns the distinct variables of t in order of first appearance.
func Vars(t Type) []*Var {
	var out []*Var
	seen := map[int]bool{}
	Map(t, func(v *Var) Type {
		if !seen[v.ID] {
			seen[v.ID] = true
			out = append(out, v)
		}
		return v
	})
	return out
}

// Instantiate replaces the quantified variables of s, and every class
// placeholder, with fresh flexible variables.
func (s *Scheme) Instantiate(supply *Supply) Type {
	if s == nil {
		return &Unknown{}
	}
	quantified := make(map[int]bool, len(s.Vars))
	for _, id := range s.Vars {
		quantified[id] = true
	}
	fresh := map[int]*Var{}
	placeholders := map[string]*Var{}
	var inst func(Type) Type
	inst = func(t Type) Type {
		if u, ok := t.(*Union); ok {
			if c := PlaceholderClass(u); c != ClassNone {
				v, ok := placeholders[u.Name]
				if !ok {
					v = supply.FreshClass(c)
					placeholders[u.Name] = v
				}
				return v
			}
			if len(u.Args) > 0 {
				args := make([]Type, len(u.Args))
				for i, a := range u.Args {
					args[i] = inst(a)
				}
				return &Union{Module: u.Module, Name: u.Name, Args: args}
			}
			return u
		}
		switch t := t.(type) {
		case *Tuple:
			items := make([]Type, len(t.Items))
			for i, a := range t.Items {
				items[i] = inst(a)
			}
			return &Tuple{Items: items}
		case *Function:
			params := make([]Type, len(t.Params))
			for i, a := range t.Params {
				params[i] = inst(a)
			}
			return &Function{Params: params, Return: inst(t.Return)}
		case *Record:
			out := &Record{Fields: make(map[string]Type, len(t.Fields)), Alias: t.Alias}
			for name, f := range t.Fields {
				out.Fields[name] = inst(f)
			}
			if t.Alias != nil && len(t.Alias.Args) > 0 {
				args := make([]Type, len(t.Alias.Args))
				for i, a := range t.Alias.Args {
					args[i] = inst(a)
				}
				out.Alias = &AliasRef{Module: t.Alias.Module, Name: t.Alias.Name, Args: args}
			}
			if t.Row != nil {
				out.Row = inst(t.Row).(*Var)
			}
			return out
		case *Var:
			if !quantified[t.ID] {
				return t
			}
			v, ok := fresh[t.ID]
			if !ok {
				v = supply.FreshClass(t.Class)
				v.Name = t.Name
				v.Literal = t.Literal
				fresh[t.ID] = v
			}
			return v
		}
		return t
	}
	return inst(s.Type)
}

// Generalize quantifies every variable of t that is not listed in fixed.
func Generalize(t Type, fixed map[int]bool) *Scheme {
	s := &Scheme{Type: t}
	for _, v := range Vars(t) {
		if !fixed[v.ID] {
			s.Vars = append(s.Vars, v.ID)
		}
	}
	return s
}
