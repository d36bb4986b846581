package ast

import "unicode"

// ValueRef is a possibly qualified reference to a value or constructor.
type ValueRef struct {
	Meta
	Qualifier string
	Name      string
}

func (*ValueRef) Kind() Kind { return KindValueRef }
func (*ValueRef) expr()      {}

// IsConstructor reports whether the reference names a constructor.
func (r *ValueRef) IsConstructor() bool {
	for _, c := range r.Name {
		return unicode.IsUpper(c)
	}
	return false
}

// FullName returns the name with its qualifier.
func (r *ValueRef) FullName() string {
	if r.Qualifier == "" {
		return r.Name
	}
	return r.Qualifier + "." + r.Name
}

type Call struct {
	Meta
	Target Expr
	Args   []Expr
}

func (*Call) Kind() Kind { return KindCall }
func (*Call) expr()      {}

// BinOp is a flat operator chain; precedence is applied during inference
// once the operators are resolved.
type BinOp struct {
	Meta
	Operands  []Expr
	Operators []*Operator
}

func (*BinOp) Kind() Kind { return KindBinOp }
func (*BinOp) expr()      {}

// Operator is an infix operator occurrence inside a BinOp.
type Operator struct {
	Meta
	Symbol string
}

func (*Operator) Kind() Kind { return KindOperator }

// OperatorRef is an operator used as a function, `(+)`.
type OperatorRef struct {
	Meta
	Symbol string
}

func (*OperatorRef) Kind() Kind { return KindOperatorRef }
func (*OperatorRef) expr()      {}

type Negate struct {
	Meta
	Operand Expr
}

func (*Negate) Kind() Kind { return KindNegate }
func (*Negate) expr()      {}

type NumberLit struct {
	Meta
	Text  string
	Float bool
}

func (*NumberLit) Kind() Kind { return KindNumber }
func (*NumberLit) expr()      {}

type StringLit struct {
	Meta
	Text string
}

func (*StringLit) Kind() Kind { return KindString }
func (*StringLit) expr()      {}

type CharLit struct {
	Meta
	Text string
}

func (*CharLit) Kind() Kind { return KindChar }
func (*CharLit) expr()      {}

type List struct {
	Meta
	Items []Expr
}

func (*List) Kind() Kind { return KindList }
func (*List) expr()      {}

type Tuple struct {
	Meta
	Items []Expr
}

func (*Tuple) Kind() Kind { return KindTuple }
func (*Tuple) expr()      {}

type Unit struct {
	Meta
}

func (*Unit) Kind() Kind { return KindUnit }
func (*Unit) expr()      {}

type Parens struct {
	Meta
	Inner Expr
}

func (*Parens) Kind() Kind { return KindParens }
func (*Parens) expr()      {}

// LetIn holds its declarations in source order, annotations included.
type LetIn struct {
	Meta
	Decls []Decl
	Body  Expr
}

func (*LetIn) Kind() Kind { return KindLetIn }
func (*LetIn) expr()      {}

// Values returns the value declarations of the let block.
func (l *LetIn) Values() []*ValueDecl {
	var out []*ValueDecl
	for _, d := range l.Decls {
		if v, ok := d.(*ValueDecl); ok {
			out = append(out, v)
		}
	}
	return out
}

type Case struct {
	Meta
	Subject  Expr
	Branches []*CaseBranch
}

func (*Case) Kind() Kind { return KindCase }
func (*Case) expr()      {}

type CaseBranch struct {
	Meta
	Pattern Pattern
	Body    Expr
}

func (*CaseBranch) Kind() Kind { return KindCaseBranch }

// If holds `if c1 then t1 else if c2 then t2 else e` with Conditions and
// Thens of equal length.
type If struct {
	Meta
	Conditions []Expr
	Thens      []Expr
	Else       Expr
}

func (*If) Kind() Kind { return KindIf }
func (*If) expr()      {}

type Lambda struct {
	Meta
	Params []Pattern
	Body   Expr
}

func (*Lambda) Kind() Kind { return KindLambda }
func (*Lambda) expr()      {}

type Record struct {
	Meta
	Fields []*Field
}

func (*Record) Kind() Kind { return KindRecord }
func (*Record) expr()      {}

// RecordUpdate is `{ base | field = value }`.
type RecordUpdate struct {
	Meta
	Base   *ValueRef
	Fields []*Field
}

func (*RecordUpdate) Kind() Kind { return KindRecordUpdate }
func (*RecordUpdate) expr()      {}

type Field struct {
	Meta
	Name  string
	Value Expr
}

func (*Field) Kind() Kind { return KindField }

type FieldAccess struct {
	Meta
	Target Expr
	Field  string
}

func (*FieldAccess) Kind() Kind { return KindFieldAccess }
func (*FieldAccess) expr()      {}

// FieldAccessor is `.field` used as a function.
type FieldAccessor struct {
	Meta
	Field string
}

func (*FieldAccessor) Kind() Kind { return KindFieldAccessor }
func (*FieldAccessor) expr()      {}
