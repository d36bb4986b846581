// Package ast is the closed syntax model the type checker works on.
// Every tree-sitter node the checker cares about maps onto exactly one
// variant declared here.
package ast

import "fmt"

// Kind identifies a node variant.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindFile
	KindModule
	KindExposing
	KindImport
	KindValueDecl
	KindTypeAnnotation
	KindTypeDecl
	KindVariant
	KindTypeAlias
	KindInfixDecl
	KindPortAnnotation

	KindValueRef
	KindCall
	KindBinOp
	KindOperator
	KindOperatorRef
	KindNegate
	KindNumber
	KindString
	KindChar
	KindList
	KindTuple
	KindUnit
	KindParens
	KindLetIn
	KindCase
	KindCaseBranch
	KindIf
	KindLambda
	KindRecord
	KindRecordUpdate
	KindField
	KindFieldAccess
	KindFieldAccessor

	KindVarPattern
	KindAnythingPattern
	KindCtorPattern
	KindTuplePattern
	KindListPattern
	KindConsPattern
	KindRecordPattern
	KindLiteralPattern
	KindUnitPattern
	KindAliasPattern

	KindTypeRef
	KindTypeVar
	KindFunctionType
	KindRecordType
	KindFieldType
	KindTupleType
	KindUnitType

	kindCount
)

var kindNames = [...]string{
	KindInvalid:        "invalid",
	KindFile:           "file",
	KindModule:         "module",
	KindExposing:       "exposing",
	KindImport:         "import",
	KindValueDecl:      "value declaration",
	KindTypeAnnotation: "type annotation",
	KindTypeDecl:       "type declaration",
	KindVariant:        "union variant",
	KindTypeAlias:      "type alias",
	KindInfixDecl:      "infix declaration",
	KindPortAnnotation: "port annotation",

	KindValueRef:      "value reference",
	KindCall:          "call",
	KindBinOp:         "binary operation",
	KindOperator:      "operator",
	KindOperatorRef:   "operator reference",
	KindNegate:        "negation",
	KindNumber:        "number literal",
	KindString:        "string literal",
	KindChar:          "char literal",
	KindList:          "list",
	KindTuple:         "tuple",
	KindUnit:          "unit",
	KindParens:        "parenthesized expression",
	KindLetIn:         "let expression",
	KindCase:          "case expression",
	KindCaseBranch:    "case branch",
	KindIf:            "if expression",
	KindLambda:        "lambda",
	KindRecord:        "record",
	KindRecordUpdate:  "record update",
	KindField:         "record field",
	KindFieldAccess:   "field access",
	KindFieldAccessor: "field accessor",

	KindVarPattern:      "variable pattern",
	KindAnythingPattern: "wildcard pattern",
	KindCtorPattern:     "constructor pattern",
	KindTuplePattern:    "tuple pattern",
	KindListPattern:     "list pattern",
	KindConsPattern:     "cons pattern",
	KindRecordPattern:   "record pattern",
	KindLiteralPattern:  "literal pattern",
	KindUnitPattern:     "unit pattern",
	KindAliasPattern:    "alias pattern",

	KindTypeRef:      "type reference",
	KindTypeVar:      "type variable",
	KindFunctionType: "function type",
	KindRecordType:   "record type",
	KindFieldType:    "field type",
	KindTupleType:    "tuple type",
	KindUnitType:     "unit type",
}

// Fails to compile when a kind is added without a name.
var _ = [1]struct{}{}[len(kindNames)-int(kindCount)]

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Kinds returns every node kind.
func Kinds() []Kind {
	out := make([]Kind, 0, kindCount)
	for k := KindInvalid; k < kindCount; k++ {
		out = append(out, k)
	}
	return out
}

// Point is a zero-based row and byte column.
type Point struct {
	Row    uint32
	Column uint32
}

// Span locates a node in its source text.
type Span struct {
	StartByte uint32
	EndByte   uint32
	Start     Point
	End       Point
}

// Contains reports whether the byte offset lies inside the span.
func (s Span) Contains(offset uint32) bool {
	return s.StartByte <= offset && offset < s.EndByte
}

// Covers reports whether o lies entirely inside s.
func (s Span) Covers(o Span) bool {
	return s.StartByte <= o.StartByte && o.EndByte <= s.EndByte
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d:%d", s.Start.Row+1, s.Start.Column+1, s.End.Row+1, s.End.Column+1)
}

// Meta is embedded in every node.
type Meta struct {
	Range Span
	file  *File
}

// At returns node metadata for the given span.
func At(s Span) Meta { return Meta{Range: s} }

func (m *Meta) Span() Span  { return m.Range }
func (m *Meta) File() *File { return m.file }
func (m *Meta) meta() *Meta { return m }

// Node is implemented by every syntax variant.
type Node interface {
	Kind() Kind
	Span() Span
	File() *File
	meta() *Meta
}

// Expr is an expression node.
type Expr interface {
	Node
	expr()
}

// Pattern is a pattern node.
type Pattern interface {
	Node
	pattern()
}

// TypeExpr is a type expression node.
type TypeExpr interface {
	Node
	typeExpr()
}

// Decl is a top-level or let-bound declaration.
type Decl interface {
	Node
	decl()
}

// Invalid stands in for a malformed subtree. It is valid in any position.
type Invalid struct {
	Meta
	Text string
}

func (*Invalid) Kind() Kind { return KindInvalid }
func (*Invalid) expr()      {}
func (*Invalid) pattern()   {}
func (*Invalid) typeExpr()  {}
