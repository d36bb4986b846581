package ast

type VarPattern struct {
	Meta
	Name string
}

func (*VarPattern) Kind() Kind { return KindVarPattern }
func (*VarPattern) pattern()   {}

type AnythingPattern struct {
	Meta
}

func (*AnythingPattern) Kind() Kind { return KindAnythingPattern }
func (*AnythingPattern) pattern()   {}

type CtorPattern struct {
	Meta
	Qualifier string
	Name      string
	Args      []Pattern
}

func (*CtorPattern) Kind() Kind { return KindCtorPattern }
func (*CtorPattern) pattern()   {}

type TuplePattern struct {
	Meta
	Items []Pattern
}

func (*TuplePattern) Kind() Kind { return KindTuplePattern }
func (*TuplePattern) pattern()   {}

type ListPattern struct {
	Meta
	Items []Pattern
}

func (*ListPattern) Kind() Kind { return KindListPattern }
func (*ListPattern) pattern()   {}

type ConsPattern struct {
	Meta
	Head Pattern
	Tail Pattern
}

func (*ConsPattern) Kind() Kind { return KindConsPattern }
func (*ConsPattern) pattern()   {}

type RecordPattern struct {
	Meta
	Fields []*VarPattern
}

func (*RecordPattern) Kind() Kind { return KindRecordPattern }
func (*RecordPattern) pattern()   {}

// LiteralPattern matches a number, string or char literal.
type LiteralPattern struct {
	Meta
	Literal Expr
}

func (*LiteralPattern) Kind() Kind { return KindLiteralPattern }
func (*LiteralPattern) pattern()   {}

type UnitPattern struct {
	Meta
}

func (*UnitPattern) Kind() Kind { return KindUnitPattern }
func (*UnitPattern) pattern()   {}

// AliasPattern is `pattern as name`.
type AliasPattern struct {
	Meta
	Inner Pattern
	Alias *VarPattern
}

func (*AliasPattern) Kind() Kind { return KindAliasPattern }
func (*AliasPattern) pattern()   {}
