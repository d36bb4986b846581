package ast

type TypeRef struct {
	Meta
	Qualifier string
	Name      string
	Args      []TypeExpr
}

func (*TypeRef) Kind() Kind { return KindTypeRef }
func (*TypeRef) typeExpr()  {}

type TypeVar struct {
	Meta
	Name string
}

func (*TypeVar) Kind() Kind { return KindTypeVar }
func (*TypeVar) typeExpr()  {}

// FunctionType is `a -> b -> c` flattened to Params [a b] and Return c.
type FunctionType struct {
	Meta
	Params []TypeExpr
	Return TypeExpr
}

func (*FunctionType) Kind() Kind { return KindFunctionType }
func (*FunctionType) typeExpr()  {}

// RecordType is `{ base | f : T }`; Base is empty for closed records.
type RecordType struct {
	Meta
	Base   string
	Fields []*FieldType
}

func (*RecordType) Kind() Kind { return KindRecordType }
func (*RecordType) typeExpr()  {}

type FieldType struct {
	Meta
	Name string
	Type TypeExpr
}

func (*FieldType) Kind() Kind { return KindFieldType }

type TupleType struct {
	Meta
	Items []TypeExpr
}

func (*TupleType) Kind() Kind { return KindTupleType }
func (*TupleType) typeExpr()  {}

type UnitType struct {
	Meta
}

func (*UnitType) Kind() Kind { return KindUnitType }
func (*UnitType) typeExpr()  {}
