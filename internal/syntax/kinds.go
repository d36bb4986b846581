package syntax

import "github.com/jfmengels/elm-language-server/internal/ast"

// Grammar node kinds, grouped by the position they may appear in. A node
// kind missing from the table of its position translates to ast.Invalid.
var (
	declKinds = map[string]ast.Kind{
		"module_declaration":     ast.KindModule,
		"import_clause":          ast.KindImport,
		"value_declaration":      ast.KindValueDecl,
		"type_annotation":        ast.KindTypeAnnotation,
		"type_declaration":       ast.KindTypeDecl,
		"type_alias_declaration": ast.KindTypeAlias,
		"infix_declaration":      ast.KindInfixDecl,
		"port_annotation":        ast.KindPortAnnotation,
	}

	exprKinds = map[string]ast.Kind{
		"value_expr":                   ast.KindValueRef,
		"function_call_expr":           ast.KindCall,
		"bin_op_expr":                  ast.KindBinOp,
		"operator_as_function_expr":    ast.KindOperatorRef,
		"negate_expr":                  ast.KindNegate,
		"number_constant_expr":         ast.KindNumber,
		"string_constant_expr":         ast.KindString,
		"char_constant_expr":           ast.KindChar,
		"list_expr":                    ast.KindList,
		"tuple_expr":                   ast.KindTuple,
		"unit_expr":                    ast.KindUnit,
		"parenthesized_expr":           ast.KindParens,
		"let_in_expr":                  ast.KindLetIn,
		"case_of_expr":                 ast.KindCase,
		"if_else_expr":                 ast.KindIf,
		"anonymous_function_expr":      ast.KindLambda,
		"record_expr":                  ast.KindRecord,
		"field_access_expr":            ast.KindFieldAccess,
		"field_accessor_function_expr": ast.KindFieldAccessor,
		"glsl_code_expr":               ast.KindInvalid,
	}

	// Nodes that only occur inside a specific parent.
	partKinds = map[string]ast.Kind{
		"exposing_list":  ast.KindExposing,
		"union_variant":  ast.KindVariant,
		"operator":       ast.KindOperator,
		"case_of_branch": ast.KindCaseBranch,
		"field":          ast.KindField,
		"field_type":     ast.KindFieldType,
	}

	patternKinds = map[string]ast.Kind{
		"pattern":              ast.KindAliasPattern,
		"lower_pattern":        ast.KindVarPattern,
		"anything_pattern":     ast.KindAnythingPattern,
		"union_pattern":        ast.KindCtorPattern,
		"upper_case_qid":       ast.KindCtorPattern,
		"tuple_pattern":        ast.KindTuplePattern,
		"list_pattern":         ast.KindListPattern,
		"cons_pattern":         ast.KindConsPattern,
		"record_pattern":       ast.KindRecordPattern,
		"number_constant_expr": ast.KindLiteralPattern,
		"string_constant_expr": ast.KindLiteralPattern,
		"char_constant_expr":   ast.KindLiteralPattern,
		"unit_expr":            ast.KindUnitPattern,
	}

	typeKinds = map[string]ast.Kind{
		"type_expression": ast.KindFunctionType,
		"type_ref":        ast.KindTypeRef,
		"type_variable":   ast.KindTypeVar,
		"record_type":     ast.KindRecordType,
		"tuple_type":      ast.KindTupleType,
		"unit_expr":       ast.KindUnitType,
	}
)

// skipped nodes never carry semantics.
var skipped = map[string]bool{
	"line_comment":  true,
	"block_comment": true,
}

// Kinds reports, for every ast.Kind, which grammar node kinds translate to
// it. Kinds produced only by rewriting (for example a record expression
// with a base becoming a record update) map to no grammar kind.
func Kinds() map[ast.Kind][]string {
	out := make(map[ast.Kind][]string)
	for _, table := range []map[string]ast.Kind{declKinds, exprKinds, partKinds, patternKinds, typeKinds} {
		for name, k := range table {
			out[k] = append(out[k], name)
		}
	}
	return out
}
