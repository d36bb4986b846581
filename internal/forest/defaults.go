package forest

import "github.com/jfmengels/elm-language-server/internal/ast"

func exposing(all bool, values []string, types []ast.ExposedType, operators []string) *ast.Exposing {
	return &ast.Exposing{All: all, Values: values, Types: types, Operators: operators}
}

// implicitImports is what every Elm module imports without asking.
var implicitImports = []*ast.Import{
	{ModuleName: "Basics", Exposing: exposing(true, nil, nil, nil), Implicit: true},
	{ModuleName: "List", Exposing: exposing(false, nil, []ast.ExposedType{{Name: "List"}}, []string{"::"}), Implicit: true},
	{ModuleName: "Maybe", Exposing: exposing(false, nil, []ast.ExposedType{{Name: "Maybe", Open: true}}, nil), Implicit: true},
	{ModuleName: "Result", Exposing: exposing(false, nil, []ast.ExposedType{{Name: "Result", Open: true}}, nil), Implicit: true},
	{ModuleName: "String", Exposing: exposing(false, nil, []ast.ExposedType{{Name: "String"}}, nil), Implicit: true},
	{ModuleName: "Char", Exposing: exposing(false, nil, []ast.ExposedType{{Name: "Char"}}, nil), Implicit: true},
	{ModuleName: "Tuple", Implicit: true},
	{ModuleName: "Debug", Implicit: true},
	{ModuleName: "Platform", Exposing: exposing(false, nil, []ast.ExposedType{{Name: "Program"}}, nil), Implicit: true},
	{ModuleName: "Platform.Cmd", Alias: "Cmd", Exposing: exposing(false, nil, []ast.ExposedType{{Name: "Cmd"}}, nil), Implicit: true},
	{ModuleName: "Platform.Sub", Alias: "Sub", Exposing: exposing(false, nil, []ast.ExposedType{{Name: "Sub"}}, nil), Implicit: true},
}

func defaultImports(module string) []*ast.Import {
	out := make([]*ast.Import, 0, len(implicitImports))
	for _, imp := range implicitImports {
		if imp.ModuleName != module {
			out = append(out, imp)
		}
	}
	return out
}
