// Package infer runs Hindley-Milner inference over one top-level value
// declaration at a time.
package infer

import (
	"fmt"

	"github.com/jfmengels/elm-language-server/internal/ast"
	"github.com/jfmengels/elm-language-server/internal/types"
)

// DiagnosticSource tags diagnostics produced by inference.
const DiagnosticSource = "elm-types"

// Operator is a resolved infix operator.
type Operator struct {
	Scheme     *types.Scheme
	Precedence int
	Assoc      ast.Assoc
}

// TypeDef describes a named type. Alias is nil for union types; for
// aliases it is the aliased type written over Params.
type TypeDef struct {
	Module string
	Name   string
	Params []*types.Var
	Alias  types.Type
}

// Context answers the questions inference has about names outside the
// declaration being inferred. A value whose own inference is still
// running reports a scheme of type InProgressBinding.
type Context interface {
	Supply() *types.Supply
	LookupValue(qualifier, name string) (*types.Scheme, bool)
	LookupOperator(symbol string) (Operator, bool)
	LookupType(qualifier, name string) (*TypeDef, bool)
}

// Result is the outcome of inferring one declaration.
type Result struct {
	// Type is the declaration's type: its annotation when it has one.
	Type   types.Type
	Scheme *types.Scheme
	// ExprTypes holds the final type of every expression, pattern and
	// declaration node inside the declaration.
	ExprTypes   map[ast.Node]types.Type
	Diagnostics []ast.Diagnostic
}

// Engine holds the state of one inference run.
type Engine struct {
	ctx    Context
	supply *types.Supply
	sub    *substitution
	scope  *scope
	// annotation variables visible to let annotations, by name
	rigid map[string]*types.Var
	nodes map[ast.Node]types.Type
	diags []ast.Diagnostic
}

func newEngine(ctx Context) *Engine {
	return &Engine{
		ctx:    ctx,
		supply: ctx.Supply(),
		sub:    newSubstitution(),
		rigid:  map[string]*types.Var{},
		nodes:  map[ast.Node]types.Type{},
	}
}

type scope struct {
	parent *scope
	names  map[string]*types.Scheme
}

func (e *Engine) push() {
	e.scope = &scope{parent: e.scope, names: map[string]*types.Scheme{}}
}

func (e *Engine) pop() {
	e.scope = e.scope.parent
}

func (e *Engine) define(name string, s *types.Scheme) {
	e.scope.names[name] = s
}

func (e *Engine) local(name string) (*types.Scheme, bool) {
	for s := e.scope; s != nil; s = s.parent {
		if t, ok := s.names[name]; ok {
			return t, true
		}
	}
	return nil, false
}

// fixed returns the variables free in the environment, which must not be
// generalized.
func (e *Engine) fixed() map[int]bool {
	out := map[int]bool{}
	for s := e.scope; s != nil; s = s.parent {
		for _, sc := range s.names {
			quantified := map[int]bool{}
			for _, id := range sc.Vars {
				quantified[id] = true
			}
			for _, v := range types.Vars(e.sub.apply(sc.Type)) {
				if !quantified[v.ID] {
					out[v.ID] = true
				}
			}
		}
	}
	for _, v := range e.rigid {
		out[v.ID] = true
	}
	return out
}

func (e *Engine) record(n ast.Node, t types.Type) types.Type {
	e.nodes[n] = t
	return t
}

func (e *Engine) errorAt(n ast.Node, msg string) {
	e.diags = append(e.diags, ast.Diagnostic{
		Span:     n.Span(),
		Severity: ast.SeverityError,
		Message:  msg,
		Source:   DiagnosticSource,
	})
}

// unifyAt unifies a and b, reporting a failure at n. A failed unification
// leaves the substitution as it was.
func (e *Engine) unifyAt(n ast.Node, a, b types.Type) bool {
	mark := e.sub.mark()
	if err := e.unify(a, b); err != nil {
		e.sub.rollback(mark)
		e.errorAt(n, err.Error())
		return false
	}
	return true
}

// instantiate turns a scheme from the context into a type at a use site.
func (e *Engine) instantiate(s *types.Scheme) types.Type {
	if s == nil {
		return &types.Unknown{}
	}
	if _, ok := s.Type.(*types.InProgressBinding); ok {
		return e.supply.Fresh()
	}
	return s.Instantiate(e.supply)
}

// Declaration infers the type of a top-level value declaration. It never
// fails: problems become diagnostics and Unknown types.
func Declaration(ctx Context, decl *ast.ValueDecl) *Result {
	e := newEngine(ctx)
	e.push()

	var declared types.Type
	self := types.Type(e.supply.Fresh())
	if decl.Annotation != nil && decl.Annotation.Type != nil {
		declared = e.convertRigid(decl.Annotation.Type)
		self = declared
	}
	if decl.Name != "" {
		e.define(decl.Name, types.Mono(self))
	}

	t := e.function(decl)
	e.unifyAt(decl.Body, self, t)

	res := &Result{ExprTypes: make(map[ast.Node]types.Type, len(e.nodes))}
	for n, nt := range e.nodes {
		res.ExprTypes[n] = e.finalize(nt)
	}
	if decl.Annotation != nil && decl.Annotation.Type != nil {
		res.Scheme, _ = AnnotationScheme(ctx, decl.Annotation.Type)
		res.Type = res.Scheme.Type
	} else {
		// Callers instantiate the scheme before literals settle on Int, so
		// `inc x = x + 1` still applies to a Float elsewhere.
		res.Type = e.finalize(t)
		res.Scheme = types.Generalize(normalize(e.sub.apply(t)), nil)
	}
	res.ExprTypes[decl] = res.Type
	res.Diagnostics = e.diags
	return res
}

// function infers `name params = body` as a function of its parameters.
func (e *Engine) function(decl *ast.ValueDecl) types.Type {
	e.push()
	defer e.pop()
	params := make([]types.Type, len(decl.Params))
	for i, p := range decl.Params {
		params[i] = e.pattern(p)
	}
	body := e.expr(decl.Body)
	if len(params) == 0 {
		return body
	}
	return &types.Function{Params: params, Return: body}
}

// finalize applies the substitution and settles number variables that
// come from integer literals on Int.
func (e *Engine) finalize(t types.Type) types.Type {
	t = e.sub.apply(t)
	return normalize(types.Map(t, func(v *types.Var) types.Type {
		if v.Literal && v.Class == types.ClassNumber && !v.Rigid {
			return types.Int()
		}
		return v
	}))
}

func arityMessage(name string, want, got int) string {
	plural := "s"
	if want == 1 {
		plural = ""
	}
	return fmt.Sprintf("The `%s` constructor expects %d argument%s, but it got %d", name, want, plural, got)
}
