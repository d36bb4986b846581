// Package checker answers type queries over a forest, inferring whole
// declarations on demand and caching the results per file.
package checker

import (
	"fmt"

	"github.com/jfmengels/elm-language-server/internal/ast"
	"github.com/jfmengels/elm-language-server/internal/forest"
	"github.com/jfmengels/elm-language-server/internal/infer"
	"github.com/jfmengels/elm-language-server/internal/resolver"
	"github.com/jfmengels/elm-language-server/internal/types"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("elmls.checker")

// Stats counts the work a TypeChecker has done.
type Stats struct {
	Inferences int
	Failures   int
}

// TypeChecker is bound to one forest. Its caches follow the forest's
// stamps, so edits never need to notify it. It is not safe for concurrent
// use; callers serialize access through the Program's scheduler.
type TypeChecker struct {
	forest   *forest.Forest
	resolver *resolver.Resolver
	supply   types.Supply
	files    map[forest.FileID]*fileState
	stats    Stats
}

func New(f *forest.Forest) *TypeChecker {
	return &TypeChecker{
		forest:   f,
		resolver: resolver.New(f),
		files:    map[forest.FileID]*fileState{},
	}
}

// Resolver returns the name resolver the checker uses.
func (c *TypeChecker) Resolver() *resolver.Resolver {
	return c.resolver
}

func (c *TypeChecker) state(sf *forest.SourceFile) *fileState {
	stamp := c.forest.Stamp(sf.ID)
	if st, ok := c.files[sf.ID]; ok && st.stamp == stamp && st.file == sf {
		return st
	}
	st := newFileState(sf, stamp)
	c.files[sf.ID] = st
	return st
}

// FindType returns the type of n, inferring its enclosing declaration if
// needed. Nodes that are not part of a current tree, or that have no
// type, are Unknown.
func (c *TypeChecker) FindType(n ast.Node) types.Type {
	sf, ok := c.forest.FileOf(n)
	if !ok {
		return &types.Unknown{}
	}
	st := c.state(sf)
	if t, ok := st.nodes[n]; ok {
		return t
	}
	switch d := sf.Tree.Enclosing(n).(type) {
	case *ast.ValueDecl:
		ds := c.declaration(sf, d)
		if t, ok := st.nodes[n]; ok {
			return t
		}
		if ast.Node(d) == n {
			return ds.result.Type
		}
	case *ast.TypeAnnotation:
		if ast.Node(d) == n {
			return c.annotationScheme(sf, d.Type).Type
		}
	case *ast.PortAnnotation:
		if ast.Node(d) == n {
			return c.annotationScheme(sf, d.Type).Type
		}
	case *ast.TypeDecl:
		for _, v := range d.Variants {
			if ast.Node(v) == n {
				return c.variantScheme(sf, d, v).Type
			}
		}
	case *ast.TypeAlias:
		if ast.Node(d) == n {
			if def := c.typeDef(sf, d); def != nil && def.Alias != nil {
				return def.Alias
			}
		}
	}
	return &types.Unknown{}
}

// DeclarationType returns the type of a top-level value declaration of
// sf: its annotation when it has one, its inferred type otherwise.
func (c *TypeChecker) DeclarationType(sf *forest.SourceFile, decl *ast.ValueDecl) types.Type {
	return c.declaration(sf, decl).result.Type
}

// DeclarationStatus reports where inference of decl stands.
func (c *TypeChecker) DeclarationStatus(sf *forest.SourceFile, decl *ast.ValueDecl) Status {
	if ds, ok := c.state(sf).decls[decl]; ok {
		return ds.status
	}
	return StatusNotStarted
}

// CheckFile infers every top-level declaration of sf and returns all of
// its diagnostics.
func (c *TypeChecker) CheckFile(sf *forest.SourceFile) []ast.Diagnostic {
	for _, d := range sf.Tree.Values() {
		c.declaration(sf, d)
	}
	return sf.Diagnostics()
}

// TypeToString renders t as it would be written in an annotation.
func (c *TypeChecker) TypeToString(t types.Type) string {
	return types.ToString(t)
}

// TypeToStringIn renders t as it would be written in an annotation inside
// sf, qualifying types that are not in its unqualified scope.
func (c *TypeChecker) TypeToStringIn(t types.Type, sf *forest.SourceFile) string {
	return types.Render(t, func(module, name string) string {
		return c.resolver.TypeName(sf, module, name)
	})
}

// GetQualifierForName returns the import that provides name under prefix
// in sf.
func (c *TypeChecker) GetQualifierForName(sf *forest.SourceFile, prefix, name string) (*ast.Import, bool) {
	return c.resolver.QualifierFor(sf, prefix, name)
}

// FindImportModuleNameNodes returns the imports of sf named or aliased
// prefix, in declaration order.
func (c *TypeChecker) FindImportModuleNameNodes(prefix string, sf *forest.SourceFile) []*ast.Import {
	return resolver.ImportsFor(sf, prefix)
}

func (c *TypeChecker) Stats() Stats {
	return c.stats
}

// declaration runs inference for decl unless a result is cached or the
// run is already under way further up the stack.
func (c *TypeChecker) declaration(sf *forest.SourceFile, decl *ast.ValueDecl) *declState {
	st := c.state(sf)
	ds, ok := st.decls[decl]
	if !ok {
		ds = &declState{}
		st.decls[decl] = ds
	}
	if ds.status != StatusNotStarted {
		return ds
	}
	ds.status = StatusInProgress
	ds.result = &infer.Result{Type: &types.InProgressBinding{}, Scheme: types.Mono(&types.InProgressBinding{})}
	c.stats.Inferences++

	res, err := c.run(sf, decl)
	if err != nil {
		log.Errorf("%s: %s", sf.URI, err)
		c.stats.Failures++
		ds.status = StatusFailed
		ds.result = &infer.Result{
			Type:      &types.Unknown{},
			Scheme:    types.Mono(&types.Unknown{}),
			ExprTypes: map[ast.Node]types.Type{decl: &types.Unknown{}},
			Diagnostics: []ast.Diagnostic{{
				Span:     decl.Span(),
				Severity: ast.SeverityError,
				Message:  fmt.Sprintf("Could not infer the type of `%s`", decl.Name),
				Source:   infer.DiagnosticSource,
			}},
		}
	} else {
		ds.status = StatusDone
		ds.result = res
	}
	for n, t := range ds.result.ExprTypes {
		st.nodes[n] = t
	}
	sf.SetTypeDiagnostics(decl, ds.result.Diagnostics)
	log.Debugf("%s: inferred %s (%s)", sf.URI, decl.Name, ds.status)
	return ds
}

func (c *TypeChecker) run(sf *forest.SourceFile, decl *ast.ValueDecl) (res *infer.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("inference of %s panicked: %v", decl.Name, r)
		}
	}()
	return infer.Declaration(&fileContext{checker: c, file: sf}, decl), nil
}
