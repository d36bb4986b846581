package infer

import (
	"github.com/jfmengels/elm-language-server/internal/ast"
	"github.com/jfmengels/elm-language-server/internal/types"
	"golang.org/x/exp/slices"
)

// binding is one value declaration of a let block.
type binding struct {
	decl  *ast.ValueDecl
	names []string
	deps  []int
}

// letDecls infers the declarations of a let block in dependency order,
// generalizing each mutually recursive group before its users see it.
func (e *Engine) letDecls(decls []ast.Decl) {
	var bindings []*binding
	owner := map[string]int{}
	for _, d := range decls {
		v, ok := d.(*ast.ValueDecl)
		if !ok {
			continue
		}
		b := &binding{decl: v}
		if v.Name != "" {
			b.names = []string{v.Name}
		} else {
			b.names = patternNames(v.Pattern)
		}
		for _, name := range b.names {
			if _, taken := owner[name]; !taken {
				owner[name] = len(bindings)
			}
		}
		bindings = append(bindings, b)
	}
	for i, b := range bindings {
		seen := map[int]bool{}
		ast.Walk(b.decl.Body, func(n ast.Node) bool {
			if ref, ok := n.(*ast.ValueRef); ok && ref.Qualifier == "" {
				if j, ok := owner[ref.Name]; ok && !seen[j] {
					seen[j] = true
					bindings[i].deps = append(bindings[i].deps, j)
				}
			}
			return true
		})
	}
	for _, group := range components(bindings) {
		e.inferGroup(bindings, group)
	}
}

func (e *Engine) inferGroup(bindings []*binding, group []int) {
	slots := make(map[int]types.Type, len(group))
	var scoped []string
	for _, i := range group {
		d := bindings[i].decl
		if d.Name == "" {
			continue
		}
		if d.Annotation != nil && d.Annotation.Type != nil {
			before := make(map[string]bool, len(e.rigid))
			for name := range e.rigid {
				before[name] = true
			}
			declared := e.convertRigid(d.Annotation.Type)
			var own []string
			for name := range e.rigid {
				if !before[name] {
					own = append(own, name)
				}
			}
			fixed := e.fixed()
			for _, name := range own {
				delete(fixed, e.rigid[name].ID)
			}
			scoped = append(scoped, own...)
			e.define(d.Name, types.Generalize(declared, fixed))
			slots[i] = declared
			continue
		}
		v := e.supply.Fresh()
		e.define(d.Name, types.Mono(v))
		slots[i] = v
	}

	for _, i := range group {
		d := bindings[i].decl
		if d.Name == "" {
			body := e.expr(d.Body)
			if d.Pattern == nil {
				continue
			}
			e.unifyAt(d.Pattern, e.pattern(d.Pattern), body)
			e.record(d, body)
			continue
		}
		e.unifyAt(d.Body, slots[i], e.function(d))
	}
	for _, name := range scoped {
		delete(e.rigid, name)
	}

	var open []int
	for _, i := range group {
		d := bindings[i].decl
		if d.Name == "" {
			continue
		}
		if d.Annotation != nil && d.Annotation.Type != nil {
			e.record(d, slots[i])
			continue
		}
		delete(e.scope.names, d.Name)
		open = append(open, i)
	}
	fixed := e.fixed()
	for _, i := range open {
		d := bindings[i].decl
		t := e.sub.apply(slots[i])
		e.define(d.Name, types.Generalize(t, fixed))
		e.record(d, t)
	}
}

func patternNames(p ast.Pattern) []string {
	var out []string
	if p == nil {
		return nil
	}
	ast.Walk(p, func(n ast.Node) bool {
		if v, ok := n.(*ast.VarPattern); ok {
			out = append(out, v.Name)
		}
		return true
	})
	return out
}

// components returns the strongly connected components of the binding
// dependency graph, dependencies first.
func components(bindings []*binding) [][]int {
	index := make([]int, len(bindings))
	low := make([]int, len(bindings))
	onStack := make([]bool, len(bindings))
	for i := range index {
		index[i] = -1
	}
	var (
		stack []int
		out   [][]int
		next  int
	)
	var visit func(v int)
	visit = func(v int) {
		index[v], low[v] = next, next
		next++
		stack = append(stack, v)
		onStack[v] = true
		for _, w := range bindings[v].deps {
			if index[w] < 0 {
				visit(w)
				low[v] = min(low[v], low[w])
			} else if onStack[w] {
				low[v] = min(low[v], index[w])
			}
		}
		if low[v] != index[v] {
			return
		}
		var group []int
		for {
			w := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[w] = false
			group = append(group, w)
			if w == v {
				break
			}
		}
		slices.Sort(group)
		out = append(out, group)
	}
	for v := range bindings {
		if index[v] < 0 {
			visit(v)
		}
	}
	return out
}
