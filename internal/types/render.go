package types

import (
	"fmt"
	"strings"
)

// Qualifier returns how a union named module.name should be written.
type Qualifier func(module, name string) string

// ToString renders t in Elm annotation syntax with unqualified names.
func ToString(t Type) string {
	return Render(t, nil)
}

// Render renders t in Elm annotation syntax, writing union names through
// qualify when it is set.
func Render(t Type, qualify Qualifier) string {
	r := &renderer{names: assignNames(t), qualify: qualify}
	var b strings.Builder
	r.write(&b, t, ctxTop)
	return b.String()
}

type renderCtx int

const (
	ctxTop renderCtx = iota
	ctxParam
	ctxArg
)

type renderer struct {
	names   map[int]string
	qualify Qualifier
}

func (r *renderer) union(module, name string) string {
	if r.qualify == nil {
		return name
	}
	return r.qualify(module, name)
}

func (r *renderer) write(b *strings.Builder, t Type, ctx renderCtx) {
	switch t := t.(type) {
	case *Var:
		b.WriteString(r.names[t.ID])
	case *Unit:
		b.WriteString("()")
	case *Tuple:
		b.WriteString("( ")
		for i, item := range t.Items {
			if i > 0 {
				b.WriteString(", ")
			}
			r.write(b, item, ctxTop)
		}
		b.WriteString(" )")
	case *Record:
		if t.Alias != nil {
			r.applied(b, r.union(t.Alias.Module, t.Alias.Name), t.Alias.Args, ctx)
			return
		}
		fields := t.FieldNames()
		if len(fields) == 0 {
			if t.Row != nil {
				b.WriteString(r.names[t.Row.ID])
			} else {
				b.WriteString("{}")
			}
			return
		}
		b.WriteString("{ ")
		if t.Row != nil {
			b.WriteString(r.names[t.Row.ID])
			b.WriteString(" | ")
		}
		for i, name := range fields {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(name)
			b.WriteString(" : ")
			r.write(b, t.Fields[name], ctxTop)
		}
		b.WriteString(" }")
	case *Function:
		if ctx != ctxTop {
			b.WriteString("(")
		}
		for _, p := range t.Params {
			r.write(b, p, ctxParam)
			b.WriteString(" -> ")
		}
		r.write(b, t.Return, ctxTop)
		if ctx != ctxTop {
			b.WriteString(")")
		}
	case *Union:
		r.applied(b, r.union(t.Module, t.Name), t.Args, ctx)
	case *Unknown, *InProgressBinding, nil:
		b.WriteString("unknown")
	default:
		fmt.Fprintf(b, "%T", t)
	}
}

func (r *renderer) applied(b *strings.Builder, name string, args []Type, ctx renderCtx) {
	if len(args) == 0 {
		b.WriteString(name)
		return
	}
	if ctx == ctxArg {
		b.WriteString("(")
	}
	b.WriteString(name)
	for _, a := range args {
		b.WriteString(" ")
		r.write(b, a, ctxArg)
	}
	if ctx == ctxArg {
		b.WriteString(")")
	}
}

// assignNames gives every variable of t a display name. Named variables
// keep their name when it is free; the rest get a, b, c… or their class
// name.
func assignNames(t Type) map[int]string {
	vars := Vars(t)
	names := make(map[int]string, len(vars))
	taken := map[string]bool{}
	for _, v := range vars {
		if v.Name != "" && !taken[v.Name] && (v.Class == ClassNone || ClassOf(v.Name) == v.Class) {
			names[v.ID] = v.Name
			taken[v.Name] = true
		}
	}
	letter := 0
	counters := map[Class]int{}
	for _, v := range vars {
		if _, ok := names[v.ID]; ok {
			continue
		}
		var name string
		if v.Class != ClassNone {
			for {
				name = v.Class.String()
				if counters[v.Class] > 0 {
					name = fmt.Sprintf("%s%d", name, counters[v.Class])
				}
				counters[v.Class]++
				if !taken[name] {
					break
				}
			}
		} else {
			for {
				name = letterName(letter)
				letter++
				if !taken[name] && ClassOf(name) == ClassNone {
					break
				}
			}
		}
		names[v.ID] = name
		taken[name] = true
	}
	return names
}

// letterName maps 0..25 to a..z, then a1, b1…
func letterName(i int) string {
	name := string(rune('a' + i%26))
	if i >= 26 {
		name += fmt.Sprint(i / 26)
	}
	return name
}
