package types

// Equivalent reports whether a and b are equal up to a consistent
// renaming of type variables. A class variable matches a class
// placeholder of the same class. Alias names are ignored.
func Equivalent(a, b Type) bool {
	e := &equiv{ab: map[int]int{}, ba: map[int]int{}, placeholders: map[int]string{}}
	return e.eq(a, b)
}

type equiv struct {
	ab, ba       map[int]int
	placeholders map[int]string
}

func (e *equiv) vars(x, y *Var) bool {
	if x.Class != y.Class {
		return false
	}
	if m, ok := e.ab[x.ID]; ok {
		return m == y.ID
	}
	if m, ok := e.ba[y.ID]; ok {
		return m == x.ID
	}
	e.ab[x.ID] = y.ID
	e.ba[y.ID] = x.ID
	return true
}

func (e *equiv) placeholder(v *Var, u *Union) bool {
	c := PlaceholderClass(u)
	if c == ClassNone || c != v.Class {
		return false
	}
	if name, ok := e.placeholders[v.ID]; ok {
		return name == u.Name
	}
	e.placeholders[v.ID] = u.Name
	return true
}

func (e *equiv) all(xs, ys []Type) bool {
	if len(xs) != len(ys) {
		return false
	}
	for i := range xs {
		if !e.eq(xs[i], ys[i]) {
			return false
		}
	}
	return true
}

func (e *equiv) eq(a, b Type) bool {
	switch a := a.(type) {
	case *Var:
		switch b := b.(type) {
		case *Var:
			return e.vars(a, b)
		case *Union:
			return e.placeholder(a, b)
		}
		return false
	case *Unit:
		_, ok := b.(*Unit)
		return ok
	case *Unknown, *InProgressBinding:
		return IsUnknown(b)
	case *Tuple:
		b, ok := b.(*Tuple)
		return ok && e.all(a.Items, b.Items)
	case *Function:
		b, ok := b.(*Function)
		if !ok {
			return false
		}
		fa, fb := flatten(a), flatten(b)
		return e.all(fa.Params, fb.Params) && e.eq(fa.Return, fb.Return)
	case *Union:
		if v, ok := b.(*Var); ok {
			return e.placeholder(v, a)
		}
		b, ok := b.(*Union)
		return ok && a.Module == b.Module && a.Name == b.Name && e.all(a.Args, b.Args)
	case *Record:
		b, ok := b.(*Record)
		if !ok || len(a.Fields) != len(b.Fields) {
			return false
		}
		for name, fa := range a.Fields {
			fb, ok := b.Fields[name]
			if !ok || !e.eq(fa, fb) {
				return false
			}
		}
		if a.Row == nil || b.Row == nil {
			return a.Row == nil && b.Row == nil
		}
		return e.vars(a.Row, b.Row)
	}
	return false
}

// flatten merges nested function returns into one parameter list.
func flatten(f *Function) *Function {
	out := &Function{Params: append([]Type(nil), f.Params...), Return: f.Return}
	for {
		inner, ok := out.Return.(*Function)
		if !ok {
			return out
		}
		out.Params = append(out.Params, inner.Params...)
		out.Return = inner.Return
	}
}
