package infer

import "github.com/jfmengels/elm-language-server/internal/types"

// substitution maps variable ids to types. Every binding is logged on a
// trail so a failed unification can be undone.
type substitution struct {
	bindings map[int]types.Type
	trail    []int
}

func newSubstitution() *substitution {
	return &substitution{bindings: map[int]types.Type{}}
}

func (s *substitution) bind(v *types.Var, t types.Type) {
	s.bindings[v.ID] = t
	s.trail = append(s.trail, v.ID)
}

func (s *substitution) mark() int { return len(s.trail) }

func (s *substitution) rollback(mark int) {
	for _, id := range s.trail[mark:] {
		delete(s.bindings, id)
	}
	s.trail = s.trail[:mark]
}

// prune follows variable bindings at the top of t and flattens curried
// function returns.
func (s *substitution) prune(t types.Type) types.Type {
	for {
		v, ok := t.(*types.Var)
		if !ok {
			break
		}
		bound, ok := s.bindings[v.ID]
		if !ok {
			return v
		}
		t = bound
	}
	switch t := t.(type) {
	case *types.Function:
		ret := s.prune(t.Return)
		if inner, ok := ret.(*types.Function); ok {
			params := append(append([]types.Type(nil), t.Params...), inner.Params...)
			return &types.Function{Params: params, Return: inner.Return}
		}
		if ret != t.Return {
			return &types.Function{Params: t.Params, Return: ret}
		}
	case *types.Record:
		return s.record(t)
	}
	return t
}

// record merges the fields bound to a record's row into one record.
func (s *substitution) record(r *types.Record) *types.Record {
	if r.Row == nil {
		return r
	}
	switch row := s.prune(r.Row).(type) {
	case *types.Var:
		if row == r.Row {
			return r
		}
		return &types.Record{Fields: r.Fields, Row: row, Alias: r.Alias}
	case *types.Record:
		fields := make(map[string]types.Type, len(r.Fields)+len(row.Fields))
		for name, f := range row.Fields {
			fields[name] = f
		}
		for name, f := range r.Fields {
			fields[name] = f
		}
		return &types.Record{Fields: fields, Row: row.Row}
	}
	// A row bound to anything else was reported when it was bound.
	return &types.Record{Fields: r.Fields, Alias: r.Alias}
}

// apply resolves every bound variable in t.
func (s *substitution) apply(t types.Type) types.Type {
	if t == nil {
		return &types.Unknown{}
	}
	return normalize(types.Map(t, func(v *types.Var) types.Type {
		if bound, ok := s.bindings[v.ID]; ok {
			return s.apply(bound)
		}
		return v
	}))
}

// normalize flattens every curried function return in t.
func normalize(t types.Type) types.Type {
	switch t := t.(type) {
	case *types.Function:
		params := make([]types.Type, 0, len(t.Params))
		for _, p := range t.Params {
			params = append(params, normalize(p))
		}
		ret := normalize(t.Return)
		if inner, ok := ret.(*types.Function); ok {
			params = append(params, inner.Params...)
			ret = inner.Return
		}
		return &types.Function{Params: params, Return: ret}
	case *types.Tuple:
		items := make([]types.Type, len(t.Items))
		for i, item := range t.Items {
			items[i] = normalize(item)
		}
		return &types.Tuple{Items: items}
	case *types.Union:
		if len(t.Args) == 0 {
			return t
		}
		args := make([]types.Type, len(t.Args))
		for i, a := range t.Args {
			args[i] = normalize(a)
		}
		return &types.Union{Module: t.Module, Name: t.Name, Args: args}
	case *types.Record:
		out := &types.Record{Fields: make(map[string]types.Type, len(t.Fields)), Row: t.Row, Alias: t.Alias}
		for name, f := range t.Fields {
			out.Fields[name] = normalize(f)
		}
		if out.Alias != nil && len(out.Alias.Args) > 0 {
			args := make([]types.Type, len(out.Alias.Args))
			for i, a := range out.Alias.Args {
				args[i] = normalize(a)
			}
			out.Alias = &types.AliasRef{Module: out.Alias.Module, Name: out.Alias.Name, Args: args}
		}
		return out
	}
	return t
}

// occurs reports whether the variable id appears in t.
func (s *substitution) occurs(id int, t types.Type) bool {
	found := false
	types.Map(t, func(v *types.Var) types.Type {
		if found {
			return v
		}
		if v.ID == id {
			found = true
		} else if bound, ok := s.bindings[v.ID]; ok && s.occurs(id, bound) {
			found = true
		}
		return v
	})
	return found
}
