package infer

import (
	"fmt"

	"github.com/jfmengels/elm-language-server/internal/types"
	"golang.org/x/exp/slices"
)

// mismatchError is a failed unification. The substitution has been left
// partially updated; callers roll back to their mark.
type mismatchError struct {
	message string
}

func (e *mismatchError) Error() string { return e.message }

func (e *Engine) mismatch(a, b types.Type) error {
	return &mismatchError{message: fmt.Sprintf("Type mismatch: expected `%s`, found `%s`",
		types.ToString(e.sub.apply(a)), types.ToString(e.sub.apply(b)))}
}

func (e *Engine) unify(a, b types.Type) error {
	a, b = e.sub.prune(a), e.sub.prune(b)
	if types.IsUnknown(a) || types.IsUnknown(b) {
		return nil
	}
	if va, ok := a.(*types.Var); ok {
		if vb, ok := b.(*types.Var); ok {
			return e.unifyVars(va, vb)
		}
		return e.bindVar(va, b, false)
	}
	if vb, ok := b.(*types.Var); ok {
		return e.bindVar(vb, a, true)
	}
	switch a := a.(type) {
	case *types.Unit:
		if _, ok := b.(*types.Unit); ok {
			return nil
		}
	case *types.Tuple:
		if b, ok := b.(*types.Tuple); ok && len(a.Items) == len(b.Items) {
			return e.unifyAll(a.Items, b.Items)
		}
	case *types.Union:
		if b, ok := b.(*types.Union); ok && a.Module == b.Module && a.Name == b.Name && len(a.Args) == len(b.Args) {
			return e.unifyAll(a.Args, b.Args)
		}
	case *types.Function:
		if b, ok := b.(*types.Function); ok {
			return e.unifyFunctions(a, b)
		}
	case *types.Record:
		if b, ok := b.(*types.Record); ok {
			return e.unifyRecords(a, b)
		}
	}
	return e.mismatch(a, b)
}

func (e *Engine) unifyAll(as, bs []types.Type) error {
	for i := range as {
		if err := e.unify(as[i], bs[i]); err != nil {
			return err
		}
	}
	return nil
}

// unifyFunctions matches parameter lists of different lengths by currying
// the longer one.
func (e *Engine) unifyFunctions(a, b *types.Function) error {
	n := min(len(a.Params), len(b.Params))
	if err := e.unifyAll(a.Params[:n], b.Params[:n]); err != nil {
		return err
	}
	ra, rb := a.Return, b.Return
	if len(a.Params) > n {
		ra = &types.Function{Params: a.Params[n:], Return: a.Return}
	}
	if len(b.Params) > n {
		rb = &types.Function{Params: b.Params[n:], Return: b.Return}
	}
	return e.unify(ra, rb)
}

func (e *Engine) unifyRecords(a, b *types.Record) error {
	for name, fa := range a.Fields {
		if fb, ok := b.Fields[name]; ok {
			if err := e.unify(fa, fb); err != nil {
				return err
			}
		}
	}
	onlyA := missing(a, b)
	onlyB := missing(b, a)
	switch {
	case a.Row == nil && b.Row == nil:
		if len(onlyA) > 0 || len(onlyB) > 0 {
			return e.fieldsError(a, b, onlyA, onlyB)
		}
		return nil
	case a.Row == nil:
		if len(onlyB) > 0 {
			return e.fieldsError(a, b, onlyA, onlyB)
		}
		return e.bindVar(b.Row, subset(a, onlyA, nil), true)
	case b.Row == nil:
		if len(onlyA) > 0 {
			return e.fieldsError(a, b, onlyA, onlyB)
		}
		return e.bindVar(a.Row, subset(b, onlyB, nil), false)
	case a.Row.ID == b.Row.ID:
		if len(onlyA) > 0 || len(onlyB) > 0 {
			return e.fieldsError(a, b, onlyA, onlyB)
		}
		return nil
	case len(onlyA) == 0 && len(onlyB) == 0:
		return e.unifyVars(a.Row, b.Row)
	case len(onlyA) == 0:
		return e.bindVar(a.Row, subset(b, onlyB, b.Row), false)
	case len(onlyB) == 0:
		return e.bindVar(b.Row, subset(a, onlyA, a.Row), true)
	}
	row := e.supply.Fresh()
	if err := e.bindVar(a.Row, subset(b, onlyB, row), false); err != nil {
		return err
	}
	return e.bindVar(b.Row, subset(a, onlyA, row), true)
}

// missing returns the fields of a that b does not list, sorted.
func missing(a, b *types.Record) []string {
	var out []string
	for name := range a.Fields {
		if _, ok := b.Fields[name]; !ok {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out
}

func subset(r *types.Record, names []string, row *types.Var) *types.Record {
	out := &types.Record{Fields: make(map[string]types.Type, len(names)), Row: row}
	for _, name := range names {
		out.Fields[name] = r.Fields[name]
	}
	return out
}

func (e *Engine) fieldsError(a, b *types.Record, onlyA, onlyB []string) error {
	switch {
	case len(onlyA) > 0 && b.Row == nil:
		return &mismatchError{message: fmt.Sprintf("Missing record field `%s`", onlyA[0])}
	case len(onlyB) > 0 && a.Row == nil:
		return &mismatchError{message: fmt.Sprintf("Unexpected record field `%s`", onlyB[0])}
	}
	return e.mismatch(a, b)
}

func (e *Engine) unifyVars(a, b *types.Var) error {
	if a.ID == b.ID {
		return nil
	}
	switch {
	case a.Rigid && b.Rigid:
		return e.mismatch(a, b)
	case a.Rigid:
		return e.bindVar(b, a, true)
	case b.Rigid:
		return e.bindVar(a, b, false)
	}
	class, ok := mergeClasses(a.Class, b.Class)
	if !ok {
		return e.mismatch(a, b)
	}
	if class == a.Class && (a.Literal || !b.Literal) {
		e.sub.bind(b, a)
		return nil
	}
	if class == b.Class && (b.Literal || !a.Literal) {
		e.sub.bind(a, b)
		return nil
	}
	merged := e.supply.FreshClass(class)
	merged.Literal = a.Literal || b.Literal
	e.sub.bind(a, merged)
	e.sub.bind(b, merged)
	return nil
}

// bindVar binds v to t. flipped only controls the order types appear in
// the error message.
func (e *Engine) bindVar(v *types.Var, t types.Type, flipped bool) error {
	fail := func() error {
		if flipped {
			return e.mismatch(t, v)
		}
		return e.mismatch(v, t)
	}
	if w, ok := e.sub.prune(t).(*types.Var); ok {
		switch {
		case w.ID == v.ID:
			return nil
		case !v.Rigid && !w.Rigid:
			return e.unifyVars(v, w)
		case v.Rigid && w.Rigid:
			return fail()
		case v.Rigid:
			v, w = w, v
		}
		if !satisfies(w.Class, v.Class) {
			return fail()
		}
		e.sub.bind(v, w)
		return nil
	}
	if v.Rigid {
		return fail()
	}
	if e.sub.occurs(v.ID, t) {
		return &mismatchError{message: fmt.Sprintf("Infinite type: `%s` occurs in `%s`",
			types.ToString(v), types.ToString(e.sub.apply(t)))}
	}
	if v.Class != types.ClassNone && !e.constrain(t, v.Class) {
		return fail()
	}
	e.sub.bind(v, t)
	return nil
}

// constrain checks that t can belong to class c, narrowing variables
// inside t where needed.
func (e *Engine) constrain(t types.Type, c types.Class) bool {
	switch t := e.sub.prune(t).(type) {
	case *types.Var:
		if t.Rigid {
			return satisfies(t.Class, c)
		}
		class, ok := mergeClasses(t.Class, c)
		if !ok {
			return false
		}
		if class != t.Class {
			v := e.supply.FreshClass(class)
			v.Literal = t.Literal
			e.sub.bind(t, v)
		}
		return true
	case *types.Unknown, *types.InProgressBinding:
		return true
	case *types.Union:
		switch {
		case t.Module == types.ModuleBasics && (t.Name == "Int" || t.Name == "Float"):
			return c == types.ClassNumber || c == types.ClassComparable
		case t.Module == types.ModuleChar && t.Name == "Char":
			return c == types.ClassComparable
		case t.Module == types.ModuleString && t.Name == "String":
			return c != types.ClassNumber
		case t.Module == types.ModuleList && t.Name == "List" && len(t.Args) == 1:
			switch c {
			case types.ClassAppendable:
				return true
			case types.ClassComparable, types.ClassCompAppend:
				return e.constrain(t.Args[0], types.ClassComparable)
			}
		}
	case *types.Tuple:
		if c != types.ClassComparable {
			return false
		}
		for _, item := range t.Items {
			if !e.constrain(item, c) {
				return false
			}
		}
		return true
	}
	return false
}

// mergeClasses returns the class satisfying both a and b.
func mergeClasses(a, b types.Class) (types.Class, bool) {
	switch {
	case a == b:
		return a, true
	case a == types.ClassNone:
		return b, true
	case b == types.ClassNone:
		return a, true
	}
	pair := map[types.Class]bool{a: true, b: true}
	switch {
	case pair[types.ClassNumber] && pair[types.ClassComparable]:
		return types.ClassNumber, true
	case pair[types.ClassComparable] && pair[types.ClassAppendable]:
		return types.ClassCompAppend, true
	case pair[types.ClassCompAppend] && (pair[types.ClassComparable] || pair[types.ClassAppendable]):
		return types.ClassCompAppend, true
	}
	return types.ClassNone, false
}

// satisfies reports whether a variable of class have may stand where want
// is required.
func satisfies(have, want types.Class) bool {
	switch want {
	case types.ClassNone:
		return true
	case types.ClassComparable:
		return have == types.ClassNumber || have == types.ClassComparable || have == types.ClassCompAppend
	case types.ClassAppendable:
		return have == types.ClassAppendable || have == types.ClassCompAppend
	}
	return have == want
}
