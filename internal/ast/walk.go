package ast

// Children returns the direct child nodes of n in source order.
func Children(n Node) []Node {
	var out []Node
	add := func(c Node) {
		if c != nil {
			out = append(out, c)
		}
	}
	switch n := n.(type) {
	case *File:
		if n.Module != nil {
			add(n.Module)
		}
		for _, i := range n.Imports {
			add(i)
		}
		for _, d := range n.Decls {
			add(d)
		}
	case *ModuleDecl:
		if n.Exposing != nil {
			add(n.Exposing)
		}
	case *Import:
		if n.Exposing != nil {
			add(n.Exposing)
		}
	case *ValueDecl:
		if n.Pattern != nil {
			add(n.Pattern)
		}
		for _, p := range n.Params {
			add(p)
		}
		if n.Body != nil {
			add(n.Body)
		}
	case *TypeAnnotation:
		if n.Type != nil {
			add(n.Type)
		}
	case *TypeDecl:
		for _, v := range n.Variants {
			add(v)
		}
	case *Variant:
		for _, a := range n.Args {
			add(a)
		}
	case *TypeAlias:
		if n.Type != nil {
			add(n.Type)
		}
	case *PortAnnotation:
		if n.Type != nil {
			add(n.Type)
		}
	case *Call:
		add(n.Target)
		for _, a := range n.Args {
			add(a)
		}
	case *BinOp:
		for i, o := range n.Operands {
			add(o)
			if i < len(n.Operators) {
				add(n.Operators[i])
			}
		}
	case *Negate:
		add(n.Operand)
	case *List:
		for _, e := range n.Items {
			add(e)
		}
	case *Tuple:
		for _, e := range n.Items {
			add(e)
		}
	case *Parens:
		add(n.Inner)
	case *LetIn:
		for _, d := range n.Decls {
			add(d)
		}
		if n.Body != nil {
			add(n.Body)
		}
	case *Case:
		if n.Subject != nil {
			add(n.Subject)
		}
		for _, b := range n.Branches {
			add(b)
		}
	case *CaseBranch:
		if n.Pattern != nil {
			add(n.Pattern)
		}
		if n.Body != nil {
			add(n.Body)
		}
	case *If:
		for i, c := range n.Conditions {
			add(c)
			add(n.Thens[i])
		}
		if n.Else != nil {
			add(n.Else)
		}
	case *Lambda:
		for _, p := range n.Params {
			add(p)
		}
		if n.Body != nil {
			add(n.Body)
		}
	case *Record:
		for _, f := range n.Fields {
			add(f)
		}
	case *RecordUpdate:
		if n.Base != nil {
			add(n.Base)
		}
		for _, f := range n.Fields {
			add(f)
		}
	case *Field:
		if n.Value != nil {
			add(n.Value)
		}
	case *FieldAccess:
		add(n.Target)
	case *CtorPattern:
		for _, p := range n.Args {
			add(p)
		}
	case *TuplePattern:
		for _, p := range n.Items {
			add(p)
		}
	case *ListPattern:
		for _, p := range n.Items {
			add(p)
		}
	case *ConsPattern:
		add(n.Head)
		add(n.Tail)
	case *RecordPattern:
		for _, p := range n.Fields {
			add(p)
		}
	case *LiteralPattern:
		add(n.Literal)
	case *AliasPattern:
		add(n.Inner)
		if n.Alias != nil {
			add(n.Alias)
		}
	case *TypeRef:
		for _, a := range n.Args {
			add(a)
		}
	case *FunctionType:
		for _, p := range n.Params {
			add(p)
		}
		add(n.Return)
	case *RecordType:
		for _, f := range n.Fields {
			add(f)
		}
	case *FieldType:
		add(n.Type)
	case *TupleType:
		for _, t := range n.Items {
			add(t)
		}
	}
	return out
}

// Walk visits n and its descendants depth first. Children of a node are
// skipped when fn returns false.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range Children(n) {
		Walk(c, fn)
	}
}

// Descendants returns every node below n of type T, in source order.
func Descendants[T Node](n Node) []T {
	var out []T
	Walk(n, func(c Node) bool {
		if t, ok := c.(T); ok && c != n {
			out = append(out, t)
		}
		return true
	})
	return out
}

// DeclarationAt returns the top-level declaration containing offset.
func (f *File) DeclarationAt(offset uint32) Decl {
	for _, d := range f.Decls {
		if d.Span().Contains(offset) {
			return d
		}
	}
	return nil
}

// Enclosing returns the top-level declaration that contains n.
func (f *File) Enclosing(n Node) Decl {
	for _, d := range f.Decls {
		if Node(d) == n || d.Span().Covers(n.Span()) {
			return d
		}
	}
	return nil
}

// NodeAt returns the innermost node containing offset, or nil.
func (f *File) NodeAt(offset uint32) Node {
	var found Node
	Walk(f, func(n Node) bool {
		if !n.Span().Contains(offset) {
			return false
		}
		found = n
		return true
	})
	if found == Node(f) {
		return nil
	}
	return found
}

// Path returns the nodes from f down to n, or nil when n is not in f.
func (f *File) Path(n Node) []Node {
	var path []Node
	var find func(cur Node) bool
	find = func(cur Node) bool {
		path = append(path, cur)
		if cur == n {
			return true
		}
		for _, c := range Children(cur) {
			if c.Span().Covers(n.Span()) && find(c) {
				return true
			}
		}
		path = path[:len(path)-1]
		return false
	}
	if !find(f) {
		return nil
	}
	return path
}

// LocalBinding returns the variable pattern or let declaration that binds
// ref inside its top-level declaration. Qualified references and names
// bound at the top level yield nil.
func (f *File) LocalBinding(ref *ValueRef) Node {
	if ref.Qualifier != "" {
		return nil
	}
	path := f.Path(ref)
	for i := len(path) - 2; i >= 0; i-- {
		child := path[i+1]
		switch n := path[i].(type) {
		case *ValueDecl:
			if child == Node(n.Body) {
				if b := bindingIn(ref.Name, n.Params...); b != nil {
					return b
				}
			}
		case *Lambda:
			if child == Node(n.Body) {
				if b := bindingIn(ref.Name, n.Params...); b != nil {
					return b
				}
			}
		case *CaseBranch:
			if child == Node(n.Body) {
				if b := bindingIn(ref.Name, n.Pattern); b != nil {
					return b
				}
			}
		case *LetIn:
			for _, d := range n.Values() {
				if d.Name == ref.Name {
					return d
				}
				if b := bindingIn(ref.Name, d.Pattern); b != nil {
					return b
				}
			}
		}
	}
	return nil
}

func bindingIn(name string, patterns ...Pattern) Node {
	var found Node
	for _, p := range patterns {
		if p == nil {
			continue
		}
		Walk(p, func(n Node) bool {
			if v, ok := n.(*VarPattern); ok && v.Name == name && found == nil {
				found = v
			}
			return found == nil
		})
		if found != nil {
			return found
		}
	}
	return nil
}
