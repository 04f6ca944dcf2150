package declaration

import "strings"

// ExprKind distinguishes the shapes a TypeExpr can take.
type ExprKind string

const (
	ExprNamed     ExprKind = "named"
	ExprSlice     ExprKind = "slice"
	ExprMap       ExprKind = "map"
	ExprTypeParam ExprKind = "typeparam"
)

// TypeExpr is a use of a type: a named type with optional generic arguments,
// or a slice/map whose element is itself a TypeExpr. Pointers are not modelled.
type TypeExpr struct {
	Kind ExprKind   `yaml:"kind,omitempty"`
	ID   TypeID     `yaml:"id,omitempty"`
	Args []TypeExpr `yaml:"args,omitempty"`
	Key  *TypeExpr  `yaml:"key,omitempty"`
	Elem *TypeExpr  `yaml:"elem,omitempty"`
}

// Named builds a named type expression.
func Named(id TypeID, args ...TypeExpr) TypeExpr {
	return TypeExpr{Kind: ExprNamed, ID: id, Args: args}
}

// SliceOf builds a slice expression.
func SliceOf(elem TypeExpr) TypeExpr {
	return TypeExpr{Kind: ExprSlice, Elem: &elem}
}

// MapOf builds a map expression.
func MapOf(key, elem TypeExpr) TypeExpr {
	return TypeExpr{Kind: ExprMap, Key: &key, Elem: &elem}
}

// IsZero reports whether the expression is empty.
func (e TypeExpr) IsZero() bool {
	return e.Kind == "" && e.ID == "" && e.Elem == nil
}

// IsNamed reports whether the expression refers to a named type. An empty Kind
// with an ID set is treated as named so hand-written manifests stay terse.
func (e TypeExpr) IsNamed() bool {
	return e.Kind == ExprNamed || (e.Kind == "" && e.ID != "")
}

// Walk calls fn for every named type mentioned in the expression, outermost first.
func (e TypeExpr) Walk(fn func(TypeID)) {
	switch {
	case e.IsNamed():
		fn(e.ID)
		for _, a := range e.Args {
			a.Walk(fn)
		}
	case e.Kind == ExprSlice || e.Kind == ExprMap:
		if e.Key != nil {
			e.Key.Walk(fn)
		}
		if e.Elem != nil {
			e.Elem.Walk(fn)
		}
	}
}

// Equal reports structural equality.
func (e TypeExpr) Equal(o TypeExpr) bool {
	if e.IsNamed() != o.IsNamed() || e.ID != o.ID || len(e.Args) != len(o.Args) {
		return false
	}
	if !e.IsNamed() && e.Kind != o.Kind {
		return false
	}
	for i := range e.Args {
		if !e.Args[i].Equal(o.Args[i]) {
			return false
		}
	}
	return equalPtr(e.Key, o.Key) && equalPtr(e.Elem, o.Elem)
}

func equalPtr(a, b *TypeExpr) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// String renders the expression with unqualified names, Go style.
func (e TypeExpr) String() string {
	var sb strings.Builder
	e.write(&sb)
	return sb.String()
}

func (e TypeExpr) write(sb *strings.Builder) {
	switch e.Kind {
	case ExprSlice:
		sb.WriteString("[]")
		if e.Elem != nil {
			e.Elem.write(sb)
		}
		return
	case ExprMap:
		sb.WriteString("map[")
		if e.Key != nil {
			e.Key.write(sb)
		}
		sb.WriteString("]")
		if e.Elem != nil {
			e.Elem.write(sb)
		}
		return
	}

	sb.WriteString(e.ID.Name())
	if len(e.Args) == 0 {
		return
	}
	sb.WriteString("[")
	for i, a := range e.Args {
		if i > 0 {
			sb.WriteString(", ")
		}
		a.write(sb)
	}
	sb.WriteString("]")
}
