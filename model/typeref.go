package model

import (
	"errors"
	"fmt"

	"github.com/gaborage/restdoc/declaration"
)

// ErrNoInnerType is returned when a wrapping hint cannot name exactly one payload type.
var ErrNoInnerType = errors.New("wrapped type must have exactly one inner type")

// TypeRef is a reference to a declared type, optionally marked as a generic
// envelope around the documented payload.
type TypeRef struct {
	Declared declaration.TypeExpr
	Wrapped  bool
	// Inner is the documented payload of a wrapped reference
	Inner *declaration.TypeExpr
}

// Ref returns an unwrapped reference to expr.
func Ref(expr declaration.TypeExpr) TypeRef {
	return TypeRef{Declared: expr}
}

// Wrap marks declared as an envelope. The payload is explicit when given,
// otherwise the single type argument of declared.
func Wrap(declared declaration.TypeExpr, explicit *declaration.TypeExpr) (TypeRef, error) {
	var inner declaration.TypeExpr
	switch {
	case explicit != nil && !explicit.IsZero():
		inner = *explicit
	case declared.IsNamed() && len(declared.Args) == 1:
		inner = declared.Args[0]
	default:
		return TypeRef{}, fmt.Errorf("%w: %s has %d type arguments", ErrNoInnerType, declared, len(declared.Args))
	}
	return TypeRef{Declared: declared, Wrapped: true, Inner: &inner}, nil
}

// Unwrap returns the documented type: the inner type of a wrapped reference,
// the declared type otherwise.
func (r TypeRef) Unwrap() declaration.TypeExpr {
	if r.Wrapped && r.Inner != nil {
		return *r.Inner
	}
	return r.Declared
}

func (r TypeRef) String() string {
	if r.Wrapped {
		return r.Declared.String() + " -> " + r.Unwrap().String()
	}
	return r.Declared.String()
}
