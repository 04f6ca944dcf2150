// Package declaration defines the read-only view of an analyzed codebase that the
// documentation core consumes: types, their methods and fields, annotations,
// documentation comments and source positions.
//
// The core never parses source syntax itself. Anything that can describe
// declarations in these terms (the Go source analyzer, a YAML manifest produced
// by another tool, a test fixture) can act as a Source.
package declaration

import (
	"fmt"
	"strings"
)

// TypeID is the fully qualified identity of a type, e.g. "example.com/shop/api.Widget".
// Predeclared types use their bare name ("string", "int64").
type TypeID string

// Name returns the unqualified part of the identity.
func (id TypeID) Name() string {
	s := string(id)
	if i := strings.LastIndex(s, "."); i >= 0 {
		return s[i+1:]
	}
	return s
}

// Package returns the qualifier of the identity, or "" for predeclared types.
func (id TypeID) Package() string {
	s := string(id)
	if i := strings.LastIndex(s, "."); i >= 0 {
		return s[:i]
	}
	return ""
}

// Position locates a declaration or comment line in the analyzed sources.
type Position struct {
	File   string `yaml:"file,omitempty"`
	Line   int    `yaml:"line,omitempty"`
	Column int    `yaml:"column,omitempty"`
}

// IsValid reports whether the position carries a file name.
func (p Position) IsValid() bool {
	return p.File != ""
}

// Offset returns the position moved down by n lines.
func (p Position) Offset(lines int) Position {
	if p.Line > 0 {
		p.Line += lines
	}
	return p
}

func (p Position) String() string {
	switch {
	case p.File == "":
		return "-"
	case p.Line == 0:
		return p.File
	case p.Column == 0:
		return fmt.Sprintf("%s:%d", p.File, p.Line)
	default:
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
	}
}

// Well-known annotation names.
const (
	AnnotationPath         = "Path"
	AnnotationProduces     = "Produces"
	AnnotationConsumes     = "Consumes"
	AnnotationPathParam    = "PathParam"
	AnnotationQueryParam   = "QueryParam"
	AnnotationHeaderParam  = "HeaderParam"
	AnnotationFormParam    = "FormParam"
	AnnotationCookieParam  = "CookieParam"
	AnnotationMatrixParam  = "MatrixParam"
	AnnotationContext      = "Context"
	AnnotationDefaultValue = "DefaultValue"
)

// HTTPMethods lists the annotation names that bind a method to an HTTP verb.
var HTTPMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "HEAD", "OPTIONS"}

// Annotation is one piece of declarative metadata attached to a declaration.
type Annotation struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value,omitempty"`
}

// Annotations is an ordered annotation set.
type Annotations []Annotation

// Get returns the first annotation with the given name.
func (as Annotations) Get(name string) (Annotation, bool) {
	for _, a := range as {
		if a.Name == name {
			return a, true
		}
	}
	return Annotation{}, false
}

// Has reports whether an annotation with the given name is present.
func (as Annotations) Has(name string) bool {
	_, ok := as.Get(name)
	return ok
}

// All returns every annotation with the given name, in order.
func (as Annotations) All(name string) []Annotation {
	var out []Annotation
	for _, a := range as {
		if a.Name == name {
			out = append(out, a)
		}
	}
	return out
}

// Kind classifies a declared type.
type Kind string

const (
	KindStruct    Kind = "struct"
	KindInterface Kind = "interface"
	KindAlias     Kind = "alias"
	KindBasic     Kind = "basic"
)

// Type is a declared type together with everything the core needs to know about it.
type Type struct {
	ID          TypeID      `yaml:"id"`
	Kind        Kind        `yaml:"kind,omitempty"`
	TypeParams  []string    `yaml:"typeParams,omitempty"`
	Annotations Annotations `yaml:"annotations,omitempty"`
	Doc         string      `yaml:"doc,omitempty"`
	Position    Position    `yaml:"position,omitempty"`
	Supertypes  []TypeID    `yaml:"supertypes,omitempty"`
	Fields      []Field     `yaml:"fields,omitempty"`
	Methods     []Method    `yaml:"methods,omitempty"`
}

// Name returns the unqualified type name.
func (t *Type) Name() string {
	return t.ID.Name()
}

// Field is a data member of a struct type.
type Field struct {
	Name     string   `yaml:"name"`
	Type     TypeExpr `yaml:"type"`
	Tag      string   `yaml:"tag,omitempty"`
	Doc      string   `yaml:"doc,omitempty"`
	Embedded bool     `yaml:"embedded,omitempty"`
}

// Method is a method declared on a type.
type Method struct {
	Name        string      `yaml:"name"`
	Annotations Annotations `yaml:"annotations,omitempty"`
	Params      []Param     `yaml:"params,omitempty"`
	Result      *TypeExpr   `yaml:"result,omitempty"`
	Doc         string      `yaml:"doc,omitempty"`
	Position    Position    `yaml:"position,omitempty"`
}

// Param is a method parameter.
type Param struct {
	Name        string      `yaml:"name"`
	Type        TypeExpr    `yaml:"type"`
	Annotations Annotations `yaml:"annotations,omitempty"`
}
