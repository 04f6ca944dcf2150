package analyzer

import (
	"go/ast"
	"path"
	"slices"
	"strings"

	"github.com/gaborage/restdoc/declaration"
)

// predeclared lists the identifiers of the universe scope that name types.
var predeclared = []string{
	"any", "bool", "byte", "comparable", "complex64", "complex128", "error",
	"float32", "float64", "int", "int8", "int16", "int32", "int64", "rune",
	"string", "uint", "uint8", "uint16", "uint32", "uint64", "uintptr",
}

// injectedTypes are parameter types supplied by the HTTP runtime rather than
// the request.
var injectedTypes = []declaration.TypeID{
	"context.Context",
	"net/http.Request",
	"net/http.ResponseWriter",
}

func isInjected(expr declaration.TypeExpr) bool {
	return expr.IsNamed() && slices.Contains(injectedTypes, expr.ID)
}

// packageScope is the package being analyzed.
type packageScope struct {
	path  string
	types map[string]*declaration.Type
}

// fileScope resolves type names as written in one file.
type fileScope struct {
	pkg        *packageScope
	imports    map[string]string
	typeParams []string
}

func (p *packageScope) file(f *ast.File) *fileScope {
	imports := make(map[string]string, len(f.Imports))
	for _, imp := range f.Imports {
		importPath := strings.Trim(imp.Path.Value, `"`)
		name := importName(importPath)
		if imp.Name != nil {
			name = imp.Name.Name
		}
		if name == "_" || name == "." {
			continue
		}
		imports[name] = importPath
	}
	return &fileScope{pkg: p, imports: imports}
}

// importName guesses the package name of an unaliased import: the last path
// element without a major version suffix ("/v2", ".v3").
func importName(importPath string) string {
	name := path.Base(importPath)
	if isMajorVersion(name) {
		name = path.Base(path.Dir(importPath))
	}
	if base, suffix, ok := strings.Cut(name, "."); ok && isMajorVersion(suffix) {
		name = base
	}
	return name
}

func isMajorVersion(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (s *fileScope) withTypeParams(params []string) *fileScope {
	if len(params) == 0 {
		return s
	}
	c := *s
	c.typeParams = append(slices.Clone(s.typeParams), params...)
	return &c
}

// expr converts a type expression. Pointers are dropped, arrays and variadic
// parameters become slices, and types with no documentation value (func,
// chan, anonymous struct) become any.
func (s *fileScope) expr(e ast.Expr) declaration.TypeExpr {
	switch x := e.(type) {
	case *ast.Ident:
		return s.ident(x.Name)
	case *ast.StarExpr:
		return s.expr(x.X)
	case *ast.ParenExpr:
		return s.expr(x.X)
	case *ast.SelectorExpr:
		if pkg, ok := x.X.(*ast.Ident); ok {
			if importPath, ok := s.imports[pkg.Name]; ok {
				return declaration.Named(declaration.TypeID(importPath + "." + x.Sel.Name))
			}
			return declaration.Named(declaration.TypeID(pkg.Name + "." + x.Sel.Name))
		}
	case *ast.ArrayType:
		return declaration.SliceOf(s.expr(x.Elt))
	case *ast.Ellipsis:
		return declaration.SliceOf(s.expr(x.Elt))
	case *ast.MapType:
		return declaration.MapOf(s.expr(x.Key), s.expr(x.Value))
	case *ast.IndexExpr:
		return s.generic(x.X, x.Index)
	case *ast.IndexListExpr:
		return s.generic(x.X, x.Indices...)
	}
	return declaration.Named("any")
}

func (s *fileScope) ident(name string) declaration.TypeExpr {
	switch {
	case slices.Contains(s.typeParams, name):
		return declaration.TypeExpr{Kind: declaration.ExprTypeParam, ID: declaration.TypeID(name)}
	case slices.Contains(predeclared, name):
		return declaration.Named(declaration.TypeID(name))
	default:
		return declaration.Named(declaration.TypeID(s.pkg.path + "." + name))
	}
}

func (s *fileScope) generic(base ast.Expr, args ...ast.Expr) declaration.TypeExpr {
	t := s.expr(base)
	if !t.IsNamed() {
		return t
	}
	for _, a := range args {
		t.Args = append(t.Args, s.expr(a))
	}
	return t
}
