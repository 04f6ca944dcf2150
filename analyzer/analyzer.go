// Package analyzer turns a tree of Go sources into a declaration.Catalog.
// Types and their exported methods are read with go/parser; //rest:
// directives in doc comments become annotations:
//
//	//rest:path /items
//	//rest:GET (and the other HTTP verbs)
//	//rest:produces application/json
//	//rest:consumes application/json
//	//rest:pathparam id [goParam]   (queryparam, headerparam, formparam, cookieparam, matrixparam)
//	//rest:context goParam
//	//rest:default goParam value
//
// Struct and interface embedding define supertypes.
package analyzer

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/mod/modfile"

	"github.com/gaborage/restdoc/declaration"
	"github.com/gaborage/restdoc/diagnostic"
	"github.com/gaborage/restdoc/docerrors"
)

// ErrNoSources is returned when a project root holds no Go declaration.
var ErrNoSources = errors.New("no Go declarations found")

// SourceAnalyzer scans the Go packages below a project root.
type SourceAnalyzer struct {
	projectRoot string
	fileSet     *token.FileSet
	modulePath  string
	rep         diagnostic.Reporter
}

// New creates an analyzer for projectRoot. Problems found in the sources
// are reported to rep; nil discards them.
func New(projectRoot string, rep diagnostic.Reporter) *SourceAnalyzer {
	if rep == nil {
		rep = diagnostic.Discard
	}
	return &SourceAnalyzer{
		projectRoot: projectRoot,
		fileSet:     token.NewFileSet(),
		rep:         rep,
	}
}

// ModulePath returns the module path read from go.mod. Only valid after Analyze.
func (a *SourceAnalyzer) ModulePath() string {
	return a.modulePath
}

// Analyze walks the project and returns its declarations in a stable order:
// directories lexically, files by name, declarations in source order.
func (a *SourceAnalyzer) Analyze() (*declaration.Catalog, error) {
	info, err := os.Stat(a.projectRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to read project root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project root %s is not a directory", a.projectRoot)
	}

	a.modulePath = a.readModulePath()

	catalog, err := declaration.NewCatalog()
	if err != nil {
		return nil, err
	}

	err = filepath.WalkDir(a.projectRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != a.projectRoot && shouldSkipDir(d.Name()) {
			return filepath.SkipDir
		}
		return a.analyzePackage(path, catalog)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to analyze %s: %w", a.projectRoot, err)
	}
	return catalog, nil
}

// readModulePath returns the module path of go.mod, or "" when there is none.
func (a *SourceAnalyzer) readModulePath() string {
	// #nosec G304 - go.mod is read from the configured project root
	content, err := os.ReadFile(filepath.Join(a.projectRoot, "go.mod"))
	if err != nil {
		return ""
	}
	return modfile.ModulePath(content)
}

// shouldSkipDir checks if a directory should be skipped during discovery
func shouldSkipDir(name string) bool {
	return name == "vendor" || name == "testdata" || name == "node_modules" ||
		strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}

// packagePath derives the import path of the package in dir.
func (a *SourceAnalyzer) packagePath(dir, name string) string {
	rel, err := filepath.Rel(a.projectRoot, dir)
	if err != nil || rel == "." {
		rel = ""
	}
	rel = filepath.ToSlash(rel)
	switch {
	case a.modulePath != "" && rel != "":
		return a.modulePath + "/" + rel
	case a.modulePath != "":
		return a.modulePath
	case rel != "":
		return rel
	default:
		return name
	}
}

// parseDir parses the non-test Go files of dir sorted by name. Files that do
// not parse are reported and skipped.
func (a *SourceAnalyzer) parseDir(dir string) ([]*ast.File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []*ast.File
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		path := filepath.Join(dir, name)
		f, err := parser.ParseFile(a.fileSet, path, nil, parser.ParseComments)
		if err != nil {
			a.rep.Warn(fmt.Errorf("skipping %s: %w", a.relative(path), err))
			continue
		}
		files = append(files, f)
	}
	return files, nil
}

// analyzePackage adds the types declared in dir, then attaches their methods.
// Only the package named by the first file is read; others in the same
// directory (e.g. package main next to a library) are reported.
func (a *SourceAnalyzer) analyzePackage(dir string, catalog *declaration.Catalog) error {
	files, err := a.parseDir(dir)
	if err != nil || len(files) == 0 {
		return err
	}

	pkgName := files[0].Name.Name
	pkgPath := a.packagePath(dir, pkgName)
	pkg := &packageScope{
		path:  pkgPath,
		types: make(map[string]*declaration.Type),
	}

	var kept []*ast.File
	for _, f := range files {
		if f.Name.Name != pkgName {
			a.rep.Warn(fmt.Errorf("skipping %s: package %s, expected %s", a.relative(a.fileSet.Position(f.Package).Filename), f.Name.Name, pkgName))
			continue
		}
		kept = append(kept, f)
	}

	var declared []*declaration.Type
	for _, f := range kept {
		scope := pkg.file(f)
		for _, decl := range f.Decls {
			gen, ok := decl.(*ast.GenDecl)
			if !ok || gen.Tok != token.TYPE {
				continue
			}
			for _, spec := range gen.Specs {
				ts, ok := spec.(*ast.TypeSpec)
				if !ok {
					continue
				}
				doc := ts.Doc
				if doc == nil && len(gen.Specs) == 1 {
					doc = gen.Doc
				}
				t := a.typeDecl(scope, ts, doc)
				pkg.types[ts.Name.Name] = t
				declared = append(declared, t)
			}
		}
	}

	for _, f := range kept {
		scope := pkg.file(f)
		for _, decl := range f.Decls {
			fn, ok := decl.(*ast.FuncDecl)
			if !ok || fn.Recv == nil || !fn.Name.IsExported() {
				continue
			}
			recv, params := receiverType(fn.Recv)
			t, ok := pkg.types[recv]
			if !ok {
				continue
			}
			t.Methods = append(t.Methods, a.methodDecl(scope.withTypeParams(params), t, fn))
		}
	}

	for _, t := range declared {
		if err := catalog.Add(t); err != nil {
			return err
		}
	}
	return nil
}

// typeDecl converts one type spec.
func (a *SourceAnalyzer) typeDecl(scope *fileScope, ts *ast.TypeSpec, group *ast.CommentGroup) *declaration.Type {
	t := &declaration.Type{
		ID:       declaration.TypeID(scope.pkg.path + "." + ts.Name.Name),
		Position: a.position(ts.Name.Pos()),
	}
	if ts.TypeParams != nil {
		for _, field := range ts.TypeParams.List {
			for _, n := range field.Names {
				t.TypeParams = append(t.TypeParams, n.Name)
			}
		}
	}
	scope = scope.withTypeParams(t.TypeParams)

	doc, directives := a.splitComment(group)
	t.Doc = doc
	t.Annotations = a.typeAnnotations(ts.Name.Name, directives)

	switch typ := ts.Type.(type) {
	case *ast.StructType:
		t.Kind = declaration.KindStruct
		for _, field := range typ.Fields.List {
			a.structField(scope, t, field)
		}
	case *ast.InterfaceType:
		t.Kind = declaration.KindInterface
		for _, m := range typ.Methods.List {
			if len(m.Names) == 0 {
				a.addSupertype(t, scope.expr(m.Type))
			}
		}
	default:
		t.Kind = declaration.KindBasic
		if ts.Assign.IsValid() {
			t.Kind = declaration.KindAlias
		}
	}
	return t
}

func (a *SourceAnalyzer) structField(scope *fileScope, t *declaration.Type, field *ast.Field) {
	expr := scope.expr(field.Type)
	tag := ""
	if field.Tag != nil {
		if unquoted, err := strconv.Unquote(field.Tag.Value); err == nil {
			tag = unquoted
		}
	}
	doc, _ := a.splitComment(field.Doc)
	if doc == "" {
		doc, _ = a.splitComment(field.Comment)
	}

	if len(field.Names) == 0 {
		a.addSupertype(t, expr)
		t.Fields = append(t.Fields, declaration.Field{
			Name:     expr.ID.Name(),
			Type:     expr,
			Tag:      tag,
			Doc:      doc,
			Embedded: true,
		})
		return
	}
	for _, n := range field.Names {
		t.Fields = append(t.Fields, declaration.Field{Name: n.Name, Type: expr, Tag: tag, Doc: doc})
	}
}

func (a *SourceAnalyzer) addSupertype(t *declaration.Type, expr declaration.TypeExpr) {
	if !expr.IsNamed() || expr.ID.Package() == "" || slices.Contains(t.Supertypes, expr.ID) {
		return
	}
	t.Supertypes = append(t.Supertypes, expr.ID)
}

// methodDecl converts an exported method. Parameters of a well-known request
// context type are injected; the result is the first non-error result.
func (a *SourceAnalyzer) methodDecl(scope *fileScope, t *declaration.Type, fn *ast.FuncDecl) declaration.Method {
	m := declaration.Method{
		Name:     fn.Name.Name,
		Position: a.position(fn.Name.Pos()),
	}

	if fn.Type.Params != nil {
		for i, field := range fn.Type.Params.List {
			expr := scope.expr(field.Type)
			var anns declaration.Annotations
			if isInjected(expr) {
				anns = declaration.Annotations{{Name: declaration.AnnotationContext}}
			}
			names := field.Names
			if len(names) == 0 {
				names = []*ast.Ident{ast.NewIdent(fmt.Sprintf("arg%d", i))}
			}
			for _, n := range names {
				m.Params = append(m.Params, declaration.Param{
					Name:        n.Name,
					Type:        expr,
					Annotations: slices.Clone(anns),
				})
			}
		}
	}

	if fn.Type.Results != nil {
		for _, field := range fn.Type.Results.List {
			expr := scope.expr(field.Type)
			if expr.IsNamed() && expr.ID == "error" {
				continue
			}
			m.Result = &expr
			break
		}
	}

	doc, directives := a.splitComment(fn.Doc)
	m.Doc = doc
	a.methodAnnotations(t.Name()+"."+m.Name, &m, directives)
	return m
}

// receiverType returns the receiver type name and its type parameter names.
func receiverType(recv *ast.FieldList) (string, []string) {
	if len(recv.List) == 0 {
		return "", nil
	}
	expr := recv.List[0].Type
	if star, ok := expr.(*ast.StarExpr); ok {
		expr = star.X
	}

	var params []string
	switch x := expr.(type) {
	case *ast.IndexExpr:
		params = identNames(x.Index)
		expr = x.X
	case *ast.IndexListExpr:
		for _, idx := range x.Indices {
			params = append(params, identNames(idx)...)
		}
		expr = x.X
	}
	if ident, ok := expr.(*ast.Ident); ok {
		return ident.Name, params
	}
	return "", nil
}

func identNames(expr ast.Expr) []string {
	if ident, ok := expr.(*ast.Ident); ok {
		return []string{ident.Name}
	}
	return nil
}

func (a *SourceAnalyzer) position(pos token.Pos) declaration.Position {
	p := a.fileSet.Position(pos)
	return declaration.Position{File: a.relative(p.Filename), Line: p.Line, Column: p.Column}
}

// relative returns path relative to the project root, slash separated.
func (a *SourceAnalyzer) relative(path string) string {
	rel, err := filepath.Rel(a.projectRoot, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func (a *SourceAnalyzer) malformed(d directive, declName, message string) {
	a.rep.Warn(&docerrors.MalformedDirectiveError{
		Directive:   directivePrefix[2:] + d.keyword,
		Declaration: declName,
		Position:    d.pos,
		Message:     message,
	})
}
