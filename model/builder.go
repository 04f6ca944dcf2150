package model

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/gaborage/restdoc/declaration"
	"github.com/gaborage/restdoc/diagnostic"
	"github.com/gaborage/restdoc/docerrors"
	"github.com/gaborage/restdoc/tags"
)

// Build walks src and assembles the resource tree.
//
// Types carrying a Path annotation become children of the root resource, in
// declaration order. Each type's methods are visited in declaration order:
// methods bound to an HTTP method become operations, methods with only a Path
// annotation are sub-resource locators whose result type is visited right
// away, depth-first. Problems local to a directive or a method are reported to
// rep and skipped.
func Build(src declaration.Source, opts Options, reg *tags.Registry, rep diagnostic.Reporter) (*Application, error) {
	if src == nil {
		return nil, errors.New("declaration source is required")
	}
	if reg == nil {
		reg = tags.Default()
	}
	if rep == nil {
		rep = diagnostic.Discard
	}

	b := &builder{
		src:     src,
		opts:    opts,
		reg:     reg,
		rep:     rep,
		bearing: make(map[declaration.TypeID]bool),
		scanned: make(map[string]tags.Facts),
	}

	root := &Resource{Template: opts.ContextPath, Path: JoinPath(opts.ContextPath)}
	app := &Application{ContextPath: root.Path, Root: root, Options: opts}

	if !opts.excludes(root.Path) {
		for _, t := range src.Types() {
			a, ok := t.Annotations.Get(declaration.AnnotationPath)
			if !ok {
				continue
			}
			b.visitType(root, t, a.Value, "", false)
		}
	}

	removeFiltered(root)
	return app, nil
}

type builder struct {
	src  declaration.Source
	opts Options
	reg  *tags.Registry
	rep  diagnostic.Reporter

	bearing map[declaration.TypeID]bool
	scanned map[string]tags.Facts
	// stack holds the types currently being visited through locators
	stack []declaration.TypeID
}

// visitType attaches t under parent at template. locatorDoc documents the
// node when t was reached through a locator method.
func (b *builder) visitType(parent *Resource, t *declaration.Type, template, locatorDoc string, excluded bool) {
	path := JoinPath(parent.Path, template)
	if b.opts.excludes(path) {
		return
	}

	typeFacts := b.scan(string(t.ID), tags.Comment{Text: t.Doc, Target: t.Name(), Position: t.Position})
	excluded = applyInclusion(excluded, typeFacts)

	doc := locatorDoc
	if doc == "" {
		doc = typeFacts.Description
	}
	node := parent.child(template, t.ID, doc)
	selected := b.opts.selects(node.Path)
	if excluded || !selected {
		node.filtered = true
	}

	b.stack = append(b.stack, t.ID)
	defer func() { b.stack = b.stack[:len(b.stack)-1] }()

	for i := range t.Methods {
		m := &t.Methods[i]
		verbs := httpMethods(m.Annotations)
		pathAnn, hasPath := m.Annotations.Get(declaration.AnnotationPath)
		switch {
		case len(verbs) == 0 && hasPath:
			b.visitLocator(node, t, m, pathAnn.Value, excluded)
		case len(verbs) == 0:
			continue
		case len(verbs) > 1:
			b.inconsistent(t, m, node.Path, "multiple HTTP methods %s", strings.Join(verbs, ", "))
		default:
			b.visitOperation(node, t, m, verbs[0], typeFacts, excluded)
		}
	}
}

func (b *builder) visitLocator(node *Resource, t *declaration.Type, m *declaration.Method, template string, excluded bool) {
	path := JoinPath(node.Path, template)
	if m.Result == nil || !m.Result.IsNamed() || !b.isResourceBearing(m.Result.ID) {
		result := "nothing"
		if m.Result != nil {
			result = m.Result.String()
		}
		b.inconsistent(t, m, path, "path method returns %s, which is not a resource", result)
		return
	}
	if slices.Contains(b.stack, m.Result.ID) {
		b.inconsistent(t, m, path, "recursive sub-resource locator into %s", m.Result.ID.Name())
		return
	}
	if b.opts.excludes(path) {
		return
	}

	target, _ := b.src.Lookup(m.Result.ID)
	facts := b.scan(string(t.ID)+"#"+m.Name, methodComment(t, m))
	b.visitType(node, target, template, facts.Description, applyInclusion(excluded, facts))
}

func (b *builder) visitOperation(node *Resource, t *declaration.Type, m *declaration.Method, verb string, typeFacts tags.Facts, excluded bool) {
	path := node.Path
	subTemplate := ""
	if a, ok := m.Annotations.Get(declaration.AnnotationPath); ok {
		subTemplate = a.Value
		path = JoinPath(node.Path, subTemplate)
		if b.opts.excludes(path) {
			return
		}
	}

	facts := b.scan(string(t.ID)+"#"+m.Name, methodComment(t, m))
	if applyInclusion(excluded, facts) || !b.opts.selects(path) {
		node.filtered = true
		return
	}

	op, err := b.operation(t, m, verb, path, typeFacts, facts)
	if err != nil {
		b.inconsistent(t, m, path, "%s", err)
		return
	}

	target := node
	if subTemplate != "" && JoinPath(subTemplate) != "/" {
		target = node.child(subTemplate, t.ID, "")
	}
	target.Operations = append(target.Operations, op)
}

func (b *builder) operation(t *declaration.Type, m *declaration.Method, verb, path string, typeFacts, facts tags.Facts) (*Operation, error) {
	op := &Operation{
		Method:          verb,
		Path:            path,
		Consumes:        mediaTypes(m.Annotations, t.Annotations, declaration.AnnotationConsumes),
		Produces:        mediaTypes(m.Annotations, t.Annotations, declaration.AnnotationProduces),
		ResponseHeaders: concatHeaders(typeFacts.ResponseHeaders, facts.ResponseHeaders),
		RequestHeaders:  concatHeaders(typeFacts.RequestHeaders, facts.RequestHeaders),
		Example:         facts.Example,
		Inclusion:       InclusionInherited,
		Declaration:     t.Name() + "." + m.Name,
		Position:        m.Position,
		Doc:             facts.Description,
	}
	if facts.Include {
		op.Inclusion = InclusionIncluded
	}

	params, err := b.parameters(t, m, facts)
	if err != nil {
		return nil, err
	}
	op.Params = params

	vars := TemplateVariables(path)
	for _, p := range op.ParamsBySource(SourcePath) {
		if !slices.Contains(vars, p.Name) {
			return nil, fmt.Errorf("path parameter %q is not in template %s", p.Name, path)
		}
	}

	switch {
	case m.Result != nil && facts.ReturnWrapped != nil:
		ref, err := b.wrap(t, *m.Result, facts.ReturnWrapped)
		if err != nil {
			return nil, fmt.Errorf("@returnWrapped: %w", err)
		}
		op.Response = &ref
	case m.Result != nil:
		ref := Ref(*m.Result)
		op.Response = &ref
	case facts.ReturnWrapped != nil:
		return nil, fmt.Errorf("@returnWrapped: %w: method has no result", ErrNoInnerType)
	}

	return op, nil
}

func (b *builder) parameters(t *declaration.Type, m *declaration.Method, facts tags.Facts) ([]Parameter, error) {
	var params []Parameter
	hasBody := false
	for _, p := range m.Params {
		var found []Parameter
		for _, ps := range paramSources {
			for _, a := range p.Annotations.All(ps.annotation) {
				name := a.Value
				if name == "" {
					name = p.Name
				}
				found = append(found, Parameter{Name: name, Source: ps.source})
			}
		}
		injected := p.Annotations.Has(declaration.AnnotationContext)

		switch {
		case len(found) > 1 || (injected && len(found) > 0):
			return nil, fmt.Errorf("parameter %s has several source annotations", p.Name)
		case injected:
			continue
		case len(found) == 0:
			if hasBody {
				return nil, fmt.Errorf("more than one body parameter (%s)", p.Name)
			}
			hasBody = true
			found = append(found, Parameter{Name: p.Name, Source: SourceBody})
		}

		param := found[0]
		param.Type = Ref(p.Type)
		if a, ok := p.Annotations.Get(declaration.AnnotationDefaultValue); ok {
			param.Default = a.Value
		}
		if param.Source == SourceBody && facts.InputWrapped != nil {
			ref, err := b.wrap(t, p.Type, facts.InputWrapped)
			if err != nil {
				return nil, fmt.Errorf("@inputWrapped: %w", err)
			}
			param.Type = ref
		}
		params = append(params, param)
	}

	if facts.InputWrapped != nil && !hasBody {
		return nil, fmt.Errorf("@inputWrapped: %w: method has no body parameter", ErrNoInnerType)
	}
	return params, nil
}

// wrap applies a wrapping hint. An explicit type name is resolved relative to
// the declaring type's package first, then by unique simple name.
func (b *builder) wrap(t *declaration.Type, declared declaration.TypeExpr, hint *tags.Wrap) (TypeRef, error) {
	if hint.Type == "" {
		return Wrap(declared, nil)
	}
	id, err := b.resolveName(t, hint.Type)
	if err != nil {
		return TypeRef{}, err
	}
	inner := declaration.Named(id)
	return Wrap(declared, &inner)
}

func (b *builder) resolveName(t *declaration.Type, name string) (declaration.TypeID, error) {
	if _, ok := b.src.Lookup(declaration.TypeID(name)); ok {
		return declaration.TypeID(name), nil
	}
	if pkg := t.ID.Package(); pkg != "" {
		id := declaration.TypeID(pkg + "." + name)
		if _, ok := b.src.Lookup(id); ok {
			return id, nil
		}
	}

	var matches []declaration.TypeID
	for _, c := range b.src.Types() {
		if c.Name() == name {
			matches = append(matches, c.ID)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return "", fmt.Errorf("unknown type %s", name)
	default:
		return "", fmt.Errorf("ambiguous type %s", name)
	}
}

// isResourceBearing reports whether id names a type with a Path annotation or
// with at least one method carrying a Path or HTTP method annotation.
func (b *builder) isResourceBearing(id declaration.TypeID) bool {
	if v, ok := b.bearing[id]; ok {
		return v
	}
	t, ok := b.src.Lookup(id)
	v := ok && IsResourceBearing(t)
	b.bearing[id] = v
	return v
}

// IsResourceBearing reports whether t can act as a resource.
func IsResourceBearing(t *declaration.Type) bool {
	if t.Annotations.Has(declaration.AnnotationPath) {
		return true
	}
	for _, m := range t.Methods {
		if m.Annotations.Has(declaration.AnnotationPath) || len(httpMethods(m.Annotations)) > 0 {
			return true
		}
	}
	return false
}

// scan parses the comment of the declaration identified by key once; its
// warnings are reported on first use only.
func (b *builder) scan(key string, c tags.Comment) tags.Facts {
	if f, ok := b.scanned[key]; ok {
		return f
	}
	facts, errs := b.reg.Scan(c, b.opts.Tags)
	for _, err := range errs {
		b.rep.Warn(err)
	}
	b.scanned[key] = facts
	return facts
}

func (b *builder) inconsistent(t *declaration.Type, m *declaration.Method, path, format string, args ...any) {
	b.rep.Warn(&docerrors.InconsistentOperationError{
		Declaration: t.Name() + "." + m.Name,
		Path:        path,
		Position:    m.Position,
		Message:     fmt.Sprintf(format, args...),
	})
}

func methodComment(t *declaration.Type, m *declaration.Method) tags.Comment {
	return tags.Comment{Text: m.Doc, Target: t.Name() + "." + m.Name, Position: m.Position}
}

// applyInclusion folds a declaration's directives into the inherited
// exclusion state: @exclude wins, @include re-admits.
func applyInclusion(inherited bool, f tags.Facts) bool {
	switch {
	case f.Excluded():
		return true
	case f.Include:
		return false
	default:
		return inherited
	}
}

func httpMethods(as declaration.Annotations) []string {
	var verbs []string
	for _, a := range as {
		if slices.Contains(declaration.HTTPMethods, a.Name) && !slices.Contains(verbs, a.Name) {
			verbs = append(verbs, a.Name)
		}
	}
	return verbs
}

// mediaTypes reads a Consumes/Produces annotation from the method, falling back
// to the declaring type. Values may list several comma-separated types.
func mediaTypes(method, typ declaration.Annotations, name string) []string {
	as := method.All(name)
	if len(as) == 0 {
		as = typ.All(name)
	}
	var out []string
	for _, a := range as {
		for _, v := range strings.Split(a.Value, ",") {
			if v = strings.TrimSpace(v); v != "" && !slices.Contains(out, v) {
				out = append(out, v)
			}
		}
	}
	return out
}

func concatHeaders(typeLevel, methodLevel []tags.Header) []tags.Header {
	if len(typeLevel) == 0 && len(methodLevel) == 0 {
		return nil
	}
	out := make([]tags.Header, 0, len(typeLevel)+len(methodLevel))
	out = append(out, typeLevel...)
	return append(out, methodLevel...)
}

// child returns the child at template, creating it when absent. Templates that
// normalize to the same path merge into the first node.
func (r *Resource) child(template string, declaring declaration.TypeID, doc string) *Resource {
	path := JoinPath(r.Path, template)
	if path == r.Path {
		return r
	}
	for _, c := range r.Children {
		if c.Path == path {
			if c.Doc == "" {
				c.Doc = doc
			}
			return c
		}
	}
	c := &Resource{
		Template:      template,
		Path:          path,
		DeclaringType: declaring,
		Doc:           doc,
		parent:        r,
	}
	r.Children = append(r.Children, c)
	return c
}

// removeFiltered drops nodes left empty by exclusion or the allow-list.
func removeFiltered(r *Resource) {
	kept := r.Children[:0]
	for _, c := range r.Children {
		removeFiltered(c)
		if c.filtered && len(c.Operations) == 0 && len(c.Children) == 0 {
			continue
		}
		kept = append(kept, c)
	}
	r.Children = kept
}
