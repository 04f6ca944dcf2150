// Package model holds the semantic model of a documented HTTP API: a tree of
// resources with their operations, built from a declaration.Source by Build.
// Once built, the model is read-only.
package model

import (
	"regexp"
	"strings"

	"github.com/gaborage/restdoc/declaration"
	"github.com/gaborage/restdoc/tags"
)

// ParamSource is where a parameter value travels in the request.
type ParamSource string

const (
	SourcePath   ParamSource = "path"
	SourceQuery  ParamSource = "query"
	SourceHeader ParamSource = "header"
	SourceBody   ParamSource = "body"
	SourceForm   ParamSource = "form"
	SourceCookie ParamSource = "cookie"
	SourceMatrix ParamSource = "matrix"
)

// paramSources maps parameter annotations to their source.
var paramSources = []struct {
	annotation string
	source     ParamSource
}{
	{declaration.AnnotationPathParam, SourcePath},
	{declaration.AnnotationQueryParam, SourceQuery},
	{declaration.AnnotationHeaderParam, SourceHeader},
	{declaration.AnnotationFormParam, SourceForm},
	{declaration.AnnotationCookieParam, SourceCookie},
	{declaration.AnnotationMatrixParam, SourceMatrix},
}

// Inclusion records how an operation came to be documented.
type Inclusion string

const (
	// InclusionInherited means no explicit directive applied
	InclusionInherited Inclusion = "inherited"
	// InclusionIncluded means an @include directive re-admitted the operation
	InclusionIncluded Inclusion = "included"
)

// Options is the immutable tree-wide configuration used while building.
type Options struct {
	// ContextPath is the template of the root resource
	ContextPath string
	// PathExclude prunes every resource whose effective path matches one of the patterns
	PathExclude []*regexp.Regexp
	// MatchingResources, when set, only keeps operations of resources whose
	// effective path matches
	MatchingResources *regexp.Regexp
	// Tags tunes directive handling
	Tags tags.Options
}

func (o Options) excludes(path string) bool {
	for _, re := range o.PathExclude {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}

func (o Options) selects(path string) bool {
	return o.MatchingResources == nil || o.MatchingResources.MatchString(path)
}

// Application is the root aggregate of one generation run.
type Application struct {
	ContextPath string
	Root        *Resource
	Options     Options
}

// Resources returns every resource in tree pre-order, root first.
func (a *Application) Resources() []*Resource {
	var out []*Resource
	a.Root.Walk(func(r *Resource) bool {
		out = append(out, r)
		return true
	})
	return out
}

// Operations returns every operation in tree pre-order.
func (a *Application) Operations() []*Operation {
	var out []*Operation
	a.Root.Walk(func(r *Resource) bool {
		out = append(out, r.Operations...)
		return true
	})
	return out
}

// Resource is one addressable node of the API hierarchy.
type Resource struct {
	// Template is the path template relative to the parent
	Template string
	// Path is the effective path: the templates from the root joined in order
	Path string
	// DeclaringType is the type that contributed the node; empty for the root
	DeclaringType declaration.TypeID
	Doc           string
	Children      []*Resource
	Operations    []*Operation

	parent   *Resource
	filtered bool
}

// Parent returns the enclosing resource, or nil for the root.
func (r *Resource) Parent() *Resource {
	return r.parent
}

// Walk visits r and its descendants depth-first, pre-order. Returning false
// from fn skips the children of that node.
func (r *Resource) Walk(fn func(*Resource) bool) {
	if !fn(r) {
		return
	}
	for _, c := range r.Children {
		c.Walk(fn)
	}
}

// Find returns the resource with the given effective path.
func (r *Resource) Find(path string) *Resource {
	path = JoinPath(path)
	var found *Resource
	r.Walk(func(n *Resource) bool {
		if found == nil && n.Path == path {
			found = n
		}
		return found == nil
	})
	return found
}

// Empty reports whether the subtree carries no operation at all.
func (r *Resource) Empty() bool {
	empty := true
	r.Walk(func(n *Resource) bool {
		if len(n.Operations) > 0 {
			empty = false
		}
		return empty
	})
	return empty
}

// Operation is one HTTP method bound action on a resource.
type Operation struct {
	Method          string
	Path            string
	Consumes        []string
	Produces        []string
	Params          []Parameter
	Response        *TypeRef
	ResponseHeaders []tags.Header
	RequestHeaders  []tags.Header
	Example         string
	Inclusion       Inclusion
	// Declaration names the declaring method, e.g. "ItemsResource.List"
	Declaration string
	Position    declaration.Position
	Doc         string
}

// Body returns the body parameter, if any.
func (o *Operation) Body() (Parameter, bool) {
	for _, p := range o.Params {
		if p.Source == SourceBody {
			return p, true
		}
	}
	return Parameter{}, false
}

// ParamsBySource returns the parameters travelling in src, in declaration order.
func (o *Operation) ParamsBySource(src ParamSource) []Parameter {
	var out []Parameter
	for _, p := range o.Params {
		if p.Source == src {
			out = append(out, p)
		}
	}
	return out
}

// Parameter is one operation input.
type Parameter struct {
	// Name is the wire name; for body parameters the declared parameter name
	Name    string
	Source  ParamSource
	Type    TypeRef
	Default string
}

// JoinPath concatenates path templates into one slash-normalized path with a
// leading slash and no trailing slash.
func JoinPath(parts ...string) string {
	var segments []string
	for _, p := range parts {
		for _, s := range strings.Split(p, "/") {
			if s = strings.TrimSpace(s); s != "" {
				segments = append(segments, s)
			}
		}
	}
	return "/" + strings.Join(segments, "/")
}

// TemplateVariables returns the variable names of a path template in order,
// e.g. "/items/{id}/parts/{part: [0-9]+}" yields id and part.
func TemplateVariables(template string) []string {
	var names []string
	for {
		open := strings.IndexByte(template, '{')
		if open < 0 {
			return names
		}
		end := strings.IndexByte(template[open:], '}')
		if end < 0 {
			return names
		}
		name, _, _ := strings.Cut(template[open+1:open+end], ":")
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
		template = template[open+end+1:]
	}
}
