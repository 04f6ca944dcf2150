// Package tags extracts structured directives from free-text documentation
// comments. Each directive kind has one Handler; handlers are registered once in
// a static Registry keyed by keyword and never depend on each other's output.
//
// Directives follow the javadoc block-tag convention: a line whose first
// non-blank character is '@' starts a tag, and the tag's payload runs until the
// next tag line. Keywords are matched case-insensitively; unknown keywords
// (@param, @see, ...) are ignored.
package tags

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gaborage/restdoc/declaration"
)

// Kind identifies a directive kind.
type Kind string

const (
	KindResponseHeader Kind = "response_header"
	KindRequestHeader  Kind = "request_header"
	KindHTTPExample    Kind = "http_example"
	KindReturnWrapped  Kind = "return_wrapped"
	KindInputWrapped   Kind = "input_wrapped"
	KindInclude        Kind = "include"
	KindExclude        Kind = "exclude"
)

// Comment is one documentation comment and the declaration it belongs to.
type Comment struct {
	// Text is the comment body without comment markers
	Text string
	// Target names the declaration, e.g. "ItemsResource.List"
	Target string
	// Position is the location of the first line of Text
	Position declaration.Position
}

// Fact is one parsed directive.
type Fact struct {
	Kind     Kind
	Target   string
	Position declaration.Position
	// Name is the header name, or the explicit inner type of a wrapping hint
	Name string
	// Value is the header description or the verbatim example text
	Value string
}

// Handler recognizes one directive kind inside a comment.
type Handler interface {
	Keyword() string
	Kind() Kind
	// Scan returns the facts found in c. Each malformed directive yields one
	// error and is otherwise dropped.
	Scan(c Comment) ([]Fact, []error)
}

// Options tune directive handling for a generation run.
type Options struct {
	// DisableHTTPExample drops @HTTP examples
	DisableHTTPExample bool
}

// Header is a declared request or response header.
type Header struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Wrap is a wrapping hint: the documented payload is a type argument of the
// declared envelope, or the explicitly named Type.
type Wrap struct {
	Type     string
	Position declaration.Position
}

// Facts is everything the directives of one comment say about its declaration.
type Facts struct {
	Description     string
	ResponseHeaders []Header
	RequestHeaders  []Header
	Example         string
	ReturnWrapped   *Wrap
	InputWrapped    *Wrap
	Include         bool
	Exclude         bool
}

// Excluded reports whether the declaration is excluded. Exclude wins over
// include on the same declaration.
func (f Facts) Excluded() bool {
	return f.Exclude
}

// Registry maps directive keywords to handlers. It is built once and read-only.
type Registry struct {
	handlers map[string]Handler
	keywords []string
}

// NewRegistry builds a registry. Keywords must be unique (case-insensitively).
func NewRegistry(handlers ...Handler) (*Registry, error) {
	r := &Registry{handlers: make(map[string]Handler, len(handlers))}
	for _, h := range handlers {
		key := strings.ToLower(h.Keyword())
		if _, exists := r.handlers[key]; exists {
			return nil, fmt.Errorf("duplicate tag handler for @%s", h.Keyword())
		}
		r.handlers[key] = h
		r.keywords = append(r.keywords, key)
	}
	sort.Strings(r.keywords)
	return r, nil
}

var defaultRegistry = mustRegistry(
	headerHandler{keyword: "responseheader", kind: KindResponseHeader},
	headerHandler{keyword: "requestheader", kind: KindRequestHeader},
	exampleHandler{},
	wrapHandler{keyword: "returnWrapped", kind: KindReturnWrapped},
	wrapHandler{keyword: "inputWrapped", kind: KindInputWrapped},
	markerHandler{keyword: "include", kind: KindInclude},
	markerHandler{keyword: "exclude", kind: KindExclude},
)

func mustRegistry(handlers ...Handler) *Registry {
	r, err := NewRegistry(handlers...)
	if err != nil {
		panic(err)
	}
	return r
}

// Default returns the registry with every built-in directive.
func Default() *Registry {
	return defaultRegistry
}

// Keywords returns the registered keywords, sorted.
func (r *Registry) Keywords() []string {
	return append([]string(nil), r.keywords...)
}

// Handler returns the handler registered for keyword.
func (r *Registry) Handler(keyword string) (Handler, bool) {
	h, ok := r.handlers[strings.ToLower(strings.TrimPrefix(keyword, "@"))]
	return h, ok
}

// Scan runs every handler over c and folds their facts into a Facts value.
// The returned errors are malformed-directive warnings.
func (r *Registry) Scan(c Comment, opts Options) (Facts, []error) {
	facts := Facts{Description: description(c.Text)}
	var errs []error

	for _, key := range r.keywords {
		h := r.handlers[key]
		if opts.DisableHTTPExample && h.Kind() == KindHTTPExample {
			continue
		}
		found, herrs := h.Scan(c)
		errs = append(errs, herrs...)
		for _, f := range found {
			facts.apply(f)
		}
	}
	return facts, errs
}

func (f *Facts) apply(fact Fact) {
	switch fact.Kind {
	case KindResponseHeader:
		f.ResponseHeaders = append(f.ResponseHeaders, Header{Name: fact.Name, Description: fact.Value})
	case KindRequestHeader:
		f.RequestHeaders = append(f.RequestHeaders, Header{Name: fact.Name, Description: fact.Value})
	case KindHTTPExample:
		f.Example = fact.Value
	case KindReturnWrapped:
		f.ReturnWrapped = &Wrap{Type: fact.Name, Position: fact.Position}
	case KindInputWrapped:
		f.InputWrapped = &Wrap{Type: fact.Name, Position: fact.Position}
	case KindInclude:
		f.Include = true
	case KindExclude:
		f.Exclude = true
	}
}
