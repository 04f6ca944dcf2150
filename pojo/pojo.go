// Package pojo computes the closed set of data-object types reachable from the
// operations of a built model: the types used as parameters and responses,
// the types of their fields, their known supertypes and every subclass the
// declaration source reports, transitively.
package pojo

import (
	"regexp"
	"slices"
	"unicode"
	"unicode/utf8"

	"github.com/gaborage/restdoc/declaration"
	"github.com/gaborage/restdoc/model"
	"github.com/gaborage/restdoc/validation"
)

// Status is the resolution state of an Entry.
type Status string

const (
	StatusUnresolved Status = "unresolved"
	StatusResolving  Status = "resolving"
	StatusResolved   Status = "resolved"
)

// Entry is one data-object type of the closure.
type Entry struct {
	ID   declaration.TypeID
	Type *declaration.Type
	// Subclasses are the direct subclasses reported by the source
	Subclasses []declaration.TypeID
	// Supertypes are the declared supertypes that are themselves data-object types
	Supertypes []declaration.TypeID
	// UsedBy lists the operations referencing the type directly, in tree pre-order
	UsedBy []*model.Operation
	Status Status
}

// Name returns the unqualified type name.
func (e *Entry) Name() string {
	return e.ID.Name()
}

// Set is the published closure, in resolution order.
type Set struct {
	entries []*Entry
	byID    map[declaration.TypeID]*Entry
}

// Entries returns the entries in resolution order.
func (s *Set) Entries() []*Entry {
	return append([]*Entry(nil), s.entries...)
}

// Lookup returns the entry for id.
func (s *Set) Lookup(id declaration.TypeID) (*Entry, bool) {
	e, ok := s.byID[id]
	return e, ok
}

// Len returns the number of entries.
func (s *Set) Len() int {
	return len(s.entries)
}

// IDs returns the type identities in resolution order.
func (s *Set) IDs() []declaration.TypeID {
	ids := make([]declaration.TypeID, len(s.entries))
	for i, e := range s.entries {
		ids[i] = e.ID
	}
	return ids
}

// Options tune the published set.
type Options struct {
	// MatchingNames, when set, publishes only types whose qualified or simple
	// name matches. The traversal itself is not restricted.
	MatchingNames *regexp.Regexp
}

func (o Options) publishes(id declaration.TypeID) bool {
	return o.MatchingNames == nil || o.MatchingNames.MatchString(string(id)) || o.MatchingNames.MatchString(id.Name())
}

// Resolve computes the closure breadth-first. Seeds are the named types of
// every operation's parameters and response, after unwrapping, in tree
// pre-order. A type is claimed before it is expanded, so each identity is
// resolved at most once even when subclass relations form a cycle.
func Resolve(app *model.Application, src declaration.Source, opts Options) *Set {
	r := &resolver{
		src:     src,
		visited: make(map[declaration.TypeID]*Entry),
	}

	for _, op := range app.Operations() {
		for _, p := range op.Params {
			r.seed(p.Type.Unwrap(), op)
		}
		if op.Response != nil {
			r.seed(op.Response.Unwrap(), op)
		}
	}

	for len(r.queue) > 0 {
		e := r.queue[0]
		r.queue = r.queue[1:]
		r.expand(e)
	}

	set := &Set{byID: make(map[declaration.TypeID]*Entry)}
	for _, e := range r.order {
		if !opts.publishes(e.ID) {
			continue
		}
		set.entries = append(set.entries, e)
		set.byID[e.ID] = e
	}
	return set
}

type resolver struct {
	src     declaration.Source
	visited map[declaration.TypeID]*Entry
	queue   []*Entry
	order   []*Entry
}

func (r *resolver) seed(expr declaration.TypeExpr, op *model.Operation) {
	expr.Walk(func(id declaration.TypeID) {
		if e := r.enqueue(id); e != nil && !slices.Contains(e.UsedBy, op) {
			e.UsedBy = append(e.UsedBy, op)
		}
	})
}

// enqueue claims id and schedules it. It returns the entry for id, or nil when
// id is not a data-object type.
func (r *resolver) enqueue(id declaration.TypeID) *Entry {
	if e, ok := r.visited[id]; ok {
		return e
	}
	t, ok := r.src.Lookup(id)
	if !ok || model.IsResourceBearing(t) {
		return nil
	}
	e := &Entry{ID: id, Type: t, Status: StatusUnresolved}
	r.visited[id] = e
	r.queue = append(r.queue, e)
	r.order = append(r.order, e)
	return e
}

func (r *resolver) expand(e *Entry) {
	e.Status = StatusResolving

	for _, sub := range r.src.SubclassesOf(e.ID) {
		if r.enqueue(sub) != nil {
			e.Subclasses = append(e.Subclasses, sub)
		}
	}
	for _, super := range e.Type.Supertypes {
		if r.enqueue(super) != nil {
			e.Supertypes = append(e.Supertypes, super)
		}
	}
	for _, f := range e.Type.Fields {
		if !Exported(f) {
			continue
		}
		f.Type.Walk(func(id declaration.TypeID) {
			if t, ok := r.src.Lookup(id); ok && isScalar(t) {
				return
			}
			r.enqueue(id)
		})
	}

	e.Status = StatusResolved
}

// isScalar reports named basic types and aliases such as "type Color string".
// They are documented as field types, not as data objects of their own.
func isScalar(t *declaration.Type) bool {
	return t.Kind == declaration.KindBasic || t.Kind == declaration.KindAlias
}

// Exported reports whether a field is part of the wire representation: an
// exported name, not hidden by json:"-". Embedded fields count as supertypes.
func Exported(f declaration.Field) bool {
	if f.Embedded {
		return false
	}
	first, _ := utf8.DecodeRuneInString(f.Name)
	if !unicode.IsUpper(first) {
		return false
	}
	return !validation.ParseField(f.Name, f.Tag).Skipped
}
