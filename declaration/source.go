package declaration

import (
	"fmt"
	"slices"
)

// Source supplies declarations to the documentation core. Implementations must
// return Types in a stable order (declaration order) so generation is
// deterministic across runs.
type Source interface {
	Types() []*Type
	Lookup(id TypeID) (*Type, bool)
	SubclassFinder
}

// SubclassFinder answers "which types directly extend this one". The type
// resolver depends only on this capability, not on how discovery works.
type SubclassFinder interface {
	SubclassesOf(id TypeID) []TypeID
}

// Catalog is an in-memory Source. Subclass relations are derived from each
// type's Supertypes, plus any explicitly registered with AddSubclass.
type Catalog struct {
	types      []*Type
	byID       map[TypeID]*Type
	subclasses map[TypeID][]TypeID
}

// Ensure Catalog implements the interface
var _ Source = (*Catalog)(nil)

// NewCatalog creates a catalog from types in declaration order.
func NewCatalog(types ...*Type) (*Catalog, error) {
	c := &Catalog{
		byID:       make(map[TypeID]*Type),
		subclasses: make(map[TypeID][]TypeID),
	}
	for _, t := range types {
		if err := c.Add(t); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// MustCatalog is NewCatalog for fixtures; it panics on duplicate identities.
func MustCatalog(types ...*Type) *Catalog {
	c, err := NewCatalog(types...)
	if err != nil {
		panic(err)
	}
	return c
}

// Add appends a type. Identities must be unique.
func (c *Catalog) Add(t *Type) error {
	if t == nil || t.ID == "" {
		return fmt.Errorf("type without identity")
	}
	if _, exists := c.byID[t.ID]; exists {
		return fmt.Errorf("duplicate type %s", t.ID)
	}
	c.types = append(c.types, t)
	c.byID[t.ID] = t
	for _, super := range t.Supertypes {
		c.AddSubclass(super, t.ID)
	}
	return nil
}

// AddSubclass records that sub directly extends super.
func (c *Catalog) AddSubclass(super, sub TypeID) {
	if slices.Contains(c.subclasses[super], sub) {
		return
	}
	c.subclasses[super] = append(c.subclasses[super], sub)
}

// Types returns the declared types in declaration order.
func (c *Catalog) Types() []*Type {
	return slices.Clone(c.types)
}

// Lookup finds a type by identity.
func (c *Catalog) Lookup(id TypeID) (*Type, bool) {
	t, ok := c.byID[id]
	return t, ok
}

// SubclassesOf returns the direct subclasses of id in discovery order.
func (c *Catalog) SubclassesOf(id TypeID) []TypeID {
	return slices.Clone(c.subclasses[id])
}

// Len returns the number of declared types.
func (c *Catalog) Len() int {
	return len(c.types)
}
