package declaration

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// Manifest is the YAML form of a declaration set, for scanners that are not
// written in Go. Types keep their order in the document.
type Manifest struct {
	Types      []*Type            `yaml:"types"`
	Subclasses []SubclassRelation `yaml:"subclasses,omitempty"`
}

// SubclassRelation declares an extra "super is extended by sub" edge.
type SubclassRelation struct {
	Super TypeID `yaml:"super"`
	Sub   TypeID `yaml:"sub"`
}

// LoadManifest decodes a YAML manifest into a Catalog.
func LoadManifest(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return NewCatalog()
		}
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}

	c, err := NewCatalog(m.Types...)
	if err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}
	for _, rel := range m.Subclasses {
		if rel.Super == "" || rel.Sub == "" {
			return nil, fmt.Errorf("invalid manifest: subclass relation needs both super and sub")
		}
		c.AddSubclass(rel.Super, rel.Sub)
	}
	return c, nil
}

// LoadManifestFile reads a manifest from disk.
func LoadManifestFile(path string) (*Catalog, error) {
	// #nosec G304 - manifest path is provided by the operator
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}
	return LoadManifest(bytes.NewReader(data))
}

// WriteManifest encodes the catalog as YAML. Relations implied by Supertypes are
// not repeated.
func WriteManifest(w io.Writer, c *Catalog) error {
	m := Manifest{Types: c.Types()}
	for _, t := range m.Types {
		for _, sub := range c.SubclassesOf(t.ID) {
			if st, ok := c.Lookup(sub); ok && slices.Contains(st.Supertypes, t.ID) {
				continue
			}
			m.Subclasses = append(m.Subclasses, SubclassRelation{Super: t.ID, Sub: sub})
		}
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	return enc.Close()
}
