package declaration

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	widgetID   TypeID = "example.com/shop.Widget"
	redID      TypeID = "example.com/shop.RedWidget"
	blueID     TypeID = "example.com/shop.BlueWidget"
	envelopeID TypeID = "example.com/shop.Envelope"
)

func TestTypeIDParts(t *testing.T) {
	assert.Equal(t, "Widget", widgetID.Name())
	assert.Equal(t, "example.com/shop", widgetID.Package())
	assert.Equal(t, "string", TypeID("string").Name())
	assert.Equal(t, "", TypeID("string").Package())
}

func TestPositionString(t *testing.T) {
	tests := []struct {
		name string
		pos  Position
		want string
	}{
		{name: "empty", pos: Position{}, want: "-"},
		{name: "file_only", pos: Position{File: "a.go"}, want: "a.go"},
		{name: "line", pos: Position{File: "a.go", Line: 3}, want: "a.go:3"},
		{name: "column", pos: Position{File: "a.go", Line: 3, Column: 7}, want: "a.go:3:7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.pos.String())
		})
	}

	assert.Equal(t, 5, Position{File: "a.go", Line: 3}.Offset(2).Line)
	assert.Equal(t, 0, Position{File: "a.go"}.Offset(2).Line)
}

func TestTypeExprString(t *testing.T) {
	expr := Named(envelopeID, SliceOf(Named(widgetID)))
	assert.Equal(t, "Envelope[[]Widget]", expr.String())

	m := MapOf(Named("string"), Named(widgetID))
	assert.Equal(t, "map[string]Widget", m.String())
}

func TestTypeExprWalk(t *testing.T) {
	expr := Named(envelopeID, MapOf(Named("string"), SliceOf(Named(redID))))

	var seen []TypeID
	expr.Walk(func(id TypeID) { seen = append(seen, id) })

	assert.Equal(t, []TypeID{envelopeID, "string", redID}, seen)
}

func TestTypeExprEqual(t *testing.T) {
	a := Named(envelopeID, Named(widgetID))
	b := TypeExpr{ID: envelopeID, Args: []TypeExpr{{ID: widgetID}}}

	assert.True(t, a.Equal(b), "empty kind with id is a named expression")
	assert.False(t, a.Equal(Named(envelopeID)))
	assert.False(t, SliceOf(Named(widgetID)).Equal(SliceOf(Named(redID))))
	assert.True(t, SliceOf(Named(widgetID)).Equal(SliceOf(Named(widgetID))))
}

func TestAnnotations(t *testing.T) {
	as := Annotations{{Name: AnnotationPath, Value: "/a"}, {Name: "GET"}, {Name: AnnotationPath, Value: "/b"}}

	a, ok := as.Get(AnnotationPath)
	require.True(t, ok)
	assert.Equal(t, "/a", a.Value)
	assert.True(t, as.Has("GET"))
	assert.False(t, as.Has("POST"))
	assert.Len(t, as.All(AnnotationPath), 2)
}

func TestCatalogSubclasses(t *testing.T) {
	c, err := NewCatalog(
		&Type{ID: widgetID, Kind: KindStruct},
		&Type{ID: redID, Kind: KindStruct, Supertypes: []TypeID{widgetID}},
		&Type{ID: blueID, Kind: KindStruct, Supertypes: []TypeID{widgetID}},
	)
	require.NoError(t, err)

	assert.Equal(t, []TypeID{redID, blueID}, c.SubclassesOf(widgetID))
	assert.Empty(t, c.SubclassesOf(redID))

	c.AddSubclass(widgetID, redID)
	assert.Len(t, c.SubclassesOf(widgetID), 2, "duplicate edges are ignored")

	got, ok := c.Lookup(blueID)
	require.True(t, ok)
	assert.Equal(t, "BlueWidget", got.Name())
	assert.Equal(t, 3, c.Len())
}

func TestCatalogRejectsDuplicates(t *testing.T) {
	_, err := NewCatalog(&Type{ID: widgetID}, &Type{ID: widgetID})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate type")

	_, err = NewCatalog(&Type{})
	require.Error(t, err)
}

const manifestYAML = `
types:
  - id: example.com/shop.ItemsResource
    annotations:
      - name: Path
        value: /items
    methods:
      - name: List
        annotations:
          - name: GET
        result:
          kind: slice
          elem:
            id: example.com/shop.Widget
  - id: example.com/shop.Widget
    kind: struct
subclasses:
  - super: example.com/shop.Widget
    sub: example.com/shop.Gadget
`

func TestLoadManifest(t *testing.T) {
	c, err := LoadManifest(strings.NewReader(manifestYAML))
	require.NoError(t, err)

	types := c.Types()
	require.Len(t, types, 2)
	assert.Equal(t, TypeID("example.com/shop.ItemsResource"), types[0].ID)

	res := types[0]
	path, ok := res.Annotations.Get(AnnotationPath)
	require.True(t, ok)
	assert.Equal(t, "/items", path.Value)

	require.Len(t, res.Methods, 1)
	require.NotNil(t, res.Methods[0].Result)
	assert.Equal(t, "[]Widget", res.Methods[0].Result.String())

	assert.Equal(t, []TypeID{"example.com/shop.Gadget"}, c.SubclassesOf(widgetID))
}

func TestLoadManifestErrors(t *testing.T) {
	_, err := LoadManifest(strings.NewReader("types:\n  - id: a.B\n    bogus: 1\n"))
	require.Error(t, err, "unknown fields are rejected")

	_, err = LoadManifest(strings.NewReader("subclasses:\n  - super: a.B\n"))
	require.Error(t, err)

	c, err := LoadManifest(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())
}

func TestWriteManifestRoundTrip(t *testing.T) {
	c, err := LoadManifest(strings.NewReader(manifestYAML))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteManifest(&buf, c))

	again, err := LoadManifest(&buf)
	require.NoError(t, err)
	assert.Equal(t, c.Len(), again.Len())
	assert.Equal(t, c.SubclassesOf(widgetID), again.SubclassesOf(widgetID))
}
