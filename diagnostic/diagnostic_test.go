package diagnostic

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaborage/restdoc/declaration"
	"github.com/gaborage/restdoc/docerrors"
	"github.com/gaborage/restdoc/logger"
)

func TestCollectorRecordsContext(t *testing.T) {
	var buf bytes.Buffer
	c := NewCollector(logger.NewWithWriter(&buf, "info", false))

	c.Warn(&docerrors.MalformedDirectiveError{
		Directive:   "@requestheader",
		Declaration: "ItemsResource.List",
		Position:    declaration.Position{File: "items.go", Line: 9},
		Message:     "missing header name",
	})
	c.Warn(&docerrors.InconsistentOperationError{Declaration: "ItemsResource.Get", Message: "two body parameters"})
	c.Warn(errors.New("something else"))
	c.Warn(nil)

	diags := c.Diagnostics()
	require.Len(t, diags, 3)
	assert.Equal(t, KindMalformedDirective, diags[0].Kind)
	assert.Equal(t, "items.go:9", diags[0].Position)
	assert.Equal(t, "ItemsResource.List", diags[0].Declaration)
	assert.Equal(t, KindInconsistentOperation, diags[1].Kind)
	assert.Equal(t, KindOther, diags[2].Kind)

	assert.Equal(t, 3, c.Count())
	assert.Equal(t, map[Kind]int{
		KindMalformedDirective:    1,
		KindInconsistentOperation: 1,
		KindOther:                 1,
	}, c.CountByKind())

	out := buf.String()
	assert.Contains(t, out, `"position":"items.go:9"`)
	assert.Contains(t, out, `"declaration":"ItemsResource.List"`)
	assert.Contains(t, out, `"kind":"malformed_directive"`)
}

func TestCollectorWithoutLogger(t *testing.T) {
	c := NewCollector(nil)
	c.Warn(errors.New("x"))
	assert.Equal(t, 1, c.Count())
}

func TestDiscard(t *testing.T) {
	assert.NotPanics(t, func() { Discard.Warn(errors.New("x")) })
}
