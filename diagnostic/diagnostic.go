// Package diagnostic collects the non-fatal problems found while building the
// documentation model so they can be logged with enough context to fix the
// source, and counted for the final summary.
package diagnostic

import (
	"errors"
	"sync"

	"github.com/gaborage/restdoc/docerrors"
	"github.com/gaborage/restdoc/logger"
)

// Reporter receives recoverable problems. Implementations must not abort the run.
type Reporter interface {
	Warn(err error)
}

// Kind classifies a warning for logs and summaries.
type Kind string

const (
	KindMalformedDirective    Kind = "malformed_directive"
	KindInconsistentOperation Kind = "inconsistent_operation"
	KindOther                 Kind = "other"
)

// Diagnostic is one recorded warning.
type Diagnostic struct {
	Kind        Kind
	Position    string
	Declaration string
	Err         error
}

// Collector logs every warning and keeps it for later inspection.
type Collector struct {
	log logger.Logger

	mu    sync.Mutex
	items []Diagnostic
}

// Ensure Collector implements the interface
var _ Reporter = (*Collector)(nil)

// NewCollector creates a collector that logs through log. A nil logger only records.
func NewCollector(log logger.Logger) *Collector {
	return &Collector{log: log}
}

// Warn records err and logs it at WARN level.
func (c *Collector) Warn(err error) {
	if err == nil {
		return
	}

	d := Diagnostic{Kind: classify(err), Err: err}
	var located docerrors.Located
	if errors.As(err, &located) {
		if pos := located.SourcePosition(); pos.IsValid() {
			d.Position = pos.String()
		}
		d.Declaration = located.DeclarationName()
	}

	c.mu.Lock()
	c.items = append(c.items, d)
	c.mu.Unlock()

	if c.log == nil {
		return
	}
	event := c.log.Warn().Str("kind", string(d.Kind))
	if d.Position != "" {
		event = event.Str("position", d.Position)
	}
	if d.Declaration != "" {
		event = event.Str("declaration", d.Declaration)
	}
	event.Msg(err.Error())
}

// Diagnostics returns the recorded warnings in report order.
func (c *Collector) Diagnostics() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Diagnostic, len(c.items))
	copy(out, c.items)
	return out
}

// Count returns the number of recorded warnings.
func (c *Collector) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// CountByKind groups the warning count by kind.
func (c *Collector) CountByKind() map[Kind]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	counts := make(map[Kind]int)
	for _, d := range c.items {
		counts[d.Kind]++
	}
	return counts
}

func classify(err error) Kind {
	switch {
	case errors.Is(err, docerrors.ErrMalformedDirective):
		return KindMalformedDirective
	case errors.Is(err, docerrors.ErrInconsistentOperation):
		return KindInconsistentOperation
	default:
		return KindOther
	}
}

// Discard is a Reporter that drops everything.
var Discard Reporter = discard{}

type discard struct{}

func (discard) Warn(error) {}
