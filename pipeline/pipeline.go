// Package pipeline sequences a generation run: build the resource model,
// resolve the data-object closure when enabled, then hand the finished,
// read-only model to the writers in a fixed order.
package pipeline

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/gaborage/restdoc/config"
	"github.com/gaborage/restdoc/docerrors"
	"github.com/gaborage/restdoc/model"
	"github.com/gaborage/restdoc/pojo"
)

// Pipeline steps, as reported in WriterFailureError.Step.
const (
	StepResource  = "resource"
	StepIndex     = "index"
	StepSummary   = "summary"
	StepTypeIndex = "type index"
	StepType      = "type"
)

// RunInfo describes the run for the summary page.
type RunInfo struct {
	ID         string
	Resources  int
	Operations int
	Types      int
	Warnings   int
}

// ResourceWriter persists the page of one resource.
type ResourceWriter interface {
	WriteResource(ctx context.Context, cfg *config.Config, app *model.Application, r *model.Resource) error
}

// IndexWriter persists the global index.
type IndexWriter interface {
	WriteIndex(ctx context.Context, cfg *config.Config, app *model.Application) error
}

// SummaryWriter persists the summary view.
type SummaryWriter interface {
	WriteSummary(ctx context.Context, cfg *config.Config, app *model.Application, run RunInfo) error
}

// TypeIndexWriter persists the index of data-object types.
type TypeIndexWriter interface {
	WriteTypeIndex(ctx context.Context, cfg *config.Config, app *model.Application, types *pojo.Set) error
}

// TypeWriter persists the page of one data-object type. root is passed so the
// page can link the operations using the type.
type TypeWriter interface {
	WriteType(ctx context.Context, cfg *config.Config, app *model.Application, entry *pojo.Entry, types *pojo.Set, root *model.Resource) error
}

// Writers groups the collaborators of a run. A nil writer skips its step.
type Writers struct {
	Resource  ResourceWriter
	Index     IndexWriter
	Summary   SummaryWriter
	TypeIndex TypeIndexWriter
	Type      TypeWriter
}

// Run writes, in order: every resource page in tree pre-order, the index, the
// summary and, when types is not nil, the type index and one page per type.
// The first failure aborts the remaining steps and is returned as a
// *docerrors.WriterFailureError.
func Run(ctx context.Context, cfg *config.Config, app *model.Application, types *pojo.Set, w Writers, run RunInfo) error {
	if w.Resource != nil {
		for _, r := range app.Resources() {
			if err := w.Resource.WriteResource(ctx, cfg, app, r); err != nil {
				return failure(StepResource, r.Path, err)
			}
		}
	}

	if w.Index != nil {
		if err := w.Index.WriteIndex(ctx, cfg, app); err != nil {
			return failure(StepIndex, "", err)
		}
	}

	if w.Summary != nil {
		if err := w.Summary.WriteSummary(ctx, cfg, app, run); err != nil {
			return failure(StepSummary, "", err)
		}
	}

	if types == nil {
		return nil
	}

	if w.TypeIndex != nil {
		if err := w.TypeIndex.WriteTypeIndex(ctx, cfg, app, types); err != nil {
			return failure(StepTypeIndex, "", err)
		}
	}

	if w.Type != nil {
		return writeTypes(ctx, cfg, app, types, w.Type)
	}
	return nil
}

// writeTypes writes the per-type pages with at most output.concurrency
// writers in flight. The model is read-only by now.
func writeTypes(ctx context.Context, cfg *config.Config, app *model.Application, types *pojo.Set, w TypeWriter) error {
	limit := 1
	if cfg != nil && cfg.Output.Concurrency > 1 {
		limit = cfg.Output.Concurrency
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for _, entry := range types.Entries() {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := w.WriteType(gctx, cfg, app, entry, types, app.Root); err != nil {
				return failure(StepType, string(entry.ID), err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return failure(StepType, "", err)
	}
	if err := ctx.Err(); err != nil {
		return failure(StepType, "", err)
	}
	return nil
}

func failure(step, target string, err error) error {
	var wf *docerrors.WriterFailureError
	if errors.As(err, &wf) {
		return err
	}
	return &docerrors.WriterFailureError{Step: step, Target: target, Cause: err}
}
