package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/gaborage/restdoc/config"
	"github.com/gaborage/restdoc/declaration"
	"github.com/gaborage/restdoc/diagnostic"
	"github.com/gaborage/restdoc/logger"
	"github.com/gaborage/restdoc/model"
	"github.com/gaborage/restdoc/pojo"
	"github.com/gaborage/restdoc/tags"
)

// Option customizes Generate.
type Option func(*options)

type options struct {
	source *diagnostic.Collector
}

// WithSourceDiagnostics counts the warnings already collected while loading
// the declarations into the run, so the summary page reports them too.
func WithSourceDiagnostics(c *diagnostic.Collector) Option {
	return func(o *options) {
		o.source = c
	}
}

// ErrNoConfig is returned by Generate when called without a configuration.
var ErrNoConfig = errors.New("generation requires a configuration")

// Result is the outcome of a generation run.
type Result struct {
	Run         RunInfo
	App         *model.Application
	Types       *pojo.Set
	Diagnostics []diagnostic.Diagnostic
}

// Generate runs the whole generation: build the resource model from src,
// resolve the data-object closure when doc.enablepojo is set, then Run the
// writers. Warnings are logged as they are found and returned in the Result,
// which is also returned alongside a writer failure. Filter patterns are
// compiled before anything is built; an invalid one aborts the run with a
// *docerrors.InvalidFilterPatternError.
func Generate(ctx context.Context, cfg *config.Config, src declaration.Source, w Writers, log logger.Logger, opts ...Option) (*Result, error) {
	if cfg == nil {
		return nil, ErrNoConfig
	}
	if err := cfg.CompileFilters(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	runID := uuid.NewString()
	log = log.WithFields(map[string]any{"run_id": runID})
	collector := diagnostic.NewCollector(log)

	start := time.Now()
	app, err := model.Build(src, cfg.ModelOptions(), tags.Default(), collector)
	if err != nil {
		return nil, err
	}

	result := &Result{App: app}
	result.Run = RunInfo{
		ID:         runID,
		Resources:  len(app.Resources()),
		Operations: len(app.Operations()),
	}
	log.Info().
		Int("resources", result.Run.Resources).
		Int("operations", result.Run.Operations).
		Dur("elapsed", time.Since(start)).
		Msg("Resource model built")

	if cfg.Doc.EnablePOJO {
		resolveStart := time.Now()
		result.Types = pojo.Resolve(app, src, cfg.PojoOptions())
		result.Run.Types = result.Types.Len()
		log.Info().
			Int("types", result.Run.Types).
			Dur("elapsed", time.Since(resolveStart)).
			Msg("Data types resolved")
	}

	result.Diagnostics = collector.Diagnostics()
	if o.source != nil {
		result.Diagnostics = append(o.source.Diagnostics(), result.Diagnostics...)
	}
	result.Run.Warnings = len(result.Diagnostics)

	writeStart := time.Now()
	if err := Run(ctx, cfg, app, result.Types, w, result.Run); err != nil {
		log.Error().Err(err).Msg("Generation aborted")
		return result, err
	}

	log.Info().
		Int("warnings", result.Run.Warnings).
		Dur("write_elapsed", time.Since(writeStart)).
		Dur("elapsed", time.Since(start)).
		Msg("Documentation generated")
	return result, nil
}
