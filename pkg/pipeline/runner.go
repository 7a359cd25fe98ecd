package pipeline

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/nbenv/pkg/cache"
	"github.com/matzehuels/nbenv/pkg/deps"
	"github.com/matzehuels/nbenv/pkg/deps/python"
	"github.com/matzehuels/nbenv/pkg/errors"
	"github.com/matzehuels/nbenv/pkg/manifest"
	"github.com/matzehuels/nbenv/pkg/notebook"
	"github.com/matzehuels/nbenv/pkg/observability"
	"github.com/matzehuels/nbenv/pkg/render"
	"github.com/matzehuels/nbenv/pkg/source"
)

// ExecutionHost receives the unexecuted source of each rendered code cell.
// A PyScript page is one such host; nbenv itself never executes code.
type ExecutionHost interface {
	Submit(ctx context.Context, index int, source string)
}

// Runner executes the pipeline.
//
// A single run is synchronous. The only state shared between runs is the
// publisher, so one Runner can serve concurrent requests as long as its
// publisher is safe for concurrent use ([manifest.Slot] is).
type Runner struct {
	Renderer  *render.Renderer
	Extractor deps.Extractor
	Publisher manifest.Publisher
	Loader    *source.Loader
	Host      ExecutionHost
	Logger    *log.Logger
}

// NewRunner creates a runner rendering markdown with md and publishing to pub.
// A nil md renders markdown as plain text, a nil pub discards manifests and
// a nil logger discards log output.
func NewRunner(md render.Markdown, pub manifest.Publisher, logger *log.Logger) *Runner {
	if pub == nil {
		pub = manifest.Discard
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Runner{
		Renderer:  render.NewRenderer(md),
		Extractor: python.Extractor,
		Publisher: pub,
		Loader:    source.NewLoader(nil, nil),
		Logger:    logger,
	}
}

// Execute acquires the notebook named by opts.Source and processes it.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	logger := r.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	}

	start := time.Now()
	nb, err := r.Loader.Load(ctx, opts.Source, opts.Refresh)
	if err != nil {
		return nil, err
	}
	acquired := time.Since(start)
	logger.Debug("acquired notebook",
		"source", nb.Target.Location,
		"kind", nb.Target.Kind,
		"bytes", len(nb.Raw),
		"duration", acquired)

	result, err := r.process(ctx, nb.Raw, nb.Target, logger)
	if err != nil {
		return nil, err
	}
	result.Stats.AcquireTime = acquired
	return result, nil
}

// Process runs the pipeline on raw notebook bytes.
//
// Document-level failures (malformed JSON, missing or non-list cells) return
// an error and publish nothing. Cell-level failures never fail the run.
// A publisher failure is reported with the PUBLISH_FAILED code.
func (r *Runner) Process(ctx context.Context, raw []byte) (*Result, error) {
	return r.process(ctx, raw, source.Target{}, r.Logger)
}

// ProcessNotebook runs the pipeline on an acquired notebook, keeping its
// origin in the result and manifest.
func (r *Runner) ProcessNotebook(ctx context.Context, nb *source.Notebook) (*Result, error) {
	return r.process(ctx, nb.Raw, nb.Target, r.Logger)
}

// NewRunID returns a fresh identifier for a run or a republished manifest.
func NewRunID() string { return uuid.NewString() }

func (r *Runner) process(ctx context.Context, raw []byte, target source.Target, logger *log.Logger) (*Result, error) {
	start := time.Now()
	hooks := observability.Pipeline()
	runID := NewRunID()

	doc, err := notebook.Parse(raw)
	if err != nil {
		hooks.OnProcessComplete(ctx, runID, 0, 0, time.Since(start), err)
		logger.Error("rejected notebook", "run", runID, "err", errors.UserMessage(err))
		return nil, err
	}
	hooks.OnProcessStart(ctx, runID, len(doc.Cells))

	result := &Result{
		RunID:    runID,
		Target:   target,
		DocHash:  cache.Hash(raw),
		Language: doc.Language(),
		Cells:    make([]render.Cell, 0, len(doc.Cells)),
	}

	var all deps.Set
	for i, rawCell := range doc.Cells {
		cell, decodeErr := notebook.DecodeCell(rawCell)

		// Dependencies are collected whenever the source decoded, even if
		// the cell itself is degraded below.
		var modules []string
		if cell.IsCode() && cell.HasSource {
			found := r.Extractor.Extract(cell.Source)
			all.Union(found)
			modules = found.List()
			result.Stats.CodeCells++
		}

		rendered, err := r.renderCell(cell, decodeErr, i)
		if err != nil {
			result.Degraded = append(result.Degraded, CellError{Index: i, Err: err})
			hooks.OnCellDegraded(ctx, runID, i, err)
			logger.Warn("cell degraded", "run", runID, "cell", i, "reason", errors.UserMessage(err))
			rendered = render.Placeholder(i, errors.UserMessage(err))
		} else if rendered.Kind == render.KindCode && r.Host != nil {
			r.Host.Submit(ctx, i, cell.Source)
		}
		rendered.Modules = modules
		result.Cells = append(result.Cells, rendered)
	}

	m := manifest.New(all)
	m.RunID = runID
	m.Source = target.Location
	result.Manifest = m

	result.Stats.Cells = len(result.Cells)
	result.Stats.Degraded = len(result.Degraded)
	result.Stats.Dependencies = m.Len()

	if err := r.Publisher.Publish(ctx, m); err != nil {
		err = errors.Wrap(errors.ErrCodePublish, err, "publish manifest")
		hooks.OnPublish(ctx, runID, m.Len(), err)
		hooks.OnProcessComplete(ctx, runID, result.Stats.Cells, m.Len(), time.Since(start), err)
		logger.Error("publish failed", "run", runID, "err", err)
		return nil, err
	}
	hooks.OnPublish(ctx, runID, m.Len(), nil)

	result.Stats.ProcessTime = time.Since(start)
	hooks.OnProcessComplete(ctx, runID, result.Stats.Cells, m.Len(), result.Stats.ProcessTime, nil)
	logger.Info("processed notebook",
		"run", runID,
		"cells", result.Stats.Cells,
		"degraded", result.Stats.Degraded,
		"dependencies", m.Len(),
		"duration", result.Stats.ProcessTime)

	return result, nil
}

func (r *Runner) renderCell(cell notebook.Cell, decodeErr error, index int) (render.Cell, error) {
	if decodeErr != nil {
		return render.Cell{}, decodeErr
	}
	rendered, err := r.Renderer.Render(cell, index)
	if err != nil {
		return render.Cell{}, errors.Wrap(errors.ErrCodeInvalidCell, err, "render %s cell: %v", cell.Type, err)
	}
	return rendered, nil
}
