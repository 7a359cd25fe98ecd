// Package pipeline turns a notebook into rendered cells and an environment
// manifest.
//
// # Stages
//
// A run has four stages:
//
//  1. Validate: the document must be an object with a cells list. Failure
//     stops the run before anything is rendered or published.
//  2. Render: every cell is decoded and rendered in document order. A cell
//     that fails is replaced by a placeholder carrying the reason; the rest
//     of the notebook is unaffected.
//  3. Extract: top-level imports are collected from every code cell whose
//     source could be decoded, and unioned in document order.
//  4. Publish: the manifest built from the union replaces the published one.
//
// Acquisition (reading a file, fetching a URL) happens before stage 1 and is
// handled by [Runner.Execute]; [Runner.Process] starts from raw bytes.
//
// # Usage
//
//	var live manifest.Slot
//	runner := pipeline.NewRunner(render.NewHTMLMarkdown(), &live, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{Source: "pandas"})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(manifest.PyEnv(result.Manifest))
package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/nbenv/pkg/errors"
	"github.com/matzehuels/nbenv/pkg/manifest"
	"github.com/matzehuels/nbenv/pkg/render"
	"github.com/matzehuels/nbenv/pkg/source"
)

// Options configures a full run through [Runner.Execute].
type Options struct {
	// Source is a file path, an http(s) URL or a sample name.
	Source string `json:"source"`

	// Refresh bypasses the notebook cache for URL sources.
	Refresh bool `json:"refresh,omitempty"`

	// Logger overrides the runner's logger for this run.
	Logger *log.Logger `json:"-"`
}

// Validate checks required fields.
func (o *Options) Validate() error {
	if strings.TrimSpace(o.Source) == "" {
		return errors.New(errors.ErrCodeInvalidInput, "please enter a valid URL")
	}
	return nil
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies the run in logs, pages and stored manifests.
	RunID string

	// Target is where the notebook came from. It is zero for [Runner.Process].
	Target source.Target

	// DocHash is the SHA-256 of the raw notebook bytes.
	DocHash string

	// Language is the kernel language from the notebook metadata, if any.
	// It is informational: extraction runs regardless.
	Language string

	// Cells holds one rendered cell per document cell, in document order.
	Cells []render.Cell

	// Degraded lists the cells replaced by placeholders.
	Degraded []CellError

	// Manifest is the published environment manifest.
	Manifest *manifest.Manifest

	Stats Stats
}

// CellError records a cell-level failure.
type CellError struct {
	Index int
	Err   error
}

func (e CellError) Error() string {
	return fmt.Sprintf("cell %d: %s", e.Index, errors.UserMessage(e.Err))
}

func (e CellError) Unwrap() error { return e.Err }

// Stats contains run statistics.
type Stats struct {
	Cells        int
	CodeCells    int
	Degraded     int
	Dependencies int
	AcquireTime  time.Duration
	ProcessTime  time.Duration
}

// Dependencies returns the manifest packages in first-appearance order.
func (r *Result) Dependencies() []string {
	if r.Manifest == nil {
		return nil
	}
	return r.Manifest.Packages
}

// Title returns a display title for the notebook.
func (r *Result) Title() string {
	if r.Target.Name != "" {
		return r.Target.Name
	}
	return "Notebook"
}

// Page returns the input for [render.WritePage].
func (r *Result) Page() render.PageData {
	return render.PageData{
		Title:    r.Title(),
		RunID:    r.RunID,
		Language: r.Language,
		Cells:    r.Cells,
		Env:      manifest.PyEnv(r.Manifest),
	}
}
