// Package pkg provides the core libraries for nbenv.
//
// # Overview
//
// nbenv reads a Jupyter notebook, renders every cell into display form and
// derives the set of Python packages the notebook's code cells import. The
// rendered cells become a static page that runs the code in the browser
// through PyScript; the dependency set becomes an environment manifest
// that is published to one or more sinks.
//
// The pkg directory is organized into these areas:
//
//  1. [source] - Acquiring notebooks (local files, URLs, named samples)
//  2. [notebook] - Decoding the notebook document and its cells
//  3. [deps] - Import extraction and ordered dependency sets
//  4. [render] - Cell rendering, HTML pages and terminal output
//  5. [manifest] - The environment manifest, its encodings and sinks
//  6. [pipeline] - Orchestration (acquire → render → extract → publish)
//
// Supporting packages: [cache], [config], [errors], [httputil] and
// [observability].
//
// # Architecture
//
//	notebook file / URL / sample
//	         ↓
//	    [source] package (resolve + fetch, cached)
//	         ↓
//	    [notebook] package (document + cell decoding)
//	         ↓
//	    [render] + [deps] packages (per cell, failures contained)
//	         ↓
//	    [manifest] package (publish to file, redis, mongo, live slot)
//	         ↓
//	    HTML page / terminal view / DOT graph
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/nbenv/pkg/manifest"
//	    "github.com/matzehuels/nbenv/pkg/pipeline"
//	    "github.com/matzehuels/nbenv/pkg/render"
//	)
//
//	sink := manifest.NewFileSink("requirements.txt", manifest.FormatRequirements)
//	runner := pipeline.NewRunner(render.NewHTMLMarkdown(), sink, logger)
//
//	result, err := runner.Execute(ctx, pipeline.Options{Source: "analysis.ipynb"})
//	if err != nil {
//	    return err
//	}
//	return render.WritePage(w, result.Page())
//
// # Failure Model
//
// Document-level failures (the notebook cannot be read or has no cell
// list) abort a run before anything is published. A single broken cell is
// replaced by a placeholder and reported in [pipeline.Result.Degraded];
// the rest of the notebook still renders. See [errors] for the codes.
//
// [source]: https://pkg.go.dev/github.com/matzehuels/nbenv/pkg/source
// [notebook]: https://pkg.go.dev/github.com/matzehuels/nbenv/pkg/notebook
// [deps]: https://pkg.go.dev/github.com/matzehuels/nbenv/pkg/deps
// [render]: https://pkg.go.dev/github.com/matzehuels/nbenv/pkg/render
// [manifest]: https://pkg.go.dev/github.com/matzehuels/nbenv/pkg/manifest
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/nbenv/pkg/pipeline
// [pipeline.Result.Degraded]: https://pkg.go.dev/github.com/matzehuels/nbenv/pkg/pipeline#Result
// [cache]: https://pkg.go.dev/github.com/matzehuels/nbenv/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/nbenv/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/nbenv/pkg/errors
// [httputil]: https://pkg.go.dev/github.com/matzehuels/nbenv/pkg/httputil
// [observability]: https://pkg.go.dev/github.com/matzehuels/nbenv/pkg/observability
package pkg
