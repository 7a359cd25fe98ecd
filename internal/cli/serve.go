package cli

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/matzehuels/nbenv/pkg/cache"
	"github.com/matzehuels/nbenv/pkg/errors"
	"github.com/matzehuels/nbenv/pkg/manifest"
	"github.com/matzehuels/nbenv/pkg/pipeline"
	"github.com/matzehuels/nbenv/pkg/render"
	"github.com/matzehuels/nbenv/pkg/source"
)

const shutdownTimeout = 5 * time.Second

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr        string
	noCache     bool
	pyscriptJS  string
	pyscriptCSS string
}

// serveCommand creates the serve command, which renders notebooks over HTTP
// and exposes the live manifest.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve rendered notebooks and the live manifest over HTTP",
		Long: `Serve rendered notebooks over HTTP.

Routes:
  GET  /render?url=<notebook url>   render a notebook fetched from a URL
  POST /render                      render the notebook JSON in the body
  GET  /samples                     list sample notebooks (JSON)
  GET  /samples/{name}              render a sample notebook
  GET  /manifest?format=<format>    the manifest of the latest render
  GET  /healthz                     liveness probe

Every render replaces the live manifest and the configured redis and mongo
sinks. Local files are never read on behalf of HTTP clients.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable notebook and page caching")
	cmd.Flags().StringVar(&opts.pyscriptJS, "pyscript-js", render.DefaultPyScriptJS, "PyScript runtime URL")
	cmd.Flags().StringVar(&opts.pyscriptCSS, "pyscript-css", render.DefaultPyScriptCSS, "PyScript stylesheet URL")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	sinks, closeSinks, err := c.sinks(ctx)
	if err != nil {
		return err
	}
	defer closeSinks()

	live := &manifest.Slot{}
	runner, err := c.newRunner(render.NewHTMLMarkdown(), manifest.Multi(append(sinks, live)), opts.noCache)
	if err != nil {
		return err
	}

	s := newServer(runner, live, c.newCache(opts.noCache), c.Logger)
	s.pyscriptJS = opts.pyscriptJS
	s.pyscriptCSS = opts.pyscriptCSS

	addr := firstNonEmpty(opts.addr, c.Config.Server.Addr)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	printSuccess("Serving notebooks")
	printKeyValue("Address", addr)
	printKeyValue("Samples", StyleLink.Render("http://"+displayAddr(addr)+"/samples"))

	select {
	case err := <-errCh:
		if !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		c.Logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}

// =============================================================================
// Server
// =============================================================================

// server renders notebooks for HTTP clients. Pages are cached by document
// hash together with the manifest they imply, so a cache hit still
// republishes the right environment.
type server struct {
	runner *pipeline.Runner
	live   *manifest.Slot
	pages  cache.Cache
	keyer  cache.Keyer
	logger *log.Logger

	pyscriptJS  string
	pyscriptCSS string
}

type cachedPage struct {
	HTML     []byte             `json:"html"`
	Manifest *manifest.Manifest `json:"manifest"`
}

func newServer(runner *pipeline.Runner, live *manifest.Slot, pages cache.Cache, logger *log.Logger) *server {
	if pages == nil {
		pages = cache.NewNullCache()
	}
	return &server{
		runner: runner,
		live:   live,
		pages:  pages,
		keyer:  cache.NewScopedKeyer(cache.NewDefaultKeyer(), "serve:"),
		logger: logger,
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/samples", s.handleSamples)
	r.Get("/samples/{name}", s.handleSample)
	r.Get("/render", s.handleRenderURL)
	r.Post("/render", s.handleRenderBody)
	r.Get("/manifest", s.handleManifest)

	return r
}

// requestLogger attaches a request-scoped logger and logs each response.
func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		logger := s.logger.With("req", middleware.GetReqID(r.Context()))
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r.WithContext(withLogger(r.Context(), logger)))

		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Round(time.Millisecond))
	})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok\n")
}

func (s *server) handleSamples(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.runner.Loader.Catalog.List())
}

func (s *server) handleSample(w http.ResponseWriter, r *http.Request) {
	sample, err := s.runner.Loader.Catalog.Lookup(chi.URLParam(r, "name"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	target := source.Target{Kind: source.KindSample, Location: sample.URL, Name: sample.Name}
	s.renderTarget(w, r, target)
}

func (s *server) handleRenderURL(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("url")
	if err := errors.ValidateURL(raw); err != nil {
		s.fail(w, r, err)
		return
	}
	target, err := source.Resolve(raw, nil)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.renderTarget(w, r, target)
}

func (s *server) handleRenderBody(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, source.MaxNotebookSize))
	if err != nil {
		s.fail(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body"))
		return
	}
	name := r.URL.Query().Get("name")
	if name == "" {
		name = "Notebook"
	}
	nb := &source.Notebook{Raw: body, Target: source.Target{Name: name}}
	s.renderNotebook(w, r, nb)
}

func (s *server) renderTarget(w http.ResponseWriter, r *http.Request, target source.Target) {
	refresh := r.URL.Query().Get("refresh") == "1"
	nb, err := s.runner.Loader.LoadTarget(r.Context(), target, refresh)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.renderNotebook(w, r, nb)
}

func (s *server) renderNotebook(w http.ResponseWriter, r *http.Request, nb *source.Notebook) {
	ctx := r.Context()
	logger := loggerFromContext(ctx)
	prev := s.live.Load()

	key := s.keyer.PageKey(cache.Hash(nb.Raw), cache.PageKeyOpts{
		Title:       nb.Target.Name,
		PyScriptJS:  s.pyscriptJS,
		PyScriptCSS: s.pyscriptCSS,
	})
	if page, ok := s.cachedPage(ctx, key); ok {
		page.Manifest.RunID = pipeline.NewRunID()
		if err := s.runner.Publisher.Publish(ctx, page.Manifest); err != nil {
			s.fail(w, r, errors.Wrap(errors.ErrCodePublish, err, "publish manifest"))
			return
		}
		logger.Debug("page cache hit", "run", page.Manifest.RunID, "packages", page.Manifest.Len())
		s.logEnvironment(logger, prev, page.Manifest)
		writeHTML(w, page.HTML)
		return
	}

	result, err := s.runner.ProcessNotebook(ctx, nb)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.logEnvironment(logger, prev, result.Manifest)

	data := result.Page()
	data.PyScriptJS = s.pyscriptJS
	data.PyScriptCSS = s.pyscriptCSS
	var buf bytes.Buffer
	if err := render.WritePage(&buf, data); err != nil {
		s.fail(w, r, err)
		return
	}

	entry, err := json.Marshal(cachedPage{HTML: buf.Bytes(), Manifest: result.Manifest})
	if err == nil {
		if err := s.pages.Set(ctx, key, entry, cache.TTLPage); err != nil {
			logger.Warn("cache page", "err", err)
		}
	}
	writeHTML(w, buf.Bytes())
}

// logEnvironment reports when a render changed the live manifest.
func (s *server) logEnvironment(logger *log.Logger, prev, next *manifest.Manifest) {
	if prev.Same(next) {
		return
	}
	added, removed := next.Diff(prev)
	logger.Info("environment replaced", "packages", next.Len(), "added", added, "removed", removed)
}

func (s *server) cachedPage(ctx context.Context, key string) (*cachedPage, bool) {
	data, ok, err := s.pages.Get(ctx, key)
	if err != nil || !ok {
		return nil, false
	}
	var page cachedPage
	if err := json.Unmarshal(data, &page); err != nil || page.Manifest == nil {
		return nil, false
	}
	return &page, true
}

func (s *server) handleManifest(w http.ResponseWriter, r *http.Request) {
	format, err := manifest.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	m := s.live.Load()
	if m == nil {
		s.fail(w, r, errors.New(errors.ErrCodeNotFound, "no manifest published yet"))
		return
	}
	data, err := manifest.Encode(m, format)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	if m.RunID != "" {
		w.Header().Set("X-Nbenv-Run", m.RunID)
	}
	_, _ = w.Write(data)
}

// =============================================================================
// Responses
// =============================================================================

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (s *server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if r.Method == http.MethodPost && errors.Is(err, errors.ErrCodeAcquisition) {
		status = http.StatusBadRequest
	}
	logger := loggerFromContext(r.Context())
	switch {
	case errors.IsDocumentLevel(err):
		logger.Warn("notebook rejected", "status", status, "err", err)
	case status >= http.StatusInternalServerError:
		logger.Error("request failed", "status", status, "err", err)
	default:
		logger.Debug("request rejected", "status", status, "err", err)
	}
	writeJSON(w, status, errorResponse{Error: errors.UserMessage(err), Code: string(errors.GetCode(err))})
}

// statusFor maps error codes to HTTP statuses.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case errors.ErrCodeInvalidStructure:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound, errors.ErrCodeSampleNotFound:
		return http.StatusNotFound
	case errors.ErrCodeAcquisition, errors.ErrCodeNetwork:
		return http.StatusBadGateway
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeHTML(w http.ResponseWriter, page []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}
