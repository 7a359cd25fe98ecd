package cli

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/matzehuels/nbenv/pkg/cache"
	"github.com/matzehuels/nbenv/pkg/errors"
	"github.com/matzehuels/nbenv/pkg/manifest"
	"github.com/matzehuels/nbenv/pkg/pipeline"
	"github.com/matzehuels/nbenv/pkg/render"
	"github.com/matzehuels/nbenv/pkg/source"
)

const requestsNotebook = `{"cells": [{"cell_type": "code", "source": "import requests"}]}`

type testServer struct {
	*httptest.Server
	live     *manifest.Slot
	upstream *httptest.Server
	fetches  *atomic.Int32
}

func newTestServer(t *testing.T, pages cache.Cache, opts ...func(*server)) *testServer {
	t.Helper()

	var fetches atomic.Int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches.Add(1)
		if r.URL.Path != "/demo.ipynb" {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, testNotebook)
	}))
	t.Cleanup(upstream.Close)

	catalog, err := source.NewCatalog(source.Sample{Name: "demo", URL: upstream.URL + "/demo.ipynb"})
	if err != nil {
		t.Fatal(err)
	}

	live := &manifest.Slot{}
	runner := pipeline.NewRunner(render.NewHTMLMarkdown(), live, nil)
	runner.Loader = source.NewLoader(source.NewFetcher(source.WithRetry(1, 0)), catalog)

	s := newServer(runner, live, pages, newLogger(io.Discard, LogInfo))
	s.pyscriptJS = render.DefaultPyScriptJS
	s.pyscriptCSS = render.DefaultPyScriptCSS
	for _, opt := range opts {
		opt(s)
	}

	srv := httptest.NewServer(s.routes())
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, live: live, upstream: upstream, fetches: &fetches}
}

func (ts *testServer) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func (ts *testServer) post(t *testing.T, path, body string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Post(ts.URL+path, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp, string(data)
}

func errorOf(t *testing.T, body string) errorResponse {
	t.Helper()
	var e errorResponse
	if err := json.Unmarshal([]byte(body), &e); err != nil {
		t.Fatalf("error body %q: %v", body, err)
	}
	return e
}

func TestServeHealth(t *testing.T) {
	ts := newTestServer(t, nil)
	resp, body := ts.get(t, "/healthz")
	if resp.StatusCode != http.StatusOK || body != "ok\n" {
		t.Errorf("healthz = %d %q", resp.StatusCode, body)
	}
}

func TestServeRenderBody(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, body := ts.get(t, "/manifest")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("manifest before any render = %d", resp.StatusCode)
	}

	resp, body = ts.post(t, "/render?name=demo.ipynb", testNotebook)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("POST /render = %d %s", resp.StatusCode, body)
	}
	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html") {
		t.Errorf("content type = %q", resp.Header.Get("Content-Type"))
	}
	for _, want := range []string{"<title>demo.ipynb", "<py-env>\n- numpy\n- pandas\n</py-env>", "<py-repl"} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}

	resp, body = ts.get(t, "/manifest")
	if resp.StatusCode != http.StatusOK || body != "- numpy\n- pandas" {
		t.Errorf("GET /manifest = %d %q", resp.StatusCode, body)
	}
	if resp.Header.Get("X-Nbenv-Run") == "" {
		t.Error("manifest response should carry the run id")
	}

	resp, body = ts.get(t, "/manifest?format=json")
	if resp.Header.Get("Content-Type") != "application/json" || !strings.Contains(body, `"pandas"`) {
		t.Errorf("json manifest = %q %q", resp.Header.Get("Content-Type"), body)
	}

	resp, _ = ts.get(t, "/manifest?format=yaml")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad format = %d", resp.StatusCode)
	}
}

func TestServeRenderBodyErrors(t *testing.T) {
	ts := newTestServer(t, nil)

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"malformed json", `{"cells": [`, http.StatusBadRequest, "ACQUISITION_FAILED"},
		{"missing cells", `{"metadata": {}}`, http.StatusUnprocessableEntity, "INVALID_STRUCTURE"},
		{"cells not list", `{"cells": 3}`, http.StatusUnprocessableEntity, "INVALID_STRUCTURE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := ts.post(t, "/render", tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if e := errorOf(t, body); e.Code != tt.code || e.Error == "" {
				t.Errorf("error = %+v", e)
			}
		})
	}

	if ts.live.Load() != nil {
		t.Error("rejected documents must not publish")
	}
}

func TestServeRenderURL(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, body := ts.get(t, "/render?url="+ts.upstream.URL+"/demo.ipynb")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "- pandas") {
		t.Fatalf("GET /render = %d", resp.StatusCode)
	}
	if got := ts.live.Load(); got == nil || got.Source != ts.upstream.URL+"/demo.ipynb" {
		t.Errorf("live manifest = %+v", got)
	}

	resp, body = ts.get(t, "/render?url=")
	if resp.StatusCode != http.StatusBadRequest || errorOf(t, body).Error != "please enter a valid URL" {
		t.Errorf("empty url = %d %s", resp.StatusCode, body)
	}

	resp, _ = ts.get(t, "/render?url=/etc/passwd")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("local path = %d, want 400", resp.StatusCode)
	}

	resp, body = ts.get(t, "/render?url="+ts.upstream.URL+"/missing.ipynb")
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("upstream 404 = %d", resp.StatusCode)
	}
	if e := errorOf(t, body); !strings.Contains(e.Error, "status 404") {
		t.Errorf("error = %q", e.Error)
	}
}

func TestServeSamples(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, body := ts.get(t, "/samples")
	var samples []source.Sample
	if err := json.Unmarshal([]byte(body), &samples); err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /samples = %d %v", resp.StatusCode, err)
	}
	found := false
	for _, s := range samples {
		found = found || s.Name == "demo"
	}
	if !found {
		t.Errorf("samples = %+v, want demo", samples)
	}

	resp, body = ts.get(t, "/samples/demo")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "<title>demo") {
		t.Errorf("GET /samples/demo = %d", resp.StatusCode)
	}

	resp, body = ts.get(t, "/samples/nope")
	if resp.StatusCode != http.StatusNotFound || errorOf(t, body).Code != "SAMPLE_NOT_FOUND" {
		t.Errorf("unknown sample = %d %s", resp.StatusCode, body)
	}
}

func TestServePageCacheRepublishes(t *testing.T) {
	pages, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ts := newTestServer(t, pages)

	first, _ := ts.post(t, "/render", testNotebook)
	firstRun := ts.live.Load().RunID
	_, _ = ts.post(t, "/render", requestsNotebook)
	if got := ts.live.Load().Packages; len(got) != 1 || got[0] != "requests" {
		t.Fatalf("after second render = %v", got)
	}

	again, body := ts.post(t, "/render", testNotebook)
	if first.StatusCode != http.StatusOK || again.StatusCode != http.StatusOK {
		t.Fatalf("statuses = %d, %d", first.StatusCode, again.StatusCode)
	}
	if !strings.Contains(body, "- numpy\n- pandas") {
		t.Error("cached page should be served")
	}
	if got := ts.live.Load().Packages; len(got) != 2 || got[0] != "numpy" {
		t.Errorf("cache hit should republish the manifest, live = %v", got)
	}
	if run := ts.live.Load().RunID; run == "" || run == firstRun {
		t.Errorf("republished manifest run id = %q, first run %q", run, firstRun)
	}
}

func TestServePageCacheKeyedByStylesheet(t *testing.T) {
	pages, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	_, _ = newTestServer(t, pages).post(t, "/render", testNotebook)

	alt := newTestServer(t, pages, func(s *server) { s.pyscriptCSS = "https://cdn.example/alt.css" })
	resp, body := alt.post(t, "/render", testNotebook)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(body, "https://cdn.example/alt.css") {
		t.Error("page rendered with an older stylesheet was served from cache")
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errors.New(errors.ErrCodeInvalidInput, "x"), http.StatusBadRequest},
		{errors.New(errors.ErrCodeInvalidStructure, "x"), http.StatusUnprocessableEntity},
		{errors.New(errors.ErrCodeSampleNotFound, "x"), http.StatusNotFound},
		{errors.New(errors.ErrCodeAcquisition, "x"), http.StatusBadGateway},
		{errors.New(errors.ErrCodeTimeout, "x"), http.StatusGatewayTimeout},
		{errors.New(errors.ErrCodePublish, "x"), http.StatusInternalServerError},
		{io.EOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
