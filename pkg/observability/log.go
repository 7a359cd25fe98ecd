package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks implements every hook interface by writing debug records to a
// logger. The CLI registers it when running with --verbose.
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks returns hooks writing to logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	return &LogHooks{Logger: logger}
}

// Register installs h as the pipeline, cache and HTTP hooks.
func (h *LogHooks) Register() {
	SetPipelineHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)
}

func (h *LogHooks) OnProcessStart(_ context.Context, runID string, cells int) {
	h.Logger.Debug("process start", "run", runID, "cells", cells)
}

func (h *LogHooks) OnProcessComplete(_ context.Context, runID string, cells, deps int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Debug("process failed", "run", runID, "duration", d, "err", err)
		return
	}
	h.Logger.Debug("process complete", "run", runID, "cells", cells, "dependencies", deps, "duration", d)
}

func (h *LogHooks) OnCellDegraded(_ context.Context, runID string, index int, err error) {
	h.Logger.Debug("cell degraded", "run", runID, "cell", index, "err", err)
}

func (h *LogHooks) OnPublish(_ context.Context, runID string, packages int, err error) {
	h.Logger.Debug("manifest published", "run", runID, "packages", packages, "err", err)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, host, path string) {
	h.Logger.Debug("http request", "method", method, "host", host, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.Logger.Debug("http response", "method", method, "host", host, "path", path, "status", status, "duration", d)
}

func (h *LogHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.Logger.Debug("http error", "method", method, "host", host, "path", path, "err", err)
}

func (h *LogHooks) OnRetry(_ context.Context, attempt int, wait time.Duration, err error) {
	h.Logger.Debug("http retry", "attempt", attempt, "wait", wait, "err", err)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ HTTPHooks     = (*LogHooks)(nil)
)
