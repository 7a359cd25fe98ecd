// Package source acquires raw notebook bytes.
//
// Acquisition is the only stage of nbenv with timeouts and retries; the
// pipeline that follows is synchronous and never touches the network.
// Notebooks come from three places:
//
//   - a local .ipynb file ([ReadFile])
//   - an http(s) URL ([Fetcher]), cached on disk and retried on transient
//     failures
//   - a named sample from the [Catalog], which is a URL under a short name
//
// [Resolve] decides which of these a command-line argument refers to and
// [Loader] ties them together. Every acquisition failure carries the
// ACQUISITION_FAILED code (or INVALID_INPUT for arguments rejected up front).
package source
